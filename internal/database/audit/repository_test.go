package audit

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/atlas/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_audit_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_LogAndGetEvents(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.LogEvent(&entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventAuth,
		Action:      "login",
		Description: "User logged in",
		Status:      "success",
	})
	require.NoError(t, err)

	err = repo.LogEvent(&entities.AuditEvent{
		UserID:      2,
		EventType:   entities.AuditEventBook,
		Action:      "create",
		Description: "Book created",
		Status:      "success",
	})
	require.NoError(t, err)

	t.Run("scoped to user", func(t *testing.T) {
		events, total, err := repo.GetEvents(1, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, events, 1)
		assert.Equal(t, "login", events[0].Action)
	})

	t.Run("all users when id is zero", func(t *testing.T) {
		_, total, err := repo.GetEvents(0, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	old := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    "login",
		Status:    "success",
		CreatedAt: time.Now().AddDate(0, 0, -120),
	}
	recent := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    "login",
		Status:    "success",
	}
	require.NoError(t, repo.LogEvent(old))
	require.NoError(t, repo.LogEvent(recent))

	deleted, err := repo.DeleteOldEvents(time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.GetEvents(1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
