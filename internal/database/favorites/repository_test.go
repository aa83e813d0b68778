package favorites

import (
	"errors"
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

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_favorites_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.Favorite{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createBook(t *testing.T, db *gorm.DB, userID uint, title string, createdAt time.Time) entities.Book {
	t.Helper()
	book := entities.Book{
		UserID:    userID,
		Title:     title,
		Author:    "Author",
		Status:    entities.BookStatusWantToRead,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func TestRepository_Add(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db, 1, "Dune", time.Now())

	added, err := repo.Add(1, book.ID)
	require.NoError(t, err)
	assert.True(t, added)

	t.Run("second add is a no-op", func(t *testing.T) {
		added, err := repo.Add(1, book.ID)
		require.NoError(t, err)
		assert.False(t, added)

		count, err := repo.CountByUser(1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestRepository_Remove(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db, 1, "Dune", time.Now())

	_, err := repo.Add(1, book.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Remove(1, book.ID))

	t.Run("removing again is not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Remove(1, book.ID), ErrNotFound)
	})

	t.Run("never favorited is not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Remove(2, book.ID), ErrNotFound)
	})
}

func TestRepository_Exists(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db, 1, "Dune", time.Now())

	exists, err := repo.Exists(1, book.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Add(1, book.ID)
	require.NoError(t, err)

	exists, err = repo.Exists(1, book.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_ListBooks(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	first := createBook(t, db, 1, "First Favorite", now.Add(-2*time.Hour))
	second := createBook(t, db, 1, "Second Favorite", now.Add(-1*time.Hour))
	createBook(t, db, 1, "Not Favorited", now)

	// Favorite first, then second, so second is the most recent favorite.
	require.NoError(t, db.Create(&entities.Favorite{UserID: 1, BookID: first.ID, CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&entities.Favorite{UserID: 1, BookID: second.ID, CreatedAt: now}).Error)

	books, err := repo.ListBooks(1)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Second Favorite", books[0].Title)
	assert.Equal(t, "First Favorite", books[1].Title)

	t.Run("other user sees nothing", func(t *testing.T) {
		books, err := repo.ListBooks(2)
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestRepository_RemoveByBook(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db, 1, "Dune", time.Now())

	_, err := repo.Add(1, book.ID)
	require.NoError(t, err)

	require.NoError(t, repo.RemoveByBook(book.ID))

	exists, err := repo.Exists(1, book.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_DuplicateInsertMapsToSentinel(t *testing.T) {
	// Add falls back on gorm.ErrDuplicatedKey when the unique index fires
	// under concurrent inserts; make sure the driver error actually maps
	// to that sentinel.
	_, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db, 1, "Dune", time.Now())

	require.NoError(t, db.Create(&entities.Favorite{UserID: 1, BookID: book.ID}).Error)

	err := db.Create(&entities.Favorite{UserID: 1, BookID: book.ID}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
