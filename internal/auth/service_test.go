package auth

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/atlas/internal/config"
	"github.com/mrlokans/atlas/internal/database/users"
	"github.com/mrlokans/atlas/internal/entities"
)

func setupService(t *testing.T) (*Service, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	svc, err := NewService(users.NewRepository(db), config.Auth{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  bcrypt.MinCost,
	})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return svc, cleanup
}

func TestService_Register(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	t.Run("creates user", func(t *testing.T) {
		user, err := svc.Register("Alice", "alice@example.com", "secret123")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "secret123", user.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register("Impostor", "alice@example.com", "secret123")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("email is normalized", func(t *testing.T) {
		_, err := svc.Register("Impostor", "  ALICE@example.com ", "secret123")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name, userName, email, password string
			want                            error
		}{
			{"empty name", "", "a@b.com", "secret123", ErrNameRequired},
			{"short name", "Al", "a@b.com", "secret123", ErrNameTooShort},
			{"empty email", "Alice", "", "secret123", ErrEmailRequired},
			{"bad email", "Alice", "not-an-email", "secret123", ErrEmailInvalid},
			{"empty password", "Alice", "a@b.com", "", ErrPasswordRequired},
			{"short password", "Alice", "a@b.com", "12345", ErrPasswordTooShort},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Register(tc.userName, tc.email, tc.password)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestService_Authenticate(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	_, err := svc.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate("alice@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
	})

	t.Run("wrong password and unknown email look alike", func(t *testing.T) {
		_, errWrongPass := svc.Authenticate("alice@example.com", "wrong-password")
		_, errNoUser := svc.Authenticate("nobody@example.com", "secret123")

		assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
		assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	})
}

func TestService_TokenLifecycle(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	user, err := svc.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	token, err := svc.IssueToken(user.ID)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	t.Run("token for a deleted user is invalid", func(t *testing.T) {
		orphan, err := GenerateToken(9999, "test-secret", time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(orphan)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestService_UpdateProfile(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	user, err := svc.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(user.ID, "Alice B.", entities.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.Name)
	assert.Equal(t, entities.ThemeDark, updated.Theme)

	t.Run("rejects unknown theme", func(t *testing.T) {
		_, err := svc.UpdateProfile(user.ID, "Alice", entities.Theme("sepia"))
		assert.ErrorIs(t, err, ErrInvalidTheme)
	})
}

func TestService_ChangePassword(t *testing.T) {
	svc, cleanup := setupService(t)
	defer cleanup()

	user, err := svc.Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(user.ID, "wrong-password", "newsecret")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("changes password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(user.ID, "secret123", "newsecret"))

		_, err := svc.Authenticate("alice@example.com", "secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Authenticate("alice@example.com", "newsecret")
		assert.NoError(t, err)
	})
}
