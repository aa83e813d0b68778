package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/atlas/internal/config"
	"github.com/mrlokans/atlas/internal/database/users"
	"github.com/mrlokans/atlas/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooShort       = errors.New("name must be at least 3 characters")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidTheme       = errors.New("theme must be light or dark")
)

// MinNameLength is the minimum display name length for registration.
const MinNameLength = 3

// Service handles registration, credential checks and token issuance.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service. If no JWT secret is
// configured a random one is generated, which means issued tokens will not
// survive a restart.
func NewService(userRepo *users.Repository, cfg config.Auth) (*Service, error) {
	if cfg.JWTSecret == "" {
		secret, err := GenerateSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
	}
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = 168 * time.Hour
	}

	return &Service{users: userRepo, config: cfg}, nil
}

// Register validates the input and creates a new user.
func (s *Service) Register(name, email, password string) (*entities.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) < MinNameLength {
		return nil, ErrNameTooShort
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	// RFC 5321 caps addresses at 254 octets
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	taken, err := s.users.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(name, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user. Unknown email
// and wrong password both map to ErrInvalidCredentials so callers cannot
// probe for registered addresses.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}

// IssueToken creates a signed API token for a user.
func (s *Service) IssueToken(userID uint) (string, error) {
	return GenerateToken(userID, s.config.JWTSecret, s.config.TokenExpiry)
}

// ValidateToken checks a bearer token and returns the associated user.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := ParseToken(token, s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes a user's display name and theme preference.
func (s *Service) UpdateProfile(userID uint, name string, theme entities.Theme) (*entities.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) < MinNameLength {
		return nil, ErrNameTooShort
	}
	if theme != entities.ThemeLight && theme != entities.ThemeDark {
		return nil, ErrInvalidTheme
	}

	user, err := s.users.UpdateProfile(userID, name, theme)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(currentPassword, user.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(userID, newHash)
}
