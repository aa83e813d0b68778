package http

import (
	"github.com/mrlokans/atlas/internal/audit"
	"github.com/mrlokans/atlas/internal/auth"
	"github.com/mrlokans/atlas/internal/config"
	"github.com/mrlokans/atlas/internal/covers"
	"github.com/mrlokans/atlas/internal/database"
	"github.com/mrlokans/atlas/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	BookStore BookStore
	Favorites FavoritesStore

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Auditing
	AuditService *audit.Service
	Auditor      *audit.Auditor

	// Cover caching
	CoverCache *covers.Cache

	// Task queue client (optional)
	TaskClient *tasks.Client

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
