package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	if cfg.TemplatesPath != "" {
		tmpl := template.Must(template.ParseGlob(cfg.TemplatesPath + "/*.html"))
		router.SetHTMLTemplate(tmpl)
	}

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	// Web login/register/logout routes plus the shared login rate limiter
	var rateLimiter *auth.RateLimiter
	if cfg.AuthService != nil {
		webController := auth.NewWebController(cfg.AuthService, cfg.SessionManager, cfg.TemplatesPath, cfg.AuthConfig)
		webController.RegisterRoutes(router)
		rateLimiter = webController.RateLimiter()
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService, cfg.AuditService, rateLimiter)
	booksController := NewBooksController(cfg.BookStore, cfg.Favorites, cfg.AuditService, cfg.Auditor, cfg.TaskClient, cfg.CoverCache)
	favoritesController := NewFavoritesController(cfg.Favorites, cfg.BookStore, cfg.AuditService)
	profileController := NewProfileController(cfg.AuthService, cfg.BookStore, cfg.Favorites, cfg.AuditService)
	uiController := NewUIController(cfg.BookStore, cfg.Favorites, cfg.AuthService)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth API endpoints
	router.POST("/api/auth/register", authController.Register)
	router.POST("/api/auth/login", authController.Login)

	// Books API endpoints
	router.GET("/api/books", booksController.ListBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	// Favorites API endpoints
	router.GET("/api/favorites", favoritesController.ListFavorites)
	router.GET("/api/books/:id/is-favorite", favoritesController.IsFavorite)
	router.POST("/api/books/:id/favorite", favoritesController.AddFavorite)
	router.DELETE("/api/books/:id/favorite", favoritesController.RemoveFavorite)

	// Profile API endpoints
	router.GET("/api/profile", profileController.GetProfile)
	router.PUT("/api/profile", profileController.UpdateProfile)
	router.POST("/api/profile/change-password", profileController.ChangePassword)
	router.GET("/api/profile/activity", profileController.GetActivity)

	// Book cover endpoint
	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.CoverCache, cfg.BookStore)
		router.GET("/api/books/:id/cover", coversController.GetCover)
	}

	// UI routes
	if cfg.TemplatesPath != "" {
		router.GET("/", uiController.BooksPage)
		router.GET("/books/:id", uiController.BookPage)
		router.GET("/favorites", uiController.FavoritesPage)
		router.GET("/profile", uiController.ProfilePage)
	}

	return router
}
