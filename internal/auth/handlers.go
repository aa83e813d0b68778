package auth

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/config"
)

// isLocalPath validates that a redirect path is local to prevent open
// redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// WebController handles the login and registration pages of the web UI.
type WebController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	config         config.Auth
	rateLimiter    *RateLimiter
}

// NewWebController creates a new web authentication controller.
func NewWebController(service *Service, sessionManager *SessionManager, templatesPath string, cfg config.Auth) *WebController {
	pattern := filepath.Join(templatesPath, "auth", "*.html")
	tmpl, err := template.ParseGlob(pattern)
	if err != nil {
		// Templates might not exist yet, fall back to JSON responses
		log.Printf("Auth templates not loaded from %s, falling back to JSON responses: %v", pattern, err)
		tmpl = nil
	}

	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &WebController{
		service:        service,
		sessionManager: sessionManager,
		templates:      tmpl,
		config:         cfg,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (wc *WebController) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", wc.LoginPage)
	router.POST("/login", wc.Login)
	router.GET("/register", wc.RegisterPage)
	router.POST("/register", wc.Register)
	router.POST("/logout", wc.Logout)
	router.GET("/logout", wc.Logout) // Support GET for simple logout links
}

// RateLimiter exposes the login limiter so API login can share it.
func (wc *WebController) RateLimiter() *RateLimiter {
	return wc.rateLimiter
}

// Stop cleans up the rate limiter's background goroutine.
func (wc *WebController) Stop() {
	if wc.rateLimiter != nil {
		wc.rateLimiter.Stop()
	}
}

// LoginPage renders the login form.
func (wc *WebController) LoginPage(c *gin.Context) {
	if wc.sessionManager != nil && wc.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	next := sanitizeRedirectPath(c.Query("next"))

	wc.renderTemplate(c, "login.html", gin.H{
		"Title":     "Login",
		"Next":      next,
		"CSRFToken": GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// Login handles the login form submission.
func (wc *WebController) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	if wc.rateLimiter != nil {
		allowed, retryAfter := wc.rateLimiter.Allow(clientIP, email)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			wc.renderTemplate(c, "login.html", gin.H{
				"Title":     "Login",
				"Next":      next,
				"Email":     email,
				"CSRFToken": GetCSRFToken(c),
				"Error":     "Too many login attempts. Please try again later.",
			})
			return
		}
	}

	user, err := wc.service.Authenticate(email, password)
	if err != nil {
		if wc.rateLimiter != nil {
			wc.rateLimiter.RecordFailure(clientIP, email)
		}

		wc.renderTemplate(c, "login.html", gin.H{
			"Title":     "Login",
			"Next":      next,
			"Email":     email,
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Invalid email or password",
		})
		return
	}

	if wc.rateLimiter != nil {
		wc.rateLimiter.RecordSuccess(clientIP, email)
	}

	if wc.sessionManager != nil {
		if err := wc.sessionManager.CreateSession(c.Request, user); err != nil {
			wc.renderTemplate(c, "login.html", gin.H{
				"Title":     "Login",
				"Next":      next,
				"Email":     email,
				"CSRFToken": GetCSRFToken(c),
				"Error":     "Failed to create session",
			})
			return
		}
	}

	c.Redirect(http.StatusFound, next)
}

// RegisterPage renders the registration form.
func (wc *WebController) RegisterPage(c *gin.Context) {
	if wc.sessionManager != nil && wc.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	wc.renderTemplate(c, "register.html", gin.H{
		"Title":     "Register",
		"CSRFToken": GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// Register handles the registration form submission.
func (wc *WebController) Register(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	if password != confirmPassword {
		wc.renderTemplate(c, "register.html", gin.H{
			"Title":     "Register",
			"Name":      name,
			"Email":     email,
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Passwords do not match",
		})
		return
	}

	user, err := wc.service.Register(name, email, password)
	if err != nil {
		wc.renderTemplate(c, "register.html", gin.H{
			"Title":     "Register",
			"Name":      name,
			"Email":     email,
			"CSRFToken": GetCSRFToken(c),
			"Error":     registrationErrorMessage(err),
		})
		return
	}

	if wc.sessionManager != nil {
		_ = wc.sessionManager.CreateSession(c.Request, user)
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout destroys the session and redirects to login.
func (wc *WebController) Logout(c *gin.Context) {
	if wc.sessionManager != nil {
		_ = wc.sessionManager.DestroySession(c.Request)
	}
	c.Redirect(http.StatusFound, "/login")
}

// registrationErrorMessage maps service errors to user-facing text.
func registrationErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNameRequired):
		return "Name is required"
	case errors.Is(err, ErrNameTooShort):
		return "Name must be at least 3 characters"
	case errors.Is(err, ErrEmailRequired):
		return "Email is required"
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format"
	case errors.Is(err, ErrEmailTaken):
		return "Email already registered"
	case errors.Is(err, ErrPasswordRequired):
		return "Password is required"
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 6 characters"
	case errors.Is(err, ErrPasswordTooLong):
		return "Password exceeds maximum length of 72 characters"
	default:
		return "Failed to create account"
	}
}

// renderTemplate renders an auth template or falls back to JSON.
func (wc *WebController) renderTemplate(c *gin.Context, name string, data gin.H) {
	if wc.templates == nil {
		c.JSON(http.StatusOK, data)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := wc.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}
