package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/audit"
	"github.com/mrlokans/atlas/internal/auth"
)

// AuthController handles the JSON API authentication endpoints.
type AuthController struct {
	service      *auth.Service
	auditService *audit.Service
	rateLimiter  *auth.RateLimiter
}

func NewAuthController(service *auth.Service, auditService *audit.Service, rateLimiter *auth.RateLimiter) *AuthController {
	return &AuthController{
		service:      service,
		auditService: auditService,
		rateLimiter:  rateLimiter,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse strips everything but the public user fields.
type userResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register creates a new account.
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := ac.service.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if isValidationError(err) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "register")
		return
	}

	if ac.auditService != nil {
		ac.auditService.LogAuth(user.ID, "register", c.ClientIP(), true)
	}

	respondCreated(c, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

// Login validates credentials and returns a bearer token.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	clientIP := c.ClientIP()

	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			respondError(c, http.StatusTooManyRequests, "too many login attempts")
			return
		}
	}

	user, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(clientIP, req.Email)
		}
		if ac.auditService != nil {
			ac.auditService.LogAuth(0, "login", clientIP, false)
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Same message for unknown email and wrong password
			respondBadRequest(c, "invalid email or password")
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	}

	token, err := ac.service.IssueToken(user.ID)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	if ac.auditService != nil {
		ac.auditService.LogAuth(user.ID, "login", clientIP, true)
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// isValidationError reports whether the registration error should surface
// as a 400 with its message.
func isValidationError(err error) bool {
	for _, e := range []error{
		auth.ErrNameRequired,
		auth.ErrNameTooShort,
		auth.ErrEmailRequired,
		auth.ErrEmailInvalid,
		auth.ErrEmailTaken,
		auth.ErrPasswordRequired,
		auth.ErrPasswordTooShort,
		auth.ErrPasswordTooLong,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
