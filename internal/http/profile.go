package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/audit"
	"github.com/mrlokans/atlas/internal/auth"
	"github.com/mrlokans/atlas/internal/entities"
)

// ProfileController handles the profile, stats and activity API.
type ProfileController struct {
	authService  *auth.Service
	bookStore    BookStore
	favorites    FavoritesStore
	auditService *audit.Service
}

func NewProfileController(authService *auth.Service, bookStore BookStore, favorites FavoritesStore, auditService *audit.Service) *ProfileController {
	return &ProfileController{
		authService:  authService,
		bookStore:    bookStore,
		favorites:    favorites,
		auditService: auditService,
	}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GetProfile returns the user's account data together with library stats.
// GET /api/profile
func (pc *ProfileController) GetProfile(c *gin.Context) {
	userID := GetUserID(c)

	user, err := pc.authService.GetUserByID(userID)
	if err != nil {
		respondInternalError(c, err, "get profile")
		return
	}

	stats, err := pc.collectStats(userID)
	if err != nil {
		respondInternalError(c, err, "get profile stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"stats": stats,
	})
}

// UpdateProfile changes the display name and theme.
// PUT /api/profile
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	userID := GetUserID(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := pc.authService.UpdateProfile(userID, req.Name, entities.Theme(req.Theme))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNameRequired),
			errors.Is(err, auth.ErrNameTooShort),
			errors.Is(err, auth.ErrInvalidTheme):
			respondBadRequest(c, err.Error())
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		default:
			respondInternalError(c, err, "update profile")
		}
		return
	}

	if pc.auditService != nil {
		pc.auditService.LogProfile(userID, "profile_update", "Updated profile")
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword verifies the current password and sets a new one.
// POST /api/profile/change-password
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	userID := GetUserID(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	err := pc.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPassword):
			respondBadRequest(c, "current password is incorrect")
		case errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "change password")
		}
		return
	}

	if pc.auditService != nil {
		pc.auditService.LogProfile(userID, "password_change", "Changed password")
	}

	respondSuccess(c, "password changed")
}

// GetActivity returns the recent activity feed.
// GET /api/profile/activity
func (pc *ProfileController) GetActivity(c *gin.Context) {
	userID := GetUserID(c)

	activities, err := pc.bookStore.RecentActivity(userID, 10, time.Now())
	if err != nil {
		respondInternalError(c, err, "get activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activities})
}

// collectStats aggregates the profile counters from both stores.
func (pc *ProfileController) collectStats(userID uint) (*entities.Stats, error) {
	total, finishedThisYear, reviews, err := pc.bookStore.Stats(userID, time.Now())
	if err != nil {
		return nil, err
	}

	favoriteCount, err := pc.favorites.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	return &entities.Stats{
		Books:     total,
		ThisYear:  finishedThisYear,
		Favorites: favoriteCount,
		Reviews:   reviews,
	}, nil
}
