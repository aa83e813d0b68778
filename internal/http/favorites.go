package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/audit"
	"github.com/mrlokans/atlas/internal/database/books"
	"github.com/mrlokans/atlas/internal/database/favorites"
)

// FavoritesController handles the favorites API.
type FavoritesController struct {
	store        FavoritesStore
	bookStore    BookStore
	auditService *audit.Service
}

func NewFavoritesController(store FavoritesStore, bookStore BookStore, auditService *audit.Service) *FavoritesController {
	return &FavoritesController{
		store:        store,
		bookStore:    bookStore,
		auditService: auditService,
	}
}

// ListFavorites returns the user's favorited books, most recent first.
// GET /api/favorites
func (fc *FavoritesController) ListFavorites(c *gin.Context) {
	userID := GetUserID(c)

	list, err := fc.store.ListBooks(userID)
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  list,
		"total": len(list),
	})
}

// IsFavorite reports whether the user has favorited the book.
// GET /api/books/:id/is-favorite
func (fc *FavoritesController) IsFavorite(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !fc.bookVisible(c, id, userID) {
		return
	}

	isFavorite, err := fc.store.Exists(userID, id)
	if err != nil {
		respondInternalError(c, err, "check favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"isFavorite": isFavorite})
}

// AddFavorite marks a book as favorite.
// POST /api/books/:id/favorite
func (fc *FavoritesController) AddFavorite(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !fc.bookVisible(c, id, userID) {
		return
	}

	added, err := fc.store.Add(userID, id)
	if err != nil {
		respondInternalError(c, err, "add favorite")
		return
	}
	if !added {
		respondBadRequest(c, "book already in favorites")
		return
	}

	if fc.auditService != nil {
		fc.auditService.LogFavorite(userID, "add", id)
	}

	respondCreated(c, SuccessResponse{Message: "book added to favorites"})
}

// RemoveFavorite removes a book from favorites.
// DELETE /api/books/:id/favorite
func (fc *FavoritesController) RemoveFavorite(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !fc.bookVisible(c, id, userID) {
		return
	}

	if err := fc.store.Remove(userID, id); err != nil {
		if errors.Is(err, favorites.ErrNotFound) {
			respondNotFound(c, "favorite")
			return
		}
		respondInternalError(c, err, "remove favorite")
		return
	}

	if fc.auditService != nil {
		fc.auditService.LogFavorite(userID, "remove", id)
	}

	respondSuccess(c, "book removed from favorites")
}

// bookVisible checks the book exists and belongs to the user, responding
// 404 otherwise. Foreign books are indistinguishable from missing ones.
func (fc *FavoritesController) bookVisible(c *gin.Context, id, userID uint) bool {
	_, err := fc.bookStore.GetForUser(id, userID)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return false
		}
		respondInternalError(c, err, "load book")
		return false
	}
	return true
}
