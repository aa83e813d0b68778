package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/covers"
	"github.com/mrlokans/atlas/internal/database/books"
)

// CoversController serves cached book cover images.
type CoversController struct {
	cache *covers.Cache
	store BookStore
}

func NewCoversController(cache *covers.Cache, store BookStore) *CoversController {
	return &CoversController{
		cache: cache,
		store: store,
	}
}

// GetCover streams the cached cover for a book the user owns, fetching it
// from the upstream URL on a cache miss.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.store.GetForUser(id, userID)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get cover")
		return
	}

	if book.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	path, err := cc.cache.GetCover(book.ID, book.CoverURL)
	if err != nil || path == "" {
		respondNotFound(c, "cover")
		return
	}

	c.File(path)
}
