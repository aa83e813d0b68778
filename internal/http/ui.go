package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/auth"
	bookrepo "github.com/mrlokans/atlas/internal/database/books"
	"github.com/mrlokans/atlas/internal/entities"
)

// UIController renders the server-side web pages. The pages are read-only
// views over the same stores the JSON API uses; mutations go through the
// API endpoints.
type UIController struct {
	store       BookStore
	favorites   FavoritesStore
	authService *auth.Service
}

func NewUIController(store BookStore, favorites FavoritesStore, authService *auth.Service) *UIController {
	return &UIController{
		store:       store,
		favorites:   favorites,
		authService: authService,
	}
}

// BooksPage renders the paginated catalogue with search and status filters.
// GET /
func (controller *UIController) BooksPage(c *gin.Context) {
	userID := GetUserID(c)

	result, err := controller.store.Search(userID, bookrepo.SearchParams{
		Query:  c.Query("q"),
		Status: entities.BookStatus(c.Query("status")),
		Page:   parsePageParam(c),
	})
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "books", gin.H{
		"Title":      "My Books",
		"UserName":   auth.GetUserName(c),
		"Books":      result.Data,
		"Total":      result.Total,
		"Page":       result.Page,
		"TotalPages": result.TotalPages,
		"Search":     c.Query("q"),
		"Status":     c.Query("status"),
		"PrevPage":   result.Page - 1,
		"NextPage":   result.Page + 1,
	})
}

// BookPage renders a single book.
// GET /books/:id
func (controller *UIController) BookPage(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.store.GetForUser(id, userID)
	if err != nil {
		if errors.Is(err, bookrepo.ErrNotFound) {
			c.String(http.StatusNotFound, "Book not found")
			return
		}
		c.String(http.StatusInternalServerError, "Error loading book")
		return
	}

	isFavorite, _ := controller.favorites.Exists(userID, id)

	c.HTML(http.StatusOK, "book", gin.H{
		"Title":      book.Title,
		"UserName":   auth.GetUserName(c),
		"Book":       book,
		"IsFavorite": isFavorite,
	})
}

// FavoritesPage renders the user's favorited books.
// GET /favorites
func (controller *UIController) FavoritesPage(c *gin.Context) {
	userID := GetUserID(c)

	list, err := controller.favorites.ListBooks(userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading favorites")
		return
	}

	c.HTML(http.StatusOK, "favorites", gin.H{
		"Title":    "Favorites",
		"UserName": auth.GetUserName(c),
		"Books":    list,
		"Total":    len(list),
	})
}

// ProfilePage renders account data, library stats and recent activity.
// GET /profile
func (controller *UIController) ProfilePage(c *gin.Context) {
	userID := GetUserID(c)

	user, err := controller.authService.GetUserByID(userID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading profile")
		return
	}

	now := time.Now()
	total, finishedThisYear, reviews, err := controller.store.Stats(userID, now)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading stats")
		return
	}
	favoriteCount, _ := controller.favorites.CountByUser(userID)

	activities, err := controller.store.RecentActivity(userID, 10, now)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading activity")
		return
	}

	c.HTML(http.StatusOK, "profile", gin.H{
		"Title":    "Profile",
		"UserName": auth.GetUserName(c),
		"User":     user,
		"Stats": entities.Stats{
			Books:     total,
			ThisYear:  finishedThisYear,
			Favorites: favoriteCount,
			Reviews:   reviews,
		},
		"Activities": activities,
		"CSRFToken":  auth.GetCSRFToken(c),
	})
}
