package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/atlas/internal/database"
	"github.com/mrlokans/atlas/internal/database/books"
	"github.com/mrlokans/atlas/internal/database/favorites"
	"github.com/mrlokans/atlas/internal/entities"
)

func setupBooksAPITest(t *testing.T) (*database.Database, *BooksController, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_books_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	bookRepo := books.NewRepository(db.DB)
	favRepo := favorites.NewRepository(db.DB)
	controller := NewBooksController(bookRepo, favRepo, nil, nil, nil, nil)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, controller, cleanup
}

// newBooksRouter mounts the books routes as the given user.
func newBooksRouter(controller *BooksController, userID uint) *gin.Engine {
	router := gin.New()
	router.Use(asUser(userID))
	router.GET("/api/books", controller.ListBooks)
	router.POST("/api/books", controller.CreateBook)
	router.GET("/api/books/:id", controller.GetBook)
	router.PUT("/api/books/:id", controller.UpdateBook)
	router.DELETE("/api/books/:id", controller.DeleteBook)
	return router
}

func createBookViaAPI(t *testing.T, router *gin.Engine, body string) entities.Book {
	t.Helper()
	w := postJSON(router, "/api/books", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var book entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	return book
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates book with default status", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		book := createBookViaAPI(t, router, `{"title":"Dune","author":"Frank Herbert"}`)

		assert.NotZero(t, book.ID)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, entities.BookStatusWantToRead, book.Status)
		assert.Equal(t, uint(1), book.UserID)
	})

	t.Run("requires title", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		w := postJSON(router, "/api/books", `{"author":"Frank Herbert"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title is required")
	})

	t.Run("requires author", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		w := postJSON(router, "/api/books", `{"title":"Dune"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "author is required")
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		w := postJSON(router, "/api/books",
			`{"title":"Dune","author":"Frank Herbert","status":"abandoned"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid status")
	})

	t.Run("rejects out of range rating", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		w := postJSON(router, "/api/books",
			`{"title":"Dune","author":"Frank Herbert","rating":6}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "rating must be between 0 and 5")
	})
}

func TestBooksController_GetBook(t *testing.T) {
	t.Run("returns own book with favorite flag", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		created := createBookViaAPI(t, router, `{"title":"Dune","author":"Frank Herbert"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/books/%d", created.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Dune", response["title"])
		assert.Equal(t, false, response["isFavorite"])
	})

	t.Run("another user's book looks missing", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()

		owner := newBooksRouter(controller, 1)
		created := createBookViaAPI(t, owner, `{"title":"Dune","author":"Frank Herbert"}`)

		other := newBooksRouter(controller, 2)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/books/%d", created.ID), nil)
		other.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "book not found")
	})

	t.Run("returns 404 for missing book", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/9999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_UpdateBook(t *testing.T) {
	t.Run("applies partial update", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		created := createBookViaAPI(t, router,
			`{"title":"Dune","author":"Frank Herbert","rating":3}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/books/%d", created.ID),
			strings.NewReader(`{"rating":5,"notes":"A classic"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, 5, book.Rating)
		assert.Equal(t, "A classic", book.Notes)
		assert.Equal(t, "Dune", book.Title)
	})

	t.Run("finishing a book stamps finished_at", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		created := createBookViaAPI(t, router,
			`{"title":"Dune","author":"Frank Herbert","status":"reading"}`)
		require.Nil(t, created.FinishedAt)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/books/%d", created.ID),
			strings.NewReader(`{"status":"finished"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, entities.BookStatusFinished, book.Status)
		assert.NotNil(t, book.FinishedAt)
	})

	t.Run("starting a book stamps started_at", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		created := createBookViaAPI(t, router, `{"title":"Dune","author":"Frank Herbert"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/books/%d", created.ID),
			strings.NewReader(`{"status":"reading"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.NotNil(t, book.StartedAt)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		created := createBookViaAPI(t, router, `{"title":"Dune","author":"Frank Herbert"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/books/%d", created.ID),
			strings.NewReader(`{"title":""}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title cannot be empty")
	})

	t.Run("rejects empty update", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		created := createBookViaAPI(t, router, `{"title":"Dune","author":"Frank Herbert"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/books/%d", created.ID),
			strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "no fields to update")
	})

	t.Run("cannot update another user's book", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()

		owner := newBooksRouter(controller, 1)
		created := createBookViaAPI(t, owner, `{"title":"Dune","author":"Frank Herbert"}`)

		other := newBooksRouter(controller, 2)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/books/%d", created.ID),
			strings.NewReader(`{"title":"Hijacked"}`))
		req.Header.Set("Content-Type", "application/json")
		other.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		// The book is untouched
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", fmt.Sprintf("/api/books/%d", created.ID), nil)
		owner.ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), "Dune")
	})
}

func TestBooksController_DeleteBook(t *testing.T) {
	t.Run("deletes own book", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		created := createBookViaAPI(t, router, `{"title":"Dune","author":"Frank Herbert"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/books/%d", created.ID), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "book deleted")

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", fmt.Sprintf("/api/books/%d", created.ID), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cannot delete another user's book", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()

		owner := newBooksRouter(controller, 1)
		created := createBookViaAPI(t, owner, `{"title":"Dune","author":"Frank Herbert"}`)

		other := newBooksRouter(controller, 2)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/books/%d", created.ID), nil)
		other.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_ListBooks(t *testing.T) {
	listPage := func(t *testing.T, router *gin.Engine, query string) books.SearchResult {
		t.Helper()
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books?"+query, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var result books.SearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		return result
	}

	t.Run("paginates five per page", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		for i := 1; i <= 12; i++ {
			createBookViaAPI(t, router,
				fmt.Sprintf(`{"title":"Book %02d","author":"Author"}`, i))
		}

		result := listPage(t, router, "page=1")
		assert.Equal(t, int64(12), result.Total)
		assert.Equal(t, 3, result.TotalPages)
		assert.Len(t, result.Data, 5)

		result = listPage(t, router, "page=3")
		assert.Len(t, result.Data, 2)

		// Pages past the end are empty, not an error
		result = listPage(t, router, "page=4")
		assert.Empty(t, result.Data)
		assert.Equal(t, int64(12), result.Total)
	})

	t.Run("filters by status", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		createBookViaAPI(t, router, `{"title":"Reading Now","author":"A","status":"reading"}`)
		createBookViaAPI(t, router, `{"title":"Done","author":"B","status":"finished"}`)

		result := listPage(t, router, "status=reading")
		require.Len(t, result.Data, 1)
		assert.Equal(t, "Reading Now", result.Data[0].Title)
	})

	t.Run("searches title and author", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()
		router := newBooksRouter(controller, 1)

		createBookViaAPI(t, router, `{"title":"Dune","author":"Frank Herbert"}`)
		createBookViaAPI(t, router, `{"title":"Neuromancer","author":"William Gibson"}`)

		result := listPage(t, router, "q=herbert")
		require.Len(t, result.Data, 1)
		assert.Equal(t, "Dune", result.Data[0].Title)
	})

	t.Run("only lists the user's own books", func(t *testing.T) {
		_, controller, cleanup := setupBooksAPITest(t)
		defer cleanup()

		owner := newBooksRouter(controller, 1)
		createBookViaAPI(t, owner, `{"title":"Dune","author":"Frank Herbert"}`)

		other := newBooksRouter(controller, 2)
		result := listPage(t, other, "")
		assert.Empty(t, result.Data)
		assert.Equal(t, int64(0), result.Total)
	})
}
