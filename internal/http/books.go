package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/atlas/internal/audit"
	"github.com/mrlokans/atlas/internal/covers"
	"github.com/mrlokans/atlas/internal/database/books"
	"github.com/mrlokans/atlas/internal/entities"
	"github.com/mrlokans/atlas/internal/tasks"
)

// BooksController handles the book catalogue API.
type BooksController struct {
	store        BookStore
	favorites    FavoritesStore
	auditService *audit.Service
	auditor      *audit.Auditor
	taskClient   *tasks.Client
	coverCache   *covers.Cache
}

func NewBooksController(store BookStore, favorites FavoritesStore, auditService *audit.Service, auditor *audit.Auditor, taskClient *tasks.Client, coverCache *covers.Cache) *BooksController {
	return &BooksController{
		store:        store,
		favorites:    favorites,
		auditService: auditService,
		auditor:      auditor,
		taskClient:   taskClient,
		coverCache:   coverCache,
	}
}

type createBookRequest struct {
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Summary       string     `json:"summary"`
	CoverURL      string     `json:"cover_url"`
	Status        string     `json:"status"`
	PagesTotal    int        `json:"pages_total"`
	PagesRead     int        `json:"pages_read"`
	Rating        int        `json:"rating"`
	PublishedDate *time.Time `json:"published_date"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	Notes         string     `json:"notes"`
}

// updateBookRequest uses pointers so absent fields are left untouched.
type updateBookRequest struct {
	Title         *string    `json:"title"`
	Author        *string    `json:"author"`
	Summary       *string    `json:"summary"`
	CoverURL      *string    `json:"cover_url"`
	Status        *string    `json:"status"`
	PagesTotal    *int       `json:"pages_total"`
	PagesRead     *int       `json:"pages_read"`
	Rating        *int       `json:"rating"`
	PublishedDate *time.Time `json:"published_date"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	Notes         *string    `json:"notes"`
}

// bookResponse is a book plus its favorite flag for the requesting user.
type bookResponse struct {
	entities.Book
	IsFavorite bool `json:"isFavorite"`
}

// ListBooks returns one page of the user's books.
// GET /api/books?q=&status=&page=
func (bc *BooksController) ListBooks(c *gin.Context) {
	userID := GetUserID(c)

	result, err := bc.store.Search(userID, books.SearchParams{
		Query:  c.Query("q"),
		Status: entities.BookStatus(c.Query("status")),
		Page:   parsePageParam(c),
	})
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateBook adds a book to the user's catalogue.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	userID := GetUserID(c)

	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Title == "" {
		respondBadRequest(c, "title is required")
		return
	}
	if req.Author == "" {
		respondBadRequest(c, "author is required")
		return
	}
	status := entities.BookStatus(req.Status)
	if req.Status != "" && !entities.ValidBookStatus(status) {
		respondBadRequest(c, "invalid status")
		return
	}
	if req.Rating < 0 || req.Rating > 5 {
		respondBadRequest(c, "rating must be between 0 and 5")
		return
	}
	if req.PagesTotal < 0 || req.PagesRead < 0 {
		respondBadRequest(c, "page counts cannot be negative")
		return
	}

	book := &entities.Book{
		UserID:        userID,
		Title:         req.Title,
		Author:        req.Author,
		Summary:       req.Summary,
		CoverURL:      req.CoverURL,
		Status:        status,
		PagesTotal:    req.PagesTotal,
		PagesRead:     req.PagesRead,
		Rating:        req.Rating,
		PublishedDate: req.PublishedDate,
		StartedAt:     req.StartedAt,
		FinishedAt:    req.FinishedAt,
		Notes:         req.Notes,
	}

	if err := bc.store.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	bc.enqueueCoverFetch(book)

	if bc.auditService != nil {
		bc.auditService.LogBook(userID, "create", book.ID, book.Title, nil)
	}

	respondCreated(c, book)
}

// GetBook returns a single book with its favorite flag.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetForUser(id, userID)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	isFavorite, err := bc.favorites.Exists(userID, id)
	if err != nil {
		respondInternalError(c, err, "get book favorite flag")
		return
	}

	c.JSON(http.StatusOK, bookResponse{Book: *book, IsFavorite: isFavorite})
}

// UpdateBook applies a partial update to a book.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updates, errMsg := bc.buildUpdates(req)
	if errMsg != "" {
		respondBadRequest(c, errMsg)
		return
	}
	if len(updates) == 0 {
		respondBadRequest(c, "no fields to update")
		return
	}

	book, err := bc.store.UpdateForUser(id, userID, updates)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}

	if req.CoverURL != nil {
		// Drop any cover cached for the previous URL
		if bc.coverCache != nil {
			if err := bc.coverCache.InvalidateCover(book.ID); err != nil {
				log.Printf("Failed to invalidate cover cache for book %d: %v", book.ID, err)
			}
		}
		bc.enqueueCoverFetch(book)
	}

	if bc.auditService != nil {
		bc.auditService.LogBook(userID, "update", book.ID, book.Title, nil)
	}

	c.JSON(http.StatusOK, book)
}

// buildUpdates validates the request and converts it to a column update map.
func (bc *BooksController) buildUpdates(req updateBookRequest) (map[string]any, string) {
	updates := make(map[string]any)

	if req.Title != nil {
		if *req.Title == "" {
			return nil, "title cannot be empty"
		}
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		if *req.Author == "" {
			return nil, "author cannot be empty"
		}
		updates["author"] = *req.Author
	}
	if req.Summary != nil {
		updates["summary"] = *req.Summary
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}
	if req.Status != nil {
		status := entities.BookStatus(*req.Status)
		if !entities.ValidBookStatus(status) {
			return nil, "invalid status"
		}
		updates["status"] = status

		// Stamp transition times unless the caller provides their own
		now := time.Now()
		if status == entities.BookStatusReading && req.StartedAt == nil {
			updates["started_at"] = now
		}
		if status == entities.BookStatusFinished && req.FinishedAt == nil {
			updates["finished_at"] = now
		}
	}
	if req.PagesTotal != nil {
		if *req.PagesTotal < 0 {
			return nil, "page counts cannot be negative"
		}
		updates["pages_total"] = *req.PagesTotal
	}
	if req.PagesRead != nil {
		if *req.PagesRead < 0 {
			return nil, "page counts cannot be negative"
		}
		updates["pages_read"] = *req.PagesRead
	}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 5 {
			return nil, "rating must be between 0 and 5"
		}
		updates["rating"] = *req.Rating
	}
	if req.PublishedDate != nil {
		updates["published_date"] = *req.PublishedDate
	}
	if req.StartedAt != nil {
		updates["started_at"] = *req.StartedAt
	}
	if req.FinishedAt != nil {
		updates["finished_at"] = *req.FinishedAt
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	return updates, ""
}

// DeleteBook removes a book and its favorite rows. A JSON snapshot is
// written to the audit directory first so the delete can be undone by hand.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	userID := GetUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetForUser(id, userID)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	if bc.auditor != nil {
		if _, err := bc.auditor.SaveJSON(book); err != nil {
			log.Printf("Failed to snapshot book %d before delete: %v", id, err)
		}
	}

	if err := bc.store.DeleteForUser(id, userID); err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	if err := bc.favorites.RemoveByBook(id); err != nil {
		log.Printf("Failed to remove favorites for deleted book %d: %v", id, err)
	}

	if bc.coverCache != nil {
		if err := bc.coverCache.InvalidateCover(id); err != nil {
			log.Printf("Failed to invalidate cover cache for book %d: %v", id, err)
		}
	}

	if bc.auditService != nil {
		bc.auditService.LogBook(userID, "delete", id, book.Title, nil)
	}

	respondSuccess(c, "book deleted")
}

// enqueueCoverFetch warms the cover cache in the background.
func (bc *BooksController) enqueueCoverFetch(book *entities.Book) {
	if bc.taskClient == nil || book.CoverURL == "" {
		return
	}

	_, err := bc.taskClient.Add(tasks.CacheCoverTask{
		BookID:   book.ID,
		CoverURL: book.CoverURL,
	}).Save()
	if err != nil {
		log.Printf("Failed to enqueue cover fetch for book %d: %v", book.ID, err)
	}
}
