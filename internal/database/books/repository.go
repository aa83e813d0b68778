// Package books provides database operations for the book catalogue.
//
// All reads and mutations are scoped to the owning user. Ownership is
// enforced inside single statements (WHERE id = ? AND user_id = ?) so that
// a check-then-act race cannot touch another user's rows.
package books

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/atlas/internal/entities"
)

// ErrNotFound is returned when a book does not exist or belongs to a
// different user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("book not found")

// DefaultPageSize is the fixed page size for listings.
const DefaultPageSize = 5

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SearchParams describes a filtered, paginated listing request.
type SearchParams struct {
	Query  string              // free text, matched against title/author case-insensitively
	Status entities.BookStatus // empty or "all" matches every status
	Page   int                 // 1-based; values < 1 are clamped to 1
	Limit  int                 // <= 0 falls back to DefaultPageSize
}

// SearchResult is a single page of books plus pagination metadata.
type SearchResult struct {
	Data       []entities.Book `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

// Create persists a new book for its owning user.
func (r *Repository) Create(book *entities.Book) error {
	if book.Status == "" {
		book.Status = entities.BookStatusWantToRead
	}
	return r.db.Create(book).Error
}

// GetForUser fetches a book by id, scoped to the owning user.
func (r *Repository) GetForUser(id, userID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// UpdateForUser applies a partial update to a book the user owns and returns
// the updated row. The id and owner can never be reassigned.
func (r *Repository) UpdateForUser(id, userID uint, updates map[string]any) (*entities.Book, error) {
	delete(updates, "id")
	delete(updates, "user_id")

	if len(updates) > 0 {
		result := r.db.Model(&entities.Book{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}

	return r.GetForUser(id, userID)
}

// DeleteForUser removes a book the user owns.
func (r *Repository) DeleteForUser(id, userID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Book{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns one page of the user's books matching the filter, newest
// first, together with the total count for the same filter. Pages past the
// end yield an empty page, not an error.
func (r *Repository) Search(userID uint, params SearchParams) (*SearchResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultPageSize
	}

	var total int64
	if err := r.scope(userID, params).Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (params.Page - 1) * params.Limit

	var data []entities.Book
	err := r.scope(userID, params).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(offset).
		Find(&data).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return &SearchResult{
		Data:       data,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

// scope builds the WHERE clause shared by the data and count queries.
func (r *Repository) scope(userID uint, params SearchParams) *gorm.DB {
	query := r.db.Model(&entities.Book{}).Where("user_id = ?", userID)

	if params.Query != "" {
		pattern := "%" + params.Query + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern)
	}

	if params.Status != "" && params.Status != "all" {
		query = query.Where("status = ?", params.Status)
	}

	return query
}

// CountByUser returns the total number of books in the user's catalogue.
func (r *Repository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Stats aggregates the user's catalogue: total books, books finished this
// calendar year, and books with a rating. The favorites count is owned by
// the favorites repository.
func (r *Repository) Stats(userID uint, now time.Time) (total, finishedThisYear, reviews int64, err error) {
	err = r.db.Model(&entities.Book{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	yearEnd := yearStart.AddDate(1, 0, 0)
	err = r.db.Model(&entities.Book{}).
		Where("user_id = ? AND status = ? AND finished_at >= ? AND finished_at < ?",
			userID, entities.BookStatusFinished, yearStart, yearEnd).
		Count(&finishedThisYear).Error
	if err != nil {
		return
	}

	err = r.db.Model(&entities.Book{}).
		Where("user_id = ? AND rating > 0", userID).
		Count(&reviews).Error
	return
}

// RecentActivity derives an activity feed from the user's newest books.
// Nothing is persisted; each row is classified at read time.
func (r *Repository) RecentActivity(userID uint, limit int, now time.Time) ([]entities.Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []entities.Book
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	activities := make([]entities.Activity, 0, len(rows))
	for _, book := range rows {
		activities = append(activities, entities.Activity{
			ID:     book.ID,
			Type:   classifyActivity(book),
			Book:   book.Title,
			Rating: book.Rating,
			Date:   FormatRelativeDate(book.CreatedAt, now),
		})
	}

	return activities, nil
}

func classifyActivity(book entities.Book) entities.ActivityType {
	switch {
	case book.Rating > 0 && book.Status == entities.BookStatusFinished:
		return entities.ActivityReview
	case book.Status == entities.BookStatusReading:
		return entities.ActivityReading
	default:
		return entities.ActivityAdded
	}
}
