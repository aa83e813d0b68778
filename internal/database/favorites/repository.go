// Package favorites provides database operations for favorite books.
//
// The (user, book) pair is unique. Adding an existing pair is reported as
// a no-op rather than an error; removing a missing pair is a not-found.
package favorites

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/atlas/internal/entities"
)

// ErrNotFound is returned when the favorite pair does not exist.
var ErrNotFound = errors.New("favorite not found")

// Repository handles all favorites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favorites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts the (user, book) pair. Returns false without an error if the
// pair already exists.
func (r *Repository) Add(userID, bookID uint) (bool, error) {
	exists, err := r.Exists(userID, bookID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	fav := &entities.Favorite{UserID: userID, BookID: bookID}
	if err := r.db.Create(fav).Error; err != nil {
		// The unique index may still fire under concurrent inserts;
		// treat that the same as the pre-check finding the row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Remove deletes the (user, book) pair.
func (r *Repository) Remove(userID, bookID uint) error {
	result := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether the user has favorited the book.
func (r *Repository) Exists(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// ListBooks returns the user's favorited books, most recently favorited
// first.
func (r *Repository) ListBooks(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Model(&entities.Book{}).
		Joins("INNER JOIN favorites ON favorites.book_id = books.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&books).Error
	return books, err
}

// CountByUser returns the number of books the user has favorited.
func (r *Repository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Favorite{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// RemoveByBook deletes all favorite rows pointing at a book, regardless of
// who favorited it. Called when the book itself is deleted.
func (r *Repository) RemoveByBook(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.Favorite{}).Error
}
