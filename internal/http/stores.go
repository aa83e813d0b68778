package http

import (
	"time"

	"github.com/mrlokans/atlas/internal/database/books"
	"github.com/mrlokans/atlas/internal/entities"
)

// BookStore defines database operations for the book catalogue.
type BookStore interface {
	Create(book *entities.Book) error
	GetForUser(id, userID uint) (*entities.Book, error)
	UpdateForUser(id, userID uint, updates map[string]any) (*entities.Book, error)
	DeleteForUser(id, userID uint) error
	Search(userID uint, params books.SearchParams) (*books.SearchResult, error)
	Stats(userID uint, now time.Time) (total, finishedThisYear, reviews int64, err error)
	RecentActivity(userID uint, limit int, now time.Time) ([]entities.Activity, error)
}

// FavoritesStore defines database operations for favorites management.
type FavoritesStore interface {
	Add(userID, bookID uint) (bool, error)
	Remove(userID, bookID uint) error
	Exists(userID, bookID uint) (bool, error)
	ListBooks(userID uint) ([]entities.Book, error)
	CountByUser(userID uint) (int64, error)
	RemoveByBook(bookID uint) error
}
