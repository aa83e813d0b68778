package entities

import "time"

type BookStatus string

const (
	BookStatusWantToRead BookStatus = "want_to_read"
	BookStatusReading    BookStatus = "reading"
	BookStatusFinished   BookStatus = "finished"
)

// ValidBookStatus reports whether s is one of the known reading statuses.
func ValidBookStatus(s BookStatus) bool {
	switch s {
	case BookStatusWantToRead, BookStatusReading, BookStatusFinished:
		return true
	}
	return false
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"` // bcrypt hash, hidden from JSON
	Theme        Theme     `gorm:"size:10;default:'light'" json:"theme"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Book struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index" json:"user_id"`
	Title         string     `gorm:"index;size:512" json:"title"`
	Author        string     `gorm:"index;size:256" json:"author"`
	Summary       string     `gorm:"type:text" json:"summary"`
	CoverURL      string     `gorm:"size:2048" json:"cover_url,omitempty"`
	Status        BookStatus `gorm:"index;size:20;default:'want_to_read'" json:"status"`
	PagesTotal    int        `json:"pages_total"`
	PagesRead     int        `json:"pages_read"`
	Rating        int        `json:"rating"` // 0 = unrated, 1-5 stars
	PublishedDate *time.Time `json:"published_date,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	User          User       `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Favorite joins a user to a book. The pair is unique; favoriting twice is
// a no-op at the storage layer.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_favorites_user_book" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_favorites_user_book" json:"book_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (Favorite) TableName() string {
	return "favorites"
}

type ActivityType string

const (
	ActivityReview  ActivityType = "review"
	ActivityReading ActivityType = "reading"
	ActivityAdded   ActivityType = "added"
)

// Activity is derived from book rows at read time; it is never persisted.
type Activity struct {
	ID     uint         `json:"id"`
	Type   ActivityType `json:"type"`
	Book   string       `json:"book"`
	Rating int          `json:"rating"`
	Date   string       `json:"date"` // relative, e.g. "2 days ago"
}

// Stats aggregates a user's library for the profile page.
type Stats struct {
	Books     int64 `json:"books"`
	ThisYear  int64 `json:"thisYear"`
	Favorites int64 `json:"favorites"`
	Reviews   int64 `json:"reviews"`
}
