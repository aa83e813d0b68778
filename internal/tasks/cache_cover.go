package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CoverFetcher downloads and caches a book cover.
type CoverFetcher interface {
	GetCover(bookID uint, coverURL string) (string, error)
}

// CacheCoverTask warms the cover cache for a book so the first page view
// doesn't block on the upstream image host.
type CacheCoverTask struct {
	BookID   uint   `json:"book_id"`
	CoverURL string `json:"cover_url"`
}

// Config returns the queue configuration for cover caching tasks.
func (t CacheCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cache_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CacheCoverProcessor creates a processor function for CacheCoverTask.
func CacheCoverProcessor(fetcher CoverFetcher) backlite.QueueProcessor[CacheCoverTask] {
	return func(ctx context.Context, task CacheCoverTask) error {
		if fetcher == nil {
			return fmt.Errorf("cover fetcher not configured")
		}
		if task.CoverURL == "" {
			return nil
		}

		path, err := fetcher.GetCover(task.BookID, task.CoverURL)
		if err != nil {
			return fmt.Errorf("cache cover for book %d: %w", task.BookID, err)
		}

		log.Printf("[TASK] Cached cover for book %d at %s", task.BookID, path)
		return nil
	}
}

// NewCacheCoverQueue creates a backlite queue for cover caching tasks.
func NewCacheCoverQueue(fetcher CoverFetcher) backlite.Queue {
	return backlite.NewQueue(CacheCoverProcessor(fetcher))
}
