package tasks

import "time"

// Config tunes the background task queue. Each field maps to a TASK_*
// environment variable resolved in the config package; NewClient falls
// back to DefaultConfig for the worker and housekeeping fields it reads.
type Config struct {
	Workers           int           // concurrent task processors (TASK_WORKERS)
	MaxRetries        int           // attempts before a task is marked failed (TASK_MAX_RETRIES)
	RetryDelay        time.Duration // backoff between attempts (TASK_RETRY_DELAY)
	TaskTimeout       time.Duration // per-execution deadline (TASK_TIMEOUT)
	ReleaseAfter      time.Duration // reclaim tasks whose worker died (TASK_RELEASE_AFTER)
	CleanupInterval   time.Duration // completed-task sweep cadence (TASK_CLEANUP_INTERVAL)
	RetentionDuration time.Duration // how long finished tasks stay queryable (TASK_RETENTION_DURATION)
}

// DefaultConfig mirrors the config package's TASK_* defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
