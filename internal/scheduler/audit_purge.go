// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TaskEnqueuer enqueues an audit purge task for background execution.
type TaskEnqueuer interface {
	EnqueuePurge(retentionDays int) error
}

// AuditPurgeScheduler enqueues a daily purge of old audit events.
type AuditPurgeScheduler struct {
	enqueuer      TaskEnqueuer
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditPurgeScheduler creates a new scheduler instance.
func NewAuditPurgeScheduler(enqueuer TaskEnqueuer, schedule string, retentionDays int) *AuditPurgeScheduler {
	return &AuditPurgeScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *AuditPurgeScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("Audit purge scheduler: no schedule configured, disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runPurge()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit purge job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit purge scheduler: started with schedule '%s', retention %d days",
		s.schedule, s.retentionDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *AuditPurgeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Audit purge scheduler: stopped")
}

// RunNow triggers an immediate purge.
func (s *AuditPurgeScheduler) RunNow() {
	go s.runPurge()
}

// IsRunning returns whether the scheduler is active.
func (s *AuditPurgeScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next purge will occur.
func (s *AuditPurgeScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *AuditPurgeScheduler) runPurge() {
	if err := s.enqueuer.EnqueuePurge(s.retentionDays); err != nil {
		log.Printf("Audit purge: failed to enqueue task: %v", err)
		return
	}
	log.Printf("Audit purge: task enqueued (retention %d days)", s.retentionDays)
}
