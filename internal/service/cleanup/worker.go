package cleanup

import (
	"context"
	"log"
	"time"
)

// TableReaper is the part of the session manager the worker needs
type TableReaper interface {
	CleanupIdleTables(ctx context.Context, idle time.Duration) int
}

type Worker struct {
	Tables      TableReaper
	Interval    time.Duration
	IdleTimeout time.Duration
}

func NewWorker(tables TableReaper, interval, idleTimeout time.Duration) *Worker {
	return &Worker{Tables: tables, Interval: interval, IdleTimeout: idleTimeout}
}

// Start runs a cleanup immediately and then on every tick until ctx is done.
// It blocks, so callers usually run it in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	log.Println("[CLEANUP] Background worker started")
	w.runCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[CLEANUP] Background worker stopped")
			return
		case <-ticker.C:
			w.runCleanup(ctx)
		}
	}
}

// runCleanup executes the actual cleanup logic
func (w *Worker) runCleanup(ctx context.Context) int {
	removed := w.Tables.CleanupIdleTables(ctx, w.IdleTimeout)
	if removed > 0 {
		log.Printf("[CLEANUP] Removed %d idle tables", removed)
	}
	return removed
}
