package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/avereyes/promptdesk/internal/store"
)

const sweepInterval = 5 * time.Minute

// StartSweeper runs a background goroutine that periodically deletes
// sessions idle longer than ttl, along with their transcripts.
func StartSweeper(ctx context.Context, repo store.Repository, ttl time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", sweepInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepOnce(ctx, repo, ttl)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepOnce(ctx context.Context, repo store.Repository, ttl time.Duration) {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		deleted, err := repo.DeleteExpiredSessions(ctx, ttl)
		if err == nil {
			if deleted > 0 {
				slog.Info("Session sweeper removed expired sessions", "count", deleted)
			}
			return
		}

		if store.IsBusy(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("Session sweep hit a locked database, retrying",
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}

		slog.Error("Session sweep failed", "error", err)
		return
	}
}
