package workers

import (
	"context"
	"log/slog"
	"time"

	"tallyroom/contexts/election-core/result-service/application"
)

// ArchiveSweeper periodically archives results older than MaxAge on behalf
// of a configured admin actor. The sweep itself is the service's batch
// operation; this worker only supplies the schedule.
type ArchiveSweeper struct {
	Results  application.Service
	ActorID  string
	MaxAge   time.Duration
	Interval time.Duration
	Logger   *slog.Logger
}

func (w ArchiveSweeper) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			count, err := w.Results.ArchiveStale(ctx, w.ActorID, w.MaxAge)
			if err != nil {
				application.ResolveLogger(w.Logger).Error("archive sweep failed",
					"event", "archive_sweep_failed",
					"module", "election-core/result-service",
					"layer", "application/workers",
					"error", err.Error(),
				)
				continue
			}
			if count > 0 {
				application.ResolveLogger(w.Logger).Info("archive sweep completed",
					"event", "archive_sweep_completed",
					"module", "election-core/result-service",
					"layer", "application/workers",
					"archived", count,
				)
			}
		}
	}
}
