package workers

import (
	"context"
	"log/slog"
	"time"

	"tallyroom/contexts/election-core/analytics-service/application"
)

// BroadcastTicker republishes the analytics snapshot on a fixed interval.
// It shares the broadcaster's recompute-and-publish path with the
// event-triggered invocations, so the two can never diverge.
type BroadcastTicker struct {
	Broadcaster application.Broadcaster
	Interval    time.Duration
	Logger      *slog.Logger
}

func (w BroadcastTicker) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	application.ResolveLogger(w.Logger).Info("broadcast ticker started",
		"event", "broadcast_ticker_started",
		"module", "election-core/analytics-service",
		"layer", "application/workers",
		"interval", interval.String(),
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Errors are already logged inside the broadcaster; a failed
			// tick just waits for the next one.
			_ = w.Broadcaster.PublishSnapshot(ctx)
		}
	}
}
