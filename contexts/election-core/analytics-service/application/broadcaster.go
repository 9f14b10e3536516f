package application

import (
	"context"
	"log/slog"

	"tallyroom/contexts/election-core/analytics-service/ports"
)

// Broadcaster is the single recompute-and-publish path shared by the
// periodic ticker and every event-triggered invocation.
type Broadcaster struct {
	Analytics Service
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (b Broadcaster) PublishSnapshot(ctx context.Context) error {
	snapshot, err := b.Analytics.ComputeSnapshot(ctx)
	if err != nil {
		ResolveLogger(b.Logger).Error("snapshot recomputation failed",
			"event", "analytics_snapshot_failed",
			"module", "election-core/analytics-service",
			"layer", "application",
			"error", err.Error(),
		)
		return err
	}
	if b.Publisher != nil {
		b.Publisher.Publish(ports.EventAnalyticsUpdate, snapshot)
	}
	return nil
}

// PublishEvent forwards a result event to observers and follows it with a
// fresh snapshot so dashboards never lag a known state change.
func (b Broadcaster) PublishEvent(ctx context.Context, eventType string, data any) {
	if b.Publisher != nil {
		b.Publisher.Publish(eventType, data)
	}
	_ = b.PublishSnapshot(ctx)
}
