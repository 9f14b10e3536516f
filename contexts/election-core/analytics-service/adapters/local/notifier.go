package localadapter

import (
	"context"
	"time"

	"tallyroom/contexts/election-core/analytics-service/application"
	"tallyroom/contexts/election-core/analytics-service/ports"
	resultports "tallyroom/contexts/election-core/result-service/ports"
)

type resultEventPayload struct {
	ResultID       string    `json:"result_id"`
	CenterID       string    `json:"center_id"`
	CenterName     string    `json:"center_name,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Action         string    `json:"action"`
	ActorID        string    `json:"actor_id"`
	Channel        string    `json:"channel"`
	TotalVotes     int       `json:"total_votes"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ResultNotifier satisfies the result module's Notifier port by pushing
// each event through the broadcaster, followed by a snapshot refresh.
type ResultNotifier struct {
	Broadcaster application.Broadcaster
}

func (n ResultNotifier) ResultCreated(ctx context.Context, event resultports.ResultEvent) {
	n.Broadcaster.PublishEvent(ctx, ports.EventNewResult, payloadFromEvent(event))
}

func (n ResultNotifier) ResultStatusChanged(ctx context.Context, event resultports.ResultEvent) {
	n.Broadcaster.PublishEvent(ctx, ports.EventResultStatusChanged, payloadFromEvent(event))
}

func (n ResultNotifier) ResultReviewed(ctx context.Context, event resultports.ResultEvent) {
	n.Broadcaster.PublishEvent(ctx, ports.EventResultReviewed, payloadFromEvent(event))
}

func payloadFromEvent(event resultports.ResultEvent) resultEventPayload {
	return resultEventPayload{
		ResultID:       event.ResultID,
		CenterID:       event.CenterID,
		CenterName:     event.CenterName,
		Status:         event.Status,
		PreviousStatus: event.PreviousStatus,
		Action:         event.Action,
		ActorID:        event.ActorID,
		Channel:        event.Channel,
		TotalVotes:     event.TotalVotes,
		OccurredAt:     event.OccurredAt,
	}
}
