package ports

import (
	"context"
	"time"
)

// Realtime envelope types pushed to observers.
const (
	EventAnalyticsUpdate     = "ANALYTICS_UPDATE"
	EventNewResult           = "NEW_RESULT"
	EventResultStatusChanged = "RESULT_STATUS_CHANGED"
	EventResultReviewed      = "RESULT_REVIEWED"
)

type ResultRecord struct {
	ResultID   string
	CenterID   string
	Status     string
	Channel    string
	CreatedAt  time.Time
	VerifiedAt *time.Time
}

type ResultSource interface {
	ListResults(ctx context.Context) ([]ResultRecord, error)
}

type CenterRecord struct {
	CenterID string
	Name     string
	Active   bool
}

type CenterSource interface {
	ListCenters(ctx context.Context) ([]CenterRecord, error)
}

// EventPublisher pushes one tagged payload to all current observers.
// Implementations must be fire-and-forget.
type EventPublisher interface {
	Publish(eventType string, data any)
}

type Clock interface {
	Now() time.Time
}

type ActivityItem struct {
	ResultID   string    `json:"result_id"`
	CenterID   string    `json:"center_id"`
	CenterName string    `json:"center_name,omitempty"`
	Status     string    `json:"status"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"created_at"`
}

type CenterRank struct {
	CenterID    string `json:"center_id"`
	CenterName  string `json:"center_name,omitempty"`
	Submissions int    `json:"submissions"`
}

type HourBucket struct {
	Hour          time.Time `json:"hour"`
	Submissions   int       `json:"submissions"`
	Verifications int       `json:"verifications"`
}

type Snapshot struct {
	TotalCenters  int `json:"total_centers"`
	ActiveCenters int `json:"active_centers"`

	TotalResults  int `json:"total_results"`
	PendingCount  int `json:"pending_count"`
	FlaggedCount  int `json:"flagged_count"`
	VerifiedCount int `json:"verified_count"`
	RejectedCount int `json:"rejected_count"`
	ArchivedCount int `json:"archived_count"`

	CompletionRate   float64 `json:"completion_rate"`
	VerificationRate float64 `json:"verification_rate"`

	RecentActivity []ActivityItem `json:"recent_activity"`
	TopCenters     []CenterRank   `json:"top_centers"`
	HourlyTrend    []HourBucket   `json:"hourly_trend"`

	GeneratedAt time.Time `json:"generated_at"`
}
