package ports

import (
	"context"
	"time"

	"tallyroom/contexts/election-core/result-service/domain/entities"
)

type ResultFilter struct {
	Status      string
	CenterID    string
	SubmittedBy string
	Limit       int
	Offset      int
}

type Repository interface {
	SaveResult(ctx context.Context, result entities.Result) error
	GetResult(ctx context.Context, resultID string) (entities.Result, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]entities.Result, error)
	ListStale(ctx context.Context, cutoff time.Time) ([]entities.Result, error)

	AppendTransition(ctx context.Context, transition entities.Transition) error
	ListTransitions(ctx context.Context, resultID string) ([]entities.Transition, error)
}

// CenterProjection is the slice of the directory a submission needs.
type CenterProjection struct {
	CenterID         string
	Code             string
	Name             string
	Constituency     string
	RegisteredVoters int
	Active           bool
}

type CenterDirectory interface {
	GetCenter(ctx context.Context, centerID string) (CenterProjection, bool, error)
}

type ActorProjection struct {
	ActorID  string
	Role     entities.Role
	Approved bool
}

type ActorDirectory interface {
	GetActor(ctx context.Context, actorID string) (ActorProjection, bool, error)
}

// ResultEvent is what the realtime layer hears about a result. It is a
// projection, not the entity: observers never get mutable state.
type ResultEvent struct {
	ResultID       string
	CenterID       string
	CenterName     string
	Status         string
	PreviousStatus string
	Action         string
	ActorID        string
	Channel        string
	TotalVotes     int
	OccurredAt     time.Time
}

// Notifier announces result changes. Implementations must not block the
// submission path; pushes are fire-and-forget.
type Notifier interface {
	ResultCreated(ctx context.Context, event ResultEvent)
	ResultStatusChanged(ctx context.Context, event ResultEvent)
	ResultReviewed(ctx context.Context, event ResultEvent)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
