package ports

import (
	"context"
	"time"

	"tallyroom/contexts/field-intake/ussd-service/domain/entities"
)

// SessionStore persists conversations between turns. Implementations do
// not enforce expiry; the engine checks it on load.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (entities.Session, bool, error)
	SaveSession(ctx context.Context, session entities.Session) error
}

// AgentView is the directory projection the dialogue needs about a caller.
type AgentView struct {
	AgentID   string
	FirstName string
	LastName  string
	Role      string
	Approved  bool
}

// CenterView is the directory projection for a polling center lookup.
type CenterView struct {
	CenterID     string
	Code         string
	Name         string
	Constituency string
	Active       bool
}

// CandidateView is one ballot line for a category at a center.
type CandidateView struct {
	CandidateID  string
	Name         string
	Party        string
	Abbreviation string
}

// DirectoryClient resolves callers, centers and ballots from the registry
// context.
type DirectoryClient interface {
	AgentByPhone(ctx context.Context, phoneNumber string) (AgentView, bool, error)
	RegisterAgent(ctx context.Context, phoneNumber, firstName, lastName string) (AgentView, error)
	CenterByCode(ctx context.Context, code string) (CenterView, bool, error)
	CandidatesByCategory(ctx context.Context, category, constituency string) ([]CandidateView, error)
}

// SubmissionInput is one category's worth of counts captured over USSD.
type SubmissionInput struct {
	CenterID     string
	AgentID      string
	Category     string
	Votes        map[string]int
	InvalidVotes int
}

// SubmissionView summarises a stored result for status read-back.
type SubmissionView struct {
	ResultID   string
	Status     string
	TotalVotes int
	CreatedAt  time.Time
}

// ResultClient hands captured counts to the election-core pipeline.
type ResultClient interface {
	SubmitCategoryResult(ctx context.Context, input SubmissionInput) (SubmissionView, error)
	AgentSubmissions(ctx context.Context, agentID string) ([]SubmissionView, error)
}

// Clock abstracts time for deterministic expiry tests.
type Clock interface {
	Now() time.Time
}
