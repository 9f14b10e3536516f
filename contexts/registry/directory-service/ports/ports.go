package ports

import (
	"context"
	"time"

	"tallyroom/contexts/registry/directory-service/domain/entities"
)

type Repository interface {
	SaveCenter(ctx context.Context, center entities.PollingCenter) error
	GetCenter(ctx context.Context, centerID string) (entities.PollingCenter, error)
	GetCenterByCode(ctx context.Context, code string) (entities.PollingCenter, bool, error)
	ListCenters(ctx context.Context) ([]entities.PollingCenter, error)

	SaveCandidate(ctx context.Context, candidate entities.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListCandidates(ctx context.Context, category entities.Category, constituency string) ([]entities.Candidate, error)

	SaveAgent(ctx context.Context, agent entities.FieldAgent) error
	GetAgent(ctx context.Context, agentID string) (entities.FieldAgent, error)
	GetAgentByPhone(ctx context.Context, phoneNumber string) (entities.FieldAgent, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
