package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainerrors "tallyroom/contexts/registry/directory-service/domain/errors"
	"tallyroom/contexts/registry/directory-service/domain/entities"
	"tallyroom/contexts/registry/directory-service/ports"
)

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type RegisterAgentInput struct {
	PhoneNumber string
	FirstName   string
	LastName    string
}

// RegisterAgent creates a pending (unapproved) field agent. Submissions are
// gated on approval, so registration itself is open to any phone number.
func (s Service) RegisterAgent(ctx context.Context, input RegisterAgentInput) (entities.FieldAgent, error) {
	phone := NormalizePhone(input.PhoneNumber)
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if phone == "" || first == "" || last == "" {
		return entities.FieldAgent{}, domainerrors.ErrInvalidAgent
	}

	if _, exists, err := s.Repo.GetAgentByPhone(ctx, phone); err != nil {
		return entities.FieldAgent{}, err
	} else if exists {
		return entities.FieldAgent{}, domainerrors.ErrPhoneAlreadyRegistered
	}

	agentID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.FieldAgent{}, err
	}
	now := s.Clock.Now().UTC()
	agent := entities.FieldAgent{
		AgentID:     agentID,
		PhoneNumber: phone,
		FirstName:   first,
		LastName:    last,
		Role:        entities.RoleAgent,
		Approved:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.SaveAgent(ctx, agent); err != nil {
		return entities.FieldAgent{}, err
	}
	ResolveLogger(s.Logger).Info("field agent registered",
		"event", "directory_agent_registered",
		"module", "registry/directory-service",
		"layer", "application",
		"agent_id", agent.AgentID,
	)
	return agent, nil
}

type ApproveAgentInput struct {
	AgentID string
	// Role optionally promotes the agent on approval; empty keeps "agent".
	Role string
}

func (s Service) ApproveAgent(ctx context.Context, actorID string, input ApproveAgentInput) (entities.FieldAgent, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return entities.FieldAgent{}, err
	}

	agent, err := s.Repo.GetAgent(ctx, strings.TrimSpace(input.AgentID))
	if err != nil {
		return entities.FieldAgent{}, err
	}
	if raw := strings.TrimSpace(input.Role); raw != "" {
		role, ok := entities.ParseRole(raw)
		if !ok {
			return entities.FieldAgent{}, domainerrors.ErrInvalidAgent
		}
		agent.Role = role
	}
	agent.Approved = true
	agent.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.SaveAgent(ctx, agent); err != nil {
		return entities.FieldAgent{}, err
	}
	ResolveLogger(s.Logger).Info("field agent approved",
		"event", "directory_agent_approved",
		"module", "registry/directory-service",
		"layer", "application",
		"agent_id", agent.AgentID,
		"role", string(agent.Role),
		"actor_id", actorID,
	)
	return agent, nil
}

func (s Service) GetAgent(ctx context.Context, agentID string) (entities.FieldAgent, error) {
	return s.Repo.GetAgent(ctx, strings.TrimSpace(agentID))
}

func (s Service) AgentByPhone(ctx context.Context, phoneNumber string) (entities.FieldAgent, bool, error) {
	return s.Repo.GetAgentByPhone(ctx, NormalizePhone(phoneNumber))
}

type CenterInput struct {
	CenterID         string
	Code             string
	Name             string
	Constituency     string
	Ward             string
	RegisteredVoters int
	Active           bool
}

func (s Service) UpsertCenter(ctx context.Context, actorID string, input CenterInput) (entities.PollingCenter, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return entities.PollingCenter{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" || input.RegisteredVoters <= 0 {
		return entities.PollingCenter{}, domainerrors.ErrInvalidCenter
	}

	now := s.Clock.Now().UTC()
	center := entities.PollingCenter{
		CenterID:         strings.TrimSpace(input.CenterID),
		Code:             code,
		Name:             name,
		Constituency:     strings.TrimSpace(input.Constituency),
		Ward:             strings.TrimSpace(input.Ward),
		RegisteredVoters: input.RegisteredVoters,
		Active:           input.Active,
		UpdatedAt:        now,
	}
	if center.CenterID == "" {
		centerID, err := s.IDGen.NewID(ctx)
		if err != nil {
			return entities.PollingCenter{}, err
		}
		center.CenterID = centerID
		center.CreatedAt = now
	} else {
		existing, err := s.Repo.GetCenter(ctx, center.CenterID)
		if err != nil {
			return entities.PollingCenter{}, err
		}
		center.CreatedAt = existing.CreatedAt
	}
	if err := s.Repo.SaveCenter(ctx, center); err != nil {
		return entities.PollingCenter{}, err
	}
	return center, nil
}

func (s Service) GetCenter(ctx context.Context, centerID string) (entities.PollingCenter, error) {
	return s.Repo.GetCenter(ctx, strings.TrimSpace(centerID))
}

func (s Service) GetCenterByCode(ctx context.Context, code string) (entities.PollingCenter, bool, error) {
	return s.Repo.GetCenterByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s Service) ListCenters(ctx context.Context) ([]entities.PollingCenter, error) {
	return s.Repo.ListCenters(ctx)
}

type CandidateInput struct {
	CandidateID  string
	Name         string
	Party        string
	Category     string
	Abbreviation string
	Constituency string
}

func (s Service) UpsertCandidate(ctx context.Context, actorID string, input CandidateInput) (entities.Candidate, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return entities.Candidate{}, err
	}

	category, ok := entities.ParseCategory(input.Category)
	if !ok {
		return entities.Candidate{}, domainerrors.ErrInvalidCategory
	}
	name := strings.TrimSpace(input.Name)
	abbr := strings.ToUpper(strings.TrimSpace(input.Abbreviation))
	constituency := strings.TrimSpace(input.Constituency)
	if name == "" || abbr == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidate
	}
	if category == entities.CategoryPresident && constituency != "" {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidate
	}
	if category != entities.CategoryPresident && constituency == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidate
	}

	now := s.Clock.Now().UTC()
	candidate := entities.Candidate{
		CandidateID:  strings.TrimSpace(input.CandidateID),
		Name:         name,
		Party:        strings.TrimSpace(input.Party),
		Category:     category,
		Abbreviation: abbr,
		Constituency: constituency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if candidate.CandidateID == "" {
		candidateID, err := s.IDGen.NewID(ctx)
		if err != nil {
			return entities.Candidate{}, err
		}
		candidate.CandidateID = candidateID
	} else {
		existing, err := s.Repo.GetCandidate(ctx, candidate.CandidateID)
		if err != nil {
			return entities.Candidate{}, err
		}
		candidate.CreatedAt = existing.CreatedAt
	}
	if err := s.Repo.SaveCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}
	return candidate, nil
}

// ListCandidates returns candidates for one category. Presidential listings
// ignore the constituency filter; mp/councilor listings apply it when given.
func (s Service) ListCandidates(ctx context.Context, category string, constituency string) ([]entities.Candidate, error) {
	parsed, ok := entities.ParseCategory(category)
	if !ok {
		return nil, domainerrors.ErrInvalidCategory
	}
	if parsed == entities.CategoryPresident {
		constituency = ""
	}
	return s.Repo.ListCandidates(ctx, parsed, strings.TrimSpace(constituency))
}

func (s Service) requireAdmin(ctx context.Context, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return domainerrors.ErrActorNotAllowed
	}
	actor, err := s.Repo.GetAgent(ctx, actorID)
	if errors.Is(err, domainerrors.ErrAgentNotFound) {
		return domainerrors.ErrActorNotAllowed
	}
	if err != nil {
		return err
	}
	if !actor.Approved || actor.Role != entities.RoleAdmin {
		return domainerrors.ErrActorNotAllowed
	}
	return nil
}

// NormalizePhone strips whitespace and a leading plus so channel-provided
// numbers compare equal regardless of formatting.
func NormalizePhone(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(raw))
	return strings.TrimPrefix(cleaned, "+")
}
