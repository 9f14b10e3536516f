package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "tallyroom/contexts/registry/directory-service/domain/errors"
	"tallyroom/contexts/registry/directory-service/domain/entities"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	centers    map[string]entities.PollingCenter
	candidates map[string]entities.Candidate
	agents     map[string]entities.FieldAgent
}

func NewStore() *Store {
	return &Store{
		centers:    make(map[string]entities.PollingCenter),
		candidates: make(map[string]entities.Candidate),
		agents:     make(map[string]entities.FieldAgent),
	}
}

func (s *Store) SaveCenter(_ context.Context, center entities.PollingCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centers[strings.TrimSpace(center.CenterID)] = center
	return nil
}

func (s *Store) GetCenter(_ context.Context, centerID string) (entities.PollingCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	center, ok := s.centers[strings.TrimSpace(centerID)]
	if !ok {
		return entities.PollingCenter{}, domainerrors.ErrCenterNotFound
	}
	return center, nil
}

func (s *Store) GetCenterByCode(_ context.Context, code string) (entities.PollingCenter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, center := range s.centers {
		if center.Code == code {
			return center, true, nil
		}
	}
	return entities.PollingCenter{}, false, nil
}

func (s *Store) ListCenters(_ context.Context) ([]entities.PollingCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.PollingCenter, 0, len(s.centers))
	for _, center := range s.centers {
		items = append(items, center)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Code < items[j].Code
	})
	return items, nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidates(
	_ context.Context,
	category entities.Category,
	constituency string,
) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.Category != category {
			continue
		}
		if constituency != "" && !strings.EqualFold(candidate.Constituency, constituency) {
			continue
		}
		items = append(items, candidate)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Abbreviation < items[j].Abbreviation
	})
	return items, nil
}

func (s *Store) SaveAgent(_ context.Context, agent entities.FieldAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[strings.TrimSpace(agent.AgentID)] = agent
	return nil
}

func (s *Store) GetAgent(_ context.Context, agentID string) (entities.FieldAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[strings.TrimSpace(agentID)]
	if !ok {
		return entities.FieldAgent{}, domainerrors.ErrAgentNotFound
	}
	return agent, nil
}

func (s *Store) GetAgentByPhone(_ context.Context, phoneNumber string) (entities.FieldAgent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phoneNumber = strings.TrimSpace(phoneNumber)
	for _, agent := range s.agents {
		if agent.PhoneNumber == phoneNumber {
			return agent, true, nil
		}
	}
	return entities.FieldAgent{}, false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
