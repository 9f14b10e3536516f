package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "tallyroom/contexts/election-core/result-service/domain/errors"
	"tallyroom/contexts/election-core/result-service/domain/entities"
	"tallyroom/contexts/election-core/result-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	results     map[string]entities.Result
	transitions map[string][]entities.Transition

	centers map[string]ports.CenterProjection
	actors  map[string]ports.ActorProjection
}

func NewStore() *Store {
	return &Store{
		results:     make(map[string]entities.Result),
		transitions: make(map[string][]entities.Transition),
		centers:     make(map[string]ports.CenterProjection),
		actors:      make(map[string]ports.ActorProjection),
	}
}

// SetCenter seeds a directory projection; tests and the in-memory bootstrap
// use it in place of the live directory module.
func (s *Store) SetCenter(center ports.CenterProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centers[strings.TrimSpace(center.CenterID)] = center
}

func (s *Store) SetActor(actor ports.ActorProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors[strings.TrimSpace(actor.ActorID)] = actor
}

func (s *Store) SaveResult(_ context.Context, result entities.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[strings.TrimSpace(result.ResultID)] = result
	return nil
}

func (s *Store) GetResult(_ context.Context, resultID string) (entities.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[strings.TrimSpace(resultID)]
	if !ok {
		return entities.Result{}, domainerrors.ErrResultNotFound
	}
	return result, nil
}

func (s *Store) ListResults(_ context.Context, filter ports.ResultFilter) ([]entities.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Result, 0)
	for _, result := range s.results {
		if filter.Status != "" && string(result.Status) != filter.Status {
			continue
		}
		if filter.CenterID != "" && result.CenterID != filter.CenterID {
			continue
		}
		if filter.SubmittedBy != "" && result.SubmittedBy != filter.SubmittedBy {
			continue
		}
		items = append(items, result)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			return []entities.Result{}, nil
		}
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) ListStale(_ context.Context, cutoff time.Time) ([]entities.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Result, 0)
	for _, result := range s.results {
		if result.Status == entities.StatusArchived {
			continue
		}
		if result.UpdatedAt.Before(cutoff) {
			items = append(items, result)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.Before(items[j].UpdatedAt)
	})
	return items, nil
}

func (s *Store) AppendTransition(_ context.Context, transition entities.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resultID := strings.TrimSpace(transition.ResultID)
	s.transitions[resultID] = append(s.transitions[resultID], transition)
	return nil
}

func (s *Store) ListTransitions(_ context.Context, resultID string) ([]entities.Transition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.transitions[strings.TrimSpace(resultID)]
	items := make([]entities.Transition, len(rows))
	copy(items, rows)
	sort.Slice(items, func(i, j int) bool {
		return items[i].OccurredAt.Before(items[j].OccurredAt)
	})
	return items, nil
}

func (s *Store) GetCenter(_ context.Context, centerID string) (ports.CenterProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	center, ok := s.centers[strings.TrimSpace(centerID)]
	return center, ok, nil
}

func (s *Store) GetActor(_ context.Context, actorID string) (ports.ActorProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	actor, ok := s.actors[strings.TrimSpace(actorID)]
	return actor, ok, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
