package application

import (
	"context"
	"errors"
	"testing"

	"tallyroom/contexts/registry/directory-service/adapters/memory"
	domainerrors "tallyroom/contexts/registry/directory-service/domain/errors"
	"tallyroom/contexts/registry/directory-service/domain/entities"
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	service := Service{Repo: store, Clock: store, IDGen: store}

	if err := store.SaveAgent(context.Background(), entities.FieldAgent{
		AgentID:     "admin-1",
		PhoneNumber: "233200000000",
		FirstName:   "Adjoa",
		LastName:    "Sarpong",
		Role:        entities.RoleAdmin,
		Approved:    true,
	}); err != nil {
		t.Fatalf("seed admin failed: %v", err)
	}
	return service, store
}

func TestRegisterAgentStartsUnapproved(t *testing.T) {
	service, _ := newTestService(t)

	agent, err := service.RegisterAgent(context.Background(), RegisterAgentInput{
		PhoneNumber: "+233 20-000-0001",
		FirstName:   "Ama",
		LastName:    "Mensah",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if agent.Approved {
		t.Fatal("registration must not grant approval")
	}
	if agent.Role != entities.RoleAgent {
		t.Fatalf("expected the agent role, got %s", agent.Role)
	}
	if agent.PhoneNumber != "233200000001" {
		t.Fatalf("expected a normalized phone number, got %q", agent.PhoneNumber)
	}
}

func TestRegisterAgentDuplicatePhoneAcrossFormats(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.RegisterAgent(context.Background(), RegisterAgentInput{
		PhoneNumber: "233200000001",
		FirstName:   "Ama",
		LastName:    "Mensah",
	}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := service.RegisterAgent(context.Background(), RegisterAgentInput{
		PhoneNumber: "+233 (20) 000-0001",
		FirstName:   "Ama",
		LastName:    "Mensah",
	})
	if !errors.Is(err, domainerrors.ErrPhoneAlreadyRegistered) {
		t.Fatalf("expected the duplicate to be caught, got %v", err)
	}
}

func TestApproveAgentRequiresAdmin(t *testing.T) {
	service, _ := newTestService(t)
	agent, err := service.RegisterAgent(context.Background(), RegisterAgentInput{
		PhoneNumber: "233200000001",
		FirstName:   "Ama",
		LastName:    "Mensah",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := service.ApproveAgent(context.Background(), agent.AgentID, ApproveAgentInput{AgentID: agent.AgentID}); !errors.Is(err, domainerrors.ErrActorNotAllowed) {
		t.Fatalf("a non-admin must not approve, got %v", err)
	}

	approved, err := service.ApproveAgent(context.Background(), "admin-1", ApproveAgentInput{
		AgentID: agent.AgentID,
		Role:    "reviewer",
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !approved.Approved || approved.Role != entities.RoleReviewer {
		t.Fatalf("expected an approved reviewer, got %+v", approved)
	}
}

func TestUpsertCenterValidatesInput(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.UpsertCenter(context.Background(), "admin-1", CenterInput{
		Code: "pc-001",
		Name: "Unity Primary",
	}); !errors.Is(err, domainerrors.ErrInvalidCenter) {
		t.Fatalf("expected zero registered voters to be rejected, got %v", err)
	}

	center, err := service.UpsertCenter(context.Background(), "admin-1", CenterInput{
		Code:             "pc-001",
		Name:             "Unity Primary",
		Constituency:     "Ayawaso West",
		RegisteredVoters: 1000,
		Active:           true,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if center.Code != "PC-001" {
		t.Fatalf("expected an uppercased code, got %q", center.Code)
	}

	if _, found, err := service.GetCenterByCode(context.Background(), " pc-001 "); err != nil || !found {
		t.Fatalf("lookup by code should normalize, found=%v err=%v", found, err)
	}
}

func TestUpsertCandidateConstituencyScope(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.UpsertCandidate(context.Background(), "admin-1", CandidateInput{
		Name:         "A. Boateng",
		Category:     "president",
		Abbreviation: "npp",
		Constituency: "Ayawaso West",
	}); !errors.Is(err, domainerrors.ErrInvalidCandidate) {
		t.Fatalf("presidential candidates are national, got %v", err)
	}

	if _, err := service.UpsertCandidate(context.Background(), "admin-1", CandidateInput{
		Name:         "C. Addo",
		Category:     "mp",
		Abbreviation: "ndc",
	}); !errors.Is(err, domainerrors.ErrInvalidCandidate) {
		t.Fatalf("mp candidates need a constituency, got %v", err)
	}

	candidate, err := service.UpsertCandidate(context.Background(), "admin-1", CandidateInput{
		Name:         "A. Boateng",
		Party:        "Party One",
		Category:     "president",
		Abbreviation: "npp",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if candidate.Abbreviation != "NPP" {
		t.Fatalf("expected an uppercased abbreviation, got %q", candidate.Abbreviation)
	}
}

func TestUpsertCandidatePreservesCreatedAtOnUpdate(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.UpsertCandidate(context.Background(), "admin-1", CandidateInput{
		Name:         "A. Boateng",
		Party:        "Party One",
		Category:     "president",
		Abbreviation: "NPP",
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	updated, err := service.UpsertCandidate(context.Background(), "admin-1", CandidateInput{
		CandidateID:  created.CandidateID,
		Name:         "A. K. Boateng",
		Party:        "Party One",
		Category:     "president",
		Abbreviation: "NPP",
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("an update must keep the original creation time, got %v want %v", updated.CreatedAt, created.CreatedAt)
	}
	if updated.Name != "A. K. Boateng" {
		t.Fatalf("expected the updated name, got %q", updated.Name)
	}

	if _, err := service.UpsertCandidate(context.Background(), "admin-1", CandidateInput{
		CandidateID:  "cand-missing",
		Name:         "B. Owusu",
		Category:     "president",
		Abbreviation: "NDC",
	}); !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("an explicit unknown id must be rejected, got %v", err)
	}
}

type failingAgentLookupRepo struct {
	*memory.Store
	err error
}

func (r failingAgentLookupRepo) GetAgent(context.Context, string) (entities.FieldAgent, error) {
	return entities.FieldAgent{}, r.err
}

func TestAdminCheckPropagatesRepositoryFailures(t *testing.T) {
	service, store := newTestService(t)
	repoErr := errors.New("connection refused")
	service.Repo = failingAgentLookupRepo{Store: store, err: repoErr}

	_, err := service.UpsertCenter(context.Background(), "admin-1", CenterInput{
		Code:             "PC-001",
		Name:             "Unity Primary",
		RegisteredVoters: 1000,
	})
	if errors.Is(err, domainerrors.ErrActorNotAllowed) {
		t.Fatalf("a repository outage must not masquerade as a permission failure, got %v", err)
	}
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected the repository error to surface, got %v", err)
	}
}

func TestListCandidatesIgnoresConstituencyForPresident(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.UpsertCandidate(context.Background(), "admin-1", CandidateInput{
		Name:         "A. Boateng",
		Category:     "president",
		Abbreviation: "NPP",
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	candidates, err := service.ListCandidates(context.Background(), "president", "Ayawaso West")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("presidential listings must ignore the constituency filter, got %d", len(candidates))
	}
}
