package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tallyroom/contexts/field-intake/ussd-service/adapters/memory"
	"tallyroom/contexts/field-intake/ussd-service/domain/entities"
	"tallyroom/contexts/field-intake/ussd-service/ports"
)

type fakeDirectory struct {
	agents     map[string]ports.AgentView
	centers    map[string]ports.CenterView
	candidates map[string][]ports.CandidateView
	registered []string
}

func (d *fakeDirectory) AgentByPhone(_ context.Context, phone string) (ports.AgentView, bool, error) {
	agent, ok := d.agents[phone]
	return agent, ok, nil
}

func (d *fakeDirectory) RegisterAgent(_ context.Context, phone, firstName, lastName string) (ports.AgentView, error) {
	d.registered = append(d.registered, phone)
	return ports.AgentView{AgentID: "agent-new", FirstName: firstName, LastName: lastName, Role: "agent"}, nil
}

func (d *fakeDirectory) CenterByCode(_ context.Context, code string) (ports.CenterView, bool, error) {
	center, ok := d.centers[code]
	return center, ok, nil
}

func (d *fakeDirectory) CandidatesByCategory(_ context.Context, category, _ string) ([]ports.CandidateView, error) {
	return d.candidates[category], nil
}

type fakeResults struct {
	submissions []ports.SubmissionInput
	views       []ports.SubmissionView
}

func (r *fakeResults) SubmitCategoryResult(_ context.Context, input ports.SubmissionInput) (ports.SubmissionView, error) {
	r.submissions = append(r.submissions, input)
	return ports.SubmissionView{ResultID: "res-1", Status: "pending", TotalVotes: 725}, nil
}

func (r *fakeResults) AgentSubmissions(_ context.Context, _ string) ([]ports.SubmissionView, error) {
	return r.views, nil
}

type adjustableClock struct {
	now time.Time
}

func (c *adjustableClock) Now() time.Time { return c.now }

type failingSaveStore struct {
	*memory.Store
	fail bool
}

func (s *failingSaveStore) SaveSession(ctx context.Context, session entities.Session) error {
	if s.fail {
		return errors.New("connection reset")
	}
	return s.Store.SaveSession(ctx, session)
}

func newTestEngine() (Engine, *fakeDirectory, *fakeResults, *adjustableClock) {
	directory := &fakeDirectory{
		agents: map[string]ports.AgentView{
			"233200000001": {AgentID: "agent-1", FirstName: "Ama", LastName: "Mensah", Role: "agent", Approved: true},
			"233200000002": {AgentID: "agent-2", FirstName: "Kojo", LastName: "Owusu", Role: "agent", Approved: false},
		},
		centers: map[string]ports.CenterView{
			"PC-001": {CenterID: "center-1", Code: "PC-001", Name: "Unity Primary", Constituency: "Ayawaso West", Active: true},
			"PC-999": {CenterID: "center-9", Code: "PC-999", Name: "Old Depot", Active: false},
		},
		candidates: map[string][]ports.CandidateView{
			"president": {
				{CandidateID: "cand-a", Name: "A. Boateng", Party: "Party One", Abbreviation: "NPP"},
				{CandidateID: "cand-b", Name: "B. Quartey", Party: "Party Two", Abbreviation: "NDC"},
			},
		},
	}
	results := &fakeResults{}
	clock := &adjustableClock{now: time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)}
	engine := Engine{
		Sessions:  memory.NewStore(),
		Directory: directory,
		Results:   results,
		Clock:     clock,
	}
	return engine, directory, results, clock
}

func turn(t *testing.T, engine Engine, sessionID, phone, text string) TurnOutput {
	t.Helper()
	out, err := engine.HandleTurn(context.Background(), TurnInput{
		SessionID:   sessionID,
		PhoneNumber: phone,
		Text:        text,
	})
	if err != nil {
		t.Fatalf("turn %q failed: %v", text, err)
	}
	return out
}

func TestFreshDialShowsMainMenu(t *testing.T) {
	engine, _, _, _ := newTestEngine()

	out := turn(t, engine, "sess-1", "233200000001", "")
	if !out.Continue {
		t.Fatal("the menu turn must keep the session open")
	}
	if !strings.Contains(out.Prompt, "1. Submit results") {
		t.Fatalf("expected the menu, got %q", out.Prompt)
	}
}

func TestSubmitFlowEndToEnd(t *testing.T) {
	engine, _, results, _ := newTestEngine()
	const phone = "233200000001"

	turn(t, engine, "sess-1", phone, "")
	out := turn(t, engine, "sess-1", phone, "1")
	if !strings.Contains(out.Prompt, "polling center code") {
		t.Fatalf("expected the center prompt, got %q", out.Prompt)
	}

	out = turn(t, engine, "sess-1", phone, "PC-001")
	if !strings.Contains(out.Prompt, "Unity Primary") || !strings.Contains(out.Prompt, "1. President") {
		t.Fatalf("expected the category menu, got %q", out.Prompt)
	}

	out = turn(t, engine, "sess-1", phone, "1")
	if !strings.Contains(out.Prompt, "NPP") || !strings.Contains(out.Prompt, "NDC") {
		t.Fatalf("expected the candidate listing, got %q", out.Prompt)
	}

	out = turn(t, engine, "sess-1", phone, "NPP=400,NDC=300")
	if !strings.Contains(out.Prompt, "invalid ballots") {
		t.Fatalf("expected the invalid ballots prompt, got %q", out.Prompt)
	}

	out = turn(t, engine, "sess-1", phone, "25")
	if !strings.Contains(out.Prompt, "recorded with status pending") {
		t.Fatalf("expected the confirmation, got %q", out.Prompt)
	}
	if !strings.Contains(out.Prompt, "President (sent)") {
		t.Fatalf("the category menu should mark the reported category, got %q", out.Prompt)
	}

	if len(results.submissions) != 1 {
		t.Fatalf("expected one submission, got %d", len(results.submissions))
	}
	sub := results.submissions[0]
	if sub.CenterID != "center-1" || sub.AgentID != "agent-1" || sub.Category != "president" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.Votes["cand-a"] != 400 || sub.Votes["cand-b"] != 300 || sub.InvalidVotes != 25 {
		t.Fatalf("unexpected counts %+v", sub)
	}
}

func TestMalformedVoteLineReprompts(t *testing.T) {
	engine, _, results, _ := newTestEngine()
	const phone = "233200000001"

	turn(t, engine, "sess-1", phone, "")
	turn(t, engine, "sess-1", phone, "1")
	turn(t, engine, "sess-1", phone, "PC-001")
	turn(t, engine, "sess-1", phone, "1")

	out := turn(t, engine, "sess-1", phone, "foo=bar")
	if !strings.Contains(out.Prompt, "Could not read any counts") {
		t.Fatalf("expected a re-prompt, got %q", out.Prompt)
	}
	if len(results.submissions) != 0 {
		t.Fatal("a malformed line must not submit anything")
	}

	// The session must still be parked on the votes step.
	out = turn(t, engine, "sess-1", phone, "NPP=400")
	if !strings.Contains(out.Prompt, "invalid ballots") {
		t.Fatalf("expected to advance after a valid line, got %q", out.Prompt)
	}
}

func TestAggregatorCumulativeTextUsesLastSegment(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	const phone = "233200000001"

	turn(t, engine, "sess-1", phone, "")
	turn(t, engine, "sess-1", phone, "1")
	out := turn(t, engine, "sess-1", phone, "1*PC-001")
	if !strings.Contains(out.Prompt, "Select a category") {
		t.Fatalf("expected only the newest segment to be read, got %q", out.Prompt)
	}
}

func TestInactiveCenterReprompts(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	const phone = "233200000001"

	turn(t, engine, "sess-1", phone, "")
	turn(t, engine, "sess-1", phone, "1")
	out := turn(t, engine, "sess-1", phone, "PC-999")
	if !strings.Contains(out.Prompt, "not active") {
		t.Fatalf("expected the inactive notice, got %q", out.Prompt)
	}
	if !out.Continue {
		t.Fatal("an inactive center keeps the session open for another code")
	}
}

func TestExitClosesSession(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	const phone = "233200000001"

	turn(t, engine, "sess-1", phone, "")
	out := turn(t, engine, "sess-1", phone, "0")
	if out.Continue {
		t.Fatal("exit must end the session")
	}

	// A new turn on the same session id starts over.
	out = turn(t, engine, "sess-1", phone, "anything")
	if !strings.Contains(out.Prompt, "1. Submit results") {
		t.Fatalf("expected a fresh menu, got %q", out.Prompt)
	}
}

func TestExpiredSessionStartsFresh(t *testing.T) {
	engine, _, _, clock := newTestEngine()
	const phone = "233200000001"

	turn(t, engine, "sess-1", phone, "")
	turn(t, engine, "sess-1", phone, "1")

	clock.now = clock.now.Add(11 * time.Minute)
	out := turn(t, engine, "sess-1", phone, "PC-001")
	if !strings.Contains(out.Prompt, "1. Submit results") {
		t.Fatalf("expected the lapsed session to restart at the menu, got %q", out.Prompt)
	}
}

func TestUnknownPhoneRedirectsToRegistration(t *testing.T) {
	engine, directory, _, _ := newTestEngine()
	const phone = "233209999999"

	turn(t, engine, "sess-1", phone, "")
	out := turn(t, engine, "sess-1", phone, "1")
	if !strings.Contains(out.Prompt, "not registered") {
		t.Fatalf("expected the registration redirect, got %q", out.Prompt)
	}

	turn(t, engine, "sess-1", phone, "Akosua")
	out = turn(t, engine, "sess-1", phone, "Asante")
	if out.Continue {
		t.Fatal("registration confirmation ends the session")
	}
	if !strings.Contains(out.Prompt, "pending approval") {
		t.Fatalf("expected the pending-approval notice, got %q", out.Prompt)
	}
	if len(directory.registered) != 1 || directory.registered[0] != phone {
		t.Fatalf("expected one registration for %s, got %v", phone, directory.registered)
	}
}

func TestUnapprovedAgentCannotEnterSubmitBranch(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	const phone = "233200000002"

	turn(t, engine, "sess-1", phone, "")
	out := turn(t, engine, "sess-1", phone, "1")
	if out.Continue {
		t.Fatal("an unapproved agent gets a terminal notice")
	}
	if !strings.Contains(out.Prompt, "awaiting approval") {
		t.Fatalf("expected the approval notice, got %q", out.Prompt)
	}
}

func TestSaveFailureReemitsPromptWithoutAdvancing(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	store := &failingSaveStore{Store: memory.NewStore()}
	engine.Sessions = store
	const phone = "233200000001"

	turn(t, engine, "sess-1", phone, "")
	turn(t, engine, "sess-1", phone, "1")

	store.fail = true
	out := turn(t, engine, "sess-1", phone, "PC-001")
	if !strings.Contains(out.Prompt, "system error") {
		t.Fatalf("expected the degraded-turn notice, got %q", out.Prompt)
	}
	if !strings.Contains(out.Prompt, "polling center code") {
		t.Fatalf("expected the current prompt to be re-emitted, got %q", out.Prompt)
	}
	if !out.Continue {
		t.Fatal("a degraded turn keeps the session open")
	}

	// Once the store recovers, the retried input lands on the same step.
	store.fail = false
	out = turn(t, engine, "sess-1", phone, "PC-001")
	if strings.Contains(out.Prompt, "system error") {
		t.Fatalf("a healthy turn must not carry the error notice, got %q", out.Prompt)
	}
	if !strings.Contains(out.Prompt, "Select a category") {
		t.Fatalf("expected the retry to advance, got %q", out.Prompt)
	}
}

func TestMissingSessionIDIsAnError(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	if _, err := engine.HandleTurn(context.Background(), TurnInput{PhoneNumber: "233200000001"}); err == nil {
		t.Fatal("expected an error for a missing session id")
	}
}
