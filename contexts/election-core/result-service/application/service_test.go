package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"tallyroom/contexts/election-core/result-service/adapters/memory"
	domainerrors "tallyroom/contexts/election-core/result-service/domain/errors"
	"tallyroom/contexts/election-core/result-service/domain/entities"
	"tallyroom/contexts/election-core/result-service/ports"
)

type recordingNotifier struct {
	created  []ports.ResultEvent
	changed  []ports.ResultEvent
	reviewed []ports.ResultEvent
}

func (n *recordingNotifier) ResultCreated(_ context.Context, event ports.ResultEvent) {
	n.created = append(n.created, event)
}

func (n *recordingNotifier) ResultStatusChanged(_ context.Context, event ports.ResultEvent) {
	n.changed = append(n.changed, event)
}

func (n *recordingNotifier) ResultReviewed(_ context.Context, event ports.ResultEvent) {
	n.reviewed = append(n.reviewed, event)
}

func newTestService(notifier ports.Notifier) (Service, *memory.Store) {
	store := memory.NewStore()
	store.SetCenter(ports.CenterProjection{
		CenterID:         "center-1",
		Code:             "PC-001",
		Name:             "Unity Primary School",
		RegisteredVoters: 1000,
		Active:           true,
	})
	store.SetActor(ports.ActorProjection{ActorID: "agent-1", Role: entities.RoleAgent, Approved: true})
	store.SetActor(ports.ActorProjection{ActorID: "reviewer-1", Role: entities.RoleReviewer, Approved: true})
	store.SetActor(ports.ActorProjection{ActorID: "admin-1", Role: entities.RoleAdmin, Approved: true})
	store.SetActor(ports.ActorProjection{ActorID: "pending-1", Role: entities.RoleAgent, Approved: false})

	return Service{
		Repo:     store,
		Centers:  store,
		Actors:   store,
		Notifier: notifier,
		Clock:    store,
		IDGen:    store,
	}, store
}

func submitPending(t *testing.T, service Service) entities.Result {
	t.Helper()
	result, err := service.SubmitResult(context.Background(), SubmitResultInput{
		CenterID:    "center-1",
		SubmittedBy: "agent-1",
		Votes: map[string]map[string]int{
			"president": {"cand-a": 400, "cand-b": 300},
		},
		InvalidVotes: 25,
		Channel:      "ussd",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return result
}

func TestSubmitResultRecomputesTotalsAndStaysPending(t *testing.T) {
	notifier := &recordingNotifier{}
	service, store := newTestService(notifier)

	result := submitPending(t, service)
	if result.Status != entities.StatusPending {
		t.Fatalf("expected pending, got %s (%s)", result.Status, result.FlaggedReason)
	}
	if result.TotalVotes != 725 {
		t.Fatalf("expected total 725, got %d", result.TotalVotes)
	}
	if len(notifier.created) != 1 || notifier.created[0].CenterName != "Unity Primary School" {
		t.Fatalf("expected one created event carrying center name, got %+v", notifier.created)
	}

	transitions, err := store.ListTransitions(context.Background(), result.ResultID)
	if err != nil {
		t.Fatalf("list transitions failed: %v", err)
	}
	if len(transitions) != 1 || transitions[0].Action != entities.ActionSubmit {
		t.Fatalf("expected a single submit transition, got %+v", transitions)
	}
}

func TestSubmitResultOverBoundsFlags(t *testing.T) {
	service, _ := newTestService(nil)

	result, err := service.SubmitResult(context.Background(), SubmitResultInput{
		CenterID:    "center-1",
		SubmittedBy: "agent-1",
		Votes: map[string]map[string]int{
			"president": {"cand-a": 1200},
		},
		Channel: "portal",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Status != entities.StatusFlagged {
		t.Fatalf("expected flagged, got %s", result.Status)
	}
	if !result.DocumentMismatch {
		t.Fatal("portal submission without documents must carry a document mismatch")
	}
}

func TestSubmitResultRejectsUnapprovedActor(t *testing.T) {
	service, _ := newTestService(nil)

	_, err := service.SubmitResult(context.Background(), SubmitResultInput{
		CenterID:    "center-1",
		SubmittedBy: "pending-1",
		Votes:       map[string]map[string]int{"president": {"cand-a": 10}},
		Channel:     "ussd",
	})
	if !errors.Is(err, domainerrors.ErrActorNotAllowed) {
		t.Fatalf("expected actor not allowed, got %v", err)
	}
}

func TestSubmitResultUnknownCategoryIsInvalid(t *testing.T) {
	service, _ := newTestService(nil)

	_, err := service.SubmitResult(context.Background(), SubmitResultInput{
		CenterID:    "center-1",
		SubmittedBy: "agent-1",
		Votes:       map[string]map[string]int{"senate": {"cand-a": 10}},
		Channel:     "ussd",
	})
	if !errors.Is(err, domainerrors.ErrInvalidSubmission) {
		t.Fatalf("expected invalid submission, got %v", err)
	}
}

func TestReviewApproveStampsVerifier(t *testing.T) {
	notifier := &recordingNotifier{}
	service, _ := newTestService(notifier)
	result := submitPending(t, service)

	approved, err := service.Review(context.Background(), "reviewer-1", ReviewInput{
		ResultID: result.ResultID,
		Action:   "approve",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if approved.Status != entities.StatusVerified {
		t.Fatalf("expected verified, got %s", approved.Status)
	}
	if approved.VerifiedBy != "reviewer-1" || approved.VerifiedAt == nil {
		t.Fatalf("expected verifier stamp, got %q %v", approved.VerifiedBy, approved.VerifiedAt)
	}
	if len(notifier.changed) != 1 || len(notifier.reviewed) != 1 {
		t.Fatalf("expected status-changed and reviewed events, got %d/%d", len(notifier.changed), len(notifier.reviewed))
	}
}

func TestReviewFlagCommentBecomesReason(t *testing.T) {
	service, _ := newTestService(nil)
	result := submitPending(t, service)

	flagged, err := service.Review(context.Background(), "reviewer-1", ReviewInput{
		ResultID: result.ResultID,
		Action:   "flag_for_further_review",
		Comment:  "tally sheet photo is illegible",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if flagged.Status != entities.StatusFlagged {
		t.Fatalf("expected flagged, got %s", flagged.Status)
	}
	if flagged.FlaggedReason != "tally sheet photo is illegible" {
		t.Fatalf("expected the comment as reason, got %q", flagged.FlaggedReason)
	}
}

func TestReviewUnknownActionRejectedBeforeLookup(t *testing.T) {
	service, _ := newTestService(nil)

	_, err := service.Review(context.Background(), "reviewer-1", ReviewInput{
		ResultID: "does-not-exist",
		Action:   "publish",
	})
	if !errors.Is(err, domainerrors.ErrInvalidAction) {
		t.Fatalf("expected invalid action, got %v", err)
	}
}

func TestEditFlaggedReturnsToPending(t *testing.T) {
	service, _ := newTestService(nil)
	result := submitPending(t, service)
	if _, err := service.Review(context.Background(), "reviewer-1", ReviewInput{
		ResultID: result.ResultID,
		Action:   "flag_for_further_review",
	}); err != nil {
		t.Fatalf("flag failed: %v", err)
	}

	edited, err := service.EditFlagged(context.Background(), "reviewer-1", EditInput{
		ResultID:     result.ResultID,
		Votes:        map[string]map[string]int{"president": {"cand-a": 500}},
		InvalidVotes: 10,
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if edited.Status != entities.StatusPending {
		t.Fatalf("expected pending after edit, got %s", edited.Status)
	}
	if edited.TotalVotes != 510 {
		t.Fatalf("expected recomputed total 510, got %d", edited.TotalVotes)
	}
}

func TestEditFlaggedStillOverBoundsReflags(t *testing.T) {
	service, _ := newTestService(nil)
	result := submitPending(t, service)
	if _, err := service.Review(context.Background(), "reviewer-1", ReviewInput{
		ResultID: result.ResultID,
		Action:   "flag_for_further_review",
	}); err != nil {
		t.Fatalf("flag failed: %v", err)
	}

	edited, err := service.EditFlagged(context.Background(), "reviewer-1", EditInput{
		ResultID: result.ResultID,
		Votes:    map[string]map[string]int{"president": {"cand-a": 2000}},
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if edited.Status != entities.StatusFlagged {
		t.Fatalf("an edit that still violates the bounds must re-flag, got %s", edited.Status)
	}
}

func TestEditRejectsNonFlaggedResult(t *testing.T) {
	service, _ := newTestService(nil)
	result := submitPending(t, service)

	_, err := service.EditFlagged(context.Background(), "reviewer-1", EditInput{
		ResultID: result.ResultID,
		Votes:    map[string]map[string]int{"president": {"cand-a": 500}},
	})
	if !errors.Is(err, domainerrors.ErrNotEditable) {
		t.Fatalf("expected not editable, got %v", err)
	}
}

func TestArchiveStaleIsAdminOnly(t *testing.T) {
	service, _ := newTestService(nil)
	submitPending(t, service)

	if _, err := service.ArchiveStale(context.Background(), "reviewer-1", time.Hour); !errors.Is(err, domainerrors.ErrActorNotAllowed) {
		t.Fatalf("expected actor not allowed for reviewer, got %v", err)
	}

	// Nothing is older than an hour yet, so the admin sweep archives zero.
	count, err := service.ArchiveStale(context.Background(), "admin-1", time.Hour)
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no stale results, archived %d", count)
	}
}

func TestListResultsValidatesStatusFilter(t *testing.T) {
	service, _ := newTestService(nil)

	if _, err := service.ListResults(context.Background(), ports.ResultFilter{Status: "bogus"}); !errors.Is(err, domainerrors.ErrInvalidSubmission) {
		t.Fatalf("expected invalid filter, got %v", err)
	}
}
