package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainerrors "tallyroom/contexts/election-core/result-service/domain/errors"
	"tallyroom/contexts/election-core/result-service/domain/entities"
	"tallyroom/contexts/election-core/result-service/domain/validation"
	"tallyroom/contexts/election-core/result-service/ports"
)

type Service struct {
	Repo     ports.Repository
	Centers  ports.CenterDirectory
	Actors   ports.ActorDirectory
	Notifier ports.Notifier
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

type DocumentInput struct {
	FileName  string
	SizeBytes int64
}

type SubmitResultInput struct {
	CenterID     string
	SubmittedBy  string
	Votes        map[string]map[string]int
	InvalidVotes int
	Channel      string
	Documents    []DocumentInput
}

// SubmitResult validates and persists one submission event. Totals are
// recomputed here regardless of anything the caller claims; the initial
// status comes straight out of the validation engine.
func (s Service) SubmitResult(ctx context.Context, input SubmitResultInput) (entities.Result, error) {
	channel, ok := entities.ParseChannel(input.Channel)
	if !ok {
		return entities.Result{}, domainerrors.ErrInvalidChannel
	}
	votes, err := votesFromInput(input.Votes)
	if err != nil {
		return entities.Result{}, err
	}
	if len(votes) == 0 || input.InvalidVotes < 0 {
		return entities.Result{}, domainerrors.ErrInvalidSubmission
	}

	submitter, err := s.resolveActor(ctx, input.SubmittedBy)
	if err != nil {
		return entities.Result{}, err
	}

	center, found, err := s.Centers.GetCenter(ctx, strings.TrimSpace(input.CenterID))
	if err != nil {
		return entities.Result{}, err
	}
	if !found {
		return entities.Result{}, domainerrors.ErrCenterNotFound
	}
	if !center.Active {
		return entities.Result{}, domainerrors.ErrCenterInactive
	}

	documents := make([]entities.DocumentRef, 0, len(input.Documents))
	for _, doc := range input.Documents {
		docID, err := s.IDGen.NewID(ctx)
		if err != nil {
			return entities.Result{}, err
		}
		documents = append(documents, entities.DocumentRef{
			DocumentID: docID,
			FileName:   strings.TrimSpace(doc.FileName),
			SizeBytes:  doc.SizeBytes,
		})
	}

	outcome := validation.Evaluate(validation.Submission{
		Votes:           votes,
		InvalidVotes:    input.InvalidVotes,
		Documents:       documents,
		ExpectDocuments: channel == entities.ChannelPortal,
	}, center.RegisteredVoters)

	resultID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Result{}, err
	}
	now := s.Clock.Now().UTC()
	result := entities.Result{
		ResultID:               resultID,
		CenterID:               center.CenterID,
		SubmittedBy:            submitter.ActorID,
		Votes:                  votes,
		InvalidVotes:           input.InvalidVotes,
		TotalVotes:             outcome.TotalVotes,
		Status:                 outcome.Status,
		FlaggedReason:          outcome.FlaggedReason,
		DocumentMismatch:       outcome.DocumentMismatch,
		DocumentMismatchReason: outcome.DocumentMismatchReason,
		Documents:              documents,
		Channel:                channel,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.Repo.SaveResult(ctx, result); err != nil {
		return entities.Result{}, err
	}
	if err := s.appendTransition(ctx, result, entities.ActionSubmit, "", result.Status, submitter.ActorID, result.FlaggedReason, now); err != nil {
		return entities.Result{}, err
	}

	ResolveLogger(s.Logger).Info("result submitted",
		"event", "result_submitted",
		"module", "election-core/result-service",
		"layer", "application",
		"result_id", result.ResultID,
		"center_id", result.CenterID,
		"channel", string(result.Channel),
		"status", string(result.Status),
		"total_votes", result.TotalVotes,
		"document_mismatch", result.DocumentMismatch,
	)
	if s.Notifier != nil {
		s.Notifier.ResultCreated(ctx, s.resultEvent(result, center.Name, entities.ActionSubmit, "", submitter.ActorID, now))
	}
	return result, nil
}

type ReviewInput struct {
	ResultID string
	Action   string
	Comment  string
}

// Review drives approve/reject/flag_for_further_review. Anything else is
// rejected before any lookup happens.
func (s Service) Review(ctx context.Context, actorID string, input ReviewInput) (entities.Result, error) {
	action, ok := entities.ParseReviewAction(input.Action)
	if !ok {
		return entities.Result{}, domainerrors.ErrInvalidAction
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return entities.Result{}, err
	}
	result, err := s.Repo.GetResult(ctx, strings.TrimSpace(input.ResultID))
	if err != nil {
		return entities.Result{}, err
	}

	next, err := entities.NextStatus(result.Status, action, actor.Role)
	if err != nil {
		return entities.Result{}, err
	}

	now := s.Clock.Now().UTC()
	previous := result.Status
	result.Status = next
	result.UpdatedAt = now
	if next == entities.StatusVerified {
		result.VerifiedBy = actor.ActorID
		verifiedAt := now
		result.VerifiedAt = &verifiedAt
	}
	if action == entities.ActionFlag && strings.TrimSpace(input.Comment) != "" {
		result.FlaggedReason = strings.TrimSpace(input.Comment)
	}

	if err := s.Repo.SaveResult(ctx, result); err != nil {
		return entities.Result{}, err
	}
	if err := s.appendTransition(ctx, result, action, previous, next, actor.ActorID, input.Comment, now); err != nil {
		return entities.Result{}, err
	}

	ResolveLogger(s.Logger).Info("result reviewed",
		"event", "result_reviewed",
		"module", "election-core/result-service",
		"layer", "application",
		"result_id", result.ResultID,
		"action", string(action),
		"from_status", string(previous),
		"to_status", string(next),
		"actor_id", actor.ActorID,
	)
	if s.Notifier != nil {
		event := s.resultEvent(result, "", action, previous, actor.ActorID, now)
		s.Notifier.ResultStatusChanged(ctx, event)
		s.Notifier.ResultReviewed(ctx, event)
	}
	return result, nil
}

type EditInput struct {
	ResultID     string
	Votes        map[string]map[string]int
	InvalidVotes int
	Documents    []DocumentInput
	Comment      string
}

// EditFlagged replaces a flagged result's tallies and re-runs validation.
// The record lands back in pending (or re-flags itself on still-bad
// numbers); it can never jump straight to verified.
func (s Service) EditFlagged(ctx context.Context, actorID string, input EditInput) (entities.Result, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return entities.Result{}, err
	}
	result, err := s.Repo.GetResult(ctx, strings.TrimSpace(input.ResultID))
	if err != nil {
		return entities.Result{}, err
	}
	if result.Status != entities.StatusFlagged {
		return entities.Result{}, domainerrors.ErrNotEditable
	}
	if _, err := entities.NextStatus(result.Status, entities.ActionEdit, actor.Role); err != nil {
		return entities.Result{}, err
	}

	votes, err := votesFromInput(input.Votes)
	if err != nil {
		return entities.Result{}, err
	}
	if len(votes) == 0 || input.InvalidVotes < 0 {
		return entities.Result{}, domainerrors.ErrInvalidSubmission
	}

	center, found, err := s.Centers.GetCenter(ctx, result.CenterID)
	if err != nil {
		return entities.Result{}, err
	}
	if !found {
		return entities.Result{}, domainerrors.ErrCenterNotFound
	}

	documents := result.Documents
	if len(input.Documents) > 0 {
		documents = make([]entities.DocumentRef, 0, len(input.Documents))
		for _, doc := range input.Documents {
			docID, err := s.IDGen.NewID(ctx)
			if err != nil {
				return entities.Result{}, err
			}
			documents = append(documents, entities.DocumentRef{
				DocumentID: docID,
				FileName:   strings.TrimSpace(doc.FileName),
				SizeBytes:  doc.SizeBytes,
			})
		}
	}

	outcome := validation.Evaluate(validation.Submission{
		Votes:           votes,
		InvalidVotes:    input.InvalidVotes,
		Documents:       documents,
		ExpectDocuments: result.Channel == entities.ChannelPortal,
	}, center.RegisteredVoters)

	now := s.Clock.Now().UTC()
	previous := result.Status
	result.Votes = votes
	result.InvalidVotes = input.InvalidVotes
	result.TotalVotes = outcome.TotalVotes
	result.Status = outcome.Status
	result.FlaggedReason = outcome.FlaggedReason
	result.DocumentMismatch = outcome.DocumentMismatch
	result.DocumentMismatchReason = outcome.DocumentMismatchReason
	result.Documents = documents
	result.UpdatedAt = now

	if err := s.Repo.SaveResult(ctx, result); err != nil {
		return entities.Result{}, err
	}
	if err := s.appendTransition(ctx, result, entities.ActionEdit, previous, result.Status, actor.ActorID, input.Comment, now); err != nil {
		return entities.Result{}, err
	}

	ResolveLogger(s.Logger).Info("flagged result edited",
		"event", "result_edited",
		"module", "election-core/result-service",
		"layer", "application",
		"result_id", result.ResultID,
		"to_status", string(result.Status),
		"actor_id", actor.ActorID,
	)
	if s.Notifier != nil {
		s.Notifier.ResultStatusChanged(ctx, s.resultEvent(result, center.Name, entities.ActionEdit, previous, actor.ActorID, now))
	}
	return result, nil
}

// ArchiveStale sweeps every non-archived result older than the cutoff into
// archived. Admin only, batch operation.
func (s Service) ArchiveStale(ctx context.Context, actorID string, olderThan time.Duration) (int, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return 0, err
	}
	if _, err := entities.NextStatus(entities.StatusVerified, entities.ActionArchive, actor.Role); err != nil {
		return 0, err
	}

	now := s.Clock.Now().UTC()
	cutoff := now.Add(-olderThan)
	stale, err := s.Repo.ListStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, result := range stale {
		if result.Status == entities.StatusArchived {
			continue
		}
		previous := result.Status
		result.Status = entities.StatusArchived
		result.UpdatedAt = now
		if err := s.Repo.SaveResult(ctx, result); err != nil {
			return archived, err
		}
		if err := s.appendTransition(ctx, result, entities.ActionArchive, previous, entities.StatusArchived, actor.ActorID, "age-based sweep", now); err != nil {
			return archived, err
		}
		archived++
		if s.Notifier != nil {
			s.Notifier.ResultStatusChanged(ctx, s.resultEvent(result, "", entities.ActionArchive, previous, actor.ActorID, now))
		}
	}
	if archived > 0 {
		ResolveLogger(s.Logger).Info("stale results archived",
			"event", "results_archived",
			"module", "election-core/result-service",
			"layer", "application",
			"count", archived,
			"cutoff", cutoff,
			"actor_id", actor.ActorID,
		)
	}
	return archived, nil
}

func (s Service) GetResult(ctx context.Context, resultID string) (entities.Result, error) {
	return s.Repo.GetResult(ctx, strings.TrimSpace(resultID))
}

func (s Service) ListResults(ctx context.Context, filter ports.ResultFilter) ([]entities.Result, error) {
	filter.Status = strings.TrimSpace(strings.ToLower(filter.Status))
	if filter.Status != "" {
		switch entities.Status(filter.Status) {
		case entities.StatusPending, entities.StatusFlagged, entities.StatusRejected,
			entities.StatusVerified, entities.StatusArchived:
		default:
			return nil, domainerrors.ErrInvalidSubmission
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Repo.ListResults(ctx, filter)
}

func (s Service) ListTransitions(ctx context.Context, resultID string) ([]entities.Transition, error) {
	return s.Repo.ListTransitions(ctx, strings.TrimSpace(resultID))
}

func (s Service) resolveActor(ctx context.Context, actorID string) (ports.ActorProjection, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ports.ActorProjection{}, domainerrors.ErrActorNotAllowed
	}
	actor, found, err := s.Actors.GetActor(ctx, actorID)
	if err != nil {
		return ports.ActorProjection{}, err
	}
	if !found || !actor.Approved {
		return ports.ActorProjection{}, domainerrors.ErrActorNotAllowed
	}
	return actor, nil
}

func (s Service) appendTransition(
	ctx context.Context,
	result entities.Result,
	action entities.Action,
	from entities.Status,
	to entities.Status,
	actorID string,
	comment string,
	occurredAt time.Time,
) error {
	transitionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return s.Repo.AppendTransition(ctx, entities.Transition{
		TransitionID: transitionID,
		ResultID:     result.ResultID,
		Action:       action,
		FromStatus:   from,
		ToStatus:     to,
		ActorID:      actorID,
		Comment:      strings.TrimSpace(comment),
		OccurredAt:   occurredAt,
	})
}

func (s Service) resultEvent(
	result entities.Result,
	centerName string,
	action entities.Action,
	previous entities.Status,
	actorID string,
	occurredAt time.Time,
) ports.ResultEvent {
	return ports.ResultEvent{
		ResultID:       result.ResultID,
		CenterID:       result.CenterID,
		CenterName:     centerName,
		Status:         string(result.Status),
		PreviousStatus: string(previous),
		Action:         string(action),
		ActorID:        actorID,
		Channel:        string(result.Channel),
		TotalVotes:     result.TotalVotes,
		OccurredAt:     occurredAt,
	}
}

func votesFromInput(raw map[string]map[string]int) (map[entities.Category]map[string]int, error) {
	votes := make(map[entities.Category]map[string]int, len(raw))
	for rawCategory, counts := range raw {
		category, ok := entities.ParseCategory(rawCategory)
		if !ok {
			return nil, domainerrors.ErrInvalidSubmission
		}
		if len(counts) == 0 {
			continue
		}
		byCandidate := make(map[string]int, len(counts))
		for candidateID, count := range counts {
			candidateID = strings.TrimSpace(candidateID)
			if candidateID == "" || count < 0 {
				return nil, domainerrors.ErrInvalidSubmission
			}
			byCandidate[candidateID] = count
		}
		votes[category] = byCandidate
	}
	return votes, nil
}
