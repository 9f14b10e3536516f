package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"tallyroom/contexts/election-core/result-service/application"
	"tallyroom/contexts/election-core/result-service/domain/entities"
	"tallyroom/contexts/election-core/result-service/ports"
	httptransport "tallyroom/contexts/election-core/result-service/transport/http"
)

type Handler struct {
	Results application.Service
	Logger  *slog.Logger
}

func (h Handler) SubmitResultHandler(
	ctx context.Context,
	userID string,
	req httptransport.SubmitResultRequest,
) (httptransport.ResultResponse, error) {
	result, err := h.Results.SubmitResult(ctx, application.SubmitResultInput{
		CenterID:     req.CenterID,
		SubmittedBy:  userID,
		Votes:        req.Votes,
		InvalidVotes: req.InvalidVotes,
		Channel:      req.Channel,
		Documents:    documentsFromPayload(req.Documents),
	})
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return resultResponse(result), nil
}

func (h Handler) ReviewResultHandler(
	ctx context.Context,
	actorID string,
	resultID string,
	req httptransport.ReviewResultRequest,
) (httptransport.ResultResponse, error) {
	result, err := h.Results.Review(ctx, actorID, application.ReviewInput{
		ResultID: resultID,
		Action:   req.Action,
		Comment:  req.Comment,
	})
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return resultResponse(result), nil
}

func (h Handler) EditResultHandler(
	ctx context.Context,
	actorID string,
	resultID string,
	req httptransport.EditResultRequest,
) (httptransport.ResultResponse, error) {
	result, err := h.Results.EditFlagged(ctx, actorID, application.EditInput{
		ResultID:     resultID,
		Votes:        req.Votes,
		InvalidVotes: req.InvalidVotes,
		Documents:    documentsFromPayload(req.Documents),
		Comment:      req.Comment,
	})
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return resultResponse(result), nil
}

func (h Handler) ArchiveHandler(
	ctx context.Context,
	actorID string,
	req httptransport.ArchiveRequest,
) (httptransport.ArchiveResponse, error) {
	olderThan := time.Duration(req.OlderThanHours) * time.Hour
	if olderThan <= 0 {
		olderThan = 30 * 24 * time.Hour
	}
	archived, err := h.Results.ArchiveStale(ctx, actorID, olderThan)
	if err != nil {
		return httptransport.ArchiveResponse{}, err
	}
	return httptransport.ArchiveResponse{Archived: archived}, nil
}

func (h Handler) GetResultHandler(ctx context.Context, resultID string) (httptransport.ResultResponse, error) {
	result, err := h.Results.GetResult(ctx, resultID)
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return resultResponse(result), nil
}

func (h Handler) ListResultsHandler(
	ctx context.Context,
	filter ports.ResultFilter,
) (httptransport.ResultListResponse, error) {
	results, err := h.Results.ListResults(ctx, filter)
	if err != nil {
		return httptransport.ResultListResponse{}, err
	}
	items := make([]httptransport.ResultResponse, 0, len(results))
	for _, result := range results {
		items = append(items, resultResponse(result))
	}
	return httptransport.ResultListResponse{Items: items}, nil
}

func (h Handler) ListTransitionsHandler(ctx context.Context, resultID string) (httptransport.TransitionListResponse, error) {
	transitions, err := h.Results.ListTransitions(ctx, resultID)
	if err != nil {
		return httptransport.TransitionListResponse{}, err
	}
	items := make([]httptransport.TransitionResponse, 0, len(transitions))
	for _, transition := range transitions {
		items = append(items, httptransport.TransitionResponse{
			TransitionID: transition.TransitionID,
			Action:       string(transition.Action),
			FromStatus:   string(transition.FromStatus),
			ToStatus:     string(transition.ToStatus),
			ActorID:      transition.ActorID,
			Comment:      transition.Comment,
			OccurredAt:   transition.OccurredAt,
		})
	}
	return httptransport.TransitionListResponse{
		ResultID: resultID,
		Items:    items,
	}, nil
}

func documentsFromPayload(payloads []httptransport.DocumentPayload) []application.DocumentInput {
	documents := make([]application.DocumentInput, 0, len(payloads))
	for _, payload := range payloads {
		documents = append(documents, application.DocumentInput{
			FileName:  payload.FileName,
			SizeBytes: payload.SizeBytes,
		})
	}
	return documents
}

func resultResponse(result entities.Result) httptransport.ResultResponse {
	votes := make(map[string]map[string]int, len(result.Votes))
	for category, counts := range result.Votes {
		byCandidate := make(map[string]int, len(counts))
		for candidateID, count := range counts {
			byCandidate[candidateID] = count
		}
		votes[string(category)] = byCandidate
	}
	return httptransport.ResultResponse{
		ResultID:               result.ResultID,
		CenterID:               result.CenterID,
		SubmittedBy:            result.SubmittedBy,
		Votes:                  votes,
		InvalidVotes:           result.InvalidVotes,
		TotalVotes:             result.TotalVotes,
		Status:                 string(result.Status),
		FlaggedReason:          result.FlaggedReason,
		DocumentMismatch:       result.DocumentMismatch,
		DocumentMismatchReason: result.DocumentMismatchReason,
		Channel:                string(result.Channel),
		VerifiedBy:             result.VerifiedBy,
		VerifiedAt:             result.VerifiedAt,
		CreatedAt:              result.CreatedAt,
		UpdatedAt:              result.UpdatedAt,
	}
}
