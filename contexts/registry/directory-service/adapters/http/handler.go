package httpadapter

import (
	"context"
	"log/slog"

	"tallyroom/contexts/registry/directory-service/application"
	"tallyroom/contexts/registry/directory-service/domain/entities"
	httptransport "tallyroom/contexts/registry/directory-service/transport/http"
)

type Handler struct {
	Directory application.Service
	Logger    *slog.Logger
}

func (h Handler) RegisterAgentHandler(ctx context.Context, req httptransport.RegisterAgentRequest) (httptransport.AgentResponse, error) {
	agent, err := h.Directory.RegisterAgent(ctx, application.RegisterAgentInput{
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
	})
	if err != nil {
		return httptransport.AgentResponse{}, err
	}
	return agentResponse(agent), nil
}

func (h Handler) ApproveAgentHandler(
	ctx context.Context,
	actorID string,
	agentID string,
	req httptransport.ApproveAgentRequest,
) (httptransport.AgentResponse, error) {
	agent, err := h.Directory.ApproveAgent(ctx, actorID, application.ApproveAgentInput{
		AgentID: agentID,
		Role:    req.Role,
	})
	if err != nil {
		return httptransport.AgentResponse{}, err
	}
	return agentResponse(agent), nil
}

func (h Handler) UpsertCenterHandler(
	ctx context.Context,
	actorID string,
	req httptransport.UpsertCenterRequest,
) (httptransport.CenterResponse, error) {
	center, err := h.Directory.UpsertCenter(ctx, actorID, application.CenterInput{
		CenterID:         req.CenterID,
		Code:             req.Code,
		Name:             req.Name,
		Constituency:     req.Constituency,
		Ward:             req.Ward,
		RegisteredVoters: req.RegisteredVoters,
		Active:           req.Active,
	})
	if err != nil {
		return httptransport.CenterResponse{}, err
	}
	return centerResponse(center), nil
}

func (h Handler) ListCentersHandler(ctx context.Context) (httptransport.CenterListResponse, error) {
	centers, err := h.Directory.ListCenters(ctx)
	if err != nil {
		return httptransport.CenterListResponse{}, err
	}
	items := make([]httptransport.CenterResponse, 0, len(centers))
	for _, center := range centers {
		items = append(items, centerResponse(center))
	}
	return httptransport.CenterListResponse{Items: items}, nil
}

func (h Handler) UpsertCandidateHandler(
	ctx context.Context,
	actorID string,
	req httptransport.UpsertCandidateRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Directory.UpsertCandidate(ctx, actorID, application.CandidateInput{
		CandidateID:  req.CandidateID,
		Name:         req.Name,
		Party:        req.Party,
		Category:     req.Category,
		Abbreviation: req.Abbreviation,
		Constituency: req.Constituency,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return candidateResponse(candidate), nil
}

func (h Handler) ListCandidatesHandler(
	ctx context.Context,
	category string,
	constituency string,
) (httptransport.CandidateListResponse, error) {
	candidates, err := h.Directory.ListCandidates(ctx, category, constituency)
	if err != nil {
		return httptransport.CandidateListResponse{}, err
	}
	items := make([]httptransport.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, candidateResponse(candidate))
	}
	return httptransport.CandidateListResponse{Items: items}, nil
}

func agentResponse(agent entities.FieldAgent) httptransport.AgentResponse {
	return httptransport.AgentResponse{
		AgentID:     agent.AgentID,
		PhoneNumber: agent.PhoneNumber,
		FirstName:   agent.FirstName,
		LastName:    agent.LastName,
		Role:        string(agent.Role),
		Approved:    agent.Approved,
	}
}

func centerResponse(center entities.PollingCenter) httptransport.CenterResponse {
	return httptransport.CenterResponse{
		CenterID:         center.CenterID,
		Code:             center.Code,
		Name:             center.Name,
		Constituency:     center.Constituency,
		Ward:             center.Ward,
		RegisteredVoters: center.RegisteredVoters,
		Active:           center.Active,
	}
}

func candidateResponse(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID:  candidate.CandidateID,
		Name:         candidate.Name,
		Party:        candidate.Party,
		Category:     string(candidate.Category),
		Abbreviation: candidate.Abbreviation,
		Constituency: candidate.Constituency,
	}
}
