// Package localadapter bridges the USSD dialogue to the registry and
// election-core application services when all modules run in one process.
package localadapter

import (
	"context"
	"errors"

	resultapplication "tallyroom/contexts/election-core/result-service/application"
	resultports "tallyroom/contexts/election-core/result-service/ports"
	ussderrors "tallyroom/contexts/field-intake/ussd-service/domain/errors"
	"tallyroom/contexts/field-intake/ussd-service/ports"
	directoryapplication "tallyroom/contexts/registry/directory-service/application"
	directoryerrors "tallyroom/contexts/registry/directory-service/domain/errors"
)

type DirectoryClient struct {
	Directory directoryapplication.Service
}

func (c DirectoryClient) AgentByPhone(ctx context.Context, phoneNumber string) (ports.AgentView, bool, error) {
	agent, found, err := c.Directory.AgentByPhone(ctx, phoneNumber)
	if err != nil || !found {
		return ports.AgentView{}, false, err
	}
	return ports.AgentView{
		AgentID:   agent.AgentID,
		FirstName: agent.FirstName,
		LastName:  agent.LastName,
		Role:      string(agent.Role),
		Approved:  agent.Approved,
	}, true, nil
}

func (c DirectoryClient) RegisterAgent(ctx context.Context, phoneNumber, firstName, lastName string) (ports.AgentView, error) {
	agent, err := c.Directory.RegisterAgent(ctx, directoryapplication.RegisterAgentInput{
		PhoneNumber: phoneNumber,
		FirstName:   firstName,
		LastName:    lastName,
	})
	if err != nil {
		if errors.Is(err, directoryerrors.ErrPhoneAlreadyRegistered) {
			return ports.AgentView{}, ussderrors.ErrPhoneRegistered
		}
		return ports.AgentView{}, err
	}
	return ports.AgentView{
		AgentID:   agent.AgentID,
		FirstName: agent.FirstName,
		LastName:  agent.LastName,
		Role:      string(agent.Role),
		Approved:  agent.Approved,
	}, nil
}

func (c DirectoryClient) CenterByCode(ctx context.Context, code string) (ports.CenterView, bool, error) {
	center, found, err := c.Directory.GetCenterByCode(ctx, code)
	if err != nil || !found {
		return ports.CenterView{}, false, err
	}
	return ports.CenterView{
		CenterID:     center.CenterID,
		Code:         center.Code,
		Name:         center.Name,
		Constituency: center.Constituency,
		Active:       center.Active,
	}, true, nil
}

func (c DirectoryClient) CandidatesByCategory(ctx context.Context, category, constituency string) ([]ports.CandidateView, error) {
	candidates, err := c.Directory.ListCandidates(ctx, category, constituency)
	if err != nil {
		return nil, err
	}
	views := make([]ports.CandidateView, 0, len(candidates))
	for _, candidate := range candidates {
		views = append(views, ports.CandidateView{
			CandidateID:  candidate.CandidateID,
			Name:         candidate.Name,
			Party:        candidate.Party,
			Abbreviation: candidate.Abbreviation,
		})
	}
	return views, nil
}

type ResultClient struct {
	Results resultapplication.Service
}

func (c ResultClient) SubmitCategoryResult(ctx context.Context, input ports.SubmissionInput) (ports.SubmissionView, error) {
	result, err := c.Results.SubmitResult(ctx, resultapplication.SubmitResultInput{
		CenterID:     input.CenterID,
		SubmittedBy:  input.AgentID,
		Votes:        map[string]map[string]int{input.Category: input.Votes},
		InvalidVotes: input.InvalidVotes,
		Channel:      "ussd",
	})
	if err != nil {
		return ports.SubmissionView{}, err
	}
	return ports.SubmissionView{
		ResultID:   result.ResultID,
		Status:     string(result.Status),
		TotalVotes: result.TotalVotes,
		CreatedAt:  result.CreatedAt,
	}, nil
}

func (c ResultClient) AgentSubmissions(ctx context.Context, agentID string) ([]ports.SubmissionView, error) {
	results, err := c.Results.ListResults(ctx, resultports.ResultFilter{
		SubmittedBy: agentID,
		Limit:       5,
	})
	if err != nil {
		return nil, err
	}
	views := make([]ports.SubmissionView, 0, len(results))
	for _, result := range results {
		views = append(views, ports.SubmissionView{
			ResultID:   result.ResultID,
			Status:     string(result.Status),
			TotalVotes: result.TotalVotes,
			CreatedAt:  result.CreatedAt,
		})
	}
	return views, nil
}
