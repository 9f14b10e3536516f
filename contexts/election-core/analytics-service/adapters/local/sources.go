// Package localadapter bridges the analytics ports onto the sibling
// modules' repositories. It is the in-process integration seam: analytics
// stays read-only and never learns the other modules' entity types.
package localadapter

import (
	"context"

	"tallyroom/contexts/election-core/analytics-service/ports"
	resultports "tallyroom/contexts/election-core/result-service/ports"
	directoryports "tallyroom/contexts/registry/directory-service/ports"
)

type ResultSource struct {
	Repo resultports.Repository
}

func (s ResultSource) ListResults(ctx context.Context) ([]ports.ResultRecord, error) {
	results, err := s.Repo.ListResults(ctx, resultports.ResultFilter{})
	if err != nil {
		return nil, err
	}
	records := make([]ports.ResultRecord, 0, len(results))
	for _, result := range results {
		records = append(records, ports.ResultRecord{
			ResultID:   result.ResultID,
			CenterID:   result.CenterID,
			Status:     string(result.Status),
			Channel:    string(result.Channel),
			CreatedAt:  result.CreatedAt,
			VerifiedAt: result.VerifiedAt,
		})
	}
	return records, nil
}

type CenterSource struct {
	Repo directoryports.Repository
}

func (s CenterSource) ListCenters(ctx context.Context) ([]ports.CenterRecord, error) {
	centers, err := s.Repo.ListCenters(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]ports.CenterRecord, 0, len(centers))
	for _, center := range centers {
		records = append(records, ports.CenterRecord{
			CenterID: center.CenterID,
			Name:     center.Name,
			Active:   center.Active,
		})
	}
	return records, nil
}
