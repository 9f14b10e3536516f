package httpadapter

import (
	"context"
	"log/slog"

	"tallyroom/contexts/election-core/analytics-service/application"
	httptransport "tallyroom/contexts/election-core/analytics-service/transport/http"
)

type Handler struct {
	Analytics application.Service
	Logger    *slog.Logger
}

func (h Handler) SummaryHandler(ctx context.Context) (httptransport.SummaryResponse, error) {
	snapshot, err := h.Analytics.ComputeSnapshot(ctx)
	if err != nil {
		return httptransport.SummaryResponse{}, err
	}
	return httptransport.SummaryResponse{Snapshot: snapshot}, nil
}
