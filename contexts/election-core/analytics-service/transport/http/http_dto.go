package http

import "tallyroom/contexts/election-core/analytics-service/ports"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SummaryResponse reuses the snapshot shape; the realtime channel and the
// REST read both serve the same aggregation.
type SummaryResponse struct {
	ports.Snapshot
}
