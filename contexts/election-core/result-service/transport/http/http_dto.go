package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DocumentPayload struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
}

type SubmitResultRequest struct {
	CenterID     string                    `json:"center_id"`
	Votes        map[string]map[string]int `json:"votes"`
	InvalidVotes int                       `json:"invalid_votes"`
	Channel      string                    `json:"channel"`
	Documents    []DocumentPayload         `json:"documents,omitempty"`
}

type ReviewResultRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

type EditResultRequest struct {
	Votes        map[string]map[string]int `json:"votes"`
	InvalidVotes int                       `json:"invalid_votes"`
	Documents    []DocumentPayload         `json:"documents,omitempty"`
	Comment      string                    `json:"comment,omitempty"`
}

type ArchiveRequest struct {
	OlderThanHours int `json:"older_than_hours,omitempty"`
}

type ArchiveResponse struct {
	Archived int `json:"archived"`
}

type ResultResponse struct {
	ResultID               string                    `json:"result_id"`
	CenterID               string                    `json:"center_id"`
	SubmittedBy            string                    `json:"submitted_by"`
	Votes                  map[string]map[string]int `json:"votes"`
	InvalidVotes           int                       `json:"invalid_votes"`
	TotalVotes             int                       `json:"total_votes"`
	Status                 string                    `json:"status"`
	FlaggedReason          string                    `json:"flagged_reason,omitempty"`
	DocumentMismatch       bool                      `json:"document_mismatch"`
	DocumentMismatchReason string                    `json:"document_mismatch_reason,omitempty"`
	Channel                string                    `json:"channel"`
	VerifiedBy             string                    `json:"verified_by,omitempty"`
	VerifiedAt             *time.Time                `json:"verified_at,omitempty"`
	CreatedAt              time.Time                 `json:"created_at"`
	UpdatedAt              time.Time                 `json:"updated_at"`
}

type ResultListResponse struct {
	Items []ResultResponse `json:"items"`
}

type TransitionResponse struct {
	TransitionID string    `json:"transition_id"`
	Action       string    `json:"action"`
	FromStatus   string    `json:"from_status,omitempty"`
	ToStatus     string    `json:"to_status"`
	ActorID      string    `json:"actor_id"`
	Comment      string    `json:"comment,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type TransitionListResponse struct {
	ResultID string               `json:"result_id"`
	Items    []TransitionResponse `json:"items"`
}
