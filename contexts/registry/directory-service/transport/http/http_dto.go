package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterAgentRequest struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

type ApproveAgentRequest struct {
	Role string `json:"role,omitempty"`
}

type AgentResponse struct {
	AgentID     string `json:"agent_id"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Role        string `json:"role"`
	Approved    bool   `json:"approved"`
}

type UpsertCenterRequest struct {
	CenterID         string `json:"center_id,omitempty"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	Constituency     string `json:"constituency"`
	Ward             string `json:"ward"`
	RegisteredVoters int    `json:"registered_voters"`
	Active           bool   `json:"active"`
}

type CenterResponse struct {
	CenterID         string `json:"center_id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	Constituency     string `json:"constituency"`
	Ward             string `json:"ward"`
	RegisteredVoters int    `json:"registered_voters"`
	Active           bool   `json:"active"`
}

type CenterListResponse struct {
	Items []CenterResponse `json:"items"`
}

type UpsertCandidateRequest struct {
	CandidateID  string `json:"candidate_id,omitempty"`
	Name         string `json:"name"`
	Party        string `json:"party"`
	Category     string `json:"category"`
	Abbreviation string `json:"abbreviation"`
	Constituency string `json:"constituency,omitempty"`
}

type CandidateResponse struct {
	CandidateID  string `json:"candidate_id"`
	Name         string `json:"name"`
	Party        string `json:"party"`
	Category     string `json:"category"`
	Abbreviation string `json:"abbreviation"`
	Constituency string `json:"constituency,omitempty"`
}

type CandidateListResponse struct {
	Items []CandidateResponse `json:"items"`
}
