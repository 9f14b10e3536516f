package entities

import "time"

// Step identifies the dialogue node a conversation is waiting at. The
// stored step names the input the NEXT turn is expected to carry.
type Step string

const (
	StepMainMenu            Step = "main_menu"
	StepMenuSelection       Step = "menu_selection"
	StepRegisterFirstName   Step = "register_firstname"
	StepRegisterLastName    Step = "register_lastname"
	StepSubmitResultsCenter Step = "submit_results_center"
	StepSubmitCategory      Step = "submit_results_category"
	StepSubmitVotes         Step = "submit_results_votes"
	StepSubmitInvalid       Step = "submit_results_invalid"
	StepCheckStatus         Step = "check_status"
)

// SessionData is the typed scratch space carried between turns. Fields are
// populated as the branch progresses and cleared when a branch completes.
type SessionData struct {
	FirstName string `json:"first_name,omitempty"`

	CenterID     string `json:"center_id,omitempty"`
	CenterCode   string `json:"center_code,omitempty"`
	CenterName   string `json:"center_name,omitempty"`
	Constituency string `json:"constituency,omitempty"`

	Category string         `json:"category,omitempty"`
	Votes    map[string]int `json:"votes,omitempty"`

	// Reported lists the categories already submitted in this session so
	// the category menu can mark them off.
	Reported []string `json:"reported,omitempty"`
}

// Session is one USSD conversation keyed by the aggregator's session id.
type Session struct {
	SessionID   string
	PhoneNumber string
	CurrentStep Step
	Data        SessionData
	Active      bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the session's idle window has lapsed. Expiry is
// enforced lazily on the next turn, not by a background sweep.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Reported reports whether the category was already submitted this session.
func (d SessionData) HasReported(category string) bool {
	for _, reported := range d.Reported {
		if reported == category {
			return true
		}
	}
	return false
}
