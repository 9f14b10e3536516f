package entities

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryPresident Category = "president"
	CategoryMP        Category = "mp"
	CategoryCouncilor Category = "councilor"
)

func Categories() []Category {
	return []Category{CategoryPresident, CategoryMP, CategoryCouncilor}
}

func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.TrimSpace(strings.ToLower(raw))) {
	case CategoryPresident:
		return CategoryPresident, true
	case CategoryMP:
		return CategoryMP, true
	case CategoryCouncilor:
		return CategoryCouncilor, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusFlagged  Status = "flagged"
	StatusRejected Status = "rejected"
	StatusVerified Status = "verified"
	StatusArchived Status = "archived"
)

type Channel string

const (
	ChannelPortal   Channel = "portal"
	ChannelUSSD     Channel = "ussd"
	ChannelWhatsApp Channel = "whatsapp"
)

func ParseChannel(raw string) (Channel, bool) {
	switch Channel(strings.TrimSpace(strings.ToLower(raw))) {
	case ChannelPortal:
		return ChannelPortal, true
	case ChannelUSSD:
		return ChannelUSSD, true
	case ChannelWhatsApp:
		return ChannelWhatsApp, true
	default:
		return "", false
	}
}

type Role string

const (
	RoleAgent      Role = "agent"
	RoleReviewer   Role = "reviewer"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

type DocumentRef struct {
	DocumentID string
	FileName   string
	SizeBytes  int64
}

// Result is the central record of one submission event from one polling
// center. TotalVotes is always recomputed server-side; the struct is mutated
// only through the application service's transition operations.
type Result struct {
	ResultID    string
	CenterID    string
	SubmittedBy string

	Votes        map[Category]map[string]int
	InvalidVotes int
	TotalVotes   int

	Status        Status
	FlaggedReason string

	DocumentMismatch       bool
	DocumentMismatchReason string
	Documents              []DocumentRef

	Channel    Channel
	VerifiedBy string
	VerifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategorySubtotal sums one category's vote values.
func (r Result) CategorySubtotal(category Category) int {
	subtotal := 0
	for _, count := range r.Votes[category] {
		subtotal += count
	}
	return subtotal
}

type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionFlag    Action = "flag_for_further_review"
	ActionEdit    Action = "edit"
	ActionArchive Action = "archive"
)

func ParseReviewAction(raw string) (Action, bool) {
	switch Action(strings.TrimSpace(strings.ToLower(raw))) {
	case ActionApprove:
		return ActionApprove, true
	case ActionReject:
		return ActionReject, true
	case ActionFlag:
		return ActionFlag, true
	default:
		return "", false
	}
}

// Transition is one audit row of the result lifecycle. No transition is
// silent: submission, review, edit, and archive all append one.
type Transition struct {
	TransitionID string
	ResultID     string
	Action       Action
	FromStatus   Status
	ToStatus     Status
	ActorID      string
	Comment      string
	OccurredAt   time.Time
}
