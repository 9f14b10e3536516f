package entities

import (
	"strings"
	"time"
)

// Category is one of the three concurrent elections a polling center
// reports on.
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

type Role string

const (
	RoleAgent      Role = "agent"
	RoleReviewer   Role = "reviewer"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleAgent:
		return RoleAgent, true
	case RoleReviewer:
		return RoleReviewer, true
	case RoleSupervisor:
		return RoleSupervisor, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// PollingCenter is administratively managed; RegisteredVoters is the anchor
// for every vote-bound check downstream.
type PollingCenter struct {
	CenterID         string
	Code             string
	Name             string
	Constituency     string
	Ward             string
	RegisteredVoters int
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Candidate struct {
	CandidateID  string
	Name         string
	Party        string
	Category     Category
	Abbreviation string
	// Constituency scopes mp/councilor candidates; presidential candidates
	// are nationwide and leave it empty.
	Constituency string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type FieldAgent struct {
	AgentID     string
	PhoneNumber string
	FirstName   string
	LastName    string
	Role        Role
	Approved    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
