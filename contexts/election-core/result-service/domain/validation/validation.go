// Package validation classifies incoming tallies against a polling center's
// registered-voter count. It is pure: no clocks, no stores, no side effects.
package validation

import (
	"fmt"
	"strings"

	"tallyroom/contexts/election-core/result-service/domain/entities"
)

// Document size bounds for supporting evidence. Scans below the minimum are
// unreadable; above the maximum they were not produced by the field app.
const (
	MinDocumentBytes int64 = 10 * 1024
	MaxDocumentBytes int64 = 10 * 1024 * 1024
)

type Submission struct {
	Votes        map[entities.Category]map[string]int
	InvalidVotes int
	Documents    []entities.DocumentRef
	// ExpectDocuments turns on the supporting-document checks; channels
	// without upload capability (USSD) leave it off.
	ExpectDocuments bool
}

type Outcome struct {
	TotalVotes int
	Subtotals  map[entities.Category]int

	Status        entities.Status
	FlaggedReason string

	DocumentMismatch       bool
	DocumentMismatchReason string
}

// Evaluate recomputes totals and applies the two bound checks in order,
// first match wins:
//  1. any single category subtotal above registeredVoters flags the result,
//  2. otherwise a grand total above registeredVoters x 3 flags it.
//
// Document checks are additive and independent of the numeric status: a
// submission can be pending by vote bounds yet carry a document mismatch.
func Evaluate(sub Submission, registeredVoters int) Outcome {
	outcome := Outcome{
		Subtotals: make(map[entities.Category]int, len(sub.Votes)),
		Status:    entities.StatusPending,
	}

	total := sub.InvalidVotes
	for _, category := range entities.Categories() {
		votes, ok := sub.Votes[category]
		if !ok {
			continue
		}
		subtotal := 0
		for _, count := range votes {
			subtotal += count
		}
		outcome.Subtotals[category] = subtotal
		total += subtotal
	}
	outcome.TotalVotes = total

	var overCategories []string
	for _, category := range entities.Categories() {
		subtotal, ok := outcome.Subtotals[category]
		if !ok {
			continue
		}
		if subtotal > registeredVoters {
			overCategories = append(overCategories,
				fmt.Sprintf("%s votes (%d) exceed registered voters (%d)", category, subtotal, registeredVoters))
		}
	}

	ceiling := registeredVoters * len(entities.Categories())
	switch {
	case len(overCategories) > 0:
		outcome.Status = entities.StatusFlagged
		outcome.FlaggedReason = strings.Join(overCategories, "; ")
	case total > ceiling:
		outcome.Status = entities.StatusFlagged
		outcome.FlaggedReason = fmt.Sprintf(
			"total votes (%d) exceed the theoretical ceiling of %d (%d registered voters x %d categories)",
			total, ceiling, registeredVoters, len(entities.Categories()))
	}

	if sub.ExpectDocuments {
		outcome.DocumentMismatch, outcome.DocumentMismatchReason = checkDocuments(sub)
	}
	return outcome
}

// checkDocuments is additive, not first-match: every violation contributes
// to the concatenated reason.
func checkDocuments(sub Submission) (bool, string) {
	var reasons []string

	if len(sub.Documents) == 0 {
		reasons = append(reasons, "no supporting documents attached")
	}
	for _, doc := range sub.Documents {
		switch {
		case doc.SizeBytes < MinDocumentBytes:
			reasons = append(reasons,
				fmt.Sprintf("document %s is below the minimum size (%d bytes)", doc.FileName, doc.SizeBytes))
		case doc.SizeBytes > MaxDocumentBytes:
			reasons = append(reasons,
				fmt.Sprintf("document %s is above the maximum size (%d bytes)", doc.FileName, doc.SizeBytes))
		}
	}
	for _, category := range entities.Categories() {
		if _, ok := sub.Votes[category]; !ok {
			reasons = append(reasons, fmt.Sprintf("no %s votes reported", category))
		}
	}

	if len(reasons) == 0 {
		return false, ""
	}
	return true, strings.Join(reasons, "; ")
}
