package application

import (
	"fmt"
	"strings"

	"tallyroom/contexts/field-intake/ussd-service/domain/entities"
	"tallyroom/contexts/field-intake/ussd-service/ports"
)

const (
	exitInput = "0"

	promptGoodbye       = "Thank you for using the results desk. Goodbye."
	promptSystemError   = "A system error occurred. Please try again."
	promptFirstName     = "Enter your first name:"
	promptLastName      = "Enter your last name:"
	promptCenterCode    = "Enter your polling center code:"
	promptInvalidVotes  = "Enter the number of invalid ballots:"
	promptAwaitApproval = "Your registration is still awaiting approval. You will be able to submit results once an administrator approves you."
)

func mainMenuPrompt() string {
	var b strings.Builder
	b.WriteString("Welcome to the Results Desk\n")
	b.WriteString("1. Submit results\n")
	b.WriteString("2. Register as an agent\n")
	b.WriteString("3. Check submission status\n")
	b.WriteString("0. Exit")
	return b.String()
}

func invalidMenuPrompt() string {
	return "Invalid choice.\n" + mainMenuPrompt()
}

func categoryMenuPrompt(data entities.SessionData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Center: %s\nSelect a category:\n", data.CenterName)
	for i, category := range []string{"president", "mp", "councilor"} {
		mark := ""
		if data.HasReported(category) {
			mark = " (sent)"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, categoryLabel(category), mark)
	}
	b.WriteString("0. Exit")
	return b.String()
}

func votesPrompt(category string, candidates []ports.CandidateView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s candidates:\n", categoryLabel(category))
	for _, candidate := range candidates {
		fmt.Fprintf(&b, "%s - %s (%s)\n", candidate.Abbreviation, candidate.Name, candidate.Party)
	}
	b.WriteString("Reply with counts like ")
	for i, candidate := range candidates {
		if i == 2 {
			break
		}
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%s=%d", candidate.Abbreviation, 120-20*i)
	}
	return b.String()
}

// votesPromptFallback is used when the candidate list cannot be re-fetched
// while re-emitting a prompt.
func votesPromptFallback(category string) string {
	return fmt.Sprintf("Enter %s counts like ABBR=120,ABBR=98", categoryLabel(category))
}

func categoryLabel(category string) string {
	switch category {
	case "president":
		return "President"
	case "mp":
		return "Member of Parliament"
	case "councilor":
		return "Councilor"
	default:
		return category
	}
}

func categoryForChoice(choice string) (string, bool) {
	switch choice {
	case "1":
		return "president", true
	case "2":
		return "mp", true
	case "3":
		return "councilor", true
	default:
		return "", false
	}
}
