package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tallyroom/contexts/field-intake/ussd-service/domain/entities"
	domainerrors "tallyroom/contexts/field-intake/ussd-service/domain/errors"
	"tallyroom/contexts/field-intake/ussd-service/ports"
)

const defaultSessionTTL = 10 * time.Minute

// Engine runs one turn of the USSD dialogue. It is stateless between calls;
// everything a turn needs lives in the session store.
type Engine struct {
	Sessions   ports.SessionStore
	Directory  ports.DirectoryClient
	Results    ports.ResultClient
	Clock      ports.Clock
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type TurnInput struct {
	SessionID   string
	PhoneNumber string
	Text        string
}

type TurnOutput struct {
	Prompt string
	// Continue signals the aggregator to keep the session open (CON vs END).
	Continue bool
}

// stepOutcome is a handler's decision for one turn: the step the session
// moves to, the scratch data to carry, and what the subscriber sees next.
type stepOutcome struct {
	next   entities.Step
	data   entities.SessionData
	prompt string
	end    bool
}

// HandleTurn loads the conversation, applies the newest input segment and
// persists the advanced session. Downstream failures never surface to the
// subscriber as errors: the current prompt is re-emitted and the session is
// left untouched, so a retried turn lands on the same step.
func (e Engine) HandleTurn(ctx context.Context, input TurnInput) (TurnOutput, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	phone := strings.TrimSpace(input.PhoneNumber)
	if sessionID == "" {
		return TurnOutput{}, domainerrors.ErrMissingSessionID
	}
	if phone == "" {
		return TurnOutput{}, domainerrors.ErrMissingPhoneNumber
	}

	now := e.Clock.Now().UTC()
	session, found, err := e.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		e.logTurnFailure("ussd_session_load_failed", sessionID, "", err)
		return TurnOutput{Prompt: degradedPrompt(mainMenuPrompt()), Continue: true}, nil
	}

	var outcome stepOutcome
	if !found || !session.Active || session.Expired(now) {
		// Expiry is lazy: a lapsed session is replaced on the next dial.
		session = entities.Session{
			SessionID:   sessionID,
			PhoneNumber: phone,
			Active:      true,
			CreatedAt:   now,
		}
		outcome = stepOutcome{next: entities.StepMenuSelection, prompt: mainMenuPrompt()}
	} else {
		outcome, err = e.dispatch(ctx, session, lastInputSegment(input.Text))
		if err != nil {
			e.logTurnFailure("ussd_turn_failed", sessionID, string(session.CurrentStep), err)
			return TurnOutput{Prompt: degradedPrompt(e.promptFor(session)), Continue: true}, nil
		}
	}

	prior := session
	session.CurrentStep = outcome.next
	session.Data = outcome.data
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(e.sessionTTL())
	if outcome.end {
		session.Active = false
	}
	if err := e.Sessions.SaveSession(ctx, session); err != nil {
		e.logTurnFailure("ussd_session_save_failed", sessionID, string(prior.CurrentStep), err)
		if !found || !prior.Active {
			return TurnOutput{Prompt: degradedPrompt(mainMenuPrompt()), Continue: true}, nil
		}
		return TurnOutput{Prompt: degradedPrompt(e.promptFor(prior)), Continue: true}, nil
	}

	return TurnOutput{Prompt: outcome.prompt, Continue: !outcome.end}, nil
}

func (e Engine) dispatch(ctx context.Context, session entities.Session, text string) (stepOutcome, error) {
	if text == exitInput {
		return stepOutcome{next: session.CurrentStep, data: session.Data, prompt: promptGoodbye, end: true}, nil
	}

	switch session.CurrentStep {
	case entities.StepMainMenu, entities.StepMenuSelection:
		return e.handleMenuSelection(ctx, session, text)
	case entities.StepRegisterFirstName:
		return e.handleRegisterFirstName(session, text)
	case entities.StepRegisterLastName:
		return e.handleRegisterLastName(ctx, session, text)
	case entities.StepSubmitResultsCenter:
		return e.handleCenterCode(ctx, session, text)
	case entities.StepSubmitCategory:
		return e.handleCategoryChoice(ctx, session, text)
	case entities.StepSubmitVotes:
		return e.handleVotesEntry(ctx, session, text)
	case entities.StepSubmitInvalid:
		return e.handleInvalidBallots(ctx, session, text)
	default:
		// Unknown step in the store, likely from an older build. Restart.
		return stepOutcome{next: entities.StepMenuSelection, prompt: mainMenuPrompt()}, nil
	}
}

func (e Engine) handleMenuSelection(ctx context.Context, session entities.Session, text string) (stepOutcome, error) {
	switch text {
	case "1":
		agent, found, err := e.Directory.AgentByPhone(ctx, session.PhoneNumber)
		if err != nil {
			return stepOutcome{}, err
		}
		if !found {
			return stepOutcome{
				next:   entities.StepRegisterFirstName,
				prompt: "You are not registered yet.\n" + promptFirstName,
			}, nil
		}
		if !agent.Approved {
			return stepOutcome{next: entities.StepMenuSelection, prompt: promptAwaitApproval, end: true}, nil
		}
		return stepOutcome{next: entities.StepSubmitResultsCenter, prompt: promptCenterCode}, nil

	case "2":
		return stepOutcome{next: entities.StepRegisterFirstName, prompt: promptFirstName}, nil

	case "3":
		agent, found, err := e.Directory.AgentByPhone(ctx, session.PhoneNumber)
		if err != nil {
			return stepOutcome{}, err
		}
		if !found {
			return stepOutcome{
				next:   entities.StepRegisterFirstName,
				prompt: "You are not registered yet.\n" + promptFirstName,
			}, nil
		}
		submissions, err := e.Results.AgentSubmissions(ctx, agent.AgentID)
		if err != nil {
			return stepOutcome{}, err
		}
		return stepOutcome{next: entities.StepCheckStatus, prompt: statusReport(submissions), end: true}, nil

	default:
		return stepOutcome{next: entities.StepMenuSelection, prompt: invalidMenuPrompt()}, nil
	}
}

func (e Engine) handleRegisterFirstName(session entities.Session, text string) (stepOutcome, error) {
	if text == "" {
		return stepOutcome{next: entities.StepRegisterFirstName, data: session.Data, prompt: promptFirstName}, nil
	}
	data := session.Data
	data.FirstName = text
	return stepOutcome{next: entities.StepRegisterLastName, data: data, prompt: promptLastName}, nil
}

func (e Engine) handleRegisterLastName(ctx context.Context, session entities.Session, text string) (stepOutcome, error) {
	if text == "" {
		return stepOutcome{next: entities.StepRegisterLastName, data: session.Data, prompt: promptLastName}, nil
	}
	agent, err := e.Directory.RegisterAgent(ctx, session.PhoneNumber, session.Data.FirstName, text)
	if errors.Is(err, domainerrors.ErrPhoneRegistered) {
		return stepOutcome{
			next:   entities.StepRegisterLastName,
			prompt: "This phone number is already registered. An administrator will approve your account.",
			end:    true,
		}, nil
	}
	if err != nil {
		return stepOutcome{}, err
	}
	return stepOutcome{
		next:   entities.StepRegisterLastName,
		prompt: fmt.Sprintf("Thank you %s %s. Your registration was received and is pending approval.", agent.FirstName, agent.LastName),
		end:    true,
	}, nil
}

func (e Engine) handleCenterCode(ctx context.Context, session entities.Session, text string) (stepOutcome, error) {
	center, found, err := e.Directory.CenterByCode(ctx, text)
	if err != nil {
		return stepOutcome{}, err
	}
	if !found {
		return stepOutcome{
			next:   entities.StepSubmitResultsCenter,
			data:   session.Data,
			prompt: "Center code not recognized.\n" + promptCenterCode,
		}, nil
	}
	if !center.Active {
		return stepOutcome{
			next:   entities.StepSubmitResultsCenter,
			data:   session.Data,
			prompt: fmt.Sprintf("Center %s is not active. Enter a different polling center code:", center.Name),
		}, nil
	}

	data := session.Data
	data.CenterID = center.CenterID
	data.CenterCode = center.Code
	data.CenterName = center.Name
	data.Constituency = center.Constituency
	data.Category = ""
	data.Votes = nil
	return stepOutcome{next: entities.StepSubmitCategory, data: data, prompt: categoryMenuPrompt(data)}, nil
}

func (e Engine) handleCategoryChoice(ctx context.Context, session entities.Session, text string) (stepOutcome, error) {
	category, ok := categoryForChoice(text)
	if !ok {
		return stepOutcome{
			next:   entities.StepSubmitCategory,
			data:   session.Data,
			prompt: "Invalid choice.\n" + categoryMenuPrompt(session.Data),
		}, nil
	}
	candidates, err := e.candidatesFor(ctx, category, session.Data)
	if err != nil {
		return stepOutcome{}, err
	}
	if len(candidates) == 0 {
		return stepOutcome{
			next:   entities.StepSubmitCategory,
			data:   session.Data,
			prompt: fmt.Sprintf("No candidates are configured for %s here.\n%s", categoryLabel(category), categoryMenuPrompt(session.Data)),
		}, nil
	}

	data := session.Data
	data.Category = category
	data.Votes = nil
	return stepOutcome{next: entities.StepSubmitVotes, data: data, prompt: votesPrompt(category, candidates)}, nil
}

func (e Engine) handleVotesEntry(ctx context.Context, session entities.Session, text string) (stepOutcome, error) {
	candidates, err := e.candidatesFor(ctx, session.Data.Category, session.Data)
	if err != nil {
		return stepOutcome{}, err
	}
	byAbbr := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		byAbbr[strings.ToUpper(candidate.Abbreviation)] = candidate.CandidateID
	}

	votes := parseVoteLine(text, byAbbr)
	if len(votes) == 0 {
		return stepOutcome{
			next:   entities.StepSubmitVotes,
			data:   session.Data,
			prompt: "Could not read any counts.\n" + votesPrompt(session.Data.Category, candidates),
		}, nil
	}

	data := session.Data
	data.Votes = votes
	return stepOutcome{next: entities.StepSubmitInvalid, data: data, prompt: promptInvalidVotes}, nil
}

func (e Engine) handleInvalidBallots(ctx context.Context, session entities.Session, text string) (stepOutcome, error) {
	invalid, err := strconv.Atoi(text)
	if err != nil || invalid < 0 {
		return stepOutcome{next: entities.StepSubmitInvalid, data: session.Data, prompt: promptInvalidVotes}, nil
	}

	agent, found, err := e.Directory.AgentByPhone(ctx, session.PhoneNumber)
	if err != nil {
		return stepOutcome{}, err
	}
	if !found || !agent.Approved {
		return stepOutcome{next: entities.StepMenuSelection, prompt: promptAwaitApproval, end: true}, nil
	}

	view, err := e.Results.SubmitCategoryResult(ctx, ports.SubmissionInput{
		CenterID:     session.Data.CenterID,
		AgentID:      agent.AgentID,
		Category:     session.Data.Category,
		Votes:        session.Data.Votes,
		InvalidVotes: invalid,
	})
	if err != nil {
		return stepOutcome{}, err
	}

	data := session.Data
	data.Reported = append(data.Reported, data.Category)
	recorded := data.Category
	data.Category = ""
	data.Votes = nil
	return stepOutcome{
		next:   entities.StepSubmitCategory,
		data:   data,
		prompt: fmt.Sprintf("%s results recorded with status %s.\n%s", categoryLabel(recorded), view.Status, categoryMenuPrompt(data)),
	}, nil
}

func (e Engine) candidatesFor(ctx context.Context, category string, data entities.SessionData) ([]ports.CandidateView, error) {
	constituency := data.Constituency
	if category == "president" {
		// Presidential ballots are national, not constituency scoped.
		constituency = ""
	}
	return e.Directory.CandidatesByCategory(ctx, category, constituency)
}

// promptFor regenerates the prompt for the step a session is parked at,
// used when a turn has to be re-emitted after a downstream failure.
func (e Engine) promptFor(session entities.Session) string {
	switch session.CurrentStep {
	case entities.StepRegisterFirstName:
		return promptFirstName
	case entities.StepRegisterLastName:
		return promptLastName
	case entities.StepSubmitResultsCenter:
		return promptCenterCode
	case entities.StepSubmitCategory:
		return categoryMenuPrompt(session.Data)
	case entities.StepSubmitVotes:
		return votesPromptFallback(session.Data.Category)
	case entities.StepSubmitInvalid:
		return promptInvalidVotes
	default:
		return mainMenuPrompt()
	}
}

func statusReport(submissions []ports.SubmissionView) string {
	if len(submissions) == 0 {
		return "You have no submissions yet."
	}
	var b strings.Builder
	b.WriteString("Your recent submissions:\n")
	for i, submission := range submissions {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %d votes - %s\n", i+1, submission.TotalVotes, submission.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// degradedPrompt prefixes the system-error notice onto the prompt a
// failed turn re-emits.
func degradedPrompt(prompt string) string {
	return promptSystemError + "\n" + prompt
}

func (e Engine) sessionTTL() time.Duration {
	if e.SessionTTL > 0 {
		return e.SessionTTL
	}
	return defaultSessionTTL
}

func (e Engine) logTurnFailure(event, sessionID, step string, err error) {
	ResolveLogger(e.Logger).Error("ussd turn degraded",
		"event", event,
		"module", "field-intake/ussd-service",
		"layer", "application",
		"session_id", sessionID,
		"step", step,
		"error", err.Error(),
	)
}
