package entities

import domainerrors "tallyroom/contexts/election-core/result-service/domain/errors"

// NextStatus resolves the transition table for review-driven actions. It
// answers both questions at once: is the action legal from the current
// status, and may this role drive it. State errors win over role errors so
// a terminal record reports the same failure to every caller.
func NextStatus(current Status, action Action, role Role) (Status, error) {
	switch action {
	case ActionApprove:
		if current != StatusPending && current != StatusFlagged {
			return "", domainerrors.ErrInvalidTransition
		}
		if role != RoleReviewer && role != RoleSupervisor && role != RoleAdmin {
			return "", domainerrors.ErrActorNotAllowed
		}
		return StatusVerified, nil

	case ActionReject:
		if current != StatusPending && current != StatusFlagged {
			return "", domainerrors.ErrInvalidTransition
		}
		if role != RoleReviewer && role != RoleAdmin {
			return "", domainerrors.ErrActorNotAllowed
		}
		return StatusRejected, nil

	case ActionFlag:
		if current != StatusPending {
			return "", domainerrors.ErrInvalidTransition
		}
		if role != RoleReviewer && role != RoleAdmin {
			return "", domainerrors.ErrActorNotAllowed
		}
		return StatusFlagged, nil

	case ActionEdit:
		// Edits never verify directly; the record must re-pass review from
		// pending. Validation downstream may legitimately re-flag it.
		if current != StatusFlagged {
			return "", domainerrors.ErrInvalidTransition
		}
		if role != RoleReviewer && role != RoleSupervisor && role != RoleAdmin {
			return "", domainerrors.ErrActorNotAllowed
		}
		return StatusPending, nil

	case ActionArchive:
		if role != RoleAdmin {
			return "", domainerrors.ErrActorNotAllowed
		}
		return StatusArchived, nil

	default:
		return "", domainerrors.ErrInvalidAction
	}
}
