package errors

import "errors"

var (
	ErrCenterNotFound         = errors.New("polling center not found")
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrAgentNotFound          = errors.New("field agent not found")
	ErrInvalidCenter          = errors.New("invalid polling center input")
	ErrInvalidCandidate       = errors.New("invalid candidate input")
	ErrInvalidAgent           = errors.New("invalid field agent input")
	ErrInvalidCategory        = errors.New("invalid election category")
	ErrPhoneAlreadyRegistered = errors.New("phone number is already registered")
	ErrActorNotAllowed        = errors.New("actor is not allowed to perform this action")
)
