package errors

import "errors"

var (
	ErrResultNotFound    = errors.New("result not found")
	ErrCenterNotFound    = errors.New("polling center not found")
	ErrCenterInactive    = errors.New("polling center is not active")
	ErrInvalidSubmission = errors.New("invalid result submission")
	ErrInvalidChannel    = errors.New("invalid submission channel")
	ErrInvalidAction     = errors.New("invalid review action")
	ErrInvalidTransition = errors.New("result status does not allow this action")
	ErrActorNotAllowed   = errors.New("actor is not allowed to perform this action")
	ErrNotEditable       = errors.New("only flagged results can be edited")
)
