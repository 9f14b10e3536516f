package errors

import "errors"

var (
	// ErrMissingSessionID is returned when the aggregator callback carries
	// no session identifier.
	ErrMissingSessionID = errors.New("session id is required")

	// ErrMissingPhoneNumber is returned when the aggregator callback
	// carries no subscriber phone number.
	ErrMissingPhoneNumber = errors.New("phone number is required")

	// ErrPhoneRegistered indicates the phone number already has a field
	// agent record.
	ErrPhoneRegistered = errors.New("phone number is already registered")
)
