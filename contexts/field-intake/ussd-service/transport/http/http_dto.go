package http

// CallbackRequest is the form payload USSD aggregators POST on every turn.
// Field names follow the common aggregator convention (sessionId,
// phoneNumber, text with "*"-joined history).
type CallbackRequest struct {
	SessionID   string
	PhoneNumber string
	Text        string
}

// Reply prefixes understood by the aggregator. CON keeps the session open,
// END closes it after showing the prompt.
const (
	ReplyContinue = "CON "
	ReplyEnd      = "END "
)
