package httpadapter

import (
	"context"
	"log/slog"

	"tallyroom/contexts/field-intake/ussd-service/application"
	httptransport "tallyroom/contexts/field-intake/ussd-service/transport/http"
)

type Handler struct {
	Engine application.Engine
	Logger *slog.Logger
}

// CallbackHandler runs one dialogue turn and renders the aggregator reply.
// The returned string is the complete plain-text body including the
// CON/END prefix.
func (h Handler) CallbackHandler(ctx context.Context, req httptransport.CallbackRequest) (string, error) {
	out, err := h.Engine.HandleTurn(ctx, application.TurnInput{
		SessionID:   req.SessionID,
		PhoneNumber: req.PhoneNumber,
		Text:        req.Text,
	})
	if err != nil {
		return "", err
	}
	if out.Continue {
		return httptransport.ReplyContinue + out.Prompt, nil
	}
	return httptransport.ReplyEnd + out.Prompt, nil
}
