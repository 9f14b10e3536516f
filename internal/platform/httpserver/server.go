package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	analyticsservice "tallyroom/contexts/election-core/analytics-service"
	analyticshttp "tallyroom/contexts/election-core/analytics-service/transport/http"
	resultservice "tallyroom/contexts/election-core/result-service"
	resulterrors "tallyroom/contexts/election-core/result-service/domain/errors"
	resultports "tallyroom/contexts/election-core/result-service/ports"
	resulthttp "tallyroom/contexts/election-core/result-service/transport/http"
	ussdservice "tallyroom/contexts/field-intake/ussd-service"
	ussdhttp "tallyroom/contexts/field-intake/ussd-service/transport/http"
	directoryservice "tallyroom/contexts/registry/directory-service"
	directoryerrors "tallyroom/contexts/registry/directory-service/domain/errors"
	directoryhttp "tallyroom/contexts/registry/directory-service/transport/http"
	"tallyroom/internal/platform/realtime"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "tallyroom/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	directory directoryservice.Module
	results   resultservice.Module
	analytics analyticsservice.Module
	ussd      ussdservice.Module
	hub       *realtime.Hub
}

func New(
	directory directoryservice.Module,
	results resultservice.Module,
	analytics analyticsservice.Module,
	ussd ussdservice.Module,
	hub *realtime.Hub,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		directory: directory,
		results:   results,
		analytics: analytics,
		ussd:      ussd,
		hub:       hub,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for httptest based tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/results", s.handleSubmitResult)
	s.mux.HandleFunc("GET /api/v1/results", s.handleListResults)
	s.mux.HandleFunc("GET /api/v1/results/{result_id}", s.handleGetResult)
	s.mux.HandleFunc("GET /api/v1/results/{result_id}/transitions", s.handleListTransitions)
	s.mux.HandleFunc("POST /api/v1/results/{result_id}/review", s.handleReviewResult)
	s.mux.HandleFunc("POST /api/v1/results/{result_id}/edit", s.handleEditResult)
	s.mux.HandleFunc("POST /api/v1/results/archive", s.handleArchiveResults)

	s.mux.HandleFunc("GET /api/v1/analytics/summary", s.handleAnalyticsSummary)

	s.mux.HandleFunc("POST /api/v1/agents", s.handleRegisterAgent)
	s.mux.HandleFunc("POST /api/v1/agents/{agent_id}/approve", s.handleApproveAgent)
	s.mux.HandleFunc("PUT /api/v1/centers", s.handleUpsertCenter)
	s.mux.HandleFunc("GET /api/v1/centers", s.handleListCenters)
	s.mux.HandleFunc("PUT /api/v1/candidates", s.handleUpsertCandidate)
	s.mux.HandleFunc("GET /api/v1/candidates", s.handleListCandidates)

	s.mux.HandleFunc("POST /ussd/callback", s.handleUSSDCallback)

	if s.hub != nil {
		s.mux.Handle("GET /ws", s.hub)
	}
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeResultError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req resulthttp.SubmitResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResultError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.results.Handler.SubmitResultHandler(r.Context(), userID, req)
	if err != nil {
		writeResultDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := resultports.ResultFilter{
		Status:      query.Get("status"),
		CenterID:    query.Get("center_id"),
		SubmittedBy: query.Get("submitted_by"),
	}
	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeResultError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if offsetRaw := query.Get("offset"); offsetRaw != "" {
		offset, err := strconv.Atoi(offsetRaw)
		if err != nil {
			writeResultError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	resp, err := s.results.Handler.ListResultsHandler(r.Context(), filter)
	if err != nil {
		writeResultDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	resp, err := s.results.Handler.GetResultHandler(r.Context(), r.PathValue("result_id"))
	if err != nil {
		writeResultDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTransitions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.results.Handler.ListTransitionsHandler(r.Context(), r.PathValue("result_id"))
	if err != nil {
		writeResultDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReviewResult(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeResultError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req resulthttp.ReviewResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResultError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.results.Handler.ReviewResultHandler(r.Context(), actorID, r.PathValue("result_id"), req)
	if err != nil {
		writeResultDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditResult(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeResultError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req resulthttp.EditResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResultError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.results.Handler.EditResultHandler(r.Context(), actorID, r.PathValue("result_id"), req)
	if err != nil {
		writeResultDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArchiveResults(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeResultError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req resulthttp.ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResultError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.results.Handler.ArchiveHandler(r.Context(), actorID, req)
	if err != nil {
		writeResultDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.analytics.Handler.SummaryHandler(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, analyticshttp.ErrorResponse{
			Code:    "internal_error",
			Message: "internal server error",
		})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req directoryhttp.RegisterAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.directory.Handler.RegisterAgentHandler(r.Context(), req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleApproveAgent(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeDirectoryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req directoryhttp.ApproveAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.directory.Handler.ApproveAgentHandler(r.Context(), actorID, r.PathValue("agent_id"), req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpsertCenter(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeDirectoryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req directoryhttp.UpsertCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.directory.Handler.UpsertCenterHandler(r.Context(), actorID, req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCenters(w http.ResponseWriter, r *http.Request) {
	resp, err := s.directory.Handler.ListCentersHandler(r.Context())
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpsertCandidate(w http.ResponseWriter, r *http.Request) {
	actorID := r.Header.Get("X-User-Id")
	if actorID == "" {
		writeDirectoryError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req directoryhttp.UpsertCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.directory.Handler.UpsertCandidateHandler(r.Context(), actorID, req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.directory.Handler.ListCandidatesHandler(
		r.Context(),
		query.Get("category"),
		query.Get("constituency"),
	)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUSSDCallback speaks the aggregator dialect: form-encoded input,
// plain-text reply with a CON/END prefix, always HTTP 200 once the form
// parses. Anything else makes the aggregator show a generic failure.
func (s *Server) handleUSSDCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writePlainText(w, http.StatusBadRequest, ussdhttp.ReplyEnd+"Invalid request.")
		return
	}

	body, err := s.ussd.Handler.CallbackHandler(r.Context(), ussdhttp.CallbackRequest{
		SessionID:   r.PostFormValue("sessionId"),
		PhoneNumber: r.PostFormValue("phoneNumber"),
		Text:        r.PostFormValue("text"),
	})
	if err != nil {
		writePlainText(w, http.StatusBadRequest, ussdhttp.ReplyEnd+"Invalid request.")
		return
	}
	writePlainText(w, http.StatusOK, body)
}

func writeResultDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, resulterrors.ErrResultNotFound):
		writeResultError(w, http.StatusNotFound, "result_not_found", err.Error())
	case errors.Is(err, resulterrors.ErrCenterNotFound):
		writeResultError(w, http.StatusNotFound, "center_not_found", err.Error())
	case errors.Is(err, resulterrors.ErrCenterInactive):
		writeResultError(w, http.StatusUnprocessableEntity, "center_inactive", err.Error())
	case errors.Is(err, resulterrors.ErrInvalidSubmission),
		errors.Is(err, resulterrors.ErrInvalidChannel),
		errors.Is(err, resulterrors.ErrInvalidAction):
		writeResultError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, resulterrors.ErrInvalidTransition),
		errors.Is(err, resulterrors.ErrNotEditable):
		writeResultError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, resulterrors.ErrActorNotAllowed):
		writeResultError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeResultError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDirectoryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directoryerrors.ErrCenterNotFound),
		errors.Is(err, directoryerrors.ErrAgentNotFound):
		writeDirectoryError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, directoryerrors.ErrInvalidCenter),
		errors.Is(err, directoryerrors.ErrInvalidCandidate),
		errors.Is(err, directoryerrors.ErrInvalidAgent),
		errors.Is(err, directoryerrors.ErrInvalidCategory):
		writeDirectoryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, directoryerrors.ErrPhoneAlreadyRegistered):
		writeDirectoryError(w, http.StatusConflict, "phone_already_registered", err.Error())
	case errors.Is(err, directoryerrors.ErrActorNotAllowed):
		writeDirectoryError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeDirectoryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeResultError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, resulthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeDirectoryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, directoryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writePlainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
