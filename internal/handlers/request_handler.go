package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/checkfox/go_request/internal/logger"
	"github.com/checkfox/go_request/internal/models"
	"github.com/checkfox/go_request/internal/repository"
	"github.com/checkfox/go_request/internal/services"
	"github.com/gorilla/mux"
)

// RequestHandler handles the request intake and workflow endpoints
type RequestHandler struct {
	service *services.RequestService
	repo    *repository.RequestRepository
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(service *services.RequestService, repo *repository.RequestRepository) *RequestHandler {
	return &RequestHandler{
		service: service,
		repo:    repo,
	}
}

// CreateRequestPayload is the body of POST /requests
type CreateRequestPayload struct {
	Request map[string]any          `json:"request"`
	Options services.ProcessOptions `json:"options"`
}

// StatusUpdatePayload is the body of PATCH /requests/{id}/status
type StatusUpdatePayload struct {
	Status models.RequestStatus `json:"status"`
	Reason string               `json:"reason,omitempty"`
	Actor  string               `json:"actor,omitempty"`
}

// HandleCreateRequest handles POST /requests
func (h *RequestHandler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	ctx := r.Context()

	var payload CreateRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.LogError(ctx, "Malformed JSON payload", err)
		respondError(w, ctx, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	defer r.Body.Close()
	if payload.Request == nil {
		respondError(w, ctx, http.StatusBadRequest, "request body is required")
		return
	}

	result := h.service.ProcessNewRequest(ctx, payload.Request, payload.Options)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}

	logger.LogSlowOperation(ctx, "create_request", time.Since(startTime))
	respondResult(w, ctx, http.StatusCreated, result)
}

// HandleGetRequest handles GET /requests/{id}
func (h *RequestHandler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	result := h.service.GetRequest(ctx, id)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}
	respondResult(w, ctx, http.StatusOK, result)
}

// HandleSearchRequests handles POST /requests/search
func (h *RequestHandler) HandleSearchRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var criteria repository.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		logger.LogError(ctx, "Malformed JSON payload", err)
		respondError(w, ctx, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	defer r.Body.Close()

	result := h.repo.Search(ctx, criteria)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}
	respondResult(w, ctx, http.StatusOK, result)
}

// HandleUpdateStatus handles PATCH /requests/{id}/status
func (h *RequestHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var payload StatusUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.LogError(ctx, "Malformed JSON payload", err)
		respondError(w, ctx, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	defer r.Body.Close()

	result := h.service.UpdateStatus(ctx, id, payload.Status, payload.Reason, payload.Actor)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}
	respondResult(w, ctx, http.StatusOK, result)
}

// HandleGenerateQuote handles POST /requests/{id}/quote
func (h *RequestHandler) HandleGenerateQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var input models.QuoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.LogError(ctx, "Malformed JSON payload", err)
		respondError(w, ctx, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	defer r.Body.Close()

	result := h.service.GenerateQuoteFromRequest(ctx, id, input)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}
	respondResult(w, ctx, http.StatusOK, result)
}

// HandleAssignRequest handles POST /requests/{id}/assign
func (h *RequestHandler) HandleAssignRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var opts services.AssignOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		logger.LogError(ctx, "Malformed JSON payload", err)
		respondError(w, ctx, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	defer r.Body.Close()

	result := h.service.AssignToAgent(ctx, id, opts)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}
	respondResult(w, ctx, http.StatusOK, result)
}

// HandleScoreRequest handles POST /requests/{id}/score
func (h *RequestHandler) HandleScoreRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	result := h.service.CalculateLeadScore(ctx, id)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}
	respondResult(w, ctx, http.StatusOK, result)
}

// HandleScheduleFollowUp handles POST /requests/{id}/follow-up
func (h *RequestHandler) HandleScheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var schedule models.FollowUpSchedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		logger.LogError(ctx, "Malformed JSON payload", err)
		respondError(w, ctx, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	defer r.Body.Close()

	result := h.service.ScheduleFollowUp(ctx, id, schedule)
	if !result.Success {
		respondRepositoryError(w, ctx, result.Err)
		return
	}
	respondResult(w, ctx, http.StatusOK, result)
}

// ResultEnvelope is the success response body: the data plus any non-fatal
// warnings collected along the way
type ResultEnvelope struct {
	Data          any      `json:"data"`
	Warnings      []string `json:"warnings,omitempty"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

// respondResult writes a successful Result as a JSON envelope
func respondResult[T any](w http.ResponseWriter, ctx context.Context, statusCode int, result models.Result[T]) {
	correlationID, _ := ctx.Value(logger.CorrelationIDKey).(string)
	envelope := ResultEnvelope{
		Data:          result.Data,
		Warnings:      result.Warnings(),
		CorrelationID: correlationID,
	}
	respondJSON(w, ctx, statusCode, envelope)
}

// respondRepositoryError maps a repository error onto an HTTP status. Public
// errors expose their user message; everything else is an opaque 500.
func respondRepositoryError(w http.ResponseWriter, ctx context.Context, repoErr *models.RepositoryError) {
	if repoErr == nil {
		respondError(w, ctx, http.StatusInternalServerError, "internal server error")
		return
	}
	if !repoErr.IsPublic() {
		logger.LogError(ctx, "Operation failed", repoErr, "code", string(repoErr.Code))
		respondError(w, ctx, http.StatusInternalServerError, "internal server error")
		return
	}
	respondError(w, ctx, statusForCode(repoErr.Code), repoErr.UserMessage)
}

func statusForCode(code models.ErrorCode) int {
	switch code {
	case models.ErrorCodeValidationFailed:
		return http.StatusBadRequest
	case models.ErrorCodeNotFound:
		return http.StatusNotFound
	case models.ErrorCodeConflict:
		return http.StatusConflict
	case models.ErrorCodeAuthFailed:
		return http.StatusUnauthorized
	case models.ErrorCodeAuthzDenied:
		return http.StatusForbidden
	case models.ErrorCodeBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, ctx context.Context, statusCode int, data any) {
	if correlationID, ok := ctx.Value(logger.CorrelationIDKey).(string); ok {
		w.Header().Set("X-Correlation-ID", correlationID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.LogError(ctx, "Failed to encode response", err)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, ctx context.Context, statusCode int, message string) {
	correlationID, _ := ctx.Value(logger.CorrelationIDKey).(string)
	response := ErrorResponse{
		Error:         message,
		CorrelationID: correlationID,
	}
	respondJSON(w, ctx, statusCode, response)
}
