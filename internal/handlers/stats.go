package handlers

import (
	"net/http"
	"time"

	"github.com/checkfox/go_request/internal/logger"
	"github.com/checkfox/go_request/internal/models"
	"github.com/checkfox/go_request/internal/repository"
	"github.com/checkfox/go_request/internal/transport"
)

// StatsHandler handles statistics and observability endpoints
type StatsHandler struct {
	client *transport.Client
	repo   *repository.RequestRepository
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(client *transport.Client, repo *repository.RequestRepository) *StatsHandler {
	return &StatsHandler{
		client: client,
		repo:   repo,
	}
}

// RequestCountsByStatus represents request counts grouped by status
type RequestCountsByStatus struct {
	New         int  `json:"new"`
	Assigned    int  `json:"assigned"`
	InProgress  int  `json:"in_progress"`
	QuoteReady  int  `json:"quote_ready"`
	Won         int  `json:"won"`
	Lost        int  `json:"lost"`
	Expired     int  `json:"expired"`
	Archived    int  `json:"archived"`
	Total       int  `json:"total"`
	Approximate bool `json:"approximate,omitempty"`
}

// HandleOperationMetrics handles GET /stats/metrics. Optional "operation"
// and "model" query parameters narrow the summary.
func (h *StatsHandler) HandleOperationMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger.Info(ctx, "Fetching operation metrics")

	operation := r.URL.Query().Get("operation")
	model := r.URL.Query().Get("model")

	summary := h.client.GetMetrics(operation, model)
	respondJSON(w, ctx, http.StatusOK, summary)
}

// HandleClearMetrics handles POST /stats/metrics/clear
func (h *StatsHandler) HandleClearMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger.Info(ctx, "Clearing operation metrics")

	h.client.ClearMetrics()
	respondJSON(w, ctx, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleRequestCountsByStatus handles GET /stats/requests/counts
func (h *StatsHandler) HandleRequestCountsByStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger.Info(ctx, "Fetching request counts by status")

	statuses := []models.RequestStatus{
		models.RequestStatusNew,
		models.RequestStatusAssigned,
		models.RequestStatusInProgress,
		models.RequestStatusQuoteReady,
		models.RequestStatusWon,
		models.RequestStatusLost,
		models.RequestStatusExpired,
		models.RequestStatusArchived,
	}

	counts := make(map[models.RequestStatus]int, len(statuses))
	approximate := false
	total := 0
	for _, status := range statuses {
		filter := repository.FieldFilter("status", repository.FilterOpEq, string(status))
		result := h.repo.Count(ctx, &filter)
		if !result.Success {
			respondRepositoryError(w, ctx, result.Err)
			return
		}
		counts[status] = result.Data
		total += result.Data
		if result.Meta != nil && result.Meta.Approximate {
			approximate = true
		}
	}

	response := RequestCountsByStatus{
		New:         counts[models.RequestStatusNew],
		Assigned:    counts[models.RequestStatusAssigned],
		InProgress:  counts[models.RequestStatusInProgress],
		QuoteReady:  counts[models.RequestStatusQuoteReady],
		Won:         counts[models.RequestStatusWon],
		Lost:        counts[models.RequestStatusLost],
		Expired:     counts[models.RequestStatusExpired],
		Archived:    counts[models.RequestStatusArchived],
		Total:       total,
		Approximate: approximate,
	}
	respondJSON(w, ctx, http.StatusOK, response)
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// HandleHealth handles GET /health
func (h *StatsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r.Context(), http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	})
}
