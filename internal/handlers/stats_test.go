package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/checkfox/go_request/internal/models"
	"github.com/checkfox/go_request/internal/repository"
	"github.com/checkfox/go_request/internal/transport"
)

func newStatsHarness(remote *stubRemote) *StatsHandler {
	client := transport.NewClient(map[transport.AuthMode]transport.Connection{}, transport.ClientOptions{
		MetricsEnabled: true,
		MetricsSize:    100,
	})
	repo := repository.NewRequestRepository(remote, repository.DefaultOptions)
	return NewStatsHandler(client, repo)
}

func TestHandleRequestCountsByStatus(t *testing.T) {
	remote := newStubRemote()
	remote.requests["req-1"] = map[string]any{"id": "req-1", "status": "new"}
	remote.requests["req-2"] = map[string]any{"id": "req-2", "status": "new"}
	remote.requests["req-3"] = map[string]any{"id": "req-3", "status": "won"}

	handler := newStatsHarness(remote)

	req := httptest.NewRequest(http.MethodGet, "/stats/requests/counts", nil)
	rr := httptest.NewRecorder()

	handler.HandleRequestCountsByStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var counts RequestCountsByStatus
	if err := json.NewDecoder(rr.Body).Decode(&counts); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if counts.New != 2 {
		t.Errorf("Expected 2 new requests, got %d", counts.New)
	}
	if counts.Won != 1 {
		t.Errorf("Expected 1 won request, got %d", counts.Won)
	}
	if counts.Total != 3 {
		t.Errorf("Expected total 3, got %d", counts.Total)
	}
	if counts.Approximate {
		t.Error("Expected exact counts from the dedicated count operation")
	}
}

func TestHandleRequestCountsByStatus_CountFailure(t *testing.T) {
	remote := newStubRemote()
	remote.failOps["countRequest"] = models.NewNetworkError("connection refused", nil)
	handler := newStatsHarness(remote)

	req := httptest.NewRequest(http.MethodGet, "/stats/requests/counts", nil)
	rr := httptest.NewRecorder()

	handler.HandleRequestCountsByStatus(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}
}

func TestHandleOperationMetrics_EmptySummary(t *testing.T) {
	handler := newStatsHarness(newStubRemote())

	req := httptest.NewRequest(http.MethodGet, "/stats/metrics?operation=getRequest", nil)
	rr := httptest.NewRecorder()

	handler.HandleOperationMetrics(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var summary transport.MetricsSummary
	if err := json.NewDecoder(rr.Body).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if summary.TotalCalls != 0 {
		t.Errorf("Expected an empty summary, got %d calls", summary.TotalCalls)
	}
}

func TestHandleClearMetrics(t *testing.T) {
	handler := newStatsHarness(newStubRemote())

	req := httptest.NewRequest(http.MethodPost, "/stats/metrics/clear", nil)
	rr := httptest.NewRecorder()

	handler.HandleClearMetrics(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "cleared" {
		t.Errorf("Expected status 'cleared', got %q", response["status"])
	}
}

func TestHandleHealth(t *testing.T) {
	handler := newStatsHarness(newStubRemote())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	handler.HandleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var health HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Expected status 'ok', got %q", health.Status)
	}
}
