package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/checkfox/go_request/internal/models"
	"github.com/checkfox/go_request/internal/repository"
	"github.com/checkfox/go_request/internal/services"
	"github.com/checkfox/go_request/internal/transport"
)

// stubRemote emulates the remote query/mutation API over an in-memory
// request map so the handlers can run against the real service and
// repository layers.
type stubRemote struct {
	mu       sync.Mutex
	requests map[string]map[string]any
	failOps  map[string]*models.RepositoryError
	nextID   int
}

func newStubRemote() *stubRemote {
	return &stubRemote{
		requests: make(map[string]map[string]any),
		failOps:  make(map[string]*models.RepositoryError),
	}
}

func (s *stubRemote) Query(_ context.Context, op transport.Operation, opCtx transport.OperationContext) models.Result[*transport.Response] {
	return s.execute(op, opCtx)
}

func (s *stubRemote) Mutate(_ context.Context, op transport.Operation, opCtx transport.OperationContext) models.Result[*transport.Response] {
	return s.execute(op, opCtx)
}

func (s *stubRemote) execute(op transport.Operation, opCtx transport.OperationContext) models.Result[*transport.Response] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if repoErr, ok := s.failOps[opCtx.OperationName]; ok {
		return models.Fail[*transport.Response](repoErr)
	}

	switch opCtx.OperationName {
	case "createRequest":
		input, _ := op.Variables["input"].(map[string]any)
		record := make(map[string]any, len(input))
		for k, v := range input {
			record[k] = v
		}
		s.nextID++
		id := fmt.Sprintf("req-%d", s.nextID)
		record["id"] = id
		s.requests[id] = record
		return stubRespond("createRequest", record)
	case "getRequest":
		id, _ := op.Variables["id"].(string)
		record, ok := s.requests[id]
		if !ok {
			return stubRespondRaw("getRequest", json.RawMessage("null"))
		}
		return stubRespond("getRequest", record)
	case "updateRequest":
		input, _ := op.Variables["input"].(map[string]any)
		id, _ := input["id"].(string)
		record, ok := s.requests[id]
		if !ok {
			return stubRespondRaw("updateRequest", json.RawMessage("null"))
		}
		for k, v := range input {
			record[k] = v
		}
		return stubRespond("updateRequest", record)
	case "createRequestNote":
		return stubRespond("createRequestNote", op.Variables["input"])
	case "createRequestAssignment":
		return stubRespond("createRequestAssignment", op.Variables["input"])
	case "createRequestStatusHistory":
		return stubRespond("createRequestStatusHistory", op.Variables["input"])
	case "listRequest":
		items := make([]any, 0, len(s.requests))
		for _, record := range s.requests {
			items = append(items, record)
		}
		return stubRespond("listRequests", map[string]any{"items": items})
	case "countRequest":
		filter, _ := op.Variables["filter"].(map[string]any)
		cond, _ := filter["status"].(map[string]any)
		status, _ := cond["eq"].(string)
		count := 0
		for _, record := range s.requests {
			if status == "" || record["status"] == status {
				count++
			}
		}
		return stubRespond("countRequests", map[string]any{"count": count})
	case "listRequestNote":
		return stubRespond("listRequestNotes", map[string]any{"items": []any{}})
	case "listRequestAssignment":
		return stubRespond("listRequestAssignments", map[string]any{"items": []any{}})
	case "listRequestStatusHistory":
		return stubRespond("listRequestStatusHistories", map[string]any{"items": []any{}})
	case "listInformationItem":
		return stubRespond("listInformationItems", map[string]any{"items": []any{}})
	case "listScopeItem":
		return stubRespond("listScopeItems", map[string]any{"items": []any{}})
	case "listWorkflowState":
		return stubRespond("listWorkflowStates", map[string]any{"items": []any{}})
	}

	return models.Fail[*transport.Response](models.NewUnknownError("unhandled operation "+opCtx.OperationName, nil))
}

func stubRespond(key string, payload any) models.Result[*transport.Response] {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.Fail[*transport.Response](models.NewUnknownError("stub payload marshal failed", err))
	}
	return stubRespondRaw(key, raw)
}

func stubRespondRaw(key string, raw json.RawMessage) models.Result[*transport.Response] {
	return models.OKWithMeta(&transport.Response{
		Data: map[string]json.RawMessage{key: raw},
	}, &models.ResultMeta{})
}

func newTestRouter(remote *stubRemote) *mux.Router {
	repo := repository.NewRequestRepository(remote, repository.DefaultOptions)
	service := services.NewRequestService(repo, nil, nil, nil, nil)
	handler := NewRequestHandler(service, repo)

	router := mux.NewRouter()
	router.HandleFunc("/requests", handler.HandleCreateRequest).Methods(http.MethodPost)
	router.HandleFunc("/requests/search", handler.HandleSearchRequests).Methods(http.MethodPost)
	router.HandleFunc("/requests/{id}", handler.HandleGetRequest).Methods(http.MethodGet)
	router.HandleFunc("/requests/{id}/status", handler.HandleUpdateStatus).Methods(http.MethodPatch)
	router.HandleFunc("/requests/{id}/quote", handler.HandleGenerateQuote).Methods(http.MethodPost)
	return router
}

func TestHandleCreateRequest_Success(t *testing.T) {
	remote := newStubRemote()
	router := newTestRouter(remote)

	body := `{"request": {"homeownerContactId": "contact-1", "product": "Roofing"}}`
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var envelope ResultEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected an object payload, got %T", envelope.Data)
	}
	if data["id"] == "" {
		t.Error("Expected the created request id in the response")
	}
	if data["status"] != "new" {
		t.Errorf("Expected status 'new', got %v", data["status"])
	}
}

func TestHandleCreateRequest_MalformedJSON(t *testing.T) {
	router := newTestRouter(newStubRemote())

	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestHandleCreateRequest_MissingBody(t *testing.T) {
	router := newTestRouter(newStubRemote())

	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{"options": {}}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 when the request object is absent, got %d", rr.Code)
	}
}

func TestHandleCreateRequest_ValidationFailureIsPublic(t *testing.T) {
	router := newTestRouter(newStubRemote())

	// Missing homeownerContactId and product
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{"request": {"message": "hi"}}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a validation failure, got %d", rr.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if response.Error == "" || response.Error == "internal server error" {
		t.Errorf("Expected a user-facing validation message, got %q", response.Error)
	}
}

func TestHandleGetRequest_NotFound(t *testing.T) {
	router := newTestRouter(newStubRemote())

	req := httptest.NewRequest(http.MethodGet, "/requests/missing", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestHandleGetRequest_InternalErrorsAreOpaque(t *testing.T) {
	remote := newStubRemote()
	remote.failOps["getRequest"] = models.NewNetworkError("connection refused", nil)
	router := newTestRouter(remote)

	req := httptest.NewRequest(http.MethodGet, "/requests/req-1", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if response.Error != "internal server error" {
		t.Errorf("Expected an opaque error message, got %q", response.Error)
	}
}

func TestHandleUpdateStatus_DisallowedTransition(t *testing.T) {
	remote := newStubRemote()
	remote.requests["req-1"] = map[string]any{"id": "req-1", "status": "won"}
	router := newTestRouter(remote)

	body := `{"status": "in_progress", "reason": "reopen", "actor": "ops"}`
	req := httptest.NewRequest(http.MethodPatch, "/requests/req-1/status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for a disallowed transition, got %d", rr.Code)
	}
}

func TestHandleUpdateStatus_UnknownStatus(t *testing.T) {
	remote := newStubRemote()
	remote.requests["req-1"] = map[string]any{"id": "req-1", "status": "new"}
	router := newTestRouter(remote)

	body := `{"status": "bogus"}`
	req := httptest.NewRequest(http.MethodPatch, "/requests/req-1/status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an unknown status, got %d", rr.Code)
	}
}

func TestHandleUpdateStatus_Success(t *testing.T) {
	remote := newStubRemote()
	remote.requests["req-1"] = map[string]any{"id": "req-1", "status": "new"}
	router := newTestRouter(remote)

	body := `{"status": "assigned", "reason": "triage", "actor": "ops"}`
	req := httptest.NewRequest(http.MethodPatch, "/requests/req-1/status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var envelope ResultEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, _ := envelope.Data.(map[string]any)
	if data["status"] != "assigned" {
		t.Errorf("Expected status 'assigned', got %v", data["status"])
	}
}

func TestHandleGenerateQuote_IneligibleStatusIsUnprocessable(t *testing.T) {
	remote := newStubRemote()
	remote.requests["req-1"] = map[string]any{
		"id":                 "req-1",
		"status":             "new",
		"product":            "Deck build",
		"budget":             "$20,000",
		"homeownerContactId": "contact-1",
		"addressId":          "prop-1",
	}
	router := newTestRouter(remote)

	req := httptest.NewRequest(http.MethodPost, "/requests/req-1/quote", strings.NewReader(`{"basePrice": 10000}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rr.Code)
	}
}

func TestHandleGenerateQuote_Success(t *testing.T) {
	remote := newStubRemote()
	remote.requests["req-1"] = map[string]any{
		"id":                 "req-1",
		"status":             "in_progress",
		"product":            "Kitchen renovation",
		"budget":             "$60,000",
		"homeownerContactId": "contact-1",
		"addressId":          "prop-1",
	}
	router := newTestRouter(remote)

	body := `{"basePrice": 10000, "adjustmentFactors": {"complexity": 1.5}}`
	req := httptest.NewRequest(http.MethodPost, "/requests/req-1/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var envelope ResultEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	data, _ := envelope.Data.(map[string]any)
	if data["totalPrice"] != float64(15000) {
		t.Errorf("Expected totalPrice 15000, got %v", data["totalPrice"])
	}
}

func TestHandleSearchRequests_PassesCriteria(t *testing.T) {
	remote := newStubRemote()
	router := newTestRouter(remote)

	body := `{"Statuses": ["new"], "Limit": 10}`
	req := httptest.NewRequest(http.MethodPost, "/requests/search", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
