package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/checkfox/go_request/internal/config"
	"github.com/checkfox/go_request/internal/logger"
)

// Test authentication middleware when auth is disabled
func TestAuthMiddleware_Disabled(t *testing.T) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Enabled: false,
		},
	}

	middleware := NewAuthMiddleware(cfg)

	handlerCalled := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := middleware.Middleware(testHandler)

	// Make request without auth header
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rr := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rr, req)

	// Handler should be called since auth is disabled
	if !handlerCalled {
		t.Error("Expected handler to be called when auth is disabled")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

// Test authentication middleware with valid secret
func TestAuthMiddleware_ValidSecret(t *testing.T) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Enabled:      true,
			SharedSecret: "test-secret-123",
		},
	}

	middleware := NewAuthMiddleware(cfg)

	handlerCalled := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := middleware.Middleware(testHandler)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("X-Shared-Secret", "test-secret-123")
	rr := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rr, req)

	if !handlerCalled {
		t.Error("Expected handler to be called with valid secret")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

// Test authentication middleware with missing secret
func TestAuthMiddleware_MissingSecret(t *testing.T) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Enabled:      true,
			SharedSecret: "test-secret-123",
		},
	}

	middleware := NewAuthMiddleware(cfg)

	handlerCalled := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := middleware.Middleware(testHandler)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rr := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rr, req)

	if handlerCalled {
		t.Error("Expected handler NOT to be called with missing secret")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if response.Error != "missing authentication header" {
		t.Errorf("Expected error 'missing authentication header', got '%s'", response.Error)
	}
}

// Test authentication middleware with invalid secret
func TestAuthMiddleware_InvalidSecret(t *testing.T) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			Enabled:      true,
			SharedSecret: "test-secret-123",
		},
	}

	middleware := NewAuthMiddleware(cfg)

	handlerCalled := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := middleware.Middleware(testHandler)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("X-Shared-Secret", "wrong-secret")
	rr := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rr, req)

	if handlerCalled {
		t.Error("Expected handler NOT to be called with invalid secret")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if response.Error != "invalid authentication credentials" {
		t.Errorf("Expected error 'invalid authentication credentials', got '%s'", response.Error)
	}
}

// Test that the correlation middleware generates an ID and echoes it back
func TestCorrelationMiddleware_GeneratesID(t *testing.T) {
	middleware := NewCorrelationMiddleware()

	var seenID string
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(logger.CorrelationIDKey).(string)
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := middleware.Middleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rr, req)

	if seenID == "" {
		t.Error("Expected a correlation ID in the request context")
	}
	if rr.Header().Get("X-Correlation-ID") != seenID {
		t.Errorf("Expected the response header to echo %q, got %q", seenID, rr.Header().Get("X-Correlation-ID"))
	}
}

// Test that a caller-provided correlation ID is kept
func TestCorrelationMiddleware_KeepsProvidedID(t *testing.T) {
	middleware := NewCorrelationMiddleware()

	var seenID string
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(logger.CorrelationIDKey).(string)
	})

	wrappedHandler := middleware.Middleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Correlation-ID", "caller-supplied-id")
	rr := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rr, req)

	if seenID != "caller-supplied-id" {
		t.Errorf("Expected the caller's correlation ID to be kept, got %q", seenID)
	}
	if rr.Header().Get("X-Correlation-ID") != "caller-supplied-id" {
		t.Errorf("Expected the response header to echo the caller's ID, got %q", rr.Header().Get("X-Correlation-ID"))
	}
}

// Test recovery middleware
func TestRecoveryMiddleware_Panic(t *testing.T) {
	recovery := NewRecoveryMiddleware()
	correlation := NewCorrelationMiddleware()

	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	wrappedHandler := correlation.Middleware(recovery.Middleware(panicHandler))

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rr := httptest.NewRecorder()

	// Should not panic, should return 500
	wrappedHandler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if response.Error != "internal server error" {
		t.Errorf("Expected error 'internal server error', got '%s'", response.Error)
	}
	if response.CorrelationID == "" {
		t.Error("Expected correlation_id to be set")
	}
}

// Test recovery middleware with normal execution
func TestRecoveryMiddleware_NormalExecution(t *testing.T) {
	middleware := NewRecoveryMiddleware()

	handlerCalled := false
	normalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := middleware.Middleware(normalHandler)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rr := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rr, req)

	if !handlerCalled {
		t.Error("Expected handler to be called")
	}
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}
