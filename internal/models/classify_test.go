package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// timeoutNetErr implements net.Error for classification tests
type timeoutNetErr struct {
	timeout bool
}

func (e *timeoutNetErr) Error() string   { return "simulated network error" }
func (e *timeoutNetErr) Timeout() bool   { return e.timeout }
func (e *timeoutNetErr) Temporary() bool { return true }

func TestClassify_PassesThroughRepositoryError(t *testing.T) {
	original := NewNotFoundError("Request", "req-1")

	classified := Classify(original, "getRequest", "Request")

	if classified != original {
		t.Error("Expected an existing RepositoryError to be returned unchanged")
	}
	if classified.Operation != "getRequest" {
		t.Errorf("Expected operation context to be attached, got %q", classified.Operation)
	}
}

func TestClassify_PassesThroughWrappedRepositoryError(t *testing.T) {
	original := NewRateLimitedError("throttled", nil)
	wrapped := fmt.Errorf("executing operation: %w", original)

	classified := Classify(wrapped, "listRequest", "Request")

	if classified.Code != ErrorCodeRateLimited {
		t.Errorf("Expected RATE_LIMITED, got %s", classified.Code)
	}
}

func TestClassify_WireFailure(t *testing.T) {
	failure := &WireFailure{Errors: []WireError{{Message: "rejected"}}}

	classified := Classify(failure, "createRequest", "Request")

	if classified.Code != ErrorCodeWireProtocol {
		t.Errorf("Expected WIRE_PROTOCOL_ERROR, got %s", classified.Code)
	}
	if len(classified.WireErrors) != 1 || classified.WireErrors[0].Message != "rejected" {
		t.Errorf("Expected wire errors to be carried, got %v", classified.WireErrors)
	}
}

func TestClassify_DeadlineExceeded(t *testing.T) {
	classified := Classify(context.DeadlineExceeded, "getRequest", "Request")

	if classified.Code != ErrorCodeTimeout {
		t.Errorf("Expected TIMEOUT, got %s", classified.Code)
	}
}

func TestClassify_NetError(t *testing.T) {
	timeout := Classify(&timeoutNetErr{timeout: true}, "getRequest", "Request")
	if timeout.Code != ErrorCodeTimeout {
		t.Errorf("Expected TIMEOUT for net timeout, got %s", timeout.Code)
	}

	network := Classify(&timeoutNetErr{timeout: false}, "getRequest", "Request")
	if network.Code != ErrorCodeNetwork {
		t.Errorf("Expected NETWORK_ERROR for net failure, got %s", network.Code)
	}
}

func TestClassify_StringSignatures(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		expected ErrorCode
	}{
		{"connection refused", "dial tcp: connection refused", ErrorCodeConnection},
		{"connection reset", "read: connection reset by peer", ErrorCodeConnection},
		{"no such host", "lookup api.example.com: no such host", ErrorCodeConnection},
		{"unauthorized", "unauthorized: HTTP 401", ErrorCodeAuthFailed},
		{"token expired", "token expired, please refresh", ErrorCodeAuthFailed},
		{"timeout wording", "operation timed out after 30s", ErrorCodeTimeout},
		{"unrecognized", "something completely different", ErrorCodeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := Classify(errors.New(tc.message), "op", "Request")
			if classified.Code != tc.expected {
				t.Errorf("Expected %s for %q, got %s", tc.expected, tc.message, classified.Code)
			}
		})
	}
}

func TestClassify_NeverReturnsNil(t *testing.T) {
	if Classify(nil, "op", "Request") == nil {
		t.Error("Expected a non-nil result for nil input")
	}
	if Classify(errors.New(""), "op", "Request") == nil {
		t.Error("Expected a non-nil result for an empty error")
	}
}

func TestClassify_AttachesContext(t *testing.T) {
	classified := Classify(errors.New("boom"), "updateRequest", "Request")

	if classified.Operation != "updateRequest" {
		t.Errorf("Expected operation updateRequest, got %q", classified.Operation)
	}
	if classified.Model != "Request" {
		t.Errorf("Expected model Request, got %q", classified.Model)
	}
	if classified.Cause == nil {
		t.Error("Expected the original error to be preserved as cause")
	}
}
