package models

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Classify turns an arbitrary transport failure into a RepositoryError with
// operation/model context attached. It is pure (no I/O) and total (never
// panics, never returns nil for a non-nil error).
//
// Rules, in priority order:
//  1. an existing RepositoryError gains context and is returned unchanged
//  2. a WireFailure becomes a wire-protocol error carrying the error list
//  3. network/connection signatures become network errors
//  4. unauthorized/expired-session signatures become auth errors
//  5. timeout signatures become timeout errors
//  6. everything else becomes an unknown error wrapping the cause
func Classify(err error, operation, model string) *RepositoryError {
	if err == nil {
		return NewUnknownError("classify called with nil error", nil).WithContext(operation, model)
	}

	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.WithContext(operation, model)
	}

	var wireFailure *WireFailure
	if errors.As(err, &wireFailure) {
		return NewWireProtocolError(wireFailure.Errors, nil).WithContext(operation, model)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("operation deadline exceeded", err).WithContext(operation, model)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewTimeoutError("network timeout", err).WithContext(operation, model)
		}
		return NewNetworkError("network failure", err).WithContext(operation, model)
	}

	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, "connection refused", "connection reset", "no such host", "broken pipe", "network is unreachable", "econnrefused", "econnreset"):
		return NewConnectionError(err.Error(), err).WithContext(operation, model)

	case containsAny(msg, "unauthorized", "token expired", "session expired", "not authenticated", "401"):
		return NewAuthError(err.Error(), err).WithContext(operation, model)

	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return NewTimeoutError(err.Error(), err).WithContext(operation, model)

	default:
		return NewUnknownError(err.Error(), err).WithContext(operation, model)
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
