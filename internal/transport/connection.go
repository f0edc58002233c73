package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/checkfox/go_request/internal/models"
)

// AuthMode selects the credential context under which an operation executes
type AuthMode string

const (
	// AuthModeAPIKey is the public/anonymous mode using the service API key
	AuthModeAPIKey AuthMode = "apiKey"

	// AuthModeUserSession is the authenticated mode using a session bearer token
	AuthModeUserSession AuthMode = "userSession"
)

// WireResponse is the raw shape returned by the remote query/mutation API
type WireResponse struct {
	Data   map[string]json.RawMessage `json:"data,omitempty"`
	Errors []models.WireError         `json:"errors,omitempty"`
}

// HasUsableData reports whether the response carries any non-null data value
func (r *WireResponse) HasUsableData() bool {
	for _, raw := range r.Data {
		if len(raw) > 0 && string(raw) != "null" {
			return true
		}
	}
	return false
}

// Connection sends a single operation document to the remote API under one
// credential context
type Connection interface {
	Do(ctx context.Context, document string, variables map[string]any) (*WireResponse, error)
}

// HTTPConnection is a Connection over HTTP POST with a fixed credential header
type HTTPConnection struct {
	endpoint   string
	authHeader string
	authValue  string
	httpClient *http.Client
}

// NewAPIKeyConnection creates a connection authenticating with the service API key
func NewAPIKeyConnection(endpoint, apiKey string, timeout time.Duration) *HTTPConnection {
	return &HTTPConnection{
		endpoint:   endpoint,
		authHeader: "x-api-key",
		authValue:  apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewSessionConnection creates a connection authenticating with a session bearer token
func NewSessionConnection(endpoint, sessionToken string, timeout time.Duration) *HTTPConnection {
	return &HTTPConnection{
		endpoint:   endpoint,
		authHeader: "Authorization",
		authValue:  fmt.Sprintf("Bearer %s", sessionToken),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Do executes one operation document against the remote API.
// A rejected response (error list, no usable data) is returned as a
// *models.WireFailure so classification can build a wire-protocol error.
func (c *HTTPConnection) Do(ctx context.Context, document string, variables map[string]any) (*WireResponse, error) {
	body, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.authHeader, c.authValue)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("unauthorized: HTTP %d", resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.NewRateLimitedError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, respBody), nil)
	case resp.StatusCode >= 500:
		return nil, models.NewNetworkError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, respBody), nil)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, respBody)
	}

	var wire WireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	// Errors without usable data are a hard failure; errors alongside data
	// are non-fatal warnings handled by the client.
	if len(wire.Errors) > 0 && !wire.HasUsableData() {
		return nil, &models.WireFailure{Errors: wire.Errors}
	}

	return &wire, nil
}
