package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/checkfox/go_request/internal/logger"
	"github.com/checkfox/go_request/internal/models"
)

const (
	// DefaultTimeout bounds a single attempt against the remote API
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries bounds how many times a retryable failure is retried
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base inter-attempt delay; the wait before
	// retry n is DefaultRetryDelay * n
	DefaultRetryDelay = time.Second
)

// Operation is a single named query or mutation to execute remotely
type Operation struct {
	Document  string
	Variables map[string]any
	AuthMode  AuthMode
	Timeout   time.Duration
}

// OperationContext names the operation and model for classification and metrics
type OperationContext struct {
	OperationName string
	ModelName     string
}

// Response is the decoded success payload of an executed operation
type Response struct {
	Data map[string]json.RawMessage
}

// Client executes operations against the remote query/mutation API with
// timeout enforcement, retry on retryable failures, and per-operation metrics
type Client struct {
	connections map[AuthMode]Connection
	defaultMode AuthMode
	maxRetries  int
	retryDelay  time.Duration
	timeout     time.Duration
	metrics     *MetricsBuffer
}

// ClientOptions configures a Client; zero values fall back to defaults
type ClientOptions struct {
	MaxRetries     int
	RetryDelay     time.Duration
	Timeout        time.Duration
	MetricsEnabled bool
	MetricsSize    int
}

// NewClient creates a client over the given connections. The API-key
// connection is required; it is the fallback for unsupported auth modes.
func NewClient(connections map[AuthMode]Connection, opts ClientOptions) *Client {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	var metrics *MetricsBuffer
	if opts.MetricsEnabled {
		size := opts.MetricsSize
		if size == 0 {
			size = DefaultMetricsSize
		}
		metrics = NewMetricsBuffer(size)
	}

	return &Client{
		connections: connections,
		defaultMode: AuthModeAPIKey,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		timeout:     opts.Timeout,
		metrics:     metrics,
	}
}

// Query executes a read operation, defaulting the operation name to "query"
func (c *Client) Query(ctx context.Context, op Operation, opCtx OperationContext) models.Result[*Response] {
	if opCtx.OperationName == "" {
		opCtx.OperationName = "query"
	}
	return c.Execute(ctx, op, opCtx)
}

// Mutate executes a write operation, defaulting the operation name to "mutation"
func (c *Client) Mutate(ctx context.Context, op Operation, opCtx OperationContext) models.Result[*Response] {
	if opCtx.OperationName == "" {
		opCtx.OperationName = "mutation"
	}
	return c.Execute(ctx, op, opCtx)
}

// Execute runs one operation with timeout and retry semantics. Retryable
// failures are retried up to maxRetries times with a delay growing linearly
// in the attempt number; non-retryable failures terminate immediately.
func (c *Client) Execute(ctx context.Context, op Operation, opCtx OperationContext) models.Result[*Response] {
	conn := c.connectionFor(ctx, op.AuthMode)

	timeout := op.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}

	start := time.Now()
	var lastErr *models.RepositoryError

	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		attemptStart := time.Now()
		wire, err := c.attempt(ctx, conn, op, timeout)
		elapsed := time.Since(attemptStart)

		if err == nil {
			recordCount := inferRecordCount(wire.Data)
			c.record(opCtx, elapsed, true, "", recordCount)

			result := models.OKWithMeta(&Response{Data: wire.Data}, &models.ResultMeta{
				ExecutionTime: time.Since(start),
			})
			// Non-fatal errors alongside usable data surface as warnings
			for _, we := range wire.Errors {
				result.AddWarning(we.Message)
			}
			return result
		}

		lastErr = models.Classify(err, opCtx.OperationName, opCtx.ModelName)
		c.record(opCtx, elapsed, false, lastErr.Code, 0)

		if !lastErr.IsRetryable() || attempt > c.maxRetries {
			break
		}

		delay := c.retryDelay * time.Duration(attempt)
		logger.Warn(ctx, "Retrying remote operation",
			"operation", opCtx.OperationName,
			"model", opCtx.ModelName,
			"attempt", attempt,
			"delay", delay,
			"error_code", lastErr.Code)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			lastErr = models.Classify(ctx.Err(), opCtx.OperationName, opCtx.ModelName)
			return models.FailWithMeta[*Response](lastErr, &models.ResultMeta{ExecutionTime: time.Since(start)})
		}
	}

	return models.FailWithMeta[*Response](lastErr, &models.ResultMeta{ExecutionTime: time.Since(start)})
}

// attempt races one remote call against the attempt timeout. A timeout
// abandons the wait; the in-flight call is not guaranteed to be cancelled
// server-side, so a timeout means unknown outcome, not no-op.
func (c *Client) attempt(ctx context.Context, conn Connection, op Operation, timeout time.Duration) (*WireResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		wire *WireResponse
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		wire, err := conn.Do(attemptCtx, op.Document, op.Variables)
		done <- outcome{wire: wire, err: err}
	}()

	select {
	case out := <-done:
		return out.wire, out.err
	case <-attemptCtx.Done():
		return nil, models.NewTimeoutError("remote operation did not settle within timeout", attemptCtx.Err())
	}
}

// connectionFor selects the connection for an auth mode. An unsupported mode
// logs a warning and falls back to the API-key connection rather than failing.
func (c *Client) connectionFor(ctx context.Context, mode AuthMode) Connection {
	if mode == "" {
		mode = c.defaultMode
	}
	if conn, ok := c.connections[mode]; ok && conn != nil {
		return conn
	}
	logger.Warn(ctx, "Unsupported auth mode, falling back to API key", "auth_mode", string(mode))
	return c.connections[c.defaultMode]
}

func (c *Client) record(opCtx OperationContext, duration time.Duration, success bool, errorCode models.ErrorCode, recordCount int) {
	if c.metrics == nil {
		return
	}
	c.metrics.Record(OperationMetric{
		Operation:   opCtx.OperationName,
		Model:       opCtx.ModelName,
		Duration:    duration,
		Success:     success,
		ErrorCode:   errorCode,
		RecordCount: recordCount,
		Timestamp:   time.Now(),
	})
}

// GetMetrics returns aggregate metrics filtered by operation and/or model
// name; empty strings match everything
func (c *Client) GetMetrics(operationName, modelName string) MetricsSummary {
	if c.metrics == nil {
		return MetricsSummary{}
	}
	return c.metrics.Summary(operationName, modelName)
}

// ClearMetrics resets the metrics buffer
func (c *Client) ClearMetrics() {
	if c.metrics != nil {
		c.metrics.Clear()
	}
}

// inferRecordCount guesses how many records a response touched: the length
// of an items array, 1 for a single keyed object, otherwise 0
func inferRecordCount(data map[string]json.RawMessage) int {
	for _, raw := range data {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}

		var page struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &page); err == nil && page.Items != nil {
			return len(page.Items)
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			return 1
		}
	}
	return 0
}
