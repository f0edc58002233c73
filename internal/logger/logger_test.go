package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func captureLogger(buf *bytes.Buffer) {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	defaultLogger = slog.New(handler)
}

func TestStructuredLogOutput(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf)

	Info(context.Background(), "test message", "key1", "value1", "key2", 42)

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key1"] != "value1" {
		t.Errorf("Expected key1='value1', got %v", logEntry["key1"])
	}
	if logEntry["key2"] != float64(42) {
		t.Errorf("Expected key2=42, got %v", logEntry["key2"])
	}
	if _, ok := logEntry["time"]; !ok {
		t.Error("Expected 'time' field in log output")
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}
}

func TestCorrelationIDPropagation(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf)

	ctx := context.WithValue(context.Background(), CorrelationIDKey, "test-correlation-id")
	Info(ctx, "test message with correlation")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}

	if logEntry["correlation_id"] != "test-correlation-id" {
		t.Errorf("Expected correlation_id='test-correlation-id', got %v", logEntry["correlation_id"])
	}
}

func TestRequestIDPropagation(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-12345")
	Info(ctx, "test message with request_id")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}

	if logEntry["request_id"] != "req-12345" {
		t.Errorf("Expected request_id='req-12345', got %v", logEntry["request_id"])
	}
}

func TestStatusTransitionLogging(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf)

	ctx := context.Background()
	LogStatusTransition(ctx, "req-12345", "new", "assigned")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}

	if logEntry["msg"] != "Request status transition" {
		t.Errorf("Expected msg='Request status transition', got %v", logEntry["msg"])
	}
	if logEntry["request_id"] != "req-12345" {
		t.Errorf("Expected request_id='req-12345', got %v", logEntry["request_id"])
	}
	if logEntry["old_status"] != "new" {
		t.Errorf("Expected old_status='new', got %v", logEntry["old_status"])
	}
	if logEntry["new_status"] != "assigned" {
		t.Errorf("Expected new_status='assigned', got %v", logEntry["new_status"])
	}
	if _, ok := logEntry["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in status transition log")
	}
}

func TestSlowOperationLogging(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf)

	ctx := context.Background()

	LogSlowOperation(ctx, "test_operation", 1500*time.Millisecond)
	if buf.Len() == 0 {
		t.Error("Expected slow operation to be logged")
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}

	if logEntry["msg"] != "Slow operation detected" {
		t.Errorf("Expected msg='Slow operation detected', got %v", logEntry["msg"])
	}
	if logEntry["operation"] != "test_operation" {
		t.Errorf("Expected operation='test_operation', got %v", logEntry["operation"])
	}
	if logEntry["duration_ms"] != float64(1500) {
		t.Errorf("Expected duration_ms=1500, got %v", logEntry["duration_ms"])
	}
	if logEntry["level"] != "WARN" {
		t.Errorf("Expected level='WARN', got %v", logEntry["level"])
	}

	// Fast operations stay quiet
	buf.Reset()
	LogSlowOperation(ctx, "fast_operation", 500*time.Millisecond)
	if buf.Len() > 0 {
		t.Error("Expected fast operation not to be logged")
	}
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	captureLogger(&buf)

	ctx := context.Background()
	testErr := &testError{msg: "test error message"}
	LogError(ctx, "Operation failed", testErr, "additional_key", "additional_value")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}

	if logEntry["msg"] != "Operation failed" {
		t.Errorf("Expected msg='Operation failed', got %v", logEntry["msg"])
	}
	if logEntry["error"] != "test error message" {
		t.Errorf("Expected error='test error message', got %v", logEntry["error"])
	}
	if logEntry["additional_key"] != "additional_value" {
		t.Errorf("Expected additional_key='additional_value', got %v", logEntry["additional_key"])
	}
	if logEntry["level"] != "ERROR" {
		t.Errorf("Expected level='ERROR', got %v", logEntry["level"])
	}
}

// testError is a simple error type for testing
type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
