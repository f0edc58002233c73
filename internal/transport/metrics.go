package transport

import (
	"sync"
	"time"

	"github.com/checkfox/go_request/internal/models"
)

// DefaultMetricsSize is the default capacity of the metrics ring buffer
const DefaultMetricsSize = 1000

// OperationMetric is one timed attempt against the remote API
type OperationMetric struct {
	Operation   string           `json:"operation"`
	Model       string           `json:"model"`
	Duration    time.Duration    `json:"duration"`
	Success     bool             `json:"success"`
	ErrorCode   models.ErrorCode `json:"error_code,omitempty"`
	RecordCount int              `json:"record_count"`
	Timestamp   time.Time        `json:"timestamp"`
}

// MetricsSummary aggregates recorded metrics for a filter
type MetricsSummary struct {
	TotalCalls      int           `json:"total_calls"`
	SuccessCount    int           `json:"success_count"`
	SuccessRate     float64       `json:"success_rate"`
	AverageDuration time.Duration `json:"average_duration"`
}

// MetricsBuffer is a bounded, concurrency-safe ring of the last N operation
// metrics. Appends past capacity evict the oldest entries.
type MetricsBuffer struct {
	mu       sync.Mutex
	capacity int
	entries  []OperationMetric
	next     int
	full     bool
}

// NewMetricsBuffer creates a buffer holding at most capacity entries
func NewMetricsBuffer(capacity int) *MetricsBuffer {
	if capacity <= 0 {
		capacity = DefaultMetricsSize
	}
	return &MetricsBuffer{
		capacity: capacity,
		entries:  make([]OperationMetric, capacity),
	}
}

// Record appends one metric, evicting the oldest entry when full
func (b *MetricsBuffer) Record(m OperationMetric) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = m
	b.next = (b.next + 1) % b.capacity
	if b.next == 0 {
		b.full = true
	}
}

// Len returns the number of recorded entries currently held
func (b *MetricsBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.full {
		return b.capacity
	}
	return b.next
}

// Summary aggregates entries matching the operation/model filter; empty
// filter values match everything
func (b *MetricsBuffer) Summary(operation, model string) MetricsSummary {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.next
	if b.full {
		count = b.capacity
	}

	var summary MetricsSummary
	var totalDuration time.Duration

	for i := 0; i < count; i++ {
		m := b.entries[i]
		if operation != "" && m.Operation != operation {
			continue
		}
		if model != "" && m.Model != model {
			continue
		}
		summary.TotalCalls++
		totalDuration += m.Duration
		if m.Success {
			summary.SuccessCount++
		}
	}

	if summary.TotalCalls > 0 {
		summary.SuccessRate = float64(summary.SuccessCount) / float64(summary.TotalCalls)
		summary.AverageDuration = totalDuration / time.Duration(summary.TotalCalls)
	}

	return summary
}

// Clear resets the buffer
func (b *MetricsBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next = 0
	b.full = false
}
