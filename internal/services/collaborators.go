package services

import (
	"context"
	"time"

	"github.com/checkfox/go_request/internal/models"
)

// Notifier delivers outbound notifications. All calls are fire-and-forget
// from the service's perspective: failures are caught and logged, never
// propagated.
type Notifier interface {
	SendNewRequestNotifications(ctx context.Context, requestID string, options map[string]any) error
	SendAssignmentNotification(ctx context.Context, agentID, requestID string, reason models.AssignmentReason) error
	ScheduleReminder(ctx context.Context, reminder Reminder) error
}

// Reminder is one scheduled reminder registration
type Reminder struct {
	RequestID    string    `json:"requestId"`
	ReminderDate time.Time `json:"reminderDate"`
	Message      string    `json:"message"`
	RecipientID  string    `json:"recipientId,omitempty"`
}

// Auditor records business events for the audit trail, best-effort
type Auditor interface {
	LogRequestCreated(ctx context.Context, requestID string, metadata map[string]any) error
	LogStatusChange(ctx context.Context, requestID string, from, to models.RequestStatus, actor string) error
	LogAssignment(ctx context.Context, requestID, agentID string, reason models.AssignmentReason) error
}

// ContactDirectory resolves people records for enrichment and assignment.
// Its absence degrades specific factor scores rather than failing calls.
type ContactDirectory interface {
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	ListAgents(ctx context.Context) ([]models.Agent, error)
}

// PropertyDirectory resolves address records for enrichment
type PropertyDirectory interface {
	GetProperty(ctx context.Context, id string) (*models.Property, error)
}
