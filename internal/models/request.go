package models

import (
	"encoding/json"
	"time"
)

// BaseModel carries the fields shared by every persisted entity.
// ID is immutable once created.
type BaseModel struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	Owner     string     `json:"owner,omitempty"`
}

// Request is a homeowner service request, the central entity of the platform
type Request struct {
	BaseModel
	Status             RequestStatus `json:"status"`
	Product            string        `json:"product,omitempty"`
	Message            string        `json:"message,omitempty"`
	LeadSource         string        `json:"leadSource,omitempty"`
	Priority           Priority      `json:"priority,omitempty"`
	EstimatedValue     float64       `json:"estimatedValue,omitempty"`
	Budget             string        `json:"budget,omitempty"`
	HomeownerContactID string        `json:"homeownerContactId,omitempty"`
	AgentContactID     string        `json:"agentContactId,omitempty"`
	AddressID          string        `json:"addressId,omitempty"`
	ReadinessScore     float64       `json:"readinessScore,omitempty"`
	Tags               []string      `json:"tags,omitempty"`
	MissingInformation []string      `json:"missingInformation,omitempty"`
	RelationToProperty string        `json:"relationToProperty,omitempty"`
	NeedFinance        bool          `json:"needFinance,omitempty"`
	RequestedVisitDate *time.Time    `json:"requestedVisitDate,omitempty"`
	StatusUpdatedAt    *time.Time    `json:"statusUpdatedAt,omitempty"`
}

// StatusOrder returns the monotonic rank of the request's status
func (r *Request) StatusOrder() int {
	return r.Status.Order()
}

// RequestNote is an append-only annotation on a request. Notes are never
// edited; corrections are new notes.
type RequestNote struct {
	BaseModel
	RequestID string `json:"requestId"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
	NoteType  string `json:"noteType,omitempty"`
}

// RequestAssignment records an agent taking ownership of a request. The
// assignee name and role are denormalized at write time so the history stays
// readable even if the contact record later changes.
type RequestAssignment struct {
	BaseModel
	RequestID  string  `json:"requestId"`
	AgentID    string  `json:"agentId"`
	AgentName  string  `json:"agentName,omitempty"`
	AgentRole  string  `json:"agentRole,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	AssignedBy string  `json:"assignedBy,omitempty"`
}

// RequestStatusHistory is an append-only log entry for a status transition.
// The log only grows; entries are immutable once written.
type RequestStatusHistory struct {
	BaseModel
	RequestID            string        `json:"requestId"`
	PreviousStatus       RequestStatus `json:"previousStatus"`
	NewStatus            RequestStatus `json:"newStatus"`
	Reason               string        `json:"reason,omitempty"`
	TriggeredBy          string        `json:"triggeredBy,omitempty"`
	TimeInPreviousStatus time.Duration `json:"timeInPreviousStatus,omitempty"`
}

// Contact is a person record resolved from the contact directory
type Contact struct {
	BaseModel
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Agent is a contact who can be assigned requests, with routing signals
type Agent struct {
	Contact
	Specialties  []string `json:"specialties,omitempty"`
	ServiceAreas []string `json:"serviceAreas,omitempty"`
	Workload     int      `json:"workload"`
	Capacity     int      `json:"capacity"`
}

// InformationItem is a structured piece of intake information collected for
// a request (answers to qualification questions, uploaded document metadata)
type InformationItem struct {
	BaseModel
	RequestID string `json:"requestId"`
	Label     string `json:"label"`
	Value     string `json:"value,omitempty"`
	Source    string `json:"source,omitempty"`
	Resolved  bool   `json:"resolved,omitempty"`
}

// ScopeItem is one line of agreed project scope on a request
type ScopeItem struct {
	BaseModel
	RequestID   string  `json:"requestId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

// WorkflowState tracks where a request stands in a named external workflow
// (visit scheduling, financing checks) independent of the core status field
type WorkflowState struct {
	BaseModel
	RequestID string     `json:"requestId"`
	Workflow  string     `json:"workflow"`
	State     string     `json:"state"`
	EnteredAt *time.Time `json:"enteredAt,omitempty"`
}

// Property is an address record resolved from the property directory
type Property struct {
	BaseModel
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	Zip    string `json:"zip,omitempty"`
	Region string `json:"region,omitempty"`
}

// EnhancedRequest is a request joined with its resolved lookups and owned
// collections. It is assembled on read and never persisted as its own record.
type EnhancedRequest struct {
	Request
	Agent         *Contact               `json:"agent,omitempty"`
	Homeowner     *Contact               `json:"homeowner,omitempty"`
	Address       *Property              `json:"address,omitempty"`
	Notes            []RequestNote          `json:"notes,omitempty"`
	Assignments      []RequestAssignment    `json:"assignments,omitempty"`
	StatusHistory    []RequestStatusHistory `json:"statusHistory,omitempty"`
	InformationItems []InformationItem      `json:"informationItems,omitempty"`
	ScopeItems       []ScopeItem            `json:"scopeItems,omitempty"`
	WorkflowStates   []WorkflowState        `json:"workflowStates,omitempty"`
}

// DecodeStringList decodes a field that should be a string list but may
// arrive from the remote store as a JSON array, a JSON-encoded string of an
// array, or malformed text. Malformed input yields an empty list rather than
// an error; the remote store is not trusted to keep these fields well formed.
func DecodeStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var direct []string
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct
	}

	// Some writers store the array as an embedded JSON string
	var embedded string
	if err := json.Unmarshal(raw, &embedded); err == nil {
		var inner []string
		if err := json.Unmarshal([]byte(embedded), &inner); err == nil {
			return inner
		}
	}

	return []string{}
}
