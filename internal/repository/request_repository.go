package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/checkfox/go_request/internal/logger"
	"github.com/checkfox/go_request/internal/models"
	"github.com/google/uuid"
)

// StatusContext describes who triggered a status change and why
type StatusContext struct {
	Reason      string
	TriggeredBy string
}

// SearchCriteria composes business filters into the repository filter grammar
type SearchCriteria struct {
	Statuses    []models.RequestStatus
	AssignedTo  []string
	Priorities  []models.Priority
	LeadSources []string

	// Date range applied to the named date field (e.g. "createdAt")
	DateField string
	DateFrom  *time.Time
	DateTo    *time.Time

	HasAgent      *bool
	HasProperty   *bool
	NeedsFollowUp *bool

	Limit     int
	NextToken string
}

// RequestRepository specializes the generic repository for the Request
// entity family: requests plus their append-only notes, assignments, and
// status history.
type RequestRepository struct {
	requests    *Repository[models.Request]
	notes       *Repository[models.RequestNote]
	assignments *Repository[models.RequestAssignment]
	history     *Repository[models.RequestStatusHistory]
	infoItems   *Repository[models.InformationItem]
	scopeItems  *Repository[models.ScopeItem]
	workflows   *Repository[models.WorkflowState]
}

// NewRequestRepository creates a RequestRepository over the given executor
func NewRequestRepository(exec Executor, opts Options) *RequestRepository {
	return &RequestRepository{
		requests:    New[models.Request](exec, RequestDescriptor{}, opts),
		notes:       New[models.RequestNote](exec, NoteDescriptor{}, opts),
		assignments: New[models.RequestAssignment](exec, AssignmentDescriptor{}, opts),
		history:     New[models.RequestStatusHistory](exec, StatusHistoryDescriptor{}, opts),
		infoItems:   New[models.InformationItem](exec, InformationItemDescriptor{}, opts),
		scopeItems:  New[models.ScopeItem](exec, ScopeItemDescriptor{}, opts),
		workflows:   New[models.WorkflowState](exec, WorkflowStateDescriptor{}, opts),
	}
}

// Create creates a new request
func (r *RequestRepository) Create(ctx context.Context, input map[string]any) models.Result[models.Request] {
	return r.requests.Create(ctx, input)
}

// Get retrieves a request by id
func (r *RequestRepository) Get(ctx context.Context, id string) models.Result[models.Request] {
	return r.requests.Get(ctx, id)
}

// Update updates request fields; the input must include the id
func (r *RequestRepository) Update(ctx context.Context, input map[string]any) models.Result[models.Request] {
	return r.requests.Update(ctx, input)
}

// Delete removes a request
func (r *RequestRepository) Delete(ctx context.Context, id string) models.Result[bool] {
	return r.requests.Delete(ctx, id)
}

// List returns one page of requests
func (r *RequestRepository) List(ctx context.Context, opts ListOptions) models.Result[Page[models.Request]] {
	return r.requests.List(ctx, opts)
}

// Count counts requests matching the filter
func (r *RequestRepository) Count(ctx context.Context, filter *Filter) models.Result[int] {
	return r.requests.Count(ctx, filter)
}

// Exists reports whether a request exists
func (r *RequestRepository) Exists(ctx context.Context, id string) models.Result[bool] {
	return r.requests.Exists(ctx, id)
}

// UpdateStatus validates the transition against the fixed graph, writes a
// status-history record, then updates the request's status field. The
// history write is best-effort: a failure is logged and surfaced as a
// warning but does not block the status update, so the status field alone
// answers "did the transition happen".
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, newStatus models.RequestStatus, sc StatusContext) models.Result[models.Request] {
	if !newStatus.IsValid() {
		return models.Fail[models.Request](models.NewValidationError(
			fmt.Sprintf("unknown status %q", newStatus),
			[]models.FieldError{{Field: "status", Message: "unknown status", Value: string(newStatus)}}))
	}

	current := r.requests.Get(ctx, id)
	if !current.Success {
		return current
	}

	from := current.Data.Status
	if !from.CanTransitionTo(newStatus) {
		return models.Fail[models.Request](models.NewBusinessRuleError(
			fmt.Sprintf("status transition from %q to %q is not allowed", from, newStatus)))
	}

	var warnings []string
	historyRes := r.history.Create(ctx, map[string]any{
		"id":                   uuid.New().String(),
		"requestId":            id,
		"previousStatus":       string(from),
		"newStatus":            string(newStatus),
		"reason":               sc.Reason,
		"triggeredBy":          sc.TriggeredBy,
		"timeInPreviousStatus": timeInStatus(&current.Data).Nanoseconds(),
	})
	if !historyRes.Success {
		// History is an audit aid, not a transactional guard
		logger.LogError(ctx, "Status history write failed, proceeding with status update", historyRes.Err,
			"request_id", id)
		warnings = append(warnings, fmt.Sprintf("status history write failed: %s", historyRes.Err.Message))
	}

	updated := r.requests.Update(ctx, map[string]any{
		"id":              id,
		"status":          string(newStatus),
		"statusUpdatedAt": time.Now().UTC().Format(time.RFC3339),
	})
	if !updated.Success {
		return updated
	}

	logger.LogStatusTransition(ctx, id, string(from), string(newStatus))
	for _, w := range warnings {
		updated.AddWarning(w)
	}
	return updated
}

// AddNote appends an immutable note to a request
func (r *RequestRepository) AddNote(ctx context.Context, requestID, content, author, noteType string) models.Result[models.RequestNote] {
	return r.notes.Create(ctx, map[string]any{
		"id":        uuid.New().String(),
		"requestId": requestID,
		"content":   content,
		"author":    author,
		"noteType":  noteType,
	})
}

// AssignRequest appends an assignment record with the agent's name and role
// denormalized at write time, then points the request at the agent
func (r *RequestRepository) AssignRequest(ctx context.Context, requestID string, assignment models.AgentAssignment, assignedBy string) models.Result[models.RequestAssignment] {
	created := r.assignments.Create(ctx, map[string]any{
		"id":         uuid.New().String(),
		"requestId":  requestID,
		"agentId":    assignment.AgentID,
		"agentName":  assignment.AgentName,
		"agentRole":  assignment.AgentRole,
		"reason":     string(assignment.Reason),
		"confidence": assignment.Confidence,
		"assignedBy": assignedBy,
	})
	if !created.Success {
		return created
	}

	updated := r.requests.Update(ctx, map[string]any{
		"id":             requestID,
		"agentContactId": assignment.AgentID,
	})
	if !updated.Success {
		return models.FailWithMeta[models.RequestAssignment](updated.Err, updated.Meta)
	}

	return created
}

// Notes lists the notes on a request
func (r *RequestRepository) Notes(ctx context.Context, requestID string) models.Result[[]models.RequestNote] {
	return r.notes.Find(ctx, FieldFilter("requestId", FilterOpEq, requestID), Pagination{})
}

// Assignments lists the assignment history of a request
func (r *RequestRepository) Assignments(ctx context.Context, requestID string) models.Result[[]models.RequestAssignment] {
	return r.assignments.Find(ctx, FieldFilter("requestId", FilterOpEq, requestID), Pagination{})
}

// StatusHistory lists the status transitions of a request
func (r *RequestRepository) StatusHistory(ctx context.Context, requestID string) models.Result[[]models.RequestStatusHistory] {
	return r.history.Find(ctx, FieldFilter("requestId", FilterOpEq, requestID), Pagination{})
}

// InformationItems lists the intake information collected for a request
func (r *RequestRepository) InformationItems(ctx context.Context, requestID string) models.Result[[]models.InformationItem] {
	return r.infoItems.Find(ctx, FieldFilter("requestId", FilterOpEq, requestID), Pagination{})
}

// ScopeItems lists the agreed scope lines of a request
func (r *RequestRepository) ScopeItems(ctx context.Context, requestID string) models.Result[[]models.ScopeItem] {
	return r.scopeItems.Find(ctx, FieldFilter("requestId", FilterOpEq, requestID), Pagination{})
}

// WorkflowStates lists where a request stands in its external workflows
func (r *RequestRepository) WorkflowStates(ctx context.Context, requestID string) models.Result[[]models.WorkflowState] {
	return r.workflows.Find(ctx, FieldFilter("requestId", FilterOpEq, requestID), Pagination{})
}

// AddInformationItem records a piece of intake information on a request
func (r *RequestRepository) AddInformationItem(ctx context.Context, requestID, label, value, source string) models.Result[models.InformationItem] {
	return r.infoItems.Create(ctx, map[string]any{
		"id":        uuid.New().String(),
		"requestId": requestID,
		"label":     label,
		"value":     value,
		"source":    source,
	})
}

// AddScopeItem appends a scope line to a request
func (r *RequestRepository) AddScopeItem(ctx context.Context, requestID string, item models.ScopeItem) models.Result[models.ScopeItem] {
	return r.scopeItems.Create(ctx, map[string]any{
		"id":          uuid.New().String(),
		"requestId":   requestID,
		"name":        item.Name,
		"description": item.Description,
		"quantity":    item.Quantity,
		"unit":        item.Unit,
	})
}

// RecordWorkflowState records the state a request reached in a named workflow
func (r *RequestRepository) RecordWorkflowState(ctx context.Context, requestID, workflow, state string) models.Result[models.WorkflowState] {
	return r.workflows.Create(ctx, map[string]any{
		"id":        uuid.New().String(),
		"requestId": requestID,
		"workflow":  workflow,
		"state":     state,
		"enteredAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetEnhanced joins the base request with its owned collections. The
// resolved agent/homeowner/address lookups are layered on by the service;
// their absence here keeps the repository free of directory dependencies.
func (r *RequestRepository) GetEnhanced(ctx context.Context, id string) models.Result[models.EnhancedRequest] {
	base := r.requests.Get(ctx, id)
	if !base.Success {
		return models.FailWithMeta[models.EnhancedRequest](base.Err, base.Meta)
	}

	enhanced := models.EnhancedRequest{Request: base.Data}
	result := models.OKWithMeta(enhanced, base.Meta)

	// Child collections degrade to warnings; the base record is the answer
	if notes := r.Notes(ctx, id); notes.Success {
		result.Data.Notes = notes.Data
	} else {
		result.AddWarning(fmt.Sprintf("failed to load notes: %s", notes.Err.Message))
	}
	if assignments := r.Assignments(ctx, id); assignments.Success {
		result.Data.Assignments = assignments.Data
	} else {
		result.AddWarning(fmt.Sprintf("failed to load assignments: %s", assignments.Err.Message))
	}
	if history := r.StatusHistory(ctx, id); history.Success {
		result.Data.StatusHistory = history.Data
	} else {
		result.AddWarning(fmt.Sprintf("failed to load status history: %s", history.Err.Message))
	}
	if items := r.InformationItems(ctx, id); items.Success {
		result.Data.InformationItems = items.Data
	} else {
		result.AddWarning(fmt.Sprintf("failed to load information items: %s", items.Err.Message))
	}
	if scope := r.ScopeItems(ctx, id); scope.Success {
		result.Data.ScopeItems = scope.Data
	} else {
		result.AddWarning(fmt.Sprintf("failed to load scope items: %s", scope.Err.Message))
	}
	if workflows := r.WorkflowStates(ctx, id); workflows.Success {
		result.Data.WorkflowStates = workflows.Data
	} else {
		result.AddWarning(fmt.Sprintf("failed to load workflow states: %s", workflows.Err.Message))
	}

	return result
}

// Search composes the given business criteria into one filter expression
// and lists matching requests
func (r *RequestRepository) Search(ctx context.Context, criteria SearchCriteria) models.Result[Page[models.Request]] {
	filter := criteria.buildFilter()
	return r.requests.List(ctx, ListOptions{
		Filter:     filter,
		Pagination: Pagination{Limit: criteria.Limit, NextToken: criteria.NextToken},
	})
}

func (c SearchCriteria) buildFilter() *Filter {
	var parts []Filter

	if len(c.Statuses) > 0 {
		ors := make([]Filter, 0, len(c.Statuses))
		for _, s := range c.Statuses {
			ors = append(ors, FieldFilter("status", FilterOpEq, string(s)))
		}
		parts = append(parts, OrFilter(ors...))
	}
	if len(c.AssignedTo) > 0 {
		ors := make([]Filter, 0, len(c.AssignedTo))
		for _, a := range c.AssignedTo {
			ors = append(ors, FieldFilter("agentContactId", FilterOpEq, a))
		}
		parts = append(parts, OrFilter(ors...))
	}
	if len(c.Priorities) > 0 {
		ors := make([]Filter, 0, len(c.Priorities))
		for _, p := range c.Priorities {
			ors = append(ors, FieldFilter("priority", FilterOpEq, string(p)))
		}
		parts = append(parts, OrFilter(ors...))
	}
	if len(c.LeadSources) > 0 {
		ors := make([]Filter, 0, len(c.LeadSources))
		for _, src := range c.LeadSources {
			ors = append(ors, FieldFilter("leadSource", FilterOpEq, src))
		}
		parts = append(parts, OrFilter(ors...))
	}

	if c.DateField != "" && c.DateFrom != nil && c.DateTo != nil {
		parts = append(parts, FieldFilter(c.DateField, FilterOpBetween,
			[]string{c.DateFrom.UTC().Format(time.RFC3339), c.DateTo.UTC().Format(time.RFC3339)}))
	} else if c.DateField != "" && c.DateFrom != nil {
		parts = append(parts, FieldFilter(c.DateField, FilterOpGe, c.DateFrom.UTC().Format(time.RFC3339)))
	} else if c.DateField != "" && c.DateTo != nil {
		parts = append(parts, FieldFilter(c.DateField, FilterOpLe, c.DateTo.UTC().Format(time.RFC3339)))
	}

	if c.HasAgent != nil {
		parts = append(parts, FieldFilter("agentContactId", FilterOpAttributeExists, *c.HasAgent))
	}
	if c.HasProperty != nil {
		parts = append(parts, FieldFilter("addressId", FilterOpAttributeExists, *c.HasProperty))
	}
	if c.NeedsFollowUp != nil {
		followUp := FieldFilter("tags", FilterOpContains, "needs_follow_up")
		if *c.NeedsFollowUp {
			parts = append(parts, followUp)
		} else {
			parts = append(parts, NotFilter(followUp))
		}
	}

	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		return &parts[0]
	}
	combined := AndFilter(parts...)
	return &combined
}

func timeInStatus(req *models.Request) time.Duration {
	var since *time.Time
	if req.StatusUpdatedAt != nil {
		since = req.StatusUpdatedAt
	} else if req.UpdatedAt != nil {
		since = req.UpdatedAt
	}
	if since == nil {
		return 0
	}
	return time.Since(*since)
}
