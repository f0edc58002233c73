package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/checkfox/go_request/internal/logger"
	"github.com/checkfox/go_request/internal/models"
	"github.com/checkfox/go_request/internal/repository"
)

// quoteEligibleStatuses are the statuses a request must be in for quote
// generation; quote_ready allows regenerating an existing quote
var quoteEligibleStatuses = []models.RequestStatus{
	models.RequestStatusInProgress,
	models.RequestStatusQuoteReady,
}

const defaultQuoteValidityDays = 30

// RequestService orchestrates the request business workflows over the
// request repository and its optional collaborators. Collaborators may be
// nil; everything they power is best-effort.
type RequestService struct {
	repo       *repository.RequestRepository
	notifier   Notifier
	auditor    Auditor
	contacts   ContactDirectory
	properties PropertyDirectory
}

// NewRequestService creates a RequestService. Only the repository is
// required; nil collaborators disable their workflows' side effects.
func NewRequestService(repo *repository.RequestRepository, notifier Notifier, auditor Auditor, contacts ContactDirectory, properties PropertyDirectory) *RequestService {
	return &RequestService{
		repo:       repo,
		notifier:   notifier,
		auditor:    auditor,
		contacts:   contacts,
		properties: properties,
	}
}

// ProcessOptions controls the best-effort steps of ProcessNewRequest
type ProcessOptions struct {
	AutoScore          bool
	AutoAssign         bool
	AssignmentStrategy models.AssignmentReason
	ScheduleFollowUp   bool
	Notify             bool
	Actor              string
}

// workflowStep is one named best-effort step of a multi-step workflow. Steps
// run in order; a failing step is recorded as a warning and never aborts the
// workflow.
type workflowStep struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes the steps in order and returns a warning per failure
func runSteps(ctx context.Context, steps []workflowStep) []string {
	var warnings []string
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			logger.LogError(ctx, "Workflow step failed", err, "step", step.name)
			warnings = append(warnings, fmt.Sprintf("step %s failed: %v", step.name, err))
		}
	}
	return warnings
}

// ProcessNewRequest creates a request and runs the intake workflow: scoring,
// assignment, follow-up scheduling, notifications, and audit logging. Only
// the initial create and the final retrieval are fatal; each intermediate
// step is best-effort and its failure surfaces in the result warnings.
func (s *RequestService) ProcessNewRequest(ctx context.Context, input map[string]any, opts ProcessOptions) models.Result[models.EnhancedRequest] {
	start := time.Now()

	created := s.repo.Create(ctx, input)
	if !created.Success {
		return models.FailWithMeta[models.EnhancedRequest](created.Err, created.Meta)
	}
	requestID := created.Data.ID
	ctx = context.WithValue(ctx, logger.RequestIDKey, requestID)
	logger.Info(ctx, "Request created", "product", created.Data.Product, "lead_source", created.Data.LeadSource)

	var steps []workflowStep
	if opts.AutoScore {
		steps = append(steps, workflowStep{name: "lead_scoring", run: func(ctx context.Context) error {
			res := s.CalculateLeadScore(ctx, requestID)
			if !res.Success {
				return res.Err
			}
			return nil
		}})
	}
	if opts.AutoAssign {
		steps = append(steps, workflowStep{name: "agent_assignment", run: func(ctx context.Context) error {
			strategy := opts.AssignmentStrategy
			if strategy == "" {
				strategy = models.AssignmentReasonWorkloadBalance
			}
			res := s.AssignToAgent(ctx, requestID, AssignOptions{Strategy: strategy, AssignedBy: opts.Actor})
			if !res.Success {
				return res.Err
			}
			return nil
		}})
	}
	if opts.ScheduleFollowUp {
		steps = append(steps, workflowStep{name: "follow_up_scheduling", run: func(ctx context.Context) error {
			res := s.ScheduleFollowUp(ctx, requestID, models.FollowUpSchedule{
				FollowUpType: models.FollowUpInitialContact,
			})
			if !res.Success {
				return res.Err
			}
			return nil
		}})
	}
	if opts.Notify {
		steps = append(steps, workflowStep{name: "notifications", run: func(ctx context.Context) error {
			if s.notifier == nil {
				return nil
			}
			return s.notifier.SendNewRequestNotifications(ctx, requestID, map[string]any{
				"leadSource": created.Data.LeadSource,
			})
		}})
	}
	steps = append(steps, workflowStep{name: "audit_log", run: func(ctx context.Context) error {
		if s.auditor == nil {
			return nil
		}
		return s.auditor.LogRequestCreated(ctx, requestID, map[string]any{
			"product":    created.Data.Product,
			"leadSource": created.Data.LeadSource,
			"actor":      opts.Actor,
		})
	}})

	warnings := runSteps(ctx, steps)

	final := s.repo.GetEnhanced(ctx, requestID)
	if !final.Success {
		return final
	}
	s.enrich(ctx, &final.Data)

	for _, w := range warnings {
		final.AddWarning(w)
	}
	if final.Meta != nil {
		final.Meta.ExecutionTime = time.Since(start)
	}
	logger.LogSlowOperation(ctx, "processNewRequest", time.Since(start))
	return final
}

// CalculateLeadScore loads the enhanced request, computes the seven-factor
// lead score, and best-effort writes the readiness score and derived
// priority back onto the request.
func (s *RequestService) CalculateLeadScore(ctx context.Context, id string) models.Result[models.LeadScoreResult] {
	enhanced := s.repo.GetEnhanced(ctx, id)
	if !enhanced.Success {
		return models.FailWithMeta[models.LeadScoreResult](enhanced.Err, enhanced.Meta)
	}
	s.enrich(ctx, &enhanced.Data)

	score := scoreRequest(&enhanced.Data, time.Now())

	result := models.OK(score)
	writeBack := s.repo.Update(ctx, map[string]any{
		"id":             id,
		"readinessScore": score.OverallScore,
		"priority":       string(score.PriorityLevel),
	})
	if !writeBack.Success {
		logger.LogError(ctx, "Failed to persist readiness score", writeBack.Err, "request_id", id)
		result.AddWarning(fmt.Sprintf("score write-back failed: %s", writeBack.Err.Message))
	}

	return result
}

// AssignOptions controls agent assignment
type AssignOptions struct {
	// AgentID forces a manual assignment when set
	AgentID    string
	Strategy   models.AssignmentReason
	AssignedBy string
}

// AssignToAgent assigns the request to an agent, either manually or via the
// requested selection strategy. A high-confidence match (>= 0.9) bumps the
// request priority one level, capped at urgent. Agent notification and
// follow-up scheduling are best-effort side effects.
func (s *RequestService) AssignToAgent(ctx context.Context, id string, opts AssignOptions) models.Result[models.AgentAssignment] {
	enhanced := s.repo.GetEnhanced(ctx, id)
	if !enhanced.Success {
		return models.FailWithMeta[models.AgentAssignment](enhanced.Err, enhanced.Meta)
	}
	s.enrich(ctx, &enhanced.Data)
	req := enhanced.Data

	var assignment *models.AgentAssignment
	if opts.AgentID != "" {
		assignment = &models.AgentAssignment{
			AgentID:    opts.AgentID,
			Reason:     models.AssignmentReasonManual,
			Confidence: 1.0,
		}
		if s.contacts != nil {
			if contact, err := s.contacts.GetContact(ctx, opts.AgentID); err == nil && contact != nil {
				assignment.AgentName = contact.Name
				assignment.AgentRole = contact.Role
			}
		}
	} else {
		if s.contacts == nil {
			return models.Fail[models.AgentAssignment](models.NewBusinessRuleError(
				"automatic assignment requires a contact directory; provide an agentId instead"))
		}
		agents, err := s.contacts.ListAgents(ctx)
		if err != nil {
			return models.Fail[models.AgentAssignment](models.Classify(err, "assignToAgent", "Request"))
		}

		strategy := opts.Strategy
		if strategy == "" {
			strategy = models.AssignmentReasonWorkloadBalance
		}
		assignment, err = selectAgent(&req, agents, strategy)
		if err != nil {
			return models.Fail[models.AgentAssignment](models.NewBusinessRuleError(err.Error()))
		}
	}

	result := models.OK(*assignment)

	// High-confidence matches escalate priority one level, never past urgent
	if assignment.Confidence >= highConfidenceThreshold && req.Priority != models.PriorityUrgent && req.Priority.IsValid() {
		bumped := req.Priority.Bump()
		if update := s.repo.Update(ctx, map[string]any{"id": id, "priority": string(bumped)}); !update.Success {
			result.AddWarning(fmt.Sprintf("priority escalation failed: %s", update.Err.Message))
		}
	}

	written := s.repo.AssignRequest(ctx, id, *assignment, opts.AssignedBy)
	if !written.Success {
		return models.FailWithMeta[models.AgentAssignment](written.Err, written.Meta)
	}

	if req.Status.CanTransitionTo(models.RequestStatusAssigned) {
		if st := s.repo.UpdateStatus(ctx, id, models.RequestStatusAssigned, repository.StatusContext{
			Reason:      fmt.Sprintf("assigned via %s", assignment.Reason),
			TriggeredBy: opts.AssignedBy,
		}); !st.Success {
			result.AddWarning(fmt.Sprintf("status transition to assigned failed: %s", st.Err.Message))
		}
	}

	steps := []workflowStep{
		{name: "assignment_notification", run: func(ctx context.Context) error {
			if s.notifier == nil {
				return nil
			}
			return s.notifier.SendAssignmentNotification(ctx, assignment.AgentID, id, assignment.Reason)
		}},
		{name: "assignment_follow_up", run: func(ctx context.Context) error {
			res := s.ScheduleFollowUp(ctx, id, models.FollowUpSchedule{
				FollowUpType:  models.FollowUpInitialContact,
				ScheduledDate: time.Now().Add(assignmentFollowUpOffset(req.Priority)),
				AssignedTo:    assignment.AgentID,
			})
			if !res.Success {
				return res.Err
			}
			return nil
		}},
		{name: "assignment_audit", run: func(ctx context.Context) error {
			if s.auditor == nil {
				return nil
			}
			return s.auditor.LogAssignment(ctx, id, assignment.AgentID, assignment.Reason)
		}},
	}
	for _, w := range runSteps(ctx, steps) {
		result.AddWarning(w)
	}

	return result
}

// GenerateQuoteFromRequest computes a quote for an eligible request. The
// total is the base price multiplied by each adjustment factor (defaulting
// to 1.0). The status transition to quote_ready and the quote note are
// best-effort side effects that never fail the quote itself.
func (s *RequestService) GenerateQuoteFromRequest(ctx context.Context, id string, input models.QuoteInput) models.Result[models.QuoteResult] {
	loaded := s.repo.Get(ctx, id)
	if !loaded.Success {
		return models.FailWithMeta[models.QuoteResult](loaded.Err, loaded.Meta)
	}
	req := loaded.Data

	if !statusIn(req.Status, quoteEligibleStatuses) {
		return models.Fail[models.QuoteResult](models.NewBusinessRuleError(
			fmt.Sprintf("quote generation requires status in_progress; request %s is %q", id, req.Status)))
	}

	var fieldErrors []models.FieldError
	if strings.TrimSpace(req.Product) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "product", Message: "required for quoting"})
	}
	if strings.TrimSpace(req.Budget) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "budget", Message: "required for quoting"})
	}
	if req.HomeownerContactID == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "homeownerContactId", Message: "required for quoting"})
	}
	if req.AddressID == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "addressId", Message: "required for quoting"})
	}
	if input.BasePrice <= 0 {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "basePrice", Message: "must be positive", Value: input.BasePrice})
	}
	if len(fieldErrors) > 0 {
		return models.Fail[models.QuoteResult](models.NewValidationError("request is missing data required for quoting", fieldErrors))
	}

	quote := computeQuote(id, input, time.Now())

	result := models.OK(quote)

	if req.Status != models.RequestStatusQuoteReady {
		if st := s.repo.UpdateStatus(ctx, id, models.RequestStatusQuoteReady, repository.StatusContext{
			Reason: "quote generated",
		}); !st.Success {
			result.AddWarning(fmt.Sprintf("status transition to quote_ready failed: %s", st.Err.Message))
		}
	}
	if note := s.repo.AddNote(ctx, id,
		fmt.Sprintf("Quote generated: total $%.2f from base $%.2f, valid until %s",
			quote.TotalPrice, quote.BasePrice, quote.ValidUntil.Format("2006-01-02")),
		"system", "quote"); !note.Success {
		result.AddWarning(fmt.Sprintf("quote note failed: %s", note.Err.Message))
	}

	return result
}

// computeQuote applies the adjustment factors in a fixed order and records
// the price delta each one introduced
func computeQuote(requestID string, input models.QuoteInput, now time.Time) models.QuoteResult {
	factors := []struct {
		name       string
		multiplier float64
	}{
		{"complexity", orOne(input.AdjustmentFactors.Complexity)},
		{"materials", orOne(input.AdjustmentFactors.Materials)},
		{"timeline", orOne(input.AdjustmentFactors.Timeline)},
		{"location", orOne(input.AdjustmentFactors.Location)},
	}

	total := input.BasePrice
	breakdown := make([]models.QuoteBreakdownLine, 0, len(factors))
	for _, f := range factors {
		next := total * f.multiplier
		breakdown = append(breakdown, models.QuoteBreakdownLine{
			Factor:     f.name,
			Multiplier: f.multiplier,
			Delta:      next - total,
		})
		total = next
	}

	validityDays := input.ValidityDays
	if validityDays <= 0 {
		validityDays = defaultQuoteValidityDays
	}

	return models.QuoteResult{
		RequestID:    requestID,
		BasePrice:    input.BasePrice,
		TotalPrice:   total,
		Breakdown:    breakdown,
		ValidUntil:   now.AddDate(0, 0, validityDays),
		Alternatives: input.IncludeAlternatives,
		GeneratedAt:  now,
	}
}

// ScheduleFollowUp writes a follow-up note on the request and registers the
// reminders whose dates are still ahead; offsets already in the past are
// silently skipped. A missing scheduled date is derived from the follow-up
// type and the request priority.
func (s *RequestService) ScheduleFollowUp(ctx context.Context, id string, schedule models.FollowUpSchedule) models.Result[models.FollowUpSchedule] {
	loaded := s.repo.Get(ctx, id)
	if !loaded.Success {
		return models.FailWithMeta[models.FollowUpSchedule](loaded.Err, loaded.Meta)
	}
	req := loaded.Data

	schedule.RequestID = id
	if schedule.FollowUpType == "" {
		schedule.FollowUpType = models.FollowUpCheckIn
	}
	if schedule.Priority == "" {
		schedule.Priority = req.Priority
		if schedule.Priority == "" {
			schedule.Priority = models.PriorityMedium
		}
	}
	now := time.Now()
	if schedule.ScheduledDate.IsZero() {
		schedule.ScheduledDate = defaultFollowUpDate(schedule.FollowUpType, schedule.Priority, now)
	}

	note := s.repo.AddNote(ctx, id,
		fmt.Sprintf("Follow-up (%s) scheduled for %s", schedule.FollowUpType,
			schedule.ScheduledDate.Format(time.RFC3339)),
		"system", "follow_up")
	if !note.Success {
		return models.FailWithMeta[models.FollowUpSchedule](note.Err, note.Meta)
	}

	result := models.OK(schedule)
	for _, days := range schedule.ReminderDays {
		reminderDate := schedule.ScheduledDate.AddDate(0, 0, -days)
		if !reminderDate.After(now) {
			// An offset landing in the past is skipped, not an error
			continue
		}
		if s.notifier == nil {
			continue
		}
		err := s.notifier.ScheduleReminder(ctx, Reminder{
			RequestID:    id,
			ReminderDate: reminderDate,
			Message:      fmt.Sprintf("Follow-up (%s) due %s", schedule.FollowUpType, schedule.ScheduledDate.Format("2006-01-02")),
			RecipientID:  schedule.AssignedTo,
		})
		if err != nil {
			logger.LogError(ctx, "Reminder registration failed", err, "request_id", id)
			result.AddWarning(fmt.Sprintf("reminder %d days before failed: %v", days, err))
			continue
		}
		result.Data.RemindersScheduled++
	}

	return result
}

// UpdateStatus exposes the repository's validated status transition with
// best-effort audit logging
func (s *RequestService) UpdateStatus(ctx context.Context, id string, newStatus models.RequestStatus, reason, actor string) models.Result[models.Request] {
	current := s.repo.Get(ctx, id)
	if !current.Success {
		return current
	}

	updated := s.repo.UpdateStatus(ctx, id, newStatus, repository.StatusContext{Reason: reason, TriggeredBy: actor})
	if !updated.Success {
		return updated
	}

	if s.auditor != nil {
		if err := s.auditor.LogStatusChange(ctx, id, current.Data.Status, newStatus, actor); err != nil {
			logger.LogError(ctx, "Status change audit failed", err, "request_id", id)
			updated.AddWarning(fmt.Sprintf("audit log failed: %v", err))
		}
	}
	return updated
}

// GetRequest returns the enhanced request with directory lookups resolved
func (s *RequestService) GetRequest(ctx context.Context, id string) models.Result[models.EnhancedRequest] {
	enhanced := s.repo.GetEnhanced(ctx, id)
	if !enhanced.Success {
		return enhanced
	}
	s.enrich(ctx, &enhanced.Data)
	return enhanced
}

// enrich resolves the agent, homeowner, and address lookups through the
// optional directories. Lookup failures leave the fields nil; missing data
// degrades scoring factors rather than failing the call.
func (s *RequestService) enrich(ctx context.Context, req *models.EnhancedRequest) {
	if s.contacts != nil {
		if req.HomeownerContactID != "" {
			if contact, err := s.contacts.GetContact(ctx, req.HomeownerContactID); err == nil {
				req.Homeowner = contact
			}
		}
		if req.AgentContactID != "" {
			if contact, err := s.contacts.GetContact(ctx, req.AgentContactID); err == nil {
				req.Agent = contact
			}
		}
	}
	if s.properties != nil && req.AddressID != "" {
		if property, err := s.properties.GetProperty(ctx, req.AddressID); err == nil {
			req.Address = property
		}
	}
}

func statusIn(status models.RequestStatus, set []models.RequestStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1.0
	}
	return v
}
