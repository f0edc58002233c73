package models

import "time"

// ScoreFactors holds the seven independent 0-100 sub-scores of a lead score
type ScoreFactors struct {
	DataCompleteness  float64 `json:"dataCompleteness"`
	SourceQuality     float64 `json:"sourceQuality"`
	Engagement        float64 `json:"engagement"`
	BudgetAlignment   float64 `json:"budgetAlignment"`
	ProjectComplexity float64 `json:"projectComplexity"`
	GeographicFit     float64 `json:"geographicFit"`
	Urgency           float64 `json:"urgency"`
}

// LeadScoreResult is the outcome of scoring a request. It is not persisted
// directly; only the overall score and derived priority are written back.
type LeadScoreResult struct {
	RequestID             string       `json:"requestId"`
	OverallScore          float64      `json:"overallScore"`
	Grade                 string       `json:"grade"`
	ConversionProbability float64      `json:"conversionProbability"`
	PriorityLevel         Priority     `json:"priorityLevel"`
	Factors               ScoreFactors `json:"factors"`
	Recommendations       []string     `json:"recommendations"`
	CalculatedAt          time.Time    `json:"calculatedAt"`
}

// AssignmentReason identifies how an agent was chosen for a request
type AssignmentReason string

const (
	AssignmentReasonManual          AssignmentReason = "manual"
	AssignmentReasonRoundRobin      AssignmentReason = "round_robin"
	AssignmentReasonSkillMatch      AssignmentReason = "skill_match"
	AssignmentReasonGeographic      AssignmentReason = "geographic"
	AssignmentReasonWorkloadBalance AssignmentReason = "workload_balance"
)

// AgentAssignment is the ephemeral outcome of agent selection; it drives a
// repository assignment write and is not stored as-is.
type AgentAssignment struct {
	AgentID          string           `json:"agentId"`
	AgentName        string           `json:"agentName"`
	AgentRole        string           `json:"agentRole"`
	Reason           AssignmentReason `json:"reason"`
	Confidence       float64          `json:"confidence"`
	WorkloadBefore   int              `json:"workloadBefore"`
	WorkloadAfter    int              `json:"workloadAfter"`
	Capacity         int              `json:"capacity"`
	MatchedSpecialty string           `json:"matchedSpecialty,omitempty"`
	MatchedArea      string           `json:"matchedArea,omitempty"`
}

// QuoteAdjustmentFactors are the named multipliers applied to a base price.
// Unspecified factors default to 1.0.
type QuoteAdjustmentFactors struct {
	Complexity float64 `json:"complexity,omitempty"`
	Materials  float64 `json:"materials,omitempty"`
	Timeline   float64 `json:"timeline,omitempty"`
	Location   float64 `json:"location,omitempty"`
}

// QuoteInput is the caller-supplied pricing input for quote generation
type QuoteInput struct {
	BasePrice           float64                `json:"basePrice"`
	AdjustmentFactors   QuoteAdjustmentFactors `json:"adjustmentFactors"`
	IncludeAlternatives bool                   `json:"includeAlternatives,omitempty"`
	ValidityDays        int                    `json:"validityDays,omitempty"`
}

// QuoteBreakdownLine shows the contribution of one adjustment factor
type QuoteBreakdownLine struct {
	Factor     string  `json:"factor"`
	Multiplier float64 `json:"multiplier"`
	// Delta is the price change this factor introduced, applied in order
	// after the preceding factors
	Delta float64 `json:"delta"`
}

// QuoteResult is the computed quote for a request
type QuoteResult struct {
	RequestID    string               `json:"requestId"`
	BasePrice    float64              `json:"basePrice"`
	TotalPrice   float64              `json:"totalPrice"`
	Breakdown    []QuoteBreakdownLine `json:"breakdown"`
	ValidUntil   time.Time            `json:"validUntil"`
	Alternatives bool                 `json:"alternatives,omitempty"`
	GeneratedAt  time.Time            `json:"generatedAt"`
}

// FollowUpType identifies the intent of a scheduled follow-up
type FollowUpType string

const (
	FollowUpInitialContact     FollowUpType = "initial_contact"
	FollowUpInformationRequest FollowUpType = "information_request"
	FollowUpQuoteFollowUp      FollowUpType = "quote_follow_up"
	FollowUpCheckIn            FollowUpType = "check_in"
	FollowUpClosing            FollowUpType = "closing"
)

// FollowUpSchedule describes a planned follow-up on a request
type FollowUpSchedule struct {
	RequestID      string       `json:"requestId"`
	FollowUpType   FollowUpType `json:"followUpType"`
	ScheduledDate  time.Time    `json:"scheduledDate"`
	Priority       Priority     `json:"priority,omitempty"`
	AssignedTo     string       `json:"assignedTo,omitempty"`
	ReminderDays   []int        `json:"reminderDays,omitempty"`
	AutoReschedule bool         `json:"autoReschedule,omitempty"`
	// RemindersScheduled counts the reminders actually registered; offsets
	// that would land in the past are skipped
	RemindersScheduled int `json:"remindersScheduled,omitempty"`
}
