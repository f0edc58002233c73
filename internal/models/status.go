package models

// RequestStatus represents the current state of a service request in its lifecycle
type RequestStatus string

const (
	// RequestStatusNew indicates the request was received and not yet triaged
	RequestStatusNew RequestStatus = "new"

	// RequestStatusAssigned indicates an agent owns the request
	RequestStatusAssigned RequestStatus = "assigned"

	// RequestStatusInProgress indicates active qualification or scoping work
	RequestStatusInProgress RequestStatus = "in_progress"

	// RequestStatusQuoteReady indicates a quote was generated and is awaiting a decision
	RequestStatusQuoteReady RequestStatus = "quote_ready"

	// RequestStatusWon indicates the homeowner accepted the quote
	RequestStatusWon RequestStatus = "won"

	// RequestStatusLost indicates the homeowner declined or went elsewhere
	RequestStatusLost RequestStatus = "lost"

	// RequestStatusExpired indicates the request went stale without a decision
	RequestStatusExpired RequestStatus = "expired"

	// RequestStatusArchived indicates the request was closed out for good
	RequestStatusArchived RequestStatus = "archived"
)

// statusOrder gives each status a monotonic rank used for sorting and comparison
var statusOrder = map[RequestStatus]int{
	RequestStatusNew:        1,
	RequestStatusAssigned:   2,
	RequestStatusInProgress: 3,
	RequestStatusQuoteReady: 4,
	RequestStatusWon:        5,
	RequestStatusLost:       6,
	RequestStatusExpired:    7,
	RequestStatusArchived:   8,
}

// allowedTransitions is the fixed directed graph of valid status changes.
// Archived is terminal; won and lost can only be archived; expired requests
// may be reactivated.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusNew:        {RequestStatusAssigned, RequestStatusInProgress, RequestStatusLost, RequestStatusExpired, RequestStatusArchived},
	RequestStatusAssigned:   {RequestStatusInProgress, RequestStatusNew, RequestStatusLost, RequestStatusExpired, RequestStatusArchived},
	RequestStatusInProgress: {RequestStatusQuoteReady, RequestStatusLost, RequestStatusExpired, RequestStatusArchived},
	RequestStatusQuoteReady: {RequestStatusWon, RequestStatusLost, RequestStatusExpired, RequestStatusInProgress, RequestStatusArchived},
	RequestStatusWon:        {RequestStatusArchived},
	RequestStatusLost:       {RequestStatusArchived},
	RequestStatusExpired:    {RequestStatusNew, RequestStatusArchived},
	RequestStatusArchived:   {},
}

// IsValid checks if the status is a known RequestStatus value
func (s RequestStatus) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Order returns the monotonic rank of the status, or 0 for unknown values
func (s RequestStatus) Order() int {
	return statusOrder[s]
}

// IsTerminal returns true if no transitions leave this status
func (s RequestStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0 && s.IsValid()
}

// CanTransitionTo checks whether the transition graph allows moving to target
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Priority represents the handling urgency of a request
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityOrder = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// IsValid checks if the priority is a known value
func (p Priority) IsValid() bool {
	_, ok := priorityOrder[p]
	return ok
}

// Order returns the rank of the priority on the low..urgent scale
func (p Priority) Order() int {
	return priorityOrder[p]
}

// Bump returns the next higher priority, capped at urgent
func (p Priority) Bump() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh, PriorityUrgent:
		return PriorityUrgent
	default:
		return p
	}
}
