package services

import (
	"time"

	"github.com/checkfox/go_request/internal/models"
)

// followUpOffsets maps follow-up type and request priority to the default
// delay before the follow-up is due
var followUpOffsets = map[models.FollowUpType]map[models.Priority]time.Duration{
	models.FollowUpInitialContact: {
		models.PriorityUrgent: 2 * time.Hour,
		models.PriorityHigh:   4 * time.Hour,
		models.PriorityMedium: 24 * time.Hour,
		models.PriorityLow:    48 * time.Hour,
	},
	models.FollowUpInformationRequest: {
		models.PriorityUrgent: 4 * time.Hour,
		models.PriorityHigh:   24 * time.Hour,
		models.PriorityMedium: 48 * time.Hour,
		models.PriorityLow:    72 * time.Hour,
	},
	models.FollowUpQuoteFollowUp: {
		models.PriorityUrgent: 24 * time.Hour,
		models.PriorityHigh:   48 * time.Hour,
		models.PriorityMedium: 72 * time.Hour,
		models.PriorityLow:    168 * time.Hour,
	},
	models.FollowUpCheckIn: {
		models.PriorityUrgent: 48 * time.Hour,
		models.PriorityHigh:   72 * time.Hour,
		models.PriorityMedium: 96 * time.Hour,
		models.PriorityLow:    168 * time.Hour,
	},
	models.FollowUpClosing: {
		models.PriorityUrgent: 4 * time.Hour,
		models.PriorityHigh:   24 * time.Hour,
		models.PriorityMedium: 48 * time.Hour,
		models.PriorityLow:    72 * time.Hour,
	},
}

// defaultFollowUpDate computes the default due date for a follow-up from its
// type and priority. Unknown combinations fall back to 48 hours.
func defaultFollowUpDate(followUpType models.FollowUpType, priority models.Priority, now time.Time) time.Time {
	if byPriority, ok := followUpOffsets[followUpType]; ok {
		if offset, ok := byPriority[priority]; ok {
			return now.Add(offset)
		}
		if offset, ok := byPriority[models.PriorityMedium]; ok {
			return now.Add(offset)
		}
	}
	return now.Add(48 * time.Hour)
}

// assignmentFollowUpOffset derives the urgency of the post-assignment
// follow-up from the request priority
func assignmentFollowUpOffset(priority models.Priority) time.Duration {
	switch priority {
	case models.PriorityUrgent:
		return 2 * time.Hour
	case models.PriorityHigh:
		return 4 * time.Hour
	case models.PriorityMedium:
		return 24 * time.Hour
	default:
		return 48 * time.Hour
	}
}
