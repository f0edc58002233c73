package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/checkfox/go_request/internal/models"
)

// highConfidenceThreshold is the confidence at which an assignment bumps the
// request priority one level (capped at urgent)
const highConfidenceThreshold = 0.9

// selectAgent picks an agent from the roster using the requested strategy.
// Every strategy yields a confidence in (0, 1].
func selectAgent(req *models.EnhancedRequest, agents []models.Agent, strategy models.AssignmentReason) (*models.AgentAssignment, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("no agents available for assignment")
	}

	switch strategy {
	case models.AssignmentReasonRoundRobin:
		return selectRoundRobin(agents), nil
	case models.AssignmentReasonSkillMatch:
		return selectSkillMatch(req, agents), nil
	case models.AssignmentReasonGeographic:
		return selectGeographic(req, agents), nil
	case models.AssignmentReasonWorkloadBalance, "auto_balance":
		return selectWorkloadBalance(agents), nil
	default:
		return nil, fmt.Errorf("unknown assignment strategy: %s", strategy)
	}
}

// selectRoundRobin rotates through agents by picking the one with the
// fewest assignments so far, breaking ties by id for determinism
func selectRoundRobin(agents []models.Agent) *models.AgentAssignment {
	sorted := make([]models.Agent, len(agents))
	copy(sorted, agents)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Workload != sorted[j].Workload {
			return sorted[i].Workload < sorted[j].Workload
		}
		return sorted[i].ID < sorted[j].ID
	})

	pick := sorted[0]
	return assignmentFor(pick, models.AssignmentReasonRoundRobin, 0.7)
}

// selectSkillMatch matches agent specialties against the product wording.
// Confidence grows with the quality of the match; with no match at all the
// least-loaded agent is picked at low confidence.
func selectSkillMatch(req *models.EnhancedRequest, agents []models.Agent) *models.AgentAssignment {
	product := strings.ToLower(req.Product)

	var best *models.Agent
	var bestSpecialty string
	bestScore := 0

	for i := range agents {
		for _, specialty := range agents[i].Specialties {
			s := strings.ToLower(specialty)
			score := 0
			if s != "" && strings.Contains(product, s) {
				score = len(s)
			}
			if score > bestScore {
				bestScore = score
				best = &agents[i]
				bestSpecialty = specialty
			}
		}
	}

	if best == nil {
		fallback := selectWorkloadBalance(agents)
		fallback.Reason = models.AssignmentReasonSkillMatch
		fallback.Confidence = 0.5
		return fallback
	}

	confidence := math.Min(0.6+float64(bestScore)*0.05, 0.95)
	a := assignmentFor(*best, models.AssignmentReasonSkillMatch, confidence)
	a.MatchedSpecialty = bestSpecialty
	return a
}

// selectGeographic prefers an agent whose service area covers the request's
// property. Without a resolvable area the least-loaded agent is picked at
// low confidence.
func selectGeographic(req *models.EnhancedRequest, agents []models.Agent) *models.AgentAssignment {
	var zip, city string
	if req.Address != nil {
		zip = strings.ToLower(req.Address.Zip)
		city = strings.ToLower(req.Address.City)
	}

	for i := range agents {
		for _, area := range agents[i].ServiceAreas {
			a := strings.ToLower(area)
			if (zip != "" && a == zip) || (city != "" && a == city) {
				assignment := assignmentFor(agents[i], models.AssignmentReasonGeographic, 0.9)
				assignment.MatchedArea = area
				return assignment
			}
		}
	}

	fallback := selectWorkloadBalance(agents)
	fallback.Reason = models.AssignmentReasonGeographic
	fallback.Confidence = 0.6
	return fallback
}

// selectWorkloadBalance picks the agent with the most spare capacity.
// Confidence grows with the winner's headroom.
func selectWorkloadBalance(agents []models.Agent) *models.AgentAssignment {
	best := agents[0]
	bestRatio := loadRatio(best)
	for _, agent := range agents[1:] {
		ratio := loadRatio(agent)
		if ratio < bestRatio || (ratio == bestRatio && agent.ID < best.ID) {
			best = agent
			bestRatio = ratio
		}
	}

	confidence := math.Min(0.8+(1-bestRatio)*0.15, 0.95)
	return assignmentFor(best, models.AssignmentReasonWorkloadBalance, confidence)
}

func loadRatio(agent models.Agent) float64 {
	if agent.Capacity <= 0 {
		return 1
	}
	return math.Min(float64(agent.Workload)/float64(agent.Capacity), 1)
}

func assignmentFor(agent models.Agent, reason models.AssignmentReason, confidence float64) *models.AgentAssignment {
	return &models.AgentAssignment{
		AgentID:        agent.ID,
		AgentName:      agent.Name,
		AgentRole:      agent.Role,
		Reason:         reason,
		Confidence:     confidence,
		WorkloadBefore: agent.Workload,
		WorkloadAfter:  agent.Workload + 1,
		Capacity:       agent.Capacity,
	}
}
