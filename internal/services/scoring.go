package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/checkfox/go_request/internal/models"
)

// Factor weights for the overall lead score. They sum to 1.0.
const (
	weightDataCompleteness  = 0.20
	weightSourceQuality     = 0.15
	weightEngagement        = 0.15
	weightBudgetAlignment   = 0.20
	weightProjectComplexity = 0.10
	weightGeographicFit     = 0.10
	weightUrgency           = 0.10
)

// Thresholds for score-driven behavior
const (
	gradeAThreshold = 90.0
	gradeBThreshold = 80.0
	gradeCThreshold = 70.0
	gradeDThreshold = 60.0
)

// sourceQualityScores ranks lead sources by historical conversion quality.
// Sources we have no data for score a neutral 50; an absent source scores 30.
var sourceQualityScores = map[string]float64{
	"referral":      90,
	"agent_direct":  85,
	"website":       80,
	"partner":       75,
	"social_media":  70,
	"advertisement": 60,
	"unknown":       30,
}

// complexityKeywords maps product keywords to complexity scores, checked in
// order so the most specific keyword wins
var complexityKeywords = []struct {
	keyword string
	score   float64
}{
	{"addition", 85},
	{"renovation", 80},
	{"remodel", 80},
	{"kitchen", 75},
	{"basement", 75},
	{"bathroom", 70},
	{"roof", 65},
	{"deck", 60},
	{"repair", 55},
	{"maintenance", 50},
	{"inspection", 50},
}

var urgentKeywords = []string{"urgent", "asap", "emergency", "immediately", "right away"}
var soonKeywords = []string{"soon", "quickly", "this week", "as early as possible"}

var numberPattern = regexp.MustCompile(`\$?\s*([0-9][0-9.,]*)\s*([kK])?`)

// scoreRequest computes the full lead score for an enhanced request. It is
// deterministic apart from the calculatedAt stamp: identical input yields
// identical scores, grade, and factors.
func scoreRequest(req *models.EnhancedRequest, now time.Time) models.LeadScoreResult {
	factors := models.ScoreFactors{
		DataCompleteness:  scoreDataCompleteness(req),
		SourceQuality:     scoreSourceQuality(req.LeadSource),
		Engagement:        scoreEngagement(req, now),
		BudgetAlignment:   scoreBudgetAlignment(req.Budget),
		ProjectComplexity: scoreProjectComplexity(req.Product),
		GeographicFit:     scoreGeographicFit(req.Address),
		Urgency:           scoreUrgency(req, now),
	}

	overall := factors.DataCompleteness*weightDataCompleteness +
		factors.SourceQuality*weightSourceQuality +
		factors.Engagement*weightEngagement +
		factors.BudgetAlignment*weightBudgetAlignment +
		factors.ProjectComplexity*weightProjectComplexity +
		factors.GeographicFit*weightGeographicFit +
		factors.Urgency*weightUrgency
	overall = math.Round(overall*10) / 10

	return models.LeadScoreResult{
		RequestID:             req.ID,
		OverallScore:          overall,
		Grade:                 gradeForScore(overall),
		ConversionProbability: conversionProbability(overall),
		PriorityLevel:         priorityForScore(overall, factors.Urgency),
		Factors:               factors,
		Recommendations:       recommendationsFor(overall, factors),
		CalculatedAt:          now,
	}
}

// scoreDataCompleteness measures the ratio of populated key fields
func scoreDataCompleteness(req *models.EnhancedRequest) float64 {
	populated := 0
	total := 8

	if strings.TrimSpace(req.Product) != "" {
		populated++
	}
	if strings.TrimSpace(req.Message) != "" {
		populated++
	}
	if strings.TrimSpace(req.LeadSource) != "" && req.LeadSource != "unknown" {
		populated++
	}
	if strings.TrimSpace(req.Budget) != "" {
		populated++
	}
	if req.HomeownerContactID != "" {
		populated++
	}
	if req.AddressID != "" {
		populated++
	}
	if strings.TrimSpace(req.RelationToProperty) != "" {
		populated++
	}
	if req.RequestedVisitDate != nil {
		populated++
	}

	return math.Round(float64(populated) / float64(total) * 100)
}

// scoreSourceQuality looks the lead source up in the conversion table
func scoreSourceQuality(leadSource string) float64 {
	source := strings.ToLower(strings.TrimSpace(leadSource))
	if source == "" {
		return 30
	}
	if score, ok := sourceQualityScores[source]; ok {
		return score
	}
	return 50
}

// scoreEngagement rates message detail plus attached media and visit intent
func scoreEngagement(req *models.EnhancedRequest, now time.Time) float64 {
	var score float64
	switch length := len(strings.TrimSpace(req.Message)); {
	case length == 0:
		score = 10
	case length < 50:
		score = 40
	case length < 200:
		score = 60
	case length < 500:
		score = 75
	default:
		score = 85
	}

	for _, tag := range req.Tags {
		switch strings.ToLower(tag) {
		case "has_photos", "has_documents", "has_video":
			score += 5
		}
	}
	if req.RequestedVisitDate != nil && req.RequestedVisitDate.After(now) {
		score += 10
	}

	return math.Min(score, 100)
}

// scoreBudgetAlignment parses free-text budget into a tier score. An absent
// budget scores 30; explicit "no budget" phrasing scores 10; a parsed amount
// is tiered by its upper bound.
func scoreBudgetAlignment(budget string) float64 {
	text := strings.ToLower(strings.TrimSpace(budget))
	if text == "" {
		return 30
	}
	if strings.Contains(text, "no budget") || text == "none" || strings.Contains(text, "not sure") {
		return 10
	}

	amount := parseBudgetAmount(text)
	switch {
	case amount >= 100000:
		return 95
	case amount >= 50000:
		return 85
	case amount >= 25000:
		return 70
	case amount >= 10000:
		return 55
	case amount > 0:
		return 40
	default:
		// Budget text present but unparseable still beats no answer
		return 35
	}
}

// parseBudgetAmount extracts the largest dollar amount from budget text,
// handling "$50,000-$75,000", "$100k+", and similar phrasings
func parseBudgetAmount(text string) float64 {
	var largest float64
	for _, match := range numberPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(match[1], ",", "")
		value, err := strconv.ParseFloat(strings.TrimSuffix(raw, "."), 64)
		if err != nil {
			continue
		}
		if match[2] != "" {
			value *= 1000
		}
		if value > largest {
			largest = value
		}
	}
	return largest
}

// scoreProjectComplexity rates the product by keyword
func scoreProjectComplexity(product string) float64 {
	text := strings.ToLower(strings.TrimSpace(product))
	if text == "" {
		return 30
	}
	for _, entry := range complexityKeywords {
		if strings.Contains(text, entry.keyword) {
			return entry.score
		}
	}
	return 60
}

// scoreGeographicFit rates how well we can locate the project. A missing
// property degrades the factor, not the call.
func scoreGeographicFit(address *models.Property) float64 {
	switch {
	case address == nil:
		return 50
	case address.Zip != "":
		return 80
	case address.City != "":
		return 65
	default:
		return 55
	}
}

// scoreUrgency scans for urgency language and a near-term requested visit
func scoreUrgency(req *models.EnhancedRequest, now time.Time) float64 {
	text := strings.ToLower(req.Message)
	score := 40.0
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			score = 90
			break
		}
	}
	if score < 90 {
		for _, kw := range soonKeywords {
			if strings.Contains(text, kw) {
				score = 75
				break
			}
		}
	}

	if req.RequestedVisitDate != nil {
		until := req.RequestedVisitDate.Sub(now)
		if until > 0 && until <= 7*24*time.Hour {
			score = math.Max(score, 85)
		} else if until > 0 && until <= 30*24*time.Hour {
			score = math.Max(score, 65)
		}
	}

	return score
}

func gradeForScore(score float64) string {
	switch {
	case score >= gradeAThreshold:
		return "A"
	case score >= gradeBThreshold:
		return "B"
	case score >= gradeCThreshold:
		return "C"
	case score >= gradeDThreshold:
		return "D"
	default:
		return "F"
	}
}

// conversionProbability maps the overall score to a 0-1 probability,
// monotonic in the score
func conversionProbability(score float64) float64 {
	return math.Round(score) / 100 * 0.9
}

func priorityForScore(score, urgency float64) models.Priority {
	switch {
	case score >= 85 || urgency >= 85:
		return models.PriorityUrgent
	case score >= 70:
		return models.PriorityHigh
	case score >= 50:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func recommendationsFor(overall float64, factors models.ScoreFactors) []string {
	var recs []string
	if factors.DataCompleteness < 70 {
		recs = append(recs, "Gather missing information from the homeowner")
	}
	if factors.Engagement < 60 {
		recs = append(recs, "Follow up to increase engagement")
	}
	if factors.BudgetAlignment < 50 {
		recs = append(recs, "Qualify the budget before investing agent time")
	}
	if overall >= 85 {
		recs = append(recs, "Schedule an immediate consultation")
	}
	if overall < 60 {
		recs = append(recs, "Consider a lead nurturing sequence")
	}
	return recs
}
