package services

import (
	"strings"
	"testing"
	"time"

	"github.com/checkfox/go_request/internal/models"
)

func TestScoreBudgetAlignment_AbsentBudget(t *testing.T) {
	if got := scoreBudgetAlignment(""); got != 30 {
		t.Errorf("Expected 30 for absent budget, got %f", got)
	}
}

func TestScoreBudgetAlignment_ExplicitNoBudget(t *testing.T) {
	for _, text := range []string{"no budget", "No Budget yet", "none", "not sure about it"} {
		got := scoreBudgetAlignment(text)
		if got > 15 {
			t.Errorf("Expected at most 15 for %q, got %f", text, got)
		}
	}
}

func TestScoreBudgetAlignment_HighBudget(t *testing.T) {
	for _, text := range []string{"$100k+", "$150,000", "around 200k"} {
		got := scoreBudgetAlignment(text)
		if got < 90 {
			t.Errorf("Expected at least 90 for %q, got %f", text, got)
		}
	}
}

func TestScoreBudgetAlignment_Tiers(t *testing.T) {
	cases := []struct {
		budget   string
		expected float64
	}{
		{"$50,000-$75,000", 85},
		{"$30,000", 70},
		{"$12k", 55},
		{"about $5,000", 40},
		{"whatever it takes", 35},
	}
	for _, tc := range cases {
		if got := scoreBudgetAlignment(tc.budget); got != tc.expected {
			t.Errorf("scoreBudgetAlignment(%q): expected %f, got %f", tc.budget, tc.expected, got)
		}
	}
}

func TestParseBudgetAmount(t *testing.T) {
	cases := []struct {
		text     string
		expected float64
	}{
		{"$50,000-$75,000", 75000},
		{"$100k+", 100000},
		{"around 12K or so", 12000},
		{"5000", 5000},
		{"no numbers here", 0},
	}
	for _, tc := range cases {
		if got := parseBudgetAmount(strings.ToLower(tc.text)); got != tc.expected {
			t.Errorf("parseBudgetAmount(%q): expected %f, got %f", tc.text, tc.expected, got)
		}
	}
}

func TestScoreSourceQuality(t *testing.T) {
	cases := []struct {
		source   string
		expected float64
	}{
		{"referral", 90},
		{"agent_direct", 85},
		{"website", 80},
		{"partner", 75},
		{"social_media", 70},
		{"advertisement", 60},
		{"unknown", 30},
		{"", 30},
		{"billboard", 50},
	}
	for _, tc := range cases {
		if got := scoreSourceQuality(tc.source); got != tc.expected {
			t.Errorf("scoreSourceQuality(%q): expected %f, got %f", tc.source, tc.expected, got)
		}
	}
}

func TestScoreDataCompleteness(t *testing.T) {
	empty := &models.EnhancedRequest{}
	if got := scoreDataCompleteness(empty); got != 0 {
		t.Errorf("Expected 0 for an empty request, got %f", got)
	}

	visit := time.Now().Add(48 * time.Hour)
	full := &models.EnhancedRequest{Request: models.Request{
		Product:            "Kitchen renovation",
		Message:            "Full remodel of the kitchen",
		LeadSource:         "referral",
		Budget:             "$50,000",
		HomeownerContactID: "contact-1",
		AddressID:          "address-1",
		RelationToProperty: "owner",
		RequestedVisitDate: &visit,
	}}
	if got := scoreDataCompleteness(full); got != 100 {
		t.Errorf("Expected 100 for a fully populated request, got %f", got)
	}

	half := &models.EnhancedRequest{Request: models.Request{
		Product:            "Roof repair",
		Message:            "Leaking roof",
		HomeownerContactID: "contact-1",
		AddressID:          "address-1",
	}}
	if got := scoreDataCompleteness(half); got != 50 {
		t.Errorf("Expected 50 for half the key fields, got %f", got)
	}
}

func TestScoreDataCompleteness_UnknownSourceDoesNotCount(t *testing.T) {
	req := &models.EnhancedRequest{Request: models.Request{LeadSource: "unknown"}}
	if got := scoreDataCompleteness(req); got != 0 {
		t.Errorf("Expected the unknown placeholder source not to count, got %f", got)
	}
}

func TestScoreProjectComplexity(t *testing.T) {
	cases := []struct {
		product  string
		expected float64
	}{
		{"Home addition", 85},
		{"Kitchen renovation", 80},
		{"Kitchen cabinets", 75},
		{"Bathroom refresh", 70},
		{"Roof replacement", 65},
		{"Deck staining", 60},
		{"Faucet repair", 55},
		{"Annual maintenance", 50},
		{"Something else entirely", 60},
		{"", 30},
	}
	for _, tc := range cases {
		if got := scoreProjectComplexity(tc.product); got != tc.expected {
			t.Errorf("scoreProjectComplexity(%q): expected %f, got %f", tc.product, tc.expected, got)
		}
	}
}

func TestScoreGeographicFit(t *testing.T) {
	if got := scoreGeographicFit(nil); got != 50 {
		t.Errorf("Expected 50 without a property, got %f", got)
	}
	if got := scoreGeographicFit(&models.Property{Zip: "66123"}); got != 80 {
		t.Errorf("Expected 80 with a zip, got %f", got)
	}
	if got := scoreGeographicFit(&models.Property{City: "Springfield"}); got != 65 {
		t.Errorf("Expected 65 with only a city, got %f", got)
	}
	if got := scoreGeographicFit(&models.Property{Street: "Main St"}); got != 55 {
		t.Errorf("Expected 55 with neither zip nor city, got %f", got)
	}
}

func TestScoreUrgency(t *testing.T) {
	now := time.Now()

	urgent := &models.EnhancedRequest{Request: models.Request{Message: "roof is leaking, please come ASAP"}}
	if got := scoreUrgency(urgent, now); got != 90 {
		t.Errorf("Expected 90 for urgent wording, got %f", got)
	}

	soon := &models.EnhancedRequest{Request: models.Request{Message: "would like this done soon"}}
	if got := scoreUrgency(soon, now); got != 75 {
		t.Errorf("Expected 75 for soon wording, got %f", got)
	}

	calm := &models.EnhancedRequest{Request: models.Request{Message: "no rush at all"}}
	if got := scoreUrgency(calm, now); got != 40 {
		t.Errorf("Expected 40 baseline, got %f", got)
	}

	visitSoon := now.Add(3 * 24 * time.Hour)
	nearVisit := &models.EnhancedRequest{Request: models.Request{
		Message:            "no rush",
		RequestedVisitDate: &visitSoon,
	}}
	if got := scoreUrgency(nearVisit, now); got != 85 {
		t.Errorf("Expected 85 for a visit within a week, got %f", got)
	}

	visitLater := now.Add(20 * 24 * time.Hour)
	monthVisit := &models.EnhancedRequest{Request: models.Request{
		Message:            "no rush",
		RequestedVisitDate: &visitLater,
	}}
	if got := scoreUrgency(monthVisit, now); got != 65 {
		t.Errorf("Expected 65 for a visit within a month, got %f", got)
	}
}

func TestScoreEngagement_MessageTiers(t *testing.T) {
	now := time.Now()
	cases := []struct {
		length   int
		expected float64
	}{
		{0, 10},
		{30, 40},
		{100, 60},
		{300, 75},
		{600, 85},
	}
	for _, tc := range cases {
		req := &models.EnhancedRequest{Request: models.Request{Message: strings.Repeat("x", tc.length)}}
		if got := scoreEngagement(req, now); got != tc.expected {
			t.Errorf("Expected %f for a %d-char message, got %f", tc.expected, tc.length, got)
		}
	}
}

func TestScoreEngagement_BonusesAreCapped(t *testing.T) {
	now := time.Now()
	visit := now.Add(24 * time.Hour)
	req := &models.EnhancedRequest{Request: models.Request{
		Message:            strings.Repeat("x", 600),
		Tags:               []string{"has_photos", "has_documents", "has_video"},
		RequestedVisitDate: &visit,
	}}

	if got := scoreEngagement(req, now); got != 100 {
		t.Errorf("Expected the engagement score to cap at 100, got %f", got)
	}
}

func TestGradeForScore(t *testing.T) {
	cases := []struct {
		score    float64
		expected string
	}{
		{95, "A"}, {90, "A"},
		{85, "B"}, {80, "B"},
		{75, "C"}, {70, "C"},
		{65, "D"}, {60, "D"},
		{59.9, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		if got := gradeForScore(tc.score); got != tc.expected {
			t.Errorf("gradeForScore(%f): expected %s, got %s", tc.score, tc.expected, got)
		}
	}
}

func TestPriorityForScore(t *testing.T) {
	if got := priorityForScore(90, 40); got != models.PriorityUrgent {
		t.Errorf("Expected urgent for a high score, got %s", got)
	}
	if got := priorityForScore(60, 90); got != models.PriorityUrgent {
		t.Errorf("Expected urgent for high urgency, got %s", got)
	}
	if got := priorityForScore(75, 40); got != models.PriorityHigh {
		t.Errorf("Expected high, got %s", got)
	}
	if got := priorityForScore(55, 40); got != models.PriorityMedium {
		t.Errorf("Expected medium, got %s", got)
	}
	if got := priorityForScore(30, 40); got != models.PriorityLow {
		t.Errorf("Expected low, got %s", got)
	}
}

func TestScoreRequest_StrongLead(t *testing.T) {
	now := time.Now()
	visit := now.Add(3 * 24 * time.Hour)
	req := &models.EnhancedRequest{
		Request: models.Request{
			BaseModel:          models.BaseModel{ID: "req-1"},
			Product:            "Kitchen renovation",
			Message:            strings.Repeat("Detailed description of the project. ", 10),
			LeadSource:         "referral",
			Budget:             "$100k+",
			HomeownerContactID: "contact-1",
			AddressID:          "address-1",
			RelationToProperty: "owner",
			RequestedVisitDate: &visit,
		},
		Address: &models.Property{Zip: "66123", City: "Springfield"},
	}

	result := scoreRequest(req, now)

	if result.RequestID != "req-1" {
		t.Errorf("Expected request id to be carried, got %q", result.RequestID)
	}
	if result.OverallScore < 85 {
		t.Errorf("Expected a strong lead to score at least 85, got %f", result.OverallScore)
	}
	if result.Grade != "A" && result.Grade != "B" {
		t.Errorf("Expected grade A or B, got %s", result.Grade)
	}
	if result.PriorityLevel != models.PriorityUrgent {
		t.Errorf("Expected urgent priority, got %s", result.PriorityLevel)
	}
	if result.ConversionProbability <= 0 || result.ConversionProbability > 0.9 {
		t.Errorf("Expected conversion probability in (0, 0.9], got %f", result.ConversionProbability)
	}
}

func TestScoreRequest_WeakLead(t *testing.T) {
	now := time.Now()
	req := &models.EnhancedRequest{
		Request: models.Request{
			BaseModel:  models.BaseModel{ID: "req-2"},
			LeadSource: "unknown",
			Budget:     "no budget",
		},
	}

	result := scoreRequest(req, now)

	if result.OverallScore >= 60 {
		t.Errorf("Expected a weak lead to score below 60, got %f", result.OverallScore)
	}
	if result.Grade != "F" {
		t.Errorf("Expected grade F, got %s", result.Grade)
	}
	if result.PriorityLevel != models.PriorityLow {
		t.Errorf("Expected low priority, got %s", result.PriorityLevel)
	}
	if len(result.Recommendations) == 0 {
		t.Error("Expected recommendations for a weak lead")
	}
}

func TestRecommendationsFor(t *testing.T) {
	weak := recommendationsFor(40, models.ScoreFactors{
		DataCompleteness: 30,
		Engagement:       20,
		BudgetAlignment:  10,
	})
	if len(weak) != 4 {
		t.Errorf("Expected 4 recommendations for a weak lead, got %d: %v", len(weak), weak)
	}

	strong := recommendationsFor(90, models.ScoreFactors{
		DataCompleteness: 90,
		Engagement:       80,
		BudgetAlignment:  95,
	})
	if len(strong) != 1 || !strings.Contains(strong[0], "consultation") {
		t.Errorf("Expected only the consultation recommendation, got %v", strong)
	}
}

func TestConversionProbability_Bounds(t *testing.T) {
	if got := conversionProbability(100); got != 0.9 {
		t.Errorf("Expected 0.9 at a perfect score, got %f", got)
	}
	if got := conversionProbability(0); got != 0 {
		t.Errorf("Expected 0 at a zero score, got %f", got)
	}
}
