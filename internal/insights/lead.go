package insights

import (
	"time"

	"github.com/yishak-cs/crm-insights/internal/models"
)

const (
	leadBaseScore = 50

	engagementWindow    = 30 * day
	engagementPoints    = 3
	engagementCap       = 15
	positiveScoreCutoff = 0.6
	sentimentPoints     = 4
	sentimentCap        = 12
	highValuePurchase   = 1000
)

var leadIndustries = map[string]bool{
	"Technology": true,
	"Finance":    true,
}

var leadGrades = []struct {
	min   int
	grade models.LeadGrade
}{
	{85, models.LeadGrade{Grade: "A", Label: "Hot Lead", Color: "green"}},
	{70, models.LeadGrade{Grade: "B", Label: "Warm Lead", Color: "blue"}},
	{50, models.LeadGrade{Grade: "C", Label: "Cool Lead", Color: "yellow"}},
}

var coldLead = models.LeadGrade{Grade: "D", Label: "Cold Lead", Color: "gray"}

// CalculateLeadScore converts a customer and its interaction history into a 0-100 sales-readiness score
func CalculateLeadScore(customer models.Customer, interactions []models.Interaction, now time.Time) int {
	p := normalize(customer)
	score := leadBaseScore

	windowStart := now.Add(-engagementWindow)
	recent, positive := 0, 0
	for _, i := range interactions {
		if i.CreatedAt.After(windowStart) {
			recent++
		}
		if s, ok := sentimentScore(i); ok && s > positiveScoreCutoff {
			positive++
		}
	}
	score += min(recent*engagementPoints, engagementCap)
	score += min(positive*sentimentPoints, sentimentCap)

	if p.totalPurchaseValue > highValuePurchase {
		score += 8
	}
	if leadIndustries[p.industry] {
		score += 5
	}

	// The two recency bonuses are independent checks, so a contact within the
	// last week earns both (+9). Pending product confirmation before making them exclusive.
	days := DaysSinceLastInteraction(interactions, now)
	if days <= 7 {
		score += 6
	}
	if days <= 30 {
		score += 3
	}

	switch p.companySize {
	case "Enterprise":
		score += 10
	case "Mid-Market":
		score += 5
	}

	return clamp(score, 0, 100)
}

// GetLeadGrade classifies a lead score
func GetLeadGrade(score int) models.LeadGrade {
	for _, g := range leadGrades {
		if score >= g.min {
			return g.grade
		}
	}
	return coldLead
}

// ScoreLead computes the lead score and its grade in one call
func ScoreLead(customer models.Customer, interactions []models.Interaction, now time.Time) models.ScoreResult {
	score := CalculateLeadScore(customer, interactions, now)
	return models.ScoreResult{Score: score, LeadGrade: GetLeadGrade(score)}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
