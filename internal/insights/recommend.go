package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yishak-cs/crm-insights/internal/models"
)

const (
	recentWindow       = 5
	dissatisfiedMin    = 2
	upsellValue        = 5000
	upsellMaxDays      = 14
	onboardingMaxAge   = 30
	onboardingMaxTouch = 3
)

// GetInteractionRecommendations evaluates every recommendation rule for a
// customer and returns the matches ordered by priority, most urgent first.
// Interactions are expected newest first; the dissatisfaction rule only
// looks at the first five entries as given.
func GetInteractionRecommendations(customer models.Customer, interactions []models.Interaction, now time.Time) []models.Recommendation {
	p := normalize(customer)
	days := DaysSinceLastInteraction(interactions, now)
	recs := make([]models.Recommendation, 0)

	churn := PredictChurnRisk(customer, interactions, now)
	if churn.RiskLevel == models.RiskHigh {
		recs = append(recs, models.Recommendation{
			Type:     models.RecommendationUrgent,
			Title:    "High Churn Risk",
			Message:  fmt.Sprintf("Churn risk score is %d%%. Key factors: %s", churn.RiskScore, strings.Join(churn.Factors, ", ")),
			Action:   "Schedule immediate call with account manager",
			Priority: 1,
		})
	}

	recent := interactions[:min(recentWindow, len(interactions))]
	if CountNegativeInteractions(recent) >= dissatisfiedMin {
		recs = append(recs, models.Recommendation{
			Type:     models.RecommendationSupport,
			Title:    "Address Recent Concerns",
			Message:  "Multiple recent interactions show negative sentiment",
			Action:   "Review recent tickets and follow up on open issues",
			Priority: 2,
		})
	}

	switch {
	case days > 60:
		recs = append(recs, models.Recommendation{
			Type:     models.RecommendationEngagement,
			Title:    "Re-engage Customer",
			Message:  fmt.Sprintf("No interaction in %d days", days),
			Action:   "Send a personalized check-in email",
			Priority: 2,
		})
	case days > 30:
		recs = append(recs, models.Recommendation{
			Type:     models.RecommendationEngagement,
			Title:    "Maintain Engagement",
			Message:  fmt.Sprintf("Last interaction was %d days ago", days),
			Action:   "Share a product update or relevant resource",
			Priority: 3,
		})
	}

	if (p.totalPurchaseValue > upsellValue || p.companySize == "Enterprise") && days < upsellMaxDays {
		recs = append(recs, models.Recommendation{
			Type:     models.RecommendationUpsell,
			Title:    "Upsell Opportunity",
			Message:  "High-value customer with recent engagement",
			Action:   "Present premium features or an expanded plan",
			Priority: 2,
		})
	}

	if daysBetween(p.createdAt, now) < onboardingMaxAge && len(interactions) < onboardingMaxTouch {
		recs = append(recs, models.Recommendation{
			Type:     models.RecommendationOnboarding,
			Title:    "Complete Onboarding",
			Message:  "New customer with limited interaction history",
			Action:   "Schedule an onboarding session",
			Priority: 2,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})
	return recs
}

// Evaluate runs every engine once for a customer and bundles the results
func Evaluate(customer models.Customer, interactions []models.Interaction, now time.Time) models.CustomerInsights {
	return models.CustomerInsights{
		CustomerID:               customer.ID,
		GeneratedAt:              now,
		DaysSinceLastInteraction: DaysSinceLastInteraction(interactions, now),
		LeadScore:                ScoreLead(customer, interactions, now),
		Churn:                    PredictChurnRisk(customer, interactions, now),
		Recommendations:          GetInteractionRecommendations(customer, interactions, now),
	}
}
