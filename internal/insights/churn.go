package insights

import (
	"time"

	"github.com/yishak-cs/crm-insights/internal/models"
)

const (
	negativeScoreCutoff = 0.4
	negativePoints      = 8
	negativeCap         = 20
	maxRiskFactors      = 3

	highRiskThreshold   = 70
	mediumRiskThreshold = 40
)

// Risk factor descriptions, listed in reporting order
const (
	FactorNoRecentEngagement  = "No recent engagement (>60 days)"
	FactorLowRecentEngagement = "Low recent engagement (>30 days)"
	FactorPaymentIssues       = "Payment issues detected"
	FactorNegativeSentiment   = "Multiple negative interactions"
	FactorLowUsage            = "Low product usage"
)

// IsNegativeInteraction reports whether an interaction carries a negative
// signal: a negative sentiment label, or a recorded score below 0.4.
func IsNegativeInteraction(i models.Interaction) bool {
	if i.Sentiment == models.SentimentNegative {
		return true
	}
	s, ok := sentimentScore(i)
	return ok && s < negativeScoreCutoff
}

// CountNegativeInteractions counts interactions matching IsNegativeInteraction
func CountNegativeInteractions(interactions []models.Interaction) int {
	n := 0
	for _, i := range interactions {
		if IsNegativeInteraction(i) {
			n++
		}
	}
	return n
}

// PredictChurnRisk estimates how likely a customer is to discontinue service
func PredictChurnRisk(customer models.Customer, interactions []models.Interaction, now time.Time) models.ChurnPrediction {
	p := normalize(customer)
	days := DaysSinceLastInteraction(interactions, now)
	negatives := CountNegativeInteractions(interactions)

	risk := 0
	switch {
	case days > 90:
		risk += 40
	case days > 60:
		risk += 25
	case days > 30:
		risk += 15
	}

	risk += min(negatives*negativePoints, negativeCap)

	if p.paymentDelinquent {
		risk += 20
	}
	if p.subscriptionEndingSoon {
		risk += 10
	}

	switch {
	case p.featureUsageRate < 0.2:
		risk += 15
	case p.featureUsageRate < 0.5:
		risk += 8
	}

	risk = min(100, risk)

	return models.ChurnPrediction{
		RiskScore:      risk,
		RiskLevel:      RiskLevel(risk),
		Factors:        riskFactors(p, days, negatives),
		Recommendation: ChurnRecommendation(risk),
	}
}

// RiskLevel classifies a churn risk score
func RiskLevel(riskScore int) string {
	switch {
	case riskScore >= highRiskThreshold:
		return models.RiskHigh
	case riskScore >= mediumRiskThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// RiskFactors explains the churn signals present for a customer. At most three
// factors are returned, always in the same order.
func RiskFactors(customer models.Customer, interactions []models.Interaction, now time.Time) []string {
	return riskFactors(normalize(customer), DaysSinceLastInteraction(interactions, now), CountNegativeInteractions(interactions))
}

func riskFactors(p profile, days, negatives int) []string {
	factors := make([]string, 0, maxRiskFactors)
	switch {
	case days > 60:
		factors = append(factors, FactorNoRecentEngagement)
	case days > 30:
		factors = append(factors, FactorLowRecentEngagement)
	}
	if p.paymentDelinquent {
		factors = append(factors, FactorPaymentIssues)
	}
	if negatives > 1 {
		factors = append(factors, FactorNegativeSentiment)
	}
	// Scoring uses 0.2/0.5 usage bands; the explanation deliberately keeps its
	// own 0.3 cutoff until product confirms which one is intended.
	if p.featureUsageRate < 0.3 {
		factors = append(factors, FactorLowUsage)
	}
	if len(factors) > maxRiskFactors {
		factors = factors[:maxRiskFactors]
	}
	return factors
}

// ChurnRecommendation returns the suggested retention action for a risk score
func ChurnRecommendation(riskScore int) string {
	switch {
	case riskScore >= highRiskThreshold:
		return "Immediate personal outreach required - high churn risk"
	case riskScore >= mediumRiskThreshold:
		return "Schedule check-in call and offer proactive support"
	default:
		return "Continue regular engagement and monitoring"
	}
}
