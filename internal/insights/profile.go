// Package insights implements the lead scoring, churn risk and recommendation
// heuristics. Every function is a pure function of its arguments and the
// supplied current time.
package insights

import (
	"time"

	"github.com/yishak-cs/crm-insights/internal/models"
)

const day = 24 * time.Hour

// profile is a Customer with every optional field resolved to its default
type profile struct {
	createdAt              time.Time
	paymentDelinquent      bool
	subscriptionEndingSoon bool
	featureUsageRate       float64
	totalPurchaseValue     float64
	industry               string
	companySize            string
}

func normalize(c models.Customer) profile {
	p := profile{
		createdAt:   c.CreatedAt,
		industry:    c.Industry,
		companySize: c.CompanySize,
	}
	if c.PaymentDelinquent != nil {
		p.paymentDelinquent = *c.PaymentDelinquent
	}
	if c.SubscriptionEndingSoon != nil {
		p.subscriptionEndingSoon = *c.SubscriptionEndingSoon
	}
	if c.FeatureUsageRate != nil {
		p.featureUsageRate = *c.FeatureUsageRate
	}
	if c.TotalPurchaseValue != nil {
		p.totalPurchaseValue = *c.TotalPurchaseValue
	}
	return p
}

// sentimentScore reports the interaction's score and whether one was recorded
func sentimentScore(i models.Interaction) (float64, bool) {
	if i.SentimentScore == nil {
		return 0, false
	}
	return *i.SentimentScore, true
}
