package models

import "time"

// Customer represents a CRM account. Optional numeric and boolean fields are
// pointers so an absent value can be told apart from an explicit zero.
type Customer struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name,omitempty"`
	Email                  string    `json:"email,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	PaymentDelinquent      *bool     `json:"payment_delinquent,omitempty"`
	SubscriptionEndingSoon *bool     `json:"subscription_ending_soon,omitempty"`
	FeatureUsageRate       *float64  `json:"feature_usage_rate,omitempty"`
	TotalPurchaseValue     *float64  `json:"total_purchase_value,omitempty"`
	Industry               string    `json:"industry,omitempty"`
	CompanySize            string    `json:"company_size,omitempty"`
}

// Sentiment values recorded on an interaction
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Interaction represents a single customer touchpoint (call, email, meeting)
type Interaction struct {
	ID             string    `json:"id,omitempty"`
	CustomerID     string    `json:"customer"`
	Type           string    `json:"type,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Sentiment      string    `json:"sentiment,omitempty"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
}

// LeadGrade is the letter classification of a lead score
type LeadGrade struct {
	Grade string `json:"grade"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// ScoreResult is a lead score together with its grade
type ScoreResult struct {
	Score int `json:"score"`
	LeadGrade
}

// Churn risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ChurnPrediction is the output of the churn risk predictor
type ChurnPrediction struct {
	RiskScore      int      `json:"riskScore"`
	RiskLevel      string   `json:"riskLevel"`
	Factors        []string `json:"factors"`
	Recommendation string   `json:"recommendation"`
}

// RecommendationType classifies a suggested next action
type RecommendationType string

const (
	RecommendationUrgent     RecommendationType = "urgent"
	RecommendationSupport    RecommendationType = "support"
	RecommendationEngagement RecommendationType = "engagement"
	RecommendationUpsell     RecommendationType = "upsell"
	RecommendationOnboarding RecommendationType = "onboarding"
)

// Recommendation represents a prioritized next action for an account manager.
// Priority 1 is the most urgent.
type Recommendation struct {
	Type     RecommendationType `json:"type"`
	Title    string             `json:"title"`
	Message  string             `json:"message"`
	Action   string             `json:"action"`
	Priority int                `json:"priority"`
}

// CustomerInsights bundles every engine output for one customer
type CustomerInsights struct {
	CustomerID               string           `json:"customer_id"`
	GeneratedAt              time.Time        `json:"generated_at"`
	DaysSinceLastInteraction int              `json:"days_since_last_interaction"`
	LeadScore                ScoreResult      `json:"lead_score"`
	Churn                    ChurnPrediction  `json:"churn"`
	Recommendations          []Recommendation `json:"recommendations"`
}

// RankedLead is one row of the lead ranking
type RankedLead struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	LeadGrade
}

// AtRiskCustomer is one row of the churn watch list
type AtRiskCustomer struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	Churn      ChurnPrediction `json:"churn"`
}

// InsightEvent is published to the message bus whenever insights are computed
type InsightEvent struct {
	EventID    string           `json:"event_id"`
	Type       string           `json:"type"`
	CustomerID string           `json:"customer_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Insights   CustomerInsights `json:"insights"`
}

// EvaluateRequest carries caller-supplied records for ad-hoc scoring
type EvaluateRequest struct {
	Customer     Customer      `json:"customer"`
	Interactions []Interaction `json:"interactions"`
}
