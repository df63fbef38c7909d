package insights

import (
	"time"

	"github.com/yishak-cs/crm-insights/internal/models"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }
func floatPtr(f float64) *float64 { return &f }
func daysAgo(n int) time.Time { return now.Add(-time.Duration(n) * day) }

// touch builds an interaction n days before now
func touch(n int) models.Interaction {
	return models.Interaction{CustomerID: "c1", CreatedAt: daysAgo(n)}
}

func scored(n int, score float64) models.Interaction {
	i := touch(n)
	i.SentimentScore = floatPtr(score)
	return i
}

func negative(n int) models.Interaction {
	i := touch(n)
	i.Sentiment = models.SentimentNegative
	return i
}

// engaged returns a customer whose usage rate contributes no churn risk
func engaged() models.Customer {
	return models.Customer{ID: "c1", CreatedAt: daysAgo(365), FeatureUsageRate: floatPtr(0.9)}
}

// with returns engaged() after applying mod
func with(mod func(*models.Customer)) models.Customer {
	c := engaged()
	mod(&c)
	return c
}
