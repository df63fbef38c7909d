package insights

import (
	"math"
	"time"

	"github.com/yishak-cs/crm-insights/internal/models"
)

// NoInteractionDays stands in for "never" when a customer has no usable interaction history
const NoInteractionDays = 999

// DaysSinceLastInteraction returns the whole days elapsed between the most
// recent interaction and now, rounded down. Zero timestamps are skipped.
func DaysSinceLastInteraction(interactions []models.Interaction, now time.Time) int {
	var last time.Time
	for _, i := range interactions {
		if i.CreatedAt.IsZero() {
			continue
		}
		if i.CreatedAt.After(last) {
			last = i.CreatedAt
		}
	}
	if last.IsZero() {
		return NoInteractionDays
	}
	return daysBetween(last, now)
}

// daysBetween returns floor((now - t) / 24h)
func daysBetween(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}
