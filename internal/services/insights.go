package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yishak-cs/crm-insights/internal/insights"
	"github.com/yishak-cs/crm-insights/internal/models"
)

// InsightsComputedEvent is the event type published after a customer's insights are computed
const InsightsComputedEvent = "insights.computed"

var (
	// ErrCustomerNotFound is returned when the repository has no customer with the requested id
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrInvalidRiskLevel is returned for a risk level other than low, medium or high
	ErrInvalidRiskLevel = errors.New("invalid risk level")
)

// CustomerRepository supplies customer records and their interaction history
type CustomerRepository interface {
	// GetCustomer returns nil and no error when the customer does not exist
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	// ListInteractions returns the customer's interactions, newest first
	ListInteractions(ctx context.Context, customerID string) ([]models.Interaction, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	Health(ctx context.Context) error
}

// EventPublisher delivers insight events to downstream consumers
type EventPublisher interface {
	PublishInsights(ctx context.Context, event models.InsightEvent) error
}

// InsightService loads customer history and runs the scoring engines over it
type InsightService struct {
	repo      CustomerRepository
	publisher EventPublisher
	logger    *zap.Logger
	clock     func() time.Time
}

// NewInsightService creates a new insight service. publisher may be nil.
func NewInsightService(repo CustomerRepository, publisher EventPublisher, logger *zap.Logger) *InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		clock:     time.Now,
	}
}

// WithClock replaces the time source used for every calculation
func (s *InsightService) WithClock(clock func() time.Time) *InsightService {
	s.clock = clock
	return s
}

// Health reports whether the customer store is reachable
func (s *InsightService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// history loads a customer and its interactions
func (s *InsightService) history(ctx context.Context, customerID string) (models.Customer, []models.Interaction, error) {
	customer, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return models.Customer{}, nil, fmt.Errorf("failed to load customer %s: %w", customerID, err)
	}
	if customer == nil {
		return models.Customer{}, nil, fmt.Errorf("customer %s: %w", customerID, ErrCustomerNotFound)
	}

	interactions, err := s.repo.ListInteractions(ctx, customerID)
	if err != nil {
		return models.Customer{}, nil, fmt.Errorf("failed to load interactions for customer %s: %w", customerID, err)
	}
	return *customer, interactions, nil
}

// LeadScore answers: "How sales-ready is this customer?"
func (s *InsightService) LeadScore(ctx context.Context, customerID string) (models.ScoreResult, error) {
	customer, interactions, err := s.history(ctx, customerID)
	if err != nil {
		return models.ScoreResult{}, err
	}
	return insights.ScoreLead(customer, interactions, s.clock()), nil
}

// ChurnRisk answers: "How likely is this customer to leave, and why?"
func (s *InsightService) ChurnRisk(ctx context.Context, customerID string) (models.ChurnPrediction, error) {
	customer, interactions, err := s.history(ctx, customerID)
	if err != nil {
		return models.ChurnPrediction{}, err
	}
	return insights.PredictChurnRisk(customer, interactions, s.clock()), nil
}

// Recommendations answers: "What should the account manager do next?"
func (s *InsightService) Recommendations(ctx context.Context, customerID string) ([]models.Recommendation, error) {
	customer, interactions, err := s.history(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return insights.GetInteractionRecommendations(customer, interactions, s.clock()), nil
}

// CustomerInsights runs every engine for a stored customer and publishes the result
func (s *InsightService) CustomerInsights(ctx context.Context, customerID string) (models.CustomerInsights, error) {
	customer, interactions, err := s.history(ctx, customerID)
	if err != nil {
		return models.CustomerInsights{}, err
	}

	result := insights.Evaluate(customer, interactions, s.clock())
	s.publish(ctx, result)
	return result, nil
}

// Evaluate scores caller-supplied records without touching storage. The
// interactions are ordered newest first before evaluation.
func (s *InsightService) Evaluate(customer models.Customer, interactions []models.Interaction) models.CustomerInsights {
	return insights.Evaluate(customer, newestFirst(interactions), s.clock())
}

// RankLeads scores every customer and returns them best lead first. A
// non-positive limit returns all customers.
func (s *InsightService) RankLeads(ctx context.Context, limit int) ([]models.RankedLead, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	now := s.clock()
	leads := make([]models.RankedLead, 0, len(customers))
	for _, customer := range customers {
		interactions, err := s.repo.ListInteractions(ctx, customer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load interactions for customer %s: %w", customer.ID, err)
		}
		result := insights.ScoreLead(customer, interactions, now)
		leads = append(leads, models.RankedLead{
			CustomerID: customer.ID,
			Name:       customer.Name,
			Score:      result.Score,
			LeadGrade:  result.LeadGrade,
		})
	}

	sort.Slice(leads, func(i, j int) bool {
		if leads[i].Score != leads[j].Score {
			return leads[i].Score > leads[j].Score
		}
		return leads[i].CustomerID < leads[j].CustomerID
	})

	if limit > 0 && len(leads) > limit {
		leads = leads[:limit]
	}
	return leads, nil
}

var riskRank = map[string]int{
	models.RiskLow:    0,
	models.RiskMedium: 1,
	models.RiskHigh:   2,
}

// AtRiskCustomers returns customers whose churn level is at least minLevel, highest risk first
func (s *InsightService) AtRiskCustomers(ctx context.Context, minLevel string) ([]models.AtRiskCustomer, error) {
	threshold, ok := riskRank[minLevel]
	if !ok {
		return nil, fmt.Errorf("%q: %w", minLevel, ErrInvalidRiskLevel)
	}

	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	now := s.clock()
	atRisk := make([]models.AtRiskCustomer, 0)
	for _, customer := range customers {
		interactions, err := s.repo.ListInteractions(ctx, customer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load interactions for customer %s: %w", customer.ID, err)
		}
		prediction := insights.PredictChurnRisk(customer, interactions, now)
		if riskRank[prediction.RiskLevel] < threshold {
			continue
		}
		atRisk = append(atRisk, models.AtRiskCustomer{
			CustomerID: customer.ID,
			Name:       customer.Name,
			Churn:      prediction,
		})
	}

	sort.Slice(atRisk, func(i, j int) bool {
		if atRisk[i].Churn.RiskScore != atRisk[j].Churn.RiskScore {
			return atRisk[i].Churn.RiskScore > atRisk[j].Churn.RiskScore
		}
		return atRisk[i].CustomerID < atRisk[j].CustomerID
	})
	return atRisk, nil
}

func (s *InsightService) publish(ctx context.Context, result models.CustomerInsights) {
	if s.publisher == nil {
		return
	}
	event := models.InsightEvent{
		EventID:    uuid.NewString(),
		Type:       InsightsComputedEvent,
		CustomerID: result.CustomerID,
		OccurredAt: result.GeneratedAt,
		Insights:   result,
	}
	if err := s.publisher.PublishInsights(ctx, event); err != nil {
		s.logger.Warn("failed to publish insight event",
			zap.String("customer_id", result.CustomerID),
			zap.Error(err))
	}
}

// newestFirst returns a copy of interactions sorted by descending creation time
func newestFirst(interactions []models.Interaction) []models.Interaction {
	sorted := make([]models.Interaction, len(interactions))
	copy(sorted, interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
