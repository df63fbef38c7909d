package database

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/yishak-cs/crm-insights/internal/models"
)

// CustomerStore reads customers and their interaction history from the graph
type CustomerStore struct {
	client *Neo4jClient
}

// NewCustomerStore creates a new customer store
func NewCustomerStore(client *Neo4jClient) *CustomerStore {
	return &CustomerStore{client: client}
}

// GetCustomer returns the customer with the given id, or nil if there is none
func (s *CustomerStore) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	query := `
		MATCH (c:Customer {id: $customerId})
		RETURN c {.*} AS customer
	`

	results, err := s.client.ExecuteRead(ctx, query, map[string]any{"customerId": customerID})
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	props, _ := results[0]["customer"].(map[string]any)
	customer := customerFromProps(props)
	return &customer, nil
}

// ListCustomers returns every customer ordered by id
func (s *CustomerStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	query := `
		MATCH (c:Customer)
		RETURN c {.*} AS customer
		ORDER BY c.id
	`

	results, err := s.client.ExecuteRead(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	customers := make([]models.Customer, 0, len(results))
	for _, result := range results {
		props, _ := result["customer"].(map[string]any)
		customers = append(customers, customerFromProps(props))
	}
	return customers, nil
}

// ListInteractions returns a customer's interactions, newest first
func (s *CustomerStore) ListInteractions(ctx context.Context, customerID string) ([]models.Interaction, error) {
	query := `
		MATCH (c:Customer {id: $customerId})-[:HAD]->(i:Interaction)
		RETURN i {.*} AS interaction
		ORDER BY i.created_at DESC
	`

	results, err := s.client.ExecuteRead(ctx, query, map[string]any{"customerId": customerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	interactions := make([]models.Interaction, 0, len(results))
	for _, result := range results {
		props, _ := result["interaction"].(map[string]any)
		interaction := interactionFromProps(props)
		interaction.CustomerID = customerID
		interactions = append(interactions, interaction)
	}
	return interactions, nil
}

// Health checks the underlying connection
func (s *CustomerStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func customerFromProps(props map[string]any) models.Customer {
	return models.Customer{
		ID:                     stringProp(props, "id"),
		Name:                   stringProp(props, "name"),
		Email:                  stringProp(props, "email"),
		CreatedAt:              timeProp(props, "created_at"),
		PaymentDelinquent:      boolProp(props, "payment_delinquent"),
		SubscriptionEndingSoon: boolProp(props, "subscription_ending_soon"),
		FeatureUsageRate:       floatProp(props, "feature_usage_rate"),
		TotalPurchaseValue:     floatProp(props, "total_purchase_value"),
		Industry:               stringProp(props, "industry"),
		CompanySize:            stringProp(props, "company_size"),
	}
}

func interactionFromProps(props map[string]any) models.Interaction {
	return models.Interaction{
		ID:             stringProp(props, "id"),
		Type:           stringProp(props, "type"),
		CreatedAt:      timeProp(props, "created_at"),
		Sentiment:      stringProp(props, "sentiment"),
		SentimentScore: floatProp(props, "sentiment_score"),
	}
}

func stringProp(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

func floatProp(props map[string]any, key string) *float64 {
	var f float64
	switch v := props[key].(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	default:
		return nil
	}
	return &f
}

func boolProp(props map[string]any, key string) *bool {
	v, ok := props[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// timeProp accepts native temporal values and RFC 3339 strings. Anything
// else, including unparseable strings, yields the zero time.
func timeProp(props map[string]any, key string) time.Time {
	switch v := props[key].(type) {
	case time.Time:
		return v
	case dbtype.LocalDateTime:
		return v.Time()
	case dbtype.Date:
		return v.Time()
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}
