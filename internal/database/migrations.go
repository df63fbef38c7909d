package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CSVImporter handles importing CSV data into Neo4j
type CSVImporter struct {
	client *Neo4jClient
	logger *zap.Logger
}

// NewCSVImporter creates a new CSV importer
func NewCSVImporter(client *Neo4jClient, logger *zap.Logger) *CSVImporter {
	return &CSVImporter{client: client, logger: logger}
}

// ImportAllData imports all CSV files in the correct order
func (i *CSVImporter) ImportAllData(ctx context.Context, baseURL string) error {
	i.logger.Info("starting CSV import", zap.String("base_url", baseURL))

	steps := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"constraints", i.EnsureConstraints},
		{"customers", i.ImportCustomers},
		{"interactions", i.ImportInteractions},
	}

	for _, step := range steps {
		if err := step.fn(ctx, baseURL); err != nil {
			return fmt.Errorf("failed to import %s: %w", step.name, err)
		}
		i.logger.Info("import step completed", zap.String("step", step.name))
	}

	i.logger.Info("CSV import completed")
	return nil
}

// EnsureConstraints creates the uniqueness constraints the importer relies on for MERGE
func (i *CSVImporter) EnsureConstraints(ctx context.Context, _ string) error {
	queries := []string{
		`CREATE CONSTRAINT customer_id IF NOT EXISTS FOR (c:Customer) REQUIRE c.id IS UNIQUE`,
		`CREATE CONSTRAINT interaction_id IF NOT EXISTS FOR (i:Interaction) REQUIRE i.id IS UNIQUE`,
	}
	for _, query := range queries {
		if err := i.client.ExecuteWrite(ctx, query, nil); err != nil {
			return err
		}
	}
	return nil
}

// ImportCustomers imports customers from CSV. Empty cells leave the property
// unset so the scoring engines see the field as absent.
func (i *CSVImporter) ImportCustomers(ctx context.Context, baseURL string) error {
	query := `
		LOAD CSV WITH HEADERS FROM $csvURL AS row
		WITH row WHERE row.id IS NOT NULL
		MERGE (c:Customer {id: row.id})
		SET c.name = row.name,
			c.email = row.email,
			c.created_at = datetime(row.created_at),
			c.payment_delinquent = toBoolean(row.payment_delinquent),
			c.subscription_ending_soon = toBoolean(row.subscription_ending_soon),
			c.feature_usage_rate = toFloat(row.feature_usage_rate),
			c.total_purchase_value = toFloat(row.total_purchase_value),
			c.industry = row.industry,
			c.company_size = row.company_size
		RETURN count(c) AS imported
	`
	return i.load(ctx, csvURL(baseURL, "customers.csv"), query, "customers")
}

// ImportInteractions imports interactions from CSV and links them to their customer
func (i *CSVImporter) ImportInteractions(ctx context.Context, baseURL string) error {
	query := `
		LOAD CSV WITH HEADERS FROM $csvURL AS row
		WITH row WHERE row.id IS NOT NULL AND row.customer IS NOT NULL
		MATCH (c:Customer {id: row.customer})
		MERGE (i:Interaction {id: row.id})
		SET i.type = row.type,
			i.created_at = datetime(row.created_at),
			i.sentiment = row.sentiment,
			i.sentiment_score = toFloat(row.sentiment_score)
		MERGE (c)-[:HAD]->(i)
		RETURN count(i) AS imported
	`
	return i.load(ctx, csvURL(baseURL, "interactions.csv"), query, "interactions")
}

func (i *CSVImporter) load(ctx context.Context, url, query, what string) error {
	results, err := i.client.ExecuteWriteWithResult(ctx, query, map[string]any{"csvURL": url})
	if err != nil {
		return err
	}
	if len(results) > 0 {
		i.logger.Info("imported rows", zap.String("kind", what), zap.Any("count", results[0]["imported"]))
	}
	return nil
}

// GetImportStatus returns the current state of the database
func (i *CSVImporter) GetImportStatus(ctx context.Context) (map[string]int, error) {
	query := `
		OPTIONAL MATCH (c:Customer) WITH count(c) AS customers
		OPTIONAL MATCH (i:Interaction) WITH customers, count(i) AS interactions
		OPTIONAL MATCH ()-[h:HAD]->() WITH customers, interactions, count(h) AS links
		RETURN customers, interactions, links
	`

	results, err := i.client.ExecuteRead(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	status := map[string]int{"customers": 0, "interactions": 0, "links": 0}
	if len(results) == 0 {
		return status, nil
	}
	for key := range status {
		if n, ok := results[0][key].(int64); ok {
			status[key] = int(n)
		}
	}
	return status, nil
}

func csvURL(baseURL, file string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(baseURL, "/"), file)
}
