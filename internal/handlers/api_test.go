package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yishak-cs/crm-insights/internal/models"
	"github.com/yishak-cs/crm-insights/internal/services"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type stubRepo struct {
	customers    map[string]models.Customer
	interactions map[string][]models.Interaction
	err          error
}

func (r *stubRepo) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *stubRepo) ListInteractions(ctx context.Context, id string) ([]models.Interaction, error) {
	return r.interactions[id], r.err
}

func (r *stubRepo) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubRepo) Health(ctx context.Context) error { return r.err }

func usage(f float64) *float64 { return &f }

func setupRouter(t *testing.T, repo *stubRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := services.NewInsightService(repo, nil, logger).WithClock(func() time.Time { return now })
	return NewRouter(NewAPIHandler(svc, logger, 10), logger)
}

func defaultRepo() *stubRepo {
	delinquent := true
	return &stubRepo{
		customers: map[string]models.Customer{
			"c1": {ID: "c1", Name: "Acme", CreatedAt: now.AddDate(-1, 0, 0), CompanySize: "Enterprise", FeatureUsageRate: usage(0.9)},
			"c2": {ID: "c2", Name: "Globex", CreatedAt: now.AddDate(-1, 0, 0), PaymentDelinquent: &delinquent},
		},
		interactions: map[string][]models.Interaction{
			"c1": {{CustomerID: "c1", CreatedAt: now.Add(-24 * time.Hour)}},
		},
	}
}

func do(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", rr.Body.String(), err)
	}
	return m
}

func TestGetLeadScore(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodGet, "/api/customers/c1/lead-score", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	m := decode(t, rr)
	lead := m["lead_score"].(map[string]any)
	// 50 + 3 engagement + 9 recency + 10 enterprise
	if lead["score"] != float64(72) || lead["grade"] != "B" || lead["label"] != "Warm Lead" || lead["color"] != "blue" {
		t.Errorf("unexpected lead score %v", lead)
	}
}

func TestGetChurnRisk(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodGet, "/api/customers/c2/churn-risk", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	churn := decode(t, rr)["churn"].(map[string]any)
	// 40 no history + 20 delinquent + 15 absent usage
	if churn["riskScore"] != float64(75) || churn["riskLevel"] != "high" {
		t.Errorf("unexpected churn %v", churn)
	}
	if factors, ok := churn["factors"].([]any); !ok || len(factors) != 3 {
		t.Errorf("expected 3 factors, got %v", churn["factors"])
	}
}

func TestGetRecommendations(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodGet, "/api/customers/c2/recommendations", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	recs := decode(t, rr)["recommendations"].([]any)
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	first := recs[0].(map[string]any)
	if first["type"] != "urgent" || first["priority"] != float64(1) {
		t.Errorf("expected urgent first, got %v", first)
	}
}

func TestGetCustomerInsights(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodGet, "/api/customers/c1/insights", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	m := decode(t, rr)
	if m["customer_id"] != "c1" || m["days_since_last_interaction"] != float64(1) {
		t.Errorf("unexpected insights %v", m)
	}
	// enterprise customer contacted yesterday
	recs := m["recommendations"].([]any)
	if len(recs) != 1 || recs[0].(map[string]any)["type"] != "upsell" {
		t.Errorf("expected a single upsell recommendation, got %v", recs)
	}
}

func TestUnknownCustomerReturns404(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	for _, path := range []string{
		"/api/customers/nope/lead-score",
		"/api/customers/nope/churn-risk",
		"/api/customers/nope/recommendations",
		"/api/customers/nope/insights",
	} {
		if rr := do(router, http.MethodGet, path, nil); rr.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rr.Code)
		}
	}
}

func TestStoreFailureReturns500(t *testing.T) {
	router := setupRouter(t, &stubRepo{err: errors.New("connection reset")})

	rr := do(router, http.MethodGet, "/api/customers/c1/lead-score", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if decode(t, rr)["error"] != "Failed to calculate lead score" {
		t.Errorf("internal error details should not leak: %s", rr.Body.String())
	}

	if rr := do(router, http.MethodGet, "/api/health", nil); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 health, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	router := setupRouter(t, defaultRepo())
	if rr := do(router, http.MethodGet, "/api/health", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestGetLeadRanking(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodGet, "/api/insights/leads?limit=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	leads := decode(t, rr)["leads"].([]any)
	if len(leads) != 1 || leads[0].(map[string]any)["customer_id"] != "c1" {
		t.Errorf("expected c1 as top lead, got %v", leads)
	}

	if rr := do(router, http.MethodGet, "/api/insights/leads?limit=abc", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestGetAtRiskCustomers(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodGet, "/api/insights/at-risk", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	m := decode(t, rr)
	customers := m["customers"].([]any)
	if m["level"] != "high" || len(customers) != 1 {
		t.Fatalf("expected one high-risk customer, got %v", m)
	}

	if rr := do(router, http.MethodGet, "/api/insights/at-risk?level=extreme", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown level, got %d", rr.Code)
	}
}

func TestEvaluate(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	body := []byte(`{
		"customer": {
			"id": "prospect",
			"created_at": "2026-03-10T12:00:00Z",
			"payment_delinquent": true,
			"subscription_ending_soon": true,
			"feature_usage_rate": 0.1
		},
		"interactions": []
	}`)
	rr := do(router, http.MethodPost, "/api/insights/evaluate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	m := decode(t, rr)
	churn := m["churn"].(map[string]any)
	if churn["riskScore"] != float64(85) || churn["recommendation"] != "Immediate personal outreach required - high churn risk" {
		t.Errorf("unexpected churn %v", churn)
	}
	var types []string
	for _, r := range m["recommendations"].([]any) {
		types = append(types, r.(map[string]any)["type"].(string))
	}
	want := []string{"urgent", "engagement", "onboarding"}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, types)
		}
	}
}

func TestEvaluateRejectsBadTimestamp(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	body := []byte(`{"customer": {"id": "x"}, "interactions": [{"created_at": "last tuesday"}]}`)
	if rr := do(router, http.MethodPost, "/api/insights/evaluate", body); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodGet, "/api/unknown", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if decode(t, rr)["error"] != "API endpoint not found" {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t, defaultRepo())

	rr := do(router, http.MethodOptions, "/api/health", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
