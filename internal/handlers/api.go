package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yishak-cs/crm-insights/internal/models"
	"github.com/yishak-cs/crm-insights/internal/services"
)

// APIHandler handles all API requests
type APIHandler struct {
	insightService *services.InsightService
	logger         *zap.Logger
	leadRankLimit  int
}

// NewAPIHandler creates a new API handler. leadRankLimit is the default size of the lead ranking.
func NewAPIHandler(insightService *services.InsightService, logger *zap.Logger, leadRankLimit int) *APIHandler {
	return &APIHandler{
		insightService: insightService,
		logger:         logger,
		leadRankLimit:  leadRankLimit,
	}
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", h.Health)

		api.GET("/customers/:customerId/lead-score", h.GetLeadScore)
		api.GET("/customers/:customerId/churn-risk", h.GetChurnRisk)
		api.GET("/customers/:customerId/recommendations", h.GetRecommendations)
		api.GET("/customers/:customerId/insights", h.GetCustomerInsights)

		api.GET("/insights/leads", h.GetLeadRanking)
		api.GET("/insights/at-risk", h.GetAtRiskCustomers)
		api.POST("/insights/evaluate", h.Evaluate)
	}
}

// Health reports whether the customer store is reachable
func (h *APIHandler) Health(c *gin.Context) {
	if err := h.insightService.Health(c.Request.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetLeadScore handles requests for a customer's lead score and grade
func (h *APIHandler) GetLeadScore(c *gin.Context) {
	customerID := c.Param("customerId")

	result, err := h.insightService.LeadScore(c.Request.Context(), customerID)
	if err != nil {
		h.writeError(c, err, "Failed to calculate lead score")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id": customerID,
		"lead_score":  result,
	})
}

// GetChurnRisk handles requests for a customer's churn prediction
func (h *APIHandler) GetChurnRisk(c *gin.Context) {
	customerID := c.Param("customerId")

	prediction, err := h.insightService.ChurnRisk(c.Request.Context(), customerID)
	if err != nil {
		h.writeError(c, err, "Failed to predict churn risk")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id": customerID,
		"churn":       prediction,
	})
}

// GetRecommendations handles requests for a customer's prioritized next actions
func (h *APIHandler) GetRecommendations(c *gin.Context) {
	customerID := c.Param("customerId")

	recommendations, err := h.insightService.Recommendations(c.Request.Context(), customerID)
	if err != nil {
		h.writeError(c, err, "Failed to get recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id":     customerID,
		"recommendations": recommendations,
	})
}

// GetCustomerInsights handles requests for every insight about a customer at once
func (h *APIHandler) GetCustomerInsights(c *gin.Context) {
	result, err := h.insightService.CustomerInsights(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		h.writeError(c, err, "Failed to compute insights")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLeadRanking handles requests for the best leads across all customers
func (h *APIHandler) GetLeadRanking(c *gin.Context) {
	limit := h.leadRankLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	leads, err := h.insightService.RankLeads(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err, "Failed to rank leads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit": limit,
		"leads": leads,
	})
}

// GetAtRiskCustomers handles requests for the churn watch list
func (h *APIHandler) GetAtRiskCustomers(c *gin.Context) {
	level := c.DefaultQuery("level", models.RiskHigh)

	customers, err := h.insightService.AtRiskCustomers(c.Request.Context(), level)
	if err != nil {
		h.writeError(c, err, "Failed to list at-risk customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"level":     level,
		"customers": customers,
	})
}

// Evaluate scores a customer and interactions supplied in the request body
func (h *APIHandler) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.insightService.Evaluate(req.Customer, req.Interactions))
}

func (h *APIHandler) writeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
	case errors.Is(err, services.ErrInvalidRiskLevel):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid risk level"})
	default:
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
