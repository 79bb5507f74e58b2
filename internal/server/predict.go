package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
)

type batchPredictRequest struct {
	Orders []orderdomain.RawOrder `json:"orders"`
}

// PredictSingle scores one order with the wide historical age policy.
// Validation failures come back in the result envelope with a 400.
func (s *Server) PredictSingle(c *gin.Context) {
	var raw orderdomain.RawOrder
	if err := c.ShouldBindJSON(&raw); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result := s.orders.Predict(c.Request.Context(), raw)
	c.JSON(resultStatus(result), result)
}

func (s *Server) PredictInlineBatch(c *gin.Context) {
	var req batchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Orders) == 0 {
		AbortWithError(c, orderdomain.ErrEmptyBatch)
		return
	}
	if s.cfg.BatchMaxInline > 0 && len(req.Orders) > s.cfg.BatchMaxInline {
		AbortWithError(c, fmt.Errorf("%w: batch size %d exceeds limit %d",
			ErrInvalidRequest, len(req.Orders), s.cfg.BatchMaxInline))
		return
	}

	c.JSON(http.StatusOK, s.orders.PredictBatch(c.Request.Context(), req.Orders))
}

func (s *Server) PredictHealth(c *gin.Context) {
	health := s.model.HealthCheck()
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

func (s *Server) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.model.Info())
}

// PredictExample documents the request shape with a ready-to-send body.
func (s *Server) PredictExample(c *gin.Context) {
	discount := 10.0
	c.JSON(http.StatusOK, gin.H{
		"example_request": orderdomain.RawOrder{
			Price:           129.99,
			Quantity:        2,
			ProductCategory: "Electronics",
			Gender:          "Female",
			PaymentMethod:   "Credit Card",
			Age:             31,
			Location:        "California",
			DiscountApplied: &discount,
			ShippingMethod:  "Express",
			OrderDate:       "2024-06-15",
		},
		"notes": []string{
			"order_id is optional; one is generated when absent",
			"discount_applied, shipping_method and order_date are optional",
			"POST the body to /predict/single, or wrap a list as {\"orders\": [...]} for /predict/batch",
		},
	})
}

func resultStatus(result orderdomain.OrderResult) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}
