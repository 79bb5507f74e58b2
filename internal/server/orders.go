package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
)

// maxProcessBatch bounds the synchronous order batch. Larger loads go
// through /batch/upload.
const maxProcessBatch = 50

func (s *Server) ProcessOrder(c *gin.Context) {
	var raw orderdomain.RawOrder
	if err := c.ShouldBindJSON(&raw); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result := s.orders.Process(c.Request.Context(), raw)
	c.JSON(resultStatus(result), result)
}

func (s *Server) ProcessOrderBatch(c *gin.Context) {
	var req batchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.Orders) == 0 {
		AbortWithError(c, orderdomain.ErrEmptyBatch)
		return
	}
	if len(req.Orders) > maxProcessBatch {
		AbortWithError(c, fmt.Errorf("%w: batch size %d exceeds limit %d",
			ErrInvalidRequest, len(req.Orders), maxProcessBatch))
		return
	}

	c.JSON(http.StatusOK, s.orders.ProcessBatch(c.Request.Context(), req.Orders))
}

// ValidationRules publishes the order schema so integrators can validate
// client side before submitting.
func (s *Server) ValidationRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"required_fields": []string{"price", "quantity", "product_category", "gender", "payment_method", "age", "location"},
		"optional_fields": []string{"order_id", "discount_applied", "shipping_method", "order_date"},
		"constraints": gin.H{
			"price":            "greater than 0",
			"quantity":         "at least 1",
			"age":              "18 to 100 on /orders endpoints, 0 to 120 on /predict endpoints",
			"gender":           orderdomain.AllowedGenders,
			"discount_applied": "0 to 100 when present",
		},
		"known_values": gin.H{
			"product_category": orderdomain.KnownCategories,
			"payment_method":   orderdomain.KnownPaymentMethods,
			"shipping_method":  orderdomain.KnownShippingMethods,
		},
		"notes": []string{
			"unknown categories and payment methods are accepted with a warning",
			"unknown shipping methods fall back to Standard",
		},
	})
}

func (s *Server) OrderStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.orders.Stats())
}
