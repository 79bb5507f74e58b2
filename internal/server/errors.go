package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	batchdomain "github.com/smallbiznis/returnsight/internal/batch/domain"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
	predictiondomain "github.com/smallbiznis/returnsight/internal/prediction/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	var vErr *orderdomain.ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		fields := make([]ValidationError, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			fields = append(fields, ValidationError{Field: f.Field, Code: f.Code, Message: f.Message})
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  fields,
		}
	}

	switch {
	case isBadRequestError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, batchdomain.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge, errorPayload{
			Type:    "upload_too_large",
			Message: err.Error(),
		}
	case errors.Is(err, batchdomain.ErrJobNotFinished):
		return http.StatusConflict, errorPayload{
			Type:    "job_not_finished",
			Message: "job has not finished yet",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isBadRequestError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrEmptyBatch),
		errors.Is(err, batchdomain.ErrEmptyUpload),
		errors.Is(err, batchdomain.ErrMissingColumns),
		errors.Is(err, predictiondomain.ErrInvalidOrderID),
		errors.Is(err, predictiondomain.ErrInvalidWindow):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, batchdomain.ErrJobNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	var vErr *orderdomain.ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return "validation_error", "validation_error"
	}
	switch {
	case isBadRequestError(err):
		return "invalid_request", err.Error()
	case isNotFoundError(err):
		return "not_found", "not_found"
	case errors.Is(err, batchdomain.ErrJobNotFinished):
		return "conflict", "job_not_finished"
	default:
		return "internal_error", "internal_error"
	}
}
