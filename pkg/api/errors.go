// Package api exposes the catalog over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cosmetia/cosmetia/pkg/catalog"
	"github.com/cosmetia/cosmetia/pkg/observability/logger"
)

// ErrorResponse is the consistent error envelope for every failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse wraps successful payloads.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// MapError maps domain errors to an HTTP status and error envelope.
func MapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, catalog.ErrInvalidSortingOption),
		errors.Is(err, catalog.ErrInvalidRating):
		return http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrMissingReview):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()}
	case errors.Is(err, catalog.ErrDuplicateReview):
		return http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_server_error",
			Message: "an unexpected error occurred",
		}
	}
}

func respondError(c *gin.Context, err error) {
	status, response := MapError(err)
	response.RequestID = logger.RequestIDFromContext(c.Request.Context())
	c.AbortWithStatusJSON(status, response)
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:     "bad_request",
		Message:   message,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}
