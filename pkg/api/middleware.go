package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cosmetia/cosmetia/pkg/auth"
	"github.com/cosmetia/cosmetia/pkg/observability/logger"
	"github.com/cosmetia/cosmetia/pkg/observability/metrics"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id or generates one, and
// stores it on the request context for logging and error envelopes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Logging logs one line per request and records HTTP metrics.
func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		metrics.RecordHTTPRequest(c.Request.Method, path, status, duration)
		log.WithContext(c.Request.Context()).Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// Recovery turns panics into 500 responses instead of dropped connections.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		log.WithContext(c.Request.Context()).Error("panic recovered",
			"panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "internal_server_error",
			Message:   "an unexpected error occurred",
			RequestID: logger.RequestIDFromContext(c.Request.Context()),
		})
	})
}

// RateLimit applies a process-wide token bucket to the public API.
func RateLimit(requestsPerSecond float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:     "rate_limited",
				Message:   "too many requests",
				RequestID: logger.RequestIDFromContext(c.Request.Context()),
			})
			return
		}
		c.Next()
	}
}

// Authenticate validates the bearer token when present and stores its
// claims on the request context. When required is true, requests without
// a valid token are rejected with 401.
func Authenticate(validator auth.Validator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if required {
				unauthorized(c, "missing bearer token")
				return
			}
			c.Next()
			return
		}

		claims, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			if required {
				unauthorized(c, "invalid bearer token")
				return
			}
			// An anonymous request with a bad token stays anonymous.
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:     "unauthorized",
		Message:   message,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}
