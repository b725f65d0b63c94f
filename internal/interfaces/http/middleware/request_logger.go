package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/multidom/domainsync/pkg/logger"
)

// ContextKey is the type for gin context keys set by middleware.
type ContextKey string

// ContextKeyRequestID is the context key for request ID.
const ContextKeyRequestID ContextKey = "request_id"

// RequestLoggerMiddleware logs all HTTP requests with structured fields.
type RequestLoggerMiddleware struct {
	logger logger.Logger
}

// NewRequestLoggerMiddleware creates a new request logger middleware.
func NewRequestLoggerMiddleware(l logger.Logger) *RequestLoggerMiddleware {
	return &RequestLoggerMiddleware{
		logger: l,
	}
}

// Handler returns the Gin middleware handler.
func (m *RequestLoggerMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate or extract request ID
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(string(ContextKeyRequestID), requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		path := c.Request.URL.Path

		// Create request-scoped logger
		requestLogger := m.logger.With(
			logger.RequestID(requestID),
		)
		ctx := logger.WithContext(c.Request.Context(), requestLogger)
		c.Request = c.Request.WithContext(ctx)

		// Process request
		c.Next()

		// Log after request completes
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []logger.Field{
			logger.RequestID(requestID),
			logger.Method(c.Request.Method),
			logger.Path(path),
			logger.Host(c.Request.Host),
			logger.Status(status),
			logger.Latency(latency),
			logger.ClientIP(c.ClientIP()),
		}

		if len(c.Errors) > 0 {
			fields = append(fields, logger.String("errors", c.Errors.String()))
		}

		// Choose log level based on status
		msg := "HTTP request"
		switch {
		case status >= 500:
			m.logger.Error(msg, fields...)
		case status >= 400:
			m.logger.Warn(msg, fields...)
		default:
			m.logger.Info(msg, fields...)
		}
	}
}

// GetRequestID extracts request ID from context.
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(string(ContextKeyRequestID)); exists {
		if rid, ok := requestID.(string); ok {
			return rid
		}
	}
	return ""
}
