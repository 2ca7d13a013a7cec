package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/internal/shared/utils/response"
	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured record per request
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}

// Recovery turns panics into a 500 with the standard envelope
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.LogHTTPError(c, fmt.Errorf("panic: %v", r), http.StatusInternalServerError)
				response.RespondJSON(c, "error", http.StatusInternalServerError, "internal server error", nil, nil)
				c.Abort()
			}
		}()
		c.Next()
	}
}
