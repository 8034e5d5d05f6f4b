package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/corepm/internal/constants"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates the caller's X-Request-Id or generates a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequest, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Logger writes one structured line per request, plus any errors handlers recorded
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString(constants.ContextKeyRequest)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if userID, ok := GetUserID(c); ok {
			fields = append(fields, zap.Uint64("user_id", userID))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			log.Error("request failed", fields...)
			return
		}
		if c.Writer.Status() >= 500 {
			log.Error("request completed", fields...)
			return
		}
		log.Info("request completed", fields...)
	}
}

// Recovery turns panics into a logged 500 response
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.String("request_id", c.GetString(constants.ContextKeyRequest)),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatus(500)
	})
}
