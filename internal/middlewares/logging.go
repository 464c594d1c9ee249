package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/Gopher0727/GroupChat/middleware/log"
)

// TraceHeader 请求与响应中携带 trace id 的头
const TraceHeader = "X-Trace-ID"

// RequestLogger 为每个请求分配 trace id（沿用客户端传入的值），并在结束时记录访问日志
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := logger.WithTraceID(c.Request.Context(), c.GetHeader(TraceHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, logger.GetTraceID(ctx))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if username, ok := CurrentUser(c); ok {
			fields = append(fields, logger.Username(username))
		}
		if c.Writer.Status() >= 500 {
			log.ErrorContext(ctx, "request failed", fields...)
			return
		}
		log.InfoContext(ctx, "request", fields...)
	}
}

// Recovery 记录 panic 并返回 500
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
