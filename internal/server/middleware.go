package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceKey    = "trace_id"
	traceHeader = "X-Trace-Id"
)

// requestLog assigns each request a trace id and logs it once the handler
// has finished.
func requestLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := uuid.NewString()

		c.Set(traceKey, id)
		c.Header(traceHeader, id)

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo

		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("trace_id", id),
		)
	}
}

// recovery turns a handler panic into a 500 envelope.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic",
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.Any("panic", r),
				)

				status := http.StatusInternalServerError
				c.AbortWithStatusJSON(status, errorEnvelope(c, status, "internal server error"))
			}
		}()

		c.Next()
	}
}

// traceID returns the id assigned by requestLog, or a fresh one.
func traceID(c *gin.Context) string {
	if id := c.GetString(traceKey); id != "" {
		return id
	}

	return uuid.NewString()
}
