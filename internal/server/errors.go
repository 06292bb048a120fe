package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonimelisma/netdisk-go/internal/netdisk"
)

// errNoCredentials means neither the request nor the settings carry
// client credentials.
var errNoCredentials = errors.New("server: no client credentials (send X-Client-Id and X-Client-Secret or configure client_id and client_secret)")

// statusFor maps an error to the gateway's HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNoCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, netdisk.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, netdisk.ErrTransport),
		errors.Is(err, netdisk.ErrAuthRequestFailed),
		errors.Is(err, netdisk.ErrAPIRequestFailed),
		errors.Is(err, netdisk.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorEnvelope(c *gin.Context, status int, message string) netdisk.Envelope[netdisk.Empty] {
	return netdisk.Envelope[netdisk.Empty]{
		Code:    status,
		Message: message,
		TraceID: traceID(c),
	}
}

// fail aborts the request with an error envelope whose code is the HTTP
// status. Upstream bodies and raw payloads reach the client through the
// error message.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	s.logger.LogAttrs(c.Request.Context(), level, "request failed",
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
		slog.String("trace_id", traceID(c)),
	)

	c.AbortWithStatusJSON(status, errorEnvelope(c, status, err.Error()))
}
