package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonimelisma/netdisk-go/internal/eventlog"
	"github.com/tonimelisma/netdisk-go/internal/netdisk"
)

const (
	defaultStatusLimit = 20
	maxStatusLimit     = 500
)

// StatusReport is the data of a /status envelope.
type StatusReport struct {
	EventsEnabled bool                  `json:"eventsEnabled"`
	Counts        map[eventlog.Kind]int `json:"counts"`
	Recent        []StatusEvent         `json:"recent"`
}

// StatusEvent is the wire form of an eventlog.Event.
type StatusEvent struct {
	OccurredAt time.Time     `json:"occurredAt"`
	Kind       eventlog.Kind `json:"kind"`
	CachePath  string        `json:"cachePath"`
	Detail     string        `json:"detail,omitempty"`
}

func (s *Server) handleStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := StatusReport{Counts: map[eventlog.Kind]int{}, Recent: []StatusEvent{}}

		if s.events != nil {
			limit, err := parseLimit(c.Query("limit"))
			if err != nil {
				s.fail(c, err)
				return
			}

			ctx := c.Request.Context()

			counts, err := s.events.Counts(ctx)
			if err != nil {
				s.fail(c, err)
				return
			}

			recent, err := s.events.Recent(ctx, limit)
			if err != nil {
				s.fail(c, err)
				return
			}

			report.EventsEnabled = true
			report.Counts = counts

			for _, ev := range recent {
				report.Recent = append(report.Recent, StatusEvent{
					OccurredAt: ev.OccurredAt,
					Kind:       ev.Kind,
					CachePath:  ev.CachePath,
					Detail:     ev.Detail,
				})
			}
		}

		c.JSON(http.StatusOK, netdisk.Envelope[StatusReport]{
			Code:    0,
			Message: "ok",
			Data:    &report,
			TraceID: traceID(c),
		})
	}
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultStatusLimit, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxStatusLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d, got %q",
			netdisk.ErrInvalidRequest, maxStatusLimit, raw)
	}

	return n, nil
}
