package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tonimelisma/netdisk-go/internal/config"
	"github.com/tonimelisma/netdisk-go/internal/eventlog"
	"github.com/tonimelisma/netdisk-go/internal/netdisk"
	"github.com/tonimelisma/netdisk-go/internal/tokenfile"
	"github.com/tonimelisma/netdisk-go/internal/tokens"
)

// eventsPruneInterval is how often serve drops expired diagnostics events.
const eventsPruneInterval = time.Hour

// gatewayDeps are the long-lived pieces shared by serve and token.
type gatewayDeps struct {
	client        *netdisk.Client
	provider      *tokens.Provider
	events        *eventlog.Log // nil when events_db is empty
	retentionDays int
	cachePath     string
	logger        *slog.Logger
}

// openGateway builds the client, the token provider and, if configured,
// the diagnostics database. Callers must Close the result.
func openGateway(ctx context.Context, cfg *config.Config, configDir string, logger *slog.Logger) (*gatewayDeps, error) {
	d := &gatewayDeps{
		client:        netdisk.NewClient(cfg.Platform(), newHTTPClient(cfg), logger),
		cachePath:     tokenfile.Path(configDir),
		retentionDays: cfg.EventsRetentionDays,
		logger:        logger,
	}

	opts := tokens.Options{Coalesce: cfg.CoalesceRefresh}

	if path := cfg.EventsDBPath(configDir); path != "" {
		events, err := eventlog.Open(ctx, path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening events database: %w", err)
		}

		d.events = events
		opts.Recorder = events

		d.pruneEvents(ctx)
	}

	d.provider = tokens.NewProvider(d.client, logger, opts)

	return d, nil
}

// Close releases the events database, if any.
func (d *gatewayDeps) Close() error {
	if d.events == nil {
		return nil
	}

	return d.events.Close()
}

// pruneEvents drops events past the retention window. Failures are logged;
// diagnostics never block the gateway.
func (d *gatewayDeps) pruneEvents(ctx context.Context) {
	if d.events == nil || d.retentionDays <= 0 {
		return
	}

	deleted, err := d.events.Prune(ctx, d.retentionDays)
	if err != nil {
		d.logger.Warn("pruning token events failed", slog.String("error", err.Error()))
		return
	}

	if deleted > 0 {
		d.logger.Info("pruned token events",
			slog.Int64("deleted", deleted),
			slog.Int("retention_days", d.retentionDays),
		)
	}
}

// runEventPruner prunes every interval until ctx is done.
func (d *gatewayDeps) runEventPruner(ctx context.Context, interval time.Duration) error {
	if d.events == nil || d.retentionDays <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.pruneEvents(ctx)
		}
	}
}
