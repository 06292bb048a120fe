package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/netdisk-go/internal/config"
	"github.com/tonimelisma/netdisk-go/internal/server"
)

const readHeaderTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Long: `Run the HTTP gateway in the foreground.

Settings are read from gateway.toml in the config directory. Edits to the
file, or a SIGHUP, reload the default credentials and log_level without a
restart. SIGINT or SIGTERM shut down gracefully; a second signal forces
exit.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "listen address (host:port), overrides listen_addr")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := shutdownContext(cmd.Context(), logger)
	cfg := cfgHolder.Config()

	gin.SetMode(gin.ReleaseMode)

	deps, err := openGateway(ctx, cfg, resolver.Dir, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	srv := server.New(server.Deps{
		Client:    deps.client,
		Tokens:    deps.provider,
		Config:    cfgHolder,
		CachePath: deps.cachePath,
		Events:    eventSource(deps),
		Logger:    logger,
	})

	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.ListenAddr, err)
	}

	logger.Info("gateway listening",
		slog.String("addr", ln.Addr().String()),
		slog.String("platform_domain", cfg.PlatformDomain),
		slog.String("cache", deps.cachePath),
		slog.Bool("coalesce_refresh", cfg.CoalesceRefresh),
		slog.Int("events_retention_days", cfg.EventsRetentionDays),
	)

	reload := func() error { return cfgHolder.Reload(resolver, logger) }

	return serveGateway(ctx, ln, srv.Handler(), cfg.ShutdownTimeoutDuration(), func(ctx context.Context) error {
		return watchConfig(ctx, resolver.Path, reload)
	}, func(ctx context.Context) error {
		return reloadOnHangup(ctx, reload, logger)
	}, func(ctx context.Context) error {
		return deps.runEventPruner(ctx, eventsPruneInterval)
	})
}

// eventSource avoids handing the server a typed nil.
func eventSource(d *gatewayDeps) server.EventSource {
	if d.events == nil {
		return nil
	}

	return d.events
}

// watchConfig runs the settings watcher. A watcher that cannot start only
// disables live reload.
func watchConfig(ctx context.Context, path string, reload func() error) error {
	if err := config.Watch(ctx, path, reload, logger); err != nil {
		logger.Warn("config watcher stopped, live reload disabled",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// serveGateway serves handler on ln until ctx is cancelled or the server
// fails, running each background task alongside. In-flight requests get
// drain to finish.
func serveGateway(
	ctx context.Context, ln net.Listener, handler http.Handler, drain time.Duration,
	tasks ...func(context.Context) error,
) error {
	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		logger.Info("gateway stopped")

		return nil
	})

	for _, task := range tasks {
		task := task
		g.Go(func() error { return task(gctx) })
	}

	return g.Wait()
}
