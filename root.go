package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/netdisk-go/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// State loaded by PersistentPreRunE and shared by every subcommand.
var (
	resolver  *config.Resolver
	cfgHolder *config.Holder
	logLevel  = new(slog.LevelVar)
	logger    = slog.Default()
)

// newHTTPClient returns the outbound client. A zero timeout means none.
func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.RequestTimeoutDuration()}
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "netdisk-go",
		Short:   "Gateway for the 123pan open platform",
		Long:    "A local HTTP gateway that caches open platform access tokens and forwards file and share requests.",
		Version: version,
		// Errors are printed by exitOnError.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "gateway settings file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// loadConfig resolves the config directory and the effective settings,
// then builds the process logger from them.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{ConfigPath: flagConfigPath}

	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		listen := f.Value.String()
		cli.ListenAddr = &listen
	}

	// Directory resolution logs before the configured logger exists.
	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: flagLevel(slog.LevelWarn)}))

	r, err := config.NewResolver(config.ReadEnvOverrides(), cli, bootstrap)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := r.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolver = r
	cfgHolder = config.NewHolder(cfg)
	logger = buildLogger(cfg, os.Stderr, isTerminal(os.Stderr))

	// Reloads may change log_level; flags still win.
	cfgHolder.OnUpdate(func(c *config.Config) {
		logLevel.Set(flagLevel(parseLevel(c.LogLevel)))
	})

	return nil
}

// parseLevel maps a validated log_level value to a slog level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// flagLevel applies --verbose and --quiet on top of base.
func flagLevel(base slog.Level) slog.Level {
	if flagVerbose {
		return slog.LevelDebug
	}

	if flagQuiet {
		return slog.LevelError
	}

	return base
}

// buildLogger creates the process logger. The level lives in logLevel so a
// config reload can change it. log_format "auto" picks text for terminals
// and JSON otherwise.
func buildLogger(cfg *config.Config, w io.Writer, tty bool) *slog.Logger {
	logLevel.Set(flagLevel(parseLevel(cfg.LogLevel)))

	opts := &slog.HandlerOptions{Level: logLevel}

	useJSON := cfg.LogFormat == "json" || (cfg.LogFormat == "auto" && !tty)
	if useJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
