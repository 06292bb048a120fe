package config

import (
	"fmt"
	"io"
)

const redacted = "(redacted)"

// RenderEffective writes the resolved settings as an annotated TOML-like
// summary to w. This powers "config show". The client secret is never
// printed.
func RenderEffective(cfg *Config, r *Resolver, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective gateway configuration\n")
	ew.printf("# config dir:    %s\n", r.Dir)
	ew.printf("# settings file: %s\n\n", r.Path)

	ew.printf("listen_addr      = %q\n", cfg.ListenAddr)
	ew.printf("request_timeout  = %q\n", cfg.RequestTimeout)
	ew.printf("shutdown_timeout = %q\n\n", cfg.ShutdownTimeout)

	ew.printf("platform_domain  = %q\n", cfg.PlatformDomain)
	ew.printf("platform         = %q\n", cfg.PlatformHeader)
	ew.printf("coalesce_refresh = %t\n\n", cfg.CoalesceRefresh)

	ew.printf("client_id        = %q\n", cfg.ClientID)

	secret := ""
	if cfg.ClientSecret != "" {
		secret = redacted
	}

	ew.printf("client_secret    = %q\n\n", secret)

	ew.printf("log_level        = %q\n", cfg.LogLevel)
	ew.printf("log_format       = %q\n\n", cfg.LogFormat)

	ew.printf("events_db        = %q", cfg.EventsDB)

	if p := cfg.EventsDBPath(r.Dir); p != "" && p != cfg.EventsDB {
		ew.printf("  # %s", p)
	}

	ew.printf("\n")
	ew.printf("events_retention_days = %d\n", cfg.EventsRetentionDays)

	return ew.err
}

// errWriter wraps an io.Writer and keeps the first write error; later
// writes become no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
