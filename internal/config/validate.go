package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

const minShutdownTimeout = time.Second

// Validate checks all configuration values and returns all errors found,
// joined, so a broken file can be fixed in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateServer(&cfg.ServerConfig)...)
	errs = append(errs, validatePlatform(&cfg.PlatformSettings)...)
	errs = append(errs, validateCredentials(&cfg.CredentialsConfig)...)
	errs = append(errs, validateLogLevel(cfg.LogLevel)...)
	errs = append(errs, validateLogFormat(cfg.LogFormat)...)

	if cfg.EventsRetentionDays < 0 {
		errs = append(errs, fmt.Errorf("events_retention_days: must be >= 0, got %d", cfg.EventsRetentionDays))
	}

	return errors.Join(errs...)
}

func validateServer(s *ServerConfig) []error {
	var errs []error

	if _, _, err := net.SplitHostPort(s.ListenAddr); err != nil {
		errs = append(errs, fmt.Errorf("listen_addr: must be host:port, got %q", s.ListenAddr))
	}

	errs = append(errs, validateDurationMin("request_timeout", s.RequestTimeout, 0)...)
	errs = append(errs, validateDurationMin("shutdown_timeout", s.ShutdownTimeout, minShutdownTimeout)...)

	return errs
}

func validatePlatform(p *PlatformSettings) []error {
	var errs []error

	switch {
	case p.PlatformDomain == "":
		errs = append(errs, errors.New("platform_domain: must not be empty"))
	case strings.Contains(p.PlatformDomain, "://"), strings.Contains(p.PlatformDomain, "/"):
		errs = append(errs, fmt.Errorf("platform_domain: must be a host name without scheme or path, got %q",
			p.PlatformDomain))
	}

	if strings.TrimSpace(p.PlatformHeader) == "" {
		errs = append(errs, errors.New("platform: must not be empty"))
	}

	return errs
}

func validateCredentials(c *CredentialsConfig) []error {
	if (c.ClientID == "") != (c.ClientSecret == "") {
		return []error{errors.New("client_id and client_secret: must be set together")}
	}

	return nil
}

func validateDurationMin(field, value string, minimum time.Duration) []error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return []error{fmt.Errorf("%s: invalid duration %q: %w", field, value, err)}
	}

	if d < minimum {
		return []error{fmt.Errorf("%s: must be >= %s, got %s", field, minimum, d)}
	}

	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogLevel(level string) []error {
	if !validLogLevels[level] {
		return []error{fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", level)}
	}

	return nil
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogFormat(format string) []error {
	if !validLogFormats[format] {
		return []error{fmt.Errorf("log_format: must be one of auto, text, json; got %q", format)}
	}

	return nil
}
