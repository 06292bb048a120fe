// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for netdisk-go. Settings follow a
// four-layer override chain (defaults -> config file -> environment -> CLI
// flags). The gateway settings file lives next to the token cache in the
// config directory.
package config

import (
	"path/filepath"
	"time"

	"github.com/tonimelisma/netdisk-go/internal/netdisk"
)

// Config is the gateway settings file. All keys are flat and top-level;
// the embedded structs only group them.
type Config struct {
	ServerConfig
	PlatformSettings
	CredentialsConfig
	LoggingConfig
	DiagnosticsConfig
}

// ServerConfig controls the inbound HTTP listener and the outbound client.
type ServerConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	RequestTimeout  string `toml:"request_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// PlatformSettings names the remote open platform. These are read once at
// startup; changing them requires a restart.
type PlatformSettings struct {
	PlatformDomain  string `toml:"platform_domain"`
	PlatformHeader  string `toml:"platform"`
	CoalesceRefresh bool   `toml:"coalesce_refresh"`
}

// CredentialsConfig holds the default client credentials, used when an
// inbound request does not carry its own.
type CredentialsConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// DiagnosticsConfig controls the token event database. Empty disables it;
// "default" places events.db in the config directory. Events older than
// EventsRetentionDays are pruned; 0 keeps them forever.
type DiagnosticsConfig struct {
	EventsDB            string `toml:"events_db"`
	EventsRetentionDays int    `toml:"events_retention_days"`
}

// Platform returns the remote endpoint description.
func (c *Config) Platform() netdisk.PlatformConfig {
	return netdisk.PlatformConfig{Domain: c.PlatformDomain, Header: c.PlatformHeader}
}

// Credentials returns the default credentials (possibly incomplete).
func (c *Config) Credentials() netdisk.Credentials {
	return netdisk.Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

// RequestTimeoutDuration returns the outbound HTTP timeout; 0 means none.
// The value is validated at load time.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// ShutdownTimeoutDuration returns how long in-flight requests may drain.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// EventsDBPath resolves events_db against configDir. Empty means disabled.
func (c *Config) EventsDBPath(configDir string) string {
	switch c.EventsDB {
	case "":
		return ""
	case eventsDBDefault:
		return filepath.Join(configDir, eventsDBFileName)
	default:
		return c.EventsDB
	}
}

// CLIOverrides holds values from CLI flags. Pointer fields distinguish
// "not specified" (nil) from an explicit value.
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	ListenAddr *string // --listen flag
}
