package config

import "github.com/tonimelisma/netdisk-go/internal/netdisk"

// Default values: layer 0 of the override chain.
const (
	defaultListenAddr      = "127.0.0.1:8080"
	defaultRequestTimeout  = "0s"
	defaultShutdownTimeout = "10s"
	defaultLogLevel        = "info"
	defaultLogFormat       = "auto"
	defaultEventsRetention = 7
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset keys keep their defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerConfig: ServerConfig{
			ListenAddr:      defaultListenAddr,
			RequestTimeout:  defaultRequestTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		PlatformSettings: PlatformSettings{
			PlatformDomain: netdisk.DefaultDomain,
			PlatformHeader: netdisk.DefaultPlatform,
		},
		LoggingConfig: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
		DiagnosticsConfig: DiagnosticsConfig{
			EventsRetentionDays: defaultEventsRetention,
		},
	}
}
