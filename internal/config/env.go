package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfigDir     = "NETDISK_CONFIG"
	EnvGatewayConfig = "NETDISK_GATEWAY_CONFIG"
	EnvClientID      = "NETDISK_CLIENT_ID"
	EnvClientSecret  = "NETDISK_CLIENT_SECRET"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigDir    string // NETDISK_CONFIG: directory for the token cache and settings
	ConfigPath   string // NETDISK_GATEWAY_CONFIG: settings file path
	ClientID     string // NETDISK_CLIENT_ID
	ClientSecret string // NETDISK_CLIENT_SECRET
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigDir:    os.Getenv(EnvConfigDir),
		ConfigPath:   os.Getenv(EnvGatewayConfig),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
}

// apply overlays non-empty environment values on cfg. Credentials are only
// taken as a pair so a half-set environment never mixes with the file.
func (e EnvOverrides) apply(cfg *Config) {
	if e.ClientID != "" && e.ClientSecret != "" {
		cfg.ClientID = e.ClientID
		cfg.ClientSecret = e.ClientSecret
	}
}
