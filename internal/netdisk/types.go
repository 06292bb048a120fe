package netdisk

import (
	"log/slog"
	"strings"
	"time"
)

// Platform defaults.
const (
	DefaultDomain   = "open-api.123pan.com"
	DefaultPlatform = "open_platform"
)

// AccessToken is a bearer token issued by the token endpoint. The same
// field names are used on the wire (JSON) and in the cache file (TOML).
type AccessToken struct {
	Token     string    `json:"accessToken" toml:"accessToken"`
	ExpiresAt time.Time `json:"expiredAt"   toml:"expiredAt"`
}

// ValidAt reports whether the token is still usable at now.
// A token whose expiry equals now is expired.
func (t AccessToken) ValidAt(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// LogValue keeps token values out of logs.
func (t AccessToken) LogValue() slog.Value {
	return slog.GroupValue(slog.Time("expired_at", t.ExpiresAt))
}

// Credentials identify the client application to the token endpoint.
// They are never persisted.
type Credentials struct {
	ClientID     string `json:"clientId"     binding:"required"`
	ClientSecret string `json:"clientSecret" binding:"required"`
}

// Complete reports whether both fields carry a non-blank value.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// LogValue redacts the secret.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("client_id", c.ClientID))
}

// PlatformConfig names the remote API host and the value of the Platform
// header required on every call. Immutable after startup.
type PlatformConfig struct {
	Domain string
	Header string
}

// DefaultPlatformConfig returns the public open platform endpoint.
func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{Domain: DefaultDomain, Header: DefaultPlatform}
}
