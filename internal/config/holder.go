package config

import (
	"log/slog"
	"sync"
)

// Holder provides thread-safe access to the current *Config. The HTTP
// handlers and the reload loop share one Holder, so a reload updates the
// settings in exactly one place.
type Holder struct {
	mu        sync.RWMutex
	cfg       *Config
	listeners []func(*Config)
}

// NewHolder creates a Holder with the initial config.
func NewHolder(cfg *Config) *Holder {
	return &Holder{cfg: cfg}
}

// Config returns the current config snapshot. Callers must not mutate it.
func (h *Holder) Config() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.cfg
}

// OnUpdate registers fn to run after every Update, outside the lock.
func (h *Holder) OnUpdate(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.listeners = append(h.listeners, fn)
}

// Update replaces the config and notifies listeners.
func (h *Holder) Update(cfg *Config) {
	h.mu.Lock()
	h.cfg = cfg
	listeners := append([]func(*Config){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// Reload loads a fresh config through r and swaps it in. Only credentials
// and log_level take effect at runtime; changes to other keys are logged
// and ignored until restart. On error the current config stays in place.
func (h *Holder) Reload(r *Resolver, logger *slog.Logger) error {
	next, err := r.Load()
	if err != nil {
		logger.Warn("config reload failed, keeping current settings",
			slog.String("path", r.Path),
			slog.String("error", err.Error()),
		)

		return err
	}

	cur := h.Config()
	merged := *cur
	merged.CredentialsConfig = next.CredentialsConfig
	merged.LogLevel = next.LogLevel

	if restartRequired(cur, next) {
		logger.Warn("config changes outside credentials and log_level need a restart",
			slog.String("path", r.Path),
		)
	}

	h.Update(&merged)
	logger.Info("config reloaded",
		slog.String("path", r.Path),
		slog.String("log_level", merged.LogLevel),
		slog.Bool("default_credentials", merged.Credentials().Complete()),
	)

	return nil
}

func restartRequired(cur, next *Config) bool {
	return cur.ServerConfig != next.ServerConfig ||
		cur.PlatformSettings != next.PlatformSettings ||
		cur.LogFormat != next.LogFormat ||
		cur.DiagnosticsConfig != next.DiagnosticsConfig
}
