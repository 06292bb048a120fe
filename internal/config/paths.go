package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

const platformLinux = "linux"

// Application directory name used across all platforms.
const appName = "netdisk"

const (
	settingsFileName = "gateway.toml"
	eventsDBFileName = "events.db"
	eventsDBDefault  = "default"
)

// DirPerms is used when creating the config directory.
const DirPerms = 0o700

// DefaultConfigDir returns ~/.config/netdisk on every platform, macOS
// included, so existing token caches keep being found. On Linux a set
// XDG_CONFIG_HOME takes its place.
func DefaultConfigDir() string {
	if runtime.GOOS == platformLinux {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", appName)
}

// ResolveConfigDir picks the config directory: envDir when it is usable,
// otherwise DefaultConfigDir. An unusable envDir is logged and ignored.
func ResolveConfigDir(envDir string, logger *slog.Logger) string {
	if envDir == "" {
		return DefaultConfigDir()
	}

	if usableDir(envDir) {
		logger.Debug("using config directory from environment",
			slog.String("env", EnvConfigDir),
			slog.String("dir", envDir),
		)

		return envDir
	}

	fallback := DefaultConfigDir()
	logger.Warn("config directory from environment is not usable, using default",
		slog.String("env", EnvConfigDir),
		slog.String("dir", envDir),
		slog.String("default", fallback),
	)

	return fallback
}

// usableDir reports whether dir is a writable directory, or does not exist
// yet but can be created because its parent is a directory.
func usableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false
		}

		probe, err := os.CreateTemp(dir, ".probe-*")
		if err != nil {
			return false
		}

		probe.Close()
		_ = os.Remove(probe.Name())

		return true
	}

	if !os.IsNotExist(err) {
		return false
	}

	parent, err := os.Stat(filepath.Dir(filepath.Clean(dir)))

	return err == nil && parent.IsDir()
}

// EnsureDir creates dir with owner-only permissions if it does not exist.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("config: no config directory (home directory unknown)")
	}

	if err := os.MkdirAll(dir, DirPerms); err != nil {
		return fmt.Errorf("config: creating directory %s: %w", dir, err)
	}

	return nil
}

// SettingsPath returns the default settings file inside dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, settingsFileName)
}
