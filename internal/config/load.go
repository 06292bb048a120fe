package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML settings file on top of the defaults and
// validates the result. Unknown keys are fatal, with "did you mean?"
// suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads the settings file if it exists, otherwise returns the
// defaults. The gateway runs without a settings file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolver carries the outcome of directory and path resolution so the
// settings can be loaded again on reload with the same override layers.
type Resolver struct {
	env EnvOverrides
	cli CLIOverrides

	// Dir holds the token cache, the settings file (by default) and the
	// event database.
	Dir string
	// Path is the settings file: CLI > env > <Dir>/gateway.toml.
	Path string
}

// NewResolver resolves the config directory, creates it if needed, and
// picks the settings file path.
func NewResolver(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) (*Resolver, error) {
	dir := ResolveConfigDir(env.ConfigDir, logger)
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}

	path := SettingsPath(dir)
	if env.ConfigPath != "" {
		path = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		path = cli.ConfigPath
	}

	return &Resolver{env: env, cli: cli, Dir: dir, Path: path}, nil
}

// Load applies the four-layer override chain:
// defaults -> settings file -> environment -> CLI flags.
func (r *Resolver) Load() (*Config, error) {
	cfg, err := LoadOrDefault(r.Path)
	if err != nil {
		return nil, err
	}

	r.env.apply(cfg)

	if r.cli.ListenAddr != nil {
		cfg.ListenAddr = *r.cli.ListenAddr
	}

	// Overrides may have introduced invalid values.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
