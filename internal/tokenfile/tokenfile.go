// Package tokenfile reads and writes the access-token cache file: a single
// TOML record holding the current token and its expiry.
package tokenfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tonimelisma/netdisk-go/internal/netdisk"
)

// FileName is the cache file name inside the config directory.
const FileName = "config.toml"

// FilePerms restricts cache files to owner-only read/write.
const FilePerms = 0o600

// Read failure kinds. Use errors.Is to distinguish them.
var (
	ErrCacheMiss    = errors.New("tokenfile: cache file not found")
	ErrCacheIO      = errors.New("tokenfile: cache file i/o error")
	ErrCacheCorrupt = errors.New("tokenfile: cache file corrupt")
)

// Path returns the cache file location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, FileName)
}

// Read loads the cached token at path. It fails with ErrCacheMiss when the
// file does not exist, ErrCacheIO on any other filesystem error, and
// ErrCacheCorrupt when the content is not a complete token record.
// Expiry is not checked here.
func Read(path string) (netdisk.AccessToken, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return netdisk.AccessToken{}, fmt.Errorf("%w: %s", ErrCacheMiss, path)
		}

		return netdisk.AccessToken{}, fmt.Errorf("%w: checking %s: %w", ErrCacheIO, path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return netdisk.AccessToken{}, fmt.Errorf("%w: reading %s: %w", ErrCacheIO, path, err)
	}

	var tok netdisk.AccessToken
	if _, err := toml.Decode(string(data), &tok); err != nil {
		return netdisk.AccessToken{}, fmt.Errorf("%w: decoding %s: %w", ErrCacheCorrupt, path, err)
	}

	if tok.Token == "" || tok.ExpiresAt.IsZero() {
		return netdisk.AccessToken{}, fmt.Errorf("%w: %s has no token or expiry", ErrCacheCorrupt, path)
	}

	return tok, nil
}

// Write replaces the cache file at path with tok, atomically
// (write-to-temp + rename) and with 0600 permissions. The parent directory
// must already exist. Every failure wraps ErrCacheIO. Never logs token values.
func Write(path string, tok netdisk.AccessToken) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tok); err != nil {
		return fmt.Errorf("%w: encoding: %w", ErrCacheIO, err)
	}

	// Same directory guarantees same filesystem for rename(2).
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".token-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %w", ErrCacheIO, dir, err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: setting permissions: %w", ErrCacheIO, err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing: %w", ErrCacheIO, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing: %w", ErrCacheIO, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing: %w", ErrCacheIO, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: renaming into %s: %w", ErrCacheIO, path, err)
	}

	success = true

	return nil
}
