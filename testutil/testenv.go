// Package testutil provides shared environment helpers for E2E tests. It
// depends only on stdlib so that E2E tests (which cannot import internal/)
// can use it.
package testutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by the E2E suite.
const (
	EnvClientID      = "NETDISK_CLIENT_ID"
	EnvClientSecret  = "NETDISK_CLIENT_SECRET"
	EnvAllowedClient = "NETDISK_ALLOWED_TEST_CLIENTS"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// Missing file is not an error (CI sets env vars directly).
// Existing env vars take precedence over .env values.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// Credentials returns the test client credentials, or ok=false when they
// are not configured. A configured client that is missing from the
// allowlist crashes the process so a production account is never used by
// accident.
func Credentials() (id, secret string, ok bool) {
	id = os.Getenv(EnvClientID)
	secret = os.Getenv(EnvClientSecret)

	if id == "" || secret == "" {
		return "", "", false
	}

	allowlist := os.Getenv(EnvAllowedClient)
	for _, a := range strings.Split(allowlist, ",") {
		if strings.TrimSpace(a) == id {
			return id, secret, true
		}
	}

	fmt.Fprintf(os.Stderr, "FATAL: %s=%q is not in %s=%q\n", EnvClientID, id, EnvAllowedClient, allowlist)
	os.Exit(1)

	return "", "", false
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}
