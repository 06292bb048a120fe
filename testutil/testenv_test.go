package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
NETDISK_TESTUTIL_A = "quoted"
NETDISK_TESTUTIL_B=plain
not a pair
`), 0o600))

	t.Setenv("NETDISK_TESTUTIL_A", "")
	t.Setenv("NETDISK_TESTUTIL_B", "from-env")

	LoadDotEnv(path)

	assert.Equal(t, "quoted", os.Getenv("NETDISK_TESTUTIL_A"))
	assert.Equal(t, "from-env", os.Getenv("NETDISK_TESTUTIL_B"), "environment wins over .env")
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	LoadDotEnv(filepath.Join(t.TempDir(), "absent"))
}

func TestCredentials_NotConfigured(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	_, _, ok := Credentials()
	assert.False(t, ok)
}

func TestCredentials_Allowlisted(t *testing.T) {
	t.Setenv(EnvClientID, "test-client")
	t.Setenv(EnvClientSecret, "s")
	t.Setenv(EnvAllowedClient, "other, test-client")

	id, secret, ok := Credentials()
	require.True(t, ok)
	assert.Equal(t, "test-client", id)
	assert.Equal(t, "s", secret)
}

func TestFindModuleRoot(t *testing.T) {
	root := FindModuleRoot("fallback")

	_, err := os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, err)
}
