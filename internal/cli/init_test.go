package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerToLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLoggerTo(&buf, "worker", "warn")

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "component=worker")
}

func TestSetupLoggerToUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerTo(&buf, "app", "verbose")
	assert.Contains(t, buf.String(), "Unknown log level")
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FINLEDGER_TEST_NEW=from-file\nFINLEDGER_TEST_SET=from-file\n"), 0o600))

	t.Setenv("FINLEDGER_TEST_SET", "from-env")
	require.NoError(t, os.Unsetenv("FINLEDGER_TEST_NEW"))
	t.Cleanup(func() { os.Unsetenv("FINLEDGER_TEST_NEW") })

	LoadEnvFile(path, filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "from-file", os.Getenv("FINLEDGER_TEST_NEW"))
	assert.Equal(t, "from-env", os.Getenv("FINLEDGER_TEST_SET"))
}

func TestLoadConfigValidates(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "invalid data backend")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataBackend)
}
