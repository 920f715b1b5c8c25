package trafficlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logging.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.Level)
	assert.True(t, cfg.ConsoleLogging)
	assert.False(t, cfg.FileLogging)
	assert.Equal(t, DefaultBodyLimit, cfg.Traffic.BodyLimit)
	require.NoError(t, validateConfig(&cfg))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(envLogLevel, "")

	t.Run("no file", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Level, cfg.Level)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
level: TRACE
console_logging: false
file_logging: true
rel_log_file_dir: logs
traffic:
  body_limit: 512
  trust_proxy: true
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "trace", cfg.Level)
		assert.False(t, cfg.ConsoleLogging)
		assert.True(t, cfg.FileLogging)
		assert.Equal(t, 512, cfg.Traffic.BodyLimit)
		assert.True(t, cfg.Traffic.TrustProxy)
		assert.False(t, cfg.Traffic.InferResponseLength)
	})

	t.Run("env level wins", func(t *testing.T) {
		t.Setenv(envLogLevel, "Debug")
		path := writeConfigFile(t, "level: error\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgConfigRead)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, "level: [unterminated\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgConfigDecode)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, "level: verbose\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgConfigInvalid)
	})
}

func TestValidateConfig(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		err := validateConfig(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgNilConfig)
	})

	t.Run("file logging needs a directory", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FileLogging = true
		cfg.RelLogFileDir = ""
		require.Error(t, validateConfig(&cfg))
	})

	t.Run("negative body limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Traffic.BodyLimit = -1
		require.Error(t, validateConfig(&cfg))
	})
}
