package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.ShardCount)
	assert.Equal(t, 16*1024, cfg.ReadBufferBytes)
	assert.Equal(t, 1024, cfg.ChannelCapacity)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "ledgerd_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "ledgerd.toml")
	err = os.WriteFile(configPath, []byte("shard_count = 32\nlog_level = \"debug\"\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.ShardCount)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, configPath, cfg.GetConfigPath())
}

func TestLoadConfig_MissingExplicitFileIsError(t *testing.T) {
	_, err := LoadConfig("/nonexistent/ledgerd.toml")
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("LEDGERD_SHARD_COUNT", "8")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.ShardCount)
}
