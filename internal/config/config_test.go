package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "capo.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
store:
  backend: sqlite
  sqlite_path: /tmp/songs.sqlite3
display:
  color: false
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, BackendSQLite, config.Store.Backend)
	assert.Equal(t, "/tmp/songs.sqlite3", config.Store.SQLitePath)
	assert.False(t, config.UseColor())
	assert.True(t, config.ShowArtist(), "show_artist defaults to true")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"`))
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, config.Store.Backend)
	assert.Equal(t, "redis://localhost:6379", config.Store.RedisURL)
	assert.Equal(t, "default", config.Store.Namespace)
	assert.True(t, config.UseColor())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CAPO_REDIS_URL", "redis://cache:6380/2")
	t.Setenv("CAPO_NAMESPACE", "choir")

	config, err := Load(writeConfig(t, `version: "1.0"
store:
  namespace: band
`))
	require.NoError(t, err)
	assert.Equal(t, "redis://cache:6380/2", config.Store.RedisURL)
	assert.Equal(t, "choir", config.Store.Namespace)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/capo.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"
store:
  - this is invalid
    yaml syntax
`))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		config        CapoConfig
		errorContains string
	}{
		{
			name:          "unsupported version",
			config:        CapoConfig{Version: "2.0"},
			errorContains: "unsupported version: 2.0",
		},
		{
			name:          "unknown backend",
			config:        CapoConfig{Version: "1.0", Store: StoreConfig{Backend: "firestore"}},
			errorContains: "invalid store.backend: firestore",
		},
		{
			name:          "bad redis url",
			config:        CapoConfig{Version: "1.0", Store: StoreConfig{RedisURL: "http://nope"}},
			errorContains: "store.redis_url is invalid",
		},
		{
			name:          "namespace with separator",
			config:        CapoConfig{Version: "1.0", Store: StoreConfig{Namespace: "a:b"}},
			errorContains: "store.namespace must not contain",
		},
		{
			name:   "sqlite ignores redis url",
			config: CapoConfig{Version: "1.0", Store: StoreConfig{Backend: BackendSQLite, RedisURL: "http://nope"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("falls back to defaults at the default path", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		config, err := LoadOrDefault(DefaultPath)
		require.NoError(t, err)
		assert.Equal(t, BackendRedis, config.Store.Backend)
	})

	t.Run("explicit missing path is an error", func(t *testing.T) {
		_, err := LoadOrDefault(filepath.Join(t.TempDir(), "other.yml"))
		assert.ErrorContains(t, err, "failed to read config")
	})
}
