package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customfields/internal/domain/value"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CUSTOMFIELDS_STORAGE_DRIVER", "memory")
	t.Setenv("CUSTOMFIELDS_UNIQUE_SCOPE", "entity")
	t.Setenv("CUSTOMFIELDS_MAX_BATCH_SIZE", "5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, value.ScopeEntity, cfg.UniqueScope)
	assert.Equal(t, 5, cfg.MaxBatchSize)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.StatementTimeout)
	assert.True(t, cfg.Development())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"storage_driver: postgres\ndatabase_url: postgres://localhost/cf\napp_env: production\ndb_max_conns: 8\ndb_min_conns: 1\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/cf", cfg.DatabaseURL)
	assert.EqualValues(t, 8, cfg.MaxConns)
	assert.False(t, cfg.Development())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"CUSTOMFIELDS_STORAGE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"CUSTOMFIELDS_STORAGE_DRIVER": "redis"}},
		{"unknown scope", map[string]string{"CUSTOMFIELDS_STORAGE_DRIVER": "memory", "CUSTOMFIELDS_UNIQUE_SCOPE": "global"}},
		{"negative batch", map[string]string{"CUSTOMFIELDS_STORAGE_DRIVER": "memory", "CUSTOMFIELDS_MAX_BATCH_SIZE": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("CUSTOMFIELDS_DATABASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}
