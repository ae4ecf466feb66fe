package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, "project-images", cfg.Buckets.ProjectImages)
	assert.Equal(t, "gantt-charts", cfg.Buckets.GanttCharts)
	assert.Equal(t, "task-documents", cfg.Buckets.Documents)
	assert.Equal(t, 2*time.Minute, cfg.Archive.Timeout)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MINIO")
	t.Setenv("ARCHIVE_TIMEOUT", "45s")
	t.Setenv("ARCHIVE_LOCK_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.example.com, ,https://admin.example.com")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMinio, cfg.Storage.Driver)
	assert.Equal(t, 45*time.Second, cfg.Archive.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Archive.LockTTL)
	assert.Equal(t, []string{"https://portal.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
}
