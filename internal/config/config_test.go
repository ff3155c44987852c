package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("MAX_FILE_SIZE_MB", "25")
	os.Setenv("REAPER_INTERVAL_SEC", "30")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("MAX_FILE_SIZE_MB")
		os.Unsetenv("REAPER_INTERVAL_SEC")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 25, cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, 30, cfg.Reaper.IntervalSec)
	assert.Equal(t, defaultAllowedTypes, cfg.Upload.AllowedMimeTypes)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"
	def := []string{"a/b"}

	os.Setenv(key, "image/png, text/plain ,")
	assert.Equal(t, []string{"image/png", "text/plain"}, getEnvList(key, def))

	os.Setenv(key, " , ")
	assert.Equal(t, def, getEnvList(key, def))

	os.Unsetenv(key)
	assert.Equal(t, def, getEnvList(key, def))
}
