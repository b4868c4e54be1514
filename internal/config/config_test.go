package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	path := writeConfig(t, `
cache:
  capacity: 2
  max_chars: 8
  max_encoded_bytes: 64
redis:
  addr: redis:6379
  read_timeout: 3s
feed:
  channel: entries
  key_prefix: test
  backfill: true
log:
  level: debug
  format: json
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Cache.Capacity)
	assert.Equal(t, 8, c.Cache.MaxChars)
	assert.Equal(t, 64, c.Cache.MaxEncodedBytes)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, 3*time.Second, c.Redis.ReadTimeout)
	assert.Equal(t, 5*time.Second, c.Redis.DialTimeout)
	assert.Equal(t, "entries", c.Feed.Channel)
	assert.Equal(t, "test", c.Feed.KeyPrefix)
	assert.True(t, c.Feed.Backfill)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	c, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REDIS_ADDR", "elsewhere:6380")
	c, err := Load(writeConfig(t, "redis:\n  addr: redis:6379\n"))
	require.NoError(t, err)
	assert.Equal(t, "elsewhere:6380", c.Redis.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, "cache: [oops"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "cache:\n  capacity: 0\n"))
	assert.ErrorContains(t, err, "cache.capacity must be positive")

	_, err = Load(writeConfig(t, "cache:\n  max_chars: -8\n"))
	assert.ErrorContains(t, err, "cache.max_chars must not be negative")
}

func TestValidate(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())

	c.Cache.Capacity = -1
	c.Cache.MaxChars = -1
	c.Cache.MaxEncodedBytes = -1
	c.Feed.Channel = ""
	c.Log.Format = "xml"
	err := c.Validate()
	assert.ErrorContains(t, err, "cache.capacity")
	assert.ErrorContains(t, err, "cache.max_chars")
	assert.ErrorContains(t, err, "cache.max_encoded_bytes")
	assert.ErrorContains(t, err, "feed.channel")
	assert.ErrorContains(t, err, "log.format")
}
