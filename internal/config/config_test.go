package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 16.0, cfg.Camera.Zoom)
	assert.Equal(t, 100*time.Millisecond, cfg.Idle.TickInterval)
	assert.Equal(t, "highlights", cfg.Cables.HighlightLayer)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30.0, cfg.Cables.NearestToleranceKm)
}

func TestConfigLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
idle:
  tick_interval: 50ms
  revolution_period: 60s
camera:
  zoom: 14
  easing: linear
cables:
  geojson_path: /data/cable-geo.json
  base_layer: cables
  highlight_layer: cable-highlights
  id_property: id
cache:
  backend: redis
  ttl: 5m
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 50*time.Millisecond, cfg.Idle.TickInterval)
	assert.Equal(t, 60*time.Second, cfg.Idle.RevolutionPeriod)
	assert.Equal(t, 14.0, cfg.Camera.Zoom)
	assert.Equal(t, "linear", cfg.Camera.Easing)
	assert.Equal(t, "cable-highlights", cfg.Cables.HighlightLayer)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// untouched sections keep their defaults
	assert.Equal(t, 45.0, cfg.Camera.Pitch)
	assert.Equal(t, "#e04c4c", cfg.Markers.Color)
}

func TestConfigLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("CABLES_GEOJSON", "/srv/cables.json")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis.internal", cfg.Cache.Redis.Host)
	assert.Equal(t, "/srv/cables.json", cfg.Cables.GeoJSONPath)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero tick", func(c *Config) { c.Idle.TickInterval = 0 }},
		{"period shorter than tick", func(c *Config) { c.Idle.RevolutionPeriod = time.Millisecond }},
		{"same layers", func(c *Config) { c.Cables.HighlightLayer = c.Cables.BaseLayer }},
		{"missing id property", func(c *Config) { c.Cables.IDProperty = "" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"zero session ttl", func(c *Config) { c.Sessions.TTL = 0 }},
		{"zero cleanup interval", func(c *Config) { c.Sessions.CleanupInterval = 0 }},
		{"negative cleanup interval", func(c *Config) { c.Sessions.CleanupInterval = -time.Second }},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
		{"bad metrics port", func(c *Config) { c.Metrics.Port = 70000 }},
	}

	require.NoError(t, DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
