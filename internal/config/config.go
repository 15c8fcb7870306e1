package config

import (
	"errors"
	"time"
)

// Config represents the cabletrace service configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Map       MapConfig       `mapstructure:"map"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Idle      IdleConfig      `mapstructure:"idle"`
	Markers   MarkersConfig   `mapstructure:"markers"`
	Cables    CablesConfig    `mapstructure:"cables"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	MaxConnections  int           `mapstructure:"max_connections"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// MapConfig is the camera position shown before any hop is selected
type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLon float64 `mapstructure:"center_lon"`
	Zoom      float64 `mapstructure:"zoom"`
	Pitch     float64 `mapstructure:"pitch"`
	Bearing   float64 `mapstructure:"bearing"`
}

// CameraConfig is the fly-to profile used between hops
type CameraConfig struct {
	Zoom     float64       `mapstructure:"zoom"`
	Pitch    float64       `mapstructure:"pitch"`
	Bearing  float64       `mapstructure:"bearing"`
	Easing   string        `mapstructure:"easing"`
	Duration time.Duration `mapstructure:"duration"`
}

// IdleConfig controls the automatic rotation
type IdleConfig struct {
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	RevolutionPeriod time.Duration `mapstructure:"revolution_period"`
}

type MarkersConfig struct {
	Color    string  `mapstructure:"color"`
	Altitude float64 `mapstructure:"altitude"`
}

// CablesConfig locates the cable collection and names its layers
type CablesConfig struct {
	GeoJSONPath        string  `mapstructure:"geojson_path"`
	BaseLayer          string  `mapstructure:"base_layer"`
	HighlightLayer     string  `mapstructure:"highlight_layer"`
	IDProperty         string  `mapstructure:"id_property"`
	NearestToleranceKm float64 `mapstructure:"nearest_tolerance_km"`
}

// SessionsConfig represents viewer session lifetime
type SessionsConfig struct {
	TTL              time.Duration `mapstructure:"ttl"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
	SubscriberBuffer int           `mapstructure:"subscriber_buffer"`
}

// CacheConfig represents the run cache
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig represents Redis run cache configuration
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Output is a file path; empty writes to stderr.
	Output string `mapstructure:"output"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			MaxConnections:  1000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    45 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Map: MapConfig{
			CenterLat: 41.898951,
			CenterLon: -87.644642,
			Zoom:      2,
			Pitch:     0,
			Bearing:   0,
		},
		Camera: CameraConfig{
			Zoom:     16,
			Pitch:    45,
			Easing:   "easeInOutCubic",
			Duration: 3 * time.Second,
		},
		Idle: IdleConfig{
			TickInterval:     100 * time.Millisecond,
			RevolutionPeriod: 120 * time.Second,
		},
		Markers: MarkersConfig{
			Color:    "#e04c4c",
			Altitude: 100,
		},
		Cables: CablesConfig{
			GeoJSONPath:        "cable-geo.json",
			BaseLayer:          "cables",
			HighlightLayer:     "highlights",
			IDProperty:         "id",
			NearestToleranceKm: 30,
		},
		Sessions: SessionsConfig{
			TTL:              30 * time.Minute,
			CleanupInterval:  time.Minute,
			SubscriberBuffer: 16,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     10 * time.Minute,
			Redis: RedisConfig{
				Host:      "localhost",
				Port:      6379,
				KeyPrefix: "cabletrace:run:",
			},
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			Burst:             10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}
	if c.Idle.TickInterval <= 0 {
		return errors.New("idle tick_interval must be positive")
	}
	if c.Idle.RevolutionPeriod < c.Idle.TickInterval {
		return errors.New("idle revolution_period must be at least one tick")
	}
	if c.Camera.Duration < 0 {
		return errors.New("camera duration must not be negative")
	}
	if c.Cables.HighlightLayer == "" || c.Cables.BaseLayer == "" {
		return errors.New("cable layer ids are required")
	}
	if c.Cables.HighlightLayer == c.Cables.BaseLayer {
		return errors.New("cable highlight layer must differ from base layer")
	}
	if c.Cables.IDProperty == "" {
		return errors.New("cable id_property is required")
	}
	if c.Sessions.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Sessions.CleanupInterval <= 0 {
		return errors.New("session cleanup_interval must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return errors.New("cache backend must be memory or redis")
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("rate limit requests_per_minute must be positive")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return errors.New("invalid metrics port")
	}
	return nil
}
