package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	libconfig "sensorpanel/backend/libs/config"
)

const (
	defaultHTTPPort       = "8090"
	defaultSourceURL      = "http://localhost:13000/mediciones"
	defaultPollInterval   = 1000
	defaultSourceTimeout  = 5000
	defaultRedisKeyPrefix = "panel:slot"
)

// Config defines panel service configuration.
type Config struct {
	HTTP struct {
		Port           string   `yaml:"port" env:"PANEL_HTTP_PORT"`
		AllowedOrigins []string `yaml:"allowedOrigins" env:"PANEL_CORS_ORIGINS"`
	} `yaml:"http"`
	Source struct {
		URL           string `yaml:"url" env:"PANEL_SOURCE_URL"`
		TimeoutMillis int    `yaml:"timeoutMillis" env:"PANEL_SOURCE_TIMEOUT_MS"`
	} `yaml:"source"`
	Poll struct {
		IntervalMillis int `yaml:"intervalMillis" env:"PANEL_POLL_INTERVAL_MS"`
	} `yaml:"poll"`
	WebSocket struct {
		PingIntervalSeconds int `yaml:"pingIntervalSeconds" env:"PANEL_WS_PING_INTERVAL"`
		WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds" env:"PANEL_WS_WRITE_TIMEOUT"`
	} `yaml:"websocket"`
	Redis struct {
		Addr       string `yaml:"addr" env:"PANEL_REDIS_ADDR"`
		Password   string `yaml:"password" env:"PANEL_REDIS_PASSWORD"`
		DB         int    `yaml:"db" env:"PANEL_REDIS_DB"`
		KeyPrefix  string `yaml:"keyPrefix" env:"PANEL_REDIS_PREFIX"`
		TTLSeconds int    `yaml:"ttlSeconds" env:"PANEL_REDIS_TTL"`
	} `yaml:"redis"`
	Log struct {
		Level    string `yaml:"level" env:"LOG_LEVEL"`
		Encoding string `yaml:"encoding" env:"LOG_ENCODING"`
	} `yaml:"log"`
}

// Default returns configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = defaultHTTPPort
	cfg.Source.URL = defaultSourceURL
	cfg.Source.TimeoutMillis = defaultSourceTimeout
	cfg.Poll.IntervalMillis = defaultPollInterval
	cfg.WebSocket.PingIntervalSeconds = 30
	cfg.WebSocket.WriteTimeoutSeconds = 10
	cfg.Redis.KeyPrefix = defaultRedisKeyPrefix
	return cfg
}

// Load reads configuration via shared helper. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := libconfig.LoadConfigWithOptions(cfg, libconfig.Options{Path: path}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.Source.URL)
	if raw == "" {
		return errors.New("config: source url required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: source url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: source url must be http(s), got %q", raw)
	}
	if c.Poll.IntervalMillis < 0 {
		return errors.New("config: poll interval must not be negative")
	}
	if c.Redis.DB < 0 {
		return errors.New("config: redis db must not be negative")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultHTTPPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// PollInterval returns the refresh period.
func (c *Config) PollInterval() time.Duration {
	if c.Poll.IntervalMillis <= 0 {
		return defaultPollInterval * time.Millisecond
	}
	return time.Duration(c.Poll.IntervalMillis) * time.Millisecond
}

// SourceTimeout bounds one measurements fetch.
func (c *Config) SourceTimeout() time.Duration {
	if c.Source.TimeoutMillis <= 0 {
		return defaultSourceTimeout * time.Millisecond
	}
	return time.Duration(c.Source.TimeoutMillis) * time.Millisecond
}

// PingInterval returns websocket ping interval.
func (c *Config) PingInterval() time.Duration {
	if c.WebSocket.PingIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WebSocket.PingIntervalSeconds) * time.Second
}

// WriteTimeout returns websocket write timeout.
func (c *Config) WriteTimeout() time.Duration {
	if c.WebSocket.WriteTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WebSocket.WriteTimeoutSeconds) * time.Second
}

// RedisEnabled reports whether the slot mirror is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// RedisTTL returns ttl as duration; zero means keys never expire.
func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}
