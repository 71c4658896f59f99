package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/girlsgotgame/courtside/go/internal/push"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the courtside client and the dev API.
// Values come from an optional YAML file and are overridden by environment
// variables.
type Config struct {
	API struct {
		BaseURL        string        `yaml:"base_url"`
		Token          string        `yaml:"token"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"api"`

	Push struct {
		URL          string        `yaml:"url"`
		MinBackoff   time.Duration `yaml:"min_backoff"`
		MaxBackoff   time.Duration `yaml:"max_backoff"`
		PingInterval time.Duration `yaml:"ping_interval"`
	} `yaml:"push"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	DevServer struct {
		Addr  string `yaml:"addr"`
		Token string `yaml:"token"`
		Seed  bool   `yaml:"seed"`
	} `yaml:"dev_server"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

// Default returns a config pointing at a dev API on localhost
func Default() *Config {
	var c Config
	c.API.BaseURL = "http://localhost:8080"
	c.API.RequestTimeout = 10 * time.Second
	c.Push.URL = "ws://localhost:8080/ws"
	c.Push.MinBackoff = 500 * time.Millisecond
	c.Push.MaxBackoff = 30 * time.Second
	c.Push.PingInterval = 25 * time.Second
	c.Log.Level = "info"
	c.Log.Pretty = true
	c.DevServer.Addr = ":8080"
	c.DevServer.Seed = true
	c.NATS.SubjectPrefix = "games"
	return &c
}

// Load reads path (if not empty) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("GGG_API_URL", c.API.BaseURL)
	c.API.Token = getEnv("GGG_TOKEN", c.API.Token)
	c.API.RequestTimeout = getEnvAsDuration("GGG_REQUEST_TIMEOUT", c.API.RequestTimeout)

	c.Push.URL = getEnv("GGG_WS_URL", c.Push.URL)
	c.Push.MinBackoff = getEnvAsDuration("GGG_WS_MIN_BACKOFF", c.Push.MinBackoff)
	c.Push.MaxBackoff = getEnvAsDuration("GGG_WS_MAX_BACKOFF", c.Push.MaxBackoff)
	c.Push.PingInterval = getEnvAsDuration("GGG_WS_PING_INTERVAL", c.Push.PingInterval)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvAsBool("LOG_PRETTY", c.Log.Pretty)

	c.DevServer.Addr = getEnv("DEVAPI_ADDR", c.DevServer.Addr)
	c.DevServer.Token = getEnv("DEVAPI_TOKEN", c.DevServer.Token)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)
}

// Validate checks the fields every program depends on
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if u, err := url.Parse(c.Push.URL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		errs = append(errs, fmt.Errorf("push.url %q must use ws or wss", c.Push.URL))
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("api.request_timeout must be positive"))
	}
	if c.Push.MinBackoff <= 0 || c.Push.MaxBackoff < c.Push.MinBackoff {
		errs = append(errs, fmt.Errorf("push backoff %s..%s is invalid", c.Push.MinBackoff, c.Push.MaxBackoff))
	}
	// the server drops a connection that stays quiet for a full read timeout
	if c.Push.PingInterval <= 0 || c.Push.PingInterval >= push.DefaultReadTimeout {
		errs = append(errs, fmt.Errorf("push.ping_interval %s must be positive and below %s", c.Push.PingInterval, push.DefaultReadTimeout))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// LogLevel returns the configured zerolog level, defaulting to info
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
