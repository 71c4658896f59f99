package push

import (
	"net/http"
	"time"
)

const (
	DefaultReadTimeout = 60 * time.Second
	// DefaultPingInterval must stay below DefaultReadTimeout
	DefaultPingInterval = (DefaultReadTimeout * 9) / 10
)

// Config holds configuration for the push connection
type Config struct {
	URL            string
	Header         http.Header
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns default push configuration for the given endpoint
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		Header:         http.Header{},
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    DefaultReadTimeout,
		PingInterval:   DefaultPingInterval,
		MaxMessageSize: 64 * 1024,
		MinBackoff:     500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
	}
}

// nextBackoff doubles the delay up to the configured cap
func (c Config) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > c.MaxBackoff {
		next = c.MaxBackoff
	}
	return next
}

// withDefaults replaces timing values a connection cannot run with
func (c Config) withDefaults() Config {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 64 * 1024
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.ReadTimeout {
		c.PingInterval = (c.ReadTimeout * 9) / 10
	}
	if c.MinBackoff <= 0 {
		c.MinBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff < c.MinBackoff {
		c.MaxBackoff = c.MinBackoff
	}
	if c.Header == nil {
		c.Header = http.Header{}
	}
	return c
}
