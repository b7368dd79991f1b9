package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent morfo configuration stored as
// config.toml in the .morfo/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int           `toml:"version"`
	API     APIConfig     `toml:"api"`
	Stream  StreamConfig  `toml:"stream"`
	History HistoryConfig `toml:"history"`
}

// APIConfig holds upstream completion endpoint settings.
type APIConfig struct {
	Endpoint string `toml:"endpoint,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// StreamConfig holds stream session settings.
type StreamConfig struct {
	// BufferLimit caps the logical text buffer in bytes.
	BufferLimit uint `toml:"buffer_limit,omitempty"`

	// IdleTimeout is how long a session waits for the next upstream byte
	// before giving up, as a duration string ("90s"). Empty disables it.
	IdleTimeout string `toml:"idle_timeout,omitempty"`

	// RatePerMinute throttles session starts. Zero disables throttling.
	RatePerMinute uint `toml:"rate_per_minute,omitempty"`
}

// HistoryConfig holds analysis history settings.
type HistoryConfig struct {
	// SQLitePath is the history database path. Empty resolves to
	// history.db inside the .morfo/ directory.
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// ParsedIdleTimeout returns the idle timeout as a duration. Empty or
// invalid values disable the watchdog.
func (s StreamConfig) ParsedIdleTimeout() time.Duration {
	if s.IdleTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(s.IdleTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.endpoint": {
		get: func(c *Config) string { return c.API.Endpoint },
		set: func(c *Config, v string) error { c.API.Endpoint = v; return nil },
	},
	"api.model": {
		get: func(c *Config) string { return c.API.Model },
		set: func(c *Config, v string) error { c.API.Model = v; return nil },
	},
	"stream.buffer_limit": {
		get: func(c *Config) string {
			if c.Stream.BufferLimit == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Stream.BufferLimit), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for stream.buffer_limit: %w", err)
			}
			c.Stream.BufferLimit = uint(n)
			return nil
		},
	},
	"stream.idle_timeout": {
		get: func(c *Config) string { return c.Stream.IdleTimeout },
		set: func(c *Config, v string) error {
			if v != "" {
				if _, err := time.ParseDuration(v); err != nil {
					return fmt.Errorf("invalid value for stream.idle_timeout: %w", err)
				}
			}
			c.Stream.IdleTimeout = v
			return nil
		},
	},
	"stream.rate_per_minute": {
		get: func(c *Config) string {
			if c.Stream.RatePerMinute == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Stream.RatePerMinute), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for stream.rate_per_minute: %w", err)
			}
			c.Stream.RatePerMinute = uint(n)
			return nil
		},
	},
	"history.sqlite_path": {
		get: func(c *Config) string { return c.History.SQLitePath },
		set: func(c *Config, v string) error { c.History.SQLitePath = v; return nil },
	},
}
