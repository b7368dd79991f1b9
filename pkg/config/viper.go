package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/morfolab/morfo/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the MORFO_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MORFO_API_ENDPOINT, MORFO_API_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: MORFO_API_ENDPOINT, MORFO_STREAM_BUFFER_LIMIT, etc.
	v.SetEnvPrefix("MORFO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// API
	v.SetDefault("api.endpoint", d.API.Endpoint)
	v.SetDefault("api.model", d.API.Model)

	// Stream
	v.SetDefault("stream.buffer_limit", d.Stream.BufferLimit)
	v.SetDefault("stream.idle_timeout", d.Stream.IdleTimeout)
	v.SetDefault("stream.rate_per_minute", d.Stream.RatePerMinute)

	// History
	v.SetDefault("history.sqlite_path", d.History.SQLitePath)
}

// ConfigFromViper materializes a Config from the viper precedence chain.
func ConfigFromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Endpoint: v.GetString("api.endpoint"),
			Model:    v.GetString("api.model"),
		},
		Stream: StreamConfig{
			BufferLimit:   v.GetUint("stream.buffer_limit"),
			IdleTimeout:   v.GetString("stream.idle_timeout"),
			RatePerMinute: v.GetUint("stream.rate_per_minute"),
		},
		History: HistoryConfig{
			SQLitePath: v.GetString("history.sqlite_path"),
		},
	}

	applyDefaults(cfg)

	return cfg
}
