package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent respond configuration stored as
// config.toml in the .respond/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Cache   CacheConfig  `toml:"cache"`
	Replay  ReplayConfig `toml:"replay"`
}

// ClientConfig holds settings for the Responses API client.
type ClientConfig struct {
	BaseURL        string `toml:"base_url,omitempty"`
	Model          string `toml:"model,omitempty"`
	Organization   string `toml:"organization,omitempty"`
	TimeoutSeconds uint   `toml:"timeout_seconds,omitempty"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled     bool   `toml:"enabled,omitempty"`
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// ReplayConfig holds replay server settings.
type ReplayConfig struct {
	Listen      string `toml:"listen,omitempty"`
	Transcripts string `toml:"transcripts,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.base_url": {
		get: func(c *Config) string { return c.Client.BaseURL },
		set: func(c *Config, v string) error { c.Client.BaseURL = v; return nil },
	},
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error { c.Client.Model = v; return nil },
	},
	"client.organization": {
		get: func(c *Config) string { return c.Client.Organization },
		set: func(c *Config, v string) error { c.Client.Organization = v; return nil },
	},
	"client.timeout_seconds": {
		get: func(c *Config) string {
			if c.Client.TimeoutSeconds == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Client.TimeoutSeconds), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for client.timeout_seconds: %w", err)
			}
			c.Client.TimeoutSeconds = uint(n)
			return nil
		},
	},
	"cache.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for cache.enabled: %w", err)
			}
			c.Cache.Enabled = b
			return nil
		},
	},
	"cache.driver": {
		get: func(c *Config) string { return c.Cache.Driver },
		set: func(c *Config, v string) error { c.Cache.Driver = v; return nil },
	},
	"cache.sqlite_path": {
		get: func(c *Config) string { return c.Cache.SQLitePath },
		set: func(c *Config, v string) error { c.Cache.SQLitePath = v; return nil },
	},
	"cache.postgres_url": {
		get: func(c *Config) string { return c.Cache.PostgresURL },
		set: func(c *Config, v string) error { c.Cache.PostgresURL = v; return nil },
	},
	"replay.listen": {
		get: func(c *Config) string { return c.Replay.Listen },
		set: func(c *Config, v string) error { c.Replay.Listen = v; return nil },
	},
	"replay.transcripts": {
		get: func(c *Config) string { return c.Replay.Transcripts },
		set: func(c *Config, v string) error { c.Replay.Transcripts = v; return nil },
	},
}
