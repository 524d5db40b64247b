package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent textstream configuration stored as
// config.toml in the .textstream/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Client      ClientConfig      `toml:"client"`
	Stream      StreamConfig      `toml:"stream"`
	Replay      ReplayConfig      `toml:"replay"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// ClientConfig holds the completion endpoint and request settings used by
// "textstream complete".
type ClientConfig struct {
	Host      string `toml:"host,omitempty"`
	Path      string `toml:"path,omitempty"`
	Model     string `toml:"model,omitempty"`
	APIKey    string `toml:"api_key,omitempty"`
	MaxTokens uint   `toml:"max_tokens,omitempty"`
}

// StreamConfig holds decoder settings shared by "complete" and "decode".
type StreamConfig struct {
	ThrottleMs    uint `toml:"throttle_ms,omitempty"`
	ReadSize      uint `toml:"read_size,omitempty"`
	MaxCarryBytes uint `toml:"max_carry_bytes,omitempty"`
}

// ReplayConfig holds replay server settings.
type ReplayConfig struct {
	Listen    string `toml:"listen,omitempty"`
	ChunkSize uint   `toml:"chunk_size,omitempty"`
	DelayMs   uint   `toml:"delay_ms,omitempty"`
}

// EventStreamConfig holds Kafka publishing settings. Publishing is
// disabled while Brokers is empty.
type EventStreamConfig struct {
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.host": {
		get: func(c *Config) string { return c.Client.Host },
		set: func(c *Config, v string) error { c.Client.Host = v; return nil },
	},
	"client.path": {
		get: func(c *Config) string { return c.Client.Path },
		set: func(c *Config, v string) error { c.Client.Path = v; return nil },
	},
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error { c.Client.Model = v; return nil },
	},
	"client.api_key": {
		get: func(c *Config) string { return c.Client.APIKey },
		set: func(c *Config, v string) error { c.Client.APIKey = v; return nil },
	},
	"client.max_tokens": uintKey("client.max_tokens", func(c *Config) *uint { return &c.Client.MaxTokens }),

	"stream.throttle_ms":     uintKey("stream.throttle_ms", func(c *Config) *uint { return &c.Stream.ThrottleMs }),
	"stream.read_size":       uintKey("stream.read_size", func(c *Config) *uint { return &c.Stream.ReadSize }),
	"stream.max_carry_bytes": uintKey("stream.max_carry_bytes", func(c *Config) *uint { return &c.Stream.MaxCarryBytes }),

	"replay.listen": {
		get: func(c *Config) string { return c.Replay.Listen },
		set: func(c *Config, v string) error { c.Replay.Listen = v; return nil },
	},
	"replay.chunk_size": uintKey("replay.chunk_size", func(c *Config) *uint { return &c.Replay.ChunkSize }),
	"replay.delay_ms":   uintKey("replay.delay_ms", func(c *Config) *uint { return &c.Replay.DelayMs }),

	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error { c.EventStream.Brokers = SplitList(v); return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}

// uintKey builds accessors for a uint field. Zero reads back as "" so that
// unset keys look the same as string keys.
func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			n := *field(c)
			if n == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(n), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// SplitList splits a comma or whitespace separated list, dropping empty
// entries.
func SplitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}
