package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/textstream/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable read by InitViper.
const EnvPrefix = "TEXTSTREAM"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the TEXTSTREAM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (TEXTSTREAM_CLIENT_API_KEY, TEXTSTREAM_STREAM_THROTTLE_MS, etc.)
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

	// 3. Environment variables: TEXTSTREAM_CLIENT_HOST, TEXTSTREAM_REPLAY_LISTEN, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The conventional OpenAI variable is honoured when the prefixed one is unset.
	if err := v.BindEnv("client.api_key", EnvPrefix+"_CLIENT_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Client
	v.SetDefault("client.host", d.Client.Host)
	v.SetDefault("client.path", d.Client.Path)
	v.SetDefault("client.model", d.Client.Model)
	v.SetDefault("client.api_key", d.Client.APIKey)
	v.SetDefault("client.max_tokens", d.Client.MaxTokens)

	// Stream
	v.SetDefault("stream.throttle_ms", d.Stream.ThrottleMs)
	v.SetDefault("stream.read_size", d.Stream.ReadSize)
	v.SetDefault("stream.max_carry_bytes", d.Stream.MaxCarryBytes)

	// Replay
	v.SetDefault("replay.listen", d.Replay.Listen)
	v.SetDefault("replay.chunk_size", d.Replay.ChunkSize)
	v.SetDefault("replay.delay_ms", d.Replay.DelayMs)

	// Event stream
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}
