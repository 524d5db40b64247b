package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --throttle
// on both "textstream complete" and "textstream decode").
type Flag struct {
	// Name is the long flag name (e.g. "throttle").
	Name string

	// Shorthand is the one-letter short flag (e.g. "t"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "stream.throttle_ms").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagHost          = "host"
	FlagPath          = "path"
	FlagModel         = "model"
	FlagAPIKey        = "api-key"
	FlagMaxTokens     = "max-tokens"
	FlagThrottle      = "throttle"
	FlagReadSize      = "read-size"
	FlagMaxCarryBytes = "max-carry-bytes"
	FlagReplayListen  = "listen"
	FlagChunkSize     = "chunk-size"
	FlagDelay         = "delay"
	FlagBrokers       = "kafka-brokers"
	FlagTopic         = "kafka-topic"
)

// Flags is the shared registry used by every textstream command.
var Flags = FlagSet{
	FlagHost: {
		Name:        "host",
		ViperKey:    "client.host",
		Description: "Completion API host (scheme, host and port)",
	},
	FlagPath: {
		Name:        "path",
		ViperKey:    "client.path",
		Description: "Completion endpoint path",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "client.model",
		Description: "Model name sent in the request",
	},
	FlagAPIKey: {
		Name:        "api-key",
		ViperKey:    "client.api_key",
		Description: "Bearer token for the completion API (env: TEXTSTREAM_CLIENT_API_KEY or OPENAI_API_KEY)",
	},
	FlagMaxTokens: {
		Name:        "max-tokens",
		ViperKey:    "client.max_tokens",
		Description: "Maximum number of tokens to generate",
	},
	FlagThrottle: {
		Name:        "throttle",
		Shorthand:   "t",
		ViperKey:    "stream.throttle_ms",
		Description: "Deliver text updates at most once per this many milliseconds (0 disables)",
	},
	FlagReadSize: {
		Name:        "read-size",
		ViperKey:    "stream.read_size",
		Description: "Bytes requested per read from the stream",
	},
	FlagMaxCarryBytes: {
		Name:        "max-carry-bytes",
		ViperKey:    "stream.max_carry_bytes",
		Description: "Largest partial payload held while waiting for its remainder",
	},
	FlagReplayListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "replay.listen",
		Description: "Address for the replay server to listen on",
	},
	FlagChunkSize: {
		Name:        "chunk-size",
		ViperKey:    "replay.chunk_size",
		Description: "Bytes per chunk when replaying or splitting a recording",
	},
	FlagDelay: {
		Name:        "delay",
		ViperKey:    "replay.delay_ms",
		Description: "Milliseconds to wait between replayed chunks",
	},
	FlagBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.brokers",
		Description: "Kafka brokers to publish completion events to (empty disables publishing)",
	},
	FlagTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.topic",
		Description: "Kafka topic for completion events",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a comma separated string slice flag on cmd
// from the given FlagSet.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *[]string) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultStringSlice returns the default string slice for a viper key from NewDefaultConfig.
func defaultStringSlice(viperKey string) []string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetStringSlice(viperKey)
}
