package config

const (
	defaultClientHost      = "https://api.openai.com"
	defaultClientPath      = "/v1/completions"
	defaultClientModel     = "gpt-3.5-turbo-instruct"
	defaultClientMaxTokens = 256

	defaultStreamReadSize      = 4 * 1024
	defaultStreamMaxCarryBytes = 1024 * 1024

	defaultReplayListen    = ":8089"
	defaultReplayChunkSize = 64
	defaultReplayDelayMs   = 20

	defaultEventStreamTopic = "textstream.completions"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Host:      defaultClientHost,
			Path:      defaultClientPath,
			Model:     defaultClientModel,
			MaxTokens: defaultClientMaxTokens,
		},
		Stream: StreamConfig{
			ReadSize:      defaultStreamReadSize,
			MaxCarryBytes: defaultStreamMaxCarryBytes,
		},
		Replay: ReplayConfig{
			Listen:    defaultReplayListen,
			ChunkSize: defaultReplayChunkSize,
			DelayMs:   defaultReplayDelayMs,
		},
		EventStream: EventStreamConfig{
			Topic: defaultEventStreamTopic,
		},
	}
}
