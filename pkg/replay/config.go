package replay

import "time"

const (
	// DefaultPath is the route a recorded stream is served on.
	DefaultPath = "/v1/completions"

	// DefaultChunkSize is the number of bytes written per chunk.
	DefaultChunkSize = 64
)

// Config is the replay server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8089")
	ListenAddr string

	// Path is the POST route that serves the recording.
	Path string

	// ChunkSize is the number of bytes written per chunk. Small sizes split
	// lines and multi-byte characters across chunks.
	ChunkSize int

	// Delay is the pause between chunks.
	Delay time.Duration

	// APIKey, when set, is required as a bearer token.
	APIKey string
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c
}
