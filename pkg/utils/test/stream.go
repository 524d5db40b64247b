package testutils

import (
	"io"
	"strings"
)

// StreamBody joins payload lines into an event stream body, one "data:"
// line per payload followed by a blank line.
func StreamBody(payloads ...string) string {
	var b strings.Builder
	for _, p := range payloads {
		b.WriteString("data: ")
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	return b.String()
}

// ChunkReader returns each chunk from a separate Read call, in order, so
// tests control exactly where the stream is split.
type ChunkReader struct {
	chunks []string
}

// NewChunkReader creates a ChunkReader over chunks.
func NewChunkReader(chunks ...string) *ChunkReader {
	return &ChunkReader{chunks: chunks}
}

// SplitEvery creates a ChunkReader that cuts s into n-byte chunks.
func SplitEvery(s string, n int) *ChunkReader {
	var chunks []string
	for len(s) > n {
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return &ChunkReader{chunks: chunks}
}

func (r *ChunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}

	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// Remaining reports how many chunks have not been read yet.
func (r *ChunkReader) Remaining() int {
	return len(r.chunks)
}
