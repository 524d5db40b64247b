package sse

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxLineBytes bounds a single buffered line.
const DefaultMaxLineBytes = 1024 * 1024

// ErrLineTooLong is returned when a line grows past the Framer's limit
// before its terminator arrives.
var ErrLineTooLong = errors.New("sse: line too long")

// Framer turns arbitrarily split chunks of a stream into complete lines
// while writing every raw byte verbatim to a destination io.Writer.
//
// ┌──────────────┐
// │  raw chunks  │
// └──────────────┘
// │
// ▼
// ┌──────────────┐   ┌───────────────────────┐
// │ Framer.Feed  │──▶│ destination io.Writer │
// └──────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────┐
// │   []Frame    │
// └──────────────┘
//
// Lines end at "\r\n", "\r" or "\n". A line whose terminator has not
// arrived yet is held back until the next Feed or Flush, so the frames
// produced never depend on where the chunks were split. Since the
// terminators are single-byte ASCII, a multi-byte UTF-8 sequence split
// across chunks is reassembled before it reaches a Frame.
type Framer struct {
	dest    io.Writer
	maxLine int

	line []byte

	// skipLF is set after a "\r" so that the "\n" of a "\r\n" pair split
	// across chunks is not read as a second, empty line.
	skipLF bool
}

// NewFramer returns a Framer that copies raw bytes to dest. A nil dest
// disables the copy. maxLine <= 0 selects DefaultMaxLineBytes.
func NewFramer(dest io.Writer, maxLine int) *Framer {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	return &Framer{
		dest:    dest,
		maxLine: maxLine,
	}
}

// Feed consumes the next chunk and returns the lines it completes, in
// order. The chunk is written to the destination before it is framed.
func (f *Framer) Feed(chunk []byte) ([]Frame, error) {
	if f.dest != nil && len(chunk) > 0 {
		if _, err := f.dest.Write(chunk); err != nil {
			return nil, fmt.Errorf("writing raw chunk: %w", err)
		}
	}

	var frames []Frame
	for _, b := range chunk {
		if f.skipLF {
			f.skipLF = false
			if b == '\n' {
				continue
			}
		}

		switch b {
		case '\r':
			f.skipLF = true
			frames = append(frames, f.take())
		case '\n':
			frames = append(frames, f.take())
		default:
			if len(f.line) >= f.maxLine {
				return frames, fmt.Errorf("%w: exceeds %d bytes", ErrLineTooLong, f.maxLine)
			}
			f.line = append(f.line, b)
		}
	}

	return frames, nil
}

// Flush returns the unterminated trailing line, if any. It is called once
// the source is exhausted.
func (f *Framer) Flush() (Frame, bool) {
	f.skipLF = false
	if len(f.line) == 0 {
		return Frame{}, false
	}
	return f.take(), true
}

// Buffered reports how many bytes of an unterminated line are held back.
func (f *Framer) Buffered() int {
	return len(f.line)
}

func (f *Framer) take() Frame {
	fr := Frame{Raw: string(f.line)}
	f.line = f.line[:0]
	return fr
}
