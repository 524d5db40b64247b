// Package sse frames the line-oriented event streams emitted by LLM
// completion endpoints. A Framer splits raw response chunks into complete
// lines while copying the raw bytes verbatim to an optional destination,
// so a stream can be decoded and recorded in one pass.
//
// Only the subset of the SSE wire format used by completion endpoints is
// handled: one JSON payload per "data:" (or "delta:") line. Event types,
// ids and retry hints are not interpreted.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

const (
	// PrefixData marks a standard SSE data line.
	PrefixData = "data:"

	// PrefixDelta marks the delta lines some completion servers emit in
	// place of data lines.
	PrefixDelta = "delta:"
)

// Frame is a single line of the stream with its terminator removed.
type Frame struct {
	// Raw is the line exactly as received.
	Raw string
}

// IsBlank reports whether the frame is empty or whitespace only.
// Blank frames separate events and carry no payload.
func (f Frame) IsBlank() bool {
	return strings.TrimSpace(f.Raw) == ""
}

// Field returns the recognized prefix and the payload that follows it.
// The prefix must start the line; leading whitespace is not stripped and
// neither is the optional space after the colon, since JSON tolerates it.
// ok is false when the line carries neither prefix.
func (f Frame) Field() (prefix, payload string, ok bool) {
	for _, p := range []string{PrefixData, PrefixDelta} {
		if rest, found := strings.CutPrefix(f.Raw, p); found {
			return p, rest, true
		}
	}
	return "", "", false
}
