package decoder

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/textstream/pkg/utils"
)

var (
	// ErrProtocol is matched by every *ProtocolError.
	ErrProtocol = errors.New("unexpected line in completion stream")

	// ErrIncomplete is matched by every *IncompleteError.
	ErrIncomplete = errors.New("incomplete payload in completion stream")

	// ErrDecoderUsed is returned when Decode is called twice on one Decoder.
	ErrDecoderUsed = errors.New("decoder already used")
)

// ProtocolError reports a line that carries no recognized prefix while no
// partial payload is pending.
type ProtocolError struct {
	Line string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: line=%q", ErrProtocol, utils.Truncate(e.Line, 120))
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// IncompleteError reports a partial payload that never became valid JSON,
// either because the stream ended or because it outgrew the carry limit.
type IncompleteError struct {
	Fragment string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: %d bytes pending: %q", ErrIncomplete, len(e.Fragment), utils.Truncate(e.Fragment, 120))
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}
