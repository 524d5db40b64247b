package completion

import (
	"errors"
	"fmt"
)

// ErrSetup is matched by every *SetupError.
var ErrSetup = errors.New("completion stream failed")

// ErrInvalidArgs is returned when the request args do not marshal to a
// JSON object.
var ErrInvalidArgs = errors.New("completion args must be a JSON object")

// SetupError reports a response that could not be streamed: a non-2xx
// status or a missing body. No text callback has fired when it is
// returned.
type SetupError struct {
	StatusCode int
	Status     string

	// Body holds the start of the response body, for diagnostics.
	Body string
}

func (e *SetupError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s", ErrSetup, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", ErrSetup, e.Status, e.Body)
}

func (e *SetupError) Unwrap() error {
	return ErrSetup
}
