package query

import (
	"errors"
	"fmt"

	"github.com/roach88/feedql/internal/cursor"
)

// InputError reports an invalid query shape: mutually exclusive pagination
// arguments, an unmatched argument combination, or a malformed cursor token.
// Input errors are never substituted with partial results.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Message, e.Err)
	}
	return "invalid input: " + e.Message
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsInputError returns true for errors raised by invalid query arguments.
// Uses errors.As to handle wrapped errors.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// NotImplementedError marks query shapes that are intentionally unbuilt.
// They report this rather than producing incorrect results.
type NotImplementedError struct {
	Feature string
}

func (e *NotImplementedError) Error() string {
	return e.Feature + " is not implemented"
}

// IsNotImplemented returns true if the error marks an unbuilt query shape.
func IsNotImplemented(err error) bool {
	var ne *NotImplementedError
	return errors.As(err, &ne)
}

// decodeCursor turns a malformed token into an InputError, keeping the
// codec's diagnostic chained underneath.
func decodeCursor(token string) (int64, error) {
	v, err := cursor.Decode(token)
	if err != nil {
		return 0, &InputError{Message: "malformed cursor", Err: err}
	}
	return v, nil
}
