package message

import (
	"errors"
	"fmt"
)

// Codec error kinds. All are recoverable by the caller: the usual
// response is to drop the message and penalize the peer.
var (
	ErrTooManyItems  = errors.New("message: too many items")
	ErrInvalidTag    = errors.New("message: invalid tag")
	ErrTrailingBytes = errors.New("message: trailing bytes")
	ErrTruncated     = errors.New("message: truncated")
)

// InnerDecodeError wraps a failure from a nested decode (e.g. a signed
// operation embedded in a DataResponse) so callers can unwrap to the
// underlying cause while still matching on "this message failed to
// decode".
type InnerDecodeError struct {
	Context string
	Err     error
}

func (e *InnerDecodeError) Error() string {
	return fmt.Sprintf("message: inner decode failed (%s): %v", e.Context, e.Err)
}

func (e *InnerDecodeError) Unwrap() error { return e.Err }

func innerDecodeErr(context string, err error) error {
	return &InnerDecodeError{Context: context, Err: err}
}
