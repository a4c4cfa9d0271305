package jaeger_thrift

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedTagValue is returned for tag values that have no wire
	// representation, such as channels and functions.
	ErrUnsupportedTagValue = errors.New("unsupported tag value")
	// ErrSizeMismatch means the serialized length differs from the
	// predicted length.
	ErrSizeMismatch = errors.New("serialized size differs from computed size")
)

// EncodingError is returned when a structure cannot be converted, sized or
// serialized.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("error %s: %s", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func encodingError(op string, err error) error {
	return &EncodingError{Op: op, Err: err}
}
