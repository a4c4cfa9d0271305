package jaeger_sender

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSpanTooLarge is matched by OversizeSpanError.
	ErrSpanTooLarge = errors.New("span too large")
	// ErrProcessNotSet is reported for spans appended before SetProcess.
	ErrProcessNotSet = errors.New("process not set")
	// ErrProcessAlreadySet is returned by a second call to SetProcess.
	ErrProcessAlreadySet = errors.New("process already set")
	// ErrSenderClosed is reported for operations on a closed sender.
	ErrSenderClosed = errors.New("sender closed")
)

// OversizeSpanError is reported for a span that cannot fit in any datagram.
type OversizeSpanError struct {
	Size int
	Max  int
}

func (e *OversizeSpanError) Error() string {
	return fmt.Sprintf("span size %d is larger than maxSpanSize %d", e.Size, e.Max)
}

func (e *OversizeSpanError) Is(target error) bool {
	return target == ErrSpanTooLarge
}

// TransportError describes a failed delivery.
type TransportError struct {
	Op         string
	PacketSize int
	BytesSent  int
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error %s: %s", e.Op, e.Err)
	if e.PacketSize > 0 {
		fmt.Fprintf(&b, ", packet size: %d, bytes sent: %d", e.PacketSize, e.BytesSent)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
