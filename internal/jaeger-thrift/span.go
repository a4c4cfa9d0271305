package jaeger_thrift

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
)

// Flags is the bit field propagated with every span.
type Flags int32

const (
	// FlagSampled marks a span that was sampled.
	FlagSampled Flags = 1
	// FlagDebug marks a span forced through sampling.
	FlagDebug Flags = 2
)

// TraceID is a big-endian 64 or 128 bit trace identifier.
type TraceID []byte

// Split returns the most and least significant 64 bits of the id. The high
// half is 0 for 64 bit ids.
func (t TraceID) Split() (high, low uint64, err error) {
	switch len(t) {
	case 8:
		return 0, binary.BigEndian.Uint64(t), nil
	case 16:
		return binary.BigEndian.Uint64(t[:8]), binary.BigEndian.Uint64(t[8:]), nil
	}
	return 0, 0, fmt.Errorf("trace id must be 8 or 16 bytes, got %d", len(t))
}

// NewTraceID builds a TraceID from its halves. A zero high half yields a
// 64 bit id.
func NewTraceID(high, low uint64) TraceID {
	if high == 0 {
		t := make(TraceID, 8)
		binary.BigEndian.PutUint64(t, low)
		return t
	}
	t := make(TraceID, 16)
	binary.BigEndian.PutUint64(t[:8], high)
	binary.BigEndian.PutUint64(t[8:], low)
	return t
}

// Tag is a key with a dynamically typed value.
type Tag struct {
	Key   string
	Value interface{}
}

// Log is a timestamped set of fields recorded on a span.
type Log struct {
	Timestamp time.Time
	Fields    []Tag
}

// SpanRef is a causal reference from a span to another span.
type SpanRef struct {
	Type    opentracing.SpanReferenceType
	TraceID TraceID
	SpanID  uint64
}

// Span is a finished unit of work ready to be reported.
type Span struct {
	TraceID       TraceID
	SpanID        uint64
	ParentSpanID  uint64 // 0 for a root span
	OperationName string
	References    []SpanRef
	Flags         Flags
	StartTime     time.Time
	Duration      time.Duration
	Tags          []Tag
	Logs          []Log
}

// Process describes the service emitting spans.
type Process struct {
	ServiceName string
	Tags        []Tag
}
