package jaeger_thrift_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/require"

	jaeger_thrift "jaeger-sender/internal/jaeger-thrift"
)

var testStart = time.Date(2021, 7, 1, 1, 1, 1, 1000, time.UTC)

type point struct {
	X int    `json:"x"`
	Y string `json:"y"`
}

func sampleSpan() *jaeger_thrift.Span {
	return &jaeger_thrift.Span{
		TraceID:       jaeger_thrift.NewTraceID(0xabcdef, 0x1234),
		SpanID:        0x42,
		ParentSpanID:  0x41,
		OperationName: "http.request",
		References: []jaeger_thrift.SpanRef{
			{Type: opentracing.ChildOfRef, TraceID: jaeger_thrift.NewTraceID(0xabcdef, 0x1234), SpanID: 0x41},
			{Type: opentracing.FollowsFromRef, TraceID: jaeger_thrift.NewTraceID(0, 0x99), SpanID: 0x7},
		},
		Flags:     jaeger_thrift.FlagSampled | jaeger_thrift.FlagDebug,
		StartTime: testStart,
		Duration:  1500 * time.Microsecond,
		Tags: []jaeger_thrift.Tag{
			{Key: "http.status_code", Value: 200},
			{Key: "error", Value: false},
			{Key: "payload", Value: []byte{0xde, 0xad, 0xbe, 0xef}},
			{Key: "component", Value: "net/http"},
			{Key: "point", Value: point{X: 1, Y: "two"}},
			{Key: "ratio", Value: 0.25},
		},
		Logs: []jaeger_thrift.Log{
			{
				Timestamp: testStart.Add(time.Millisecond),
				Fields: []jaeger_thrift.Tag{
					{Key: "event", Value: "retry"},
					{Key: "attempt", Value: uint8(2)},
				},
			},
			{Timestamp: testStart.Add(2 * time.Millisecond)},
		},
	}
}

func sampleProcess() jaeger_thrift.Process {
	return jaeger_thrift.Process{
		ServiceName: "frontend",
		Tags: []jaeger_thrift.Tag{
			{Key: "hostname", Value: "host-1"},
			{Key: "jaeger.version", Value: "Go-1.0.0"},
		},
	}
}

// serialize writes s with the stock Thrift binary protocol.
func serialize(t *testing.T, s thrift.TStruct) []byte {
	t.Helper()
	buf := thrift.NewTMemoryBuffer()
	p := thrift.NewTBinaryProtocolConf(buf, jaeger_thrift.ProtocolConfiguration())
	require.NoError(t, s.Write(context.Background(), p))
	require.NoError(t, p.Flush(context.Background()))
	return buf.Bytes()
}

func requireEncodingError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var encErr *jaeger_thrift.EncodingError
	require.True(t, errors.As(err, &encErr), "expected an EncodingError, got %T", err)
}
