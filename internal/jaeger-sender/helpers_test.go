package jaeger_sender_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/jaegertracing/jaeger/thrift-gen/agent"
	"github.com/jaegertracing/jaeger/thrift-gen/jaeger"
	"github.com/stretchr/testify/require"

	jaeger_thrift "jaeger-sender/internal/jaeger-thrift"
)

var testStart = time.Date(2021, 7, 1, 1, 1, 1, 0, time.UTC)

func testProcess() jaeger_thrift.Process {
	return jaeger_thrift.Process{
		ServiceName: "checkout",
		Tags: []jaeger_thrift.Tag{
			{Key: "hostname", Value: "host-1"},
			{Key: "ip", Value: "10.0.0.1"},
		},
	}
}

// envelopeOverhead is the size of an emitBatch datagram with no spans for
// testProcess.
func envelopeOverhead(t *testing.T) int {
	t.Helper()
	p, err := jaeger_thrift.ConvertProcess(testProcess())
	require.NoError(t, err)
	return jaeger_thrift.EmitBatchSize(jaeger_thrift.NewBatch(p, nil))
}

func testSpan(id uint64) *jaeger_thrift.Span {
	return &jaeger_thrift.Span{
		TraceID:       jaeger_thrift.NewTraceID(0, 1),
		SpanID:        id,
		OperationName: "op",
		Flags:         jaeger_thrift.FlagSampled,
		StartTime:     testStart,
		Duration:      time.Millisecond,
	}
}

// spanOfSize returns a span whose encoded size is exactly size bytes.
func spanOfSize(t *testing.T, id uint64, size int) *jaeger_thrift.Span {
	t.Helper()
	span := testSpan(id)
	span.OperationName = ""
	base, err := jaeger_thrift.SizeOfSpan(span)
	require.NoError(t, err)
	require.GreaterOrEqual(t, size, base, "span cannot be smaller than %d bytes", base)
	span.OperationName = strings.Repeat("x", size-base)

	got, err := jaeger_thrift.SizeOfSpan(span)
	require.NoError(t, err)
	require.Equal(t, size, got)
	return span
}

func badSpan(id uint64) *jaeger_thrift.Span {
	span := testSpan(id)
	span.Tags = []jaeger_thrift.Tag{{Key: "callback", Value: func() {}}}
	return span
}

// decodeDatagram parses an emitBatch datagram and returns its batch.
func decodeDatagram(t *testing.T, data []byte) *jaeger.Batch {
	t.Helper()
	ctx := context.Background()
	buf := thrift.NewTMemoryBuffer()
	_, err := buf.Write(data)
	require.NoError(t, err)
	p := thrift.NewTBinaryProtocolConf(buf, jaeger_thrift.ProtocolConfiguration())

	name, typeID, seqID, err := p.ReadMessageBegin(ctx)
	require.NoError(t, err)
	require.Equal(t, jaeger_thrift.EmitBatchMethod, name)
	require.Equal(t, thrift.ONEWAY, typeID)
	require.Equal(t, jaeger_thrift.EnvelopeSeqID, seqID)

	args := agent.NewAgentEmitBatchArgs()
	require.NoError(t, args.Read(ctx, p))
	require.NoError(t, p.ReadMessageEnd(ctx))
	return args.Batch
}

// decodeBatch parses a bare Thrift batch as posted to the collector.
func decodeBatch(t *testing.T, data []byte) *jaeger.Batch {
	t.Helper()
	b := jaeger.NewBatch()
	require.NoError(t, thrift.NewTDeserializer().Read(context.Background(), b, data))
	return b
}

func spanIDs(b *jaeger.Batch) []int64 {
	ids := make([]int64, 0, len(b.Spans))
	for _, s := range b.Spans {
		ids = append(ids, s.SpanId)
	}
	return ids
}

// packets records the datagrams written to a mocked connection.
type packets struct {
	mu   sync.Mutex
	data [][]byte
}

func (p *packets) write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = append(p.data, b)
	return len(b), nil
}

func (p *packets) all() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.data...)
}

func wait(t *testing.T, f interface {
	WaitContext(context.Context) (int, error)
}) (int, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n, err := f.WaitContext(ctx)
	require.NotEqual(t, context.DeadlineExceeded, err, "future did not resolve")
	return n, err
}
