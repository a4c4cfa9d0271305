package jaeger_thrift

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/jaegertracing/jaeger/thrift-gen/agent"
	"github.com/jaegertracing/jaeger/thrift-gen/jaeger"
)

const (
	// EmitBatchMethod is the agent method carried by every datagram.
	EmitBatchMethod = "emitBatch"
	// EnvelopeSeqID is the sequence id written in every datagram header.
	EnvelopeSeqID int32 = 0
)

var (
	// protocolConf is shared by every protocol instance and never mutated.
	protocolConf = &thrift.TConfiguration{
		TBinaryStrictRead:  thrift.BoolPtr(true),
		TBinaryStrictWrite: thrift.BoolPtr(true),
	}

	// Strict message header: version|type, method name, sequence id.
	envelopeHeaderSize = i32Size + stringSize(EmitBatchMethod) + i32Size
)

// ProtocolConfiguration returns the Thrift configuration used for encoding.
func ProtocolConfiguration() *thrift.TConfiguration {
	return protocolConf
}

// SerializeBatch encodes a batch as a bare Thrift struct, the body accepted
// by the collector's HTTP endpoint.
func SerializeBatch(ctx context.Context, batch *jaeger.Batch) ([]byte, error) {
	buf := thrift.NewTMemoryBufferLen(BatchSize(batch))
	p := thrift.NewTBinaryProtocolConf(buf, protocolConf)
	if err := batch.Write(ctx, p); err != nil {
		return nil, encodingError("writing batch", err)
	}
	if err := p.Flush(ctx); err != nil {
		return nil, encodingError("writing batch", err)
	}
	return buf.Bytes(), nil
}

// SerializeEmitBatch wraps batch in the agent's oneway emitBatch message
// (version 1, seqid 0) and encodes it into a buffer of exactly size bytes.
// The result is rejected if the written length differs from size.
func SerializeEmitBatch(ctx context.Context, batch *jaeger.Batch, size int) ([]byte, error) {
	buf := thrift.NewTMemoryBufferLen(size)
	p := thrift.NewTBinaryProtocolConf(buf, protocolConf)

	if err := p.WriteMessageBegin(ctx, EmitBatchMethod, thrift.ONEWAY, EnvelopeSeqID); err != nil {
		return nil, encodingError("writing message header", err)
	}
	args := agent.NewAgentEmitBatchArgs()
	args.Batch = batch
	if err := args.Write(ctx, p); err != nil {
		return nil, encodingError("writing batch", err)
	}
	if err := p.WriteMessageEnd(ctx); err != nil {
		return nil, encodingError("writing message end", err)
	}
	if err := p.Flush(ctx); err != nil {
		return nil, encodingError("writing batch", err)
	}

	if buf.Len() != size {
		return nil, encodingError("writing batch",
			fmt.Errorf("%w: wrote %d bytes, expected %d", ErrSizeMismatch, buf.Len(), size))
	}
	return buf.Bytes(), nil
}
