package jaeger_thrift

import (
	"github.com/jaegertracing/jaeger/thrift-gen/jaeger"
)

// Sizes of TBinaryProtocol primitives.
const (
	fieldHeaderSize = 1 + 2 // type + field id
	fieldStopSize   = 1
	listHeaderSize  = 1 + 4 // element type + count
	lengthPrefix    = 4
	i32Size         = 4
	i64Size         = 8
	doubleSize      = 8
	boolSize        = 1

	i64FieldSize    = fieldHeaderSize + i64Size
	i32FieldSize    = fieldHeaderSize + i32Size
	spanRefSize     = i32FieldSize + 3*i64FieldSize + fieldStopSize
	clientStatsSize = 3*i64FieldSize + fieldStopSize
)

func stringSize(s string) int {
	return lengthPrefix + len(s)
}

// TagSize is the encoded length of a tag.
func TagSize(t *jaeger.Tag) int {
	n := fieldHeaderSize + stringSize(t.Key)
	n += i32FieldSize
	if t.IsSetVStr() {
		n += fieldHeaderSize + stringSize(*t.VStr)
	}
	if t.IsSetVDouble() {
		n += fieldHeaderSize + doubleSize
	}
	if t.IsSetVBool() {
		n += fieldHeaderSize + boolSize
	}
	if t.IsSetVLong() {
		n += i64FieldSize
	}
	if t.IsSetVBinary() {
		n += fieldHeaderSize + lengthPrefix + len(t.VBinary)
	}
	return n + fieldStopSize
}

func tagListSize(tags []*jaeger.Tag) int {
	n := listHeaderSize
	for _, t := range tags {
		n += TagSize(t)
	}
	return n
}

// LogSize is the encoded length of a log.
func LogSize(l *jaeger.Log) int {
	return i64FieldSize + fieldHeaderSize + tagListSize(l.Fields) + fieldStopSize
}

// SpanSize is the encoded length of a span.
func SpanSize(s *jaeger.Span) int {
	n := 4*i64FieldSize + fieldHeaderSize + stringSize(s.OperationName)
	if s.IsSetReferences() {
		n += fieldHeaderSize + listHeaderSize + len(s.References)*spanRefSize
	}
	n += i32FieldSize + 2*i64FieldSize
	if s.IsSetTags() {
		n += fieldHeaderSize + tagListSize(s.Tags)
	}
	if s.IsSetLogs() {
		n += fieldHeaderSize + listHeaderSize
		for _, l := range s.Logs {
			n += LogSize(l)
		}
	}
	return n + fieldStopSize
}

// ProcessSize is the encoded length of a process.
func ProcessSize(p *jaeger.Process) int {
	n := fieldHeaderSize + stringSize(p.ServiceName)
	if p.IsSetTags() {
		n += fieldHeaderSize + tagListSize(p.Tags)
	}
	return n + fieldStopSize
}

// BatchSize is the encoded length of a batch.
func BatchSize(b *jaeger.Batch) int {
	n := fieldHeaderSize + ProcessSize(b.Process)
	n += fieldHeaderSize + listHeaderSize
	for _, s := range b.Spans {
		n += SpanSize(s)
	}
	if b.IsSetSeqNo() {
		n += i64FieldSize
	}
	if b.IsSetStats() {
		n += fieldHeaderSize + clientStatsSize
	}
	return n + fieldStopSize
}

// EmitBatchSize is the encoded length of the agent emitBatch message
// carrying b.
func EmitBatchSize(b *jaeger.Batch) int {
	return envelopeHeaderSize + fieldHeaderSize + BatchSize(b) + fieldStopSize
}

// SizeOfSpan converts span and returns its encoded length. It fails only
// when the span cannot be converted.
func SizeOfSpan(span *Span) (int, error) {
	s, err := ConvertSpan(span)
	if err != nil {
		return 0, err
	}
	return SpanSize(s), nil
}
