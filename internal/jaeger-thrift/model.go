package jaeger_thrift

import (
	"github.com/jaegertracing/jaeger/model"
	"github.com/opentracing/opentracing-go"
)

// FromModel converts a Jaeger domain span. The span's process is not part
// of the result; it belongs to the sender.
func FromModel(span *model.Span) *Span {
	out := &Span{
		TraceID:       NewTraceID(span.TraceID.High, span.TraceID.Low),
		SpanID:        uint64(span.SpanID),
		ParentSpanID:  uint64(span.ParentSpanID()),
		OperationName: span.OperationName,
		Flags:         Flags(span.Flags),
		StartTime:     span.StartTime,
		Duration:      span.Duration,
		Tags:          fromKeyValues(span.Tags),
	}
	for _, ref := range span.References {
		refType := opentracing.ChildOfRef
		if ref.RefType == model.FollowsFrom {
			refType = opentracing.FollowsFromRef
		}
		out.References = append(out.References, SpanRef{
			Type:    refType,
			TraceID: NewTraceID(ref.TraceID.High, ref.TraceID.Low),
			SpanID:  uint64(ref.SpanID),
		})
	}
	for _, l := range span.Logs {
		out.Logs = append(out.Logs, Log{
			Timestamp: l.Timestamp,
			Fields:    fromKeyValues(l.Fields),
		})
	}
	return out
}

// FromModelProcess converts a Jaeger domain process.
func FromModelProcess(process *model.Process) Process {
	return Process{
		ServiceName: process.ServiceName,
		Tags:        fromKeyValues(process.Tags),
	}
}

func fromKeyValues(kvs model.KeyValues) []Tag {
	tags := make([]Tag, 0, len(kvs))
	for _, kv := range kvs {
		tags = append(tags, Tag{Key: kv.Key, Value: kv.Value()})
	}
	return tags
}
