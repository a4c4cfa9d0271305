package jaeger_thrift

import (
	"fmt"
	"reflect"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/jaegertracing/jaeger/thrift-gen/jaeger"
	jsoniter "github.com/json-iterator/go"
	"github.com/opentracing/opentracing-go"
)

// Structured tag values are rendered with sorted map keys so the encoded
// bytes are stable across runs.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var emptyBinary = []byte{}

// ConvertTag maps a tag onto the flattened Thrift tag. The value type is
// chosen once here:
//
//	error                                     STRING via Error()
//	numbers (every int, uint and float kind)  DOUBLE, even if a fmt.Stringer
//	bool                                      BOOL
//	[]byte                                    BINARY
//	string                                    STRING
//	other fmt.Stringer                        STRING via String()
//	nil, maps, slices, arrays, structs        STRING holding the JSON rendering
//
// Every slot is populated, the unused ones with zero values.
func ConvertTag(tag Tag) (*jaeger.Tag, error) {
	t := &jaeger.Tag{
		Key:     tag.Key,
		VStr:    thrift.StringPtr(""),
		VDouble: thrift.Float64Ptr(0),
		VBool:   thrift.BoolPtr(false),
		VLong:   thrift.Int64Ptr(0),
		VBinary: emptyBinary,
	}

	switch v := tag.Value.(type) {
	case nil:
		t.VType = jaeger.TagType_STRING
		*t.VStr = "null"
	case bool:
		t.VType = jaeger.TagType_BOOL
		*t.VBool = v
	case []byte:
		t.VType = jaeger.TagType_BINARY
		t.VBinary = v
	case string:
		t.VType = jaeger.TagType_STRING
		*t.VStr = v
	case error:
		t.VType = jaeger.TagType_STRING
		*t.VStr = v.Error()
	default:
		rv := reflect.ValueOf(v)
		if s, ok := v.(fmt.Stringer); ok && !isNumber(rv.Kind()) {
			t.VType = jaeger.TagType_STRING
			*t.VStr = s.String()
			break
		}
		if err := convertReflected(t, rv); err != nil {
			return nil, encodingError(fmt.Sprintf("converting tag %q", tag.Key), err)
		}
	}
	return t, nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func convertReflected(t *jaeger.Tag, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		t.VType = jaeger.TagType_DOUBLE
		*t.VDouble = rv.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		t.VType = jaeger.TagType_DOUBLE
		*t.VDouble = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		t.VType = jaeger.TagType_DOUBLE
		*t.VDouble = float64(rv.Uint())
	case reflect.Bool:
		t.VType = jaeger.TagType_BOOL
		*t.VBool = rv.Bool()
	case reflect.String:
		t.VType = jaeger.TagType_STRING
		*t.VStr = rv.String()
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr, reflect.Interface:
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedTagValue, err)
		}
		t.VType = jaeger.TagType_STRING
		*t.VStr = string(b)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTagValue, rv.Kind())
	}
	return nil
}

// ConvertTags converts tags in order. The result is never nil.
func ConvertTags(tags []Tag) ([]*jaeger.Tag, error) {
	out := make([]*jaeger.Tag, 0, len(tags))
	for _, tag := range tags {
		t, err := ConvertTag(tag)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ConvertLog converts a log, expressing its timestamp in microseconds.
func ConvertLog(log Log) (*jaeger.Log, error) {
	fields, err := ConvertTags(log.Fields)
	if err != nil {
		return nil, err
	}
	return &jaeger.Log{
		Timestamp: log.Timestamp.UnixMicro(),
		Fields:    fields,
	}, nil
}

// ConvertSpanRefs converts references in order, dropping reference types
// other than child-of and follows-from.
func ConvertSpanRefs(refs []SpanRef) ([]*jaeger.SpanRef, error) {
	out := make([]*jaeger.SpanRef, 0, len(refs))
	for _, ref := range refs {
		var refType jaeger.SpanRefType
		switch ref.Type {
		case opentracing.ChildOfRef:
			refType = jaeger.SpanRefType_CHILD_OF
		case opentracing.FollowsFromRef:
			refType = jaeger.SpanRefType_FOLLOWS_FROM
		default:
			continue
		}
		high, low, err := ref.TraceID.Split()
		if err != nil {
			return nil, encodingError("converting span reference", err)
		}
		out = append(out, &jaeger.SpanRef{
			RefType:     refType,
			TraceIdLow:  int64(low),
			TraceIdHigh: int64(high),
			SpanId:      int64(ref.SpanID),
		})
	}
	return out, nil
}

// ConvertSpan converts a span into its Thrift representation.
func ConvertSpan(span *Span) (*jaeger.Span, error) {
	high, low, err := span.TraceID.Split()
	if err != nil {
		return nil, encodingError("converting span", err)
	}
	refs, err := ConvertSpanRefs(span.References)
	if err != nil {
		return nil, err
	}
	tags, err := ConvertTags(span.Tags)
	if err != nil {
		return nil, err
	}
	logs := make([]*jaeger.Log, 0, len(span.Logs))
	for _, l := range span.Logs {
		jl, err := ConvertLog(l)
		if err != nil {
			return nil, err
		}
		logs = append(logs, jl)
	}
	return &jaeger.Span{
		TraceIdLow:    int64(low),
		TraceIdHigh:   int64(high),
		SpanId:        int64(span.SpanID),
		ParentSpanId:  int64(span.ParentSpanID),
		OperationName: span.OperationName,
		References:    refs,
		Flags:         int32(span.Flags),
		StartTime:     span.StartTime.UnixMicro(),
		Duration:      span.Duration.Microseconds(),
		Tags:          tags,
		Logs:          logs,
	}, nil
}

// ConvertProcess converts the process description.
func ConvertProcess(process Process) (*jaeger.Process, error) {
	tags, err := ConvertTags(process.Tags)
	if err != nil {
		return nil, err
	}
	return &jaeger.Process{
		ServiceName: process.ServiceName,
		Tags:        tags,
	}, nil
}

// NewBatch assembles a batch. A nil span slice is replaced by an empty one.
func NewBatch(process *jaeger.Process, spans []*jaeger.Span) *jaeger.Batch {
	if spans == nil {
		spans = []*jaeger.Span{}
	}
	return &jaeger.Batch{
		Process: process,
		Spans:   spans,
	}
}
