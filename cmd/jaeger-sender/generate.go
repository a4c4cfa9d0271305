package main

import (
	"fmt"
	"time"

	"github.com/jaegertracing/jaeger/model"
)

var operations = map[int]string{0: "grpc", 1: "http", 2: "spark", 3: "redis"}

func statusTags(code int64) []model.KeyValue {
	return []model.KeyValue{
		model.Int64("http.status_code", code),
		model.Bool("error", code >= 400),
	}
}

// generateProcess describes the reporting service.
func generateProcess(serviceName, hostname string) *model.Process {
	return model.NewProcess(serviceName, []model.KeyValue{
		model.String("hostname", hostname),
		model.String("jaeger.version", "Go-1.0"),
	})
}

// generateTraces builds numTraces traces of spansPerTrace spans each. Each
// span is a child of the previous one in its trace, and every tenth trace
// fails.
func generateTraces(numTraces, spansPerTrace int, start time.Time) []*model.Span {
	spans := make([]*model.Span, 0, numTraces*spansPerTrace)
	for i := 0; i < numTraces; i++ {
		traceID := model.NewTraceID(uint64(i+1), uint64(start.UnixNano())+uint64(i))
		tags := statusTags(200)
		if i%10 == 0 {
			tags = statusTags(500)
		}
		for j := 0; j < spansPerTrace; j++ {
			spanStart := start.Add(time.Duration(i*spansPerTrace+j) * time.Millisecond)
			s := &model.Span{
				TraceID:       traceID,
				SpanID:        model.NewSpanID(uint64(i*spansPerTrace + j + 1)),
				OperationName: operations[j%4],
				References:    []model.SpanRef{},
				Flags:         model.SampledFlag,
				StartTime:     spanStart,
				Duration:      time.Duration(spansPerTrace-j) * time.Millisecond,
				Tags:          tags,
				Logs: []model.Log{
					{
						Timestamp: spanStart,
						Fields:    []model.KeyValue{model.String("event", fmt.Sprintf("step %d", j))},
					},
				},
			}
			if j > 0 {
				parent := model.NewSpanID(uint64(i*spansPerTrace + j))
				s.References = append(s.References, model.NewChildOfRef(traceID, parent))
			}
			spans = append(spans, s)
		}
	}
	return spans
}
