package jaeger_sender

import (
	"github.com/jaegertracing/jaeger/thrift-gen/jaeger"
)

// batch accumulates spans for one sender. The process is set once and
// survives every reset.
type batch struct {
	process *jaeger.Process
	spans   []*jaeger.Span
	bytes   int // encoded size of spans, tracked by the UDP sender only
}

func (b *batch) add(span *jaeger.Span, size int) {
	b.spans = append(b.spans, span)
	b.bytes += size
}

func (b *batch) len() int {
	return len(b.spans)
}

// take hands the pending spans to the caller and leaves the batch empty.
func (b *batch) take() ([]*jaeger.Span, int) {
	spans, size := b.spans, b.bytes
	b.reset()
	return spans, size
}

func (b *batch) reset() {
	b.spans = nil
	b.bytes = 0
}
