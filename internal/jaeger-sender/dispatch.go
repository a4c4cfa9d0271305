package jaeger_sender

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("jaeger-sender")

// emitFunc delivers one encoded batch.
type emitFunc func(ctx context.Context, data []byte) error

type payload struct {
	data  []byte
	spans int
	done  *Future
}

// dispatcher delivers encoded batches from a single goroutine, in the
// order they were submitted. Pending batches are never dropped; only the
// transport can fail one. submit and stop must be serialized by the owning
// sender.
type dispatcher struct {
	name string
	emit emitFunc

	mu      sync.Mutex
	ready   *sync.Cond
	pending []payload
	stopped bool

	wg      sync.WaitGroup
	log     hclog.Logger
	metrics *Metrics
}

func newDispatcher(name string, emit emitFunc, logger hclog.Logger, metrics *Metrics) *dispatcher {
	d := &dispatcher{
		name:    name,
		emit:    emit,
		log:     logger,
		metrics: metrics,
	}
	d.ready = sync.NewCond(&d.mu)
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for {
		p, ok := d.next()
		if !ok {
			return
		}
		d.send(p)
	}
}

// next blocks until a batch is pending. It reports false once the
// dispatcher is stopped and drained.
func (d *dispatcher) next() (payload, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.pending) == 0 && !d.stopped {
		d.ready.Wait()
	}
	if len(d.pending) == 0 {
		return payload{}, false
	}
	p := d.pending[0]
	d.pending[0] = payload{}
	d.pending = d.pending[1:]
	return p, true
}

func (d *dispatcher) send(p payload) {
	ctx, span := tracer.Start(context.Background(), d.name)
	defer span.End()
	span.SetAttributes(
		attribute.Key("spans").Int(p.spans),
		attribute.Key("bytes").Int(len(p.data)),
	)

	if err := d.emit(ctx, p.data); err != nil {
		span.SetStatus(codes.Error, err.Error())
		d.log.Error("error sending spans", "spans", p.spans, "err", err)
		d.metrics.dropped(dropTransport, p.spans)
		p.done.resolve(p.spans, err)
		return
	}
	d.metrics.SpansFlushed.Add(float64(p.spans))
	d.metrics.BytesEmitted.Add(float64(len(p.data)))
	p.done.resolve(p.spans, nil)
}

// submit queues data for delivery after every batch submitted before it.
// It never blocks on the transport.
func (d *dispatcher) submit(data []byte, spans int) *Future {
	f := newFuture()
	d.mu.Lock()
	d.pending = append(d.pending, payload{data: data, spans: spans, done: f})
	d.mu.Unlock()
	d.ready.Signal()
	return f
}

// stop stops accepting batches; wait blocks until the pending ones are
// delivered.
func (d *dispatcher) stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.ready.Broadcast()
}

func (d *dispatcher) wait() {
	d.wg.Wait()
}
