package jaeger_sender

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Reasons a span is dropped.
const (
	dropEncoding  = "encoding"
	dropTooLarge  = "too_large"
	dropTransport = "transport"
	dropClosed    = "closed"
	dropNoProcess = "no_process"
)

// Metrics counts what a sender does with spans. ErrorResponses counts
// collector replies with a status of 300 or more, whose batches still count
// as flushed.
type Metrics struct {
	SpansAppended  prometheus.Counter
	SpansFlushed   prometheus.Counter
	SpansDropped   *prometheus.CounterVec
	BytesEmitted   prometheus.Counter
	ErrorResponses *prometheus.CounterVec
}

// NewMetrics creates the sender counters labelled with the sender type
// and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer, sender string) *Metrics {
	labels := prometheus.Labels{"sender": sender}
	m := &Metrics{
		SpansAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jaeger_sender",
			Name:        "spans_appended_total",
			Help:        "Spans passed to Append.",
			ConstLabels: labels,
		}),
		SpansFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jaeger_sender",
			Name:        "spans_flushed_total",
			Help:        "Spans delivered to the transport.",
			ConstLabels: labels,
		}),
		SpansDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "jaeger_sender",
			Name:        "spans_dropped_total",
			Help:        "Spans lost, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
		BytesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "jaeger_sender",
			Name:        "bytes_emitted_total",
			Help:        "Encoded bytes delivered to the transport.",
			ConstLabels: labels,
		}),
		ErrorResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "jaeger_sender",
			Name:        "collector_error_responses_total",
			Help:        "Collector responses with a status of 300 or more.",
			ConstLabels: labels,
		}, []string{"code"}),
	}
	if reg != nil {
		reg.MustRegister(m.SpansAppended, m.SpansFlushed, m.SpansDropped, m.BytesEmitted, m.ErrorResponses)
	}
	return m
}

func (m *Metrics) dropped(reason string, n int) {
	if n > 0 {
		m.SpansDropped.WithLabelValues(reason).Add(float64(n))
	}
}
