package jaeger_sender

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	jaeger_thrift "jaeger-sender/internal/jaeger-thrift"
)

const (
	DefaultHTTPEndpoint     = "http://localhost:14268/api/traces"
	DefaultHTTPTimeout      = 5 * time.Second
	DefaultMaxSpanBatchSize = 100
)

// HTTPOptions configures an HTTPSender.
type HTTPOptions struct {
	Endpoint         string
	Username         string
	Password         string
	Timeout          time.Duration
	MaxSpanBatchSize int
	Logger           hclog.Logger
	Metrics          *Metrics
	// Client replaces the keep-alive client built from Timeout.
	Client HTTPClient
}

// HTTPSender posts Thrift-encoded batches to a collector, flushing every
// MaxSpanBatchSize spans.
type HTTPSender struct {
	mu sync.Mutex

	endpoint         string
	username         string
	password         string
	maxSpanBatchSize int
	client           HTTPClient
	batch            batch
	closed           bool

	dispatcher *dispatcher
	log        hclog.Logger
	metrics    *Metrics
}

var _ Sender = (*HTTPSender)(nil)

// NewHTTPSender returns a sender posting to opts.Endpoint.
func NewHTTPSender(opts HTTPOptions) *HTTPSender {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultHTTPEndpoint
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultHTTPTimeout
	}
	if opts.MaxSpanBatchSize <= 0 {
		opts.MaxSpanBatchSize = DefaultMaxSpanBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil, "http")
	}
	if opts.Client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableKeepAlives = false
		opts.Client = &http.Client{Transport: transport, Timeout: opts.Timeout}
	}

	s := &HTTPSender{
		endpoint:         opts.Endpoint,
		username:         opts.Username,
		password:         opts.Password,
		maxSpanBatchSize: opts.MaxSpanBatchSize,
		client:           opts.Client,
		log:              opts.Logger,
		metrics:          opts.Metrics,
	}
	s.dispatcher = newDispatcher("submitBatch http", s.emit, s.log, s.metrics)
	return s
}

// SetProcess fixes the process sent with every batch.
func (s *HTTPSender) SetProcess(process jaeger_thrift.Process) error {
	p, err := jaeger_thrift.ConvertProcess(process)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch.process != nil {
		return ErrProcessAlreadySet
	}
	s.batch.process = p
	return nil
}

// Append adds span to the batch and flushes once the batch holds
// MaxSpanBatchSize spans.
func (s *HTTPSender) Append(span *jaeger_thrift.Span) *Future {
	s.metrics.SpansAppended.Inc()
	ts, err := jaeger_thrift.ConvertSpan(span)
	if err != nil {
		s.metrics.dropped(dropEncoding, 1)
		return resolvedFuture(1, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.metrics.dropped(dropClosed, 1)
		return resolvedFuture(1, ErrSenderClosed)
	}
	if s.batch.process == nil {
		s.metrics.dropped(dropNoProcess, 1)
		return resolvedFuture(1, ErrProcessNotSet)
	}

	s.batch.add(ts, 0)
	if s.batch.len() >= s.maxSpanBatchSize {
		return s.flushLocked()
	}
	return resolvedFuture(0, nil)
}

// Flush posts the current batch, if it holds any spans.
func (s *HTTPSender) Flush() *Future {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolvedFuture(0, ErrSenderClosed)
	}
	return s.flushLocked()
}

func (s *HTTPSender) flushLocked() *Future {
	n := s.batch.len()
	if n == 0 {
		return resolvedFuture(0, nil)
	}

	// Cleared before encoding, even if encoding fails.
	spans, _ := s.batch.take()

	data, err := jaeger_thrift.SerializeBatch(context.Background(), jaeger_thrift.NewBatch(s.batch.process, spans))
	if err != nil {
		s.log.Error("error encoding Thrift batch", "spans", n, "err", err)
		s.metrics.dropped(dropEncoding, n)
		return resolvedFuture(n, err)
	}
	return s.dispatcher.submit(data, n)
}

func (s *HTTPSender) emit(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return &TransportError{Op: "building collector request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-thrift")
	req.Header.Set("Connection", "keep-alive")
	if s.username != "" && s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransportError{Op: "sending spans over HTTP", Err: err}
	}
	// Drain the body so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// A completed response delivers the batch whatever its status.
	if resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Warn("collector responded with an error status", "status", resp.Status, "endpoint", s.endpoint)
		s.metrics.ErrorResponses.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	}
	return nil
}

// Close stops accepting spans, waits for queued batches to be posted and
// releases idle keep-alive connections. Spans still in the current batch
// are discarded; call Flush first to send them.
func (s *HTTPSender) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.dispatcher.stop()
	s.mu.Unlock()

	s.dispatcher.wait()
	if c, ok := s.client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
	return nil
}
