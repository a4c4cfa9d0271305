package jaeger_sender

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/hashicorp/go-hclog"

	jaeger_thrift "jaeger-sender/internal/jaeger-thrift"
)

const (
	DefaultUDPHost       = "localhost"
	DefaultUDPPort       = 6832
	DefaultUDPSocketType = "udp4"
	// DefaultMaxPacketSize keeps datagrams under the 65507 byte UDP payload
	// limit.
	DefaultMaxPacketSize = 65000
)

// UDPOptions configures a UDPSender.
type UDPOptions struct {
	Host          string
	Port          int
	SocketType    string // udp, udp4 or udp6
	MaxPacketSize int
	Logger        hclog.Logger
	Metrics       *Metrics
	// Conn replaces the socket dialed from Host and Port.
	Conn PacketConn
}

// UDPSender packs spans into agent emitBatch datagrams, none of which
// exceeds MaxPacketSize.
type UDPSender struct {
	mu sync.Mutex

	conn          PacketConn
	maxPacketSize int
	overhead      int // encoded emitBatch message with no spans
	maxSpanBytes  int // maxPacketSize - overhead
	batch         batch
	closed        bool

	dispatcher *dispatcher
	log        hclog.Logger
	metrics    *Metrics
}

var _ Sender = (*UDPSender)(nil)

// NewUDPSender returns a sender writing to the agent at opts.Host and
// opts.Port, or to opts.Conn if set.
func NewUDPSender(opts UDPOptions) (*UDPSender, error) {
	if opts.Host == "" {
		opts.Host = DefaultUDPHost
	}
	if opts.Port == 0 {
		opts.Port = DefaultUDPPort
	}
	if opts.SocketType == "" {
		opts.SocketType = DefaultUDPSocketType
	}
	if opts.MaxPacketSize == 0 {
		opts.MaxPacketSize = DefaultMaxPacketSize
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil, "udp")
	}

	conn := opts.Conn
	if conn == nil {
		addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
		c, err := net.Dial(opts.SocketType, addr)
		if err != nil {
			return nil, fmt.Errorf("error connecting to agent at %s: %w", addr, err)
		}
		conn = c
	}

	s := &UDPSender{
		conn:          conn,
		maxPacketSize: opts.MaxPacketSize,
		log:           opts.Logger,
		metrics:       opts.Metrics,
	}
	s.dispatcher = newDispatcher("emitBatch udp", s.emit, s.log, s.metrics)
	return s, nil
}

// SetProcess fixes the process and computes the per-datagram overhead it
// implies.
func (s *UDPSender) SetProcess(process jaeger_thrift.Process) error {
	p, err := jaeger_thrift.ConvertProcess(process)
	if err != nil {
		return err
	}
	overhead := jaeger_thrift.EmitBatchSize(jaeger_thrift.NewBatch(p, nil))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch.process != nil {
		return ErrProcessAlreadySet
	}
	if overhead >= s.maxPacketSize {
		return fmt.Errorf("process encodes to %d bytes, leaving no room for spans in a %d byte packet",
			overhead, s.maxPacketSize)
	}
	s.batch.process = p
	s.overhead = overhead
	s.maxSpanBytes = s.maxPacketSize - overhead
	return nil
}

// MaxSpanBytes is the room left for spans in one datagram. It is 0 until
// SetProcess is called.
func (s *UDPSender) MaxSpanBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSpanBytes
}

// Append adds span to the current datagram. A span that does not fit
// flushes the datagram and starts the next one; the returned future then
// reports that flush.
func (s *UDPSender) Append(span *jaeger_thrift.Span) *Future {
	s.metrics.SpansAppended.Inc()
	ts, err := jaeger_thrift.ConvertSpan(span)
	if err != nil {
		s.metrics.dropped(dropEncoding, 1)
		return resolvedFuture(1, err)
	}
	size := jaeger_thrift.SpanSize(ts)

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
	if size > s.maxSpanBytes {
		s.metrics.dropped(dropTooLarge, 1)
		return resolvedFuture(1, &OversizeSpanError{Size: size, Max: s.maxSpanBytes})
	}

	if s.batch.bytes+size <= s.maxSpanBytes {
		s.batch.add(ts, size)
		if s.batch.bytes < s.maxSpanBytes {
			return resolvedFuture(0, nil)
		}
		return s.flushLocked()
	}

	f := s.flushLocked()
	s.batch.add(ts, size)
	return f
}

// Flush sends the current datagram, if it holds any spans.
func (s *UDPSender) Flush() *Future {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolvedFuture(0, ErrSenderClosed)
	}
	return s.flushLocked()
}

func (s *UDPSender) flushLocked() *Future {
	n := s.batch.len()
	if n == 0 {
		return resolvedFuture(0, nil)
	}

	// The batch is emptied before encoding so that a failure below never
	// leaves spans behind for a second attempt.
	spans, spanBytes := s.batch.take()

	b := jaeger_thrift.NewBatch(s.batch.process, spans)
	data, err := jaeger_thrift.SerializeEmitBatch(context.Background(), b, spanBytes+s.overhead)
	if err != nil {
		s.log.Error("error writing Thrift object", "spans", n, "err", err)
		s.metrics.dropped(dropEncoding, n)
		return resolvedFuture(n, err)
	}
	return s.dispatcher.submit(data, n)
}

func (s *UDPSender) emit(_ context.Context, data []byte) error {
	n, err := s.conn.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &TransportError{
			Op:         "sending spans over UDP",
			PacketSize: len(data),
			BytesSent:  n,
			Err:        err,
		}
	}
	return nil
}

// Close stops accepting spans, waits for queued datagrams to be written
// and closes the socket. Spans still in the current batch are discarded;
// call Flush first to send them.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.dispatcher.stop()
	s.mu.Unlock()

	s.dispatcher.wait()
	return s.conn.Close()
}
