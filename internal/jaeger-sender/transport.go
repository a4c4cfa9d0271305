package jaeger_sender

//go:generate mockgen -source=transport.go -destination=../../mocks/mock_transport.go -package=mocks

import (
	"io"
	"net/http"

	jaeger_thrift "jaeger-sender/internal/jaeger-thrift"
)

// Sender batches spans and reports them out of process.
type Sender interface {
	// SetProcess fixes the process reported with every batch. It must be
	// called once, before the first Append.
	SetProcess(process jaeger_thrift.Process) error

	// Append adds a span to the current batch, flushing when the batch is
	// full. The future reports the spans flushed, or 1 and an error if the
	// span itself was rejected.
	Append(span *jaeger_thrift.Span) *Future

	// Flush submits the current batch.
	Flush() *Future

	io.Closer
}

// PacketConn is the datagram socket used by UDPSender. A connected
// *net.UDPConn satisfies it.
type PacketConn interface {
	Write(b []byte) (int, error)
	Close() error
}

// HTTPClient issues collector requests for HTTPSender. *http.Client
// satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
