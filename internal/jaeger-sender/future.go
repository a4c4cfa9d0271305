package jaeger_sender

import "context"

// Future is the outcome of an Append or Flush. It resolves once, with the
// number of spans the operation flushed and any error. A failed future's
// count is the number of spans lost.
type Future struct {
	done    chan struct{}
	flushed int
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func resolvedFuture(flushed int, err error) *Future {
	f := newFuture()
	f.resolve(flushed, err)
	return f
}

// Resolved returns a future that has already resolved, for Sender
// implementations outside this package.
func Resolved(flushed int, err error) *Future {
	return resolvedFuture(flushed, err)
}

// resolve must be called exactly once.
func (f *Future) resolve(flushed int, err error) {
	f.flushed = flushed
	f.err = err
	close(f.done)
}

// Done is closed when the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves.
func (f *Future) Wait() (int, error) {
	<-f.done
	return f.flushed, f.err
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if ctx ends
// first; the operation itself is not cancelled.
func (f *Future) WaitContext(ctx context.Context) (int, error) {
	select {
	case <-f.done:
		return f.flushed, f.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
