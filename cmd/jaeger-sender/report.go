package main

import (
	"context"

	"github.com/jaegertracing/jaeger/model"
	"go.uber.org/multierr"

	jaeger_sender "jaeger-sender/internal/jaeger-sender"
	jaeger_thrift "jaeger-sender/internal/jaeger-thrift"
)

type summary struct {
	appended int
	flushed  int
	failed   int
}

// report appends every span, flushes the remainder and waits for all
// outcomes. Failures are counted and combined into the returned error.
func report(ctx context.Context, sender jaeger_sender.Sender, spans []*model.Span) (summary, error) {
	futures := make([]*jaeger_sender.Future, 0, len(spans)+1)
	for _, s := range spans {
		futures = append(futures, sender.Append(jaeger_thrift.FromModel(s)))
	}
	futures = append(futures, sender.Flush())

	sum := summary{appended: len(spans)}
	var errs error
	for _, f := range futures {
		n, err := f.WaitContext(ctx)
		if err != nil {
			sum.failed += n
			errs = multierr.Append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		sum.flushed += n
	}
	return sum, errs
}
