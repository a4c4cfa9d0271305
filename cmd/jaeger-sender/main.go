package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	jaeger_sender "jaeger-sender/internal/jaeger-sender"
	jaeger_thrift "jaeger-sender/internal/jaeger-thrift"
)

var configPath string

func main() {
	flag.StringVar(&configPath, "config", "", "A path to the sender's configuration file")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "jaeger-sender",
		Level:      hclog.Info,
		JSONFormat: true,
	})

	zl, err := zap.NewProduction()
	if err != nil {
		logger.Error("failed to build zap logger", "err", err)
		os.Exit(1)
	}
	defer zl.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zl)

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	if configPath != "" { // If configPath is absent from arguments, use defaults and env
		v.SetConfigFile(configPath)
		err := v.ReadInConfig()
		if err != nil {
			logger.Error("failed to parse configuration file", "err", err)
			os.Exit(1)
		}
	}

	opts := jaeger_sender.Options{}
	opts.InitFromViper(v)
	c := opts.Configuration

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	tp, err := newTracerProvider(c)
	if err != nil {
		logger.Error("failed to create tracer provider", "err", err)
		os.Exit(1)
	}
	if tp != nil {
		otel.SetTracerProvider(tp)
	}

	reg := prometheus.NewRegistry()
	metrics := jaeger_sender.NewMetrics(reg, c.ReporterProtocol)
	if c.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              c.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "addr", c.MetricsAddr, "err", err)
			}
		}()
		defer srv.Close()
	}

	sender, err := opts.NewSender(logger, metrics)
	if err != nil {
		logger.Error("failed to create sender", "err", err)
		os.Exit(1)
	}

	hostname, _ := os.Hostname()
	process := jaeger_thrift.FromModelProcess(generateProcess(c.ServiceName, hostname))
	if err := sender.SetProcess(process); err != nil {
		logger.Error("failed to set process", "err", err)
		os.Exit(1)
	}

	spans := generateTraces(c.NumTraces, c.SpansPerTrace, time.Now())
	sum, reportErr := report(ctx, sender, spans)
	zap.S().Infow("reported synthetic traces",
		"protocol", c.ReporterProtocol,
		"traces", c.NumTraces,
		"appended", sum.appended,
		"flushed", sum.flushed,
		"failed", sum.failed,
	)

	err = multierr.Combine(reportErr, sender.Close())
	if tp != nil {
		err = multierr.Append(err, tp.Shutdown(ctx))
	}
	if err != nil {
		for _, e := range multierr.Errors(err) {
			logger.Error("error reporting spans", "err", e)
		}
		os.Exit(1)
	}
}

// newTracerProvider returns nil when self-tracing is disabled.
func newTracerProvider(c jaeger_sender.Configuration) (*sdktrace.TracerProvider, error) {
	if c.OtelTracingRatio <= 0 {
		return nil, nil
	}
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(c.OtelExporterEndpoint)))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.OtelTracingRatio))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", c.ServiceName+"-self"),
		)),
	), nil
}
