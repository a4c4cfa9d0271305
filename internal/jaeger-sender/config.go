package jaeger_sender

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

const (
	reporterProtocol     = "reporter_protocol"
	agentHost            = "agent_host"
	agentPort            = "agent_port"
	agentSocketType      = "agent_socket_type"
	maxPacketSize        = "max_packet_size"
	collectorEndpoint    = "collector_endpoint"
	collectorUsername    = "collector_username"
	collectorPassword    = "collector_password"
	collectorTimeout     = "collector_timeout"
	maxSpanBatchSize     = "max_span_batch_size"
	serviceName          = "service_name"
	numTraces            = "num_traces"
	spansPerTrace        = "spans_per_trace"
	metricsAddr          = "metrics_addr"
	otelTracingRatio     = "otel_tracing_ratio"
	otelExporterEndpoint = "otel_exporter_endpoint"
)

// Protocols accepted in reporter_protocol.
const (
	ProtocolUDP  = "udp"
	ProtocolHTTP = "http"
)

type Configuration struct {
	ReporterProtocol     string        `yaml:"reporter_protocol"`
	AgentHost            string        `yaml:"agent_host"`
	AgentPort            int           `yaml:"agent_port"`
	AgentSocketType      string        `yaml:"agent_socket_type"`
	MaxPacketSize        int           `yaml:"max_packet_size"`
	CollectorEndpoint    string        `yaml:"collector_endpoint"`
	CollectorUsername    string        `yaml:"collector_username"`
	CollectorPassword    string        `yaml:"collector_password"`
	CollectorTimeout     time.Duration `yaml:"collector_timeout"`
	MaxSpanBatchSize     int           `yaml:"max_span_batch_size"`
	ServiceName          string        `yaml:"service_name"`
	NumTraces            int           `yaml:"num_traces"`
	SpansPerTrace        int           `yaml:"spans_per_trace"`
	MetricsAddr          string        `yaml:"metrics_addr"`
	OtelTracingRatio     float64       `yaml:"otel_tracing_ratio"`
	OtelExporterEndpoint string        `yaml:"otel_exporter_endpoint"`
}

// Options stores the configuration entries for the sender
type Options struct {
	Configuration Configuration
}

// InitFromViper initializes the options struct with values from Viper
func (opt *Options) InitFromViper(v *viper.Viper) {

	v.SetDefault(reporterProtocol, ProtocolUDP)
	v.SetDefault(agentHost, DefaultUDPHost)
	v.SetDefault(agentPort, DefaultUDPPort)
	v.SetDefault(agentSocketType, DefaultUDPSocketType)
	v.SetDefault(maxPacketSize, DefaultMaxPacketSize)
	v.SetDefault(collectorEndpoint, DefaultHTTPEndpoint)
	v.SetDefault(collectorTimeout, DefaultHTTPTimeout.String())
	v.SetDefault(maxSpanBatchSize, DefaultMaxSpanBatchSize)
	v.SetDefault(serviceName, "jaeger-sender")
	v.SetDefault(numTraces, 10)
	v.SetDefault(spansPerTrace, 5)
	v.SetDefault(otelTracingRatio, 0.0) // tracing is disabled by default
	v.SetDefault(otelExporterEndpoint, DefaultHTTPEndpoint)

	opt.Configuration.ReporterProtocol = v.GetString(reporterProtocol)
	opt.Configuration.AgentHost = v.GetString(agentHost)
	opt.Configuration.AgentPort = v.GetInt(agentPort)
	opt.Configuration.AgentSocketType = v.GetString(agentSocketType)
	opt.Configuration.MaxPacketSize = v.GetInt(maxPacketSize)
	opt.Configuration.CollectorEndpoint = v.GetString(collectorEndpoint)
	opt.Configuration.CollectorUsername = v.GetString(collectorUsername)
	opt.Configuration.CollectorPassword = v.GetString(collectorPassword)
	opt.Configuration.CollectorTimeout = v.GetDuration(collectorTimeout)
	opt.Configuration.MaxSpanBatchSize = v.GetInt(maxSpanBatchSize)
	opt.Configuration.ServiceName = v.GetString(serviceName)
	opt.Configuration.NumTraces = v.GetInt(numTraces)
	opt.Configuration.SpansPerTrace = v.GetInt(spansPerTrace)
	opt.Configuration.MetricsAddr = v.GetString(metricsAddr)
	opt.Configuration.OtelTracingRatio = v.GetFloat64(otelTracingRatio)
	opt.Configuration.OtelExporterEndpoint = v.GetString(otelExporterEndpoint)
}

// NewSender builds the sender selected by reporter_protocol.
func (opt *Options) NewSender(logger hclog.Logger, metrics *Metrics) (Sender, error) {
	c := opt.Configuration
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	switch c.ReporterProtocol {
	case ProtocolUDP:
		s, err := NewUDPSender(UDPOptions{
			Host:          c.AgentHost,
			Port:          c.AgentPort,
			SocketType:    c.AgentSocketType,
			MaxPacketSize: c.MaxPacketSize,
			Logger:        logger.Named("udp"),
			Metrics:       metrics,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case ProtocolHTTP:
		return NewHTTPSender(HTTPOptions{
			Endpoint:         c.CollectorEndpoint,
			Username:         c.CollectorUsername,
			Password:         c.CollectorPassword,
			Timeout:          c.CollectorTimeout,
			MaxSpanBatchSize: c.MaxSpanBatchSize,
			Logger:           logger.Named("http"),
			Metrics:          metrics,
		}), nil
	}
	return nil, fmt.Errorf("unknown reporter protocol %q, expected %q or %q", c.ReporterProtocol, ProtocolUDP, ProtocolHTTP)
}
