package jaeger_sender_test

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jaeger_sender "jaeger-sender/internal/jaeger-sender"
)

func TestInitFromViperDefaults(t *testing.T) {
	opts := &jaeger_sender.Options{}
	opts.InitFromViper(viper.New())

	c := opts.Configuration
	assert.Equal(t, jaeger_sender.ProtocolUDP, c.ReporterProtocol)
	assert.Equal(t, "localhost", c.AgentHost)
	assert.Equal(t, 6832, c.AgentPort)
	assert.Equal(t, "udp4", c.AgentSocketType)
	assert.Equal(t, 65000, c.MaxPacketSize)
	assert.Equal(t, "http://localhost:14268/api/traces", c.CollectorEndpoint)
	assert.Equal(t, 5*time.Second, c.CollectorTimeout)
	assert.Equal(t, 100, c.MaxSpanBatchSize)
	assert.Equal(t, "jaeger-sender", c.ServiceName)
	assert.Equal(t, 10, c.NumTraces)
	assert.Equal(t, 5, c.SpansPerTrace)
	assert.Empty(t, c.MetricsAddr)
	assert.Zero(t, c.OtelTracingRatio)
}

func TestInitFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("reporter_protocol", "http")
	v.Set("collector_endpoint", "http://collector:14268/api/traces")
	v.Set("collector_username", "jaeger")
	v.Set("collector_password", "secret")
	v.Set("collector_timeout", "250ms")
	v.Set("max_span_batch_size", 2)
	v.Set("agent_port", "6831")
	v.Set("otel_tracing_ratio", 0.5)

	opts := &jaeger_sender.Options{}
	opts.InitFromViper(v)

	c := opts.Configuration
	assert.Equal(t, jaeger_sender.ProtocolHTTP, c.ReporterProtocol)
	assert.Equal(t, "http://collector:14268/api/traces", c.CollectorEndpoint)
	assert.Equal(t, "jaeger", c.CollectorUsername)
	assert.Equal(t, "secret", c.CollectorPassword)
	assert.Equal(t, 250*time.Millisecond, c.CollectorTimeout)
	assert.Equal(t, 2, c.MaxSpanBatchSize)
	assert.Equal(t, 6831, c.AgentPort)
	assert.Equal(t, 0.5, c.OtelTracingRatio)
}

func TestNewSender(t *testing.T) {
	agent, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer agent.Close()

	tests := []struct {
		name     string
		config   jaeger_sender.Configuration
		wantType interface{}
		wantErr  string
	}{
		{
			name: "udp",
			config: jaeger_sender.Configuration{
				ReporterProtocol: jaeger_sender.ProtocolUDP,
				AgentHost:        "127.0.0.1",
				AgentPort:        agent.LocalAddr().(*net.UDPAddr).Port,
				AgentSocketType:  "udp4",
			},
			wantType: &jaeger_sender.UDPSender{},
		},
		{
			name:     "http",
			config:   jaeger_sender.Configuration{ReporterProtocol: jaeger_sender.ProtocolHTTP},
			wantType: &jaeger_sender.HTTPSender{},
		},
		{
			name:    "unknown",
			config:  jaeger_sender.Configuration{ReporterProtocol: "grpc"},
			wantErr: `unknown reporter protocol "grpc"`,
		},
		{
			name: "bad socket type",
			config: jaeger_sender.Configuration{
				ReporterProtocol: jaeger_sender.ProtocolUDP,
				AgentSocketType:  "tcp9",
			},
			wantErr: "error connecting to agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &jaeger_sender.Options{Configuration: tt.config}
			s, err := opts.NewSender(hclog.NewNullLogger(), nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.wantType, s)
			require.NoError(t, s.SetProcess(testProcess()))
		})
	}
}
