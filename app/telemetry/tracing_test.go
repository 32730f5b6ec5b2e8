package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/paw-chain/pawswap/app/telemetry"
)

func resetGlobals(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
	})
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := telemetry.NewProvider(telemetry.Config{})
	require.NoError(t, err)
	require.NoError(t, p.ForceFlush(context.Background()))
	require.NoError(t, p.Shutdown(context.Background()))

	_, span := telemetry.StartSpan(context.Background(), "noop")
	telemetry.EndSpan(span, nil)
	require.False(t, span.SpanContext().IsValid())
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     telemetry.Config
		wantErr string
	}{
		{"endpoint", telemetry.Config{Endpoint: "localhost:4318", SampleRate: 1}, ""},
		{"url endpoint", telemetry.Config{Endpoint: "http://collector:4318", SampleRate: 0.1}, ""},
		{"exporter without endpoint", telemetry.Config{SpanExporter: tracetest.NewInMemoryExporter()}, ""},
		{"missing endpoint", telemetry.Config{SampleRate: 1}, "endpoint is required"},
		{"bad endpoint", telemetry.Config{Endpoint: "http://[::1", SampleRate: 1}, "invalid endpoint"},
		{"sample rate", telemetry.Config{Endpoint: "localhost:4318", SampleRate: 1.5}, "sample rate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := telemetry.ValidateConfig(tc.cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProvider_SpansAndMetrics(t *testing.T) {
	resetGlobals(t)
	exporter := tracetest.NewInMemoryExporter()
	registry := promclient.NewRegistry()

	p, err := telemetry.NewProvider(telemetry.Config{
		Enabled:        true,
		SampleRate:     1,
		ChainID:        "pawswap-test-1",
		MetricsEnabled: true,
		Registerer:     registry,
		SpanExporter:   exporter,
	})
	require.NoError(t, err)

	ctx, span := telemetry.StartSpan(context.Background(), "tx.swap", attribute.Int64("block.height", 3))
	require.True(t, span.SpanContext().IsValid())
	_, child := telemetry.StartSpan(ctx, "amm.quote")
	telemetry.EndSpan(child, nil)
	telemetry.EndSpan(span, errors.New("output amount below minimum"))

	counter, err := telemetry.Meter().Int64Counter("pawswap.test.events")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	require.NoError(t, p.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	byName := make(map[string]tracetest.SpanStub)
	for _, s := range spans {
		byName[s.Name] = s
	}
	require.Equal(t, codes.Ok, byName["amm.quote"].Status.Code)
	require.Equal(t, byName["tx.swap"].SpanContext.SpanID(), byName["amm.quote"].Parent.SpanID())
	require.Equal(t, codes.Error, byName["tx.swap"].Status.Code)
	require.Len(t, byName["tx.swap"].Events, 1)
	require.Contains(t, byName["tx.swap"].Attributes, attribute.Int64("block.height", 3))

	families, err := registry.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "pawswap_test_events") {
			found = true
			require.Equal(t, float64(2), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, found, "counter not exported")

	require.NoError(t, p.Shutdown(context.Background()))
}
