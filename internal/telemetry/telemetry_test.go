package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendidero/shiptastic-ups/internal/telemetry"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, telemetry.ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, telemetry.ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, telemetry.ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, telemetry.ParseLevel("verbose"))
}

func TestNewLogger(t *testing.T) {
	logger, err := telemetry.NewLogger("debug", "shiptastic-ups", "test")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	// Logging without a span in the context must not panic.
	logger.Ctx(context.Background()).Warn("token refresh failed")
}

func TestMetrics_RecordError(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())

	m.RecordError("ups", shipper.NewAuthError("ups", "rejected"))
	m.RecordError("ups", shipper.NewAuthError("ups", "rejected"))
	m.RecordError("ups", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CarrierErrors.WithLabelValues("ups", "auth", "auth")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CarrierErrors.WithLabelValues("ups", "internal", "unknown")))
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("get_label", "ups", "success", 0.4)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("get_label", "ups", "success")))
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	provider, shutdown, err := telemetry.InitTracer(context.Background(), "", "svc", "1.0")
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_OTLP(t *testing.T) {
	provider, shutdown, err := telemetry.InitTracer(context.Background(), "http://127.0.0.1:4318", "svc", "1.0",
		attribute.Bool("ups.sandbox", true),
		attribute.String("token.cache", "memory"),
	)
	require.NoError(t, err)

	_, span := provider.Tracer("test").Start(context.Background(), "op")
	span.End()

	// Export to a closed port fails; shutdown still returns.
	_ = shutdown(context.Background())
}
