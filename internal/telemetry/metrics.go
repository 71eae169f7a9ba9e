package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CarrierErrors   *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiptastic_requests_total",
				Help: "Total number of carrier operations by operation, carrier and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiptastic_request_duration_seconds",
				Help:    "Carrier operation duration in seconds by operation and carrier",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 100},
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiptastic_carrier_errors_total",
				Help: "Total carrier errors by carrier, error kind and code",
			},
			[]string{"carrier", "kind", "code"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error by kind. Errors that are not carrier
// errors are counted as kind "internal".
func (m *Metrics) RecordError(carrier string, err error) {
	kind, code := "internal", "unknown"

	var shipperErr *shipper.ShipperError
	if errors.As(err, &shipperErr) {
		kind, code = string(shipperErr.Kind), shipperErr.Code
	}
	m.CarrierErrors.WithLabelValues(carrier, kind, code).Inc()
}
