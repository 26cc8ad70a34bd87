// Package metrics provides Prometheus metrics collection for the fraud
// scoring service. It defines counters, gauges, and histograms covering the
// prediction pipeline, batch handling, alert delivery, and the realtime
// event stream, all exposed via the Prometheus endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scoring service.
type Metrics struct {
	// Prediction pipeline
	Predictions        prometheus.Counter   // Total predictions scored
	PredictionFailures prometheus.Counter   // Internal scoring failures
	ValidationFailures prometheus.Counter   // Rejected client records
	PredictionLatency  prometheus.Histogram // End-to-end pipeline latency
	FraudScores        prometheus.Histogram // Distribution of fraud probabilities
	HighRisk           prometheus.Counter   // Predictions in the high/very-high bands
	AmountFlags        prometheus.Counter   // Transactions above the soft amount ceiling

	// Batch handling
	BatchRequests prometheus.Counter   // Total batch requests accepted
	BatchSize     prometheus.Histogram // Distribution of accepted batch sizes
	BatchRejects  prometheus.Counter   // Batches rejected for exceeding the cap

	// Alert delivery and event streaming
	AlertsSent     prometheus.Counter // Webhook alerts delivered
	AlertFailures  prometheus.Counter // Webhook alerts that could not be delivered
	EventsStreamed prometheus.Counter // Prediction events broadcast over WebSocket

	// System
	WSClients   prometheus.Gauge   // Connected WebSocket clients
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows isolated metric collection in tests without affecting the
// global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_predictions_total",
			Help: "Total number of fraud predictions scored",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_prediction_failures_total",
			Help: "Total number of internal scoring failures",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_validation_failures_total",
			Help: "Total number of client records rejected by validation",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_prediction_latency_seconds",
			Help:    "End-to-end prediction pipeline latency in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		FraudScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_scores",
			Help:    "Distribution of predicted fraud probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		HighRisk: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_high_risk_total",
			Help: "Total number of predictions in the high or very high risk bands",
		}),
		AmountFlags: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_amount_flags_total",
			Help: "Total number of transactions flagged above the soft amount ceiling",
		}),
		BatchRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_batch_requests_total",
			Help: "Total number of accepted batch prediction requests",
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_batch_size",
			Help:    "Distribution of accepted batch sizes",
			Buckets: []float64{1, 5, 10, 25, 50, 75, 100},
		}),
		BatchRejects: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_batch_rejects_total",
			Help: "Total number of batches rejected for exceeding the size cap",
		}),
		AlertsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_alerts_sent_total",
			Help: "Total number of webhook alerts delivered",
		}),
		AlertFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_alert_failures_total",
			Help: "Total number of webhook alert delivery failures",
		}),
		EventsStreamed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_events_streamed_total",
			Help: "Total number of prediction events broadcast over WebSocket",
		}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fraud_ws_clients",
			Help: "Number of connected WebSocket event clients",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
