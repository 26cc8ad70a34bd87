// Package alert delivers fire-and-forget webhook notifications for elevated
// fraud risk and flagged transaction amounts. Delivery failures are logged
// and counted, never surfaced to the prediction caller.
package alert

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// MetricsInterface defines the delivery counters the notifier reports to.
type MetricsInterface interface {
	AlertSentInc()
	AlertFailureInc()
}

// Reason classifies why an alert fired.
type Reason string

const (
	ReasonHighRisk    Reason = "high_risk"
	ReasonLargeAmount Reason = "large_amount"
)

// Alert is the webhook payload.
type Alert struct {
	PredictionID string    `json:"prediction_id"`
	Timestamp    time.Time `json:"timestamp"`
	Reason       Reason    `json:"reason"`
	FraudScore   float64   `json:"fraud_score"`
	RiskLevel    string    `json:"risk_level"`
	Amount       float64   `json:"amount"`
	Threshold    float64   `json:"threshold"`
}

// Notifier posts alerts to a configured webhook endpoint.
type Notifier struct {
	url     string
	rest    *resty.Client
	metrics MetricsInterface
}

// New creates a notifier for the given webhook URL. An empty URL returns nil;
// callers treat a nil notifier as disabled.
func New(url string, timeout time.Duration, metrics MetricsInterface) *Notifier {
	if url == "" {
		return nil
	}

	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}

	return &Notifier{url: url, rest: r, metrics: metrics}
}

// Notify delivers the alert asynchronously. Safe to call on a nil notifier.
func (n *Notifier) Notify(a Alert) {
	if n == nil {
		return
	}
	go func() {
		if err := n.send(a); err != nil {
			if n.metrics != nil {
				n.metrics.AlertFailureInc()
			}
			log.Warn().Err(err).
				Str("prediction_id", a.PredictionID).
				Str("reason", string(a.Reason)).
				Msg("alert delivery failed")
			return
		}
		if n.metrics != nil {
			n.metrics.AlertSentInc()
		}
		log.Debug().
			Str("prediction_id", a.PredictionID).
			Str("reason", string(a.Reason)).
			Float64("fraud_score", a.FraudScore).
			Msg("alert delivered")
	}()
}

func (n *Notifier) send(a Alert) error {
	resp, err := n.rest.R().
		SetHeader("Content-Type", "application/json").
		SetBody(a).
		Post(n.url)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
