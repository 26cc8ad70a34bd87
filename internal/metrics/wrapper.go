package metrics

// Wrapper exposes the metrics struct through the small method-based
// interfaces the scoring, alert and realtime packages declare, so those
// packages never import Prometheus directly.
type Wrapper struct {
	m *Metrics
}

// NewWrapper wraps a Metrics instance.
func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

// Scoring pipeline hooks (scoring.MetricsInterface).

func (w *Wrapper) PredictionsInc()                  { w.m.Predictions.Inc() }
func (w *Wrapper) PredictionFailuresInc()           { w.m.PredictionFailures.Inc(); w.m.ErrorsTotal.Inc() }
func (w *Wrapper) ValidationFailuresInc()           { w.m.ValidationFailures.Inc() }
func (w *Wrapper) PredictionLatencyObserve(v float64) { w.m.PredictionLatency.Observe(v) }
func (w *Wrapper) FraudScoreObserve(v float64)      { w.m.FraudScores.Observe(v) }
func (w *Wrapper) AmountFlagInc()                   { w.m.AmountFlags.Inc() }

// Batch hooks.

func (w *Wrapper) BatchRequestsInc()         { w.m.BatchRequests.Inc() }
func (w *Wrapper) BatchSizeObserve(n int)    { w.m.BatchSize.Observe(float64(n)) }
func (w *Wrapper) BatchRejectsInc()          { w.m.BatchRejects.Inc() }
func (w *Wrapper) HighRiskInc()              { w.m.HighRisk.Inc() }

// Alert delivery hooks (alert.MetricsInterface).

func (w *Wrapper) AlertSentInc()    { w.m.AlertsSent.Inc() }
func (w *Wrapper) AlertFailureInc() { w.m.AlertFailures.Inc(); w.m.ErrorsTotal.Inc() }

// Realtime hub hooks (realtime.MetricsInterface).

func (w *Wrapper) EventsStreamedInc() { w.m.EventsStreamed.Inc() }
func (w *Wrapper) WSClientsSet(n int) { w.m.WSClients.Set(float64(n)) }
