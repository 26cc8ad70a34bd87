package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"fraudguard/internal/features"
	"fraudguard/internal/model"
)

// DefaultThreshold is applied when the caller does not supply one.
const DefaultThreshold = 0.5

// DefaultBatchLimit caps batch requests. Batches above the cap are rejected
// outright, never truncated.
const DefaultBatchLimit = 100

// MetricsInterface defines the metrics hooks the service needs. A nil
// implementation is allowed everywhere.
type MetricsInterface interface {
	PredictionsInc()
	PredictionFailuresInc()
	ValidationFailuresInc()
	PredictionLatencyObserve(float64)
	FraudScoreObserve(float64)
	AmountFlagInc()
}

// ModelInfo is the metadata annotation attached to every successful
// prediction.
type ModelInfo struct {
	ModelName string      `json:"model_name"`
	ModelAUC  interface{} `json:"model_auc"`
}

// Result is the immutable outcome of one prediction call.
type Result struct {
	FraudScore    float64   `json:"fraud_score"`
	IsFraud       bool      `json:"is_fraud"`
	Confidence    float64   `json:"confidence"`
	RiskLevel     RiskLevel `json:"risk_level"`
	Threshold     float64   `json:"threshold"`
	ModelInfo     ModelInfo `json:"model_info"`
	Amount        float64   `json:"-"`
	AmountFlagged bool      `json:"-"`
}

// BatchItem pairs a result (or an error) with the item's position in the
// incoming batch. Failures are values, not panics or aborts, so one bad item
// never takes down the rest of the batch.
type BatchItem struct {
	TransactionID int `json:"transaction_id"`
	*Result
	Error string `json:"error,omitempty"`
}

// Info summarizes the loaded artifacts for the model-info endpoint.
type Info struct {
	ModelLoaded  bool        `json:"model_loaded"`
	ScalerLoaded bool        `json:"scaler_loaded"`
	ModelDir     string      `json:"model_dir,omitempty"`
	ModelName    string      `json:"model_name,omitempty"`
	ModelAUC     interface{} `json:"model_auc,omitempty"`
	FeatureCount int         `json:"feature_count,omitempty"`
}

// Service runs the prediction pipeline against an immutable artifact trio.
// It is constructed once at startup; a nil artifacts reference puts it in
// degraded mode where every prediction returns ErrModelUnavailable.
type Service struct {
	artifacts  *model.Artifacts
	metrics    MetricsInterface
	ceiling    float64
	batchLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithAmountSoftCeiling overrides the soft ceiling above which amounts are
// flagged but still scored.
func WithAmountSoftCeiling(ceiling float64) Option {
	return func(s *Service) { s.ceiling = ceiling }
}

// WithBatchLimit overrides the batch cap.
func WithBatchLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.batchLimit = limit
		}
	}
}

// New creates the prediction service. artifacts may be nil (degraded mode)
// and metrics may be nil (no instrumentation).
func New(artifacts *model.Artifacts, metrics MetricsInterface, opts ...Option) *Service {
	s := &Service{
		artifacts:  artifacts,
		metrics:    metrics,
		ceiling:    features.DefaultAmountSoftCeiling,
		batchLimit: DefaultBatchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether the artifact trio is loaded and predictions can run.
func (s *Service) Ready() bool {
	return s.artifacts != nil
}

// BatchLimit returns the configured batch cap.
func (s *Service) BatchLimit() int {
	return s.batchLimit
}

// ValidateThreshold rejects thresholds outside [0,1]. NaN is rejected too:
// all comparisons against it are false, which would silently classify
// everything as not-fraud.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return &ThresholdError{Value: threshold}
	}
	return nil
}

// Predict runs one record through the full pipeline:
// validate → assemble → scale → score → classify → annotate.
//
// Model unavailability short-circuits before validation; validation failures
// short-circuit before any numeric work.
func (s *Service) Predict(raw map[string]interface{}, threshold float64) (*Result, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
		}
	}()

	if !s.Ready() {
		return nil, ErrModelUnavailable
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	txn, err := features.Validate(raw, s.ceiling)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ValidationFailuresInc()
		}
		return nil, err
	}
	if txn.AmountFlagged && s.metrics != nil {
		s.metrics.AmountFlagInc()
	}

	vec, err := txn.Vector()
	if err != nil {
		return nil, s.failure("assemble", err)
	}

	scaled, err := s.artifacts.Scaler.Transform(vec)
	if err != nil {
		return nil, s.failure("scale", err)
	}

	probability, err := s.artifacts.Classifier.Score(scaled)
	if err != nil {
		return nil, s.failure("score", err)
	}

	isFraud, confidence, level := Classify(probability, threshold)

	if s.metrics != nil {
		s.metrics.PredictionsInc()
		s.metrics.FraudScoreObserve(probability)
	}

	result := &Result{
		FraudScore:    round4(probability),
		IsFraud:       isFraud,
		Confidence:    round4(confidence),
		RiskLevel:     level,
		Threshold:     threshold,
		ModelInfo:     s.modelInfo(),
		Amount:        txn.Amount,
		AmountFlagged: txn.AmountFlagged,
	}

	log.Debug().
		Float64("fraud_score", result.FraudScore).
		Bool("is_fraud", result.IsFraud).
		Str("risk_level", string(result.RiskLevel)).
		Float64("threshold", threshold).
		Msg("prediction completed")

	return result, nil
}

// PredictBatch evaluates each record independently under one shared
// threshold. A failing item becomes an error-tagged entry at its original
// index; the remaining items are unaffected. Batches above the cap are
// rejected before any item is evaluated.
func (s *Service) PredictBatch(records []map[string]interface{}, threshold float64) ([]BatchItem, error) {
	if !s.Ready() {
		return nil, ErrModelUnavailable
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if len(records) > s.batchLimit {
		return nil, fmt.Errorf("batch of %d transactions exceeds limit of %d", len(records), s.batchLimit)
	}

	items := make([]BatchItem, 0, len(records))
	for i, record := range records {
		result, err := s.Predict(record, threshold)
		if err != nil {
			log.Warn().Err(err).Int("transaction_id", i).Msg("batch item failed")
			items = append(items, BatchItem{TransactionID: i, Error: errorMessage(err)})
			continue
		}
		items = append(items, BatchItem{TransactionID: i, Result: result})
	}

	return items, nil
}

// ModelInfo reports artifact status and metadata without scoring anything.
func (s *Service) ModelInfo() Info {
	if !s.Ready() {
		return Info{}
	}

	info := Info{
		ModelLoaded:  true,
		ScalerLoaded: true,
		ModelDir:     s.artifacts.Dir,
		ModelName:    s.artifacts.ModelName(),
		ModelAUC:     "unknown",
		FeatureCount: features.VectorSize,
	}
	if m := s.artifacts.Metrics; m != nil {
		if m.ROCAUC > 0 {
			info.ModelAUC = m.ROCAUC
		}
		if len(m.FeatureNames) > 0 {
			info.FeatureCount = len(m.FeatureNames)
		}
	}
	return info
}

func (s *Service) modelInfo() ModelInfo {
	mi := ModelInfo{ModelName: s.artifacts.ModelName(), ModelAUC: "unknown"}
	if m := s.artifacts.Metrics; m != nil && m.ROCAUC > 0 {
		mi.ModelAUC = m.ROCAUC
	}
	return mi
}

func (s *Service) failure(stage string, err error) error {
	if s.metrics != nil {
		s.metrics.PredictionFailuresInc()
	}
	serr := &ScoringError{Stage: stage, Err: err}
	log.Error().Err(err).Str("stage", stage).Msg("scoring pipeline failure")
	return serr
}

// errorMessage keeps internal failures opaque in batch item payloads while
// reporting validation problems verbatim.
func errorMessage(err error) string {
	if IsValidationError(err) {
		return err.Error()
	}
	return "internal scoring error"
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
