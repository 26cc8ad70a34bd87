// Package scoring orchestrates the prediction pipeline: validation, vector
// assembly, scaling, classifier scoring and risk interpretation. Every call
// is stateless given the loaded artifacts, so concurrent requests run without
// locking.
package scoring

import "fraudguard/internal/features"

// RiskLevel is the qualitative five-band label derived from the fraud score
// alone. It is deliberately independent of the caller-supplied decision
// threshold: the tier describes the score, the threshold decides the verdict.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very high"
)

// RiskLevelFor maps a probability to its band. Bands are half-open and
// left-inclusive: a score exactly on a boundary lands in the higher tier.
func RiskLevelFor(probability float64) RiskLevel {
	switch {
	case probability < 0.1:
		return RiskVeryLow
	case probability < 0.3:
		return RiskLow
	case probability < 0.7:
		return RiskMedium
	case probability < 0.9:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// Elevated reports whether the tier should trigger downstream alerting.
func (r RiskLevel) Elevated() bool {
	return r == RiskHigh || r == RiskVeryHigh
}

// Classify turns a probability and threshold into the three decoupled
// judgments the API reports: the binary verdict, how far the score sits from
// the maximally-uncertain 0.5, and the qualitative band.
func Classify(probability, threshold float64) (isFraud bool, confidence float64, level RiskLevel) {
	isFraud = probability >= threshold
	confidence = probability
	if 1-probability > confidence {
		confidence = 1 - probability
	}
	return isFraud, confidence, RiskLevelFor(probability)
}

// VectorSize re-exports the pipeline dimensionality for callers that only
// import scoring.
const VectorSize = features.VectorSize
