package model

import (
	"fmt"
	"math"

	"fraudguard/internal/features"
)

// Classifier is the opaque scoring function the service consumes. The
// pipeline only ever feeds it a correctly-shaped scaled vector and reads back
// the fraud-class probability.
type Classifier interface {
	// Score returns the probability in [0,1] that the scaled vector is
	// fraudulent.
	Score(scaled []float64) (float64, error)
	// Name identifies the model for metadata responses.
	Name() string
}

// LogisticModel scores with the coefficient artifact exported by the training
// pipeline: sigmoid(w·x + b) over the scaled vector.
type LogisticModel struct {
	ModelName string    `json:"model_name"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

func (m *LogisticModel) validate() error {
	if len(m.Weights) != features.VectorSize {
		return fmt.Errorf("model has %d weights, expected %d", len(m.Weights), features.VectorSize)
	}
	for i, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("model weight %d is not finite", i)
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("model intercept is not finite")
	}
	return nil
}

func (m *LogisticModel) Name() string {
	return m.ModelName
}

func (m *LogisticModel) Score(scaled []float64) (float64, error) {
	if len(scaled) != len(m.Weights) {
		return 0, fmt.Errorf("vector has %d dimensions, model expects %d", len(scaled), len(m.Weights))
	}

	z := m.Intercept
	for i, x := range scaled {
		z += m.Weights[i] * x
	}

	p := sigmoid(z)
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("model produced invalid probability %f", p)
	}
	return p, nil
}

func sigmoid(z float64) float64 {
	// Large |z| saturates cleanly instead of overflowing Exp.
	if z < -709 {
		return 0
	}
	if z > 709 {
		return 1
	}
	return 1 / (1 + math.Exp(-z))
}
