package model

import (
	"fmt"

	"fraudguard/internal/features"
)

// Scaler wraps the standardization transform fitted during training. The
// mean/scale pairs are frozen at training time; the service never refits.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *Scaler) validate() error {
	if len(s.Mean) != features.VectorSize || len(s.Scale) != features.VectorSize {
		return fmt.Errorf("scaler dimensions %dx%d, expected %d", len(s.Mean), len(s.Scale), features.VectorSize)
	}
	for i, v := range s.Scale {
		if v == 0 {
			return fmt.Errorf("scaler dimension %d has zero scale", i)
		}
	}
	return nil
}

// Transform applies (x - mean) / scale per dimension. The input order must be
// the assembler's fixed layout; the length check is the only guard against a
// mismatched caller.
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Mean) {
		return nil, fmt.Errorf("vector has %d dimensions, scaler expects %d", len(vec), len(s.Mean))
	}

	out := make([]float64, len(vec))
	for i, x := range vec {
		out[i] = (x - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
