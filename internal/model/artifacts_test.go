package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func copyArtifact(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
}

func TestLoad(t *testing.T) {
	a, err := Load("testdata")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if a.Scaler == nil || len(a.Scaler.Mean) != 30 || len(a.Scaler.Scale) != 30 {
		t.Fatal("scaler not loaded with 30 dimensions")
	}
	if a.Classifier == nil {
		t.Fatal("classifier not loaded")
	}
	if a.Metrics == nil {
		t.Fatal("metrics not loaded")
	}
	if a.ModelName() != "logistic_regression" {
		t.Errorf("expected model name logistic_regression, got %s", a.ModelName())
	}
	if a.Metrics.ROCAUC != 0.9712 {
		t.Errorf("expected ROC AUC 0.9712, got %f", a.Metrics.ROCAUC)
	}
	if len(a.Metrics.FeatureNames) != 30 {
		t.Errorf("expected 30 feature names, got %d", len(a.Metrics.FeatureNames))
	}
}

func TestLoad_MissingMetricsIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	copyArtifact(t, dir, "scaler.json")
	copyArtifact(t, dir, "model.json")

	a, err := Load(dir)
	if err != nil {
		t.Fatalf("Load must succeed without metrics.json: %v", err)
	}
	if a.Metrics != nil {
		t.Error("expected nil Metrics when metrics.json is absent")
	}
	if a.ModelName() != "logistic_regression" {
		t.Errorf("expected classifier name fallback, got %s", a.ModelName())
	}
}

func TestLoad_MissingRequiredArtifacts(t *testing.T) {
	tests := []struct {
		name string
		keep []string
	}{
		{"empty dir", nil},
		{"scaler only", []string{"scaler.json"}},
		{"model only", []string{"model.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.keep {
				copyArtifact(t, dir, f)
			}
			if _, err := Load(dir); err == nil {
				t.Error("expected load error when required artifacts are missing")
			}
		})
	}
}

func TestLoad_MalformedScaler(t *testing.T) {
	dir := t.TempDir()
	copyArtifact(t, dir, "model.json")
	if err := os.WriteFile(filepath.Join(dir, "scaler.json"), []byte(`{"mean":[1,2],"scale":[1,2]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("expected error for scaler with wrong dimensionality")
	}
}

func TestScaler_Transform(t *testing.T) {
	s := &Scaler{
		Mean:  []float64{10, 0, 100},
		Scale: []float64{2, 1, 50},
	}

	out, err := s.Transform([]float64{14, -3, 100})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	want := []float64{2, -3, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("dim %d: expected %f, got %f", i, want[i], out[i])
		}
	}
}

func TestScaler_TransformDimensionMismatch(t *testing.T) {
	s := &Scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}
	if _, err := s.Transform([]float64{1}); err == nil {
		t.Error("expected error for dimension mismatch")
	}
}

func TestScaler_ZeroScaleRejected(t *testing.T) {
	s := &Scaler{Mean: make([]float64, 30), Scale: make([]float64, 30)}
	if err := s.validate(); err == nil {
		t.Error("expected validation error for zero scale entries")
	}
}

func TestLogisticModel_Score(t *testing.T) {
	m := &LogisticModel{
		ModelName: "test",
		Weights:   []float64{1, -1},
		Intercept: 0,
	}

	tests := []struct {
		name  string
		input []float64
		want  float64
	}{
		{"zero input gives 0.5", []float64{0, 0}, 0.5},
		{"balanced input gives 0.5", []float64{3, 3}, 0.5},
		{"strong positive saturates high", []float64{1000, 0}, 1.0},
		{"strong negative saturates low", []float64{0, 1000}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := m.Score(tt.input)
			if err != nil {
				t.Fatalf("Score failed: %v", err)
			}
			if math.Abs(p-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, p)
			}
			if p < 0 || p > 1 {
				t.Errorf("probability %f outside [0,1]", p)
			}
		})
	}
}

func TestLogisticModel_ScoreDimensionMismatch(t *testing.T) {
	m := &LogisticModel{Weights: []float64{1, 2, 3}}
	if _, err := m.Score([]float64{1}); err == nil {
		t.Error("expected error for dimension mismatch")
	}
}

func TestLogisticModel_GoldenScore(t *testing.T) {
	a, err := Load("testdata")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// 30-dim vector for a transaction with every anonymized feature at zero
	// and Amount 149.62, in [Time, V1..V28, Amount] order.
	vec := make([]float64, 30)
	vec[29] = 149.62

	scaled, err := a.Scaler.Transform(vec)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	p, err := a.Classifier.Score(scaled)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if math.Abs(p-0.11589694484167955) > 1e-12 {
		t.Errorf("golden probability mismatch: got %.17f", p)
	}
}
