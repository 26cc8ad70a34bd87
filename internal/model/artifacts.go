// Package model loads the artifact trio produced by the external training
// pipeline: the fitted scaler, the classifier coefficients, and the training
// metrics. All three are loaded once at startup and shared read-only across
// requests; a reload requires a restart.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	scalerFile  = "scaler.json"
	modelFile   = "model.json"
	metricsFile = "metrics.json"
)

// TrainingMetrics is the optional metadata artifact written alongside the
// model. Its absence degrades model-info responses, never scoring.
type TrainingMetrics struct {
	ModelName    string    `json:"model_name"`
	ROCAUC       float64   `json:"roc_auc"`
	FeatureNames []string  `json:"feature_names"`
	TrainedAt    time.Time `json:"trained_at"`
}

// Artifacts holds the loaded scaler/classifier/metrics trio. Every field is
// immutable after Load; concurrent readers need no locking.
type Artifacts struct {
	Scaler     *Scaler
	Classifier Classifier
	Metrics    *TrainingMetrics // nil when metrics.json is absent

	Dir      string
	LoadedAt time.Time
}

// Load reads the artifact trio from dir. The scaler and model are required;
// a missing or malformed pair is a load error and the caller should enter
// degraded mode rather than exit. Missing metrics only logs a warning.
func Load(dir string) (*Artifacts, error) {
	var scaler Scaler
	if err := decodeArtifact(filepath.Join(dir, scalerFile), &scaler); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	if err := scaler.validate(); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}

	var logit LogisticModel
	if err := decodeArtifact(filepath.Join(dir, modelFile), &logit); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := logit.validate(); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	a := &Artifacts{
		Scaler:     &scaler,
		Classifier: &logit,
		Dir:        dir,
		LoadedAt:   time.Now(),
	}

	var metrics TrainingMetrics
	if err := decodeArtifact(filepath.Join(dir, metricsFile), &metrics); err != nil {
		log.Warn().Err(err).Str("model_dir", dir).Msg("metrics artifact unavailable, model info will be degraded")
	} else {
		a.Metrics = &metrics
	}

	log.Info().
		Str("model_dir", dir).
		Str("model_name", a.ModelName()).
		Msg("model artifacts loaded")

	return a, nil
}

// ModelName returns the classifier's name, preferring the metrics artifact,
// and "unknown" when neither carries one.
func (a *Artifacts) ModelName() string {
	if a.Metrics != nil && a.Metrics.ModelName != "" {
		return a.Metrics.ModelName
	}
	if name := a.Classifier.Name(); name != "" {
		return name
	}
	return "unknown"
}

func decodeArtifact(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
