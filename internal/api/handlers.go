package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"fraudguard/internal/alert"
	"fraudguard/internal/features"
	"fraudguard/internal/realtime"
	"fraudguard/internal/scoring"
	"fraudguard/internal/storage"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseThreshold coerces the optional threshold field from a decoded JSON
// body. Range validation is left to the scoring service.
func parseThreshold(v interface{}, fallback float64) (float64, error) {
	if v == nil {
		return fallback, nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("threshold must be a number, got %T", v)
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	threshold, err := parseThreshold(raw["threshold"], s.settings.DefaultThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	delete(raw, "threshold")

	result, err := s.svc.Predict(raw, threshold)
	if err != nil {
		s.writePredictError(w, err)
		return
	}

	id := uuid.NewString()
	s.afterPrediction(id, result)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prediction_id": id,
		"fraud_score":   result.FraudScore,
		"is_fraud":      result.IsFraud,
		"confidence":    result.Confidence,
		"risk_level":    result.RiskLevel,
		"threshold":     result.Threshold,
		"model_info":    result.ModelInfo,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

type batchRequest struct {
	Transactions []map[string]interface{} `json:"transactions"`
	Threshold    interface{}              `json:"threshold"`
}

func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Transactions == nil {
		writeError(w, http.StatusBadRequest, "request body must contain a transactions array")
		return
	}

	threshold, err := parseThreshold(req.Threshold, s.settings.DefaultThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.svc.PredictBatch(req.Transactions, threshold)
	if err != nil {
		if errors.Is(err, scoring.ErrModelUnavailable) {
			s.writePredictError(w, err)
			return
		}
		if s.metrics != nil && len(req.Transactions) > s.svc.BatchLimit() {
			s.metrics.BatchRejectsInc()
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.metrics != nil {
		s.metrics.BatchRequestsInc()
		s.metrics.BatchSizeObserve(len(items))
	}

	for i := range items {
		if items[i].Result == nil {
			continue
		}
		s.afterPrediction(uuid.NewString(), items[i].Result)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":            items,
		"total_transactions": len(items),
		"threshold":          threshold,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}

// writePredictError maps the scoring error taxonomy onto status codes:
// missing artifacts give 503, caller mistakes give 400, everything else
// is an opaque 500.
func (s *Server) writePredictError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scoring.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model not loaded, service is running in degraded mode")
	case scoring.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "internal scoring error")
	}
}

// afterPrediction runs the side effects of a successful prediction:
// history, realtime broadcast and alerting. All are best effort and never
// affect the response.
func (s *Server) afterPrediction(id string, res *scoring.Result) {
	now := time.Now().UTC()
	level := res.RiskLevel

	if level.Elevated() && s.metrics != nil {
		s.metrics.HighRiskInc()
	}

	if s.store != nil {
		rec := storage.PredictionRecord{
			ID:         id,
			Timestamp:  now,
			Amount:     res.Amount,
			FraudScore: res.FraudScore,
			IsFraud:    res.IsFraud,
			RiskLevel:  string(res.RiskLevel),
			Threshold:  res.Threshold,
		}
		if err := s.store.StorePrediction(rec); err != nil {
			log.Warn().Err(err).Str("prediction_id", id).Msg("failed to store prediction")
		}
	}

	if s.hub != nil {
		s.hub.Broadcast(&realtime.PredictionEvent{
			PredictionID: id,
			Timestamp:    now,
			FraudScore:   res.FraudScore,
			IsFraud:      res.IsFraud,
			RiskLevel:    string(res.RiskLevel),
			Amount:       res.Amount,
		})
	}

	if s.notifier != nil {
		reason := alert.Reason("")
		switch {
		case level.Elevated():
			reason = alert.ReasonHighRisk
		case res.AmountFlagged:
			reason = alert.ReasonLargeAmount
		}
		if reason != "" {
			s.notifier.Notify(alert.Alert{
				PredictionID: id,
				Timestamp:    now,
				Reason:       reason,
				FraudScore:   res.FraudScore,
				RiskLevel:    string(res.RiskLevel),
				Amount:       res.Amount,
				Threshold:    res.Threshold,
			})
		}
	}
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	info := s.svc.ModelInfo()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"model_loaded":  info.ModelLoaded,
		"scaler_loaded": info.ScalerLoaded,
		"model_dir":     info.ModelDir,
		"model_name":    info.ModelName,
		"model_auc":     info.ModelAUC,
		"feature_count": info.FeatureCount,
		"threshold":     s.settings.DefaultThreshold,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := "ok"
	if !s.svc.Ready() {
		status = "unhealthy"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       status,
		"model_loaded": s.svc.Ready(),
		"model_info":   s.svc.ModelInfo(),
		"version":      Version,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSampleTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sample_transaction": features.SampleTransaction(),
		"description":        "example transaction with all required features",
		"usage":              "POST this object to /predict to score it",
	})
}

func (s *Server) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "prediction history is not enabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.store.Recent(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to read prediction history")
		writeError(w, http.StatusInternalServerError, "failed to read prediction history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": records,
		"count":       len(records),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"error": "endpoint not found",
		"available_endpoints": []string{
			"GET /health",
			"POST /predict",
			"POST /predict/batch",
			"GET /model-info",
			"GET /sample-transaction",
			"GET /predictions/recent",
			"GET /events",
			"GET /metrics",
		},
	})
}
