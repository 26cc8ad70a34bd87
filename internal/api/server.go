// Package api exposes the fraud scoring pipeline over HTTP. The routing
// surface is deliberately thin: every endpoint delegates to the scoring
// service and translates its error taxonomy into status codes.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"fraudguard/internal/alert"
	"fraudguard/internal/cfg"
	"fraudguard/internal/realtime"
	"fraudguard/internal/scoring"
	"fraudguard/internal/storage"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// BatchMetricsInterface defines the batch-level metrics hooks used by the
// handlers, alongside the per-prediction hooks the scoring service already
// drives.
type BatchMetricsInterface interface {
	BatchRequestsInc()
	BatchSizeObserve(int)
	BatchRejectsInc()
	HighRiskInc()
}

// Server wires the scoring service, prediction history, alerting and the
// realtime hub behind one HTTP listener.
type Server struct {
	svc      *scoring.Service
	store    *storage.Store    // nil disables history
	notifier *alert.Notifier   // nil disables alerting
	hub      *realtime.Hub     // nil disables event streaming
	metrics  BatchMetricsInterface
	settings cfg.Settings
	server   *http.Server
}

// New builds the HTTP server. store, notifier, hub and metrics may each be
// nil; the corresponding feature is simply disabled.
func New(settings cfg.Settings, svc *scoring.Service, store *storage.Store, notifier *alert.Notifier, hub *realtime.Hub, metrics BatchMetricsInterface) *Server {
	s := &Server{
		svc:      svc,
		store:    store,
		notifier: notifier,
		hub:      hub,
		metrics:  metrics,
		settings: settings,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/predict/batch", s.handlePredictBatch)
	mux.HandleFunc("/model-info", s.handleModelInfo)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/sample-transaction", s.handleSampleTransaction)
	mux.HandleFunc("/predictions/recent", s.handleRecentPredictions)
	if hub != nil {
		mux.HandleFunc("/events", hub.HandleWebSocket)
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleNotFound)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.ListenPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Start begins serving HTTP requests and blocks until the listener stops.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Bool("model_ready", s.svc.Ready()).Msg("starting fraud scoring server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routing surface for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
