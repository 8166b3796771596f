// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/drowsy/internal/domain/dedupe"
	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/types"
	"github.com/okian/drowsy/pkg/logger"
	"github.com/okian/drowsy/pkg/metrics"
)

// Default and maximum values for GET /alerts?limit.
const (
	defaultAlertsLimit = 20
	defaultMaxLimit    = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// ProcessFrame runs one frame through the detection engine.
	ProcessFrame(ctx context.Context, f model.Frame) (model.FrameResult, error)

	// Status returns the detection state and the last frame result.
	Status(ctx context.Context) types.StatusView

	// RecentAlerts returns up to limit alert log records, newest first.
	RecentAlerts(ctx context.Context, limit int) ([]model.LogRecord, error)

	SetNightMode(ctx context.Context, on bool) bool
	ToggleNightMode(ctx context.Context) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	framesHandler    *FramesHandler
	statusHandler    *StatusHandler
	alertsHandler    *AlertsHandler
	nightModeHandler *NightModeHandler
	hub              *Hub
}

// NewServer creates a new API server with all handlers. maxAlerts caps
// GET /alerts?limit; hub may be nil to disable the live feed.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxAlerts int, hub *Hub) *Server {
	if maxAlerts < 1 {
		maxAlerts = defaultMaxLimit
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		framesHandler:    NewFramesHandler(deps),
		statusHandler:    NewStatusHandler(deps),
		alertsHandler:    NewAlertsHandler(deps, maxAlerts),
		nightModeHandler: NewNightModeHandler(deps),
		hub:              hub,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/frames", MetricsMiddleware(s.framesHandler.HandlePostFrame, "frames"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleGetStatus, "status"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.alertsHandler.HandleGetAlerts, "alerts"))
	mux.HandleFunc("/night-mode", MetricsMiddleware(s.nightModeHandler.HandleNightMode, "night_mode"))
	if s.hub != nil {
		// hijacked connections cannot go through the status-capturing wrapper
		mux.Handle("/ws", s.hub)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before the header goes out, so an unencodable value
// becomes a 500 instead of a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Get().Error(context.Background(), "encode response failed", logger.Error(err))
		metrics.RecordErrorByComponent("api", "encode")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "encode_failed", Message: fmt.Errorf("%w: %w", ErrInternal, err).Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
