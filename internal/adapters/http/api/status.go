package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/drowsy/internal/domain/types"
)

// StatusHandler serves the current detection state.
type StatusHandler struct {
	deps Dependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps Dependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleGetStatus handles GET /status requests.
func (h *StatusHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Status(r.Context()))
}

// AlertsHandler serves the recent alert log.
type AlertsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps Dependencies, maxLimit int) *AlertsHandler {
	return &AlertsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetAlerts handles GET /alerts?limit=N requests, newest first.
func (h *AlertsHandler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := defaultAlertsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit above %d", ErrBadRequest, h.maxLimit))
		return
	}

	recs, err := h.deps.RecentAlerts(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: %w", ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewLogEntries(recs))
}

type nightModeRequest struct {
	Enabled *bool `json:"enabled"`
}

type nightModeResponse struct {
	NightMode bool `json:"night_mode"`
}

// NightModeHandler reads and changes the night mode flag.
type NightModeHandler struct {
	deps Dependencies
}

// NewNightModeHandler creates a new night mode handler.
func NewNightModeHandler(deps Dependencies) *NightModeHandler {
	return &NightModeHandler{deps: deps}
}

// HandleNightMode handles GET and POST /night-mode. A POST without a body
// toggles the flag; {"enabled": bool} sets it.
func (h *NightModeHandler) HandleNightMode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, nightModeResponse{NightMode: h.deps.Status(r.Context()).State.NightMode})
	case http.MethodPost:
		on, err := h.apply(r.Context(), r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeJSON(w, http.StatusOK, nightModeResponse{NightMode: on})
	default:
		http.NotFound(w, r)
	}
}

func (h *NightModeHandler) apply(ctx context.Context, r *http.Request) (bool, error) {
	var req nightModeRequest
	if r.Body != nil {
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
	}
	if req.Enabled == nil {
		return h.deps.ToggleNightMode(ctx), nil
	}
	return h.deps.SetNightMode(ctx, *req.Enabled), nil
}
