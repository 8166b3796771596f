package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/drowsy/internal/domain/detector"
	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/types"
)

const maxFrameBody = 64 << 10

// frameRequest is the body of POST /frames. Omit landmarks when no face was
// found; omit angles when the head pose was not solved.
type frameRequest struct {
	ID        string             `json:"id"`
	Landmarks []model.Point      `json:"landmarks"`
	Angles    *model.EulerAngles `json:"angles"`
	At        string             `json:"at"`
}

func (f frameRequest) toFrame() (model.Frame, error) {
	frame := model.Frame{
		ID:     strings.TrimSpace(f.ID),
		Angles: f.Angles,
	}
	if len(f.Landmarks) > 0 {
		frame.Landmarks = model.LandmarkSet(f.Landmarks)
	}
	if f.At != "" {
		at, err := time.Parse(time.RFC3339Nano, f.At)
		if err != nil {
			return model.Frame{}, errors.New("invalid at; must be RFC3339")
		}
		frame.At = at
	}
	return frame, nil
}

type frameResponse struct {
	Status    string           `json:"status"`
	Duplicate bool             `json:"duplicate"`
	Result    *types.FrameView `json:"result,omitempty"`
}

// FramesHandler handles frame submissions.
type FramesHandler struct {
	deps Dependencies
}

// NewFramesHandler creates a new frames handler.
func NewFramesHandler(deps Dependencies) *FramesHandler {
	return &FramesHandler{deps: deps}
}

// HandlePostFrame handles POST /frames requests. Frames are processed
// synchronously so the caller receives the classification of its frame.
func (h *FramesHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req frameRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFrameBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	frame, err := req.toFrame()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	if frame.ID != "" && h.deps.SeenAndRecord(r.Context(), frame.ID) {
		writeJSON(w, http.StatusOK, frameResponse{Status: "duplicate", Duplicate: true})
		return
	}

	res, err := h.deps.ProcessFrame(r.Context(), frame)
	if err != nil {
		// a rejected frame did not touch the state, so a corrected retry is allowed
		h.deps.Unrecord(r.Context(), frame.ID)
		if errors.Is(err, detector.ErrInvalidFrame) {
			writeError(w, http.StatusBadRequest, "invalid_frame", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: %w", ErrInternal, err))
		return
	}

	view := types.NewFrameView(res)
	writeJSON(w, http.StatusOK, frameResponse{Status: "processed", Result: &view})
}
