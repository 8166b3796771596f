package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/drowsy/internal/adapters/http/api"
	"github.com/okian/drowsy/internal/domain/detector"
	"github.com/okian/drowsy/internal/domain/geometry"
	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/types"
	"github.com/okian/drowsy/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	mu        sync.Mutex
	seen      map[string]bool
	frames    []model.Frame
	result    model.FrameResult
	err       error
	records   []model.LogRecord
	recentErr error
	nightMode bool
}

func newMockDeps() *mockDeps {
	return &mockDeps{seen: make(map[string]bool)}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Unrecord(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
}

func (m *mockDeps) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.seen))
}

func (m *mockDeps) ProcessFrame(_ context.Context, f model.Frame) (model.FrameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.FrameResult{}, m.err
	}
	m.frames = append(m.frames, f)
	res := m.result
	res.FrameID = f.ID
	return res, nil
}

func (m *mockDeps) Status(context.Context) types.StatusView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.StatusView{State: types.StateView{EyeClosedStreak: 4, NightMode: m.nightMode, CooldownSeconds: 10}}
}

func (m *mockDeps) RecentAlerts(_ context.Context, limit int) ([]model.LogRecord, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	if limit > len(m.records) {
		return m.records, nil
	}
	return m.records[:limit], nil
}

func (m *mockDeps) SetNightMode(_ context.Context, on bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nightMode = on
	return on
}

func (m *mockDeps) ToggleNightMode(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nightMode = !m.nightMode
	return m.nightMode
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newMux(deps *mockDeps, hub *api.Hub) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"frames_processed": 3}}, 50, hub)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func frameBody(id string, ear, mar float64, angles string) string {
	pts, _ := json.Marshal(geometry.SyntheticFace(ear, mar))
	if angles == "" {
		return fmt.Sprintf(`{"id":%q,"landmarks":%s}`, id, pts)
	}
	return fmt.Sprintf(`{"id":%q,"landmarks":%s,"angles":%s}`, id, pts, angles)
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		_ = logger.Init()
		deps := newMockDeps()
		mux := newMux(deps, nil)

		Convey("Then health and metrics are served", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)

			_ = do(mux, http.MethodGet, "/status", "")
			w = do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "drowsy_")
		})

		Convey("Then stats are served as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"frames_processed":3`)
		})

		Convey("Then the live feed is absent without a hub", func() {
			So(do(mux, http.MethodGet, "/ws", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are not found", func() {
			So(do(mux, http.MethodGet, "/frames", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/status", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodDelete, "/night-mode", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestFramesHandler(t *testing.T) {
	Convey("Given the frames endpoint", t, func() {
		_ = logger.Init()
		deps := newMockDeps()
		deps.result = model.FrameResult{
			Status: model.StatusDrowsy, Pose: model.PoseLookingLeft, FaceDetected: true, EAR: 0.2, MAR: 0.3,
			Alerts: []model.AlertEvent{{ID: "a-1", Category: model.CategoryDrowsinessOrPose}},
		}
		mux := newMux(deps, nil)

		Convey("When a valid frame is posted", func() {
			w := do(mux, http.MethodPost, "/frames", frameBody("f-1", 0.2, 0.3, `{"pitch":0,"yaw":-30,"roll":0}`))

			Convey("Then the classification is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Status    string          `json:"status"`
					Duplicate bool            `json:"duplicate"`
					Result    types.FrameView `json:"result"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Status, ShouldEqual, "processed")
				So(resp.Result.FrameID, ShouldEqual, "f-1")
				So(resp.Result.Status, ShouldEqual, "Drowsy")
				So(resp.Result.Alerts, ShouldHaveLength, 1)

				So(deps.frames, ShouldHaveLength, 1)
				So(deps.frames[0].Landmarks, ShouldHaveLength, model.LandmarkCount)
				So(deps.frames[0].Angles.Yaw, ShouldEqual, -30)
			})

			Convey("And the same frame is posted again", func() {
				w := do(mux, http.MethodPost, "/frames", frameBody("f-1", 0.2, 0.3, ""))
				Convey("Then it is acknowledged as a duplicate and not processed", func() {
					So(w.Code, ShouldEqual, http.StatusOK)
					So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
					So(deps.frames, ShouldHaveLength, 1)
				})
			})
		})

		Convey("When frames without IDs are posted", func() {
			do(mux, http.MethodPost, "/frames", frameBody("", 0.3, 0.2, ""))
			do(mux, http.MethodPost, "/frames", frameBody("", 0.3, 0.2, ""))
			Convey("Then each is processed", func() {
				So(deps.frames, ShouldHaveLength, 2)
				So(deps.Size(), ShouldEqual, int64(0))
			})
		})

		Convey("When a no-face frame is posted", func() {
			w := do(mux, http.MethodPost, "/frames", `{"id":"f-2","at":"2025-01-02T03:04:05Z"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.frames[0].HasFace(), ShouldBeFalse)
			So(deps.frames[0].At.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("When the engine rejects the frame", func() {
			deps.err = fmt.Errorf("%w: wrong landmark count", detector.ErrInvalidFrame)
			w := do(mux, http.MethodPost, "/frames", `{"id":"f-3","landmarks":[{"x":1,"y":2}]}`)

			Convey("Then it is a bad request and the ID may be retried", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "invalid_frame")
				So(deps.Size(), ShouldEqual, int64(0))
			})
		})

		Convey("When the result cannot be encoded", func() {
			deps.result.EAR = math.NaN()
			w := do(mux, http.MethodPost, "/frames", frameBody("f-5", 0.2, 0.3, ""))

			Convey("Then a JSON error is sent instead of an empty 200", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				var resp struct {
					Code string `json:"code"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Code, ShouldEqual, "encode_failed")
			})
		})

		Convey("When the engine fails otherwise", func() {
			deps.err = errors.New("boom")
			w := do(mux, http.MethodPost, "/frames", `{"id":"f-4"}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When the body is malformed", func() {
			So(do(mux, http.MethodPost, "/frames", `{"id":`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/frames", `{"id":"x","unknown":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/frames", `{"id":"x","at":"yesterday"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.frames, ShouldBeEmpty)
		})
	})
}

func TestStatusAndAlerts(t *testing.T) {
	Convey("Given status and alert endpoints", t, func() {
		_ = logger.Init()
		deps := newMockDeps()
		at := time.Date(2024, time.March, 7, 9, 5, 3, 0, time.Local)
		for i := 0; i < 30; i++ {
			deps.records = append(deps.records, model.LogRecord{At: at, Status: model.StatusYawning, Pose: model.PoseFacingForward})
		}
		mux := newMux(deps, nil)

		Convey("When the status is requested", func() {
			w := do(mux, http.MethodGet, "/status", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"eye_closed_streak":4`)
		})

		Convey("When alerts are requested without a limit", func() {
			w := do(mux, http.MethodGet, "/alerts", "")
			var entries []types.LogEntry
			So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 20)
			So(entries[0].Line, ShouldEqual, "07-03-2024 09:05:03, Yawning, Facing Forward")
		})

		Convey("When alerts are requested with limits", func() {
			So(do(mux, http.MethodGet, "/alerts?limit=5", "").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/alerts?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/alerts?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			w := do(mux, http.MethodGet, "/alerts?limit=51", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
		})

		Convey("When the store fails", func() {
			deps.recentErr = errors.New("disk gone")
			So(do(mux, http.MethodGet, "/alerts", "").Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestNightModeHandler(t *testing.T) {
	Convey("Given the night mode endpoint", t, func() {
		_ = logger.Init()
		deps := newMockDeps()
		mux := newMux(deps, nil)

		Convey("When posted without a body", func() {
			w := do(mux, http.MethodPost, "/night-mode", "")
			Convey("Then the flag toggles", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"night_mode":true`)
				So(do(mux, http.MethodPost, "/night-mode", "").Body.String(), ShouldContainSubstring, `"night_mode":false`)
			})
		})

		Convey("When an explicit value is posted", func() {
			do(mux, http.MethodPost, "/night-mode", `{"enabled":true}`)
			w := do(mux, http.MethodPost, "/night-mode", `{"enabled":true}`)
			Convey("Then it is set, not toggled", func() {
				So(w.Body.String(), ShouldContainSubstring, `"night_mode":true`)
				So(do(mux, http.MethodGet, "/night-mode", "").Body.String(), ShouldContainSubstring, `"night_mode":true`)
			})
		})

		Convey("When the body is malformed", func() {
			So(do(mux, http.MethodPost, "/night-mode", `{"enabled":`).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler that panics", t, func() {
		_ = logger.Init()
		h := api.MetricsMiddleware(func(http.ResponseWriter, *http.Request) { panic("boom") }, "test")
		w := httptest.NewRecorder()

		So(func() { h(w, httptest.NewRequest(http.MethodGet, "/", nil)) }, ShouldNotPanic)
		So(w.Code, ShouldEqual, http.StatusInternalServerError)
	})
}
