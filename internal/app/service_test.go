package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	service "github.com/okian/drowsy/internal/app"
	"github.com/okian/drowsy/internal/config"
	"github.com/okian/drowsy/internal/domain/detector"
	"github.com/okian/drowsy/internal/domain/geometry"
	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/pose"
	"github.com/okian/drowsy/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.InitWithWriter(os.Stderr, false); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

var base = time.Date(2025, time.June, 3, 22, 15, 0, 0, time.Local)

func at(i int) time.Time { return base.Add(time.Duration(i) * time.Second / 30) }

func face(ear, mar float64, angles *model.EulerAngles, i int) model.Frame {
	return model.Frame{Landmarks: geometry.SyntheticFace(ear, mar), Angles: angles, At: at(i)}
}

type runner struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *runner) run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil
}

func (r *runner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type publisher struct {
	mu    sync.Mutex
	count int
}

func (p *publisher) Publish(context.Context, any) {
	p.mu.Lock()
	p.count++
	p.mu.Unlock()
}

func (p *publisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func testConfig(dir string) *config.Config {
	cfg := config.New()
	cfg.AlertLogPath = filepath.Join(dir, "drowsiness_log.csv")
	cfg.SpeechCommand = "espeak -s 150"
	cfg.NotifyCommand = "notify-send"
	cfg.WorkerCount = 1
	return cfg
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithConfig(testConfig(t.TempDir())), service.WithCommandRunner((&runner{}).run))

		Convey("When a frame arrives before Start", func() {
			_, err := svc.ProcessFrame(ctx, face(0.3, 0.2, nil, 0))
			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When the service is started twice and stopped twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["notifierChannels"], ShouldResemble, []string{"log", "speech", "desktop"})

			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When the speech command is blank", func() {
			cfg := testConfig(t.TempDir())
			cfg.SpeechCommand = "   "
			err := service.New(service.WithConfig(cfg)).Start(ctx)
			Convey("Then Start fails", func() {
				So(errors.Is(err, service.ErrStart), ShouldBeTrue)
			})
		})

		Convey("When the alert log cannot be opened", func() {
			cfg := testConfig(t.TempDir())
			cfg.AlertLogPath = filepath.Join(cfg.AlertLogPath, "missing", "log.csv")
			err := service.New(service.WithConfig(cfg)).Start(ctx)
			Convey("Then Start fails", func() {
				So(errors.Is(err, service.ErrStart), ShouldBeTrue)
			})
		})
	})
}

func TestService_ProcessFrame(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := testConfig(dir)
		r := &runner{}
		pub := &publisher{}
		svc := service.New(
			service.WithConfig(cfg),
			service.WithCommandRunner(r.run),
			service.WithPublisher(pub),
			service.WithEngineOptions(detector.WithClock(func() time.Time { return base })),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When the eyes stay closed for twenty frames", func() {
			var fired int
			for i := 0; i < 20; i++ {
				res, err := svc.ProcessFrame(ctx, face(0.2, 0.2, &model.EulerAngles{}, i))
				So(err, ShouldBeNil)
				fired += len(res.Alerts)
			}

			Convey("Then one alert fires and every frame is published", func() {
				So(fired, ShouldEqual, 1)
				So(pub.published(), ShouldEqual, 20)

				stats := svc.GetStats()
				So(stats["framesProcessed"], ShouldEqual, int64(20))
				So(stats["alertsFired"], ShouldEqual, int64(1))
			})

			Convey("Then the record is listed and the status reflects the last frame", func() {
				recs, err := svc.RecentAlerts(ctx, 10)
				So(err, ShouldBeNil)
				So(recs, ShouldResemble, []model.LogRecord{{At: at(14), Status: model.StatusDrowsy, Pose: model.PoseFacingForward}})

				st := svc.Status(ctx)
				So(st.State.EyeClosedStreak, ShouldEqual, 20)
				So(st.State.LastAlertAt, ShouldNotBeNil)
				So(st.Last, ShouldNotBeNil)
				So(st.Last.Status, ShouldEqual, "Drowsy")
			})

			Convey("Then speech and desktop commands run and the log line is written", func() {
				So(eventually(func() bool { return r.count() == 2 }), ShouldBeTrue)
				So(svc.Stop(ctx), ShouldBeNil)

				data, err := os.ReadFile(cfg.AlertLogPath)
				So(err, ShouldBeNil)
				So(strings.TrimSpace(string(data)), ShouldEqual, "03-06-2025 22:15:00, Drowsy, Facing Forward")
			})
		})

		Convey("When no face is seen", func() {
			res, err := svc.ProcessFrame(ctx, model.Frame{ID: "f-1"})
			So(err, ShouldBeNil)

			Convey("Then the sleeping alert fires without a log record", func() {
				So(res.FaceDetected, ShouldBeFalse)
				So(res.Alerts, ShouldHaveLength, 1)
				So(res.Alerts[0].Category, ShouldEqual, model.CategoryEyesClosedExtended)
				So(res.At, ShouldEqual, base)
				So(svc.GetStats()["recentAlerts"], ShouldEqual, int64(0))
			})
		})

		Convey("When an invalid frame arrives", func() {
			_, err := svc.ProcessFrame(ctx, model.Frame{Landmarks: make(model.LandmarkSet, 10)})
			Convey("Then it is rejected and counted", func() {
				So(errors.Is(err, detector.ErrInvalidFrame), ShouldBeTrue)
				So(svc.GetStats()["framesRejected"], ShouldEqual, int64(1))
				So(svc.Status(ctx).Last, ShouldBeNil)
			})
		})

		Convey("When a frame ID repeats", func() {
			So(svc.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			So(svc.Size(), ShouldEqual, int64(1))
			svc.Unrecord(ctx, "a")
			So(svc.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(svc.GetStats()["framesDuplicate"], ShouldEqual, int64(1))
		})

		Convey("When night mode changes", func() {
			So(svc.ToggleNightMode(ctx), ShouldBeTrue)
			So(svc.Status(ctx).State.NightMode, ShouldBeTrue)
			So(svc.SetNightMode(ctx, false), ShouldBeFalse)

			res, err := svc.ProcessFrame(ctx, face(0.3, 0.2, nil, 0))
			So(err, ShouldBeNil)
			So(res.NightMode, ShouldBeFalse)
		})
	})
}

func TestService_AlertLogOrder(t *testing.T) {
	Convey("Given a service with several workers and no cooldown", t, func() {
		ctx := context.Background()
		cfg := testConfig(t.TempDir())
		cfg.WorkerCount = 4
		cfg.AlertCooldownSeconds = 0
		svc := service.New(service.WithConfig(cfg), service.WithCommandRunner((&runner{}).run))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		poses := []model.Pose{
			model.PoseLookingLeft, model.PoseLookingRight, model.PoseNoddingDown,
			model.PoseTiltingLeft, model.PoseTiltingRight,
		}
		var want []string
		for i := 0; i < 20; i++ {
			p := poses[i%len(poses)]
			angles := pose.AnglesFor(p)
			res, err := svc.ProcessFrame(ctx, face(0.3, 0.2, &angles, i*30))
			So(err, ShouldBeNil)
			So(res.LogRecords, ShouldHaveLength, 1)
			want = append(want, res.LogRecords[0].String())
		}

		Convey("When the log is read before the workers finish", func() {
			data, err := os.ReadFile(cfg.AlertLogPath)
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")

			Convey("Then every line is already there in frame order", func() {
				So(lines, ShouldResemble, want)
			})

			Convey("Then it is the recent list read backwards", func() {
				recs, err := svc.RecentAlerts(ctx, len(want))
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, len(want))
				for i, rec := range recs {
					So(rec.String(), ShouldEqual, lines[len(lines)-1-i])
				}
			})
		})
	})
}

func TestService_SeedsRecentAlerts(t *testing.T) {
	Convey("Given an alert log from an earlier run", t, func() {
		ctx := context.Background()
		cfg := testConfig(t.TempDir())
		lines := "01-02-2024 08:00:00, Drowsy, Facing Forward\n01-02-2024 08:00:30, Normal, Looking Left\n"
		So(os.WriteFile(cfg.AlertLogPath, []byte(lines), 0o600), ShouldBeNil)

		svc := service.New(service.WithConfig(cfg), service.WithCommandRunner((&runner{}).run))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then the recent list starts with its records, newest first", func() {
			recs, err := svc.RecentAlerts(ctx, 5)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 2)
			So(recs[0].Pose, ShouldEqual, model.PoseLookingLeft)
			So(recs[1].Status, ShouldEqual, model.StatusDrowsy)
		})
	})
}
