// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	deliveryqueue "github.com/okian/drowsy/internal/adapters/mq/queue"
	workerpool "github.com/okian/drowsy/internal/adapters/mq/worker"
	"github.com/okian/drowsy/internal/adapters/notify"
	repository "github.com/okian/drowsy/internal/adapters/repository"
	"github.com/okian/drowsy/internal/config"
	"github.com/okian/drowsy/internal/domain/alerting"
	"github.com/okian/drowsy/internal/domain/dedupe"
	"github.com/okian/drowsy/internal/domain/detector"
	"github.com/okian/drowsy/internal/domain/hysteresis"
	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/internal/domain/pose"
	"github.com/okian/drowsy/internal/domain/types"
	"github.com/okian/drowsy/pkg/logger"
	"github.com/okian/drowsy/pkg/metrics"
)

// Publisher receives every frame result, e.g. the websocket hub.
type Publisher interface {
	Publish(ctx context.Context, v any)
}

// Notifier is a delivery channel for fired alerts.
type Notifier = workerpool.Notifier

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, any) {}

// Service implements the API dependencies for the drowsiness monitor.
type Service struct {
	mu sync.RWMutex // lifecycle; held for reading while a frame is processed

	// engineMu serialises frames: the engine carries state between them.
	engineMu sync.Mutex
	engine   *detector.Engine
	last     *types.FrameView

	// Core components
	deduper  dedupe.Deduper
	recent   *repository.MemoryStore
	queue    *deliveryqueue.InMemoryQueue
	pool     *workerpool.Pool
	alertLog *repository.CSVLog
	mqtt     *notify.MQTT

	// Configuration
	cfg            *config.Config
	engineOpts     []detector.Option
	extraNotifiers []Notifier
	runner         notify.Runner
	publisher      Publisher

	// Counters for GetStats
	framesProcessed atomic.Int64
	framesRejected  atomic.Int64
	duplicates      atomic.Int64
	alertsFired     atomic.Int64
	alertsDropped   atomic.Int64

	// State
	started   bool
	notifiers []string
	cancel    context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. The engine and in-memory stores are ready
// immediately; delivery starts with Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:       config.New(),
		runner:    notify.ExecRunner,
		publisher: nopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.engine = detector.New(append(engineOptions(s.cfg), s.engineOpts...)...)
	s.deduper = dedupe.NewFrameWindow(dedupe.WithMaxSize(s.cfg.DedupeSize))
	s.recent = repository.NewMemoryStore(repository.WithCapacity(s.cfg.RecentAlerts))
	metrics.UpdateNightMode(s.cfg.NightMode)
	return s
}

func engineOptions(cfg *config.Config) []detector.Option {
	return []detector.Option{
		detector.WithClassifier(hysteresis.New(
			hysteresis.WithEARThreshold(cfg.EARThreshold),
			hysteresis.WithEARConsecFrames(cfg.EARConsecFrames),
			hysteresis.WithMARThreshold(cfg.MARThreshold),
			hysteresis.WithYawnConsecFrames(cfg.YawnConsecFrames),
		)),
		detector.WithPoseClassifier(pose.New(
			pose.WithPitchDown(cfg.PitchDownThreshold),
			pose.WithYawRight(cfg.YawRightThreshold),
			pose.WithYawLeft(cfg.YawLeftThreshold),
			pose.WithRollLeft(cfg.RollLeftThreshold),
			pose.WithRollRight(cfg.RollRightThreshold),
		)),
		detector.WithPolicy(alerting.New(alerting.WithCooldown(cfg.AlertCooldown()))),
		detector.WithNightMode(cfg.NightMode),
	}
}

// Start opens the alert log, connects the notifiers and starts the
// delivery workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting drowsiness service...")

	if err := s.openAlertLog(ctx); err != nil {
		return err
	}
	notifiers, err := s.buildNotifiers(ctx)
	if err != nil {
		s.closeOutputs()
		return err
	}

	s.queue = deliveryqueue.NewInMemoryQueue(deliveryqueue.WithCapacity(s.cfg.QueueSize))
	s.pool = workerpool.NewPool(s.cfg.WorkerCount, s.queue, notifiers,
		workerpool.WithTimeout(s.cfg.DeliveryTimeout()),
		workerpool.WithLogger(s.logger.Named("worker")),
	)

	// workers outlive the caller's context; Stop drains them
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "drowsiness service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.cfg.QueueSize),
		logger.Any("notifiers", s.notifiers),
		logger.String("alertLog", s.cfg.AlertLogPath),
	)
	return nil
}

// openAlertLog seeds the recent alert list from an existing log, then opens
// it for appending.
func (s *Service) openAlertLog(ctx context.Context) error {
	path := s.cfg.AlertLogPath
	if path == "" {
		return nil
	}

	recs, err := repository.ReadCSVLog(path)
	if err != nil {
		// keep the valid prefix; a torn last line is common after a crash
		s.logger.Warn(ctx, "alert log partially read", logger.Error(err))
	}
	if s.recent.Count(ctx) == 0 {
		for _, rec := range recs {
			_ = s.recent.Append(ctx, rec)
		}
	}

	l, err := repository.OpenCSVLog(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStart, err)
	}
	s.alertLog = l
	return nil
}

func (s *Service) buildNotifiers(ctx context.Context) ([]Notifier, error) {
	ns := []Notifier{notify.NewLogging(s.logger.Named("alerts"))}

	if s.cfg.SpeechCommand != "" {
		n, err := notify.NewSpeech(s.cfg.SpeechCommand, notify.WithRunner(s.runner))
		if err != nil {
			return nil, fmt.Errorf("%w: speech: %w", ErrStart, err)
		}
		ns = append(ns, n)
	}
	if s.cfg.NotifyCommand != "" {
		n, err := notify.NewDesktop(s.cfg.NotifyCommand, notify.WithRunner(s.runner))
		if err != nil {
			return nil, fmt.Errorf("%w: desktop: %w", ErrStart, err)
		}
		ns = append(ns, n)
	}
	if s.cfg.MQTTBroker != "" {
		m, err := notify.NewMQTT(notify.MQTTConfig{
			Broker:   s.cfg.MQTTBroker,
			ClientID: s.cfg.MQTTClientID,
			Topic:    s.cfg.MQTTTopic,
			Username: s.cfg.MQTTUsername,
			Password: s.cfg.MQTTPassword,
		}, notify.WithQoS(1), notify.WithMQTTLogger(s.logger.Named("mqtt")))
		if err != nil {
			// local alerts must keep working without the fleet broker
			s.logger.Warn(ctx, "mqtt publishing disabled", logger.Error(err))
			metrics.RecordErrorByComponent("notify", "mqtt_connect")
		} else {
			s.mqtt = m
			ns = append(ns, m)
		}
	}
	ns = append(ns, s.extraNotifiers...)

	s.notifiers = s.notifiers[:0]
	for _, n := range ns {
		s.notifiers = append(s.notifiers, n.Name())
	}
	return ns, nil
}

// Stop drains pending deliveries and closes the alert log and broker
// connection.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping drowsiness service...")

	err := s.pool.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(ctx, "delivery workers did not drain", logger.Error(err))
	}
	s.cancel()
	s.closeOutputs()

	s.started = false
	s.logger.Info(ctx, "drowsiness service stopped", logger.Any("delivered", s.pool.Processed()))
	return err
}

func (s *Service) closeOutputs() {
	if s.alertLog != nil {
		if err := s.alertLog.Close(); err != nil {
			s.logger.Error(context.Background(), "close alert log", logger.Error(err))
		}
		s.alertLog = nil
	}
	if s.mqtt != nil {
		s.mqtt.Close()
		s.mqtt = nil
	}
}

// ProcessFrame runs one frame through the engine, records and dispatches
// the alerts it fires and publishes the result.
func (s *Service) ProcessFrame(ctx context.Context, f model.Frame) (model.FrameResult, error) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.FrameResult{}, ErrNotStarted
	}

	start := time.Now()
	s.engineMu.Lock()
	res, err := s.engine.ProcessFrame(ctx, f)
	if err != nil {
		s.engineMu.Unlock()
		s.framesRejected.Add(1)
		metrics.RecordFrameRejected(rejectReason(err))
		s.logger.Debug(ctx, "frame rejected", logger.String("frame_id", f.ID), logger.Error(err))
		return model.FrameResult{}, err
	}
	view := types.NewFrameView(res)
	s.last = &view
	s.dispatch(context.WithoutCancel(ctx), res)
	s.engineMu.Unlock()

	s.framesProcessed.Add(1)
	metrics.RecordFrameProcessed(res.FaceDetected, float64(time.Since(start).Microseconds())/1000)
	if res.FaceDetected {
		metrics.ObserveRatios(res.EAR, res.MAR)
	}
	metrics.UpdateClassification(res.Status.String(), res.Pose.String(), res.EyeClosedStreak, res.YawnStreak)

	s.publisher.Publish(ctx, view)
	return res, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, detector.ErrInvalidFrame):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// dispatch keeps the recent list in frame order and hands alerts to the
// workers. Alerts that carry a log line take the records in order; the
// no-face alert has none. Must be called with engineMu held.
func (s *Service) dispatch(ctx context.Context, res model.FrameResult) { //nolint:gocritic // hugeParam
	// records are written here, in frame order, so the alert log and the
	// recent list never disagree with each other
	for _, rec := range res.LogRecords {
		if err := s.recent.Append(ctx, rec); err != nil {
			s.logger.Error(ctx, "recent alerts append failed", logger.Error(err))
		} else {
			metrics.RecordLogRecord()
		}
		if s.alertLog == nil {
			continue
		}
		if err := s.alertLog.Append(ctx, rec); err != nil {
			metrics.RecordErrorByComponent("service", "alert_log")
			s.logger.Error(ctx, "alert log append failed", logger.Error(err))
		}
	}
	if res.Suppressed > 0 {
		metrics.RecordAlertsSuppressed(res.Suppressed)
	}

	for _, alert := range res.Alerts {
		s.alertsFired.Add(1)
		metrics.RecordAlertFired(string(alert.Category))

		if s.queue.Enqueue(ctx, model.Delivery{Alert: alert}) {
			continue
		}
		s.alertsDropped.Add(1)
		metrics.RecordAlertDropped()
		s.logger.Warn(ctx, "alert delivery dropped, queue full",
			logger.String("alert_id", alert.ID),
			logger.String("category", string(alert.Category)),
		)
	}
}

// SeenAndRecord atomically checks if a frame id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		s.duplicates.Add(1)
		metrics.RecordFrameDuplicate()
	}
	return seen
}

// Unrecord removes a frame ID from the window, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Status returns the detection state and the last frame result.
func (s *Service) Status(context.Context) types.StatusView {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	v := types.StatusView{State: types.NewStateView(s.engine.State(), s.engine.NightMode(), s.engine.Cooldown())}
	if s.last != nil {
		last := *s.last
		v.Last = &last
	}
	return v
}

// RecentAlerts returns up to limit alert log records, newest first.
func (s *Service) RecentAlerts(ctx context.Context, limit int) ([]model.LogRecord, error) {
	return s.recent.Recent(ctx, limit)
}

// SetNightMode sets the night mode flag and returns it.
func (s *Service) SetNightMode(ctx context.Context, on bool) bool {
	s.engineMu.Lock()
	s.engine.SetNightMode(on)
	s.engineMu.Unlock()

	metrics.UpdateNightMode(on)
	s.logger.Info(ctx, "night mode set", logger.Bool("enabled", on))
	return on
}

// ToggleNightMode flips the night mode flag and returns the new value.
func (s *Service) ToggleNightMode(ctx context.Context) bool {
	s.engineMu.Lock()
	on := s.engine.ToggleNightMode()
	s.engineMu.Unlock()

	metrics.UpdateNightMode(on)
	s.logger.Info(ctx, "night mode toggled", logger.Bool("enabled", on))
	return on
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"workerCount":      s.cfg.WorkerCount,
		"queueSize":        s.cfg.QueueSize,
		"dedupeSize":       s.deduper.Size(),
		"framesProcessed":  s.framesProcessed.Load(),
		"framesRejected":   s.framesRejected.Load(),
		"framesDuplicate":  s.duplicates.Load(),
		"alertsFired":      s.alertsFired.Load(),
		"alertsDropped":    s.alertsDropped.Load(),
		"recentAlerts":     s.recent.Count(ctx),
		"cooldownSeconds":  s.cfg.AlertCooldown().Seconds(),
		"alertLogPath":     s.cfg.AlertLogPath,
		"notifierChannels": append([]string(nil), s.notifiers...),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["deliveriesProcessed"] = s.pool.Processed()
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
