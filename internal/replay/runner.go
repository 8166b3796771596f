package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/pkg/logger"
)

const (
	defaultFPS     = 30
	cooldownMargin = time.Second
)

// RunScenario generates the frames of sc, submits them in order and checks
// the server reacted as expected.
func RunScenario(ctx context.Context, cfg *Config, sc Scenario) (*Stats, error) { //nolint:gocritic // hugeParam
	log := logger.Get().Named("replay")
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Health(ctx); err != nil {
		return nil, err
	}
	start, err := startTime(ctx, client, time.Now())
	if err != nil {
		return nil, err
	}

	frames := Generate(sc, start, cfg.FPS)
	log.Info(ctx, "replaying scenario",
		logger.String("scenario", sc.Name),
		logger.Int("frames", len(frames)),
		logger.Time("start", start),
	)
	if cfg.OutputFile != "" {
		if err := SaveFrames(cfg.OutputFile, frames); err != nil {
			log.Warn(ctx, "failed to save frames", logger.Error(err))
		} else {
			log.Info(ctx, "frames saved", logger.String("file", cfg.OutputFile))
		}
	}

	stats, err := submit(ctx, cfg, client, frames)
	if err != nil {
		return stats, err
	}
	return stats, Verify(sc.Expect, stats)
}

// RunFile replays recorded frames as they are. Nothing is verified beyond
// deduplication when Resend is set.
func RunFile(ctx context.Context, cfg *Config, path string) (*Stats, error) {
	frames, err := ReadFramesFile(path)
	if err != nil {
		return nil, err
	}
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, err
	}
	logger.Get().Named("replay").Info(ctx, "replaying file",
		logger.String("file", path),
		logger.Int("frames", len(frames)),
	)
	return submit(ctx, cfg, client, frames)
}

// startTime picks the first capture time. It is moved past the server's
// cooldown so alerts from an earlier run cannot suppress this one.
func startTime(ctx context.Context, client *Client, now time.Time) (time.Time, error) {
	st, err := client.Status(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if st.State.LastAlertAt == nil {
		return now, nil
	}
	cooldown := time.Duration(st.State.CooldownSeconds * float64(time.Second))
	earliest := st.State.LastAlertAt.Add(cooldown + cooldownMargin)
	if earliest.After(now) {
		return earliest, nil
	}
	return now, nil
}

// submit posts frames one at a time; the engine's counters depend on order.
func submit(ctx context.Context, cfg *Config, client *Client, frames []Frame) (*Stats, error) {
	log := logger.Get().Named("replay")
	stats := newStats()
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	if len(frames) == 0 {
		return stats, ErrNoFrames
	}

	for i := range frames {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("replay interrupted after %d frames: %w", i, err)
		}

		outcome, view, err := client.PostFrame(ctx, frames[i])
		stats.FramesSubmitted++
		switch {
		case outcome == OutcomeProcessed && view != nil:
			stats.FramesProcessed++
			for _, a := range view.Alerts {
				stats.Alerts[model.AlertCategory(a.Category)]++
				log.Info(ctx, "alert fired",
					logger.String("category", a.Category),
					logger.String("message", a.Message),
					logger.Int("frame", i),
				)
			}
			stats.Logged += len(view.Logged)
			stats.FinalStatus = view.Status
			stats.FinalPose = view.Pose
			if cfg.Verbose {
				log.Debug(ctx, "frame processed",
					logger.Int("frame", i),
					logger.String("status", view.Status),
					logger.String("pose", view.Pose),
					logger.Float64("ear", view.EAR),
					logger.Float64("mar", view.MAR),
				)
			}
		case outcome == OutcomeDuplicate:
			stats.FramesDuplicate++
		case outcome == OutcomeRejected:
			stats.FramesRejected++
			log.Warn(ctx, "frame rejected", logger.Int("frame", i), logger.Error(err))
		default:
			stats.FramesFailed++
			log.Error(ctx, "frame submission failed", logger.Int("frame", i), logger.Error(err))
		}
	}

	if cfg.Resend {
		outcome, _, err := client.PostFrame(ctx, frames[0])
		stats.FramesSubmitted++
		if outcome != OutcomeDuplicate {
			return stats, fmt.Errorf("%w: resent frame %s was %s: %v", ErrExpectation, frames[0].ID, outcome, err)
		}
		stats.FramesDuplicate++
	}
	return stats, nil
}
