package replay

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/okian/drowsy/internal/domain/model"
)

// Verify compares a run against the expectation and reports every mismatch.
func Verify(exp Expectation, stats *Stats) error {
	var errs []error

	if stats.FramesFailed > 0 || stats.FramesRejected > 0 {
		errs = append(errs, fmt.Errorf("%w: %d frames failed, %d rejected",
			ErrExpectation, stats.FramesFailed, stats.FramesRejected))
	}

	cats := make([]string, 0, len(exp.Alerts))
	for c := range exp.Alerts {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		want := exp.Alerts[model.AlertCategory(c)]
		if got := stats.Alerts[model.AlertCategory(c)]; got != want {
			errs = append(errs, fmt.Errorf("%w: %s alerts: got %d, want %d", ErrExpectation, c, got, want))
		}
	}

	if exp.FinalStatus != "" && stats.FinalStatus != exp.FinalStatus.String() {
		errs = append(errs, fmt.Errorf("%w: final status: got %q, want %q",
			ErrExpectation, stats.FinalStatus, exp.FinalStatus))
	}

	return errors.Join(errs...)
}

// PrintSummary writes a human readable report of a run.
func PrintSummary(w io.Writer, stats *Stats) {
	var fps float64
	if stats.Duration > 0 {
		fps = float64(stats.FramesSubmitted) / stats.Duration.Seconds()
	}

	fmt.Fprintf(w, "frames:   %d submitted, %d processed, %d duplicate, %d rejected, %d failed\n",
		stats.FramesSubmitted, stats.FramesProcessed, stats.FramesDuplicate, stats.FramesRejected, stats.FramesFailed)

	cats := make([]string, 0, len(stats.Alerts))
	for c := range stats.Alerts {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	fmt.Fprintf(w, "alerts:   %d", stats.TotalAlerts())
	for _, c := range cats {
		fmt.Fprintf(w, ", %s=%d", c, stats.Alerts[model.AlertCategory(c)])
	}
	fmt.Fprintf(w, " (%d logged)\n", stats.Logged)

	if stats.FinalStatus != "" {
		fmt.Fprintf(w, "final:    %s, %s\n", stats.FinalStatus, stats.FinalPose)
	}
	fmt.Fprintf(w, "duration: %s (%.0f frames/s)\n", stats.Duration.Round(time.Millisecond), fps)
}
