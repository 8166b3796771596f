package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerWriter(t *testing.T) {
	Convey("Given a logger writing JSON to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf, true), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "frame processed",
				String("status", "Drowsy"),
				Float64("ear", 0.12),
				Bool("face", true),
				Duration("took", 3*time.Millisecond),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries every field and the caller", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "frame processed")
				So(rec["status"], ShouldEqual, "Drowsy")
				So(rec["face"], ShouldEqual, true)
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")

			Convey("Then info records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
			_ = SetLevelString("info")
		})

		Convey("When using a named logger", func() {
			Named("worker").Info(ctx, "hello")

			Convey("Then the component is attached", func() {
				So(buf.String(), ShouldContainSubstring, `"component":"worker"`)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		err := SetLevelString("verbose")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "unknown log level"), ShouldBeTrue)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() { l.Info(context.Background(), "ignored") }, ShouldNotPanic)
		So(func() { l.Named("x").Debug(nil, "ignored") }, ShouldNotPanic) //nolint:staticcheck // nil ctx is tolerated
	})
}
