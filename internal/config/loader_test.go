package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/drowsy/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.EARConsecFrames, convey.ShouldEqual, 15)
				convey.So(cfg.SpeechCommand, convey.ShouldEqual, "espeak")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("DROWSY_ADDR", ":8080")
			t.Setenv("DROWSY_EAR_THRESHOLD", "0.22")
			t.Setenv("DROWSY_EAR_CONSEC_FRAMES", "20")
			t.Setenv("DROWSY_NIGHT_MODE", "true")
			t.Setenv("DROWSY_NOTIFY_COMMAND", "dunstify")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EARThreshold, convey.ShouldEqual, 0.22)
				convey.So(cfg.EARConsecFrames, convey.ShouldEqual, 20)
				convey.So(cfg.NightMode, convey.ShouldBeTrue)
				convey.So(cfg.NotifyCommand, convey.ShouldEqual, "dunstify")
				convey.So(cfg.MARThreshold, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := filepath.Join(t.TempDir(), "drowsy.yaml")
			yaml := "addr: \":7070\"\nalert_cooldown_seconds: 4.5\nmqtt_broker: tcp://broker:1883\nworker_count: 4\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			t.Setenv("DROWSY_CONFIG", path)
			t.Setenv("DROWSY_WORKER_COUNT", "8")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.AlertCooldownSeconds, convey.ShouldEqual, 4.5)
				convey.So(cfg.MQTTBroker, convey.ShouldEqual, "tcp://broker:1883")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When the config file is missing", func() {
			t.Setenv("DROWSY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the loaded values are inconsistent", func() {
			t.Setenv("DROWSY_YAW_LEFT_THRESHOLD", "45")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}
