// Package config defines service configuration and loading.
//
// Values are layered: defaults from New, then an optional YAML file named by
// DROWSY_CONFIG, then DROWSY_* environment variables.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Eye and mouth hysteresis.
	EARThreshold     float64 `koanf:"ear_threshold"`
	EARConsecFrames  int     `koanf:"ear_consec_frames"`
	MARThreshold     float64 `koanf:"mar_threshold"`
	YawnConsecFrames int     `koanf:"yawn_consec_frames"`

	// Head pose thresholds in degrees.
	PitchDownThreshold float64 `koanf:"pitch_down_threshold"`
	YawRightThreshold  float64 `koanf:"yaw_right_threshold"`
	YawLeftThreshold   float64 `koanf:"yaw_left_threshold"`
	RollLeftThreshold  float64 `koanf:"roll_left_threshold"`
	RollRightThreshold float64 `koanf:"roll_right_threshold"`

	// AlertCooldownSeconds is the minimum gap between two alerts.
	AlertCooldownSeconds float64 `koanf:"alert_cooldown_seconds"`

	// NightMode is the initial night mode flag.
	NightMode bool `koanf:"night_mode"`

	// QueueSize bounds the alert delivery queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of delivery workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many frame IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// RecentAlerts is how many log records GET /alerts can return.
	RecentAlerts int `koanf:"recent_alerts"`

	// AlertLogPath is the append-only alert log. Empty disables it.
	AlertLogPath string `koanf:"alert_log_path"`

	// SpeechCommand speaks alert messages. Empty disables it.
	SpeechCommand string `koanf:"speech_command"`

	// NotifyCommand shows desktop notifications. Empty disables it.
	NotifyCommand string `koanf:"notify_command"`

	// DeliveryTimeoutMS bounds each notifier call.
	DeliveryTimeoutMS int `koanf:"delivery_timeout_ms"`

	// MQTT alert publishing. An empty broker disables it.
	MQTTBroker   string `koanf:"mqtt_broker"`
	MQTTTopic    string `koanf:"mqtt_topic"`
	MQTTClientID string `koanf:"mqtt_client_id"`
	MQTTUsername string `koanf:"mqtt_username"`
	MQTTPassword string `koanf:"mqtt_password"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		EARThreshold:         0.25,
		EARConsecFrames:      15,
		MARThreshold:         0.5,
		YawnConsecFrames:     15,
		PitchDownThreshold:   -15,
		YawRightThreshold:    20,
		YawLeftThreshold:     -20,
		RollLeftThreshold:    15,
		RollRightThreshold:   -15,
		AlertCooldownSeconds: 10,
		QueueSize:            256,
		WorkerCount:          2,
		DedupeSize:           10_000,
		RecentAlerts:         100,
		AlertLogPath:         "drowsiness_log.csv",
		SpeechCommand:        "espeak",
		NotifyCommand:        "notify-send",
		DeliveryTimeoutMS:    5000,
		MQTTTopic:            "drowsy/alerts",
		MQTTClientID:         "drowsy",
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.EARConsecFrames < 1:
		return fmt.Errorf("%w: ear_consec_frames must be at least 1", ErrInvalidConfig)
	case c.YawnConsecFrames < 1:
		return fmt.Errorf("%w: yawn_consec_frames must be at least 1", ErrInvalidConfig)
	case c.AlertCooldownSeconds < 0:
		return fmt.Errorf("%w: alert_cooldown_seconds must not be negative", ErrInvalidConfig)
	case c.YawLeftThreshold >= c.YawRightThreshold:
		return fmt.Errorf("%w: yaw_left_threshold must be below yaw_right_threshold", ErrInvalidConfig)
	case c.RollRightThreshold >= c.RollLeftThreshold:
		return fmt.Errorf("%w: roll_right_threshold must be below roll_left_threshold", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be at least 1", ErrInvalidConfig)
	case c.MQTTBroker != "" && c.MQTTTopic == "":
		return fmt.Errorf("%w: mqtt_topic is required with mqtt_broker", ErrInvalidConfig)
	}
	return nil
}

// AlertCooldown returns the cooldown as a duration.
func (c *Config) AlertCooldown() time.Duration {
	return time.Duration(c.AlertCooldownSeconds * float64(time.Second))
}

// DeliveryTimeout returns the per-notifier timeout as a duration.
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutMS) * time.Millisecond
}
