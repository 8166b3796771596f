package notify

import "github.com/okian/drowsy/pkg/logger"

// CommandOption applies a configuration option to command based notifiers.
type CommandOption func(*commandNotifier)

// WithRunner replaces the process runner. Tests use it to capture invocations.
func WithRunner(r Runner) CommandOption {
	return func(n *commandNotifier) {
		if r != nil {
			n.run = r
		}
	}
}

// MQTTOption applies a configuration option to the MQTT notifier.
type MQTTOption func(*MQTT)

// WithQoS sets the MQTT quality of service level (0, 1 or 2).
func WithQoS(qos byte) MQTTOption {
	return func(m *MQTT) {
		if qos <= 2 {
			m.qos = qos
		}
	}
}

// WithRetained marks published alerts as retained messages.
func WithRetained(retained bool) MQTTOption {
	return func(m *MQTT) {
		m.retained = retained
	}
}

// WithMQTTLogger sets the logger used for connection events.
func WithMQTTLogger(l logger.Logger) MQTTOption {
	return func(m *MQTT) {
		if l != nil {
			m.logger = l
		}
	}
}
