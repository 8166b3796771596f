package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/pkg/logger"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// MQTT publishes alerts as JSON for fleet monitoring.
type MQTT struct {
	client   paho.Client
	topic    string
	qos      byte
	retained bool
	logger   logger.Logger
}

// MQTTConfig holds the broker connection settings.
type MQTTConfig struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string
	Username string
	Password string
}

// NewMQTT connects to the broker and returns a notifier publishing to cfg.Topic.
func NewMQTT(cfg MQTTConfig, opts ...MQTTOption) (*MQTT, error) {
	po := paho.NewClientOptions()
	po.AddBroker(cfg.Broker)
	po.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		po.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		po.SetPassword(cfg.Password)
	}
	po.SetAutoReconnect(true)
	po.SetCleanSession(true)
	po.SetConnectTimeout(connectTimeout)

	m := newMQTT(nil, cfg.Topic, opts...)
	po.SetConnectionLostHandler(func(_ paho.Client, err error) {
		m.logger.Warn(context.Background(), "mqtt connection lost", logger.Error(err))
	})
	m.client = paho.NewClient(po)

	token := m.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: %s: timed out", ErrConnect, cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, cfg.Broker, err)
	}
	m.logger.Info(context.Background(), "mqtt connected",
		logger.String("broker", cfg.Broker),
		logger.String("topic", cfg.Topic),
	)
	return m, nil
}

// NewMQTTWithClient wraps an already configured client.
func NewMQTTWithClient(client paho.Client, topic string, opts ...MQTTOption) *MQTT {
	return newMQTT(client, topic, opts...)
}

func newMQTT(client paho.Client, topic string, opts ...MQTTOption) *MQTT {
	m := &MQTT{
		client: client,
		topic:  topic,
		qos:    1,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MQTT) Name() string { return "mqtt" }

// Notify publishes the alert and waits for the broker acknowledgement or ctx.
func (m *MQTT) Notify(ctx context.Context, alert model.AlertEvent) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("%w: encode alert: %w", ErrPublish, err)
	}

	token := m.client.Publish(m.topic, m.qos, m.retained, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("%w: topic %s: %w", ErrPublish, m.topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: topic %s: %w", ErrPublish, m.topic, ctx.Err())
	}
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(disconnectQuiesce)
}
