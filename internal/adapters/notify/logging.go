package notify

import (
	"context"

	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/pkg/logger"
)

// Logging writes every alert to the service log.
type Logging struct {
	logger logger.Logger
}

// NewLogging creates a notifier that logs alerts at warn level.
func NewLogging(l logger.Logger) *Logging {
	return &Logging{logger: l}
}

func (n *Logging) Name() string { return "log" }

func (n *Logging) Notify(ctx context.Context, alert model.AlertEvent) error {
	n.logger.Warn(ctx, alert.Message,
		logger.String("alert_id", alert.ID),
		logger.String("category", string(alert.Category)),
		logger.String("status", alert.Status.String()),
		logger.String("pose", alert.Pose.String()),
		logger.Time("at", alert.At),
	)
	return nil
}
