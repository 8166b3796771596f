// Package notify delivers fired alerts to the driver and to external
// systems: spoken text, desktop notifications, MQTT and the service log.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/okian/drowsy/internal/domain/model"
)

// Notifier delivers one alert over one channel.
type Notifier interface {
	// Name identifies the channel in logs and metrics.
	Name() string
	Notify(ctx context.Context, alert model.AlertEvent) error
}

// Runner starts an external program and waits for it to exit.
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the program with os/exec, killing it when ctx ends.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrCommandFailed, name, err, msg)
		}
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, name, err)
	}
	return nil
}

// splitCommand splits a configured command line such as "espeak -s 150"
// into the program and its leading arguments.
func splitCommand(command string) (string, []string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, ErrNoCommand
	}
	return fields[0], fields[1:], nil
}
