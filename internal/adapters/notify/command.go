package notify

import (
	"context"

	"github.com/okian/drowsy/internal/domain/model"
)

// commandNotifier runs an external program built from the alert.
type commandNotifier struct {
	name    string
	program string
	args    []string
	build   func(model.AlertEvent) []string
	run     Runner
}

func newCommandNotifier(name, command string, build func(model.AlertEvent) []string, opts []CommandOption) (*commandNotifier, error) {
	program, args, err := splitCommand(command)
	if err != nil {
		return nil, err
	}
	n := &commandNotifier{
		name:    name,
		program: program,
		args:    args,
		build:   build,
		run:     ExecRunner,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *commandNotifier) Name() string { return n.name }

func (n *commandNotifier) Notify(ctx context.Context, alert model.AlertEvent) error {
	args := append(append([]string{}, n.args...), n.build(alert)...)
	return n.run(ctx, n.program, args...)
}

// NewSpeech speaks the alert message with a text-to-speech program that takes
// the text as its last argument, e.g. "espeak" or "spd-say -w".
func NewSpeech(command string, opts ...CommandOption) (Notifier, error) {
	return newCommandNotifier("speech", command, func(a model.AlertEvent) []string {
		return []string{a.Message}
	}, opts)
}

// NewDesktop shows the alert as a desktop notification with a program that
// takes a title and a body, e.g. "notify-send".
func NewDesktop(command string, opts ...CommandOption) (Notifier, error) {
	return newCommandNotifier("desktop", command, func(a model.AlertEvent) []string {
		return []string{a.Title, a.Detail}
	}, opts)
}
