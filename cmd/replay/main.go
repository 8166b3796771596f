package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/drowsy/internal/replay"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := replay.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
