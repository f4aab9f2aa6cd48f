package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	appLog "holidaycal/internal/log"
)

const version = "0.1.0-dev"

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		appLog.Error("command failed", err)
	}
	appLog.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
