//go:build windows

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
)

func setupSignalHandlers(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		for sig := range sigChan {
			logger.Info("shutdown signal received", "signal", sig)
			cancel()
			return
		}
	}()
}
