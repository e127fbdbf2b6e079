package database

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithInterrupt returns a copy of parent that is canceled on SIGINT or SIGTERM.
// onSignal, if non-nil, is called with the signal before the context is
// canceled. Catalog queries observe the context, so an interrupted command
// fails at its next database round trip.
//
// stop releases the signal registration and cancels the context.
func WithInterrupt(parent context.Context, onSignal func(os.Signal)) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
