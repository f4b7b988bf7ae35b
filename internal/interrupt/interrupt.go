// Package interrupt turns SIGINT and SIGTERM into context cancellation.
package interrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Notify returns a context that is cancelled on the first SIGINT or
// SIGTERM. callback, if not nil, runs before the cancellation. After the
// first signal the default handling is restored, so a second Ctrl-C
// terminates the process. stop releases the handler.
func Notify(parent context.Context, callback func(os.Signal)) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case sig := <-sigChan:
			signal.Stop(sigChan)
			if callback != nil {
				callback(sig)
			}
			cancel()
		case <-ctx.Done():
			// Context was cancelled elsewhere
			signal.Stop(sigChan)
		}
	}()

	return ctx, cancel
}
