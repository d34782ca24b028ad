// Package interrupt tracks whether the application may stop right now and
// whether the user asked it to.
package interrupt

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/errors"
)

// Guard is the cooperative cancellation token threaded through transfers.
// Interrupts received while a transfer is unsafe to stop are deferred until
// the transfer ends; a second interrupt during the same transfer cancels it.
type Guard struct {
	mu        sync.Mutex
	unsafe    bool
	requested bool
	forced    bool
	cancel    context.CancelFunc
}

// NewGuard returns a guard with no pending request.
func NewGuard() *Guard {
	return &Guard{}
}

// Notify registers one interrupt.
func (g *Guard) Notify() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.unsafe {
		g.requested = true
		return
	}
	if g.requested {
		g.forced = true
		if g.cancel != nil {
			g.cancel()
		}
		return
	}
	g.requested = true
	logger.Warn("Application exit has been requested, the application will stop once the current download finishes. Press CTRL+C again to force exit.")
}

// Requested reports whether an exit was requested.
func (g *Guard) Requested() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requested
}

// Check returns ErrExitRequested once an interrupt has been received.
func (g *Guard) Check() error {
	if g == nil {
		return nil
	}
	if g.Requested() {
		return errors.ErrExitRequested
	}
	return nil
}

// Unsafe runs fn while interrupts are deferred. fn receives a context that
// is cancelled only by a forced exit; in that case Unsafe returns
// ErrForcedExit.
func (g *Guard) Unsafe(ctx context.Context, fn func(ctx context.Context) error) error {
	if g == nil {
		return fn(ctx)
	}
	if err := g.Check(); err != nil {
		return err
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.mu.Lock()
	g.unsafe = true
	g.cancel = cancel
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.unsafe = false
		g.cancel = nil
		g.mu.Unlock()
	}()

	err := fn(attemptCtx)

	g.mu.Lock()
	forced := g.forced
	g.mu.Unlock()
	if forced {
		return errors.Wrap(errors.ErrForcedExit, "transfer aborted")
	}
	return err
}

// Watch calls Notify for every signal received until ctx is done.
func (g *Guard) Watch(ctx context.Context, signals ...os.Signal) error {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			g.Notify()
		}
	}
}
