package engine

import (
	"context"
	"time"
)

// Scheduler paces the animation loop.
type Scheduler interface {
	// Next blocks until the next frame is due. It returns ctx.Err() once the
	// context is done.
	Next(ctx context.Context) error
}

// DefaultFPS is the frame rate used for non-positive fps values.
const DefaultFPS = 60

// Ticker is a Scheduler backed by a time.Ticker.
type Ticker struct {
	t *time.Ticker
}

// NewTicker returns a scheduler firing fps times per second.
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Ticker{t: time.NewTicker(time.Second / time.Duration(fps))}
}

// Next waits for the next tick.
func (t *Ticker) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.t.C:
		return nil
	}
}

// Stop releases the ticker.
func (t *Ticker) Stop() { t.t.Stop() }

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(ctx context.Context) error

// Next calls f(ctx).
func (f SchedulerFunc) Next(ctx context.Context) error { return f(ctx) }

// Run ticks against r every time sched fires until ctx is done. It returns nil
// when the context was cancelled and the scheduler's error otherwise.
func (e *Engine) Run(ctx context.Context, r Renderer, sched Scheduler) error {
	e.logger.Debug("animation loop started")
	defer e.logger.Debug("animation loop stopped")
	for {
		if err := sched.Next(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		e.Tick(r)
	}
}
