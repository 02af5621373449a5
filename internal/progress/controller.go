// Package progress drives the client-side generation animation: a bounded
// ramp while the server works, a forced jump to completion when it answers.
package progress

import (
	"context"
	"sync"
	"time"
)

// State names the controller phases.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Runner performs the actual work while the controller animates.
type Runner func(ctx context.Context) (any, error)

// Callbacks receive controller output. All callbacks for one cycle fire
// from that cycle's goroutine; a terminal callback (OnResult or OnError)
// fires exactly once per cycle.
type Callbacks struct {
	// OnProgress receives values in [0, 1]. The final 1.0 arrives before
	// the terminal callback.
	OnProgress func(v float64)
	OnResult   func(result any)
	OnError    func(err error)
}

// Config tunes the animation.
type Config struct {
	// TickInterval is the animation period.
	TickInterval time.Duration
	// Step is added to the value on every tick.
	Step float64
	// Cap bounds the animated value; only a real result moves it to 1.
	Cap float64
}

// DefaultConfig matches the panel's animation: 200ms ticks of 0.14,
// capped at 70% until the server answers.
func DefaultConfig() Config {
	return Config{
		TickInterval: 200 * time.Millisecond,
		Step:         0.14,
		Cap:          0.70,
	}
}

// Controller is the progress state machine. Triggering while a cycle is
// running replaces it: the old cycle is canceled and its callbacks are
// suppressed, so observers only ever see the latest request.
type Controller struct {
	cfg Config
	cb  Callbacks

	mu     sync.Mutex
	state  State
	value  float64
	cycle  uint64
	cancel context.CancelFunc
}

// NewController creates an idle controller. Zero config fields fall back
// to the defaults.
func NewController(cfg Config, cb Callbacks) *Controller {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.Cap <= 0 || cfg.Cap > 1 {
		cfg.Cap = def.Cap
	}
	return &Controller{cfg: cfg, cb: cb, state: StateIdle}
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Value returns the current progress in [0, 1].
func (c *Controller) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Trigger starts a new cycle running fn. Any in-flight cycle is canceled
// first; its pending callbacks never fire.
func (c *Controller) Trigger(ctx context.Context, fn Runner) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.cycle++
	id := c.cycle
	c.state = StateRunning
	c.value = 0
	c.mu.Unlock()

	go c.run(runCtx, id, fn)
}

// Cancel aborts the current cycle, returning the controller to idle
// without a terminal callback.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state == StateRunning {
		c.state = StateIdle
		c.value = 0
	}
}

func (c *Controller) run(ctx context.Context, id uint64, fn Runner) {
	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := fn(ctx)
		done <- outcome{result: result, err: err}
	}()

	ticker := time.NewTicker(c.cfg.TickInterval)
	// The ticker stops on every exit path, including panics in callbacks.
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if v, ok := c.advance(id); ok {
				c.emitProgress(v)
			}
		case out := <-done:
			c.finish(id, out.result, out.err)
			return
		case <-ctx.Done():
			// Superseded or canceled: no callbacks for this cycle.
			return
		}
	}
}

// advance bumps the animated value up to the cap. It reports false when
// this cycle has been superseded.
func (c *Controller) advance(id uint64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cycle != id || c.state != StateRunning {
		return 0, false
	}
	c.value += c.cfg.Step
	if c.value > c.cfg.Cap {
		c.value = c.cfg.Cap
	}
	return c.value, true
}

// finish applies the terminal transition exactly once for this cycle.
func (c *Controller) finish(id uint64, result any, err error) {
	c.mu.Lock()
	if c.cycle != id || c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	// Either answer forces the bar to 100% regardless of the cap; a
	// failure just renders it in the error color instead of freezing
	// mid-animation.
	c.value = 1.0
	if err != nil {
		c.state = StateFailed
		c.mu.Unlock()

		c.emitProgress(1.0)
		if c.cb.OnError != nil {
			c.cb.OnError(err)
		}
		return
	}
	c.state = StateDone
	c.mu.Unlock()

	c.emitProgress(1.0)
	if c.cb.OnResult != nil {
		c.cb.OnResult(result)
	}
}

func (c *Controller) emitProgress(v float64) {
	if c.cb.OnProgress != nil {
		c.cb.OnProgress(v)
	}
}
