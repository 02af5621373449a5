package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu       sync.Mutex
	values   []float64
	results  []any
	errs     []error
	terminal chan struct{}
}

func newCapture() *capture {
	return &capture{terminal: make(chan struct{}, 10)}
}

func (c *capture) callbacks() Callbacks {
	return Callbacks{
		OnProgress: func(v float64) {
			c.mu.Lock()
			c.values = append(c.values, v)
			c.mu.Unlock()
		},
		OnResult: func(result any) {
			c.mu.Lock()
			c.results = append(c.results, result)
			c.mu.Unlock()
			c.terminal <- struct{}{}
		},
		OnError: func(err error) {
			c.mu.Lock()
			c.errs = append(c.errs, err)
			c.mu.Unlock()
			c.terminal <- struct{}{}
		},
	}
}

func (c *capture) waitTerminal(t *testing.T) {
	t.Helper()
	select {
	case <-c.terminal:
	case <-time.After(2 * time.Second):
		t.Fatal("terminal callback never fired")
	}
}

func (c *capture) snapshot() ([]float64, []any, []error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.values...), append([]any(nil), c.results...), append([]error(nil), c.errs...)
}

func fastConfig() Config {
	return Config{TickInterval: 2 * time.Millisecond, Step: 0.14, Cap: 0.70}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 200*time.Millisecond, cfg.TickInterval)
	assert.InDelta(t, 0.14, cfg.Step, 0.0001)
	assert.InDelta(t, 0.70, cfg.Cap, 0.0001)
}

func TestControllerStartsIdle(t *testing.T) {
	c := NewController(Config{}, Callbacks{})
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, c.Value())
}

func TestSuccessfulCycle(t *testing.T) {
	cap := newCapture()
	c := NewController(fastConfig(), cap.callbacks())

	release := make(chan struct{})
	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		<-release
		return "resultado", nil
	})
	assert.Equal(t, StateRunning, c.State())

	// Let the animation tick well past the cap.
	time.Sleep(30 * time.Millisecond)
	close(release)
	cap.waitTerminal(t)

	values, results, errs := cap.snapshot()
	require.NotEmpty(t, values)
	// Animated values never exceed the cap; only the terminal jump does.
	for _, v := range values[:len(values)-1] {
		assert.LessOrEqual(t, v, 0.70+1e-9)
	}
	assert.Equal(t, 1.0, values[len(values)-1])

	require.Len(t, results, 1)
	assert.Equal(t, "resultado", results[0])
	assert.Empty(t, errs)
	assert.Equal(t, StateDone, c.State())
	assert.Equal(t, 1.0, c.Value())
}

func TestValueCappedWhileRunning(t *testing.T) {
	cap := newCapture()
	c := NewController(fastConfig(), cap.callbacks())

	release := make(chan struct{})
	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	})

	// 0.14 per 2ms tick reaches the 0.70 cap after five ticks.
	time.Sleep(40 * time.Millisecond)
	assert.InDelta(t, 0.70, c.Value(), 0.0001)
	assert.Equal(t, StateRunning, c.State())

	close(release)
	cap.waitTerminal(t)
}

func TestFailedCycle(t *testing.T) {
	cap := newCapture()
	c := NewController(fastConfig(), cap.callbacks())

	boom := errors.New("server unreachable")
	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		return nil, boom
	})
	cap.waitTerminal(t)

	values, results, errs := cap.snapshot()
	assert.Empty(t, results)
	require.Len(t, errs, 1)
	assert.Equal(t, boom, errs[0])
	assert.Equal(t, StateFailed, c.State())
	// Failure force-completes the bar too, it only changes the color.
	assert.Equal(t, 1.0, c.Value())
	require.NotEmpty(t, values)
	assert.Equal(t, 1.0, values[len(values)-1])
}

func TestFailedCycleCompletesAfterCap(t *testing.T) {
	cap := newCapture()
	c := NewController(fastConfig(), cap.callbacks())

	release := make(chan struct{})
	boom := errors.New("plan not found")
	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		<-release
		return nil, boom
	})

	// Sit at the cap first, then fail.
	time.Sleep(30 * time.Millisecond)
	assert.InDelta(t, 0.70, c.Value(), 0.0001)
	close(release)
	cap.waitTerminal(t)

	values, _, errs := cap.snapshot()
	require.Len(t, errs, 1)
	for _, v := range values[:len(values)-1] {
		assert.LessOrEqual(t, v, 0.70+1e-9)
	}
	assert.Equal(t, 1.0, values[len(values)-1])
	assert.Equal(t, 1.0, c.Value())
}

func TestTerminalCallbackFiresOnce(t *testing.T) {
	cap := newCapture()
	c := NewController(fastConfig(), cap.callbacks())

	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		return 1, nil
	})
	cap.waitTerminal(t)

	// Allow any stray double-fire to land.
	time.Sleep(20 * time.Millisecond)
	_, results, errs := cap.snapshot()
	assert.Len(t, results, 1)
	assert.Empty(t, errs)
}

func TestRetriggerReplacesCycle(t *testing.T) {
	cap := newCapture()
	c := NewController(fastConfig(), cap.callbacks())

	firstDone := make(chan struct{})
	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		<-ctx.Done()
		close(firstDone)
		return "stale", nil
	})

	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		return "fresh", nil
	})
	cap.waitTerminal(t)

	select {
	case <-firstDone:
	case <-time.After(time.Second):
		t.Fatal("first cycle was not canceled")
	}
	time.Sleep(20 * time.Millisecond)

	_, results, _ := cap.snapshot()
	require.Len(t, results, 1)
	assert.Equal(t, "fresh", results[0])
}

func TestCancelReturnsToIdle(t *testing.T) {
	cap := newCapture()
	c := NewController(fastConfig(), cap.callbacks())

	c.Trigger(context.Background(), func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	time.Sleep(10 * time.Millisecond)
	c.Cancel()

	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, c.Value())

	// No terminal callback after cancel.
	select {
	case <-cap.terminal:
		t.Fatal("canceled cycle fired a terminal callback")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	c := NewController(Config{}, Callbacks{})
	assert.Equal(t, DefaultConfig(), c.cfg)
}
