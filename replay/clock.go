// Package replay drives a cursor across a price series at a fixed interval,
// revealing one sample per tick.
package replay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidInput = errors.New("invalid replay input")

// Sequence is anything with a length the clock can walk.
type Sequence interface {
	Len() int
}

type Options struct {
	Interval       time.Duration
	InitialVisible int
}

// Handler receives the clock's callbacks. Both run on the clock goroutine and
// are never invoked concurrently for one run.
type Handler struct {
	// Tick is called with the new cursor after it advances.
	Tick func(cursor int)
	// End is called once, with the last index, when the sequence runs out.
	End func(last int)
}

// Ticker is the clock's time source.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker for one run.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// RealTicker is the default TickerFactory backed by time.Ticker.
func RealTicker(d time.Duration) Ticker { return timeTicker{t: time.NewTicker(d)} }

type ClockOption func(*Clock)

func WithTicker(f TickerFactory) ClockOption {
	return func(c *Clock) {
		if f != nil {
			c.newTicker = f
		}
	}
}

func WithLogger(l *zap.Logger) ClockOption {
	return func(c *Clock) {
		if l != nil {
			c.log = l
		}
	}
}

// Clock schedules ticks for one run at a time. Starting a new run cancels the
// previous one.
type Clock struct {
	mu        sync.Mutex
	current   *run
	newTicker TickerFactory
	log       *zap.Logger
}

func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{newTicker: RealTicker, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type run struct {
	cursor atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

func newRun(start int) *run {
	r := &run{closed: make(chan struct{}), done: make(chan struct{})}
	r.cursor.Store(int64(start))
	return r
}

func (r *run) stop() { r.closeOnce.Do(func() { close(r.closed) }) }

func (r *run) stopped() bool {
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}

// Start validates the input and begins a run with the cursor at
// InitialVisible-1. Any run already in progress is stopped first.
func (c *Clock) Start(ctx context.Context, seq Sequence, opts Options, h Handler) error {
	if seq == nil {
		return fmt.Errorf("%w: nil sequence", ErrInvalidInput)
	}
	n := seq.Len()
	switch {
	case opts.InitialVisible < 1:
		return fmt.Errorf("%w: initial visible %d < 1", ErrInvalidInput, opts.InitialVisible)
	case n < opts.InitialVisible:
		return fmt.Errorf("%w: %d samples < initial visible %d", ErrInvalidInput, n, opts.InitialVisible)
	case opts.Interval <= 0:
		return fmt.Errorf("%w: interval %s", ErrInvalidInput, opts.Interval)
	}

	r := newRun(opts.InitialVisible - 1)

	c.mu.Lock()
	if c.current != nil {
		c.current.stop()
	}
	c.current = r
	t := c.newTicker(opts.Interval)
	c.mu.Unlock()

	c.log.Debug("replay started",
		zap.Int("samples", n),
		zap.Int("cursor", opts.InitialVisible-1),
		zap.Duration("interval", opts.Interval))

	go c.loop(ctx, r, t, n, h)
	return nil
}

func (c *Clock) loop(ctx context.Context, r *run, t Ticker, n int, h Handler) {
	defer close(r.done)
	defer t.Stop()

	for {
		select {
		case <-r.closed:
			return
		case <-ctx.Done():
			r.stop()
			return
		case <-t.C():
		}

		// A Stop that raced with the tick wins.
		if r.stopped() {
			return
		}

		next := int(r.cursor.Load()) + 1
		if next >= n {
			r.stop()
			c.log.Debug("replay ended", zap.Int("last", n-1))
			if h.End != nil {
				h.End(n - 1)
			}
			return
		}
		r.cursor.Store(int64(next))
		if h.Tick != nil {
			h.Tick(next)
		}
	}
}

// Stop cancels future ticks of the current run. It never blocks, so it is
// safe to call from inside a Tick or End callback, and it is a no-op when
// nothing is running.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.stop()
	}
}

// Cursor reports the current run's cursor, or -1 before the first Start.
func (c *Clock) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return -1
	}
	return int(c.current.cursor.Load())
}

// Running reports whether the current run can still tick.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && !c.current.stopped()
}

// Done is closed when the current run's goroutine exits. With no run it
// returns a closed channel.
func (c *Clock) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.current.done
}
