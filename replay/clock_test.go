package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqLen int

func (n seqLen) Len() int { return int(n) }

type probe struct {
	ticks chan int
	ends  chan int
}

func newProbe() *probe {
	return &probe{ticks: make(chan int, 64), ends: make(chan int, 4)}
}

func (p *probe) handler() Handler {
	return Handler{
		Tick: func(c int) { p.ticks <- c },
		End:  func(last int) { p.ends <- last },
	}
}

func recv(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
		return -1
	}
}

func waitDone(t *testing.T, c *Clock) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not exit")
	}
}

func opts(visible int) Options {
	return Options{Interval: time.Millisecond, InitialVisible: visible}
}

func TestStartValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		seq  Sequence
		opts Options
	}{
		{name: "nil_sequence", seq: nil, opts: opts(1)},
		{name: "too_short", seq: seqLen(3), opts: opts(4)},
		{name: "zero_visible", seq: seqLen(3), opts: opts(0)},
		{name: "zero_interval", seq: seqLen(3), opts: Options{InitialVisible: 1}},
		{name: "negative_interval", seq: seqLen(3), opts: Options{Interval: -time.Second, InitialVisible: 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewClock(WithTicker(NewManual().NewTicker))
			err := c.Start(context.Background(), tt.seq, tt.opts, Handler{})
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.False(t, c.Running())
			assert.Equal(t, -1, c.Cursor())
		})
	}
}

func TestClockWalksToEnd(t *testing.T) {
	t.Parallel()

	m := NewManual()
	c := NewClock(WithTicker(m.NewTicker))
	p := newProbe()

	require.NoError(t, c.Start(context.Background(), seqLen(5), opts(2), p.handler()))
	assert.Equal(t, 1, c.Cursor())

	for want := 2; want <= 4; want++ {
		require.True(t, m.Fire())
		assert.Equal(t, want, recv(t, p.ticks))
	}

	require.True(t, m.Fire())
	assert.Equal(t, 4, recv(t, p.ends))
	waitDone(t, c)

	assert.Equal(t, 4, c.Cursor(), "cursor stays on the last sample")
	assert.False(t, c.Running())
	assert.False(t, m.Fire())
	assert.Empty(t, p.ends)

	c.Stop()
	c.Stop()
}

func TestClockEndsImmediatelyWhenFullyVisible(t *testing.T) {
	t.Parallel()

	m := NewManual()
	c := NewClock(WithTicker(m.NewTicker))
	p := newProbe()

	require.NoError(t, c.Start(context.Background(), seqLen(3), opts(3), p.handler()))
	require.True(t, m.Fire())
	assert.Equal(t, 2, recv(t, p.ends))
	waitDone(t, c)
	assert.Empty(t, p.ticks)
}

func TestStopCancelsFutureTicks(t *testing.T) {
	t.Parallel()

	m := NewManual()
	c := NewClock(WithTicker(m.NewTicker))
	p := newProbe()

	require.NoError(t, c.Start(context.Background(), seqLen(10), opts(1), p.handler()))
	require.True(t, m.Fire())
	assert.Equal(t, 1, recv(t, p.ticks))

	c.Stop()
	c.Stop()
	waitDone(t, c)

	assert.False(t, m.Fire())
	assert.Empty(t, p.ticks)
	assert.Empty(t, p.ends, "stop never reports end")
	assert.Equal(t, 1, c.Cursor())
}

func TestStopFromCallback(t *testing.T) {
	t.Parallel()

	m := NewManual()
	c := NewClock(WithTicker(m.NewTicker))
	ticks := make(chan int, 4)

	h := Handler{Tick: func(cur int) {
		c.Stop()
		ticks <- cur
	}}
	require.NoError(t, c.Start(context.Background(), seqLen(10), opts(1), h))
	require.True(t, m.Fire())
	assert.Equal(t, 1, recv(t, ticks))
	waitDone(t, c)
	assert.False(t, c.Running())
}

func TestContextCancelActsLikeStop(t *testing.T) {
	t.Parallel()

	m := NewManual()
	c := NewClock(WithTicker(m.NewTicker))
	p := newProbe()
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, c.Start(ctx, seqLen(10), opts(1), p.handler()))
	cancel()
	waitDone(t, c)

	assert.False(t, c.Running())
	assert.False(t, m.Fire())
	assert.Empty(t, p.ends)
}

func TestRestartSupersedesPreviousRun(t *testing.T) {
	t.Parallel()

	m := NewManual()
	c := NewClock(WithTicker(m.NewTicker))
	first, second := newProbe(), newProbe()

	require.NoError(t, c.Start(context.Background(), seqLen(10), opts(1), first.handler()))
	firstDone := c.Done()

	require.NoError(t, c.Start(context.Background(), seqLen(10), opts(5), second.handler()))
	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first run still alive")
	}

	require.True(t, m.Fire())
	assert.Equal(t, 5, recv(t, second.ticks))
	assert.Empty(t, first.ticks)
	assert.Empty(t, first.ends)
	c.Stop()
}

func TestDoneWithoutRun(t *testing.T) {
	t.Parallel()

	c := NewClock()
	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed before any run")
	}
	c.Stop()
}

func TestRealTickerAdvances(t *testing.T) {
	t.Parallel()

	c := NewClock()
	p := newProbe()
	require.NoError(t, c.Start(context.Background(), seqLen(3), opts(1), p.handler()))

	assert.Equal(t, 1, recv(t, p.ticks))
	assert.Equal(t, 2, recv(t, p.ticks))
	assert.Equal(t, 2, recv(t, p.ends))
	waitDone(t, c)
}
