package replay

import (
	"sync"
	"time"
)

// Manual is a TickerFactory whose ticks are delivered by Fire. Headless runs
// and tests use it to step a Clock without waiting on wall time.
type Manual struct {
	mu  sync.Mutex
	cur *manualTicker
}

func NewManual() *Manual { return &Manual{} }

// NewTicker satisfies TickerFactory. Each run gets a fresh ticker and Fire
// always targets the newest one.
func (m *Manual) NewTicker(time.Duration) Ticker {
	t := &manualTicker{ch: make(chan time.Time), stop: make(chan struct{})}
	m.mu.Lock()
	m.cur = t
	m.mu.Unlock()
	return t
}

// Fire delivers one tick and returns once the run has received it. It
// returns false if there is no ticker or the run has stopped.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	t := m.cur
	m.mu.Unlock()
	if t == nil {
		return false
	}
	select {
	case t.ch <- time.Now():
		return true
	case <-t.stop:
		return false
	}
}

type manualTicker struct {
	ch   chan time.Time
	stop chan struct{}
	once sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() { t.once.Do(func() { close(t.stop) }) }
