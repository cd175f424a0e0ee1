package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rustyeddy/blindtrader/game"
	"github.com/rustyeddy/blindtrader/sim"
)

type (
	frameMsg  sim.Frame
	tradeMsg  sim.TradeRecord
	resultMsg game.RoundResult
	errMsg    struct{ err error }
)

// Bridge carries session callbacks into the bubbletea program as messages.
// Build it before the session so its Observer can be attached.
type Bridge struct {
	events chan tea.Msg
	done   chan struct{}
	once   sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan tea.Msg, 256),
		done:   make(chan struct{}),
	}
}

func (b *Bridge) Observer() game.Observer {
	return game.Observer{
		OnFrame:  func(f sim.Frame) { b.send(frameMsg(f)) },
		OnTrade:  func(t sim.TradeRecord) { b.send(tradeMsg(t)) },
		OnResult: func(r game.RoundResult) { b.send(resultMsg(r)) },
	}
}

// Close releases any callback blocked on a full queue. Later events are
// dropped.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

func (b *Bridge) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}
