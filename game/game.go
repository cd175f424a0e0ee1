package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rustyeddy/blindtrader/market"
	"github.com/rustyeddy/blindtrader/replay"
)

const (
	MinRounds     = 1
	MaxRounds     = 10
	DefaultRounds = 3
)

var ErrNoRounds = errors.New("no rounds to play")

// Round is one instrument to play, with an optional intent script.
type Round struct {
	Instrument *market.Instrument
	Script     *replay.Script
}

// Game plays its rounds back to back on one Session. Every round starts from
// the session's starting capital.
type Game struct {
	mu      sync.Mutex
	session *Session
	rounds  []Round
	idx     int
	history []RoundResult
}

func NewGame(s *Session, rounds []Round) (*Game, error) {
	if len(rounds) == 0 {
		return nil, ErrNoRounds
	}
	for i, r := range rounds {
		if r.Instrument == nil {
			return nil, fmt.Errorf("round %d: %w", i, replay.ErrInvalidInput)
		}
	}
	return &Game{session: s, rounds: rounds}, nil
}

// ClampRounds bounds a requested round count to [MinRounds, MaxRounds].
func ClampRounds(n int) int {
	switch {
	case n < MinRounds:
		return MinRounds
	case n > MaxRounds:
		return MaxRounds
	default:
		return n
	}
}

func (g *Game) Session() *Session { return g.session }

func (g *Game) Len() int { return len(g.rounds) }

// Index is the zero-based position of the current round.
func (g *Game) Index() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.idx
}

func (g *Game) Current() (Round, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.rounds) {
		return Round{}, false
	}
	return g.rounds[g.idx], true
}

// StartRound starts the current round on the session.
func (g *Game) StartRound(ctx context.Context) error {
	r, ok := g.Current()
	if !ok {
		return ErrNoRounds
	}
	return g.session.Start(ctx, r.Instrument, r.Script)
}

// Record appends a finished round to the history.
func (g *Game) Record(r RoundResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, r)
}

// Next moves to the following round. It returns false when none is left.
func (g *Game) Next() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx < len(g.rounds) {
		g.idx++
	}
	return g.idx < len(g.rounds)
}

func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.idx >= len(g.rounds)
}

func (g *Game) History() []RoundResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]RoundResult, len(g.history))
	copy(out, g.history)
	return out
}

func (g *Game) Summary() Summary { return Summarize(g.History()) }

// PlayAll runs every remaining round to completion without user input; the
// rounds' scripts supply the intents.
func (g *Game) PlayAll(ctx context.Context) (Summary, error) {
	for !g.Over() {
		if err := g.StartRound(ctx); err != nil {
			return Summary{}, err
		}
		res, err := g.session.Wait(ctx)
		if err != nil {
			g.session.Stop()
			return Summary{}, err
		}
		g.Record(res)
		g.Next()
	}
	return g.Summary(), nil
}
