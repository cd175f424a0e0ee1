package replay

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Intent is a player action scheduled at a cursor.
type Intent string

const (
	Open  Intent = "OPEN"
	Close Intent = "CLOSE"
)

// ParseIntent accepts OPEN/CLOSE and the hold/release aliases, case-insensitive.
func ParseIntent(s string) (Intent, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN", "HOLD", "BUY":
		return Open, nil
	case "CLOSE", "RELEASE", "SELL":
		return Close, nil
	default:
		return "", fmt.Errorf("unknown event %q", s)
	}
}

// Step pairs an intent with the cursor it fires at.
type Step struct {
	Cursor int
	Intent Intent
}

// Script maps cursors to intents for headless play. A cursor holds at most
// one intent; adding another replaces it.
type Script struct {
	steps map[int]Intent
}

func NewScript() *Script { return &Script{steps: map[int]Intent{}} }

// ParseScript reads "25:open,40:close" style scripts. Whitespace and empty
// entries are ignored.
func ParseScript(s string) (*Script, error) {
	sc := NewScript()
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, name, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("bad script step %q: want cursor:intent", part)
		}
		cursor, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || cursor < 0 {
			return nil, fmt.Errorf("bad script cursor %q", idx)
		}
		in, err := ParseIntent(name)
		if err != nil {
			return nil, fmt.Errorf("bad script step %q: %w", part, err)
		}
		sc.Add(cursor, in)
	}
	return sc, nil
}

func (s *Script) Add(cursor int, in Intent) {
	if s.steps == nil {
		s.steps = map[int]Intent{}
	}
	s.steps[cursor] = in
}

// At returns the intent scheduled at cursor.
func (s *Script) At(cursor int) (Intent, bool) {
	if s == nil {
		return "", false
	}
	in, ok := s.steps[cursor]
	return in, ok
}

func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}

// Steps returns the script in cursor order.
func (s *Script) Steps() []Step {
	if s == nil {
		return nil
	}
	out := make([]Step, 0, len(s.steps))
	for c, in := range s.steps {
		out = append(out, Step{Cursor: c, Intent: in})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cursor < out[j].Cursor })
	return out
}

// Shift moves every step by delta, dropping steps that land below zero. Data
// loaders use it when a window is cut out of a longer file.
func (s *Script) Shift(delta int) *Script {
	out := NewScript()
	if s == nil {
		return out
	}
	for c, in := range s.steps {
		if c+delta >= 0 {
			out.steps[c+delta] = in
		}
	}
	return out
}

func (s *Script) String() string {
	steps := s.Steps()
	parts := make([]string, len(steps))
	for i, st := range steps {
		parts[i] = fmt.Sprintf("%d:%s", st.Cursor, strings.ToLower(string(st.Intent)))
	}
	return strings.Join(parts, ",")
}
