package profile

import "github.com/rustyeddy/blindtrader/game"

// Icon identifies an achievement badge. Renderers look the glyph up with
// Glyph rather than storing presentation strings on the achievement.
type Icon int

const (
	IconFootprints Icon = iota
	IconCrosshair
	IconGem
	IconSkull
	IconCrown
)

var glyphs = map[Icon]string{
	IconFootprints: "👣",
	IconCrosshair:  "🎯",
	IconGem:        "💎",
	IconSkull:      "💀",
	IconCrown:      "👑",
}

func (i Icon) Glyph() string {
	if g, ok := glyphs[i]; ok {
		return g
	}
	return "?"
}

type AchievementID string

const (
	FirstBlood   AchievementID = "first_blood"
	Sniper       AchievementID = "sniper"
	DiamondHands AchievementID = "diamond_hands"
	Rekt         AchievementID = "rekt"
	Whale        AchievementID = "whale"
)

// Achievement is unlocked once per profile when its condition first holds for
// a finished game.
type Achievement struct {
	ID          AchievementID
	Title       string
	Description string
	Icon        Icon
	condition   func(history []game.RoundResult, sum game.Summary) bool
}

// Unlocked reports whether the game satisfies the achievement.
func (a Achievement) Unlocked(history []game.RoundResult, sum game.Summary) bool {
	return a.condition(history, sum)
}

var achievements = []Achievement{
	{
		ID:          FirstBlood,
		Title:       "First Steps",
		Description: "Complete your first trading session",
		Icon:        IconFootprints,
		condition: func(h []game.RoundResult, _ game.Summary) bool {
			return len(h) > 0
		},
	},
	{
		ID:          Sniper,
		Title:       "Sniper",
		Description: "Win 100% of trades in a session (min 3 trades)",
		Icon:        IconCrosshair,
		condition: func(_ []game.RoundResult, s game.Summary) bool {
			return s.TotalTrades >= 3 && s.TotalWins == s.TotalTrades
		},
	},
	{
		ID:          DiamondHands,
		Title:       "Diamond Hands",
		Description: "Hold a single trade for > 50% return",
		Icon:        IconGem,
		condition: func(h []game.RoundResult, _ game.Summary) bool {
			for _, r := range h {
				if r.Stats.BestTradePct >= 0.5 {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          Rekt,
		Title:       "Rekt",
		Description: "Lose 50% of your capital in one session",
		Icon:        IconSkull,
		condition: func(h []game.RoundResult, s game.Summary) bool {
			return len(h) > 0 && s.AggregateReturn() <= -0.5
		},
	},
	{
		ID:          Whale,
		Title:       "Whale Status",
		Description: "Make over $2,000 profit in one session",
		Icon:        IconCrown,
		condition: func(_ []game.RoundResult, s game.Summary) bool {
			return s.TotalProfit >= 2000
		},
	},
}

// Achievements returns the full catalogue in display order.
func Achievements() []Achievement {
	out := make([]Achievement, len(achievements))
	copy(out, achievements)
	return out
}

func Lookup(id AchievementID) (Achievement, bool) {
	for _, a := range achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
