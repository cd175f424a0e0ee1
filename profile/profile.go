// Package profile tracks a player's career across games: profit, rank and
// achievements.
package profile

import (
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/rustyeddy/blindtrader/game"
)

// Profile is the persisted career record. HighestSessionReturn is -Inf until
// the first game is played.
type Profile struct {
	PlayerID             string          `yaml:"player_id" json:"player_id"`
	Name                 string          `yaml:"name,omitempty" json:"name,omitempty"`
	TotalCareerProfit    float64         `yaml:"total_career_profit" json:"total_career_profit"`
	GamesPlayed          int             `yaml:"games_played" json:"games_played"`
	HighestSessionReturn float64         `yaml:"highest_session_return" json:"highest_session_return"`
	UnlockedAchievements []AchievementID `yaml:"unlocked_achievements" json:"unlocked_achievements"`
}

func New() Profile {
	return Profile{
		PlayerID:             uuid.NewString(),
		HighestSessionReturn: math.Inf(-1),
		UnlockedAchievements: []AchievementID{},
	}
}

func (p Profile) Rank() Rank { return RankFor(p.TotalCareerProfit) }

func (p Profile) Has(id AchievementID) bool {
	return slices.Contains(p.UnlockedAchievements, id)
}

// Update is the outcome of folding one game into a profile.
type Update struct {
	Profile         Profile
	NewAchievements []Achievement
	LeveledUp       bool
}

// Apply folds a finished game into p and returns the new profile. p is left
// unchanged. sessionReturn is the game's average return in percent.
func (p Profile) Apply(history []game.RoundResult, sessionReturn float64) Update {
	sum := game.Summarize(history)
	old := p.Rank()

	next := p
	next.UnlockedAchievements = slices.Clone(p.UnlockedAchievements)
	next.TotalCareerProfit += sum.TotalProfit
	next.GamesPlayed++
	next.HighestSessionReturn = math.Max(p.HighestSessionReturn, sessionReturn)

	var unlocked []Achievement
	for _, a := range achievements {
		if next.Has(a.ID) || !a.Unlocked(history, sum) {
			continue
		}
		next.UnlockedAchievements = append(next.UnlockedAchievements, a.ID)
		unlocked = append(unlocked, a)
	}

	return Update{
		Profile:         next,
		NewAchievements: unlocked,
		LeveledUp:       next.Rank().Title != old.Title,
	}
}
