package journal

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxScores is how many leaderboard rows are kept.
	MaxScores = 50
	// MaxNameLength is the longest player name stored, in runes.
	MaxNameLength = 12
	AnonymousName = "Anonymous Trader"
)

type ScoreEntry struct {
	Name        string
	TotalProfit float64
	TotalReturn float64
	Created     time.Time
}

// NormalizeName trims the name, substitutes a placeholder for blanks and
// truncates it to MaxNameLength runes.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}

// SaveScore inserts a score and prunes the table to the best MaxScores by
// total profit. It returns the resulting leaderboard.
func (j *SQLite) SaveScore(name string, totalProfit, totalReturn float64, at time.Time) ([]ScoreEntry, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO scores (name, total_profit, total_return, created)
		VALUES (?, ?, ?, ?)`,
		NormalizeName(name), totalProfit, totalReturn, at,
	); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		DELETE FROM scores
		WHERE id NOT IN (
			SELECT id FROM scores ORDER BY total_profit DESC, id ASC LIMIT ?
		)`, MaxScores); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return j.TopScores(MaxScores)
}

// TopScores returns up to limit entries ordered by total profit.
func (j *SQLite) TopScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 || limit > MaxScores {
		limit = MaxScores
	}
	rows, err := j.db.Query(`
		SELECT name, total_profit, total_return, created
		FROM scores
		ORDER BY total_profit DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.Name, &e.TotalProfit, &e.TotalReturn, &e.Created); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
