package journal

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"  Gordon  ", "Gordon"},
		{"", AnonymousName},
		{"   ", AnonymousName},
		{"ABCDEFGHIJKLMNOP", "ABCDEFGHIJKL"},
		{"ÄÖÜäöüßÄÖÜäöüß", "ÄÖÜäöüßÄÖÜäö"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
}

func TestSaveScoreOrdersByProfit(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := j.SaveScore("low", 10, 1, at)
	require.NoError(t, err)
	_, err = j.SaveScore("high", 900, 60, at)
	require.NoError(t, err)
	board, err := j.SaveScore("", -50, -3, at)
	require.NoError(t, err)

	require.Len(t, board, 3)
	assert.Equal(t, "high", board[0].Name)
	assert.Equal(t, "low", board[1].Name)
	assert.Equal(t, AnonymousName, board[2].Name)
}

func TestSaveScoreKeepsTopFifty(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	at := time.Now()
	var board []ScoreEntry
	var err error
	for i := 0; i < MaxScores+5; i++ {
		board, err = j.SaveScore(fmt.Sprintf("p%d", i), float64(i), 0, at)
		require.NoError(t, err)
	}

	require.Len(t, board, MaxScores)
	assert.Equal(t, float64(MaxScores+4), board[0].TotalProfit)
	assert.Equal(t, 5.0, board[len(board)-1].TotalProfit)

	top, err := j.TopScores(3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.True(t, strings.HasPrefix(top[0].Name, "p"))
}
