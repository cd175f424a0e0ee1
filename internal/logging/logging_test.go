package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		l, err := New(lvl, false)
		require.NoError(t, err, lvl)
		want, _ := zapcore.ParseLevel(lvl)
		assert.True(t, l.Core().Enabled(want))
	}

	l, err := New("warn", true)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = New("chatty", false)
	assert.Error(t, err)
}

func TestToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "play.log")
	l, err := ToFile("info", false, path)
	require.NoError(t, err)

	l.Info("session started")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "session started")

	_, err = ToFile("loud", false, path)
	assert.Error(t, err)
}
