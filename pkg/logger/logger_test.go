package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.With(String("component", "scoring")).Info("scored",
		String("ticker", "AAPL"),
		Float64("composite", 7.25),
		Duration("duration_ms", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)
	l.Debug("hidden")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"component":"scoring"`)
	assert.Contains(t, out, `"ticker":"AAPL"`)
	assert.Contains(t, out, `"composite":7.25`)
	assert.Contains(t, out, `"duration_ms":1500`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.NotContains(t, out, "hidden")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("ignored", String("k", "v")) })
}
