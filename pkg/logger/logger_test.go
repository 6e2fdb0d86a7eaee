package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.DebugLevel).With(String("component", "gateway"))

	l.Warn("provider failed",
		String("provider", "dexscreener"),
		Int("attempt", 1),
		Float64("price", 1.5),
		Duration("took", 1500*time.Millisecond),
		Bool("degraded", true),
		Strings("chain", []string{"a", "b"}),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "provider failed", got["message"])
	assert.Equal(t, "gateway", got["component"])
	assert.Equal(t, "dexscreener", got["provider"])
	assert.Equal(t, 1.0, got["attempt"])
	assert.Equal(t, 1.5, got["price"])
	assert.Equal(t, 1500.0, got["took"])
	assert.Equal(t, true, got["degraded"])
	assert.Equal(t, "a, b", got["chain"])
	assert.Equal(t, "boom", got["error"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, zerolog.InfoLevel)
	l.Debug("hidden")
	assert.Zero(t, buf.Len())
	l.Info("shown")
	assert.NotZero(t, buf.Len())
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("x", Error(nil)) })
}
