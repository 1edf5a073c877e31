package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestFileOutputWithRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentipull.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.With(String("source", "r/stocks")).Info("fetched", Int("posts", 3), Float64("avg", 0.25))
	l.Error("failed", Error(errors.New("boom")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source":"r/stocks"`)
	assert.Contains(t, string(data), `"posts":3`)
	assert.Contains(t, string(data), `"error":"boom"`)
}

func TestErrorFieldNil(t *testing.T) {
	k, v := Error(nil).GetKeyValue()
	assert.Equal(t, "error", k)
	assert.Nil(t, v)
}
