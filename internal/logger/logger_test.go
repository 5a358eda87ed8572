package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	log, err := New("loud", "")
	assert.Error(t, err)
	assert.Nil(t, log)
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	log, err := New("debug", path)
	require.NoError(t, err)

	log.Info("hello from test")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}
