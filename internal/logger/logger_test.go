package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "market.log")

	log, err := New("warn", path)
	require.NoError(t, err)
	log.Info("dropped")
	log.Warn("product sold out")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"product sold out"`)
	assert.Contains(t, string(data), `"level":"WARN"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("loud", "")
	assert.Error(t, err)
}
