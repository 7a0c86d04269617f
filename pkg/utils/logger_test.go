package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_Verbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	require.NoError(t, InitLogger(true, path))
	assert.True(t, Verbose())

	Log("loaded %d tasks", 3)
	l := Logger()
	l.Warn().Str("key", "simpleTasks").Msg("slot unusable")
	CloseLogger()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"message":"verbose logging enabled"`)
	assert.Contains(t, out, `"message":"loaded 3 tasks"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"key":"simpleTasks"`)
	assert.False(t, Verbose())
}

func TestInitLogger_Quiet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.log")
	require.NoError(t, InitLogger(false, path))
	Log("dropped")
	assert.NoFileExists(t, path)
	CloseLogger()
}

func TestDefaultLogPath(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join(os.TempDir(), "simpletasks_2024-03-09.log"), DefaultLogPath(day))
}
