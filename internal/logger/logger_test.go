package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel(LevelWarn))
	assert.Equal(t, slog.LevelError, parseLevel(LevelError))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newHandler(Config{Level: LevelInfo, Format: FormatJSON}, &buf))

	l.Debug("hidden")
	l.Info("saved expense", "id", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "saved expense", line["msg"])
	assert.Equal(t, float64(3), line["id"])
}

func TestTextHandlerIsDefault(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newHandler(Config{}, &buf))
	l.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello k=v")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	New(Config{Output: path}).Info("to file")
	assert.FileExists(t, path)
}
