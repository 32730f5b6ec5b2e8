package app_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawswap/app"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := app.NewLogger(app.LogConfig{Level: "info", Format: app.LogFormatJSON, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("pool created", "pool_id", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "pool created", entry["message"])
	require.Equal(t, "info", entry["level"])
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pawswapd.log")
	var buf bytes.Buffer
	logger, closer, err := app.NewLogger(app.LogConfig{Level: "debug", Format: app.LogFormatPlain, File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Debug("swap executed", "pool_id", 3)
	require.NoError(t, closer.Close())

	bz, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(bz), "swap executed")
	require.Contains(t, buf.String(), "swap executed")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, _, err := app.NewLogger(app.LogConfig{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
}
