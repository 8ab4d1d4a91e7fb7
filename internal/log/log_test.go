package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmclass/lmclass/internal/redact"
)

func TestSetup_DefaultLevel(t *testing.T) {
	require.NoError(t, Setup(false, false, ""))

	ctx := context.Background()
	// Default level should be INFO.
	handler := slog.Default().Handler()
	assert.True(t, handler.Enabled(ctx, slog.LevelInfo), "INFO should be enabled in default mode")
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn), "WARN should be enabled in default mode")
	assert.True(t, handler.Enabled(ctx, slog.LevelError), "ERROR should be enabled in default mode")
	assert.False(t, handler.Enabled(ctx, slog.LevelDebug), "DEBUG should not be enabled in default mode")
}

func TestSetup_VerboseLevel(t *testing.T) {
	require.NoError(t, Setup(true, false, FormatText))

	ctx := context.Background()
	handler := slog.Default().Handler()
	assert.True(t, handler.Enabled(ctx, slog.LevelDebug), "DEBUG should be enabled in verbose mode")
	assert.True(t, handler.Enabled(ctx, slog.LevelInfo), "INFO should be enabled in verbose mode")
}

func TestSetup_QuietLevel(t *testing.T) {
	require.NoError(t, Setup(false, true, FormatText))

	ctx := context.Background()
	handler := slog.Default().Handler()
	assert.False(t, handler.Enabled(ctx, slog.LevelInfo), "INFO should not be enabled in quiet mode")
	assert.False(t, handler.Enabled(ctx, slog.LevelDebug), "DEBUG should not be enabled in quiet mode")
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn), "WARN should be enabled in quiet mode")
}

func TestSetup_QuietTakesPrecedence(t *testing.T) {
	require.NoError(t, Setup(true, true, FormatText))

	ctx := context.Background()
	handler := slog.Default().Handler()
	assert.False(t, handler.Enabled(ctx, slog.LevelDebug))
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn))
}

func TestSetup_UnknownFormat(t *testing.T) {
	err := Setup(false, false, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestSetupWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupWriter(&buf, false, false, FormatJSON))

	slog.Info("completing prompts", "prompts", 45)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "completing prompts", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.EqualValues(t, 45, rec["prompts"])
}

func TestSetupWriter_RedactsSecrets(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-secret-value")
	redact.ResetForTest()
	t.Cleanup(redact.ResetForTest)

	var buf bytes.Buffer
	require.NoError(t, SetupWriter(&buf, false, false, FormatText))

	slog.Error("chunk failed",
		"error", errors.New("bad key sk-test-secret-value"),
		"detail", "key=sk-test-secret-value")

	out := buf.String()
	assert.NotContains(t, out, "sk-test-secret-value")
	assert.Contains(t, out, "[REDACTED]")
}
