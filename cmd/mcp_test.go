package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionTranscript = `{"type":"user","timestamp":"2025-06-01T10:00:00.000Z","message":{"role":"user","content":"fix the build"}}
{"type":"assistant","timestamp":"2025-06-01T10:00:02.300Z","message":{"model":"claude-opus-4","stop_reason":"end_turn","usage":{"input_tokens":4000,"cache_creation_input_tokens":1000,"cache_read_input_tokens":39000,"output_tokens":1000},"content":[{"type":"text","text":"Done."}]}}
`

func TestContextUsage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sessionTranscript), 0644))

	cfg := config.Default().Render
	cfg.ShowTokens = true
	report, err := contextUsage(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, "ctx 23% (45,000/200,000)", report.Segment)
	assert.Equal(t, 45000, report.Tokens)
	require.NotNil(t, report.Percent)
	assert.Equal(t, 23, *report.Percent)
	assert.Equal(t, "claude-opus-4", report.Model)
	assert.False(t, report.Running)
}

func TestContextUsageUnknownLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sessionTranscript), 0644))

	cfg := config.Default().Render
	cfg.ContextLimit = 0
	report, err := contextUsage(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, "ctx unknown", report.Segment)
	assert.Nil(t, report.Percent)
}

func TestContextUsageMissingFile(t *testing.T) {
	_, err := contextUsage(filepath.Join(t.TempDir(), "nope.jsonl"), config.Default().Render)
	assert.Error(t, err)
}
