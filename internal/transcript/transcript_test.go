package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userPrompt = `{"type":"user","timestamp":"2025-06-01T10:00:00.000Z","message":{"role":"user","content":"fix the build"}}`
	toolResult = `{"type":"user","timestamp":"2025-06-01T10:00:01.500Z","message":{"role":"user","content":[]},"toolUseResult":{"stdout":"ok"}}`
	toolCall   = `{"type":"assistant","timestamp":"2025-06-01T10:00:01.000Z","message":{"model":"claude-sonnet-4","stop_reason":"tool_use","usage":{"input_tokens":10,"output_tokens":5}}}`
	answer     = `{"type":"assistant","timestamp":"2025-06-01T10:00:02.300Z","message":{"model":"claude-opus-4","stop_reason":"end_turn","usage":{"input_tokens":4000,"cache_creation_input_tokens":1000,"cache_read_input_tokens":39000,"output_tokens":1000},"content":[{"type":"text","text":"Done."}]}}`
)

func join(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestParseCompletedTurn(t *testing.T) {
	sum := Parse(join(userPrompt, toolCall, toolResult, answer))

	assert.True(t, sum.HasUsage)
	assert.Equal(t, 45000, sum.Tokens)
	assert.Equal(t, "claude-opus-4", sum.Model)
	require.True(t, sum.HasDuration)
	// tool results are not the question; the user prompt is
	assert.Equal(t, 2300*time.Millisecond, sum.Duration)
	assert.False(t, sum.Running)
}

func TestParseRunningTurn(t *testing.T) {
	sum := Parse(join(userPrompt, toolCall))

	assert.True(t, sum.Running)
	assert.Equal(t, 15, sum.Tokens)
	assert.Equal(t, time.Second, sum.Duration)
}

func TestParseSummaryEndsRunning(t *testing.T) {
	summary := `{"type":"summary","summary":"Build fix","leafUuid":"x"}`
	sum := Parse(join(userPrompt, toolCall, summary))
	assert.False(t, sum.Running)
	assert.True(t, sum.HasUsage)
}

func TestParseSkipsGarbage(t *testing.T) {
	sum := Parse(join(userPrompt, "{not json", "", answer, "   "))
	assert.Equal(t, 45000, sum.Tokens)
	assert.True(t, sum.HasDuration)
}

func TestParseEmpty(t *testing.T) {
	sum := Parse("")
	assert.Equal(t, Summary{}, sum)
}

func TestParseNoQuestion(t *testing.T) {
	sum := Parse(join(answer))
	assert.True(t, sum.HasUsage)
	assert.False(t, sum.HasDuration)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestLastAssistantText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(join(userPrompt, toolCall, answer)), 0644))

	assert.Equal(t, "Done.", LastAssistantText(path))
	assert.Empty(t, LastAssistantText(filepath.Join(t.TempDir(), "none.jsonl")))
}
