package statusline

import (
	"errors"
	"testing"
	"time"

	"github.com/Seraphli/cc-statusline/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTranscript(sum transcript.Summary, err error) func(string) (transcript.Summary, error) {
	return func(string) (transcript.Summary, error) { return sum, err }
}

func TestEnrichFillsAbsentFields(t *testing.T) {
	state := SessionState{ModelName: "Opus", WorkingDirectory: "/w", TranscriptPath: "/t.jsonl"}
	src := Sources{
		ReadTranscript: fakeTranscript(transcript.Summary{
			Tokens: 45000, HasUsage: true,
			Duration: 2300 * time.Millisecond, HasDuration: true,
			Running: true,
		}, nil),
		ResolveEndpoint: func() string { return "gw.example" },
	}

	got := Enrich(state, src)
	assert.Equal(t, "gw.example", got.BaseURL)
	assert.True(t, got.HasTokens)
	assert.EqualValues(t, 45000, got.TokensUsed)
	require.NotNil(t, got.LastResponseMS)
	assert.EqualValues(t, 2300, *got.LastResponseMS)
	assert.True(t, got.Running)
}

func TestEnrichKeepsHostValues(t *testing.T) {
	state := SessionState{
		ModelName:        "m",
		WorkingDirectory: "/w",
		TranscriptPath:   "/t.jsonl",
		BaseURL:          "https://api.example.com",
		TokensUsed:       10,
		HasTokens:        true,
	}
	src := Sources{
		ReadTranscript:  fakeTranscript(transcript.Summary{Tokens: 99, HasUsage: true}, nil),
		ResolveEndpoint: func() string { return "other" },
	}
	got := Enrich(state, src)
	assert.Equal(t, "https://api.example.com", got.BaseURL)
	assert.EqualValues(t, 10, got.TokensUsed)
	assert.Nil(t, got.LastResponseMS)
}

func TestEnrichDegradesOnFailure(t *testing.T) {
	state := SessionState{ModelName: "m", WorkingDirectory: "/w", TranscriptPath: "/missing"}
	got := Enrich(state, Sources{
		ReadTranscript:  fakeTranscript(transcript.Summary{}, errors.New("no such file")),
		ResolveEndpoint: func() string { return "" },
	})
	assert.Equal(t, state, got)
}

func TestEnrichWithoutSources(t *testing.T) {
	state := SessionState{ModelName: "m", WorkingDirectory: "/w", TranscriptPath: "/t"}
	assert.Equal(t, state, Enrich(state, Sources{}))
}
