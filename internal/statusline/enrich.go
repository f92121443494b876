package statusline

import (
	"github.com/Seraphli/cc-statusline/internal/transcript"
)

// Sources supplies values the payload may leave out. Either func may be nil.
type Sources struct {
	ReadTranscript  func(path string) (transcript.Summary, error)
	ResolveEndpoint func() string
}

// Enrich fills absent fields from the transcript and the endpoint lookup.
// Values the host supplied are never overwritten, and lookup failures
// leave the field absent.
func Enrich(state SessionState, src Sources) SessionState {
	if state.BaseURL == "" && src.ResolveEndpoint != nil {
		state.BaseURL = src.ResolveEndpoint()
	}
	if state.TranscriptPath == "" || src.ReadTranscript == nil {
		return state
	}
	if state.HasTokens && state.LastResponseMS != nil {
		return state
	}
	sum, err := src.ReadTranscript(state.TranscriptPath)
	if err != nil {
		return state
	}
	if !state.HasTokens && sum.HasUsage {
		state.TokensUsed, state.HasTokens = int64(sum.Tokens), true
	}
	if state.LastResponseMS == nil && sum.HasDuration {
		ms := sum.Duration.Milliseconds()
		state.LastResponseMS = &ms
		state.Running = sum.Running
	}
	return state
}
