package statusline

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	errEmpty    = errors.New("empty payload")
	errMissing  = errors.New("required field missing")
	errNegative = errors.New("must not be negative")
)

// SessionState is what the host tells us about the session on each tick.
type SessionState struct {
	ModelName        string
	BaseURL          string
	WorkingDirectory string
	// GitBranch is nil when the host did not say; an empty string means the
	// host said there is no branch.
	GitBranch *string
	// TokensUsed is only meaningful when HasTokens is set.
	TokensUsed int64
	HasTokens  bool
	// LastResponseMS is nil before the first response completes.
	LastResponseMS *int64
	Running        bool
	TranscriptPath string
}

// payload accepts both the flat keys and the Claude Code envelope.
// Nested objects are kept raw so a host that changes their shape does not
// break decoding.
type payload struct {
	ModelName              *string `json:"model_name"`
	WorkingDirectory       *string `json:"working_directory"`
	GitBranch              *string `json:"git_branch"`
	TokensUsed             *int64  `json:"tokens_used"`
	LastResponseDurationMS *int64  `json:"last_response_duration_ms"`

	// Optional keys; a value of the wrong type is ignored.
	BaseURL        json.RawMessage `json:"base_url"`
	Cwd            json.RawMessage `json:"cwd"`
	TranscriptPath json.RawMessage `json:"transcript_path"`
	Model          json.RawMessage `json:"model"`
	Workspace      json.RawMessage `json:"workspace"`
	ContextWindow  json.RawMessage `json:"context_window"`
}

type modelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type workspaceInfo struct {
	CurrentDir string `json:"current_dir"`
	ProjectDir string `json:"project_dir"`
}

type contextInfo struct {
	CurrentUsage *struct {
		InputTokens         int64 `json:"input_tokens"`
		OutputTokens        int64 `json:"output_tokens"`
		CacheCreationTokens int64 `json:"cache_creation_input_tokens"`
		CacheReadTokens     int64 `json:"cache_read_input_tokens"`
	} `json:"current_usage"`
}

// Parse decodes the host payload. It fails only with *MalformedInputError.
func Parse(data []byte) (SessionState, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return SessionState{}, malformed("", errEmpty)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return SessionState{}, malformed(typeErr.Field, err)
		}
		return SessionState{}, malformed("", err)
	}

	var model modelInfo
	decodeLoose(p.Model, &model)
	var ws workspaceInfo
	decodeLoose(p.Workspace, &ws)

	state := SessionState{
		ModelName:        firstNonEmpty(deref(p.ModelName), model.DisplayName, model.ID),
		BaseURL:          looseString(p.BaseURL),
		WorkingDirectory: firstNonEmpty(deref(p.WorkingDirectory), ws.CurrentDir, looseString(p.Cwd)),
		GitBranch:        p.GitBranch,
		LastResponseMS:   p.LastResponseDurationMS,
		TranscriptPath:   looseString(p.TranscriptPath),
	}
	if state.ModelName == "" {
		return SessionState{}, malformed("model_name", errMissing)
	}
	if state.WorkingDirectory == "" {
		return SessionState{}, malformed("working_directory", errMissing)
	}

	switch {
	case p.TokensUsed != nil:
		if *p.TokensUsed < 0 {
			return SessionState{}, malformed("tokens_used", errNegative)
		}
		state.TokensUsed, state.HasTokens = *p.TokensUsed, true
	default:
		var ctxInfo contextInfo
		if decodeLoose(p.ContextWindow, &ctxInfo) && ctxInfo.CurrentUsage != nil {
			u := ctxInfo.CurrentUsage
			if total := u.InputTokens + u.OutputTokens + u.CacheCreationTokens + u.CacheReadTokens; total >= 0 {
				state.TokensUsed, state.HasTokens = total, true
			}
		}
	}
	if state.LastResponseMS != nil && *state.LastResponseMS < 0 {
		return SessionState{}, malformed("last_response_duration_ms", errNegative)
	}
	return state, nil
}

func decodeLoose(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// looseString returns raw as a string, or "" when it holds anything else.
func looseString(raw json.RawMessage) string {
	var s string
	if !decodeLoose(raw, &s) {
		return ""
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
