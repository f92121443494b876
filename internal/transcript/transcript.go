// Package transcript reads the JSONL session transcript Claude Code writes
// and derives what the status line needs from its tail.
package transcript

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// Summary is what the tail of a transcript says about the session.
type Summary struct {
	// Tokens is the context consumed by the latest assistant turn
	// (input + cache creation + cache read + output).
	Tokens int
	// HasUsage reports whether an assistant entry with usage was found.
	HasUsage bool
	// Model is the model id recorded on that entry, if any.
	Model string
	// Duration is the time between the prompting user entry and the answer.
	Duration    time.Duration
	HasDuration bool
	// Running is true while the assistant has not finished its turn.
	Running bool
}

type entry struct {
	Type          string          `json:"type"`
	Timestamp     string          `json:"timestamp"`
	Message       *message        `json:"message"`
	ToolUseResult json.RawMessage `json:"toolUseResult"`
}

type message struct {
	Model      string  `json:"model"`
	StopReason *string `json:"stop_reason"`
	Usage      *usage  `json:"usage"`
	Content    any     `json:"content"`
}

type usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// Total sums the token counters that occupy the context window.
func (u usage) Total() int {
	return u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens + u.OutputTokens
}

// Read parses the transcript at path. A missing or unreadable file is
// returned as an error; malformed lines are skipped.
func Read(path string) (Summary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	return Parse(string(content)), nil
}

// Parse scans transcript content from the end.
func Parse(content string) Summary {
	lines := strings.Split(content, "\n")
	sum := Summary{Running: hasContent(lines)}
	for i := len(lines) - 1; i >= 0; i-- {
		e, ok := decode(lines[i])
		if !ok {
			continue
		}
		if e.Type == "summary" || e.Type == "file-history-snapshot" {
			sum.Running = false
			continue
		}
		if e.Type != "assistant" || e.Message == nil || e.Message.Usage == nil {
			continue
		}
		sum.Tokens = e.Message.Usage.Total()
		sum.HasUsage = true
		sum.Model = e.Message.Model
		if e.Message.StopReason != nil && *e.Message.StopReason == "end_turn" {
			sum.Running = false
		}
		answered, okAnswer := parseTimestamp(e.Timestamp)
		if asked, okAsk := findQuestion(lines, i); okAnswer && okAsk && !answered.Before(asked) {
			sum.Duration = answered.Sub(asked)
			sum.HasDuration = true
		}
		break
	}
	return sum
}

// findQuestion walks back from the assistant entry at idx to the user
// prompt that started the turn. Tool results are user entries too and are
// skipped.
func findQuestion(lines []string, idx int) (time.Time, bool) {
	for j := idx - 1; j >= 0; j-- {
		e, ok := decode(lines[j])
		if !ok {
			continue
		}
		if e.Type == "user" && e.Message != nil && len(e.ToolUseResult) == 0 {
			return parseTimestamp(e.Timestamp)
		}
	}
	return time.Time{}, false
}

// LastAssistantText returns the text blocks of the last assistant entry.
func LastAssistantText(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	lines := strings.Split(string(content), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		e, ok := decode(lines[i])
		if !ok || e.Type != "assistant" || e.Message == nil {
			continue
		}
		blocks, _ := e.Message.Content.([]any)
		if blocks == nil {
			continue
		}
		var textParts []string
		for _, b := range blocks {
			m, _ := b.(map[string]any)
			if m == nil {
				continue
			}
			if typ, _ := m["type"].(string); typ == "text" {
				if text, ok := m["text"].(string); ok {
					textParts = append(textParts, text)
				}
			}
		}
		if len(textParts) > 0 {
			return strings.Join(textParts, "\n")
		}
	}
	return ""
}

func decode(line string) (entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return entry{}, false
	}
	var e entry
	if json.Unmarshal([]byte(line), &e) != nil {
		return entry{}, false
	}
	return e, true
}

func hasContent(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
