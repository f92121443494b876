// Package keybind produces the shift+enter bindings that send ESC CR so the
// host accepts a newline instead of submitting.
package keybind

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/tailscale/hujson"
)

// Sequence is what the terminal sends on shift+enter.
const Sequence = "\x1b\r"

const key = "shift+enter"

// Target names a supported editor or terminal.
type Target string

const (
	VSCode          Target = "vscode"
	WindowsTerminal Target = "windows-terminal"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case VSCode, WindowsTerminal:
		return Target(s), nil
	}
	return "", fmt.Errorf("unknown keybinding target %q (want vscode or windows-terminal)", s)
}

// Binding returns the record for t as decoded JSON.
func Binding(t Target) map[string]any {
	if t == WindowsTerminal {
		return map[string]any{
			"command": map[string]any{"action": "sendInput", "input": Sequence},
			"keys":    key,
		}
	}
	return map[string]any{
		"key":     key,
		"command": "workbench.action.terminal.sendSequence",
		"args":    map[string]any{"text": Sequence},
		"when":    "terminalFocus",
	}
}

// Snippet renders the binding for display.
func Snippet(t Target) (string, error) {
	data, err := json.MarshalIndent(Binding(t), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Merge adds the binding for t to doc, the decoded contents of the target's
// file (nil when empty). It reports whether doc changed.
func Merge(t Target, doc any) (any, bool, error) {
	binding := Binding(t)
	if t == WindowsTerminal {
		obj, ok := doc.(map[string]any)
		if doc == nil {
			obj, ok = map[string]any{}, true
		}
		if !ok {
			return nil, false, fmt.Errorf("windows terminal settings must be an object")
		}
		actions, _ := obj["actions"].([]any)
		if contains(actions, binding) {
			return obj, false, nil
		}
		obj["actions"] = append(actions, binding)
		return obj, true, nil
	}

	list, ok := doc.([]any)
	if doc == nil {
		ok = true
	}
	if !ok {
		return nil, false, fmt.Errorf("vscode keybindings must be an array")
	}
	if contains(list, binding) {
		return list, false, nil
	}
	return append(list, binding), true, nil
}

func contains(list []any, binding map[string]any) bool {
	for _, item := range list {
		if reflect.DeepEqual(item, binding) {
			return true
		}
	}
	return false
}

// decodeJSONC decodes a JSON-with-comments file as both editors write
// them. Empty input decodes to nil.
func decodeJSONC(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(std, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteFile merges the binding for t into the JSON file at path, creating
// it if needed. It reports whether the file changed. Comments in the
// original file are not preserved.
func WriteFile(t Target, path string) (bool, error) {
	var doc any
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if doc, err = decodeJSONC(data); err != nil {
			return false, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return false, err
	}

	merged, changed, err := Merge(t, doc)
	if err != nil || !changed {
		return false, err
	}
	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return false, err
	}
	return true, nil
}
