// Package settings edits the host's settings.json so that it runs our
// status line and hook commands.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Install describes what to register.
type Install struct {
	StatusLineCommand string
	HookCommand       string
	// Events are the hook events that get HookCommand (Notification, Stop).
	Events []string
	// Marker identifies entries we wrote earlier so they can be replaced.
	Marker string
	// HookTimeout is the per-hook timeout in seconds the host enforces.
	HookTimeout int
}

// DefaultEvents are the hook events that play sounds.
var DefaultEvents = []string{"Notification", "Stop"}

const lockTimeout = 5 * time.Second

// Path is the default host settings file.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "settings.json")
}

// Merge adds the status line and hook entries to settings in place and
// returns it. Foreign hook entries are kept; ours are replaced.
func Merge(settings map[string]any, in Install) map[string]any {
	if settings == nil {
		settings = make(map[string]any)
	}
	if in.StatusLineCommand != "" {
		settings["statusLine"] = map[string]any{
			"type":    "command",
			"command": in.StatusLineCommand,
			"padding": 0,
		}
	}
	if in.HookCommand == "" {
		return settings
	}
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		hooks = make(map[string]any)
	}
	hookEntry := map[string]any{
		"matcher": "",
		"hooks": []any{
			map[string]any{
				"type":    "command",
				"command": in.HookCommand,
				"timeout": in.HookTimeout,
			},
		},
	}
	for _, event := range in.Events {
		existing, _ := hooks[event].([]any)
		filtered := make([]any, 0, len(existing)+1)
		for _, h := range existing {
			hJSON, _ := json.Marshal(h)
			if in.Marker != "" && strings.Contains(string(hJSON), in.Marker) {
				continue
			}
			filtered = append(filtered, h)
		}
		filtered = append(filtered, hookEntry)
		hooks[event] = filtered
	}
	settings["hooks"] = hooks
	return settings
}

// Apply merges in into the file at path. Unless dryRun is set it keeps a
// .backup copy and replaces the file atomically while holding path.lock.
// It returns the merged document.
func Apply(path string, in Install, dryRun bool) ([]byte, error) {
	if !dryRun {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		lock := flock.New(path + ".lock")
		ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
		defer cancel()
		locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if !locked {
			return nil, fmt.Errorf("lock %s: held by another process", path)
		}
		defer lock.Unlock()
	}

	var settings map[string]any
	original, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(original, &settings); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	data, err := json.MarshalIndent(Merge(settings, in), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')
	if dryRun {
		return data, nil
	}
	if original != nil {
		if err := os.WriteFile(path+".backup", original, 0644); err != nil {
			return nil, fmt.Errorf("backup: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	return data, nil
}
