package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInstall() Install {
	return Install{
		StatusLineCommand: "/opt/bin/cc-statusline statusline",
		HookCommand:       "/opt/bin/cc-statusline hook",
		Events:            DefaultEvents,
		Marker:            "cc-statusline",
		HookTimeout:       5,
	}
}

func hookCommands(t *testing.T, settings map[string]any, event string) []string {
	t.Helper()
	hooks := settings["hooks"].(map[string]any)
	var cmds []string
	for _, entry := range hooks[event].([]any) {
		for _, h := range entry.(map[string]any)["hooks"].([]any) {
			cmds = append(cmds, h.(map[string]any)["command"].(string))
		}
	}
	return cmds
}

func TestApplyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".claude", "settings.json")
	_, err := Apply(path, testInstall(), false)
	require.NoError(t, err)

	var got map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))

	sl := got["statusLine"].(map[string]any)
	assert.Equal(t, "command", sl["type"])
	assert.Equal(t, "/opt/bin/cc-statusline statusline", sl["command"])
	assert.Equal(t, []string{"/opt/bin/cc-statusline hook"}, hookCommands(t, got, "Notification"))
	assert.Equal(t, []string{"/opt/bin/cc-statusline hook"}, hookCommands(t, got, "Stop"))
	assert.NoFileExists(t, path+".backup")
}

func TestApplyKeepsForeignEntriesAndReplacesOurs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	existing := `{
  "model": "opus",
  "hooks": {
    "Stop": [
      {"matcher": "", "hooks": [{"type": "command", "command": "afplay /System/Library/Sounds/Glass.aiff"}]},
      {"matcher": "", "hooks": [{"type": "command", "command": "/old/cc-statusline hook"}]}
    ],
    "PreToolUse": [{"matcher": "Bash", "hooks": [{"type": "command", "command": "guard"}]}]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	_, err := Apply(path, testInstall(), false)
	require.NoError(t, err)

	var got map[string]any
	data, _ := os.ReadFile(path)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "opus", got["model"])
	assert.Equal(t, []string{"afplay /System/Library/Sounds/Glass.aiff", "/opt/bin/cc-statusline hook"}, hookCommands(t, got, "Stop"))
	assert.Equal(t, []string{"guard"}, hookCommands(t, got, "PreToolUse"))

	backup, err := os.ReadFile(path + ".backup")
	require.NoError(t, err)
	assert.Equal(t, existing, string(backup))
}

func TestApplyIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	first, err := Apply(path, testInstall(), false)
	require.NoError(t, err)
	second, err := Apply(path, testInstall(), false)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestApplyDryRunDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	data, err := Apply(path, testInstall(), true)
	require.NoError(t, err)
	assert.Contains(t, string(data), "statusLine")
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".lock")
}

func TestApplyRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0644))
	_, err := Apply(path, testInstall(), false)
	assert.Error(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "{oops", string(data))
}

func TestMergeStatusLineOnly(t *testing.T) {
	got := Merge(nil, Install{StatusLineCommand: "x statusline"})
	assert.Contains(t, got, "statusLine")
	assert.NotContains(t, got, "hooks")
}
