package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallFor(t *testing.T) {
	in := installFor("/usr/local/bin/cc-statusline")
	assert.Equal(t, "/usr/local/bin/cc-statusline statusline", in.StatusLineCommand)
	assert.Equal(t, "/usr/local/bin/cc-statusline hook", in.HookCommand)
	assert.Equal(t, "cc-statusline", in.Marker)
	assert.Equal(t, 5, in.HookTimeout)

	in = installFor("/Applications/My Tools/cc-statusline")
	assert.Equal(t, `"/Applications/My Tools/cc-statusline" hook`, in.HookCommand)

	in = installFor(`C:\Program Files\cc-statusline\cc-statusline.exe`)
	assert.Equal(t, `"C:\Program Files\cc-statusline\cc-statusline.exe" statusline`, in.StatusLineCommand)
	assert.Equal(t, "cc-statusline", in.Marker)
}

func TestChooseSounds(t *testing.T) {
	stock := func(event string) string { return "/stock/" + event + ".wav" }
	noStock := func(string) string { return "" }

	tests := []struct {
		name         string
		current      config.SoundConfig
		notification string
		stop         string
		fallback     func(string) string
		expect       map[string]string
	}{
		{
			name:     "fresh install gets system sounds",
			fallback: stock,
			expect:   map[string]string{"notification": "/stock/notification.wav", "stop": "/stock/stop.wav"},
		},
		{
			name:     "flags win",
			stop:     "/mine/done.wav",
			fallback: stock,
			expect:   map[string]string{"notification": "/stock/notification.wav", "stop": "/mine/done.wav"},
		},
		{
			name:     "configured sounds are kept",
			current:  config.SoundConfig{Notification: "/cfg/ping.wav", Stop: "/cfg/done.wav"},
			fallback: stock,
			expect:   map[string]string{},
		},
		{
			name:     "no system sound available",
			fallback: noStock,
			expect:   map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, chooseSounds(tt.current, tt.notification, tt.stop, tt.fallback))
		})
	}
}

func TestConfigureSoundsWritesFlags(t *testing.T) {
	prev := config.ConfigDir
	config.ConfigDir = t.TempDir()
	t.Cleanup(func() {
		config.ConfigDir = prev
		setupNotifySound, setupStopSound = "", ""
	})
	setupNotifySound, setupStopSound = "/s/ping.wav", "/s/done.wav"

	var out bytes.Buffer
	require.NoError(t, configureSounds(&out))
	assert.Contains(t, out.String(), "stop sound: /s/done.wav")

	cfg, err := config.Load(config.ConfigDir)
	require.NoError(t, err)
	assert.Equal(t, "/s/ping.wav", cfg.Sounds.Notification)
	assert.Equal(t, "/s/done.wav", cfg.Sounds.Stop)
}

func TestPromptTelegram(t *testing.T) {
	prev := config.ConfigDir
	config.ConfigDir = t.TempDir()
	t.Cleanup(func() { config.ConfigDir = prev })

	var out bytes.Buffer
	require.NoError(t, promptTelegram(strings.NewReader("123:abc\n42\n"), &out))
	creds, err := config.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", creds.BotToken)
	assert.Equal(t, int64(42), creds.ChatID)

	assert.Error(t, promptTelegram(strings.NewReader("\nnot-a-number\n"), &out))
}

func TestKeybindingsCommandWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybindings.json")
	var out bytes.Buffer
	KeybindingsCmd.SetOut(&out)
	KeybindingsCmd.SetArgs([]string{"vscode", "--write", path})
	t.Cleanup(func() { keybindingsWriteFlag = "" })
	require.NoError(t, KeybindingsCmd.Execute())
	assert.Contains(t, out.String(), "Added shift+enter binding")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workbench.action.terminal.sendSequence")
}
