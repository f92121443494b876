package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/Seraphli/cc-statusline/internal/logger"
	"github.com/Seraphli/cc-statusline/internal/notify"
	"github.com/Seraphli/cc-statusline/internal/sound"
	"github.com/Seraphli/cc-statusline/internal/transcript"
	"github.com/spf13/cobra"
)

var HookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Hook command called by Claude Code (reads stdin payload)",
	Args:  cobra.NoArgs,
	Run:   runHook,
}

type hookPayload struct {
	HookEventName  string `json:"hook_event_name"`
	SessionID      string `json:"session_id"`
	Cwd            string `json:"cwd"`
	TranscriptPath string `json:"transcript_path"`
	Message        string `json:"message"`
}

// hookDeps lets tests replace the player and the Telegram sender.
type hookDeps struct {
	player    interface{ Play(path string) error }
	newSender func() (notify.Sender, error)
	lastText  func(transcriptPath string) string
}

// runHook never fails: a broken hook must not disturb Claude Code.
func runHook(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		logger.Error(fmt.Sprintf("hook: read stdin: %v", err))
		return
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return
	}
	var payload hookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		logger.Error(fmt.Sprintf("hook: decode payload: %v", err))
		return
	}
	cfg, err := config.Get()
	if err != nil {
		logger.Info(fmt.Sprintf("config invalid, using defaults: %v", err))
	}
	if cfg.Debug {
		logger.SetDebugMode(true)
	}
	handleHook(payload, cfg, hookDeps{
		player:    sound.NewPlayer(sound.ExecExecutor{}, cfg.Sounds.Player),
		newSender: telegramSender,
		lastText:  transcript.LastAssistantText,
	})
}

func telegramSender() (notify.Sender, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return notify.NewTelegramSender(creds.BotToken, creds.ChatID)
}

func handleHook(p hookPayload, cfg *config.Config, d hookDeps) {
	logger.Debug(fmt.Sprintf("hook event=%s session=%s cwd=%s", p.HookEventName, p.SessionID, p.Cwd))

	var soundPath string
	switch p.HookEventName {
	case "Notification":
		soundPath = cfg.Sounds.Notification
	case "Stop", "SubagentStop":
		soundPath = cfg.Sounds.Stop
	default:
		return
	}

	if cfg.Sounds.Enabled && soundPath != "" {
		if err := d.player.Play(soundPath); err != nil {
			logger.Error(fmt.Sprintf("hook: play %s: %v", soundPath, err))
		}
	}

	if !cfg.Notify.Telegram {
		return
	}
	sender, err := d.newSender()
	if err != nil {
		logger.Error(fmt.Sprintf("hook: telegram: %v", err))
		return
	}
	project := "unknown"
	if p.Cwd != "" {
		project = filepath.Base(p.Cwd)
	}
	data := notify.NotificationData{
		Event:   p.HookEventName,
		Project: project,
	}
	if p.HookEventName == "Notification" {
		data.Message = p.Message
	} else if p.TranscriptPath != "" {
		data.Body = notify.Truncate(d.lastText(p.TranscriptPath), cfg.Notify.MaxBodyRunes)
	}
	if err := sender.Send(notify.BuildNotificationText(data)); err != nil {
		logger.Error(fmt.Sprintf("hook: telegram send: %v", err))
		return
	}
	logger.Info(fmt.Sprintf("hook: notified %s for %s", p.HookEventName, project))
}
