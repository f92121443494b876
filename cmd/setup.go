package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/Seraphli/cc-statusline/internal/logger"
	"github.com/Seraphli/cc-statusline/internal/settings"
	"github.com/Seraphli/cc-statusline/internal/sound"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the status line and hooks into ~/.claude/settings.json",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

var (
	setupDryRunFlag   bool
	setupTelegramFlag bool
	setupSettingsFlag string
	setupNotifySound  string
	setupStopSound    string
)

func init() {
	SetupCmd.Flags().BoolVar(&setupDryRunFlag, "dry-run", false, "Print the merged settings instead of writing them")
	SetupCmd.Flags().BoolVar(&setupTelegramFlag, "telegram", false, "Prompt for Telegram bot credentials")
	SetupCmd.Flags().StringVar(&setupSettingsFlag, "settings", "", "Settings file to edit (default ~/.claude/settings.json)")
	SetupCmd.Flags().StringVar(&setupNotifySound, "notification-sound", "", "Sound file for Notification hooks (default: a system sound)")
	SetupCmd.Flags().StringVar(&setupStopSound, "stop-sound", "", "Sound file for Stop hooks (default: a system sound)")
}

func runSetup(cmd *cobra.Command, args []string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("get executable path: %w", err)
	}
	settingsPath := setupSettingsFlag
	if settingsPath == "" {
		settingsPath = settings.Path()
	}
	install := installFor(exePath)
	data, err := settings.Apply(settingsPath, install, setupDryRunFlag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if setupDryRunFlag {
		out.Write(data)
		return nil
	}
	logger.Info(fmt.Sprintf("setup: updated %s", settingsPath))
	fmt.Fprintf(out, "Status line and hooks installed to %s\n", settingsPath)
	fmt.Fprintf(out, "Status line command: %s\n", install.StatusLineCommand)
	fmt.Fprintf(out, "Hook command: %s\n", install.HookCommand)

	if err := configureSounds(out); err != nil {
		return err
	}
	if setupTelegramFlag {
		return promptTelegram(cmd.InOrStdin(), out)
	}
	return nil
}

func installFor(exePath string) settings.Install {
	exe := exePath
	// The host runs the command through a shell; backslashes in Windows
	// paths must reach it unescaped.
	if strings.ContainsAny(exe, " \t") {
		exe = `"` + exe + `"`
	}
	return settings.Install{
		StatusLineCommand: exe + " statusline",
		HookCommand:       exe + " hook",
		Events:            settings.DefaultEvents,
		Marker:            strings.TrimSuffix(exePath[strings.LastIndexAny(exePath, `/\`)+1:], ".exe"),
		HookTimeout:       5,
	}
}

func configureSounds(out io.Writer) error {
	cfg, err := config.Get()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	sounds := chooseSounds(cfg.Sounds, setupNotifySound, setupStopSound, sound.SystemDefault)
	if len(sounds) > 0 {
		if err := config.SetSounds(config.GetConfigDir(), sounds); err != nil {
			return fmt.Errorf("save sounds: %w", err)
		}
		for _, event := range []string{"notification", "stop"} {
			if file, ok := sounds[event]; ok {
				fmt.Fprintf(out, "%s sound: %s\n", event, file)
			}
		}
	}
	if cfg.Sounds.Notification == "" && cfg.Sounds.Stop == "" && len(sounds) == 0 {
		fmt.Fprintln(out, "No sound configured; pass --notification-sound/--stop-sound to enable one.")
	}
	return nil
}

// chooseSounds picks what to record: explicit flags win, and events with
// nothing configured get the system default when one exists.
func chooseSounds(current config.SoundConfig, notification, stop string, fallback func(event string) string) map[string]string {
	sounds := make(map[string]string)
	pick := func(event, flag, configured string) {
		switch {
		case flag != "":
			sounds[event] = flag
		case configured == "":
			if file := fallback(event); file != "" {
				sounds[event] = file
			}
		}
	}
	pick("notification", notification, current.Notification)
	pick("stop", stop, current.Stop)
	return sounds
}

func promptTelegram(in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return fmt.Errorf("telegram setup needs an interactive terminal; edit %s instead", config.GetCredentialsPath())
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	reader := bufio.NewReader(in)
	fmt.Fprint(out, "Enter your Telegram bot token (from @BotFather): ")
	token, _ := reader.ReadString('\n')
	if token = strings.TrimSpace(token); token != "" {
		creds.BotToken = token
	}
	fmt.Fprint(out, "Enter the chat ID to notify: ")
	chat, _ := reader.ReadString('\n')
	if chat = strings.TrimSpace(chat); chat != "" {
		id, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat ID %q: %w", chat, err)
		}
		creds.ChatID = id
	}
	if creds.BotToken == "" || creds.ChatID == 0 {
		return fmt.Errorf("both a bot token and a chat ID are required")
	}
	if err := config.SaveCredentials(creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	fmt.Fprintf(out, "Credentials saved to %s\n", config.GetCredentialsPath())
	fmt.Fprintf(out, "Set \"notify\": {\"telegram\": true} in %s to enable notifications.\n", config.GetConfigPath())
	return nil
}
