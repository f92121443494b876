// Package sound plays notification sounds through an external player.
package sound

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoPlayer is returned when no known player exists on this system.
var ErrNoPlayer = errors.New("no sound player found")

// Executor starts external commands. Start must not wait for the command
// to finish.
type Executor interface {
	Start(name string, args ...string) error
	LookPath(file string) (string, error)
}

// ExecExecutor runs commands with os/exec, detached from our stdio.
type ExecExecutor struct{}

func (ExecExecutor) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return err
	}
	// reap in the background if we live long enough
	go cmd.Wait()
	return nil
}

func (ExecExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Player plays sound files.
type Player struct {
	exec Executor
	goos string
	// override is a user-chosen player binary; the file is its only argument.
	override string
}

// NewPlayer returns a Player for the current OS. override may be empty.
func NewPlayer(e Executor, override string) *Player {
	return &Player{exec: e, goos: runtime.GOOS, override: override}
}

// Play starts playback of path and returns without waiting for it.
func (p *Player) Play(path string) error {
	if path == "" {
		return errors.New("no sound file configured")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sound file: %w", err)
	}
	name, args, err := p.command(path)
	if err != nil {
		return err
	}
	if err := p.exec.Start(name, args...); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

// command picks the player binary and arguments for path.
func (p *Player) command(path string) (string, []string, error) {
	if p.override != "" {
		return p.override, []string{path}, nil
	}
	switch p.goos {
	case "darwin":
		return "afplay", []string{path}, nil
	case "windows":
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(path, "'", "''"))
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, nil
	default:
		for _, candidate := range []string{"paplay", "aplay", "ffplay"} {
			if _, err := p.exec.LookPath(candidate); err != nil {
				continue
			}
			if candidate == "ffplay" {
				return candidate, []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}, nil
			}
			return candidate, []string{path}, nil
		}
		return "", nil, ErrNoPlayer
	}
}

// Stock sounds shipped with each OS, most preferred first.
var systemSounds = map[string]map[string][]string{
	"darwin": {
		"notification": {"/System/Library/Sounds/Glass.aiff"},
		"stop":         {"/System/Library/Sounds/Hero.aiff"},
	},
	"linux": {
		"notification": {"/usr/share/sounds/freedesktop/stereo/message.oga", "/usr/share/sounds/alsa/Front_Center.wav"},
		"stop":         {"/usr/share/sounds/freedesktop/stereo/complete.oga", "/usr/share/sounds/alsa/Front_Center.wav"},
	},
	"windows": {
		"notification": {`C:\Windows\Media\Windows Notify System Generic.wav`, `C:\Windows\Media\notify.wav`},
		"stop":         {`C:\Windows\Media\tada.wav`},
	},
}

// SystemDefault returns a stock sound for event ("notification" or
// "stop") that exists on this machine, or "".
func SystemDefault(event string) string {
	return systemDefault(runtime.GOOS, event, func(path string) bool {
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	})
}

func systemDefault(goos, event string, exists func(string) bool) string {
	for _, path := range systemSounds[goos][event] {
		if exists(path) {
			return path
		}
	}
	return ""
}
