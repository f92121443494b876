package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the user-editable configuration read from config.json.
type Config struct {
	Render RenderConfig `mapstructure:"render"`
	Sounds SoundConfig  `mapstructure:"sounds"`
	Notify NotifyConfig `mapstructure:"notify"`
	Debug  bool         `mapstructure:"debug"`
}

// RenderConfig controls how the status line is drawn.
type RenderConfig struct {
	// ContextLimit is the context window of the deployed model, in tokens.
	// Zero renders the usage as "unknown".
	ContextLimit    int           `mapstructure:"context_limit"`
	Color           bool          `mapstructure:"color"`
	WarnPercent     int           `mapstructure:"warn_percent"`
	CriticalPercent int           `mapstructure:"critical_percent"`
	DirStyle        string        `mapstructure:"dir_style"` // "full" or "base"
	ShowTokens      bool          `mapstructure:"show_tokens"`
	GitTimeout      time.Duration `mapstructure:"git_timeout"`
	Separator       string        `mapstructure:"separator"`
}

// SoundConfig maps hook events to sound files.
type SoundConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Notification string `mapstructure:"notification"`
	Stop         string `mapstructure:"stop"`
	// Player overrides the OS default player binary (afplay, paplay, ...).
	Player string `mapstructure:"player"`
}

// NotifyConfig controls Telegram notifications from hooks.
type NotifyConfig struct {
	Telegram bool `mapstructure:"telegram"`
	// MaxBodyRunes truncates the assistant message sent for Stop events.
	MaxBodyRunes int `mapstructure:"max_body_runes"`
}

type Credentials struct {
	BotToken string `json:"botToken"`
	ChatID   int64  `json:"chatId"`
}

var ConfigDir string // Set by root command PersistentPreRun

const envPrefix = "CCSL"

func GetConfigDir() string {
	if ConfigDir != "" {
		return ConfigDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cc-statusline")
}

func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.json")
}

func GetCredentialsPath() string {
	return filepath.Join(GetConfigDir(), "credentials.json")
}

func GetLogPath() string {
	return filepath.Join(GetConfigDir(), "cc-statusline.log")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			ContextLimit:    200_000,
			Color:           true,
			WarnPercent:     65,
			CriticalPercent: 90,
			DirStyle:        "full",
			ShowTokens:      false,
			GitTimeout:      100 * time.Millisecond,
			Separator:       " | ",
		},
		Sounds: SoundConfig{
			Enabled: true,
		},
		Notify: NotifyConfig{
			Telegram:     false,
			MaxBodyRunes: 3000,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("render.context_limit", d.Render.ContextLimit)
	v.SetDefault("render.color", d.Render.Color)
	v.SetDefault("render.warn_percent", d.Render.WarnPercent)
	v.SetDefault("render.critical_percent", d.Render.CriticalPercent)
	v.SetDefault("render.dir_style", d.Render.DirStyle)
	v.SetDefault("render.show_tokens", d.Render.ShowTokens)
	v.SetDefault("render.git_timeout", d.Render.GitTimeout)
	v.SetDefault("render.separator", d.Render.Separator)

	v.SetDefault("sounds.enabled", d.Sounds.Enabled)
	v.SetDefault("sounds.notification", d.Sounds.Notification)
	v.SetDefault("sounds.stop", d.Sounds.Stop)
	v.SetDefault("sounds.player", d.Sounds.Player)

	v.SetDefault("notify.telegram", d.Notify.Telegram)
	v.SetDefault("notify.max_body_runes", d.Notify.MaxBodyRunes)

	v.SetDefault("debug", d.Debug)
}

// Load reads config.json from dir, overlays CCSL_* environment variables on
// top of the defaults, and validates the result. A missing file is not an
// error.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		millisecondsHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Render.GitTimeout == 0 {
		cfg.Render.GitTimeout = Default().Render.GitTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// millisecondsHook reads bare numbers given for a duration as
// milliseconds, so "git_timeout": 100 means 100ms rather than 100ns.
func millisecondsHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType || from == durationType {
		return data, nil
	}
	var ms float64
	switch v := data.(type) {
	case int:
		ms = float64(v)
	case int64:
		ms = float64(v)
	case float64:
		ms = v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return data, nil
		}
		ms = n
	default:
		return data, nil
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

// Get loads the config from the config dir, falling back to defaults when
// the file is unreadable or invalid. The returned error is informational.
func Get() (*Config, error) {
	cfg, err := Load(GetConfigDir())
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	r := c.Render
	if r.ContextLimit < 0 {
		errs = append(errs, fmt.Errorf("render.context_limit must be >= 0, got %d", r.ContextLimit))
	}
	if r.WarnPercent < 0 || r.CriticalPercent > 100 || r.WarnPercent > r.CriticalPercent {
		errs = append(errs, fmt.Errorf("render.warn_percent (%d) and render.critical_percent (%d) must satisfy 0 <= warn <= critical <= 100",
			r.WarnPercent, r.CriticalPercent))
	}
	if r.DirStyle != "full" && r.DirStyle != "base" {
		errs = append(errs, fmt.Errorf("render.dir_style must be \"full\" or \"base\", got %q", r.DirStyle))
	}
	if r.GitTimeout < 0 {
		errs = append(errs, fmt.Errorf("render.git_timeout must be >= 0, got %s", r.GitTimeout))
	}
	return errors.Join(errs...)
}

// SetSounds records sound files for hook events ("notification", "stop")
// in dir/config.json, keeping every other key already in the file.
func SetSounds(dir string, sounds map[string]string) error {
	v := viper.New()
	v.SetConfigType("json")
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	case !os.IsNotExist(err):
		return err
	}
	for event, file := range sounds {
		v.Set("sounds."+event, file)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}

func ensureConfigDir() error {
	dir := GetConfigDir()
	return os.MkdirAll(dir, 0755)
}

func LoadCredentials() (Credentials, error) {
	path := GetCredentialsPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Credentials{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func SaveCredentials(creds Credentials) error {
	if err := ensureConfigDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(GetCredentialsPath(), data, 0600)
}
