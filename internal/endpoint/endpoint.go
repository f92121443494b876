// Package endpoint works out which API host the assistant talks to.
package endpoint

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const envKey = "ANTHROPIC_BASE_URL"

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// ExtractHost reduces a base URL to its host[:port]. Values without a
// scheme are read as https. Returns "" when nothing usable is left.
func ExtractHost(value string) string {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		return ""
	}
	if !schemeRe.MatchString(candidate) {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	if u.Host != "" {
		return u.Host
	}
	if p := strings.TrimLeft(u.Path, "/"); p != "" {
		head, _, _ := strings.Cut(p, "/")
		return head
	}
	return ""
}

// SettingsPath is the host settings file consulted when the environment
// does not name an endpoint.
func SettingsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "settings.json")
}

// Resolve returns the endpoint host from the environment, then from the
// host settings file ("anthropic_base_url" or "env.ANTHROPIC_BASE_URL").
// Any failure yields "".
func Resolve(getenv func(string) string, settingsPath string) string {
	if getenv != nil {
		if host := ExtractHost(getenv(envKey)); host != "" {
			return host
		}
	}
	if settingsPath == "" {
		return ""
	}
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return ""
	}
	// Other keys may hold any type, so only the two we read are typed.
	var settings struct {
		AnthropicBaseURL any            `json:"anthropic_base_url"`
		Env              map[string]any `json:"env"`
	}
	if json.Unmarshal(data, &settings) != nil {
		return ""
	}
	if s, ok := settings.AnthropicBaseURL.(string); ok {
		if host := ExtractHost(s); host != "" {
			return host
		}
	}
	s, _ := settings.Env[envKey].(string)
	return ExtractHost(s)
}
