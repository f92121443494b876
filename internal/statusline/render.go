package statusline

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/Seraphli/cc-statusline/internal/gitbranch"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// Renderer turns a SessionState into one status line. It holds no
// per-session state; the same input always renders the same line.
type Renderer struct {
	cfg      config.RenderConfig
	branches gitbranch.Resolver

	warnStyle     lipgloss.Style
	criticalStyle lipgloss.Style
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithBranchResolver replaces the default git lookup.
func WithBranchResolver(r gitbranch.Resolver) Option {
	return func(rd *Renderer) { rd.branches = r }
}

// New builds a Renderer for cfg.
func New(cfg config.RenderConfig, opts ...Option) *Renderer {
	if cfg.Separator == "" {
		cfg.Separator = " | "
	}
	if cfg.GitTimeout <= 0 {
		cfg.GitTimeout = config.Default().Render.GitTimeout
	}
	// Output goes to the host through a pipe, so the profile is chosen
	// from config rather than detected.
	lr := lipgloss.NewRenderer(io.Discard)
	if cfg.Color {
		lr.SetColorProfile(termenv.ANSI)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	r := &Renderer{
		cfg:           cfg,
		branches:      gitbranch.Default(cfg.GitTimeout),
		warnStyle:     lr.NewStyle().Foreground(lipgloss.Color("3")),
		criticalStyle: lr.NewStyle().Foreground(lipgloss.Color("1")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render assembles the segments that are present, in fixed order.
func (r *Renderer) Render(ctx context.Context, state SessionState) string {
	segments := []string{
		r.modelSegment(state),
		r.dirSegment(ctx, state),
		r.ContextSegment(state),
		r.durationSegment(state),
	}
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, r.cfg.Separator)
}

func (r *Renderer) modelSegment(state SessionState) string {
	model := singleLine(state.ModelName)
	if base := singleLine(state.BaseURL); base != "" {
		return model + " @ " + base
	}
	return model
}

func (r *Renderer) dirSegment(ctx context.Context, state SessionState) string {
	dir := state.WorkingDirectory
	if r.cfg.DirStyle == "base" {
		dir = filepath.Base(dir)
	}
	dir = singleLine(dir)
	if branch := singleLine(r.branch(ctx, state)); branch != "" {
		return fmt.Sprintf("%s (%s)", dir, branch)
	}
	return dir
}

func (r *Renderer) branch(ctx context.Context, state SessionState) string {
	if state.GitBranch != nil {
		return *state.GitBranch
	}
	if r.branches == nil {
		return ""
	}
	branch, ok := r.branches.Resolve(ctx, state.WorkingDirectory)
	if !ok {
		return ""
	}
	return branch
}

// ContextSegment renders the usage part of the line on its own.
func (r *Renderer) ContextSegment(state SessionState) string {
	pct, ok := UsagePercent(state.TokensUsed, r.cfg.ContextLimit)
	if !ok {
		return "ctx unknown"
	}
	text := fmt.Sprintf("ctx %d%%", pct)
	if r.cfg.ShowTokens {
		text += fmt.Sprintf(" (%s/%s)", humanize.Comma(state.TokensUsed), humanize.Comma(int64(r.cfg.ContextLimit)))
	}
	// thresholds apply to the exact ratio, not the rounded figure
	ratio := 100 * float64(state.TokensUsed) / float64(r.cfg.ContextLimit)
	switch {
	case ratio > float64(r.cfg.CriticalPercent):
		return r.criticalStyle.Render(text)
	case ratio > float64(r.cfg.WarnPercent):
		return r.warnStyle.Render(text)
	default:
		return text
	}
}

func (r *Renderer) durationSegment(state SessionState) string {
	if state.LastResponseMS == nil {
		return ""
	}
	text := FormatDuration(*state.LastResponseMS)
	if state.Running {
		text += " (running)"
	}
	return text
}

// UsagePercent is round(100*tokens/limit) clamped to [0,100]. It reports
// false when the limit is not a positive number.
func UsagePercent(tokens int64, limit int) (int, bool) {
	if limit <= 0 {
		return 0, false
	}
	pct := math.Round(100 * float64(tokens) / float64(limit))
	return int(max(0, min(100, pct))), true
}

// FormatDuration renders milliseconds below one second and seconds with
// one decimal above.
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return strconv.FormatInt(ms, 10) + "ms"
	}
	return strconv.FormatFloat(float64(ms)/1000, 'f', 1, 64) + "s"
}
