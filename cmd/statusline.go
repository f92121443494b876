package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/Seraphli/cc-statusline/internal/endpoint"
	"github.com/Seraphli/cc-statusline/internal/logger"
	"github.com/Seraphli/cc-statusline/internal/statusline"
	"github.com/Seraphli/cc-statusline/internal/transcript"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var StatuslineCmd = &cobra.Command{
	Use:   "statusline",
	Short: "Render the Claude Code status line from the JSON payload on stdin",
	Args:  cobra.NoArgs,
	RunE:  runStatusline,
}

func runStatusline(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return &statusline.MalformedInputError{Err: errors.New("expected a JSON payload on stdin")}
	}
	cfg, err := config.Get()
	if err != nil {
		logger.Info(fmt.Sprintf("config invalid, using defaults: %v", err))
	}
	if cfg.Debug {
		logger.SetDebugMode(true)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	line, err := renderStatusline(ctx, in, cfg.Render, defaultSources())
	if err != nil {
		logger.Debug(fmt.Sprintf("statusline: %v", err))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

// renderStatusline turns one payload into one line. Nothing is written when
// the payload is malformed.
func renderStatusline(ctx context.Context, r io.Reader, cfg config.RenderConfig, src statusline.Sources, opts ...statusline.Option) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	state, err := statusline.Parse(data)
	if err != nil {
		return "", err
	}
	state = statusline.Enrich(state, src)
	return statusline.New(cfg, opts...).Render(ctx, state), nil
}

func defaultSources() statusline.Sources {
	return statusline.Sources{
		ReadTranscript: func(path string) (transcript.Summary, error) {
			sum, err := transcript.Read(path)
			if err != nil {
				logger.Debug(fmt.Sprintf("transcript %s: %v", path, err))
			}
			return sum, err
		},
		ResolveEndpoint: func() string {
			return endpoint.Resolve(os.Getenv, endpoint.SettingsPath())
		},
	}
}
