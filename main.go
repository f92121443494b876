package main

import (
	"fmt"
	"os"

	"github.com/Seraphli/cc-statusline/cmd"
	"github.com/Seraphli/cc-statusline/internal/config"
	"github.com/Seraphli/cc-statusline/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	var configDir string
	var debug bool
	rootCmd := &cobra.Command{
		Use:   "cc-statusline",
		Short: "Status line and hooks for Claude Code",
		Long: `Reads the Claude Code status line payload on stdin and prints one line:
model @ endpoint | directory (branch) | context usage | last response time.`,
		Args:          cobra.NoArgs,
		RunE:          cmd.StatuslineCmd.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			config.ConfigDir = configDir
			logger.Init(config.GetLogPath(), debug)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.cc-statusline)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug entries to the log file")
	rootCmd.AddCommand(cmd.StatuslineCmd)
	rootCmd.AddCommand(cmd.HookCmd)
	rootCmd.AddCommand(cmd.SetupCmd)
	rootCmd.AddCommand(cmd.KeybindingsCmd)
	rootCmd.AddCommand(cmd.McpCmd)
	rootCmd.AddCommand(cmd.VersionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
