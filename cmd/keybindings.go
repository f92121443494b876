package cmd

import (
	"fmt"

	"github.com/Seraphli/cc-statusline/internal/keybind"
	"github.com/spf13/cobra"
)

var KeybindingsCmd = &cobra.Command{
	Use:       "keybindings <vscode|windows-terminal>",
	Short:     "Print or install a shift+enter binding that inserts a newline",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(keybind.VSCode), string(keybind.WindowsTerminal)},
	RunE:      runKeybindings,
}

var keybindingsWriteFlag string

func init() {
	KeybindingsCmd.Flags().StringVar(&keybindingsWriteFlag, "write", "", "Merge the binding into this file instead of printing it")
}

func runKeybindings(cmd *cobra.Command, args []string) error {
	target, err := keybind.ParseTarget(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if keybindingsWriteFlag == "" {
		snippet, err := keybind.Snippet(target)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, snippet)
		return nil
	}
	changed, err := keybind.WriteFile(target, keybindingsWriteFlag)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintf(out, "Added shift+enter binding to %s\n", keybindingsWriteFlag)
		fmt.Fprintln(out, "Comments in that file were not kept.")
	} else {
		fmt.Fprintf(out, "%s already has the binding\n", keybindingsWriteFlag)
	}
	return nil
}
