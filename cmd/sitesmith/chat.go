package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/shell"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the model without tools",
	Long: `Start a plain conversation with the configured model.

No commands are run and no files are written; the model only answers.
History is kept for the whole session. Type 'clear' to start over and
'exit' to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context(), llm.PresetChat, shell.ChatConfig(os.Stdin, os.Stdout))
	},
}
