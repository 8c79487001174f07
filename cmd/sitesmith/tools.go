package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/tools"
)

var toolsAll bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available tools",
	Long: `List the tools the model can call under the configured preset.

The model decides when to call them while building a site. Commands run
in the configured work directory and are translated for PowerShell on
Windows.

Examples:
  sitesmith tools                    # Tools of the configured preset
  sitesmith tools --preset frontend  # Tools of another preset
  sitesmith tools --all --verbose    # Every tool with parameters`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTools()
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsAll, "all", false, "List every built-in tool")
}

func runTools() error {
	preset, err := llm.LookupPreset(cfg.Agent.Preset)
	if err != nil {
		return err
	}
	if toolsAll {
		preset.Tools = tools.Builtin(nil, nil).Names()
	}

	registry, platform, err := buildRegistry(cfg, preset, logger)
	if err != nil {
		return err
	}
	fmt.Print(renderTools(registry, preset.Name, platform.Label(), verbose))
	return nil
}

func renderTools(registry *tools.Registry, preset, platform string, detailed bool) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0EA5E9")).
		Bold(true)

	toolStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF"))

	paramStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#06B6D4"))

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	out := headerStyle.Render(fmt.Sprintf("Available Tools (preset %s, %s)", preset, platform)) + "\n\n"

	if registry.Len() == 0 {
		out += dimStyle.Render("  This preset runs without tools.") + "\n"
		return out
	}

	for _, desc := range registry.Descriptors() {
		out += fmt.Sprintf("  %s\n", toolStyle.Render("◆ "+string(desc.Name)))
		out += fmt.Sprintf("    %s\n", descStyle.Render(desc.Description))

		if detailed && len(desc.Parameters) > 0 {
			out += "    Parameters:\n"
			for _, p := range desc.Parameters {
				req := ""
				if p.Required {
					req = " (required)"
				}
				out += fmt.Sprintf("      %s%s\n", paramStyle.Render(p.Name), req)
				out += fmt.Sprintf("        %s\n", descStyle.Render(p.Description))
			}
		}
		out += "\n"
	}

	if !detailed {
		out += dimStyle.Render("  Use --verbose for parameter details") + "\n"
	}
	return out
}
