package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ashutoshrp06/sitesmith/internal/config"
)

var (
	configInit  bool
	configPath  string
	configForce bool
	configYAML  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create configuration",
	Long: `View the effective sitesmith configuration or write a starter file.

Settings are resolved in this order, later ones winning:
  1. built-in defaults
  2. ./sitesmith.yaml or ~/.sitesmith/sitesmith.yaml (or --config)
  3. SITESMITH_* environment variables, e.g. SITESMITH_LLM_MODEL
  4. command line flags

GEMINI_API_KEY and OPENAI_API_KEY are read from the environment or a .env
file in the current directory.

Examples:
  sitesmith config                 # View effective config
  sitesmith config --yaml          # View it as YAML
  sitesmith config --init          # Write ./sitesmith.yaml
  sitesmith config --init --path ~/.sitesmith/sitesmith.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configInit {
			return initConfig()
		}
		if configYAML {
			data, err := cfg.Redacted().Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}
		printConfig(cfg, configUsed)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write a config file with the effective settings")
	configCmd.Flags().StringVar(&configPath, "path", config.FileName+".yaml", "Where --init writes")
	configCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file with --init")
	configCmd.Flags().BoolVar(&configYAML, "yaml", false, "Print the effective config as YAML")
}

func initConfig() error {
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	if config.Exists(configPath) && !configForce {
		fmt.Println(warnStyle.Render(configPath + " already exists. Use --force to overwrite it."))
		return nil
	}

	// keys stay in the environment, not on disk
	out := cfg
	out.LLM.APIKey = ""
	if err := out.Save(configPath); err != nil {
		return err
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}
	fmt.Println(successStyle.Render("✓ Wrote " + abs))
	return nil
}

func printConfig(c config.Config, file string) {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0EA5E9")).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF")).
		Width(20)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB"))

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	c = c.Redacted()
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	fmt.Println(headerStyle.Render("sitesmith Configuration"))
	fmt.Println()

	rows := [][2]string{
		{"Provider:", c.LLM.Provider},
		{"Model:", c.LLM.Model},
		{"API key:", orDefault(c.LLM.APIKey, "(not set)")},
		{"Endpoint:", orDefault(c.LLM.Endpoint, "(provider default)")},
		{"Timeout:", fmt.Sprintf("%ds", c.LLM.TimeoutSeconds)},
		{"Temperature:", fmt.Sprintf("%.2f", c.LLM.Temperature)},
		{"Max tokens:", maxTokensLabel(c.LLM.MaxTokens)},
		{"Preset:", c.Agent.Preset},
		{"Max iterations:", maxIterationsLabel(c.Agent.MaxIterations)},
		{"Max input length:", fmt.Sprintf("%d characters", c.Agent.MaxInputLength)},
		{"Platform:", orDefault(c.Executor.Platform, "(host)")},
		{"Command timeout:", orDefault(c.Executor.CommandTimeout, "(none)")},
		{"Work dir:", orDefault(c.Executor.WorkDir, "(current directory)")},
		{"Tolerated stderr:", strings.Join(c.Executor.ToleratedStderr, ", ")},
	}
	for _, row := range rows {
		fmt.Printf("%s %s\n", keyStyle.Render(row[0]), valueStyle.Render(row[1]))
	}

	fmt.Println()
	fmt.Printf("%s %s\n", keyStyle.Render("Config file:"), dimStyle.Render(orDefault(file, "(none, using defaults)")))
}

func maxIterationsLabel(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}

func maxTokensLabel(n int) string {
	if n == 0 {
		return "(provider default)"
	}
	return fmt.Sprintf("%d", n)
}
