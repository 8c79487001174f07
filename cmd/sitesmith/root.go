package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ashutoshrp06/sitesmith/internal/config"
	"github.com/ashutoshrp06/sitesmith/internal/shell"
	"github.com/ashutoshrp06/sitesmith/internal/ui"
)

var (
	configFile    string
	provider      string
	modelName     string
	endpoint      string
	presetName    string
	platformName  string
	workDir       string
	maxIterations int
	verbose       bool
	interactive   bool
	plain         bool

	cfg        config.Config
	configUsed string
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sitesmith [request]",
	Short: "Scaffold websites from a plain-language description",
	Long: `
  ╔═╗╦╔╦╗╔═╗╔═╗╔╦╗╦╔╦╗╦ ╦
  ╚═╗║ ║ ║╣ ╚═╗║║║║ ║ ╠═╣
  ╚═╝╩ ╩ ╚═╝╚═╝╩ ╩╩ ╩ ╩ ╩

  Describe a website and an LLM builds it on your machine, creating
  folders with shell commands and writing HTML, CSS and JavaScript files.

Usage:
  sitesmith                        Start the prompt loop
  sitesmith "a todo app"           Run a single request
  sitesmith --it                   Start the full-screen UI
  sitesmith chat                   Talk to the model without tools
  sitesmith tools                  List available tools
  sitesmith config                 View or create configuration
  sitesmith version                Show version info

Examples:
  sitesmith "a landing page for a coffee shop in a folder called brew"
  sitesmith --preset frontend "a calculator with HTML, CSS and JS"
  sitesmith --provider ollama --model llama3.1 --it`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose, interactive)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		cfg, configUsed, err = config.Load(config.Options{
			File:      configFile,
			Overrides: flagOverrides(cmd),
		})
		if err != nil {
			return err
		}
		logger.Debug("Configuration loaded", zap.String("file", configUsed))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		switch {
		case interactive:
			return runInteractive(ctx)
		case len(args) > 0:
			return runOneShot(ctx, strings.Join(args, " "))
		default:
			return runShell(ctx, "", shell.BuilderConfig(os.Stdin, os.Stdout))
		}
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Flags().BoolVar(&interactive, "it", false, "Start the full-screen UI")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default ./sitesmith.yaml or ~/.sitesmith/sitesmith.yaml)")
	pf.StringVar(&provider, "provider", "", "LLM provider: gemini, openai or ollama")
	pf.StringVar(&modelName, "model", "", "LLM model to use")
	pf.StringVar(&endpoint, "endpoint", "", "LLM API endpoint")
	pf.StringVar(&presetName, "preset", "", "Instruction preset: builder or frontend")
	pf.StringVar(&platformName, "platform", "", "Shell platform: posix or windows (default: host)")
	pf.StringVar(&workDir, "workdir", "", "Directory commands run in and files are written to")
	pf.IntVar(&maxIterations, "max-iterations", 0, "Cap model calls per request (0 = unlimited)")
	pf.BoolVar(&plain, "plain", false, "Print answers without markdown rendering")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagOverrides maps the flags the user actually set onto config keys.
func flagOverrides(cmd *cobra.Command) map[string]any {
	bindings := []struct {
		flag  string
		key   string
		value func() any
	}{
		{"provider", "llm.provider", func() any { return provider }},
		{"model", "llm.model", func() any { return modelName }},
		{"endpoint", "llm.endpoint", func() any { return endpoint }},
		{"preset", "agent.preset", func() any { return presetName }},
		{"max-iterations", "agent.max_iterations", func() any { return maxIterations }},
		{"platform", "executor.platform", func() any { return platformName }},
		{"workdir", "executor.workdir", func() any { return workDir }},
	}

	overrides := make(map[string]any)
	flags := cmd.Flags()
	for _, b := range bindings {
		if f := flags.Lookup(b.flag); f != nil && f.Changed {
			overrides[b.key] = b.value()
		}
	}
	return overrides
}

// newLogger logs to stderr. Outside verbose mode only warnings are shown so
// they do not interleave with the conversation, and the full-screen UI
// gets no logger at all.
func newLogger(verbose, fullScreen bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	if fullScreen {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return zc.Build()
}

var (
	connectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	cmdStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
)

// connect builds the app and checks that the model answers.
func connect(ctx context.Context, preset string) (*app, error) {
	a, err := buildApp(ctx, cfg, preset, logger)
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			printKeyHelp()
		}
		return nil, err
	}

	fmt.Print(connectStyle.Render(fmt.Sprintf("Connecting to %s... ", a.agent.LLMInfo())))
	if err := a.agent.Ping(ctx); err != nil {
		fmt.Println(errorStyle.Render("✗"))
		fmt.Println()
		printConnectionHelp()
		return nil, err
	}
	fmt.Println(successStyle.Render("✓"))
	return a, nil
}

// runShell starts the prompt loop. An empty preset uses the configured one.
func runShell(ctx context.Context, preset string, sc shell.Config) error {
	a, err := connect(ctx, preset)
	if err != nil {
		return err
	}

	sc.Platform = a.platform
	sc.Markdown = !plain
	sc.MaxInputLength = cfg.Agent.MaxInputLength
	sc.Logger = logger

	err = shell.New(a.agent.NewSession(), sc).Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println()
		return nil
	}
	return err
}

// runOneShot handles a request passed on the command line.
func runOneShot(ctx context.Context, query string) error {
	a, err := connect(ctx, "")
	if err != nil {
		return err
	}

	sc := shell.BuilderConfig(os.Stdin, os.Stdout)
	sc.Platform = a.platform
	sc.Markdown = !plain
	sc.MaxInputLength = cfg.Agent.MaxInputLength
	sc.Logger = logger

	return shell.New(a.agent.NewSession(), sc).RunOnce(ctx, query)
}

// runInteractive starts the full-screen UI.
func runInteractive(ctx context.Context) error {
	a, err := connect(ctx, "")
	if err != nil {
		return err
	}

	session := a.agent.NewSession()
	model := ui.NewModel(func(query string) tea.Cmd {
		return a.agent.ProcessQueryCmd(ctx, session, query)
	}, ui.Options{
		Subtitle: fmt.Sprintf("%s · preset %s · %s", a.agent.LLMInfo(), a.preset.Name, a.platform.Label()),
		ToolList: a.registry.FormatTools(),
		OnClear:  session.Reset,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	session.OnEvent(ui.ProgressObserver(p.Send))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}

func printKeyHelp() {
	fmt.Println(errorStyle.Render("No API key configured for " + cfg.LLM.Provider))
	fmt.Println()
	fmt.Println(helpStyle.Render("Export a key or put it in .env:"))
	fmt.Println(cmdStyle.Render("  export GEMINI_API_KEY=..."))
	fmt.Println()
	fmt.Println(helpStyle.Render("Or use a local model:"))
	fmt.Println(cmdStyle.Render("  sitesmith --provider ollama --model llama3.1"))
}

func printConnectionHelp() {
	fmt.Println(errorStyle.Render(fmt.Sprintf("Could not reach %s model %s", cfg.LLM.Provider, cfg.LLM.Model)))
	fmt.Println()
	switch cfg.LLM.Provider {
	case "ollama":
		fmt.Println(helpStyle.Render("Make sure Ollama is running:"))
		fmt.Println(cmdStyle.Render("  ollama serve"))
		fmt.Println()
		fmt.Println(helpStyle.Render("And pull the model:"))
		fmt.Println(cmdStyle.Render("  ollama pull " + cfg.LLM.Model))
	default:
		fmt.Println(helpStyle.Render("Check the API key, the model name and your network connection."))
	}
	fmt.Println()
	fmt.Println(helpStyle.Render("Or configure a different endpoint:"))
	fmt.Println(cmdStyle.Render("  sitesmith config --init && $EDITOR sitesmith.yaml"))
}
