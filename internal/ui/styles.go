package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors used by the shell and the TUI.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#0EA5E9"), // Sky
		Secondary: lipgloss.Color("#14B8A6"), // Teal
		Accent:    lipgloss.Color("#F59E0B"), // Amber

		Success: lipgloss.Color("#10B981"),
		Error:   lipgloss.Color("#EF4444"),
		Muted:   lipgloss.Color("#6B7280"),

		Text:    lipgloss.Color("#F9FAFB"),
		TextDim: lipgloss.Color("#9CA3AF"),
	}
}

// Styles contains the styled components shared by the line shell and the TUI.
type Styles struct {
	App lipgloss.Style

	BannerTitle lipgloss.Style
	Prompt      lipgloss.Style

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SystemMessage    lipgloss.Style

	// Tool activity
	ToolBox     lipgloss.Style
	ToolName    lipgloss.Style
	ToolParams  lipgloss.Style
	ToolOutput  lipgloss.Style
	ToolSuccess lipgloss.Style
	ToolError   lipgloss.Style

	StatusText lipgloss.Style
	StateLabel lipgloss.Style

	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
	HelpBar   lipgloss.Style
}

// NewStyles creates styled components from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		BannerTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			PaddingLeft(2),

		AssistantMessage: lipgloss.NewStyle().
			Foreground(t.Text).
			PaddingLeft(2),

		SystemMessage: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true).
			PaddingLeft(2),

		ToolBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 1).
			MarginLeft(2),

		ToolName: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		ToolParams: lipgloss.NewStyle().
			Foreground(t.TextDim),

		ToolOutput: lipgloss.NewStyle().
			Foreground(t.Text).
			PaddingLeft(1),

		ToolSuccess: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		ToolError: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		StatusText: lipgloss.NewStyle().
			Foreground(t.TextDim),

		StateLabel: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Muted),

		HelpValue: lipgloss.NewStyle().
			Foreground(t.TextDim),

		HelpBar: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}

// Banner returns the ASCII art banner.
func Banner() string {
	banner := `
 ╔═══════════════════════════════════════════════╗
 ║                                               ║
 ║     ╔═╗╦╔╦╗╔═╗╔═╗╔╦╗╦╔╦╗╦ ╦                   ║
 ║     ╚═╗║ ║ ║╣ ╚═╗║║║║ ║ ╠═╣                   ║
 ║     ╚═╝╩ ╩ ╚═╝╚═╝╩ ╩╩ ╩ ╩ ╩                   ║
 ║                                               ║
 ║      Websites scaffolded from a description   ║
 ╚═══════════════════════════════════════════════╝`
	return banner
}
