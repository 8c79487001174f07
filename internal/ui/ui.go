// Package ui provides the full-screen terminal interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// Options customises the model.
type Options struct {
	// Subtitle is shown under the banner, e.g. the model and the OS.
	Subtitle string
	// ToolList is shown by the "tools" command.
	ToolList string
	// OnClear runs when the user clears the conversation.
	OnClear func()
}

// Model is the Bubble Tea model for the builder UI.
type Model struct {
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	styles    Styles
	opts      Options

	state       types.AgentState
	messages    []chatMessage
	currentTool *toolExecution
	width       int
	height      int
	ready       bool
	quitting    bool
	err         error

	processQuery func(query string) tea.Cmd
}

type chatMessage struct {
	role    string // "user", "assistant", "system", "tool"
	content string
	tool    *toolExecution
}

// toolExecution tracks a tool call and its result.
type toolExecution struct {
	summary  string
	output   string
	success  bool
	duration string
	done     bool
}

// NewModel creates a new UI model. processQuery runs one prompt and reports
// the final AgentEvent.
func NewModel(processQuery func(query string) tea.Cmd, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe your website... (e.g. 'a portfolio with an about page and a contact form')"
	ti.Focus()
	ti.CharLimit = 4000
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(DefaultTheme().Primary)

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.DefaultKeyMap()

	return Model{
		textInput:    ti,
		spinner:      s,
		viewport:     vp,
		styles:       DefaultStyles(),
		opts:         opts,
		state:        types.StateIdle,
		messages:     make([]chatMessage, 0),
		processQuery: processQuery,
	}
}

// ProgressObserver forwards in-flight events to the program. The final
// event arrives through processQuery, so it is not forwarded here.
func ProgressObserver(send func(tea.Msg)) func(types.AgentEvent) {
	return func(ev types.AgentEvent) {
		switch ev.State {
		case types.StateThinking, types.StateToolExecuting, types.StateToolResult:
			send(ev)
		}
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m Model) header() string {
	h := m.styles.BannerTitle.Render(Banner())
	if m.opts.Subtitle != "" {
		h += "\n" + m.styles.StatusText.Render("  "+m.opts.Subtitle)
	}
	return h
}

// headerHeight returns the number of terminal lines occupied by the banner.
func (m Model) headerHeight() int {
	return lipgloss.Height(m.header()) + 2
}

// footerHeight returns the number of terminal lines occupied by the input + help bar.
func (m Model) footerHeight() int {
	return 4
}

// updateViewport rebuilds the viewport content and scrolls to the bottom.
func (m *Model) updateViewport() {
	var b strings.Builder

	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.currentTool != nil && !m.currentTool.done {
		b.WriteString(m.renderToolInProgress())
		b.WriteString("\n")
	}

	if m.state != types.StateIdle {
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.state != types.StateIdle {
				return m, nil
			}

			query := strings.TrimSpace(m.textInput.Value())
			if query == "" {
				return m, nil
			}

			if handled, cmd := m.handleCommand(query); handled {
				m.textInput.SetValue("")
				m.updateViewport()
				return m, cmd
			}

			m.messages = append(m.messages, chatMessage{
				role:    "user",
				content: query,
			})

			m.textInput.SetValue("")
			m.state = types.StateThinking
			m.updateViewport()

			if m.processQuery != nil {
				cmds = append(cmds, m.processQuery(query))
			}

			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10

		vpHeight := msg.Height - m.headerHeight() - m.footerHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.viewport.KeyMap = viewport.DefaultKeyMap()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}

		m.ready = true
		m.updateViewport()

	case types.AgentEvent:
		nm := m.handleAgentEvent(msg)
		nm.updateViewport()
		return nm, nm.spinner.Tick

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
		m.updateViewport()
	}

	if m.state == types.StateIdle {
		var tiCmd tea.Cmd
		m.textInput, tiCmd = m.textInput.Update(msg)
		cmds = append(cmds, tiCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// handleCommand processes the built-in commands. It reports whether input
// was one of them.
func (m *Model) handleCommand(input string) (bool, tea.Cmd) {
	switch strings.ToLower(input) {
	case "exit", "quit":
		m.quitting = true
		return true, tea.Quit

	case "clear":
		m.messages = make([]chatMessage, 0)
		if m.opts.OnClear != nil {
			m.opts.OnClear()
		}
		return true, nil

	case "help", "?":
		m.messages = append(m.messages, chatMessage{
			role: "system",
			content: `Available commands:
  help, ?     Show this help
  tools       List the tools the assistant can use
  clear       Start a new conversation
  exit, quit  Leave

Example requests:
  "a landing page for a coffee shop"
  "a todo app with add and delete buttons"
  "add a dark mode toggle to the demo site"`,
		})
		return true, nil

	case "tools":
		list := m.opts.ToolList
		if list == "" {
			list = "No tools available."
		}
		m.messages = append(m.messages, chatMessage{role: "system", content: list})
		return true, nil
	}

	return false, nil
}

// handleAgentEvent processes events from the agent.
func (m Model) handleAgentEvent(event types.AgentEvent) Model {
	m.state = event.State

	switch event.State {
	case types.StateToolExecuting:
		m.currentTool = &toolExecution{summary: event.Message}

	case types.StateToolResult:
		tool := m.currentTool
		if tool == nil {
			tool = &toolExecution{summary: event.Message}
		}
		if event.ToolResult != nil {
			tool.success = event.ToolResult.OK()
			tool.output = event.ToolResult.Message
			tool.duration = event.ToolResult.Duration.String()
		}
		tool.done = true
		m.messages = append(m.messages, chatMessage{role: "tool", tool: tool})
		m.currentTool = nil

	case types.StateResponding:
		if event.FinalAnswer != "" {
			m.messages = append(m.messages, chatMessage{
				role:    "assistant",
				content: event.FinalAnswer,
			})
		}
		m.state = types.StateIdle

	case types.StateError:
		m.err = event.Error
		text := event.FinalAnswer
		if text == "" && event.Error != nil {
			text = "Error occurred: " + event.Error.Error()
		}
		if text == "" {
			text = "An error occurred"
		}
		m.messages = append(m.messages, chatMessage{role: "system", content: text})
		m.currentTool = nil
		m.state = types.StateIdle
	}

	return m
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return m.styles.SystemMessage.Render("Your website files are ready! Goodbye!\n")
	}

	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.styles.Prompt.Render("> "))
	if m.state == types.StateIdle {
		b.WriteString(m.textInput.View())
	} else {
		b.WriteString(m.styles.StatusText.Render("(working...)"))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return m.styles.App.Render(b.String())
}

// renderMessage renders a single chat message.
func (m Model) renderMessage(msg chatMessage) string {
	switch msg.role {
	case "user":
		return m.styles.UserMessage.Render("You: " + msg.content)

	case "assistant":
		return m.styles.AssistantMessage.Render("Assistant: " + msg.content)

	case "system":
		return m.styles.SystemMessage.Render(msg.content)

	case "tool":
		if msg.tool != nil {
			return m.renderToolResult(msg.tool)
		}
	}
	return ""
}

// renderToolResult renders a completed tool execution.
func (m Model) renderToolResult(t *toolExecution) string {
	var b strings.Builder

	b.WriteString(m.styles.ToolName.Render("Executing: "))
	b.WriteString(m.styles.ToolParams.Render(t.summary))
	b.WriteString("\n")

	if t.success {
		b.WriteString(m.styles.ToolSuccess.Render("  Success"))
		if t.duration != "" && t.duration != "0s" {
			b.WriteString(m.styles.ToolParams.Render(fmt.Sprintf(" (%s)", t.duration)))
		}
		b.WriteString("\n")
		if t.output != "" {
			output := t.output
			if len(output) > 300 {
				output = output[:300] + "..."
			}
			for _, line := range strings.Split(output, "\n") {
				if line != "" {
					b.WriteString(m.styles.ToolOutput.Render("  | " + line))
					b.WriteString("\n")
				}
			}
		}
	} else {
		b.WriteString(m.styles.ToolError.Render("  Failed: " + t.output))
		b.WriteString("\n")
	}

	return m.styles.ToolBox.Render(b.String())
}

// renderToolInProgress renders a tool that's currently executing.
func (m Model) renderToolInProgress() string {
	var b strings.Builder

	b.WriteString(m.styles.ToolName.Render("Executing: "))
	b.WriteString(m.styles.ToolParams.Render(m.currentTool.summary))
	b.WriteString("\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.StatusText.Render("Running..."))

	return m.styles.ToolBox.Render(b.String())
}

// renderStatus renders the current processing status.
func (m Model) renderStatus() string {
	return fmt.Sprintf("%s %s",
		m.spinner.View(),
		m.styles.StateLabel.Render(m.state.String()+"..."),
	)
}

// renderHelpBar renders the bottom help bar.
func (m Model) renderHelpBar() string {
	help := []string{
		m.styles.HelpKey.Render("enter") + m.styles.HelpValue.Render(" send"),
		m.styles.HelpKey.Render("ctrl+c") + m.styles.HelpValue.Render(" quit"),
		m.styles.HelpKey.Render("help") + m.styles.HelpValue.Render(" commands"),
		m.styles.HelpKey.Render("tools") + m.styles.HelpValue.Render(" list tools"),
	}
	return m.styles.HelpBar.Render(strings.Join(help, "  |  "))
}
