// Package shell implements the line-oriented prompt loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/ashutoshrp06/sitesmith/internal/agent"
	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/ashutoshrp06/sitesmith/internal/types"
	"github.com/ashutoshrp06/sitesmith/internal/ui"
	"github.com/ashutoshrp06/sitesmith/internal/validator"
)

// ExitKeyword ends the loop.
const ExitKeyword = "exit"

// Conversation is what the shell drives. *agent.Session implements it.
type Conversation interface {
	Submit(ctx context.Context, text string) agent.Reply
	OnEvent(obs agent.Observer)
	Reset()
}

// Config holds shell configuration.
type Config struct {
	In  io.Reader
	Out io.Writer

	Title   string
	Prompt  string
	Goodbye string

	Platform normalize.Platform
	// Markdown renders final answers with glamour.
	Markdown       bool
	MaxInputLength int
	Logger         *zap.Logger
}

// BuilderConfig returns the site builder wording.
func BuilderConfig(in io.Reader, out io.Writer) Config {
	return Config{
		In:       in,
		Out:      out,
		Title:    "Web Project Builder",
		Prompt:   "Describe your website (or 'exit' to quit): ",
		Goodbye:  "Your website files are ready! Goodbye!",
		Platform: normalize.Current(),
	}
}

// ChatConfig returns the wording for plain conversation.
func ChatConfig(in io.Reader, out io.Writer) Config {
	return Config{
		In:       in,
		Out:      out,
		Title:    "Chat",
		Prompt:   "You (or 'exit' to quit): ",
		Goodbye:  "Goodbye!",
		Platform: normalize.Current(),
	}
}

// Shell reads prompts and prints replies until exit or end of input.
type Shell struct {
	cfg       Config
	conv      Conversation
	styles    ui.Styles
	renderer  *glamour.TermRenderer
	validator *validator.InputValidator
	logger    *zap.Logger
}

// New creates a shell around conv.
func New(conv Conversation, cfg Config) *Shell {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Platform == "" {
		cfg.Platform = normalize.Current()
	}

	s := &Shell{
		cfg:       cfg,
		conv:      conv,
		styles:    ui.DefaultStyles(),
		validator: validator.NewInputValidator(cfg.MaxInputLength),
		logger:    cfg.Logger,
	}

	if cfg.Markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			s.logger.Warn("Markdown rendering disabled", zap.Error(err))
		} else {
			s.renderer = r
		}
	}

	conv.OnEvent(s.printEvent)
	return s
}

// Run drives the loop. It returns nil on exit or end of input, and the
// context error when ctx is cancelled between prompts.
func (s *Shell) Run(ctx context.Context) error {
	s.printBanner()

	reader := bufio.NewReaderSize(s.cfg.In, 64*1024)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n%s", s.styles.Prompt.Render(s.cfg.Prompt))
		raw, err := readLine(reader)
		if errors.Is(err, errLineTooLong) {
			s.println(s.styles.ToolError.Render("Invalid input: " + err.Error()))
			continue
		}
		if errors.Is(err, io.EOF) {
			s.println("")
			s.printGoodbye()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		line := strings.TrimSpace(raw)
		switch strings.ToLower(line) {
		case "":
			continue
		case ExitKeyword:
			s.printGoodbye()
			return nil
		case "clear":
			s.conv.Reset()
			s.println(s.styles.SystemMessage.Render("History cleared."))
			continue
		case "help":
			s.println(s.styles.SystemMessage.Render(helpText))
			continue
		}

		if err := s.validator.Validate(line); err != nil {
			s.println(s.styles.ToolError.Render("Invalid input: " + err.Error()))
			continue
		}

		reply := s.conv.Submit(ctx, line)
		s.printReply(reply)
	}
}

// maxLineBytes bounds a single line of input.
const maxLineBytes = 1 << 20

var errLineTooLong = fmt.Errorf("line longer than %d bytes", maxLineBytes)

// readLine returns the next line without its terminator. A line over
// maxLineBytes is read to its end and discarded so the next call starts on
// the following line.
func readLine(r *bufio.Reader) (string, error) {
	var (
		buf  []byte
		long bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !long {
			if len(buf)+len(chunk) > maxLineBytes {
				long, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !(errors.Is(err, io.EOF) && (len(buf) > 0 || long)) {
			return "", err
		}
		if long {
			return "", errLineTooLong
		}
		return strings.TrimRight(string(buf), "\r\n"), nil
	}
}

// RunOnce submits a single prompt and prints the outcome. The returned
// error is the submission's error, if any.
func (s *Shell) RunOnce(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if err := s.validator.Validate(text); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	reply := s.conv.Submit(ctx, text)
	s.printReply(reply)
	return reply.Err
}

const helpText = `Commands:
  help   Show this help
  clear  Forget the conversation so far
  exit   Quit

Anything else is sent to the assistant, e.g.
  "a portfolio site with an about page and a contact form"`

func (s *Shell) printBanner() {
	s.println(s.styles.BannerTitle.Render(s.cfg.Title))
	s.println(s.styles.StatusText.Render("Detected OS: " + s.cfg.Platform.Label()))
}

func (s *Shell) printGoodbye() {
	s.println(s.styles.ToolSuccess.Render(s.cfg.Goodbye))
}

// printEvent shows tool activity while a prompt is processed.
func (s *Shell) printEvent(ev types.AgentEvent) {
	switch ev.State {
	case types.StateToolExecuting:
		s.println(s.styles.ToolName.Render("Executing: ") + s.styles.ToolParams.Render(ev.Message))
	case types.StateToolResult:
		if ev.ToolResult == nil {
			return
		}
		line := types.Truncate(ev.ToolResult.String(), 300)
		if ev.ToolResult.OK() {
			s.println(s.styles.ToolSuccess.Render("  " + line))
		} else {
			s.println(s.styles.ToolError.Render("  " + line))
		}
	}
}

func (s *Shell) printReply(reply agent.Reply) {
	if reply.Err != nil {
		text := reply.Text
		if text == "" {
			text = reply.Err.Error()
		}
		s.println(s.styles.ToolError.Render(text))
		return
	}
	s.println(s.render(reply.Text))
}

// render formats a final answer, falling back to plain text.
func (s *Shell) render(text string) string {
	if s.renderer == nil {
		return s.styles.AssistantMessage.Render(text)
	}
	out, err := s.renderer.Render(text)
	if err != nil {
		s.logger.Debug("Markdown render failed", zap.Error(err))
		return s.styles.AssistantMessage.Render(text)
	}
	return strings.TrimRight(out, "\n")
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.cfg.Out, text)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.cfg.Out, format, args...)
}
