// Package agent implements the model/tool loop behind every prompt.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/tools"
	"github.com/ashutoshrp06/sitesmith/internal/types"
	"github.com/ashutoshrp06/sitesmith/internal/validator"
)

// ErrMaxIterations is reported when a submission hits the model call limit.
var ErrMaxIterations = errors.New("iteration limit reached")

// Observer receives progress events while a submission runs.
type Observer func(types.AgentEvent)

// Agent holds what sessions share: the model, the tools and the
// instruction. It keeps no conversation state.
type Agent struct {
	model             llm.Model
	dispatcher        *tools.Dispatcher
	systemInstruction string
	maxIterations     int
	inputValidator    *validator.InputValidator
	logger            *zap.Logger
}

// Config holds agent configuration.
type Config struct {
	Model llm.Model
	// Tools may be empty for plain chat.
	Tools             *tools.Registry
	SystemInstruction string
	// MaxIterations caps model calls per submission. Zero means no cap.
	MaxIterations  int
	MaxInputLength int
	Logger         *zap.Logger
}

// New creates an agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, errors.New("agent: model is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Tools == nil {
		cfg.Tools = tools.MustNewRegistry()
	}
	if cfg.MaxIterations < 0 {
		return nil, fmt.Errorf("agent: max iterations must not be negative, got %d", cfg.MaxIterations)
	}

	return &Agent{
		model:             cfg.Model,
		dispatcher:        tools.NewDispatcher(cfg.Tools, cfg.Logger),
		systemInstruction: cfg.SystemInstruction,
		maxIterations:     cfg.MaxIterations,
		inputValidator:    validator.NewInputValidator(cfg.MaxInputLength),
		logger:            cfg.Logger,
	}, nil
}

// ProcessQueryCmd returns a Bubble Tea command that submits query to the
// session and reports the final event.
func (a *Agent) ProcessQueryCmd(ctx context.Context, s *Session, query string) tea.Cmd {
	return func() tea.Msg {
		reply := s.Submit(ctx, query)
		if reply.Err != nil {
			return types.AgentEvent{
				State:       types.StateError,
				FinalAnswer: reply.Text,
				Iterations:  reply.Iterations,
				Error:       reply.Err,
			}
		}
		return types.AgentEvent{
			State:       types.StateResponding,
			FinalAnswer: reply.Text,
			Iterations:  reply.Iterations,
		}
	}
}

// Ping checks if the LLM is reachable.
func (a *Agent) Ping(ctx context.Context) error {
	if err := a.model.Ping(ctx); err != nil {
		return fmt.Errorf("LLM not reachable: %w", err)
	}
	return nil
}

// ListTools returns the tools offered to the model.
func (a *Agent) ListTools() []types.ToolDescriptor {
	return a.dispatcher.Registry().Descriptors()
}

// LLMInfo returns information about the configured LLM.
func (a *Agent) LLMInfo() string {
	return a.model.Info()
}

// toolSummary renders a call for logs and the UI.
func toolSummary(inv types.ToolInvocation) string {
	var parts []string
	for _, key := range []string{"command", "filePath"} {
		if v, ok := inv.Arguments[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	return fmt.Sprintf("%s(%s)", inv.Name, strings.Join(parts, ", "))
}
