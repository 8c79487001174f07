package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashutoshrp06/sitesmith/internal/history"
	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/tools"
	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// ToolCallRecord is one executed tool call.
type ToolCallRecord struct {
	Invocation types.ToolInvocation
	Result     types.ExecutionResult
	// Ignored counts extra calls the model asked for in the same response.
	Ignored int
}

// Reply is the outcome of one submission.
type Reply struct {
	Text       string
	ToolCalls  []ToolCallRecord
	Iterations int
	Err        error
}

// Session owns one conversation. Submissions on a session must not run
// concurrently; separate sessions are independent.
type Session struct {
	ID       string
	agent    *Agent
	history  *history.History
	observer Observer
}

// NewSession starts an empty conversation.
func (a *Agent) NewSession() *Session {
	return &Session{
		ID:      uuid.NewString(),
		agent:   a,
		history: history.New(),
	}
}

// OnEvent installs an observer for progress events.
func (s *Session) OnEvent(obs Observer) {
	s.observer = obs
}

// History returns a copy of the conversation so far.
func (s *Session) History() []types.Turn {
	return s.history.Turns()
}

// Reset forgets the conversation.
func (s *Session) Reset() {
	s.history.Clear()
}

func (s *Session) emit(ev types.AgentEvent) {
	if s.observer != nil {
		s.observer(ev)
	}
}

// Submit appends text as a user turn and drives the model until it answers
// with text, fails, or names an unknown tool. Each tool request is paired
// with its result before the model is called again.
func (s *Session) Submit(ctx context.Context, text string) Reply {
	a := s.agent
	logger := a.logger.With(zap.String("session", s.ID))

	if err := a.inputValidator.Validate(text); err != nil {
		return Reply{Err: fmt.Errorf("invalid input: %w", err)}
	}
	text = a.inputValidator.Sanitize(text)

	s.history.Append(types.UserText(text))

	var reply Reply
	for {
		if a.maxIterations > 0 && reply.Iterations >= a.maxIterations {
			reply.Err = fmt.Errorf("%w: %d model calls", ErrMaxIterations, a.maxIterations)
			return s.fail(logger, reply)
		}
		reply.Iterations++

		s.emit(types.AgentEvent{State: types.StateThinking, Iterations: reply.Iterations})

		resp, err := a.model.Generate(ctx, llm.Request{
			SystemInstruction: a.systemInstruction,
			History:           s.history.Turns(),
			Tools:             a.ListTools(),
		})
		if err != nil {
			reply.Err = err
			return s.fail(logger, reply)
		}

		if !resp.HasToolCalls() {
			s.history.Append(types.ModelText(resp.Text))
			reply.Text = resp.Text
			s.emit(types.AgentEvent{
				State:       types.StateResponding,
				FinalAnswer: resp.Text,
				Iterations:  reply.Iterations,
			})
			logger.Info("Submission complete",
				zap.Int("iterations", reply.Iterations),
				zap.Int("tool_calls", len(reply.ToolCalls)))
			return reply
		}

		inv := resp.ToolCalls[0]
		if extra := len(resp.ToolCalls) - 1; extra > 0 {
			ignored := make([]string, 0, extra)
			for _, tc := range resp.ToolCalls[1:] {
				ignored = append(ignored, string(tc.Name))
			}
			logger.Warn("Model requested several tools, only the first runs",
				zap.String("tool", string(inv.Name)),
				zap.Strings("ignored", ignored))
		}
		if inv.ID == "" {
			inv.ID = uuid.NewString()
		}
		if inv.Arguments == nil {
			inv.Arguments = map[string]any{}
		}

		s.history.Append(types.ModelToolRequest(inv.ID, inv.Name, inv.Arguments))
		s.emit(types.AgentEvent{
			State:      types.StateToolExecuting,
			Message:    toolSummary(inv),
			ToolCall:   &inv,
			Iterations: reply.Iterations,
		})

		result, dispatchErr := a.dispatcher.Dispatch(ctx, inv)
		s.history.Append(types.ToolResult(inv.ID, inv.Name, result.String()))
		reply.ToolCalls = append(reply.ToolCalls, ToolCallRecord{
			Invocation: inv,
			Result:     result,
			Ignored:    len(resp.ToolCalls) - 1,
		})

		logger.Info("Tool call",
			zap.String("call", toolSummary(inv)),
			zap.Bool("success", result.OK()),
			zap.Duration("duration", result.Duration),
			zap.String("result", types.Truncate(result.String(), 200)))

		s.emit(types.AgentEvent{
			State:      types.StateToolResult,
			Message:    toolSummary(inv),
			ToolCall:   &inv,
			ToolResult: &result,
			Iterations: reply.Iterations,
		})

		if dispatchErr != nil {
			reply.Err = dispatchErr
			return s.fail(logger, reply)
		}
	}
}

// fail records the error as the model's final text and ends the submission.
func (s *Session) fail(logger *zap.Logger, reply Reply) Reply {
	reply.Text = fmt.Sprintf("Error occurred: %v", reply.Err)
	s.history.Append(types.ModelText(reply.Text))

	if errors.Is(reply.Err, tools.ErrToolNotFound) || errors.Is(reply.Err, ErrMaxIterations) {
		logger.Warn("Submission stopped", zap.Error(reply.Err))
	} else {
		logger.Error("Model call failed", zap.Error(reply.Err))
	}

	s.emit(types.AgentEvent{
		State:       types.StateError,
		FinalAnswer: reply.Text,
		Iterations:  reply.Iterations,
		Error:       reply.Err,
	})
	return reply
}
