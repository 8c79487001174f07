package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ashutoshrp06/sitesmith/internal/ollama"
	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// Ollama adapts the Ollama chat client to Model.
type Ollama struct {
	client *ollama.Client
	logger *zap.Logger
}

// NewOllama creates an Ollama backend. Endpoint is the server base URL.
func NewOllama(cfg Config) *Ollama {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Ollama{
		client: ollama.NewClient(ollama.Config{
			BaseURL:     cfg.Endpoint,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			Temperature: float64(cfg.Temperature),
			NumPredict:  cfg.MaxTokens,
		}),
		logger: cfg.Logger,
	}
}

func (o *Ollama) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := o.client.Chat(ctx, ollamaMessages(req.SystemInstruction, req.History), ollamaTools(req.Tools))
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	out := &Response{
		Text: resp.Message.Content,
		Usage: Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}
	for _, tc := range resp.Message.ToolCalls {
		args := tc.Function.Arguments
		if args == nil {
			args = map[string]any{}
		}
		out.ToolCalls = append(out.ToolCalls, types.ToolInvocation{
			Name:      types.ToolName(tc.Function.Name),
			Arguments: args,
		})
	}

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w (done reason %q)", ErrEmptyResponse, resp.DoneReason)
	}

	o.logger.Debug("Ollama response",
		zap.Int("tool_calls", len(out.ToolCalls)),
		zap.Int("eval_count", resp.EvalCount),
		zap.String("text", types.Truncate(out.Text, 200)))

	return out, nil
}

func (o *Ollama) Ping(ctx context.Context) error {
	return o.client.Ping(ctx)
}

func (o *Ollama) Info() string {
	return "ollama/" + o.client.ModelInfo()
}

func ollamaMessages(system string, history []types.Turn) []ollama.ChatMessage {
	messages := make([]ollama.ChatMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, ollama.ChatMessage{Role: "system", Content: system})
	}

	for _, t := range history {
		switch t.Kind {
		case types.TurnUserText:
			messages = append(messages, ollama.ChatMessage{Role: "user", Content: t.Text})
		case types.TurnModelText:
			messages = append(messages, ollama.ChatMessage{Role: "assistant", Content: t.Text})
		case types.TurnModelToolRequest:
			messages = append(messages, ollama.ChatMessage{
				Role: "assistant",
				ToolCalls: []ollama.ToolCall{{
					Function: ollama.ToolCallFunction{Name: string(t.ToolName), Arguments: t.Arguments},
				}},
			})
		case types.TurnToolResult:
			messages = append(messages, ollama.ChatMessage{
				Role:     "tool",
				Content:  t.Text,
				ToolName: string(t.ToolName),
			})
		}
	}
	return messages
}

func ollamaTools(descs []types.ToolDescriptor) []ollama.Tool {
	if len(descs) == 0 {
		return nil
	}
	tools := make([]ollama.Tool, 0, len(descs))
	for _, d := range descs {
		tools = append(tools, ollama.Tool{
			Type: "function",
			Function: ollama.ToolFunction{
				Name:        string(d.Name),
				Description: d.Description,
				Parameters:  jsonSchema(d),
			},
		})
	}
	return tools
}
