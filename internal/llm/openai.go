package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// DefaultOpenAIEndpoint is used when no endpoint is configured.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1"

// OpenAI speaks the OpenAI-compatible /chat/completions protocol, which
// vLLM, OpenRouter, LM Studio and others also serve.
type OpenAI struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

// NewOpenAI creates an OpenAI-compatible backend.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai: model is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultOpenAIEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &OpenAI{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      cfg.Logger,
	}, nil
}

type ChatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []ChatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type ChatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type ChatTool struct {
	Type     string           `json:"type"`
	Function ChatToolFunction `json:"function"`
}

type ChatToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Tools       []ChatTool    `json:"tools,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the conversation to /chat/completions.
func (c *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := ChatRequest{
		Model:     c.model,
		Messages:  openAIMessages(req.SystemInstruction, req.History),
		Tools:     openAITools(req.Tools),
		MaxTokens: c.maxTokens,
	}
	if c.temperature > 0 {
		t := c.temperature
		chatReq.Temperature = &t
	}

	chatResp, err := c.post(ctx, "/chat/completions", chatReq)
	if err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choice := chatResp.Choices[0]
	out := &Response{Text: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, types.ToolInvocation{
			ID:        tc.ID,
			Name:      types.ToolName(tc.Function.Name),
			Arguments: parseArguments(tc.Function.Arguments),
		})
	}
	if chatResp.Usage != nil {
		out.Usage = Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		}
	}

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w (finish reason %q)", ErrEmptyResponse, choice.FinishReason)
	}

	c.logger.Debug("OpenAI response",
		zap.String("finish_reason", choice.FinishReason),
		zap.Int("tool_calls", len(out.ToolCalls)),
		zap.String("text", types.Truncate(out.Text, 200)))

	return out, nil
}

func (c *OpenAI) post(ctx context.Context, path string, payload any) (*ChatResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp ChatResponse
	decodeErr := json.Unmarshal(body, &chatResp)

	if chatResp.Error != nil && chatResp.Error.Message != "" {
		return nil, fmt.Errorf("LLM returned status %d: %s", resp.StatusCode, chatResp.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("LLM returned status %d: %s", resp.StatusCode, types.Truncate(string(body), 500))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode failed: %w", decodeErr)
	}

	return &chatResp, nil
}

// Ping lists models, which every compatible server answers cheaply.
func (c *OpenAI) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/models", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("LLM not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("LLM returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *OpenAI) Info() string {
	return fmt.Sprintf("%s @ %s", c.model, c.endpoint)
}

func openAIMessages(system string, history []types.Turn) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: system})
	}

	for _, t := range history {
		switch t.Kind {
		case types.TurnUserText:
			messages = append(messages, ChatMessage{Role: "user", Content: t.Text})
		case types.TurnModelText:
			messages = append(messages, ChatMessage{Role: "assistant", Content: t.Text})
		case types.TurnModelToolRequest:
			tc := ChatToolCall{ID: callID(t.CallID), Type: "function"}
			tc.Function.Name = string(t.ToolName)
			tc.Function.Arguments = argumentsJSON(t.Arguments)
			messages = append(messages, ChatMessage{Role: "assistant", ToolCalls: []ChatToolCall{tc}})
		case types.TurnToolResult:
			messages = append(messages, ChatMessage{
				Role:       "tool",
				Content:    t.Text,
				ToolCallID: callID(t.CallID),
				Name:       string(t.ToolName),
			})
		}
	}
	return messages
}

// callID fills in an id for turns recorded without one; the protocol
// requires a request and its result to share an id.
func callID(id string) string {
	if id != "" {
		return id
	}
	return "call_0"
}

func openAITools(descs []types.ToolDescriptor) []ChatTool {
	if len(descs) == 0 {
		return nil
	}
	tools := make([]ChatTool, 0, len(descs))
	for _, d := range descs {
		tools = append(tools, ChatTool{
			Type: "function",
			Function: ChatToolFunction{
				Name:        string(d.Name),
				Description: d.Description,
				Parameters:  jsonSchema(d),
			},
		})
	}
	return tools
}
