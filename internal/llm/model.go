// Package llm abstracts the conversational model behind a single
// request/response call with native tool calling.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashutoshrp06/sitesmith/internal/types"
	"go.uber.org/zap"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ErrEmptyResponse is returned when the backend answers with neither text
// nor a tool call.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Request is one model call: the whole history plus what the model may use.
type Request struct {
	SystemInstruction string
	History           []types.Turn
	Tools             []types.ToolDescriptor
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is either final text or one or more tool calls.
type Response struct {
	Text      string
	ToolCalls []types.ToolInvocation
	Usage     Usage
}

// HasToolCalls reports whether the model asked for a tool.
func (r *Response) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// Model is a conversational backend.
type Model interface {
	// Generate sends the request and returns the model's next step.
	Generate(ctx context.Context, req Request) (*Response, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Info describes the backend for display.
	Info() string
}

// Config selects and configures a backend.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	Endpoint    string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// New builds the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Model, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		return NewGemini(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	case ProviderOllama:
		return NewOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}

// argumentsJSON encodes tool arguments for wire formats that carry them as
// a JSON string.
func argumentsJSON(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// parseArguments decodes a JSON-string argument payload. Malformed JSON
// yields an empty map so argument validation reports what is missing.
func parseArguments(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}

// jsonSchema renders a descriptor's parameters as a JSON-schema object.
func jsonSchema(desc types.ToolDescriptor) map[string]any {
	props := make(map[string]any, len(desc.Parameters))
	for _, p := range desc.Parameters {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := desc.Required(); len(req) > 0 {
		schema["required"] = req
	}
	return schema
}
