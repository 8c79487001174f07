package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini talks to the Gemini API through the genai SDK.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewGemini creates a Gemini backend. Endpoint overrides the API base URL.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions.BaseURL = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		cc.HTTPOptions.Timeout = &timeout
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}, nil
}

// Generate sends the conversation to Gemini.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: geminiDeclarations(req.Tools)}}
	}
	if g.temperature > 0 {
		config.Temperature = genai.Ptr(g.temperature)
	}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = int32(g.maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(req.History), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, ErrEmptyResponse
	}

	// resp.Text() logs for every function call part.
	out := &Response{}
	var text strings.Builder
	if content := resp.Candidates[0].Content; content != nil {
		for _, part := range content.Parts {
			switch {
			case part.FunctionCall != nil:
				args := part.FunctionCall.Args
				if args == nil {
					args = map[string]any{}
				}
				out.ToolCalls = append(out.ToolCalls, types.ToolInvocation{
					ID:        part.FunctionCall.ID,
					Name:      types.ToolName(part.FunctionCall.Name),
					Arguments: args,
				})
			case part.Text != "" && !part.Thought:
				text.WriteString(part.Text)
			}
		}
	}
	out.Text = text.String()
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w (finish reason %s)", ErrEmptyResponse, resp.Candidates[0].FinishReason)
	}

	g.logger.Debug("Gemini response",
		zap.Int("tool_calls", len(out.ToolCalls)),
		zap.Int("total_tokens", out.Usage.TotalTokens),
		zap.String("text", types.Truncate(out.Text, 200)))

	return out, nil
}

// Ping fetches the configured model's metadata.
func (g *Gemini) Ping(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("gemini not reachable: %w", err)
	}
	return nil
}

func (g *Gemini) Info() string {
	return fmt.Sprintf("gemini/%s", g.model)
}

// geminiContents maps history onto Gemini roles. Tool requests are model
// turns carrying a functionCall part; tool results are user turns carrying
// a functionResponse part with the text under "result".
func geminiContents(history []types.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		switch t.Kind {
		case types.TurnUserText:
			contents = append(contents, genai.NewContentFromText(t.Text, genai.RoleUser))
		case types.TurnModelText:
			contents = append(contents, genai.NewContentFromText(t.Text, genai.RoleModel))
		case types.TurnModelToolRequest:
			contents = append(contents, &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{Name: string(t.ToolName), Args: t.Arguments},
				}},
			})
		case types.TurnToolResult:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     string(t.ToolName),
						Response: map[string]any{"result": t.Text},
					},
				}},
			})
		}
	}
	return contents
}

func geminiDeclarations(descs []types.ToolDescriptor) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(descs))
	for _, d := range descs {
		props := make(map[string]*genai.Schema, len(d.Parameters))
		for _, p := range d.Parameters {
			props[p.Name] = &genai.Schema{
				Type:        geminiType(p.Type),
				Description: p.Description,
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        string(d.Name),
			Description: d.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   d.Required(),
			},
		})
	}
	return decls
}

func geminiType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
