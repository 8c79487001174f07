package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutoshrp06/sitesmith/internal/ollama"
	"github.com/ashutoshrp06/sitesmith/internal/types"
)

func TestOllama_Generate(t *testing.T) {
	var got ollama.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{
			"message": {"role": "assistant", "content": "", "tool_calls": [{"function": {"name": "writeFileContent", "arguments": {"filePath": "demo/a.css", "content": "a{}"}}}]},
			"done": true,
			"prompt_eval_count": 40,
			"eval_count": 8
		}`))
	}))
	defer server.Close()

	m := NewOllama(Config{Endpoint: server.URL, Model: "llama3.1"})
	resp, err := m.Generate(context.Background(), Request{
		SystemInstruction: "sys",
		History:           toolHistory(),
		Tools:             testTools,
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	require.Len(t, got.Messages[2].ToolCalls, 1)
	assert.Equal(t, "mkdir demo", got.Messages[2].ToolCalls[0].Function.Arguments["command"])
	assert.Equal(t, "tool", got.Messages[3].Role)
	assert.Equal(t, "executeCommand", got.Messages[3].ToolName)
	require.Len(t, got.Tools, 1)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, types.ToolWriteFileContent, resp.ToolCalls[0].Name)
	assert.Equal(t, 48, resp.Usage.TotalTokens)
	assert.Contains(t, m.Info(), "llama3.1")
}

func TestOllama_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": ""}, "done": true, "done_reason": "stop"}`))
	}))
	defer server.Close()

	_, err := NewOllama(Config{Endpoint: server.URL}).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNew_SelectsProvider(t *testing.T) {
	ctx := context.Background()

	m, err := New(ctx, Config{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, m)

	m, err = New(ctx, Config{Provider: "OpenAI", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, m)

	m, err = New(ctx, Config{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, m)

	_, err = New(ctx, Config{Provider: "anthropic-ish"})
	assert.Error(t, err)
}

func TestPresets(t *testing.T) {
	builder, err := LookupPreset("Builder")
	require.NoError(t, err)
	assert.Len(t, builder.Tools, 2)

	instr := builder.Instruction("windows")
	assert.Contains(t, instr, "Windows PowerShell")
	assert.Contains(t, instr, "writeFileContent")
	assert.NotContains(t, instr, "{{")

	frontend, err := LookupPreset(PresetFrontend)
	require.NoError(t, err)
	assert.Equal(t, []types.ToolName{types.ToolExecuteCommand}, frontend.Tools)
	assert.Contains(t, frontend.Instruction("posix"), "Unix-like")

	chat, err := LookupPreset(PresetChat)
	require.NoError(t, err)
	assert.Empty(t, chat.Tools)
	assert.Empty(t, chat.Instruction("posix"))

	_, err = LookupPreset("nope")
	assert.ErrorContains(t, err, "builder, chat, frontend")
}
