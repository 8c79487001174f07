package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutoshrp06/sitesmith/internal/types"
)

// geminiServer fakes the generateContent endpoint and records the last request body.
func geminiServer(t *testing.T, reply string, got *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGemini_GenerateToolCall(t *testing.T) {
	var got map[string]any
	server := geminiServer(t, `{
		"candidates": [{
			"content": {"role": "model", "parts": [{"functionCall": {"name": "executeCommand", "args": {"command": "mkdir demo"}}}]},
			"finishReason": "STOP"
		}],
		"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 3, "totalTokenCount": 15}
	}`, &got)

	m, err := NewGemini(context.Background(), Config{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	resp, err := m.Generate(context.Background(), Request{
		SystemInstruction: "build websites",
		History:           toolHistory(),
		Tools:             testTools,
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, types.ToolExecuteCommand, resp.ToolCalls[0].Name)
	assert.Equal(t, "mkdir demo", resp.ToolCalls[0].Arguments["command"])
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	contents, ok := got["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)

	request := contents[1].(map[string]any)
	assert.Equal(t, "model", request["role"])
	part := request["parts"].([]any)[0].(map[string]any)
	assert.Contains(t, part, "functionCall")

	result := contents[2].(map[string]any)
	assert.Equal(t, "user", result["role"])
	fr := result["parts"].([]any)[0].(map[string]any)["functionResponse"].(map[string]any)
	assert.Equal(t, "executeCommand", fr["name"])
	assert.Equal(t, "Success: Command executed successfully", fr["response"].(map[string]any)["result"])

	assert.Contains(t, got, "systemInstruction")
	tools := got["tools"].([]any)
	decls := tools[0].(map[string]any)["functionDeclarations"].([]any)
	require.Len(t, decls, 1)
	params := decls[0].(map[string]any)["parameters"].(map[string]any)
	assert.Equal(t, "OBJECT", params["type"])
}

func TestGemini_GenerateText(t *testing.T) {
	server := geminiServer(t, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "Your site is ready."}]}, "finishReason": "STOP"}]
	}`, nil)

	m, err := NewGemini(context.Background(), Config{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	resp, err := m.Generate(context.Background(), Request{History: []types.Turn{types.UserText("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "Your site is ready.", resp.Text)
	assert.Empty(t, resp.ToolCalls)
}

func TestGemini_NoCandidates(t *testing.T) {
	server := geminiServer(t, `{"candidates": []}`, nil)

	m, err := NewGemini(context.Background(), Config{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), Request{History: []types.Turn{types.UserText("hi")}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGemini_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	m, err := NewGemini(context.Background(), Config{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), Request{History: []types.Turn{types.UserText("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini generate")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), Config{})
	assert.Error(t, err)
}

func TestGeminiDeclarations(t *testing.T) {
	decls := geminiDeclarations([]types.ToolDescriptor{{
		Name: types.ToolWriteFileContent,
		Parameters: []types.Parameter{
			{Name: "filePath", Type: "string", Required: true},
			{Name: "content", Type: "string", Required: true},
		},
	}})

	require.Len(t, decls, 1)
	assert.Equal(t, "writeFileContent", decls[0].Name)
	assert.Equal(t, []string{"filePath", "content"}, decls[0].Parameters.Required)
	assert.Len(t, decls[0].Parameters.Properties, 2)
}
