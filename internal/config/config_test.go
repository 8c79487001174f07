package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/normalize"
)

// isolate keeps the host environment and home directory out of Load.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "SITESMITH_LLM_MODEL", "SITESMITH_LLM_PROVIDER"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, used, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, llm.PresetBuilder, cfg.Agent.Preset)
	assert.Zero(t, cfg.Agent.MaxIterations)
	assert.Equal(t, 4000, cfg.Agent.MaxInputLength)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "sitesmith.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
llm:
  provider: openai
  model: file-model
  endpoint: http://localhost:1234/v1
  max_tokens: 2048
agent:
  preset: frontend
  max_iterations: 3
  max_input_length: 500
executor:
  command_timeout: 30s
`), 0644))

	t.Setenv("SITESMITH_LLM_MODEL", "env-model")

	cfg, used, err := Load(Options{
		File:      file,
		EnvFile:   filepath.Join(dir, "missing.env"),
		Overrides: map[string]any{"agent.max_iterations": 7},
	})
	require.NoError(t, err)
	assert.Equal(t, file, used)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.Endpoint)
	assert.Equal(t, "frontend", cfg.Agent.Preset)
	assert.Equal(t, 7, cfg.Agent.MaxIterations)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, 500, cfg.Agent.MaxInputLength)
	// untouched keys keep their defaults
	assert.Equal(t, 120, cfg.LLM.TimeoutSeconds)

	timeout, err := cfg.CommandTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoad_ProviderDefaultModel(t *testing.T) {
	dir := isolate(t)

	cfg, _, err := Load(Options{
		EnvFile:   filepath.Join(dir, "missing.env"),
		Overrides: map[string]any{"llm.provider": "ollama"},
	})
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5:7b", cfg.LLM.Model)

	timeout, err := cfg.CommandTimeout()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoad_DotEnvKey(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GEMINI_API_KEY=from-dotenv\n"), 0644))

	cfg, _, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.LLM.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	dir := isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, _, err := Load(Options{
		EnvFile:   filepath.Join(dir, "missing.env"),
		Overrides: map[string]any{"llm.provider": "openai"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoad_BadFile(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(file, []byte("llm: [unclosed"), 0644))

	_, _, err := Load(Options{File: file, EnvFile: filepath.Join(dir, "missing.env")})
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.LLM.APIKey = "k"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"gemini without key", func(c *Config) { c.LLM.APIKey = "" }, "missing API key"},
		{"openai without key or endpoint", func(c *Config) { c.LLM.Provider = "openai"; c.LLM.APIKey = "" }, "missing API key"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bard" }, "unknown llm.provider"},
		{"negative iterations", func(c *Config) { c.Agent.MaxIterations = -1 }, "max_iterations"},
		{"negative input length", func(c *Config) { c.Agent.MaxInputLength = -1 }, "max_input_length"},
		{"negative max tokens", func(c *Config) { c.LLM.MaxTokens = -5 }, "max_tokens"},
		{"unknown preset", func(c *Config) { c.Agent.Preset = "designer" }, "designer"},
		{"unknown platform", func(c *Config) { c.Executor.Platform = "plan9" }, "plan9"},
		{"bad timeout", func(c *Config) { c.Executor.CommandTimeout = "soon" }, "command_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	missing := valid
	missing.LLM.APIKey = ""
	assert.ErrorIs(t, missing.Validate(), ErrMissingAPIKey)

	local := valid
	local.LLM.Provider = "ollama"
	local.LLM.APIKey = ""
	assert.NoError(t, local.Validate())
}

func TestPlatform(t *testing.T) {
	cfg := DefaultConfig()
	p, err := cfg.Platform()
	require.NoError(t, err)
	assert.Equal(t, normalize.Current(), p)

	cfg.Executor.Platform = "windows"
	p, err = cfg.Platform()
	require.NoError(t, err)
	assert.Equal(t, normalize.Windows, p)
}

func TestSaveAndReload(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "sitesmith.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "llama3.1"
	cfg.Agent.MaxIterations = 12
	cfg.Executor.WorkDir = "/tmp/sites"
	require.NoError(t, cfg.Save(path))
	assert.True(t, Exists(path))

	loaded, _, err := Load(Options{File: path, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "ollama", loaded.LLM.Provider)
	assert.Equal(t, "llama3.1", loaded.LLM.Model)
	assert.Equal(t, 12, loaded.Agent.MaxIterations)
	assert.Equal(t, "/tmp/sites", loaded.Executor.WorkDir)
	assert.Equal(t, cfg.Executor.ToleratedStderr, loaded.Executor.ToleratedStderr)
	assert.InDelta(t, cfg.LLM.Temperature, loaded.LLM.Temperature, 0.001)
}

func TestRedacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "secret"

	data, err := cfg.Redacted().Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "****")
	assert.Equal(t, "secret", cfg.LLM.APIKey)
}
