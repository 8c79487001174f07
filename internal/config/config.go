// Package config handles sitesmith configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ashutoshrp06/sitesmith/internal/executor"
	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/ashutoshrp06/sitesmith/internal/ollama"
	"github.com/ashutoshrp06/sitesmith/internal/validator"
)

// ErrMissingAPIKey is returned when the selected provider needs a key and none is set.
var ErrMissingAPIKey = errors.New("missing API key")

// DefaultOpenAIModel is used for the openai provider when no model is set.
const DefaultOpenAIModel = "gpt-4o-mini"

// FileName is the config file name searched for without extension.
const FileName = "sitesmith"

// EnvPrefix prefixes every environment override, e.g. SITESMITH_LLM_MODEL.
const EnvPrefix = "SITESMITH"

// Config holds all sitesmith configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm" yaml:"llm"`
	Agent    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	Executor ExecutorConfig `mapstructure:"executor" yaml:"executor"`
}

// LLMConfig selects and tunes the model backend.
type LLMConfig struct {
	Provider       string  `mapstructure:"provider" yaml:"provider"`
	Model          string  `mapstructure:"model" yaml:"model"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Endpoint       string  `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Temperature    float32 `mapstructure:"temperature" yaml:"temperature"`
	// MaxTokens caps each model response; 0 leaves it to the provider.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// AgentConfig controls the tool loop.
type AgentConfig struct {
	Preset string `mapstructure:"preset" yaml:"preset"`
	// MaxIterations caps model calls per prompt; 0 is unlimited.
	MaxIterations  int `mapstructure:"max_iterations" yaml:"max_iterations"`
	MaxInputLength int `mapstructure:"max_input_length" yaml:"max_input_length"`
}

// ExecutorConfig controls how shell commands run.
type ExecutorConfig struct {
	// Platform is "posix", "windows" or empty for the host.
	Platform        string   `mapstructure:"platform" yaml:"platform,omitempty"`
	CommandTimeout  string   `mapstructure:"command_timeout" yaml:"command_timeout"`
	WorkDir         string   `mapstructure:"workdir" yaml:"workdir,omitempty"`
	ToleratedStderr []string `mapstructure:"tolerated_stderr" yaml:"tolerated_stderr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:       llm.ProviderGemini,
			Model:          llm.DefaultGeminiModel,
			TimeoutSeconds: 120,
			Temperature:    0.2,
		},
		Agent: AgentConfig{
			Preset:         llm.PresetBuilder,
			MaxInputLength: validator.DefaultMaxInputLength,
		},
		Executor: ExecutorConfig{
			ToleratedStderr: append([]string(nil), executor.DefaultToleratedStderr...),
		},
	}
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".sitesmith"), nil
}

// Options tune Load.
type Options struct {
	// File is an explicit config file; empty searches . and ~/.sitesmith.
	File string
	// EnvFile is loaded into the environment first; missing is fine.
	EnvFile string
	// Overrides are applied last, keyed like "llm.model".
	Overrides map[string]any
}

// Load resolves configuration from defaults, the config file, the
// environment and opts.Overrides, in increasing precedence.
func Load(opts Options) (Config, string, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), "", fmt.Errorf("load %s: %w", envFile, err)
	}

	v := newViper()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return DefaultConfig(), "", fmt.Errorf("read config: %w", err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), "", fmt.Errorf("parse config: %w", err)
	}
	cfg.applyProviderDefaults()

	return cfg, v.ConfigFileUsed(), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("llm.provider", def.LLM.Provider)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.timeout_seconds", def.LLM.TimeoutSeconds)
	v.SetDefault("llm.temperature", def.LLM.Temperature)
	v.SetDefault("llm.max_tokens", def.LLM.MaxTokens)
	v.SetDefault("agent.preset", def.Agent.Preset)
	v.SetDefault("agent.max_iterations", def.Agent.MaxIterations)
	v.SetDefault("agent.max_input_length", def.Agent.MaxInputLength)
	v.SetDefault("executor.platform", "")
	v.SetDefault("executor.command_timeout", def.Executor.CommandTimeout)
	v.SetDefault("executor.workdir", "")
	v.SetDefault("executor.tolerated_stderr", def.Executor.ToleratedStderr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// applyProviderDefaults fills the model and the API key from the
// provider's conventions when they are not configured.
func (c *Config) applyProviderDefaults() {
	if c.LLM.Model == "" {
		switch strings.ToLower(c.LLM.Provider) {
		case llm.ProviderGemini, "":
			c.LLM.Model = llm.DefaultGeminiModel
		case llm.ProviderOpenAI:
			c.LLM.Model = DefaultOpenAIModel
		case llm.ProviderOllama:
			c.LLM.Model = ollama.DefaultConfig().Model
		}
	}

	if c.LLM.APIKey != "" {
		return
	}
	switch strings.ToLower(c.LLM.Provider) {
	case llm.ProviderGemini, "":
		c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case llm.ProviderOpenAI:
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks that the configuration can start a session.
func (c Config) Validate() error {
	switch strings.ToLower(c.LLM.Provider) {
	case llm.ProviderGemini:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY or llm.api_key", ErrMissingAPIKey)
		}
	case llm.ProviderOpenAI:
		if c.LLM.APIKey == "" && c.LLM.Endpoint == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY, llm.api_key or a local llm.endpoint", ErrMissingAPIKey)
		}
	case llm.ProviderOllama:
	default:
		return fmt.Errorf("unknown llm.provider %q (use gemini, openai or ollama)", c.LLM.Provider)
	}

	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must not be negative")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative")
	}
	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("agent.max_iterations must not be negative")
	}
	if c.Agent.MaxInputLength < 0 {
		return fmt.Errorf("agent.max_input_length must not be negative")
	}
	if _, err := llm.LookupPreset(c.Agent.Preset); err != nil {
		return err
	}
	if _, err := c.Platform(); err != nil {
		return err
	}
	if _, err := c.CommandTimeout(); err != nil {
		return err
	}
	return nil
}

// Platform returns the configured shell platform, defaulting to the host.
func (c Config) Platform() (normalize.Platform, error) {
	if c.Executor.Platform == "" {
		return normalize.Current(), nil
	}
	return normalize.ParsePlatform(c.Executor.Platform)
}

// CommandTimeout parses executor.command_timeout. Empty means no timeout.
func (c Config) CommandTimeout() (time.Duration, error) {
	if c.Executor.CommandTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Executor.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("executor.command_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("executor.command_timeout must not be negative")
	}
	return d, nil
}

// LLMTimeout returns the request timeout for model calls.
func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "****"
	}
	return c
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Exists reports whether a file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
