package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ashutoshrp06/sitesmith/internal/agent"
	"github.com/ashutoshrp06/sitesmith/internal/config"
	"github.com/ashutoshrp06/sitesmith/internal/executor"
	"github.com/ashutoshrp06/sitesmith/internal/llm"
	"github.com/ashutoshrp06/sitesmith/internal/normalize"
	"github.com/ashutoshrp06/sitesmith/internal/tools"
)

// app is everything a session needs, built once from configuration.
type app struct {
	agent    *agent.Agent
	preset   llm.Preset
	registry *tools.Registry
	platform normalize.Platform
}

// buildRegistry wires the built-in tools to the host shell and filesystem
// and keeps only the ones preset uses.
func buildRegistry(cfg config.Config, preset llm.Preset, logger *zap.Logger) (*tools.Registry, normalize.Platform, error) {
	platform, err := cfg.Platform()
	if err != nil {
		return nil, "", err
	}
	timeout, err := cfg.CommandTimeout()
	if err != nil {
		return nil, "", err
	}

	runner := executor.NewCommandExecutor(executor.Config{
		Platform:        platform,
		WorkDir:         cfg.Executor.WorkDir,
		Timeout:         timeout,
		ToleratedStderr: cfg.Executor.ToleratedStderr,
		Logger:          logger,
	})
	writer := executor.NewFileWriter(afero.NewOsFs(), platform, cfg.Executor.WorkDir, logger)

	registry, err := tools.Builtin(runner, writer).Subset(preset.Tools...)
	if err != nil {
		return nil, "", fmt.Errorf("preset %s: %w", preset.Name, err)
	}
	return registry, platform, nil
}

// buildApp validates cfg and assembles the agent for presetName. An empty
// presetName uses agent.preset from the configuration.
func buildApp(ctx context.Context, cfg config.Config, presetName string, logger *zap.Logger) (*app, error) {
	if presetName != "" {
		cfg.Agent.Preset = presetName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	preset, err := llm.LookupPreset(cfg.Agent.Preset)
	if err != nil {
		return nil, err
	}

	registry, platform, err := buildRegistry(cfg, preset, logger)
	if err != nil {
		return nil, err
	}

	model, err := llm.New(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Endpoint:    cfg.LLM.Endpoint,
		Timeout:     cfg.LLMTimeout(),
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	a, err := agent.New(agent.Config{
		Model:             model,
		Tools:             registry,
		SystemInstruction: preset.Instruction(platform),
		MaxIterations:     cfg.Agent.MaxIterations,
		MaxInputLength:    cfg.Agent.MaxInputLength,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Agent ready",
		zap.String("model", model.Info()),
		zap.String("preset", preset.Name),
		zap.String("platform", string(platform)),
		zap.Int("tools", registry.Len()))

	return &app{agent: a, preset: preset, registry: registry, platform: platform}, nil
}
