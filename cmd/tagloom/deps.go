package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tagloom/internal/engine"
	"tagloom/internal/provider"
	"tagloom/internal/store"
	"tagloom/internal/tools"
	"tagloom/internal/tools/core"
	"tagloom/internal/tools/shell"
	"tagloom/internal/types"
)

// deps bundles the collaborators every command constructs from config.
type deps struct {
	provider types.CompletionProvider
	registry *tools.Registry
	store    types.ConversationStore
	closeFn  func() error
}

func (d *deps) close() {
	if d.closeFn != nil {
		_ = d.closeFn()
	}
}

func buildDeps(ctx context.Context) (*deps, error) {
	p, err := provider.New(ctx, cfg.Provider, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider: %w", err)
	}

	registry := tools.NewRegistry(logger)
	if err := core.RegisterAll(registry); err != nil {
		return nil, err
	}
	if err := shell.RegisterAll(registry); err != nil {
		return nil, err
	}

	d := &deps{provider: p, registry: registry}

	switch cfg.Storage.Driver {
	case "memory":
		d.store = store.NewMemoryStore()
	default:
		s, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		d.store = s
		d.closeFn = s.Close
	}
	return d, nil
}

// engineConfig maps file configuration onto the engine's config,
// resolving the system prompt file if one is set.
func (d *deps) engineConfig() engine.Config {
	ec := engine.Config{
		MaxIterations: cfg.Engine.MaxIterations,
		OnExhausted:   engine.ExhaustPolicy(cfg.Engine.OnExhausted),
		OnUnknownTag:  engine.UnknownTagPolicy(cfg.Engine.OnUnknownTag),
	}
	if cfg.Engine.SystemPromptFile != "" {
		if data, err := os.ReadFile(cfg.Engine.SystemPromptFile); err == nil {
			ec.SystemPrompt = string(data)
		} else {
			logger.Warn("could not read system prompt file", zap.Error(err))
		}
	}
	return ec
}
