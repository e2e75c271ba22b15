package commands

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/codeme-ai/codeme/internal/code"
	"github.com/codeme-ai/codeme/internal/deploy"
	"github.com/codeme-ai/codeme/internal/event"
	"github.com/codeme-ai/codeme/internal/intent"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/project"
	"github.com/codeme-ai/codeme/internal/provider"
	"github.com/codeme-ai/codeme/internal/router"
	"github.com/codeme-ai/codeme/internal/template"
	"github.com/codeme-ai/codeme/internal/testrun"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// app bundles the wired components shared by run and serve.
type app struct {
	config   *types.Config
	store    *workspace.Store
	bus      *event.Bus
	parser   *intent.Parser
	router   *router.Router
	projects *project.Manager
}

// buildApp wires the managers, router and parser from configuration. The
// generator is optional: without an API key, file edits treat the payload
// as literal content instead of a prompt.
func buildApp(ctx context.Context, cfg *types.Config) (*app, error) {
	store := workspace.New(cfg.WorkspaceRoot)
	bus := event.NewBus()

	templates, err := template.NewRegistry()
	if err != nil {
		return nil, err
	}
	if cfg.TemplateFile != "" {
		if err := templates.LoadFile(cfg.TemplateFile); err != nil {
			logging.Warn().Err(err).Str("file", cfg.TemplateFile).Msg("failed to load template file")
		}
	}

	generator := buildGenerator(ctx, cfg)

	projects := project.NewManager(store, templates, bus)
	codeMgr := code.NewManager(store, generator, bus)
	tests := testrun.NewManager(store, testrun.StaticRunner{})
	deploys := deploy.NewManager(store, deploy.DirPipeline{Dir: filepath.Join(cfg.WorkspaceRoot, "deploy")}, cfg.Deployment)

	return &app{
		config:   cfg,
		store:    store,
		bus:      bus,
		parser:   intent.NewParser(cfg.WakePhrase),
		router:   router.New(projects, codeMgr, tests, deploys, bus),
		projects: projects,
	}, nil
}

func buildGenerator(ctx context.Context, cfg *types.Config) provider.Generator {
	// Config uses "provider/model" form; the generator wants the bare model ID.
	modelID := cfg.Model
	if _, after, found := strings.Cut(modelID, "/"); found {
		modelID = after
	}

	gen, err := provider.NewClaudeGenerator(ctx, &provider.ClaudeConfig{
		Model:     modelID,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		logging.Warn().Err(err).Msg("generation disabled; edits take literal content")
		return nil
	}
	if cfg.Retry != nil {
		return provider.NewRetryingGenerator(gen, *cfg.Retry)
	}
	return gen
}

func (a *app) Close() {
	if a.bus != nil {
		_ = a.bus.Close()
	}
}
