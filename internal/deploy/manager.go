// Package deploy orchestrates deployments: it assembles the current
// project's files and delegates to an external deployment pipeline.
package deploy

import (
	"context"

	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// Outcome is the pipeline's deployment result.
type Outcome struct {
	Success bool   `json:"success"`
	Log     string `json:"log,omitempty"`
}

// Pipeline deploys a project's files to a target.
type Pipeline interface {
	Deploy(ctx context.Context, files map[string]string, target *types.DeploymentConfig) (*Outcome, error)
}

// Manager is a pass-through orchestrator for deployments.
type Manager struct {
	store    *workspace.Store
	pipeline Pipeline
	target   *types.DeploymentConfig
}

// NewManager creates a deployment manager.
func NewManager(store *workspace.Store, pipeline Pipeline, target *types.DeploymentConfig) *Manager {
	return &Manager{store: store, pipeline: pipeline, target: target}
}

// Run deploys the named project. It blocks on the collaborator until an
// outcome or error is produced; no retry happens at this layer.
func (m *Manager) Run(ctx context.Context, projectName string) (*Outcome, error) {
	p, err := m.store.GetProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	outcome, err := m.pipeline.Deploy(ctx, p.Files, m.target)
	if err != nil {
		return nil, err
	}

	logging.Info().Str("project", projectName).Bool("success", outcome.Success).Msg("deployment finished")
	return outcome, nil
}
