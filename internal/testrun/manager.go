// Package testrun orchestrates test execution: it assembles the current
// project's files and delegates to an external test runner collaborator.
package testrun

import (
	"context"

	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/workspace"
)

// Report is the collaborator's test outcome.
type Report struct {
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
	Log    string `json:"log,omitempty"`
}

// Runner executes tests over a project's files. Retry and backoff policy,
// if any, belongs to the implementation, not to the manager.
type Runner interface {
	RunTests(ctx context.Context, files map[string]string) (*Report, error)
}

// Manager is a pass-through orchestrator for test runs.
type Manager struct {
	store  *workspace.Store
	runner Runner
}

// NewManager creates a test manager.
func NewManager(store *workspace.Store, runner Runner) *Manager {
	return &Manager{store: store, runner: runner}
}

// Run executes tests for the named project. It blocks on the collaborator
// until a report or error is produced.
func (m *Manager) Run(ctx context.Context, projectName string) (*Report, error) {
	p, err := m.store.GetProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	report, err := m.runner.RunTests(ctx, p.Files)
	if err != nil {
		return nil, err
	}

	logging.Info().Str("project", projectName).
		Int("passed", report.Passed).Int("failed", report.Failed).Msg("test run finished")
	return report, nil
}
