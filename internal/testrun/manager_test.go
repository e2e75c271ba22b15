package testrun

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

type fakeRunner struct {
	report *Report
	err    error
	files  map[string]string
}

func (r *fakeRunner) RunTests(ctx context.Context, files map[string]string) (*Report, error) {
	r.files = files
	return r.report, r.err
}

func seedStore(t *testing.T) *workspace.Store {
	t.Helper()
	store := workspace.New(t.TempDir())
	now := time.Now().UnixMilli()
	require.NoError(t, store.CreateProject(context.Background(), &types.Project{
		Name:  "demo",
		Files: map[string]string{"tests/test_app.py": "assert True"},
		Time:  types.ProjectTime{Created: now, Modified: now},
	}))
	return store
}

func TestRunDelegatesProjectFiles(t *testing.T) {
	runner := &fakeRunner{report: &Report{Passed: 3, Failed: 1, Log: "ok"}}
	m := NewManager(seedStore(t), runner)

	report, err := m.Run(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, runner.files, "tests/test_app.py")
}

func TestRunCollaboratorError(t *testing.T) {
	wantErr := errors.New("runner exploded")
	m := NewManager(seedStore(t), &fakeRunner{err: wantErr})

	_, err := m.Run(context.Background(), "demo")
	require.True(t, errors.Is(err, wantErr))
}

func TestRunMissingProject(t *testing.T) {
	m := NewManager(workspace.New(t.TempDir()), &fakeRunner{})

	_, err := m.Run(context.Background(), "ghost")
	require.True(t, errors.Is(err, workspace.ErrNotFound))
}
