package router

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeme-ai/codeme/internal/code"
	"github.com/codeme-ai/codeme/internal/deploy"
	"github.com/codeme-ai/codeme/internal/project"
	"github.com/codeme-ai/codeme/internal/session"
	"github.com/codeme-ai/codeme/internal/template"
	"github.com/codeme-ai/codeme/internal/testrun"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

type recordingRunner struct {
	calls  int
	report *testrun.Report
	err    error
}

func (r *recordingRunner) RunTests(ctx context.Context, files map[string]string) (*testrun.Report, error) {
	r.calls++
	return r.report, r.err
}

type recordingPipeline struct {
	calls   int
	outcome *deploy.Outcome
	err     error
}

func (p *recordingPipeline) Deploy(ctx context.Context, files map[string]string, target *types.DeploymentConfig) (*deploy.Outcome, error) {
	p.calls++
	return p.outcome, p.err
}

type harness struct {
	router   *Router
	sess     *session.Context
	store    *workspace.Store
	runner   *recordingRunner
	pipeline *recordingPipeline
	root     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	store := workspace.New(root)
	reg, err := template.NewRegistry()
	require.NoError(t, err)

	runner := &recordingRunner{report: &testrun.Report{Passed: 1}}
	pipeline := &recordingPipeline{outcome: &deploy.Outcome{Success: true}}

	r := New(
		project.NewManager(store, reg, nil),
		code.NewManager(store, nil, nil),
		testrun.NewManager(store, runner),
		deploy.NewManager(store, pipeline, nil),
		nil,
	)
	return &harness{
		router:   r,
		sess:     session.NewContext(),
		store:    store,
		runner:   runner,
		pipeline: pipeline,
		root:     root,
	}
}

func (h *harness) dispatch(cmd types.Command) types.Result {
	return h.router.Dispatch(context.Background(), &cmd, h.sess)
}

func TestNoActiveProjectRejectedBeforeManager(t *testing.T) {
	h := newHarness(t)

	cases := []types.Command{
		{Kind: types.DeleteProject, Name: "x"},
		{Kind: types.BackupProject},
		{Kind: types.ShowProjectFiles},
		{Kind: types.CreateFile, Name: "a.py", Dir: types.DirSrc},
		{Kind: types.EditFile, Name: "a.py", Payload: "x"},
		{Kind: types.ShowFile, Name: "a.py"},
		{Kind: types.RunTests},
		{Kind: types.Deploy},
	}

	for _, cmd := range cases {
		result := h.dispatch(cmd)
		assert.Equal(t, types.StatusRejected, result.Status, "kind %s", cmd.Kind)
		assert.Equal(t, types.ReasonNoActiveProject, result.Reason, "kind %s", cmd.Kind)
	}

	// No manager or collaborator was ever invoked.
	assert.Zero(t, h.runner.calls)
	assert.Zero(t, h.pipeline.calls)
}

func TestCreateProjectBecomesCurrent(t *testing.T) {
	h := newHarness(t)

	result := h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo", Description: "d"})
	require.True(t, result.IsOk(), "got: %+v", result)

	current, ok := h.sess.Current()
	require.True(t, ok)
	assert.Equal(t, "demo", current)
}

func TestCreateDuplicateProject(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo", Description: "desc"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo", Description: "desc2"})
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, types.ReasonAlreadyExists, result.Reason)

	// The stored description is the original one.
	p, err := h.store.GetProject(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "desc", p.Description)
}

func TestLoadProjectSetsCurrent(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "one"}).IsOk())
	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "two"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.LoadProject, Name: "one"})
	require.True(t, result.IsOk())

	current, _ := h.sess.Current()
	assert.Equal(t, "one", current)
}

func TestLoadMissingProject(t *testing.T) {
	h := newHarness(t)

	result := h.dispatch(types.Command{Kind: types.LoadProject, Name: "ghost"})
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, types.ReasonNotFound, result.Reason)
}

func TestListProjectsNeedsNoActiveProject(t *testing.T) {
	h := newHarness(t)

	result := h.dispatch(types.Command{Kind: types.ListProjects})
	require.True(t, result.IsOk())
	assert.Empty(t, result.Payload)
}

func TestDeleteActiveProjectClearsCurrent(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.DeleteProject, Name: "demo"})
	require.True(t, result.IsOk(), "got: %+v", result)

	_, ok := h.sess.Current()
	assert.False(t, ok, "current project must be cleared after deleting it")
}

func TestDeleteOtherProjectKeepsCurrent(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "other"}).IsOk())
	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.DeleteProject, Name: "other"})
	require.True(t, result.IsOk())

	current, ok := h.sess.Current()
	require.True(t, ok)
	assert.Equal(t, "demo", current)
}

func TestDeleteAbortsOnBackupFailure(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	// Block the backups directory so the backup write fails.
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "backups"), []byte{}, 0644))

	result := h.dispatch(types.Command{Kind: types.DeleteProject, Name: "demo"})
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, types.ReasonBackupFailed, result.Reason)

	// Project untouched.
	_, err := h.store.GetProject(context.Background(), "demo")
	require.NoError(t, err)
}

func TestBackupDefaultsToCurrent(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.BackupProject})
	require.True(t, result.IsOk(), "got: %+v", result)

	rec, ok := result.Payload.(*types.BackupRecord)
	require.True(t, ok)
	assert.Equal(t, "demo", rec.SourceProject)
}

func TestCreateFileInvalidDirRejected(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.CreateFile, Name: "a.py", Dir: "lib"})
	assert.Equal(t, types.StatusRejected, result.Status)
	assert.Equal(t, types.ReasonInvalidArgument, result.Reason)
}

func TestCreateFileTraversalNameRejected(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.CreateFile, Name: "../../evil.py", Dir: types.DirSrc, Payload: "x"})
	assert.Equal(t, types.StatusRejected, result.Status)
	assert.Equal(t, types.ReasonInvalidArgument, result.Reason)

	// The project's file set is untouched.
	p, err := h.store.GetProject(context.Background(), "demo")
	require.NoError(t, err)
	assert.Empty(t, p.Files)
}

func TestEditFileEmptyPayloadRejected(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.EditFile, Name: "a.py"})
	assert.Equal(t, types.StatusRejected, result.Status)
	assert.Equal(t, types.ReasonInvalidArgument, result.Reason)
}

func TestFileRoundTripThroughRouter(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.CreateFile, Name: "app.py", Dir: types.DirSrc, Payload: "print('hi')"})
	require.True(t, result.IsOk(), "got: %+v", result)

	result = h.dispatch(types.Command{Kind: types.ShowFile, Name: "app.py"})
	require.True(t, result.IsOk())
	assert.Equal(t, "print('hi')", result.Payload)

	result = h.dispatch(types.Command{Kind: types.ShowProjectFiles})
	require.True(t, result.IsOk())
	assert.Equal(t, []string{"src/app.py"}, result.Payload)
}

func TestRunTestsReportsFailures(t *testing.T) {
	h := newHarness(t)
	h.runner.report = &testrun.Report{Passed: 2, Failed: 1}

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.RunTests})
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, 1, h.runner.calls)
}

func TestDeployTimeout(t *testing.T) {
	h := newHarness(t)
	h.pipeline.err = context.DeadlineExceeded

	require.True(t, h.dispatch(types.Command{Kind: types.CreateProject, Name: "demo"}).IsOk())

	result := h.dispatch(types.Command{Kind: types.Deploy})
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, types.ReasonTimeout, result.Reason)
}
