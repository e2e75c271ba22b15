// Package router maps typed commands onto the responsible manager,
// enforcing per-kind preconditions before any manager runs.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/codeme-ai/codeme/internal/code"
	"github.com/codeme-ai/codeme/internal/deploy"
	"github.com/codeme-ai/codeme/internal/event"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/project"
	"github.com/codeme-ai/codeme/internal/provider"
	"github.com/codeme-ai/codeme/internal/session"
	"github.com/codeme-ai/codeme/internal/testrun"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// handler executes one command kind and returns its result.
type handler func(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result

// Router dispatches commands. The routing table is static and total: every
// command kind maps to exactly one manager.
type Router struct {
	projects *project.Manager
	code     *code.Manager
	tests    *testrun.Manager
	deploys  *deploy.Manager
	bus      *event.Bus

	handlers map[types.CommandKind]handler
}

// New creates a router over the four managers.
func New(projects *project.Manager, codeMgr *code.Manager, tests *testrun.Manager, deploys *deploy.Manager, bus *event.Bus) *Router {
	r := &Router{
		projects: projects,
		code:     codeMgr,
		tests:    tests,
		deploys:  deploys,
		bus:      bus,
	}
	r.handlers = map[types.CommandKind]handler{
		types.CreateProject:    r.createProject,
		types.LoadProject:      r.loadProject,
		types.ListProjects:     r.listProjects,
		types.DeleteProject:    r.deleteProject,
		types.BackupProject:    r.backupProject,
		types.ShowProjectFiles: r.showProjectFiles,
		types.CreateFile:       r.createFile,
		types.EditFile:         r.editFile,
		types.ShowFile:         r.showFile,
		types.RunTests:         r.runTests,
		types.Deploy:           r.deployProject,
	}
	return r
}

// requiresProject reports whether a command kind needs an active project.
// Only project creation, loading and listing are exempt.
func requiresProject(kind types.CommandKind) bool {
	switch kind {
	case types.CreateProject, types.LoadProject, types.ListProjects:
		return false
	}
	return true
}

// Dispatch validates preconditions and routes the command to its manager.
// Manager failures come back as Failed results; the router never retries.
func (r *Router) Dispatch(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	h, ok := r.handlers[cmd.Kind]
	if !ok {
		// Unreachable as long as the parser and the table agree on kinds.
		return types.RejectResult(types.ReasonInvalidArgument, fmt.Sprintf("unknown command kind %q", cmd.Kind))
	}

	if requiresProject(cmd.Kind) {
		if _, ok := sess.Current(); !ok {
			return types.RejectResult(types.ReasonNoActiveProject,
				"no project loaded; create or load a project first")
		}
	}

	result := h(ctx, cmd, sess)

	if r.bus != nil {
		r.bus.Publish(event.Event{Type: event.CommandDispatched, Data: cmd.Kind})
	}
	logging.Debug().Str("kind", string(cmd.Kind)).Str("status", string(result.Status)).Msg("command dispatched")
	return result
}

func (r *Router) createProject(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	p, err := r.projects.Create(ctx, cmd.Name, cmd.Description, cmd.Template)
	if err != nil {
		return failFromErr(err)
	}
	sess.SetCurrent(p.Name)
	return types.OkResult(fmt.Sprintf("created project %s", p.Name), p)
}

func (r *Router) loadProject(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	p, err := r.projects.Load(ctx, cmd.Name)
	if err != nil {
		return failFromErr(err)
	}
	sess.SetCurrent(p.Name)
	return types.OkResult(fmt.Sprintf("loaded project %s", p.Name), p)
}

func (r *Router) listProjects(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	names, err := r.projects.List(ctx)
	if err != nil {
		return failFromErr(err)
	}
	return types.OkResult(fmt.Sprintf("%d project(s)", len(names)), names)
}

func (r *Router) deleteProject(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	rec, err := r.projects.Delete(ctx, cmd.Name)
	if err != nil {
		return failFromErr(err)
	}
	if current, ok := sess.Current(); ok && current == rec.SourceProject {
		sess.ClearCurrent()
	}
	return types.OkResult(fmt.Sprintf("deleted project %s (backup %s)", rec.SourceProject, rec.ID), rec)
}

func (r *Router) backupProject(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	name := cmd.Name
	if name == "" {
		name, _ = sess.Current()
	}
	rec, err := r.projects.Backup(ctx, name)
	if err != nil {
		return failFromErr(err)
	}
	return types.OkResult(fmt.Sprintf("backed up project %s as %s", rec.SourceProject, rec.ID), rec)
}

func (r *Router) showProjectFiles(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	name, _ := sess.Current()
	paths, err := r.projects.ShowFiles(ctx, name, cmd.Payload)
	if err != nil {
		return failFromErr(err)
	}
	return types.OkResult(fmt.Sprintf("%d file(s)", len(paths)), paths)
}

func (r *Router) createFile(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	dir, err := types.ParseTargetDir(string(cmd.Dir))
	if err != nil {
		return types.RejectResult(types.ReasonInvalidArgument, err.Error())
	}
	name, _ := sess.Current()
	path, err := r.code.CreateFile(ctx, name, dir, cmd.Name, cmd.Payload)
	if err != nil {
		if errors.Is(err, code.ErrInvalidName) {
			return types.RejectResult(types.ReasonInvalidArgument, err.Error())
		}
		return failFromErr(err)
	}
	return types.OkResult(fmt.Sprintf("created %s", path), path)
}

func (r *Router) editFile(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	if cmd.Payload == "" {
		return types.RejectResult(types.ReasonInvalidArgument, "edit file needs content or a prompt")
	}
	name, _ := sess.Current()
	summary, err := r.code.EditFile(ctx, name, cmd.Name, cmd.Payload)
	if err != nil {
		return failFromErr(err)
	}
	return types.OkResult(fmt.Sprintf("edited %s (+%d -%d)", summary.Path, summary.Additions, summary.Deletions), summary)
}

func (r *Router) showFile(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	name, _ := sess.Current()
	content, err := r.code.ShowFile(ctx, name, cmd.Name)
	if err != nil {
		return failFromErr(err)
	}
	return types.OkResult(cmd.Name, content)
}

func (r *Router) runTests(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	name, _ := sess.Current()
	report, err := r.tests.Run(ctx, name)
	if err != nil {
		return failFromErr(err)
	}
	msg := fmt.Sprintf("tests: %d passed, %d failed", report.Passed, report.Failed)
	if report.Failed > 0 {
		return types.Result{Status: types.StatusFailed, Message: msg, Payload: report}
	}
	return types.OkResult(msg, report)
}

func (r *Router) deployProject(ctx context.Context, cmd *types.Command, sess *session.Context) types.Result {
	name, _ := sess.Current()
	outcome, err := r.deploys.Run(ctx, name)
	if err != nil {
		return failFromErr(err)
	}
	if !outcome.Success {
		return types.Result{Status: types.StatusFailed, Reason: types.ReasonCollaborator, Message: "deployment failed", Payload: outcome}
	}
	return types.OkResult("deployment succeeded", outcome)
}

// failFromErr translates manager and collaborator errors into a Failed
// result with the matching reason.
func failFromErr(err error) types.Result {
	reason := types.ReasonCollaborator
	switch {
	case errors.Is(err, workspace.ErrBackupFailed):
		reason = types.ReasonBackupFailed
	case errors.Is(err, workspace.ErrAlreadyExists):
		reason = types.ReasonAlreadyExists
	case errors.Is(err, workspace.ErrNotFound):
		reason = types.ReasonNotFound
	case errors.Is(err, provider.ErrRateLimited):
		reason = types.ReasonRateLimited
	case errors.Is(err, provider.ErrGeneration):
		reason = types.ReasonGenerationFailed
	case errors.Is(err, context.DeadlineExceeded):
		reason = types.ReasonTimeout
	}
	return types.FailResult(reason, err.Error())
}
