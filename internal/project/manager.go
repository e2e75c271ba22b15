// Package project implements project lifecycle operations against the
// workspace store.
package project

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codeme-ai/codeme/internal/event"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/template"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// Manager executes project commands.
type Manager struct {
	store     *workspace.Store
	templates *template.Registry
	bus       *event.Bus
}

// NewManager creates a project manager. The template registry may be nil
// when scaffolding is not wanted.
func NewManager(store *workspace.Store, templates *template.Registry, bus *event.Bus) *Manager {
	return &Manager{store: store, templates: templates, bus: bus}
}

// SanitizeName maps a spoken project name onto a storable one: any
// non-alphanumeric rune becomes an underscore.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Create inserts a new project, optionally scaffolded from a template.
// Fails with workspace.ErrAlreadyExists if the name is taken.
func (m *Manager) Create(ctx context.Context, name, description, templateKey string) (*types.Project, error) {
	safeName := SanitizeName(name)
	if safeName == "" {
		return nil, fmt.Errorf("empty project name")
	}

	files := map[string]string{}
	if templateKey != "" {
		if m.templates == nil {
			return nil, fmt.Errorf("template %q: %w", templateKey, workspace.ErrNotFound)
		}
		tpl, ok := m.templates.Get(templateKey)
		if !ok {
			return nil, fmt.Errorf("template %q: %w", templateKey, workspace.ErrNotFound)
		}
		files = tpl.Render(name, description)
	}

	now := time.Now().UnixMilli()
	p := &types.Project{
		Name:        safeName,
		Description: description,
		Files:       files,
		Time:        types.ProjectTime{Created: now, Modified: now},
	}

	if err := m.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	logging.Info().Str("project", safeName).Str("template", templateKey).Msg("project created")
	m.publish(event.ProjectCreated, safeName)
	return p, nil
}

// Load fetches a project so the caller can make it current.
func (m *Manager) Load(ctx context.Context, name string) (*types.Project, error) {
	p, err := m.store.GetProject(ctx, SanitizeName(name))
	if err != nil {
		return nil, err
	}
	m.publish(event.ProjectLoaded, p.Name)
	return p, nil
}

// List returns all project names. It never fails on an empty store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.ListProjects(ctx)
}

// Delete removes a project after the store has written its pre-delete
// backup. On backup failure the project is left untouched.
func (m *Manager) Delete(ctx context.Context, name string) (*types.BackupRecord, error) {
	rec, err := m.store.DeleteProject(ctx, SanitizeName(name))
	if err != nil {
		return nil, err
	}
	m.publish(event.ProjectDeleted, rec.SourceProject)
	return rec, nil
}

// Backup writes an explicit backup record. Always creates a new
// timestamped record; prior backups are never overwritten.
func (m *Manager) Backup(ctx context.Context, name string) (*types.BackupRecord, error) {
	rec, err := m.store.WriteBackup(ctx, SanitizeName(name))
	if err != nil {
		return nil, err
	}
	m.publish(event.ProjectBackedUp, rec.SourceProject)
	return rec, nil
}

// ShowFiles returns the project's relative file paths, sorted, optionally
// filtered by a doublestar glob.
func (m *Manager) ShowFiles(ctx context.Context, name, glob string) ([]string, error) {
	p, err := m.store.GetProject(ctx, SanitizeName(name))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(p.Files))
	for path := range p.Files {
		if glob != "" {
			ok, err := doublestar.Match(glob, path)
			if err != nil {
				return nil, fmt.Errorf("invalid glob %q: %w", glob, err)
			}
			if !ok {
				continue
			}
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (m *Manager) publish(t event.Type, name string) {
	if m.bus != nil {
		m.bus.Publish(event.Event{Type: t, Data: name})
	}
}
