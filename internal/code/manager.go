// Package code implements file operations within the current project:
// creating, editing (directly or via AI generation) and showing files.
package code

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/codeme-ai/codeme/internal/event"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/provider"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// ErrInvalidName is returned when a file name is not a plain path segment.
var ErrInvalidName = errors.New("invalid file name")

// validFileName reports whether name is a single path segment. Separators
// and dot segments would let a file escape the src/tests/docs layout.
func validFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// EditSummary describes what an edit changed.
type EditSummary struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// Manager executes file commands against the current project. All
// operations require an active project; the router enforces that before
// calling in.
type Manager struct {
	store     *workspace.Store
	generator provider.Generator
	bus       *event.Bus
}

// NewManager creates a code manager. The generator may be nil; edits then
// treat their payload as literal content.
func NewManager(store *workspace.Store, generator provider.Generator, bus *event.Bus) *Manager {
	return &Manager{store: store, generator: generator, bus: bus}
}

// CreateFile inserts a file at <dir>/<name> in the project. Fails with
// workspace.ErrAlreadyExists if the path is taken; the existing content is
// left untouched.
func (m *Manager) CreateFile(ctx context.Context, projectName string, dir types.TargetDir, name, content string) (string, error) {
	if !validFileName(name) {
		return "", fmt.Errorf("file name %q: %w", name, ErrInvalidName)
	}

	p, err := m.store.GetProject(ctx, projectName)
	if err != nil {
		return "", err
	}

	path := string(dir) + "/" + name
	if _, exists := p.Files[path]; exists {
		return "", fmt.Errorf("file %q: %w", path, workspace.ErrAlreadyExists)
	}

	if p.Files == nil {
		p.Files = make(map[string]string)
	}
	p.Files[path] = content
	if err := m.store.PutProject(ctx, p); err != nil {
		return "", err
	}

	logging.Info().Str("project", projectName).Str("path", path).Msg("file created")
	m.publish(event.FileCreated, path)
	return path, nil
}

// EditFile replaces a file's content. When a generator is configured the
// payload is treated as a generation prompt and content synthesis is
// delegated to it, with the project's files as context; otherwise the
// payload is stored verbatim.
func (m *Manager) EditFile(ctx context.Context, projectName, name, payload string) (*EditSummary, error) {
	p, err := m.store.GetProject(ctx, projectName)
	if err != nil {
		return nil, err
	}

	path, err := resolvePath(p, name)
	if err != nil {
		return nil, err
	}
	old := p.Files[path]

	newContent := payload
	if m.generator != nil {
		newContent, err = m.generator.Generate(ctx, payload, p.Files)
		if err != nil {
			return nil, err
		}
	}

	p.Files[path] = newContent
	if err := m.store.PutProject(ctx, p); err != nil {
		return nil, err
	}

	summary := diffSummary(path, old, newContent)
	logging.Info().Str("project", projectName).Str("path", path).
		Int("additions", summary.Additions).Int("deletions", summary.Deletions).Msg("file edited")
	m.publish(event.FileEdited, path)
	return summary, nil
}

// ShowFile returns a file's content. Fails with workspace.ErrNotFound if
// the file is absent.
func (m *Manager) ShowFile(ctx context.Context, projectName, name string) (string, error) {
	p, err := m.store.GetProject(ctx, projectName)
	if err != nil {
		return "", err
	}
	path, err := resolvePath(p, name)
	if err != nil {
		return "", err
	}
	return p.Files[path], nil
}

// resolvePath finds a file by exact path or by unique name within the
// target directories.
func resolvePath(p *types.Project, name string) (string, error) {
	if _, ok := p.Files[name]; ok {
		return name, nil
	}

	var matches []string
	for path := range p.Files {
		if strings.HasSuffix(path, "/"+name) {
			matches = append(matches, path)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		sort.Strings(matches)
		return "", fmt.Errorf("file name %q is ambiguous (%s); use the full path: %w",
			name, strings.Join(matches, ", "), workspace.ErrNotFound)
	}
	return "", fmt.Errorf("file %q: %w", name, workspace.ErrNotFound)
}

// diffSummary computes line counts and a patch for an edit.
func diffSummary(path, old, updated string) *EditSummary {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, updated, false)

	s := &EditSummary{Path: path}
	for _, d := range diffs {
		lines := strings.Count(d.Text, "\n")
		if len(d.Text) > 0 && !strings.HasSuffix(d.Text, "\n") {
			lines++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Additions += lines
		case diffmatchpatch.DiffDelete:
			s.Deletions += lines
		}
	}
	s.Patch = dmp.PatchToText(dmp.PatchMake(old, diffs))
	return s
}

func (m *Manager) publish(t event.Type, path string) {
	if m.bus != nil {
		m.bus.Publish(event.Event{Type: t, Data: path})
	}
}
