// Package workspace provides the durable store for projects, their files
// and backup records, backed by JSON files on disk.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/pkg/types"
)

var (
	// ErrNotFound is returned when a project or backup does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a project whose name is taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrBackupFailed wraps any failure to write a backup record.
	ErrBackupFailed = errors.New("backup failed")
)

const (
	projectsDir = "projects"
	backupsDir  = "backups"
	historyDir  = "history"
)

// Store is the workspace store. It assumes a single active session; writes
// are still serialized through per-file flocks so a stray second process
// cannot corrupt individual records.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*FileLock
}

// New creates a store rooted at the given directory. The directory is
// created on first write, not here.
func New(root string) *Store {
	return &Store{
		root:  root,
		locks: make(map[string]*FileLock),
	}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) projectPath(name string) string {
	return filepath.Join(s.root, projectsDir, name+".json")
}

func (s *Store) backupPath(id string) string {
	return filepath.Join(s.root, backupsDir, id+".json")
}

func (s *Store) getLock(path string) *FileLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[path]; ok {
		return l
	}
	l := NewFileLock(path)
	s.locks[path] = l
	return l
}

// readJSON reads and unmarshals a JSON file into v.
func (s *Store) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// writeJSON marshals v and writes it atomically (temp file + rename) under
// an exclusive file lock.
func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock := s.getLock(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// CreateProject inserts a new project. Fails with ErrAlreadyExists if the
// name is taken; existing data is never overwritten.
func (s *Store) CreateProject(ctx context.Context, p *types.Project) error {
	path := s.projectPath(p.Name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project %q: %w", p.Name, ErrAlreadyExists)
	}
	return s.writeJSON(path, p)
}

// GetProject retrieves a project by name.
func (s *Store) GetProject(ctx context.Context, name string) (*types.Project, error) {
	var p types.Project
	if err := s.readJSON(s.projectPath(name), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// PutProject writes a project record, updating its modified timestamp.
// The project must already exist; use CreateProject for new projects.
func (s *Store) PutProject(ctx context.Context, p *types.Project) error {
	if _, err := os.Stat(s.projectPath(p.Name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("project %q: %w", p.Name, ErrNotFound)
		}
		return err
	}
	p.Time.Modified = time.Now().UnixMilli()
	return s.writeJSON(s.projectPath(p.Name), p)
}

// ListProjects returns the names of all projects, sorted.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, projectsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// WriteBackup snapshots a project's files into a new append-only backup
// record. Every call produces a fresh timestamped record; prior backups are
// never overwritten.
func (s *Store) WriteBackup(ctx context.Context, name string) (*types.BackupRecord, error) {
	p, err := s.GetProject(ctx, name)
	if err != nil {
		return nil, err
	}

	files := make(map[string]string, len(p.Files))
	for k, v := range p.Files {
		files[k] = v
	}

	rec := &types.BackupRecord{
		ID:            name + "_" + ulid.Make().String(),
		SourceProject: name,
		Timestamp:     time.Now().UnixMilli(),
		Files:         files,
	}

	if err := s.writeJSON(s.backupPath(rec.ID), rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	logging.Info().Str("project", name).Str("backup", rec.ID).Msg("backup written")
	return rec, nil
}

// ListBackups returns all backup records for a project, oldest first.
func (s *Store) ListBackups(ctx context.Context, name string) ([]types.BackupRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, backupsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []types.BackupRecord{}, nil
		}
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		id := strings.TrimSuffix(entry.Name(), ".json")
		if strings.HasPrefix(id, name+"_") {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	records := make([]types.BackupRecord, 0, len(ids))
	for _, id := range ids {
		var rec types.BackupRecord
		if err := s.readJSON(s.backupPath(id), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// RestoreBackup recreates a project from a backup record. The restored
// project must not collide with an existing one.
func (s *Store) RestoreBackup(ctx context.Context, backupID string) (*types.Project, error) {
	var rec types.BackupRecord
	if err := s.readJSON(s.backupPath(backupID), &rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("backup %q: %w", backupID, ErrNotFound)
		}
		return nil, err
	}

	now := time.Now().UnixMilli()
	p := &types.Project{
		Name:  rec.SourceProject,
		Files: rec.Files,
		Time:  types.ProjectTime{Created: now, Modified: now},
	}
	if err := s.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	logging.Info().Str("project", p.Name).Str("backup", backupID).Msg("project restored")
	return p, nil
}

// DeleteProject removes a project after writing a backup record. The two
// phases are ordered: if the backup cannot be written the project is left
// untouched and ErrBackupFailed is returned.
func (s *Store) DeleteProject(ctx context.Context, name string) (*types.BackupRecord, error) {
	rec, err := s.WriteBackup(ctx, name)
	if err != nil {
		return nil, err
	}

	path := s.projectPath(name)
	lock := s.getLock(path)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer lock.Unlock()

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}

	logging.Info().Str("project", name).Str("backup", rec.ID).Msg("project deleted")
	return rec, nil
}

// SaveHistory persists a session's command history under history/<id>.json.
func (s *Store) SaveHistory(ctx context.Context, sessionID string, v any) error {
	return s.writeJSON(filepath.Join(s.root, historyDir, sessionID+".json"), v)
}
