// Package session holds the mutable state of a single command session: the
// currently loaded project and the dispatch history.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// Entry pairs a dispatched command with its result.
type Entry struct {
	Command types.Command `json:"command"`
	Result  types.Result  `json:"result"`
	Time    int64         `json:"time"`
}

// Context is the per-session state. It is created at process start and
// owned by the assistant loop; it is deliberately not a package global so
// multiple sessions can be tested independently.
type Context struct {
	mu sync.RWMutex

	id        string
	startedAt time.Time
	current   string
	history   []Entry
}

// NewContext creates a fresh session context.
func NewContext() *Context {
	return &Context{
		id:        ulid.Make().String(),
		startedAt: time.Now(),
	}
}

// ID returns the session identifier.
func (c *Context) ID() string { return c.id }

// StartedAt returns the session start time.
func (c *Context) StartedAt() time.Time { return c.startedAt }

// SetCurrent makes the named project the active one.
func (c *Context) SetCurrent(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = name
}

// ClearCurrent drops the active project reference.
func (c *Context) ClearCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = ""
}

// Current returns the active project name, and whether one is set.
func (c *Context) Current() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.current != ""
}

// Append records a command and its result. History is append-only and
// unbounded for the life of the session.
func (c *Context) Append(cmd types.Command, result types.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, Entry{
		Command: cmd,
		Result:  result,
		Time:    time.Now().UnixMilli(),
	})
}

// History returns a copy of the session history.
func (c *Context) History() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.history))
	copy(out, c.history)
	return out
}

// SaveHistory persists the history to the workspace store. Called on
// session teardown.
func (c *Context) SaveHistory(ctx context.Context, store *workspace.Store) error {
	return store.SaveHistory(ctx, c.id, c.History())
}
