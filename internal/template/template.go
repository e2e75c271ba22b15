// Package template provides project scaffolding templates. Built-in
// templates ship embedded as YAML; extra templates can be loaded from a
// user-supplied YAML file.
package template

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Template describes a project scaffold: a set of files with placeholder
// substitution.
type Template struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Files       map[string]string `yaml:"files"`
}

// Registry holds the available templates by key.
type Registry struct {
	templates map[string]Template
}

// NewRegistry loads the built-in templates.
func NewRegistry() (*Registry, error) {
	r := &Registry{templates: make(map[string]Template)}
	if err := r.loadYAML(builtinYAML); err != nil {
		return nil, fmt.Errorf("loading builtin templates: %w", err)
	}
	return r, nil
}

// LoadFile merges templates from a YAML file into the registry. User
// templates override built-ins with the same key.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.loadYAML(data)
}

func (r *Registry) loadYAML(data []byte) error {
	var doc map[string]Template
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for key, tpl := range doc {
		r.templates[key] = tpl
	}
	return nil
}

// Get returns a template by key.
func (r *Registry) Get(key string) (Template, bool) {
	tpl, ok := r.templates[key]
	return tpl, ok
}

// Keys returns the sorted template keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.templates))
	for k := range r.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render expands a template's files for a project, substituting
// {{project_name}} and {{project_description}} placeholders.
func (t Template) Render(projectName, projectDescription string) map[string]string {
	rep := strings.NewReplacer(
		"{{project_name}}", projectName,
		"{{project_description}}", projectDescription,
	)
	files := make(map[string]string, len(t.Files))
	for path, content := range t.Files {
		files[rep.Replace(path)] = rep.Replace(content)
	}
	return files
}
