package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTemplates(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	keys := r.Keys()
	assert.Contains(t, keys, "python-basic")
	assert.Contains(t, keys, "flask-web")

	tpl, ok := r.Get("python-basic")
	require.True(t, ok)
	assert.NotEmpty(t, tpl.Files["src/main.py"])
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	tpl, _ := r.Get("python-basic")
	files := tpl.Render("demo", "a demo project")

	readme := files["docs/README.md"]
	assert.Contains(t, readme, "# demo")
	assert.Contains(t, readme, "a demo project")
	assert.NotContains(t, readme, "{{project_name}}")

	main := files["src/main.py"]
	assert.Contains(t, main, "Hello from demo!")
}

func TestLoadFileOverrides(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	extra := `
python-basic:
  name: Overridden
  files:
    src/main.py: "print('{{project_name}}')"
custom:
  name: Custom
  files:
    docs/notes.md: "notes"
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(extra), 0644))
	require.NoError(t, r.LoadFile(path))

	tpl, ok := r.Get("python-basic")
	require.True(t, ok)
	assert.Equal(t, "Overridden", tpl.Name)

	_, ok = r.Get("custom")
	assert.True(t, ok)
}

func TestGetUnknown(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, ok := r.Get("nope")
	assert.False(t, ok)
}
