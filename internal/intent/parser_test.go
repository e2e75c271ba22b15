package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeme-ai/codeme/pkg/types"
)

func TestParseProjectCommands(t *testing.T) {
	p := NewParser("hey assistant")

	cases := []struct {
		utterance string
		want      types.Command
	}{
		{
			utterance: "create project demo a small demo project",
			want:      types.Command{Kind: types.CreateProject, Name: "demo", Description: "a small demo project"},
		},
		{
			utterance: "create project web from flask-web my web app",
			want:      types.Command{Kind: types.CreateProject, Name: "web", Template: "flask-web", Description: "my web app"},
		},
		{
			utterance: "load project demo",
			want:      types.Command{Kind: types.LoadProject, Name: "demo"},
		},
		{
			utterance: "list projects",
			want:      types.Command{Kind: types.ListProjects},
		},
		{
			utterance: "delete project demo",
			want:      types.Command{Kind: types.DeleteProject, Name: "demo"},
		},
		{
			utterance: "backup project",
			want:      types.Command{Kind: types.BackupProject},
		},
		{
			utterance: "backup project demo",
			want:      types.Command{Kind: types.BackupProject, Name: "demo"},
		},
		{
			utterance: "show project files",
			want:      types.Command{Kind: types.ShowProjectFiles},
		},
		{
			utterance: "show project files matching src/**",
			want:      types.Command{Kind: types.ShowProjectFiles, Payload: "src/**"},
		},
	}

	for _, c := range cases {
		t.Run(c.utterance, func(t *testing.T) {
			cmd, perr := p.Parse(c.utterance, ModeText)
			require.Nil(t, perr, "unexpected parse error: %v", perr)
			assert.Equal(t, c.want.Kind, cmd.Kind)
			assert.Equal(t, c.want.Name, cmd.Name)
			assert.Equal(t, c.want.Template, cmd.Template)
			assert.Equal(t, c.want.Description, cmd.Description)
			assert.Equal(t, c.want.Payload, cmd.Payload)
		})
	}
}

func TestParseFileCommands(t *testing.T) {
	p := NewParser("hey assistant")

	cmd, perr := p.Parse("create file app.py in src", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.CreateFile, cmd.Kind)
	assert.Equal(t, "app.py", cmd.Name)
	assert.Equal(t, types.DirSrc, cmd.Dir)
	assert.Empty(t, cmd.Payload)

	cmd, perr = p.Parse("edit file app.py add a main function", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.EditFile, cmd.Kind)
	assert.Equal(t, "app.py", cmd.Name)
	assert.Equal(t, "add a main function", cmd.Payload)

	cmd, perr = p.Parse("show file app.py", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.ShowFile, cmd.Kind)
	assert.Equal(t, "app.py", cmd.Name)

	cmd, perr = p.Parse("run tests for current project", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.RunTests, cmd.Kind)

	cmd, perr = p.Parse("deploy to staging", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.Deploy, cmd.Kind)
	assert.Equal(t, "to staging", cmd.Payload)
}

func TestParseInvalidDirPassesThrough(t *testing.T) {
	// The parser carries the directory token as-is; enum validation is a
	// router concern.
	p := NewParser("")

	cmd, perr := p.Parse("create file app.py in lib", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.TargetDir("lib"), cmd.Dir)
}

func TestParseMissingArguments(t *testing.T) {
	p := NewParser("hey assistant")

	cases := []struct {
		utterance string
		slot      string
	}{
		{"create project", "name"},
		{"load project", "name"},
		{"delete project", "name"},
		{"create file", "name"},
		{"create file app.py", "directory"},
		{"create file app.py in", "directory"},
		{"edit file", "name"},
		{"show file", "name"},
	}

	for _, c := range cases {
		t.Run(c.utterance, func(t *testing.T) {
			cmd, perr := p.Parse(c.utterance, ModeText)
			require.Nil(t, cmd)
			require.NotNil(t, perr)
			assert.Equal(t, MissingArgument, perr.Reason)
			assert.Equal(t, c.slot, perr.Slot)
		})
	}
}

func TestParseUnrecognized(t *testing.T) {
	p := NewParser("hey assistant")

	for _, utterance := range []string{
		"make me a sandwich",
		"projects list please",
		"xyzzy",
	} {
		cmd, perr := p.Parse(utterance, ModeText)
		require.Nil(t, cmd, "utterance %q should not parse", utterance)
		require.NotNil(t, perr)
		assert.Equal(t, Unrecognized, perr.Reason)
	}
}

func TestParseSuggestion(t *testing.T) {
	p := NewParser("")

	_, perr := p.Parse("crate project demo", ModeText)
	require.NotNil(t, perr)
	assert.Equal(t, Unrecognized, perr.Reason)
	assert.Equal(t, "create project", perr.Suggestion)
}

func TestParseWakePhraseVoiceMode(t *testing.T) {
	p := NewParser("hey assistant")

	// Without the wake phrase, voice utterances are ignored.
	cmd, perr := p.Parse("list projects", ModeVoice)
	require.Nil(t, cmd)
	require.NotNil(t, perr)
	assert.Equal(t, NoWakePhrase, perr.Reason)

	// With the wake phrase (any casing), the command parses.
	cmd, perr = p.Parse("Hey Assistant list projects", ModeVoice)
	require.Nil(t, perr)
	assert.Equal(t, types.ListProjects, cmd.Kind)
}

func TestParseWakePhraseOptionalInTextMode(t *testing.T) {
	p := NewParser("hey assistant")

	cmd, perr := p.Parse("hey assistant list projects", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.ListProjects, cmd.Kind)

	cmd, perr = p.Parse("list projects", ModeText)
	require.Nil(t, perr)
	assert.Equal(t, types.ListProjects, cmd.Kind)
}

func TestParseIsPure(t *testing.T) {
	p := NewParser("hey assistant")

	first, _ := p.Parse("create project demo some description", ModeText)
	second, _ := p.Parse("create project demo some description", ModeText)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestParseEmptyUtterance(t *testing.T) {
	p := NewParser("")

	cmd, perr := p.Parse("   ", ModeText)
	require.Nil(t, cmd)
	require.NotNil(t, perr)
	assert.Equal(t, Unrecognized, perr.Reason)
}
