package types

import "fmt"

// CommandKind identifies a recognized operation.
type CommandKind string

const (
	CreateProject    CommandKind = "create_project"
	LoadProject      CommandKind = "load_project"
	ListProjects     CommandKind = "list_projects"
	DeleteProject    CommandKind = "delete_project"
	BackupProject    CommandKind = "backup_project"
	ShowProjectFiles CommandKind = "show_project_files"
	CreateFile       CommandKind = "create_file"
	EditFile         CommandKind = "edit_file"
	ShowFile         CommandKind = "show_file"
	RunTests         CommandKind = "run_tests"
	Deploy           CommandKind = "deploy"
)

// TargetDir is a project subdirectory a file can be created in.
type TargetDir string

const (
	DirSrc   TargetDir = "src"
	DirTests TargetDir = "tests"
	DirDocs  TargetDir = "docs"
)

// ParseTargetDir validates a target directory name.
func ParseTargetDir(s string) (TargetDir, error) {
	switch TargetDir(s) {
	case DirSrc, DirTests, DirDocs:
		return TargetDir(s), nil
	}
	return "", fmt.Errorf("invalid target directory %q (must be src, tests or docs)", s)
}

// Command is a validated, typed representation of a recognized utterance.
// It is immutable once produced by the parser.
type Command struct {
	Kind CommandKind `json:"kind"`

	// Name is the project or file name slot, depending on Kind.
	Name string `json:"name,omitempty"`

	// Dir is the target directory for CreateFile.
	Dir TargetDir `json:"dir,omitempty"`

	// Description is the free-text description slot for CreateProject.
	Description string `json:"description,omitempty"`

	// Template is the optional scaffold name for CreateProject.
	Template string `json:"template,omitempty"`

	// Payload carries free text: initial file content, edit content or a
	// generation prompt, or a glob for ShowProjectFiles.
	Payload string `json:"payload,omitempty"`

	// Raw is the utterance the command was parsed from, wake phrase stripped.
	Raw string `json:"raw"`
}
