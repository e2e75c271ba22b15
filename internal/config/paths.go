package config

import (
	"os"
	"path/filepath"
)

// Paths contains the standard paths for codeme data.
type Paths struct {
	Data   string // ~/.local/share/codeme
	Config string // ~/.config/codeme
	State  string // ~/.local/state/codeme
}

// GetPaths returns the standard paths for codeme data.
func GetPaths() *Paths {
	return &Paths{
		Data:   filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), "codeme"),
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), "codeme"),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), "codeme"),
	}
}

// WorkspacePath returns the default workspace store root.
func (p *Paths) WorkspacePath() string {
	return filepath.Join(p.Data, "workspace")
}

// LogPath returns the default log file location.
func (p *Paths) LogPath() string {
	return filepath.Join(p.State, "logs", "codeme.log")
}

// EnsurePaths creates the data, config and state directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Data, p.Config, p.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultConfigHome() string {
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func defaultStateHome() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}
