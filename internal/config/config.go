// Package config provides configuration loading and path management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/tidwall/jsonc"

	"github.com/codeme-ai/codeme/pkg/types"
)

const (
	// DefaultWakePhrase prefixes voice commands.
	DefaultWakePhrase = "hey assistant"
	// DefaultPort is the serve-mode HTTP port.
	DefaultPort = 4096
)

// Load loads configuration from multiple sources (priority order):
//  1. Global config (~/.config/codeme/)
//  2. Directory config (<dir>/codeme.json[c])
//  3. CODEME_CONFIG file
//  4. Environment variables
func Load(directory string) (*types.Config, error) {
	config := defaults()

	loaded := make(map[string]bool)
	loadOnce := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil || loaded[absPath] {
			return
		}
		if loadConfigFile(path, config) == nil {
			loaded[absPath] = true
		}
	}

	globalDir := GetPaths().Config
	loadOnce(filepath.Join(globalDir, "codeme.json"))
	loadOnce(filepath.Join(globalDir, "codeme.jsonc"))

	if directory != "" {
		loadOnce(filepath.Join(directory, "codeme.json"))
		loadOnce(filepath.Join(directory, "codeme.jsonc"))
	}

	if configPath := os.Getenv("CODEME_CONFIG"); configPath != "" {
		loadOnce(configPath)
	}

	applyEnvOverrides(config)
	return config, nil
}

func defaults() *types.Config {
	return &types.Config{
		WorkspaceRoot: GetPaths().WorkspacePath(),
		WakePhrase:    DefaultWakePhrase,
		LogLevel:      "INFO",
		Port:          DefaultPort,
	}
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Strip JSONC comments, then expand {env:VAR} placeholders.
	data = jsonc.ToJSON(data)
	data = interpolate(data)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate processes {env:VAR} placeholders.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})
}

// mergeConfig overlays src onto dst; set fields win.
func mergeConfig(dst, src *types.Config) {
	if src.WorkspaceRoot != "" {
		dst.WorkspaceRoot = src.WorkspaceRoot
	}
	if src.WakePhrase != "" {
		dst.WakePhrase = src.WakePhrase
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.MaxTokens != 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.TemplateFile != "" {
		dst.TemplateFile = src.TemplateFile
	}
	if src.Retry != nil {
		dst.Retry = src.Retry
	}
	if src.Deployment != nil {
		dst.Deployment = src.Deployment
	}
}

// applyEnvOverrides applies CODEME_* environment variables, the highest
// priority source.
func applyEnvOverrides(config *types.Config) {
	if v := os.Getenv("CODEME_WORKSPACE_ROOT"); v != "" {
		config.WorkspaceRoot = v
	}
	if v := os.Getenv("CODEME_WAKE_PHRASE"); v != "" {
		config.WakePhrase = v
	}
	if v := os.Getenv("CODEME_MODEL"); v != "" {
		config.Model = v
	}
	if v := os.Getenv("CODEME_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("CODEME_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Port = port
		}
	}
}
