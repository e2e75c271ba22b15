package types

// Config represents the codeme configuration, loadable from
// codeme.json/codeme.jsonc files and environment variables.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	// WorkspaceRoot is the directory holding projects, backups and history.
	WorkspaceRoot string `json:"workspaceRoot,omitempty"`

	// WakePhrase prefixes voice commands ("hey assistant").
	WakePhrase string `json:"wakePhrase,omitempty"`

	// Model selects the generation model, "provider/model" form.
	Model string `json:"model,omitempty"`

	// MaxTokens caps generation output.
	MaxTokens int `json:"maxTokens,omitempty"`

	// LogLevel is DEBUG|INFO|WARN|ERROR.
	LogLevel string `json:"logLevel,omitempty"`

	// LogFile, when set, duplicates log output to a file.
	LogFile string `json:"logFile,omitempty"`

	// Port for serve mode.
	Port int `json:"port,omitempty"`

	// TemplateFile is an optional YAML file with extra project templates.
	TemplateFile string `json:"templateFile,omitempty"`

	// Retry configures generation retries; nil disables retrying.
	Retry *RetryConfig `json:"retry,omitempty"`

	// Deployment target passed through to the deployment collaborator.
	Deployment *DeploymentConfig `json:"deployment,omitempty"`
}

// RetryConfig is the opt-in retry policy for the generation collaborator.
type RetryConfig struct {
	MaxRetries      int     `json:"maxRetries,omitempty"`
	InitialInterval int     `json:"initialIntervalMs,omitempty"`
	MaxInterval     int     `json:"maxIntervalMs,omitempty"`
	Multiplier      float64 `json:"multiplier,omitempty"`
}

// DeploymentConfig describes the deployment target.
type DeploymentConfig struct {
	Environment string `json:"environment,omitempty"`
	Target      string `json:"target,omitempty"`
}
