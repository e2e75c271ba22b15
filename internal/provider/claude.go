package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/codeme-ai/codeme/internal/logging"
)

const defaultModel = "claude-sonnet-4-20250514"

const systemPrompt = "You are an AI coding assistant that helps write, test, and deploy code. " +
	"Respond with file content only."

// ClaudeConfig holds configuration for the Claude generator.
type ClaudeConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// ClaudeGenerator implements Generator on an Eino Claude chat model.
type ClaudeGenerator struct {
	chatModel model.ToolCallingChatModel
	modelID   string
}

// NewClaudeGenerator creates a Claude-backed generator. The API key falls
// back to ANTHROPIC_API_KEY.
func NewClaudeGenerator(ctx context.Context, cfg *ClaudeConfig) (*ClaudeGenerator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	modelID := cfg.Model
	if modelID == "" {
		modelID = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	claudeCfg := &claude.Config{
		APIKey:    apiKey,
		Model:     modelID,
		MaxTokens: maxTokens,
	}
	if cfg.BaseURL != "" {
		claudeCfg.BaseURL = &cfg.BaseURL
	}

	chatModel, err := claude.NewChatModel(ctx, claudeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Claude model: %w", err)
	}

	return &ClaudeGenerator{chatModel: chatModel, modelID: modelID}, nil
}

// Generate synthesizes content for the prompt with the project files as
// context. The call blocks until the model responds or ctx expires.
func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string, projectFiles map[string]string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildPrompt(prompt, projectFiles)),
	}

	logging.Debug().Str("model", g.modelID).Int("contextFiles", len(projectFiles)).Msg("generation request")

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		if isRateLimited(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return stripFences(resp.Content), nil
}

// isRateLimited detects throttling responses from the provider.
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "overloaded")
}
