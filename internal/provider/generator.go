// Package provider implements the AI generation collaborator behind a
// narrow Generator interface. The rest of the system depends only on the
// interface; the Claude-backed implementation lives here beside it.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrGeneration is returned when the model call fails.
	ErrGeneration = errors.New("generation failed")
	// ErrRateLimited is returned when the model provider throttles the call.
	ErrRateLimited = errors.New("rate limited")
)

// Generator synthesizes file content from a prompt, given the current
// project's files as context.
type Generator interface {
	Generate(ctx context.Context, prompt string, projectFiles map[string]string) (string, error)
}

// buildPrompt assembles the generation request: the instruction followed by
// the project's files, paths sorted for determinism.
func buildPrompt(prompt string, projectFiles map[string]string) string {
	var b strings.Builder
	b.WriteString("You are a coding assistant. Produce the complete new file content for the request below.\n")
	b.WriteString("Respond with the raw file content only, no explanations and no code fences.\n\n")
	b.WriteString("Request: ")
	b.WriteString(prompt)
	b.WriteString("\n")

	if len(projectFiles) > 0 {
		paths := make([]string, 0, len(projectFiles))
		for p := range projectFiles {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		b.WriteString("\nProject files for context:\n")
		for _, p := range paths {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", p, projectFiles[p])
		}
	}
	return b.String()
}

// stripFences removes a wrapping markdown code fence from model output.
// Models fence their answers despite instructions often enough that the
// stored content would otherwise be corrupted.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	// Drop the opening fence line (possibly with a language tag).
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
