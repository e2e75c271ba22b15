// Package intent converts raw utterances into typed commands using an
// ordered table of command patterns.
package intent

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/codeme-ai/codeme/pkg/types"
)

// Mode distinguishes voice from text input. In voice mode an utterance
// without the wake phrase is ignored; in text mode the wake phrase is
// optional.
type Mode int

const (
	ModeText Mode = iota
	ModeVoice
)

// Reason classifies a parse failure.
type Reason string

const (
	Unrecognized    Reason = "unrecognized"
	MissingArgument Reason = "missing_argument"
	NoWakePhrase    Reason = "no_wake_phrase"
)

// ParseError describes why an utterance did not produce a command.
type ParseError struct {
	Reason  Reason
	Slot    string // name of the missing slot, for MissingArgument
	RawText string
	// Suggestion is the closest known command phrase, for Unrecognized.
	Suggestion string
}

func (e *ParseError) Error() string {
	switch e.Reason {
	case MissingArgument:
		return fmt.Sprintf("missing argument %q in %q", e.Slot, e.RawText)
	case NoWakePhrase:
		return "utterance lacks wake phrase"
	default:
		if e.Suggestion != "" {
			return fmt.Sprintf("unrecognized command %q (did you mean %q?)", e.RawText, e.Suggestion)
		}
		return fmt.Sprintf("unrecognized command %q", e.RawText)
	}
}

// pattern maps a keyword prefix onto a command kind. Patterns are matched
// in declaration order; prefixes are mutually exclusive so order only
// matters between a pattern and its more specific variants.
type pattern struct {
	keywords []string
	extract  func(tokens []string, raw string) (*types.Command, *ParseError)
}

// Parser is a pure, stateless utterance parser. The zero wake phrase
// disables wake-phrase handling entirely.
type Parser struct {
	wakePhrase string
	patterns   []pattern
}

// NewParser creates a parser with the given wake phrase.
func NewParser(wakePhrase string) *Parser {
	p := &Parser{wakePhrase: strings.ToLower(strings.TrimSpace(wakePhrase))}
	p.patterns = buildPatterns()
	return p
}

// Parse converts an utterance into a command, or a ParseError describing
// why no command was produced. Parsing has no side effects and no
// dependency on session state.
func (p *Parser) Parse(utterance string, mode Mode) (*types.Command, *ParseError) {
	text, hadWake := p.stripWakePhrase(utterance)
	if mode == ModeVoice && !hadWake {
		return nil, &ParseError{Reason: NoWakePhrase, RawText: utterance}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ParseError{Reason: Unrecognized, RawText: utterance}
	}

	tokens := strings.Fields(text)
	for _, pat := range p.patterns {
		if !matchKeywords(tokens, pat.keywords) {
			continue
		}
		return pat.extract(tokens[len(pat.keywords):], text)
	}

	return nil, &ParseError{
		Reason:     Unrecognized,
		RawText:    text,
		Suggestion: p.suggest(tokens),
	}
}

// stripWakePhrase removes the first occurrence of the wake phrase,
// case-insensitively, and reports whether it was present.
func (p *Parser) stripWakePhrase(utterance string) (string, bool) {
	if p.wakePhrase == "" {
		return utterance, true
	}
	lower := strings.ToLower(utterance)
	idx := strings.Index(lower, p.wakePhrase)
	if idx < 0 {
		return utterance, false
	}
	return utterance[:idx] + utterance[idx+len(p.wakePhrase):], true
}

// matchKeywords reports whether tokens begin with the keyword prefix,
// case-insensitively.
func matchKeywords(tokens, keywords []string) bool {
	if len(tokens) < len(keywords) {
		return false
	}
	for i, kw := range keywords {
		if !strings.EqualFold(tokens[i], kw) {
			return false
		}
	}
	return true
}

// suggest returns the known command phrase closest to the utterance's
// leading tokens, or "" when nothing is near enough to be useful.
func (p *Parser) suggest(tokens []string) string {
	probe := strings.ToLower(strings.Join(firstN(tokens, 2), " "))
	best := ""
	bestDist := -1
	for _, pat := range p.patterns {
		phrase := strings.Join(pat.keywords, " ")
		dist := levenshtein.ComputeDistance(probe, phrase)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = phrase, dist
		}
	}
	// Reject suggestions further away than half the phrase length.
	if best == "" || bestDist*2 > len(best) {
		return ""
	}
	return best
}

func firstN(tokens []string, n int) []string {
	if len(tokens) < n {
		return tokens
	}
	return tokens[:n]
}

// buildPatterns declares the command vocabulary, most specific first.
func buildPatterns() []pattern {
	return []pattern{
		{
			keywords: []string{"create", "project"},
			extract:  extractCreateProject,
		},
		{
			keywords: []string{"load", "project"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				if len(args) < 1 {
					return nil, &ParseError{Reason: MissingArgument, Slot: "name", RawText: raw}
				}
				return &types.Command{Kind: types.LoadProject, Name: args[0], Raw: raw}, nil
			},
		},
		{
			keywords: []string{"list", "projects"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				return &types.Command{Kind: types.ListProjects, Raw: raw}, nil
			},
		},
		{
			keywords: []string{"delete", "project"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				if len(args) < 1 {
					return nil, &ParseError{Reason: MissingArgument, Slot: "name", RawText: raw}
				}
				return &types.Command{Kind: types.DeleteProject, Name: args[0], Raw: raw}, nil
			},
		},
		{
			keywords: []string{"backup", "project"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				// Name is optional; the current project is backed up
				// when it is omitted.
				cmd := &types.Command{Kind: types.BackupProject, Raw: raw}
				if len(args) > 0 {
					cmd.Name = args[0]
				}
				return cmd, nil
			},
		},
		{
			keywords: []string{"show", "project", "files"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				cmd := &types.Command{Kind: types.ShowProjectFiles, Raw: raw}
				// "show project files matching <glob>"
				if len(args) >= 2 && strings.EqualFold(args[0], "matching") {
					cmd.Payload = args[1]
				}
				return cmd, nil
			},
		},
		{
			keywords: []string{"create", "file"},
			extract:  extractCreateFile,
		},
		{
			keywords: []string{"edit", "file"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				if len(args) < 1 {
					return nil, &ParseError{Reason: MissingArgument, Slot: "name", RawText: raw}
				}
				return &types.Command{
					Kind:    types.EditFile,
					Name:    args[0],
					Payload: strings.Join(args[1:], " "),
					Raw:     raw,
				}, nil
			},
		},
		{
			keywords: []string{"show", "file"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				if len(args) < 1 {
					return nil, &ParseError{Reason: MissingArgument, Slot: "name", RawText: raw}
				}
				return &types.Command{Kind: types.ShowFile, Name: args[0], Raw: raw}, nil
			},
		},
		{
			keywords: []string{"run", "tests"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				// Trailing words like "for current project" are accepted
				// and ignored.
				return &types.Command{Kind: types.RunTests, Raw: raw}, nil
			},
		},
		{
			keywords: []string{"deploy"},
			extract: func(args []string, raw string) (*types.Command, *ParseError) {
				return &types.Command{Kind: types.Deploy, Payload: strings.Join(args, " "), Raw: raw}, nil
			},
		},
	}
}

// extractCreateProject handles both forms:
//
//	create project <name> [description...]
//	create project <name> from <template> [description...]
func extractCreateProject(args []string, raw string) (*types.Command, *ParseError) {
	if len(args) < 1 {
		return nil, &ParseError{Reason: MissingArgument, Slot: "name", RawText: raw}
	}
	cmd := &types.Command{Kind: types.CreateProject, Name: args[0], Raw: raw}
	rest := args[1:]
	if len(rest) >= 2 && strings.EqualFold(rest[0], "from") {
		cmd.Template = rest[1]
		rest = rest[2:]
	}
	cmd.Description = strings.Join(rest, " ")
	return cmd, nil
}

// extractCreateFile handles "create file <name> in <dir> [content...]".
// The directory value is carried as-is; the router validates the enum.
func extractCreateFile(args []string, raw string) (*types.Command, *ParseError) {
	if len(args) < 1 {
		return nil, &ParseError{Reason: MissingArgument, Slot: "name", RawText: raw}
	}
	name := args[0]
	rest := args[1:]
	if len(rest) < 2 || !strings.EqualFold(rest[0], "in") {
		return nil, &ParseError{Reason: MissingArgument, Slot: "directory", RawText: raw}
	}
	return &types.Command{
		Kind:    types.CreateFile,
		Name:    name,
		Dir:     types.TargetDir(strings.ToLower(rest[1])),
		Payload: strings.Join(rest[2:], " "),
		Raw:     raw,
	}, nil
}
