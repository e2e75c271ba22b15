// Package assistant implements the top-level driver: it receives
// utterances, feeds them through the parser and router, and reports
// results back to the user-facing channel.
package assistant

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/codeme-ai/codeme/internal/event"
	"github.com/codeme-ai/codeme/internal/intent"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/router"
	"github.com/codeme-ai/codeme/internal/session"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// Transcriber is the speech-to-text collaborator. Its output is fed
// verbatim into the parser.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Loop is the serial request/response cycle of one session. No utterance
// begins processing before the previous one's result has been produced.
type Loop struct {
	parser *intent.Parser
	router *router.Router
	sess   *session.Context
	store  *workspace.Store
	bus    *event.Bus
	out    io.Writer
}

// New creates an assistant loop.
func New(parser *intent.Parser, r *router.Router, sess *session.Context, store *workspace.Store, bus *event.Bus, out io.Writer) *Loop {
	return &Loop{parser: parser, router: r, sess: sess, store: store, bus: bus, out: out}
}

// Session returns the loop's session context.
func (l *Loop) Session() *session.Context { return l.sess }

// Run reads text utterances line by line until input ends, "quit" is typed
// or ctx is cancelled. Command failures never terminate the loop. On exit
// the session history is persisted.
func (l *Loop) Run(ctx context.Context, input io.Reader) error {
	scanner := bufio.NewScanner(input)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if l.handleMeta(line) {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			break
		}

		l.HandleUtterance(ctx, line, intent.ModeText)
	}

	if err := l.sess.SaveHistory(ctx, l.store); err != nil {
		logging.Warn().Err(err).Msg("failed to persist session history")
	}
	return scanner.Err()
}

// HandleUtterance parses and dispatches one utterance, rendering the
// outcome. Returns nil when the utterance was ignored (voice input without
// the wake phrase).
func (l *Loop) HandleUtterance(ctx context.Context, utterance string, mode intent.Mode) *types.Result {
	cmd, perr := l.parser.Parse(utterance, mode)
	if perr != nil {
		if perr.Reason == intent.NoWakePhrase {
			// Voice chatter without the wake phrase is not a command.
			return nil
		}
		l.printf("? %s", perr.Error())
		return nil
	}

	if l.bus != nil {
		l.bus.Publish(event.Event{Type: event.CommandReceived, Data: cmd.Kind})
	}

	result := l.router.Dispatch(ctx, cmd, l.sess)
	l.sess.Append(*cmd, result)
	l.render(result)
	return &result
}

// HandleAudio transcribes an audio utterance and processes it in voice
// mode. A transcription failure is reported as a result, not an error.
func (l *Loop) HandleAudio(ctx context.Context, audio io.Reader, transcriber Transcriber) *types.Result {
	text, err := transcriber.Transcribe(ctx, audio)
	if err != nil {
		result := types.FailResult(types.ReasonTranscription, err.Error())
		l.render(result)
		return &result
	}
	return l.HandleUtterance(ctx, text, intent.ModeVoice)
}

// handleMeta processes session-level commands that bypass the intent
// table. Returns true when the line was consumed.
func (l *Loop) handleMeta(line string) bool {
	switch strings.ToLower(line) {
	case "help":
		l.printHelp()
	case "history":
		for _, e := range l.sess.History() {
			l.printf("%-10s %s -> %s", e.Result.Status, e.Command.Raw, e.Result.Message)
		}
	case "context":
		if name, ok := l.sess.Current(); ok {
			l.printf("current project: %s", name)
		} else {
			l.printf("no project loaded")
		}
	default:
		return false
	}
	return true
}

func (l *Loop) render(result types.Result) {
	switch result.Status {
	case types.StatusOk:
		l.printf("ok: %s", result.Message)
		switch payload := result.Payload.(type) {
		case []string:
			for _, item := range payload {
				l.printf("  %s", item)
			}
		case string:
			if payload != "" {
				l.printf("%s", payload)
			}
		}
	case types.StatusRejected:
		l.printf("rejected: %s", result.Message)
	case types.StatusFailed:
		l.printf("failed: %s", result.Message)
	}
}

func (l *Loop) printHelp() {
	l.printf("commands:")
	l.printf("  create project <name> [from <template>] [description]")
	l.printf("  load project <name>")
	l.printf("  list projects")
	l.printf("  delete project <name>")
	l.printf("  backup project [name]")
	l.printf("  show project files [matching <glob>]")
	l.printf("  create file <name> in src|tests|docs [content]")
	l.printf("  edit file <name> <content or prompt>")
	l.printf("  show file <name>")
	l.printf("  run tests for current project")
	l.printf("  deploy")
	l.printf("  help | history | context | quit")
}

func (l *Loop) printf(format string, args ...any) {
	fmt.Fprintf(l.out, format+"\n", args...)
}
