package testrun

import (
	"context"
	"fmt"
	"strings"
)

// StaticRunner is the built-in runner used when no external test harness is
// wired in. It checks the files under tests/ without executing them: a
// non-empty test file counts as passed, an empty one as failed.
type StaticRunner struct{}

func (StaticRunner) RunTests(ctx context.Context, files map[string]string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	var log strings.Builder
	for path, content := range files {
		if !strings.HasPrefix(path, "tests/") {
			continue
		}
		if strings.TrimSpace(content) == "" {
			report.Failed++
			fmt.Fprintf(&log, "FAIL %s (empty)\n", path)
			continue
		}
		report.Passed++
		fmt.Fprintf(&log, "PASS %s\n", path)
	}
	if report.Passed == 0 && report.Failed == 0 {
		log.WriteString("no test files\n")
	}
	report.Log = log.String()
	return report, nil
}
