package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeme-ai/codeme/pkg/types"
)

// DirPipeline is the built-in pipeline: it materializes the project's files
// into a local target directory. The target comes from the deployment
// config; Dir is the fallback when no target is configured.
type DirPipeline struct {
	Dir string
}

func (p DirPipeline) Deploy(ctx context.Context, files map[string]string, target *types.DeploymentConfig) (*Outcome, error) {
	dir := p.Dir
	if target != nil && target.Target != "" {
		dir = target.Target
	}
	if dir == "" {
		return &Outcome{Success: false, Log: "no deployment target configured"}, nil
	}

	dir = filepath.Clean(dir)

	var log strings.Builder
	for path, content := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dst := filepath.Join(dir, filepath.FromSlash(path))
		if !containedIn(dir, dst) {
			return &Outcome{Success: false, Log: fmt.Sprintf("refusing %s: resolves outside the target directory", path)}, nil
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(dst, []byte(content), 0644); err != nil {
			return nil, err
		}
		fmt.Fprintf(&log, "deployed %s\n", path)
	}
	fmt.Fprintf(&log, "%d file(s) to %s\n", len(files), dir)
	return &Outcome{Success: true, Log: log.String()}, nil
}

// containedIn reports whether dst stays under dir once cleaned. Project file
// paths are store keys, not trusted filesystem paths.
func containedIn(dir, dst string) bool {
	rel, err := filepath.Rel(dir, dst)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
