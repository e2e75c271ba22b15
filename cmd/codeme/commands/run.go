package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeme-ai/codeme/internal/assistant"
	"github.com/codeme-ai/codeme/internal/config"
	"github.com/codeme-ai/codeme/internal/session"
)

var (
	runModel string
	runDir   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive codeme session",
	Long: `Start an interactive session that reads commands from stdin.

Examples:
  codeme run
  echo "create project demo a demo project" | codeme run
  codeme run --model anthropic/claude-sonnet-4`,
	RunE: runInteractive,
}

func init() {
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "Model to use (provider/model format)")
	runCmd.Flags().StringVar(&runDir, "directory", "", "Working directory")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(runDir)
	if err != nil {
		return err
	}

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}
	if runModel != "" {
		appConfig.Model = runModel
	}
	initLogging(appConfig)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx, appConfig)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("codeme %s - say %q or type a command ('help' for a list)\n", Version, appConfig.WakePhrase)

	loop := assistant.New(a.parser, a.router, session.NewContext(), a.store, a.bus, os.Stdout)
	return loop.Run(ctx, os.Stdin)
}
