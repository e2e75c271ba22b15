// Package commands provides the CLI commands for codeme.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codeme-ai/codeme/internal/config"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/pkg/types"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	printLogs bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "codeme",
	Short: "codeme - voice and text driven coding assistant",
	Long: `codeme turns natural-language commands into project and code
operations: creating projects, editing files, running tests and deploying.

Run 'codeme run' to start an interactive session, or 'codeme serve'
to start a headless HTTP server.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real env always wins.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("codeme %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetWorkDir returns the working directory from flag or current directory.
func GetWorkDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// initLogging configures the global logger from config and flags. Logs go
// to a file; --print-logs duplicates them to stderr so they do not clutter
// the interactive session.
func initLogging(cfg *types.Config) {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = config.GetPaths().LogPath()
	}

	logCfg := logging.Config{
		Level: logging.ParseLevel(level),
		File:  logFile,
	}
	if printLogs {
		logCfg.Output = os.Stderr
		logCfg.Pretty = true
	} else {
		logCfg.Output = io.Discard
	}
	logging.Init(logCfg)
}
