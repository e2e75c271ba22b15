package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeme-ai/codeme/internal/config"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/server"
	"github.com/codeme-ai/codeme/internal/session"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start headless codeme server",
	Long: `Start codeme as a headless server that exposes an HTTP API.

Commands posted to /command run through the same parser and router as
the interactive session.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Working directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(serveDir)
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

	serverConfig := server.DefaultConfig()
	serverConfig.Port = appConfig.Port
	if servePort != 0 {
		serverConfig.Port = servePort
	}

	srv := server.New(serverConfig, a.parser, a.router, a.projects, session.NewContext())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logging.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
