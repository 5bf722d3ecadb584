package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/os-ghost/core/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the companion process (orchestrator, MCP bridge, status API)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(appConfig, configDir)
		if err != nil {
			return err
		}

		if err := a.Start(ctx); err != nil {
			return err
		}
		logging.Boot("ghost running (status api on port %d, mcp bridge on port %d)", appConfig.StatusAPI.Port, appConfig.MCPServer.Port)

		<-ctx.Done()
		logging.Boot("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	},
}
