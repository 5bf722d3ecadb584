package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/os-ghost/core/internal/config"
	"github.com/os-ghost/core/internal/logging"
)

var (
	cfgPath   string
	baseURL   string
	debugMode bool

	zlog      *zap.Logger
	appConfig *config.Config
	configDir string
)

var rootCmd = &cobra.Command{
	Use:           "ghost",
	Short:         "os-ghost: a screen-aware desktop companion agent",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		zcfg := zap.NewProductionConfig()
		if debugMode {
			zcfg = zap.NewDevelopmentConfig()
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		zlog = l

		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		configDir = dir

		path := cfgPath
		if path == "" {
			path = filepath.Join(dir, "config.yaml")
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if debugMode {
			cfg.Logging.DebugMode = true
		}
		appConfig = cfg

		if err := logging.Initialize(dir); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}

		if baseURL == "" {
			baseURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.StatusAPI.Port)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if zlog != nil {
			_ = zlog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yaml (default <user-config-dir>/os-ghost/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "status API base URL (default http://127.0.0.1:<status_api.port>)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(denyCmd)
	rootCmd.AddCommand(workflowsCmd)
	rootCmd.AddCommand(recordCmd)
}

// Execute runs the root command and maps any error to exit code 1, per
// spec.md §6's "exit codes: 0 success, 1 error".
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ghost:", err)
		return 1
	}
	return 0
}
