package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/config"
	"github.com/garyjia/lawdesk/internal/container"
	"github.com/garyjia/lawdesk/pkg/utils"
)

const defaultConfigPath = "configs/config.yaml"

// app carries the state shared by every subcommand
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "lawdesk",
		Short:         "Legal task workflow and approval engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at the configured level on every command")

	root.AddCommand(serveCmd(a))
	root.AddCommand(migrateCmd(a))
	root.AddCommand(seedCmd(a))
	root.AddCommand(stagesCmd(a))
	root.AddCommand(usersCmd(a))
	root.AddCommand(tasksCmd(a))
	return root
}

// init loads configuration and builds the logger. A missing default config file
// falls back to defaults plus environment overrides.
func (a *app) init(cmd *cobra.Command) error {
	path := a.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg := utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}
	// Keep table output readable: one-shot commands only log errors, to stderr.
	if cmd.Name() != "serve" && !a.verbose {
		logCfg.Level = "error"
		logCfg.OutputPath = "stderr"
	}
	logger, err := utils.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// withContainer starts the dependency container, runs fn and closes it again
func (a *app) withContainer(ctx context.Context, fn func(ctx context.Context, c *container.Container) error) error {
	c, err := container.NewContainer(a.cfg, a.logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return err
	}

	runErr := fn(ctx, c)
	if err := c.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
