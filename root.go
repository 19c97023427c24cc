package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soocke/photo-finish-go/config"
	"github.com/soocke/photo-finish-go/logging"
)

// commandContext carries the resolved configuration and logger to
// subcommands.
type commandContext struct {
	configFlag    string
	logLevelFlag  string
	logFormatFlag string

	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
}

func (c *commandContext) configPath() string {
	if p := strings.TrimSpace(c.configFlag); p != "" {
		return p
	}
	return config.DefaultPath()
}

// load reads .env, the config file and PHOTOFINISH_* overrides, then applies
// the log flags.
func (c *commandContext) load() error {
	if err := config.LoadDotEnv(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
	c.cfgPath = c.configPath()
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	if c.logLevelFlag != "" {
		cfg.LogLevel = c.logLevelFlag
	}
	if c.logFormatFlag != "" {
		cfg.LogFormat = c.logFormatFlag
	}
	c.cfg = cfg
	c.logger = logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(c.logger)
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "photofinish",
		Short:         "Photo finish strips from a webcam, screen or video file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			return ctx.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path (.json or .toml)")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&ctx.logFormatFlag, "log-format", "", "Log format: text or json (default: text on a terminal)")

	rootCmd.AddCommand(newGUICommand(ctx))
	rootCmd.AddCommand(newRecordCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	return rootCmd
}
