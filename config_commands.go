package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soocke/photo-finish-go/assets"
	"github.com/soocke/photo-finish-go/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented configuration template",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = config.DefaultTOMLPath()
			}
			if err := assets.WriteDefaultConfig(target, overwrite); err != nil {
				return fmt.Errorf("create config: %w (use --overwrite to replace it)", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote configuration template to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f := strings.ToLower(format)
			if f == "toml" {
				fmt.Fprintf(out, "# %s\n", ctx.cfgPath)
			}
			return ctx.cfg.Encode(out, f)
		},
	}

	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml or json")
	return cmd
}
