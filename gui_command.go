package main

import (
	"github.com/spf13/cobra"

	"github.com/soocke/photo-finish-go/app"
)

func newGUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop recorder (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(ctx)
		},
	}
}

func runGUI(ctx *commandContext) error {
	application := app.NewApp("Photo Finish", 1100, 800, ctx.cfg, ctx.cfgPath, ctx.logger)
	application.Start()
	return nil
}
