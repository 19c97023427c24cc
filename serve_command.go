package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soocke/photo-finish-go/domain/capture"
	"github.com/soocke/photo-finish-go/metrics"
	"github.com/soocke/photo-finish-go/pipeline"
	"github.com/soocke/photo-finish-go/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose recording and photos over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg
			if addr != "" {
				cfg.ListenAddr = addr
			}
			log := ctx.logger

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			met := metrics.New()
			p := pipeline.New(cfg, log, met, pipeline.Options{})
			defer p.Close()
			if err := p.Start(runCtx); err != nil {
				var ae *capture.AcquisitionError
				if errors.As(err, &ae) {
					return fmt.Errorf("open %s source: %w", cfg.Source, err)
				}
				return err
			}

			h := server.NewHandler(p.Scheduler, p.Exporter, cfg.ExportPrefix, log)
			return server.Run(runCtx, cfg.ListenAddr, server.NewRouter(h, log, met), log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
