package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/soocke/photo-finish-go/config"
	"github.com/soocke/photo-finish-go/domain/finish"
	"github.com/soocke/photo-finish-go/metrics"
	"github.com/soocke/photo-finish-go/pipeline"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var (
		source     string
		sourcePath string
		count      int
		outDir     string
		stopAfter  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record photos without the GUI and export them",
		Example: `  photofinish record --source file --source-path race.mp4 --count 3 --out ./heats
  photofinish record --source frames --source-path ./frames --stop-after 5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.cfg
			if source != "" {
				cfg.Source = strings.ToLower(source)
			}
			if sourcePath != "" {
				cfg.SourcePath = sourcePath
			}
			if outDir != "" {
				cfg.ExportDir = outDir
			}
			_ = cfg.Validate()
			if (cfg.Source == config.SourceFile || cfg.Source == config.SourceFrames) && cfg.SourcePath == "" {
				return fmt.Errorf("--source-path is required for source %q", cfg.Source)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := pipeline.New(&cfg, ctx.logger, metrics.New(), pipeline.Options{})
			defer p.Close()

			recorded, recErr := pipeline.Record(runCtx, p, pipeline.RecordOptions{Count: count, StopAfter: stopAfter}, ctx.logger)
			if len(recorded) == 0 {
				return recErr
			}

			exportCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			n, expErr := finish.ExportAll(exportCtx, p.Exporter, p.Photos(), cfg.ExportPrefix)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRecordSummary(recorded, cfg.ExportPrefix))
			fmt.Fprintf(out, "Exported %d of %d photos to %s\n", n, len(recorded), cfg.ExportDir)
			if expErr != nil {
				return fmt.Errorf("export: %w", expErr)
			}
			return recErr
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Video source: webcam, screen, file or frames")
	cmd.Flags().StringVar(&sourcePath, "source-path", "", "Video file or frame directory")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of photos to record")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Export directory (default from config)")
	cmd.Flags().DurationVar(&stopAfter, "stop-after", 0, "Stop each photo after this long instead of waiting for a full strip")
	return cmd
}

func renderRecordSummary(recorded []pipeline.Recorded, prefix string) string {
	rows := make([][]string, 0, len(recorded))
	var total uint64
	for _, r := range recorded {
		size := uint64(len(r.Photo.PNG))
		total += size
		rows = append(rows, []string{
			strconv.Itoa(r.Index + 1),
			finish.ExportName(prefix, r.Index),
			fmt.Sprintf("%dx%d", r.Photo.Width, r.Photo.Height),
			strconv.Itoa(r.Frames),
			r.Photo.Direction.String(),
			r.Took.Round(time.Millisecond).String(),
			humanize.Bytes(size),
		})
	}
	rows = append(rows, []string{"", "total", "", "", "", "", humanize.Bytes(total)})
	return renderTable(
		[]string{"#", "File", "Size", "Frames", "Direction", "Took", "PNG"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight},
	)
}
