package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arthurhrk/Shapeslibrary/internal/journal"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

// previewWorkers caps the rasterizer fan-out. Categories are rendered in
// parallel because their store documents are disjoint; records within one
// category stay sequential.
const previewWorkers = 4

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var allFlag bool
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "preview [id]",
		Short: "Regenerate preview images",
		Long: `Regenerate the preview image for one shape, or for the whole library
with --all. When the host application is reachable previews come from its
exporter; otherwise geometry-bearing shapes are rasterized directly and
native-only shapes are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !allFlag && len(args) == 0 {
				return services.Wrap(services.ErrValidation, "cli", "preview", "pass a shape id or --all", nil)
			}
			if allFlag && len(args) > 0 {
				return services.Wrap(services.ErrValidation, "cli", "preview", "--all does not take a shape id", nil)
			}
			return ctx.withLockedEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				if allFlag {
					return regenerateAll(opCtx, env, cmd.OutOrStdout(), forceFlag)
				}

				rec, err := findRecord(env, args[0], categoryFlag)
				if err != nil {
					return err
				}
				if !forceFlag && previewOnDisk(env, rec) {
					fmt.Fprintf(cmd.OutOrStdout(), "Preview for %s already exists (use --force to regenerate)\n", rec.ID)
					return nil
				}
				rel, err := generatePreview(opCtx, env, rec)
				if err != nil {
					return err
				}
				env.recordEvent(opCtx, journal.OpPreview, rec.ID, rec.Category, rel)
				fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s\n", rel)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Category to look in (scans all when omitted)")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Regenerate previews for every shape")
	cmd.Flags().BoolVar(&forceFlag, "force", false, "Regenerate even when a preview file already exists")
	return cmd
}

// generatePreview renders one record's preview through whichever renderer is
// reachable: the host exporter when the bridge answers, the built-in
// rasterizer otherwise.
func generatePreview(ctx context.Context, env *libraryEnv, rec shape.Record) (string, error) {
	if env.bridge.HostAvailable(ctx) {
		return env.assets.GeneratePreview(ctx, rec, env.renderer)
	}
	return env.assets.GeneratePreviewDirect(ctx, rec, env.raster)
}

// previewOnDisk reports whether the record's canonical preview file exists.
func previewOnDisk(env *libraryEnv, rec shape.Record) bool {
	_, err := os.Stat(env.paths.PreviewFile(rec.Category, rec.ID))
	return err == nil
}

type previewTally struct {
	rendered int
	fresh    int
	failed   int
}

// regenerateAll re-renders previews for the whole library. The host exporter
// is a single scripted application, so that path runs as a plain loop. The
// rasterizer path fans out one goroutine per category, which keeps every
// store document single-writer while drawing in parallel.
func regenerateAll(ctx context.Context, env *libraryEnv, out io.Writer, force bool) error {
	categories := env.store.Categories()
	tallies := make([]previewTally, len(categories))

	if env.bridge.HostAvailable(ctx) {
		for i, category := range categories {
			if err := regenerateCategory(ctx, env, category, force, true, &tallies[i]); err != nil {
				return err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(previewWorkers)
		for i, category := range categories {
			g.Go(func() error {
				return regenerateCategory(gctx, env, category, force, false, &tallies[i])
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	var total previewTally
	for _, t := range tallies {
		total.rendered += t.rendered
		total.fresh += t.fresh
		total.failed += t.failed
	}
	fmt.Fprintf(out, "Previews: %d rendered, %d already fresh, %d failed\n",
		total.rendered, total.fresh, total.failed)
	if total.failed > 0 {
		fmt.Fprintln(out, "Some previews could not be rendered; see the log for details")
	}
	return nil
}

func regenerateCategory(ctx context.Context, env *libraryEnv, category string, force, hostUp bool, tally *previewTally) error {
	records, err := env.store.List(category)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !force && previewOnDisk(env, rec) {
			tally.fresh++
			continue
		}
		var genErr error
		if hostUp {
			_, genErr = env.assets.GeneratePreview(ctx, rec, env.renderer)
		} else {
			_, genErr = env.assets.GeneratePreviewDirect(ctx, rec, env.raster)
		}
		if genErr != nil {
			tally.failed++
			env.logger.Warn("preview regeneration failed",
				logging.String(logging.FieldEventType, "preview_failed"),
				logging.String(logging.FieldShapeID, rec.ID),
				logging.String(logging.FieldCategory, rec.Category),
				logging.Error(genErr),
				logging.String(logging.FieldErrorHint, "native-only shapes need the host application running"),
				logging.String(logging.FieldImpact, "the shape keeps its previous or placeholder preview"))
			continue
		}
		tally.rendered++
		env.recordEvent(ctx, journal.OpPreview, rec.ID, rec.Category, "bulk")
	}
	return nil
}
