package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/journal"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var keepAssets bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a shape from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				rec, err := findRecord(env, args[0], categoryFlag)
				if err != nil {
					return err
				}
				if err := env.store.Remove(rec.ID, rec.Category); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %s\n", rec.ID)
				if !keepAssets {
					env.assets.RemoveAssets(opCtx, rec)
					if env.deck != nil && shape.IsDeckRef(rec.NativePptx) {
						if err := env.deck.Remove(rec.ID); err != nil {
							env.logger.Warn("failed to drop deck entry",
								logging.String(logging.FieldEventType, "deck_remove_failed"),
								logging.String(logging.FieldShapeID, rec.ID),
								logging.Error(err),
								logging.String(logging.FieldErrorHint, "run shapes deck rebuild"),
								logging.String(logging.FieldImpact, "deck manifest still lists the removed shape"))
						} else {
							fmt.Fprintln(out, "Deck slide marked stale; run 'shapes deck rebuild' to reclaim space")
						}
					}
				}

				env.recordEvent(opCtx, journal.OpRemove, rec.ID, rec.Category, rec.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Category to look in (scans all when omitted)")
	cmd.Flags().BoolVar(&keepAssets, "keep-assets", false, "Keep the preview and native artifact on disk")
	return cmd
}
