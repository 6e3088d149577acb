package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/journal"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

func newDeckCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Inspect and maintain the aggregate native deck",
	}
	cmd.AddCommand(newDeckStatusCommand(ctx))
	cmd.AddCommand(newDeckRebuildCommand(ctx))
	return cmd
}

func newDeckStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show deck file and manifest state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				out := cmd.OutOrStdout()
				if env.deck == nil {
					fmt.Fprintln(out, "Deck storage is disabled (set [deck] enabled = true to turn it on)")
					return nil
				}
				st := env.deck.Status()
				if jsonOutput {
					return writeJSON(cmd, st)
				}
				fmt.Fprintf(out, "Deck: %s\n", st.Path)
				fmt.Fprintf(out, "  exists:  %s\n", yesNo(st.Exists))
				fmt.Fprintf(out, "  entries: %d\n", st.Entries)
				fmt.Fprintf(out, "  slides:  %d\n", st.Slides)
				fmt.Fprintf(out, "  stale:   %d\n", st.Stale)
				if st.Stale > 0 {
					fmt.Fprintln(out, "Run 'shapes deck rebuild' to reclaim stale slides")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	return cmd
}

func newDeckRebuildCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rewrite the deck without stale slides",
		Long: `Extract every live entry into a fresh deck, drop slides left stale by
removals, and re-point each record at its new slide. Needs the host
application running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				if env.deck == nil {
					return services.Wrap(services.ErrConfiguration, "cli", "deck rebuild", "deck storage is disabled", nil)
				}
				slides, err := env.deck.Rebuild(opCtx)
				if err != nil {
					return err
				}

				// Rebuild renumbers slides, so every deck-referenced record
				// gets its reference refreshed.
				repointed := 0
				for id, slide := range slides {
					rec, err := env.store.Find(id)
					if err != nil {
						env.logger.Warn("deck entry has no record",
							logging.String(logging.FieldEventType, "deck_orphan_entry"),
							logging.String(logging.FieldShapeID, id),
							logging.Error(err),
							logging.String(logging.FieldErrorHint, "remove the entry with shapes remove, or re-capture the shape"),
							logging.String(logging.FieldImpact, "the slide stays in the deck unused"))
						continue
					}
					ref := shape.DeckRef(slide)
					if rec.NativePptx == ref {
						continue
					}
					if err := env.store.Update(rec.ID, rec.Category, store.Patch{NativePptx: &ref}); err != nil {
						return err
					}
					repointed++
				}

				env.recordEvent(opCtx, journal.OpRebuild, "", "", fmt.Sprintf("%d entries", len(slides)))
				fmt.Fprintf(cmd.OutOrStdout(), "Deck rebuilt: %d entries kept, %d records re-pointed\n", len(slides), repointed)
				return nil
			})
		},
	}
	return cmd
}
