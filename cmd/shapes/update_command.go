package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/journal"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string
	var descriptionFlag string
	var categoryFlag string
	var tagsFlag []string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a stored shape's metadata",
		Long: `Update edits a record's name, description, or tags in place. Changing the
category relocates the preview asset along with the record so the two never
disagree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("description") &&
				!flags.Changed("tags") && !flags.Changed("category") {
				return services.Wrap(services.ErrValidation, "cli", "update",
					"nothing to change: pass --name, --description, --tags, or --category", nil)
			}
			return ctx.withLockedEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				rec, err := env.store.Find(args[0])
				if err != nil {
					return err
				}

				patch := store.Patch{}
				patched := false
				if flags.Changed("name") {
					patch.Name = &nameFlag
					patched = true
				}
				if flags.Changed("description") {
					patch.Description = &descriptionFlag
					patched = true
				}
				if flags.Changed("tags") {
					patch.Tags = tagsFlag
					patched = true
				}
				if patched {
					if err := env.store.Update(rec.ID, rec.Category, patch); err != nil {
						return err
					}
					env.recordEvent(opCtx, journal.OpUpdate, rec.ID, rec.Category, "")
				}

				category := rec.Category
				if target := strings.TrimSpace(categoryFlag); flags.Changed("category") && target != rec.Category {
					if err := env.assets.MoveCategory(opCtx, rec.ID, rec.Category, target); err != nil {
						return err
					}
					env.recordEvent(opCtx, journal.OpMove, rec.ID, target, "from "+rec.Category)
					category = target
				}

				updated, err := env.store.Get(rec.ID, category)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.ID)
				printRecordDetail(cmd.OutOrStdout(), env, updated)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "New shape name")
	cmd.Flags().StringVar(&descriptionFlag, "description", "", "New description")
	cmd.Flags().StringSliceVar(&tagsFlag, "tags", nil, "Replacement tag list (repeatable or comma-separated)")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Move the shape to another category")
	return cmd
}
