package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/journal"
)

func newInsertCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "insert <id>",
		Short: "Insert a stored shape into the frontmost document",
		Long: `Insert pastes the shape's native artifact into the frontmost document of
the host application. Without a native artifact the shape is re-drawn from
its stored geometry, unless force_exact rejects the lower-fidelity path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				rec, err := findRecord(env, args[0], categoryFlag)
				if err != nil {
					return err
				}
				if err := env.renderer.Insert(opCtx, rec); err != nil {
					return err
				}
				env.recordEvent(opCtx, journal.OpInsert, rec.ID, rec.Category, fidelityLabel(rec))
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted %q (%s fidelity)\n", rec.Name, fidelityLabel(rec))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Category to look in (scans all when omitted)")
	return cmd
}
