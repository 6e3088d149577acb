package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/journal"
)

func newOpenCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a stored shape in the host application",
		Long: `Open loads a scratch copy of the shape's document into the host
application for manual editing. The library's own artifact stays untouched,
so saving in the host never rewrites stored state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				rec, err := findRecord(env, args[0], categoryFlag)
				if err != nil {
					return err
				}
				if err := env.renderer.Open(opCtx, rec); err != nil {
					return err
				}
				env.recordEvent(opCtx, journal.OpOpen, rec.ID, rec.Category, fidelityLabel(rec))
				fmt.Fprintf(cmd.OutOrStdout(), "Opened %q in %s\n", rec.Name, env.cfg.Bridge.HostApp)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Category to look in (scans all when omitted)")
	return cmd
}
