package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent library operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				if env.journal == nil {
					return services.Wrap(services.ErrInternal, "cli", "history", "operation journal unavailable; see the log", nil)
				}
				events, err := env.journal.Recent(opCtx, limitFlag)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, events)
				}

				out := cmd.OutOrStdout()
				if len(events) == 0 {
					fmt.Fprintln(out, "No history recorded yet")
					return nil
				}
				rows := make([][]string, 0, len(events))
				for _, ev := range events {
					shapeID := ev.ShapeID
					if shapeID == "" {
						shapeID = "-"
					}
					category := ev.Category
					if category == "" {
						category = "-"
					}
					detail := ev.Detail
					if detail == "" {
						detail = "-"
					}
					rows = append(rows, []string{
						formatWhen(ev.OccurredAt),
						ev.Op,
						shapeID,
						category,
						truncateText(detail, 40),
					})
				}
				table := renderTable(
					[]string{"When", "Op", "Shape", "Category", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(out, table)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum number of events to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit events as JSON")
	return cmd
}
