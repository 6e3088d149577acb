package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type statsPayload struct {
	Categories map[string]int `json:"categories"`
	Total      int            `json:"total"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-category shape counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				counts := env.store.Counts()
				total := env.store.Total()

				if jsonOutput {
					return writeJSON(cmd, statsPayload{Categories: counts, Total: total})
				}

				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(counts))
				for _, category := range env.store.Categories() {
					rows = append(rows, []string{category, fmt.Sprintf("%d", counts[category])})
				}
				table := renderTable(
					[]string{"Category", "Shapes"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				)
				fmt.Fprintln(out, table)
				fmt.Fprintf(out, "Total: %d\n", total)

				if env.deck != nil {
					st := env.deck.Status()
					fmt.Fprintf(out, "Deck: %d entries in %d slides (%d stale)\n", st.Entries, st.Slides, st.Stale)
				}
				if when, ok := env.assets.LastRepair(); ok {
					fmt.Fprintf(out, "Last repair: %s\n", formatWhen(when))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit counts as JSON")
	return cmd
}
