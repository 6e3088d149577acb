package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/search"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search shapes by name, description, and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				records, err := allRecords(env)
				if err != nil {
					return err
				}
				query := strings.Join(args, " ")
				results := search.New(records).Search(query, limitFlag)

				if jsonOutput {
					return writeJSON(cmd, results)
				}

				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintf(out, "No shapes match %q\n", query)
					return nil
				}
				rows := make([][]string, 0, len(results))
				for _, res := range results {
					rows = append(rows, []string{
						fmt.Sprintf("%.2f", res.Score),
						res.Record.ID,
						truncateText(res.Record.Name, 32),
						res.Record.Category,
						joinTags(res.Record.Tags),
					})
				}
				table := renderTable(
					[]string{"Score", "ID", "Name", "Category", "Tags"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(out, table)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 10, "Maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	return cmd
}

// allRecords loads every record across every known category.
func allRecords(env *libraryEnv) ([]shape.Record, error) {
	var records []shape.Record
	for _, category := range env.store.Categories() {
		batch, err := env.store.List(category)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}
