package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

// recentWindow bounds how far back the journal is consulted when ordering by
// recent use. Dead ids from removed shapes eat into the window, so it is
// deliberately larger than any realistic personal library.
const recentWindow = 200

func newListCommand(ctx *commandContext) *cobra.Command {
	var allFlag bool
	var recentFlag bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List stored shapes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				var categories []string
				scopeLabel := ""
				switch {
				case len(args) == 1:
					categories = []string{args[0]}
					scopeLabel = args[0]
				case allFlag:
					categories = env.store.Categories()
				default:
					def := strings.TrimSpace(env.cfg.Capture.DefaultCategory)
					if def == "" {
						categories = env.store.Categories()
					} else {
						categories = []string{def}
						scopeLabel = def
					}
				}

				records := make([]shape.Record, 0, 16)
				for _, category := range categories {
					recs, err := env.store.List(category)
					if err != nil {
						return err
					}
					records = append(records, recs...)
				}

				if recentFlag {
					records = orderByRecentUse(opCtx, env, records)
				}

				if jsonOut {
					return writeJSON(cmd, records)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					if scopeLabel != "" {
						fmt.Fprintf(out, "Category %q is empty\n", scopeLabel)
					} else {
						fmt.Fprintln(out, "Library is empty")
					}
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.ID,
						truncateText(rec.Name, 32),
						rec.Category,
						string(rec.Definition.Type),
						fidelityLabel(rec),
						formatWhen(rec.UpdatedAt),
					})
				}
				table := renderTable(
					[]string{"ID", "Name", "Category", "Kind", "Fidelity", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprint(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "List every category")
	cmd.Flags().BoolVar(&recentFlag, "recent", false, "Order by most recent use instead of name")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print records as JSON")
	return cmd
}

// orderByRecentUse reorders records so journal-recent shapes come first,
// keeping name order for the rest. Without a journal the input order stands.
func orderByRecentUse(ctx context.Context, env *libraryEnv, records []shape.Record) []shape.Record {
	if env.journal == nil || len(records) == 0 {
		return records
	}
	ids, err := env.journal.RecentShapes(ctx, recentWindow)
	if err != nil || len(ids) == 0 {
		return records
	}
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i + 1
	}
	sort.SliceStable(records, func(i, j int) bool {
		ri, iok := rank[records[i].ID]
		rj, jok := rank[records[j].ID]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		default:
			return false
		}
	})
	return records
}
