package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/journal"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Reconcile preview files with their records",
		Long: `Scan the library for preview files that drifted from their record's
category and for record preview fields pointing at non-canonical paths, and
move both back in line. Files with no owning record are reported but kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				report, err := env.assets.RepairOrphans(opCtx, dryRun)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if dryRun {
					fmt.Fprintf(out, "Would repair %d preview(s)\n", report.Repaired)
				} else {
					fmt.Fprintf(out, "Repaired %d preview(s)\n", report.Repaired)
				}
				if len(report.Unowned) > 0 {
					fmt.Fprintf(out, "Unowned preview files (left in place):\n")
					for _, path := range report.Unowned {
						fmt.Fprintf(out, "  %s\n", path)
					}
				}
				if !dryRun {
					env.recordEvent(opCtx, journal.OpRepair, "", "", fmt.Sprintf("%d repaired", report.Repaired))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without touching anything")
	return cmd
}
