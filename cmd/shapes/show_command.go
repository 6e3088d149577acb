package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored shape in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				rec, err := findRecord(env, args[0], categoryFlag)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, rec)
				}
				printRecordDetail(cmd.OutOrStdout(), env, rec)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Category to look in (scans all when omitted)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the record as JSON")
	return cmd
}

func printRecordDetail(out io.Writer, env *libraryEnv, rec shape.Record) {
	native := "-"
	if rec.HasNative() {
		native = rec.NativePptx
	}
	def := rec.Definition

	fmt.Fprintln(out, rec.Name)
	fmt.Fprintf(out, "  id:          %s\n", rec.ID)
	fmt.Fprintf(out, "  category:    %s\n", rec.Category)
	fmt.Fprintf(out, "  kind:        %s (%s)\n", shape.DisplayName(def.Type), def.Type)
	fmt.Fprintf(out, "  description: %s\n", rec.Description)
	fmt.Fprintf(out, "  tags:        %s\n", joinTags(rec.Tags))
	fmt.Fprintf(out, "  geometry:    %.2f x %.2f in at (%.2f, %.2f), rotation %.0f\n",
		def.W, def.H, def.X, def.Y, def.Rotate)
	fmt.Fprintf(out, "  fidelity:    %s\n", fidelityLabel(rec))
	fmt.Fprintf(out, "  native:      %s\n", native)
	fmt.Fprintf(out, "  preview:     %s\n", env.assets.PreviewLocation(rec))
	fmt.Fprintf(out, "  created:     %s\n", formatWhen(rec.CreatedAt))
	fmt.Fprintf(out, "  updated:     %s\n", formatWhen(rec.UpdatedAt))
}
