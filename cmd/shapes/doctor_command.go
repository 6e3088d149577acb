package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the library and host bridge are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				results := preflight.RunAll(opCtx, env.cfg, &env.paths, env.bridge)

				if jsonOutput {
					payload := struct {
						Checks  []preflight.Result `json:"checks"`
						Healthy bool               `json:"healthy"`
					}{Checks: results, Healthy: preflight.Healthy(results)}
					if err := writeJSON(cmd, payload); err != nil {
						return err
					}
					if !payload.Healthy {
						return fmt.Errorf("%d of %d checks failed", countFailed(results), len(results))
					}
					return nil
				}

				out := cmd.OutOrStdout()
				pass := color.New(color.FgGreen)
				fail := color.New(color.FgRed)
				if !shouldColorize(out) {
					pass.DisableColor()
					fail.DisableColor()
				}
				for _, res := range results {
					marker := pass.Sprint("PASS")
					if !res.Passed {
						marker = fail.Sprint("FAIL")
					}
					fmt.Fprintf(out, "%s  %-18s %s\n", marker, res.Name, res.Detail)
				}
				if !preflight.Healthy(results) {
					return fmt.Errorf("%d of %d checks failed", countFailed(results), len(results))
				}
				fmt.Fprintln(out, "All checks passed")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit check results as JSON")
	return cmd
}

func countFailed(results []preflight.Result) int {
	failed := 0
	for _, res := range results {
		if !res.Passed {
			failed++
		}
	}
	return failed
}
