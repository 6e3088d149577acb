package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/capture"
	"github.com/arthurhrk/Shapeslibrary/internal/fileutil"
	"github.com/arthurhrk/Shapeslibrary/internal/journal"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string
	var categoryFlag string
	var noNative bool
	var assumeYes bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture the selected shape into the library",
		Long: `Capture asks the host application for the currently selected shape,
normalizes it into a library record, and stores it together with a preview
image and, unless skipped, a high-fidelity native artifact.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedEnv(cmd, func(opCtx context.Context, env *libraryEnv) error {
				raw, err := env.bridge.CaptureSelection(opCtx)
				if err != nil {
					return err
				}

				rec := capture.NewNormalizer().Normalize(raw, nameFlag)
				// A script may have produced an artifact as a side effect;
				// it gets staged by saveNative, never persisted verbatim.
				sideEffect := rec.NativePptx
				rec.NativePptx = ""

				if target := strings.TrimSpace(categoryFlag); target != "" {
					if !env.store.HasCategory(target) {
						return services.Wrap(services.ErrValidation, "cli", "capture",
							fmt.Sprintf("unknown category %q (configured: %s)",
								target, strings.Join(env.store.Categories(), ", ")), nil)
					}
					rec.Category = target
					rec.Preview = shape.PreviewPath(target, rec.ID)
				}

				out := cmd.OutOrStdout()
				if !env.cfg.Capture.AutoSave && !assumeYes {
					printCaptureSummary(out, rec)
					ok, err := confirm(cmd, fmt.Sprintf("Save %q to the library? [y/N]: ", rec.Name))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Capture discarded")
						return nil
					}
				}

				if _, err := env.store.Add(rec); err != nil {
					return err
				}

				nativeNote := "skipped"
				skipNative := noNative || env.cfg.Capture.SkipNativeSave
				if !skipNative {
					ref, err := saveNative(opCtx, env, rec.ID, sideEffect)
					if err != nil {
						// Partial capture: the record stays, exact insert
						// degrades until a re-capture.
						env.logger.Warn("native artifact save failed",
							logging.String(logging.FieldEventType, "native_save_failed"),
							logging.String(logging.FieldShapeID, rec.ID),
							logging.Error(err),
							logging.String(logging.FieldErrorHint, "re-capture the shape with the host application responsive"),
							logging.String(logging.FieldImpact, "record stored without exact-fidelity source"))
						fmt.Fprintf(out, "Warning: native artifact save failed (%v); shape stored without exact-fidelity source\n", err)
						nativeNote = "failed"
					} else {
						if err := env.store.Update(rec.ID, rec.Category, store.Patch{NativePptx: &ref}); err != nil {
							return err
						}
						rec.NativePptx = ref
						nativeNote = ref
					}
				} else if rec.NativeOnly {
					fmt.Fprintln(out, "Warning: native-only selection stored without its artifact; insert and preview need a re-capture")
				}

				previewNote := "placeholder"
				if rel, err := generatePreview(opCtx, env, rec); err != nil {
					env.logger.Warn("preview generation failed",
						logging.String(logging.FieldEventType, "preview_failed"),
						logging.String(logging.FieldShapeID, rec.ID),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "run shapes preview "+rec.ID),
						logging.String(logging.FieldImpact, "record shows the placeholder image"))
				} else {
					rec.Preview = rel
					previewNote = rel
				}

				env.recordEvent(opCtx, journal.OpCapture, rec.ID, rec.Category, rec.Name)

				if jsonOut {
					stored, err := env.store.Get(rec.ID, rec.Category)
					if err != nil {
						return err
					}
					return writeJSON(cmd, stored)
				}
				fmt.Fprintf(out, "Captured %q as %s (category %s)\n", rec.Name, rec.ID, rec.Category)
				fmt.Fprintf(out, "  native:  %s\n", nativeNote)
				fmt.Fprintf(out, "  preview: %s\n", previewNote)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nameFlag, "name", "", "Override the captured shape name")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Store under a specific category instead of the inferred one")
	cmd.Flags().BoolVar(&noNative, "no-native", false, "Skip saving the high-fidelity native artifact")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Save without the confirmation prompt")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the stored record as JSON")
	return cmd
}

func printCaptureSummary(out io.Writer, rec shape.Record) {
	fmt.Fprintln(out, "Captured selection:")
	fmt.Fprintf(out, "  name:     %s\n", rec.Name)
	fmt.Fprintf(out, "  kind:     %s\n", shape.DisplayName(rec.Definition.Type))
	fmt.Fprintf(out, "  category: %s\n", rec.Category)
	fmt.Fprintf(out, "  size:     %.2f x %.2f in\n", rec.Definition.W, rec.Definition.H)
	fmt.Fprintf(out, "  fidelity: %s\n", fidelityLabel(rec))
}

// saveNative stores the capture's high-fidelity artifact and returns the
// nativePptx value to persist: a deck slide reference in deck mode, a
// root-relative file path otherwise. sideEffect is an artifact the capture
// script already produced; when present it is staged instead of asking the
// host to save the selection again.
func saveNative(ctx context.Context, env *libraryEnv, id, sideEffect string) (string, error) {
	if env.deck != nil {
		src := sideEffect
		if src == "" {
			tmp, err := env.scratch.Create("native", ".pptx")
			if err != nil {
				return "", err
			}
			if err := env.bridge.SaveSelectionNative(ctx, tmp); err != nil {
				return "", err
			}
			src = tmp
		} else {
			env.scratch.Register(src)
		}
		slide, err := env.deck.Add(ctx, id, src)
		if err != nil {
			return "", err
		}
		return shape.DeckRef(slide), nil
	}

	dest := env.paths.NativeFile(id)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrInternal, "cli", "capture", "create native directory", err)
	}
	if sideEffect != "" {
		if err := fileutil.CopyFile(sideEffect, dest); err != nil {
			return "", services.Wrap(services.ErrInternal, "cli", "capture", "stage capture artifact", err)
		}
		env.scratch.Register(sideEffect)
	} else if err := env.bridge.SaveSelectionNative(ctx, dest); err != nil {
		return "", err
	}
	return "native/" + id + ".pptx", nil
}
