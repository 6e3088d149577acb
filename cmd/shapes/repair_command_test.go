package main

import (
	"errors"
	"os"
	"testing"

	"github.com/arthurhrk/Shapeslibrary/internal/testsupport"
)

func TestCLIRepairRelocatesDriftedPreview(t *testing.T) {
	env := setupCLITestEnv(t)
	rec := testsupport.SeedRecord(t, env.store, "drifter", "basic")
	// The preview file sits under arrows while the record says basic.
	testsupport.WritePNG(t, env.paths.PreviewFile("arrows", rec.ID))

	out, _, err := runCLI(t, env, "repair", "--dry-run")
	if err != nil {
		t.Fatalf("repair --dry-run: %v", err)
	}
	requireContains(t, out, "Would repair 1 preview(s)")
	if _, err := os.Stat(env.paths.PreviewFile("arrows", rec.ID)); err != nil {
		t.Fatalf("dry run must not move files: %v", err)
	}
	if _, err := os.Stat(env.paths.RepairMarker()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run must not stamp the marker, stat err %v", err)
	}

	out, _, err = runCLI(t, env, "repair")
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	requireContains(t, out, "Repaired 1 preview(s)")
	if _, err := os.Stat(env.paths.PreviewFile("basic", rec.ID)); err != nil {
		t.Fatalf("preview not relocated: %v", err)
	}
	if _, err := os.Stat(env.paths.PreviewFile("arrows", rec.ID)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stray preview still present, stat err %v", err)
	}
	if _, err := os.Stat(env.paths.RepairMarker()); err != nil {
		t.Fatalf("repair marker missing: %v", err)
	}

	out, _, err = runCLI(t, env, "repair")
	if err != nil {
		t.Fatalf("second repair: %v", err)
	}
	requireContains(t, out, "Repaired 0 preview(s)")
}

func TestCLIRepairReportsUnownedFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	ghost := env.paths.PreviewFile("basic", "captured-ghost-9")
	testsupport.WritePNG(t, ghost)

	out, _, err := runCLI(t, env, "repair")
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	requireContains(t, out, "Repaired 0 preview(s)")
	requireContains(t, out, "Unowned preview files (left in place):")
	requireContains(t, out, ghost)

	if _, err := os.Stat(ghost); err != nil {
		t.Fatalf("unowned file must be left in place: %v", err)
	}
}
