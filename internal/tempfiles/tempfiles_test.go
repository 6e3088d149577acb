package tempfiles_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/tempfiles"
)

func TestCreateReservesUniquePaths(t *testing.T) {
	reg := tempfiles.NewRegistry(t.TempDir(), true, time.Minute, logging.NewNop())

	first, err := reg.Create("compose", ".pptx")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := reg.Create("compose", "pptx")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct scratch paths")
	}
	for _, path := range []string{first, second} {
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "compose-") || !strings.HasSuffix(base, ".pptx") {
			t.Fatalf("unexpected scratch name %q", base)
		}
	}
}

func TestCleanupDueRemovesAgedArtifacts(t *testing.T) {
	reg := tempfiles.NewRegistry(t.TempDir(), true, 0, logging.NewNop())

	path, err := reg.Create("render", ".png")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if removed := reg.CleanupDue(); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected artifact deleted, stat err = %v", err)
	}
}

func TestCleanupDueHonorsDelay(t *testing.T) {
	reg := tempfiles.NewRegistry(t.TempDir(), true, time.Hour, logging.NewNop())

	path, err := reg.Create("render", ".png")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if removed := reg.CleanupDue(); removed != 0 {
		t.Fatalf("artifact inside the delay window was removed (%d)", removed)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact retained: %v", err)
	}
}

func TestCleanupDueDisabled(t *testing.T) {
	reg := tempfiles.NewRegistry(t.TempDir(), false, 0, logging.NewNop())

	path, err := reg.Create("render", ".png")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if removed := reg.CleanupDue(); removed != 0 {
		t.Fatalf("auto cleanup is off, yet %d files were removed", removed)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact retained: %v", err)
	}
}

func TestSweepCollectsUnregisteredLeftovers(t *testing.T) {
	dir := t.TempDir()
	reg := tempfiles.NewRegistry(dir, true, time.Minute, logging.NewNop())

	// A leftover from a previous run: present on disk, unknown to the
	// registry, old enough to collect.
	stale := filepath.Join(dir, "compose-leftover.pptx")
	if err := os.WriteFile(stale, []byte("pptx"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	fresh := filepath.Join(dir, "compose-fresh.pptx")
	if err := os.WriteFile(fresh, []byte("pptx"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if removed := reg.Sweep(time.Hour); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale leftover collected, stat err = %v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file must survive the sweep: %v", err)
	}
}

func TestSweepMissingDirIsQuiet(t *testing.T) {
	reg := tempfiles.NewRegistry(filepath.Join(t.TempDir(), "never-made"), true, 0, logging.NewNop())
	if removed := reg.Sweep(0); removed != 0 {
		t.Fatalf("expected no removals, got %d", removed)
	}
}

func TestForgetKeepsPromotedArtifacts(t *testing.T) {
	reg := tempfiles.NewRegistry(t.TempDir(), true, 0, logging.NewNop())

	path, err := reg.Create("render", ".png")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	reg.Forget(path)

	if removed := reg.CleanupDue(); removed != 0 {
		t.Fatalf("forgotten artifact was removed (%d)", removed)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact retained: %v", err)
	}
}

func TestCloseRemovesEverythingRegistered(t *testing.T) {
	reg := tempfiles.NewRegistry(t.TempDir(), false, time.Hour, logging.NewNop())

	var paths []string
	for i := 0; i < 3; i++ {
		path, err := reg.Create("doc", ".pptx")
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if err := os.WriteFile(path, []byte("pptx"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		paths = append(paths, path)
	}

	if err := reg.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s deleted on close, stat err = %v", path, err)
		}
	}
}
