package library_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/config"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
)

func newTestPaths(t *testing.T) library.Paths {
	t.Helper()
	paths, err := library.NewPathsAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewPathsAt returned error: %v", err)
	}
	return paths
}

func TestNewPathsUsesConfiguredRoot(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = root

	paths, err := library.NewPaths(&cfg)
	if err != nil {
		t.Fatalf("NewPaths returned error: %v", err)
	}
	if paths.Root() != root {
		t.Fatalf("unexpected root: %q", paths.Root())
	}
}

func TestLayoutLocations(t *testing.T) {
	paths := newTestPaths(t)
	root := paths.Root()

	cases := []struct {
		got  string
		want string
	}{
		{paths.StoreFile("arrows"), filepath.Join(root, "shapes", "arrows.json")},
		{paths.PreviewFile("arrows", "captured-arrow1-k2x"), filepath.Join(root, "assets", "arrows", "captured-arrow1-k2x.png")},
		{paths.NativeFile("captured-arrow1-k2x"), filepath.Join(root, "native", "captured-arrow1-k2x.pptx")},
		{paths.DeckFile(), filepath.Join(root, "library_deck.pptx")},
		{paths.DeckManifest(), filepath.Join(root, "library_deck.json")},
		{paths.RepairMarker(), filepath.Join(root, ".repair_stamp")},
		{paths.TempDir(), filepath.Join(root, "tmp")},
		{paths.JournalFile(), filepath.Join(root, "journal.db")},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("path mismatch: got %q want %q", tc.got, tc.want)
		}
	}
}

func TestResolvePreviewJoinsAssetsDir(t *testing.T) {
	paths := newTestPaths(t)
	got := paths.ResolvePreview("arrows/captured-arrow1-k2x.png")
	want := filepath.Join(paths.AssetsDir(), "arrows", "captured-arrow1-k2x.png")
	if got != want {
		t.Fatalf("ResolvePreview = %q, want %q", got, want)
	}
}

func TestEnsureLayoutCreatesDirectories(t *testing.T) {
	paths := newTestPaths(t)

	if err := paths.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout returned error: %v", err)
	}
	for _, dir := range []string{paths.StoreDir(), paths.AssetsDir(), paths.NativeDir(), paths.TempDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}

	// Second run is a no-op.
	if err := paths.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout rerun returned error: %v", err)
	}
}

func TestLockExcludesSecondHolder(t *testing.T) {
	paths := newTestPaths(t)
	if err := paths.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout returned error: %v", err)
	}

	first := library.NewLock(paths)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := first.Acquire(ctx); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer first.Release()

	second := library.NewLock(paths)
	ok, err := second.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire returned error: %v", err)
	}
	if ok {
		t.Fatal("expected second lock attempt to fail while first is held")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	ok, err = second.TryAcquire()
	if err != nil || !ok {
		t.Fatalf("expected second acquire after release, got ok=%v err=%v", ok, err)
	}
	_ = second.Release()
}
