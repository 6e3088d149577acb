package testsupport

import (
	"testing"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/cache"
	"github.com/arthurhrk/Shapeslibrary/internal/config"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

// MustOpenStore prepares the on-disk library layout for cfg and opens a
// record store over it.
func MustOpenStore(t testing.TB, cfg *config.Config) (*store.Store, *library.Paths) {
	t.Helper()

	paths, err := library.NewPathsAt(cfg.Paths.LibraryDir)
	if err != nil {
		t.Fatalf("library.NewPathsAt: %v", err)
	}
	if err := paths.EnsureLayout(); err != nil {
		t.Fatalf("paths.EnsureLayout: %v", err)
	}
	st, err := store.New(&paths, cache.New(cfg.Cache.Enabled), cfg.Categories(), logging.NewNop())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return st, &paths
}

// SeedRecord persists a minimal valid record for tests using the provided store.
func SeedRecord(t testing.TB, st *store.Store, id, category string) shape.Record {
	t.Helper()

	now := time.Now().UTC()
	rec := shape.Record{
		ID:       id,
		Name:     "Seeded " + id,
		Category: category,
		Tags:     []string{"captured", category},
		Preview:  shape.PreviewPath(category, id),
		Definition: shape.Definition{
			Type: shape.KindRect,
			X:    1, Y: 1, W: 2, H: 1,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := st.Add(rec); err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return rec
}
