package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/cache"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

func writeStoreFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "basic.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write store file: %v", err)
	}
	return path
}

func sampleRecords() []shape.Record {
	return []shape.Record{{
		ID:       "captured-box-1",
		Name:     "Box",
		Category: "basic",
		Tags:     []string{"basic", "captured"},
		Preview:  "basic/captured-box-1.png",
		Definition: shape.Definition{
			Type: shape.KindRect,
			X:    1, Y: 1, W: 2, H: 2,
		},
	}}
}

func TestPutThenGetHits(t *testing.T) {
	file := writeStoreFile(t, t.TempDir())
	c := cache.New(true)

	c.Put("basic", file, sampleRecords())
	got, ok := c.Get("basic", file)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].ID != "captured-box-1" {
		t.Fatalf("unexpected cached records: %+v", got)
	}
}

func TestDisabledCacheNeverServes(t *testing.T) {
	file := writeStoreFile(t, t.TempDir())
	c := cache.New(false)

	c.Put("basic", file, sampleRecords())
	if _, ok := c.Get("basic", file); ok {
		t.Fatal("disabled cache must miss")
	}
	if c.Count() != 0 {
		t.Fatalf("disabled cache must not retain entries, got %d", c.Count())
	}
}

func TestModificationTimeMismatchEvicts(t *testing.T) {
	file := writeStoreFile(t, t.TempDir())
	c := cache.New(true)
	c.Put("basic", file, sampleRecords())

	// Simulate an external writer touching the store file.
	bumped := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(file, bumped, bumped); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, ok := c.Get("basic", file); ok {
		t.Fatal("expected miss after external modification")
	}
	if c.Count() != 0 {
		t.Fatal("expected stale entry evicted")
	}
}

func TestStatFailureEvicts(t *testing.T) {
	dir := t.TempDir()
	file := writeStoreFile(t, dir)
	c := cache.New(true)
	c.Put("basic", file, sampleRecords())

	if err := os.Remove(file); err != nil {
		t.Fatalf("remove store file: %v", err)
	}
	if _, ok := c.Get("basic", file); ok {
		t.Fatal("expected miss when store file vanished")
	}
	if c.Count() != 0 {
		t.Fatal("expected entry evicted")
	}
}

func TestPutSkipsUnstatableFile(t *testing.T) {
	c := cache.New(true)
	c.Put("basic", filepath.Join(t.TempDir(), "absent.json"), sampleRecords())
	if c.Count() != 0 {
		t.Fatal("expected no entry for unstatable file")
	}
}

func TestGetReturnsCopies(t *testing.T) {
	file := writeStoreFile(t, t.TempDir())
	c := cache.New(true)
	c.Put("basic", file, sampleRecords())

	first, ok := c.Get("basic", file)
	if !ok {
		t.Fatal("expected hit")
	}
	first[0].Name = "Mutated"
	first[0].Tags[0] = "mutated"

	second, ok := c.Get("basic", file)
	if !ok {
		t.Fatal("expected hit")
	}
	if second[0].Name != "Box" || second[0].Tags[0] != "basic" {
		t.Fatalf("cached records leaked caller mutation: %+v", second[0])
	}
}

func TestInvalidate(t *testing.T) {
	dir := t.TempDir()
	basic := writeStoreFile(t, dir)
	arrows := filepath.Join(dir, "arrows.json")
	if err := os.WriteFile(arrows, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write arrows store: %v", err)
	}

	c := cache.New(true)
	c.Put("basic", basic, sampleRecords())
	c.Put("arrows", arrows, nil)

	c.Invalidate("basic")
	if _, ok := c.Get("basic", basic); ok {
		t.Fatal("expected basic invalidated")
	}
	if _, ok := c.Get("arrows", arrows); !ok {
		t.Fatal("expected arrows untouched")
	}

	c.InvalidateAll()
	if c.Count() != 0 {
		t.Fatal("expected all entries dropped")
	}
}
