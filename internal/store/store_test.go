package store_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/cache"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

var testCategories = []string{"basic", "arrows"}

func newStore(t *testing.T, logger *slog.Logger) (*store.Store, *library.Paths) {
	t.Helper()
	paths, err := library.NewPathsAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewPathsAt returned error: %v", err)
	}
	if err := paths.EnsureLayout(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	st, err := store.New(&paths, cache.New(true), testCategories, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return st, &paths
}

func record(id, name, category string) shape.Record {
	return shape.Record{
		ID:       id,
		Name:     name,
		Category: category,
		Tags:     []string{"captured", category},
		Preview:  shape.PreviewPath(category, id),
		Definition: shape.Definition{
			Type: shape.KindRect,
			X:    1, Y: 1, W: 2, H: 2,
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestAddUpsertsByID(t *testing.T) {
	st, _ := newStore(t, nil)

	first := record("captured-box-1", "Box", "basic")
	if _, err := st.Add(first); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	second := first
	second.Name = "Box Revised"
	second.Description = "a better box"
	if _, err := st.Add(second); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	records, err := st.List("basic")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record after upsert, got %d", len(records))
	}
	if records[0].Name != "Box Revised" || records[0].Description != "a better box" {
		t.Fatalf("expected replacement to win, got %+v", records[0])
	}
}

func TestWritePersistsSortedByName(t *testing.T) {
	st, paths := newStore(t, nil)

	for _, name := range []string{"Zebra", "Alpha", "Mango"} {
		rec := record("captured-"+strings.ToLower(name)+"-1", name, "basic")
		if _, err := st.Add(rec); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(paths.StoreFile("basic"))
	if err != nil {
		t.Fatalf("read store document: %v", err)
	}
	var onDisk []shape.Record
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("parse store document: %v", err)
	}
	got := []string{onDisk[0].Name, onDisk[1].Name, onDisk[2].Name}
	want := []string{"Alpha", "Mango", "Zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected names %v on disk, got %v", want, got)
		}
	}
}

func TestListMissingDocumentIsEmpty(t *testing.T) {
	st, _ := newStore(t, nil)
	records, err := st.List("arrows")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty category, got %d records", len(records))
	}
}

func TestCorruptDocumentTreatedAsEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	st, paths := newStore(t, logger)

	if err := os.WriteFile(paths.StoreFile("basic"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt document: %v", err)
	}

	records, err := st.List("basic")
	if err != nil {
		t.Fatalf("List must tolerate corruption, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty list, got %d", len(records))
	}
	if !strings.Contains(buf.String(), "store_parse_failed") {
		t.Fatalf("expected corruption warning in log, got: %s", buf.String())
	}

	sidelined, err := os.ReadFile(paths.StoreFile("basic") + ".corrupt")
	if err != nil {
		t.Fatalf("read sidelined document: %v", err)
	}
	if string(sidelined) != "{not json" {
		t.Fatalf("sidelined bytes altered: %q", sidelined)
	}

	// A later save must not touch the sidelined copy.
	if _, err := st.Add(record("captured-box-9", "Box", "basic")); err != nil {
		t.Fatalf("Add after corruption: %v", err)
	}
	if _, err := os.Stat(paths.StoreFile("basic") + ".corrupt"); err != nil {
		t.Fatalf("sidelined document lost after save: %v", err)
	}
}

func TestRemoveMissingLeavesDocumentUntouched(t *testing.T) {
	st, paths := newStore(t, nil)
	if _, err := st.Add(record("captured-box-1", "Box", "basic")); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	before, err := os.ReadFile(paths.StoreFile("basic"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}

	err = st.Remove("missing-id", "basic")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	after, err := os.ReadFile(paths.StoreFile("basic"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("failed remove must not rewrite the document")
	}
}

func TestRemoveDeletesRecord(t *testing.T) {
	st, _ := newStore(t, nil)
	rec := record("captured-box-1", "Box", "basic")
	if _, err := st.Add(rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := st.Remove(rec.ID, "basic"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if st.Exists(rec.ID, "basic") {
		t.Fatal("expected record gone")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	st, _ := newStore(t, nil)
	rec := record("captured-box-1", "Box", "basic")
	rec.UpdatedAt = time.Time{}
	if _, err := st.Add(rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	name := "Renamed Box"
	desc := "updated description"
	err := st.Update(rec.ID, "basic", store.Patch{
		Name:        &name,
		Description: &desc,
		Tags:        []string{"box", "renamed"},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, err := st.Get(rec.ID, "basic")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != name || got.Description != desc {
		t.Fatalf("expected merged fields, got %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "box" {
		t.Fatalf("expected replaced tags, got %v", got.Tags)
	}
	if got.ID != rec.ID || got.Category != "basic" {
		t.Fatal("id and category must not change through Update")
	}
	if got.Preview != rec.Preview {
		t.Fatalf("preview must stay untouched, got %q", got.Preview)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("expected UpdatedAt stamped")
	}
}

func TestUpdateUnknownIDFails(t *testing.T) {
	st, _ := newStore(t, nil)
	name := "x"
	err := st.Update("missing", "basic", store.Patch{Name: &name})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateRejectsForeignPreviewPath(t *testing.T) {
	st, _ := newStore(t, nil)
	rec := record("captured-box-1", "Box", "basic")
	if _, err := st.Add(rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	preview := "arrows/captured-box-1.png"
	err := st.Update(rec.ID, "basic", store.Patch{Preview: &preview})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddValidation(t *testing.T) {
	st, _ := newStore(t, nil)

	if _, err := st.Add(record("captured-x-1", "X", "nonsense")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown category, got %v", err)
	}

	rec := record("captured-x-1", "X", "basic")
	rec.Preview = "arrows/captured-x-1.png"
	if _, err := st.Add(rec); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for mismatched preview, got %v", err)
	}

	rec.Preview = ""
	if _, err := st.Add(rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	got, err := st.Get(rec.ID, "basic")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Preview != "basic/captured-x-1.png" {
		t.Fatalf("expected canonical preview path assigned, got %q", got.Preview)
	}
}

func TestListReflectsAddImmediately(t *testing.T) {
	st, _ := newStore(t, nil)
	if _, err := st.List("basic"); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if _, err := st.Add(record("captured-box-1", "Box", "basic")); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	records, err := st.List("basic")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected fresh read after add, got %d records", len(records))
	}
}

func TestExternalEditDefeatsCache(t *testing.T) {
	st, paths := newStore(t, nil)
	if _, err := st.Add(record("captured-box-1", "Box", "basic")); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if _, err := st.List("basic"); err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	// Another process rewrites the document behind the store's back.
	external := []shape.Record{record("captured-box-1", "Box", "basic"), record("captured-star-2", "Star", "basic")}
	data, err := json.MarshalIndent(external, "", "  ")
	if err != nil {
		t.Fatalf("marshal external records: %v", err)
	}
	file := paths.StoreFile("basic")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("external write: %v", err)
	}
	bumped := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(file, bumped, bumped); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	records, err := st.List("basic")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected fresh load after external edit, got %d records", len(records))
	}
}

func TestFindScansCategories(t *testing.T) {
	st, _ := newStore(t, nil)
	rec := record("captured-arrow-9", "Pointer", "arrows")
	if _, err := st.Add(rec); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got, err := st.Find(rec.ID)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if got.Category != "arrows" {
		t.Fatalf("expected arrows record, got %+v", got)
	}

	if _, err := st.Find("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCountsAndTotal(t *testing.T) {
	st, _ := newStore(t, nil)
	seed := []shape.Record{
		record("captured-box-1", "Box", "basic"),
		record("captured-star-2", "Star", "basic"),
		record("captured-arrow-3", "Arrow", "arrows"),
	}
	for _, rec := range seed {
		if _, err := st.Add(rec); err != nil {
			t.Fatalf("Add %s: %v", rec.ID, err)
		}
	}

	counts := st.Counts()
	if counts["basic"] != 2 || counts["arrows"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if st.Total() != 3 {
		t.Fatalf("expected total 3, got %d", st.Total())
	}
}
