package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/render"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/tempfiles"
	"github.com/arthurhrk/Shapeslibrary/internal/testsupport"
)

func newRenderer(t *testing.T, forceExact bool) (*render.HostRenderer, *testsupport.FakeBridge, *library.Paths, *tempfiles.Registry) {
	t.Helper()
	paths, err := library.NewPathsAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewPathsAt returned error: %v", err)
	}
	if err := paths.EnsureLayout(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	fake := testsupport.NewFakeBridge()
	scratch := tempfiles.NewRegistry(paths.TempDir(), false, 0, logging.NewNop())
	t.Cleanup(func() { scratch.Close() })
	renderer, err := render.NewHostRenderer(fake, &paths, scratch, forceExact, logging.NewNop())
	if err != nil {
		t.Fatalf("NewHostRenderer returned error: %v", err)
	}
	return renderer, fake, &paths, scratch
}

func geometryRecord(id string) shape.Record {
	return shape.Record{
		ID:       id,
		Name:     "Test " + id,
		Category: "basic",
		Definition: shape.Definition{
			Type: shape.KindRect,
			X:    1, Y: 1, W: 2, H: 1,
		},
	}
}

func nativeRecord(t *testing.T, paths *library.Paths, id string) shape.Record {
	t.Helper()
	rec := geometryRecord(id)
	rec.NativePptx = "native/" + id + ".pptx"
	testsupport.WriteFile(t, filepath.Join(paths.Root(), "native", id+".pptx"), []byte("native"))
	return rec
}

func TestComposeDocumentPrefersNativeArtifact(t *testing.T) {
	renderer, fake, paths, _ := newRenderer(t, false)
	rec := nativeRecord(t, paths, "captured-box-1")

	doc, err := renderer.ComposeDocument(context.Background(), rec)
	if err != nil {
		t.Fatalf("ComposeDocument returned error: %v", err)
	}
	want := filepath.Join(paths.Root(), "native", "captured-box-1.pptx")
	if doc != want {
		t.Fatalf("doc = %s, want %s", doc, want)
	}
	for _, call := range fake.Calls {
		if strings.HasPrefix(call, "compose-shape") {
			t.Fatal("native record should not synthesize a document")
		}
	}
}

func TestComposeDocumentSynthesizesFromGeometry(t *testing.T) {
	renderer, fake, _, scratch := newRenderer(t, false)

	doc, err := renderer.ComposeDocument(context.Background(), geometryRecord("captured-box-1"))
	if err != nil {
		t.Fatalf("ComposeDocument returned error: %v", err)
	}
	if !strings.HasPrefix(doc, scratch.Dir()) {
		t.Fatalf("synthesized doc %s should live under scratch %s", doc, scratch.Dir())
	}
	if _, err := os.Stat(doc); err != nil {
		t.Fatalf("synthesized doc missing: %v", err)
	}
	composed := false
	for _, call := range fake.Calls {
		if strings.HasPrefix(call, "compose-shape") {
			composed = true
		}
	}
	if !composed {
		t.Fatal("expected a compose-shape bridge call")
	}
}

func TestComposeDocumentExtractsDeckSlide(t *testing.T) {
	renderer, fake, paths, scratch := newRenderer(t, false)
	testsupport.WriteFile(t, paths.DeckFile(), []byte("deck"))
	rec := geometryRecord("captured-box-1")
	rec.NativePptx = shape.DeckRef(3)

	doc, err := renderer.ComposeDocument(context.Background(), rec)
	if err != nil {
		t.Fatalf("ComposeDocument returned error: %v", err)
	}
	if !strings.HasPrefix(doc, scratch.Dir()) {
		t.Fatalf("extracted doc %s should live under scratch", doc)
	}
	if len(fake.Extracted) != 1 || fake.Extracted[0] != 3 {
		t.Fatalf("extracted slides = %v, want [3]", fake.Extracted)
	}
}

func TestComposeDocumentMalformedDeckRef(t *testing.T) {
	renderer, _, _, _ := newRenderer(t, false)
	rec := geometryRecord("captured-box-1")
	rec.NativePptx = "deck:zero"

	if _, err := renderer.ComposeDocument(context.Background(), rec); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestComposeDocumentNativeOnlyWithoutArtifact(t *testing.T) {
	renderer, _, _, _ := newRenderer(t, false)
	rec := geometryRecord("captured-box-1")
	rec.NativePptx = "native/captured-box-1.pptx" // never written
	rec.NativeOnly = true

	if _, err := renderer.ComposeDocument(context.Background(), rec); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestInsertPastesNativeArtifact(t *testing.T) {
	renderer, fake, paths, _ := newRenderer(t, false)
	rec := nativeRecord(t, paths, "captured-box-1")

	if err := renderer.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	want := filepath.Join(paths.Root(), "native", "captured-box-1.pptx")
	if len(fake.Inserted) != 1 || fake.Inserted[0] != want {
		t.Fatalf("inserted = %v, want [%s]", fake.Inserted, want)
	}
}

func TestInsertFallsBackToGeometry(t *testing.T) {
	renderer, fake, _, _ := newRenderer(t, false)

	if err := renderer.Insert(context.Background(), geometryRecord("captured-box-1")); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if len(fake.Inserted) != 1 {
		t.Fatalf("inserted = %v, want one definition", fake.Inserted)
	}
	if !strings.Contains(fake.Inserted[0], `"type":1`) {
		t.Fatalf("definition JSON should carry the rect code: %s", fake.Inserted[0])
	}
}

func TestInsertForceExactRefusesFallback(t *testing.T) {
	renderer, fake, _, _ := newRenderer(t, true)

	err := renderer.Insert(context.Background(), geometryRecord("captured-box-1"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(fake.Inserted) != 0 {
		t.Fatalf("nothing should be inserted, got %v", fake.Inserted)
	}
}

func TestInsertMissingNativeFallsBack(t *testing.T) {
	renderer, fake, _, _ := newRenderer(t, false)
	rec := geometryRecord("captured-box-1")
	rec.NativePptx = "native/captured-box-1.pptx" // never written

	if err := renderer.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if len(fake.Inserted) != 1 || !strings.Contains(fake.Inserted[0], `"type"`) {
		t.Fatalf("expected geometry fallback, got %v", fake.Inserted)
	}
}

func TestOpenStagesScratchCopy(t *testing.T) {
	renderer, fake, paths, scratch := newRenderer(t, false)
	rec := nativeRecord(t, paths, "captured-box-1")

	if err := renderer.Open(context.Background(), rec); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if len(fake.Opened) != 1 {
		t.Fatalf("opened = %v, want one document", fake.Opened)
	}
	opened := fake.Opened[0]
	if !strings.HasPrefix(opened, scratch.Dir()) {
		t.Fatalf("opened %s should be a scratch copy", opened)
	}
	canonical := filepath.Join(paths.Root(), "native", "captured-box-1.pptx")
	if opened == canonical {
		t.Fatal("the canonical artifact must never open directly")
	}
	if _, err := os.Stat(opened); err != nil {
		t.Fatalf("scratch copy missing: %v", err)
	}
}

func TestOpenSynthesizesWithoutNative(t *testing.T) {
	renderer, fake, _, _ := newRenderer(t, false)

	if err := renderer.Open(context.Background(), geometryRecord("captured-box-1")); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if len(fake.Opened) != 1 {
		t.Fatalf("opened = %v, want one document", fake.Opened)
	}
}

func TestExportPNGCreatesParentDirectory(t *testing.T) {
	renderer, _, paths, _ := newRenderer(t, false)
	png := filepath.Join(paths.AssetsDir(), "basic", "captured-box-1.png")

	if err := renderer.ExportPNG(context.Background(), "doc.pptx", png); err != nil {
		t.Fatalf("ExportPNG returned error: %v", err)
	}
	if _, err := os.Stat(png); err != nil {
		t.Fatalf("exported png missing: %v", err)
	}
}

func TestInsertUndrawableKind(t *testing.T) {
	renderer, _, _, _ := newRenderer(t, false)
	rec := geometryRecord("captured-group-1")
	rec.Definition.Type = shape.KindNative

	if err := renderer.Insert(context.Background(), rec); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}
