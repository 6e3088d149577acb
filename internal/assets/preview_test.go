package assets_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

// stubRenderer satisfies the preview generation boundary without touching a
// real host application.
type stubRenderer struct {
	composeErr error
	exportErr  error
	composed   []string
	exported   []string
}

func (r *stubRenderer) ComposeDocument(_ context.Context, rec shape.Record) (string, error) {
	if r.composeErr != nil {
		return "", r.composeErr
	}
	doc := filepath.Join(os.TempDir(), "stub-"+rec.ID+".pptx")
	r.composed = append(r.composed, doc)
	return doc, nil
}

func (r *stubRenderer) ExportPNG(_ context.Context, docPath, pngPath string) error {
	if r.exportErr != nil {
		return r.exportErr
	}
	r.exported = append(r.exported, pngPath)
	return os.WriteFile(pngPath, []byte("rendered"), 0o644)
}

func TestGeneratePreviewWritesCanonicalFile(t *testing.T) {
	mgr, st, paths := newManager(t)
	rec := seedRecord(t, st, "captured-box-9", "basic")
	renderer := &stubRenderer{}

	rel, err := mgr.GeneratePreview(context.Background(), rec, renderer)
	if err != nil {
		t.Fatalf("GeneratePreview returned error: %v", err)
	}
	if want := shape.PreviewPath("basic", rec.ID); rel != want {
		t.Fatalf("expected %q, got %q", want, rel)
	}
	data, err := os.ReadFile(paths.PreviewFile("basic", rec.ID))
	if err != nil {
		t.Fatalf("expected rendered preview on disk: %v", err)
	}
	if string(data) != "rendered" {
		t.Fatalf("unexpected preview contents %q", data)
	}
	if len(renderer.composed) != 1 || len(renderer.exported) != 1 {
		t.Fatalf("expected one compose and one export, got %d/%d",
			len(renderer.composed), len(renderer.exported))
	}
}

func TestGeneratePreviewRequiresRenderer(t *testing.T) {
	mgr, st, _ := newManager(t)
	rec := seedRecord(t, st, "captured-box-10", "basic")

	_, err := mgr.GeneratePreview(context.Background(), rec, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGeneratePreviewRejectsNativeOnlyWithoutArtifact(t *testing.T) {
	mgr, st, _ := newManager(t)
	rec := seedRecord(t, st, "captured-group-1", "basic")
	rec.NativeOnly = true
	rec.NativePptx = ""

	_, err := mgr.GeneratePreview(context.Background(), rec, &stubRenderer{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGeneratePreviewPropagatesRendererErrors(t *testing.T) {
	mgr, st, _ := newManager(t)
	rec := seedRecord(t, st, "captured-box-11", "basic")
	boom := errors.New("compose blew up")

	_, err := mgr.GeneratePreview(context.Background(), rec, &stubRenderer{composeErr: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected compose error surfaced, got %v", err)
	}
}

// stubDirectRenderer satisfies the host-free fallback boundary.
type stubDirectRenderer struct {
	renderErr error
	rendered  []string
}

func (r *stubDirectRenderer) RenderPNG(_ shape.Record, pngPath string) error {
	if r.renderErr != nil {
		return r.renderErr
	}
	r.rendered = append(r.rendered, pngPath)
	return os.WriteFile(pngPath, []byte("rastered"), 0o644)
}

func TestGeneratePreviewDirectWritesCanonicalFile(t *testing.T) {
	mgr, st, paths := newManager(t)
	rec := seedRecord(t, st, "captured-box-20", "basic")
	renderer := &stubDirectRenderer{}

	rel, err := mgr.GeneratePreviewDirect(context.Background(), rec, renderer)
	if err != nil {
		t.Fatalf("GeneratePreviewDirect returned error: %v", err)
	}
	if want := shape.PreviewPath("basic", rec.ID); rel != want {
		t.Fatalf("expected %q, got %q", want, rel)
	}
	data, err := os.ReadFile(paths.PreviewFile("basic", rec.ID))
	if err != nil {
		t.Fatalf("expected preview on disk: %v", err)
	}
	if string(data) != "rastered" {
		t.Fatalf("unexpected preview contents %q", data)
	}
}

func TestGeneratePreviewDirectPatchesStrayPreviewField(t *testing.T) {
	mgr, st, _ := newManager(t)
	rec := seedRecord(t, st, "captured-box-21", "basic")
	rec.Preview = "arrows/" + rec.ID + ".png"

	if _, err := mgr.GeneratePreviewDirect(context.Background(), rec, &stubDirectRenderer{}); err != nil {
		t.Fatalf("GeneratePreviewDirect returned error: %v", err)
	}
	stored, err := st.Get(rec.ID, "basic")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if want := shape.PreviewPath("basic", rec.ID); stored.Preview != want {
		t.Fatalf("expected stored preview %q, got %q", want, stored.Preview)
	}
}

func TestGeneratePreviewDirectRejectsNativeOnly(t *testing.T) {
	mgr, st, _ := newManager(t)
	rec := seedRecord(t, st, "captured-group-2", "basic")
	rec.NativeOnly = true
	rec.NativePptx = "native/captured-group-2.pptx"
	renderer := &stubDirectRenderer{}

	_, err := mgr.GeneratePreviewDirect(context.Background(), rec, renderer)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(renderer.rendered) != 0 {
		t.Fatalf("renderer must not run for native-only records, rendered %v", renderer.rendered)
	}
}

func TestEnsurePlaceholderCreatesDecodableImage(t *testing.T) {
	mgr, _, paths := newManager(t)

	if err := mgr.EnsurePlaceholder(); err != nil {
		t.Fatalf("EnsurePlaceholder returned error: %v", err)
	}
	data, err := os.ReadFile(paths.PlaceholderFile())
	if err != nil {
		t.Fatalf("expected placeholder on disk: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("placeholder must be a valid PNG: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatal("placeholder image is empty")
	}

	// A second call must leave the existing file alone.
	if err := mgr.EnsurePlaceholder(); err != nil {
		t.Fatalf("second EnsurePlaceholder returned error: %v", err)
	}
	after, err := os.ReadFile(paths.PlaceholderFile())
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if !bytes.Equal(data, after) {
		t.Fatal("placeholder was rewritten on the second call")
	}
}

func TestPreviewLocationFallsBackToPlaceholder(t *testing.T) {
	mgr, st, paths := newManager(t)
	rec := seedRecord(t, st, "captured-box-12", "basic")
	if err := mgr.EnsurePlaceholder(); err != nil {
		t.Fatalf("EnsurePlaceholder returned error: %v", err)
	}

	if got := mgr.PreviewLocation(rec); got != paths.PlaceholderFile() {
		t.Fatalf("expected placeholder fallback, got %q", got)
	}

	writeFileAt(t, paths.PreviewFile("basic", rec.ID), []byte("png"))
	if got := mgr.PreviewLocation(rec); got != paths.PreviewFile("basic", rec.ID) {
		t.Fatalf("expected canonical preview, got %q", got)
	}
}
