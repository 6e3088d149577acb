package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

// Renderer is the slice of the rendering boundary preview generation needs:
// synthesize a single-slide document for a record and rasterize it to PNG.
// Composed documents are scratch files owned by the renderer; the exported
// PNG is ours.
type Renderer interface {
	ComposeDocument(ctx context.Context, rec shape.Record) (string, error)
	ExportPNG(ctx context.Context, docPath, pngPath string) error
}

// DirectRenderer draws a record straight to PNG without an intermediate
// document. The host-free fallback path.
type DirectRenderer interface {
	RenderPNG(rec shape.Record, pngPath string) error
}

// GeneratePreview renders a record's preview PNG into its canonical location
// and patches the stored record when its preview field disagrees. Returns
// the library-relative preview path.
func (m *Manager) GeneratePreview(ctx context.Context, rec shape.Record, renderer Renderer) (string, error) {
	if renderer == nil {
		return "", services.Wrap(services.ErrConfiguration, "assets", "generate_preview", "no renderer available", nil)
	}
	if rec.NativeOnly && !rec.HasNative() {
		return "", services.Wrap(services.ErrValidation, "assets", "generate_preview",
			fmt.Sprintf("shape %s is native-only but carries no native artifact", rec.ID), nil)
	}

	docPath, err := renderer.ComposeDocument(ctx, rec)
	if err != nil {
		return "", err
	}
	dest := m.paths.PreviewFile(rec.Category, rec.ID)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrInternal, "assets", "generate_preview", "create preview directory", err)
	}
	if err := renderer.ExportPNG(ctx, docPath, dest); err != nil {
		return "", err
	}

	rel := shape.PreviewPath(rec.Category, rec.ID)
	if rec.Preview != rel {
		if err := m.store.Update(rec.ID, rec.Category, store.Patch{Preview: &rel}); err != nil {
			return "", err
		}
	}
	return rel, nil
}

// GeneratePreviewDirect renders a record's preview through a DirectRenderer.
// Same destination and record-patch contract as GeneratePreview; used when
// the host application is not around to rasterize for us.
func (m *Manager) GeneratePreviewDirect(ctx context.Context, rec shape.Record, renderer DirectRenderer) (string, error) {
	if renderer == nil {
		return "", services.Wrap(services.ErrConfiguration, "assets", "generate_preview", "no renderer available", nil)
	}
	if rec.NativeOnly {
		return "", services.Wrap(services.ErrValidation, "assets", "generate_preview",
			fmt.Sprintf("shape %s is native-only; its preview needs the host application", rec.ID), nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest := m.paths.PreviewFile(rec.Category, rec.ID)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrInternal, "assets", "generate_preview", "create preview directory", err)
	}
	if err := renderer.RenderPNG(rec, dest); err != nil {
		return "", err
	}

	rel := shape.PreviewPath(rec.Category, rec.ID)
	if rec.Preview != rel {
		if err := m.store.Update(rec.ID, rec.Category, store.Patch{Preview: &rel}); err != nil {
			return "", err
		}
	}
	return rel, nil
}

// PreviewLocation resolves the file a record's preview displays from: the
// record's own preview when the file exists, the shared placeholder
// otherwise. The fallback is display-time only; records never persist the
// placeholder path.
func (m *Manager) PreviewLocation(rec shape.Record) string {
	path := m.paths.ResolvePreview(rec.Preview)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return m.paths.PlaceholderFile()
}

// EnsurePlaceholder writes the shared placeholder image if it is missing.
func (m *Manager) EnsurePlaceholder() error {
	path := m.paths.PlaceholderFile()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrInternal, "assets", "placeholder", "stat placeholder image", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrInternal, "assets", "placeholder", "create assets directory", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, placeholderImage()); err != nil {
		return services.Wrap(services.ErrInternal, "assets", "placeholder", "encode placeholder image", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrInternal, "assets", "placeholder", "write placeholder image", err)
	}
	return nil
}

// placeholderImage draws the neutral tile shown for records whose preview
// has not been rendered yet: a light gray field with a darker border.
func placeholderImage() *image.RGBA {
	const size = 96
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	field := color.RGBA{R: 0xE8, G: 0xE8, B: 0xE8, A: 0xFF}
	border := color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: field}, image.Point{}, draw.Src)
	for x := 0; x < size; x++ {
		img.Set(x, 0, border)
		img.Set(x, size-1, border)
	}
	for y := 0; y < size; y++ {
		img.Set(0, y, border)
		img.Set(size-1, y, border)
	}
	return img
}
