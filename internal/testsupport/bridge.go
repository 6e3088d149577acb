package testsupport

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/arthurhrk/Shapeslibrary/internal/capture"
)

// FakeBridge implements bridge.Bridge in process. File-producing operations
// write small placeholder artifacts so move/verify logic has something real
// to act on; AppendSlide grows a per-deck slide counter. Error fields, when
// set, fail the matching operation.
type FakeBridge struct {
	mu sync.Mutex

	// Raw is returned by CaptureSelection. Nil falls back to a plain
	// rectangle selection.
	Raw       *capture.RawShape
	Available bool

	CaptureErr error
	SaveErr    error
	InsertErr  error
	ComposeErr error
	OpenErr    error
	ExportErr  error
	AppendErr  error
	ExtractErr error

	Calls     []string
	Inserted  []string
	Opened    []string
	Extracted []int
	slides    map[string]int
}

// NewFakeBridge returns a fake with an available host and empty decks.
func NewFakeBridge() *FakeBridge {
	return &FakeBridge{
		Available: true,
		slides:    make(map[string]int),
	}
}

func (f *FakeBridge) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

// CaptureSelection returns the scripted raw shape.
func (f *FakeBridge) CaptureSelection(ctx context.Context) (*capture.RawShape, error) {
	f.record("capture-shape")
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	if f.Raw != nil {
		raw := *f.Raw
		return &raw, nil
	}
	x, y, w, h := 72.0, 72.0, 144.0, 72.0
	return &capture.RawShape{
		Name:   "Rectangle 1",
		Type:   1,
		X:      &x,
		Y:      &y,
		Width:  &w,
		Height: &h,
	}, nil
}

// SaveSelectionNative writes a placeholder native document at destPath.
func (f *FakeBridge) SaveSelectionNative(ctx context.Context, destPath string) error {
	f.record("save-selection " + destPath)
	if f.SaveErr != nil {
		return f.SaveErr
	}
	return writePlaceholder(destPath, "native selection")
}

// InsertNative records the artifact it would paste.
func (f *FakeBridge) InsertNative(ctx context.Context, nativePath string) error {
	f.record("insert-native " + nativePath)
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserted = append(f.Inserted, nativePath)
	return nil
}

// InsertDocument records the synthesized document it would paste.
func (f *FakeBridge) InsertDocument(ctx context.Context, docPath string) error {
	f.record("insert-document " + docPath)
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserted = append(f.Inserted, docPath)
	return nil
}

// InsertShape records the definition it would draw.
func (f *FakeBridge) InsertShape(ctx context.Context, definitionJSON string) error {
	f.record("insert-shape")
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Inserted = append(f.Inserted, definitionJSON)
	return nil
}

// ComposeShape writes a placeholder document at destPath.
func (f *FakeBridge) ComposeShape(ctx context.Context, definitionJSON, destPath string) error {
	f.record("compose-shape " + destPath)
	if f.ComposeErr != nil {
		return f.ComposeErr
	}
	return writePlaceholder(destPath, definitionJSON)
}

// OpenDocument records the document it would open.
func (f *FakeBridge) OpenDocument(ctx context.Context, path string) error {
	f.record("open-document " + path)
	if f.OpenErr != nil {
		return f.OpenErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Opened = append(f.Opened, path)
	return nil
}

// ExportRaster writes a small valid PNG at pngPath.
func (f *FakeBridge) ExportRaster(ctx context.Context, docPath, pngPath string, width, height int) error {
	f.record("export-raster " + pngPath)
	if f.ExportErr != nil {
		return f.ExportErr
	}
	if err := os.MkdirAll(filepath.Dir(pngPath), 0o755); err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(0, 0, color.RGBA{R: 0x42, G: 0x85, B: 0xF4, A: 0xFF})
	out, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

// AppendSlide grows the deck at deckPath by one slide and reports its number.
func (f *FakeBridge) AppendSlide(ctx context.Context, deckPath, srcPath string) (int, error) {
	f.record(fmt.Sprintf("append-slide %s <- %s", deckPath, srcPath))
	if f.AppendErr != nil {
		return 0, f.AppendErr
	}
	if err := writePlaceholder(deckPath, "deck"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slides[deckPath]++
	return f.slides[deckPath], nil
}

// ExtractSlide writes a placeholder single-slide document at dstPath.
func (f *FakeBridge) ExtractSlide(ctx context.Context, deckPath string, slide int, dstPath string) error {
	f.record(fmt.Sprintf("extract-slide %d %s", slide, deckPath))
	if f.ExtractErr != nil {
		return f.ExtractErr
	}
	f.mu.Lock()
	f.Extracted = append(f.Extracted, slide)
	f.mu.Unlock()
	return writePlaceholder(dstPath, fmt.Sprintf("slide %d of %s", slide, deckPath))
}

// HostAvailable reports the scripted availability flag.
func (f *FakeBridge) HostAvailable(ctx context.Context) bool {
	f.record("host-available")
	return f.Available
}

// SlideCount reports how many slides the fake appended to deckPath.
func (f *FakeBridge) SlideCount(deckPath string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slides[deckPath]
}

func writePlaceholder(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
