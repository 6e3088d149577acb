// Package render turns stored shape records back into something a user can
// see. HostRenderer drives the live host application through the bridge;
// Rasterizer draws geometry previews in pure Go when no host is around.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthurhrk/Shapeslibrary/internal/bridge"
	"github.com/arthurhrk/Shapeslibrary/internal/fileutil"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/tempfiles"
)

// Renderer is the full rendering boundary: document synthesis for preview
// export plus the live insert and open flows.
type Renderer interface {
	ComposeDocument(ctx context.Context, rec shape.Record) (string, error)
	ExportPNG(ctx context.Context, docPath, pngPath string) error
	Insert(ctx context.Context, rec shape.Record) error
	Open(ctx context.Context, rec shape.Record) error
}

// Preview raster size, 4:3 like the host's default slide.
const (
	previewWidth  = 480
	previewHeight = 360
)

// HostRenderer implements Renderer against a running host application.
type HostRenderer struct {
	bridge     bridge.Bridge
	paths      *library.Paths
	scratch    *tempfiles.Registry
	forceExact bool
	logger     *slog.Logger
}

// NewHostRenderer wires the renderer over the bridge and scratch registry.
// forceExact rejects insert and open for records without a usable native
// artifact instead of falling back to a geometry re-draw.
func NewHostRenderer(b bridge.Bridge, paths *library.Paths, scratch *tempfiles.Registry, forceExact bool, logger *slog.Logger) (*HostRenderer, error) {
	if b == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "new", "bridge required", nil)
	}
	if paths == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "new", "library paths required", nil)
	}
	if scratch == nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "new", "scratch registry required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HostRenderer{
		bridge:     b,
		paths:      paths,
		scratch:    scratch,
		forceExact: forceExact,
		logger:     logging.NewComponentLogger(logger, "render"),
	}, nil
}

// ComposeDocument resolves the highest-fidelity document for a record: the
// native artifact when present (deck slides are extracted to scratch first),
// a host-drawn synthesis from the definition otherwise.
func (h *HostRenderer) ComposeDocument(ctx context.Context, rec shape.Record) (string, error) {
	native, err := h.resolveNative(ctx, rec)
	if err != nil {
		return "", err
	}
	if native != "" {
		return native, nil
	}
	if rec.NativeOnly {
		return "", services.Wrap(services.ErrValidation, "render", "compose",
			fmt.Sprintf("shape %s is native-only and its artifact is unavailable", rec.ID), nil)
	}
	def, err := definitionJSON(rec)
	if err != nil {
		return "", err
	}
	doc, err := h.scratch.Create("compose", ".pptx")
	if err != nil {
		return "", err
	}
	if err := h.bridge.ComposeShape(ctx, def, doc); err != nil {
		return "", err
	}
	return doc, nil
}

// ExportPNG rasterizes the first slide of docPath through the host.
func (h *HostRenderer) ExportPNG(ctx context.Context, docPath, pngPath string) error {
	if err := os.MkdirAll(filepath.Dir(pngPath), 0o755); err != nil {
		return services.Wrap(services.ErrInternal, "render", "export", "create preview directory", err)
	}
	return h.bridge.ExportRaster(ctx, docPath, pngPath, previewWidth, previewHeight)
}

// Insert places the shape into the frontmost document: an exact paste of the
// native artifact when one resolves, a re-draw from geometry otherwise.
func (h *HostRenderer) Insert(ctx context.Context, rec shape.Record) error {
	native, err := h.resolveNative(ctx, rec)
	if err != nil {
		return err
	}
	if native != "" {
		return h.bridge.InsertNative(ctx, native)
	}
	if err := h.requireInexact(rec, "insert"); err != nil {
		return err
	}
	def, err := definitionJSON(rec)
	if err != nil {
		return err
	}
	return h.bridge.InsertShape(ctx, def)
}

// Open loads a scratch copy of the shape's document into the host for manual
// inspection. The canonical artifact never opens directly: a stray save in
// the host must not rewrite library state.
func (h *HostRenderer) Open(ctx context.Context, rec shape.Record) error {
	native, err := h.resolveNative(ctx, rec)
	if err != nil {
		return err
	}
	if native != "" {
		doc := native
		if !h.isScratch(native) {
			copyPath, err := h.scratch.Create("open", ".pptx")
			if err != nil {
				return err
			}
			if err := fileutil.CopyFile(native, copyPath); err != nil {
				return services.Wrap(services.ErrInternal, "render", "open", "stage artifact copy", err)
			}
			doc = copyPath
		}
		return h.bridge.OpenDocument(ctx, doc)
	}
	if err := h.requireInexact(rec, "open"); err != nil {
		return err
	}
	def, err := definitionJSON(rec)
	if err != nil {
		return err
	}
	doc, err := h.scratch.Create("open", ".pptx")
	if err != nil {
		return err
	}
	if err := h.bridge.ComposeShape(ctx, def, doc); err != nil {
		return err
	}
	return h.bridge.OpenDocument(ctx, doc)
}

// resolveNative locates the record's native artifact as an openable file.
// Deck slide references extract to scratch; per-file artifacts resolve under
// the library root. A missing per-file artifact degrades to "" with a WARN
// so the geometry fallback can take over.
func (h *HostRenderer) resolveNative(ctx context.Context, rec shape.Record) (string, error) {
	if !rec.HasNative() {
		return "", nil
	}
	if shape.IsDeckRef(rec.NativePptx) {
		slide, ok := shape.ParseDeckRef(rec.NativePptx)
		if !ok {
			return "", services.Wrap(services.ErrValidation, "render", "resolve_native",
				fmt.Sprintf("shape %s carries malformed deck reference %q", rec.ID, rec.NativePptx), nil)
		}
		dst, err := h.scratch.Create("slide", ".pptx")
		if err != nil {
			return "", err
		}
		if err := h.bridge.ExtractSlide(ctx, h.paths.DeckFile(), slide, dst); err != nil {
			return "", err
		}
		return dst, nil
	}

	abs := filepath.Join(h.paths.Root(), filepath.FromSlash(rec.NativePptx))
	if _, err := os.Stat(abs); err != nil {
		h.logger.Warn("native artifact is unreadable",
			logging.String(logging.FieldEventType, "native_missing"),
			logging.String(logging.FieldShapeID, rec.ID),
			logging.String("path", abs),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run shapes repair, or re-capture the shape"),
			logging.String(logging.FieldImpact, "exact insert unavailable; geometry fallback used where allowed"))
		return "", nil
	}
	return abs, nil
}

// requireInexact rejects the geometry fallback when the record or the
// configuration demands the exact artifact.
func (h *HostRenderer) requireInexact(rec shape.Record, operation string) error {
	if rec.NativeOnly {
		return services.Wrap(services.ErrValidation, "render", operation,
			fmt.Sprintf("shape %s is native-only and its artifact is unavailable", rec.ID), nil)
	}
	if h.forceExact {
		return services.Wrap(services.ErrValidation, "render", operation,
			fmt.Sprintf("exact-only mode is on and shape %s has no usable native artifact", rec.ID), nil)
	}
	return nil
}

// isScratch reports whether path already lives under the scratch directory.
func (h *HostRenderer) isScratch(path string) bool {
	rel, err := filepath.Rel(h.scratch.Dir(), path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// scriptDefinition is what the draw scripts consume: the numeric host type
// code plus normalized geometry and styles.
type scriptDefinition struct {
	Type   int         `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	W      float64     `json:"w"`
	H      float64     `json:"h"`
	Rotate float64     `json:"rotate,omitempty"`
	Adj    []float64   `json:"adj,omitempty"`
	Fill   *shape.Fill `json:"fill,omitempty"`
	Line   *shape.Line `json:"line,omitempty"`
}

func definitionJSON(rec shape.Record) (string, error) {
	code, ok := shape.CodeFor(rec.Definition.Type)
	if !ok {
		return "", services.Wrap(services.ErrValidation, "render", "definition",
			fmt.Sprintf("shape kind %q cannot be drawn from geometry", rec.Definition.Type), nil)
	}
	def := scriptDefinition{
		Type:   code,
		X:      rec.Definition.X,
		Y:      rec.Definition.Y,
		W:      rec.Definition.W,
		H:      rec.Definition.H,
		Rotate: rec.Definition.Rotate,
		Adj:    rec.Definition.Adj,
		Fill:   rec.Definition.Fill,
		Line:   rec.Definition.Line,
	}
	data, err := json.Marshal(def)
	if err != nil {
		return "", services.Wrap(services.ErrInternal, "render", "definition", "marshal shape definition", err)
	}
	return string(data), nil
}
