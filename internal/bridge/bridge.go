package bridge

import (
	"context"

	"github.com/arthurhrk/Shapeslibrary/internal/capture"
)

// Bridge is the boundary to the host presentation application. The production
// implementation shells out to per-OS automation scripts; tests substitute a
// fake.
type Bridge interface {
	// CaptureSelection extracts the raw properties of the currently selected
	// shape in the frontmost document.
	CaptureSelection(ctx context.Context) (*capture.RawShape, error)
	// SaveSelectionNative saves the current selection as a single-slide native
	// document at destPath.
	SaveSelectionNative(ctx context.Context, destPath string) error
	// InsertNative pastes the contents of a native artifact into the frontmost
	// document.
	InsertNative(ctx context.Context, nativePath string) error
	// InsertDocument behaves like InsertNative for synthesized documents.
	InsertDocument(ctx context.Context, docPath string) error
	// InsertShape draws a shape from its definition JSON directly into the
	// frontmost document. The lower-fidelity path for records without a
	// native artifact.
	InsertShape(ctx context.Context, definitionJSON string) error
	// ComposeShape draws a shape from its definition JSON onto a fresh
	// single-slide document saved at destPath.
	ComposeShape(ctx context.Context, definitionJSON, destPath string) error
	// OpenDocument opens path in the host application for manual editing.
	OpenDocument(ctx context.Context, path string) error
	// ExportRaster renders the first slide of docPath to a PNG at pngPath.
	ExportRaster(ctx context.Context, docPath, pngPath string, width, height int) error
	// AppendSlide copies the first slide of srcPath onto the end of the deck
	// at deckPath, creating the deck when absent, and reports the slide number
	// the copy landed on.
	AppendSlide(ctx context.Context, deckPath, srcPath string) (int, error)
	// ExtractSlide saves one slide of the deck as a standalone document.
	ExtractSlide(ctx context.Context, deckPath string, slide int, dstPath string) error
	// HostAvailable reports whether the host application answers automation
	// calls right now.
	HostAvailable(ctx context.Context) bool
}

// Result is the JSON envelope every bridge script prints on stdout. Success
// discriminates: on failure only Error is meaningful, on success Shape or
// Slide carries the operation payload.
type Result struct {
	Success bool              `json:"success"`
	Shape   *capture.RawShape `json:"shape,omitempty"`
	Slide   int               `json:"slide,omitempty"`
	Error   string            `json:"error,omitempty"`
}
