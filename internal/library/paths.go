package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthurhrk/Shapeslibrary/internal/config"
)

const (
	storeDirName     = "shapes"
	assetsDirName    = "assets"
	nativeDirName    = "native"
	tempDirName      = "tmp"
	deckFileName     = "library_deck.pptx"
	deckManifestName = "library_deck.json"
	repairMarkerName = ".repair_stamp"
	lockFileName     = ".shapes.lock"
	placeholderName  = "placeholder.png"
	journalFileName  = "journal.db"
)

// Paths resolves every location inside a shape library root.
type Paths struct {
	root string
}

// NewPaths derives the library layout from configuration. The configured
// library_dir is already expanded and absolute after config.Load.
func NewPaths(cfg *config.Config) (Paths, error) {
	if cfg == nil || strings.TrimSpace(cfg.Paths.LibraryDir) == "" {
		return Paths{}, fmt.Errorf("library: no library_dir configured")
	}
	return Paths{root: cfg.Paths.LibraryDir}, nil
}

// NewPathsAt builds a layout rooted at an explicit directory. Used by tests
// and tools that bypass configuration.
func NewPathsAt(root string) (Paths, error) {
	expanded, err := config.ExpandPath(root)
	if err != nil {
		return Paths{}, fmt.Errorf("library: resolve root: %w", err)
	}
	return Paths{root: expanded}, nil
}

func (p Paths) Root() string { return p.root }

// StoreDir is the directory holding one JSON document per category.
func (p Paths) StoreDir() string { return filepath.Join(p.root, storeDirName) }

// StoreFile is the JSON document for a category.
func (p Paths) StoreFile(category string) string {
	return filepath.Join(p.StoreDir(), category+".json")
}

// AssetsDir is the root of preview images, partitioned by category.
func (p Paths) AssetsDir() string { return filepath.Join(p.root, assetsDirName) }

// PreviewDir is the preview directory for a category.
func (p Paths) PreviewDir(category string) string {
	return filepath.Join(p.AssetsDir(), category)
}

// PreviewFile is the absolute preview path for a record.
func (p Paths) PreviewFile(category, id string) string {
	return filepath.Join(p.PreviewDir(category), id+".png")
}

// ResolvePreview turns a record's assets-relative preview path into an
// absolute one.
func (p Paths) ResolvePreview(rel string) string {
	return filepath.Join(p.AssetsDir(), filepath.FromSlash(rel))
}

// PlaceholderFile is the preview shown before a real one exists.
func (p Paths) PlaceholderFile() string {
	return filepath.Join(p.AssetsDir(), placeholderName)
}

// NativeDir holds per-shape native artifacts in per-file mode.
func (p Paths) NativeDir() string { return filepath.Join(p.root, nativeDirName) }

// NativeFile is the per-file native artifact path for a record.
func (p Paths) NativeFile(id string) string {
	return filepath.Join(p.NativeDir(), id+".pptx")
}

// DeckFile is the aggregate deck holding native slides in deck mode.
func (p Paths) DeckFile() string { return filepath.Join(p.root, deckFileName) }

// DeckManifest maps record ids to deck slide numbers.
func (p Paths) DeckManifest() string { return filepath.Join(p.root, deckManifestName) }

// RepairMarker is the informational stamp written after orphan repair.
func (p Paths) RepairMarker() string { return filepath.Join(p.root, repairMarkerName) }

// LockFile serializes mutating operations across CLI processes.
func (p Paths) LockFile() string { return filepath.Join(p.root, lockFileName) }

// TempDir holds short-lived render and capture artifacts.
func (p Paths) TempDir() string { return filepath.Join(p.root, tempDirName) }

// JournalFile is the SQLite operation journal.
func (p Paths) JournalFile() string { return filepath.Join(p.root, journalFileName) }

// EnsureLayout creates the directories a library root needs. It is safe to
// call repeatedly.
func (p Paths) EnsureLayout() error {
	for _, dir := range []string{p.root, p.StoreDir(), p.AssetsDir(), p.NativeDir(), p.TempDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("library: create directory %q: %w", dir, err)
		}
	}
	return nil
}
