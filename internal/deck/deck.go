package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/bridge"
	"github.com/arthurhrk/Shapeslibrary/internal/fileutil"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/tempfiles"
)

// manifestVersion is the current manifest format version.
const manifestVersion = 1

// Entry maps one record id to the deck slide holding its native artifact.
type Entry struct {
	ID      string    `json:"id"`
	Slide   int       `json:"slide"`
	AddedAt time.Time `json:"addedAt"`
}

type manifest struct {
	Version int `json:"version"`
	// Slides is the number of slides physically present in the deck file,
	// including stale ones left behind by removals.
	Slides  int     `json:"slides"`
	Entries []Entry `json:"entries"`
}

// Status summarizes the deck for the status command.
type Status struct {
	Path    string
	Exists  bool
	Entries int
	Slides  int
	// Stale counts slides no entry references anymore. Rebuild reclaims them.
	Stale int
}

// Deck bookkeeps the aggregate deck file and its manifest.
type Deck struct {
	paths   *library.Paths
	bridge  bridge.Bridge
	scratch *tempfiles.Registry
	logger  *slog.Logger

	mu  sync.Mutex
	man manifest
}

// New loads the manifest (tolerantly: a corrupt manifest starts empty with a
// WARN, matching the store's damaged-document policy) and returns the deck
// manager.
func New(paths *library.Paths, b bridge.Bridge, scratch *tempfiles.Registry, logger *slog.Logger) (*Deck, error) {
	if paths == nil {
		return nil, services.Wrap(services.ErrConfiguration, "deck", "new", "library paths required", nil)
	}
	if b == nil {
		return nil, services.Wrap(services.ErrConfiguration, "deck", "new", "bridge required", nil)
	}
	if scratch == nil {
		return nil, services.Wrap(services.ErrConfiguration, "deck", "new", "scratch registry required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Deck{
		paths:   paths,
		bridge:  b,
		scratch: scratch,
		logger:  logging.NewComponentLogger(logger, "deck"),
	}
	d.man = d.loadManifest()
	return d, nil
}

// Add appends the native document at nativePath onto the deck and records
// the slide it landed on. Returns the slide number for the record's deck
// reference. An id already present is re-pointed at the new slide; its old
// slide goes stale.
func (d *Deck) Add(ctx context.Context, id, nativePath string) (int, error) {
	if id == "" {
		return 0, services.Wrap(services.ErrValidation, "deck", "add", "record id required", nil)
	}
	slide, err := d.bridge.AppendSlide(ctx, d.paths.DeckFile(), nativePath)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if slide > d.man.Slides {
		d.man.Slides = slide
	}
	replaced := false
	for i := range d.man.Entries {
		if d.man.Entries[i].ID == id {
			d.man.Entries[i].Slide = slide
			d.man.Entries[i].AddedAt = time.Now().UTC()
			replaced = true
			break
		}
	}
	if !replaced {
		d.man.Entries = append(d.man.Entries, Entry{ID: id, Slide: slide, AddedAt: time.Now().UTC()})
	}
	if err := d.saveManifestLocked(); err != nil {
		return 0, err
	}
	d.logger.Debug("added native artifact to deck",
		logging.String(logging.FieldShapeID, id),
		logging.Int("slide", slide))
	return slide, nil
}

// Resolve returns the slide holding id's native artifact.
func (d *Deck) Resolve(id string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, entry := range d.man.Entries {
		if entry.ID == id {
			return entry.Slide, true
		}
	}
	return 0, false
}

// Extract saves id's slide as a standalone document at dstPath.
func (d *Deck) Extract(ctx context.Context, id, dstPath string) error {
	slide, ok := d.Resolve(id)
	if !ok {
		return services.Wrap(services.ErrNotFound, "deck", "extract",
			fmt.Sprintf("shape %q has no deck entry", id), nil)
	}
	return d.bridge.ExtractSlide(ctx, d.paths.DeckFile(), slide, dstPath)
}

// Remove drops id's manifest entry. The slide itself stays in the deck file
// as a stale slide until the next rebuild; editing slides out of a live deck
// is not worth the host round-trips on every removal.
func (d *Deck) Remove(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.man.Entries[:0]
	found := false
	for _, entry := range d.man.Entries {
		if entry.ID == id {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return services.Wrap(services.ErrNotFound, "deck", "remove",
			fmt.Sprintf("shape %q has no deck entry", id), nil)
	}
	d.man.Entries = kept
	return d.saveManifestLocked()
}

// Rebuild compacts the deck: every current entry's slide is extracted and
// re-appended to a fresh deck, stale slides are dropped, and the manifest is
// rewritten against the new slide numbers. Returns the new slide number per
// id so callers can re-point record references. The old deck file is
// replaced only after the new one is complete.
func (d *Deck) Rebuild(ctx context.Context) (map[string]int, error) {
	d.mu.Lock()
	entries := make([]Entry, len(d.man.Entries))
	copy(entries, d.man.Entries)
	d.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Slide < entries[j].Slide })

	freshDeck, err := d.scratch.Create("deck-rebuild", ".pptx")
	if err != nil {
		return nil, err
	}

	slides := make(map[string]int, len(entries))
	rebuilt := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		slidePath, err := d.scratch.Create("deck-slide", ".pptx")
		if err != nil {
			return nil, err
		}
		if err := d.bridge.ExtractSlide(ctx, d.paths.DeckFile(), entry.Slide, slidePath); err != nil {
			return nil, services.Wrap(services.ErrBridge, "deck", "rebuild",
				fmt.Sprintf("extract slide %d for shape %q", entry.Slide, entry.ID), err)
		}
		newSlide, err := d.bridge.AppendSlide(ctx, freshDeck, slidePath)
		if err != nil {
			return nil, services.Wrap(services.ErrBridge, "deck", "rebuild",
				fmt.Sprintf("append slide for shape %q", entry.ID), err)
		}
		slides[entry.ID] = newSlide
		rebuilt = append(rebuilt, Entry{ID: entry.ID, Slide: newSlide, AddedAt: entry.AddedAt})
	}

	if err := d.replaceDeckFile(freshDeck, len(rebuilt) > 0); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.man.Entries = rebuilt
	d.man.Slides = len(rebuilt)
	if err := d.saveManifestLocked(); err != nil {
		return nil, err
	}
	d.logger.Info("rebuilt aggregate deck",
		logging.Int("entries", len(rebuilt)))
	return slides, nil
}

// replaceDeckFile swaps the rebuilt deck into place. With no surviving
// entries there is no fresh file to promote; the old deck is removed.
func (d *Deck) replaceDeckFile(freshDeck string, hasEntries bool) error {
	dest := d.paths.DeckFile()
	if !hasEntries {
		if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrInternal, "deck", "rebuild", "remove empty deck", err)
		}
		return nil
	}
	if err := os.Rename(freshDeck, dest); err == nil {
		d.scratch.Forget(freshDeck)
		return nil
	}
	if err := fileutil.CopyFileVerified(freshDeck, dest); err != nil {
		return services.Wrap(services.ErrInternal, "deck", "rebuild", "replace deck file", err)
	}
	return nil
}

// Status reports entry, slide, and stale counts for the status command.
func (d *Deck) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	status := Status{
		Path:    d.paths.DeckFile(),
		Entries: len(d.man.Entries),
		Slides:  d.man.Slides,
	}
	if stale := status.Slides - status.Entries; stale > 0 {
		status.Stale = stale
	}
	if _, err := os.Stat(status.Path); err == nil {
		status.Exists = true
	}
	return status
}

// Entries returns a copy of the manifest entries, slide order ascending.
func (d *Deck) Entries() []Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Entry, len(d.man.Entries))
	copy(out, d.man.Entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Slide < out[j].Slide })
	return out
}

// VerifyManifest inspects the manifest file without opening a Deck, for
// doctor checks that need corruption surfaced instead of the tolerant empty
// load. A missing manifest is fine; entries that outrun the deck are not.
func VerifyManifest(paths *library.Paths) (Status, error) {
	status := Status{Path: paths.DeckFile()}
	data, err := os.ReadFile(paths.DeckManifest())
	if errors.Is(err, fs.ErrNotExist) {
		return status, nil
	}
	if err != nil {
		return status, fmt.Errorf("read manifest: %w", err)
	}
	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return status, fmt.Errorf("parse manifest: %w", err)
	}
	status.Entries = len(man.Entries)
	status.Slides = man.Slides
	if stale := man.Slides - len(man.Entries); stale > 0 {
		status.Stale = stale
	}
	if _, err := os.Stat(status.Path); err == nil {
		status.Exists = true
	}
	if status.Entries > man.Slides {
		return status, fmt.Errorf("manifest lists %d entries but the deck holds %d slides", status.Entries, man.Slides)
	}
	for _, entry := range man.Entries {
		if entry.Slide < 1 || entry.Slide > man.Slides {
			return status, fmt.Errorf("entry %q points at slide %d outside 1..%d", entry.ID, entry.Slide, man.Slides)
		}
	}
	if status.Entries > 0 && !status.Exists {
		return status, fmt.Errorf("manifest lists %d entries but the deck file is missing", status.Entries)
	}
	return status, nil
}

func (d *Deck) loadManifest() manifest {
	empty := manifest{Version: manifestVersion}
	data, err := os.ReadFile(d.paths.DeckManifest())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			d.logger.Warn("failed to read deck manifest",
				logging.String(logging.FieldEventType, "deck_manifest_read_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions under the library root"),
				logging.String(logging.FieldImpact, "deck entries unavailable until the manifest is readable"))
		}
		return empty
	}
	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		d.logger.Warn("deck manifest is corrupt",
			logging.String(logging.FieldEventType, "deck_manifest_parse_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "restore the manifest from backup, or rebuild the deck"),
			logging.String(logging.FieldImpact, "deck entries start empty; existing slides become stale"))
		return empty
	}
	man.Version = manifestVersion
	return man
}

func (d *Deck) saveManifestLocked() error {
	data, err := json.MarshalIndent(d.man, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrInternal, "deck", "save_manifest", "marshal manifest", err)
	}
	if err := fileutil.WriteFileAtomic(d.paths.DeckManifest(), data, 0o644); err != nil {
		return services.Wrap(services.ErrInternal, "deck", "save_manifest", "replace manifest", err)
	}
	return nil
}
