package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/cache"
	"github.com/arthurhrk/Shapeslibrary/internal/fileutil"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

// Patch carries the record fields Update may merge. Nil fields stay
// untouched. Id and category are immutable through Update: category moves go
// through the asset relocator so preview files travel with the record.
type Patch struct {
	Name        *string
	Description *string
	Tags        []string
	Preview     *string
	NativePptx  *string
	NativeOnly  *bool
}

// Store owns the category-partitioned shape documents.
type Store struct {
	paths      *library.Paths
	cache      *cache.Cache
	categories []string
	logger     *slog.Logger
}

// New constructs a store over the given layout. categories is the closed
// category set from configuration; cache may be nil.
func New(paths *library.Paths, c *cache.Cache, categories []string, logger *slog.Logger) (*Store, error) {
	if paths == nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "new", "library paths required", nil)
	}
	if len(categories) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "store", "new", "at least one category required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		paths:      paths,
		cache:      c,
		categories: append([]string(nil), categories...),
		logger:     logging.NewComponentLogger(logger, "store"),
	}, nil
}

// Categories returns the configured category keys.
func (s *Store) Categories() []string {
	return append([]string(nil), s.categories...)
}

// HasCategory reports whether category belongs to the configured set.
func (s *Store) HasCategory(category string) bool {
	for _, known := range s.categories {
		if known == category {
			return true
		}
	}
	return false
}

// List returns category's records in stored order (sorted by name). The
// cache serves repeat reads until the document's modification time moves.
func (s *Store) List(category string) ([]shape.Record, error) {
	if err := s.validateCategory("list", category); err != nil {
		return nil, err
	}
	file := s.paths.StoreFile(category)
	if records, ok := s.cache.Get(category, file); ok {
		return records, nil
	}
	records := s.load(category, file)
	s.cache.Put(category, file, records)
	return records, nil
}

// Get returns the record with id from category.
func (s *Store) Get(id, category string) (shape.Record, error) {
	records, err := s.List(category)
	if err != nil {
		return shape.Record{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return shape.Record{}, s.notFound("get", id, category)
}

// Exists reports whether id is present in category.
func (s *Store) Exists(id, category string) bool {
	_, err := s.Get(id, category)
	return err == nil
}

// Find scans every configured category for id, for callers that only know
// the identifier.
func (s *Store) Find(id string) (shape.Record, error) {
	for _, category := range s.categories {
		records, err := s.List(category)
		if err != nil {
			continue
		}
		for _, rec := range records {
			if rec.ID == id {
				return rec, nil
			}
		}
	}
	return shape.Record{}, services.Wrap(services.ErrNotFound, "store", "find",
		fmt.Sprintf("shape %q not found in any category", id), nil)
}

// Add upserts record into its category document and returns the document
// path. A record colliding on id replaces the stored copy; the document never
// holds two records with one id.
func (s *Store) Add(rec shape.Record) (string, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return "", services.Wrap(services.ErrValidation, "store", "add", "record id required", nil)
	}
	if err := s.validateCategory("add", rec.Category); err != nil {
		return "", err
	}
	if rec.Preview == "" {
		rec.Preview = shape.PreviewPath(rec.Category, rec.ID)
	}
	if err := s.validatePreview("add", rec.Preview, rec.Category); err != nil {
		return "", err
	}

	file := s.paths.StoreFile(rec.Category)
	records := s.load(rec.Category, file)
	replaced := false
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	if err := s.write("add", rec.Category, records); err != nil {
		return "", err
	}

	s.logger.Debug("persisted shape record",
		logging.String(logging.FieldShapeID, rec.ID),
		logging.String(logging.FieldCategory, rec.Category),
		logging.Bool("replaced", replaced))
	return file, nil
}

// Update merges patch into the stored record and stamps UpdatedAt.
func (s *Store) Update(id, category string, patch Patch) error {
	if err := s.validateCategory("update", category); err != nil {
		return err
	}
	file := s.paths.StoreFile(category)
	records := s.load(category, file)
	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.notFound("update", id, category)
	}

	rec := &records[idx]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return services.Wrap(services.ErrValidation, "store", "update", "name cannot be empty", nil)
		}
		rec.Name = name
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Tags != nil {
		rec.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Preview != nil {
		if err := s.validatePreview("update", *patch.Preview, category); err != nil {
			return err
		}
		rec.Preview = *patch.Preview
	}
	if patch.NativePptx != nil {
		rec.NativePptx = *patch.NativePptx
	}
	if patch.NativeOnly != nil {
		rec.NativeOnly = *patch.NativeOnly
	}
	rec.UpdatedAt = time.Now().UTC()

	return s.write("update", category, records)
}

// Remove deletes the record and rewrites the category document. Asset
// cleanup is the caller's best-effort concern, never coupled to this write.
func (s *Store) Remove(id, category string) error {
	if err := s.validateCategory("remove", category); err != nil {
		return err
	}
	file := s.paths.StoreFile(category)
	records := s.load(category, file)
	kept := make([]shape.Record, 0, len(records))
	found := false
	for _, rec := range records {
		if rec.ID == id {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return s.notFound("remove", id, category)
	}
	return s.write("remove", category, kept)
}

// Counts reports the number of records per configured category.
func (s *Store) Counts() map[string]int {
	counts := make(map[string]int, len(s.categories))
	for _, category := range s.categories {
		records, err := s.List(category)
		if err != nil {
			continue
		}
		counts[category] = len(records)
	}
	return counts
}

// Total reports the record count across all categories.
func (s *Store) Total() int {
	total := 0
	for _, count := range s.Counts() {
		total += count
	}
	return total
}

func (s *Store) validateCategory(operation, category string) error {
	if s.HasCategory(category) {
		return nil
	}
	return services.Wrap(services.ErrValidation, "store", operation,
		fmt.Sprintf("unknown category %q", category), nil)
}

// validatePreview guards the invariant that a persisted record's preview path
// always sits under its own category directory.
func (s *Store) validatePreview(operation, preview, category string) error {
	if shape.PreviewCategory(preview) == category {
		return nil
	}
	return services.Wrap(services.ErrValidation, "store", operation,
		fmt.Sprintf("preview path %q does not live under category %q", preview, category), nil)
}

func (s *Store) notFound(operation, id, category string) error {
	return services.Wrap(services.ErrNotFound, "store", operation,
		fmt.Sprintf("shape %q not found in category %q", id, category), nil)
}

// load reads a category document. A missing file is an empty category; an
// unreadable or corrupt one is treated as empty too, logged loudly, so a
// damaged document never blocks the library. Corrupt bytes are set aside
// under a .corrupt suffix before any later save can replace them.
func (s *Store) load(category, file string) []shape.Record {
	data, err := os.ReadFile(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read category document",
				logging.String(logging.FieldEventType, "store_read_failed"),
				logging.String(logging.FieldCategory, category),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions under the library root"),
				logging.String(logging.FieldImpact, "category treated as empty until the document is readable"))
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var records []shape.Record
	if err := json.Unmarshal(data, &records); err != nil {
		hint := "recover records from the sidelined .corrupt copy"
		impact := "category treated as empty; damaged bytes kept beside the document"
		if renameErr := os.Rename(file, file+".corrupt"); renameErr != nil {
			hint = "restore the document from backup to keep its records"
			impact = "category treated as empty; the next save overwrites the damaged document"
		}
		s.logger.Warn("category document is corrupt",
			logging.String(logging.FieldEventType, "store_parse_failed"),
			logging.String(logging.FieldCategory, category),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, impact))
		return nil
	}
	return records
}

// write persists records sorted by name (case-sensitive ascending) through a
// temp file + rename, then drops the category's cache entry.
func (s *Store) write(operation, category string, records []shape.Record) error {
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrInternal, "store", operation, "marshal category document", err)
	}
	file := s.paths.StoreFile(category)
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return services.Wrap(services.ErrInternal, "store", operation, "create store directory", err)
	}
	if err := fileutil.WriteFileAtomic(file, data, 0o644); err != nil {
		return services.Wrap(services.ErrInternal, "store", operation, "replace category document", err)
	}
	s.cache.Invalidate(category)
	return nil
}
