package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

// RepairReport summarizes one orphan repair pass.
type RepairReport struct {
	// Repaired counts preview files relocated plus record preview fields
	// rewritten.
	Repaired int
	// Unowned lists preview files with no owning record. They are reported
	// and kept; deleting user data is not the repair pass's call.
	Unowned []string
}

// RepairOrphans restores the preview invariant after crashes or external
// edits: records whose preview field strayed from the canonical path are
// rewritten (bringing any stray file along), and preview files sitting under
// a directory that is not their owner's category are relocated. Idempotent:
// a second pass with no intervening mutation repairs nothing. With dryRun the
// pass only counts.
func (m *Manager) RepairOrphans(ctx context.Context, dryRun bool) (RepairReport, error) {
	var report RepairReport

	owners := make(map[string]shape.Record)
	for _, category := range m.store.Categories() {
		records, err := m.store.List(category)
		if err != nil {
			return report, err
		}
		for _, rec := range records {
			owners[rec.ID] = rec
			expected := shape.PreviewPath(rec.Category, rec.ID)
			if rec.Preview == expected {
				continue
			}
			report.Repaired++
			if dryRun {
				continue
			}
			m.adoptStrayPreview(rec, expected)
			if err := m.store.Update(rec.ID, rec.Category, store.Patch{Preview: &expected}); err != nil {
				return report, err
			}
			rec.Preview = expected
			owners[rec.ID] = rec
		}
	}

	assetsDir := m.paths.AssetsDir()
	entries, err := os.ReadDir(assetsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.stampRepair(dryRun)
			return report, nil
		}
		return report, services.Wrap(services.ErrInternal, "assets", "repair", "scan assets directory", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue // the shared placeholder lives at the assets root
		}
		dirName := entry.Name()
		files, err := os.ReadDir(filepath.Join(assetsDir, dirName))
		if err != nil {
			m.logger.Warn("failed to scan category asset directory",
				logging.String(logging.FieldEventType, "repair_scan_failed"),
				logging.String("dir", dirName),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions under the assets directory"),
				logging.String(logging.FieldImpact, "previews in this directory were not checked"))
			continue
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".png") {
				continue
			}
			id := strings.TrimSuffix(file.Name(), ".png")
			path := filepath.Join(assetsDir, dirName, file.Name())
			owner, ok := owners[id]
			if !ok {
				report.Unowned = append(report.Unowned, path)
				m.logger.Info("preview file has no owning record",
					logging.String("path", path))
				continue
			}
			if owner.Category == dirName {
				continue
			}
			report.Repaired++
			if dryRun {
				continue
			}
			m.relocateStray(path, owner)
		}
	}

	m.stampRepair(dryRun)
	return report, nil
}

// adoptStrayPreview moves the file a stray preview field points at into the
// record's canonical location, when such a file exists and the canonical slot
// is free. File trouble here never fails the repair; the record fix is the
// part that matters.
func (m *Manager) adoptStrayPreview(rec shape.Record, expected string) {
	stray := m.paths.ResolvePreview(rec.Preview)
	dest := m.paths.ResolvePreview(expected)
	if stray == dest {
		return
	}
	info, err := os.Stat(stray)
	if err != nil || info.IsDir() {
		return
	}
	if _, err := os.Stat(dest); err == nil {
		// The canonical preview already exists; the stray is redundant.
		if err := os.Remove(stray); err != nil {
			m.warnMoveFailed(stray, err)
		}
		return
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		m.warnMoveFailed(stray, err)
		return
	}
	if err := m.moveFile(stray, dest); err != nil {
		m.warnMoveFailed(stray, err)
	}
}

// relocateStray moves a preview file from a foreign category directory into
// its owner's directory.
func (m *Manager) relocateStray(path string, owner shape.Record) {
	dest := m.paths.PreviewFile(owner.Category, owner.ID)
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(path); err != nil {
			m.warnMoveFailed(path, err)
		}
		return
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		m.warnMoveFailed(path, err)
		return
	}
	if err := m.moveFile(path, dest); err != nil {
		m.warnMoveFailed(path, err)
		return
	}
	m.logger.Info("relocated orphaned preview",
		logging.String(logging.FieldShapeID, owner.ID),
		logging.String("to", dest))
}

func (m *Manager) warnMoveFailed(path string, err error) {
	m.logger.Warn("failed to relocate preview file",
		logging.String(logging.FieldEventType, "repair_move_failed"),
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "move the file manually and rerun shapes repair"),
		logging.String(logging.FieldImpact, "preview stays orphaned until repaired"))
}

// stampRepair records that a repair pass ran. Informational only, so a
// failed write is logged and swallowed.
func (m *Manager) stampRepair(dryRun bool) {
	if dryRun {
		return
	}
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(m.paths.RepairMarker(), []byte(stamp), 0o644); err != nil {
		m.logger.Warn("failed to write repair marker",
			logging.String(logging.FieldEventType, "repair_stamp_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions under the library root"),
			logging.String(logging.FieldImpact, "repair status not recorded; repairs themselves are unaffected"))
	}
}

// LastRepair reports when the most recent repair pass completed.
func (m *Manager) LastRepair() (time.Time, bool) {
	data, err := os.ReadFile(m.paths.RepairMarker())
	if err != nil {
		return time.Time{}, false
	}
	stamp, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false
	}
	return stamp, true
}
