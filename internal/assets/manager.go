package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/fileutil"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
)

// Manager relocates and repairs the assets attached to shape records.
type Manager struct {
	paths  *library.Paths
	store  *store.Store
	logger *slog.Logger
}

// NewManager constructs an asset manager over the given layout and store.
func NewManager(paths *library.Paths, st *store.Store, logger *slog.Logger) (*Manager, error) {
	if paths == nil {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "new", "library paths required", nil)
	}
	if st == nil {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "new", "shape store required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		paths:  paths,
		store:  st,
		logger: logging.NewComponentLogger(logger, "assets"),
	}, nil
}

// AttachPreview moves a rendered PNG into the record's canonical preview
// location and patches the record when its preview path disagrees.
func (m *Manager) AttachPreview(ctx context.Context, rec shape.Record, pngSource string) (string, error) {
	dest := m.paths.PreviewFile(rec.Category, rec.ID)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrInternal, "assets", "attach_preview", "create preview directory", err)
	}
	if err := m.moveFile(pngSource, dest); err != nil {
		return "", services.Wrap(services.ErrInternal, "assets", "attach_preview", "place preview file", err)
	}

	rel := shape.PreviewPath(rec.Category, rec.ID)
	if rec.Preview != rel {
		if err := m.store.Update(rec.ID, rec.Category, store.Patch{Preview: &rel}); err != nil {
			return "", err
		}
	}
	return rel, nil
}

// MoveCategory relocates a record and its preview into another category. The
// preview file moves first so no persisted state ever points across
// categories; the record then lands in the new document before it leaves the
// old one, so a crash in between leaves a harmless duplicate rather than a
// lost record. Native artifacts live outside category directories and stay
// put.
func (m *Manager) MoveCategory(ctx context.Context, id, oldCategory, newCategory string) error {
	if !m.store.HasCategory(newCategory) {
		return services.Wrap(services.ErrValidation, "assets", "move_category",
			fmt.Sprintf("unknown category %q", newCategory), nil)
	}
	rec, err := m.store.Get(id, oldCategory)
	if err != nil {
		return err
	}
	if oldCategory == newCategory {
		return nil
	}

	src := m.paths.PreviewFile(oldCategory, id)
	dest := m.paths.PreviewFile(newCategory, id)
	if _, statErr := os.Stat(src); statErr == nil {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return services.Wrap(services.ErrInternal, "assets", "move_category", "create preview directory", err)
		}
		if err := m.moveFile(src, dest); err != nil {
			return services.Wrap(services.ErrInternal, "assets", "move_category", "relocate preview file", err)
		}
	}

	moved := rec
	moved.Category = newCategory
	moved.Preview = shape.PreviewPath(newCategory, id)
	moved.UpdatedAt = time.Now().UTC()
	if _, err := m.store.Add(moved); err != nil {
		return err
	}
	if err := m.store.Remove(id, oldCategory); err != nil {
		return err
	}

	m.logger.Info("moved shape category",
		logging.String(logging.FieldShapeID, id),
		logging.String("from", oldCategory),
		logging.String("to", newCategory))
	return nil
}

// RemoveAssets deletes the preview and per-file native artifact attached to a
// record. Best-effort: failures are logged, never escalated, because the
// record removal already happened and scratch files can be swept later.
func (m *Manager) RemoveAssets(ctx context.Context, rec shape.Record) {
	preview := m.paths.PreviewFile(rec.Category, rec.ID)
	if err := os.Remove(preview); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("failed to remove preview file",
			logging.String(logging.FieldEventType, "asset_cleanup_failed"),
			logging.String(logging.FieldShapeID, rec.ID),
			logging.String("path", preview),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually"),
			logging.String(logging.FieldImpact, "orphaned preview remains on disk"))
	}
	if rec.HasNative() && !shape.IsDeckRef(rec.NativePptx) {
		native := filepath.Join(m.paths.Root(), filepath.FromSlash(rec.NativePptx))
		if err := os.Remove(native); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("failed to remove native artifact",
				logging.String(logging.FieldEventType, "asset_cleanup_failed"),
				logging.String(logging.FieldShapeID, rec.ID),
				logging.String("path", native),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the file manually"),
				logging.String(logging.FieldImpact, "orphaned native artifact remains on disk"))
		}
	}
}

// moveFile renames src onto dest, falling back to copy plus best-effort
// delete when the two sit on different filesystems. Only a failed copy is a
// hard error; a failed delete of the original leaves a harmless orphan.
func (m *Manager) moveFile(src, dest string) error {
	renameErr := os.Rename(src, dest)
	if renameErr == nil {
		return nil
	}
	if !crossDevice(renameErr) {
		return renameErr
	}
	if err := fileutil.CopyFile(src, dest); err != nil {
		return fmt.Errorf("copy across filesystems: %w", err)
	}
	if err := os.Remove(src); err != nil {
		m.logger.Warn("failed to remove source after cross-device copy",
			logging.String(logging.FieldEventType, "asset_move_leftover"),
			logging.String("path", src),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually"),
			logging.String(logging.FieldImpact, "duplicate file remains at the old location"))
	}
	return nil
}

// crossDevice reports whether a rename failed because src and dest live on
// different filesystems. The unix family reports EXDEV; Windows reports
// ERROR_NOT_SAME_DEVICE (17), which has no errors.Is mapping onto EXDEV.
func crossDevice(err error) bool {
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return false
	}
	if errors.Is(linkErr.Err, syscall.EXDEV) {
		return true
	}
	return runtime.GOOS == "windows" && errors.Is(linkErr.Err, syscall.Errno(17))
}
