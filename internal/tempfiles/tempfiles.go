// Package tempfiles tracks scratch artifacts under the library tmp
// directory: synthesized documents, extracted deck slides, renders waiting
// to be attached. Artifacts are deleted on a delay so the host application
// finishes reading them first; leftovers from crashed runs are collected by
// age-based sweeps.
package tempfiles

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
)

// Registry hands out scratch paths and deletes them once they age past the
// configured delay. All deletion is best-effort: a file that cannot be
// removed is logged and left for the next sweep.
type Registry struct {
	dir    string
	auto   bool
	delay  time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]time.Time
}

// NewRegistry builds a registry rooted at dir. When auto is false,
// CleanupDue never deletes; explicit sweeps still work.
func NewRegistry(dir string, auto bool, delay time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	if delay < 0 {
		delay = 0
	}
	return &Registry{
		dir:     dir,
		auto:    auto,
		delay:   delay,
		logger:  logging.NewComponentLogger(logger, "tempfiles"),
		entries: make(map[string]time.Time),
	}
}

// Dir exposes the scratch directory root.
func (r *Registry) Dir() string { return r.dir }

// Create reserves a fresh scratch path and registers it for cleanup. The
// file itself is not created; callers hand the path to whatever produces
// the artifact.
func (r *Registry) Create(prefix, ext string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrInternal, "tempfiles", "create", "create tmp directory", err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if prefix == "" {
		prefix = "scratch"
	}
	path := filepath.Join(r.dir, prefix+"-"+uuid.NewString()+ext)
	r.Register(path)
	return path, nil
}

// Register adds an externally created artifact to the cleanup schedule.
func (r *Registry) Register(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[path] = time.Now()
}

// Forget drops a path from the schedule without deleting it. Used when a
// scratch artifact gets promoted to a permanent location.
func (r *Registry) Forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, path)
}

// CleanupDue deletes registered artifacts older than the configured delay
// and reports how many were removed. A no-op when auto cleanup is off.
func (r *Registry) CleanupDue() int {
	if !r.auto {
		return 0
	}
	return r.removeRegistered(r.delay)
}

// Sweep deletes every file under the tmp directory older than olderThan,
// registered or not. Collects leftovers from runs that crashed before their
// cleanup fired.
func (r *Registry) Sweep(olderThan time.Duration) int {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("failed to scan tmp directory",
				logging.String(logging.FieldEventType, "temp_sweep_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the library tmp directory"),
				logging.String(logging.FieldImpact, "stale scratch files accumulate"))
		}
		return 0
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		if r.removeFile(path) {
			removed++
		}
		r.Forget(path)
	}
	return removed
}

// Close deletes every registered artifact regardless of age. Sweeping the
// whole directory is left to the next run; Close only covers what this
// process created.
func (r *Registry) Close() error {
	r.removeRegistered(0)
	return nil
}

func (r *Registry) removeRegistered(minAge time.Duration) int {
	r.mu.Lock()
	due := make([]string, 0, len(r.entries))
	cutoff := time.Now().Add(-minAge)
	for path, registered := range r.entries {
		if !registered.After(cutoff) {
			due = append(due, path)
			delete(r.entries, path)
		}
	}
	r.mu.Unlock()

	removed := 0
	for _, path := range due {
		if r.removeFile(path) {
			removed++
		}
	}
	return removed
}

// removeFile reports true when the file was actually deleted. Missing files
// are fine; the artifact may never have been produced.
func (r *Registry) removeFile(path string) bool {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true
	case os.IsNotExist(err):
		return false
	default:
		r.logger.Warn("failed to remove scratch file",
			logging.String(logging.FieldEventType, "temp_cleanup_failed"),
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually"),
			logging.String(logging.FieldImpact, "stale scratch file remains on disk"))
		return false
	}
}
