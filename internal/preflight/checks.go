package preflight

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/bridge"
	"github.com/arthurhrk/Shapeslibrary/internal/deck"
	"github.com/arthurhrk/Shapeslibrary/internal/deps"
	"github.com/arthurhrk/Shapeslibrary/internal/journal"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
)

// hostCheckTimeout caps the availability probe. The bridge's own script
// timeout is tuned for captures and is far too generous for a ping.
const hostCheckTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := accessReadWrite(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRunner reports whether the platform script runner is on PATH.
func CheckRunner() Result {
	status := deps.CheckRunner(runtime.GOOS)
	result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
	if status.Available {
		result.Detail = status.Command
	}
	return result
}

// CheckHost reports whether the host application answers automation calls.
func CheckHost(ctx context.Context, b bridge.Bridge, hostApp string) Result {
	const name = "Host application"
	if b == nil {
		return Result{Name: name, Detail: "bridge not constructed"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, hostCheckTimeout)
	defer cancel()

	if !b.HostAvailable(checkCtx) {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not answering automation calls", hostApp)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s responding", hostApp)}
}

// CheckDeckManifest validates the aggregate deck manifest against its deck
// file.
func CheckDeckManifest(paths *library.Paths) Result {
	const name = "Deck manifest"
	status, err := deck.VerifyManifest(paths)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if !status.Exists && status.Entries == 0 {
		return Result{Name: name, Passed: true, Detail: "no deck yet"}
	}
	detail := fmt.Sprintf("%d entries, %d slides", status.Entries, status.Slides)
	if status.Stale > 0 {
		detail = fmt.Sprintf("%s (%d stale; run shapes deck rebuild)", detail, status.Stale)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckJournal opens the operation journal read-write and counts its events.
func CheckJournal(ctx context.Context, paths *library.Paths) Result {
	const name = "Journal"
	j, err := journal.Open(paths.JournalFile(), logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer j.Close()

	count, err := j.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d events", count)}
}
