package preflight

import (
	"context"

	"github.com/arthurhrk/Shapeslibrary/internal/bridge"
	"github.com/arthurhrk/Shapeslibrary/internal/config"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable readiness checks for the given config.
// The deck check only runs when aggregate deck storage is enabled.
func RunAll(ctx context.Context, cfg *config.Config, paths *library.Paths, b bridge.Bridge) []Result {
	if cfg == nil || paths == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Library root", paths.Root()))
	results = append(results, CheckDirectoryAccess("Record store", paths.StoreDir()))
	results = append(results, CheckDirectoryAccess("Previews", paths.AssetsDir()))
	results = append(results, CheckDirectoryAccess("Native artifacts", paths.NativeDir()))

	results = append(results, CheckRunner())
	results = append(results, CheckHost(ctx, b, cfg.Bridge.HostApp))

	if cfg.Deck.Enabled {
		results = append(results, CheckDeckManifest(paths))
	}

	results = append(results, CheckJournal(ctx, paths))

	return results
}

// Healthy reports whether every result passed.
func Healthy(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
