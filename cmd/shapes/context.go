package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arthurhrk/Shapeslibrary/internal/assets"
	"github.com/arthurhrk/Shapeslibrary/internal/bridge"
	"github.com/arthurhrk/Shapeslibrary/internal/cache"
	"github.com/arthurhrk/Shapeslibrary/internal/config"
	"github.com/arthurhrk/Shapeslibrary/internal/deck"
	"github.com/arthurhrk/Shapeslibrary/internal/journal"
	"github.com/arthurhrk/Shapeslibrary/internal/library"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/render"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/store"
	"github.com/arthurhrk/Shapeslibrary/internal/tempfiles"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// bridgeOverride substitutes the platform bridge in tests.
	bridgeOverride bridge.Bridge
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the per-invocation logger. Command output owns stdout, so
// logs go to the library log file only; without a log directory the logger
// is a nop.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = strings.TrimSpace(*c.logLevelFlag)
	}
	if strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return logging.NewNop(), nil
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "shapes.log")
	return logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
}

// libraryEnv is the wired library stack one command invocation works with.
type libraryEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	paths    library.Paths
	store    *store.Store
	assets   *assets.Manager
	bridge   bridge.Bridge
	scratch  *tempfiles.Registry
	renderer *render.HostRenderer
	raster   *render.Rasterizer
	journal  *journal.Journal // nil when the journal could not open
	deck     *deck.Deck       // nil when deck storage is disabled
}

func (c *commandContext) openEnv() (*libraryEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.newLogger(cfg)
	if err != nil {
		return nil, err
	}
	paths, err := library.NewPaths(cfg)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureLayout(); err != nil {
		return nil, err
	}

	env := &libraryEnv{cfg: cfg, logger: logger, paths: paths}

	env.store, err = store.New(&env.paths, cache.New(cfg.Cache.Enabled), cfg.Categories(), logger)
	if err != nil {
		return nil, err
	}
	env.assets, err = assets.NewManager(&env.paths, env.store, logger)
	if err != nil {
		return nil, err
	}
	if err := env.assets.EnsurePlaceholder(); err != nil {
		return nil, err
	}

	env.bridge = c.bridgeOverride
	if env.bridge == nil {
		env.bridge, err = bridge.New(cfg.Bridge.HostApp, cfg.CaptureTimeout(), cfg.RenderTimeout(), logger)
		if err != nil {
			return nil, err
		}
	}

	env.scratch = tempfiles.NewRegistry(env.paths.TempDir(), cfg.Cleanup.Auto, cfg.CleanupDelay(), logger)
	env.renderer, err = render.NewHostRenderer(env.bridge, &env.paths, env.scratch, cfg.Insert.ForceExact, logger)
	if err != nil {
		return nil, err
	}
	env.raster = render.NewRasterizer(logger)

	if cfg.Deck.Enabled {
		env.deck, err = deck.New(&env.paths, env.bridge, env.scratch, logger)
		if err != nil {
			return nil, err
		}
	}

	// Journal failures never block library work.
	jrnl, err := journal.Open(env.paths.JournalFile(), logger)
	if err != nil {
		logger.Warn("operation journal unavailable",
			logging.String(logging.FieldEventType, "journal_open_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the library root"),
			logging.String(logging.FieldImpact, "history and recently-used ordering stop updating"))
	} else {
		env.journal = jrnl
		// Retention runs on every open; the delete is a no-op until events
		// age past keep_days.
		if cfg.Journal.KeepDays > 0 {
			if _, err := jrnl.Prune(context.Background(), cfg.Journal.KeepDays); err != nil {
				logger.Warn("journal prune failed",
					logging.String(logging.FieldEventType, "journal_prune_failed"),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the journal database under the library root"),
					logging.String(logging.FieldImpact, "old events linger past the retention window"))
			}
		}
	}

	return env, nil
}

// Close releases per-invocation resources. Scratch files stay on disk until
// the cleanup delay passes; the next invocation's sweep collects them. An
// immediate delete would pull documents out from under a host application
// that is still loading them.
func (e *libraryEnv) Close() {
	if e.cfg.Cleanup.Auto {
		e.scratch.CleanupDue()
		e.scratch.Sweep(e.cfg.CleanupDelay())
	}
	if e.journal != nil {
		if err := e.journal.Close(); err != nil {
			e.logger.Warn("failed to close journal", logging.Error(err))
		}
	}
}

// recordEvent journals one library operation, best-effort.
func (e *libraryEnv) recordEvent(ctx context.Context, op, shapeID, category, detail string) {
	if e.journal == nil {
		return
	}
	requestID, _ := services.RequestIDFromContext(ctx)
	e.journal.RecordBestEffort(ctx, journal.Event{
		Op:        op,
		ShapeID:   shapeID,
		Category:  category,
		Detail:    detail,
		RequestID: requestID,
	})
}

// withEnv wires the library stack for one command invocation and tears it
// down afterward. The context carries a fresh correlation id so bridge and
// journal entries line up in the log.
func (c *commandContext) withEnv(cmd *cobra.Command, fn func(context.Context, *libraryEnv) error) error {
	env, err := c.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := services.WithRequestID(cmd.Context(), uuid.NewString())
	return fn(ctx, env)
}

// withLockedEnv additionally holds the library mutation lock. Any command
// that writes records, assets, the deck, or the journal-backed repair marker
// goes through here.
func (c *commandContext) withLockedEnv(cmd *cobra.Command, fn func(context.Context, *libraryEnv) error) error {
	return c.withEnv(cmd, func(ctx context.Context, env *libraryEnv) error {
		lock := library.NewLock(env.paths)
		if err := lock.Acquire(ctx); err != nil {
			return err
		}
		defer lock.Release()
		return fn(ctx, env)
	})
}
