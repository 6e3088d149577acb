package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
}

// Library contains configuration for the category layout of the library.
type Library struct {
	Categories []string `toml:"categories"`
}

// Capture contains configuration for the capture flow.
type Capture struct {
	AutoSave        bool   `toml:"auto_save"`
	SkipNativeSave  bool   `toml:"skip_native_save"`
	DefaultCategory string `toml:"default_category"`
}

// Insert contains configuration for re-inserting shapes into documents.
type Insert struct {
	ForceExact bool `toml:"force_exact"`
}

// Deck contains configuration for the aggregate native deck.
type Deck struct {
	Enabled bool `toml:"enabled"`
}

// Cache contains configuration for the in-process shape cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
}

// Cleanup contains configuration for temporary artifact cleanup.
type Cleanup struct {
	Auto         bool `toml:"auto"`
	DelaySeconds int  `toml:"delay_seconds"`
}

// Bridge contains configuration for the platform scripting bridge.
type Bridge struct {
	HostApp        string `toml:"host_app"`
	CaptureTimeout int    `toml:"capture_timeout"`
	RenderTimeout  int    `toml:"render_timeout"`
}

// Journal contains configuration for the operation journal.
type Journal struct {
	KeepDays int `toml:"keep_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Shapes.
//
// Configuration sections by subsystem:
//   - Paths: library root and log directory
//   - Library: category set
//   - Capture: save prompts and native artifact behaviour
//   - Insert: exact-fidelity policy
//   - Deck: aggregate deck storage for native artifacts
//   - Cache: in-process store cache
//   - Cleanup: temp artifact sweeping
//   - Bridge: host application and script timeouts
//   - Journal: operation history retention
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Library Library `toml:"library"`
	Capture Capture `toml:"capture"`
	Insert  Insert  `toml:"insert"`
	Deck    Deck    `toml:"deck"`
	Cache   Cache   `toml:"cache"`
	Cleanup Cleanup `toml:"cleanup"`
	Bridge  Bridge  `toml:"bridge"`
	Journal Journal `toml:"journal"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shapes/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/shapes/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shapes.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the CLI writes to. The library
// root is created on a best-effort basis so commands that only read
// configuration still work when external storage is unavailable.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// CaptureTimeout returns the wall-clock limit for bridge capture scripts.
func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.Bridge.CaptureTimeout) * time.Second
}

// RenderTimeout returns the wall-clock limit for bridge render and insert scripts.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Bridge.RenderTimeout) * time.Second
}

// CleanupDelay returns the grace period before temp artifacts are swept.
func (c *Config) CleanupDelay() time.Duration {
	return time.Duration(c.Cleanup.DelaySeconds) * time.Second
}

// Categories returns the configured category set.
func (c *Config) Categories() []string {
	out := make([]string, len(c.Library.Categories))
	copy(out, c.Library.Categories)
	return out
}

// HasCategory reports whether name belongs to the configured category set.
func (c *Config) HasCategory(name string) bool {
	for _, category := range c.Library.Categories {
		if category == name {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
