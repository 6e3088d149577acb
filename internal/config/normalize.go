package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLibrary()
	c.normalizeCapture()
	c.normalizeBridge()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() {
	cleaned := make([]string, 0, len(c.Library.Categories))
	seen := make(map[string]struct{}, len(c.Library.Categories))
	for _, category := range c.Library.Categories {
		category = strings.ToLower(strings.TrimSpace(category))
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		cleaned = append(cleaned, category)
	}
	if len(cleaned) == 0 {
		cleaned = defaultCategories()
	}
	c.Library.Categories = cleaned
}

func (c *Config) normalizeCapture() {
	c.Capture.DefaultCategory = strings.ToLower(strings.TrimSpace(c.Capture.DefaultCategory))
	if c.Capture.DefaultCategory == "" {
		c.Capture.DefaultCategory = defaultCategory
	}
}

func (c *Config) normalizeBridge() {
	c.Bridge.HostApp = strings.TrimSpace(c.Bridge.HostApp)
	if c.Bridge.HostApp == "" {
		c.Bridge.HostApp = defaultHostApp
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
