package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateBridge(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if len(c.Library.Categories) == 0 {
		return errors.New("library.categories must include at least one category")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if !c.HasCategory(c.Capture.DefaultCategory) {
		return fmt.Errorf("capture.default_category %q must be one of library.categories", c.Capture.DefaultCategory)
	}
	return nil
}

func (c *Config) validateBridge() error {
	if err := ensurePositiveMap(map[string]int{
		"bridge.capture_timeout": c.Bridge.CaptureTimeout,
		"bridge.render_timeout":  c.Bridge.RenderTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.DelaySeconds < 0 {
		return errors.New("cleanup.delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.KeepDays < 0 {
		return errors.New("journal.keep_days must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
