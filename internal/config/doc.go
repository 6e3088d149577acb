// Package config loads, normalizes, and validates Shapes configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from the standard locations. The Config
// type centralizes every knob the CLI needs, so the library root, bridge
// timeouts, and capture behaviour are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
