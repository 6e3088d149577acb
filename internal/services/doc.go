// Package services defines shared utilities consumed by the library
// operations and the platform bridge integrations.
//
// Key responsibilities:
//   - Context helpers that stamp shape identifiers, categories, and request
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent user-facing outcomes.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform across the library.
package services
