// Package library resolves the on-disk layout of a shape library and owns the
// cross-process mutation lock.
//
// Every path the rest of the system touches (category store documents,
// preview assets, native artifacts, the aggregate deck, temp space) is derived
// here from the configured root, so layout decisions live in one place.
package library
