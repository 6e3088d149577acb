// Package cache fronts the per-category shape stores with an in-memory,
// modification-time-validated cache.
//
// The cache is optimistic, not write-through: the store decides when to
// populate it (right after a fresh load), and any disagreement between the
// cached and live modification time evicts the entry. The cache itself never
// reads or writes store documents.
package cache
