// Package store persists shape records as category-partitioned JSON
// documents under the library root.
//
// One document per category, records sorted by name at every write, written
// atomically via temp file + rename. A corrupt document is treated as an
// empty category (logged, never fatal): availability wins over strict
// durability for a personal library, at the cost that the next save rewrites
// the damaged file.
package store
