// Package shape defines the canonical shape record persisted by the library,
// the closed catalog of renderable shape kinds, and the id/tag derivation
// rules applied at capture time.
//
// Records are plain data. Everything that touches disk lives in store and
// assets; everything that talks to the host application lives in bridge.
package shape
