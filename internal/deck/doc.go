// Package deck manages the aggregate deck: a single native document whose
// slides hold copies of many shapes' native artifacts, used instead of
// per-shape files when deck mode is configured. A JSON manifest beside the
// deck maps record ids to slide numbers; records reference their slide with
// a deck:<slide> value in nativePptx.
//
// Removing a shape only drops its manifest entry. The slide stays in the
// deck until a rebuild compacts survivors into a fresh document.
package deck
