package shape

import (
	"strings"
	"time"
)

// Record is the canonical persisted description of one reusable shape.
type Record struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Preview     string     `json:"preview"`
	Definition  Definition `json:"pptxDefinition"`
	NativePptx  string     `json:"nativePptx,omitempty"`
	NativeOnly  bool       `json:"nativeOnly,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Definition is the renderable geometry of a shape. Position and size are in
// document inches. Adj carries the host's flat adjustment parameter list
// untouched; only the rounded-rectangle corner radius is promoted to its own
// field.
type Definition struct {
	Type       Kind      `json:"type"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	W          float64   `json:"w"`
	H          float64   `json:"h"`
	Rotate     float64   `json:"rotate,omitempty"`
	Adj        []float64 `json:"adj,omitempty"`
	RectRadius float64   `json:"rectRadius,omitempty"`
	Fill       *Fill     `json:"fill,omitempty"`
	Line       *Line     `json:"line,omitempty"`
}

// Fill is a solid fill style. Color is six uppercase hex digits.
type Fill struct {
	Color        string  `json:"color,omitempty"`
	Transparency float64 `json:"transparency,omitempty"`
}

// Line is an outline style. Color is six uppercase hex digits, weight in points.
type Line struct {
	Color        string  `json:"color,omitempty"`
	Weight       float64 `json:"weight,omitempty"`
	Transparency float64 `json:"transparency,omitempty"`
}

// PreviewPath builds the assets-relative preview location for a record. The
// leading segment is the category; keeping the two in step is the asset
// manager's core invariant.
func PreviewPath(category, id string) string {
	return category + "/" + id + ".png"
}

// PreviewCategory extracts the leading category segment of an assets-relative
// preview path. Empty when the path has no directory segment.
func PreviewCategory(rel string) string {
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "/")
	idx := strings.IndexByte(rel, '/')
	if idx <= 0 {
		return ""
	}
	return rel[:idx]
}

// HasNative reports whether a high-fidelity source artifact is attached.
func (r *Record) HasNative() bool {
	return strings.TrimSpace(r.NativePptx) != ""
}

// Renderable reports whether the record can be turned into a document at all.
// A native-only record without its native artifact is corrupt and cannot be
// rendered.
func (r *Record) Renderable() bool {
	if r.NativeOnly {
		return r.HasNative()
	}
	return true
}

// Clone returns a deep copy so callers can mutate freely without aliasing
// cached slices.
func (r *Record) Clone() Record {
	out := *r
	if r.Tags != nil {
		out.Tags = make([]string, len(r.Tags))
		copy(out.Tags, r.Tags)
	}
	if r.Definition.Adj != nil {
		out.Definition.Adj = make([]float64, len(r.Definition.Adj))
		copy(out.Definition.Adj, r.Definition.Adj)
	}
	if r.Definition.Fill != nil {
		fill := *r.Definition.Fill
		out.Definition.Fill = &fill
	}
	if r.Definition.Line != nil {
		line := *r.Definition.Line
		out.Definition.Line = &line
	}
	return out
}

// CloneAll deep-copies a record slice.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Clone()
	}
	return out
}
