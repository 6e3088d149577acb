package capture

import (
	"math"
	"strings"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

const (
	pointsPerInch = 72.0

	defaultPositionInches = 1.0
	defaultSizeInches     = 2.0
)

// Normalizer converts raw bridge output into canonical records. Pure apart
// from the embedded capture timestamp, which the clock option pins in tests.
type Normalizer struct {
	clock func() time.Time
}

// Option adjusts normalizer construction.
type Option func(*Normalizer)

// WithClock overrides the capture timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(n *Normalizer) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// NewNormalizer constructs a normalizer with the real clock.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{clock: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize builds a record from whatever the bridge returned. It never
// fails: missing or garbage fields fall back to defaults so a capture always
// yields a usable record. customName, when present, wins over the host's
// shape name.
func (n *Normalizer) Normalize(raw *RawShape, customName string) shape.Record {
	if raw == nil {
		raw = &RawShape{}
	}
	now := n.clock()

	name := strings.TrimSpace(customName)
	if name == "" {
		name = strings.TrimSpace(raw.Name)
	}

	nativeOnly := raw.IsGroup || raw.IsPicture

	var kind shape.Kind
	var category string
	if nativeOnly {
		kind = shape.KindNative
		category = "basic"
	} else {
		kind = shape.InferKind(raw.TypeName, raw.Type, name)
		category = shape.CategoryFor(kind)
	}

	if name == "" {
		name = shape.DisplayName(kind)
	}

	id := shape.NewID(name, now)

	rec := shape.Record{
		ID:          id,
		Name:        name,
		Category:    category,
		Description: describeCapture(kind, nativeOnly),
		Tags:        shape.BuildTags(name, category, kind),
		Preview:     shape.PreviewPath(category, id),
		Definition: shape.Definition{
			Type:   kind,
			X:      inches(raw.X, defaultPositionInches, false),
			Y:      inches(raw.Y, defaultPositionInches, false),
			W:      inches(raw.Width, defaultSizeInches, true),
			H:      inches(raw.Height, defaultSizeInches, true),
			Rotate: degrees(raw.Rotation),
		},
		NativePptx: strings.TrimSpace(raw.NativePath),
		NativeOnly: nativeOnly,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}

	if adj := finiteValues(raw.Adjustments); len(adj) > 0 {
		rec.Definition.Adj = adj
		if kind == shape.KindRoundRect {
			rec.Definition.RectRadius = adj[0]
		}
	}

	rec.Definition.Fill = normalizeFill(raw.Fill)
	rec.Definition.Line = normalizeLine(raw.Line)

	return rec
}

func describeCapture(kind shape.Kind, nativeOnly bool) string {
	if nativeOnly {
		return "Captured group or picture selection"
	}
	return "Captured " + shape.DisplayName(kind) + " shape"
}

// inches converts a raw point measurement to document inches. Absent or
// non-finite values, and non-positive sizes, fall back to the default.
func inches(points *float64, fallback float64, requirePositive bool) float64 {
	if points == nil || math.IsNaN(*points) || math.IsInf(*points, 0) {
		return fallback
	}
	if requirePositive && *points <= 0 {
		return fallback
	}
	return *points / pointsPerInch
}

func degrees(rotation *float64) float64 {
	if rotation == nil || math.IsNaN(*rotation) || math.IsInf(*rotation, 0) {
		return 0
	}
	return *rotation
}

func finiteValues(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeFill(raw *RawStyle) *shape.Fill {
	if raw == nil {
		return nil
	}
	color, ok := NormalizeColor(raw.Color)
	if !ok {
		return nil
	}
	return &shape.Fill{
		Color:        color,
		Transparency: clampUnit(raw.Transparency),
	}
}

func normalizeLine(raw *RawStyle) *shape.Line {
	if raw == nil {
		return nil
	}
	color, ok := NormalizeColor(raw.Color)
	if !ok {
		return nil
	}
	line := &shape.Line{
		Color:        color,
		Transparency: clampUnit(raw.Transparency),
	}
	if raw.Weight != nil && !math.IsNaN(*raw.Weight) && !math.IsInf(*raw.Weight, 0) && *raw.Weight > 0 {
		line.Weight = *raw.Weight
	}
	return line
}

func clampUnit(value *float64) float64 {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return 0
	}
	switch {
	case *value < 0:
		return 0
	case *value > 1:
		return 1
	default:
		return *value
	}
}
