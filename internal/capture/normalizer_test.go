package capture

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func f(v float64) *float64 { return &v }

func TestNormalizeArrowScenario(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1700000000000)))

	rec := n.Normalize(&RawShape{Name: "Arrow1", Type: 39}, "")

	if rec.Category != "arrows" {
		t.Fatalf("expected arrows category, got %q", rec.Category)
	}
	if rec.Definition.Type != shape.KindRightArrow {
		t.Fatalf("expected rightArrow kind, got %s", rec.Definition.Type)
	}
	if !strings.HasPrefix(rec.ID, "captured-arrow1-") {
		t.Fatalf("unexpected id: %q", rec.ID)
	}
	if rec.Preview != "arrows/"+rec.ID+".png" {
		t.Fatalf("preview %q does not sit under the record category", rec.Preview)
	}
}

func TestNormalizeIsDeterministicWithFixedClock(t *testing.T) {
	raw := &RawShape{
		Name:        "Fancy Star",
		Type:        14,
		X:           f(72),
		Y:           f(144),
		Width:       f(216),
		Height:      f(216),
		Rotation:    f(15),
		Adjustments: []float64{30000},
		Fill:        &RawStyle{Color: "#ff8800", Transparency: f(0.25)},
	}
	n := NewNormalizer(WithClock(fixedClock(1700000000000)))

	first := n.Normalize(raw, "")
	second := n.Normalize(raw, "")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestNormalizeGeometryConversionAndDefaults(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))

	rec := n.Normalize(&RawShape{
		Name:   "Box",
		Type:   1,
		X:      f(72),
		Y:      f(36),
		Width:  f(144),
		Height: f(288),
	}, "")
	def := rec.Definition
	if def.X != 1 || def.Y != 0.5 || def.W != 2 || def.H != 4 {
		t.Fatalf("unexpected inch conversion: %+v", def)
	}

	// Missing and invalid values fall back instead of failing.
	rec = n.Normalize(&RawShape{
		Name:     "Ghost",
		Type:     1,
		Width:    f(-10),
		Height:   f(math.NaN()),
		Rotation: f(math.Inf(1)),
	}, "")
	def = rec.Definition
	if def.X != 1 || def.Y != 1 {
		t.Fatalf("expected default position, got %+v", def)
	}
	if def.W != 2 || def.H != 2 {
		t.Fatalf("expected default size, got %+v", def)
	}
	if def.Rotate != 0 {
		t.Fatalf("expected zero rotation, got %v", def.Rotate)
	}
}

func TestNormalizeNeverFailsOnNilRaw(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))
	rec := n.Normalize(nil, "")
	if rec.ID == "" || rec.Category != "basic" || rec.Definition.Type != shape.KindRect {
		t.Fatalf("expected usable default record, got %+v", rec)
	}
	if rec.Name == "" {
		t.Fatal("expected derived display name")
	}
}

func TestNormalizeNativeOnly(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))

	rec := n.Normalize(&RawShape{
		Name:       "Diagram Group",
		Type:       39, // ignored for native-only selections
		IsGroup:    true,
		NativePath: "native/captured-diagram-group-1.pptx",
	}, "")

	if !rec.NativeOnly {
		t.Fatal("expected nativeOnly flag")
	}
	if rec.Category != "basic" {
		t.Fatalf("native-only capture must land in basic, got %q", rec.Category)
	}
	if rec.Definition.Type != shape.KindNative {
		t.Fatalf("expected nativeShape kind, got %s", rec.Definition.Type)
	}
	if rec.NativePptx == "" {
		t.Fatal("expected native artifact path carried over")
	}
}

func TestNormalizeCustomNameWins(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))
	rec := n.Normalize(&RawShape{Name: "Oval 7", Type: 3}, "Quarterly Bubble")
	if rec.Name != "Quarterly Bubble" {
		t.Fatalf("expected custom name, got %q", rec.Name)
	}
	if !strings.HasPrefix(rec.ID, "captured-quarterly-bubble-") {
		t.Fatalf("id should derive from custom name: %q", rec.ID)
	}
}

func TestNormalizeDerivesNameFromKindWhenEmpty(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))
	rec := n.Normalize(&RawShape{Type: 48}, "")
	if rec.Name != "Chevron" {
		t.Fatalf("expected kind display name, got %q", rec.Name)
	}
}

func TestNormalizeRoundRectRadius(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))
	rec := n.Normalize(&RawShape{
		Name:        "Badge",
		Type:        2,
		Adjustments: []float64{16667, 0},
	}, "")
	if rec.Definition.Type != shape.KindRoundRect {
		t.Fatalf("expected roundRect, got %s", rec.Definition.Type)
	}
	if rec.Definition.RectRadius != 16667 {
		t.Fatalf("expected first adjustment promoted to rectRadius, got %v", rec.Definition.RectRadius)
	}
	if len(rec.Definition.Adj) != 2 {
		t.Fatalf("expected adjustment list preserved, got %v", rec.Definition.Adj)
	}
}

func TestNormalizeStyleValidation(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))

	rec := n.Normalize(&RawShape{
		Name: "Styled",
		Type: 1,
		Fill: &RawStyle{Color: "#ff8800", Transparency: f(0.5)},
		Line: &RawStyle{Color: "00ff00", Weight: f(2.25)},
	}, "")
	if rec.Definition.Fill == nil || rec.Definition.Fill.Color != "FF8800" {
		t.Fatalf("expected normalized fill color, got %+v", rec.Definition.Fill)
	}
	if rec.Definition.Fill.Transparency != 0.5 {
		t.Fatalf("expected fill transparency, got %v", rec.Definition.Fill.Transparency)
	}
	if rec.Definition.Line == nil || rec.Definition.Line.Color != "00FF00" || rec.Definition.Line.Weight != 2.25 {
		t.Fatalf("unexpected line style: %+v", rec.Definition.Line)
	}

	// Garbage colors are dropped, not propagated.
	rec = n.Normalize(&RawShape{
		Name: "Ugly",
		Type: 1,
		Fill: &RawStyle{Color: "reddish"},
		Line: &RawStyle{Color: "12345"},
	}, "")
	if rec.Definition.Fill != nil || rec.Definition.Line != nil {
		t.Fatalf("expected invalid styles dropped, got fill=%+v line=%+v", rec.Definition.Fill, rec.Definition.Line)
	}
}

func TestNormalizeTransparencyClamped(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(1)))
	rec := n.Normalize(&RawShape{
		Name: "Foggy",
		Type: 1,
		Fill: &RawStyle{Color: "FFFFFF", Transparency: f(3.5)},
	}, "")
	if rec.Definition.Fill.Transparency != 1 {
		t.Fatalf("expected clamped transparency, got %v", rec.Definition.Fill.Transparency)
	}
}

func TestNormalizeColor(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"FF8800", "FF8800", true},
		{"#ff8800", "FF8800", true},
		{" 00ff00 ", "00FF00", true},
		{"12345", "", false},
		{"GGHHII", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeColor(tc.in)
		if ok != tc.valid || got != tc.want {
			t.Errorf("NormalizeColor(%q) = %q %v, want %q %v", tc.in, got, ok, tc.want, tc.valid)
		}
	}
}
