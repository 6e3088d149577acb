package shape

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	id := NewID("Arrow1", at)

	if !strings.HasPrefix(id, "captured-arrow1-") {
		t.Fatalf("unexpected id prefix: %q", id)
	}
	suffix := strings.TrimPrefix(id, "captured-arrow1-")
	ms, err := strconv.ParseInt(suffix, 36, 64)
	if err != nil {
		t.Fatalf("suffix %q is not base36: %v", suffix, err)
	}
	if ms != at.UnixMilli() {
		t.Fatalf("suffix decodes to %d, want %d", ms, at.UnixMilli())
	}
	if !IsCapturedID(id) {
		t.Fatal("expected capture marker to be detected")
	}
}

func TestNewIDSlugsName(t *testing.T) {
	at := time.UnixMilli(42)
	id := NewID("My  Fancy -- Shape!", at)
	if !strings.HasPrefix(id, "captured-my-fancy-shape-") {
		t.Fatalf("unexpected slug in id: %q", id)
	}
}

func TestNewIDSortsByCaptureTime(t *testing.T) {
	earlier := NewID("Box", time.UnixMilli(1700000000000))
	later := NewID("Box", time.UnixMilli(1700000001000))
	if !(earlier < later) {
		t.Fatalf("expected ids to sort by capture time: %q vs %q", earlier, later)
	}
}

func TestPreviewPathRoundTrip(t *testing.T) {
	rel := PreviewPath("arrows", "captured-arrow1-abc")
	if rel != "arrows/captured-arrow1-abc.png" {
		t.Fatalf("unexpected preview path: %q", rel)
	}
	if got := PreviewCategory(rel); got != "arrows" {
		t.Fatalf("unexpected preview category: %q", got)
	}
}

func TestPreviewCategoryEdgeCases(t *testing.T) {
	if got := PreviewCategory("placeholder.png"); got != "" {
		t.Fatalf("expected empty category for flat path, got %q", got)
	}
	if got := PreviewCategory(`basic\captured-x.png`); got != "basic" {
		t.Fatalf("expected backslash tolerance, got %q", got)
	}
}

func TestRenderable(t *testing.T) {
	geometry := Record{Definition: Definition{Type: KindRect}}
	if !geometry.Renderable() {
		t.Fatal("geometry-backed record must be renderable")
	}
	nativeOnly := Record{NativeOnly: true}
	if nativeOnly.Renderable() {
		t.Fatal("native-only record without artifact must be unrenderable")
	}
	nativeOnly.NativePptx = "native/captured-group-x.pptx"
	if !nativeOnly.Renderable() {
		t.Fatal("native-only record with artifact must be renderable")
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := Record{
		ID:   "captured-star-1",
		Tags: []string{"captured", "basic"},
		Definition: Definition{
			Type: KindStar5,
			Adj:  []float64{25000},
			Fill: &Fill{Color: "FF0000"},
			Line: &Line{Color: "000000", Weight: 1.5},
		},
	}
	clone := rec.Clone()
	clone.Tags[0] = "changed"
	clone.Definition.Adj[0] = 1
	clone.Definition.Fill.Color = "00FF00"
	clone.Definition.Line.Weight = 9

	if rec.Tags[0] != "captured" {
		t.Fatal("tags aliased between clone and original")
	}
	if rec.Definition.Adj[0] != 25000 {
		t.Fatal("adjustments aliased between clone and original")
	}
	if rec.Definition.Fill.Color != "FF0000" {
		t.Fatal("fill aliased between clone and original")
	}
	if rec.Definition.Line.Weight != 1.5 {
		t.Fatal("line aliased between clone and original")
	}
}

func TestBuildTags(t *testing.T) {
	tags := BuildTags("Arrow1", "arrows", KindRightArrow)
	want := []string{"arrow", "arrow1", "arrows", "captured", "right"}
	if len(tags) != len(want) {
		t.Fatalf("unexpected tags: %v", tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags[%d] = %q, want %q (all: %v)", i, tags[i], want[i], tags)
		}
	}
}

func TestBuildTagsFiltersShortNameTokens(t *testing.T) {
	tags := BuildTags("My Q4 Fancy Org Chart", "basic", KindRect)
	for _, tag := range tags {
		if tag == "q4" || tag == "my" {
			t.Fatalf("short token leaked into tags: %v", tags)
		}
	}
	found := false
	for _, tag := range tags {
		if tag == "fancy" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected name token in tags: %v", tags)
	}
}
