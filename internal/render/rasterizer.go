package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthurhrk/Shapeslibrary/internal/fileutil"
	"github.com/arthurhrk/Shapeslibrary/internal/logging"
	"github.com/arthurhrk/Shapeslibrary/internal/services"
	"github.com/arthurhrk/Shapeslibrary/internal/shape"
)

// Host default theme colors, used when a captured style carries no fill or
// line of its own.
var (
	defaultFill = color.RGBA{R: 0x44, G: 0x72, B: 0xC4, A: 0xFF}
	defaultLine = color.RGBA{R: 0x2F, G: 0x52, B: 0x8F, A: 0xFF}
)

// Rasterizer draws shape geometry straight to PNG without a host
// application. Fidelity is modest on purpose: solid fills for the common
// kinds, an outline box for the rest. Callers keep it away from native-only
// records, whose geometry is just a bounding box.
type Rasterizer struct {
	width  int
	height int
	logger *slog.Logger
}

// NewRasterizer builds the fallback renderer at the standard preview size.
func NewRasterizer(logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Rasterizer{
		width:  previewWidth,
		height: previewHeight,
		logger: logging.NewComponentLogger(logger, "raster"),
	}
}

// RenderPNG draws rec's geometry centered on a white canvas and writes the
// preview at pngPath.
func (r *Rasterizer) RenderPNG(rec shape.Record, pngPath string) error {
	if rec.NativeOnly {
		return services.Wrap(services.ErrValidation, "render", "rasterize",
			fmt.Sprintf("shape %s is native-only; drawing its bounding box would misrepresent it", rec.ID), nil)
	}

	img := r.draw(rec.Definition)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return services.Wrap(services.ErrInternal, "render", "rasterize", "encode preview image", err)
	}
	if err := os.MkdirAll(filepath.Dir(pngPath), 0o755); err != nil {
		return services.Wrap(services.ErrInternal, "render", "rasterize", "create preview directory", err)
	}
	if err := fileutil.WriteFileAtomic(pngPath, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrInternal, "render", "rasterize", "write preview image", err)
	}
	return nil
}

func (r *Rasterizer) draw(def shape.Definition) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Scale the shape to fit inside a margin, preserving aspect ratio. The
	// document position is irrelevant for a thumbnail; the shape centers.
	const margin = 30.0
	w, h := def.W, def.H
	if !(w > 0) {
		w = 1
	}
	if !(h > 0) {
		h = 1
	}
	scale := math.Min((float64(r.width)-2*margin)/w, (float64(r.height)-2*margin)/h)
	pw, ph := w*scale, h*scale
	x0 := (float64(r.width) - pw) / 2
	y0 := (float64(r.height) - ph) / 2

	o := outlineFor(def.Type, def, pw, ph)
	for i := range o.pts {
		o.pts[i].x += x0
		o.pts[i].y += y0
	}
	if def.Rotate != 0 {
		rotatePoints(o.pts, x0+pw/2, y0+ph/2, def.Rotate)
	}

	if o.fill {
		if c, ok := fillColor(def.Fill); ok {
			fillPolygon(img, o.pts, c)
		}
	}
	lineC, lineW := lineStyle(def.Line, scale)
	strokePolyline(img, o.pts, o.closed, lineC, lineW)
	return img
}

type point struct{ x, y float64 }

// outline is a kind's drawable geometry: a point loop (or open polyline)
// plus whether it takes a fill.
type outline struct {
	pts    []point
	fill   bool
	closed bool
}

// outlineFor maps the rasterizable kind subset onto point loops in local
// (0,0)-(w,h) coordinates. Kinds outside the subset degrade to an unfilled
// bounding box, which still reads as "a shape lives here" in a browser grid.
func outlineFor(kind shape.Kind, def shape.Definition, w, h float64) outline {
	closedFill := func(pts []point) outline { return outline{pts: pts, fill: true, closed: true} }

	switch kind {
	case shape.KindRect:
		return closedFill(rectPoints(w, h))
	case shape.KindRoundRect:
		return closedFill(roundRectPoints(w, h, roundRectRadius(def, w, h)))
	case shape.KindEllipse, shape.KindDonut:
		return closedFill(ellipsePoints(w, h, 64))
	case shape.KindDiamond:
		return closedFill([]point{{w / 2, 0}, {w, h / 2}, {w / 2, h}, {0, h / 2}})
	case shape.KindTriangle:
		return closedFill([]point{{w / 2, 0}, {w, h}, {0, h}})
	case shape.KindRtTriangle:
		return closedFill([]point{{0, 0}, {w, h}, {0, h}})
	case shape.KindParallelogram:
		off := w / 4
		return closedFill([]point{{off, 0}, {w, 0}, {w - off, h}, {0, h}})
	case shape.KindTrapezoid:
		off := w / 4
		return closedFill([]point{{off, 0}, {w - off, 0}, {w, h}, {0, h}})
	case shape.KindPentagon:
		return closedFill(regularPolygon(5, w, h))
	case shape.KindHexagon:
		return closedFill([]point{{w * 0.25, 0}, {w * 0.75, 0}, {w, h / 2}, {w * 0.75, h}, {w * 0.25, h}, {0, h / 2}})
	case shape.KindOctagon:
		cut := math.Min(w, h) * 0.29
		return closedFill([]point{
			{cut, 0}, {w - cut, 0}, {w, cut}, {w, h - cut},
			{w - cut, h}, {cut, h}, {0, h - cut}, {0, cut},
		})
	case shape.KindPlus:
		arm := math.Min(w, h) / 3
		cx1, cx2 := (w-arm)/2, (w+arm)/2
		cy1, cy2 := (h-arm)/2, (h+arm)/2
		return closedFill([]point{
			{cx1, 0}, {cx2, 0}, {cx2, cy1}, {w, cy1}, {w, cy2}, {cx2, cy2},
			{cx2, h}, {cx1, h}, {cx1, cy2}, {0, cy2}, {0, cy1}, {cx1, cy1},
		})
	case shape.KindStar4:
		return closedFill(starPoints(4, 0.30, w, h))
	case shape.KindStar5:
		return closedFill(starPoints(5, 0.382, w, h))
	case shape.KindRightArrow:
		return closedFill([]point{
			{0, h * 0.25}, {w * 0.65, h * 0.25}, {w * 0.65, 0},
			{w, h / 2}, {w * 0.65, h}, {w * 0.65, h * 0.75}, {0, h * 0.75},
		})
	case shape.KindLeftArrow:
		return closedFill(mirrorX(outlineFor(shape.KindRightArrow, def, w, h).pts, w))
	case shape.KindUpArrow:
		return closedFill([]point{
			{w * 0.25, h}, {w * 0.25, h * 0.35}, {0, h * 0.35},
			{w / 2, 0}, {w, h * 0.35}, {w * 0.75, h * 0.35}, {w * 0.75, h},
		})
	case shape.KindDownArrow:
		return closedFill(mirrorY(outlineFor(shape.KindUpArrow, def, w, h).pts, h))
	case shape.KindLeftRightArrow:
		return closedFill([]point{
			{0, h / 2}, {w * 0.25, 0}, {w * 0.25, h * 0.25}, {w * 0.75, h * 0.25},
			{w * 0.75, 0}, {w, h / 2}, {w * 0.75, h}, {w * 0.75, h * 0.75},
			{w * 0.25, h * 0.75}, {w * 0.25, h},
		})
	case shape.KindChevron:
		notch := w / 4
		return closedFill([]point{
			{0, 0}, {w - notch, 0}, {w, h / 2}, {w - notch, h}, {0, h}, {notch, h / 2},
		})
	case shape.KindHomePlate:
		return closedFill([]point{{0, 0}, {w * 0.75, 0}, {w, h / 2}, {w * 0.75, h}, {0, h}})
	case shape.KindLine:
		return outline{pts: []point{{0, 0}, {w, h}}, fill: false, closed: false}
	default:
		return outline{pts: rectPoints(w, h), fill: false, closed: true}
	}
}

func rectPoints(w, h float64) []point {
	return []point{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// roundRectRadius resolves the corner radius in pixels. The mac host reports
// the corner adjustment as a fraction, the windows host in 100000-based
// units; values at or below 1 read as the fraction form.
func roundRectRadius(def shape.Definition, w, h float64) float64 {
	adj := def.RectRadius
	if adj <= 0 && len(def.Adj) > 0 {
		adj = def.Adj[0]
	}
	if adj <= 0 {
		adj = 16667
	}
	min := math.Min(w, h)
	if adj <= 1 {
		return min * adj / 2
	}
	return min * adj / 200000
}

func roundRectPoints(w, h, radius float64) []point {
	r := math.Min(radius, math.Min(w, h)/2)
	if r < 1 {
		return rectPoints(w, h)
	}
	const segs = 8
	arc := func(cx, cy, startDeg float64) []point {
		pts := make([]point, 0, segs+1)
		for i := 0; i <= segs; i++ {
			a := (startDeg + 90*float64(i)/segs) * math.Pi / 180
			pts = append(pts, point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
		}
		return pts
	}
	var pts []point
	pts = append(pts, arc(w-r, r, -90)...)  // top right
	pts = append(pts, arc(w-r, h-r, 0)...)  // bottom right
	pts = append(pts, arc(r, h-r, 90)...)   // bottom left
	pts = append(pts, arc(r, r, 180)...)    // top left
	return pts
}

func ellipsePoints(w, h float64, segs int) []point {
	pts := make([]point, 0, segs)
	for i := 0; i < segs; i++ {
		a := 2 * math.Pi * float64(i) / float64(segs)
		pts = append(pts, point{w/2 + w/2*math.Cos(a), h/2 + h/2*math.Sin(a)})
	}
	return pts
}

func regularPolygon(n int, w, h float64) []point {
	pts := make([]point, 0, n)
	for i := 0; i < n; i++ {
		a := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		pts = append(pts, point{w/2 + w/2*math.Cos(a), h/2 + h/2*math.Sin(a)})
	}
	return pts
}

func starPoints(n int, innerRatio, w, h float64) []point {
	pts := make([]point, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		a := math.Pi*float64(i)/float64(n) - math.Pi/2
		rx, ry := w/2, h/2
		if i%2 == 1 {
			rx *= innerRatio
			ry *= innerRatio
		}
		pts = append(pts, point{w/2 + rx*math.Cos(a), h/2 + ry*math.Sin(a)})
	}
	return pts
}

func mirrorX(pts []point, w float64) []point {
	out := make([]point, len(pts))
	for i, p := range pts {
		out[i] = point{w - p.x, p.y}
	}
	return out
}

func mirrorY(pts []point, h float64) []point {
	out := make([]point, len(pts))
	for i, p := range pts {
		out[i] = point{p.x, h - p.y}
	}
	return out
}

func rotatePoints(pts []point, cx, cy, deg float64) {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	for i, p := range pts {
		dx, dy := p.x-cx, p.y-cy
		pts[i] = point{cx + dx*cos - dy*sin, cy + dx*sin + dy*cos}
	}
}

// fillColor resolves the fill style to a drawable color; ok is false when
// the style renders nothing (fully transparent).
func fillColor(fill *shape.Fill) (color.RGBA, bool) {
	c := defaultFill
	alpha := 1.0
	if fill != nil {
		if parsed, ok := parseHexColor(fill.Color); ok {
			c = parsed
		}
		alpha = 1 - clamp01(fill.Transparency)
	}
	c.A = uint8(math.Round(alpha * 255))
	return c, c.A > 0
}

// lineStyle resolves the outline color (pre-blended over white so strokes
// can overdraw without darkening) and its pixel width.
func lineStyle(line *shape.Line, scale float64) (color.RGBA, float64) {
	c := defaultLine
	weight := 1.0
	alpha := 1.0
	if line != nil {
		if parsed, ok := parseHexColor(line.Color); ok {
			c = parsed
		}
		if line.Weight > 0 {
			weight = line.Weight
		}
		alpha = 1 - clamp01(line.Transparency)
	}
	c = overWhite(c, alpha)
	width := weight / 72 * scale // points to inches to pixels
	if width < 1 {
		width = 1
	}
	return c, width
}

func parseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	var v uint32
	for _, r := range s {
		var d uint32
		switch {
		case r >= '0' && r <= '9':
			d = uint32(r - '0')
		case r >= 'A' && r <= 'F':
			d = uint32(r-'A') + 10
		case r >= 'a' && r <= 'f':
			d = uint32(r-'a') + 10
		default:
			return color.RGBA{}, false
		}
		v = v<<4 | d
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, true
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func overWhite(c color.RGBA, alpha float64) color.RGBA {
	a := clamp01(alpha)
	mix := func(v uint8) uint8 {
		return uint8(math.Round(float64(v)*a + 255*(1-a)))
	}
	return color.RGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 0xFF}
}

// fillPolygon runs an even-odd scanline fill over the point loop.
func fillPolygon(img *image.RGBA, pts []point, c color.RGBA) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].y, pts[0].y
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
	}
	b := img.Bounds()
	y0 := maxInt(int(math.Floor(minY)), b.Min.Y)
	y1 := minInt(int(math.Ceil(maxY)), b.Max.Y-1)

	xs := make([]float64, 0, len(pts))
	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		xs = xs[:0]
		j := len(pts) - 1
		for i := 0; i < len(pts); i++ {
			a, z := pts[i], pts[j]
			if (a.y <= fy && z.y > fy) || (z.y <= fy && a.y > fy) {
				t := (fy - a.y) / (z.y - a.y)
				xs = append(xs, a.x+t*(z.x-a.x))
			}
			j = i
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			x0 := maxInt(int(math.Round(xs[k])), b.Min.X)
			x1 := minInt(int(math.Round(xs[k+1])), b.Max.X-1)
			for x := x0; x <= x1; x++ {
				blendPixel(img, x, y, c)
			}
		}
	}
}

// strokePolyline stamps a thick stroke along the point sequence, closing the
// loop when closed.
func strokePolyline(img *image.RGBA, pts []point, closed bool, c color.RGBA, width float64) {
	n := len(pts)
	if n < 2 {
		return
	}
	edges := n - 1
	if closed {
		edges = n
	}
	for i := 0; i < edges; i++ {
		a, z := pts[i], pts[(i+1)%n]
		dist := math.Hypot(z.x-a.x, z.y-a.y)
		steps := int(dist*2) + 1
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			stampDot(img, a.x+(z.x-a.x)*t, a.y+(z.y-a.y)*t, width/2, c)
		}
	}
}

func stampDot(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	if r < 0.5 {
		r = 0.5
	}
	b := img.Bounds()
	x0 := maxInt(int(math.Floor(cx-r)), b.Min.X)
	x1 := minInt(int(math.Ceil(cx+r)), b.Max.X-1)
	y0 := maxInt(int(math.Floor(cy-r)), b.Min.Y)
	y1 := minInt(int(math.Ceil(cy+r)), b.Max.Y-1)
	rr := r * r
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= rr {
				// Stroke colors are pre-blended opaque; plain set avoids
				// darkening where stamps overlap.
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, c color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y || c.A == 0 {
		return
	}
	if c.A == 255 {
		img.SetRGBA(x, y, c)
		return
	}
	off := (y-b.Min.Y)*img.Stride + (x-b.Min.X)*4
	pix := img.Pix
	a := uint32(c.A)
	ia := 255 - a
	pix[off] = uint8((uint32(c.R)*a + uint32(pix[off])*ia) / 255)
	pix[off+1] = uint8((uint32(c.G)*a + uint32(pix[off+1])*ia) / 255)
	pix[off+2] = uint8((uint32(c.B)*a + uint32(pix[off+2])*ia) / 255)
	pix[off+3] = 255
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
