// Package grid implements the sparse tile map that the Intcode client
// programs draw on, and renders it as text or as an image.
package grid

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
)

// Point is a tile coordinate. Y grows downwards, as on screen.
type Point struct{ X, Y int }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Neighbors returns the four points adjacent to p, in Dir order.
func (p Point) Neighbors() [4]Point {
	return [4]Point{p.Add(North.Delta()), p.Add(East.Delta()), p.Add(South.Delta()), p.Add(West.Delta())}
}

// Dir is a compass direction.
type Dir byte

const (
	North Dir = iota
	East
	South
	West
)

var deltas = [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Delta returns the unit step in direction d.
func (d Dir) Delta() Point { return deltas[d&3] }

func (d Dir) Left() Dir    { return (d + 3) & 3 }
func (d Dir) Right() Dir   { return (d + 1) & 3 }
func (d Dir) Reverse() Dir { return (d + 2) & 3 }

func (d Dir) String() string { return [4]string{"N", "E", "S", "W"}[d&3] }

// Grid maps points to tile values. Missing points are empty (tile 0).
type Grid map[Point]int64

// Bounds returns the smallest rectangle containing every tile in g.
// The maximum is exclusive. An empty grid has empty bounds.
func (g Grid) Bounds() image.Rectangle {
	var r image.Rectangle
	first := true
	for p := range g {
		if first {
			r = image.Rect(p.X, p.Y, p.X+1, p.Y+1)
			first = false
			continue
		}
		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	}
	return r
}

// Count returns the number of tiles whose value is v.
func (g Grid) Count(v int64) int {
	n := 0
	for _, t := range g {
		if t == v {
			n++
		}
	}
	return n
}

// Find returns the first point holding v in row-major order.
func (g Grid) Find(v int64) (Point, bool) {
	r := g.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if t, ok := g[Point{x, y}]; ok && t == v {
				return Point{x, y}, true
			}
		}
	}
	return Point{}, false
}

// Render draws g as text, one line per row, mapping tiles through glyph.
// Missing tiles are drawn as glyph(0).
func (g Grid) Render(glyph func(int64) rune) string {
	r := g.Bounds()
	var b strings.Builder
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.WriteRune(glyph(g[Point{x, y}]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Palette maps tile values to colours and must not be empty. Values
// outside the palette are drawn with the last entry.
type Palette []color.RGBA

func (p Palette) color(v int64) color.RGBA {
	if v < 0 || v >= int64(len(p)) {
		return p[len(p)-1]
	}
	return p[v]
}

// Image draws g with one pixel per tile and then scales it up by scale
// using nearest-neighbour sampling. The result's origin is at 0,0.
func (g Grid) Image(pal Palette, scale int) *image.RGBA {
	r := g.Bounds()
	if scale < 1 {
		scale = 1
	}
	src := fill(r.Dx(), r.Dy(), pal.color(0))
	for p, v := range g {
		src.SetRGBA(p.X-r.Min.X, p.Y-r.Min.Y, pal.color(v))
	}
	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx()*scale, r.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func fill(w, h int, c color.RGBA) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for b := m.Pix; len(b) >= 4; b = b[4:] {
		b[0] = c.R
		b[1] = c.G
		b[2] = c.B
		b[3] = c.A
	}
	return m
}
