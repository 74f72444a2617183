// Package geometry provides the coordinate math shared by the board executor
// and hit testing: bounding boxes, point-in-shape tests, and arrange layouts.
// Rectangles are axis-aligned with X,Y at the top-left corner.
package geometry

import "math"

type Point struct {
	X float64
	Y float64
}

type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the midpoint of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Union returns the smallest rect covering both r and o.
func (r Rect) Union(o Rect) Rect {
	x1 := math.Min(r.X, o.X)
	y1 := math.Min(r.Y, o.Y)
	x2 := math.Max(r.X+r.Width, o.X+o.Width)
	y2 := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// EllipseContains reports whether p lies inside the ellipse inscribed in r.
// Circles on the board are stored as their bounding rect, so this is the hit
// test for circle shapes.
func EllipseContains(r Rect, p Point) bool {
	rx := r.Width / 2
	ry := r.Height / 2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := r.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// BoundingBox returns the union of all rects. ok is false for an empty input.
func BoundingBox(rects []Rect) (box Rect, ok bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	box = rects[0]
	for _, r := range rects[1:] {
		box = box.Union(r)
	}
	return box, true
}

// Clamp keeps r inside the square [min, max] span on both axes. Size is capped
// to the span; position is shifted so the rect stays fully visible.
func Clamp(r Rect, min, max float64) Rect {
	span := max - min
	if r.Width > span {
		r.Width = span
	}
	if r.Height > span {
		r.Height = span
	}
	if r.X < min {
		r.X = min
	}
	if r.X+r.Width > max {
		r.X = max - r.Width
	}
	if r.Y < min {
		r.Y = min
	}
	if r.Y+r.Height > max {
		r.Y = max - r.Height
	}
	return r
}

// GridColumns returns the column count used to lay n elements out as a grid:
// the smallest square that fits them, row-major.
func GridColumns(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// LayoutRow returns target positions placing rects left to right from origin,
// separated by spacing. Sizes are preserved; only positions move.
func LayoutRow(rects []Rect, origin Point, spacing float64) []Point {
	out := make([]Point, len(rects))
	x := origin.X
	for i, r := range rects {
		out[i] = Point{X: x, Y: origin.Y}
		x += r.Width + spacing
	}
	return out
}

// LayoutColumn returns target positions placing rects top to bottom from
// origin, separated by spacing.
func LayoutColumn(rects []Rect, origin Point, spacing float64) []Point {
	out := make([]Point, len(rects))
	y := origin.Y
	for i, r := range rects {
		out[i] = Point{X: origin.X, Y: y}
		y += r.Height + spacing
	}
	return out
}

// LayoutGrid returns target positions placing rects row-major into a
// GridColumns-wide grid of uniform cells. Cell size is the largest width and
// height present plus spacing, so nothing overlaps.
func LayoutGrid(rects []Rect, origin Point, spacing float64) []Point {
	out := make([]Point, len(rects))
	if len(rects) == 0 {
		return out
	}
	cols := GridColumns(len(rects))
	var maxW, maxH float64
	for _, r := range rects {
		maxW = math.Max(maxW, r.Width)
		maxH = math.Max(maxH, r.Height)
	}
	cellW := maxW + spacing
	cellH := maxH + spacing
	for i := range rects {
		row := i / cols
		col := i % cols
		out[i] = Point{X: origin.X + float64(col)*cellW, Y: origin.Y + float64(row)*cellH}
	}
	return out
}
