package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect is a page-local rectangle in the canonical coordinate system: origin
// at the top-left corner of the page, X growing right, Y growing down.
// X0/Y0 is the top-left corner and X1/Y1 the bottom-right corner.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect creates a rectangle from two corners in any order
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// RectFromPoints creates the smallest rectangle containing all points
func RectFromPoints(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{X0: points[0].X, Y0: points[0].Y, X1: points[0].X, Y1: points[0].Y}
	for _, p := range points[1:] {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Area returns the area, or 0 for degenerate rectangles
func (r Rect) Area() float64 {
	if r.IsDegenerate() {
		return 0
	}
	return r.Width() * r.Height()
}

// IsDegenerate reports whether the rectangle has no positive area
func (r Rect) IsDegenerate() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Center returns the center point
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// ContainsPoint checks if a point lies inside the rectangle (edges included)
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// Intersects checks if two rectangles overlap with positive area
func (r Rect) Intersects(other Rect) bool {
	return r.X0 < other.X1 && other.X0 < r.X1 && r.Y0 < other.Y1 && other.Y0 < r.Y1
}

// Intersection returns the overlapping region, or the zero Rect if the
// rectangles do not overlap
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}
	return Rect{
		X0: math.Max(r.X0, other.X0),
		Y0: math.Max(r.Y0, other.Y0),
		X1: math.Min(r.X1, other.X1),
		Y1: math.Min(r.Y1, other.Y1),
	}
}

// Union returns the smallest rectangle containing both rectangles
func (r Rect) Union(other Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, other.X0),
		Y0: math.Min(r.Y0, other.Y0),
		X1: math.Max(r.X1, other.X1),
		Y1: math.Max(r.Y1, other.Y1),
	}
}

// Expand grows the rectangle by margin on all four sides
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X0: r.X0 - margin,
		Y0: r.Y0 - margin,
		X1: r.X1 + margin,
		Y1: r.Y1 + margin,
	}
}

// IoU returns the intersection area over the union area of a and b.
// The result lies in [0,1]; disjoint or degenerate rectangles give 0.
func IoU(a, b Rect) float64 {
	inter := a.Intersection(b).Area()
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Contains reports whether inner lies within outer once outer's edges are
// pushed out by margin on all four sides. Use it rather than IoU to test a
// small word against a large table region: IoU penalizes the size mismatch.
func Contains(outer, inner Rect, margin float64) bool {
	return inner.X0 >= outer.X0-margin &&
		inner.X1 <= outer.X1+margin &&
		inner.Y0 >= outer.Y0-margin &&
		inner.Y1 <= outer.Y1+margin
}

// Matrix represents a 2D affine transformation matrix [a b c d e f]
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns m × other. Applying the result equals applying m first
// and other second.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
