// Package geom provides the 2-D geometry primitives the rest of the module
// is built on: points, homographies, bilinear sampling, and a grayscale
// image view.
package geom

import "github.com/paulmach/orb"

// Point is the module's 2-D point type.
type Point = orb.Point

// PixelCenter returns the sub-pixel center of the pixel at integer
// coordinates (x, y), per the (x+0.5, y+0.5) convention used throughout
// this module.
func PixelCenter(x, y int) Point {
	return Point{float64(x) + 0.5, float64(y) + 0.5}
}

// Sub returns a-b.
func Sub(a, b Point) Point {
	return Point{a[0] - b[0], a[1] - b[1]}
}

// Add returns a+b.
func Add(a, b Point) Point {
	return Point{a[0] + b[0], a[1] + b[1]}
}

// Scale returns p scaled by s.
func Scale(p Point, s float64) Point {
	return Point{p[0] * s, p[1] * s}
}

// Dot returns the dot product of a and b.
func Dot(a, b Point) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// Quad is an ordered set of four points in TL, TR, BR, BL order —
// clockwise, non-self-crossing — used for every per-cell correspondence in
// this module.
type Quad [4]Point

// SignedArea returns twice the signed area of the quad (shoelace formula).
// A positive value indicates clockwise winding in an image-space coordinate
// system where y increases downward.
func (q Quad) SignedArea() float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		a := q[i]
		b := q[(i+1)%4]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum
}

// IsClockwiseConvexish reports whether the quad winds clockwise (positive
// signed area) and is not self-intersecting in the cheap sense that all
// four signed areas of consecutive triples agree in sign with the whole.
func (q Quad) IsClockwiseConvexish() bool {
	total := q.SignedArea()
	if total <= 0 {
		return false
	}
	for i := 0; i < 4; i++ {
		a := q[i]
		b := q[(i+1)%4]
		c := q[(i+2)%4]
		cross := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		if cross <= 0 {
			return false
		}
	}
	return true
}
