package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Homography is a 3x3 real matrix, treated up to non-zero scale. It maps
// points by homogeneous multiplication followed by perspective divide.
type Homography struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// Identity returns the identity homography.
func Identity() Homography {
	return Homography{a11: 1, a22: 1, a33: 1}
}

// Apply maps p through the homography.
func (h Homography) Apply(p Point) Point {
	x, y := p[0], p[1]
	w := h.a31*x + h.a32*y + h.a33
	return Point{
		(h.a11*x + h.a12*y + h.a13) / w,
		(h.a21*x + h.a22*y + h.a23) / w,
	}
}

// ApplyQuad maps every corner of q through h.
func (h Homography) ApplyQuad(q Quad) Quad {
	var out Quad
	for i, p := range q {
		out[i] = h.Apply(p)
	}
	return out
}

// Times returns h*other (apply other first, then h).
func (h Homography) Times(o Homography) Homography {
	return Homography{
		a11: h.a11*o.a11 + h.a12*o.a21 + h.a13*o.a31,
		a12: h.a11*o.a12 + h.a12*o.a22 + h.a13*o.a32,
		a13: h.a11*o.a13 + h.a12*o.a23 + h.a13*o.a33,
		a21: h.a21*o.a11 + h.a22*o.a21 + h.a23*o.a31,
		a22: h.a21*o.a12 + h.a22*o.a22 + h.a23*o.a32,
		a23: h.a21*o.a13 + h.a22*o.a23 + h.a23*o.a33,
		a31: h.a31*o.a11 + h.a32*o.a21 + h.a33*o.a31,
		a32: h.a31*o.a12 + h.a32*o.a22 + h.a33*o.a32,
		a33: h.a31*o.a13 + h.a32*o.a23 + h.a33*o.a33,
	}
}

// Inverse returns the inverse homography, or an error wrapping
// ErrDegenerate if the matrix is singular.
func (h Homography) Inverse() (Homography, error) {
	det := h.a11*(h.a22*h.a33-h.a23*h.a32) -
		h.a12*(h.a21*h.a33-h.a23*h.a31) +
		h.a13*(h.a21*h.a32-h.a22*h.a31)
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Homography{}, fmt.Errorf("geom: singular homography: %w", ErrDegenerate)
	}
	invDet := 1.0 / det
	return Homography{
		a11: (h.a22*h.a33 - h.a23*h.a32) * invDet,
		a12: (h.a13*h.a32 - h.a12*h.a33) * invDet,
		a13: (h.a12*h.a23 - h.a13*h.a22) * invDet,
		a21: (h.a23*h.a31 - h.a21*h.a33) * invDet,
		a22: (h.a11*h.a33 - h.a13*h.a31) * invDet,
		a23: (h.a13*h.a21 - h.a11*h.a23) * invDet,
		a31: (h.a21*h.a32 - h.a22*h.a31) * invDet,
		a32: (h.a12*h.a31 - h.a11*h.a32) * invDet,
		a33: (h.a11*h.a22 - h.a12*h.a21) * invDet,
	}, nil
}

// EstimateFourPoint computes the closed-form homography mapping src[i] to
// dst[i] for exactly 4 correspondences, following the projective-square
// decomposition (square-to-quad and quad-to-square composed) classic to
// perspective-correct texture mapping.
func EstimateFourPoint(src, dst [4]Point) (Homography, error) {
	srcToSquare, err := squareToQuad(src)
	if err != nil {
		return Homography{}, err
	}
	squareToSrc, err := srcToSquare.Inverse()
	if err != nil {
		return Homography{}, err
	}
	squareToDst, err := squareToQuad(dst)
	if err != nil {
		return Homography{}, err
	}
	return squareToDst.Times(squareToSrc), nil
}

// squareToQuad computes the homography mapping the unit square
// (0,0),(1,0),(1,1),(0,1) to q, TL/TR/BR/BL ordered.
func squareToQuad(q [4]Point) (Homography, error) {
	x0, y0 := q[0][0], q[0][1]
	x1, y1 := q[1][0], q[1][1]
	x2, y2 := q[2][0], q[2][1]
	x3, y3 := q[3][0], q[3][1]

	dx1 := x1 - x2
	dx2 := x3 - x2
	dx3 := x0 - x1 + x2 - x3
	dy1 := y1 - y2
	dy2 := y3 - y2
	dy3 := y0 - y1 + y2 - y3

	if dx3 == 0 && dy3 == 0 {
		return Homography{
			a11: x1 - x0, a12: x3 - x0, a13: x0,
			a21: y1 - y0, a22: y3 - y0, a23: y0,
			a31: 0, a32: 0, a33: 1,
		}, nil
	}

	denominator := dx1*dy2 - dx2*dy1
	if denominator == 0 {
		return Homography{}, fmt.Errorf("geom: collinear quad points: %w", ErrDegenerate)
	}
	a31 := (dx3*dy2 - dx2*dy3) / denominator
	a32 := (dx1*dy3 - dx3*dy1) / denominator
	return Homography{
		a11: x1 - x0 + a31*x1, a12: x3 - x0 + a32*x3, a13: x0,
		a21: y1 - y0 + a31*y1, a22: y3 - y0 + a32*y3, a23: y0,
		a31: a31, a32: a32, a33: 1,
	}, nil
}

// EstimateDLT estimates a homography mapping src[i] to dst[i] for N >= 4
// correspondences by the Direct Linear Transform with Hartley isotropic
// normalization: translate each point set to its centroid, scale so the
// mean distance to the origin is sqrt(2), solve the 2Nx9 homogeneous
// system for its right null vector via SVD, then denormalize.
func EstimateDLT(src, dst []Point) (Homography, error) {
	if len(src) != len(dst) {
		return Homography{}, fmt.Errorf("geom: mismatched correspondence counts")
	}
	if len(src) < 4 {
		return Homography{}, fmt.Errorf("geom: need at least 4 correspondences, got %d", len(src))
	}

	srcN, srcT := normalize(src)
	dstN, dstT := normalize(dst)

	n := len(src)
	a := mat.NewDense(2*n, 9, nil)
	for i := 0; i < n; i++ {
		x, y := srcN[i][0], srcN[i][1]
		xp, yp := dstN[i][0], dstN[i][1]
		a.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, xp * x, xp * y, xp})
		a.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, yp * x, yp * y, yp})
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return Homography{}, fmt.Errorf("geom: SVD factorization failed: %w", ErrDegenerate)
	}
	sv := svd.Values(nil)
	if len(sv) < 8 || sv[7] < 1e-9*sv[0] {
		// For N=4 the 8x9 system yields only 8 singular values and its null
		// vector is exact. For N>4, sv[8], the smallest singular value, is the
		// system's least-squares residual: for noisy correspondences it is not expected to be
		// near zero, only smaller than the rest. Genuine rank deficiency
		// (e.g. collinear or duplicated source points) shows up as the
		// *second*-smallest singular value also collapsing toward zero,
		// meaning the null space has dimension >= 2 and no single row of V
		// is a well-defined solution.
		return Homography{}, fmt.Errorf("geom: rank-deficient correspondences: %w", ErrDegenerate)
	}
	var v mat.Dense
	svd.VTo(&v)
	h := make([]float64, 9)
	for i := 0; i < 9; i++ {
		h[i] = v.At(i, 8)
	}

	hn := Homography{
		a11: h[0], a12: h[1], a13: h[2],
		a21: h[3], a22: h[4], a23: h[5],
		a31: h[6], a32: h[7], a33: h[8],
	}

	// Denormalize: H = dstT^-1 * Hn * srcT
	dstTInv, err := dstT.Inverse()
	if err != nil {
		return Homography{}, err
	}
	return dstTInv.Times(hn).Times(srcT), nil
}

// normalize translates points to their centroid and scales them so the mean
// distance from the origin is sqrt(2), returning the normalized points and
// the transform that produced them.
func normalize(pts []Point) ([]Point, Homography) {
	var cx, cy float64
	for _, p := range pts {
		cx += p[0]
		cy += p[1]
	}
	n := float64(len(pts))
	cx /= n
	cy /= n

	var meanDist float64
	for _, p := range pts {
		meanDist += math.Hypot(p[0]-cx, p[1]-cy)
	}
	meanDist /= n
	if meanDist == 0 {
		meanDist = 1
	}
	scale := math.Sqrt2 / meanDist

	t := Homography{
		a11: scale, a12: 0, a13: -scale * cx,
		a21: 0, a22: scale, a23: -scale * cy,
		a31: 0, a32: 0, a33: 1,
	}
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out, t
}

