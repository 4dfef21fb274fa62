package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestIdentityApply(t *testing.T) {
	h := Identity()
	p := Point{3, 4}
	got := h.Apply(p)
	if !almostEqual(got[0], 3) || !almostEqual(got[1], 4) {
		t.Errorf("Identity().Apply(%v) = %v, want unchanged", p, got)
	}
}

func TestHomographyInverse(t *testing.T) {
	h := Identity()
	inv, err := h.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	p := Point{5, -2}
	if got := inv.Apply(p); !almostEqual(got[0], 5) || !almostEqual(got[1], -2) {
		t.Errorf("inverse of identity changed point: %v", got)
	}
}

func TestEstimateFourPointAffine(t *testing.T) {
	src := [4]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	// A pure scale+translate quad, TL,TR,BR,BL ordered.
	dst := [4]Point{{10, 20}, {30, 20}, {30, 40}, {10, 40}}
	h, err := EstimateFourPoint(src, dst)
	if err != nil {
		t.Fatalf("EstimateFourPoint: %v", err)
	}
	for i, p := range src {
		got := h.Apply(p)
		if !almostEqual(got[0], dst[i][0]) || !almostEqual(got[1], dst[i][1]) {
			t.Errorf("src[%d]=%v -> %v, want %v", i, p, got, dst[i])
		}
	}
}

func TestEstimateFourPointProjective(t *testing.T) {
	src := [4]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	// A genuine perspective quad (not affine): top edge shorter than bottom.
	dst := [4]Point{{20, 0}, {80, 0}, {100, 100}, {0, 100}}
	h, err := EstimateFourPoint(src, dst)
	if err != nil {
		t.Fatalf("EstimateFourPoint: %v", err)
	}
	for i, p := range src {
		got := h.Apply(p)
		if !almostEqual(got[0], dst[i][0]) || !almostEqual(got[1], dst[i][1]) {
			t.Errorf("src[%d]=%v -> %v, want %v", i, p, got, dst[i])
		}
	}
}

func TestEstimateFourPointCollinearIsDegenerate(t *testing.T) {
	src := [4]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	dst := [4]Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}} // all collinear
	if _, err := EstimateFourPoint(src, dst); err == nil {
		t.Error("expected error for collinear destination quad")
	}
}

// TestEstimateDLTRecoversKnownHomography checks the noise-free case: dst is
// the exact image of src under a single known projective homography (the
// same quad as TestEstimateFourPointProjective, extended with two interior
// points), so the six correspondences are consistent and DLT should recover
// it to near machine precision.
func TestEstimateDLTRecoversKnownHomography(t *testing.T) {
	src := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}, {0.25, 0.75}}
	dst := []Point{{20, 0}, {80, 0}, {100, 100}, {0, 100}, {50, 37.5}, {200.0 / 7.0, 450.0 / 7.0}}
	h, err := EstimateDLT(src, dst)
	if err != nil {
		t.Fatalf("EstimateDLT: %v", err)
	}
	for i, p := range src {
		got := h.Apply(p)
		if math.Hypot(got[0]-dst[i][0], got[1]-dst[i][1]) > 1e-6 {
			t.Errorf("src[%d]=%v -> %v, want %v", i, p, got, dst[i])
		}
	}
}

// TestEstimateDLTToleratesNoisyOverdeterminedFit checks the realistic case:
// N>4 correspondences that do not lie exactly on one homography (simulating
// sub-pixel measurement noise). EstimateDLT must still return the
// least-squares-best homography rather than rejecting the input as
// degenerate — only a collapsed null space (genuine rank deficiency) should
// do that, not an ordinary nonzero residual.
func TestEstimateDLTToleratesNoisyOverdeterminedFit(t *testing.T) {
	src := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}, {0.25, 0.75}}
	dst := []Point{{20, 0}, {80, 0}, {100, 100}, {0, 100}, {50, 37.5}, {29, 65}} // last point nudged off the exact image
	h, err := EstimateDLT(src, dst)
	if err != nil {
		t.Fatalf("EstimateDLT: %v", err)
	}
	// The first four (exact, non-collinear) correspondences pin down the
	// homography tightly; the least-squares fit should stay close to them.
	for i := 0; i < 4; i++ {
		got := h.Apply(src[i])
		if math.Hypot(got[0]-dst[i][0], got[1]-dst[i][1]) > 1 {
			t.Errorf("src[%d]=%v -> %v, want ~%v", i, src[i], got, dst[i])
		}
	}
}

func TestEstimateDLTTooFewPoints(t *testing.T) {
	src := []Point{{0, 0}, {1, 0}, {1, 1}}
	dst := []Point{{0, 0}, {1, 0}, {1, 1}}
	if _, err := EstimateDLT(src, dst); err == nil {
		t.Error("expected error for fewer than 4 correspondences")
	}
}

func TestHomographyTimesComposesApplication(t *testing.T) {
	scale := Homography{a11: 2, a22: 2, a33: 1}
	translate := Homography{a11: 1, a22: 1, a13: 3, a23: 4, a33: 1}
	composed := translate.Times(scale) // scale first, then translate
	got := composed.Apply(Point{1, 1})
	if !almostEqual(got[0], 5) || !almostEqual(got[1], 6) {
		t.Errorf("composed.Apply({1,1}) = %v, want {5,6}", got)
	}
}
