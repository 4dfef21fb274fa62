// Package d4 implements the dihedral group of order 8 — the symmetries of
// a square: 4 rotations times an optional reflection — as explicit 2x2
// integer matrices, per the design note in the module's specification.
// Composition and inversion are plain matrix arithmetic; no runtime
// dispatch is needed for 8 elements.
package d4

// Transform is a 2x2 integer matrix {a,b,c,d} with determinant +-1,
// mapping (i,j) -> (a*i+b*j, c*i+d*j).
type Transform struct {
	A, B, C, D int
}

// Apply maps (i, j) through t.
func (t Transform) Apply(i, j int) (int, int) {
	return t.A*i + t.B*j, t.C*i + t.D*j
}

// Compose returns t applied after o: Compose(t, o).Apply(p) == t.Apply(o.Apply(p)).
func Compose(t, o Transform) Transform {
	return Transform{
		A: t.A*o.A + t.B*o.C,
		B: t.A*o.B + t.B*o.D,
		C: t.C*o.A + t.D*o.C,
		D: t.C*o.B + t.D*o.D,
	}
}

// Inverse returns the inverse of t. Every element of D4 has determinant
// +-1, so the inverse is always another integer matrix — the adjugate
// divided by the determinant.
func (t Transform) Inverse() Transform {
	det := t.A*t.D - t.B*t.C // always +1 or -1 for elements of D4
	return Transform{
		A: t.D * det,
		B: -t.B * det,
		C: -t.C * det,
		D: t.A * det,
	}
}

// Identity is the identity transform.
var Identity = Transform{A: 1, D: 1}

// Elements lists all 8 elements of D4: the 4 rotations by 0/90/180/270
// degrees, each optionally followed by a horizontal-flip reflection. Index
// 0 is always Identity.
var Elements = [8]Transform{
	{A: 1, B: 0, C: 0, D: 1},   // identity
	{A: 0, B: -1, C: 1, D: 0},  // rotate 90
	{A: -1, B: 0, C: 0, D: -1}, // rotate 180
	{A: 0, B: 1, C: -1, D: 0},  // rotate 270
	{A: -1, B: 0, C: 0, D: 1},  // reflect + identity
	{A: 0, B: 1, C: 1, D: 0},   // reflect + rotate 90
	{A: 1, B: 0, C: 0, D: -1},  // reflect + rotate 180
	{A: 0, B: -1, C: -1, D: 0}, // reflect + rotate 270
}

// Equal reports whether two transforms are identical.
func (t Transform) Equal(o Transform) bool {
	return t.A == o.A && t.B == o.B && t.C == o.C && t.D == o.D
}

// Less gives a total order over transforms, used for the lexicographic
// tie-break the specification mandates for equally scored alignment
// candidates.
func (t Transform) Less(o Transform) bool {
	if t.A != o.A {
		return t.A < o.A
	}
	if t.B != o.B {
		return t.B < o.B
	}
	if t.C != o.C {
		return t.C < o.C
	}
	return t.D < o.D
}
