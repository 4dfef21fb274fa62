package dict

import (
	"testing"

	"github.com/quartzvision/calibtarget/corner"
	"github.com/quartzvision/calibtarget/geom"
)

func TestRotate90MovesTopLeftToTopRight(t *testing.T) {
	code := Code{true, false, false, false} // (0,0)=1, side 2
	rotated := Rotate(code, 2, 1)
	want := Code{false, true, false, false} // (0,1)=1
	for i := range want {
		if rotated[i] != want[i] {
			t.Fatalf("Rotate(code,2,1) = %v, want %v", rotated, want)
		}
	}
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	code := Code{true, false, true, true, false, false, true, false, true}
	rotated := Rotate(code, 3, 4)
	for i := range code {
		if rotated[i] != code[i] {
			t.Fatalf("Rotate by 4 steps changed the code: %v != %v", rotated, code)
		}
	}
}

func twoCodeDict() *Dictionary {
	return &Dictionary{
		Name:        "test",
		BitsPerSide: 2,
		Codes: []Code{
			{true, false, false, false},
			{false, false, false, false},
		},
	}
}

func TestMatcherExactMatch(t *testing.T) {
	m := NewMatcher(twoCodeDict(), 1)
	id, rot, hamming, ok := m.Match(Code{true, false, false, false})
	if !ok || id != 0 || rot != 0 || hamming != 0 {
		t.Fatalf("Match = (%d,%d,%d,%v), want (0,0,0,true)", id, rot, hamming, ok)
	}
}

func TestMatcherFindsRotatedMatch(t *testing.T) {
	m := NewMatcher(twoCodeDict(), 1)
	// code 0's 90-degree-clockwise rotation puts the 1-bit at (0,1).
	id, rot, hamming, ok := m.Match(Code{false, true, false, false})
	if !ok || id != 0 || rot != 1 || hamming != 0 {
		t.Fatalf("Match = (%d,%d,%d,%v), want (0,1,0,true)", id, rot, hamming, ok)
	}
}

func TestMatcherRejectsBeyondTolerance(t *testing.T) {
	// {true,true,false,false} is 1 bit off from code 0 at rotation 0 (and
	// at rotation 1), and 2 bits off from code 1 at every rotation.
	tolerant := NewMatcher(twoCodeDict(), 1)
	id, _, hamming, ok := tolerant.Match(Code{true, true, false, false})
	if !ok || id != 0 || hamming != 1 {
		t.Fatalf("Match = (id=%d,hamming=%d,ok=%v), want (0,1,true)", id, hamming, ok)
	}

	strict := NewMatcher(twoCodeDict(), 0)
	if _, _, _, ok := strict.Match(Code{true, true, false, false}); ok {
		t.Fatal("hamming-0 tolerance should not accept a 1-bit-off observation")
	}
}

func TestMatcherTieBreaksByLowestID(t *testing.T) {
	d := &Dictionary{
		Name:        "tie",
		BitsPerSide: 2,
		Codes: []Code{
			{true, true, false, false},
			{true, true, false, false},
		},
	}
	m := NewMatcher(d, 2)
	id, _, _, ok := m.Match(Code{true, true, false, false})
	if !ok || id != 0 {
		t.Fatalf("Match id = %d, want 0 (lowest tied id)", id)
	}
}

func TestLookupBuiltinDictionaryShape(t *testing.T) {
	d := Lookup("DICT_4X4_50")
	if d == nil {
		t.Fatal("Lookup(DICT_4X4_50) = nil")
	}
	if d.BitsPerSide != 4 || d.CodeCount() != 50 {
		t.Errorf("DICT_4X4_50 shape = %dx%d/%d, want 4x4/50", d.BitsPerSide, d.BitsPerSide, d.CodeCount())
	}
	if Lookup("DICT_NOT_A_REAL_DICT") != nil {
		t.Error("Lookup of an unknown dictionary should return nil")
	}
}

// buildBlockImage renders an n x n grid of blockPx-sized solid blocks,
// black where black[r][c] is true, white otherwise.
func buildBlockImage(n, blockPx int, black [][]bool) *geom.GrayImage {
	img := geom.NewBlankGrayImage(n*blockPx, n*blockPx)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := uint8(255)
			if black[r][c] {
				v = 0
			}
			for y := 0; y < blockPx; y++ {
				for x := 0; x < blockPx; x++ {
					img.Set(c*blockPx+x, r*blockPx+y, v)
				}
			}
		}
	}
	return img
}

func TestSampleCellQuadRecoversInteriorBits(t *testing.T) {
	// 4x4 block grid: border ring (all of row/col 0 and 3) is black, the
	// 2x2 interior is [false,true / true,false].
	black := [][]bool{
		{true, true, true, true},
		{true, false, true, true},
		{true, true, false, true},
		{true, true, true, true},
	}
	img := buildBlockImage(4, 10, black)
	quad := geom.Quad{{0, 0}, {40, 0}, {40, 40}, {0, 40}}
	cfg := ScanDecodeConfig{BorderBits: 1, MarkerSizeRel: 1.0, InsetFrac: 0, MinBorderScore: 0.6}

	sample, ok := SampleCellQuad(img, quad, 2, cfg)
	if !ok {
		t.Fatal("SampleCellQuad rejected a clean all-black border")
	}
	want := Code{false, true, true, false}
	for i := range want {
		if sample.Interior[i] != want[i] {
			t.Fatalf("Interior = %v, want %v", sample.Interior, want)
		}
	}
	if sample.BorderScore != 1.0 {
		t.Errorf("BorderScore = %v, want 1.0", sample.BorderScore)
	}
}

func TestSampleCellQuadRejectsWeakBorder(t *testing.T) {
	// An all-white image has no black border at all.
	img := geom.NewBlankGrayImage(40, 40)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, 255)
		}
	}
	quad := geom.Quad{{0, 0}, {40, 0}, {40, 40}, {0, 40}}
	cfg := ScanDecodeConfig{BorderBits: 1, MarkerSizeRel: 1.0, InsetFrac: 0, MinBorderScore: 0.6}
	_, ok := SampleCellQuad(img, quad, 2, cfg)
	if ok {
		t.Fatal("expected rejection of a uniformly white cell (no border contrast)")
	}
}

func TestScanDecodeMarkersInCellsOrdersByJThenI(t *testing.T) {
	black := [][]bool{
		{true, true, true, true},
		{true, false, true, true},
		{true, true, false, true},
		{true, true, true, true},
	}
	img := buildBlockImage(4, 10, black)
	quad := geom.Quad{{0, 0}, {40, 0}, {40, 40}, {0, 40}}

	d := &Dictionary{Name: "scan-test", BitsPerSide: 2, Codes: []Code{{false, true, true, false}}}
	m := NewMatcher(d, 0)
	cfg := ScanDecodeConfig{BorderBits: 1, MarkerSizeRel: 1.0, InsetFrac: 0, MinBorderScore: 0.6, DedupByID: false}

	cellQuads := map[corner.GridCoords]geom.Quad{
		{I: 2, J: 0}: quad,
		{I: 0, J: 1}: quad,
		{I: 1, J: 0}: quad,
	}
	dets := ScanDecodeMarkersInCells(img, cellQuads, m, cfg)
	if len(dets) != 3 {
		t.Fatalf("got %d detections, want 3", len(dets))
	}
	wantOrder := []corner.GridCoords{{I: 1, J: 0}, {I: 2, J: 0}, {I: 0, J: 1}}
	for i, want := range wantOrder {
		if dets[i].GC0 != want {
			t.Errorf("dets[%d].GC0 = %v, want %v", i, dets[i].GC0, want)
		}
	}
}
