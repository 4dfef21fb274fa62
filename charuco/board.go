package charuco

import "github.com/quartzvision/calibtarget/dict"

// BoardSpec describes a ChArUco board's physical and logical layout. Rows
// and Cols are square counts, not corner counts — the corner lattice is
// (Cols+1) x (Rows+1).
type BoardSpec struct {
	Rows          int     `yaml:"rows"`
	Cols          int     `yaml:"cols"`
	CellSize      float64 `yaml:"cell_size"`
	MarkerSizeRel float64 `yaml:"marker_size_rel"`
	Dictionary    string  `yaml:"dictionary"`
}

// CharucoBoard precomputes, for every marker the layout places, its cell,
// expected rotation and dictionary ID, plus the dictionary itself. It is
// built once per board and reused across Detect calls.
type CharucoBoard struct {
	Spec       BoardSpec
	Dictionary *dict.Dictionary
	Layout     MarkerLayout
}

// NewCharucoBoard validates spec and builds its layout and dictionary.
// A malformed spec is a programmer error: this panics rather than
// returning an error, matching ErrInvalidBoardSpec's documented contract.
func NewCharucoBoard(spec BoardSpec) *CharucoBoard {
	if spec.Rows <= 1 || spec.Cols <= 1 {
		panic("charuco: BoardSpec.Rows and Cols must each be >= 2: " + errInvalidBoardSpec)
	}
	if spec.MarkerSizeRel <= 0 || spec.MarkerSizeRel > 1 {
		panic("charuco: BoardSpec.MarkerSizeRel must be in (0,1]: " + errInvalidBoardSpec)
	}
	if spec.CellSize <= 0 {
		panic("charuco: BoardSpec.CellSize must be positive: " + errInvalidBoardSpec)
	}
	d := dict.Lookup(spec.Dictionary)
	if d == nil {
		panic("charuco: unknown dictionary " + spec.Dictionary + ": " + errInvalidBoardSpec)
	}

	layout := newOpenCVLayout(spec.Cols, spec.Rows)
	needed := (spec.Cols*spec.Rows + 1) / 2
	if d.CodeCount() < needed {
		panic("charuco: dictionary too small for board size: " + errInvalidBoardSpec)
	}

	return &CharucoBoard{Spec: spec, Dictionary: d, Layout: layout}
}

const errInvalidBoardSpec = "calibtarget: invalid board spec"

// InnerCornerID returns the ChArUco corner ID for board lattice coordinate
// (col, row), or ok=false if it is a border corner (col<=0, row<=0,
// col>=Cols, row>=Rows) or otherwise outside the board.
func (b *CharucoBoard) InnerCornerID(col, row int) (id int, ok bool) {
	if col <= 0 || row <= 0 || col >= b.Spec.Cols || row >= b.Spec.Rows {
		return 0, false
	}
	bx, by := col-1, row-1
	return by*(b.Spec.Cols-1) + bx, true
}

// TargetPosition returns the physical-unit position of board lattice
// coordinate (col, row), in the same units as Spec.CellSize.
func (b *CharucoBoard) TargetPosition(col, row int) [2]float64 {
	return [2]float64{float64(col) * b.Spec.CellSize, float64(row) * b.Spec.CellSize}
}
