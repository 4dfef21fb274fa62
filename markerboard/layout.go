// Package markerboard implements C8: recovering a chessboard's absolute
// orientation and origin from three disambiguating circles painted on
// otherwise-identical squares, by matching their detected cells against a
// known layout under the dihedral group of grid symmetries.
package markerboard

import "github.com/quartzvision/calibtarget/corner"

// Polarity is the expected contrast direction of a circle: a black disk on
// a white square, or a white disk on a black square.
type Polarity int

const (
	PolarityBlack Polarity = iota
	PolarityWhite
)

// CircleSpec places one expected disambiguating circle at a square cell.
// Cell coordinates are square coordinates: the cell centered at
// (Col+0.5, Row+0.5) in grid space.
type CircleSpec struct {
	Col, Row int
	Polarity Polarity
}

// Layout describes a marker board: its checkerboard size plus the three
// circles that disambiguate its orientation.
type Layout struct {
	Rows, Cols int
	CellSize   float64
	Circles    [3]CircleSpec
}

func invalidLayout(msg string) {
	panic("markerboard: " + msg + ": " + errInvalidBoardSpec)
}

const errInvalidBoardSpec = "calibtarget: invalid board spec"

// NewLayout validates spec and returns it; a malformed layout is a
// programmer error and panics rather than returning an error.
func NewLayout(spec Layout) Layout {
	if spec.Rows <= 1 || spec.Cols <= 1 {
		invalidLayout("Rows and Cols must each be >= 2")
	}
	if spec.CellSize < 0 {
		invalidLayout("CellSize must be non-negative")
	}
	seen := map[[2]int]bool{}
	for _, c := range spec.Circles {
		if c.Col < 0 || c.Row < 0 || c.Col >= spec.Cols || c.Row >= spec.Rows {
			invalidLayout("circle cell outside board bounds")
		}
		key := [2]int{c.Col, c.Row}
		if seen[key] {
			invalidLayout("two circles share a cell")
		}
		seen[key] = true
	}
	return spec
}

// expectedCell returns the layout's grid coordinate for circle index k: the
// top-left corner of the square cell it sits in, matching how this module
// indexes cells by their top-left corner everywhere else.
func (l Layout) expectedCell(k int) corner.GridCoords {
	c := l.Circles[k]
	return corner.GridCoords{I: c.Col, J: c.Row}
}
