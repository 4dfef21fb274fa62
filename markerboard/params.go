package markerboard

import (
	"github.com/rs/zerolog"

	"github.com/quartzvision/calibtarget/chessboard"
)

// MatchParams configures circle-candidate selection and the D4 match.
type MatchParams struct {
	MaxCandidatesPerPolarity int
	// MaxDistanceCells is carried for configuration but is not consulted
	// by the matcher: no (transform, translation) hypothesis is pruned by
	// distance. Exact-cell agreement is what makes a candidate an inlier.
	MaxDistanceCells int
	MinOffsetInliers int
}

// DefaultMatchParams returns reasonable defaults.
func DefaultMatchParams() MatchParams {
	return MatchParams{MaxCandidatesPerPolarity: 5, MinOffsetInliers: 2}
}

// Params configures the marker-board detector.
type Params struct {
	Chessboard  chessboard.Params
	CircleScore CircleScoreParams
	Match       MatchParams
	// ROICells, if non-empty, restricts circle scoring to these cells (top-left
	// corner indexed) instead of every complete cell in the detected
	// grid — useful when the circles' approximate location is already
	// known from a previous frame.
	ROICells map[[2]int]bool
}

// DefaultParams returns bracketed defaults; Chessboard.CompletenessThreshold
// is relaxed below the plain-chessboard default since C8 explicitly allows
// partial boards.
func DefaultParams() Params {
	p := Params{
		Chessboard:  chessboard.DefaultParams(),
		CircleScore: DefaultCircleScoreParams(),
		Match:       DefaultMatchParams(),
	}
	p.Chessboard.CompletenessThreshold = 0.4
	return p
}

// WithLogger sets the logger used for this detector's Debug-level tracing.
func (p Params) WithLogger(l zerolog.Logger) Params {
	p.Chessboard.Logger = l
	return p
}
