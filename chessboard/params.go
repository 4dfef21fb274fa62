// Package chessboard implements C4: assembling an unordered, partially
// spurious corner cloud into an indexed chessboard grid.
package chessboard

import (
	"github.com/quartzvision/calibtarget/gridgraph"
	"github.com/quartzvision/calibtarget/orient"
	"github.com/rs/zerolog"
)

// Params configures the chessboard detector.
type Params struct {
	MinCornerStrength float64
	MinCorners        int
	// ExpectedRows/ExpectedCols are inner-corner counts (not squares). A
	// nil value means "unconstrained".
	ExpectedRows, ExpectedCols *int
	CompletenessThreshold      float64
	UseOrientationClustering   bool

	GridGraph   gridgraph.Params
	Orientation orient.Params

	// CollectDebug, when set, attaches the optional Debug artifact (the two
	// orientation axis angles, whether the clustering fallback was used, and
	// the sizes of all grid-graph components) to the Result.
	CollectDebug bool

	// Logger receives Debug-level tracing of grid-assembly decisions. It
	// defaults to zerolog.Nop(), so a batch caller driving thousands of
	// frames can silence it for free; pass a real logger via WithLogger to
	// see it.
	Logger zerolog.Logger
}

// DefaultParams returns the bracketed defaults from the configuration
// surface. MinSpacingPix/MaxSpacingPix in GridGraph have no universal
// default and must be set by the caller.
func DefaultParams() Params {
	return Params{
		MinCornerStrength:        0,
		MinCorners:               16,
		CompletenessThreshold:    0.7,
		UseOrientationClustering: true,
		GridGraph:                gridgraph.DefaultParams(),
		Orientation:              orient.DefaultParams(),
		Logger:                   zerolog.Nop(),
	}
}

func intPtr(v int) *int { return &v }

// WithExpectedSize sets ExpectedRows/ExpectedCols (inner-corner counts).
func (p Params) WithExpectedSize(rows, cols int) Params {
	p.ExpectedRows = intPtr(rows)
	p.ExpectedCols = intPtr(cols)
	return p
}

// WithLogger sets the logger used for this detector's Debug-level tracing.
func (p Params) WithLogger(l zerolog.Logger) Params {
	p.Logger = l
	return p
}
