// Package corner defines the shared data model that every detector
// (chessboard, ChArUco, marker board) consumes and produces: raw corner
// observations in, labeled detections out.
package corner

import (
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/quartzvision/calibtarget/internal/d4"
)

// OrientationCluster labels which of the two dominant grid axes a corner's
// orientation was assigned to, or neither.
type OrientationCluster int

const (
	// ClusterNone marks a corner whose orientation did not fit either
	// dominant axis within tolerance.
	ClusterNone OrientationCluster = -1
	ClusterA    OrientationCluster = 0
	ClusterB    OrientationCluster = 1
)

// Corner is a single sub-pixel saddle-point observation, as produced
// upstream by a ChESS-style corner detector. The core never computes these;
// it only consumes them.
type Corner struct {
	Position orb.Point
	// Orientation is a line direction in [0, pi), not a vector: grid edges
	// along the same axis point in opposite directions at different corners.
	Orientation float64
	Cluster     OrientationCluster
	Strength    float64
}

// GridCoords is an integer lattice coordinate. i increases right, j
// increases down. Coordinates index corner intersections, not cells.
type GridCoords struct {
	I, J int
}

// Add returns the component-wise sum of two grid coordinates.
func (g GridCoords) Add(o GridCoords) GridCoords {
	return GridCoords{I: g.I + o.I, J: g.J + o.J}
}

// LabeledCorner is a Corner augmented with everything a detector managed to
// recover about it.
type LabeledCorner struct {
	Position orb.Point
	Grid     *GridCoords
	ID       *int
	// TargetPosition is in board physical units (e.g. millimeters), set
	// only once a board layout is known and this corner has been assigned
	// to it.
	TargetPosition *orb.Point
	Score          float64
}

// HasGrid reports whether this corner received a grid coordinate.
func (c LabeledCorner) HasGrid() bool { return c.Grid != nil }

// HasID reports whether this corner received a logical board ID.
func (c LabeledCorner) HasID() bool { return c.ID != nil }

// Kind identifies which calibration-target family a TargetDetection came
// from, and therefore which sort order and which optional fields apply.
type Kind int

const (
	Chessboard Kind = iota
	Charuco
	CheckerboardMarker
)

func (k Kind) String() string {
	switch k {
	case Chessboard:
		return "chessboard"
	case Charuco:
		return "charuco"
	case CheckerboardMarker:
		return "checkerboard_marker"
	default:
		return "unknown"
	}
}

// Stats is a per-call introspection summary attached to every
// TargetDetection. It adds no externally observable behavior; it exists so
// a batch caller can diagnose why a frame under- or over-detected without
// re-running with debug logging enabled.
type Stats struct {
	CornersIn         int
	DroppedByStrength int
	SurvivedClustering int
	FinalLabeled      int
}

// TargetDetection is the uniform output of every detector in this module.
type TargetDetection struct {
	Kind        Kind
	Corners     []LabeledCorner
	Stats       Stats
	DetectionID uuid.UUID
}

// Sort orders Corners according to the convention for Kind: chessboards by
// (j, i), ChArUco by ID, marker boards by grid coordinate.
func (d *TargetDetection) Sort() {
	switch d.Kind {
	case Chessboard:
		sort.SliceStable(d.Corners, func(a, b int) bool {
			ca, cb := d.Corners[a], d.Corners[b]
			if ca.Grid == nil || cb.Grid == nil {
				return ca.Grid != nil
			}
			if ca.Grid.J != cb.Grid.J {
				return ca.Grid.J < cb.Grid.J
			}
			return ca.Grid.I < cb.Grid.I
		})
	case Charuco:
		sort.SliceStable(d.Corners, func(a, b int) bool {
			ca, cb := d.Corners[a], d.Corners[b]
			if ca.ID == nil || cb.ID == nil {
				return ca.ID != nil
			}
			return *ca.ID < *cb.ID
		})
	case CheckerboardMarker:
		sort.SliceStable(d.Corners, func(a, b int) bool {
			ca, cb := d.Corners[a], d.Corners[b]
			if ca.Grid == nil || cb.Grid == nil {
				return ca.Grid != nil
			}
			if ca.Grid.J != cb.Grid.J {
				return ca.Grid.J < cb.Grid.J
			}
			return ca.Grid.I < cb.Grid.I
		})
	}
}

// GridAlignment maps a detected grid coordinate to a board lattice
// coordinate: board(i,j) = Transform.Apply(i,j) + (TX,TY). It is the shared
// result shape produced by discrete grid-to-board alignment, used by both
// ChArUco fusion and marker-board orientation recovery.
type GridAlignment struct {
	Transform d4.Transform
	TX, TY    int
}

// Apply maps a detected grid coordinate to its board lattice coordinate.
func (a GridAlignment) Apply(gc GridCoords) GridCoords {
	i, j := a.Transform.Apply(gc.I, gc.J)
	return GridCoords{I: i + a.TX, J: j + a.TY}
}

// NewDetection builds a TargetDetection with a fresh DetectionID, sorted
// according to the convention for kind.
func NewDetection(kind Kind, corners []LabeledCorner, stats Stats) TargetDetection {
	d := TargetDetection{Kind: kind, Corners: corners, Stats: stats, DetectionID: uuid.New()}
	d.Sort()
	return d
}
