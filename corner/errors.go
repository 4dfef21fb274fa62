package corner

import "errors"

// Sentinel errors returned by detectors. Every expected failure (noisy
// input, missing markers, unsatisfied thresholds) returns one of these
// rather than panicking, because callers run detectors in batch over
// unreliable images. Only ErrInvalidBoardSpec is a programmer error and is
// raised as a panic at detector construction, never returned here.
var (
	// ErrNoBoardFound means no connected component of the grid graph
	// qualified as a board.
	ErrNoBoardFound = errors.New("calibtarget: no board found")

	// ErrInsufficientCorners means the input, after strength filtering,
	// fell below the detector's minimum corner count.
	ErrInsufficientCorners = errors.New("calibtarget: insufficient corners")

	// ErrAlignmentFailed means fewer than the minimum required markers
	// agreed on a grid-to-board alignment, even after the optional
	// rectified-rescan fallback.
	ErrAlignmentFailed = errors.New("calibtarget: alignment failed")

	// ErrDegenerateGeometry means a homography fit could not be inverted
	// (collinear or duplicated correspondences). Raised for a single cell
	// or the global fit; does not necessarily abort the whole call.
	ErrDegenerateGeometry = errors.New("calibtarget: degenerate geometry")

	// ErrInvalidBoardSpec means a board specification was malformed
	// (rows/cols <= 0, marker_size_rel outside (0,1], unknown dictionary).
	// Board constructors (charuco.NewCharucoBoard, markerboard.NewLayout)
	// panic with a message carrying this error's text; it is never returned
	// from a Detect call.
	ErrInvalidBoardSpec = errors.New("calibtarget: invalid board spec")
)
