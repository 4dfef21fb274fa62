package charuco

import (
	"github.com/rs/zerolog"

	"github.com/quartzvision/calibtarget/chessboard"
	"github.com/quartzvision/calibtarget/dict"
)

// Params configures the ChArUco detector.
type Params struct {
	Chessboard chessboard.Params
	Scan       dict.ScanDecodeConfig
	// MaxHamming bounds how many bits a decoded marker may differ from its
	// nearest dictionary entry to still be accepted.
	MaxHamming int
	// MinMarkerInliers is the minimum number of markers that must agree on
	// a single (transform, translation) pair for an alignment to be
	// accepted.
	MinMarkerInliers int
	// FallbackToRectified, when the first image-space decoding pass
	// yields too few inliers, retries by rectifying the whole detected
	// grid with a single global homography and re-scanning markers there,
	// trading per-cell perspective accuracy for a less noisy sampling
	// grid.
	FallbackToRectified bool
	// PxPerSquareRectified is the rectified-view cell size used only by
	// the fallback pass.
	PxPerSquareRectified float64
	// CornerValidationThresholdRel rejects an assigned corner whose
	// detected position differs from its board-homography-predicted
	// position by more than this fraction of the estimated pixel size of
	// one board square.
	CornerValidationThresholdRel float64
}

// DefaultParams returns reasonable defaults; MaxHamming defaults to 4
// whatever the dictionary's bit count, so callers typically override it
// per-dictionary.
func DefaultParams() Params {
	return Params{
		Chessboard:                   chessboard.DefaultParams(),
		Scan:                         dict.DefaultScanDecodeConfig(),
		MaxHamming:                   4,
		MinMarkerInliers:             4,
		FallbackToRectified:          true,
		PxPerSquareRectified:         60,
		CornerValidationThresholdRel: 0.35,
	}
}

// WithLogger sets the logger used for this detector's Debug-level tracing.
func (p Params) WithLogger(l zerolog.Logger) Params {
	p.Chessboard.Logger = l
	return p
}

// RedetectFunc is a caller-supplied callback invoked on a small image
// region around a predicted-but-unconfirmed corner position; it returns a
// refined position and whether one was found. Detect has no access to the
// raw upstream corner detector, so re-detection is delegated to the
// caller.
type RedetectFunc func(center [2]float64, radiusPx float64) (refined [2]float64, ok bool)
