package markerboard

import (
	"math"

	"github.com/quartzvision/calibtarget/geom"
)

// CircleScoreParams configures canonical-patch circle scoring.
type CircleScoreParams struct {
	PatchSize         int
	DiameterFrac      float64
	RingThicknessFrac float64
	RingRadiusMul     float64
	MinContrast       float64
	Samples           int
	CenterSearchPx    float64
}

// DefaultCircleScoreParams returns reasonable defaults for a 64x64
// canonical patch.
func DefaultCircleScoreParams() CircleScoreParams {
	return CircleScoreParams{
		PatchSize:         64,
		DiameterFrac:      0.5,
		RingThicknessFrac: 0.25,
		RingRadiusMul:     1.3,
		MinContrast:       0.15,
		Samples:           64,
		CenterSearchPx:    0,
	}
}

// sampleLUT is a precomputed, deterministically ordered set of unit-offset
// sample points (in [-1,1] x [-1,1], scaled by a radius later) on the
// central disk and on the surrounding ring, built once per distinct
// (samples) configuration and reused across every cell in a frame.
type sampleLUT struct {
	disk []geom.Point // unit-disk offsets, radius 1
	ring []geom.Point // unit-ring offsets, radius in [1-t/2, 1+t/2] before scaling
}

// buildSampleLUT lays n/3 samples on each of 3 concentric shells for the
// disk (so the disk average isn't dominated by its rim) and 2n samples for
// the annulus, n on each of two circles straddling the ring radius, all in
// deterministic angular order.
func buildSampleLUT(n int, ringThicknessFrac float64) sampleLUT {
	if n < 8 {
		n = 8
	}
	var lut sampleLUT

	shells := 3
	perShell := n / shells
	if perShell < 1 {
		perShell = 1
	}
	for s := 0; s < shells; s++ {
		r := float64(s+1) / float64(shells)
		for i := 0; i < perShell; i++ {
			theta := 2 * math.Pi * float64(i) / float64(perShell)
			lut.disk = append(lut.disk, geom.Point{r * math.Cos(theta), r * math.Sin(theta)})
		}
	}

	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		// two radii straddling the nominal ring radius to approximate an
		// annulus of the requested thickness with point samples.
		rIn := 1 - ringThicknessFrac/2
		rOut := 1 + ringThicknessFrac/2
		lut.ring = append(lut.ring, geom.Point{rIn * math.Cos(theta), rIn * math.Sin(theta)})
		lut.ring = append(lut.ring, geom.Point{rOut * math.Cos(theta), rOut * math.Sin(theta)})
	}
	return lut
}

// scoreCircle samples patch (a square canonical image of side p.PatchSize)
// against lut, scaled so the disk has diameter p.DiameterFrac*PatchSize and
// the ring sits at p.RingRadiusMul times the disk radius, and returns the
// mean disk and ring intensities plus the normalized contrast between
// them.
func scoreCircle(patch *geom.GrayImage, lut sampleLUT, p CircleScoreParams) (meanDisk, meanRing, contrast float64) {
	cx := float64(p.PatchSize) / 2
	cy := float64(p.PatchSize) / 2
	diskRadius := p.DiameterFrac * float64(p.PatchSize) / 2
	ringRadius := diskRadius * p.RingRadiusMul

	var diskSum float64
	for _, off := range lut.disk {
		x := cx + off[0]*diskRadius
		y := cy + off[1]*diskRadius
		diskSum += geom.SampleBilinearF(patch, x, y)
	}
	meanDisk = diskSum / float64(len(lut.disk))

	var ringSum float64
	for _, off := range lut.ring {
		x := cx + off[0]*ringRadius
		y := cy + off[1]*ringRadius
		ringSum += geom.SampleBilinearF(patch, x, y)
	}
	meanRing = ringSum / float64(len(lut.ring))

	contrast = (meanRing - meanDisk) / 255
	if contrast < 0 {
		contrast = -contrast
	}
	return meanDisk, meanRing, contrast
}

// classifyPolarity reports which Polarity the disk/ring means are
// consistent with: a black disk is darker than its ring, a white disk is
// lighter.
func classifyPolarity(meanDisk, meanRing float64) Polarity {
	if meanDisk < meanRing {
		return PolarityBlack
	}
	return PolarityWhite
}
