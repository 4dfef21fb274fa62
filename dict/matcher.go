package dict

// Matcher tests an observed bit grid against every entry of a dictionary
// under all four 90-degree rotations, returning the best match within a
// Hamming tolerance.
type Matcher struct {
	Dict       *Dictionary
	MaxHamming int
}

// NewMatcher builds a Matcher for dict tolerating up to maxHamming
// differing bits.
func NewMatcher(d *Dictionary, maxHamming int) Matcher {
	return Matcher{Dict: d, MaxHamming: maxHamming}
}

// Match tests observed (a row-major bits_per_side x bits_per_side grid)
// against every dictionary entry at every rotation, per the rotation
// convention in Dictionary.Rotate (observed is compared to
// Rotate(code, r); if it matches at rotation r, the physical marker was
// rotated by r clockwise relative to the dictionary's canonical
// orientation). Ties in Hamming distance are broken by lowest dictionary
// ID, matching the deterministic tie-break spec.md mandates for
// equally-scored candidates throughout this module.
func (m Matcher) Match(observed Code) (id, rotation, hamming int, ok bool) {
	side := m.Dict.BitsPerSide
	bestHamming := side*side + 1
	bestID, bestRotation := -1, 0
	for i, code := range m.Dict.Codes {
		for r := 0; r < 4; r++ {
			h := hammingDistance(observed, Rotate(code, side, r))
			if h < bestHamming {
				bestHamming = h
				bestID = i
				bestRotation = r
			}
		}
	}
	if bestID < 0 || bestHamming > m.MaxHamming {
		return 0, 0, 0, false
	}
	return bestID, bestRotation, bestHamming, true
}
