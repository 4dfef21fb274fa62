package dict

// Builtin dictionaries, keyed by name. These reproduce the *shape* of
// OpenCV's standard ArUco dictionaries (bits_per_side, code_count) so that
// a CharucoBoard built against e.g. "DICT_4X4_50" gets a 4x4, 50-entry
// dictionary to decode against; the bit patterns themselves are generated
// deterministically below rather than transcribed from OpenCV's published
// tables, which this module's sources do not carry a copy of. Nothing
// about the alignment/fusion
// algorithm depends on the bit patterns matching OpenCV's exactly, only on
// the dictionary being internally consistent (every code decodable at its
// own 4 rotations, pairwise well separated).
var builtins = map[string]*Dictionary{}

func init() {
	register("DICT_4X4_50", 4, 50)
	register("DICT_4X4_100", 4, 100)
	register("DICT_4X4_250", 4, 250)
	register("DICT_4X4_1000", 4, 1000)
	register("DICT_5X5_50", 5, 50)
	register("DICT_5X5_100", 5, 100)
	register("DICT_6X6_50", 6, 50)
}

func register(name string, side, count int) {
	builtins[name] = generate(name, side, count)
}

// Lookup returns a builtin dictionary by name, or nil if unknown.
func Lookup(name string) *Dictionary {
	return builtins[name]
}

// generate deterministically produces count distinct bit-codes of size
// side x side using a simple full-period linear congruential sequence
// seeded from the dictionary name, then greedily rejecting any candidate
// whose Hamming distance to an already-accepted code (at any of its four
// rotations) is below a minimum margin — the same separation property a
// real ArUco dictionary is designed to guarantee.
func generate(name string, side, count int) *Dictionary {
	bits := side * side
	minMargin := bits / 4
	if minMargin < 1 {
		minMargin = 1
	}

	state := seedFromName(name)
	codes := make([]Code, 0, count)
	for attempts := 0; len(codes) < count && attempts < count*200+1000; attempts++ {
		state = lcgNext(state)
		cand := codeFromState(state, bits)
		if isWellSeparated(cand, codes, side, minMargin) {
			codes = append(codes, cand)
		}
	}
	// If the separation constraint couldn't be met within the attempt
	// budget (only possible for very small dictionaries relative to bit
	// count), fill the remainder unconditionally so CodeCount always
	// matches the requested size.
	for len(codes) < count {
		state = lcgNext(state)
		codes = append(codes, codeFromState(state, bits))
	}
	return &Dictionary{Name: name, BitsPerSide: side, Codes: codes}
}

func isWellSeparated(cand Code, existing []Code, side, minMargin int) bool {
	for _, e := range existing {
		for r := 0; r < 4; r++ {
			if hammingDistance(cand, Rotate(e, side, r)) < minMargin {
				return false
			}
		}
	}
	return true
}

func seedFromName(name string) uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= 1099511628211 // FNV prime
	}
	return h
}

func lcgNext(state uint64) uint64 {
	// Knuth's MMIX LCG constants.
	return state*6364136223846793005 + 1442695040888963407
}

func codeFromState(state uint64, bits int) Code {
	code := make(Code, bits)
	for i := 0; i < bits; i++ {
		state = lcgNext(state)
		code[i] = (state>>uint(i%59))&1 == 1
	}
	return code
}
