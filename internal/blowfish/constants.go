package blowfish

// NumSubkeys is the size of this variant's subkey array. The reference
// implementation (CryptLib/blow_key.h) uses 20 rather than the classical
// Blowfish 18 ("P-array + 2"); spec §9 open question 1 resolves in favor of
// preserving 20, since it matches the present constant table and no
// existing on-disk ciphertext needs to migrate.
const NumSubkeys = 20

// initialSubkeys are the canonical digits-of-pi subkey constants, taken
// verbatim from CryptLib/blow_key.h.
var initialSubkeys = [NumSubkeys]uint32{
	0x3A39CE37, 0xD3FAF5CF, 0xABC27737, 0x5AC52D1B, 0x5CB0679E, 0x4FA33742, 0xD3822740, 0x99BC9BBE,
	0xD5118E9D, 0xBF0F7315, 0xD62D1C7E, 0xC700C47B, 0xB78C1B6B, 0x21A19045, 0xB26EB1BE, 0x6A366EB4,
	0x5748AB2F, 0xBC946E79, 0xC6A376D2, 0x6549C2C8,
}

// numBoxes and boxSize give the feistel S-box layout: 4 arrays of 256
// 32-bit words, spec §3 "a 'feistel' box: 4 arrays of 256x32-bit words".
const (
	numBoxes = 4
	boxSize  = 256
)

// initialBoxes seeds the feistel S-boxes deterministically. The reference
// implementation seeds these from a literal table of digits of pi (the same
// convention as the subkeys above and as classical Blowfish), but that
// specific header (blow_feistel.h) was not present anywhere in the
// retrieval pack — only its use sites (blow_fish.h) survived, not its
// constant table. Rather than silently fabricate a literal pi-digit table
// from memory and risk an unverifiable transcription, the S-boxes here are
// seeded from a fixed, documented splitmix64 expansion of a constant seed.
// This preserves every testable property the spec cares about (round-trip,
// two independently constructed ciphers from equal inputs producing
// bitwise-identical state) without pretending to byte-match an
// unavailable reference table. See DESIGN.md.
func initialBoxes() [numBoxes][boxSize]uint32 {
	var boxes [numBoxes][boxSize]uint32
	state := uint64(0x3243f6a8885a308d) // seed: hex digits of pi, 3.243f6a8885a308d...
	next := func() uint64 {
		state += 0x9E3779B97F4A7C15
		z := state
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		z = z ^ (z >> 31)
		return z
	}
	for b := 0; b < numBoxes; b++ {
		for i := 0; i < boxSize; i++ {
			if i%2 == 0 {
				w := next()
				boxes[b][i] = uint32(w >> 32)
				if i+1 < boxSize {
					boxes[b][i+1] = uint32(w)
				}
			}
		}
	}
	return boxes
}
