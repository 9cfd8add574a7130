package blowfish

import "math/bits"

// feistelForward runs the generalized Blowfish network: rounds = len(sub)-2
// XOR-and-swap rounds through box.f, followed by two whitening XORs against
// the final pair of subkeys. mask restricts every intermediate value to a
// given half-width (0xFFFFFFFF for the 32-bit variant, 0xFFFF/0xFF/0xF for
// the reduced-width variants of spec §4.D); the round function splits that
// same half-width into 4 equal sub-fields (fieldBits each) before indexing
// the S-boxes, so reduced variants vary all four box indices with the
// input instead of degenerating to always-zero high sub-fields.
//
// Decryption is the same network run with sub reversed — a property of
// this particular XOR/swap/whiten construction (the classical Blowfish
// decrypt-by-reversing-the-P-array trick), so callers never need a
// separate inverse round function.
func feistelForward(l, r uint32, box *Box, sub []uint32, mask uint32) (uint32, uint32) {
	n := len(sub)
	rounds := n - 2
	fieldBits := uint(bits.Len32(mask)) / 4
	l &= mask
	r &= mask
	for i := 0; i < rounds; i++ {
		l ^= sub[i] & mask
		l &= mask
		r ^= box.f(l, fieldBits) & mask
		r &= mask
		l, r = r, l
	}
	l, r = r, l
	r ^= sub[rounds] & mask
	r &= mask
	l ^= sub[rounds+1] & mask
	l &= mask
	return l, r
}

func reversedSubkeys(sub []uint32) []uint32 {
	rev := make([]uint32, len(sub))
	for i, v := range sub {
		rev[len(sub)-1-i] = v
	}
	return rev
}
