package blowfish

// Box is the feistel S-box quartet (spec glossary: "the quartet of 256 ×
// 32-bit S-boxes"). It is shared by reference across Cipher clones (spec §9
// "shared-by-reference S-boxes... re-cast as an immutable handle held
// behind a reference-counted pointer"); Go's garbage collector already
// reference-counts the backing array for us, so Clone just copies the
// pointer and Detach is the only place that actually copies bytes.
type Box struct {
	s [numBoxes][boxSize]uint32
}

// newInitialBox returns a fresh Box seeded with the constant table.
func newInitialBox() *Box {
	b := &Box{s: initialBoxes()}
	return b
}

// Detach returns a deep copy of b, for a caller about to mutate its own
// box without disturbing other ciphers sharing the same pointer.
func (b *Box) Detach() *Box {
	cp := &Box{}
	cp.s = b.s
	return cp
}

// SameBox reports whether b and other are the identical shared instance
// (pointer equality) — the "has_same_box" check of the reference
// implementation, used to decide whether a mutation needs Detach first.
func (b *Box) SameBox(other *Box) bool { return b == other }

// Equal reports whether b and other hold bitwise-identical S-box contents,
// regardless of sharing ("has_equal_box").
func (b *Box) Equal(other *Box) bool {
	if b == other {
		return true
	}
	return b.s == other.s
}

// f is the Blowfish round function: split the active fieldBits-wide half
// into 4 equal sub-fields and combine via the four S-boxes as
// `(S0[a]+S1[b]) ^ S2[c] + S3[d]`. fieldBits is one quarter of the active
// half-width (8 for the full 32-bit variant, 4/2/1 for the 16/8/4-bit
// reduced variants of spec §4.D), so every variant indexes the boxes with
// bits that actually vary with the input instead of always hitting index 0
// in the unused high sub-fields.
func (b *Box) f(x uint32, fieldBits uint) uint32 {
	fieldMask := uint32(1)<<fieldBits - 1
	a := (x >> (3 * fieldBits)) & fieldMask
	bb := (x >> (2 * fieldBits)) & fieldMask
	c := (x >> fieldBits) & fieldMask
	d := x & fieldMask
	return ((b.s[0][a] + b.s[1][bb]) ^ b.s[2][c]) + b.s[3][d]
}
