// Package blowfish implements spec component D: a modified Blowfish-family
// Feistel cipher with a Bcrypt-style key schedule and reduced-width
// variants for byte streams that are not a multiple of 8. Grounded on
// CryptLib/blow_fish.h (the encryptN/decryptN templates and the
// pair32→pair16→pair8→nibble greedy dispatch), CryptLib/blow_key.h (the
// 20-entry subkey table), and CryptLib/blow_buffers.h (per-variant byte
// packing and endian handling).
package blowfish

import "github.com/rpcpool/trustcore/internal/byteorder"

// Cipher holds one cipher's subkeys and a (possibly shared) feistel box.
type Cipher struct {
	sub [NumSubkeys]uint32
	box *Box
}

// New returns a cipher in its unkeyed initial state (constant subkeys, a
// freshly seeded box not shared with anyone else).
func New() *Cipher {
	return &Cipher{sub: initialSubkeys, box: newInitialBox()}
}

// Clone returns a cipher sharing this one's box by reference (cheap) and
// copying its subkeys (cheap; subkeys are a small value array, not behind a
// pointer in this design).
func (c *Cipher) Clone() *Cipher {
	return &Cipher{sub: c.sub, box: c.box}
}

// Detach replaces c's box with a private deep copy, so subsequent mutation
// (re-keying) cannot affect any cipher still sharing the old box.
func (c *Cipher) Detach() {
	c.box = c.box.Detach()
}

// Reset restores the constant initial subkeys and detaches to a fresh box,
// the equivalent of the reference implementation's `clear()`.
func (c *Cipher) Reset() {
	c.sub = initialSubkeys
	c.box = newInitialBox()
}

// IsSameBox reports whether c and other currently share their feistel box.
func (c *Cipher) IsSameBox(other *Cipher) bool { return c.box.SameBox(other.box) }

// HasEqualKey reports whether c and other have bitwise-identical subkeys.
func (c *Cipher) HasEqualKey(other *Cipher) bool { return c.sub == other.sub }

// HasEqualBox reports whether c and other have bitwise-identical box
// contents, whether or not they share the pointer.
func (c *Cipher) HasEqualBox(other *Cipher) bool { return c.box.Equal(other.box) }

// IsEqual reports whether c and other are cryptographically indistinguishable
// (same subkeys and same box contents) — property 2 of spec §8.
func (c *Cipher) IsEqual(other *Cipher) bool {
	return c.HasEqualKey(other) && c.HasEqualBox(other)
}

const (
	mask32 = 0xFFFFFFFF
	mask16 = 0xFFFF
	mask8  = 0xFF
	mask4  = 0xF
)

// Encrypt transforms buf in place, dispatching each successive run of bytes
// to the widest variant that still fits, greedily: 8 bytes per pair32
// block, else 4 per pair16, else 2 per pair8, else 1 per nibble pair. This
// is what lets the cipher operate over streams of any length, not just
// multiples of 8 (spec §4.D, scenario S5).
func (c *Cipher) Encrypt(buf []byte) { c.transform(buf, true) }

// Decrypt reverses Encrypt using the same greedy dispatch.
func (c *Cipher) Decrypt(buf []byte) { c.transform(buf, false) }

func (c *Cipher) transform(buf []byte, encrypt bool) {
	i := 0
	for i < len(buf) {
		remaining := len(buf) - i
		switch {
		case remaining >= 8:
			c.pair32(buf[i:i+8], encrypt)
			i += 8
		case remaining >= 4:
			c.pair16(buf[i:i+4], encrypt)
			i += 4
		case remaining >= 2:
			c.pair8(buf[i:i+2], encrypt)
			i += 2
		default:
			c.nibble(buf[i:i+1], encrypt)
			i++
		}
	}
}

func (c *Cipher) subOrder(encrypt bool) []uint32 {
	if encrypt {
		return c.sub[:]
	}
	return reversedSubkeys(c.sub[:])
}

// pair32 runs the full 32-bit-half network over 8 bytes (two uint32 read in
// the cipher's internal big-endian word order, independent of the wire's
// little-endian byteorder.WireEndian).
func (c *Cipher) pair32(buf []byte, encrypt bool) {
	l := byteorder.CipherEndian.Uint32(buf[0:4])
	r := byteorder.CipherEndian.Uint32(buf[4:8])
	l, r = feistelForward(l, r, c.box, c.subOrder(encrypt), mask32)
	byteorder.CipherEndian.PutUint32(buf[0:4], l)
	byteorder.CipherEndian.PutUint32(buf[4:8], r)
}

// pair16 runs the network over 4 bytes (two uint16 halves, masked to 16
// bits), for streams with a remainder too short for a full pair32 block.
func (c *Cipher) pair16(buf []byte, encrypt bool) {
	l := uint32(byteorder.CipherEndian.Uint16(buf[0:2]))
	r := uint32(byteorder.CipherEndian.Uint16(buf[2:4]))
	l, r = feistelForward(l, r, c.box, c.subOrder(encrypt), mask16)
	byteorder.CipherEndian.PutUint16(buf[0:2], uint16(l))
	byteorder.CipherEndian.PutUint16(buf[2:4], uint16(r))
}

// pair8 runs the network over 2 raw bytes (no endian conversion — a single
// byte has no byte order), one half per byte.
func (c *Cipher) pair8(buf []byte, encrypt bool) {
	l := uint32(buf[0])
	r := uint32(buf[1])
	l, r = feistelForward(l, r, c.box, c.subOrder(encrypt), mask8)
	buf[0] = byte(l)
	buf[1] = byte(r)
}

// nibble runs the network over the two 4-bit halves of a single byte, the
// narrowest variant, for a final odd trailing byte.
func (c *Cipher) nibble(buf []byte, encrypt bool) {
	l := uint32(buf[0] & 0x0f)
	r := uint32((buf[0] >> 4) & 0x0f)
	l, r = feistelForward(l, r, c.box, c.subOrder(encrypt), mask4)
	buf[0] = byte(l&0x0f) | byte((r&0x0f)<<4)
}
