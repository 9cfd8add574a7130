package blowfish

import "fmt"

// cyclicReader reads successive big-endian 32-bit words from data, wrapping
// around to the start when exhausted — the Go shape of blow_key.h's cyclic
// salt-walking cursor (`ItrIndex`), re-cast per spec §9 as "an explicit
// cursor value paired with a reference to the salt buffer".
type cyclicReader struct {
	data []byte
	pos  int
}

func newCyclicReader(data []byte) *cyclicReader { return &cyclicReader{data: data} }

func (r *cyclicReader) next() uint32 {
	if len(r.data) == 0 {
		return 0
	}
	var w uint32
	for i := 0; i < 4; i++ {
		w = (w << 8) | uint32(r.data[r.pos])
		r.pos++
		if r.pos >= len(r.data) {
			r.pos = 0
		}
	}
	return w
}

// xorKeys XORs every subkey with successive cyclic words from src.
func (c *Cipher) xorKeys(src []byte) {
	r := newCyclicReader(src)
	for i := range c.sub {
		c.sub[i] ^= r.next()
	}
}

// expand runs one pass of the Eksblowfish-style schedule: regenerate every
// subkey and every box entry by encrypting a running (l, r) state through
// the network-so-far, optionally XORing in cyclic salt words before each
// block is encrypted. Every pass covers both `expand_keys` and
// `expand_boxes`; salt == nil only drops the salt XOR, matching
// blow_fish.h's single-pass bcrypt inner loop.
func (c *Cipher) expand(salt []byte) {
	var saltReader *cyclicReader
	if salt != nil {
		saltReader = newCyclicReader(salt)
	}
	var l, r uint32
	next := func() (uint32, uint32) {
		if saltReader != nil {
			l ^= saltReader.next()
			r ^= saltReader.next()
		}
		return feistelForward(l, r, c.box, c.sub[:], mask32)
	}
	for i := 0; i < NumSubkeys; i += 2 {
		l, r = next()
		c.sub[i] = l
		c.sub[i+1] = r
	}
	for b := 0; b < numBoxes; b++ {
		for i := 0; i < boxSize; i += 2 {
			l, r = next()
			c.box.s[b][i] = l
			c.box.s[b][i+1] = r
		}
	}
}

// MaxCost is the hard upper bound on the Bcrypt cost parameter (spec §4.F–H
// "cost sanity": adversarial handshakes offering a higher cost are
// rejected outright before any key schedule runs).
const MaxCost = 100000

// Bcrypt derives this cipher's subkeys and box from (pass, salt, cost),
// following blow_fish.h's sequence exactly: XOR subkeys with pass, run one
// salted expand pass, then alternate `cost` unsalted expand passes keyed
// first by pass and then by salt. Detaches first so a shared box is never
// mutated in place.
func (c *Cipher) Bcrypt(pass, salt []byte, cost uint32) error {
	if cost > MaxCost {
		return fmt.Errorf("blowfish: bcrypt cost %d exceeds maximum of %d", cost, MaxCost)
	}
	c.Detach()
	c.xorKeys(pass)
	c.expand(salt)
	for i := uint32(0); i < cost; i++ {
		c.xorKeys(pass)
		c.expand(nil)
		c.xorKeys(salt)
		c.expand(nil)
	}
	return nil
}
