package blowfish

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripVariousLengths(t *testing.T) {
	pass := []byte("Meysam1234567890")
	salt := make([]byte, 32)
	for i := range salt {
		salt[i] = byte(i)
	}

	for _, n := range []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 15, 16, 17, 100} {
		c := New()
		require.NoError(t, c.Bcrypt(pass, salt, 2))

		orig := make([]byte, n)
		for i := range orig {
			orig[i] = byte(i*7 + 3)
		}
		buf := append([]byte(nil), orig...)
		c.Encrypt(buf)
		if n > 0 {
			require.NotEqual(t, orig, buf)
		}
		c.Decrypt(buf)
		require.Equal(t, orig, buf, "length %d", n)
	}
}

// TestCipherVectorS1 is spec scenario S1.
func TestCipherVectorS1(t *testing.T) {
	pass := []byte("Meysam1234567890")
	salt := make([]byte, 32)
	for i := range salt {
		salt[i] = byte(i)
	}
	const cost = 4
	plaintext := []byte("The quick brown fox jumps over the lazy dog.")
	require.Len(t, plaintext, 44)

	enc := New()
	require.NoError(t, enc.Bcrypt(pass, salt, cost))
	ciphertext := append([]byte(nil), plaintext...)
	enc.Encrypt(ciphertext)
	require.NotEqual(t, plaintext, ciphertext)

	dec := New()
	require.NoError(t, dec.Bcrypt(pass, salt, cost))
	result := append([]byte(nil), ciphertext...)
	dec.Decrypt(result)

	require.True(t, bytes.Equal(plaintext, result))
}

// TestReducedVariantSplitS5 is spec scenario S5: a 7-byte stream is split
// 4 (pair16) + 2 (pair8) + 1 (nibble).
func TestReducedVariantSplitS5(t *testing.T) {
	c := New()
	require.NoError(t, c.Bcrypt([]byte("pass"), []byte("salt"), 1))

	orig := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}
	buf := append([]byte(nil), orig...)
	c.Encrypt(buf)
	require.NotEqual(t, orig, buf)
	c.Decrypt(buf)
	require.Equal(t, orig, buf)
}

// TestKeyScheduleDeterminism is spec property 2.
func TestKeyScheduleDeterminism(t *testing.T) {
	pass := []byte("determinism-pass")
	salt := []byte("determinism-salt-0123456789abcd")

	a := New()
	require.NoError(t, a.Bcrypt(pass, salt, 3))
	b := New()
	require.NoError(t, b.Bcrypt(pass, salt, 3))

	require.True(t, a.IsEqual(b))
	require.False(t, a.IsSameBox(b), "Detach must give each cipher its own box")
}

func TestBcryptRejectsExcessiveCost(t *testing.T) {
	c := New()
	err := c.Bcrypt([]byte("p"), []byte("s"), MaxCost+1)
	require.Error(t, err)
}

func TestCloneSharesBoxUntilDetach(t *testing.T) {
	a := New()
	require.NoError(t, a.Bcrypt([]byte("p"), []byte("s"), 1))
	b := a.Clone()
	require.True(t, a.IsSameBox(b))

	b.Detach()
	require.False(t, a.IsSameBox(b))
	require.True(t, a.HasEqualBox(b))
}
