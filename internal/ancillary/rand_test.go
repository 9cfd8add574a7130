package ancillary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandDeterministic(t *testing.T) {
	a := NewRandSeeded(42)
	b := NewRandSeeded(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint32(), b.Uint32())
	}
}

func TestRandReseedRepeatsFirstOutput(t *testing.T) {
	// randomizer.h's engine (w=32, n=312, m=197) seeded with 42.
	r := NewRandSeeded(42)
	first := r.Uint32()
	require.NotZero(t, first)
	// Re-seeding must reproduce the same first output.
	r.Seed(42)
	require.Equal(t, first, r.Uint32())
}

func TestRandBytesFillsFully(t *testing.T) {
	r := NewRandSeeded(7)
	buf := make([]byte, 37)
	r.Bytes(buf)
	nonZero := false
	for _, b := range buf {
		if b != 0 {
			nonZero = true
			break
		}
	}
	require.True(t, nonZero)
}

func TestEncodeDigits(t *testing.T) {
	s := EncodeDigits64(0)
	require.Len(t, s, 11)
	for _, c := range s {
		require.Contains(t, digitAlphabet, string(c))
	}
}
