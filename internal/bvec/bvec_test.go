package bvec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarRoundTrip(t *testing.T) {
	v := New()
	defer v.Release()

	v.PushUint32(0xcafebabe)
	v.PushUint64(0x0102030405060708)

	u64, ok := v.PopUint64()
	require.True(t, ok)
	require.Equal(t, uint64(0x0102030405060708), u64)

	u32, ok := v.PopUint32()
	require.True(t, ok)
	require.Equal(t, uint32(0xcafebabe), u32)

	require.Equal(t, 0, v.Len())
}

func TestSpanRoundTrip(t *testing.T) {
	v := New()
	defer v.Release()

	v.PushSpan([]byte("hello"))
	b, ok := v.PopSpan(5)
	require.True(t, ok)
	require.Equal(t, "hello", string(b))
}

func TestStringRoundTrip(t *testing.T) {
	v := New()
	defer v.Release()

	v.PushString("the quick brown fox")
	s, err := v.PopString()
	require.NoError(t, err)
	require.Equal(t, "the quick brown fox", s)
}

func TestStringCorruptionDetected(t *testing.T) {
	v := New()
	defer v.Release()

	v.PushString("abc")
	buf := v.Bytes()
	// Corrupt the trailing length field (last 4 bytes).
	buf[len(buf)-1] ^= 0xff

	_, err := v.PopString()
	require.ErrorIs(t, err, ErrStringCorrupt)
}

func TestBlockFraming(t *testing.T) {
	v := New()
	defer v.Release()

	blk := v.BeginBlock()
	v.PushUint32(1)
	v.PushUint32(2)
	v.PushUint32(3)
	require.NoError(t, v.EndBlock(blk))

	payload, err := v.PopBlock()
	require.NoError(t, err)
	require.Len(t, payload, 12)

	inner := New()
	defer inner.Release()
	inner.PushSpan(payload)
	x3, _ := inner.PopUint32()
	require.Equal(t, uint32(3), x3)
}

func TestBlockSignMismatch(t *testing.T) {
	v := New()
	defer v.Release()
	v.PushInt32(5) // positive trailer where a block trailer must be <= 0
	_, err := v.PopBlock()
	require.Error(t, err)
}
