package byteorder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutUint32(0xdeadbeef)
	w.PutUint64(0x1122334455667788)
	w.PutInt64(-42)
	w.PutBytes([]byte("tail"))

	r := NewReader(w.Bytes())
	u32, ok := r.Uint32()
	require.True(t, ok)
	require.Equal(t, uint32(0xdeadbeef), u32)

	u64, ok := r.Uint64()
	require.True(t, ok)
	require.Equal(t, uint64(0x1122334455667788), u64)

	i64, ok := r.Int64()
	require.True(t, ok)
	require.Equal(t, int64(-42), i64)

	tail, ok := r.Bytes(4)
	require.True(t, ok)
	require.Equal(t, "tail", string(tail))
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, ok := r.Uint32()
	require.False(t, ok)
}
