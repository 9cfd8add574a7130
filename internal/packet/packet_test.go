package packet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	p := New(7, 123456789, 0xaaaa, 0xbbbb, []byte("hello body"))
	buf := p.EncodeHeader()
	require.Len(t, buf, HeaderSize)

	var decoded Packet
	n, ok := decoded.DecodeHeader(buf)
	require.True(t, ok)
	require.Equal(t, uint32(len(p.Body)), n)
	require.Equal(t, p.Head, decoded.Head)
}

func TestHeadSpanExcludesLengthField(t *testing.T) {
	p := New(99, 0, 0, 0, []byte("xyz")) // body length 3, command 99: distinguishable bytes
	buf := p.EncodeHeader()
	span := HeadSpan(buf)
	require.Len(t, span, HeaderSize-4)
	require.Equal(t, buf[4:], span)
}

func TestDecodeHeaderShortBuffer(t *testing.T) {
	var p Packet
	_, ok := p.DecodeHeader(make([]byte, HeaderSize-1))
	require.False(t, ok)
}
