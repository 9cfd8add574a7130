// Package packet implements spec component F: the wire packet format — a
// fixed header plus an elastic body, endian-swapped to wire form on send
// and back to native on receive. Grounded on NetLib/net2_packet.h
// (packet_header's field order and packet's head_span/SwapNetEndian/
// send_array split-buffer layout).
package packet

import "github.com/rpcpool/trustcore/internal/byteorder"

// HeaderSize is sizeof(packet_header) in the reference implementation: five
// fields — u32, u32, i64, u64, u64 — with no padding, since the first 8-byte
// field already falls on an 8-byte boundary after the two leading u32s.
const HeaderSize = 4 + 4 + 8 + 8 + 8

// Header mirrors net2_packet.h's packet_header, field for field.
type Header struct {
	Length    uint32 // body length; the only field kept plaintext under encryption
	Command   uint32
	TimeStamp int64
	Value1    uint64
	Value2    uint64
}

// Packet is a header plus its body, the Go analogue of net2_packet.h's
// `packet : endian::vector`.
type Packet struct {
	Head Header
	Body []byte
}

// New returns a Packet with the given header fields and body.
func New(command uint32, timestamp int64, value1, value2 uint64, body []byte) *Packet {
	return &Packet{
		Head: Header{Command: command, TimeStamp: timestamp, Value1: value1, Value2: value2},
		Body: body,
	}
}

// EncodeHeader writes Head into a fresh HeaderSize-byte wire-endian buffer,
// first setting Length to len(Body) (set_encoded_size/SwapNetEndian
// folded into one call, since Go has no implicit struct-endian swap).
func (p *Packet) EncodeHeader() []byte {
	p.Head.Length = uint32(len(p.Body))
	buf := make([]byte, HeaderSize)
	byteorder.PutUint32(buf[0:4], p.Head.Length)
	byteorder.PutUint32(buf[4:8], p.Head.Command)
	byteorder.PutInt64(buf[8:16], p.Head.TimeStamp)
	byteorder.PutUint64(buf[16:24], p.Head.Value1)
	byteorder.PutUint64(buf[24:32], p.Head.Value2)
	return buf
}

// DecodeHeader parses a HeaderSize-byte wire-endian buffer into Head,
// returning the body length the caller must now read.
func (p *Packet) DecodeHeader(buf []byte) (bodyLength uint32, ok bool) {
	if len(buf) < HeaderSize {
		return 0, false
	}
	p.Head.Length = byteorder.Uint32(buf[0:4])
	p.Head.Command = byteorder.Uint32(buf[4:8])
	p.Head.TimeStamp = byteorder.Int64(buf[8:16])
	p.Head.Value1 = byteorder.Uint64(buf[16:24])
	p.Head.Value2 = byteorder.Uint64(buf[24:32])
	return p.Head.Length, true
}

// HeadSpan returns the portion of an encoded header that the encryption
// hook is allowed to touch: everything except the first 4 bytes (the
// length field), which must stay plaintext so the receiver can frame the
// next read (spec §4.F-H "Encryption hook").
func HeadSpan(encodedHeader []byte) []byte { return encodedHeader[4:] }
