// Package byteorder implements the swap/copy utilities of spec component A:
// conversion of integer values between native and a chosen wire endian, and
// small typed read/write cursors over byte slices. Grounded on the
// uint-helper style of indexes/uints.go and store/types in the teacher repo.
package byteorder

import "encoding/binary"

// WireEndian is the fixed byte order used for every integer crossing the
// network boundary (spec §3 "wire endian policy"). It is little-endian,
// matching net2_packet.h's `net_endian`. Changing this constant changes the
// wire format.
var WireEndian = binary.LittleEndian

// CipherEndian is the byte order the cipher core uses for its internal
// 32/16-bit halves (spec §3: "the cipher itself treats 32-bit halves as
// big-endian"), independent of WireEndian. Grounded on
// CryptLib/blow_crypt_config.h's `server_endian = std::endian::big`.
var CipherEndian = binary.BigEndian

// PutUint32 writes v to buf[:4] in wire endian.
func PutUint32(buf []byte, v uint32) { WireEndian.PutUint32(buf, v) }

// Uint32 reads a wire-endian uint32 from buf[:4].
func Uint32(buf []byte) uint32 { return WireEndian.Uint32(buf) }

// PutUint64 writes v to buf[:8] in wire endian.
func PutUint64(buf []byte, v uint64) { WireEndian.PutUint64(buf, v) }

// Uint64 reads a wire-endian uint64 from buf[:8].
func Uint64(buf []byte) uint64 { return WireEndian.Uint64(buf) }

// PutInt64 writes v to buf[:8] in wire endian.
func PutInt64(buf []byte, v int64) { WireEndian.PutUint64(buf, uint64(v)) }

// Int64 reads a wire-endian int64 from buf[:8].
func Int64(buf []byte) int64 { return int64(WireEndian.Uint64(buf)) }

// Reader is a forward-only cursor over a byte slice that decodes
// wire-endian scalars, the Go analogue of endian_read_buffer.h.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential wire-endian reads.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Bytes reads n raw bytes, advancing the cursor. Returns false (no panic) on
// short input, matching the original's bool-returning `read` API.
func (r *Reader) Bytes(n int) ([]byte, bool) {
	if r.Remaining() < n {
		return nil, false
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

// Uint32 reads one wire-endian uint32.
func (r *Reader) Uint32() (uint32, bool) {
	b, ok := r.Bytes(4)
	if !ok {
		return 0, false
	}
	return WireEndian.Uint32(b), true
}

// Uint64 reads one wire-endian uint64.
func (r *Reader) Uint64() (uint64, bool) {
	b, ok := r.Bytes(8)
	if !ok {
		return 0, false
	}
	return WireEndian.Uint64(b), true
}

// Int64 reads one wire-endian int64.
func (r *Reader) Int64() (int64, bool) {
	v, ok := r.Uint64()
	return int64(v), ok
}

// Writer is an append-only cursor that encodes wire-endian scalars into a
// growable byte slice, the Go analogue of endian_write_buffer.h.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// PutBytes appends raw bytes unchanged.
func (w *Writer) PutBytes(b []byte) { w.buf = append(w.buf, b...) }

// PutUint32 appends v in wire endian.
func (w *Writer) PutUint32(v uint32) {
	var tmp [4]byte
	WireEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutUint64 appends v in wire endian.
func (w *Writer) PutUint64(v uint64) {
	var tmp [8]byte
	WireEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutInt64 appends v in wire endian.
func (w *Writer) PutInt64(v int64) { w.PutUint64(uint64(v)) }
