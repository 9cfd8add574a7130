// Package bvec implements spec component B: the elastic byte vector. It is
// a length-counted resizable byte container supporting push/pop of scalars,
// spans and strings from the back, plus size-prefixed "blocks" for framed
// sub-regions. Grounded on EndianLib/endian_vector.h of the original
// implementation and on the append/flush buffering style of
// store/primary/gsfaprimary.go, pooling its backing array with
// valyala/bytebufferpool the way gsfaprimary pools its bufio.Writer.
package bvec

import (
	"fmt"

	"github.com/rpcpool/trustcore/internal/byteorder"
	"github.com/valyala/bytebufferpool"
)

var pool bytebufferpool.Pool

// Vector is the elastic byte vector of spec §3: bytes [0,size) are valid,
// [size,capacity) are scratch. All pushes/pops happen at the back.
type Vector struct {
	bb *bytebufferpool.ByteBuffer
}

// New returns an empty Vector backed by a pooled buffer.
func New() *Vector {
	return &Vector{bb: pool.Get()}
}

// Release returns the backing buffer to the pool. The Vector must not be
// used afterward.
func (v *Vector) Release() {
	pool.Put(v.bb)
	v.bb = nil
}

// Len returns the current size.
func (v *Vector) Len() int { return v.bb.Len() }

// Bytes returns the valid region [0,size).
func (v *Vector) Bytes() []byte { return v.bb.Bytes() }

// Reset empties the vector without releasing its backing storage.
func (v *Vector) Reset() { v.bb.Reset() }

// PushUint32 appends a wire-endian uint32 to the back.
func (v *Vector) PushUint32(x uint32) {
	var tmp [4]byte
	byteorder.PutUint32(tmp[:], x)
	_, _ = v.bb.Write(tmp[:])
}

// PushUint64 appends a wire-endian uint64 to the back.
func (v *Vector) PushUint64(x uint64) {
	var tmp [8]byte
	byteorder.PutUint64(tmp[:], x)
	_, _ = v.bb.Write(tmp[:])
}

// PushInt32 appends a wire-endian int32 to the back.
func (v *Vector) PushInt32(x int32) { v.PushUint32(uint32(x)) }

// PushSpan appends a raw byte span unframed.
func (v *Vector) PushSpan(b []byte) { _, _ = v.bb.Write(b) }

// PopUint32 removes the trailing wire-endian uint32. Returns false on
// underflow, leaving the vector unchanged.
func (v *Vector) PopUint32() (uint32, bool) {
	n := v.bb.Len()
	if n < 4 {
		return 0, false
	}
	buf := v.bb.Bytes()
	x := byteorder.Uint32(buf[n-4:])
	v.truncate(n - 4)
	return x, true
}

// PopUint64 removes the trailing wire-endian uint64.
func (v *Vector) PopUint64() (uint64, bool) {
	n := v.bb.Len()
	if n < 8 {
		return 0, false
	}
	buf := v.bb.Bytes()
	x := byteorder.Uint64(buf[n-8:])
	v.truncate(n - 8)
	return x, true
}

// PopInt32 removes the trailing wire-endian int32.
func (v *Vector) PopInt32() (int32, bool) {
	x, ok := v.PopUint32()
	return int32(x), ok
}

// PopSpan removes the trailing n raw bytes.
func (v *Vector) PopSpan(n int) ([]byte, bool) {
	cur := v.bb.Len()
	if cur < n {
		return nil, false
	}
	buf := v.bb.Bytes()
	out := append([]byte(nil), buf[cur-n:]...)
	v.truncate(cur - n)
	return out, true
}

func (v *Vector) truncate(newLen int) {
	b := v.bb.Bytes()[:newLen]
	v.bb.Reset()
	_, _ = v.bb.Write(b)
}

// PushString frames s as `<u32 len><bytes><u32 len>` — the duplicated
// trailing length lets a symmetric PopString detect corruption and permits
// popping from the back.
func (v *Vector) PushString(s string) {
	v.PushUint32(uint32(len(s)))
	v.PushSpan([]byte(s))
	v.PushUint32(uint32(len(s)))
}

// ErrStringCorrupt is returned by PopString when the leading and trailing
// length fields of a framed string disagree.
var ErrStringCorrupt = fmt.Errorf("bvec: string frame length mismatch")

// PopString reverses PushString, returning ErrStringCorrupt (possibly
// wrapped) if the leading/trailing lengths disagree, including when the
// trailer claims more bytes than the vector holds.
func (v *Vector) PopString() (string, error) {
	trailer, ok := v.PopUint32()
	if !ok {
		return "", fmt.Errorf("bvec: string trailer underflow")
	}
	data, ok := v.PopSpan(int(trailer))
	if !ok {
		return "", fmt.Errorf("%w: string body underflow", ErrStringCorrupt)
	}
	leader, ok := v.PopUint32()
	if !ok {
		return "", fmt.Errorf("%w: string leader underflow", ErrStringCorrupt)
	}
	if leader != trailer {
		return "", ErrStringCorrupt
	}
	return string(data), nil
}

// Block is a handle returned by BeginBlock and consumed by EndBlock,
// tracking the offset of the block's leading size prefix.
type Block struct {
	offset int
}

// BeginBlock reserves a 4-byte placeholder for the block's size and returns
// a handle to it; EndBlock backpatches the placeholder and appends the
// `i32 -size` trailer, framing everything pushed in between.
func (v *Vector) BeginBlock() Block {
	offset := v.Len()
	v.PushInt32(0)
	return Block{offset: offset}
}

// ErrBlockCorrupt is returned when EndBlock is called on a Vector that has
// shrunk below the block's recorded offset (caller bug, or a pop ran past
// the block boundary).
var ErrBlockCorrupt = fmt.Errorf("bvec: block offset underflow")

// EndBlock backpatches the size placeholder from BeginBlock and appends the
// negative-size trailer: `i32 size | bytes[size] | i32 -size`.
func (v *Vector) EndBlock(b Block) error {
	if v.Len() < b.offset+4 {
		return ErrBlockCorrupt
	}
	size := int32(v.Len() - (b.offset + 4))
	buf := v.bb.Bytes()
	byteorder.PutUint32(buf[b.offset:b.offset+4], uint32(size))
	v.PushInt32(-size)
	return nil
}

// PopBlock reverses BeginBlock/EndBlock from the back: it reads the trailer,
// verifies the matching leading size, and returns the payload as a freshly
// copied byte slice the caller can scan forward over. The negative sign of the trailer is what lets reverse scans
// distinguish block boundaries from plain data (spec §3).
func (v *Vector) PopBlock() ([]byte, error) {
	negSize, ok := v.PopInt32()
	if !ok {
		return nil, fmt.Errorf("bvec: block trailer underflow")
	}
	if negSize > 0 {
		return nil, fmt.Errorf("bvec: block trailer sign mismatch")
	}
	size := int(-negSize)
	payload, ok := v.PopSpan(size)
	if !ok {
		return nil, fmt.Errorf("bvec: block payload underflow")
	}
	leadSize, ok := v.PopInt32()
	if !ok {
		return nil, fmt.Errorf("bvec: block leader underflow")
	}
	if int(leadSize) != size {
		return nil, fmt.Errorf("bvec: block leader/trailer mismatch: %d != %d", leadSize, size)
	}
	return payload, nil
}
