// Package mirror implements spec component C: a raw file abstraction and a
// composite that fans writes out to up to 5 mirror files and cross-checks
// every read against them. Grounded on MultiFileLib/multifile_io.h (the
// primary-plus-copies layout, the per-call scratch buffer, and the sticky
// error-flags bitfield) and on the buffered-append/flush style of
// store/primary/gsfaprimary.go.
package mirror

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// MaxMirrors matches multifile_io.h's `file copies[5]`.
const MaxMirrors = 5

// ErrFlags accumulates sticky failure bits; only a fresh Open clears them.
type ErrFlags uint32

const (
	FlagNone       ErrFlags = 0
	FlagIOError    ErrFlags = 1 << iota
	FlagCorruption
)

// File is a single raw handle supporting the operations the composite
// broadcasts: seek, read, write, truncate, commit.
type File struct {
	f *os.File
}

// OpenFile opens (creating if needed) the file at path with the given flags.
func OpenFile(path string, flags int, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

func (f *File) Close() error                              { return f.f.Close() }
func (f *File) Seek(off int64, whence int) (int64, error) { return f.f.Seek(off, whence) }
func (f *File) ReadAt(buf []byte, off int64) (int, error) { return f.f.ReadAt(buf, off) }
func (f *File) WriteAt(buf []byte, off int64) (int, error) { return f.f.WriteAt(buf, off) }
func (f *File) Truncate(size int64) error                  { return f.f.Truncate(size) }
func (f *File) Commit() error                               { return f.f.Sync() }
func (f *File) Len() (int64, error) {
	fi, err := f.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// scratchPool hands out the per-call comparison buffers used when
// cross-checking a mirror's read against the primary. multifile_io.h keeps
// this as a thread_local static vector; sync.Pool is the Go equivalent — a
// per-goroutine-ish reusable buffer with no cross-call sharing guarantee
// required by callers.
var scratchPool = sync.Pool{
	New: func() any { return make([]byte, 0, 4096) },
}

// Composite fans writes to a primary plus up to MaxMirrors mirror files and
// verifies every read against all of them (spec §4.C).
type Composite struct {
	mu      sync.Mutex
	primary *File
	mirrors []*File
	flags   ErrFlags
}

// Open opens primary at primaryPath and a mirror at each of mirrorPaths
// (at most MaxMirrors), all under the same flags/perm.
func Open(primaryPath string, mirrorPaths []string, flags int, perm os.FileMode) (*Composite, error) {
	if len(mirrorPaths) > MaxMirrors {
		return nil, fmt.Errorf("mirror: %d mirrors exceeds max %d", len(mirrorPaths), MaxMirrors)
	}
	primary, err := OpenFile(primaryPath, flags, perm)
	if err != nil {
		return nil, err
	}
	mirrors := make([]*File, 0, len(mirrorPaths))
	for _, p := range mirrorPaths {
		m, err := OpenFile(p, flags, perm)
		if err != nil {
			for _, opened := range mirrors {
				_ = opened.Close()
			}
			_ = primary.Close()
			return nil, err
		}
		mirrors = append(mirrors, m)
	}
	return &Composite{primary: primary, mirrors: mirrors}, nil
}

// Flags returns the sticky error bits accumulated since Open.
func (c *Composite) Flags() ErrFlags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

// Bad reports whether any sticky error bit is set.
func (c *Composite) Bad() bool { return c.Flags() != FlagNone }

// Close closes the primary and every mirror, returning the first error.
func (c *Composite) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	if err := c.primary.Close(); err != nil {
		first = err
	}
	for _, m := range c.mirrors {
		if err := m.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteAt issues the write to the primary and every mirror, in order. If any
// writer fails, FlagIOError is set and the first error is returned; the
// remaining writers are still attempted so that mirrors do not silently
// diverge further than necessary.
func (c *Composite) WriteAt(buf []byte, off int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	if _, err := c.primary.WriteAt(buf, off); err != nil {
		first = err
	}
	for _, m := range c.mirrors {
		if _, err := m.WriteAt(buf, off); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		c.flags |= FlagIOError
	}
	return first
}

// ErrCorrupt is returned by ReadAt when a mirror disagrees with the primary.
type ErrCorrupt struct {
	Mirror int
	Offset int64
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("mirror: mirror %d disagrees with primary at offset %d", e.Mirror, e.Offset)
}

// ReadAt reads len(buf) bytes from the primary at off into buf, then re-reads
// the same range from every mirror into a scratch buffer and compares. A
// cheap xxhash fingerprint short-circuits the common matching case before
// falling back to a full byte-for-byte compare (which ErrCorrupt.Offset
// needs, to report the exact mismatching byte).
func (c *Composite) ReadAt(buf []byte, off int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.primary.ReadAt(buf, off); err != nil {
		c.flags |= FlagIOError
		return err
	}
	if len(c.mirrors) == 0 {
		return nil
	}
	primarySum := xxhash.Sum64(buf)
	scratch := scratchPool.Get().([]byte)
	defer scratchPool.Put(scratch[:0])
	if cap(scratch) < len(buf) {
		scratch = make([]byte, len(buf))
	} else {
		scratch = scratch[:len(buf)]
	}
	for i, m := range c.mirrors {
		if _, err := m.ReadAt(scratch, off); err != nil {
			c.flags |= FlagIOError
			return err
		}
		if xxhash.Sum64(scratch) == primarySum {
			continue
		}
		c.flags |= FlagCorruption
		offset := firstMismatch(buf, scratch)
		return &ErrCorrupt{Mirror: i, Offset: off + int64(offset)}
	}
	return nil
}

func firstMismatch(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// Compare re-reads off..off+n from the primary and every mirror and reports
// the first disagreement (spec S3: "compare reports the exact byte offset").
func (c *Composite) Compare(off int64, n int) error {
	buf := make([]byte, n)
	return c.ReadAt(buf, off)
}

// Truncate broadcasts a truncate to the primary and every mirror.
func (c *Composite) Truncate(size int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	if err := c.primary.Truncate(size); err != nil {
		first = err
	}
	for _, m := range c.mirrors {
		if err := m.Truncate(size); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		c.flags |= FlagIOError
	}
	return first
}

// Commit broadcasts an fsync to the primary and every mirror.
func (c *Composite) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	if err := c.primary.Commit(); err != nil {
		first = err
	}
	for _, m := range c.mirrors {
		if err := m.Commit(); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		c.flags |= FlagIOError
	}
	return first
}

// Len returns the primary's current length.
func (c *Composite) Len() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primary.Len()
}

// FlipMirrorByte corrupts a single byte of mirror k, for tests exercising
// detection (spec S3).
func FlipMirrorByte(c *Composite, k int, off int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k < 0 || k >= len(c.mirrors) {
		return fmt.Errorf("mirror: no such mirror %d", k)
	}
	var b [1]byte
	if _, err := c.mirrors[k].ReadAt(b[:], off); err != nil {
		return err
	}
	b[0] ^= 0xff
	_, err := c.mirrors[k].WriteAt(b[:], off)
	return err
}
