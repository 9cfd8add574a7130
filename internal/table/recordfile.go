package table

import (
	"fmt"
	"os"

	"github.com/rpcpool/trustcore/internal/mirror"
)

// RecordFile is the raw concatenation-of-fixed-records storage (spec §6
// "Record file format"), built atop a mirrored composite so every write
// is replicated and every read cross-checked.
type RecordFile struct {
	composite  *mirror.Composite
	recordSize int
	maxRecords int64
	count      int64
}

// ErrCorrupted reports record-file-level corruption: misaligned length or
// a record count beyond the configured maximum.
type ErrCorrupted struct{ Reason string }

func (e *ErrCorrupted) Error() string { return "table: corrupted record file: " + e.Reason }

// OpenRecordFile opens (or creates) primaryPath plus its mirrors, validates
// the file's length against recordSize, and fails with ErrCorrupted if the
// length is not a clean multiple of recordSize or exceeds maxRecords.
func OpenRecordFile(primaryPath string, mirrorPaths []string, recordSize int, maxRecords int64) (*RecordFile, error) {
	c, err := mirror.Open(primaryPath, mirrorPaths, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("table: open record file: %w", err)
	}
	length, err := c.Len()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if length%int64(recordSize) != 0 {
		_ = c.Close()
		return nil, &ErrCorrupted{Reason: fmt.Sprintf("length %d not a multiple of record size %d", length, recordSize)}
	}
	count := length / int64(recordSize)
	if count > maxRecords {
		_ = c.Close()
		return nil, &ErrCorrupted{Reason: fmt.Sprintf("record count %d exceeds max %d", count, maxRecords)}
	}
	return &RecordFile{composite: c, recordSize: recordSize, maxRecords: maxRecords, count: count}, nil
}

func (rf *RecordFile) Count() int64      { return rf.count }
func (rf *RecordFile) MaxRecords() int64 { return rf.maxRecords }
func (rf *RecordFile) Close() error      { return rf.composite.Close() }
func (rf *RecordFile) Bad() bool         { return rf.composite.Bad() }

// ReadRecord reads record index i into buf, which must be recordSize long.
func (rf *RecordFile) ReadRecord(i int64, buf []byte) error {
	if i < 0 || i >= rf.count {
		return fmt.Errorf("table: record index %d out of range [0,%d)", i, rf.count)
	}
	return rf.composite.ReadAt(buf, i*int64(rf.recordSize))
}

// WriteRecord overwrites an existing record index i in place.
func (rf *RecordFile) WriteRecord(i int64, buf []byte) error {
	if i < 0 || i >= rf.count {
		return fmt.Errorf("table: record index %d out of range [0,%d)", i, rf.count)
	}
	return rf.composite.WriteAt(buf, i*int64(rf.recordSize))
}

// Append writes buf as a new record at the end, bumping Count on success.
// It fails with index_overflow semantics if the file is already at max.
func (rf *RecordFile) Append(buf []byte) error {
	if rf.count >= rf.maxRecords {
		return fmt.Errorf("table: index_overflow: record count already at max %d", rf.maxRecords)
	}
	if err := rf.composite.WriteAt(buf, rf.count*int64(rf.recordSize)); err != nil {
		return err
	}
	rf.count++
	return nil
}

// Pop truncates the file by exactly one record — the physical-delete path
// used only when the removed row is the last one.
func (rf *RecordFile) Pop() error {
	if rf.count == 0 {
		return fmt.Errorf("table: pop on empty record file")
	}
	if err := rf.composite.Truncate((rf.count - 1) * int64(rf.recordSize)); err != nil {
		return err
	}
	rf.count--
	return nil
}

// RecordSize returns the fixed record width in bytes.
func (rf *RecordFile) RecordSize() int { return rf.recordSize }
