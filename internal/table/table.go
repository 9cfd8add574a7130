package table

import (
	"fmt"

	"github.com/rpcpool/trustcore/internal/ancillary"
)

// Entry is what a Table stores: a fixed-width record carrying its own
// primary key. Implementations are expected to keep Encode's output length
// constant across calls — RecordFile enforces a single fixed record size
// per table.
type Entry interface {
	PK() RowID
	SetPK(RowID)
	Encode() []byte
	Decode([]byte) error
}

// Sentinel negative index values in the reference implementation's
// convention for a failed lookup or I/O. No operation in this package sets
// or returns them; Table methods report failures as returned errors.
const (
	IndexNotFound  = -1
	IndexIOFailure = -2
)

// ErrDuplicateOnLoad is returned by Load when two records on disk share the
// same primary-key identifier — spec scenario S6.
type ErrDuplicateOnLoad struct{ Key RowID }

func (e *ErrDuplicateOnLoad) Error() string {
	return fmt.Sprintf("table: duplicate primary key %s on load", e.Key)
}

// Table is the single-table store of spec component E: a fixed-record file
// plus a primary-key Index, supporting insert/update/remove/select/load.
type Table[E Entry] struct {
	name    string
	storage *RecordFile
	index   Index
	newZero func() E
	log     ancillary.Logger
	closed  bool
}

// New wires storage and index together under name; newZero must return a
// fresh zero-value Entry for Load/Select to decode into.
func New[E Entry](name string, storage *RecordFile, index Index, newZero func() E) *Table[E] {
	return &Table[E]{
		name:    name,
		storage: storage,
		index:   index,
		newZero: newZero,
		log:     ancillary.NewLogger("table." + name),
	}
}

// Closed reports whether the table has gone read-only, either because a
// caller already closed it or because a prior I/O or corruption failure
// latched it shut (spec §4.E/§7: the table stays closed until reopened).
func (t *Table[E]) Closed() bool {
	if t.storage.Bad() {
		t.closed = true
	}
	return t.closed
}

// fail marks the table closed and logs op's failure — every storage I/O
// error on any path (not just Load) latches the table read-only, matching
// the mirrored file's own sticky error-flag contract (internal/mirror).
func (t *Table[E]) fail(op string, key RowID, err error) error {
	t.closed = true
	t.log.Error(err, op, "table", t.name, "key", key.String())
	return fmt.Errorf("table %s: %s: %w", t.name, op, err)
}

// Load rebuilds the index by sequentially scanning every record on disk,
// matching db_table.h's `load`: tombstoned records are read but excluded
// from the index, and a duplicate identifier aborts with ErrDuplicateOnLoad
// (leaving the table closed, per S6).
func (t *Table[E]) Load() error {
	buf := make([]byte, t.storage.RecordSize())
	n := t.storage.Count()
	for i := int64(0); i < n; i++ {
		if err := t.storage.ReadRecord(i, buf); err != nil {
			t.closed = true
			return fmt.Errorf("table %s: load: %w", t.name, err)
		}
		e := t.newZero()
		if err := e.Decode(buf); err != nil {
			t.closed = true
			return fmt.Errorf("table %s: load: decode record %d: %w", t.name, i, err)
		}
		pk := e.PK()
		if pk.Erased() {
			continue
		}
		if !t.index.Insert(pk, i) {
			t.closed = true
			dup := &ErrDuplicateOnLoad{Key: pk}
			t.log.Error(dup, "load", "table", t.name, "key", pk.String())
			return dup
		}
	}
	return nil
}

// Insert appends e as a new row, assigning it the next index and recording
// it in the index first so a storage failure can be rolled back (db_table.h
// "protected insert"). e.PK() must already be a committed RowID.
func (t *Table[E]) Insert(e E) error {
	if t.Closed() {
		return fmt.Errorf("table %s: closed", t.name)
	}
	idx := t.storage.Count()
	pk := e.PK()
	if !t.index.Insert(pk, idx) {
		return fmt.Errorf("table %s: duplicate key %s", t.name, pk)
	}
	if err := t.storage.Append(e.Encode()); err != nil {
		if !t.index.Erase(pk) {
			t.log.Warn("insert", "table", t.name, "key", pk.String(), "msg", "rollback erase found nothing")
		}
		return t.fail("insert", pk, err)
	}
	return nil
}

// Update overwrites the stored row for e.PK() in place. If the freshly
// decoded on-disk key differs from e.PK() by identifier, an "updated
// elsewhere" warning is logged — not an error (spec §4.E; the chosen
// semantics, per spec §9's second open question, compare identifier only,
// so a flag-only difference never warns).
func (t *Table[E]) Update(e E) error {
	if t.Closed() {
		return fmt.Errorf("table %s: closed", t.name)
	}
	pk := e.PK()
	idx, ok := t.index.Find(pk)
	if !ok {
		t.log.Warn("update", "table", t.name, "key", pk.String(), "reason", "not found")
		return fmt.Errorf("table %s: key %s not found", t.name, pk)
	}
	existing := t.newZero()
	buf := make([]byte, t.storage.RecordSize())
	if err := t.storage.ReadRecord(idx, buf); err != nil {
		return t.fail("update", pk, err)
	}
	if err := existing.Decode(buf); err != nil {
		return t.fail("update", pk, err)
	}
	if !existing.PK().SameID(pk) {
		t.log.Warn("update", "table", t.name, "key", pk.String(), "stored_key", existing.PK().String(), "msg", "updated elsewhere")
	}
	if err := t.storage.WriteRecord(idx, e.Encode()); err != nil {
		return t.fail("update", pk, err)
	}
	return nil
}

// Remove drops key from the table (spec §4.E): if it is the last physical
// record, the file is truncated by one record (a true delete); otherwise
// the stored record is overwritten with its primary key tombstoned and
// only the index entry is dropped. The record count only ever decreases on
// the physical-delete path.
func (t *Table[E]) Remove(key RowID) error {
	if t.Closed() {
		return fmt.Errorf("table %s: closed", t.name)
	}
	idx, ok := t.index.Find(key)
	if !ok {
		return fmt.Errorf("table %s: key %s not found", t.name, key)
	}
	// Whether to physically truncate or tombstone is decided from the
	// record file's own layout (is idx the last physical row), not from
	// the index's internal pop-vs-tombstone bookkeeping — MapIndex always
	// physically removes its own entry regardless of storage position,
	// so that signal cannot drive this decision for every Index variant.
	if idx+1 == t.storage.Count() {
		if err := t.storage.Pop(); err != nil {
			return t.fail("remove", key, err)
		}
		if !t.index.Erase(key) {
			t.log.Warn("remove", "table", t.name, "key", key.String(), "msg", "index erase found nothing after Find located it")
		}
		return nil
	}
	e := t.newZero()
	buf := make([]byte, t.storage.RecordSize())
	if err := t.storage.ReadRecord(idx, buf); err != nil {
		return t.fail("remove", key, err)
	}
	if err := e.Decode(buf); err != nil {
		return t.fail("remove", key, err)
	}
	e.SetPK(e.PK().Erase())
	if err := t.storage.WriteRecord(idx, e.Encode()); err != nil {
		return t.fail("remove", key, err)
	}
	if !t.index.Erase(key) {
		t.log.Warn("remove", "table", t.name, "key", key.String(), "msg", "index erase found nothing after Find located it")
	}
	return nil
}

// Select looks up key in the index and decodes the stored record.
func (t *Table[E]) Select(key RowID) (E, error) {
	var zero E
	if t.Closed() {
		return zero, fmt.Errorf("table %s: closed", t.name)
	}
	idx, ok := t.index.Find(key)
	if !ok {
		return zero, fmt.Errorf("table %s: key %s not found", t.name, key)
	}
	e := t.newZero()
	buf := make([]byte, t.storage.RecordSize())
	if err := t.storage.ReadRecord(idx, buf); err != nil {
		return zero, t.fail("select", key, err)
	}
	if err := e.Decode(buf); err != nil {
		return zero, t.fail("select", key, err)
	}
	return e, nil
}

// Len returns the number of addressable (non-tombstoned) rows.
func (t *Table[E]) Len() int { return t.index.Len() }

// RecordCount returns the physical record count on disk, tombstones
// included.
func (t *Table[E]) RecordCount() int64 { return t.storage.Count() }

// Close closes the underlying storage.
func (t *Table[E]) Close() error {
	t.closed = true
	return t.storage.Close()
}
