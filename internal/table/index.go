package table

import "github.com/tidwall/hashmap"

// Index is the primary-key lookup structure a Table delegates to. Two
// variants are provided: LinearIndex (the reference implementation's
// monotone sorted-array variant, db_index_lin.h) and MapIndex (an
// order-agnostic hash-map variant for callers that do not need monotonic
// scans and would rather avoid the linear variant's shift-free but
// O(log n) lookup in favor of O(1) average lookup).
type Index interface {
	// Insert records that key maps to val. It reports false (without
	// mutating the index) if the insertion is rejected.
	Insert(key RowID, val int64) bool
	// Find returns the stored value for key's identifier, ignoring flags.
	Find(key RowID) (int64, bool)
	// Erase removes (or tombstones, per variant) the entry for key's
	// identifier, reporting whether it was found. Whether the
	// corresponding *storage* record should be physically truncated or
	// merely tombstoned is a separate decision Table.Remove makes from
	// the record file's own layout (the last physical row or not) — the
	// index's internal pop-vs-tombstone bookkeeping is a private detail
	// of how each variant keeps its own backing structure, not a signal
	// Table.Remove should drive storage decisions from.
	Erase(key RowID) bool
	Len() int
}

// linEntry is one slot of a LinearIndex's backing array.
type linEntry struct {
	key RowID
	val int64
}

// LinearIndex is db_index_lin.h re-cast in Go: a monotone array ordered by
// identifier, found via binary search, with inserts accepted only at the
// tail and erases on a non-terminal row tombstoning in place rather than
// shifting the array (spec §8 property 3, spec §9 open question 3).
type LinearIndex struct {
	entries []linEntry
	lastKey RowID
}

// NewLinearIndex returns an empty LinearIndex.
func NewLinearIndex() *LinearIndex { return &LinearIndex{} }

// Len returns the number of live entries; entries tombstoned in place are
// not counted.
func (idx *LinearIndex) Len() int {
	n := 0
	for _, e := range idx.entries {
		if !e.key.Erased() {
			n++
		}
	}
	return n
}

// Insert succeeds only if val lies past every row already in the index (the
// row being inserted is a later physical slot; tombstoned slots skipped by
// Table.Load leave gaps) and key sorts strictly after the last key inserted
// — mirroring db_index_lin.h's `insert`, which rejects everything else via
// upper_bound instead of silently reordering.
func (idx *LinearIndex) Insert(key RowID, val int64) bool {
	if len(idx.entries) > 0 && val <= idx.entries[len(idx.entries)-1].val {
		return false
	}
	if len(idx.entries) > 0 && !(idx.lastKey.ID() < key.ID()) {
		return false
	}
	idx.entries = append(idx.entries, linEntry{key: key, val: val})
	idx.lastKey = key
	return true
}

// lowerBound returns the index of the first entry whose id is >= id.
func (idx *LinearIndex) lowerBound(id int64) int {
	lo, hi := 0, len(idx.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if idx.entries[mid].key.ID() < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Find looks up by identifier only, skipping tombstoned (erased) slots —
// "erased records... are not addressable by key" (spec §4.E).
func (idx *LinearIndex) Find(key RowID) (int64, bool) {
	pos := idx.lowerBound(key.ID())
	if pos >= len(idx.entries) || idx.entries[pos].key.ID() != key.ID() {
		return 0, false
	}
	if idx.entries[pos].key.Erased() {
		return 0, false
	}
	return idx.entries[pos].val, true
}

// Erase locates key and either tombstones it in place or, if it is the
// last entry, physically pops it — the exact db_index_lin.h behavior that
// spec §9's third open question resolves by preserving rather than
// compacting. It reports whether key was found.
func (idx *LinearIndex) Erase(key RowID) bool {
	pos := idx.lowerBound(key.ID())
	if pos >= len(idx.entries) || idx.entries[pos].key.ID() != key.ID() {
		return false
	}
	if pos == len(idx.entries)-1 {
		idx.entries = idx.entries[:pos]
		if pos > 0 {
			idx.lastKey = idx.entries[pos-1].key
		} else {
			idx.lastKey = 0
		}
		return true
	}
	idx.entries[pos].key = idx.entries[pos].key.Erase()
	return true
}

// MapIndex is an order-agnostic alternative backed by tidwall/hashmap,
// physically deleting on erase rather than tombstoning. It trades the
// linear variant's monotonic-scan guarantee for O(1) average lookup and
// update of arbitrarily-ordered keys.
type MapIndex struct {
	m *hashmap.Map[int64, int64]
}

// NewMapIndex returns an empty MapIndex.
func NewMapIndex() *MapIndex { return &MapIndex{m: hashmap.New[int64, int64](0)} }

func (idx *MapIndex) Len() int { return idx.m.Len() }

func (idx *MapIndex) Insert(key RowID, val int64) bool {
	if _, exists := idx.m.Get(key.ID()); exists {
		return false
	}
	idx.m.Set(key.ID(), val)
	return true
}

func (idx *MapIndex) Find(key RowID) (int64, bool) { return idx.m.Get(key.ID()) }

func (idx *MapIndex) Erase(key RowID) bool {
	_, existed := idx.m.Delete(key.ID())
	return existed
}
