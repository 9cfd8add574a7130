// Package table implements spec component E: a single-table, append-oriented
// on-disk record store with primary-key indexing, built on the mirrored file
// abstraction of internal/mirror. Grounded on DatabaseLib/db_index_id.h (the
// packed primary-key/flag encoding), DatabaseLib/db_index_lin.h (the
// monotone linear index and its tombstone-in-place erase), and
// DatabaseLib/db_table.h (insert/update/remove/select/load lifecycle), with
// the append/flush file discipline of store/primary/gsfaprimary.go.
package table

import "github.com/rpcpool/trustcore/internal/ancillary"

// RowID packs an identifier and a 4-bit state into a single int64, matching
// DatabaseLib/db_index_id.h's `row_id`: the low 4 bits are flags, the
// remaining 60 bits are the identifier.
type RowID int64

const (
	flagBits    = 0xF
	flagReserve = 0x8
	flagState   = 0xC
	idShift     = 4
)

// NewRowID packs id (shifted left by 4) with a reserved-but-uncommitted
// state, matching the constructor path of a freshly allocated row.
func NewRowID(id int64) RowID { return RowID(id<<idShift) | flagReserve }

// NewRowIDFromClock allocates a fresh, committed RowID seeded from clk's
// monotonically increasing nanosecond timestamp — the mechanism described
// in internal/ancillary.Clock's documentation, and the one real callers
// (as opposed to tests, which construct literal ids via NewRowID) use to
// mint new primary keys for Insert.
func NewRowIDFromClock(clk *ancillary.Clock) RowID {
	return NewRowID(clk.NowNanos()).Commit()
}

// ID returns the identifier portion (Key >> 4).
func (r RowID) ID() int64 { return int64(r) >> idShift }

// Flags returns the low 4 state bits.
func (r RowID) Flags() int64 { return int64(r) & flagBits }

// Empty reports whether the key was never assigned (Key == 0).
func (r RowID) Empty() bool { return r == 0 }

// Valid reports whether the identifier portion is positive.
func (r RowID) Valid() bool { return r.ID() > 0 }

// Erased reports the tombstoned state: neither of the two state bits set.
func (r RowID) Erased() bool { return int64(r)&flagState == 0 }

// Reserved reports the reserved-but-not-yet-committed state.
func (r RowID) Reserved() bool { return int64(r)&flagState == flagReserve }

// Committed reports a valid, fully committed row.
func (r RowID) Committed() bool { return r.Valid() && int64(r)&flagState == flagState }

// Reserve marks r reserved (state bits 0b1000), preserving the identifier.
func (r RowID) Reserve() RowID { return RowID((int64(r) &^ flagState) | flagReserve) }

// Commit marks r committed (both state bits set), preserving the identifier.
func (r RowID) Commit() RowID { return RowID(int64(r) | flagState) }

// Erase clears both state bits, tombstoning r while keeping its identifier
// (so the slot remains distinguishable from an empty one).
func (r RowID) Erase() RowID { return RowID(int64(r) &^ flagState) }

// Lower clears all flag bits: the smallest key sharing this identifier.
func (r RowID) Lower() RowID { return RowID(int64(r) &^ flagBits) }

// Upper sets all flag bits: the largest key sharing this identifier.
func (r RowID) Upper() RowID { return RowID(int64(r) | flagBits) }

// Prev returns the largest key below every variant of this identifier.
func (r RowID) Prev() RowID { return r.Lower() - 1 }

// Next returns the smallest key above every variant of this identifier.
// The indexes in this package do not use it: they order and look up
// entries by identifier alone, which already makes lookup flag-agnostic.
func (r RowID) Next() RowID { return r.Upper() + 1 }

// SameID reports whether r and other carry the same identifier, ignoring
// flags entirely. This is deliberately NOT Go's `==` (which would also
// compare flag bits): the reference implementation's row_id equality
// operator compares only the identifier portion, which spec §9's second
// open question resolves in favor of here — an in-place flag change (e.g.
// commit finishing after a concurrent select already matched the key) must
// not by itself read as "updated elsewhere".
func (r RowID) SameID(other RowID) bool { return r.ID() == other.ID() }

// String renders the identifier portion using the same base-64 digit
// alphabet the original uses for log-friendly keys.
func (r RowID) String() string { return ancillary.EncodeDigits64(uint64(r.ID())) }
