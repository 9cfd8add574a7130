package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpcpool/trustcore/internal/byteorder"
	"github.com/stretchr/testify/require"
)

// testRow is a minimal fixed-width Entry used only by these tests: an
// 8-byte RowID followed by an 8-byte payload.
type testRow struct {
	key     RowID
	payload uint64
}

func (r *testRow) PK() RowID     { return r.key }
func (r *testRow) SetPK(k RowID) { r.key = k }

func (r *testRow) Encode() []byte {
	buf := make([]byte, 16)
	byteorder.PutInt64(buf[0:8], int64(r.key))
	byteorder.PutUint64(buf[8:16], r.payload)
	return buf
}

func (r *testRow) Decode(buf []byte) error {
	r.key = RowID(byteorder.Int64(buf[0:8]))
	r.payload = byteorder.Uint64(buf[8:16])
	return nil
}

const testRecordSize = 16

func openTestTable(t *testing.T, dir string) *Table[*testRow] {
	t.Helper()
	rf, err := OpenRecordFile(filepath.Join(dir, "data"), nil, testRecordSize, 1000)
	require.NoError(t, err)
	tbl := New[*testRow]("rows", rf, NewLinearIndex(), func() *testRow { return &testRow{} })
	require.NoError(t, tbl.Load())
	return tbl
}

// TestTombstoneScenarioS2 is spec scenario S2.
func TestTombstoneScenarioS2(t *testing.T) {
	dir := t.TempDir()
	tbl := openTestTable(t, dir)

	a := &testRow{key: NewRowID(1).Commit(), payload: 111}
	b := &testRow{key: NewRowID(2).Commit(), payload: 222}
	c := &testRow{key: NewRowID(3).Commit(), payload: 333}
	require.NoError(t, tbl.Insert(a))
	require.NoError(t, tbl.Insert(b))
	require.NoError(t, tbl.Insert(c))

	require.NoError(t, tbl.Remove(b.key))
	require.NoError(t, tbl.Close())

	// Reopen.
	rf, err := OpenRecordFile(filepath.Join(dir, "data"), nil, testRecordSize, 1000)
	require.NoError(t, err)
	reopened := New[*testRow]("rows", rf, NewLinearIndex(), func() *testRow { return &testRow{} })
	require.NoError(t, reopened.Load())

	require.Equal(t, 2, reopened.Len())
	require.Equal(t, int64(3), reopened.RecordCount())

	_, err = reopened.Select(b.key)
	require.Error(t, err)

	got, err := reopened.Select(a.key)
	require.NoError(t, err)
	require.Equal(t, uint64(111), got.payload)

	buf := make([]byte, testRecordSize)
	require.NoError(t, rf.ReadRecord(1, buf))
	var tombstoned testRow
	require.NoError(t, tombstoned.Decode(buf))
	require.True(t, tombstoned.key.Erased())
}

// TestDuplicateLoadCorruptionS6 is spec scenario S6.
func TestDuplicateLoadCorruptionS6(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	require.NoError(t, err)
	row := &testRow{key: NewRowID(5).Commit(), payload: 1}
	_, err = f.Write(row.Encode())
	require.NoError(t, err)
	_, err = f.Write(row.Encode()) // duplicate id
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rf, err := OpenRecordFile(path, nil, testRecordSize, 1000)
	require.NoError(t, err)
	tbl := New[*testRow]("rows", rf, NewLinearIndex(), func() *testRow { return &testRow{} })

	err = tbl.Load()
	require.Error(t, err)
	var dupErr *ErrDuplicateOnLoad
	require.ErrorAs(t, err, &dupErr)
	require.True(t, tbl.Closed())
}

// TestIndexMonotonicityProperty3 is spec property 3.
func TestIndexMonotonicityProperty3(t *testing.T) {
	dir := t.TempDir()
	tbl := openTestTable(t, dir)

	for i := int64(1); i <= 20; i++ {
		require.NoError(t, tbl.Insert(&testRow{key: NewRowID(i).Commit(), payload: uint64(i)}))
	}

	idx := tbl.index.(*LinearIndex)
	for i := 1; i < len(idx.entries); i++ {
		require.Less(t, idx.entries[i-1].key.ID(), idx.entries[i].key.ID())
	}
}

// TestRecordFileAlignmentProperty4 is spec property 4.
func TestRecordFileAlignmentProperty4(t *testing.T) {
	dir := t.TempDir()
	tbl := openTestTable(t, dir)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, tbl.Insert(&testRow{key: NewRowID(i).Commit(), payload: uint64(i)}))
	}
	require.NoError(t, tbl.Remove(NewRowID(5).Commit()))
	require.NoError(t, tbl.Remove(NewRowID(2).Commit()))

	n, err := tbl.storage.composite.Len()
	require.NoError(t, err)
	require.Equal(t, int64(0), n%int64(testRecordSize))
}

// TestInsertSelectRoundTripProperty5 is spec property 5.
func TestInsertSelectRoundTripProperty5(t *testing.T) {
	dir := t.TempDir()
	tbl := openTestTable(t, dir)

	e := &testRow{key: NewRowID(42).Commit(), payload: 9001}
	require.NoError(t, tbl.Insert(e))

	got, err := tbl.Select(e.key)
	require.NoError(t, err)
	require.Equal(t, e.payload, got.payload)
}

// TestRemoveSemanticsProperty6 is spec property 6.
func TestRemoveSemanticsProperty6(t *testing.T) {
	dir := t.TempDir()
	tbl := openTestTable(t, dir)

	a := &testRow{key: NewRowID(1).Commit()}
	b := &testRow{key: NewRowID(2).Commit()}
	require.NoError(t, tbl.Insert(a))
	require.NoError(t, tbl.Insert(b))

	before := tbl.RecordCount()
	require.NoError(t, tbl.Remove(a.key)) // not last -> tombstone, no shrink
	require.Equal(t, before, tbl.RecordCount())
	_, err := tbl.Select(a.key)
	require.Error(t, err)

	require.NoError(t, tbl.Remove(b.key)) // last -> physical pop, shrinks
	require.Equal(t, before-1, tbl.RecordCount())
}
