package main

import (
	"fmt"

	"github.com/rpcpool/trustcore/internal/byteorder"
	"github.com/rpcpool/trustcore/internal/table"
)

// cliPayloadSize is the fixed payload width the CLI's demo table uses —
// RecordFile requires every row in a table to share one fixed size.
const cliPayloadSize = 64

// cliRow is a minimal table.Entry for the CLI: an 8-byte RowID primary key
// followed by a fixed-size opaque payload.
type cliRow struct {
	key     table.RowID
	payload [cliPayloadSize]byte
}

func newCLIRow() *cliRow { return &cliRow{} }

func (r *cliRow) PK() table.RowID      { return r.key }
func (r *cliRow) SetPK(id table.RowID) { r.key = id }

func (r *cliRow) Encode() []byte {
	buf := make([]byte, 8+cliPayloadSize)
	byteorder.PutInt64(buf[:8], int64(r.key))
	copy(buf[8:], r.payload[:])
	return buf
}

func (r *cliRow) Decode(buf []byte) error {
	if len(buf) != 8+cliPayloadSize {
		return fmt.Errorf("cliRow: decode: want %d bytes, got %d", 8+cliPayloadSize, len(buf))
	}
	r.key = table.RowID(byteorder.Int64(buf[:8]))
	copy(r.payload[:], buf[8:])
	return nil
}
