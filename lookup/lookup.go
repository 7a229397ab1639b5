// Package lookup indexes application payload ranges within a flattened
// data grid. A DataLookup is built once per block from the ordered list of
// (AppID, length) pairs and is immutable afterwards; its compact form is
// what gets persisted in the block header.
package lookup

import (
	"errors"
	"fmt"
	"math"
)

// AppID identifies the application that submitted a payload. AppID(0) is
// reserved for padding and system data and is never listed explicitly in
// the compact encoding.
type AppID uint32

var (
	ErrDataNotSorted     = errors.New("lookup: data is not sorted by app id")
	ErrDataEmptyOn       = errors.New("lookup: empty data")
	ErrOffsetOverflows   = errors.New("lookup: offset overflows")
	ErrEmptyTransactions = errors.New("lookup: no transactions")
)

// Range is a half-open [Start, End) range of element offsets in the
// flattened grid.
type Range struct {
	Start uint32
	End   uint32
}

func (r Range) IsEmpty() bool { return r.Start >= r.End }

func (r Range) Len() uint32 {
	if r.IsEmpty() {
		return 0
	}
	return r.End - r.Start
}

// IndexItem associates an application with its contiguous range.
type IndexItem struct {
	ID    AppID
	Range Range
}

// IDLen is one transaction's contribution: the submitting app and the
// number of grid elements the transaction occupies.
type IDLen struct {
	ID  AppID
	Len uint
}

// AppTransactions groups the per-transaction element offsets of one app.
type AppTransactions struct {
	ID  AppID
	Txs [][]uint32
}

// DataLookup maps every application to a contiguous range of the flattened
// grid. Ranges are strictly sorted by app id, non-overlapping and gap-free;
// rowsPerTx records, in submission order, how many elements each individual
// transaction occupies so that transaction boundaries can be recovered from
// the header alone.
type DataLookup struct {
	index     []IndexItem
	rowsPerTx []uint16
}

// FromIDAndLens builds a DataLookup from per-transaction (app id, element
// count) pairs. App ids must be non-decreasing and every length positive;
// the cumulative offset is checked against the 32-bit counter used on the
// wire.
func FromIDAndLens(pairs []IDLen) (*DataLookup, error) {
	var (
		offset    uint32
		last      AppID
		haveLast  bool
		index     []IndexItem
		rowsPerTx []uint16
		current   []uint16
	)

	flush := func(id AppID) {
		var sum uint32
		for _, r := range current {
			sum += uint32(r)
		}
		index = append(index, IndexItem{ID: id, Range: Range{Start: offset - sum, End: offset}})
		rowsPerTx = append(rowsPerTx, current...)
		current = current[:0]
	}

	for _, p := range pairs {
		if p.Len == 0 {
			return nil, fmt.Errorf("%w: app id %d", ErrDataEmptyOn, p.ID)
		}
		// Each per-transaction count is persisted as a u16 on the wire.
		if p.Len > math.MaxUint16 {
			return nil, ErrOffsetOverflows
		}
		if haveLast && p.ID < last {
			return nil, ErrDataNotSorted
		}
		if !haveLast || p.ID != last {
			if haveLast {
				flush(last)
			}
			last = p.ID
			haveLast = true
		}
		if uint32(p.Len) > math.MaxUint32-offset {
			return nil, ErrOffsetOverflows
		}
		offset += uint32(p.Len)
		current = append(current, uint16(p.Len))
	}
	if haveLast {
		flush(last)
	}

	return &DataLookup{index: index, rowsPerTx: rowsPerTx}, nil
}

// NewEmpty returns the lookup of a block with no data submissions.
func NewEmpty() *DataLookup {
	return &DataLookup{}
}

// NewError returns the reserved lookup used when commitment generation
// failed and no extension is available.
func NewError() *DataLookup {
	return &DataLookup{index: []IndexItem{{ID: 0, Range: Range{}}}}
}

// Len returns the end of the last range, i.e. the logical element count of
// the grid the lookup describes.
func (l *DataLookup) Len() uint32 {
	if len(l.index) == 0 {
		return 0
	}
	return l.index[len(l.index)-1].Range.End
}

func (l *DataLookup) IsEmpty() bool { return l.Len() == 0 }

// IsError reports whether the lookup is the reserved error sentinel.
func (l *DataLookup) IsError() bool {
	return l.IsEmpty() && len(l.index) > 0
}

// RangeOf returns the element range of the given app, if present.
func (l *DataLookup) RangeOf(id AppID) (Range, bool) {
	for _, it := range l.index {
		if it.ID == id {
			return it.Range, true
		}
	}
	return Range{}, false
}

// ProjectedRangeOf scales the app's range by chunkSize (e.g. to byte
// offsets). It returns false if the app is absent or the scaled bounds
// overflow.
func (l *DataLookup) ProjectedRangeOf(id AppID, chunkSize uint32) (Range, bool) {
	r, ok := l.RangeOf(id)
	if !ok {
		return Range{}, false
	}
	start, ok := checkedMul(r.Start, chunkSize)
	if !ok {
		return Range{}, false
	}
	end, ok := checkedMul(r.End, chunkSize)
	if !ok {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// ProjectedRanges scales every range by chunkSize.
func (l *DataLookup) ProjectedRanges(chunkSize uint32) ([]IndexItem, error) {
	out := make([]IndexItem, 0, len(l.index))
	for _, it := range l.index {
		start, ok := checkedMul(it.Range.Start, chunkSize)
		if !ok {
			return nil, ErrOffsetOverflows
		}
		end, ok := checkedMul(it.Range.End, chunkSize)
		if !ok {
			return nil, ErrOffsetOverflows
		}
		out = append(out, IndexItem{ID: it.ID, Range: Range{Start: start, End: end}})
	}
	return out, nil
}

// AppTxs splits the app's range back into per-transaction offset lists
// using the recorded per-transaction counts.
func (l *DataLookup) AppTxs(id AppID) ([][]uint32, bool) {
	r, ok := l.RangeOf(id)
	if !ok {
		return nil, false
	}
	start, end := int(r.Start), int(r.End)

	var txRows [][]uint32
	txStart := start
	cur := 0
	for _, rows := range l.rowsPerTx {
		n := int(rows)
		if cur+n > start {
			limit := txStart + n
			if end-txStart < n {
				limit = end
			}
			tx := make([]uint32, 0, limit-txStart)
			for i := txStart; i < limit; i++ {
				tx = append(tx, uint32(i))
			}
			txRows = append(txRows, tx)
			txStart += n
		}
		cur += n
		if txStart >= end {
			break
		}
	}
	return txRows, true
}

// Transactions returns the per-transaction splits of every app in the
// lookup.
func (l *DataLookup) Transactions() ([]AppTransactions, error) {
	var out []AppTransactions
	for _, it := range l.index {
		if txs, ok := l.AppTxs(it.ID); ok {
			out = append(out, AppTransactions{ID: it.ID, Txs: txs})
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyTransactions
	}
	return out, nil
}

// Index returns a copy of the (app, range) index.
func (l *DataLookup) Index() []IndexItem {
	out := make([]IndexItem, len(l.index))
	copy(out, l.index)
	return out
}

// RowsPerTx returns a copy of the per-transaction element counts.
func (l *DataLookup) RowsPerTx() []uint16 {
	out := make([]uint16, len(l.rowsPerTx))
	copy(out, l.rowsPerTx)
	return out
}

// Equal reports structural equality of two lookups.
func (l *DataLookup) Equal(o *DataLookup) bool {
	if len(l.index) != len(o.index) || len(l.rowsPerTx) != len(o.rowsPerTx) {
		return false
	}
	for i := range l.index {
		if l.index[i] != o.index[i] {
			return false
		}
	}
	for i := range l.rowsPerTx {
		if l.rowsPerTx[i] != o.rowsPerTx[i] {
			return false
		}
	}
	return true
}

func checkedMul(a, b uint32) (uint32, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := uint64(a) * uint64(b)
	if p > math.MaxUint32 {
		return 0, false
	}
	return uint32(p), true
}
