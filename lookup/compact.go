package lookup

import (
	"encoding/binary"
	"math"
)

// CompactItem is one (app id, range start) pair of the size-minimized
// lookup encoding. The end of each range is inferred from the next item's
// start, or from the total size for the last one.
type CompactItem struct {
	AppID AppID
	Start uint32
}

// CompactDataLookup is the delta-encoded wire form of a DataLookup.
//
// If size is 0 and the index is non-empty, no commitment was generated
// because of an error that occurred while building the header extension.
// The legacy form of that sentinel, size == math.MaxUint32, is still
// accepted on decode.
type CompactDataLookup struct {
	size      uint32
	index     []CompactItem
	rowsPerTx []uint16
}

// NewCompact builds a CompactDataLookup from its raw parts.
func NewCompact(size uint32, index []CompactItem, rowsPerTx []uint16) *CompactDataLookup {
	return &CompactDataLookup{size: size, index: index, rowsPerTx: rowsPerTx}
}

func (c *CompactDataLookup) Size() uint32 { return c.size }

// IsError reports whether the compact lookup is the reserved
// "no commitment" sentinel, in either its current or legacy form.
func (c *CompactDataLookup) IsError() bool {
	return c.size == math.MaxUint32 || (c.size == 0 && len(c.index) > 0)
}

func newErrorCompact() *CompactDataLookup {
	return &CompactDataLookup{size: 0, index: []CompactItem{{AppID: 0, Start: 0}}}
}

// FromDataLookup compacts a lookup. AppID(0) is never listed explicitly:
// its range is implied by the first item's start.
func FromDataLookup(l *DataLookup) *CompactDataLookup {
	if l.IsError() {
		return newErrorCompact()
	}
	var index []CompactItem
	for _, it := range l.index {
		if it.ID != 0 {
			index = append(index, CompactItem{AppID: it.ID, Start: it.Range.Start})
		}
	}
	return &CompactDataLookup{size: l.Len(), index: index, rowsPerTx: l.RowsPerTx()}
}

// ToDataLookup expands the compact form. Item starts must be strictly
// monotonic and consistent with size.
func (c *CompactDataLookup) ToDataLookup() (*DataLookup, error) {
	if c.IsError() {
		return NewError(), nil
	}

	var (
		offset uint32
		prev   AppID
		index  []IndexItem
	)
	for _, it := range c.index {
		if it.AppID <= prev || it.Start < offset {
			return nil, ErrDataNotSorted
		}
		if r := (Range{Start: offset, End: it.Start}); !r.IsEmpty() {
			index = append(index, IndexItem{ID: prev, Range: r})
		}
		prev = it.AppID
		offset = it.Start
	}
	if r := (Range{Start: offset, End: c.size}); !r.IsEmpty() {
		index = append(index, IndexItem{ID: prev, Range: r})
	}

	l := &DataLookup{index: index, rowsPerTx: c.rowsPerTx}
	if l.Len() != c.size {
		return nil, ErrDataNotSorted
	}
	return l, nil
}

// Encode serializes the compact lookup: compact size, item vector
// (fixed-LE app id, compact start), then the per-transaction counts.
func (c *CompactDataLookup) Encode() []byte {
	b := AppendCompactU32(nil, c.size)
	b = AppendCompactU32(b, uint32(len(c.index)))
	for _, it := range c.index {
		b = binary.LittleEndian.AppendUint32(b, uint32(it.AppID))
		b = AppendCompactU32(b, it.Start)
	}
	b = AppendCompactU32(b, uint32(len(c.rowsPerTx)))
	for _, r := range c.rowsPerTx {
		b = binary.LittleEndian.AppendUint16(b, r)
	}
	return b
}

// Decode parses a compact lookup, requiring the input to be fully
// consumed.
func Decode(b []byte) (*CompactDataLookup, error) {
	c, rest, err := DecodePrefix(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errCompact
	}
	return c, nil
}

// DecodePrefix parses a compact lookup from the front of b and returns the
// unread remainder, for use inside larger header encodings.
func DecodePrefix(b []byte) (*CompactDataLookup, []byte, error) {
	size, b, err := DecodeCompactU32(b)
	if err != nil {
		return nil, nil, err
	}
	n, b, err := DecodeCompactU32(b)
	if err != nil {
		return nil, nil, err
	}
	if uint64(n)*5 > uint64(len(b)) {
		// Each item takes at least five bytes; bail before allocating.
		return nil, nil, errCompact
	}
	index := make([]CompactItem, 0, n)
	for i := uint32(0); i < n; i++ {
		if len(b) < 4 {
			return nil, nil, errCompact
		}
		id := AppID(binary.LittleEndian.Uint32(b))
		b = b[4:]
		var start uint32
		start, b, err = DecodeCompactU32(b)
		if err != nil {
			return nil, nil, err
		}
		index = append(index, CompactItem{AppID: id, Start: start})
	}
	m, b, err := DecodeCompactU32(b)
	if err != nil {
		return nil, nil, err
	}
	if uint64(m)*2 > uint64(len(b)) {
		return nil, nil, errCompact
	}
	rowsPerTx := make([]uint16, 0, m)
	for i := uint32(0); i < m; i++ {
		rowsPerTx = append(rowsPerTx, binary.LittleEndian.Uint16(b))
		b = b[2:]
	}
	return &CompactDataLookup{size: size, index: index, rowsPerTx: rowsPerTx}, b, nil
}
