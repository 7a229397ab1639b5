// Package recovery turns sampled cells back into rows, grids and
// application payloads. It is the read side of the grid pipeline: where
// the grid package lays payloads out and extends them, recovery collects
// whatever subset a light client sampled and inverts each step.
package recovery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"github.com/availproject/avail-core-go/cell"
	"github.com/availproject/avail-core-go/grid"
	"github.com/availproject/avail-core-go/internal/poly"
	"github.com/availproject/avail-core-go/lookup"
)

var (
	// ErrNotEnoughCells signals fewer distinct samples than the erasure
	// code needs for reconstruction.
	ErrNotEnoughCells = errors.New("recovery: not enough cells to reconstruct")
	// ErrInvalidCell covers cell bytes that do not decode to a canonical
	// field element.
	ErrInvalidCell = errors.New("recovery: cell is not a valid scalar")
	// ErrMissingRow signals an application row absent from the supplied
	// row set.
	ErrMissingRow = errors.New("recovery: required row is not available")
	// ErrInvalidPayload signals row data whose padding or length prefix
	// does not parse back into a payload.
	ErrInvalidPayload = errors.New("recovery: malformed application payload")
)

// DataCell is one sampled grid value, proof already checked and
// discarded.
type DataCell struct {
	Position cell.Position
	Data     [grid.ScalarSize]byte
}

// Row is a fully assembled grid row: the serialized scalars of every
// column, concatenated in column order.
type Row struct {
	Index uint32
	Data  []byte
}

// Rows merges sampled cells into complete rows of a dims-shaped grid.
// Rows with any column missing are dropped; the result is sorted by row
// index. A duplicate cell overwrites the earlier one.
func Rows(dims grid.Dimensions, cells []DataCell) []Row {
	width := dims.Width()
	byRow := make(map[uint32]map[uint16][grid.ScalarSize]byte)
	for _, c := range cells {
		if int(c.Position.Row) >= dims.Height() || int(c.Position.Col) >= width {
			continue
		}
		cols := byRow[c.Position.Row]
		if cols == nil {
			cols = make(map[uint16][grid.ScalarSize]byte, width)
			byRow[c.Position.Row] = cols
		}
		cols[c.Position.Col] = c.Data
	}

	out := make([]Row, 0, len(byRow))
	for ri, cols := range byRow {
		if len(cols) != width {
			continue
		}
		data := make([]byte, 0, width*grid.ScalarSize)
		for c := 0; c < width; c++ {
			v := cols[uint16(c)]
			data = append(data, v[:]...)
		}
		out = append(out, Row{Index: ri, Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// OriginalRows filters extended-grid rows down to the recoverable
// original subset, remapping each index from factor*i back to i.
func OriginalRows(rows []Row, factor int) []Row {
	if factor < 1 {
		return nil
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if int(r.Index)%factor == 0 {
			out = append(out, Row{Index: r.Index / uint32(factor), Data: r.Data})
		}
	}
	return out
}

// OriginalGrid extracts the pre-extension grid from a factor-extended
// one: every factor-th row, same columns, same lookup.
func OriginalGrid(ext *grid.EvaluationGrid, factor int) (*grid.EvaluationGrid, error) {
	extDims := ext.Dims()
	if factor < 1 || extDims.Height()%factor != 0 {
		return nil, fmt.Errorf("%w: factor %d for %d rows", grid.ErrInvalidDomain, factor, extDims.Height())
	}
	dims, err := grid.NewDimensions(uint16(extDims.Height()/factor), extDims.Cols())
	if err != nil {
		return nil, err
	}
	evals := make([]fr.Element, 0, dims.Size())
	for i := 0; i < dims.Height(); i++ {
		evals = append(evals, ext.Row(i*factor)...)
	}
	return grid.NewEvaluationGrid(ext.Lookup(), evals, dims)
}

// ReconstructColumn rebuilds a full extended column of extRows values
// from any extRows/factor distinct samples of it. The column polynomial
// has degree below the original row count, so that many evaluations over
// the extended domain pin it down; the rest is re-evaluation.
func ReconstructColumn(extRows, factor int, have []DataCell) ([]fr.Element, error) {
	if factor < 1 || extRows%factor != 0 {
		return nil, fmt.Errorf("%w: factor %d for %d rows", grid.ErrInvalidDomain, factor, extRows)
	}
	origRows := extRows / factor

	all, err := poly.DomainPoints(extRows)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint32][grid.ScalarSize]byte, len(have))
	for _, c := range have {
		if int(c.Position.Row) < extRows {
			seen[c.Position.Row] = c.Data
		}
	}
	if len(seen) < origRows {
		return nil, fmt.Errorf("%w: have %d of %d rows", ErrNotEnoughCells, len(seen), origRows)
	}
	rows := make([]uint32, 0, len(seen))
	for r := range seen {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
	rows = rows[:origRows]

	points := make([]fr.Element, origRows)
	values := make([]fr.Element, origRows)
	for i, r := range rows {
		points[i] = all[r]
		data := seen[r]
		if err := values[i].SetBytesCanonical(data[:]); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidCell, r, err)
		}
	}

	coeffs := poly.Interpolate(points, values)

	d, err := grid.NewDomain(extRows)
	if err != nil {
		return nil, err
	}
	full := make([]fr.Element, extRows)
	copy(full, coeffs)
	d.FFT(full, fft.DIF)
	fft.BitReverse(full)
	return full, nil
}

// AppData rebuilds the application's submitted payloads from original
// grid rows. rows holds original-index rows (as produced by OriginalRows)
// of a dims-shaped grid; every row the app's range touches must be
// present. Each transaction is unpadded and stripped of its length
// prefix.
func AppData(lk *lookup.DataLookup, dims grid.Dimensions, rows []Row, appID lookup.AppID) ([][]byte, error) {
	txs, ok := lk.AppTxs(appID)
	if !ok || len(txs) == 0 {
		return nil, nil
	}
	byIndex := make(map[uint32][]byte, len(rows))
	for _, r := range rows {
		byIndex[r.Index] = r.Data
	}

	width := uint32(dims.Width())
	out := make([][]byte, 0, len(txs))
	for _, tx := range txs {
		chunks := make([]byte, 0, len(tx)*grid.DataChunkSize)
		for _, off := range tx {
			row, col := off/width, off%width
			data, ok := byIndex[row]
			if !ok {
				return nil, fmt.Errorf("%w: row %d", ErrMissingRow, row)
			}
			var e fr.Element
			if err := e.SetBytesCanonical(data[col*grid.ScalarSize : (col+1)*grid.ScalarSize]); err != nil {
				return nil, fmt.Errorf("%w: (%d, %d): %v", ErrInvalidCell, row, col, err)
			}
			chunk := grid.ScalarToChunk(e)
			chunks = append(chunks, chunk[:]...)
		}
		payload, err := decodePayload(chunks)
		if err != nil {
			return nil, err
		}
		out = append(out, payload)
	}
	return out, nil
}

// decodePayload strips the bit padding and the compact length prefix of
// one transaction's chunk stream.
func decodePayload(chunks []byte) ([]byte, error) {
	unpadded, err := grid.UnpadData(chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	n, rest, err := lookup.DecodeCompactU32(unpadded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if uint32(len(rest)) != n {
		return nil, fmt.Errorf("%w: prefix says %d bytes, have %d", ErrInvalidPayload, n, len(rest))
	}
	return rest, nil
}
