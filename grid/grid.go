package grid

import (
	"fmt"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/chacha20"

	"github.com/availproject/avail-core-go/logger"
	"github.com/availproject/avail-core-go/lookup"
)

// Seed keys the deterministic filler for unused grid capacity.
type Seed = [32]byte

// AppExtrinsic is one application-tagged payload submitted in a block.
type AppExtrinsic struct {
	AppID lookup.AppID
	Data  []byte
}

// EvaluationGrid is the row-major matrix of scalars representing a block's
// data, together with the lookup describing how flattened offsets map back
// to applications and transactions. It is built once per block and is
// immutable afterwards.
type EvaluationGrid struct {
	lookup *lookup.DataLookup
	evals  []fr.Element
	dims   Dimensions
}

// NewEvaluationGrid wraps an existing scalar buffer; len(evals) must match
// dims.
func NewEvaluationGrid(lk *lookup.DataLookup, evals []fr.Element, dims Dimensions) (*EvaluationGrid, error) {
	if len(evals) != dims.Size() {
		return nil, fmt.Errorf("grid: %d scalars for %dx%d grid", len(evals), dims.Rows(), dims.Cols())
	}
	return &EvaluationGrid{lookup: lk, evals: evals, dims: dims}, nil
}

// FromExtrinsics lays the submitted payloads into the smallest grid that
// holds them. Each payload is length-prefixed, bit-padded to whole scalar
// chunks, and payloads are concatenated in app-id order (submission order
// within an app). Remaining capacity is filled with ChaCha20 output keyed
// by seed, so unused cells are indistinguishable from data without it.
func FromExtrinsics(xts []AppExtrinsic, minWidth, maxWidth, maxHeight uint16, seed Seed) (*EvaluationGrid, error) {
	sorted := make([]AppExtrinsic, len(xts))
	copy(sorted, xts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AppID < sorted[j].AppID })

	var (
		evals []fr.Element
		pairs []lookup.IDLen
	)
	for _, xt := range sorted {
		prefixed := lookup.AppendCompactU32(nil, uint32(len(xt.Data)))
		prefixed = append(prefixed, xt.Data...)
		scalars := scalarsFromPadded(padIEC97971(prefixed))
		evals = append(evals, scalars...)
		pairs = append(pairs, lookup.IDLen{ID: xt.AppID, Len: uint(len(scalars))})
	}

	lk, err := lookup.FromIDAndLens(pairs)
	if err != nil {
		return nil, err
	}

	dims, err := fitDims(uint(len(evals)), minWidth, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}

	full := make([]fr.Element, dims.Size())
	copy(full, evals)
	if err := fillDeterministic(full[len(evals):], seed); err != nil {
		return nil, err
	}

	log := logger.Logger()
	log.Debug().
		Uint16("rows", dims.Rows()).
		Uint16("cols", dims.Cols()).
		Int("dataScalars", len(evals)).
		Msg("built evaluation grid")

	return &EvaluationGrid{lookup: lk, evals: full, dims: dims}, nil
}

// fitDims picks the minimal power-of-two dimensions holding n scalars:
// a single row of at least minWidth while the data fits one, then full
// rows of maxWidth.
func fitDims(n uint, minWidth, maxWidth, maxHeight uint16) (Dimensions, error) {
	if !isPowerOfTwo(uint(minWidth)) || !isPowerOfTwo(uint(maxWidth)) || !isPowerOfTwo(uint(maxHeight)) {
		return Dimensions{}, ErrInvalidDomain
	}
	if n == 0 {
		n = 1
	}
	if n <= uint(maxWidth) {
		w := nextPowerOfTwo(n)
		if w < uint(minWidth) {
			w = uint(minWidth)
		}
		return NewDimensions(1, uint16(w))
	}
	rows := nextPowerOfTwo((n + uint(maxWidth) - 1) / uint(maxWidth))
	if rows > uint(maxHeight) {
		return Dimensions{}, ErrTooLarge
	}
	return NewDimensions(uint16(rows), maxWidth)
}

func fillDeterministic(dst []fr.Element, seed Seed) error {
	if len(dst) == 0 {
		return nil
	}
	var nonce [chacha20.NonceSize]byte
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return fmt.Errorf("grid: filler stream: %w", err)
	}
	zero := make([]byte, DataChunkSize)
	buf := make([]byte, DataChunkSize)
	for i := range dst {
		stream.XORKeyStream(buf, zero)
		dst[i].SetBytes(buf)
	}
	return nil
}

// Dims returns the grid dimensions.
func (g *EvaluationGrid) Dims() Dimensions { return g.dims }

// Lookup returns the application range index of the grid.
func (g *EvaluationGrid) Lookup() *lookup.DataLookup { return g.lookup }

// Get returns the scalar at (row, col).
func (g *EvaluationGrid) Get(row, col int) (fr.Element, bool) {
	if row < 0 || col < 0 || row >= g.dims.Height() || col >= g.dims.Width() {
		return fr.Element{}, false
	}
	return g.evals[g.dims.Index(row, col)], true
}

// Row returns a copy of one row.
func (g *EvaluationGrid) Row(row int) []fr.Element {
	if row < 0 || row >= g.dims.Height() {
		return nil
	}
	out := make([]fr.Element, g.dims.Width())
	copy(out, g.evals[g.dims.Index(row, 0):g.dims.Index(row, g.dims.Width())])
	return out
}

// Evals exposes the flat row-major buffer, read-only by convention.
func (g *EvaluationGrid) Evals() []fr.Element { return g.evals }

// AppRow is one grid row holding (part of) an application's data.
type AppRow struct {
	Index int
	Data  []fr.Element
}

// AppRows returns the rows containing any portion of the app's data. When
// the grid has been extended, origDims names the pre-extension shape and
// the returned indices are the extended positions of those original rows.
// A missing app yields no rows and no error.
func (g *EvaluationGrid) AppRows(id lookup.AppID, origDims *Dimensions) ([]AppRow, error) {
	dims := g.dims
	factor := 1
	if origDims != nil {
		if origDims.Cols() != g.dims.Cols() || origDims.Rows() == 0 || g.dims.Rows()%origDims.Rows() != 0 {
			return nil, fmt.Errorf("grid: %dx%d does not extend %dx%d",
				g.dims.Rows(), g.dims.Cols(), origDims.Rows(), origDims.Cols())
		}
		factor = int(g.dims.Rows() / origDims.Rows())
		dims = *origDims
	}
	r, ok := g.lookup.RangeOf(id)
	if !ok || r.IsEmpty() {
		return nil, nil
	}

	startRow := int(r.Start) / dims.Width()
	endRow := int(r.End-1) / dims.Width()
	if endRow >= dims.Height() {
		return nil, fmt.Errorf("grid: app %d range exceeds %dx%d grid", id, dims.Rows(), dims.Cols())
	}
	rows := make([]AppRow, 0, endRow-startRow+1)
	for i := startRow; i <= endRow; i++ {
		ext := i * factor
		rows = append(rows, AppRow{Index: ext, Data: g.Row(ext)})
	}
	return rows, nil
}
