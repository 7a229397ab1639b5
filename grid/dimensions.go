// Package grid lays out application payloads as a row-major matrix of
// BLS12-381 scalars and extends it column-wise for erasure coding.
package grid

import (
	"errors"
	"math"
	"math/bits"

	"github.com/availproject/avail-core-go/cell"
)

const (
	// DataChunkSize is the number of payload bytes packed into one scalar.
	DataChunkSize = 31
	// ScalarSize is the serialized size of a scalar.
	ScalarSize = 32
	// MinBlockSize is the default minimum grid width.
	MinBlockSize = 128
	// MaxBlockRows and MaxBlockCols bound the pre-extension grid.
	MaxBlockRows = 256
	MaxBlockCols = 256
)

var (
	ErrZeroDimension = errors.New("grid: dimensions must be non-zero")
	ErrTooLarge      = errors.New("grid: payloads exceed grid capacity")
	// ErrInvalidDomain is returned when a row or column count is not a
	// size supported by the radix-2 evaluation domain construction.
	ErrInvalidDomain = errors.New("grid: unsupported evaluation domain size")
)

// Dimensions describes a rows × cols matrix. All flattened addressing goes
// through Index so the row-major layout is established in exactly one
// place.
type Dimensions struct {
	rows uint16
	cols uint16
}

// NewDimensions rejects empty matrices.
func NewDimensions(rows, cols uint16) (Dimensions, error) {
	if rows == 0 || cols == 0 {
		return Dimensions{}, ErrZeroDimension
	}
	return Dimensions{rows: rows, cols: cols}, nil
}

func (d Dimensions) Rows() uint16 { return d.rows }
func (d Dimensions) Cols() uint16 { return d.cols }

// Height and Width as ints, for arithmetic against slice lengths.
func (d Dimensions) Height() int { return int(d.rows) }
func (d Dimensions) Width() int  { return int(d.cols) }

// Size is the number of cells.
func (d Dimensions) Size() int { return d.Height() * d.Width() }

// RowByteSize is the serialized size of one full row.
func (d Dimensions) RowByteSize() int { return d.Width() * ScalarSize }

// Index maps a (row, col) coordinate to its offset in the flat row-major
// buffer.
func (d Dimensions) Index(row, col int) int { return row*d.Width() + col }

// Contains reports whether a position addresses a cell of this matrix.
func (d Dimensions) Contains(pos cell.Position) bool {
	return pos.Row < uint32(d.rows) && pos.Col < d.cols
}

// Extend multiplies the row count by factor.
func (d Dimensions) Extend(factor uint16) (Dimensions, error) {
	if factor == 0 {
		return Dimensions{}, ErrZeroDimension
	}
	if uint32(d.rows)*uint32(factor) > math.MaxUint16 {
		return Dimensions{}, ErrInvalidDomain
	}
	return Dimensions{rows: d.rows * factor, cols: d.cols}, nil
}

func isPowerOfTwo(n uint) bool { return n != 0 && n&(n-1) == 0 }

func nextPowerOfTwo(n uint) uint {
	if n <= 1 {
		return 1
	}
	return 1 << uint(bits.Len(n-1))
}
