package grid

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

// NewDomain builds the radix-2 evaluation domain of exactly n points.
// Sizes that are not powers of two are unsupported.
func NewDomain(n int) (*fft.Domain, error) {
	if n <= 0 || !isPowerOfTwo(uint(n)) {
		return nil, ErrInvalidDomain
	}
	return fft.NewDomain(uint64(n)), nil
}

// ExtendColumns treats each column as evaluations of a polynomial over the
// rows-sized domain and re-evaluates it over the factor×rows domain,
// producing factor× as many rows. Domain generators nest (the square of
// the big generator is the small one), so the original rows are exactly
// the extended rows at indices factor·i; any column can be reconstructed
// from that aligned subset.
func (g *EvaluationGrid) ExtendColumns(factor uint16) (*EvaluationGrid, error) {
	extDims, err := g.dims.Extend(factor)
	if err != nil {
		return nil, err
	}
	rows, extRows := g.dims.Height(), extDims.Height()

	small, err := NewDomain(rows)
	if err != nil {
		return nil, err
	}
	big, err := NewDomain(extRows)
	if err != nil {
		return nil, err
	}

	out := make([]fr.Element, extDims.Size())
	col := make([]fr.Element, extRows)
	for c := 0; c < g.dims.Width(); c++ {
		for r := 0; r < rows; r++ {
			col[r] = g.evals[g.dims.Index(r, c)]
		}
		for r := rows; r < extRows; r++ {
			col[r].SetZero()
		}

		// Natural-order evaluations -> coefficients, zero-padded, then
		// back to natural-order evaluations over the bigger domain.
		small.FFTInverse(col[:rows], fft.DIF)
		fft.BitReverse(col[:rows])
		big.FFT(col, fft.DIF)
		fft.BitReverse(col)

		for r := 0; r < extRows; r++ {
			out[extDims.Index(r, c)] = col[r]
		}
	}

	return &EvaluationGrid{lookup: g.lookup, evals: out, dims: extDims}, nil
}
