package kate

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/availproject/avail-core-go/grid"
)

// Radix-2 FFT over G1. Commitments are group elements, but the butterfly
// structure is the same as for scalars: twiddles act by scalar
// multiplication. Used to extend a column of row commitments through the
// same nested domains the grid extension evaluates over.

// extendCommitments interpolates the commitment column over the small
// domain and re-evaluates it over the factor× one.
func extendCommitments(comms []Commitment, factor int) ([]Commitment, error) {
	if factor < 1 {
		return nil, grid.ErrInvalidDomain
	}
	n := len(comms)
	if factor == 1 {
		out := make([]Commitment, n)
		copy(out, comms)
		return out, nil
	}
	small, err := grid.NewDomain(n)
	if err != nil {
		return nil, err
	}
	big2, err := grid.NewDomain(n * factor)
	if err != nil {
		return nil, err
	}

	buf := make([]bls12381.G1Jac, n*factor)
	for i := range comms {
		buf[i].FromAffine(&comms[i])
	}
	var infinity bls12381.G1Affine
	for i := n; i < len(buf); i++ {
		buf[i].FromAffine(&infinity)
	}

	// Inverse transform on the occupied prefix, scaled by 1/n.
	coeffs := g1FFT(buf[:n], small.GeneratorInv)
	var scale big.Int
	small.CardinalityInv.BigInt(&scale)
	for i := range coeffs {
		coeffs[i].ScalarMultiplication(&coeffs[i], &scale)
		buf[i] = coeffs[i]
	}

	evals := g1FFT(buf, big2.Generator)
	out := make([]Commitment, len(evals))
	for i := range evals {
		// Point-by-point conversion: batch affine conversion cannot cope
		// with points at infinity, which an all-zero row produces.
		out[i].FromJacobian(&evals[i])
	}
	return out, nil
}

// g1FFT is a recursive Cooley-Tukey transform in natural order; len(a)
// must be a power of two.
func g1FFT(a []bls12381.G1Jac, w fr.Element) []bls12381.G1Jac {
	n := len(a)
	if n == 1 {
		return []bls12381.G1Jac{a[0]}
	}
	half := n / 2
	even := make([]bls12381.G1Jac, half)
	odd := make([]bls12381.G1Jac, half)
	for i := 0; i < half; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}
	var w2 fr.Element
	w2.Square(&w)
	e := g1FFT(even, w2)
	o := g1FFT(odd, w2)

	out := make([]bls12381.G1Jac, n)
	twiddle := fr.One()
	var k big.Int
	for i := 0; i < half; i++ {
		var t bls12381.G1Jac
		if twiddle.IsOne() {
			t.Set(&o[i])
		} else {
			t.ScalarMultiplication(&o[i], twiddle.BigInt(&k))
		}
		out[i].Set(&e[i])
		out[i].AddAssign(&t)
		out[i+half].Set(&e[i])
		out[i+half].SubAssign(&t)
		twiddle.Mul(&twiddle, &w)
	}
	return out
}
