package kate

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"

	"github.com/availproject/avail-core-go/cell"
	"github.com/availproject/avail-core-go/grid"
	"github.com/availproject/avail-core-go/internal/poly"
)

// A multiproof covers a rectangular block of cells with one aggregated
// opening. The row polynomials of the block are folded with powers of a
// Fiat-Shamir challenge gamma, and a single quotient against the
// vanishing polynomial of the block's column points witnesses every
// evaluation at once:
//
//	e(sum gamma^i C_i - [r(tau)]_1, g2) == e(W, [Z_T(tau)]_2)
//
// where r interpolates the folded evaluations over the block columns and
// Z_T vanishes on them. The right side needs G2 powers up to the block
// width, which is why PublicParams carries more than the two points
// single-cell verification uses.

// multiproofDims clamps the requested multiproof grid to the data grid
// and requires it to tile the grid evenly.
func multiproofDims(gridDims, target grid.Dimensions) (rows, cols int, err error) {
	cols = min(target.Width(), gridDims.Width())
	rows = min(target.Height(), gridDims.Height())
	if gridDims.Width()%cols != 0 || gridDims.Height()%rows != 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d does not tile %dx%d",
			ErrInvalidDomain, rows, cols, gridDims.Height(), gridDims.Width())
	}
	return rows, cols, nil
}

// MultiproofBlock maps cell (x, y) of the multiproof grid to the block
// of data-grid coordinates its proof covers.
func MultiproofBlock(x, y int, gridDims, target grid.Dimensions) (*cell.GCellBlock, error) {
	mpRows, mpCols, err := multiproofDims(gridDims, target)
	if err != nil {
		return nil, err
	}
	if x < 0 || x >= mpCols || y < 0 || y >= mpRows {
		return nil, fmt.Errorf("%w: (%d, %d) outside %dx%d multiproof grid",
			ErrInvalidPositionInDomain, x, y, mpRows, mpCols)
	}
	blockWidth := gridDims.Width() / mpCols
	blockHeight := gridDims.Height() / mpRows
	return &cell.GCellBlock{
		StartX: uint32(x * blockWidth),
		StartY: uint32(y * blockHeight),
		EndX:   uint32((x + 1) * blockWidth),
		EndY:   uint32((y + 1) * blockHeight),
	}, nil
}

// Multiproof proves the block addressed by target in the targetDims
// multiproof grid. g must be the evaluation grid this polynomial grid was
// interpolated from; its values become the cell's scalars, row-major in
// the block frame.
func (pg *PolynomialGrid) Multiproof(p *PublicParams, target cell.Position, g *grid.EvaluationGrid, targetDims grid.Dimensions) (*cell.MultiProofCell, error) {
	if g.Dims() != pg.dims {
		return nil, fmt.Errorf("%w: grid is %dx%d, polynomials are %dx%d",
			ErrInvalidData, g.Dims().Rows(), g.Dims().Cols(), pg.dims.Rows(), pg.dims.Cols())
	}
	block, err := MultiproofBlock(int(target.Col), int(target.Row), pg.dims, targetDims)
	if err != nil {
		return nil, err
	}

	width := pg.dims.Width()
	all, err := poly.DomainPoints(width)
	if err != nil {
		return nil, err
	}
	points := all[block.StartX:block.EndX]

	evals := make([]fr.Element, 0, int(block.Width())*int(block.Height()))
	for y := block.StartY; y < block.EndY; y++ {
		for x := block.StartX; x < block.EndX; x++ {
			v, ok := g.Get(int(y), int(x))
			if !ok {
				return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidPositionInDomain, y, x)
			}
			evals = append(evals, v)
		}
	}

	gamma := deriveGamma(points, evals)
	gammas := poly.Powers(gamma, int(block.Height()))

	// Fold the block's row polynomials and their claimed evaluations with
	// the same gamma powers.
	agg := make([]fr.Element, width)
	for i, y := 0, int(block.StartY); y < int(block.EndY); i, y = i+1, y+1 {
		row := pg.coeffs[y]
		for j := range row {
			var t fr.Element
			t.Mul(&gammas[i], &row[j])
			agg[j].Add(&agg[j], &t)
		}
	}
	aggEvals := foldEvals(evals, gammas, int(block.Width()))

	r := poly.Interpolate(points, aggEvals)
	num := make([]fr.Element, width)
	copy(num, agg)
	for j := range r {
		num[j].Sub(&num[j], &r[j])
	}
	quot, _ := poly.Div(num, poly.Vanishing(points))
	if len(quot) == 0 {
		quot = make([]fr.Element, 1)
	}

	w, err := kzg.Commit(quot, p.pk)
	if err != nil {
		if errors.Is(err, kzg.ErrInvalidPolynomialSize) {
			return nil, ErrInvalidDegree
		}
		return nil, err
	}

	scalars := make([][4]uint64, len(evals))
	for i := range evals {
		scalars[i] = scalarToLimbs(&evals[i])
	}
	return &cell.MultiProofCell{
		Position: target,
		Proof:    w.Bytes(),
		Block:    *block,
		Scalars:  scalars,
	}, nil
}

// VerifyMultiproofs checks every supplied multiproof cell against the
// published row commitments of a cols-wide grid. It returns true only if
// every block verifies; a failed pairing check is (false, nil), while
// undecodable inputs surface as typed errors.
func VerifyMultiproofs(p *PublicParams, cells []cell.MultiProofCell, commitments []byte, cols int) (bool, error) {
	if len(commitments)%CommitmentSize != 0 {
		return false, fmt.Errorf("%w: commitment list is %d bytes", ErrFailedToExtractCommitments, len(commitments))
	}
	rows := len(commitments) / CommitmentSize

	all, err := poly.DomainPoints(cols)
	if err != nil {
		return false, err
	}

	for i := range cells {
		ok, err := verifyMultiproof(p, &cells[i], commitments, rows, all)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func verifyMultiproof(p *PublicParams, c *cell.MultiProofCell, commitments []byte, rows int, all []fr.Element) (bool, error) {
	b := &c.Block
	if b.EndX <= b.StartX || b.EndY <= b.StartY || int(b.EndX) > len(all) || int(b.EndY) > rows {
		return false, fmt.Errorf("%w: block [%d,%d)x[%d,%d) outside %dx%d grid",
			ErrInvalidData, b.StartY, b.EndY, b.StartX, b.EndX, rows, len(all))
	}
	width, height := int(b.Width()), int(b.Height())
	if len(c.Scalars) != width*height {
		return false, fmt.Errorf("%w: %d scalars for a %dx%d block", ErrInvalidData, len(c.Scalars), height, width)
	}
	points := all[b.StartX:b.EndX]

	evals := make([]fr.Element, len(c.Scalars))
	for i := range c.Scalars {
		if err := scalarFromLimbs(c.Scalars[i], &evals[i]); err != nil {
			return false, fmt.Errorf("%w: scalar %d: %v", ErrFailedToConvertEvals, i, err)
		}
	}

	var w bls12381.G1Affine
	if _, err := w.SetBytes(c.Proof[:]); err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedToParseProof, err)
	}

	gamma := deriveGamma(points, evals)
	gammas := poly.Powers(gamma, height)

	digests := make([]bls12381.G1Affine, height)
	for i := 0; i < height; i++ {
		off := (int(b.StartY) + i) * CommitmentSize
		if _, err := digests[i].SetBytes(commitments[off : off+CommitmentSize]); err != nil {
			return false, fmt.Errorf("%w: row %d: %v", ErrFailedToExtractCommitments, int(b.StartY)+i, err)
		}
	}

	aggEvals := foldEvals(evals, gammas, width)
	r := poly.Interpolate(points, aggEvals)
	if len(r) > len(p.pk.G1) {
		return false, ErrInvalidDegree
	}
	zt := poly.Vanishing(points)
	if len(zt) > len(p.g2) {
		return false, ErrInvalidDegree
	}

	// F = sum gamma^i C_i - [r(tau)]_1
	var folded, rc bls12381.G1Jac
	if _, err := folded.MultiExp(digests, gammas, ecc.MultiExpConfig{}); err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedToVerifyProof, err)
	}
	if _, err := rc.MultiExp(p.pk.G1[:len(r)], r, ecc.MultiExpConfig{}); err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedToVerifyProof, err)
	}
	folded.SubAssign(&rc)
	var f bls12381.G1Affine
	f.FromJacobian(&folded)

	var ztJac bls12381.G2Jac
	if _, err := ztJac.MultiExp(p.g2[:len(zt)], zt, ecc.MultiExpConfig{}); err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedToVerifyProof, err)
	}
	var ztAff bls12381.G2Affine
	ztAff.FromJacobian(&ztJac)

	var negW bls12381.G1Affine
	negW.Neg(&w)

	// e(F, g2) * e(-W, Z_T) == 1
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{f, negW},
		[]bls12381.G2Affine{p.g2[0], ztAff},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrFailedToVerifyProof, err)
	}
	return ok, nil
}

// foldEvals combines the row-major block evaluations column-wise with the
// gamma powers, one folded value per block column.
func foldEvals(evals, gammas []fr.Element, width int) []fr.Element {
	out := make([]fr.Element, width)
	for i := range gammas {
		for j := 0; j < width; j++ {
			var t fr.Element
			t.Mul(&gammas[i], &evals[i*width+j])
			out[j].Add(&out[j], &t)
		}
	}
	return out
}

// deriveGamma binds the block's domain points and claimed evaluations
// into a transcript challenge. Prover and verifier see the same bytes, so
// both recover the same folding scalar.
func deriveGamma(points, evals []fr.Element) fr.Element {
	t := fiatshamir.NewTranscript(sha256.New(), "gamma")
	for i := range points {
		_ = t.Bind("gamma", points[i].Marshal())
	}
	for i := range evals {
		_ = t.Bind("gamma", evals[i].Marshal())
	}
	challenge, _ := t.ComputeChallenge("gamma")
	var gamma fr.Element
	gamma.SetBytes(challenge)
	return gamma
}

// scalarToLimbs splits a field element into 4 uint64 limbs, least
// significant first. Each limb travels big-endian on the wire.
func scalarToLimbs(e *fr.Element) [4]uint64 {
	b := e.Bytes()
	var limbs [4]uint64
	for i := 0; i < 4; i++ {
		for j := 0; j < 8; j++ {
			limbs[i] = limbs[i]<<8 | uint64(b[(3-i)*8+j])
		}
	}
	return limbs
}

func scalarFromLimbs(limbs [4]uint64, e *fr.Element) error {
	var b [32]byte
	for i := 0; i < 4; i++ {
		v := limbs[i]
		for j := 7; j >= 0; j-- {
			b[(3-i)*8+j] = byte(v)
			v >>= 8
		}
	}
	return e.SetBytesCanonical(b[:])
}
