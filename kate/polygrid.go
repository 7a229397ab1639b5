package kate

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
	"golang.org/x/sync/errgroup"

	"github.com/availproject/avail-core-go/cell"
	"github.com/availproject/avail-core-go/grid"
	"github.com/availproject/avail-core-go/internal/poly"
	"github.com/availproject/avail-core-go/logger"
)

// Commitment is one row's KZG commitment, a point of G1.
type Commitment = kzg.Digest

// CommitmentsBytes concatenates compressed row commitments in row order,
// the form persisted in the header extension.
func CommitmentsBytes(cs []Commitment) []byte {
	out := make([]byte, 0, len(cs)*CommitmentSize)
	for i := range cs {
		b := cs[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// PolynomialGrid holds one interpolated polynomial per grid row, in
// coefficient form. It is derived on demand from an evaluation grid and
// never persisted.
type PolynomialGrid struct {
	coeffs [][]fr.Element
	dims   grid.Dimensions
}

// MakePolynomialGrid interpolates every row of the grid over the
// width-sized evaluation domain.
func MakePolynomialGrid(g *grid.EvaluationGrid) (*PolynomialGrid, error) {
	d, err := grid.NewDomain(g.Dims().Width())
	if err != nil {
		return nil, err
	}
	rows := g.Dims().Height()
	coeffs := make([][]fr.Element, rows)
	for i := 0; i < rows; i++ {
		row := g.Row(i)
		d.FFTInverse(row, fft.DIF)
		fft.BitReverse(row)
		coeffs[i] = row
	}
	return &PolynomialGrid{coeffs: coeffs, dims: g.Dims()}, nil
}

func (pg *PolynomialGrid) Dims() grid.Dimensions { return pg.dims }

// Row returns the coefficient form of one row polynomial.
func (pg *PolynomialGrid) Row(i int) []fr.Element {
	if i < 0 || i >= len(pg.coeffs) {
		return nil
	}
	return pg.coeffs[i]
}

// Commitment commits to a single row polynomial.
func (pg *PolynomialGrid) Commitment(p *PublicParams, row int) (Commitment, error) {
	if row < 0 || row >= len(pg.coeffs) {
		return Commitment{}, fmt.Errorf("%w: row %d of %d", ErrInvalidPositionInDomain, row, len(pg.coeffs))
	}
	return commitRow(p, pg.coeffs[row])
}

// Commitments computes one commitment per row, serially and in row order.
func (pg *PolynomialGrid) Commitments(p *PublicParams) ([]Commitment, error) {
	out := make([]Commitment, len(pg.coeffs))
	for i := range pg.coeffs {
		c, err := commitRow(p, pg.coeffs[i])
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// ParCommitments computes the same commitments as Commitments across a
// bounded worker pool. Rows are independent and each worker writes only
// its own index of the pre-sized output, so the result is bit-for-bit
// identical to the serial path.
func (pg *PolynomialGrid) ParCommitments(p *PublicParams) ([]Commitment, error) {
	start := time.Now()
	out := make([]Commitment, len(pg.coeffs))
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := range pg.coeffs {
		i := i
		eg.Go(func() error {
			c, err := commitRow(p, pg.coeffs[i])
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	log := logger.Logger()
	log.Debug().
		Int("rows", len(out)).
		Dur("took", time.Since(start)).
		Msg("built commitments")
	return out, nil
}

// ExtendedCommitments derives the commitments of the factor×-row-extended
// grid directly from this (pre-extension) polynomial grid. Commitments
// are linear in the rows, so extending the commitment column through the
// same FFT domains yields exactly the commitments a full grid extension
// would produce.
func (pg *PolynomialGrid) ExtendedCommitments(p *PublicParams, factor int) ([]Commitment, error) {
	base, err := pg.Commitments(p)
	if err != nil {
		return nil, err
	}
	return extendCommitments(base, factor)
}

// Proof computes the KZG opening of the cell's row polynomial at its
// column's domain point.
func (pg *PolynomialGrid) Proof(p *PublicParams, pos cell.Position) (kzg.OpeningProof, error) {
	if !pg.dims.Contains(pos) {
		return kzg.OpeningProof{}, fmt.Errorf("%w: (%d, %d) outside %dx%d",
			ErrInvalidPositionInDomain, pos.Row, pos.Col, pg.dims.Rows(), pg.dims.Cols())
	}
	point, err := poly.DomainPointAt(pg.dims.Width(), int(pos.Col))
	if err != nil {
		return kzg.OpeningProof{}, err
	}
	proof, err := kzg.Open(pg.coeffs[pos.Row], point, p.pk)
	if err != nil {
		if errors.Is(err, kzg.ErrInvalidPolynomialSize) {
			return kzg.OpeningProof{}, ErrInvalidDegree
		}
		return kzg.OpeningProof{}, err
	}
	return proof, nil
}

// ProofCell opens a cell and packs it into its 80-byte wire form.
func (pg *PolynomialGrid) ProofCell(p *PublicParams, g *grid.EvaluationGrid, pos cell.Position) (*cell.SingleCell, error) {
	proof, err := pg.Proof(p, pos)
	if err != nil {
		return nil, err
	}
	value, ok := g.Get(int(pos.Row), int(pos.Col))
	if !ok {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidPositionInDomain, pos.Row, pos.Col)
	}
	return cell.NewSingleCell(pos, proof.H.Bytes(), value.Bytes()), nil
}

func commitRow(p *PublicParams, coeffs []fr.Element) (Commitment, error) {
	c, err := kzg.Commit(coeffs, p.pk)
	if err != nil {
		if errors.Is(err, kzg.ErrInvalidPolynomialSize) {
			return Commitment{}, ErrInvalidDegree
		}
		return Commitment{}, err
	}
	return c, nil
}
