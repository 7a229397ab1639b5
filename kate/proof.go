package kate

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"

	"github.com/availproject/avail-core-go/cell"
	"github.com/availproject/avail-core-go/grid"
	"github.com/availproject/avail-core-go/internal/poly"
)

// VerifyCell checks a single proved cell against a published row
// commitment. The domain point is recomputed from the cell's column and
// the grid width. A cryptographically invalid proof yields (false, nil);
// only malformed inputs produce errors.
func VerifyCell(p *PublicParams, dims grid.Dimensions, commitment [CommitmentSize]byte, c *cell.SingleCell) (bool, error) {
	var digest kzg.Digest
	if _, err := digest.SetBytes(commitment[:]); err != nil {
		return false, fmt.Errorf("%w: commitment: %v", ErrInvalidData, err)
	}

	var value fr.Element
	data := c.Data()
	if err := value.SetBytesCanonical(data[:]); err != nil {
		return false, fmt.Errorf("%w: cell value: %v", ErrInvalidData, err)
	}

	point, err := poly.DomainPointAt(dims.Width(), int(c.Position.Col))
	if err != nil {
		return false, err
	}

	var h bls12381.G1Affine
	proofBytes := c.Proof()
	if _, err := h.SetBytes(proofBytes[:]); err != nil {
		return false, fmt.Errorf("%w: proof: %v", ErrInvalidData, err)
	}
	proof := kzg.OpeningProof{H: h, ClaimedValue: value}

	switch err := kzg.Verify(&digest, &proof, point, p.vk); {
	case err == nil:
		return true, nil
	case errors.Is(err, kzg.ErrVerifyOpeningProof):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrFailedToVerifyProof, err)
	}
}
