// Package kate interpolates grid rows into polynomials and produces the
// KZG commitments and opening proofs published for data-availability
// sampling, plus their verification counterparts.
package kate

import (
	"bytes"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
)

const (
	// CommitmentSize is the compressed G1 encoding of one row commitment.
	CommitmentSize = 48
	// ProofSize is the compressed G1 encoding of one opening witness.
	ProofSize = 48
)

// PublicParams are the pre-generated powers of the trusted setup. The G1
// powers commit to polynomials; G2 carries enough powers to commit to the
// vanishing polynomial of any multiproof column range. Parameters are
// immutable once loaded and safe for concurrent use.
type PublicParams struct {
	pk kzg.ProvingKey
	vk kzg.VerifyingKey
	g2 []bls12381.G2Affine
}

// NewParams assembles parameters from raw powers; g1[0] and g2[0] must be
// the group generators and g2 needs at least [1]₂ and [τ]₂.
func NewParams(g1 []bls12381.G1Affine, g2 []bls12381.G2Affine) (*PublicParams, error) {
	if len(g1) == 0 || len(g2) < 2 {
		return nil, fmt.Errorf("%w: need at least one G1 and two G2 powers", ErrInvalidData)
	}
	p := &PublicParams{pk: kzg.ProvingKey{G1: g1}, g2: g2}
	p.vk.G1 = g1[0]
	p.vk.G2[0] = g2[0]
	p.vk.G2[1] = g2[1]
	p.vk.Lines[0] = bls12381.PrecomputeLines(p.vk.G2[0])
	p.vk.Lines[1] = bls12381.PrecomputeLines(p.vk.G2[1])
	return p, nil
}

// ParamsFromBytes loads parameters from the opaque setup blob. Malformed
// or non-subgroup points fail here, never later during commitment.
func ParamsFromBytes(b []byte) (*PublicParams, error) {
	dec := bls12381.NewDecoder(bytes.NewReader(b))
	var g1 []bls12381.G1Affine
	var g2 []bls12381.G2Affine
	if err := dec.Decode(&g1); err != nil {
		return nil, fmt.Errorf("%w: G1 powers: %v", ErrInvalidData, err)
	}
	if err := dec.Decode(&g2); err != nil {
		return nil, fmt.Errorf("%w: G2 powers: %v", ErrInvalidData, err)
	}
	return NewParams(g1, g2)
}

// Bytes serializes the parameters in the blob layout ParamsFromBytes
// reads.
func (p *PublicParams) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := bls12381.NewEncoder(&buf)
	if err := enc.Encode(p.pk.G1); err != nil {
		return nil, err
	}
	if err := enc.Encode(p.g2); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MaxDegree is the largest polynomial length the G1 powers can commit to.
func (p *PublicParams) MaxDegree() int { return len(p.pk.G1) }

// MaxPoints is the widest multiproof column range the G2 powers support.
func (p *PublicParams) MaxPoints() int { return len(p.g2) - 1 }
