package kate

import (
	"crypto/sha256"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"
)

// NewTestParams generates deterministic parameters from a fixed, public
// tau. INSECURE: test and development use only; production parameters
// come from a ceremony blob via ParamsFromBytes.
func NewTestParams(maxDegree, maxPoints int) (*PublicParams, error) {
	seed := sha256.Sum256([]byte("avail test params"))
	var tau fr.Element
	tau.SetBytes(seed[:])
	var tauBig big.Int
	tau.BigInt(&tauBig)

	srs, err := kzg.NewSRS(uint64(maxDegree), &tauBig)
	if err != nil {
		return nil, err
	}

	_, g2Jac, _, _ := bls12381.Generators()
	g2 := make([]bls12381.G2Affine, maxPoints+1)
	acc := fr.One()
	var accBig big.Int
	for i := range g2 {
		var p bls12381.G2Jac
		p.ScalarMultiplication(&g2Jac, acc.BigInt(&accBig))
		g2[i].FromJacobian(&p)
		acc.Mul(&acc, &tau)
	}

	return &PublicParams{pk: srs.Pk, vk: srs.Vk, g2: g2}, nil
}
