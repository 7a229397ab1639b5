package kate

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"github.com/availproject/avail-core-go/grid"
	"github.com/availproject/avail-core-go/lookup"
)

// VerifyEquality recommits the supplied rows of one application and
// compares them against the published commitment list. rows is indexed by
// extended row number, nil marking rows the caller could not sample.
// Returned are the extended row indices that verified and those that were
// missing; a present row whose recomputed commitment differs appears in
// neither list.
func VerifyEquality(p *PublicParams, commitments []byte, rows [][]byte, lk *lookup.DataLookup, origDims grid.Dimensions, appID lookup.AppID) (verified, missing []uint32, err error) {
	if len(commitments) == 0 || len(commitments)%CommitmentSize != 0 {
		return nil, nil, fmt.Errorf("%w: commitment list is %d bytes", ErrFailedToExtractCommitments, len(commitments))
	}
	extRows := len(commitments) / CommitmentSize
	origRows := origDims.Height()
	if origRows == 0 || extRows%origRows != 0 {
		return nil, nil, fmt.Errorf("%w: %d commitments for %d original rows", ErrInvalidData, extRows, origRows)
	}
	factor := extRows / origRows

	appRows, err := appRowSet(lk, origDims, factor, appID)
	if err != nil {
		return nil, nil, err
	}
	if appRows.Count() == 0 {
		return nil, nil, nil
	}

	width := origDims.Width()
	d, err := grid.NewDomain(width)
	if err != nil {
		return nil, nil, err
	}

	for ri, ok := appRows.NextSet(0); ok; ri, ok = appRows.NextSet(ri + 1) {
		if int(ri) >= len(rows) || rows[ri] == nil {
			missing = append(missing, uint32(ri))
			continue
		}
		row := rows[ri]
		if len(row) != width*grid.ScalarSize {
			return nil, nil, fmt.Errorf("%w: row %d is %d bytes, want %d", ErrInvalidData, ri, len(row), width*grid.ScalarSize)
		}
		coeffs := make([]fr.Element, width)
		for i := range coeffs {
			if err := coeffs[i].SetBytesCanonical(row[i*grid.ScalarSize : (i+1)*grid.ScalarSize]); err != nil {
				return nil, nil, fmt.Errorf("%w: row %d scalar %d: %v", ErrFailedToConvertEvals, ri, i, err)
			}
		}
		d.FFTInverse(coeffs, fft.DIF)
		fft.BitReverse(coeffs)

		c, err := commitRow(p, coeffs)
		if err != nil {
			return nil, nil, err
		}
		got := c.Bytes()
		want := commitments[int(ri)*CommitmentSize : (int(ri)+1)*CommitmentSize]
		if bytes.Equal(got[:], want) {
			verified = append(verified, uint32(ri))
		}
	}
	return verified, missing, nil
}

// appRowSet marks the extended row indices holding appID's data: the
// original rows its range spans, scattered to every factor-th row.
func appRowSet(lk *lookup.DataLookup, origDims grid.Dimensions, factor int, appID lookup.AppID) (*bitset.BitSet, error) {
	set := bitset.New(uint(origDims.Height() * factor))
	rng, ok := lk.RangeOf(appID)
	if ok && rng.End > rng.Start {
		width := uint32(origDims.Width())
		first := rng.Start / width
		last := (rng.End - 1) / width
		if int(last) >= origDims.Height() {
			return nil, fmt.Errorf("%w: app %d spans row %d of %d", ErrInvalidData, appID, last, origDims.Height())
		}
		for r := first; r <= last; r++ {
			set.Set(uint(r) * uint(factor))
		}
	}
	return set, nil
}
