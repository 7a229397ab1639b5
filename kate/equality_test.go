package kate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-core-go/grid"
)

func serializeRow(g *grid.EvaluationGrid, row int) []byte {
	data := g.Row(row)
	out := make([]byte, 0, len(data)*grid.ScalarSize)
	for i := range data {
		b := data[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

func TestVerifyEquality(t *testing.T) {
	orig, ext := testGrid(t)
	p := testParams(t)
	pg, err := MakePolynomialGrid(ext)
	require.NoError(t, err)
	comms, err := pg.Commitments(p)
	require.NoError(t, err)
	commBytes := CommitmentsBytes(comms)

	// App 1 spans rows 0..2 of the 4x4 original grid, i.e. extended rows
	// 0, 2 and 4.
	rows := make([][]byte, ext.Dims().Height())
	rows[0] = serializeRow(ext, 0)
	rows[2] = serializeRow(ext, 2)
	rows[4] = serializeRow(ext, 4)

	verified, missing, err := VerifyEquality(p, commBytes, rows, orig.Lookup(), orig.Dims(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2, 4}, verified)
	assert.Empty(t, missing)
}

func TestVerifyEqualityReportsMissing(t *testing.T) {
	orig, ext := testGrid(t)
	p := testParams(t)
	pg, err := MakePolynomialGrid(ext)
	require.NoError(t, err)
	commBytes := CommitmentsBytes(mustCommit(t, pg, p))

	rows := make([][]byte, ext.Dims().Height())
	rows[0] = serializeRow(ext, 0)
	rows[4] = serializeRow(ext, 4)
	// Row 2 withheld.

	verified, missing, err := VerifyEquality(p, commBytes, rows, orig.Lookup(), orig.Dims(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 4}, verified)
	assert.Equal(t, []uint32{2}, missing)
}

func TestVerifyEqualityExcludesMismatch(t *testing.T) {
	orig, ext := testGrid(t)
	p := testParams(t)
	pg, err := MakePolynomialGrid(ext)
	require.NoError(t, err)
	commBytes := CommitmentsBytes(mustCommit(t, pg, p))

	rows := make([][]byte, ext.Dims().Height())
	rows[0] = serializeRow(ext, 0)
	rows[2] = serializeRow(ext, 0) // wrong data for row 2
	rows[4] = serializeRow(ext, 4)

	verified, missing, err := VerifyEquality(p, commBytes, rows, orig.Lookup(), orig.Dims(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 4}, verified)
	assert.Empty(t, missing)
}

func TestVerifyEqualityUnknownApp(t *testing.T) {
	orig, ext := testGrid(t)
	p := testParams(t)
	pg, err := MakePolynomialGrid(ext)
	require.NoError(t, err)
	commBytes := CommitmentsBytes(mustCommit(t, pg, p))

	verified, missing, err := VerifyEquality(p, commBytes, nil, orig.Lookup(), orig.Dims(), 42)
	require.NoError(t, err)
	assert.Empty(t, verified)
	assert.Empty(t, missing)
}

func TestVerifyEqualityBadInputs(t *testing.T) {
	orig, _ := testGrid(t)
	p := testParams(t)

	_, _, err := VerifyEquality(p, []byte{1, 2, 3}, nil, orig.Lookup(), orig.Dims(), 1)
	assert.ErrorIs(t, err, ErrFailedToExtractCommitments)

	// 6 commitments cannot be a whole-number extension of 4 rows.
	_, _, err = VerifyEquality(p, make([]byte, 6*CommitmentSize), nil, orig.Lookup(), orig.Dims(), 1)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func mustCommit(t *testing.T, pg *PolynomialGrid, p *PublicParams) []Commitment {
	t.Helper()
	comms, err := pg.Commitments(p)
	require.NoError(t, err)
	return comms
}
