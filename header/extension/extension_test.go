package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-core-go/lookup"
)

func TestDispatchV4(t *testing.T) {
	lk, err := lookup.FromIDAndLens([]lookup.IDLen{{ID: 1, Len: 4}})
	require.NoError(t, err)

	var root [32]byte
	root[0] = 0xde

	e := NewV4(&V4{
		AppLookup: lk,
		Commitment: KateCommitment{
			Rows:       8,
			Cols:       4,
			Commitment: []byte{1, 2, 3},
			DataRoot:   root,
		},
	})

	assert.Equal(t, uint8(4), e.Version())
	assert.Equal(t, uint16(8), e.Rows())
	assert.Equal(t, uint16(4), e.Cols())
	assert.Equal(t, root, e.DataRoot())
	assert.Equal(t, []byte{1, 2, 3}, e.Commitments())
	assert.True(t, lk.Equal(e.AppLookup()))
}

func TestDispatchV3(t *testing.T) {
	lk, err := lookup.FromIDAndLens([]lookup.IDLen{{ID: 2, Len: 2}})
	require.NoError(t, err)

	e := NewV3(&V3{
		AppLookup:  lk,
		Commitment: KateCommitment{Rows: 2, Cols: 2},
	})

	assert.Equal(t, uint8(3), e.Version())
	assert.Equal(t, uint16(2), e.Rows())
	assert.True(t, lk.Equal(e.AppLookup()))
}

func TestNewEmpty(t *testing.T) {
	e := NewEmpty()
	assert.Equal(t, uint8(4), e.Version())
	assert.True(t, e.AppLookup().IsEmpty())
	assert.False(t, e.AppLookup().IsError())
	assert.Zero(t, e.Rows())
	assert.Empty(t, e.Commitments())
}

func TestNewFaulty(t *testing.T) {
	e := NewFaulty()
	assert.True(t, e.AppLookup().IsError())
}
