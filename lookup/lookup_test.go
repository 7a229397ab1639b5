package lookup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromIDAndLensEmpty(t *testing.T) {
	lk, err := FromIDAndLens(nil)
	require.NoError(t, err)
	assert.True(t, lk.IsEmpty())
	assert.False(t, lk.IsError())
	assert.Equal(t, uint32(0), lk.Len())
}

func TestFromIDAndLensRanges(t *testing.T) {
	lk, err := FromIDAndLens([]IDLen{
		{ID: 0, Len: 2},
		{ID: 1, Len: 3},
		{ID: 1, Len: 5},
		{ID: 7, Len: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(14), lk.Len())

	want := []IndexItem{
		{ID: 0, Range: Range{Start: 0, End: 2}},
		{ID: 1, Range: Range{Start: 2, End: 10}},
		{ID: 7, Range: Range{Start: 10, End: 14}},
	}
	assert.Equal(t, want, lk.Index())
	assert.Equal(t, []uint16{2, 3, 5, 4}, lk.RowsPerTx())

	r, ok := lk.RangeOf(1)
	require.True(t, ok)
	assert.Equal(t, Range{Start: 2, End: 10}, r)

	_, ok = lk.RangeOf(9)
	assert.False(t, ok)
}

func TestFromIDAndLensNotSorted(t *testing.T) {
	_, err := FromIDAndLens([]IDLen{{ID: 1, Len: 10}, {ID: 0, Len: 2}})
	assert.ErrorIs(t, err, ErrDataNotSorted)
}

func TestFromIDAndLensEmptyLen(t *testing.T) {
	_, err := FromIDAndLens([]IDLen{{ID: 3, Len: 0}})
	assert.ErrorIs(t, err, ErrDataEmptyOn)
}

func TestFromIDAndLensOverflow(t *testing.T) {
	_, err := FromIDAndLens([]IDLen{{ID: 0, Len: math.MaxUint16 + 1}})
	assert.ErrorIs(t, err, ErrOffsetOverflows)

	// Cumulative 32-bit offset overflow.
	pairs := make([]IDLen, 0, 1<<17)
	for i := 0; i < 1<<17; i++ {
		pairs = append(pairs, IDLen{ID: 0, Len: math.MaxUint16})
	}
	_, err = FromIDAndLens(pairs)
	assert.ErrorIs(t, err, ErrOffsetOverflows)
}

func TestErrorSentinel(t *testing.T) {
	lk := NewError()
	assert.True(t, lk.IsError())
	assert.True(t, lk.IsEmpty())
	assert.False(t, NewEmpty().IsError())
}

func TestProjectedRangeOf(t *testing.T) {
	lk, err := FromIDAndLens([]IDLen{{ID: 1, Len: 4}})
	require.NoError(t, err)

	r, ok := lk.ProjectedRangeOf(1, 32)
	require.True(t, ok)
	assert.Equal(t, Range{Start: 0, End: 128}, r)

	_, ok = lk.ProjectedRangeOf(1, math.MaxUint32)
	assert.False(t, ok)
}

func TestAppTxs(t *testing.T) {
	lk, err := FromIDAndLens([]IDLen{
		{ID: 1, Len: 3},
		{ID: 1, Len: 5},
		{ID: 2, Len: 2},
	})
	require.NoError(t, err)

	txs, ok := lk.AppTxs(1)
	require.True(t, ok)
	require.Len(t, txs, 2)
	assert.Equal(t, []uint32{0, 1, 2}, txs[0])
	assert.Equal(t, []uint32{3, 4, 5, 6, 7}, txs[1])

	txs, ok = lk.AppTxs(2)
	require.True(t, ok)
	require.Len(t, txs, 1)
	assert.Equal(t, []uint32{8, 9}, txs[0])

	_, ok = lk.AppTxs(5)
	assert.False(t, ok)
}

func TestTransactions(t *testing.T) {
	_, err := NewEmpty().Transactions()
	assert.ErrorIs(t, err, ErrEmptyTransactions)

	lk, err := FromIDAndLens([]IDLen{{ID: 4, Len: 2}})
	require.NoError(t, err)
	all, err := lk.Transactions()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, AppID(4), all[0].ID)
	assert.Equal(t, [][]uint32{{0, 1}}, all[0].Txs)
}

func TestEqual(t *testing.T) {
	a, err := FromIDAndLens([]IDLen{{ID: 1, Len: 2}, {ID: 2, Len: 2}})
	require.NoError(t, err)
	b, err := FromIDAndLens([]IDLen{{ID: 1, Len: 2}, {ID: 2, Len: 2}})
	require.NoError(t, err)
	c, err := FromIDAndLens([]IDLen{{ID: 1, Len: 4}})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
