package lookup

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactRoundTripFixed(t *testing.T) {
	lk, err := FromIDAndLens([]IDLen{
		{ID: 0, Len: 1},
		{ID: 1, Len: 3},
		{ID: 1, Len: 2},
		{ID: 9, Len: 4},
	})
	require.NoError(t, err)

	c := FromDataLookup(lk)
	assert.Equal(t, uint32(10), c.Size())
	assert.False(t, c.IsError())

	dec, err := Decode(c.Encode())
	require.NoError(t, err)
	back, err := dec.ToDataLookup()
	require.NoError(t, err)
	assert.True(t, lk.Equal(back))
}

// AppID(0) data is implied by the first explicit item's start rather than
// listed; a lookup with none of it must still survive the wire.
func TestCompactRoundTripNoPaddingApp(t *testing.T) {
	lk, err := FromIDAndLens([]IDLen{{ID: 2, Len: 5}})
	require.NoError(t, err)

	dec, err := Decode(FromDataLookup(lk).Encode())
	require.NoError(t, err)
	back, err := dec.ToDataLookup()
	require.NoError(t, err)
	assert.True(t, lk.Equal(back))
}

func TestCompactErrorSentinels(t *testing.T) {
	c := FromDataLookup(NewError())
	assert.True(t, c.IsError())

	dec, err := Decode(c.Encode())
	require.NoError(t, err)
	assert.True(t, dec.IsError())
	back, err := dec.ToDataLookup()
	require.NoError(t, err)
	assert.True(t, back.IsError())

	// Legacy form: size == u32 max, no items.
	legacy := NewCompact(math.MaxUint32, nil, nil)
	assert.True(t, legacy.IsError())
	back, err = legacy.ToDataLookup()
	require.NoError(t, err)
	assert.True(t, back.IsError())
}

func TestCompactDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)

	c := FromDataLookup(NewEmpty())
	enc := c.Encode()
	_, err = Decode(enc[:len(enc)-1])
	assert.Error(t, err)
	_, err = Decode(append(enc, 0))
	assert.Error(t, err)

	// Item count far beyond the available bytes must not allocate.
	_, err = Decode([]byte{0x00, 0xfe, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestCompactDecodeRejectsUnsorted(t *testing.T) {
	c := NewCompact(10, []CompactItem{{AppID: 5, Start: 4}, {AppID: 3, Start: 6}}, nil)
	_, err := c.ToDataLookup()
	assert.ErrorIs(t, err, ErrDataNotSorted)

	c = NewCompact(10, []CompactItem{{AppID: 3, Start: 6}, {AppID: 5, Start: 4}}, nil)
	_, err = c.ToDataLookup()
	assert.ErrorIs(t, err, ErrDataNotSorted)
}

func TestCompactRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("lookup -> compact -> bytes -> lookup is the identity", prop.ForAll(
		func(lens []uint16, steps []uint8) bool {
			n := len(lens)
			if len(steps) < n {
				n = len(steps)
			}
			pairs := make([]IDLen, 0, n)
			id := AppID(0)
			for i := 0; i < n; i++ {
				id += AppID(steps[i])
				pairs = append(pairs, IDLen{ID: id, Len: uint(lens[i])})
			}
			lk, err := FromIDAndLens(pairs)
			if err != nil {
				return false
			}
			dec, err := Decode(FromDataLookup(lk).Encode())
			if err != nil {
				return false
			}
			back, err := dec.ToDataLookup()
			if err != nil {
				return false
			}
			return lk.Equal(back)
		},
		gen.SliceOf(gen.UInt16Range(1, 2000)),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCompactU32RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("compact u32 round trips at every mode boundary", prop.ForAll(
		func(v uint32) bool {
			got, rest, err := DecodeCompactU32(AppendCompactU32(nil, v))
			return err == nil && len(rest) == 0 && got == v
		},
		gen.UInt32(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))

	for _, v := range []uint32{0, 63, 64, 16383, 16384, 1<<30 - 1, 1 << 30, math.MaxUint32} {
		got, rest, err := DecodeCompactU32(AppendCompactU32(nil, v))
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, v, got)
	}
}
