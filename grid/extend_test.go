package grid

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-core-go/lookup"
)

func TestNewDomainRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, -1, 3, 6, 100} {
		_, err := NewDomain(n)
		assert.ErrorIs(t, err, ErrInvalidDomain, "n=%d", n)
	}
	for _, n := range []int{1, 2, 4, 256} {
		d, err := NewDomain(n)
		require.NoError(t, err)
		assert.Equal(t, uint64(n), d.Cardinality)
	}
}

func TestExtendColumnsKeepsOriginalRows(t *testing.T) {
	dims := mustDims(t, 4, 2)
	evals := make([]fr.Element, dims.Size())
	for i := range evals {
		evals[i].SetUint64(uint64(i*i + 1))
	}
	g, err := NewEvaluationGrid(lookup.NewEmpty(), evals, dims)
	require.NoError(t, err)

	ext, err := g.ExtendColumns(2)
	require.NoError(t, err)
	require.Equal(t, uint16(8), ext.Dims().Rows())

	for r := 0; r < dims.Height(); r++ {
		for c := 0; c < dims.Width(); c++ {
			orig, _ := g.Get(r, c)
			got, _ := ext.Get(2*r, c)
			assert.True(t, orig.Equal(&got), "row %d col %d", r, c)
		}
	}
}

func TestExtendColumnsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("rows at factor*i reproduce the pre-extension grid", prop.ForAll(
		func(raw []uint64, factorPick uint8) bool {
			dims, err := NewDimensions(4, 4)
			if err != nil {
				return false
			}
			evals := make([]fr.Element, dims.Size())
			for i := range evals {
				if len(raw) > 0 {
					evals[i].SetUint64(raw[i%len(raw)] + uint64(i))
				} else {
					evals[i].SetUint64(uint64(i))
				}
			}
			g, err := NewEvaluationGrid(lookup.NewEmpty(), evals, dims)
			if err != nil {
				return false
			}
			factor := uint16(2)
			if factorPick%2 == 1 {
				factor = 4
			}
			ext, err := g.ExtendColumns(factor)
			if err != nil {
				return false
			}
			for r := 0; r < dims.Height(); r++ {
				for c := 0; c < dims.Width(); c++ {
					orig, _ := g.Get(r, c)
					got, _ := ext.Get(int(factor)*r, c)
					if !orig.Equal(&got) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt64()),
		gen.UInt8(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestExtendColumnsFactorOne(t *testing.T) {
	dims := mustDims(t, 2, 2)
	evals := make([]fr.Element, dims.Size())
	for i := range evals {
		evals[i].SetUint64(uint64(i + 7))
	}
	g, err := NewEvaluationGrid(lookup.NewEmpty(), evals, dims)
	require.NoError(t, err)

	ext, err := g.ExtendColumns(1)
	require.NoError(t, err)
	for i := range evals {
		assert.True(t, evals[i].Equal(&ext.Evals()[i]))
	}
}

func TestExtendColumnsRejectsBadDomain(t *testing.T) {
	dims := mustDims(t, 3, 2)
	g, err := NewEvaluationGrid(lookup.NewEmpty(), make([]fr.Element, dims.Size()), dims)
	require.NoError(t, err)
	_, err = g.ExtendColumns(2)
	assert.ErrorIs(t, err, ErrInvalidDomain)
}
