package geodata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodataMaskFlagsNaNAndNodataValue(t *testing.T) {
	t.Parallel()
	nodata := -9999.0
	dsm := [][]float32{
		{1, float32(math.NaN()), -9999},
		{2, 3, 4},
	}

	mask := nodataMask(dsm, &nodata)

	assert.Equal(t, [][]bool{
		{true, false, false},
		{true, true, true},
	}, mask)
}

func TestNodataMaskNilNodataOnlyFlagsNaN(t *testing.T) {
	t.Parallel()
	dsm := [][]float32{{1, float32(math.NaN())}}
	mask := nodataMask(dsm, nil)
	assert.Equal(t, [][]bool{{true, false}}, mask)
}

func TestMaskAllInvalid(t *testing.T) {
	t.Parallel()

	t.Run("all invalid", func(t *testing.T) {
		t.Parallel()
		assert.True(t, maskAllInvalid([][]bool{{false, false}, {false}}))
	})

	t.Run("one valid cell", func(t *testing.T) {
		t.Parallel()
		assert.False(t, maskAllInvalid([][]bool{{false, true}, {false}}))
	})
}
