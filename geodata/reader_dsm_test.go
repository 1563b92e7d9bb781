package geodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWholeNumber(t *testing.T) {
	t.Parallel()
	assert.True(t, isWholeNumber(3.0))
	assert.True(t, isWholeNumber(-2.0))
	assert.False(t, isWholeNumber(3.048))
}

func TestScaleDSMByUnitsSkipsIdentityFactor(t *testing.T) {
	t.Parallel()
	ds := &GeoDataset{DSM: [][]float32{{1, 2}, {3, 4}}, UnitsFactor: 1.0}
	mask := [][]bool{{true, true}, {true, true}}
	require := assert.New(t)
	err := scaleDSMByUnits(ds, mask)
	require.NoError(err)
	require.Equal([][]float32{{1, 2}, {3, 4}}, ds.DSM)
}

func TestScaleDSMByUnitsScalesOnlyValidCells(t *testing.T) {
	t.Parallel()
	ds := &GeoDataset{DSM: [][]float32{{10, 20}, {30, 40}}, UnitsFactor: 0.5}
	mask := [][]bool{{true, false}, {true, true}}

	err := scaleDSMByUnits(ds, mask)
	assert.NoError(t, err)
	assert.Equal(t, float32(5), ds.DSM[0][0])
	assert.Equal(t, float32(20), ds.DSM[0][1], "masked-out cell left unscaled")
	assert.Equal(t, float32(15), ds.DSM[1][0])
	assert.Equal(t, float32(20), ds.DSM[1][1])
}

func TestAbsF(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3.5, absF(-3.5))
	assert.Equal(t, 3.5, absF(3.5))
}

func TestItoa(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "42", itoa(42))
	assert.Equal(t, "-7", itoa(-7))
}
