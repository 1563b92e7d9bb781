package geodata

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRasterizeMaxZTakesHighestPointPerCell(t *testing.T) {
	t.Parallel()
	pts := []r3.Vector{
		{X: 0.1, Y: 0.1, Z: 1},
		{X: 0.2, Y: 0.2, Z: 5},
		{X: 0.9, Y: 0.9, Z: 3},
	}

	dsm, transform, nodata, err := rasterizeMaxZ(pts, 1.0)
	require.NoError(t, err)
	assert.Equal(t, -9999.0, nodata)
	assert.Equal(t, float32(5), dsm[0][0])
	assert.Equal(t, 1.0, transform.A)
	assert.Equal(t, -1.0, transform.E)
}

func TestRasterizeMaxZRejectsEmptyInput(t *testing.T) {
	t.Parallel()
	_, _, _, err := rasterizeMaxZ(nil, 1.0)
	assert.Error(t, err)
}

func TestRasterizeMaxZRejectsNonPositiveResolution(t *testing.T) {
	t.Parallel()
	pts := []r3.Vector{{X: 0, Y: 0, Z: 1}}
	_, _, _, err := rasterizeMaxZ(pts, 0)
	assert.Error(t, err)
}

func TestRasterizeMaxZLeavesEmptyCellsAtNodata(t *testing.T) {
	t.Parallel()
	pts := []r3.Vector{
		{X: 0, Y: 0, Z: 1},
		{X: 10, Y: 10, Z: 2},
	}
	dsm, _, nodata, err := rasterizeMaxZ(pts, 1.0)
	require.NoError(t, err)
	assert.Equal(t, float32(nodata), dsm[5][5])
}
