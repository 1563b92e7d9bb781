package geodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfillFillsSingleVoidFromNeighbors(t *testing.T) {
	t.Parallel()
	nodata := -9999.0
	ds := &GeoDataset{
		Role: RoleAOI,
		Kind: KindDSM,
		DSM: [][]float32{
			{1, 1, 1},
			{1, -9999, 1},
			{1, 1, 1},
		},
		Nodata: &nodata,
	}

	err := infill(ds)
	require.NoError(t, err)

	assert.True(t, maskAllValid(boolGridFromMask(ds.NodataMask, ds.Infilled, nodata)))
	assert.InDelta(t, 1.0, ds.Infilled[1][1], 1e-6)
}

func TestInfillRejectsEmptyDSM(t *testing.T) {
	t.Parallel()
	ds := &GeoDataset{Role: RoleAOI, Kind: KindDSM}
	err := infill(ds)
	assert.Error(t, err)
}

func TestInfillRejectsAllNodata(t *testing.T) {
	t.Parallel()
	nodata := -9999.0
	ds := &GeoDataset{
		Role:   RoleAOI,
		Kind:   KindDSM,
		DSM:    [][]float32{{-9999, -9999}, {-9999, -9999}},
		Nodata: &nodata,
	}
	err := infill(ds)
	assert.Error(t, err)
}

func TestIdwFillAveragesEquidistantNeighbors(t *testing.T) {
	t.Parallel()
	grid := [][]float32{
		{10, 0, 0},
		{0, 0, 0},
		{0, 0, 20},
	}
	valid := [][]bool{
		{true, false, false},
		{false, false, false},
		{false, false, true},
	}

	v, ok := idwFill(grid, valid, 1, 1, 4)
	require.True(t, ok)
	// Equidistant from both valid corners, so the IDW average is their mean.
	assert.InDelta(t, 15.0, v, 1e-6)
}

func TestIdwFillNoNeighborsWithinRadius(t *testing.T) {
	t.Parallel()
	grid := [][]float32{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
	valid := [][]bool{{false, false, false}, {false, false, false}, {false, false, false}}
	_, ok := idwFill(grid, valid, 1, 1, 1)
	assert.False(t, ok)
}

// boolGridFromMask rebuilds a valid-mask over the infilled grid using
// the original nodata sentinel, for asserting complete fill coverage.
func boolGridFromMask(_ [][]bool, filled [][]float32, nodata float64) [][]bool {
	out := make([][]bool, len(filled))
	for r, row := range filled {
		out[r] = make([]bool, len(row))
		for c, v := range row {
			out[r][c] = float64(v) != nodata
		}
	}
	return out
}
