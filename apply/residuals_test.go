package apply

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarycentricInsideTriangleSumsToOne(t *testing.T) {
	t.Parallel()
	a := point2{0, 0}
	b := point2{4, 0}
	c := point2{0, 4}

	u, v, w, ok := barycentric(a, b, c, point2{1, 1})
	require.True(t, ok)
	assert.InDelta(t, 1.0, u+v+w, 1e-9)
	assert.Greater(t, u, 0.0)
	assert.Greater(t, v, 0.0)
	assert.Greater(t, w, 0.0)
}

func TestBarycentricOutsideTriangleFails(t *testing.T) {
	t.Parallel()
	a := point2{0, 0}
	b := point2{4, 0}
	c := point2{0, 4}

	_, _, _, ok := barycentric(a, b, c, point2{10, 10})
	assert.False(t, ok)
}

func TestBarycentricAtVertexReturnsUnitWeight(t *testing.T) {
	t.Parallel()
	a := point2{0, 0}
	b := point2{4, 0}
	c := point2{0, 4}

	u, v, w, ok := barycentric(a, b, c, a)
	require.True(t, ok)
	assert.InDelta(t, 1.0, u, 1e-9)
	assert.InDelta(t, 0.0, v, 1e-9)
	assert.InDelta(t, 0.0, w, 1e-9)
}

func TestDelaunayRejectsFewerThanThreePoints(t *testing.T) {
	t.Parallel()
	_, err := delaunay([]r3.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}})
	assert.Error(t, err)
}

func TestDelaunayCoversInteriorOfConvexHull(t *testing.T) {
	t.Parallel()
	origins := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
		{X: 10, Y: 10, Z: 0},
		{X: 0, Y: 10, Z: 0},
		{X: 5, Y: 5, Z: 0},
	}
	tri, err := delaunay(origins)
	require.NoError(t, err)
	require.NotEmpty(t, tri.tris)

	values := []float64{0, 0, 0, 0, 0}
	_, ok := tri.interpolate(origins, values, 5, 5)
	assert.True(t, ok)
}

func TestInterpolateFieldMarksOutsideHullWithSentinel(t *testing.T) {
	t.Parallel()
	origins := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	tri, err := delaunay(origins)
	require.NoError(t, err)

	out := interpolateField(tri, origins, []float64{1, 1, 1}, []float64{100}, []float64{100})
	require.Len(t, out, 1)
	assert.Equal(t, residualSentinel, out[0])
}

func TestInterpolateResidualsLinearFieldRecoversExactValue(t *testing.T) {
	t.Parallel()
	// A residual vector field that is linear in X over the origin plane
	// should be recovered exactly at an interior query point by
	// barycentric interpolation.
	a := &Registration{
		FndUnitsFactor: 1,
		ResidualOrigins: []r3.Vector{
			{X: 0, Y: 0, Z: 0},
			{X: 10, Y: 0, Z: 0},
			{X: 0, Y: 10, Z: 0},
			{X: 10, Y: 10, Z: 0},
		},
		ResidualVectors: []r3.Vector{
			{X: 0, Y: 1, Z: 0},
			{X: 10, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 10, Y: 1, Z: 0},
		},
	}

	resX, resY, _, _, _, err := a.interpolateResiduals([]float64{5}, []float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, resX[0], 1e-6)
	assert.InDelta(t, 1.0, resY[0], 1e-6)
}

func TestInterpolateResidualsScalesByInverseFndUnitsFactor(t *testing.T) {
	t.Parallel()
	a := &Registration{
		FndUnitsFactor: 2,
		ResidualOrigins: []r3.Vector{
			{X: 0, Y: 0, Z: 0},
			{X: 20, Y: 0, Z: 0},
			{X: 0, Y: 20, Z: 0},
		},
		ResidualVectors: []r3.Vector{
			{X: 4, Y: 0, Z: 0},
			{X: 4, Y: 0, Z: 0},
			{X: 4, Y: 0, Z: 0},
		},
	}

	resX, _, _, _, _, err := a.interpolateResiduals([]float64{2}, []float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, resX[0], 1e-6)
}
