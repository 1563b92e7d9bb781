package apply

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"

	"github.com/ncalm/codem-core/geodata"
)

func identityMatrix() [4][4]float64 {
	var m [4][4]float64
	for i := 0; i < 4; i++ {
		m[i][i] = 1
	}
	return m
}

func TestComposeTransformIdentityWithMatchingUnitsIsIdentity(t *testing.T) {
	t.Parallel()
	a := &Registration{
		Matrix:         identityMatrix(),
		AOIUnitsFactor: 1,
		FndUnitsFactor: 1,
	}

	composed := a.ComposeTransform()

	p := r3.Vector{X: 3, Y: 4, Z: 5}
	got := applyMatrixPoint(composed, p)
	assert.InDelta(t, p.X, got.X, 1e-9)
	assert.InDelta(t, p.Y, got.Y, 1e-9)
	assert.InDelta(t, p.Z, got.Z, 1e-9)
}

func TestComposeTransformBracketsByUnitsFactors(t *testing.T) {
	t.Parallel()
	// AOI is in feet (0.3048 m/ft), foundation is in meters: a point at
	// 10 AOI-feet should land at 10*0.3048 foundation-meters under an
	// otherwise-identity registration.
	a := &Registration{
		Matrix:         identityMatrix(),
		AOIUnitsFactor: 0.3048,
		FndUnitsFactor: 1,
	}

	composed := a.ComposeTransform()
	got := applyMatrixPoint(composed, r3.Vector{X: 10, Y: 0, Z: 0})
	assert.InDelta(t, 3.048, got.X, 1e-9)
}

func TestComposeTransformZeroFndUnitsFactorDefaultsToOne(t *testing.T) {
	t.Parallel()
	a := &Registration{Matrix: identityMatrix(), AOIUnitsFactor: 1, FndUnitsFactor: 0}
	composed := a.ComposeTransform()
	got := applyMatrixPoint(composed, r3.Vector{X: 1, Y: 2, Z: 3})
	assert.InDelta(t, 1.0, got.X, 1e-9)
	assert.InDelta(t, 2.0, got.Y, 1e-9)
	assert.InDelta(t, 3.0, got.Z, 1e-9)
}

func TestApplyMatrixPointAppliesTranslation(t *testing.T) {
	t.Parallel()
	m := identityMatrix()
	m[0][3], m[1][3], m[2][3] = 1, 2, 3
	got := applyMatrixPoint(m, r3.Vector{X: 0, Y: 0, Z: 0})
	assert.Equal(t, r3.Vector{X: 1, Y: 2, Z: 3}, got)
}

func TestApplyDispatchesOnAOIKind(t *testing.T) {
	t.Parallel()
	a := &Registration{AOIKind: geodata.Kind(99)}
	err := a.Apply()
	assert.Error(t, err)
}
