package geodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRSEqualIgnoresWhitespace(t *testing.T) {
	t.Parallel()
	a := `PROJCS["WGS 84 / UTM zone 32N",  GEOGCS["WGS 84"]]`
	b := "PROJCS[\"WGS 84 / UTM zone 32N\",\nGEOGCS[\"WGS 84\"]]"
	assert.True(t, crsEqual(a, b))
}

func TestCRSEqualDetectsMismatch(t *testing.T) {
	t.Parallel()
	a := `PROJCS["WGS 84 / UTM zone 32N"]`
	b := `PROJCS["WGS 84 / UTM zone 33N"]`
	assert.False(t, crsEqual(a, b))
}

func TestCRSEqualEmptyStrings(t *testing.T) {
	t.Parallel()
	assert.True(t, crsEqual("", ""))
}
