package geodata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForClassifiesByExtension(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want Kind
	}{
		{"dsm.tif", KindDSM},
		{"dsm.TIFF", KindDSM},
		{"scan.las", KindPointCloud},
		{"scan.laz", KindPointCloud},
		{"pipeline.json", KindPointCloud},
		{"model.obj", KindMesh},
		{"model.stl", KindMesh},
	}
	for _, c := range cases {
		got, ok := kindFor(c.path)
		assert.True(t, ok, c.path)
		assert.Equal(t, c.want, got, c.path)
	}
}

func TestKindForPreferPointCloudForAmbiguousPLY(t *testing.T) {
	t.Parallel()
	got, ok := kindFor("cloud.ply")
	assert.True(t, ok)
	assert.Equal(t, KindPointCloud, got)
}

func TestKindForRejectsUnrecognizedExtension(t *testing.T) {
	t.Parallel()
	_, ok := kindFor("notes.txt")
	assert.False(t, ok)
}
