package geodata

import (
	"path/filepath"
	"strings"

	"github.com/ncalm/codem-core/config"
)

// Recognized extension sets, per spec.md section 6. These are package
// vars rather than constants, mirroring the teacher's configurable
// package-level knobs (utils.EtcDir, utils.DataDir) — a deployment can
// widen them without a code change.
var (
	RasterExtensions     = []string{".tif", ".tiff"}
	PointCloudExtensions = []string{".las", ".laz", ".bpf", ".ply", ".json"}
	MeshExtensions       = []string{".obj", ".ply", ".stl", ".gltf", ".glb"}
)

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// kindFor classifies path by extension. PLY is ambiguous between
// point-cloud and mesh (both sets list it, per spec.md section 6);
// point-cloud is checked first since a bare-vertex PLY with no face
// list is far more common for scanned point data. When both matter to
// a caller, prefer an explicit role hint instead of extension sniffing.
func kindFor(path string) (Kind, bool) {
	if hasExt(path, RasterExtensions) {
		return KindDSM, true
	}
	if hasExt(path, PointCloudExtensions) {
		return KindPointCloud, true
	}
	if hasExt(path, MeshExtensions) {
		return KindMesh, true
	}
	return 0, false
}

// Instantiate is the factory method of spec.md section 4.A: it opens
// path by extension, builds the matching GeoDataset, and eagerly runs
// that kind's resolution estimation so an external scheduler can pick
// a common pipeline resolution before any gridding happens.
func Instantiate(cfg *config.Configuration, role Role) (*GeoDataset, error) {
	path := cfg.AoiFile
	if role == RoleFoundation {
		path = cfg.FndFile
	}

	kind, ok := kindFor(path)
	if !ok {
		return nil, errUnsupportedFormat(path)
	}

	weak, strong := cfgWeakStrong(cfg)
	ds := &GeoDataset{
		Kind:             kind,
		Role:             role,
		Path:             path,
		UnitsFactor:      1.0,
		WeakFilterSize:   weak,
		StrongFilterSize: strong,
	}

	switch kind {
	case KindDSM:
		ds.cap = dsmCapability{}
	case KindPointCloud:
		ds.cap = pointCloudCapability{}
	case KindMesh:
		ds.cap = meshCapability{}
	}

	if err := ds.cap.estimateResolution(ds); err != nil {
		return nil, err
	}
	return ds, nil
}
