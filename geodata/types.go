// Package geodata implements the GeoDataset preprocessing pipeline of
// spec.md sections 3 and 4: normalizing DSM, point-cloud, and mesh
// inputs into a common metric-scaled gridded representation.
package geodata

import (
	"log"

	"github.com/golang/geo/r3"

	"github.com/ncalm/codem-core/config"
)

// Kind distinguishes the three input modalities spec.md recognizes.
type Kind int

const (
	KindDSM Kind = iota
	KindPointCloud
	KindMesh
)

func (k Kind) String() string {
	switch k {
	case KindDSM:
		return "dsm"
	case KindPointCloud:
		return "pcloud"
	case KindMesh:
		return "mesh"
	default:
		return "undefined"
	}
}

// Role distinguishes the foundation (reference) dataset from the AOI
// (area of interest) dataset being registered to it.
type Role int

const (
	RoleAOI Role = iota
	RoleFoundation
)

func (r Role) String() string {
	if r == RoleFoundation {
		return "Foundation"
	}
	return "AOI"
}

// AreaOrPoint is the pixel-center convention tag of spec.md invariant 7.
type AreaOrPoint int

const (
	Area AreaOrPoint = iota
	Point
)

func (a AreaOrPoint) String() string {
	if a == Point {
		return "Point"
	}
	return "Area"
}

// Window is a row/column sub-range of a raster, set by clip_data
// (spec.md section 4.H) and consumed by the next _create_dsm call.
type Window struct {
	RowOff, ColOff int
	Rows, Cols     int
}

// capability is the small per-kind behavior set spec.md section 9
// calls for instead of an inheritance hierarchy: everything else in
// this package (infill, normalize, dsm2pc, normals, clip) is
// kind-agnostic and operates only on GeoDataset's shared fields. The
// apply package is the exception: it dispatches on the AOI's Kind.
type capability interface {
	estimateResolution(ds *GeoDataset) error
	buildDSM(ds *GeoDataset, resample bool, fallbackCRS string) error
}

// GeoDataset is the unifying entity of spec.md section 3: one per
// input file, carrying both its native description and, after
// Prepare, its processed arrays.
type GeoDataset struct {
	Kind Kind
	Role Role
	Path string

	NativeResolution float64
	Resolution       float64
	UnitsFactor      float64
	UnitsName        string
	CRS              string // WKT, empty if undefined (meshes usually)

	Transform   Affine
	AreaOrPoint AreaOrPoint
	Nodata      *float64

	DSM          [][]float32
	PointCloud   []r3.Vector
	NormalVectors []r3.Vector
	Normed       [][]uint8
	NodataMask   [][]bool
	Infilled     [][]float32

	Window    *Window
	Processed bool

	WeakFilterSize   float64
	StrongFilterSize float64

	Logger *log.Logger

	cap capability
}

// SetResolution sets the target pipeline resolution, rejecting
// non-positive values per spec.md invariant 6.
func (ds *GeoDataset) SetResolution(v float64) error {
	if v <= 0 {
		return errInvalidResolution(v)
	}
	ds.Resolution = v
	return nil
}

func (ds *GeoDataset) logger() *log.Logger {
	if ds.Logger != nil {
		return ds.Logger
	}
	return log.Default()
}

func (ds *GeoDataset) tag() string {
	return ds.Role.String() + "-" + ds.Kind.String()
}

// RegistrationResult is produced by the external solver and consumed
// by the apply package, per spec.md section 3.
type RegistrationResult struct {
	Matrix  [4][4]float64
	RMSEX   float64
	RMSEY   float64
	RMSEZ   float64
	RMSE3D  float64
	NPairs  int64

	ResidualOrigins []r3.Vector
	ResidualVectors []r3.Vector
}

func cfgWeakStrong(cfg *config.Configuration) (weak, strong float64) {
	weak, strong = cfg.DSMWeakFilter, cfg.DSMStrongFilter
	if weak <= 0 {
		weak = config.DefaultWeakFilterSize
	}
	if strong <= 0 {
		strong = config.DefaultStrongFilterSize
	}
	return weak, strong
}
