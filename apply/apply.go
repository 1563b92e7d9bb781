// Package apply implements the registration-apply stage of spec.md
// section 4.G: taking a solved 4x4 registration matrix (produced by an
// external ICP/feature-matching solver this core does not implement)
// and re-rastering, re-meshing, or re-streaming the original AOI file
// into the foundation's coordinate space, mirroring apply.py's
// ApplyRegistration class.
package apply

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/ncalm/codem-core/codemerr"
	"github.com/ncalm/codem-core/config"
	"github.com/ncalm/codem-core/geodata"
)

// Version is embedded in registered output metadata, mirroring
// codem's __version__ import in apply.py.
const Version = "0.1.0"

// Registration carries everything ApplyRegistration's constructor
// pulls off fnd_obj/aoi_obj/registration_parameters.
type Registration struct {
	FndFile        string
	FndCRS         string
	FndUnitsFactor float64
	FndUnits       string

	AOIFile        string
	AOINodata      *float64
	AOIResolution  float64
	AOICRS         string
	AOIUnitsFactor float64
	AOIKind        geodata.Kind
	AOIAreaOrPoint geodata.AreaOrPoint

	Matrix [4][4]float64
	RMSE3D float64

	ResidualVectors []r3.Vector
	ResidualOrigins []r3.Vector

	Config  *config.Configuration
	OutName string

	Logger interface {
		Printf(format string, v ...interface{})
	}
}

// NewRegistration builds a Registration from the prepared foundation
// and AOI datasets plus the external solver's result, mirroring
// ApplyRegistration.__init__'s output-name construction.
func NewRegistration(fnd, aoi *geodata.GeoDataset, result *geodata.RegistrationResult, cfg *config.Configuration, outputFormat string) *Registration {
	inName := filepath.Base(aoi.Path)
	ext := filepath.Ext(inName)
	root := strings.TrimSuffix(inName, ext)
	if outputFormat != "" {
		if !strings.HasPrefix(outputFormat, ".") {
			outputFormat = "." + outputFormat
		}
		ext = outputFormat
	}
	// writeMeshPLY is the only mesh writer this package implements, so
	// a mesh AOI's output always takes a ".ply" extension regardless of
	// the input format (.obj/.stl/.gltf), even if outputFormat named
	// something else - the written bytes are always PLY (see DESIGN.md).
	if aoi.Kind == geodata.KindMesh {
		ext = ".ply"
	}
	outName := filepath.Join(cfg.OutputDir, root+"_registered"+ext)

	return &Registration{
		FndFile:         fnd.Path,
		FndCRS:          fnd.CRS,
		FndUnitsFactor:  fnd.UnitsFactor,
		FndUnits:        fnd.UnitsName,
		AOIFile:         aoi.Path,
		AOINodata:       aoi.Nodata,
		AOIResolution:   aoi.NativeResolution,
		AOICRS:          aoi.CRS,
		AOIUnitsFactor:  aoi.UnitsFactor,
		AOIKind:         aoi.Kind,
		AOIAreaOrPoint:  aoi.AreaOrPoint,
		Matrix:          result.Matrix,
		RMSE3D:          result.RMSE3D,
		ResidualVectors: result.ResidualVectors,
		ResidualOrigins: result.ResidualOrigins,
		Config:          cfg,
		OutName:         outName,
	}
}

// ComposeTransform computes the AOI-to-foundation transform,
// mirroring get_registration_transformation: the solved matrix is
// only valid in meters, so it is bracketed by a units-factor scale up
// to meters on the right and a units-factor scale down to the
// foundation's linear unit on the left. Dense 4x4 multiplication uses
// gonum.org/v1/gonum/mat, the same dependency viamrobotics-rdk's
// pointcloud/icp.go uses for pose composition.
func (a *Registration) ComposeTransform() [4][4]float64 {
	aoiToMeters := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		aoiToMeters.Set(i, i, a.AOIUnitsFactor)
	}
	aoiToMeters.Set(3, 3, 1)

	metersToFnd := mat.NewDense(4, 4, nil)
	fndFactor := a.FndUnitsFactor
	if fndFactor == 0 {
		fndFactor = 1
	}
	for i := 0; i < 3; i++ {
		metersToFnd.Set(i, i, 1/fndFactor)
	}
	metersToFnd.Set(3, 3, 1)

	reg := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			reg.Set(i, j, a.Matrix[i][j])
		}
	}

	var tmp, composed mat.Dense
	tmp.Mul(reg, aoiToMeters)
	composed.Mul(metersToFnd, &tmp)

	var out [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = composed.At(i, j)
		}
	}
	return out
}

func applyMatrixPoint(m [4][4]float64, p r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

func (a *Registration) logf(format string, v ...interface{}) {
	if a.Logger != nil {
		a.Logger.Printf(format, v...)
		return
	}
	fmt.Printf(format+"\n", v...)
}

// Apply dispatches to the kind-specific applier, mirroring
// ApplyRegistration.apply's extension-based if-chain.
func (a *Registration) Apply() error {
	switch a.AOIKind {
	case geodata.KindDSM:
		return a.applyDSM()
	case geodata.KindMesh:
		return a.applyMesh()
	case geodata.KindPointCloud:
		return a.applyPointCloud()
	default:
		return fmt.Errorf("%w: unrecognized AOI kind", codemerr.ErrUnexpectedTransformKind)
	}
}
