package apply

import (
	"fmt"
	"os"
	"strconv"

	"github.com/edaniels/lidario"
	"github.com/golang/geo/r3"

	"github.com/chenzhekl/goply"

	"github.com/ncalm/codem-core/geodata"
)

// applyPointCloud applies the registration transform to a LAS/LAZ
// point cloud and writes the registered points, mirroring
// _apply_pointcloud. Supplemented feature #4: the source file's header
// scale and offset are forwarded to the output unless the config
// explicitly overrides OFFSET_*/SCALE_*, mirroring
// writer_kwargs["forward"] = "all"; no other header field is copied.
func (a *Registration) applyPointCloud() error {
	src, err := lidario.NewLasFile(a.AOIFile, "r")
	if err != nil {
		return fmt.Errorf("open %s: %w", a.AOIFile, err)
	}
	defer src.Close()

	registration := a.ComposeTransform()

	n := src.Header.NumberPoints
	registered := make([]r3.Vector, n)
	for i := 0; i < n; i++ {
		p, err := src.LasPoint(i)
		if err != nil {
			return fmt.Errorf("read point %d: %w", i, err)
		}
		pd := p.PointData()
		registered[i] = applyMatrixPoint(registration, r3.Vector{X: pd.X, Y: pd.Y, Z: pd.Z})
	}

	dst, err := lidario.NewLasFile(a.OutName, "w")
	if err != nil {
		return fmt.Errorf("create %s: %w", a.OutName, err)
	}
	defer dst.Close()

	offsetX := forwardOrOverride(src.Header.XOffset, a.Config.OffsetX)
	offsetY := forwardOrOverride(src.Header.YOffset, a.Config.OffsetY)
	offsetZ := forwardOrOverride(src.Header.ZOffset, a.Config.OffsetZ)
	scaleX := forwardOrOverride(src.Header.XScaleFactor, a.Config.ScaleX)
	scaleY := forwardOrOverride(src.Header.YScaleFactor, a.Config.ScaleY)
	scaleZ := forwardOrOverride(src.Header.ZScaleFactor, a.Config.ScaleZ)

	dst.Header.XOffset, dst.Header.YOffset, dst.Header.ZOffset = offsetX, offsetY, offsetZ
	dst.Header.XScaleFactor, dst.Header.YScaleFactor, dst.Header.ZScaleFactor = scaleX, scaleY, scaleZ

	for _, p := range registered {
		if err := dst.AddLasPoint(lidario.NewPointRecord(p.X, p.Y, p.Z)); err != nil {
			return fmt.Errorf("write point: %w", err)
		}
	}

	// lidario's writer exposes no VLR/CRS-setting API in the retrieved
	// corpus, so the foundation CRS the points were registered into is
	// carried the same way applyPointCloudCRS reads it back: a ".prj"
	// sidecar next to the output file, mirroring shp.go's shapefile
	// convention (see DESIGN.md).
	if a.FndCRS != "" {
		prjPath := geodata.SidecarWKTPath(a.OutName)
		if err := os.WriteFile(prjPath, []byte(a.FndCRS), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", prjPath, err)
		}
	}

	a.logf("Registration has been applied to AOI-PCLOUD and saved to: %s", a.OutName)

	if a.Config.ICPSaveResiduals {
		if err := a.writePointCloudResiduals(registered); err != nil {
			return err
		}
	}
	return nil
}

// forwardOrOverride implements the OFFSET_*/SCALE_* "auto" convention
// of spec.md section 6: "auto" or an empty value forwards the source
// file's value; anything else is parsed as an explicit override, and a
// value that does not parse as a number also forwards the source value.
func forwardOrOverride(sourceValue float64, configValue string) float64 {
	if configValue == "" || configValue == "auto" {
		return sourceValue
	}
	v, err := strconv.ParseFloat(configValue, 64)
	if err != nil {
		return sourceValue
	}
	return v
}

// writePointCloudResiduals interpolates residuals at every registered
// point and writes them as a PLY sidecar with per-vertex residual
// properties. apply.py writes these as LAS 1.4 "extra_dims" on the
// point cloud itself; lidario (this package's LAS binding) exposes no
// equivalent arbitrary-extra-dimension writer, so the residual sidecar
// uses the same PLY vertex-property mechanism as the mesh residual
// writer instead (see DESIGN.md).
func (a *Registration) writePointCloudResiduals(pts []r3.Vector) error {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	resX, resY, resZ, resHoriz, res3D, err := a.interpolateResiduals(xs, ys)
	if err != nil {
		return err
	}

	outPath := outputResidualPath(a.OutName, ".ply")
	w := goply.NewWriter()
	for i, p := range pts {
		w.AddVertex(p.X, p.Y, p.Z)
		w.AddVertexProperty("ResidualX", resX[i])
		w.AddVertexProperty("ResidualY", resY[i])
		w.AddVertexProperty("ResidualZ", resZ[i])
		w.AddVertexProperty("ResidualHoriz", resHoriz[i])
		w.AddVertexProperty("Residual3D", res3D[i])
	}
	if err := w.Save(outPath); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	a.logf("ICP residuals have been computed for each registered AOI-PCLOUD point and saved to: %s", outPath)
	return nil
}
