package apply

import (
	"fmt"
	"reflect"

	"github.com/airbusgeo/godal"
	"github.com/golang/geo/r3"

	"github.com/ncalm/codem-core/geodata"
)

// applyDSM re-rasters the AOI DSM, mirroring _apply_dsm: every AOI
// cell is treated as a 3D point, the composed registration transform
// is applied, and the transformed points are re-gridded by inverse
// distance weighting at the AOI's native resolution.
func (a *Registration) applyDSM() error {
	src, err := godal.Open(a.AOIFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.AOIFile, err)
	}
	defer src.Close()

	structure := src.Structure()
	width, height := structure.SizeX, structure.SizeY
	gt, err := src.GeoTransform()
	if err != nil {
		return fmt.Errorf("geotransform: %w", err)
	}
	transform := geodata.AffineFromGDAL(gt)

	buf := make([]float32, width*height)
	if err := src.Read(0, 0, buf, width, height, godal.Bands(0)); err != nil {
		return fmt.Errorf("read AOI DSM: %w", err)
	}

	registration := a.ComposeTransform()

	offset := 0.0
	if a.AOIAreaOrPoint == geodata.Area {
		offset = 0.5
	}

	pts := make([]r3.Vector, 0, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			z := buf[row*width+col]
			if a.AOINodata != nil && float64(z) == *a.AOINodata {
				continue
			}
			x, y := transform.Apply(float64(col)+offset, float64(row)+offset)
			pts = append(pts, applyMatrixPoint(registration, r3.Vector{X: x, Y: y, Z: float64(z)}))
		}
	}
	if len(pts) == 0 {
		return errNoPoints("AOI DSM has no valid cells")
	}

	dsm, outTransform, nodata, err := idwGrid(pts, a.AOIResolution)
	if err != nil {
		return err
	}

	if err := writeRegisteredDSM(a, dsm, outTransform, nodata); err != nil {
		return err
	}
	a.logf("Registration has been applied to AOI-DSM and saved to: %s", a.OutName)

	if a.Config.ICPSaveResiduals {
		if err := a.writeDSMResiduals(dsm, outTransform, nodata); err != nil {
			return err
		}
	}
	return nil
}

// idwGrid bins points onto a resolution-spaced raster and fills empty
// cells by inverse-distance weighting from nearby populated cells,
// mirroring writers.gdal(output_type="idw").
func idwGrid(pts []r3.Vector, resolution float64) (dsm [][]float32, transform geodata.Affine, nodata float64, err error) {
	grid, t, nd, err := rasterizeMean(pts, resolution)
	if err != nil {
		return nil, geodata.Affine{}, nd, err
	}
	filled := idwFillGrid(grid, nd)
	return filled, t, nd, nil
}

func (a *Registration) writeDSMResiduals(dsm [][]float32, transform geodata.Affine, nodata float64) error {
	rows := len(dsm)
	if rows == 0 {
		return nil
	}
	cols := len(dsm[0])

	offset := 0.0
	if a.AOIAreaOrPoint == geodata.Area {
		offset = 0.5
	}

	xs := make([]float64, 0, rows*cols)
	ys := make([]float64, 0, rows*cols)
	idx := make([]int, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := transform.Apply(float64(c)+offset, float64(r)+offset)
			xs = append(xs, x)
			ys = append(ys, y)
			idx = append(idx, r*cols+c)
		}
	}

	resX, resY, resZ, resHoriz, res3D, err := a.interpolateResiduals(xs, ys)
	if err != nil {
		return err
	}
	for i, flat := range idx {
		r, c := flat/cols, flat%cols
		if dsm[r][c] == float32(nodata) {
			resX[i], resY[i], resZ[i], resHoriz[i], res3D[i] = nodata, nodata, nodata, nodata, nodata
		}
	}

	outPath := outputResidualPath(a.OutName, ".tif")
	return writeResidualRaster(outPath, transform, nodata, rows, cols, dsm, resX, resY, resZ, resHoriz, res3D)
}

func writeRegisteredDSM(a *Registration, dsm [][]float32, transform geodata.Affine, nodata float64) error {
	rows := len(dsm)
	if rows == 0 {
		return errNoPoints("registered DSM has no rows")
	}
	cols := len(dsm[0])

	dst, err := godal.Create(godal.GTiff, a.OutName, 1, reflect.Float32, cols, rows)
	if err != nil {
		return fmt.Errorf("create %s: %w", a.OutName, err)
	}
	defer dst.Close()

	if err := dst.SetGeoTransform(transform.GeoTransform()); err != nil {
		return fmt.Errorf("set geotransform: %w", err)
	}
	if a.AOICRS != "" {
		if err := dst.SetProjection(a.AOICRS); err != nil {
			return fmt.Errorf("set projection: %w", err)
		}
	}

	flat := make([]float32, rows*cols)
	for r := 0; r < rows; r++ {
		copy(flat[r*cols:(r+1)*cols], dsm[r])
	}
	if err := dst.Write(0, 0, flat, cols, rows, godal.Bands(0)); err != nil {
		return fmt.Errorf("write registered DSM: %w", err)
	}

	bands := dst.Bands()
	if len(bands) > 0 {
		bands[0].SetNoData(nodata)
	}

	// Mirrors apply.py's writer_kwargs["metadata"] convention: PDAL
	// decomposes that dict into separate GDAL metadata items on output,
	// so each tag is written independently rather than packed into one
	// combined string - matching readAreaOrPoint's own read-side
	// expectation of a bare "AREA_OR_POINT" key.
	foundation := a.FndFile
	if foundation == "" {
		foundation = "unknown"
	}
	_ = dst.SetMetadataItem("CODEM_VERSION", Version, "")
	_ = dst.SetMetadataItem("CODEM_INFO", fmt.Sprintf(
		"Data registered and adjusted by codem-core against foundation %s. Total registration mean square error %.3f",
		foundation, a.RMSE3D,
	), "")
	_ = dst.SetMetadataItem("TIFFTAG_IMAGEDESCRIPTION", "RegisteredCompliment", "")
	if a.AOIAreaOrPoint == geodata.Area || a.AOIAreaOrPoint == geodata.Point {
		_ = dst.SetMetadataItem("AREA_OR_POINT", a.AOIAreaOrPoint.String(), "")
	}
	return nil
}
