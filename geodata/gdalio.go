package geodata

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// openRaster opens path read-only and returns its affine transform,
// projection WKT, raster size, and nodata value, failing with the
// spec.md section 7 error kinds on malformed transforms.
func openRaster(path string) (gds *godal.Dataset, t Affine, wkt string, width, height int, nodata *float64, err error) {
	gds, err = godal.Open(path)
	if err != nil {
		return nil, Affine{}, "", 0, 0, nil, fmt.Errorf("open %s: %w", path, err)
	}

	gt, gerr := gds.GeoTransform()
	if gerr != nil {
		gds.Close()
		return nil, Affine{}, "", 0, 0, nil, errMissingTransform(path)
	}
	t = AffineFromGDAL(gt)
	if t.Identity() {
		gds.Close()
		return nil, Affine{}, "", 0, 0, nil, errMissingTransform(path)
	}
	if !t.Conformal() {
		gds.Close()
		return nil, Affine{}, "", 0, 0, nil, errNonConformal(path)
	}

	wkt = gds.Projection()
	structure := gds.Structure()
	width, height = structure.SizeX, structure.SizeY

	bands := gds.Bands()
	if len(bands) > 0 {
		if nd, ok := bands[0].NoData(); ok {
			nodata = &nd
		}
	}
	return gds, t, wkt, width, height, nodata, nil
}

func readAreaOrPoint(gds *godal.Dataset) AreaOrPoint {
	v := gds.MetadataItem("AREA_OR_POINT", "", "")
	if v == "Point" {
		return Point
	}
	return Area
}

// readBandFloat32 reads band 1 of gds into a rows x cols [][]float32
// grid, resampling from the given source window to (cols, rows) using
// the supplied resampling algorithm.
func readBandFloat32(gds *godal.Dataset, srcX, srcY, srcW, srcH, cols, rows int, alg godal.ResamplingAlg) ([][]float32, error) {
	buf := make([]float32, cols*rows)
	err := gds.Read(srcX, srcY, buf, cols, rows,
		godal.Bands(0), godal.Window(srcW, srcH), godal.Resampling(alg))
	if err != nil {
		return nil, fmt.Errorf("read raster band: %w", err)
	}
	out := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		out[r] = buf[r*cols : (r+1)*cols]
	}
	return out, nil
}
