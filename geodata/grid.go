package geodata

import (
	"math"

	"github.com/golang/geo/r3"
)

// rasterizeMaxZ grids pts onto a regular cell-size resolution raster
// by maximum-Z binning, the Go-native stand-in for PDAL's
// writers.gdal(output_type="max") stage used by
// PointCloud._create_dsm and Mesh._create_dsm. Rather than round-trip
// through a temporary GDAL dataset (whose exact Create/Write surface
// was never confirmed in the retrieved corpus), the bins are
// accumulated directly and handed back as the same [][]float32 +
// Affine shape a GDAL-backed reader would produce, so every downstream
// consumer (infill, normalize, dsm2pc) is identical either way.
func rasterizeMaxZ(pts []r3.Vector, resolution float64) (dsm [][]float32, transform Affine, nodata float64, err error) {
	if len(pts) == 0 {
		return nil, Affine{}, 0, errEmptyInput("rasterize: no points")
	}
	if resolution <= 0 {
		return nil, Affine{}, 0, errInvalidResolution(resolution)
	}

	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	cols := int(math.Ceil((maxX-minX)/resolution)) + 1
	rows := int(math.Ceil((maxY-minY)/resolution)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	const nodataVal = -9999.0
	grid := make([][]float32, rows)
	for r := range grid {
		row := make([]float32, cols)
		for c := range row {
			row[c] = nodataVal
		}
		grid[r] = row
	}

	// Row 0 is the top (maxY), matching GDAL's north-up raster
	// convention, so the resulting transform has a negative E term.
	for _, p := range pts {
		col := int((p.X - minX) / resolution)
		row := int((maxY - p.Y) / resolution)
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		if grid[row][col] == nodataVal || float64(grid[row][col]) < p.Z {
			grid[row][col] = float32(p.Z)
		}
	}

	transform = Affine{A: resolution, C: minX, E: -resolution, F: maxY}
	return grid, transform, nodataVal, nil
}
