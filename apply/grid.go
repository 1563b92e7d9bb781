package apply

import (
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/golang/geo/r3"

	"github.com/ncalm/codem-core/geodata"
)

const idwNodata = -9999.0

// rasterizeMean bins points onto a regular resolution-spaced grid,
// averaging Z within each cell, the first stage of the two-stage
// mean-then-IDW-fill approach this package uses to stand in for
// writers.gdal(output_type="idw").
func rasterizeMean(pts []r3.Vector, resolution float64) ([][]float32, geodata.Affine, float64, error) {
	if len(pts) == 0 {
		return nil, geodata.Affine{}, idwNodata, errNoPoints("rasterize: no points")
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

	sums := make([][]float64, rows)
	counts := make([][]int, rows)
	for r := range sums {
		sums[r] = make([]float64, cols)
		counts[r] = make([]int, cols)
	}

	for _, p := range pts {
		col := int((p.X - minX) / resolution)
		row := int((maxY - p.Y) / resolution)
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		sums[row][col] += p.Z
		counts[row][col]++
	}

	grid := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]float32, cols)
		for c := 0; c < cols; c++ {
			if counts[r][c] == 0 {
				grid[r][c] = idwNodata
			} else {
				grid[r][c] = float32(sums[r][c] / float64(counts[r][c]))
			}
		}
	}

	transform := geodata.Affine{A: resolution, C: minX, E: -resolution, F: maxY}
	return grid, transform, idwNodata, nil
}

// idwFillGrid fills idwNodata cells from neighboring populated cells
// weighted by inverse distance, the same ring-search strategy as
// geodata's void infill, applied here to close small gaps left by
// mean-binning before the raster is written out.
func idwFillGrid(grid [][]float32, nodata float64) [][]float32 {
	rows := len(grid)
	if rows == 0 {
		return grid
	}
	cols := len(grid[0])
	out := make([][]float32, rows)
	for r := range out {
		out[r] = append([]float32(nil), grid[r]...)
	}

	const radius = 64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if float64(grid[r][c]) != nodata {
				continue
			}
			for d := 1; d <= radius; d++ {
				var sumW, sumV float64
				found := false
				for dr := -d; dr <= d; dr++ {
					for dc := -d; dc <= d; dc++ {
						if abs(dr) != d && abs(dc) != d {
							continue
						}
						rr, cc := r+dr, c+dc
						if rr < 0 || rr >= rows || cc < 0 || cc >= cols {
							continue
						}
						if float64(grid[rr][cc]) == nodata {
							continue
						}
						dist := math.Hypot(float64(dr), float64(dc))
						w := 1.0 / dist
						sumW += w
						sumV += w * float64(grid[rr][cc])
						found = true
					}
				}
				if found {
					out[r][c] = float32(sumV / sumW)
					break
				}
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func outputResidualPath(outName, ext string) string {
	root := strings.TrimSuffix(outName, filepath.Ext(outName))
	return root + "_residuals" + ext
}

// writeResidualRaster writes the registered DSM alongside its five
// interpolated residual components as a 6-band GeoTIFF, mirroring
// _apply_dsm's residual-raster write.
func writeResidualRaster(path string, transform geodata.Affine, nodata float64, rows, cols int, dsm [][]float32, resX, resY, resZ, resHoriz, res3D []float64) error {
	dst, err := createBandedRaster(path, transform, "", rows, cols, 6)
	if err != nil {
		return err
	}
	defer dst.Close()

	// Band order matches _apply_dsm's write order: DSM, ResidualX,
	// ResidualY, ResidualZ, ResidualHoriz, Residual3D. godal's Dataset
	// type does not expose a per-band description setter in the
	// retrieved corpus, so band identity here is positional only
	// (documented) rather than named, unlike rasterio's
	// set_band_description.
	bands := [][]float32{
		flattenGrid(dsm, rows, cols),
		flattenFlat(resX, rows, cols),
		flattenFlat(resY, rows, cols),
		flattenFlat(resZ, rows, cols),
		flattenFlat(resHoriz, rows, cols),
		flattenFlat(res3D, rows, cols),
	}

	for i, data := range bands {
		if err := dst.Write(0, 0, data, cols, rows, godal.Bands(i)); err != nil {
			return err
		}
	}
	for _, b := range dst.Bands() {
		b.SetNoData(nodata)
	}
	return nil
}

func createBandedRaster(path string, transform geodata.Affine, crs string, rows, cols, bandCount int) (*godal.Dataset, error) {
	dst, err := godal.Create(godal.GTiff, path, bandCount, reflect.Float32, cols, rows)
	if err != nil {
		return nil, err
	}
	if err := dst.SetGeoTransform(transform.GeoTransform()); err != nil {
		dst.Close()
		return nil, err
	}
	if crs != "" {
		if err := dst.SetProjection(crs); err != nil {
			dst.Close()
			return nil, err
		}
	}
	return dst, nil
}

func flattenGrid(grid [][]float32, rows, cols int) []float32 {
	out := make([]float32, rows*cols)
	for r := 0; r < rows; r++ {
		copy(out[r*cols:(r+1)*cols], grid[r])
	}
	return out
}

func flattenFlat(vals []float64, rows, cols int) []float32 {
	out := make([]float32, rows*cols)
	for i, v := range vals {
		out[i] = float32(v)
	}
	return out
}
