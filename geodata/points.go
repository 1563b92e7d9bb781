package geodata

import "github.com/golang/geo/r3"

// dsm2pc converts the infilled DSM into a point cloud, mirroring
// GeoData._dsm2pc. AreaOrPoint == Area shifts each grid index by 0.5
// pixel before applying the transform, since the elevation value
// represents the pixel center, not its upper-left corner (spec.md
// invariant 7). Points are emitted in row-major order, matching
// np.meshgrid's default 'xy' indexing flattened in row-major order;
// cells that NodataMask marks invalid are skipped, so point i maps to
// row i/cols, col i%cols only when no cell is skipped.
func dsm2pc(ds *GeoDataset) error {
	if len(ds.Infilled) == 0 || len(ds.Infilled[0]) == 0 {
		return errEmptyInput(ds.tag())
	}
	rows := len(ds.Infilled)
	cols := len(ds.Infilled[0])

	offset := 0.0
	if ds.AreaOrPoint == Area {
		offset = 0.5
	}

	pts := make([]r3.Vector, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if len(ds.NodataMask) > 0 && !ds.NodataMask[r][c] {
				continue
			}
			u := float64(c) + offset
			v := float64(r) + offset
			x, y := ds.Transform.Apply(u, v)
			z := float64(ds.Infilled[r][c])
			pts = append(pts, r3.Vector{X: x, Y: y, Z: z})
		}
	}
	ds.PointCloud = pts
	return nil
}
