package geodata

import "math"

// nodataMask computes the binary valid-data mask of preprocess.py's
// _get_nodata_mask: true marks a valid cell. NaN values are always
// invalid; if nodata is set, cells equal to it are also invalid.
func nodataMask(dsm [][]float32, nodata *float64) [][]bool {
	rows := len(dsm)
	mask := make([][]bool, rows)
	for r := 0; r < rows; r++ {
		cols := len(dsm[r])
		row := make([]bool, cols)
		for c := 0; c < cols; c++ {
			v := dsm[r][c]
			if math.IsNaN(float64(v)) {
				row[c] = false
				continue
			}
			if nodata != nil && float64(v) == *nodata {
				row[c] = false
				continue
			}
			row[c] = true
		}
		mask[r] = row
	}
	return mask
}

func maskAllInvalid(mask [][]bool) bool {
	for _, row := range mask {
		for _, v := range row {
			if v {
				return false
			}
		}
	}
	return true
}
