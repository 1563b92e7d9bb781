package geodata

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// normalize suppresses high-frequency noise and removes long
// wavelength topography with a difference-of-Gaussians bandpass
// filter, then quantizes the 1st-99th percentile range to 8 bits,
// mirroring GeoData._normalize. cv2.GaussianBlur has no equivalent in
// the retrieved corpus that operates on raw float32 data without
// going through an image.Image color model (disintegration/imaging
// and golang.org/x/image both quantize through 8/16-bit channels —
// see DESIGN.md), so the separable Gaussian blur is implemented
// directly against the float32 grid.
func normalize(ds *GeoDataset) error {
	if len(ds.Infilled) == 0 {
		return errEmptyInput(ds.tag())
	}
	sx, sy := ds.Transform.PixelSize()
	scale := math.Sqrt(sx*sx + sy*sy)
	if scale == 0 {
		return errInvalidResolution(0)
	}

	weakSigma := ds.WeakFilterSize / scale
	strongSigma := ds.StrongFilterSize / scale

	weak := gaussianBlur(ds.Infilled, weakSigma)
	strong := gaussianBlur(ds.Infilled, strongSigma)

	rows := len(ds.Infilled)
	cols := len(ds.Infilled[0])
	bandpassed := make([][]float64, rows)
	flat := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		bandpassed[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			v := float64(weak[r][c] - strong[r][c])
			bandpassed[r][c] = v
			flat = append(flat, v)
		}
	}

	sorted := append([]float64(nil), flat...)
	sort.Float64s(sorted)
	low := stat.Quantile(0.01, stat.Empirical, sorted, nil)
	high := stat.Quantile(0.99, stat.Empirical, sorted, nil)
	rangeV := high - low
	if rangeV == 0 {
		rangeV = 1
	}

	quantized := make([][]uint8, rows)
	for r := 0; r < rows; r++ {
		quantized[r] = make([]uint8, cols)
		for c := 0; c < cols; c++ {
			v := bandpassed[r][c]
			if v < low {
				v = low
			}
			if v > high {
				v = high
			}
			n := (v - low) / rangeV
			quantized[r][c] = uint8(255 * n)
		}
	}
	ds.Normed = quantized
	return nil
}

// gaussianBlur applies a separable Gaussian blur with the given sigma
// (in pixels) to a float32 grid, standing in for
// cv2.GaussianBlur(ksize=(0,0), sigma), which derives its kernel size
// from sigma. Here the kernel radius is round(sigma*3)+1 and edge
// pixels are replicated.
func gaussianBlur(grid [][]float32, sigma float64) [][]float32 {
	if sigma <= 0 {
		out := make([][]float32, len(grid))
		for r := range grid {
			out[r] = append([]float32(nil), grid[r]...)
		}
		return out
	}
	radius := int(math.Round(sigma*3)) + 1
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	rows := len(grid)
	cols := len(grid[0])

	horiz := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		horiz[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			var acc float64
			for k := -radius; k <= radius; k++ {
				cc := clampInt(c+k, 0, cols-1)
				acc += kernel[k+radius] * float64(grid[r][cc])
			}
			horiz[r][c] = acc
		}
	}

	out := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]float32, cols)
	}
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			var acc float64
			for k := -radius; k <= radius; k++ {
				rr := clampInt(r+k, 0, rows-1)
				acc += kernel[k+radius] * horiz[rr][c]
			}
			out[r][c] = float32(acc)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
