package geodata

import "math"

// Affine is a 2D affine transform with the same parameter layout as
// rasterio.Affine: x' = A*x + B*y + C, y' = D*x + E*y + F. Only
// conformal transforms (B == D == 0, |A| == |E|) are accepted by the
// readers in this package, per spec.md invariant 5.
type Affine struct {
	A, B, C, D, E, F float64
}

// IdentityAffine is the degenerate transform rejected by
// _calculate_resolution (spec.md section 4.B).
var IdentityAffine = Affine{A: 1, E: 1}

// Identity reports whether t is the identity transform.
func (t Affine) Identity() bool {
	return t == IdentityAffine
}

// Conformal reports whether t has no rotation/shear and equal X/Y
// pixel scale magnitudes.
func (t Affine) Conformal() bool {
	if t.B != 0 || t.D != 0 {
		return false
	}
	return math.Abs(math.Abs(t.A)-math.Abs(t.E)) < 1e-9
}

// Apply maps a pixel-space (x, y) coordinate to world space.
func (t Affine) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.B*y + t.C, t.D*x + t.E*y + t.F
}

// Mul composes two affine transforms, returning the transform that
// applies o first and then t — i.e. (t.Mul(o))(p) == t(o(p)). This
// matches rasterio's `transform * other` operator used throughout
// preprocess.py (e.g. `data.transform * data.transform.scale(...)`).
func (t Affine) Mul(o Affine) Affine {
	return Affine{
		A: t.A*o.A + t.B*o.D,
		B: t.A*o.B + t.B*o.E,
		C: t.A*o.C + t.B*o.F + t.C,
		D: t.D*o.A + t.E*o.D,
		E: t.D*o.B + t.E*o.E,
		F: t.D*o.C + t.E*o.F + t.F,
	}
}

// Scale returns a scaling-only affine transform, matching
// rasterio.Affine.scale(sx, sy).
func Scale(sx, sy float64) Affine {
	return Affine{A: sx, E: sy}
}

// ScaleUniform is Scale(s, s), matching rasterio's single-argument
// Affine.scale(s) overload used by clip_data's oversize_scale.
func ScaleUniform(s float64) Affine {
	return Scale(s, s)
}

// PixelSize returns the (|A|, |E|) pixel scale of t in world units.
func (t Affine) PixelSize() (float64, float64) {
	return math.Abs(t.A), math.Abs(t.E)
}

// GeoTransform returns the GDAL-ordered 6-tuple [C, A, B, F, D, E],
// the layout godal.Dataset.GeoTransform uses.
func (t Affine) GeoTransform() [6]float64 {
	return [6]float64{t.C, t.A, t.B, t.F, t.D, t.E}
}

// AffineFromGDAL builds an Affine from a GDAL-ordered 6-tuple.
func AffineFromGDAL(gt [6]float64) Affine {
	return Affine{A: gt[1], B: gt[2], C: gt[0], D: gt[4], E: gt[5], F: gt[3]}
}

// RowCol converts world coordinates back to fractional row/column
// indices, the inverse of Apply.
// Mirrors rasterio.transform.AffineTransformer.rowcol used by
// clip_data to translate a clipped world box back into a raster
// window.
func (t Affine) RowCol(x, y float64) (row, col float64) {
	det := t.A*t.E - t.B*t.D
	col = (t.E*(x-t.C) - t.B*(y-t.F)) / det
	row = (t.A*(y-t.F) - t.D*(x-t.C)) / det
	return row, col
}
