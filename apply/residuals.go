package apply

import (
	"math"

	"github.com/golang/geo/r3"
)

// residualSentinel marks a query point outside the residual
// triangulation's convex hull, matching apply.py's post-interpolation
// "replace NaN with -9999.0" step.
const residualSentinel = -9999.0

// interpolateResiduals re-expresses _interpolate_residuals: the
// origin/vector pairs recorded during the final ICP iteration are
// converted to the foundation's linear unit, a 2D Delaunay
// triangulation is built over their XY origins, and each of the five
// residual quantities (X, Y, Z, horizontal magnitude, 3D magnitude) is
// linearly (barycentrically) interpolated at every requested (x, y).
// No Delaunay/triangulated-interpolation library exists anywhere in
// the retrieved corpus (matplotlib.tri has no Go analogue), so both
// the triangulation (Bowyer-Watson) and the barycentric evaluator are
// implemented directly.
func (a *Registration) interpolateResiduals(xs, ys []float64) (resX, resY, resZ, resHoriz, res3D []float64, err error) {
	fndFactor := a.FndUnitsFactor
	if fndFactor == 0 {
		fndFactor = 1
	}
	inv := 1 / fndFactor

	n := len(a.ResidualOrigins)
	origins := make([]r3.Vector, n)
	xComp := make([]float64, n)
	yComp := make([]float64, n)
	zComp := make([]float64, n)
	horizComp := make([]float64, n)
	d3Comp := make([]float64, n)

	for i := 0; i < n; i++ {
		o := a.ResidualOrigins[i].Mul(inv)
		v := a.ResidualVectors[i].Mul(inv)
		origins[i] = o
		xComp[i] = v.X
		yComp[i] = v.Y
		zComp[i] = v.Z
		horizComp[i] = math.Hypot(v.X, v.Y)
		d3Comp[i] = v.Norm()
	}

	tri, err := delaunay(origins)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	resX = interpolateField(tri, origins, xComp, xs, ys)
	resY = interpolateField(tri, origins, yComp, xs, ys)
	resZ = interpolateField(tri, origins, zComp, xs, ys)
	resHoriz = interpolateField(tri, origins, horizComp, xs, ys)
	res3D = interpolateField(tri, origins, d3Comp, xs, ys)
	return resX, resY, resZ, resHoriz, res3D, nil
}

func interpolateField(tri *triangulation, origins []r3.Vector, values []float64, xs, ys []float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		v, ok := tri.interpolate(origins, values, xs[i], ys[i])
		if !ok {
			out[i] = residualSentinel
			continue
		}
		out[i] = v
	}
	return out
}

// triangulation is a Bowyer-Watson Delaunay triangulation over a
// fixed point set, referenced by index into the original slice.
type triangulation struct {
	points []point2
	tris   []triIdx
}

type point2 struct{ X, Y float64 }

type triIdx struct{ A, B, C int }

func delaunay(origins []r3.Vector) (*triangulation, error) {
	n := len(origins)
	if n < 3 {
		return nil, errTooFewResiduals(n)
	}
	pts := make([]point2, n)
	minX, minY := origins[0].X, origins[0].Y
	maxX, maxY := origins[0].X, origins[0].Y
	for i, o := range origins {
		pts[i] = point2{o.X, o.Y}
		minX, maxX = math.Min(minX, o.X), math.Max(maxX, o.X)
		minY, maxY = math.Min(minY, o.Y), math.Max(maxY, o.Y)
	}

	dx, dy := maxX-minX, maxY-minY
	deltaMax := math.Max(dx, dy)
	if deltaMax == 0 {
		deltaMax = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	// Super-triangle indices n, n+1, n+2, large enough to contain every
	// input point; removed from the final triangle list below.
	superPts := append(append([]point2(nil), pts...),
		point2{midX - 20*deltaMax, midY - deltaMax},
		point2{midX, midY + 20*deltaMax},
		point2{midX + 20*deltaMax, midY - deltaMax},
	)
	superA, superB, superC := n, n+1, n+2

	tris := []triIdx{{superA, superB, superC}}

	for i := 0; i < n; i++ {
		p := superPts[i]
		var edges [][2]int
		kept := tris[:0]
		for _, t := range tris {
			if inCircumcircle(superPts, t, p) {
				edges = append(edges,
					[2]int{t.A, t.B}, [2]int{t.B, t.C}, [2]int{t.C, t.A})
			} else {
				kept = append(kept, t)
			}
		}
		tris = kept

		uniqueEdges := dedupeEdges(edges)
		for _, e := range uniqueEdges {
			tris = append(tris, triIdx{e[0], e[1], i})
		}
	}

	final := tris[:0]
	for _, t := range tris {
		if t.A == superA || t.A == superB || t.A == superC ||
			t.B == superA || t.B == superB || t.B == superC ||
			t.C == superA || t.C == superB || t.C == superC {
			continue
		}
		final = append(final, t)
	}

	return &triangulation{points: pts, tris: final}, nil
}

func dedupeEdges(edges [][2]int) [][2]int {
	counts := make(map[[2]int]int)
	order := make([][2]int, 0, len(edges))
	for _, e := range edges {
		key := e
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if counts[key] == 0 {
			order = append(order, e)
		}
		counts[key]++
	}
	out := make([][2]int, 0, len(order))
	for _, e := range order {
		key := e
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if counts[key] == 1 {
			out = append(out, e)
		}
	}
	return out
}

func inCircumcircle(pts []point2, t triIdx, p point2) bool {
	a, b, c := pts[t.A], pts[t.B], pts[t.C]
	ax, ay := a.X-p.X, a.Y-p.Y
	bx, by := b.X-p.X, b.Y-p.Y
	cx, cy := c.X-p.X, c.Y-p.Y

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	// Orientation of (a, b, c) determines the sign convention for "inside".
	orient := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	if orient > 0 {
		return det > 0
	}
	return det < 0
}

// interpolate evaluates the barycentric linear interpolant of values
// at (x, y), searching the triangulation for a containing triangle.
// Returns ok=false when (x, y) falls outside every triangle (outside
// the convex hull), matching LinearTriInterpolator's NaN-then-sentinel
// behavior.
func (t *triangulation) interpolate(origins []r3.Vector, values []float64, x, y float64) (float64, bool) {
	for _, tri := range t.tris {
		a, b, c := t.points[tri.A], t.points[tri.B], t.points[tri.C]
		u, v, w, ok := barycentric(a, b, c, point2{x, y})
		if !ok {
			continue
		}
		return u*values[tri.A] + v*values[tri.B] + w*values[tri.C], true
	}
	return 0, false
}

func barycentric(a, b, c, p point2) (u, v, w float64, ok bool) {
	v0x, v0y := b.X-a.X, b.Y-a.Y
	v1x, v1y := c.X-a.X, c.Y-a.Y
	v2x, v2y := p.X-a.X, p.Y-a.Y

	d00 := v0x*v0x + v0y*v0y
	d01 := v0x*v1x + v0y*v1y
	d11 := v1x*v1x + v1y*v1y
	d20 := v2x*v0x + v2y*v0y
	d21 := v2x*v1x + v2y*v1y

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 0, 0, 0, false
	}
	vb := (d11*d20 - d01*d21) / denom
	wb := (d00*d21 - d01*d20) / denom
	ub := 1 - vb - wb

	const eps = -1e-9
	if ub < eps || vb < eps || wb < eps {
		return 0, 0, 0, false
	}
	return ub, vb, wb, true
}
