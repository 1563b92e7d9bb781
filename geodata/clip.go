package geodata

import (
	"fmt"
	"math"

	"github.com/ncalm/codem-core/config"
)

// BoundingBox mirrors rasterio.coords.BoundingBox's left/bottom/right/top
// field order, used throughout ClipData and compute_clipped_bounds.
type BoundingBox struct {
	Left, Bottom, Right, Top float64
}

func disjointBounds(a, b BoundingBox) bool {
	return a.Left > b.Right || a.Right < b.Left || a.Top < b.Bottom || a.Bottom > b.Top
}

// ClipData restricts fnd and aoi to their mutual overlap, inflated by
// oversizeScale, mirroring clip_data. It is a no-op unless
// tightSearch is set. Both datasets must carry an equal, defined CRS.
func ClipData(fnd, aoi *GeoDataset, tightSearch bool) error {
	const oversizeScale = config.DefaultOversizeScale

	if !tightSearch {
		return nil
	}
	if fnd.CRS == "" || aoi.CRS == "" {
		return fmt.Errorf("%w: CRS of both datasets must be defined", errCRSUndefinedOrMismatch())
	}
	if !crsEqual(fnd.CRS, aoi.CRS) {
		return fmt.Errorf("%w: CRS of both datasets must be equal", errCRSUndefinedOrMismatch())
	}

	type pair struct {
		key string
		ds  *GeoDataset
	}
	pairs := []pair{{"foundation", fnd}, {"compliment", aoi}}

	original := map[string]BoundingBox{}
	scaled := map[string]BoundingBox{}

	for _, p := range pairs {
		rows := len(p.ds.DSM)
		cols := 0
		if rows > 0 {
			cols = len(p.ds.DSM[0])
		}
		origT := p.ds.Transform
		left, top := origT.Apply(0, 0)
		right, bottom := origT.Apply(float64(cols), float64(rows))
		original[p.key] = BoundingBox{Left: left, Bottom: bottom, Right: right, Top: top}

		scaledT := origT.Mul(ScaleUniform(oversizeScale))
		sLeft, sTop := scaledT.Apply(0, 0)
		sRight, sBottom := scaledT.Apply(float64(cols), float64(rows))
		scaled[p.key] = BoundingBox{Left: sLeft, Bottom: sBottom, Right: sRight, Top: sTop}
	}

	// BUG (flagged, not fixed, per spec.md section 9): the expansion
	// below only ever widens left/top by the absolute delta between
	// the scaled and original right/bottom edges, not the left/top
	// edges themselves, exactly mirroring clip_data's asymmetric
	// inflation math (`x_expanded`/`y_expanded` computed from
	// right/bottom, then applied to left/top). This under- or
	// over-inflates left/top relative to what a symmetric oversize
	// scale would produce whenever a raster's left/top corner isn't at
	// the scale origin. Reproduced as-is rather than corrected.
	for _, p := range pairs {
		o := original[p.key]
		s := scaled[p.key]
		xExpanded := math.Abs(s.Right - o.Right)
		yExpanded := math.Abs(s.Bottom - o.Bottom)
		scaled[p.key] = BoundingBox{
			Left:   s.Left - xExpanded,
			Bottom: s.Bottom,
			Right:  s.Right,
			Top:    s.Top + yExpanded,
		}
	}

	if disjointBounds(scaled["foundation"], scaled["compliment"]) {
		return errDisjointBounds()
	}

	clippedFnd, clippedAoi := computeClippedBounds(original, scaled)

	if err := applyClipWindow(fnd, clippedFnd); err != nil {
		return err
	}
	if err := applyClipWindow(aoi, clippedAoi); err != nil {
		return err
	}
	return nil
}

// computeClippedBounds trims each dataset's original bounds in toward
// the other dataset's scaled bounds, mirroring compute_clipped_bounds:
// left/bottom take the larger (closer-in) edge, right/top take the
// smaller.
func computeClippedBounds(original, scaled map[string]BoundingBox) (fnd, aoi BoundingBox) {
	fndOrig, aoiScaled := original["foundation"], scaled["compliment"]
	aoiOrig, fndScaled := original["compliment"], scaled["foundation"]

	fnd = BoundingBox{
		Left:   math.Max(fndOrig.Left, aoiScaled.Left),
		Bottom: math.Max(fndOrig.Bottom, aoiScaled.Bottom),
		Right:  math.Min(fndOrig.Right, aoiScaled.Right),
		Top:    math.Min(fndOrig.Top, aoiScaled.Top),
	}
	aoi = BoundingBox{
		Left:   math.Max(aoiOrig.Left, fndScaled.Left),
		Bottom: math.Max(aoiOrig.Bottom, fndScaled.Bottom),
		Right:  math.Min(aoiOrig.Right, fndScaled.Right),
		Top:    math.Min(aoiOrig.Top, fndScaled.Top),
	}
	return fnd, aoi
}

// applyClipWindow converts a clipped world-space bounding box into a
// pixel window via the dataset's transform, stores it, and rebuilds
// the DSM with resampling, mirroring clip_data's tail: computing
// rowcol(left/right, top/bottom) and calling _create_dsm(resample=True).
func applyClipWindow(ds *GeoDataset, box BoundingBox) error {
	rowTop, colLeft := ds.Transform.RowCol(box.Left, box.Top)
	rowBottom, colRight := ds.Transform.RowCol(box.Right, box.Bottom)

	rowOff := int(math.Round(rowTop))
	colOff := int(math.Round(colLeft))
	rows := int(math.Round(rowBottom)) - rowOff
	cols := int(math.Round(colRight)) - colOff
	if rows <= 0 || cols <= 0 {
		return errDisjointBounds()
	}

	ds.Window = &Window{RowOff: rowOff, ColOff: colOff, Rows: rows, Cols: cols}
	return ds.cap.buildDSM(ds, true, "")
}
