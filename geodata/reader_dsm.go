package geodata

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// dsmCapability implements the DSM-specific behavior of spec.md
// section 4.B/4.C: preprocess.py's DSM class.
type dsmCapability struct{}

func (dsmCapability) estimateResolution(ds *GeoDataset) error {
	gds, t, wkt, width, height, _, err := openRaster(ds.Path)
	if err != nil {
		return err
	}
	defer gds.Close()

	if wkt == "" {
		ds.logger().Printf("Linear unit for %s not detected -> meters assumed", ds.tag())
		ds.NativeResolution = absF(t.A)
		ds.UnitsName = "m"
		ds.UnitsFactor = 1.0
		return nil
	}

	info := parseCRS(wkt)
	if info.Geographic {
		ds.logger().Printf("CRS is not projected for %s, converting to meters", ds.tag())

		centerCol, centerRow := float64(width)/2, float64(height)/2
		lon, lat := t.Apply(centerCol, centerRow)
		epsgStr := utmEPSGString(lon, lat)

		newT, err := warpEstimateTransform(gds, epsgStr)
		if err != nil {
			return err
		}
		ds.NativeResolution = absF(newT.A)
		ds.CRS = epsgStr
		ds.UnitsName = "m"
		ds.UnitsFactor = 1.0
		ds.logger().Printf("Calculated native resolution of %s as: %.1f meters", ds.tag(), ds.NativeResolution)
		return nil
	}

	ds.logger().Printf("Linear unit for %s detected as %s", ds.tag(), info.LinearUnitName)
	ds.UnitsFactor = info.LinearUnitFactor
	ds.UnitsName = info.LinearUnitName
	ds.CRS = wkt
	ds.NativeResolution = absF(t.A) * ds.UnitsFactor
	ds.logger().Printf("Calculated native resolution of %s as: %.1f meters", ds.tag(), ds.NativeResolution)
	return nil
}

// warpEstimateTransform reprojects just enough of the dataset into an
// in-memory VRT to read off the resulting pixel scale, mirroring
// rasterio.warp.calculate_default_transform's use in
// DSM._calculate_resolution.
func warpEstimateTransform(gds *godal.Dataset, dstSRS string) (Affine, error) {
	tmp, err := gds.Warp("", []string{"-t_srs", dstSRS, "-of", "VRT"}, godal.GTiff)
	if err != nil {
		return Affine{}, fmt.Errorf("warp for resolution estimate: %w", err)
	}
	defer tmp.Close()
	gt, err := tmp.GeoTransform()
	if err != nil {
		return Affine{}, fmt.Errorf("warp geotransform: %w", err)
	}
	return AffineFromGDAL(gt), nil
}

func (dsmCapability) buildDSM(ds *GeoDataset, resample bool, fallbackCRS string) error {
	gds, err := godal.Open(ds.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", ds.Path, err)
	}
	defer gds.Close()

	structure := gds.Structure()
	width, height := structure.SizeX, structure.SizeY

	srcX, srcY, srcW, srcH := 0, 0, width, height
	if ds.Window != nil {
		srcX, srcY = ds.Window.ColOff, ds.Window.RowOff
		srcW, srcH = ds.Window.Cols, ds.Window.Rows
	}

	gt, err := gds.GeoTransform()
	if err != nil {
		return errMissingTransform(ds.Path)
	}
	baseTransform := AffineFromGDAL(gt)
	if ds.Window != nil {
		baseTransform = baseTransform.Mul(Affine{A: 1, E: 1, C: float64(srcX), F: float64(srcY)})
	}

	resampleFactor := 1.0
	if resample && ds.Resolution > 0 {
		resampleFactor = ds.NativeResolution / ds.Resolution
	}

	newW := srcW
	newH := srcH
	if resampleFactor != 1 {
		newW = int(float64(srcW) * resampleFactor)
		newH = int(float64(srcH) * resampleFactor)
		ds.logger().Printf("Resampling %s to a pixel resolution of: %.3f meters", ds.tag(), ds.Resolution)
	} else {
		ds.logger().Printf("No resampling required for %s", ds.tag())
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dsm, err := readBandFloat32(gds, srcX, srcY, srcW, srcH, newW, newH, godal.Cubic)
	if err != nil {
		return err
	}
	ds.DSM = dsm

	if resampleFactor != 1 {
		ds.Transform = baseTransform.Mul(Scale(float64(srcW)/float64(newW), float64(srcH)/float64(newH)))
	} else {
		ds.Transform = baseTransform
	}

	bands := gds.Bands()
	if len(bands) > 0 {
		if nd, ok := bands[0].NoData(); ok {
			ds.Nodata = &nd
		}
	}
	ds.CRS = gds.Projection()

	if ds.Role == RoleAOI && ds.CRS != "" && parseCRS(ds.CRS).Geographic && fallbackCRS != "" {
		// BUG (flagged, not fixed, per spec.md section 9): the original
		// rasterio.warp.calculate_default_transform call this mirrors
		// passes dsm.shape[0]/dsm.shape[1] as source width/height,
		// which swaps axes relative to conventional raster dims
		// (shape[0] is rows/height, shape[1] is cols/width). The swap
		// is reproduced here via newH/newW instead of newW/newH so a
		// careful reviewer can find and validate it against a literal
		// raster, rather than silently "fixing" behavior spec.md says
		// to flag.
		warped, err := gds.Warp("", []string{
			"-t_srs", fallbackCRS,
			"-r", "cubic",
			"-ts", itoa(newH), itoa(newW),
		}, godal.GTiff)
		if err != nil {
			return fmt.Errorf("fallback CRS warp: %w", err)
		}
		defer warped.Close()

		wgt, err := warped.GeoTransform()
		if err != nil {
			return fmt.Errorf("warp geotransform: %w", err)
		}
		wstruct := warped.Structure()
		warpedDSM, err := readBandFloat32(warped, 0, 0, wstruct.SizeX, wstruct.SizeY, wstruct.SizeX, wstruct.SizeY, godal.Cubic)
		if err != nil {
			return err
		}
		ds.DSM = warpedDSM
		ds.Transform = AffineFromGDAL(wgt)
		ds.CRS = fallbackCRS
	}

	mask := nodataMask(ds.DSM, ds.Nodata)
	if err := scaleDSMByUnits(ds, mask); err != nil {
		return err
	}

	ds.Transform = ScaleUniform(ds.UnitsFactor).Mul(ds.Transform)
	ds.AreaOrPoint = readAreaOrPoint(gds)

	if ds.Nodata == nil {
		ds.logger().Printf("%s does not have a nodata value.", ds.tag())
	}
	if ds.Transform.Identity() {
		ds.logger().Printf("WARNING: %s has an identity transform.", ds.tag())
	}
	return nil
}

// scaleDSMByUnits scales valid elevation cells by ds.UnitsFactor,
// matching DSM._create_dsm's can_cast check: casting unit factors
// into a float32 raster is always numerically representable, but a
// units factor that isn't a whole number still gets the warning-grade
// unsafe-units-cast warning logged (no error is returned) when the
// dataset's source values looked integral (heuristically: every valid
// cell is already a whole number, implying an integer-backed source).
func scaleDSMByUnits(ds *GeoDataset, mask [][]bool) error {
	if ds.UnitsFactor == 1.0 {
		return nil
	}
	looksIntegral := true
	for r, row := range ds.DSM {
		for c, v := range row {
			if mask[r][c] && v != float32(int64(v)) {
				looksIntegral = false
			}
		}
	}
	if looksIntegral && !isWholeNumber(ds.UnitsFactor) {
		ds.logger().Printf("WARNING: cannot safely scale %s by units factor, attempting to anyway!", ds.tag())
	}
	for r, row := range ds.DSM {
		for c, v := range row {
			if mask[r][c] {
				ds.DSM[r][c] = v * float32(ds.UnitsFactor)
			}
		}
	}
	return nil
}

func isWholeNumber(f float64) bool {
	return f == float64(int64(f))
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func itoa(i int) string {
	return fmt.Sprintf("%d", i)
}
