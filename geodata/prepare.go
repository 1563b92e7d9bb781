package geodata

// Prepare runs the full per-dataset preprocessing sequence of spec.md
// section 5: infill voids, bandpass-normalize, derive a point cloud,
// and — for the foundation dataset only — estimate normal vectors,
// mirroring GeoData.prep(). Callers are expected to have already run
// Instantiate, optionally ClipData, and cap.buildDSM (via
// Instantiate's resolution-estimation pass followed by an explicit
// BuildDSM call) before calling Prepare.
func Prepare(ds *GeoDataset) error {
	ds.logger().Printf("Preparing %s for registration.", ds.tag())

	if err := infill(ds); err != nil {
		return err
	}
	if err := normalize(ds); err != nil {
		return err
	}
	if err := dsm2pc(ds); err != nil {
		return err
	}
	if ds.Role == RoleFoundation {
		if err := generateVectors(ds); err != nil {
			return err
		}
	}
	ds.Processed = true
	return nil
}

// BuildDSM runs the kind-specific gridding step (spec.md section 4.B),
// exposed so a caller can build the initial, unresampled DSM before
// optionally clipping and before calling Prepare.
func BuildDSM(ds *GeoDataset, resample bool, fallbackCRS string) error {
	return ds.cap.buildDSM(ds, resample, fallbackCRS)
}
