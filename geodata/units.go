package geodata

import "strings"

// crsEqual reports whether two WKT CRS strings represent the same
// coordinate system, the Go stand-in for pyproj.CRS.equals used by
// clip_data's foundation/compliment CRS check. No CRS-equivalence
// library exists in the retrieved corpus (see DESIGN.md); WKT strings
// emitted by the same GDAL build for the same EPSG code are
// byte-identical modulo whitespace, so normalized string comparison is
// sufficient for the datasets this package reads (both produced by the
// same godal binding).
func crsEqual(a, b string) bool {
	return normalizeWKT(a) == normalizeWKT(b)
}

func normalizeWKT(wkt string) string {
	fields := strings.Fields(wkt)
	return strings.Join(fields, " ")
}
