package geodata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// crsInfo is the subset of a CRS's WKT this package needs: whether it
// is geographic (lat/lon) or projected, and its linear unit factor
// (multiplier to convert native linear units to meters). No
// pyproj-equivalent CRS library exists anywhere in the retrieved
// corpus, so this is implemented as direct WKT inspection — GDAL
// always emits WKT in the OGC WKT1/WKT2 grammar, so the
// GEOGCS/PROJCS keyword and UNIT[...] clause are reliable signals.
type crsInfo struct {
	Geographic       bool
	LinearUnitFactor float64
	LinearUnitName   string
}

var unitRe = regexp.MustCompile(`UNIT\["([^"]+)"\s*,\s*([0-9.eE+-]+)`)

func parseCRS(wkt string) crsInfo {
	info := crsInfo{LinearUnitFactor: 1.0, LinearUnitName: "metre"}
	if wkt == "" {
		return info
	}
	trimmed := strings.TrimSpace(wkt)
	info.Geographic = strings.HasPrefix(trimmed, "GEOGCS") ||
		strings.Contains(trimmed, "GEOGCRS") && !strings.Contains(trimmed, "PROJCRS")

	matches := unitRe.FindAllStringSubmatch(wkt, -1)
	if len(matches) == 0 {
		return info
	}
	// The outermost UNIT clause (the one belonging to the PROJCS/
	// PROJCRS node, i.e. the last linear UNIT in the string) carries
	// the linear unit; geographic CRS UNIT clauses are angular
	// (degree) and are not applicable here.
	last := matches[len(matches)-1]
	if f, err := strconv.ParseFloat(last[2], 64); err == nil && f > 0 {
		info.LinearUnitFactor = f
		info.LinearUnitName = last[1]
	}
	return info
}

// utmEPSG returns the best-guess UTM zone EPSG code for a WGS84
// (lon, lat) centroid, the Go substitute for
// pyproj.database.query_utm_crs_info used by preprocess.py's
// DSM._calculate_resolution geographic-CRS branch.
func utmEPSG(lon, lat float64) int {
	zone := int((lon+180)/6) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	if lat >= 0 {
		return 32600 + zone
	}
	return 32700 + zone
}

func utmEPSGString(lon, lat float64) string {
	return fmt.Sprintf("EPSG:%d", utmEPSG(lon, lat))
}
