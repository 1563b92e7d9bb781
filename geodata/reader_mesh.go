package geodata

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
)

// meshCapability implements preprocess.py's Mesh class. Vertex units
// are assumed meters: no mesh format in the retrieved corpus carries a
// trimesh-style embedded "units" hint, so the units_factor branch of
// _calculate_resolution always takes the "not detected" path.
type meshCapability struct{}

// LoadMeshVertices reads a mesh file's vertex positions, exported so
// the apply package can reuse the same codecs when re-meshing a
// registered AOI mesh.
func LoadMeshVertices(path string) ([]r3.Vector, error) {
	return loadMeshVertices(path)
}

func loadMeshVertices(path string) ([]r3.Vector, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		return loadPLYVertices(path)
	case ".obj":
		return loadOBJVertices(path)
	case ".stl":
		return loadSTLVertices(path)
	case ".gltf", ".glb":
		return nil, errUnsupportedFormat(path) // recognized mesh extensions, but no glTF/GLB vertex decoder exists in this package
	default:
		return nil, errUnsupportedFormat(path)
	}
}

func loadPLYVertices(path string) ([]r3.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	p := goply.New(f)
	xs := p.Element("x")
	ys := p.Element("y")
	zs := p.Element("z")
	n := len(xs)
	pts := make([]r3.Vector, n)
	for i := 0; i < n; i++ {
		pts[i] = r3.Vector{X: toF64(xs[i]), Y: toF64(ys[i]), Z: toF64(zs[i])}
	}
	return pts, nil
}

func toF64(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	default:
		return 0
	}
}

// loadOBJVertices hand-scans "v x y z" lines. No OBJ library exists in
// the retrieved corpus (see DESIGN.md); Wavefront OBJ's vertex grammar
// is simple enough that a full parser is unwarranted here.
func loadOBJVertices(path string) ([]r3.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var pts []r3.Vector
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "v ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		x, err1 := strconv.ParseFloat(fields[1], 64)
		y, err2 := strconv.ParseFloat(fields[2], 64)
		z, err3 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		pts = append(pts, r3.Vector{X: x, Y: y, Z: z})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return pts, nil
}

// loadSTLVertices reads binary STL's fixed 80-byte header + uint32
// triangle count + 50-byte records (normal + 3 vertices + attr byte
// count), deduplicating repeated shared vertices is intentionally
// skipped — normal/resolution estimation tolerates duplicate points.
func loadSTLVertices(path string) ([]r3.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 80)
	if _, err := f.Read(header); err != nil {
		return nil, fmt.Errorf("read STL header: %w", err)
	}
	var triCount uint32
	if err := binary.Read(f, binary.LittleEndian, &triCount); err != nil {
		return nil, fmt.Errorf("read STL triangle count: %w", err)
	}

	pts := make([]r3.Vector, 0, int(triCount)*3)
	rec := make([]byte, 50)
	for i := uint32(0); i < triCount; i++ {
		if _, err := f.Read(rec); err != nil {
			return nil, fmt.Errorf("read STL triangle %d: %w", i, err)
		}
		for v := 0; v < 3; v++ {
			off := 12 + v*12
			x := math.Float32frombits(binary.LittleEndian.Uint32(rec[off : off+4]))
			y := math.Float32frombits(binary.LittleEndian.Uint32(rec[off+4 : off+8]))
			z := math.Float32frombits(binary.LittleEndian.Uint32(rec[off+8 : off+12]))
			pts = append(pts, r3.Vector{X: float64(x), Y: float64(y), Z: float64(z)})
		}
	}
	return pts, nil
}

func (meshCapability) estimateResolution(ds *GeoDataset) error {
	verts, err := loadMeshVertices(ds.Path)
	if err != nil {
		return err
	}
	if len(verts) == 0 {
		return errEmptyInput(ds.tag())
	}

	ds.logger().Printf("Linear unit for %s not detected -> meters assumed", ds.tag())
	ds.UnitsFactor = 1.0
	ds.UnitsName = "meters"
	ds.CRS = ""

	spacing := averageNearestNeighborSpacing(verts)
	ds.NativeResolution = spacing
	ds.logger().Printf("Calculated native resolution for %s as: %.1f meters", ds.tag(), ds.NativeResolution)
	return nil
}

func (meshCapability) buildDSM(ds *GeoDataset, resample bool, fallbackCRS string) error {
	ds.logger().Printf("Extracting DSM from %s with resolution of: %v meters", ds.tag(), ds.Resolution)

	verts, err := loadMeshVertices(ds.Path)
	if err != nil {
		return err
	}
	if len(verts) == 0 {
		return errEmptyInput(ds.tag())
	}
	for i := range verts {
		verts[i] = verts[i].Mul(ds.UnitsFactor)
	}

	dsm, transform, nodata, err := rasterizeMaxZ(verts, ds.Resolution)
	if err != nil {
		return err
	}
	ds.DSM = dsm
	ds.Transform = transform
	ds.Nodata = &nodata
	ds.AreaOrPoint = Area
	return nil
}
