package apply

import (
	"path/filepath"
	"strings"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"

	"github.com/ncalm/codem-core/geodata"
)

// applyMesh applies the registration transform to every mesh vertex
// and writes the result as PLY, mirroring _apply_mesh. No coordinate
// reference system is written, matching the Python implementation's
// note that mesh formats typically carry none.
func (a *Registration) applyMesh() error {
	verts, err := geodata.LoadMeshVertices(a.AOIFile)
	if err != nil {
		return err
	}

	registration := a.ComposeTransform()
	registered := make([]r3.Vector, len(verts))
	for i, v := range verts {
		registered[i] = applyMatrixPoint(registration, v)
	}

	// Supplemented feature: OBJ material-name-from-basename, mirroring
	// apply.py's mesh.visual.material.name assignment. PLY (the only
	// mesh format this package writes) carries no material-name slot,
	// so the name is recorded in a text comment instead.
	var materialName string
	if strings.ToLower(filepath.Ext(a.AOIFile)) == ".obj" {
		base := filepath.Base(a.AOIFile)
		materialName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := writeMeshPLY(a.OutName, registered, materialName); err != nil {
		return err
	}
	a.logf("Registration has been applied to AOI-MESH and saved to: %s", a.OutName)

	if a.Config.ICPSaveResiduals {
		if err := a.writeMeshResiduals(registered); err != nil {
			return err
		}
	}
	return nil
}

func (a *Registration) writeMeshResiduals(verts []r3.Vector) error {
	xs := make([]float64, len(verts))
	ys := make([]float64, len(verts))
	for i, v := range verts {
		xs[i] = v.X
		ys[i] = v.Y
	}
	resX, resY, resZ, resHoriz, res3D, err := a.interpolateResiduals(xs, ys)
	if err != nil {
		return err
	}

	outPath := outputResidualPath(a.OutName, ".ply")
	if err := writeMeshResidualPLY(outPath, verts, resX, resY, resZ, resHoriz, res3D); err != nil {
		return err
	}
	a.logf("ICP residuals have been computed for each registered AOI-MESH vertex and saved to: %s", outPath)
	return nil
}

func writeMeshPLY(path string, verts []r3.Vector, materialComment string) error {
	w := goply.NewWriter()
	if materialComment != "" {
		w.AddComment("material " + materialComment)
	}
	for _, v := range verts {
		w.AddVertex(v.X, v.Y, v.Z)
	}
	return w.Save(path)
}

func writeMeshResidualPLY(path string, verts []r3.Vector, resX, resY, resZ, resHoriz, res3D []float64) error {
	w := goply.NewWriter()
	for i, v := range verts {
		w.AddVertex(v.X, v.Y, v.Z)
		w.AddVertexProperty("ResidualX", resX[i])
		w.AddVertexProperty("ResidualY", resY[i])
		w.AddVertexProperty("ResidualZ", resZ[i])
		w.AddVertexProperty("ResidualHoriz", resHoriz[i])
		w.AddVertexProperty("Residual3D", res3D[i])
	}
	return w.Save(path)
}
