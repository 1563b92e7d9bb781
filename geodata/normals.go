package geodata

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

const normalK = 9

// generateVectors estimates a per-point normal vector from each
// point's k=9 nearest neighbors via local plane fitting, mirroring
// GeoData._generate_vectors's PDAL filters.normal(knn=9) stage. PDAL
// itself fits the plane by taking the eigenvector of the neighborhood
// covariance matrix with the smallest eigenvalue; that same
// covariance/eigen step is reproduced here directly with
// gonum.org/v1/gonum/mat's symmetric eigendecomposition, grounded on
// the same gonum dependency viamrobotics-rdk's pointcloud/icp.go uses
// for pose-estimation linear algebra.
func generateVectors(ds *GeoDataset) error {
	n := len(ds.PointCloud)
	if n < normalK {
		return errEmptyInput(ds.tag())
	}

	cloud := pointKDCloudFrom(ds.PointCloud)
	tree := kdtree.New(cloud, false)

	normals := make([]r3.Vector, n)
	for i, p := range ds.PointCloud {
		keep := kdtree.NewNKeeper(normalK)
		tree.NearestSet(keep, kdPoint{p})
		neighbors := make([]r3.Vector, 0, normalK)
		for _, h := range keep.Heap {
			cp := h.Comparable.(kdPoint)
			neighbors = append(neighbors, cp.Vector)
		}
		normals[i] = fitPlaneNormal(neighbors)
	}
	ds.NormalVectors = normals
	return nil
}

func fitPlaneNormal(pts []r3.Vector) r3.Vector {
	if len(pts) == 0 {
		return r3.Vector{Z: 1}
	}
	var centroid r3.Vector
	for _, p := range pts {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1.0 / float64(len(pts)))

	var cxx, cxy, cxz, cyy, cyz, czz float64
	for _, p := range pts {
		d := p.Sub(centroid)
		cxx += d.X * d.X
		cxy += d.X * d.Y
		cxz += d.X * d.Z
		cyy += d.Y * d.Y
		cyz += d.Y * d.Z
		czz += d.Z * d.Z
	}
	sym := mat.NewSymDense(3, []float64{
		cxx, cxy, cxz,
		cxy, cyy, cyz,
		cxz, cyz, czz,
	})

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return r3.Vector{Z: 1}
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	// Values() returns eigenvalues in ascending order; the eigenvector
	// of the smallest eigenvalue is the best-fit plane normal.
	n := r3.Vector{X: vectors.At(0, 0), Y: vectors.At(1, 0), Z: vectors.At(2, 0)}
	if n.Norm() == 0 {
		return r3.Vector{Z: 1}
	}
	return n.Normalize()
}
