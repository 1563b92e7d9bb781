package geodata

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// kdPoint adapts r3.Vector to kdtree.Comparable, grounded on the
// r3.Vector + kdtree pairing used for nearest-neighbor pose estimation
// in viamrobotics-rdk's pointcloud/icp.go.
type kdPoint struct {
	r3.Vector
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

func (p kdPoint) Dims() int { return 3 }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	return p.Vector.Sub(q.Vector).Norm2()
}

// pointKDCloud is a kdtree.Interface over a mutable slice of points.
type pointKDCloud []kdPoint

func pointKDCloudFrom(pts []r3.Vector) pointKDCloud {
	c := make(pointKDCloud, len(pts))
	for i, p := range pts {
		c[i] = kdPoint{p}
	}
	return c
}

func (c pointKDCloud) Index(i int) kdtree.Comparable { return c[i] }
func (c pointKDCloud) Len() int                       { return len(c) }

func (c pointKDCloud) Pivot(d kdtree.Dim) int {
	return plane{pointKDCloud: c, Dim: d}.Pivot()
}

func (c pointKDCloud) Slice(start, end int) kdtree.Interface {
	return c[start:end]
}

// plane implements gonum's sort.Interface-based partitioning helper
// pattern (kdtree.Partition via a plane view), grounded the same way
// kdtree example code in the gonum corpus structures pivoting.
type plane struct {
	pointKDCloud
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.pointKDCloud[i].X < p.pointKDCloud[j].X
	case 1:
		return p.pointKDCloud[i].Y < p.pointKDCloud[j].Y
	default:
		return p.pointKDCloud[i].Z < p.pointKDCloud[j].Z
	}
}

func (p plane) Swap(i, j int) {
	p.pointKDCloud[i], p.pointKDCloud[j] = p.pointKDCloud[j], p.pointKDCloud[i]
}

func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
