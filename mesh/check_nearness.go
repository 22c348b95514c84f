package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

// meshPoint is a kd-tree entry, Distance is the squared euclidean distance
type meshPoint struct {
	C     r3.Vec
	Label int
}

func (p *meshPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*meshPoint)
	switch d {
	case 0:
		return p.C.X - q.C.X
	case 1:
		return p.C.Y - q.C.Y
	case 2:
		return p.C.Z - q.C.Z
	}
	panic("unreachable")
}

func (p *meshPoint) Dims() int { return 3 }

func (p *meshPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.C, c.(*meshPoint).C))
}

type pointList []meshPoint

func (pl pointList) Index(i int) kdtree.Comparable { return &pl[i] }
func (pl pointList) Len() int                      { return len(pl) }
func (pl pointList) Slice(start, end int) kdtree.Interface {
	return pl[start:end]
}

func (pl pointList) Pivot(d kdtree.Dim) int {
	p := pointPlane{dim: d, points: pl}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (pl pointList) Bounds() *kdtree.Bounding {
	lo := meshPoint{C: r3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}}
	hi := meshPoint{C: r3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}}
	for _, p := range pl {
		lo.C = r3.Vec{X: math.Min(lo.C.X, p.C.X), Y: math.Min(lo.C.Y, p.C.Y), Z: math.Min(lo.C.Z, p.C.Z)}
		hi.C = r3.Vec{X: math.Max(hi.C.X, p.C.X), Y: math.Max(hi.C.Y, p.C.Y), Z: math.Max(hi.C.Z, p.C.Z)}
	}
	return &kdtree.Bounding{Min: &lo, Max: &hi}
}

type pointPlane struct {
	dim    kdtree.Dim
	points pointList
}

func (p pointPlane) Less(i, j int) bool {
	return p.points[i].Compare(&p.points[j], p.dim) < 0
}
func (p pointPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p pointPlane) Len() int      { return len(p.points) }
func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// NearPoints returns, for every point closer than dist to another point, the labels of those other
// points in ascending order
func NearPoints(points []r3.Vec, dist float64) (near map[int][]int) {
	near = make(map[int][]int)
	if len(points) < 2 {
		return
	}
	pl := make(pointList, len(points))
	for i, p := range points {
		pl[i] = meshPoint{C: p, Label: i}
	}
	tree := kdtree.New(pl, true)
	d2 := dist * dist
	for i, p := range points {
		keep := kdtree.NewDistKeeper(d2)
		tree.NearestSet(keep, &meshPoint{C: p, Label: i})
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				// sentinel holding the search radius
				continue
			}
			if q := cd.Comparable.(*meshPoint); q.Label != i && cd.Dist < d2 {
				near[i] = append(near[i], q.Label)
			}
		}
		if len(near[i]) > 0 {
			near[i] = sortedUnique(near[i])
		}
	}
	return
}

// CheckPointNearness marks points closer than MinPointDistance to another point
func (m *Mesh) CheckPointNearness(report bool, set types.LabelSet) bool {
	near := NearPoints(m.points, m.params.MinPointDistance)
	nBad := 0
	for pointi := range near {
		set.Insert(pointi)
		nBad++
	}
	return m.reportCount(report, nBad, "Points closer than the minimum point distance, number of points",
		"Point nearness OK.")
}
