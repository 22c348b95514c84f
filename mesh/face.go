package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

// Face is an ordered list of point labels, the area vector follows the right hand rule
type Face []int

// Reverse returns the face with opposite orientation, keeping the first vertex in place
func (f Face) Reverse() (r Face) {
	r = make(Face, len(f))
	r[0] = f[0]
	for i := 1; i < len(f); i++ {
		r[i] = f[len(f)-i]
	}
	return
}

func (f Face) Edges() (edges []Edge) {
	edges = make([]Edge, len(f))
	for i := range f {
		edges[i] = f.FaceEdge(i)
	}
	return
}

// FaceEdge returns the edge starting at vertex i
func (f Face) FaceEdge(i int) Edge { return Edge{f[i], f[(i+1)%len(f)]} }

// Which returns the local index of a point label in the face or -1
func (f Face) Which(pointi int) int {
	for i, p := range f {
		if p == pointi {
			return i
		}
	}
	return -1
}

// Centre returns the area weighted centre of the triangle fan about the vertex average
func (f Face) Centre(points []r3.Vec) r3.Vec {
	c, _ := f.centreAndArea(points)
	return c
}

// AreaNormal returns the area vector, its magnitude is the face area
func (f Face) AreaNormal(points []r3.Vec) r3.Vec {
	_, a := f.centreAndArea(points)
	return a
}

func (f Face) Mag(points []r3.Vec) float64 { return r3.Norm(f.AreaNormal(points)) }

func (f Face) centreAndArea(p []r3.Vec) (fc, fa r3.Vec) {
	if len(f) == 3 {
		fc = r3.Scale(1./3., r3.Add(r3.Add(p[f[0]], p[f[1]]), p[f[2]]))
		fa = r3.Scale(0.5, r3.Cross(r3.Sub(p[f[1]], p[f[0]]), r3.Sub(p[f[2]], p[f[0]])))
		return
	}
	var (
		sumN, sumAc r3.Vec
		sumA        float64
		fCentre     r3.Vec
		nPoints     = len(f)
	)
	for _, pi := range f {
		fCentre = r3.Add(fCentre, p[pi])
	}
	fCentre = r3.Scale(1./float64(nPoints), fCentre)
	for pi := 0; pi < nPoints; pi++ {
		var (
			thisPoint = p[f[pi]]
			nextPoint = p[f[(pi+1)%nPoints]]
			c         = r3.Add(r3.Add(thisPoint, nextPoint), fCentre)
			n         = r3.Cross(r3.Sub(nextPoint, thisPoint), r3.Sub(fCentre, thisPoint))
			a         = r3.Norm(n)
		)
		sumN = r3.Add(sumN, n)
		sumA += a
		sumAc = r3.Add(sumAc, r3.Scale(a, c))
	}
	if sumA < ROOTVSMALL {
		fc = fCentre
	} else {
		fc = r3.Scale(1./(3.*sumA), sumAc)
	}
	fa = r3.Scale(0.5, sumN)
	return
}

// SweptVol returns the volume swept by the face moving from oldPoints to newPoints
func (f Face) SweptVol(oldPoints, newPoints []r3.Vec) (sv float64) {
	if len(f) == 3 {
		return sweptTriVol(
			[3]r3.Vec{oldPoints[f[0]], oldPoints[f[1]], oldPoints[f[2]]},
			[3]r3.Vec{newPoints[f[0]], newPoints[f[1]], newPoints[f[2]]})
	}
	var (
		oc = f.Centre(oldPoints)
		nc = f.Centre(newPoints)
		n  = len(f)
	)
	for pi := 0; pi < n; pi++ {
		next := (pi + 1) % n
		sv += sweptTriVol(
			[3]r3.Vec{oldPoints[f[pi]], oldPoints[f[next]], oc},
			[3]r3.Vec{newPoints[f[pi]], newPoints[f[next]], nc})
	}
	return
}

// sweptTriVol is the signed volume of the prism between two positions of a triangle, split into three
// tetrahedra. It is positive when the triangle moves along its normal.
func sweptTriVol(o, n [3]r3.Vec) float64 {
	return (1. / 6.) * (r3.Dot(r3.Sub(n[0], o[0]), r3.Cross(r3.Sub(o[1], o[0]), r3.Sub(o[2], o[0]))) +
		r3.Dot(r3.Sub(n[1], o[1]), r3.Cross(r3.Sub(o[2], o[1]), r3.Sub(n[0], o[1]))) +
		r3.Dot(r3.Sub(o[2], n[2]), r3.Cross(r3.Sub(n[1], n[2]), r3.Sub(n[0], n[2]))))
}

// Edge is an ordered pair of point labels
type Edge [2]int

func (e Edge) Start() int { return e[0] }
func (e Edge) End() int   { return e[1] }

// Other returns the vertex opposite pointi, or -1 if pointi is not on the edge
func (e Edge) Other(pointi int) int {
	switch pointi {
	case e[0]:
		return e[1]
	case e[1]:
		return e[0]
	}
	return -1
}

func (e Edge) Vec(points []r3.Vec) r3.Vec { return r3.Sub(points[e[1]], points[e[0]]) }

func (e Edge) Mag(points []r3.Vec) float64 { return r3.Norm(e.Vec(points)) }

func (e Edge) Key() types.EdgeKey { return types.NewEdgeKey([2]int(e)) }

func (e Edge) Reversed() Edge { return Edge{e[1], e[0]} }

func magSqr(v r3.Vec) float64 { return r3.Norm2(v) }

func sqr(x float64) float64 { return x * x }

func clamp(x, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, x)) }
