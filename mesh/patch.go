package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

/*
FacePatch is a list of faces taken out of a mesh, addressed both by mesh point labels and by patch
local point labels. Local points are numbered in order of first appearance.

Patch edges are numbered with the internal edges, those shared by two or more patch faces, first.
*/
type FacePatch struct {
	faces  []Face
	points []r3.Vec

	local lazy[localAddressing]
	edges lazy[patchEdges]
}

type localAddressing struct {
	meshPoints []int
	localFaces []Face
}

type patchEdges struct {
	edges          []Edge // in local point labels
	nInternalEdges int
	edgeFaces      [][]int
	faceEdges      [][]int
}

func NewFacePatch(faces []Face, points []r3.Vec) *FacePatch {
	return &FacePatch{faces: faces, points: points}
}

func (fp *FacePatch) Len() int           { return len(fp.faces) }
func (fp *FacePatch) Faces() []Face      { return fp.faces }
func (fp *FacePatch) MeshPoints() []int  { return fp.localAddr().meshPoints }
func (fp *FacePatch) LocalFaces() []Face { return fp.localAddr().localFaces }

func (fp *FacePatch) LocalPoints() (lp []r3.Vec) {
	mp := fp.MeshPoints()
	lp = make([]r3.Vec, len(mp))
	for i, p := range mp {
		lp[i] = fp.points[p]
	}
	return
}

func (fp *FacePatch) Edges() []Edge         { return fp.patchEdges().edges }
func (fp *FacePatch) NInternalEdges() int   { return fp.patchEdges().nInternalEdges }
func (fp *FacePatch) EdgeFaces() [][]int    { return fp.patchEdges().edgeFaces }
func (fp *FacePatch) FaceEdges() [][]int    { return fp.patchEdges().faceEdges }
func (fp *FacePatch) FaceAreas() []r3.Vec   { return fp.faceVecs(Face.AreaNormal) }
func (fp *FacePatch) FaceCentres() []r3.Vec { return fp.faceVecs(Face.Centre) }

func (fp *FacePatch) faceVecs(fn func(Face, []r3.Vec) r3.Vec) (v []r3.Vec) {
	v = make([]r3.Vec, len(fp.faces))
	for i, f := range fp.faces {
		v[i] = fn(f, fp.points)
	}
	return
}

// MeshEdges returns the mesh edge label of every patch edge, or -1 for edges the mesh does not hold
func (fp *FacePatch) MeshEdges(m *Mesh) (meshEdges []int) {
	var (
		edges = fp.Edges()
		mp    = fp.MeshPoints()
		buf   []int
	)
	meshEdges = make([]int, len(edges))
	for i, e := range edges {
		meshEdges[i] = -1
		a, b := mp[e[0]], mp[e[1]]
		buf = m.PointEdgesOf(a, buf)
		for _, edgei := range buf {
			if m.Edges()[edgei].Other(a) == b {
				meshEdges[i] = edgei
				break
			}
		}
	}
	return
}

func (fp *FacePatch) localAddr() localAddressing {
	return fp.local.get(func() (la localAddressing) {
		var (
			toLocal = make(map[int]int)
		)
		la.localFaces = make([]Face, len(fp.faces))
		for i, f := range fp.faces {
			lf := make(Face, len(f))
			for j, p := range f {
				lp, ok := toLocal[p]
				if !ok {
					lp = len(la.meshPoints)
					toLocal[p] = lp
					la.meshPoints = append(la.meshPoints, p)
				}
				lf[j] = lp
			}
			la.localFaces[i] = lf
		}
		return
	})
}

func (fp *FacePatch) patchEdges() patchEdges {
	return fp.edges.get(func() (pe patchEdges) {
		var (
			lf      = fp.LocalFaces()
			index   = make(map[types.EdgeKey]int)
			edges   []Edge
			eFaces  [][]int
			fEdges  = make([][]int, len(lf))
			ordered []int
		)
		for facei, f := range lf {
			fEdges[facei] = make([]int, len(f))
			for i := range f {
				e := f.FaceEdge(i)
				k := e.Key()
				edgei, ok := index[k]
				if !ok {
					edgei = len(edges)
					index[k] = edgei
					edges = append(edges, e)
					eFaces = append(eFaces, nil)
				}
				eFaces[edgei] = append(eFaces[edgei], facei)
				fEdges[facei][i] = edgei
			}
		}
		for edgei := range edges {
			if len(eFaces[edgei]) > 1 {
				ordered = append(ordered, edgei)
			}
		}
		pe.nInternalEdges = len(ordered)
		for edgei := range edges {
			if len(eFaces[edgei]) == 1 {
				ordered = append(ordered, edgei)
			}
		}
		renumber := make([]int, len(edges))
		pe.edges = make([]Edge, len(edges))
		pe.edgeFaces = make([][]int, len(edges))
		for newI, oldI := range ordered {
			renumber[oldI] = newI
			pe.edges[newI] = edges[oldI]
			pe.edgeFaces[newI] = eFaces[oldI]
		}
		for _, fe := range fEdges {
			for i, edgei := range fe {
				fe[i] = renumber[edgei]
			}
		}
		pe.faceEdges = fEdges
		return
	})
}
