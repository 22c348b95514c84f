package mesh

import (
	"github.com/notargets/polymesh/types"
)

type edgeAddressing struct {
	edges          []Edge
	nInternalEdges int
	faceEdges      [][]int
}

// Edges returns the unique edges of the mesh. Edges not used by any boundary face come first, each
// edge keeps the orientation of the first face that uses it.
func (m *Mesh) Edges() []Edge { return m.edgeAddr().edges }

func (m *Mesh) HasEdges() bool { return m.edges.has() }

func (m *Mesh) NEdges() int { return len(m.Edges()) }

func (m *Mesh) NInternalEdges() int { return m.edgeAddr().nInternalEdges }

func (m *Mesh) IsInternalEdge(edgei int) bool { return edgei < m.NInternalEdges() }

// FaceEdges returns for every face the edge labels in face vertex order, edge i runs from vertex i
// to vertex i+1
func (m *Mesh) FaceEdges() [][]int { return m.edgeAddr().faceEdges }

func (m *Mesh) HasFaceEdges() bool { return m.edges.has() }

// FaceEdgesOf returns the edges of one face. Edge labels only exist once the edge table is built, so
// this always computes the edges.
func (m *Mesh) FaceEdgesOf(facei int, buf []int) []int {
	return append(buf[:0], m.FaceEdges()[facei]...)
}

func (m *Mesh) edgeAddr() edgeAddressing {
	return m.edges.get(m.calcEdges)
}

func (m *Mesh) calcEdges() (ea edgeAddressing) {
	var (
		nInt      = m.NInternalFaces()
		index     = make(map[types.EdgeKey]int)
		edges     []Edge
		onBdry    []bool
		faceEdges = make([][]int, len(m.faces))
	)
	for facei, f := range m.faces {
		faceEdges[facei] = make([]int, len(f))
		for i := range f {
			e := f.FaceEdge(i)
			k := e.Key()
			edgei, ok := index[k]
			if !ok {
				edgei = len(edges)
				index[k] = edgei
				edges = append(edges, e)
				onBdry = append(onBdry, false)
			}
			if facei >= nInt {
				onBdry[edgei] = true
			}
			faceEdges[facei][i] = edgei
		}
	}
	// Stable partition, internal edges first
	var (
		renumber = make([]int, len(edges))
		newI     int
	)
	ea.edges = make([]Edge, len(edges))
	for pass := 0; pass < 2; pass++ {
		for edgei, e := range edges {
			if onBdry[edgei] == (pass == 1) {
				renumber[edgei] = newI
				ea.edges[newI] = e
				newI++
			}
		}
		if pass == 0 {
			ea.nInternalEdges = newI
		}
	}
	for _, fe := range faceEdges {
		for i, edgei := range fe {
			fe[i] = renumber[edgei]
		}
	}
	ea.faceEdges = faceEdges
	return
}
