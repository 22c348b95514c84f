package layers

import (
	"github.com/notargets/polymesh/mesh"
	"github.com/notargets/polymesh/utils"
)

/*
Pairing relates a face zone to the layer of cells on its master side. For every zone face it holds
the master cell and the face of that cell across the layer, and for every zone point the point it
faces on the far side of the layer.
*/
type Pairing struct {
	Zone          *mesh.FaceZone
	MasterCells   []int
	OpposingFaces []int
	PointsPairing map[int]int // zone point -> opposing point
	NLocalErrors  int
}

/*
SetLayerPairing builds the pairing for the named face zone. It returns false when the zone does not
bound a layer on any rank: a face without a master cell or an opposing face, or a zone point paired
with different opposing points by different faces. The error count is summed over all ranks, so every
rank must call it.
*/
func SetLayerPairing(m *mesh.Mesh, zoneName string) (p *Pairing, ok bool) {
	fz, found := m.FaceZones().ByName(zoneName)
	nErrors := 0
	if found {
		p = pairZone(m, fz)
		nErrors = p.NLocalErrors
	} else {
		m.Logger().Printf("face zone %q not found", zoneName)
		nErrors = 1
	}
	if total := utils.ReduceSum(m.Comm(), nErrors); total > 0 {
		m.Logger().Printf("zone %s is not a valid layer, %d pairing errors", zoneName, total)
		return nil, false
	}
	return p, true
}

func pairZone(m *mesh.Mesh, fz *mesh.FaceZone) (p *Pairing) {
	var (
		masters  = fz.MasterCells()
		zoneFace = fz.Patch().Faces()
		faces    = m.Faces()
		owner    = m.FaceOwner()
		cbuf     []int
	)
	p = &Pairing{
		Zone:          fz,
		MasterCells:   masters,
		OpposingFaces: make([]int, fz.Len()),
		PointsPairing: make(map[int]int),
	}
	for i, facei := range fz.Addressing() {
		p.OpposingFaces[i] = -1
		mc := masters[i]
		if mc < 0 {
			m.Logger().Printf("zone face %d has no master cell", facei)
			p.NLocalErrors++
			continue
		}
		f := zoneFace[i]
		cbuf = m.CellsOf(mc, cbuf)
		opp := opposingFace(m, cbuf, facei)
		if opp < 0 {
			m.Logger().Printf("no face of cell %d is opposite zone face %d", mc, facei)
			p.NLocalErrors++
			continue
		}
		p.OpposingFaces[i] = opp
		g := faces[opp]
		start := edgePartner(m, mc, f[0], g)
		if start < 0 {
			p.NLocalErrors++
			continue
		}
		// The zone face normal points into the master cell, an opposing face owned by the master
		// points out of it and winds the same way
		step := 1
		if owner[opp] != mc {
			step = len(g) - 1
		}
		for k, pointi := range f {
			oppPoint := g[(start+k*step)%len(g)]
			if prev, ok := p.PointsPairing[pointi]; ok && prev != oppPoint {
				m.Logger().Printf("zone point %d paired with %d and %d", pointi, prev, oppPoint)
				p.NLocalErrors++
				continue
			}
			p.PointsPairing[pointi] = oppPoint
		}
	}
	return
}

// opposingFace returns the face of the cell sharing no point with facei and having as many points
func opposingFace(m *mesh.Mesh, cellFaces []int, facei int) (opp int) {
	faces := m.Faces()
	ref := faces[facei]
	opp = -1
	for _, fj := range cellFaces {
		if fj == facei || len(faces[fj]) != len(ref) {
			continue
		}
		shared := false
		for _, pointi := range faces[fj] {
			if ref.Which(pointi) >= 0 {
				shared = true
				break
			}
		}
		if !shared {
			if opp >= 0 {
				return -1
			}
			opp = fj
		}
	}
	return
}

// edgePartner returns the position in g of the point joined to pointi by an edge of the cell
func edgePartner(m *mesh.Mesh, celli, pointi int, g mesh.Face) int {
	edges := m.Edges()
	for _, edgei := range m.CellEdges()[celli] {
		e := edges[edgei]
		if e.Start() != pointi && e.End() != pointi {
			continue
		}
		if k := g.Which(e.Other(pointi)); k >= 0 {
			return k
		}
	}
	m.Logger().Printf("point %d of cell %d has no edge across the layer", pointi, celli)
	return -1
}
