package mesh

import (
	"github.com/notargets/polymesh/types"
	"github.com/notargets/polymesh/utils"
)

// reportCount logs the global count of a check and reports whether it is non zero. Every rank must
// call it.
func (m *Mesh) reportCount(report bool, nLocal int, bad, ok string) bool {
	n := utils.ReduceSum(m.comm, nLocal)
	if report {
		if n > 0 {
			m.logger.Printf(" ***%s: %d", bad, n)
		} else {
			m.logger.Printf("    %s", ok)
		}
	}
	return n > 0
}

// CheckPoints finds points not used by any face or any cell
func (m *Mesh) CheckPoints(report bool, set types.LabelSet) bool {
	var (
		pf   = m.PointFaces()
		nBad int
	)
	for pointi, faces := range pf {
		if len(faces) == 0 {
			set.Insert(pointi)
			nBad++
			continue
		}
		if len(m.PointCellsOf(pointi, nil)) == 0 {
			set.Insert(pointi)
			nBad++
		}
	}
	return m.reportCount(report, nBad, "Unused points found in the mesh, number unused", "Point usage OK.")
}

// CheckUpperTriangular finds internal faces out of upper triangular order. Internal faces must have
// owner < neighbour and be sorted by owner, then neighbour.
func (m *Mesh) CheckUpperTriangular(report bool, set types.LabelSet) bool {
	var nBad int
	for facei, nei := range m.neighbour {
		own := m.owner[facei]
		bad := own >= nei
		if facei > 0 {
			pOwn, pNei := m.owner[facei-1], m.neighbour[facei-1]
			if own < pOwn || (own == pOwn && nei < pNei) {
				bad = true
			}
		}
		if bad {
			set.Insert(facei)
			nBad++
		}
	}
	return m.reportCount(report, nBad, "Faces not in upper triangular order, number of faces",
		"Upper triangular ordering OK.")
}

// CheckCellsZipUp finds cells whose edges are not each used by exactly two of the cell's faces
func (m *Mesh) CheckCellsZipUp(report bool, set types.LabelSet) bool {
	var (
		fe    = m.FaceEdges()
		nBad  int
		count = make(map[int]int)
	)
	for celli, cFaces := range m.Cells() {
		clear(count)
		for _, facei := range cFaces {
			for _, edgei := range fe[facei] {
				count[edgei]++
			}
		}
		for _, n := range count {
			if n != 2 {
				set.Insert(celli)
				nBad++
				break
			}
		}
	}
	return m.reportCount(report, nBad, "Number of cells with open or multiply connected edges",
		"Topological cell zip-up check OK.")
}

// CheckFaceVertices finds faces with out of range or repeated vertices
func (m *Mesh) CheckFaceVertices(report bool, set types.LabelSet) bool {
	var (
		nPoints = m.NPoints()
		nBad    int
	)
	for facei, f := range m.faces {
		seen := types.NewLabelSet()
		for _, pointi := range f {
			if pointi < 0 || pointi >= nPoints || seen.Has(pointi) {
				set.Insert(facei)
				nBad++
				break
			}
			seen.Insert(pointi)
		}
	}
	return m.reportCount(report, nBad, "Faces with invalid vertex labels found, number of faces",
		"Face vertices OK.")
}

// CheckFaceFaces finds duplicate faces and faces sharing points that do not form a contiguous run
// around the face
func (m *Mesh) CheckFaceFaces(report bool, set types.LabelSet) bool {
	var (
		pf          = m.PointFaces()
		nDuplicate  int
		nBadConnect int
	)
	for facei, f := range m.faces {
		shared := make(map[int][]bool)
		for fp, pointi := range f {
			for _, nbFacei := range pf[pointi] {
				if nbFacei == facei {
					continue
				}
				mask, ok := shared[nbFacei]
				if !ok {
					mask = make([]bool, len(f))
					shared[nbFacei] = mask
				}
				mask[fp] = true
			}
		}
		for nbFacei, mask := range shared {
			n := 0
			for _, b := range mask {
				if b {
					n++
				}
			}
			if n == len(f) && len(m.faces[nbFacei]) == len(f) {
				set.Insert(facei)
				nDuplicate++
				continue
			}
			if n >= 2 && runs(mask) > 1 {
				set.Insert(facei)
				nBadConnect++
			}
		}
	}
	dup := m.reportCount(report, nDuplicate, "Number of identical duplicate faces", "No duplicate faces.")
	con := m.reportCount(report, nBadConnect, "Number of faces with non-consecutive shared points",
		"Face-face connectivity OK.")
	return dup || con
}

// runs counts the cyclic runs of set entries
func runs(mask []bool) (n int) {
	for i, b := range mask {
		prev := mask[(i+len(mask)-1)%len(mask)]
		if b && !prev {
			n++
		}
	}
	return
}

// CheckTopology runs all topological checks
func (m *Mesh) CheckTopology(report bool) bool {
	var nFailed int
	if m.CheckPoints(report, nil) {
		nFailed++
	}
	if m.CheckUpperTriangular(report, nil) {
		nFailed++
	}
	if m.CheckCellsZipUp(report, nil) {
		nFailed++
	}
	if m.CheckFaceVertices(report, nil) {
		nFailed++
	}
	if m.CheckFaceFaces(report, nil) {
		nFailed++
	}
	if m.boundary != nil && m.checkBoundaryDefinition(report) {
		nFailed++
	}
	if m.pointZones.CheckDefinition(report) || m.faceZones.CheckDefinition(report) ||
		m.cellZones.CheckDefinition(report) {
		nFailed++
	}
	if nFailed > 0 {
		if report {
			m.logger.Printf("    Failed %d mesh topology checks.", nFailed)
		}
		return true
	}
	if report {
		m.logger.Printf("    Mesh topology OK.")
	}
	return false
}

// checkBoundaryDefinition checks that cyclic patches name a partner of the same size, processor
// patches name a valid rank, and all ranks hold coupled patches in matching sizes
func (m *Mesh) checkBoundaryDefinition(report bool) bool {
	var nBad int
	for _, p := range m.boundary.Patches() {
		switch p.Type {
		case types.PT_Cyclic:
			partner := m.boundary.FindPatchID(p.NeighbourPatch)
			if partner < 0 || m.boundary.At(partner).Size != p.Size {
				if report {
					m.logger.Printf("cyclic patch %s: partner %q missing or of different size", p.Name, p.NeighbourPatch)
				}
				nBad++
			}
		case types.PT_Processor:
			if p.NeighbProcNo < 0 || p.NeighbProcNo >= m.comm.Size() || p.NeighbProcNo == m.comm.Rank() {
				if report {
					m.logger.Printf("processor patch %s: invalid neighbour rank %d", p.Name, p.NeighbProcNo)
				}
				nBad++
			}
		}
	}
	return m.reportCount(report, nBad, "Number of invalid coupled patches", "Boundary definition OK.")
}
