package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/utils"
)

type faceGeometry struct {
	centres, areas []r3.Vec
}

type cellGeometry struct {
	centres []r3.Vec
	volumes []float64
}

func (m *Mesh) FaceCentres() []r3.Vec { return m.faceGeometry().centres }

// FaceAreas returns the face area vectors, pointing out of the owner cell
func (m *Mesh) FaceAreas() []r3.Vec { return m.faceGeometry().areas }

func (m *Mesh) CellCentres() []r3.Vec { return m.cellGeometry().centres }

func (m *Mesh) CellVolumes() []float64 { return m.cellGeometry().volumes }

func (m *Mesh) HasFaceGeometry() bool { return m.faceGeom.has() }

func (m *Mesh) HasCellGeometry() bool { return m.cellGeom.has() }

func (m *Mesh) MagFaceAreas() (mag []float64) {
	areas := m.FaceAreas()
	mag = make([]float64, len(areas))
	for i, a := range areas {
		mag[i] = r3.Norm(a)
	}
	return
}

// EdgeVectors returns the vector from start to end point of every edge
func (m *Mesh) EdgeVectors() (ev []r3.Vec) {
	edges := m.Edges()
	ev = make([]r3.Vec, len(edges))
	for i, e := range edges {
		ev[i] = e.Vec(m.points)
	}
	return
}

// BoundBox returns the extent of the points, reduced over all ranks
func (m *Mesh) BoundBox() (bb r3.Box) {
	var (
		lo = r3.Vec{X: GREAT, Y: GREAT, Z: GREAT}
		hi = r3.Vec{X: -GREAT, Y: -GREAT, Z: -GREAT}
	)
	for _, p := range m.points {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	c := m.comm
	bb.Min = r3.Vec{X: utils.ReduceMin(c, lo.X), Y: utils.ReduceMin(c, lo.Y), Z: utils.ReduceMin(c, lo.Z)}
	bb.Max = r3.Vec{X: utils.ReduceMax(c, hi.X), Y: utils.ReduceMax(c, hi.Y), Z: utils.ReduceMax(c, hi.Z)}
	return
}

func (m *Mesh) faceGeometry() faceGeometry {
	return m.faceGeom.get(func() faceGeometry { return faceCentresAndAreas(m.points, m.faces) })
}

func (m *Mesh) cellGeometry() cellGeometry {
	return m.cellGeom.get(func() cellGeometry {
		fg := m.faceGeometry()
		return m.cellCentresAndVolumes(m.points, fg.centres, fg.areas)
	})
}

func faceCentresAndAreas(points []r3.Vec, faces []Face) (fg faceGeometry) {
	fg.centres = make([]r3.Vec, len(faces))
	fg.areas = make([]r3.Vec, len(faces))
	for facei, f := range faces {
		fg.centres[facei], fg.areas[facei] = f.centreAndArea(points)
	}
	return
}

// cellCentresAndVolumes computes the cell geometry for an arbitrary point set on the mesh topology.
// Faces are visited in ascending order so the accumulation is reproducible.
func (m *Mesh) cellCentresAndVolumes(points []r3.Vec, fCtrs, fAreas []r3.Vec) (cg cellGeometry) {
	var (
		nCells     = m.nCells
		cEst       = make([]r3.Vec, nCells)
		sumMagA    = make([]float64, nCells)
		nCellFaces = make([]int, nCells)
		degenerate = make([]bool, nCells)
	)
	cg.centres = make([]r3.Vec, nCells)
	cg.volumes = make([]float64, nCells)

	addEst := func(celli, facei int, magA float64) {
		cEst[celli] = r3.Add(cEst[celli], r3.Scale(magA, fCtrs[facei]))
		sumMagA[celli] += magA
		nCellFaces[celli]++
		if magA < m.areaSwitch {
			degenerate[celli] = true
		}
	}
	for facei := range m.faces {
		magA := r3.Norm(fAreas[facei])
		addEst(m.owner[facei], facei, magA)
		if m.IsInternalFace(facei) {
			addEst(m.neighbour[facei], facei, magA)
		}
	}
	for celli := range cEst {
		if sumMagA[celli] > VSMALL {
			cEst[celli] = r3.Scale(1./sumMagA[celli], cEst[celli])
			continue
		}
		// No area to weight with, plain average of the face centres
		cEst[celli] = r3.Vec{}
		for _, facei := range m.CellsOf(celli, nil) {
			cEst[celli] = r3.Add(cEst[celli], fCtrs[facei])
		}
		if nCellFaces[celli] > 0 {
			cEst[celli] = r3.Scale(1./float64(nCellFaces[celli]), cEst[celli])
		}
	}

	if m.centreMode == FaceWeighted {
		copy(cg.centres, cEst)
	}

	// pyr3Vol is three times the signed pyramid volume, pc the pyramid centroid
	addPyr := func(celli, facei int, sign float64) {
		pyr3Vol := sign * r3.Dot(fAreas[facei], r3.Sub(fCtrs[facei], cEst[celli]))
		pc := r3.Add(r3.Scale(0.75, fCtrs[facei]), r3.Scale(0.25, cEst[celli]))
		if m.centreMode == Geometric {
			cg.centres[celli] = r3.Add(cg.centres[celli], r3.Scale(pyr3Vol, pc))
		}
		cg.volumes[celli] += pyr3Vol
	}
	for facei := range m.faces {
		addPyr(m.owner[facei], facei, 1)
		if m.IsInternalFace(facei) {
			addPyr(m.neighbour[facei], facei, -1)
		}
	}

	for celli := range cg.volumes {
		switch {
		case m.centreMode == FaceWeighted:
		case degenerate[celli]:
			cg.centres[celli] = nodalAverage(points, m.CellPointsOf(celli, nil))
		case math.Abs(cg.volumes[celli]) > VSMALL:
			cg.centres[celli] = r3.Scale(1./cg.volumes[celli], cg.centres[celli])
		default:
			cg.centres[celli] = cEst[celli]
		}
		cg.volumes[celli] /= 3.
	}
	return
}

func nodalAverage(points []r3.Vec, cellPoints []int) (c r3.Vec) {
	if len(cellPoints) == 0 {
		return
	}
	for _, pointi := range cellPoints {
		c = r3.Add(c, points[pointi])
	}
	return r3.Scale(1./float64(len(cellPoints)), c)
}
