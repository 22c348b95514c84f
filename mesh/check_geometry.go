package mesh

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
	"github.com/notargets/polymesh/utils"
)

func radToDeg(r float64) float64 { return r * 180 / math.Pi }
func degToRad(d float64) float64 { return d * math.Pi / 180 }

// stats logs the global minimum, maximum and mean of a per entity measure
func (m *Mesh) stats(report bool, name string, v []float64) {
	var (
		lo, hi = GREAT, -GREAT
		sum    float64
	)
	if len(v) > 0 {
		lo, hi, sum = floats.Min(v), floats.Max(v), floats.Sum(v)
	}
	lo, hi = utils.ReduceMin(m.comm, lo), utils.ReduceMax(m.comm, hi)
	sum = utils.ReduceSum(m.comm, sum)
	n := utils.ReduceSum(m.comm, len(v))
	if report && n > 0 {
		m.logger.Printf("    %s: minimum %g maximum %g average %g", name, lo, hi, sum/float64(n))
	}
}

// neighbourCellCentres returns for every boundary face the centre of the cell across a processor
// patch. Other boundary faces get the face centre.
func neighbourCellCentres(m *Mesh, fCtrs, cellCtrs []r3.Vec) (nbrCc []r3.Vec, isProc []bool) {
	var (
		nInt  = m.NInternalFaces()
		nBdry = m.NFaces() - nInt
		ownCc = make([]r3.Vec, nBdry)
	)
	isProc = make([]bool, nBdry)
	for b := range ownCc {
		ownCc[b] = cellCtrs[m.owner[nInt+b]]
	}
	for _, p := range m.boundary.Patches() {
		if p.Type != types.PT_Processor {
			continue
		}
		start, end := p.Range()
		for facei := start; facei < end; facei++ {
			isProc[facei-nInt] = true
		}
	}
	nbrCc = NeighbourBoundaryValues(m, ownCc, r3.Vec{})
	for b := range nbrCc {
		if !isProc[b] {
			nbrCc[b] = fCtrs[nInt+b]
		}
	}
	return
}

// CheckClosedBoundary checks that the non coupled boundary encloses a volume, the boundary area
// vectors must sum to zero
func (m *Mesh) CheckClosedBoundary(report bool) bool {
	var (
		areas  = m.FaceAreas()
		sum    r3.Vec
		sumMag float64
	)
	for _, p := range m.boundary.Patches() {
		if p.Coupled() {
			continue
		}
		start, end := p.Range()
		for facei := start; facei < end; facei++ {
			sum = r3.Add(sum, areas[facei])
			sumMag += r3.Norm(areas[facei])
		}
	}
	sum = r3.Vec{X: utils.ReduceSum(m.comm, sum.X), Y: utils.ReduceSum(m.comm, sum.Y),
		Z: utils.ReduceSum(m.comm, sum.Z)}
	sumMag = utils.ReduceSum(m.comm, sumMag)
	if cmptMax(cmptMag(sum)) > m.params.ClosedThreshold*sumMag {
		if report {
			m.logger.Printf(" ***Boundary openness %v, possible hole in boundary description.",
				r3.Scale(1./(sumMag+VSMALL), sum))
		}
		return true
	}
	if report {
		m.logger.Printf("    Boundary openness %v OK.", r3.Scale(1./(sumMag+VSMALL), sum))
	}
	return false
}

func cmptMag(v r3.Vec) r3.Vec      { return r3.Vec{X: math.Abs(v.X), Y: math.Abs(v.Y), Z: math.Abs(v.Z)} }
func cmptMax(v r3.Vec) float64     { return math.Max(v.X, math.Max(v.Y, v.Z)) }
func cmptSum(v r3.Vec) float64     { return v.X + v.Y + v.Z }
func cmpt(v r3.Vec, i int) float64 { return [3]float64{v.X, v.Y, v.Z}[i] }

// CheckClosedCells finds cells whose face area vectors do not sum to zero, and cells with an
// aspect ratio above the threshold
func (m *Mesh) CheckClosedCells(report bool, set, aspectSet types.LabelSet) bool {
	var (
		areas     = m.FaceAreas()
		vols      = m.CellVolumes()
		sumClosed = make([]r3.Vec, m.nCells)
		sumMag    = make([]r3.Vec, m.nCells)
		aspect    = make([]float64, m.nCells)
		nOpen     int
		nAspect   int
	)
	for facei, a := range areas {
		own := m.owner[facei]
		sumClosed[own] = r3.Add(sumClosed[own], a)
		sumMag[own] = r3.Add(sumMag[own], cmptMag(a))
		if m.IsInternalFace(facei) {
			nei := m.neighbour[facei]
			sumClosed[nei] = r3.Sub(sumClosed[nei], a)
			sumMag[nei] = r3.Add(sumMag[nei], cmptMag(a))
		}
	}
	for celli := range sumClosed {
		var maxOpenness float64
		for c := 0; c < 3; c++ {
			maxOpenness = math.Max(maxOpenness,
				math.Abs(cmpt(sumClosed[celli], c))/(cmpt(sumMag[celli], c)+VSMALL))
		}
		if maxOpenness > m.params.ClosedThreshold {
			set.Insert(celli)
			nOpen++
		}
		aspect[celli] = (1. / 6.) * cmptSum(sumMag[celli]) / math.Pow(math.Max(vols[celli], VSMALL), 2./3.)
		if aspect[celli] > m.params.AspectThreshold {
			aspectSet.Insert(celli)
			nAspect++
		}
	}
	m.stats(report, "Cell aspect ratio", aspect)
	open := m.reportCount(report, nOpen, "Open cells found, number of cells", "Cell openness OK.")
	high := m.reportCount(report, nAspect, "High aspect ratio cells found, number of cells",
		"Cell aspect ratio OK.")
	return open || high
}

// CheckFaceAreas finds faces with zero area
func (m *Mesh) CheckFaceAreas(report bool, set types.LabelSet) bool {
	return m.checkFaceAreas(m.FaceAreas(), report, set)
}

func (m *Mesh) checkFaceAreas(areas []r3.Vec, report bool, set types.LabelSet) bool {
	var (
		mag  = make([]float64, len(areas))
		nBad int
	)
	for facei, a := range areas {
		mag[facei] = r3.Norm(a)
		if mag[facei] < VSMALL {
			set.Insert(facei)
			nBad++
		}
	}
	m.stats(report, "Face area", mag)
	return m.reportCount(report, nBad, "Zero or negative face area detected, number of faces",
		"Face area check OK.")
}

// CheckCellVolumes finds cells with zero or negative volume
func (m *Mesh) CheckCellVolumes(report bool, set types.LabelSet) bool {
	return m.checkCellVolumes(m.CellVolumes(), report, set)
}

func (m *Mesh) checkCellVolumes(vols []float64, report bool, set types.LabelSet) bool {
	var nBad int
	for celli, v := range vols {
		if v < VSMALL {
			set.Insert(celli)
			nBad++
		}
	}
	total := utils.ReduceSum(m.comm, floats.Sum(vols))
	if report {
		m.logger.Printf("    Total volume: %g", total)
	}
	m.stats(report, "Cell volume", vols)
	return m.reportCount(report, nBad, "Zero or negative cell volume detected, number of cells",
		"Cell volume check OK.")
}

// faceOrthogonality is the cosine of the angle between the face normal and the line joining the
// cell centres across the face, 1 on non coupled boundary faces
func faceOrthogonality(m *Mesh, fCtrs, fAreas, cellCtrs []r3.Vec) (ortho []float64) {
	var (
		nInt          = m.NInternalFaces()
		nbrCc, isProc = neighbourCellCentres(m, fCtrs, cellCtrs)
	)
	ortho = make([]float64, m.NFaces())
	cosAngle := func(d, s r3.Vec) float64 {
		return r3.Dot(d, s) / (r3.Norm(d)*r3.Norm(s) + VSMALL)
	}
	for facei := range ortho {
		switch {
		case facei < nInt:
			ortho[facei] = cosAngle(r3.Sub(cellCtrs[m.neighbour[facei]], cellCtrs[m.owner[facei]]), fAreas[facei])
		case isProc[facei-nInt]:
			ortho[facei] = cosAngle(r3.Sub(nbrCc[facei-nInt], cellCtrs[m.owner[facei]]), fAreas[facei])
		default:
			ortho[facei] = 1
		}
	}
	return
}

// CheckFaceOrthogonality reports faces whose non-orthogonality exceeds the threshold and fails on
// faces beyond 90 degrees
func (m *Mesh) CheckFaceOrthogonality(report bool, set types.LabelSet) bool {
	return m.checkFaceOrthogonality(m.FaceCentres(), m.FaceAreas(), m.CellCentres(), report, set)
}

func (m *Mesh) checkFaceOrthogonality(fCtrs, fAreas, cellCtrs []r3.Vec, report bool, set types.LabelSet) bool {
	var (
		ortho    = faceOrthogonality(m, fCtrs, fAreas, cellCtrs)
		severe   = math.Cos(degToRad(m.params.NonOrthThreshold))
		nSevere  int
		nError   int
		minDDotS = GREAT
		sumDDotS float64
		nSummed  int
	)
	for facei, o := range ortho {
		if o < severe {
			set.Insert(facei)
			if o > SMALL {
				nSevere++
			} else {
				if report && nError == 0 {
					m.logger.Printf("Severe non-orthogonality for face %d: angle %g deg",
						facei, radToDeg(math.Acos(clamp(o, -1, 1))))
				}
				nError++
			}
		}
		if m.IsInternalFace(facei) || m.isMasterCoupledFace(facei) {
			minDDotS = math.Min(minDDotS, o)
			sumDDotS += o
			nSummed++
		}
	}
	minDDotS = utils.ReduceMin(m.comm, minDDotS)
	sumDDotS = utils.ReduceSum(m.comm, sumDDotS)
	nSummed = utils.ReduceSum(m.comm, nSummed)
	nSevere = utils.ReduceSum(m.comm, nSevere)
	if report {
		if nSummed > 0 {
			m.logger.Printf("    Mesh non-orthogonality Max: %g average: %g",
				radToDeg(math.Acos(clamp(minDDotS, -1, 1))),
				radToDeg(math.Acos(clamp(sumDDotS/float64(nSummed), -1, 1))))
		}
		if nSevere > 0 {
			m.logger.Printf("   *Number of severely non-orthogonal (> %g degrees) faces: %d",
				m.params.NonOrthThreshold, nSevere)
		}
	}
	return m.reportCount(report, nError, "Number of non-orthogonality errors", "Non-orthogonality check OK.")
}

// isMasterCoupledFace picks one side of every processor face for statistics, the side on the lower rank
func (m *Mesh) isMasterCoupledFace(facei int) bool {
	patchi := m.boundary.WhichPatch(facei)
	if patchi < 0 {
		return false
	}
	p := m.boundary.At(patchi)
	return p.Type == types.PT_Processor && p.MyProcNo < p.NeighbProcNo
}

// CheckFacePyramids finds faces forming an inverted pyramid with the centre of the owner or
// neighbour cell
func (m *Mesh) CheckFacePyramids(report bool, set types.LabelSet) bool {
	return m.checkFacePyramids(m.points, m.CellCentres(), report, set)
}

func (m *Mesh) checkFacePyramids(points, cellCtrs []r3.Vec, report bool, set types.LabelSet) bool {
	var (
		minPyrVol = m.params.MinPyrVol
		nBad      int
	)
	for facei, f := range m.faces {
		fc, fa := f.centreAndArea(points)
		ownVol := r3.Dot(fa, r3.Sub(fc, cellCtrs[m.owner[facei]])) / 3.
		bad := ownVol < minPyrVol
		if m.IsInternalFace(facei) {
			neiVol := r3.Dot(fa, r3.Sub(cellCtrs[m.neighbour[facei]], fc)) / 3.
			bad = bad || neiVol < minPyrVol
		}
		if bad {
			set.Insert(facei)
			nBad++
		}
	}
	return m.reportCount(report, nBad, "Error in face pyramids, faces pointing the wrong way",
		"Face pyramids OK.")
}

// faceSkewness measures the distance between the face centre and the point where the line joining
// the cell centres crosses the face, normalised by the face size in that direction
func faceSkewness(m *Mesh, points, fCtrs, fAreas, cellCtrs []r3.Vec) (skew []float64) {
	var (
		nInt          = m.NInternalFaces()
		nbrCc, isProc = neighbourCellCentres(m, fCtrs, cellCtrs)
	)
	skew = make([]float64, m.NFaces())
	for facei, f := range m.faces {
		var (
			ownCc = cellCtrs[m.owner[facei]]
			cpf   = r3.Sub(fCtrs[facei], ownCc)
			d     r3.Vec
			scale float64
		)
		switch {
		case facei < nInt:
			d, scale = r3.Sub(cellCtrs[m.neighbour[facei]], ownCc), 0.2
		case isProc[facei-nInt]:
			d, scale = r3.Sub(nbrCc[facei-nInt], ownCc), 0.2
		default:
			normal := r3.Scale(1./(r3.Norm(fAreas[facei])+ROOTVSMALL), fAreas[facei])
			d, scale = r3.Scale(r3.Dot(normal, cpf), normal), 0.4
		}
		sv := r3.Sub(cpf, r3.Scale(r3.Dot(fAreas[facei], cpf)/(r3.Dot(fAreas[facei], d)+ROOTVSMALL), d))
		svHat := r3.Scale(1./(r3.Norm(sv)+ROOTVSMALL), sv)
		fd := scale*r3.Norm(d) + ROOTVSMALL
		for _, pointi := range f {
			fd = math.Max(fd, math.Abs(r3.Dot(svHat, r3.Sub(points[pointi], fCtrs[facei]))))
		}
		skew[facei] = r3.Norm(sv) / fd
	}
	return
}

func (m *Mesh) CheckFaceSkewness(report bool, set types.LabelSet) bool {
	var (
		skew = faceSkewness(m, m.points, m.FaceCentres(), m.FaceAreas(), m.CellCentres())
		nBad int
	)
	for facei, s := range skew {
		if s > m.params.SkewThreshold {
			set.Insert(facei)
			nBad++
		}
	}
	var maxSkew float64
	if len(skew) > 0 {
		maxSkew = floats.Max(skew)
	}
	maxSkew = utils.ReduceMax(m.comm, maxSkew)
	if report {
		m.logger.Printf("    Max skewness = %g", maxSkew)
	}
	return m.reportCount(report, nBad, "Max skewness exceeded, number of severely skew faces",
		"Max skewness OK.")
}

// CheckFaceAngles finds faces with a concave angle between consecutive edges beyond MaxConcave
func (m *Mesh) CheckFaceAngles(report bool, set types.LabelSet) bool {
	var (
		maxSin     = math.Sin(degToRad(m.params.MaxConcave))
		areas      = m.FaceAreas()
		maxEdgeSin float64
		nConcave   int
	)
	for facei, f := range m.faces {
		var (
			n          = len(f)
			faceNormal = r3.Scale(1./(r3.Norm(areas[facei])+VSMALL), areas[facei])
			ePrev      = r3.Sub(m.points[f[0]], m.points[f[n-1]])
			magEPrev   = r3.Norm(ePrev)
			concave    bool
		)
		ePrev = r3.Scale(1./(magEPrev+VSMALL), ePrev)
		for fp0 := 0; fp0 < n; fp0++ {
			var (
				e10    = r3.Sub(m.points[f[(fp0+1)%n]], m.points[f[fp0]])
				magE10 = r3.Norm(e10)
			)
			e10 = r3.Scale(1./(magE10+VSMALL), e10)
			if magEPrev > SMALL && magE10 > SMALL {
				edgeNormal := r3.Cross(ePrev, e10)
				magEdgeNormal := r3.Norm(edgeNormal)
				if magEdgeNormal >= maxSin {
					edgeNormal = r3.Scale(1./magEdgeNormal, edgeNormal)
					if r3.Dot(edgeNormal, faceNormal) < SMALL {
						concave = true
						maxEdgeSin = math.Max(maxEdgeSin, magEdgeNormal)
					}
				}
			}
			ePrev, magEPrev = e10, magE10
		}
		if concave {
			set.Insert(facei)
			nConcave++
		}
	}
	maxEdgeSin = utils.ReduceMax(m.comm, maxEdgeSin)
	if report && maxEdgeSin > 0 {
		m.logger.Printf("    Largest concave angle %g deg", radToDeg(math.Asin(math.Min(1, maxEdgeSin))))
	}
	return m.reportCount(report, nConcave, "Number of faces with concave angles", "All angles in faces OK.")
}

// CheckFaceFlatness finds faces whose area is much smaller than the sum of their fan triangle areas
func (m *Mesh) CheckFaceFlatness(report bool, set types.LabelSet) bool {
	var (
		centres  = m.FaceCentres()
		areas    = m.FaceAreas()
		flatness []float64
		nBad     int
	)
	for facei, f := range m.faces {
		if len(f) <= 3 {
			continue
		}
		var sumA float64
		for fp := range f {
			tri := r3.Cross(r3.Sub(m.points[f[fp]], centres[facei]),
				r3.Sub(m.points[f[(fp+1)%len(f)]], centres[facei]))
			sumA += 0.5 * r3.Norm(tri)
		}
		if sumA < VSMALL {
			continue
		}
		fl := r3.Norm(areas[facei]) / sumA
		flatness = append(flatness, fl)
		if fl < m.params.MinFlatness {
			set.Insert(facei)
			nBad++
		}
	}
	m.stats(report, "Face flatness (1 = flat, 0 = butterfly)", flatness)
	return m.reportCount(report, nBad, "Number of faces with flatness below threshold",
		"All face flatness OK.")
}

// CheckEdgeLength marks the points of face edges shorter than MinEdgeLength
func (m *Mesh) CheckEdgeLength(report bool, set types.LabelSet) bool {
	var (
		minLenSqr = sqr(m.params.MinEdgeLength)
		minLen    = GREAT
		nBad      int
	)
	for _, e := range m.Edges() {
		l2 := magSqr(e.Vec(m.points))
		minLen = math.Min(minLen, l2)
		if l2 < minLenSqr {
			set.Insert(e[0])
			set.Insert(e[1])
			nBad++
		}
	}
	minLen = utils.ReduceMin(m.comm, minLen)
	if report && minLen < GREAT {
		m.logger.Printf("    Minimum edge length %g", math.Sqrt(minLen))
	}
	return m.reportCount(report, nBad, "Number of edges shorter than the minimum edge length",
		"Edge lengths OK.")
}

// CheckCellDeterminant finds cells whose internal faces do not span all three directions
func (m *Mesh) CheckCellDeterminant(report bool, set types.LabelSet) bool {
	var (
		areas = m.FaceAreas()
		dets  = make([]float64, m.nCells)
		nBad  int
	)
	internalOrCoupled := func(facei int) bool {
		if m.IsInternalFace(facei) {
			return true
		}
		return m.boundary.At(m.boundary.WhichPatch(facei)).Coupled()
	}
	for celli, cFaces := range m.Cells() {
		var (
			avgArea float64
			nFaces  int
		)
		for _, facei := range cFaces {
			if internalOrCoupled(facei) {
				avgArea += r3.Norm(areas[facei])
				nFaces++
			}
		}
		if nFaces > 0 && avgArea > VSMALL {
			avgArea /= float64(nFaces)
			t := mat.NewSymDense(3, nil)
			for _, facei := range cFaces {
				if !internalOrCoupled(facei) {
					continue
				}
				a := r3.Scale(1./avgArea, areas[facei])
				av := mat.NewVecDense(3, []float64{a.X, a.Y, a.Z})
				t.SymRankOne(t, 1, av)
			}
			dets[celli] = math.Abs(mat.Det(t))
		}
		if dets[celli] < m.params.MinDeterminant {
			set.Insert(celli)
			nBad++
		}
	}
	m.stats(report, "Cell determinant (wellposedness)", dets)
	return m.reportCount(report, nBad, "Cells with small determinant found, number of cells",
		"Cell determinant check OK.")
}

// CheckFaceWeight finds faces whose linear interpolation weight is below MinFaceWeight
func (m *Mesh) CheckFaceWeight(report bool, set types.LabelSet) bool {
	var (
		fCtrs         = m.FaceCentres()
		fAreas        = m.FaceAreas()
		cellCtrs      = m.CellCentres()
		nInt          = m.NInternalFaces()
		nbrCc, isProc = neighbourCellCentres(m, fCtrs, cellCtrs)
		weights       []float64
		nBad          int
	)
	for facei := range m.faces {
		var neiCc r3.Vec
		switch {
		case facei < nInt:
			neiCc = cellCtrs[m.neighbour[facei]]
		case isProc[facei-nInt]:
			neiCc = nbrCc[facei-nInt]
		default:
			continue
		}
		var (
			dOwn = math.Abs(r3.Dot(fAreas[facei], r3.Sub(fCtrs[facei], cellCtrs[m.owner[facei]])))
			dNei = math.Abs(r3.Dot(fAreas[facei], r3.Sub(neiCc, fCtrs[facei])))
			w    = math.Min(dNei, dOwn) / (dOwn + dNei + VSMALL)
		)
		weights = append(weights, w)
		if w < m.params.MinFaceWeight {
			set.Insert(facei)
			nBad++
		}
	}
	m.stats(report, "Face interpolation weight", weights)
	return m.reportCount(report, nBad, "Faces with small interpolation weight found, number of faces",
		"Face interpolation weight check OK.")
}

// CheckVolRatio finds internal faces between cells whose volumes differ by more than MinVolRatio
func (m *Mesh) CheckVolRatio(report bool, set types.LabelSet) bool {
	var (
		vols   = m.CellVolumes()
		ratios = make([]float64, m.NInternalFaces())
		nBad   int
	)
	for facei, nei := range m.neighbour {
		vo, vn := vols[m.owner[facei]], vols[nei]
		ratios[facei] = math.Min(vo, vn) / (math.Max(vo, vn) + VSMALL)
		if ratios[facei] < m.params.MinVolRatio {
			set.Insert(facei)
			nBad++
		}
	}
	m.stats(report, "Face volume ratio", ratios)
	return m.reportCount(report, nBad, "Faces with small volume ratio found, number of faces",
		"Face volume ratio check OK.")
}

// CheckGeometry runs the geometric checks, the optional ones only when AllGeometry is set
func (m *Mesh) CheckGeometry(report bool) bool {
	checks := []func() bool{
		func() bool { return m.CheckClosedBoundary(report) },
		func() bool { return m.CheckClosedCells(report, nil, nil) },
		func() bool { return m.CheckFaceAreas(report, nil) },
		func() bool { return m.CheckCellVolumes(report, nil) },
		func() bool { return m.CheckFaceOrthogonality(report, nil) },
		func() bool { return m.CheckFacePyramids(report, nil) },
		func() bool { return m.CheckFaceSkewness(report, nil) },
	}
	if m.params.AllGeometry {
		checks = append(checks,
			func() bool { return m.CheckFaceAngles(report, nil) },
			func() bool { return m.CheckFaceFlatness(report, nil) },
			func() bool { return m.CheckPointNearness(report, nil) },
			func() bool { return m.CheckEdgeLength(report, nil) },
			func() bool { return m.CheckCellDeterminant(report, nil) },
			func() bool { return m.CheckFaceWeight(report, nil) },
			func() bool { return m.CheckVolRatio(report, nil) },
		)
	}
	var nFailed int
	for _, check := range checks {
		if check() {
			nFailed++
		}
	}
	if nFailed > 0 {
		if report {
			m.logger.Printf("    Failed %d mesh geometry checks.", nFailed)
		}
		return true
	}
	if report {
		m.logger.Printf("    Mesh geometry OK.")
	}
	return false
}

// CheckMesh runs the topological and geometric checks
func (m *Mesh) CheckMesh(report bool) bool {
	topo := m.CheckTopology(report)
	geom := m.CheckGeometry(report)
	if report {
		if topo || geom {
			m.logger.Printf("Failed mesh checks.")
		} else {
			m.logger.Printf("Mesh OK.")
		}
	}
	return topo || geom
}

// CheckMeshMotion checks the mesh that would result from moving to newPoints without moving it
func (m *Mesh) CheckMeshMotion(newPoints []r3.Vec, report bool) bool {
	mismatch := len(newPoints) != m.NPoints()
	if mismatch && report {
		m.logger.Printf(" ***Motion has %d points, mesh has %d", len(newPoints), m.NPoints())
	}
	if utils.ReduceOr(m.comm, mismatch) {
		return true
	}
	var (
		fg  = faceCentresAndAreas(newPoints, m.faces)
		cg  = m.cellCentresAndVolumes(newPoints, fg.centres, fg.areas)
		err bool
	)
	err = m.checkCellVolumes(cg.volumes, report, nil) || err
	err = m.checkFaceAreas(fg.areas, report, nil) || err
	err = m.checkFacePyramids(newPoints, cg.centres, report, nil) || err
	err = m.checkFaceOrthogonality(fg.centres, fg.areas, cg.centres, report, nil) || err
	if !err && report {
		m.logger.Printf("Mesh motion check OK.")
	}
	return err
}
