package mesh

import (
	"slices"
)

/*
Adjacency tables. Every table has three accessors:

	Q()            the full table, computed on first use and cached
	QOf(i, buf)    one row. The cached row is returned when the table exists, otherwise the row is
	               built in buf without caching the table (lower level tables may be cached)
	HasQ()         whether the full table is cached

Rows built on the fly hold the same labels in the same order as the table rows.
*/

// invert turns "i references list[i]" into "j is referenced by i" for targets [0,n)
func invert(list [][]int, n int) (inv [][]int) {
	count := make([]int, n)
	for _, row := range list {
		for _, j := range row {
			count[j]++
		}
	}
	inv = make([][]int, n)
	for j := range inv {
		inv[j] = make([]int, 0, count[j])
	}
	for i, row := range list {
		for _, j := range row {
			inv[j] = append(inv[j], i)
		}
	}
	return
}

func sortedUnique(s []int) []int {
	slices.Sort(s)
	return slices.Compact(s)
}

// Cells returns the faces of every cell in ascending face order
func (m *Mesh) Cells() [][]int { return m.cells.get(m.calcCells) }
func (m *Mesh) HasCells() bool { return m.cells.has() }

func (m *Mesh) CellsOf(celli int, buf []int) []int {
	if m.cells.has() {
		return m.cells.val[celli]
	}
	buf = buf[:0]
	for facei, own := range m.owner {
		if own == celli || (facei < len(m.neighbour) && m.neighbour[facei] == celli) {
			buf = append(buf, facei)
		}
	}
	return buf
}

func (m *Mesh) calcCells() (cells [][]int) {
	count := make([]int, m.nCells)
	for _, own := range m.owner {
		count[own]++
	}
	for _, nei := range m.neighbour {
		count[nei]++
	}
	cells = make([][]int, m.nCells)
	for celli := range cells {
		cells[celli] = make([]int, 0, count[celli])
	}
	for facei, own := range m.owner {
		cells[own] = append(cells[own], facei)
		if facei < len(m.neighbour) {
			cells[m.neighbour[facei]] = append(cells[m.neighbour[facei]], facei)
		}
	}
	return
}

// PointFaces returns the faces using every point in ascending face order
func (m *Mesh) PointFaces() [][]int { return m.pointFaces.get(m.calcPointFaces) }
func (m *Mesh) HasPointFaces() bool { return m.pointFaces.has() }

func (m *Mesh) PointFacesOf(pointi int, buf []int) []int {
	if m.pointFaces.has() {
		return m.pointFaces.val[pointi]
	}
	buf = buf[:0]
	for facei, f := range m.faces {
		if f.Which(pointi) >= 0 {
			buf = append(buf, facei)
		}
	}
	return buf
}

func (m *Mesh) calcPointFaces() [][]int {
	faces := make([][]int, len(m.faces))
	for i, f := range m.faces {
		faces[i] = f
	}
	return invert(faces, len(m.points))
}

// EdgeFaces returns the faces using every edge in ascending face order
func (m *Mesh) EdgeFaces() [][]int { return m.edgeFaces.get(m.calcEdgeFaces) }
func (m *Mesh) HasEdgeFaces() bool { return m.edgeFaces.has() }

func (m *Mesh) EdgeFacesOf(edgei int, buf []int) []int {
	if m.edgeFaces.has() {
		return m.edgeFaces.val[edgei]
	}
	e := m.Edges()[edgei]
	buf = buf[:0]
	// Faces using the edge are the faces of its start point holding it as a face edge
	for _, facei := range m.PointFacesOf(e[0], nil) {
		f := m.faces[facei]
		for k := range f {
			if fe := f.FaceEdge(k); fe == e || fe.Reversed() == e {
				buf = append(buf, facei)
				break
			}
		}
	}
	return buf
}

func (m *Mesh) calcEdgeFaces() [][]int {
	return invert(m.FaceEdges(), m.NEdges())
}

// PointEdges returns the edges using every point in ascending edge order
func (m *Mesh) PointEdges() [][]int { return m.pointEdges.get(m.calcPointEdges) }
func (m *Mesh) HasPointEdges() bool { return m.pointEdges.has() }

func (m *Mesh) PointEdgesOf(pointi int, buf []int) []int {
	if m.pointEdges.has() {
		return m.pointEdges.val[pointi]
	}
	buf = buf[:0]
	for edgei, e := range m.Edges() {
		if e[0] == pointi || e[1] == pointi {
			buf = append(buf, edgei)
		}
	}
	return buf
}

func (m *Mesh) calcPointEdges() [][]int {
	edges := m.Edges()
	list := make([][]int, len(edges))
	for i := range edges {
		list[i] = edges[i][:]
	}
	return invert(list, len(m.points))
}

// PointPoints returns the points connected to every point by an edge, in point edge order
func (m *Mesh) PointPoints() [][]int { return m.pointPoints.get(m.calcPointPoints) }
func (m *Mesh) HasPointPoints() bool { return m.pointPoints.has() }

func (m *Mesh) PointPointsOf(pointi int, buf []int) []int {
	if m.pointPoints.has() {
		return m.pointPoints.val[pointi]
	}
	var (
		edges = m.Edges()
		pe    = m.PointEdgesOf(pointi, nil)
	)
	buf = buf[:0]
	for _, edgei := range pe {
		buf = append(buf, edges[edgei].Other(pointi))
	}
	return buf
}

func (m *Mesh) calcPointPoints() (pp [][]int) {
	var (
		edges = m.Edges()
		pe    = m.PointEdges()
	)
	pp = make([][]int, len(m.points))
	for pointi, row := range pe {
		pp[pointi] = make([]int, len(row))
		for i, edgei := range row {
			pp[pointi][i] = edges[edgei].Other(pointi)
		}
	}
	return
}

// CellEdges returns the sorted unique edges of every cell
func (m *Mesh) CellEdges() [][]int { return m.cellEdges.get(m.calcCellEdges) }
func (m *Mesh) HasCellEdges() bool { return m.cellEdges.has() }

func (m *Mesh) CellEdgesOf(celli int, buf []int) []int {
	if m.cellEdges.has() {
		return m.cellEdges.val[celli]
	}
	fe := m.FaceEdges()
	buf = buf[:0]
	for _, facei := range m.CellsOf(celli, nil) {
		buf = append(buf, fe[facei]...)
	}
	return sortedUnique(buf)
}

func (m *Mesh) calcCellEdges() (ce [][]int) {
	var (
		fe    = m.FaceEdges()
		cells = m.Cells()
	)
	ce = make([][]int, m.nCells)
	for celli, cFaces := range cells {
		var row []int
		for _, facei := range cFaces {
			row = append(row, fe[facei]...)
		}
		ce[celli] = sortedUnique(row)
	}
	return
}

// CellCells returns the face neighbours of every cell, in ascending order of the shared face
func (m *Mesh) CellCells() [][]int { return m.cellCells.get(m.calcCellCells) }
func (m *Mesh) HasCellCells() bool { return m.cellCells.has() }

func (m *Mesh) CellCellsOf(celli int, buf []int) []int {
	if m.cellCells.has() {
		return m.cellCells.val[celli]
	}
	buf = buf[:0]
	for _, facei := range m.CellsOf(celli, nil) {
		if !m.IsInternalFace(facei) {
			continue
		}
		if m.owner[facei] == celli {
			buf = append(buf, m.neighbour[facei])
		} else {
			buf = append(buf, m.owner[facei])
		}
	}
	return buf
}

func (m *Mesh) calcCellCells() (cc [][]int) {
	cc = make([][]int, m.nCells)
	for facei, nei := range m.neighbour {
		own := m.owner[facei]
		cc[own] = append(cc[own], nei)
		cc[nei] = append(cc[nei], own)
	}
	return
}

// EdgeCells returns the sorted unique cells using every edge
func (m *Mesh) EdgeCells() [][]int { return m.edgeCells.get(m.calcEdgeCells) }
func (m *Mesh) HasEdgeCells() bool { return m.edgeCells.has() }

func (m *Mesh) EdgeCellsOf(edgei int, buf []int) []int {
	if m.edgeCells.has() {
		return m.edgeCells.val[edgei]
	}
	return m.facesToCells(m.EdgeFacesOf(edgei, nil), buf)
}

func (m *Mesh) calcEdgeCells() (ec [][]int) {
	ef := m.EdgeFaces()
	ec = make([][]int, len(ef))
	for edgei, faces := range ef {
		ec[edgei] = m.facesToCells(faces, nil)
	}
	return
}

// PointCells returns the sorted unique cells using every point
func (m *Mesh) PointCells() [][]int { return m.pointCells.get(m.calcPointCells) }
func (m *Mesh) HasPointCells() bool { return m.pointCells.has() }

func (m *Mesh) PointCellsOf(pointi int, buf []int) []int {
	if m.pointCells.has() {
		return m.pointCells.val[pointi]
	}
	return m.facesToCells(m.PointFacesOf(pointi, nil), buf)
}

func (m *Mesh) calcPointCells() (pc [][]int) {
	pf := m.PointFaces()
	pc = make([][]int, len(pf))
	for pointi, faces := range pf {
		pc[pointi] = m.facesToCells(faces, nil)
	}
	return
}

func (m *Mesh) facesToCells(faces, buf []int) []int {
	buf = buf[:0]
	for _, facei := range faces {
		buf = append(buf, m.owner[facei])
		if m.IsInternalFace(facei) {
			buf = append(buf, m.neighbour[facei])
		}
	}
	return sortedUnique(buf)
}

// CellPoints returns the sorted unique points of every cell
func (m *Mesh) CellPoints() [][]int { return m.cellPoints.get(m.calcCellPoints) }
func (m *Mesh) HasCellPoints() bool { return m.cellPoints.has() }

func (m *Mesh) CellPointsOf(celli int, buf []int) []int {
	if m.cellPoints.has() {
		return m.cellPoints.val[celli]
	}
	buf = buf[:0]
	for _, facei := range m.CellsOf(celli, nil) {
		buf = append(buf, m.faces[facei]...)
	}
	return sortedUnique(buf)
}

func (m *Mesh) calcCellPoints() [][]int {
	return invert(m.PointCells(), m.nCells)
}
