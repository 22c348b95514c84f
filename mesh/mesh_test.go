package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

var unitBox = [2]r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}

func blockMesh(t *testing.T, nx, ny, nz int, opts ...Option) *Mesh {
	m, err := NewBlockMesh(nx, ny, nz, unitBox[0], unitBox[1], opts...)
	require.NoError(t, err)
	return m
}

func vecNear(t *testing.T, want, got r3.Vec, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol)
	assert.InDelta(t, want.Y, got.Y, tol)
	assert.InDelta(t, want.Z, got.Z, tol)
}

func TestNewValidation(t *testing.T) {
	pts := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	tet := []Face{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}}
	own := []int{0, 0, 0, 0}
	walls := []PatchInfo{{Name: "walls", Type: types.PT_Wall, Size: 4}}
	{ // Valid single tet
		m, err := New(pts, tet, own, nil, walls)
		require.NoError(t, err)
		assert.Equal(t, 1, m.NCells())
		assert.Equal(t, 4, m.NFaces())
		assert.Equal(t, 0, m.NInternalFaces())
		assert.InDelta(t, 1./6., m.CellVolumes()[0], 1e-12)
		assert.Equal(t, Tet, m.CellShapes()[0])
	}
	{ // Patch sizes must cover the boundary
		_, err := New(pts, tet, own, nil, []PatchInfo{{Name: "walls", Size: 3}})
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
	{ // Point out of range
		bad := []Face{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 4, 2}}
		_, err := New(pts, bad, own, nil, walls)
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
	{ // Faces need three vertices
		bad := []Face{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3}}
		_, err := New(pts, bad, own, nil, walls)
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
	{ // Owner count
		_, err := New(pts, tet, own[:3], nil, walls)
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
	{ // Internal face with owner == neighbour
		_, err := New(pts, tet, own, []int{0}, []PatchInfo{{Name: "walls", Size: 3}})
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
}

func TestUnitCubeGeometry(t *testing.T) {
	m := blockMesh(t, 1, 1, 1)
	require.Equal(t, 1, m.NCells())
	assert.Equal(t, 8, m.NPoints())
	assert.Equal(t, 6, m.NFaces())
	assert.InDelta(t, 1.0, m.CellVolumes()[0], 1e-9)
	vecNear(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, m.CellCentres()[0], 1e-9)
	for _, a := range m.MagFaceAreas() {
		assert.InDelta(t, 1.0, a, 1e-12)
	}
	{ // Face areas point out of the cell
		cc := m.CellCentres()[0]
		for facei, fc := range m.FaceCentres() {
			assert.Greater(t, r3.Dot(m.FaceAreas()[facei], r3.Sub(fc, cc)), 0.)
		}
	}
	{ // Face weighted centres agree on a symmetric cell
		fw := blockMesh(t, 1, 1, 1, WithCellCentreMode(FaceWeighted))
		vecNear(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, fw.CellCentres()[0], 1e-12)
		assert.InDelta(t, 1.0, fw.CellVolumes()[0], 1e-9)
	}
	bb := m.BoundBox()
	vecNear(t, unitBox[0], bb.Min, 0)
	vecNear(t, unitBox[1], bb.Max, 0)
}

// degenerateCube is the unit cube with an extra point on the middle of a top edge and a zero area
// triangle closing it off
func degenerateCube(t *testing.T) *Mesh {
	pts := []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		{X: 0.5, Y: 0, Z: 1},
	}
	faces := []Face{
		{0, 3, 2, 1},
		{4, 8, 5, 6, 7},
		{0, 1, 5, 8, 4},
		{1, 2, 6, 5},
		{2, 3, 7, 6},
		{3, 0, 4, 7},
		{4, 5, 8},
	}
	m, err := New(pts, faces, make([]int, len(faces)), nil,
		[]PatchInfo{{Name: "walls", Type: types.PT_Wall, Size: len(faces)}})
	require.NoError(t, err)
	return m
}

func TestDegenerateFaceFallback(t *testing.T) {
	m := degenerateCube(t)
	assert.Less(t, m.MagFaceAreas()[6], m.AreaSwitch())
	assert.InDelta(t, 1.0, m.CellVolumes()[0], 1e-9)
	vecNear(t, r3.Vec{X: 4.5 / 9, Y: 4. / 9, Z: 5. / 9}, m.CellCentres()[0], 1e-12)
	{ // Without the fallback the pyramid centroid is the cube centre
		m2 := degenerateCube(t)
		m2.areaSwitch = 0
		vecNear(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, m2.CellCentres()[0], 1e-9)
	}
}

func TestEdges(t *testing.T) {
	m := blockMesh(t, 2, 2, 2)
	{ // Edge count is the number of unique point pairs over all faces
		keys := make(map[types.EdgeKey]struct{})
		for _, f := range m.Faces() {
			for _, e := range f.Edges() {
				keys[e.Key()] = struct{}{}
			}
		}
		assert.Equal(t, len(keys), m.NEdges())
		assert.Equal(t, 54, m.NEdges())
	}
	assert.Equal(t, 6, m.NInternalEdges())
	{ // Internal edges come first and touch no boundary face
		onBoundary := make(map[int]bool)
		for facei := m.NInternalFaces(); facei < m.NFaces(); facei++ {
			for _, edgei := range m.FaceEdges()[facei] {
				onBoundary[edgei] = true
			}
		}
		for edgei := range m.Edges() {
			assert.Equal(t, !m.IsInternalEdge(edgei), onBoundary[edgei], "edge %d", edgei)
		}
	}
	{ // Face edges follow the face vertex order
		for facei, f := range m.Faces() {
			for i, edgei := range m.FaceEdges()[facei] {
				assert.Equal(t, f.FaceEdge(i).Key(), m.Edges()[edgei].Key())
			}
		}
	}
	{ // Every edge of a hex mesh is used by its faces and cells
		for edgei, ef := range m.EdgeFaces() {
			assert.GreaterOrEqual(t, len(ef), 2)
			assert.NotEmpty(t, m.EdgeCells()[edgei])
		}
	}
}

func TestInversionRoundTrip(t *testing.T) {
	m := blockMesh(t, 3, 2, 2)
	var (
		pc = m.PointCells()
		cp = m.CellPoints()
	)
	nMember := 0
	for celli, pts := range cp {
		assert.Len(t, pts, 8)
		for _, pointi := range pts {
			assert.Contains(t, pc[pointi], celli)
		}
		nMember += len(pts)
	}
	nInverse := 0
	for pointi, cells := range pc {
		for _, celli := range cells {
			assert.Contains(t, cp[celli], pointi)
		}
		nInverse += len(cells)
	}
	assert.Equal(t, nMember, nInverse)
	{ // Point faces and cells invert onto each other through the face owners
		for pointi, faces := range m.PointFaces() {
			for _, facei := range faces {
				assert.Contains(t, pc[pointi], m.FaceOwner()[facei])
			}
		}
	}
}

func TestRowQueries(t *testing.T) {
	m := blockMesh(t, 2, 2, 1)
	buf := make([]int, 0, 16)
	{ // Rows computed without the table match the table rows
		var rows [][]int
		for celli := 0; celli < m.NCells(); celli++ {
			rows = append(rows, append([]int{}, m.CellCellsOf(celli, buf)...))
		}
		assert.False(t, m.HasCellCells())
		for pointi := 0; pointi < m.NPoints(); pointi++ {
			row := append([]int{}, m.PointCellsOf(pointi, buf)...)
			assert.ElementsMatch(t, m.PointCells()[pointi], row)
		}
		cc := m.CellCells()
		for celli, row := range rows {
			assert.ElementsMatch(t, cc[celli], row)
		}
	}
	{ // Cached rows are returned directly
		cc := m.CellCells()
		row := m.CellCellsOf(0, buf)
		assert.Same(t, &cc[0][0], &row[0])
	}
	{ // Edge rows leave the point-faces table unbuilt
		m.ClearAddressing()
		var rows [][]int
		for edgei := 0; edgei < m.NEdges(); edgei++ {
			rows = append(rows, append([]int{}, m.EdgeFacesOf(edgei, buf)...))
		}
		assert.False(t, m.HasPointFaces())
		assert.False(t, m.HasEdgeFaces())
		for edgei, row := range rows {
			assert.ElementsMatch(t, m.EdgeFaces()[edgei], row)
		}
	}
	{ // Cell 0 of a 2x2x1 block touches cells 1 and 2
		assert.ElementsMatch(t, []int{1, 2}, m.CellCells()[0])
		assert.Len(t, m.CellEdges()[0], 12)
		assert.Len(t, m.PointPoints()[0], 3)
	}
}

func TestCacheInvalidation(t *testing.T) {
	m := blockMesh(t, 2, 1, 1)
	cc := m.CellCells()
	require.True(t, m.HasCellCells())
	m.ClearAddressing()
	assert.False(t, m.HasCellCells())
	assert.False(t, m.HasEdges())
	cc2 := m.CellCells()
	assert.True(t, m.HasCellCells())
	assert.Equal(t, cc, cc2)
	assert.NotSame(t, &cc[0][0], &cc2[0][0])

	vols := m.CellVolumes()
	require.True(t, m.HasCellGeometry())
	m.ClearAddressing()
	assert.True(t, m.HasCellGeometry(), "addressing and geometry are cleared separately")
	m.ClearGeom()
	assert.False(t, m.HasCellGeometry())
	assert.False(t, m.HasFaceGeometry())
	assert.Equal(t, vols, m.CellVolumes())
	m.ClearOut()
	assert.False(t, m.HasCellGeometry())
	assert.False(t, m.HasCellCells())
}

func TestSweptVolume(t *testing.T) {
	{ // Unit right triangle translated by one along its normal
		tri := Face{0, 1, 2}
		oldPts := []r3.Vec{{}, {X: 1}, {Y: 1}}
		newPts := []r3.Vec{{Z: 1}, {X: 1, Z: 1}, {Y: 1, Z: 1}}
		assert.InDelta(t, 0.5, tri.SweptVol(oldPts, newPts), 1e-12)
		assert.InDelta(t, -0.5, tri.Reverse().SweptVol(oldPts, newPts), 1e-12)
	}
	{ // Stretch the unit cube upwards by a half
		m := blockMesh(t, 1, 1, 1)
		newPts := make([]r3.Vec, m.NPoints())
		for i, p := range m.Points() {
			newPts[i] = p
			if p.Z == 1 {
				newPts[i].Z = 1.5
			}
		}
		sv, err := m.MovePoints(newPts)
		require.NoError(t, err)
		top := m.BoundaryMesh().At(m.BoundaryMesh().FindPatchID("zMax")).Start
		for facei, v := range sv {
			if facei == top {
				assert.InDelta(t, 0.5, v, 1e-12)
			} else {
				assert.InDelta(t, 0., v, 1e-12)
			}
		}
		assert.True(t, m.Moving())
		assert.Equal(t, 1.0, m.OldPoints()[7].Z)
		assert.InDelta(t, 1.5, m.CellVolumes()[0], 1e-9)
		vecNear(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.75}, m.CellCentres()[0], 1e-9)

		_, err = m.MovePoints(newPts[:3])
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
}

func TestMovePointsRefreshesPatches(t *testing.T) {
	m := blockMesh(t, 1, 1, 2)
	fz, err := NewFaceZone("mid", []int{0}, []bool{false})
	require.NoError(t, err)
	require.NoError(t, m.AddZone(fz))
	xMax := m.BoundaryMesh().At(m.BoundaryMesh().FindPatchID("xMax"))
	vecNear(t, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, fz.Patch().FaceCentres()[0], 1e-12)
	before := xMax.Faces().FaceCentres()[0]

	shift := r3.Vec{X: 10}
	newPts := make([]r3.Vec, m.NPoints())
	for i, p := range m.Points() {
		newPts[i] = r3.Add(p, shift)
	}
	_, err = m.MovePoints(newPts)
	require.NoError(t, err)
	vecNear(t, m.FaceCentres()[0], fz.Patch().FaceCentres()[0], 1e-12)
	vecNear(t, r3.Vec{X: 10.5, Y: 0.5, Z: 0.5}, fz.Patch().FaceCentres()[0], 1e-12)
	vecNear(t, r3.Add(before, shift), xMax.Faces().FaceCentres()[0], 1e-12)
	for _, p := range fz.Patch().LocalPoints() {
		assert.GreaterOrEqual(t, p.X, 10.)
	}
}

func TestFaceOperations(t *testing.T) {
	f := Face{0, 1, 2, 3}
	assert.Equal(t, Face{0, 3, 2, 1}, f.Reverse())
	assert.Equal(t, 2, f.Which(2))
	assert.Equal(t, -1, f.Which(7))
	assert.Equal(t, Edge{3, 0}, f.FaceEdge(3))
	pts := []r3.Vec{{}, {X: 2}, {X: 2, Y: 1}, {Y: 1}}
	vecNear(t, r3.Vec{X: 1, Y: 0.5}, f.Centre(pts), 1e-14)
	vecNear(t, r3.Vec{Z: 2}, f.AreaNormal(pts), 1e-14)
	e := Edge{4, 9}
	assert.Equal(t, 9, e.Other(4))
	assert.Equal(t, e.Key(), e.Reversed().Key())
}

func TestNewFromShapes(t *testing.T) {
	pts := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}, {X: 1, Y: 1, Z: 1}}
	shapes := []CellShape{
		{Type: Tet, Vertices: []int{0, 1, 2, 3}},
		{Type: Tet, Vertices: []int{1, 2, 3, 4}},
	}
	{
		m, err := NewFromShapes(pts, shapes, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, m.NCells())
		assert.Equal(t, 1, m.NInternalFaces())
		assert.Equal(t, 7, m.NFaces())
		assert.Equal(t, []string{"defaultFaces"}, m.BoundaryMesh().Names())
		assert.Equal(t, 0, m.FaceOwner()[0])
		assert.Equal(t, 1, m.FaceNeighbour()[0])
		for _, v := range m.CellVolumes() {
			assert.Greater(t, v, 0.)
		}
		assert.False(t, m.CheckTopology(false))
	}
	{ // Named boundary faces are pulled into their patch
		m, err := NewFromShapes(pts, shapes, []ShapePatch{
			{Name: "base", Type: types.PT_Wall, Faces: [][]int{{2, 1, 0}}},
		})
		require.NoError(t, err)
		bm := m.BoundaryMesh()
		require.Equal(t, 2, bm.Len())
		assert.Equal(t, 1, bm.At(0).Size)
		assert.Equal(t, 5, bm.At(1).Size)
		assert.Equal(t, 0, bm.WhichPatch(1))
		assert.Equal(t, 1, bm.WhichPatch(2))
		assert.Equal(t, -1, bm.WhichPatch(0))
	}
	{ // Internal faces can not be patch faces
		_, err := NewFromShapes(pts, shapes, []ShapePatch{{Name: "x", Faces: [][]int{{1, 2, 3}}}})
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
}

func TestBlockMesh(t *testing.T) {
	m := blockMesh(t, 3, 2, 1)
	assert.Equal(t, 6, m.NCells())
	assert.Equal(t, 4*3*2, m.NPoints())
	assert.Equal(t, 2*2*1+3*1*1+3*2*0, m.NInternalFaces())
	bm := m.BoundaryMesh()
	assert.Equal(t, BlockPatchNames[:], bm.Names())
	sizes := []int{2, 2, 3, 3, 6, 6}
	for i, p := range bm.Patches() {
		assert.Equal(t, sizes[i], p.Size, p.Name)
	}
	assert.False(t, m.CheckUpperTriangular(false, nil))
	total := 0.
	for _, v := range m.CellVolumes() {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-12)
	assert.True(t, math.Abs(m.CellCentres()[5].X-5./6.) < 1e-12)
	for _, s := range m.CellShapes() {
		assert.Equal(t, Hex, s)
	}
}

func TestFacePatch(t *testing.T) {
	m := blockMesh(t, 2, 2, 1)
	top := m.BoundaryMesh().At(m.BoundaryMesh().FindPatchID("zMax")).Faces()
	assert.Equal(t, 4, top.Len())
	assert.Len(t, top.MeshPoints(), 9)
	assert.Equal(t, 12, len(top.Edges()))
	assert.Equal(t, 4, top.NInternalEdges())
	for _, a := range top.FaceAreas() {
		vecNear(t, r3.Vec{Z: 0.25}, a, 1e-14)
	}
	for i, le := range top.MeshEdges(m) {
		require.GreaterOrEqual(t, le, 0)
		pe := top.Edges()[i]
		mp := top.MeshPoints()
		assert.Equal(t, Edge{mp[pe[0]], mp[pe[1]]}.Key(), m.Edges()[le].Key())
	}
}
