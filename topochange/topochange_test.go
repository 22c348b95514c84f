package topochange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/mesh"
	"github.com/notargets/polymesh/types"
)

func blockMesh(t *testing.T, nx, ny, nz int) *mesh.Mesh {
	m, err := mesh.NewBlockMesh(nx, ny, nz, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	return m
}

func record(t *testing.T, l *Log, a Action, err error) int {
	t.Helper()
	require.NoError(t, err)
	return l.SetAction(a)
}

func TestTetRoundTrip(t *testing.T) {
	empty, err := mesh.New(nil, nil, nil, nil, []mesh.PatchInfo{{Name: "walls", Type: types.PT_Wall}})
	require.NoError(t, err)
	require.Equal(t, 0, empty.NCells())

	pts := []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}}
	tet := []mesh.Face{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}}
	l := NewLog(empty)
	for i, p := range pts {
		a, err := NewAddPoint(p, -1, -1, true)
		assert.Equal(t, i, record(t, l, a, err))
	}
	c, err := NewAddCell(-1, -1, -1, -1, -1)
	celli := record(t, l, c, err)
	assert.Equal(t, 0, celli)
	for i, f := range tet {
		a, err := NewAddFace(f, celli, -1, -1, -1, -1, false, 0, -1, false)
		assert.Equal(t, i, record(t, l, a, err))
	}
	assert.Equal(t, 9, l.Len())

	m, mm, err := Apply(empty, l)
	require.NoError(t, err)
	assert.Equal(t, pts, m.Points())
	assert.Equal(t, tet, m.Faces())
	assert.Equal(t, []int{0, 0, 0, 0}, m.FaceOwner())
	assert.Equal(t, 1, m.NCells())
	assert.Equal(t, 4, m.BoundaryMesh().At(0).Size)
	assert.InDelta(t, 1./6., m.CellVolumes()[0], 1e-12)
	assert.Equal(t, []int{0, 1, 2, 3}, mm.AddedPoints())
	assert.Equal(t, []int{-1}, mm.CellMap)
	assert.Empty(t, mm.ReverseFaceMap)
	assert.Equal(t, 0, empty.NPoints(), "the input mesh is left untouched")

	_, _, err = Apply(empty, l)
	assert.ErrorIs(t, err, ErrLogConsumed)
	assert.True(t, l.Applied())
}

func TestInvalidActions(t *testing.T) {
	_, err := NewAddFace(mesh.Face{0, 1}, 0, -1, -1, -1, -1, false, 0, -1, false)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewAddFace(mesh.Face{0, 1, 2}, 0, 1, -1, -1, -1, false, 0, -1, false)
	assert.ErrorIs(t, err, ErrInvalidAction, "a patch face can not have a neighbour")
	_, err = NewAddFace(mesh.Face{0, 1, 2}, 1, 1, -1, -1, -1, false, -1, -1, false)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewAddFace(mesh.Face{0, -1, 2}, 0, -1, -1, -1, -1, false, 0, -1, false)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewAddFace(mesh.Face{0, 1, 2}, -1, -1, -1, -1, -1, false, 0, -1, false)
	assert.ErrorIs(t, err, ErrInvalidAction, "no cell and no zone")
	_, err = NewAddFace(mesh.Face{0, 1, 2}, 0, -1, -1, -1, -1, false, 0, -1, true)
	assert.ErrorIs(t, err, ErrInvalidAction, "zone flip without a zone")
	_, err = NewAddPoint(r3.Vec{}, -1, -1, false)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewModifyFace(mesh.Face{0, 1}, 0, 0, -1, false, 0, false, -1, false)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewRemovePoint(3, 3)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewRemoveCell(-1, -1)
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewModifyCell(0, false, -2)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestInconsistentChanges(t *testing.T) {
	{ // A removed point still used by a face
		m := blockMesh(t, 1, 1, 1)
		l := NewLog(m)
		a, err := NewRemovePoint(0, -1)
		record(t, l, a, err)
		_, _, err = Apply(m, l)
		assert.ErrorIs(t, err, ErrInconsistentChange)
		assert.Equal(t, 8, m.NPoints())
	}
	{ // A cell left without faces
		m := blockMesh(t, 1, 1, 1)
		l := NewLog(m)
		c, err := NewAddCell(-1, -1, -1, 0, -1)
		record(t, l, c, err)
		_, _, err = Apply(m, l)
		assert.ErrorIs(t, err, ErrInconsistentChange)
	}
	{ // Undefined zone
		m := blockMesh(t, 1, 1, 1)
		l := NewLog(m)
		a, err := NewModifyCell(0, false, 2)
		record(t, l, a, err)
		_, _, err = Apply(m, l)
		assert.ErrorIs(t, err, ErrInconsistentChange)
	}
	{ // Modifying a removed face
		m := blockMesh(t, 1, 1, 1)
		l := NewLog(m)
		r, err := NewRemoveFace(1, -1)
		record(t, l, r, err)
		mf, err := NewModifyFace(m.Faces()[1], 1, 0, -1, false, 1, false, -1, false)
		record(t, l, mf, err)
		_, _, err = Apply(m, l)
		assert.ErrorIs(t, err, ErrInconsistentChange)
	}
	{ // Logs belong to one mesh
		m := blockMesh(t, 1, 1, 1)
		_, _, err := Apply(blockMesh(t, 1, 1, 1), NewLog(m))
		assert.ErrorIs(t, err, ErrInconsistentChange)
	}
}

func TestOwnerNeighbourOrdering(t *testing.T) {
	m := blockMesh(t, 2, 1, 1)
	require.Equal(t, 1, m.NInternalFaces())
	fz, err := mesh.NewFaceZone("mid", []int{0}, []bool{false})
	require.NoError(t, err)
	require.NoError(t, m.AddZone(fz))
	f0 := m.Faces()[0]

	l := NewLog(m)
	a, err := NewModifyFace(f0.Reverse(), 0, 1, 0, false, -1, false, -1, false)
	assert.Equal(t, 0, record(t, l, a, err))
	nm, mm, err := Apply(m, l)
	require.NoError(t, err)
	assert.Equal(t, f0, nm.Faces()[0])
	assert.Equal(t, 0, nm.FaceOwner()[0])
	assert.Equal(t, 1, nm.FaceNeighbour()[0])
	assert.True(t, mm.FlipFaceFlux.Has(0))
	assert.Equal(t, 1, mm.FlipFaceFlux.Len())
	assert.Equal(t, []bool{true}, nm.FaceZones().At(0).FlipMap())
	assert.False(t, nm.CheckMesh(false))
}

func TestRemoveCell(t *testing.T) {
	m := blockMesh(t, 2, 1, 1)
	require.NoError(t, m.AddZone(mesh.NewPointZone("end", []int{2, 1})))
	require.NoError(t, m.AddZone(mesh.NewCellZone("second", []int{1})))
	xMax := m.BoundaryMesh().FindPatchID("xMax")
	l := NewLog(m)
	for _, facei := range m.Cells()[1] {
		if facei == 0 {
			continue
		}
		a, err := NewRemoveFace(facei, -1)
		record(t, l, a, err)
	}
	c, err := NewRemoveCell(1, 0)
	record(t, l, c, err)
	mf, err := NewModifyFace(m.Faces()[0], 0, 0, -1, false, xMax, false, -1, false)
	record(t, l, mf, err)
	for _, pointi := range []int{2, 5, 8, 11} {
		a, err := NewRemovePoint(pointi, pointi-1)
		record(t, l, a, err)
	}

	nm, mm, err := Apply(m, l)
	require.NoError(t, err)
	assert.Equal(t, 8, nm.NPoints())
	assert.Equal(t, 6, nm.NFaces())
	assert.Equal(t, 1, nm.NCells())
	assert.Equal(t, 0, nm.NInternalFaces())
	assert.InDelta(t, 0.5, nm.CellVolumes()[0], 1e-12)
	for _, p := range nm.BoundaryMesh().Patches() {
		assert.Equal(t, 1, p.Size, p.Name)
	}
	assert.Equal(t, []int{0, -1}, mm.ReverseCellMap)
	assert.Equal(t, map[int]int{1: 0}, mm.MergedCells)
	assert.Equal(t, map[int]int{2: 1, 5: 3, 8: 5, 11: 7}, mm.MergedPoints)
	assert.Equal(t, []int{0, 1, 3, 4, 6, 7, 9, 10}, mm.PointMap)
	// The old internal face is now the only xMax face, after the single xMin face
	start := nm.BoundaryMesh().At(xMax).Start
	assert.Equal(t, 1, start)
	assert.Equal(t, start, mm.ReverseFaceMap[0])
	assert.Equal(t, 0, mm.FaceMap[start])

	pz, _ := nm.PointZones().ByName("end")
	assert.Equal(t, []int{1}, pz.Addressing())
	cz, _ := nm.CellZones().ByName("second")
	assert.Empty(t, cz.Addressing())
	assert.False(t, nm.CheckMesh(false))
}
