package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/polymesh/types"
	"github.com/notargets/polymesh/utils"
)

func TestDecompose(t *testing.T) {
	m := blockMesh(t, 4, 2, 1)
	cellToRank := SimpleCellDecomposition(m.NCells(), 2)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 1}, cellToRank)
	d, err := Decompose(m, cellToRank, 2)
	require.NoError(t, err)
	require.Len(t, d.Meshes, 2)

	{ // Each rank holds half the cells and a processor patch facing the other rank
		for r, rm := range d.Meshes {
			assert.Equal(t, 4, rm.NCells())
			bm := rm.BoundaryMesh()
			require.Equal(t, 7, bm.Len())
			p := bm.At(6)
			assert.Equal(t, ProcPatchName(r, 1-r), p.Name)
			assert.Equal(t, types.PT_Processor, p.Type)
			assert.Equal(t, 1-r, p.NeighbProcNo)
			assert.Equal(t, r, p.MyProcNo)
			assert.Equal(t, 4, p.Size)
			assert.InDelta(t, 0.5, floats.Sum(rm.CellVolumes()), 1e-12)
		}
		// The cut is the plane y = 0.5, yMin lies on rank 0 only
		assert.Equal(t, 4, d.Meshes[0].BoundaryMesh().At(2).Size)
		assert.Equal(t, 0, d.Meshes[1].BoundaryMesh().At(2).Size)
		assert.Equal(t, 1, d.Meshes[1].BoundaryMesh().At(0).Size)
		assert.Equal(t, 4, d.Meshes[1].BoundaryMesh().At(4).Size)
	}
	{ // Shared faces are reversed on the rank that does not own them
		p0 := d.Meshes[0].BoundaryMesh().At(6)
		p1 := d.Meshes[1].BoundaryMesh().At(6)
		for i := 0; i < p0.Size; i++ {
			f0, f1 := p0.Start+i, p1.Start+i
			assert.Equal(t, d.FaceAddressing[0][f0], d.FaceAddressing[1][f1])
			assert.False(t, d.FaceFlipped[0][f0])
			assert.True(t, d.FaceFlipped[1][f1])
			g0 := globalFace(d, 0, f0)
			g1 := globalFace(d, 1, f1)
			assert.Equal(t, g0.Reverse(), g1)
		}
	}
	{ // Addressing maps back onto the global mesh
		for r, rm := range d.Meshes {
			for local, pointi := range d.PointAddressing[r] {
				assert.Equal(t, m.Points()[pointi], rm.Points()[local])
			}
			for local, celli := range d.CellAddressing[r] {
				assert.Equal(t, cellToRank[celli], r)
				vecNear(t, m.CellCentres()[celli], rm.CellCentres()[local], 1e-12)
			}
		}
	}
	{ // Collective checks agree with the undecomposed mesh
		results := make([]bool, 2)
		bbs := make([]float64, 2)
		err := utils.Run(2, func(c utils.Comm) error {
			rm := d.Meshes[c.Rank()]
			rm.SetComm(c)
			results[c.Rank()] = rm.CheckMesh(false)
			bbs[c.Rank()] = rm.BoundBox().Max.X
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []bool{false, false}, results)
		assert.Equal(t, []float64{1, 1}, bbs)
	}
}

func globalFace(d *Decomposition, r, facei int) (f Face) {
	lf := d.Meshes[r].Faces()[facei]
	f = make(Face, len(lf))
	for i, p := range lf {
		f[i] = d.PointAddressing[r][p]
	}
	return
}

func TestDecomposeErrors(t *testing.T) {
	m := blockMesh(t, 2, 1, 1)
	_, err := Decompose(m, []int{0}, 2)
	assert.ErrorIs(t, err, ErrInvalidMesh)
	_, err = Decompose(m, []int{0, 2}, 2)
	assert.ErrorIs(t, err, ErrInvalidMesh)

	d, err := Decompose(m, []int{0, 1}, 2)
	require.NoError(t, err)
	_, err = Decompose(d.Meshes[0], []int{0}, 1)
	assert.ErrorIs(t, err, ErrInvalidMesh, "processor patches can not be decomposed again")
}

func TestSyncBoundaryValues(t *testing.T) {
	m := blockMesh(t, 2, 1, 1)
	d, err := Decompose(m, []int{0, 1}, 2)
	require.NoError(t, err)
	err = utils.Run(2, func(c utils.Comm) error {
		rm := d.Meshes[c.Rank()]
		rm.SetComm(c)
		nBdry := rm.NFaces() - rm.NInternalFaces()
		vals := make([]int, nBdry)
		for i := range vals {
			vals[i] = 10 * (c.Rank() + 1)
		}
		nbr := NeighbourBoundaryValues(rm, vals, -1)
		sum := make([]int, nBdry)
		copy(sum, vals)
		SyncBoundaryValues(rm, sum, func(a, b int) int { return a + b }, 0)
		swapped := make([]int, nBdry)
		copy(swapped, vals)
		SwapBoundaryFaceList(rm, swapped)
		for _, p := range rm.BoundaryMesh().Patches() {
			start, end := p.Range()
			for facei := start; facei < end; facei++ {
				b := facei - rm.NInternalFaces()
				if p.Type == types.PT_Processor {
					assert.Equal(t, 10*(2-c.Rank()), nbr[b])
					assert.Equal(t, 30, sum[b])
					assert.Equal(t, 10*(2-c.Rank()), swapped[b])
				} else {
					assert.Equal(t, -1, nbr[b])
					assert.Equal(t, vals[b], sum[b])
					assert.Equal(t, vals[b], swapped[b])
				}
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestCyclicNeighbourValues(t *testing.T) {
	base := blockMesh(t, 1, 1, 1)
	info := base.BoundaryMesh().Info()
	info[0].Type, info[0].NeighbourPatch = types.PT_Cyclic, "xMax"
	info[1].Type, info[1].NeighbourPatch = types.PT_Cyclic, "xMin"
	m, err := New(base.Points(), base.Faces(), base.FaceOwner(), base.FaceNeighbour(), info)
	require.NoError(t, err)
	vals := []float64{1, 2, 3, 4, 5, 6}
	nbr := NeighbourBoundaryValues(m, vals, 0)
	assert.Equal(t, []float64{2, 1, 0, 0, 0, 0}, nbr)
	assert.False(t, m.checkBoundaryDefinition(false))

	info[1].NeighbourPatch = "nowhere"
	bad, err := New(base.Points(), base.Faces(), base.FaceOwner(), base.FaceNeighbour(), info)
	require.NoError(t, err)
	assert.True(t, bad.checkBoundaryDefinition(false))
}
