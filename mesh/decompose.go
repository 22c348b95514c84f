package mesh

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
	"github.com/notargets/polymesh/utils"
)

/*
Decomposition is a mesh split over ranks. Every rank mesh holds its cells in ascending global order,
its internal faces in global order, then the original patches restricted to its cells, then one
processor patch per neighbouring rank in ascending rank order. A face shared by two ranks is stored
as in the global mesh on the rank of its owner and reversed on the other rank.

	PointAddressing[r][i]  global label of point i of rank r
	FaceAddressing[r][i]   global label of face i of rank r
	CellAddressing[r][i]   global label of cell i of rank r
	FaceFlipped[r][i]      face i of rank r is stored reversed
*/
type Decomposition struct {
	NProcs int
	Meshes []*Mesh

	PointAddressing, FaceAddressing, CellAddressing [][]int
	FaceFlipped                                     [][]bool
}

// ProcPatchName is the name of the processor patch of rank myProc facing rank neighbProc
func ProcPatchName(myProc, neighbProc int) string {
	return fmt.Sprintf("procBoundary%dto%d", myProc, neighbProc)
}

// SimpleCellDecomposition splits the cells into nProcs contiguous ranges of near equal size
func SimpleCellDecomposition(nCells, nProcs int) []int {
	return utils.NewPartitionMap(nProcs, nCells).Owners()
}

// Decompose splits a mesh over nProcs ranks, cellToRank gives the rank of every cell. The rank meshes
// use the serial communicator until they are attached to a rank with SetComm. Cyclic patches must not
// be cut by the decomposition.
func Decompose(m *Mesh, cellToRank []int, nProcs int) (d *Decomposition, err error) {
	if len(cellToRank) != m.NCells() {
		return nil, fmt.Errorf("%w: decomposition has %d cells, mesh has %d", ErrInvalidMesh, len(cellToRank), m.NCells())
	}
	for celli, r := range cellToRank {
		if r < 0 || r >= nProcs {
			return nil, fmt.Errorf("%w: cell %d assigned to rank %d of %d", ErrInvalidMesh, celli, r, nProcs)
		}
	}
	if err = checkDecomposable(m, cellToRank); err != nil {
		return
	}
	d = &Decomposition{
		NProcs:          nProcs,
		Meshes:          make([]*Mesh, nProcs),
		PointAddressing: make([][]int, nProcs),
		FaceAddressing:  make([][]int, nProcs),
		CellAddressing:  make([][]int, nProcs),
		FaceFlipped:     make([][]bool, nProcs),
	}
	for celli, r := range cellToRank {
		d.CellAddressing[r] = append(d.CellAddressing[r], celli)
	}
	for r := 0; r < nProcs; r++ {
		if d.Meshes[r], err = d.decomposeRank(m, cellToRank, r); err != nil {
			return nil, fmt.Errorf("rank %d: %w", r, err)
		}
	}
	m.logger.Printf("Decomposed %d cells over %d ranks", m.NCells(), nProcs)
	return
}

func checkDecomposable(m *Mesh, cellToRank []int) error {
	bm := m.BoundaryMesh()
	for _, p := range bm.Patches() {
		switch p.Type {
		case types.PT_Processor:
			return fmt.Errorf("%w: mesh is already decomposed, has processor patch %s", ErrInvalidMesh, p.Name)
		case types.PT_Cyclic:
			partner := bm.FindPatchID(p.NeighbourPatch)
			if partner < 0 || bm.At(partner).Size != p.Size {
				return fmt.Errorf("%w: cyclic patch %s has no matching partner %q", ErrInvalidMesh, p.Name, p.NeighbourPatch)
			}
			q := bm.At(partner)
			for i := 0; i < p.Size; i++ {
				if cellToRank[m.owner[p.Start+i]] != cellToRank[m.owner[q.Start+i]] {
					return fmt.Errorf("%w: decomposition cuts cyclic patch %s at face %d", ErrInvalidMesh, p.Name, i)
				}
			}
		}
	}
	return nil
}

func (d *Decomposition) decomposeRank(m *Mesh, cellToRank []int, r int) (*Mesh, error) {
	var (
		globalToLocal = make(map[int]int, len(d.CellAddressing[r]))
		faceAddr      []int
		flipped       []bool
		faces         []Face
		owner         []int
		neighbour     []int
		patches       []PatchInfo
		procFaces     = make(map[int][]int)
	)
	for local, celli := range d.CellAddressing[r] {
		globalToLocal[celli] = local
	}
	addFace := func(facei int, flip bool) {
		f := m.faces[facei]
		own := m.owner[facei]
		if flip {
			f = f.Reverse()
			own = m.neighbour[facei]
		}
		faceAddr = append(faceAddr, facei)
		flipped = append(flipped, flip)
		faces = append(faces, f)
		owner = append(owner, globalToLocal[own])
	}
	for facei, nei := range m.neighbour {
		ro, rn := cellToRank[m.owner[facei]], cellToRank[nei]
		switch {
		case ro == r && rn == r:
			addFace(facei, false)
			neighbour = append(neighbour, globalToLocal[nei])
		case ro == r:
			procFaces[rn] = append(procFaces[rn], facei)
		case rn == r:
			procFaces[ro] = append(procFaces[ro], facei)
		}
	}
	for _, p := range m.BoundaryMesh().Patches() {
		info := PatchInfo{Name: p.Name, Type: p.Type, NeighbourPatch: p.NeighbourPatch}
		start, end := p.Range()
		for facei := start; facei < end; facei++ {
			if cellToRank[m.owner[facei]] == r {
				addFace(facei, false)
				info.Size++
			}
		}
		patches = append(patches, info)
	}
	nbrs := make([]int, 0, len(procFaces))
	for s := range procFaces {
		nbrs = append(nbrs, s)
	}
	slices.Sort(nbrs)
	for _, s := range nbrs {
		for _, facei := range procFaces[s] {
			addFace(facei, cellToRank[m.owner[facei]] != r)
		}
		patches = append(patches, PatchInfo{
			Name:         ProcPatchName(r, s),
			Type:         types.PT_Processor,
			Size:         len(procFaces[s]),
			NeighbProcNo: s,
			MyProcNo:     r,
		})
	}

	// Points in ascending global order
	var pointAddr []int
	for _, f := range faces {
		pointAddr = append(pointAddr, f...)
	}
	pointAddr = sortedUnique(pointAddr)
	pointMap := make(map[int]int, len(pointAddr))
	localPoints := MapField(pointAddr, m.points, r3.Vec{})
	for local, pointi := range pointAddr {
		pointMap[pointi] = local
	}
	for i, f := range faces {
		lf := make(Face, len(f))
		for k, pointi := range f {
			lf[k] = pointMap[pointi]
		}
		faces[i] = lf
	}

	opts := append(m.Inherit(), WithNCells(len(d.CellAddressing[r])), WithComm(utils.Serial()))
	if m.Moving() {
		opts = append(opts, WithOldPoints(MapField(pointAddr, m.oldPoints, r3.Vec{})))
	}
	rm, err := New(localPoints, faces, owner, neighbour, patches, opts...)
	if err != nil {
		return nil, err
	}
	d.PointAddressing[r] = pointAddr
	d.FaceAddressing[r] = faceAddr
	d.FaceFlipped[r] = flipped
	if err = d.decomposeZones(m, rm, r, pointMap, globalToLocal); err != nil {
		return nil, err
	}
	return rm, nil
}

// decomposeZones gives every rank all zones, in the same order, restricted to its entities. Face zone
// flips are toggled on faces stored reversed.
func (d *Decomposition) decomposeZones(m, rm *Mesh, r int, pointMap, cellMap map[int]int) (err error) {
	faceMap := make(map[int]int, len(d.FaceAddressing[r]))
	for local, facei := range d.FaceAddressing[r] {
		faceMap[facei] = local
	}
	restrict := func(addr []int, lookup map[int]int) (local []int) {
		local = make([]int, 0)
		for _, i := range addr {
			if l, ok := lookup[i]; ok {
				local = append(local, l)
			}
		}
		return
	}
	for _, z := range m.PointZones().Zones() {
		if err = rm.AddZone(NewPointZone(z.Name(), restrict(z.Addressing(), pointMap))); err != nil {
			return
		}
	}
	for _, z := range m.FaceZones().Zones() {
		var (
			addr = make([]int, 0)
			flip = make([]bool, 0)
		)
		for i, facei := range z.Addressing() {
			if l, ok := faceMap[facei]; ok {
				addr = append(addr, l)
				flip = append(flip, z.FlipMap()[i] != d.FaceFlipped[r][l])
			}
		}
		fz, err := NewFaceZone(z.Name(), addr, flip)
		if err != nil {
			return err
		}
		if err = rm.AddZone(fz); err != nil {
			return err
		}
	}
	for _, z := range m.CellZones().Zones() {
		if err = rm.AddZone(NewCellZone(z.Name(), restrict(z.Addressing(), cellMap))); err != nil {
			return
		}
	}
	return
}
