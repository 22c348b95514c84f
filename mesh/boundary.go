package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/polymesh/types"
)

// Patch is a contiguous range of boundary faces sharing a boundary condition type
type Patch struct {
	Name  string
	Type  types.PatchType
	Start int
	Size  int
	Index int
	// Processor patches: the rank owning the cells on the other side, and this rank
	NeighbProcNo, MyProcNo int
	// Cyclic patches: the name of the partner patch in the same mesh
	NeighbourPatch string

	bm        *BoundaryMesh
	facePatch lazy[*FacePatch]
}

func (p *Patch) Coupled() bool { return p.Type.Coupled() }

// Range returns the half open face index range of the patch
func (p *Patch) Range() (start, end int) { return p.Start, p.Start + p.Size }

// WhichFace returns the patch local index of a mesh face
func (p *Patch) WhichFace(facei int) int { return facei - p.Start }

// FaceCells returns the cell owning each patch face
func (p *Patch) FaceCells() []int {
	return p.bm.mesh.owner[p.Start : p.Start+p.Size]
}

// Faces returns the patch faces as a standalone face patch on the mesh points
func (p *Patch) Faces() *FacePatch {
	return p.facePatch.get(func() *FacePatch {
		return NewFacePatch(p.bm.mesh.faces[p.Start:p.Start+p.Size], p.bm.mesh.points)
	})
}

func (p *Patch) String() string {
	return fmt.Sprintf("%s [%s] faces [%d,%d)", p.Name, p.Type, p.Start, p.Start+p.Size)
}

// BoundaryMesh is the ordered list of patches of a mesh
type BoundaryMesh struct {
	mesh    *Mesh
	patches []*Patch
}

func newBoundaryMesh(m *Mesh, info []PatchInfo) (bm *BoundaryMesh) {
	bm = &BoundaryMesh{mesh: m, patches: make([]*Patch, len(info))}
	start := m.NInternalFaces()
	for i, pi := range info {
		bm.patches[i] = &Patch{
			Name:           pi.Name,
			Type:           pi.Type,
			Start:          start,
			Size:           pi.Size,
			Index:          i,
			NeighbProcNo:   pi.NeighbProcNo,
			MyProcNo:       pi.MyProcNo,
			NeighbourPatch: pi.NeighbourPatch,
			bm:             bm,
		}
		start += pi.Size
	}
	return
}

func (bm *BoundaryMesh) Len() int          { return len(bm.patches) }
func (bm *BoundaryMesh) At(i int) *Patch   { return bm.patches[i] }
func (bm *BoundaryMesh) Patches() []*Patch { return bm.patches }

// Info returns the construction parameters of every patch, used to rebuild an equivalent boundary
func (bm *BoundaryMesh) Info() (info []PatchInfo) {
	info = make([]PatchInfo, len(bm.patches))
	for i, p := range bm.patches {
		info[i] = PatchInfo{Name: p.Name, Type: p.Type, Size: p.Size,
			NeighbProcNo: p.NeighbProcNo, MyProcNo: p.MyProcNo, NeighbourPatch: p.NeighbourPatch}
	}
	return
}

func (bm *BoundaryMesh) Names() (names []string) {
	names = make([]string, len(bm.patches))
	for i, p := range bm.patches {
		names[i] = p.Name
	}
	return
}

// FindPatchID returns the index of the named patch or -1
func (bm *BoundaryMesh) FindPatchID(name string) int {
	for i, p := range bm.patches {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// WhichPatch returns the patch holding a face, -1 for internal faces
func (bm *BoundaryMesh) WhichPatch(facei int) int {
	if facei < bm.mesh.NInternalFaces() {
		return -1
	}
	// Patches are ordered by Start, find the last one starting at or before facei
	i := sort.Search(len(bm.patches), func(i int) bool {
		p := bm.patches[i]
		return p.Start+p.Size > facei
	})
	if i == len(bm.patches) {
		panic(fmt.Errorf("face %d is beyond the last patch", facei))
	}
	return i
}

func (bm *BoundaryMesh) clearAddressing() {
	for _, p := range bm.patches {
		p.facePatch.clear()
	}
}
