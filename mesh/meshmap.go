package mesh

import (
	"github.com/notargets/polymesh/types"
)

/*
MeshMap relates the entities of a mesh before and after a topology change.

	PointMap, FaceMap, CellMap                      new label -> old label, -1 for added entities
	ReversePointMap, ReverseFaceMap, ReverseCellMap old label -> new label, -1 for removed entities
	MergedPoints, MergedFaces, MergedCells          removed old label -> new label of its merge target
	FlipFaceFlux                                    new labels of faces stored with reversed orientation
*/
type MeshMap struct {
	NOldPoints, NOldFaces, NOldCells, NOldInternalFaces int

	PointMap, FaceMap, CellMap                      []int
	ReversePointMap, ReverseFaceMap, ReverseCellMap []int
	MergedPoints, MergedFaces, MergedCells          map[int]int

	FlipFaceFlux types.LabelSet

	OldPatchStarts, OldPatchSizes []int
}

func (mm *MeshMap) NPoints() int { return len(mm.PointMap) }
func (mm *MeshMap) NFaces() int  { return len(mm.FaceMap) }
func (mm *MeshMap) NCells() int  { return len(mm.CellMap) }

// AddedPoints returns the new labels of points without an old counterpart
func (mm *MeshMap) AddedPoints() []int { return added(mm.PointMap) }
func (mm *MeshMap) AddedFaces() []int  { return added(mm.FaceMap) }
func (mm *MeshMap) AddedCells() []int  { return added(mm.CellMap) }

func added(newToOld []int) (labels []int) {
	for i, old := range newToOld {
		if old < 0 {
			labels = append(labels, i)
		}
	}
	return
}

// MapField carries per entity values across a topology change, entities without an old label get
// defaultValue
func MapField[T any](newToOld []int, old []T, defaultValue T) (mapped []T) {
	mapped = make([]T, len(newToOld))
	for i, o := range newToOld {
		if o >= 0 && o < len(old) {
			mapped[i] = old[o]
		} else {
			mapped[i] = defaultValue
		}
	}
	return
}

// identityMap is used when a mesh is rebuilt without renumbering
func identityMap(n int) (m []int) {
	m = make([]int, n)
	for i := range m {
		m[i] = i
	}
	return
}

// IdentityMeshMap maps a mesh onto itself
func IdentityMeshMap(m *Mesh) *MeshMap {
	mm := &MeshMap{
		NOldPoints:        m.NPoints(),
		NOldFaces:         m.NFaces(),
		NOldCells:         m.NCells(),
		NOldInternalFaces: m.NInternalFaces(),
		PointMap:          identityMap(m.NPoints()),
		FaceMap:           identityMap(m.NFaces()),
		CellMap:           identityMap(m.NCells()),
		ReversePointMap:   identityMap(m.NPoints()),
		ReverseFaceMap:    identityMap(m.NFaces()),
		ReverseCellMap:    identityMap(m.NCells()),
		MergedPoints:      map[int]int{},
		MergedFaces:       map[int]int{},
		MergedCells:       map[int]int{},
		FlipFaceFlux:      types.NewLabelSet(),
	}
	for _, p := range m.BoundaryMesh().Patches() {
		mm.OldPatchStarts = append(mm.OldPatchStarts, p.Start)
		mm.OldPatchSizes = append(mm.OldPatchSizes, p.Size)
	}
	return mm
}
