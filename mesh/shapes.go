package mesh

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

// ElementType is the shape of a cell
type ElementType int

const (
	Tet ElementType = iota
	Hex
	Prism
	Pyramid
	Polyhedron
)

func (e ElementType) String() string {
	return [...]string{"Tet", "Hex", "Prism", "Pyramid", "Polyhedron"}[e]
}

// NumVertices returns the vertex count of a shape, 0 for polyhedra
func (e ElementType) NumVertices() int {
	return [...]int{4, 8, 6, 5, 0}[e]
}

// GetElementFaces returns the faces of a cell shape, oriented out of the cell
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Tet:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]},
			{vertices[0], vertices[1], vertices[3]},
			{vertices[1], vertices[2], vertices[3]},
			{vertices[0], vertices[3], vertices[2]},
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // bottom
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // top
			{vertices[0], vertices[1], vertices[5], vertices[4]},
			{vertices[1], vertices[2], vertices[6], vertices[5]},
			{vertices[2], vertices[3], vertices[7], vertices[6]},
			{vertices[3], vertices[0], vertices[4], vertices[7]},
		}
	case Prism:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]},
			{vertices[3], vertices[4], vertices[5]},
			{vertices[0], vertices[1], vertices[4], vertices[3]},
			{vertices[1], vertices[2], vertices[5], vertices[4]},
			{vertices[2], vertices[0], vertices[3], vertices[5]},
		}
	case Pyramid:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // base
			{vertices[0], vertices[1], vertices[4]},
			{vertices[1], vertices[2], vertices[4]},
			{vertices[2], vertices[3], vertices[4]},
			{vertices[3], vertices[0], vertices[4]},
		}
	default:
		return [][]int{}
	}
}

// CellShapes classifies every cell by the vertex counts of its faces
func (m *Mesh) CellShapes() []ElementType {
	return m.cellShapes.get(func() (shapes []ElementType) {
		cells := m.Cells()
		shapes = make([]ElementType, len(cells))
		for celli, cFaces := range cells {
			var nTri, nQuad, nOther int
			for _, facei := range cFaces {
				switch len(m.faces[facei]) {
				case 3:
					nTri++
				case 4:
					nQuad++
				default:
					nOther++
				}
			}
			shapes[celli] = classifyShape(nTri, nQuad, nOther)
		}
		return
	})
}

func (m *Mesh) HasCellShapes() bool { return m.cellShapes.has() }

func classifyShape(nTri, nQuad, nOther int) ElementType {
	switch {
	case nOther > 0:
		return Polyhedron
	case nTri == 4 && nQuad == 0:
		return Tet
	case nTri == 0 && nQuad == 6:
		return Hex
	case nTri == 2 && nQuad == 3:
		return Prism
	case nTri == 4 && nQuad == 1:
		return Pyramid
	}
	return Polyhedron
}

// CellShape is a cell given by its shape and vertices in the shape's vertex order
type CellShape struct {
	Type     ElementType
	Vertices []int
}

// ShapePatch names a set of boundary faces, each given by its vertices in any order
type ShapePatch struct {
	Name  string
	Type  types.PatchType
	Faces [][]int
}

type shapeFace struct {
	verts     Face
	owner     int
	neighbour int
	patch     int
}

// NewFromShapes builds a mesh from cell shapes. Faces shared by two cells become internal faces in
// upper triangular order, the boundary faces are assigned to the given patches and any left over
// are collected in a trailing "defaultFaces" patch.
func NewFromShapes(points []r3.Vec, shapes []CellShape, boundary []ShapePatch, opts ...Option) (*Mesh, error) {
	var (
		faceMap = make(map[types.FaceKey]int)
		all     []shapeFace
	)
	for celli, cs := range shapes {
		if cs.Type == Polyhedron || len(cs.Vertices) != cs.Type.NumVertices() {
			return nil, fmt.Errorf("%w: cell %d of type %s has %d vertices",
				ErrInvalidMesh, celli, cs.Type, len(cs.Vertices))
		}
		for _, fv := range GetElementFaces(cs.Type, cs.Vertices) {
			key := types.NewFaceKey(fv)
			if facei, exists := faceMap[key]; exists {
				f := &all[facei]
				if f.neighbour >= 0 || f.owner == celli {
					return nil, fmt.Errorf("%w: face %v is used by more than two cells",
						ErrInvalidMesh, fv)
				}
				f.neighbour = celli
				continue
			}
			faceMap[key] = len(all)
			all = append(all, shapeFace{verts: fv, owner: celli, neighbour: -1, patch: -1})
		}
	}
	var internal []int
	for facei, f := range all {
		if f.neighbour >= 0 {
			internal = append(internal, facei)
		}
	}
	sort.SliceStable(internal, func(i, j int) bool {
		a, b := all[internal[i]], all[internal[j]]
		if a.owner != b.owner {
			return a.owner < b.owner
		}
		return a.neighbour < b.neighbour
	})

	var (
		order   = internal
		patches = make([]PatchInfo, 0, len(boundary)+1)
	)
	for patchi, sp := range boundary {
		for _, fv := range sp.Faces {
			facei, ok := faceMap[types.NewFaceKey(fv)]
			if !ok || all[facei].neighbour >= 0 {
				return nil, fmt.Errorf("%w: patch %s face %v is not a boundary face",
					ErrInvalidMesh, sp.Name, fv)
			}
			if all[facei].patch >= 0 {
				return nil, fmt.Errorf("%w: patch %s face %v already belongs to patch %s",
					ErrInvalidMesh, sp.Name, fv, boundary[all[facei].patch].Name)
			}
			all[facei].patch = patchi
			order = append(order, facei)
		}
		patches = append(patches, PatchInfo{Name: sp.Name, Type: sp.Type, Size: len(sp.Faces)})
	}
	nDefault := 0
	for facei, f := range all {
		if f.neighbour < 0 && f.patch < 0 {
			order = append(order, facei)
			nDefault++
		}
	}
	if nDefault > 0 {
		patches = append(patches, PatchInfo{Name: "defaultFaces", Type: types.PT_Patch, Size: nDefault})
	}

	var (
		faces     = make([]Face, len(order))
		owner     = make([]int, len(order))
		neighbour = make([]int, len(internal))
	)
	for newI, facei := range order {
		f := all[facei]
		faces[newI] = f.verts
		owner[newI] = f.owner
		if newI < len(internal) {
			neighbour[newI] = f.neighbour
		}
	}
	return New(points, faces, owner, neighbour, patches, append([]Option{WithNCells(len(shapes))}, opts...)...)
}
