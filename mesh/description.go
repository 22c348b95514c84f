package mesh

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

// PatchDescription is a patch entry of a mesh description file
type PatchDescription struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Size           int    `json:"size"`
	NeighbProcNo   int    `json:"neighbProcNo,omitempty"`
	MyProcNo       int    `json:"myProcNo,omitempty"`
	NeighbourPatch string `json:"neighbourPatch,omitempty"`
}

/*
MeshDescription is the file form of a mesh, read and written as YAML:

	points:    [[x, y, z], ...]
	faces:     [[p0, p1, p2, ...], ...]
	owner:     [c, ...]               one per face
	neighbour: [c, ...]               one per internal face
	boundary:  [{name, type, size}, ...]
	zones:     [{name, type, labels, flipMap}, ...]
*/
type MeshDescription struct {
	Points    [][3]float64       `json:"points"`
	Faces     [][]int            `json:"faces"`
	Owner     []int              `json:"owner"`
	Neighbour []int              `json:"neighbour"`
	NCells    int                `json:"nCells,omitempty"`
	Boundary  []PatchDescription `json:"boundary"`
	Zones     []ZoneDict         `json:"zones,omitempty"`
}

// Description returns the primitive form of the mesh
func (m *Mesh) Description() (md *MeshDescription) {
	md = &MeshDescription{
		Points:    make([][3]float64, len(m.points)),
		Faces:     make([][]int, len(m.faces)),
		Owner:     m.owner,
		Neighbour: m.neighbour,
		NCells:    m.nCells,
	}
	for i, p := range m.points {
		md.Points[i] = [3]float64{p.X, p.Y, p.Z}
	}
	for i, f := range m.faces {
		md.Faces[i] = f
	}
	for _, p := range m.boundary.Patches() {
		md.Boundary = append(md.Boundary, PatchDescription{
			Name: p.Name, Type: p.Type.String(), Size: p.Size,
			NeighbProcNo: p.NeighbProcNo, MyProcNo: p.MyProcNo, NeighbourPatch: p.NeighbourPatch,
		})
	}
	for _, z := range m.pointZones.Zones() {
		md.Zones = append(md.Zones, ZoneDict{Name: z.Name(), Type: z.Kind(), Labels: z.Addressing()})
	}
	for _, z := range m.faceZones.Zones() {
		md.Zones = append(md.Zones, ZoneDict{Name: z.Name(), Type: z.Kind(), Labels: z.Addressing(), FlipMap: z.FlipMap()})
	}
	for _, z := range m.cellZones.Zones() {
		md.Zones = append(md.Zones, ZoneDict{Name: z.Name(), Type: z.Kind(), Labels: z.Addressing()})
	}
	return
}

// NewFromDescription builds and validates the mesh of a description
func NewFromDescription(md *MeshDescription, opts ...Option) (m *Mesh, err error) {
	var (
		points  = make([]r3.Vec, len(md.Points))
		faces   = make([]Face, len(md.Faces))
		patches = make([]PatchInfo, len(md.Boundary))
	)
	for i, p := range md.Points {
		points[i] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	for i, f := range md.Faces {
		faces[i] = f
	}
	for i, pd := range md.Boundary {
		pt, ok := types.NewPatchType(pd.Type)
		if !ok {
			return nil, fmt.Errorf("%w: patch %s has unknown type %q", ErrInvalidMesh, pd.Name, pd.Type)
		}
		patches[i] = PatchInfo{
			Name: pd.Name, Type: pt, Size: pd.Size,
			NeighbProcNo: pd.NeighbProcNo, MyProcNo: pd.MyProcNo, NeighbourPatch: pd.NeighbourPatch,
		}
	}
	if md.NCells > 0 {
		opts = append([]Option{WithNCells(md.NCells)}, opts...)
	}
	if m, err = New(points, faces, md.Owner, md.Neighbour, patches, opts...); err != nil {
		return
	}
	err = m.AddZones(md.Zones...)
	return
}

// ReadMeshFile reads a mesh file based on extension, SU2 for .su2 and a YAML description otherwise
func ReadMeshFile(fileName string, opts ...Option) (m *Mesh, err error) {
	if strings.ToLower(filepath.Ext(fileName)) == ".su2" {
		return ReadSU2(fileName, opts...)
	}
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	md := &MeshDescription{}
	if err = yaml.Unmarshal(data, md); err != nil {
		return nil, fmt.Errorf("unable to parse mesh file %s: %w", fileName, err)
	}
	return NewFromDescription(md, opts...)
}

// WriteMeshFile writes the mesh as a YAML description
func (m *Mesh) WriteMeshFile(fileName string) (err error) {
	var data []byte
	if data, err = yaml.Marshal(m.Description()); err != nil {
		return
	}
	return os.WriteFile(fileName, data, 0644)
}
