package mesh

import (
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/polymesh/types"
)

const tetYAML = `
points:
  - [0, 0, 0]
  - [1, 0, 0]
  - [0, 1, 0]
  - [0, 0, 1]
faces:
  - [0, 2, 1]
  - [0, 1, 3]
  - [1, 2, 3]
  - [0, 3, 2]
owner: [0, 0, 0, 0]
neighbour: []
boundary:
  - name: base
    type: wall
    size: 1
  - name: sides
    type: patch
    size: 3
zones:
  - name: top
    type: pointZone
    labels: [3]
  - name: slanted
    type: faceZone
    labels: [2]
    flipMap: [true]
`

func TestMeshDescription(t *testing.T) {
	md := &MeshDescription{}
	require.NoError(t, yaml.Unmarshal([]byte(tetYAML), md))
	m, err := NewFromDescription(md)
	require.NoError(t, err)
	assert.Equal(t, 4, m.NPoints())
	assert.Equal(t, 1, m.NCells())
	assert.Equal(t, []string{"base", "sides"}, m.BoundaryMesh().Names())
	assert.Equal(t, types.PT_Wall, m.BoundaryMesh().At(0).Type)
	assert.Equal(t, []int{3}, m.PointZones().At(0).Addressing())
	assert.Equal(t, []bool{true}, m.FaceZones().At(0).FlipMap())
	assert.InDelta(t, 1./6., m.CellVolumes()[0], 1e-12)

	{ // Write and read back
		fileName := filepath.Join(t.TempDir(), "tet.yaml")
		require.NoError(t, m.WriteMeshFile(fileName))
		m2, err := ReadMeshFile(fileName)
		require.NoError(t, err)
		assert.Equal(t, m.Points(), m2.Points())
		assert.Equal(t, m.Faces(), m2.Faces())
		assert.Equal(t, m.FaceOwner(), m2.FaceOwner())
		assert.Equal(t, m.BoundaryMesh().Info(), m2.BoundaryMesh().Info())
		assert.Equal(t, m.FaceZones().Names(), m2.FaceZones().Names())
	}
	{ // Unknown patch types are rejected
		md.Boundary[0].Type = "inlet"
		_, err := NewFromDescription(md)
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
	{
		_, err := ReadMeshFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	}
}

func TestLDU(t *testing.T) {
	m := blockMesh(t, 3, 2, 1)
	la := m.LDUAddressing()
	assert.Equal(t, m.NInternalFaces(), len(la.Lower))
	for facei := range la.Upper {
		assert.Less(t, la.Lower[facei], la.Upper[facei])
	}
	// Cells are numbered along x first, the widest coupling is across a row
	assert.Equal(t, 3, la.Bandwidth())
	g := m.CellGraph()
	r, c := g.Dims()
	assert.Equal(t, m.NCells(), r)
	assert.Equal(t, m.NCells(), c)
	assert.Equal(t, m.NCells()+2*m.NInternalFaces(), g.NNZ())
	assert.Equal(t, la.Bandwidth(), CellGraphBandwidth(g))
	assert.Equal(t, 1., g.At(0, 1))
	assert.Equal(t, 0., g.At(0, 4))
	// Distance of every cell to its lowest neighbour
	assert.Equal(t, 1+1+3+3+3, la.Profile())

	single := blockMesh(t, 1, 1, 1)
	assert.Equal(t, 0, single.LDUAddressing().Bandwidth())
}
