package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/polymesh/types"
)

// Two tets sharing the face 1 2 3, with the outer faces split between two markers
const twoTetSU2 = `% two tets
NDIME= 3
NELEM= 2
10 0 1 2 3 0
10 1 2 3 4 1
NPOIN= 5
0.0 0.0 0.0 0
1.0 0.0 0.0 1
0.0 1.0 0.0 2
0.0 0.0 1.0 3
1.0 1.0 1.0 4
NMARK= 2
MARKER_TAG= base
MARKER_ELEMS= 1
5 0 2 1
MARKER_TAG= sides
MARKER_ELEMS= 2
5 0 1 3
5 0 3 2
`

func TestReadSU2(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "tets.su2")
	require.NoError(t, os.WriteFile(fileName, []byte(twoTetSU2), 0644))
	m, err := ReadMeshFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, 5, m.NPoints())
	assert.Equal(t, 2, m.NCells())
	assert.Equal(t, 1, m.NInternalFaces())
	assert.Equal(t, []string{"base", "sides", "defaultFaces"}, m.BoundaryMesh().Names())
	assert.Equal(t, types.PT_Patch, m.BoundaryMesh().At(0).Type)
	assert.Equal(t, 1, m.BoundaryMesh().At(0).Size)
	assert.Equal(t, 2, m.BoundaryMesh().At(1).Size)
	assert.Equal(t, 3, m.BoundaryMesh().At(2).Size)
	assert.Equal(t, []ElementType{Tet, Tet}, m.CellShapes())
	assert.InDelta(t, 1./6., m.CellVolumes()[0], 1e-12)
	assert.False(t, m.CheckTopology(false))
}

func TestParseSU2Errors(t *testing.T) {
	for name, content := range map[string]string{
		"2D":          "NDIME= 2\nNPOIN= 0\n",
		"no NDIME":    "NELEM= 0\n",
		"element":     "NDIME= 3\nNELEM= 1\n7 0 1 2\n",
		"short point": "NDIME= 3\nNPOIN= 1\n0.0 1.0\n",
		"truncated":   "NDIME= 3\nNPOIN= 2\n0 0 0\n",
		"marker":      "NDIME= 3\nNMARK= 1\nMARKER_ELEMS= 1\n",
	} {
		_, err := ParseSU2(strings.NewReader(content))
		assert.Error(t, err, name)
	}
}
