package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/polymesh/mesh"
)

func TestMeshInput(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
MeshFile: column.yaml
NProcs: 4
LayerZone: layer
Checks:
  nonOrthThreshold: 60
  allGeometry: true
Zones:
  - name: layer
    type: faceZone
    labels: [0]
    flipMap: [false]
  - name: bottom
    type: cellZone
    labels: [0, 1]
`)
	ip := NewMeshInput()
	require.NoError(t, ip.Parse(fileInput))
	assert.Equal(t, "Test Case", ip.Title)
	assert.Equal(t, 4, ip.NProcs)
	assert.Equal(t, "layer", ip.LayerZone)
	assert.Equal(t, 60., ip.Checks.NonOrthThreshold)
	assert.True(t, ip.Checks.AllGeometry)
	// Unset keys keep their defaults
	def := mesh.DefaultCheckParameters()
	assert.Equal(t, def.SkewThreshold, ip.Checks.SkewThreshold)
	assert.Equal(t, 1.0e-8, ip.AreaSwitch)
	require.Len(t, ip.Zones, 2)
	assert.Equal(t, []bool{false}, ip.Zones[0].FlipMap)
	assert.Equal(t, "cellZone", ip.Zones[1].Type)
	assert.Len(t, ip.Options(), 2)
	ip.Print()

	fileName := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(fileName, fileInput, 0644))
	fromFile, err := ReadMeshInput(fileName)
	require.NoError(t, err)
	assert.Equal(t, ip, fromFile)

	require.NoError(t, os.WriteFile(fileName, []byte("NProcs: [1, 2]"), 0644))
	_, err = ReadMeshInput(fileName)
	assert.Error(t, err)
}
