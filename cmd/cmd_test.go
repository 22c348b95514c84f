package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/polymesh/mesh"
	"github.com/notargets/polymesh/types"
)

func TestGenerateAndCheck(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "box.yaml")
	require.NoError(t, RunGenerate(&Generate{NX: 2, NY: 2, NZ: 2, Length: [3]float64{1, 1, 1}, OutFile: meshFile}))
	failed, err := RunCheck(&Check{MeshFile: meshFile, AllGeometry: true})
	require.NoError(t, err)
	assert.False(t, failed)

	_, err = RunCheck(&Check{})
	assert.Error(t, err, "a mesh file is required")
}

func TestRemoveLayerWithInput(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "column.yaml")
	require.NoError(t, RunGenerate(&Generate{NX: 1, NY: 1, NZ: 3, Length: [3]float64{1, 1, 1}, OutFile: meshFile}))
	inputFile := filepath.Join(dir, "input.yaml")
	fileInput := []byte(`
Title: Layer removal
MeshFile: ` + meshFile + `
LayerZone: layer
Zones:
  - name: layer
    type: faceZone
    labels: [0]
    flipMap: [false]
`)
	require.NoError(t, os.WriteFile(inputFile, fileInput, 0644))
	failed, err := RunCheck(&Check{InputFile: inputFile})
	require.NoError(t, err)
	assert.False(t, failed)

	outFile := filepath.Join(dir, "removed.yaml")
	require.NoError(t, RunRemoveLayer(&RemoveLayer{InputFile: inputFile, OutFile: outFile}))
	m, err := mesh.ReadMeshFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NCells())
	assert.Equal(t, []string{"layer"}, m.FaceZones().Names())

	err = RunRemoveLayer(&RemoveLayer{InputFile: inputFile, Zone: "none", OutFile: outFile})
	assert.Error(t, err)
}

func TestDecomposeFiles(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "box.yaml")
	require.NoError(t, RunGenerate(&Generate{NX: 4, NY: 2, NZ: 1, Length: [3]float64{2, 1, 1}, OutFile: meshFile}))
	outDir := filepath.Join(dir, "parts")
	require.NoError(t, RunDecompose(&Decompose{MeshFile: meshFile, OutDir: outDir, NProcs: 2}))
	for r := 0; r < 2; r++ {
		rm, err := mesh.ReadMeshFile(ProcessorFileName(outDir, r))
		require.NoError(t, err)
		assert.Equal(t, 4, rm.NCells())
		bm := rm.BoundaryMesh()
		p := bm.At(bm.Len() - 1)
		assert.Equal(t, types.PT_Processor, p.Type)
		assert.Equal(t, mesh.ProcPatchName(r, 1-r), p.Name)
	}
}

func TestInitConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "polymesh.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("profile: mem\n"), 0644))
	saved := cfgFile
	defer func() { cfgFile = saved; viper.Reset() }()
	cfgFile = cfg
	initConfig()
	assert.Equal(t, cfg, viper.ConfigFileUsed())
	assert.Equal(t, "mem", viper.GetString("profile"))
}
