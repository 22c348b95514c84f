/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/notargets/polymesh/mesh"
	"github.com/notargets/polymesh/utils"
)

type Decompose struct {
	MeshFile, InputFile, OutDir string
	NProcs                      int
}

// DecomposeCmd represents the decompose command
var DecomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Split a mesh into per rank meshes joined by processor patches",
	Long: `
Splits the cells of a mesh into contiguous blocks, one per rank, writes one mesh file per rank and
checks the decomposed meshes together.

polymesh decompose -F box.yaml -n 4 -o parts`,
	Run: func(cmd *cobra.Command, args []string) {
		d := &Decompose{}
		d.MeshFile, _ = cmd.Flags().GetString("meshFile")
		d.InputFile, _ = cmd.Flags().GetString("inputFile")
		d.OutDir, _ = cmd.Flags().GetString("outDir")
		d.NProcs, _ = cmd.Flags().GetInt("nprocs")
		exitOnError(RunDecompose(d))
	},
}

func init() {
	rootCmd.AddCommand(DecomposeCmd)
	DecomposeCmd.Flags().StringP("meshFile", "F", "", "mesh file to decompose in YAML format")
	DecomposeCmd.Flags().StringP("inputFile", "I", "", "YAML file for input parameters like:\n\t- NProcs\n\t- Zones")
	DecomposeCmd.Flags().StringP("outDir", "o", ".", "directory for the processor mesh files")
	DecomposeCmd.Flags().IntP("nprocs", "n", 0, "number of ranks, overrides NProcs of the input file")
}

func ProcessorFileName(dir string, rank int) string {
	return filepath.Join(dir, fmt.Sprintf("processor%d.yaml", rank))
}

func RunDecompose(dd *Decompose) (err error) {
	m, ip, err := readMesh(dd.MeshFile, dd.InputFile)
	if err != nil {
		return
	}
	nProcs := ip.NProcs
	if dd.NProcs > 0 {
		nProcs = dd.NProcs
	}
	d, err := mesh.Decompose(m, mesh.SimpleCellDecomposition(m.NCells(), nProcs), nProcs)
	if err != nil {
		return
	}
	failed := make([]bool, nProcs)
	err = utils.Run(nProcs, func(c utils.Comm) error {
		rm := d.Meshes[c.Rank()]
		rm.SetComm(c)
		failed[c.Rank()] = rm.CheckMesh(false)
		return nil
	})
	if err != nil {
		return
	}
	if failed[0] {
		return fmt.Errorf("decomposed mesh failed the checks")
	}
	if err = os.MkdirAll(dd.OutDir, 0755); err != nil {
		return
	}
	for r, rm := range d.Meshes {
		fileName := ProcessorFileName(dd.OutDir, r)
		if err = rm.WriteMeshFile(fileName); err != nil {
			return
		}
		fmt.Printf("rank %d: %s -> %s\n", r, rm.Info(), fileName)
	}
	return
}
