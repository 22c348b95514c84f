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

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/mesh"
)

type Generate struct {
	NX, NY, NZ int
	Length     [3]float64
	OutFile    string
}

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a block mesh of hexahedra to a mesh file",
	Long: `
Generates a structured block of nx by ny by nz hexahedra from the origin to the given lengths, with
one wall patch per block side named xMin, xMax, yMin, yMax, zMin and zMax.

polymesh generate -x 4 -y 2 -z 1 -o box.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		g := &Generate{}
		g.NX, _ = cmd.Flags().GetInt("nx")
		g.NY, _ = cmd.Flags().GetInt("ny")
		g.NZ, _ = cmd.Flags().GetInt("nz")
		g.Length[0], _ = cmd.Flags().GetFloat64("xLength")
		g.Length[1], _ = cmd.Flags().GetFloat64("yLength")
		g.Length[2], _ = cmd.Flags().GetFloat64("zLength")
		g.OutFile, _ = cmd.Flags().GetString("outFile")
		exitOnError(RunGenerate(g))
	},
}

func init() {
	rootCmd.AddCommand(GenerateCmd)
	GenerateCmd.Flags().IntP("nx", "x", 1, "cells along x")
	GenerateCmd.Flags().IntP("ny", "y", 1, "cells along y")
	GenerateCmd.Flags().IntP("nz", "z", 1, "cells along z")
	GenerateCmd.Flags().Float64("xLength", 1, "block length along x")
	GenerateCmd.Flags().Float64("yLength", 1, "block length along y")
	GenerateCmd.Flags().Float64("zLength", 1, "block length along z")
	GenerateCmd.Flags().StringP("outFile", "o", "block.yaml", "mesh file to write")
}

func RunGenerate(g *Generate) (err error) {
	var m *mesh.Mesh
	hi := r3.Vec{X: g.Length[0], Y: g.Length[1], Z: g.Length[2]}
	if m, err = mesh.NewBlockMesh(g.NX, g.NY, g.NZ, r3.Vec{}, hi); err != nil {
		return
	}
	fmt.Println(m.Info())
	if err = m.WriteMeshFile(g.OutFile); err != nil {
		return
	}
	fmt.Printf("wrote %s\n", g.OutFile)
	return
}
