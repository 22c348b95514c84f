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

	"github.com/notargets/polymesh/layers"
)

type RemoveLayer struct {
	MeshFile, InputFile string
	Zone, OutFile       string
}

// RemoveLayerCmd represents the removeLayer command
var RemoveLayerCmd = &cobra.Command{
	Use:   "removeLayer",
	Short: "Remove the layer of cells on the master side of a face zone",
	Long: `
Collapses the cells between a face zone and the faces opposite it, merging the far side of the layer
onto the zone, and writes the changed mesh.

polymesh removeLayer -F column.yaml -z layer -o collapsed.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		rl := &RemoveLayer{}
		rl.MeshFile, _ = cmd.Flags().GetString("meshFile")
		rl.InputFile, _ = cmd.Flags().GetString("inputFile")
		rl.Zone, _ = cmd.Flags().GetString("zone")
		rl.OutFile, _ = cmd.Flags().GetString("outFile")
		exitOnError(RunRemoveLayer(rl))
	},
}

func init() {
	rootCmd.AddCommand(RemoveLayerCmd)
	RemoveLayerCmd.Flags().StringP("meshFile", "F", "", "mesh file in YAML format")
	RemoveLayerCmd.Flags().StringP("inputFile", "I", "", "YAML file for input parameters like:\n\t- LayerZone\n\t- Zones")
	RemoveLayerCmd.Flags().StringP("zone", "z", "", "face zone bounding the layer, overrides LayerZone of the input file")
	RemoveLayerCmd.Flags().StringP("outFile", "o", "removed.yaml", "mesh file to write")
}

func RunRemoveLayer(rl *RemoveLayer) (err error) {
	m, ip, err := readMesh(rl.MeshFile, rl.InputFile)
	if err != nil {
		return
	}
	zone := ip.LayerZone
	if len(rl.Zone) != 0 {
		zone = rl.Zone
	}
	nm, mm, err := layers.RemoveCellLayer(m, zone)
	if err != nil {
		return
	}
	fmt.Printf("removed %d cells, merged %d points\n", mm.NOldCells-nm.NCells(), len(mm.MergedPoints))
	fmt.Println(nm.Info())
	if err = nm.WriteMeshFile(rl.OutFile); err != nil {
		return
	}
	fmt.Printf("wrote %s\n", rl.OutFile)
	return
}
