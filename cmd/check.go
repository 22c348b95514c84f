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
)

type Check struct {
	MeshFile, InputFile string
	AllGeometry         bool
}

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the topology and geometry of a mesh",
	Long: `
Runs the topology and geometry checks on a mesh file and reports the cell matrix bandwidth.

polymesh check -F box.yaml -I input.yaml --allGeometry`,
	Run: func(cmd *cobra.Command, args []string) {
		c := &Check{}
		c.MeshFile, _ = cmd.Flags().GetString("meshFile")
		c.InputFile, _ = cmd.Flags().GetString("inputFile")
		c.AllGeometry, _ = cmd.Flags().GetBool("allGeometry")
		failed, err := RunCheck(c)
		exitOnError(err)
		if failed {
			exitOnError(fmt.Errorf("mesh %s failed the checks", c.MeshFile))
		}
	},
}

func init() {
	rootCmd.AddCommand(CheckCmd)
	CheckCmd.Flags().StringP("meshFile", "F", "", "mesh file to check in YAML format")
	CheckCmd.Flags().StringP("inputFile", "I", "", "YAML file for input parameters like:\n\t- Checks (quality thresholds)\n\t- Zones")
	CheckCmd.Flags().BoolP("allGeometry", "a", false, "run the optional geometry checks too")
}

// RunCheck returns true if the mesh fails any check
func RunCheck(c *Check) (failed bool, err error) {
	m, ip, err := readMesh(c.MeshFile, c.InputFile)
	if err != nil {
		return
	}
	if len(c.InputFile) != 0 {
		ip.Print()
	}
	if c.AllGeometry {
		params := m.Parameters()
		params.AllGeometry = true
		m.SetCheckParameters(params)
	}
	fmt.Println(m.Info())
	for _, p := range m.BoundaryMesh().Patches() {
		fmt.Println(p)
	}
	failed = m.CheckMesh(true)
	la := m.LDUAddressing()
	fmt.Printf("cell matrix: bandwidth %d, profile %d, %d non zeros\n",
		la.Bandwidth(), la.Profile(), m.CellGraph().NNZ())
	return
}
