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
	"log"
	"os"

	"github.com/notargets/polymesh/InputParameters"
	"github.com/notargets/polymesh/mesh"
)

// readMesh reads the mesh file with the parameters and extra zones of the optional input file. The
// mesh file named on the command line wins over the one named in the input file.
func readMesh(meshFile, inputFile string) (m *mesh.Mesh, ip *InputParameters.MeshInput, err error) {
	ip = InputParameters.NewMeshInput()
	if len(inputFile) != 0 {
		if ip, err = InputParameters.ReadMeshInput(inputFile); err != nil {
			return
		}
	}
	if len(meshFile) == 0 {
		meshFile = ip.MeshFile
	}
	if len(meshFile) == 0 {
		err = fmt.Errorf("must supply a mesh file (-F, --meshFile) or name one in the input file")
		exampleFile := `
########################################
Title: "Test Case"
MeshFile: box.yaml
NProcs: 2
Checks:
  nonOrthThreshold: 70
  allGeometry: true
Zones:
  - name: layer
    type: faceZone
    labels: [0]
    flipMap: [false]
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return
	}
	opts := append(ip.Options(), mesh.WithLogger(log.New(os.Stdout, "", 0)))
	if m, err = mesh.ReadMeshFile(meshFile, opts...); err != nil {
		return
	}
	err = m.AddZones(ip.Zones...)
	return
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
}
