package InputParameters

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"

	"github.com/notargets/polymesh/mesh"
)

// Parameters obtained from the YAML input file
type MeshInput struct {
	Title        string               `json:"Title"`
	MeshFile     string               `json:"MeshFile"`
	NProcs       int                  `json:"NProcs"`
	LayerZone    string               `json:"LayerZone"`
	AreaSwitch   float64              `json:"AreaSwitch"`
	FaceWeighted bool                 `json:"FaceWeightedCentres"`
	Checks       mesh.CheckParameters `json:"Checks"`
	Zones        []mesh.ZoneDict      `json:"Zones"` // added to the mesh after it is read
}

// NewMeshInput returns the input with every unset parameter at its default
func NewMeshInput() *MeshInput {
	return &MeshInput{NProcs: 1, AreaSwitch: 1.0e-8, Checks: mesh.DefaultCheckParameters()}
}

// Parse overlays the YAML onto the current values, keys missing from the file keep their value
func (ip *MeshInput) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func ReadMeshInput(fileName string) (ip *MeshInput, err error) {
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = NewMeshInput()
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileName, err)
	}
	return
}

// Options returns the mesh construction options selected by the input
func (ip *MeshInput) Options() (opts []mesh.Option) {
	opts = []mesh.Option{mesh.WithCheckParameters(ip.Checks), mesh.WithAreaSwitch(ip.AreaSwitch)}
	if ip.FaceWeighted {
		opts = append(opts, mesh.WithCellCentreMode(mesh.FaceWeighted))
	}
	return
}

func (ip *MeshInput) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= MeshFile\n", ip.MeshFile)
	fmt.Printf("[%d]\t\t\t\t= NProcs\n", ip.NProcs)
	if ip.LayerZone != "" {
		fmt.Printf("[%s]\t\t\t= LayerZone\n", ip.LayerZone)
	}
	fmt.Printf("%8.2e\t\t= AreaSwitch\n", ip.AreaSwitch)
	fmt.Printf("%8.2f\t\t= NonOrthThreshold\n", ip.Checks.NonOrthThreshold)
	fmt.Printf("%8.2f\t\t= SkewThreshold\n", ip.Checks.SkewThreshold)
	fmt.Printf("%8.2f\t\t= AspectThreshold\n", ip.Checks.AspectThreshold)
	fmt.Printf("%v\t\t\t= AllGeometry\n", ip.Checks.AllGeometry)
	for _, z := range ip.Zones {
		fmt.Printf("Zones[%s] = %s %v\n", z.Name, z.Type, z.Labels)
	}
}
