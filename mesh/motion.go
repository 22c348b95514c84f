package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// MovePoints replaces the point positions and returns the volume swept by every face during the
// move. The previous positions are kept as OldPoints and the geometry is recomputed on next use.
func (m *Mesh) MovePoints(newPoints []r3.Vec) (sweptVols []float64, err error) {
	if len(newPoints) != len(m.points) {
		return nil, fmt.Errorf("%w: moving %d points with %d new positions",
			ErrInvalidMesh, len(m.points), len(newPoints))
	}
	sweptVols = FaceSweptVolumes(m.faces, m.points, newPoints)
	m.oldPoints = m.points
	m.points = newPoints
	m.ClearGeom()
	m.logger.Printf("moved %d points, swept volume %g", len(newPoints), floats.Sum(sweptVols))
	return
}

func FaceSweptVolumes(faces []Face, oldPoints, newPoints []r3.Vec) (sv []float64) {
	sv = make([]float64, len(faces))
	for facei, f := range faces {
		sv[facei] = f.SweptVol(oldPoints, newPoints)
	}
	return
}
