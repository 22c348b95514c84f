package layers

import (
	"errors"
	"fmt"

	"github.com/notargets/polymesh/mesh"
	"github.com/notargets/polymesh/topochange"
)

var ErrInvalidLayer = errors.New("not a valid layer")

/*
RemoveCellLayer collapses the layer of master cells of the named face zone. The far side of the layer
is merged onto the zone, so the cells beyond it grow to fill the gap and the zone faces take the
place of the opposing faces.
*/
func RemoveCellLayer(m *mesh.Mesh, zoneName string) (*mesh.Mesh, *mesh.MeshMap, error) {
	p, ok := SetLayerPairing(m, zoneName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidLayer, zoneName)
	}
	l, err := removalLog(m, p)
	if err != nil {
		return nil, nil, err
	}
	return topochange.Apply(m, l)
}

func removalLog(m *mesh.Mesh, p *Pairing) (l *topochange.Log, err error) {
	var (
		faces      = m.Faces()
		owner      = m.FaceOwner()
		neighbour  = m.FaceNeighbour()
		bm         = m.BoundaryMesh()
		zoneID     = p.Zone.Index()
		flips      = p.Zone.FlipMap()
		layerCells = make(map[int]bool)
		keepFaces  = make(map[int]bool)
		modified   = make(map[int]bool)
		oppToZone  = make(map[int]int, len(p.PointsPairing))
	)
	l = topochange.NewLog(m)
	set := func(a topochange.Action, err error) error {
		if err != nil {
			return err
		}
		l.SetAction(a)
		return nil
	}
	other := func(facei, celli int) int {
		if owner[facei] == celli {
			if facei < len(neighbour) {
				return neighbour[facei]
			}
			return -1
		}
		return owner[facei]
	}
	for _, mc := range p.MasterCells {
		layerCells[mc] = true
	}
	for zonePoint, oppPoint := range p.PointsPairing {
		oppToZone[oppPoint] = zonePoint
	}
	for _, facei := range p.Zone.Addressing() {
		keepFaces[facei] = true
	}

	for i, facei := range p.Zone.Addressing() {
		mc, opp := p.MasterCells[i], p.OpposingFaces[i]
		beyond := other(opp, mc)
		slave := other(facei, mc)
		if layerCells[slave] || layerCells[beyond] {
			return nil, fmt.Errorf("%w: zone face %d lies inside the layer", ErrInvalidLayer, facei)
		}
		f := append(mesh.Face{}, faces[facei]...)
		switch {
		case beyond >= 0:
			own, nei, patchID := owner[facei], -1, -1
			if facei < len(neighbour) {
				nei = neighbour[facei]
			} else {
				// A zone face on a patch stays there, the layer is pulled off the wall
				patchID = bm.WhichPatch(facei)
			}
			if own == mc {
				own = beyond
			} else {
				nei = beyond
			}
			err = set(topochange.NewModifyFace(f, facei, own, nei, false, patchID, false, zoneID, flips[i]))
		case slave >= 0:
			// The layer sits on a boundary, the zone face takes over the boundary face
			flip := flips[i]
			if owner[facei] != slave {
				f = f.Reverse()
				flip = !flip
			}
			err = set(topochange.NewModifyFace(f, facei, slave, -1, false, bm.WhichPatch(opp), false, zoneID, flip))
		default:
			return nil, fmt.Errorf("%w: zone face %d has no cell outside the layer", ErrInvalidLayer, facei)
		}
		if err != nil {
			return
		}
		modified[facei] = true
	}

	cbuf := []int{}
	for mc := range layerCells {
		cbuf = m.CellsOf(mc, cbuf)
		for _, facei := range cbuf {
			if keepFaces[facei] || modified[facei] {
				continue
			}
			if err = set(topochange.NewRemoveFace(facei, -1)); err != nil {
				return
			}
			modified[facei] = true
		}
		if err = set(topochange.NewRemoveCell(mc, -1)); err != nil {
			return
		}
	}
	for oppPoint, zonePoint := range oppToZone {
		if err = set(topochange.NewRemovePoint(oppPoint, zonePoint)); err != nil {
			return
		}
	}

	// Faces beyond the layer lose their opposing points to the zone points
	for facei, f := range faces {
		if modified[facei] {
			continue
		}
		var renumbered mesh.Face
		for k, pointi := range f {
			if zonePoint, ok := oppToZone[pointi]; ok {
				if renumbered == nil {
					renumbered = append(mesh.Face{}, f...)
				}
				renumbered[k] = zonePoint
			}
		}
		if renumbered == nil {
			continue
		}
		nei := -1
		if facei < len(neighbour) {
			nei = neighbour[facei]
		}
		if err = set(topochange.NewModifyFace(renumbered, facei, owner[facei], nei, false,
			bm.WhichPatch(facei), false, -1, false)); err != nil {
			return
		}
	}
	m.Logger().Printf("removing layer of %d cells from zone %s", len(layerCells), p.Zone.Name())
	return
}
