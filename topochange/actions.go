package topochange

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/mesh"
)

var ErrInvalidAction = errors.New("invalid topology action")

// Action is one recorded change. The set of actions is closed, every action is built by its NewXxx
// constructor which rejects structurally invalid input.
type Action interface {
	fmt.Stringer
	action()
}

type AddPoint struct {
	Point       r3.Vec
	MasterPoint int
	Zone        int
	InCell      bool
}

// NewAddPoint adds a point inflated from masterPoint (-1 for none). A point must support a cell or
// belong to a zone.
func NewAddPoint(p r3.Vec, masterPoint, zoneID int, inCell bool) (*AddPoint, error) {
	if masterPoint < -1 || zoneID < -1 {
		return nil, fmt.Errorf("%w: add point with master %d and zone %d", ErrInvalidAction, masterPoint, zoneID)
	}
	if zoneID < 0 && !inCell {
		return nil, fmt.Errorf("%w: added point %v is in no cell and no zone", ErrInvalidAction, p)
	}
	return &AddPoint{Point: p, MasterPoint: masterPoint, Zone: zoneID, InCell: inCell}, nil
}

type AddFace struct {
	Face                                mesh.Face
	Owner, Neighbour                    int
	MasterPoint, MasterEdge, MasterFace int
	FlipFaceFlux                        bool
	Patch                               int
	Zone                                int
	ZoneFlip                            bool
}

/*
NewAddFace adds a face. Internal faces have patchID -1 and a neighbour, boundary faces a patch and
neighbour -1. The masters record where the face was inflated from and are -1 when unused. A face
with only a neighbour is flipped onto the owner side when the log is applied.
*/
func NewAddFace(f mesh.Face, owner, neighbour, masterPoint, masterEdge, masterFace int, flipFaceFlux bool,
	patchID, zoneID int, zoneFlip bool) (*AddFace, error) {
	if err := checkFace(f, owner, neighbour, patchID, zoneID, zoneFlip); err != nil {
		return nil, err
	}
	if owner < 0 && neighbour < 0 && zoneID < 0 {
		return nil, fmt.Errorf("%w: added face %v has no cell and no zone", ErrInvalidAction, f)
	}
	return &AddFace{
		Face: f, Owner: owner, Neighbour: neighbour,
		MasterPoint: masterPoint, MasterEdge: masterEdge, MasterFace: masterFace,
		FlipFaceFlux: flipFaceFlux, Patch: patchID, Zone: zoneID, ZoneFlip: zoneFlip,
	}, nil
}

func checkFace(f mesh.Face, owner, neighbour, patchID, zoneID int, zoneFlip bool) error {
	if len(f) < 3 {
		return fmt.Errorf("%w: face %v has fewer than 3 vertices", ErrInvalidAction, f)
	}
	for _, pointi := range f {
		if pointi < 0 {
			return fmt.Errorf("%w: face %v has a negative vertex label", ErrInvalidAction, f)
		}
	}
	if owner >= 0 && owner == neighbour {
		return fmt.Errorf("%w: face %v has owner == neighbour == %d", ErrInvalidAction, f, owner)
	}
	if neighbour >= 0 && patchID >= 0 {
		return fmt.Errorf("%w: face %v has neighbour %d and patch %d", ErrInvalidAction, f, neighbour, patchID)
	}
	if zoneID < 0 && zoneFlip {
		return fmt.Errorf("%w: face %v has a zone flip without a zone", ErrInvalidAction, f)
	}
	return nil
}

type AddCell struct {
	MasterPoint, MasterEdge, MasterFace, MasterCell int
	Zone                                            int
}

func NewAddCell(masterPoint, masterEdge, masterFace, masterCell, zoneID int) (*AddCell, error) {
	if zoneID < -1 {
		return nil, fmt.Errorf("%w: add cell with zone %d", ErrInvalidAction, zoneID)
	}
	return &AddCell{
		MasterPoint: masterPoint, MasterEdge: masterEdge, MasterFace: masterFace, MasterCell: masterCell,
		Zone: zoneID,
	}, nil
}

// ModifyPoint moves a point. RemoveFromZone drops all zone memberships, a zone >= 0 moves the point
// into that zone, and with neither the memberships are unchanged.
type ModifyPoint struct {
	Label          int
	Point          r3.Vec
	RemoveFromZone bool
	Zone           int
	InCell         bool
}

func NewModifyPoint(pointi int, p r3.Vec, removeFromZone bool, zoneID int, inCell bool) (*ModifyPoint, error) {
	if pointi < 0 {
		return nil, fmt.Errorf("%w: modify point %d", ErrInvalidAction, pointi)
	}
	if zoneID < -1 {
		return nil, fmt.Errorf("%w: modify point %d into zone %d", ErrInvalidAction, pointi, zoneID)
	}
	return &ModifyPoint{Label: pointi, Point: p, RemoveFromZone: removeFromZone, Zone: zoneID, InCell: inCell}, nil
}

type ModifyFace struct {
	Label            int
	Face             mesh.Face
	Owner, Neighbour int
	FlipFaceFlux     bool
	Patch            int
	RemoveFromZone   bool
	Zone             int
	ZoneFlip         bool
}

func NewModifyFace(f mesh.Face, facei, owner, neighbour int, flipFaceFlux bool, patchID int,
	removeFromZone bool, zoneID int, zoneFlip bool) (*ModifyFace, error) {
	if facei < 0 {
		return nil, fmt.Errorf("%w: modify face %d", ErrInvalidAction, facei)
	}
	if err := checkFace(f, owner, neighbour, patchID, zoneID, zoneFlip); err != nil {
		return nil, fmt.Errorf("modify face %d: %w", facei, err)
	}
	return &ModifyFace{
		Label: facei, Face: f, Owner: owner, Neighbour: neighbour, FlipFaceFlux: flipFaceFlux,
		Patch: patchID, RemoveFromZone: removeFromZone, Zone: zoneID, ZoneFlip: zoneFlip,
	}, nil
}

type ModifyCell struct {
	Label          int
	RemoveFromZone bool
	Zone           int
}

func NewModifyCell(celli int, removeFromZone bool, zoneID int) (*ModifyCell, error) {
	if celli < 0 || zoneID < -1 {
		return nil, fmt.Errorf("%w: modify cell %d into zone %d", ErrInvalidAction, celli, zoneID)
	}
	return &ModifyCell{Label: celli, RemoveFromZone: removeFromZone, Zone: zoneID}, nil
}

// RemovePoint removes a point, a merge target >= 0 records the point that takes over its identity
type RemovePoint struct {
	Label, MergeInto int
}

func NewRemovePoint(pointi, mergeInto int) (*RemovePoint, error) {
	if err := checkRemove("point", pointi, mergeInto); err != nil {
		return nil, err
	}
	return &RemovePoint{Label: pointi, MergeInto: mergeInto}, nil
}

type RemoveFace struct {
	Label, MergeInto int
}

func NewRemoveFace(facei, mergeInto int) (*RemoveFace, error) {
	if err := checkRemove("face", facei, mergeInto); err != nil {
		return nil, err
	}
	return &RemoveFace{Label: facei, MergeInto: mergeInto}, nil
}

type RemoveCell struct {
	Label, MergeInto int
}

func NewRemoveCell(celli, mergeInto int) (*RemoveCell, error) {
	if err := checkRemove("cell", celli, mergeInto); err != nil {
		return nil, err
	}
	return &RemoveCell{Label: celli, MergeInto: mergeInto}, nil
}

func checkRemove(kind string, label, mergeInto int) error {
	if label < 0 || mergeInto < -1 {
		return fmt.Errorf("%w: remove %s %d merging into %d", ErrInvalidAction, kind, label, mergeInto)
	}
	if label == mergeInto {
		return fmt.Errorf("%w: %s %d merges into itself", ErrInvalidAction, kind, label)
	}
	return nil
}

func (a *AddPoint) action()    {}
func (a *AddFace) action()     {}
func (a *AddCell) action()     {}
func (a *ModifyPoint) action() {}
func (a *ModifyFace) action()  {}
func (a *ModifyCell) action()  {}
func (a *RemovePoint) action() {}
func (a *RemoveFace) action()  {}
func (a *RemoveCell) action()  {}

func (a *AddPoint) String() string { return fmt.Sprintf("addPoint %v zone %d", a.Point, a.Zone) }
func (a *AddFace) String() string {
	return fmt.Sprintf("addFace %v own %d nei %d patch %d zone %d", a.Face, a.Owner, a.Neighbour, a.Patch, a.Zone)
}
func (a *AddCell) String() string { return fmt.Sprintf("addCell zone %d", a.Zone) }
func (a *ModifyPoint) String() string {
	return fmt.Sprintf("modifyPoint %d to %v zone %d", a.Label, a.Point, a.Zone)
}
func (a *ModifyFace) String() string {
	return fmt.Sprintf("modifyFace %d to %v own %d nei %d patch %d", a.Label, a.Face, a.Owner, a.Neighbour, a.Patch)
}
func (a *ModifyCell) String() string  { return fmt.Sprintf("modifyCell %d zone %d", a.Label, a.Zone) }
func (a *RemovePoint) String() string { return fmt.Sprintf("removePoint %d into %d", a.Label, a.MergeInto) }
func (a *RemoveFace) String() string  { return fmt.Sprintf("removeFace %d into %d", a.Label, a.MergeInto) }
func (a *RemoveCell) String() string  { return fmt.Sprintf("removeCell %d into %d", a.Label, a.MergeInto) }
