package topochange

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/mesh"
	"github.com/notargets/polymesh/types"
)

// zoneSet holds the members of every zone of one kind, each member with its flip flag
type zoneSet []map[int]bool

func newZoneSet(n int) (zs zoneSet) {
	zs = make(zoneSet, n)
	for i := range zs {
		zs[i] = make(map[int]bool)
	}
	return
}

func (zs zoneSet) remove(label int) {
	for _, z := range zs {
		delete(z, label)
	}
}

func (zs zoneSet) add(zoneID, label int, flip bool) error {
	if zoneID >= len(zs) {
		return fmt.Errorf("%w: zone %d of %d", ErrInconsistentChange, zoneID, len(zs))
	}
	zs[zoneID][label] = flip
	return nil
}

// move applies the zone part of an add or modify action
func (zs zoneSet) move(label int, removeFromZone bool, zoneID int, flip bool) error {
	if removeFromZone || zoneID >= 0 {
		zs.remove(label)
	}
	if zoneID >= 0 {
		return zs.add(zoneID, label, flip)
	}
	return nil
}

func (zs zoneSet) toggle(label int) {
	for _, z := range zs {
		if flip, ok := z[label]; ok {
			z[label] = !flip
		}
	}
}

// state is the mesh being edited, indexed by provisional labels
type state struct {
	points, oldPoints []r3.Vec
	pointRemoved      []bool
	pointMerge        []int

	faces                   []mesh.Face
	owner, neighbour, patch []int
	flipFlux, faceRemoved   []bool
	faceMerge               []int

	cellRemoved []bool
	cellMerge   []int

	pointZones, faceZones, cellZones zoneSet

	nOldPoints, nOldFaces, nOldCells, nPatches int
}

func newState(m *mesh.Mesh) (s *state) {
	nFaces := m.NFaces()
	s = &state{
		points:       append([]r3.Vec{}, m.Points()...),
		pointRemoved: make([]bool, m.NPoints()),
		pointMerge:   filled(m.NPoints(), -1),
		faces:        make([]mesh.Face, nFaces),
		owner:        append([]int{}, m.FaceOwner()...),
		neighbour:    filled(nFaces, -1),
		patch:        filled(nFaces, -1),
		flipFlux:     make([]bool, nFaces),
		faceRemoved:  make([]bool, nFaces),
		faceMerge:    filled(nFaces, -1),
		cellRemoved:  make([]bool, m.NCells()),
		cellMerge:    filled(m.NCells(), -1),
		pointZones:   newZoneSet(m.PointZones().Len()),
		faceZones:    newZoneSet(m.FaceZones().Len()),
		cellZones:    newZoneSet(m.CellZones().Len()),
		nOldPoints:   m.NPoints(),
		nOldFaces:    nFaces,
		nOldCells:    m.NCells(),
		nPatches:     m.BoundaryMesh().Len(),
	}
	if m.Moving() {
		s.oldPoints = append([]r3.Vec{}, m.OldPoints()...)
	}
	for facei, f := range m.Faces() {
		s.faces[facei] = append(mesh.Face{}, f...)
	}
	copy(s.neighbour, m.FaceNeighbour())
	for _, p := range m.BoundaryMesh().Patches() {
		start, end := p.Range()
		for facei := start; facei < end; facei++ {
			s.patch[facei] = p.Index
		}
	}
	for zi, z := range m.PointZones().Zones() {
		for _, pointi := range z.Addressing() {
			s.pointZones[zi][pointi] = false
		}
	}
	for zi, z := range m.FaceZones().Zones() {
		for i, facei := range z.Addressing() {
			s.faceZones[zi][facei] = z.FlipMap()[i]
		}
	}
	for zi, z := range m.CellZones().Zones() {
		for _, celli := range z.Addressing() {
			s.cellZones[zi][celli] = false
		}
	}
	return
}

func filled(n, v int) (s []int) {
	s = make([]int, n)
	for i := range s {
		s[i] = v
	}
	return
}

func live(kind string, label int, removed []bool) error {
	if label < 0 || label >= len(removed) {
		return fmt.Errorf("%w: %s %d is not defined, have %d", ErrInconsistentChange, kind, label, len(removed))
	}
	if removed[label] {
		return fmt.Errorf("%w: %s %d has been removed", ErrInconsistentChange, kind, label)
	}
	return nil
}

func (s *state) record(a Action) (err error) {
	switch act := a.(type) {
	case *AddPoint:
		label := len(s.points)
		s.points = append(s.points, act.Point)
		if s.oldPoints != nil {
			old := act.Point
			if act.MasterPoint >= 0 && act.MasterPoint < s.nOldPoints {
				old = s.oldPoints[act.MasterPoint]
			}
			s.oldPoints = append(s.oldPoints, old)
		}
		s.pointRemoved = append(s.pointRemoved, false)
		s.pointMerge = append(s.pointMerge, -1)
		err = s.pointZones.move(label, false, act.Zone, false)
	case *AddFace:
		label := len(s.faces)
		s.faces = append(s.faces, append(mesh.Face{}, act.Face...))
		s.owner = append(s.owner, act.Owner)
		s.neighbour = append(s.neighbour, act.Neighbour)
		s.patch = append(s.patch, act.Patch)
		s.flipFlux = append(s.flipFlux, act.FlipFaceFlux)
		s.faceRemoved = append(s.faceRemoved, false)
		s.faceMerge = append(s.faceMerge, -1)
		err = s.faceZones.move(label, false, act.Zone, act.ZoneFlip)
	case *AddCell:
		label := len(s.cellRemoved)
		s.cellRemoved = append(s.cellRemoved, false)
		s.cellMerge = append(s.cellMerge, -1)
		err = s.cellZones.move(label, false, act.Zone, false)
	case *ModifyPoint:
		if err = live("point", act.Label, s.pointRemoved); err != nil {
			return
		}
		s.points[act.Label] = act.Point
		err = s.pointZones.move(act.Label, act.RemoveFromZone, act.Zone, false)
	case *ModifyFace:
		if err = live("face", act.Label, s.faceRemoved); err != nil {
			return
		}
		s.faces[act.Label] = append(mesh.Face{}, act.Face...)
		s.owner[act.Label] = act.Owner
		s.neighbour[act.Label] = act.Neighbour
		s.patch[act.Label] = act.Patch
		s.flipFlux[act.Label] = act.FlipFaceFlux
		err = s.faceZones.move(act.Label, act.RemoveFromZone, act.Zone, act.ZoneFlip)
	case *ModifyCell:
		if err = live("cell", act.Label, s.cellRemoved); err != nil {
			return
		}
		err = s.cellZones.move(act.Label, act.RemoveFromZone, act.Zone, false)
	case *RemovePoint:
		if err = live("point", act.Label, s.pointRemoved); err != nil {
			return
		}
		s.pointRemoved[act.Label], s.pointMerge[act.Label] = true, act.MergeInto
		s.pointZones.remove(act.Label)
	case *RemoveFace:
		if err = live("face", act.Label, s.faceRemoved); err != nil {
			return
		}
		s.faceRemoved[act.Label], s.faceMerge[act.Label] = true, act.MergeInto
		s.faceZones.remove(act.Label)
	case *RemoveCell:
		if err = live("cell", act.Label, s.cellRemoved); err != nil {
			return
		}
		s.cellRemoved[act.Label], s.cellMerge[act.Label] = true, act.MergeInto
		s.cellZones.remove(act.Label)
	default:
		err = fmt.Errorf("%w: unknown action %T", ErrInconsistentChange, a)
	}
	if err != nil {
		err = fmt.Errorf("%s: %w", a, err)
	}
	return
}

// orient puts every live face on its owner side with owner < neighbour, reversing faces as needed
func (s *state) orient() (err error) {
	nFacesOfCell := make([]int, len(s.cellRemoved))
	for facei, f := range s.faces {
		if s.faceRemoved[facei] {
			continue
		}
		for _, pointi := range f {
			if err = live("point", pointi, s.pointRemoved); err != nil {
				return fmt.Errorf("face %d: %w", facei, err)
			}
		}
		own, nei := s.owner[facei], s.neighbour[facei]
		if own < 0 && nei < 0 {
			return fmt.Errorf("%w: face %d has no cell", ErrInconsistentChange, facei)
		}
		if own < 0 || (nei >= 0 && nei < own) {
			s.reverse(facei)
			own, nei = s.owner[facei], s.neighbour[facei]
		}
		for _, celli := range []int{own, nei} {
			if celli < 0 {
				continue
			}
			if err = live("cell", celli, s.cellRemoved); err != nil {
				return fmt.Errorf("face %d: %w", facei, err)
			}
			nFacesOfCell[celli]++
		}
		if nei < 0 && (s.patch[facei] < 0 || s.patch[facei] >= s.nPatches) {
			return fmt.Errorf("%w: boundary face %d in patch %d of %d",
				ErrInconsistentChange, facei, s.patch[facei], s.nPatches)
		}
		if nei >= 0 {
			s.patch[facei] = -1
		}
	}
	for celli, n := range nFacesOfCell {
		if !s.cellRemoved[celli] && n == 0 {
			return fmt.Errorf("%w: cell %d has no faces", ErrInconsistentChange, celli)
		}
	}
	return
}

func (s *state) reverse(facei int) {
	own, nei := s.owner[facei], s.neighbour[facei]
	if own < 0 {
		s.owner[facei], s.neighbour[facei] = nei, -1
	} else {
		s.owner[facei], s.neighbour[facei] = nei, own
	}
	s.faces[facei] = s.faces[facei].Reverse()
	s.flipFlux[facei] = !s.flipFlux[facei]
	s.faceZones.toggle(facei)
}

// compact numbers the live entities in label order and returns new->working and working->new maps
func compact(removed []bool) (newToWork, workToNew []int) {
	workToNew = filled(len(removed), -1)
	for i, r := range removed {
		if !r {
			workToNew[i] = len(newToWork)
			newToWork = append(newToWork, i)
		}
	}
	return
}

func oldLabels(newToWork []int, nOld int) (newToOld []int) {
	newToOld = make([]int, len(newToWork))
	for i, w := range newToWork {
		if w < nOld {
			newToOld[i] = w
		} else {
			newToOld[i] = -1
		}
	}
	return
}

func merged(merge []int, nOld int, removed []bool, workToNew []int) (mergedMap map[int]int, err error) {
	mergedMap = make(map[int]int)
	for i, target := range merge {
		if target < 0 {
			continue
		}
		if target >= len(removed) || removed[target] {
			return nil, fmt.Errorf("%w: %d merges into removed or undefined %d", ErrInconsistentChange, i, target)
		}
		if i < nOld {
			mergedMap[i] = workToNew[target]
		}
	}
	return
}

/*
Apply consumes the log and builds the changed mesh. Internal faces are ordered upper triangular and
boundary faces grouped by patch. The input mesh is never modified, on error no mesh is produced.
*/
func Apply(m *mesh.Mesh, l *Log) (newMesh *mesh.Mesh, mm *mesh.MeshMap, err error) {
	if l.applied {
		return nil, nil, ErrLogConsumed
	}
	l.applied = true
	if l.mesh != m {
		return nil, nil, fmt.Errorf("%w: log was recorded against another mesh", ErrInconsistentChange)
	}
	s := newState(m)
	for _, a := range l.actions {
		if err = s.record(a); err != nil {
			return nil, nil, err
		}
	}
	if err = s.orient(); err != nil {
		return nil, nil, err
	}

	newToWorkPoint, pointToNew := compact(s.pointRemoved)
	newToWorkCell, cellToNew := compact(s.cellRemoved)

	var internal, boundary []int
	for facei := range s.faces {
		switch {
		case s.faceRemoved[facei]:
		case s.neighbour[facei] >= 0:
			internal = append(internal, facei)
		default:
			boundary = append(boundary, facei)
		}
	}
	sort.Slice(internal, func(i, j int) bool {
		fi, fj := internal[i], internal[j]
		oi, oj := cellToNew[s.owner[fi]], cellToNew[s.owner[fj]]
		if oi != oj {
			return oi < oj
		}
		ni, nj := cellToNew[s.neighbour[fi]], cellToNew[s.neighbour[fj]]
		if ni != nj {
			return ni < nj
		}
		return fi < fj
	})
	sort.SliceStable(boundary, func(i, j int) bool {
		return s.patch[boundary[i]] < s.patch[boundary[j]]
	})
	newToWorkFace := append(internal, boundary...)
	faceToNew := filled(len(s.faces), -1)
	for newi, facei := range newToWorkFace {
		faceToNew[facei] = newi
	}

	var (
		nFaces    = len(newToWorkFace)
		points    = make([]r3.Vec, len(newToWorkPoint))
		faces     = make([]mesh.Face, nFaces)
		owner     = make([]int, nFaces)
		neighbour = make([]int, len(internal))
		patches   = m.BoundaryMesh().Info()
	)
	for newi, pointi := range newToWorkPoint {
		points[newi] = s.points[pointi]
	}
	for i := range patches {
		patches[i].Size = 0
	}
	for newi, facei := range newToWorkFace {
		f := make(mesh.Face, len(s.faces[facei]))
		for k, pointi := range s.faces[facei] {
			f[k] = pointToNew[pointi]
		}
		faces[newi] = f
		owner[newi] = cellToNew[s.owner[facei]]
		if newi < len(internal) {
			neighbour[newi] = cellToNew[s.neighbour[facei]]
		} else {
			patches[s.patch[facei]].Size++
		}
	}

	mm = &mesh.MeshMap{
		NOldPoints:        m.NPoints(),
		NOldFaces:         m.NFaces(),
		NOldCells:         m.NCells(),
		NOldInternalFaces: m.NInternalFaces(),
		PointMap:          oldLabels(newToWorkPoint, s.nOldPoints),
		FaceMap:           oldLabels(newToWorkFace, s.nOldFaces),
		CellMap:           oldLabels(newToWorkCell, s.nOldCells),
		ReversePointMap:   pointToNew[:s.nOldPoints],
		ReverseFaceMap:    faceToNew[:s.nOldFaces],
		ReverseCellMap:    cellToNew[:s.nOldCells],
		FlipFaceFlux:      types.NewLabelSet(),
	}
	for _, p := range m.BoundaryMesh().Patches() {
		mm.OldPatchStarts = append(mm.OldPatchStarts, p.Start)
		mm.OldPatchSizes = append(mm.OldPatchSizes, p.Size)
	}
	for newi, facei := range newToWorkFace {
		if s.flipFlux[facei] {
			mm.FlipFaceFlux.Insert(newi)
		}
	}
	if mm.MergedPoints, err = merged(s.pointMerge, s.nOldPoints, s.pointRemoved, pointToNew); err != nil {
		return nil, nil, fmt.Errorf("points: %w", err)
	}
	if mm.MergedFaces, err = merged(s.faceMerge, s.nOldFaces, s.faceRemoved, faceToNew); err != nil {
		return nil, nil, fmt.Errorf("faces: %w", err)
	}
	if mm.MergedCells, err = merged(s.cellMerge, s.nOldCells, s.cellRemoved, cellToNew); err != nil {
		return nil, nil, fmt.Errorf("cells: %w", err)
	}

	opts := append(m.Inherit(), mesh.WithNCells(len(newToWorkCell)))
	if s.oldPoints != nil {
		oldPoints := make([]r3.Vec, len(newToWorkPoint))
		for newi, pointi := range newToWorkPoint {
			oldPoints[newi] = s.oldPoints[pointi]
		}
		opts = append(opts, mesh.WithOldPoints(oldPoints))
	}
	if newMesh, err = mesh.New(points, faces, owner, neighbour, patches, opts...); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInconsistentChange, err)
	}
	if err = s.buildZones(m, newMesh, pointToNew, faceToNew, cellToNew); err != nil {
		return nil, nil, err
	}
	m.Logger().Printf("applied %d topology actions: %d points, %d faces (%d internal), %d cells",
		len(l.actions), len(points), nFaces, len(internal), len(newToWorkCell))
	return
}

// members returns the new labels of a zone in ascending order with their flip flags
func members(z map[int]bool, toNew []int) (labels []int, flips []bool) {
	labels = make([]int, 0, len(z))
	for label := range z {
		labels = append(labels, toNew[label])
	}
	sort.Ints(labels)
	flipOf := make(map[int]bool, len(z))
	for label, flip := range z {
		flipOf[toNew[label]] = flip
	}
	flips = make([]bool, len(labels))
	for i, l := range labels {
		flips[i] = flipOf[l]
	}
	return
}

func (s *state) buildZones(m, newMesh *mesh.Mesh, pointToNew, faceToNew, cellToNew []int) (err error) {
	for zi, z := range m.PointZones().Zones() {
		labels, _ := members(s.pointZones[zi], pointToNew)
		if err = newMesh.AddZone(mesh.NewPointZone(z.Name(), labels)); err != nil {
			return
		}
	}
	for zi, z := range m.FaceZones().Zones() {
		labels, flips := members(s.faceZones[zi], faceToNew)
		var fz *mesh.FaceZone
		if fz, err = mesh.NewFaceZone(z.Name(), labels, flips); err != nil {
			return
		}
		if err = newMesh.AddZone(fz); err != nil {
			return
		}
	}
	for zi, z := range m.CellZones().Zones() {
		labels, _ := members(s.cellZones[zi], cellToNew)
		if err = newMesh.AddZone(mesh.NewCellZone(z.Name(), labels)); err != nil {
			return
		}
	}
	return
}
