package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/polymesh/types"
	"github.com/notargets/polymesh/utils"
)

// Zone is a named ordered subset of the points, faces or cells of a mesh
type Zone interface {
	Name() string
	Index() int
	Addressing() []int
	// Kind is the registered type name, one of pointZone, faceZone or cellZone for the built in zones
	Kind() string
	Mesh() *Mesh
	LocalID(i int) int
	CheckDefinition(report bool) bool
	CheckParallelSync(report bool) bool
	UpdateMesh(mm *MeshMap)
	ClearAddressing()
	attach(m *Mesh, index int)
}

type zone struct {
	name       string
	index      int
	addressing []int
	mesh       *Mesh
	lookup     lazy[map[int]int]
}

func (z *zone) Name() string      { return z.name }
func (z *zone) Index() int        { return z.index }
func (z *zone) Addressing() []int { return z.addressing }
func (z *zone) Len() int          { return len(z.addressing) }

// Mesh returns the mesh the zone belongs to, nil until the zone is added to a zone list
func (z *zone) Mesh() *Mesh { return z.mesh }

func (z *zone) attach(m *Mesh, index int) {
	z.mesh = m
	z.index = index
}

// LocalID returns the position of entity i in the zone or -1
func (z *zone) LocalID(i int) int {
	lookup := z.lookup.get(func() (lk map[int]int) {
		lk = make(map[int]int, len(z.addressing))
		for local, i := range z.addressing {
			if _, ok := lk[i]; !ok {
				lk[i] = local
			}
		}
		return
	})
	if local, ok := lookup[i]; ok {
		return local
	}
	return -1
}

func (z *zone) clearLookup() { z.lookup.clear() }

// checkDefinition reports labels outside [0,maxSize) as errors and duplicate labels as warnings
func (z *zone) checkDefinition(kind string, maxSize int, report bool) (hasError bool) {
	var (
		seen = types.NewLabelSet()
		l    = z.mesh.logger
	)
	for _, i := range z.addressing {
		if i < 0 || i >= maxSize {
			hasError = true
			if report {
				l.Printf("%s %s contains label %d outside [0,%d)", kind, z.name, i, maxSize)
			}
			continue
		}
		if seen.Has(i) && report {
			l.Printf("%s %s contains duplicate label %d", kind, z.name, i)
		}
		seen.Insert(i)
	}
	return
}

// remap renumbers labels with an old to new map, dropping labels mapped to -1. keep receives the
// old and new positions of every surviving entry.
func remap(labels, oldToNew []int, keep func(oldPos, newPos int)) (out []int) {
	out = make([]int, 0, len(labels))
	for pos, i := range labels {
		if i < 0 || i >= len(oldToNew) || oldToNew[i] < 0 {
			continue
		}
		if keep != nil {
			keep(pos, len(out))
		}
		out = append(out, oldToNew[i])
	}
	return
}

type PointZone struct {
	zone
}

func NewPointZone(name string, addressing []int) *PointZone {
	return &PointZone{zone: zone{name: name, addressing: addressing, index: -1}}
}

func (z *PointZone) Kind() string { return "pointZone" }

func (z *PointZone) CheckDefinition(report bool) bool {
	return z.checkDefinition("pointZone", z.mesh.NPoints(), report)
}

func (z *PointZone) ResetAddressing(addressing []int) {
	z.addressing = addressing
	z.ClearAddressing()
}

func (z *PointZone) ClearAddressing() { z.clearLookup() }

func (z *PointZone) UpdateMesh(mm *MeshMap) {
	z.ResetAddressing(remap(z.addressing, mm.ReversePointMap, nil))
}

// CheckParallelSync reports points shared across processor patches that are in this zone on one
// rank and not on the other. The result is the same on all ranks.
func (z *PointZone) CheckParallelSync(report bool) bool {
	var (
		m      = z.mesh
		maxZ   = make([]int, m.NPoints())
		minZ   = make([]int, m.NPoints())
		hasErr bool
	)
	for i := range maxZ {
		maxZ[i], minZ[i] = -1, -1
	}
	for _, pointi := range z.addressing {
		if pointi >= 0 && pointi < len(maxZ) {
			maxZ[pointi], minZ[pointi] = z.index, z.index
		}
	}
	SyncPointValues(m, maxZ, func(a, b int) int { return max(a, b) })
	SyncPointValues(m, minZ, func(a, b int) int { return min(a, b) })
	for pointi := range maxZ {
		if maxZ[pointi] != minZ[pointi] {
			if report && !hasErr {
				m.logger.Printf("pointZone %s: point %d at %v is not in the zone on all ranks",
					z.name, pointi, m.points[pointi])
			}
			hasErr = true
		}
	}
	return utils.ReduceOr(m.comm, hasErr)
}

type CellZone struct {
	zone
}

func NewCellZone(name string, addressing []int) *CellZone {
	return &CellZone{zone: zone{name: name, addressing: addressing, index: -1}}
}

func (z *CellZone) Kind() string { return "cellZone" }

func (z *CellZone) CheckDefinition(report bool) bool {
	return z.checkDefinition("cellZone", z.mesh.NCells(), report)
}

func (z *CellZone) ResetAddressing(addressing []int) {
	z.addressing = addressing
	z.ClearAddressing()
}

func (z *CellZone) ClearAddressing() { z.clearLookup() }

func (z *CellZone) UpdateMesh(mm *MeshMap) {
	z.ResetAddressing(remap(z.addressing, mm.ReverseCellMap, nil))
}

// CheckParallelSync is a no-op for cell zones, cells are never shared between ranks
func (z *CellZone) CheckParallelSync(bool) bool { return false }

/*
FaceZone is a set of faces with an orientation. A face whose flip flag is set is read reversed, so
the zone normal points into the owner when the flag is set and out of it otherwise. The master cell
of a face is the cell the zone normal points into.
*/
type FaceZone struct {
	zone
	flipMap []bool

	patch lazy[*FacePatch]
	cells lazy[faceZoneCells]
}

type faceZoneCells struct {
	master, slave []int
}

// NewFaceZone returns an error if the flip map and the face list differ in length
func NewFaceZone(name string, addressing []int, flipMap []bool) (*FaceZone, error) {
	if len(addressing) != len(flipMap) {
		return nil, fmt.Errorf("%w: faceZone %s has %d faces and %d flip flags",
			ErrInvalidMesh, name, len(addressing), len(flipMap))
	}
	return &FaceZone{zone: zone{name: name, addressing: addressing, index: -1}, flipMap: flipMap}, nil
}

func (z *FaceZone) Kind() string    { return "faceZone" }
func (z *FaceZone) FlipMap() []bool { return z.flipMap }

func (z *FaceZone) CheckDefinition(report bool) bool {
	return z.checkDefinition("faceZone", z.mesh.NFaces(), report)
}

func (z *FaceZone) ResetAddressing(addressing []int, flipMap []bool) error {
	if len(addressing) != len(flipMap) {
		return fmt.Errorf("%w: faceZone %s reset with %d faces and %d flip flags",
			ErrInvalidMesh, z.name, len(addressing), len(flipMap))
	}
	z.addressing, z.flipMap = addressing, flipMap
	z.ClearAddressing()
	return nil
}

func (z *FaceZone) ClearAddressing() {
	z.clearLookup()
	z.patch.clear()
	z.cells.clear()
}

// UpdateMesh renumbers the zone after a topology change. Faces whose flux was flipped have their
// flip flag toggled so the zone orientation is preserved.
func (z *FaceZone) UpdateMesh(mm *MeshMap) {
	var flip []bool
	addr := remap(z.addressing, mm.ReverseFaceMap, func(oldPos, newPos int) {
		flip = append(flip, z.flipMap[oldPos])
	})
	for i, facei := range addr {
		if mm.FlipFaceFlux.Has(facei) {
			flip[i] = !flip[i]
		}
	}
	if flip == nil {
		flip = []bool{}
	}
	z.addressing, z.flipMap = addr, flip
	z.ClearAddressing()
}

// Patch returns the zone faces as a face patch, flipped faces reversed
func (z *FaceZone) Patch() *FacePatch {
	return z.patch.get(func() *FacePatch {
		faces := make([]Face, len(z.addressing))
		for i, facei := range z.addressing {
			if z.flipMap[i] {
				faces[i] = z.mesh.faces[facei].Reverse()
			} else {
				faces[i] = z.mesh.faces[facei]
			}
		}
		return NewFacePatch(faces, z.mesh.points)
	})
}

// MeshEdges returns the mesh edge label of every edge of the zone patch
func (z *FaceZone) MeshEdges() []int { return z.Patch().MeshEdges(z.mesh) }

// MasterCells returns for every zone face the cell the zone normal points into, -1 on the boundary
func (z *FaceZone) MasterCells() []int { return z.zoneCells().master }

// SlaveCells returns for every zone face the cell the zone normal points away from, -1 on the boundary
func (z *FaceZone) SlaveCells() []int { return z.zoneCells().slave }

func (z *FaceZone) zoneCells() faceZoneCells {
	return z.cells.get(func() (zc faceZoneCells) {
		zc.master = make([]int, len(z.addressing))
		zc.slave = make([]int, len(z.addressing))
		for i, facei := range z.addressing {
			own, nei := z.mesh.FaceCellsOf(facei)
			if z.flipMap[i] {
				zc.master[i], zc.slave[i] = own, nei
			} else {
				zc.master[i], zc.slave[i] = nei, own
			}
		}
		return
	})
}

// CheckParallelSync reports coupled faces whose zone membership differs between the two sides, or
// whose flip flags are not opposite. The two sides see the face with opposite orientation. The
// result is the same on all ranks.
func (z *FaceZone) CheckParallelSync(report bool) bool {
	var (
		m       = z.mesh
		nInt    = m.NInternalFaces()
		nBdry   = m.NFaces() - nInt
		myZone  = make([]int, nBdry)
		myFlip  = make([]bool, nBdry)
		hasErr  bool
		nErrors int
	)
	for i := range myZone {
		myZone[i] = -1
	}
	for i, facei := range z.addressing {
		if facei >= nInt && facei < m.NFaces() {
			myZone[facei-nInt] = z.index
			myFlip[facei-nInt] = z.flipMap[i]
		}
	}
	neiZone := NeighbourBoundaryValues(m, myZone, -1)
	neiFlip := NeighbourBoundaryValues(m, myFlip, false)
	forCoupledFaces(m, func(bFacei int) {
		var bad bool
		switch {
		case myZone[bFacei] != neiZone[bFacei]:
			bad = true
		case myZone[bFacei] >= 0 && myFlip[bFacei] == neiFlip[bFacei]:
			bad = true
		}
		if bad {
			hasErr = true
			nErrors++
			if report && nErrors == 1 {
				m.logger.Printf("faceZone %s: coupled face %d has zone %d flip %t, other side zone %d flip %t",
					z.name, bFacei+nInt, myZone[bFacei], myFlip[bFacei], neiZone[bFacei], neiFlip[bFacei])
			}
		}
	})
	if report && nErrors > 0 {
		m.logger.Printf("faceZone %s: %d coupled faces out of sync", z.name, nErrors)
	}
	return utils.ReduceOr(m.comm, hasErr)
}

// ZoneMesh is the ordered list of zones of one kind
type ZoneMesh[Z Zone] struct {
	mesh    *Mesh
	zones   []Z
	zoneMap lazy[map[int]int]
}

func newZoneMesh[Z Zone](m *Mesh) *ZoneMesh[Z] { return &ZoneMesh[Z]{mesh: m} }

func (zm *ZoneMesh[Z]) Len() int     { return len(zm.zones) }
func (zm *ZoneMesh[Z]) At(i int) Z   { return zm.zones[i] }
func (zm *ZoneMesh[Z]) Zones() []Z   { return zm.zones }
func (zm *ZoneMesh[Z]) Mesh() *Mesh  { return zm.mesh }
func (zm *ZoneMesh[Z]) Empty() bool  { return len(zm.zones) == 0 }
func (zm *ZoneMesh[Z]) ByName(name string) (z Z, ok bool) {
	if i := zm.FindZoneID(name); i >= 0 {
		return zm.zones[i], true
	}
	return
}

// Add appends a zone and attaches it to the mesh, returning its index
func (zm *ZoneMesh[Z]) Add(z Z) (index int, err error) {
	if zm.FindZoneID(z.Name()) >= 0 {
		return -1, fmt.Errorf("%w: duplicate %s name %q", ErrInvalidMesh, z.Kind(), z.Name())
	}
	index = len(zm.zones)
	z.attach(zm.mesh, index)
	zm.zones = append(zm.zones, z)
	zm.zoneMap.clear()
	return
}

// FindZoneID returns the index of the named zone or -1
func (zm *ZoneMesh[Z]) FindZoneID(name string) int {
	for i, z := range zm.zones {
		if z.Name() == name {
			return i
		}
	}
	return -1
}

func (zm *ZoneMesh[Z]) Names() (names []string) {
	names = make([]string, len(zm.zones))
	for i, z := range zm.zones {
		names[i] = z.Name()
	}
	return
}

// WhichZone returns the first zone holding entity i, or -1
func (zm *ZoneMesh[Z]) WhichZone(i int) int {
	lookup := zm.zoneMap.get(func() (lk map[int]int) {
		lk = make(map[int]int)
		for zi, z := range zm.zones {
			for _, e := range z.Addressing() {
				if _, ok := lk[e]; !ok {
					lk[e] = zi
				}
			}
		}
		return
	})
	if zi, ok := lookup[i]; ok {
		return zi
	}
	return -1
}

func (zm *ZoneMesh[Z]) ClearAddressing() {
	zm.zoneMap.clear()
	for _, z := range zm.zones {
		z.ClearAddressing()
	}
}

func (zm *ZoneMesh[Z]) UpdateMesh(mm *MeshMap) {
	for _, z := range zm.zones {
		z.UpdateMesh(mm)
	}
	zm.zoneMap.clear()
}

func (zm *ZoneMesh[Z]) CheckDefinition(report bool) (hasError bool) {
	for _, z := range zm.zones {
		hasError = z.CheckDefinition(report) || hasError
	}
	return
}

// CheckParallelSync checks every zone, all ranks must hold the same zones in the same order
func (zm *ZoneMesh[Z]) CheckParallelSync(report bool) (hasError bool) {
	names := utils.AllGather(zm.mesh.comm, zm.Names())
	for rank, rn := range names {
		if !equalStrings(rn, names[0]) {
			if report {
				zm.mesh.logger.Printf("zone names differ between rank 0 %v and rank %d %v", names[0], rank, rn)
			}
			return true
		}
	}
	for _, z := range zm.zones {
		hasError = z.CheckParallelSync(report) || hasError
	}
	return
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ZoneDict describes a zone in a mesh description file
type ZoneDict struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Labels  []int  `json:"labels"`
	FlipMap []bool `json:"flipMap,omitempty"`
}

type ZoneFactory func(d ZoneDict) (Zone, error)

var zoneFactories = map[string]ZoneFactory{
	"pointZone": func(d ZoneDict) (Zone, error) { return NewPointZone(d.Name, d.Labels), nil },
	"cellZone":  func(d ZoneDict) (Zone, error) { return NewCellZone(d.Name, d.Labels), nil },
	"faceZone": func(d ZoneDict) (Zone, error) {
		flip := d.FlipMap
		if flip == nil {
			flip = make([]bool, len(d.Labels))
		}
		return NewFaceZone(d.Name, d.Labels, flip)
	},
}

// RegisterZoneType adds a zone type that can be read from zone dictionaries. The factory must
// return a *PointZone, *FaceZone or *CellZone.
func RegisterZoneType(typeName string, f ZoneFactory) {
	zoneFactories[typeName] = f
}

func ZoneTypes() (names []string) {
	for name := range zoneFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func NewZone(d ZoneDict) (Zone, error) {
	f, ok := zoneFactories[d.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown zone type %q for zone %s, known types %v",
			ErrInvalidMesh, d.Type, d.Name, ZoneTypes())
	}
	return f(d)
}

// AddZones builds zones from their dictionaries and adds them to the matching zone list
func (m *Mesh) AddZones(dicts ...ZoneDict) (err error) {
	for _, d := range dicts {
		var z Zone
		if z, err = NewZone(d); err != nil {
			return
		}
		if err = m.AddZone(z); err != nil {
			return
		}
	}
	return
}

func (m *Mesh) AddZone(z Zone) (err error) {
	switch zt := z.(type) {
	case *PointZone:
		_, err = m.pointZones.Add(zt)
	case *FaceZone:
		_, err = m.faceZones.Add(zt)
	case *CellZone:
		_, err = m.cellZones.Add(zt)
	default:
		err = fmt.Errorf("%w: zone %s of type %T is not a point, face or cell zone", ErrInvalidMesh, z.Name(), z)
	}
	return
}
