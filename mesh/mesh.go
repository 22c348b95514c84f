package mesh

import (
	"errors"
	"fmt"
	"io"
	"log"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
	"github.com/notargets/polymesh/utils"
)

var ErrInvalidMesh = errors.New("invalid mesh")

const (
	VSMALL     = 1.0e-300
	SMALL      = 1.0e-15
	ROOTVSMALL = 1.0e-150
	GREAT      = 1.0e+15
)

// CellCentreMode selects how cell centres are computed
type CellCentreMode uint8

const (
	// Geometric decomposes each cell into face pyramids about an estimated centre
	Geometric CellCentreMode = iota
	// FaceWeighted uses the face area weighted average of the face centres
	FaceWeighted
)

// PatchInfo describes a boundary patch when constructing a mesh
type PatchInfo struct {
	Name           string
	Type           types.PatchType
	Size           int
	NeighbProcNo   int    // processor patches only
	MyProcNo       int    // processor patches only
	NeighbourPatch string // cyclic patches only
}

/*
Mesh is an unstructured polyhedral mesh described by its points, faces and the face owner/neighbour
cells. Faces [0,NInternalFaces) are internal and have a neighbour, the rest are boundary faces grouped
contiguously by patch.

All derived addressing and geometry is computed on demand and cached. A Mesh is not safe for
concurrent use.
*/
type Mesh struct {
	points    []r3.Vec
	oldPoints []r3.Vec
	faces     []Face
	owner     []int
	neighbour []int
	nCells    int

	boundary   *BoundaryMesh
	pointZones *ZoneMesh[*PointZone]
	faceZones  *ZoneMesh[*FaceZone]
	cellZones  *ZoneMesh[*CellZone]

	comm       utils.Comm
	logger     *log.Logger
	areaSwitch float64
	centreMode CellCentreMode
	params     CheckParameters

	// Addressing group
	edges       lazy[edgeAddressing]
	cellCells   lazy[[][]int]
	edgeCells   lazy[[][]int]
	pointCells  lazy[[][]int]
	cells       lazy[[][]int]
	edgeFaces   lazy[[][]int]
	pointFaces  lazy[[][]int]
	cellEdges   lazy[[][]int]
	pointEdges  lazy[[][]int]
	pointPoints lazy[[][]int]
	cellPoints  lazy[[][]int]
	cellShapes  lazy[[]ElementType]

	// Geometric group
	faceGeom lazy[faceGeometry]
	cellGeom lazy[cellGeometry]
}

type Option func(m *Mesh)

// WithAreaSwitch sets the face area below which a cell centre falls back to the vertex average
func WithAreaSwitch(a float64) Option { return func(m *Mesh) { m.areaSwitch = a } }

func WithCellCentreMode(mode CellCentreMode) Option { return func(m *Mesh) { m.centreMode = mode } }

func WithLogger(l *log.Logger) Option { return func(m *Mesh) { m.logger = l } }

func WithComm(c utils.Comm) Option { return func(m *Mesh) { m.comm = c } }

func WithCheckParameters(p CheckParameters) Option { return func(m *Mesh) { m.params = p } }

// WithOldPoints marks the mesh as moving, the old positions must match the points in length
func WithOldPoints(oldPoints []r3.Vec) Option { return func(m *Mesh) { m.oldPoints = oldPoints } }

// WithNCells sets the cell count explicitly, otherwise it is inferred from the owner and neighbour labels
func WithNCells(n int) Option { return func(m *Mesh) { m.nCells = n } }

// New builds a mesh from its primitive arrays. The face ordering is validated: internal faces must
// come first and the patch sizes must cover the boundary faces exactly.
func New(points []r3.Vec, faces []Face, owner, neighbour []int, patches []PatchInfo,
	opts ...Option) (m *Mesh, err error) {
	m = &Mesh{
		points:     points,
		faces:      faces,
		owner:      owner,
		neighbour:  neighbour,
		nCells:     -1,
		comm:       utils.Serial(),
		logger:     log.New(io.Discard, "", 0),
		areaSwitch: 1.0e-8,
		params:     DefaultCheckParameters(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err = m.validate(patches); err != nil {
		return nil, err
	}
	m.boundary = newBoundaryMesh(m, patches)
	m.pointZones = newZoneMesh[*PointZone](m)
	m.faceZones = newZoneMesh[*FaceZone](m)
	m.cellZones = newZoneMesh[*CellZone](m)
	return
}

func (m *Mesh) validate(patches []PatchInfo) (err error) {
	var (
		nPoints = len(m.points)
		nFaces  = len(m.faces)
		nInt    = len(m.neighbour)
		maxCell = -1
	)
	if m.oldPoints != nil && len(m.oldPoints) != nPoints {
		return fmt.Errorf("%w: %d old points for %d points", ErrInvalidMesh, len(m.oldPoints), nPoints)
	}
	if len(m.owner) != nFaces {
		return fmt.Errorf("%w: %d faces but %d owners", ErrInvalidMesh, nFaces, len(m.owner))
	}
	if nInt > nFaces {
		return fmt.Errorf("%w: %d neighbours exceed %d faces", ErrInvalidMesh, nInt, nFaces)
	}
	for facei, f := range m.faces {
		if len(f) < 3 {
			return fmt.Errorf("%w: face %d has %d vertices", ErrInvalidMesh, facei, len(f))
		}
		for _, pointi := range f {
			if pointi < 0 || pointi >= nPoints {
				return fmt.Errorf("%w: face %d references point %d, have %d points",
					ErrInvalidMesh, facei, pointi, nPoints)
			}
		}
		if m.owner[facei] < 0 {
			return fmt.Errorf("%w: face %d has no owner", ErrInvalidMesh, facei)
		}
		maxCell = max(maxCell, m.owner[facei])
	}
	for facei, nei := range m.neighbour {
		if nei < 0 {
			return fmt.Errorf("%w: internal face %d has no neighbour", ErrInvalidMesh, facei)
		}
		if nei == m.owner[facei] {
			return fmt.Errorf("%w: internal face %d has owner == neighbour == %d", ErrInvalidMesh, facei, nei)
		}
		maxCell = max(maxCell, nei)
	}
	if m.nCells < 0 {
		m.nCells = maxCell + 1
	} else if maxCell >= m.nCells {
		return fmt.Errorf("%w: cell label %d exceeds cell count %d", ErrInvalidMesh, maxCell, m.nCells)
	}
	nBoundary := 0
	for _, p := range patches {
		if p.Size < 0 {
			return fmt.Errorf("%w: patch %s has negative size", ErrInvalidMesh, p.Name)
		}
		nBoundary += p.Size
	}
	if nBoundary != nFaces-nInt {
		return fmt.Errorf("%w: patches hold %d faces, have %d boundary faces",
			ErrInvalidMesh, nBoundary, nFaces-nInt)
	}
	return
}

// Inherit returns the settings of this mesh as options, for building a mesh derived from it
func (m *Mesh) Inherit() []Option {
	return []Option{
		WithAreaSwitch(m.areaSwitch),
		WithCellCentreMode(m.centreMode),
		WithLogger(m.logger),
		WithComm(m.comm),
		WithCheckParameters(m.params),
	}
}

func (m *Mesh) Points() []r3.Vec    { return m.points }
func (m *Mesh) OldPoints() []r3.Vec { return m.oldPoints }
func (m *Mesh) Faces() []Face       { return m.faces }
func (m *Mesh) FaceOwner() []int    { return m.owner }
func (m *Mesh) FaceNeighbour() []int {
	return m.neighbour
}
func (m *Mesh) NPoints() int         { return len(m.points) }
func (m *Mesh) NFaces() int          { return len(m.faces) }
func (m *Mesh) NInternalFaces() int  { return len(m.neighbour) }
func (m *Mesh) NCells() int          { return m.nCells }
func (m *Mesh) Moving() bool         { return m.oldPoints != nil }
func (m *Mesh) Comm() utils.Comm     { return m.comm }
func (m *Mesh) Logger() *log.Logger  { return m.logger }
func (m *Mesh) AreaSwitch() float64  { return m.areaSwitch }
func (m *Mesh) Parameters() CheckParameters {
	return m.params
}

func (m *Mesh) BoundaryMesh() *BoundaryMesh        { return m.boundary }
func (m *Mesh) PointZones() *ZoneMesh[*PointZone] { return m.pointZones }
func (m *Mesh) FaceZones() *ZoneMesh[*FaceZone]   { return m.faceZones }
func (m *Mesh) CellZones() *ZoneMesh[*CellZone]   { return m.cellZones }

func (m *Mesh) IsInternalFace(facei int) bool { return facei < len(m.neighbour) }

// SetComm attaches the mesh to a rank communicator, used after decomposition
func (m *Mesh) SetComm(c utils.Comm) { m.comm = c }

func (m *Mesh) SetLogger(l *log.Logger) { m.logger = l }

func (m *Mesh) SetCheckParameters(p CheckParameters) { m.params = p }

// FaceCellsOf returns the owner and neighbour of a face, the neighbour is -1 for boundary faces
func (m *Mesh) FaceCellsOf(facei int) (own, nei int) {
	own, nei = m.owner[facei], -1
	if m.IsInternalFace(facei) {
		nei = m.neighbour[facei]
	}
	return
}

// ClearGeom drops the cached face and cell geometry, and the face patches holding the mesh points
func (m *Mesh) ClearGeom() {
	m.faceGeom.clear()
	m.cellGeom.clear()
	if m.boundary != nil {
		m.boundary.clearAddressing()
	}
	if m.faceZones != nil {
		for _, fz := range m.faceZones.Zones() {
			fz.patch.clear()
		}
	}
}

// ClearAddressing drops all cached topological tables, including the zone and patch addressing
// derived from them
func (m *Mesh) ClearAddressing() {
	m.edges.clear()
	m.cellCells.clear()
	m.edgeCells.clear()
	m.pointCells.clear()
	m.cells.clear()
	m.edgeFaces.clear()
	m.pointFaces.clear()
	m.cellEdges.clear()
	m.pointEdges.clear()
	m.pointPoints.clear()
	m.cellPoints.clear()
	m.cellShapes.clear()
	if m.boundary != nil {
		m.boundary.clearAddressing()
	}
	if m.pointZones != nil {
		m.pointZones.ClearAddressing()
		m.faceZones.ClearAddressing()
		m.cellZones.ClearAddressing()
	}
}

func (m *Mesh) ClearOut() {
	m.ClearGeom()
	m.ClearAddressing()
}

func (m *Mesh) Info() string {
	return fmt.Sprintf("points: %d, faces: %d, internal faces: %d, cells: %d, patches: %d",
		m.NPoints(), m.NFaces(), m.NInternalFaces(), m.NCells(), m.boundary.Len())
}
