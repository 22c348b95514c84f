package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

// Names of the patches of a block mesh, in patch order
var BlockPatchNames = [6]string{"xMin", "xMax", "yMin", "yMax", "zMin", "zMax"}

/*
NewBlockMesh builds a hexahedral mesh of nx*ny*nz cells filling the box [lo,hi].

	point (i,j,k) has label i + (nx+1)*(j + (ny+1)*k)
	cell  (i,j,k) has label i + nx*(j + ny*k)

The six sides of the box become wall patches named by BlockPatchNames.
*/
func NewBlockMesh(nx, ny, nz int, lo, hi r3.Vec, opts ...Option) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("%w: block divisions must be positive, have %d %d %d", ErrInvalidMesh, nx, ny, nz)
	}
	var (
		pt = func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
		d  = r3.Sub(hi, lo)
	)
	points := make([]r3.Vec, 0, (nx+1)*(ny+1)*(nz+1))
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				points = append(points, r3.Vec{
					X: lo.X + d.X*float64(i)/float64(nx),
					Y: lo.Y + d.Y*float64(j)/float64(ny),
					Z: lo.Z + d.Z*float64(k)/float64(nz),
				})
			}
		}
	}
	var (
		shapes = make([]CellShape, 0, nx*ny*nz)
		sides  [6][][]int
	)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				v := []int{
					pt(i, j, k), pt(i+1, j, k), pt(i+1, j+1, k), pt(i, j+1, k),
					pt(i, j, k+1), pt(i+1, j, k+1), pt(i+1, j+1, k+1), pt(i, j+1, k+1),
				}
				shapes = append(shapes, CellShape{Type: Hex, Vertices: v})
				hexFaces := GetElementFaces(Hex, v)
				// Hex face order: bottom, top, y-, x+, y+, x-
				if i == 0 {
					sides[0] = append(sides[0], hexFaces[5])
				}
				if i == nx-1 {
					sides[1] = append(sides[1], hexFaces[3])
				}
				if j == 0 {
					sides[2] = append(sides[2], hexFaces[2])
				}
				if j == ny-1 {
					sides[3] = append(sides[3], hexFaces[4])
				}
				if k == 0 {
					sides[4] = append(sides[4], hexFaces[0])
				}
				if k == nz-1 {
					sides[5] = append(sides[5], hexFaces[1])
				}
			}
		}
	}
	boundary := make([]ShapePatch, 6)
	for i, name := range BlockPatchNames {
		boundary[i] = ShapePatch{Name: name, Type: types.PT_Wall, Faces: sides[i]}
	}
	return NewFromShapes(points, shapes, boundary, opts...)
}
