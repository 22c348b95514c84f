package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polymesh/types"
)

// SU2 element type numbers, these follow the VTK cell types
const (
	su2Triangle = 5
	su2Quad     = 9
	su2Tet      = 10
	su2Hex      = 12
	su2Prism    = 13
	su2Pyramid  = 14
)

func su2Shape(su2Type int) (ElementType, bool) {
	switch su2Type {
	case su2Tet:
		return Tet, true
	case su2Hex:
		return Hex, true
	case su2Prism:
		return Prism, true
	case su2Pyramid:
		return Pyramid, true
	}
	return 0, false
}

// ReadSU2 reads a 3D mesh in SU2 native format. Every marker becomes a patch of type "patch", boundary
// faces left out of the markers are collected in "defaultFaces".
func ReadSU2(fileName string, opts ...Option) (m *Mesh, err error) {
	var file *os.File
	if file, err = os.Open(fileName); err != nil {
		return
	}
	defer file.Close()
	if m, err = ParseSU2(file, opts...); err != nil {
		return nil, fmt.Errorf("reading %s: %w", fileName, err)
	}
	return
}

func ParseSU2(r io.Reader, opts ...Option) (*Mesh, error) {
	var (
		scanner = bufio.NewScanner(r)
		ndime   int
		points  []r3.Vec
		shapes  []CellShape
		patches []ShapePatch
	)
	next := func() ([]string, error) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "%") {
				continue
			}
			return strings.Fields(line), nil
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}
	atoi := func(fields []string) (vals []int, err error) {
		vals = make([]int, len(fields))
		for i, f := range fields {
			if vals[i], err = strconv.Atoi(f); err != nil {
				return nil, err
			}
		}
		return
	}
	keyword := func(line, key string) (n int, ok bool, err error) {
		if !strings.HasPrefix(line, key) {
			return
		}
		n, err = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, key)))
		return n, true, err
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if n, ok, err := keyword(line, "NDIME="); ok {
			if err != nil {
				return nil, err
			}
			if ndime = n; ndime != 3 {
				return nil, fmt.Errorf("%w: only 3D meshes are supported, got NDIME=%d", ErrInvalidMesh, ndime)
			}
		} else if n, ok, err := keyword(line, "NELEM="); ok {
			if err != nil {
				return nil, err
			}
			shapes = make([]CellShape, 0, n)
			for i := 0; i < n; i++ {
				fields, err := next()
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				vals, err := atoi(fields)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				et, ok := su2Shape(vals[0])
				if !ok {
					return nil, fmt.Errorf("%w: element %d has unsupported SU2 type %d", ErrInvalidMesh, i, vals[0])
				}
				nv := et.NumVertices()
				if len(vals) < nv+1 {
					return nil, fmt.Errorf("%w: element %d has %d of %d vertices", ErrInvalidMesh, i, len(vals)-1, nv)
				}
				shapes = append(shapes, CellShape{Type: et, Vertices: vals[1 : nv+1]})
			}
		} else if n, ok, err := keyword(line, "NPOIN="); ok {
			if err != nil {
				return nil, err
			}
			if ndime != 3 {
				return nil, fmt.Errorf("%w: NPOIN before NDIME", ErrInvalidMesh)
			}
			points = make([]r3.Vec, n)
			for i := 0; i < n; i++ {
				fields, err := next()
				if err != nil {
					return nil, fmt.Errorf("point %d: %w", i, err)
				}
				if len(fields) < 3 {
					return nil, fmt.Errorf("%w: point %d has %d coordinates", ErrInvalidMesh, i, len(fields))
				}
				var c [3]float64
				for j := range c {
					if c[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("point %d: %w", i, err)
					}
				}
				points[i] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
			}
		} else if n, ok, err := keyword(line, "NMARK="); ok {
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				p, err := readMarker(next, atoi)
				if err != nil {
					return nil, fmt.Errorf("marker %d: %w", i, err)
				}
				patches = append(patches, p)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if ndime == 0 {
		return nil, fmt.Errorf("%w: missing NDIME", ErrInvalidMesh)
	}
	return NewFromShapes(points, shapes, patches, opts...)
}

func readMarker(next func() ([]string, error), atoi func([]string) ([]int, error)) (p ShapePatch, err error) {
	var fields []string
	if fields, err = next(); err != nil {
		return
	}
	tag := strings.Join(fields, " ")
	if !strings.HasPrefix(tag, "MARKER_TAG=") {
		return p, fmt.Errorf("%w: expected MARKER_TAG=, got %q", ErrInvalidMesh, tag)
	}
	p.Name = strings.TrimSpace(strings.TrimPrefix(tag, "MARKER_TAG="))
	p.Type = types.PT_Patch
	if fields, err = next(); err != nil {
		return
	}
	count := strings.Join(fields, "")
	if !strings.HasPrefix(count, "MARKER_ELEMS=") {
		return p, fmt.Errorf("%w: expected MARKER_ELEMS=, got %q", ErrInvalidMesh, count)
	}
	var n int
	if n, err = strconv.Atoi(strings.TrimPrefix(count, "MARKER_ELEMS=")); err != nil {
		return
	}
	for i := 0; i < n; i++ {
		if fields, err = next(); err != nil {
			return
		}
		var vals []int
		if vals, err = atoi(fields); err != nil {
			return
		}
		nv := 0
		switch vals[0] {
		case su2Triangle:
			nv = 3
		case su2Quad:
			nv = 4
		default:
			return p, fmt.Errorf("%w: marker %s face %d has SU2 type %d", ErrInvalidMesh, p.Name, i, vals[0])
		}
		if len(vals) < nv+1 {
			return p, fmt.Errorf("%w: marker %s face %d is short", ErrInvalidMesh, p.Name, i)
		}
		p.Faces = append(p.Faces, vals[1:nv+1])
	}
	return
}
