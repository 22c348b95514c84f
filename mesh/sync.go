package mesh

import (
	"fmt"

	"github.com/notargets/polymesh/types"
)

/*
Coupled boundary synchronisation.

Values on boundary faces are held in boundary face order, index facei-NInternalFaces. Processor
patches are matched with the patch on the neighbouring rank that points back at this rank, both
sides list the shared faces in the same order. Cyclic patches are matched face by face with their
NeighbourPatch in the same mesh.

Every function here performs one Exchange on the mesh Comm and must be called by all ranks.
*/

// NeighbourBoundaryValues returns the value held on the other side of every coupled boundary face,
// non coupled faces get defaultValue
func NeighbourBoundaryValues[T any](m *Mesh, values []T, defaultValue T) (nbr []T) {
	var (
		nInt = m.NInternalFaces()
		bm   = m.BoundaryMesh()
		out  = make(map[int]any)
	)
	if len(values) != m.NFaces()-nInt {
		panic(fmt.Errorf("boundary list has %d values, have %d boundary faces", len(values), m.NFaces()-nInt))
	}
	nbr = make([]T, len(values))
	for i := range nbr {
		nbr[i] = defaultValue
	}
	// One payload per neighbour rank, the concatenation of the patches facing it
	send := make(map[int][]T)
	for _, p := range bm.Patches() {
		if p.Type != types.PT_Processor {
			continue
		}
		start, end := p.Range()
		send[p.NeighbProcNo] = append(send[p.NeighbProcNo], values[start-nInt:end-nInt]...)
	}
	for rank, buf := range send {
		out[rank] = buf
	}
	in := m.Comm().Exchange(out)

	offset := make(map[int]int)
	for _, p := range bm.Patches() {
		start, end := p.Range()
		switch {
		case p.Type == types.PT_Processor:
			payload, ok := in[p.NeighbProcNo]
			if !ok {
				panic(fmt.Errorf("no values received from rank %d for patch %s", p.NeighbProcNo, p.Name))
			}
			recv := payload.([]T)
			o := offset[p.NeighbProcNo]
			if o+p.Size > len(recv) {
				panic(fmt.Errorf("patch %s expects %d values from rank %d, got %d",
					p.Name, p.Size, p.NeighbProcNo, len(recv)-o))
			}
			copy(nbr[start-nInt:end-nInt], recv[o:o+p.Size])
			offset[p.NeighbProcNo] = o + p.Size
		case p.Coupled():
			partner := bm.FindPatchID(p.NeighbourPatch)
			if partner < 0 || bm.At(partner).Size != p.Size {
				panic(fmt.Errorf("cyclic patch %s has no matching partner %q", p.Name, p.NeighbourPatch))
			}
			ps, pe := bm.At(partner).Range()
			copy(nbr[start-nInt:end-nInt], values[ps-nInt:pe-nInt])
		}
	}
	return
}

// SwapBoundaryFaceList replaces the values on coupled faces with the value from the other side,
// values on other boundary faces are unchanged
func SwapBoundaryFaceList[T any](m *Mesh, values []T) {
	var zero T
	nbr := NeighbourBoundaryValues(m, values, zero)
	forCoupledFaces(m, func(bFacei int) { values[bFacei] = nbr[bFacei] })
}

// SyncBoundaryValues combines the values on both sides of every coupled face so both sides hold
// the same result. Faces without a partner are combined with defaultValue. combine must be
// commutative.
func SyncBoundaryValues[T any](m *Mesh, values []T, combine func(a, b T) T, defaultValue T) {
	nbr := NeighbourBoundaryValues(m, values, defaultValue)
	for i := range values {
		values[i] = combine(values[i], nbr[i])
	}
}

func forCoupledFaces(m *Mesh, fn func(bFacei int)) {
	nInt := m.NInternalFaces()
	for _, p := range m.BoundaryMesh().Patches() {
		if !p.Coupled() {
			continue
		}
		start, end := p.Range()
		for facei := start; facei < end; facei++ {
			fn(facei - nInt)
		}
	}
}

// SyncPointValues combines point values across processor patches. A face is stored reversed on the
// neighbouring rank keeping its first vertex, so vertex k matches vertex (n-k)%n on the other side.
// combine must be commutative and idempotent, points shared by more than two ranks are only
// combined pairwise.
func SyncPointValues[T any](m *Mesh, values []T, combine func(a, b T) T) {
	if len(values) != m.NPoints() {
		panic(fmt.Errorf("point list has %d values, have %d points", len(values), m.NPoints()))
	}
	var (
		bm   = m.BoundaryMesh()
		out  = make(map[int]any)
		send = make(map[int][]T)
	)
	for _, p := range bm.Patches() {
		if p.Type != types.PT_Processor {
			continue
		}
		start, end := p.Range()
		for _, f := range m.faces[start:end] {
			for _, pointi := range f {
				send[p.NeighbProcNo] = append(send[p.NeighbProcNo], values[pointi])
			}
		}
	}
	for rank, buf := range send {
		out[rank] = buf
	}
	in := m.Comm().Exchange(out)

	var (
		offset = make(map[int]int)
		result = make([]T, len(values))
	)
	copy(result, values)
	for _, p := range bm.Patches() {
		if p.Type != types.PT_Processor {
			continue
		}
		recv := in[p.NeighbProcNo].([]T)
		start, end := p.Range()
		o := offset[p.NeighbProcNo]
		for _, f := range m.faces[start:end] {
			n := len(f)
			for k, pointi := range f {
				result[pointi] = combine(result[pointi], recv[o+(n-k)%n])
			}
			o += n
		}
		offset[p.NeighbProcNo] = o
	}
	copy(values, result)
}
