package mesh

import (
	"github.com/james-bowman/sparse"
)

// LDUAddressing is the lower/upper addressing of the cell to cell operator: internal face i couples
// Lower[i] (the owner) to Upper[i] (the neighbour)
type LDUAddressing struct {
	NCells       int
	Lower, Upper []int
}

func (m *Mesh) LDUAddressing() LDUAddressing {
	return LDUAddressing{
		NCells: m.nCells,
		Lower:  m.owner[:len(m.neighbour)],
		Upper:  m.neighbour,
	}
}

// Bandwidth is the largest distance between the owner and neighbour labels of an internal face
func (la LDUAddressing) Bandwidth() (bw int) {
	for facei, u := range la.Upper {
		bw = max(bw, abs(u-la.Lower[facei]))
	}
	return
}

// Profile is the sum over cells of the distance from the cell to its lowest coupled neighbour
func (la LDUAddressing) Profile() (p int) {
	lowest := make([]int, la.NCells)
	for celli := range lowest {
		lowest[celli] = celli
	}
	for facei, u := range la.Upper {
		l := la.Lower[facei]
		lowest[u] = min(lowest[u], l)
		lowest[l] = min(lowest[l], u)
	}
	for celli, lo := range lowest {
		p += celli - lo
	}
	return
}

// CellGraph returns the symmetric cell adjacency as a sparse matrix with unit diagonal. Entry (i,j)
// counts the faces shared by cells i and j.
func (m *Mesh) CellGraph() *sparse.CSR {
	dok := sparse.NewDOK(m.nCells, m.nCells)
	for celli := 0; celli < m.nCells; celli++ {
		dok.Set(celli, celli, 1)
	}
	for facei, nei := range m.neighbour {
		own := m.owner[facei]
		dok.Set(own, nei, dok.At(own, nei)+1)
		dok.Set(nei, own, dok.At(nei, own)+1)
	}
	return dok.ToCSR()
}

// CellGraphBandwidth measures the bandwidth from the sparsity pattern of the cell graph, it equals
// LDUAddressing().Bandwidth() for any valid mesh
func CellGraphBandwidth(g *sparse.CSR) (bw int) {
	g.DoNonZero(func(i, j int, _ float64) {
		bw = max(bw, abs(i-j))
	})
	return
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
