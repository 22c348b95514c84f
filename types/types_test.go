package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for edge labeling
		en := NewEdgeKey([2]int{1, 0})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{0, 1}, en.GetVertices(false))

		en = NewEdgeKey([2]int{0, 1})
		assert.Equal(t, EdgeKey(1<<32), en)
		assert.Equal(t, [2]int{1, 0}, en.GetVertices(true))

		en = NewEdgeKey([2]int{100, 1})
		assert.Equal(t, EdgeKey(100*(1<<32)+1), en)
		assert.Equal(t, [2]int{1, 100}, en.GetVertices(false))

		en = NewEdgeKey([2]int{1<<32 - 1, 1<<32 - 1})
		assert.Equal(t, EdgeKey(1<<64-1), en)
		assert.Equal(t, [2]int{1<<32 - 1, 1<<32 - 1}, en.GetVertices(false))

		assert.Panics(t, func() { NewEdgeKey([2]int{-1, 2}) })
	}
	{ // Face keys ignore rotation and winding
		assert.Equal(t, NewFaceKey([]int{3, 1, 2}), NewFaceKey([]int{1, 2, 3}))
		assert.Equal(t, NewFaceKey([]int{0, 4, 7, 3}), NewFaceKey([]int{0, 3, 7, 4}))
		assert.NotEqual(t, NewFaceKey([]int{0, 1, 2}), NewFaceKey([]int{0, 1, 2, 3}))
	}
	{
		tokens := []string{"WALL", "patch", "Processor", " cyclic ", "symm"}
		flags := []PatchType{PT_Wall, PT_Patch, PT_Processor, PT_Cyclic, PT_Symmetry}
		for i, token := range tokens {
			pt, ok := NewPatchType(token)
			assert.True(t, ok)
			assert.Equal(t, flags[i], pt)
		}
		_, ok := NewPatchType("inlet")
		assert.False(t, ok)
		assert.True(t, PT_Processor.Coupled())
		assert.False(t, PT_Wall.Coupled())
		assert.Equal(t, "processor", PT_Processor.String())
	}
	{
		var nilSet LabelSet
		nilSet.Insert(3)
		assert.Equal(t, 0, nilSet.Len())
		ls := NewLabelSet(5, 1)
		ls.Insert(3)
		ls.Insert(1)
		assert.Equal(t, []int{1, 3, 5}, ls.Sorted())
		assert.True(t, ls.Has(3))
	}
}
