package types

import "sort"

// LabelSet collects entity indices flagged by a mesh check
type LabelSet map[int]struct{}

func NewLabelSet(labels ...int) LabelSet {
	ls := make(LabelSet, len(labels))
	for _, l := range labels {
		ls[l] = struct{}{}
	}
	return ls
}

// Insert is a no-op on a nil set, so checks can be called without collecting labels
func (ls LabelSet) Insert(l int) {
	if ls != nil {
		ls[l] = struct{}{}
	}
}

func (ls LabelSet) Has(l int) bool {
	_, ok := ls[l]
	return ok
}

func (ls LabelSet) Len() int { return len(ls) }

func (ls LabelSet) Sorted() (labels []int) {
	labels = make([]int, 0, len(ls))
	for l := range ls {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return
}
