package types

import "strings"

type PatchType uint8

const (
	PT_Patch PatchType = iota
	PT_Wall
	PT_Symmetry
	PT_Empty
	PT_Cyclic
	PT_Processor
)

var PatchNameMap = map[string]PatchType{
	"patch":     PT_Patch,
	"wall":      PT_Wall,
	"symmetry":  PT_Symmetry,
	"symm":      PT_Symmetry,
	"empty":     PT_Empty,
	"cyclic":    PT_Cyclic,
	"processor": PT_Processor,
}

func NewPatchType(name string) (pt PatchType, ok bool) {
	pt, ok = PatchNameMap[strings.ToLower(strings.TrimSpace(name))]
	return
}

func (pt PatchType) String() string {
	switch pt {
	case PT_Wall:
		return "wall"
	case PT_Symmetry:
		return "symmetry"
	case PT_Empty:
		return "empty"
	case PT_Cyclic:
		return "cyclic"
	case PT_Processor:
		return "processor"
	default:
		return "patch"
	}
}

// Coupled patches exchange values with a partner patch, either on another rank or in the same mesh
func (pt PatchType) Coupled() bool {
	return pt == PT_Cyclic || pt == PT_Processor
}
