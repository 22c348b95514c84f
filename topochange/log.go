package topochange

import (
	"errors"
	"fmt"

	"github.com/notargets/polymesh/mesh"
)

var (
	ErrLogConsumed        = errors.New("topology change log already applied")
	ErrInconsistentChange = errors.New("inconsistent topology change")
)

/*
Log records topology actions against one mesh. Added entities receive provisional labels following
the existing ones, so later actions in the same log can refer to them. The log is applied exactly once.
*/
type Log struct {
	mesh    *mesh.Mesh
	actions []Action
	applied bool

	nPoints, nFaces, nCells int
}

func NewLog(m *mesh.Mesh) *Log {
	return &Log{mesh: m, nPoints: m.NPoints(), nFaces: m.NFaces(), nCells: m.NCells()}
}

// SetAction appends an action and returns the label it refers to, the provisional label for additions
func (l *Log) SetAction(a Action) (label int) {
	if l.applied {
		panic(fmt.Errorf("%w: recording %s", ErrLogConsumed, a))
	}
	l.actions = append(l.actions, a)
	switch act := a.(type) {
	case *AddPoint:
		label = l.nPoints
		l.nPoints++
	case *AddFace:
		label = l.nFaces
		l.nFaces++
	case *AddCell:
		label = l.nCells
		l.nCells++
	case *ModifyPoint:
		label = act.Label
	case *ModifyFace:
		label = act.Label
	case *ModifyCell:
		label = act.Label
	case *RemovePoint:
		label = act.Label
	case *RemoveFace:
		label = act.Label
	case *RemoveCell:
		label = act.Label
	}
	return
}

func (l *Log) Actions() []Action { return l.actions }
func (l *Log) Len() int          { return len(l.actions) }
func (l *Log) Applied() bool     { return l.applied }
func (l *Log) Mesh() *mesh.Mesh  { return l.mesh }
