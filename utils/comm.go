package utils

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
)

var ErrWorldBroken = errors.New("parallel world aborted by a failing rank")

// Comm connects the ranks of a domain decomposed run. Every rank must issue the same sequence of
// Exchange calls, collectives built on it inherit that requirement.
type Comm interface {
	Rank() int
	Size() int
	// Exchange sends each payload in out to the rank it is keyed by and returns the payloads
	// received by this rank, keyed by the sending rank.
	Exchange(out map[int]any) (in map[int]any)
}

type serialComm struct{}

// Serial is the single rank communicator used by meshes that are not decomposed
func Serial() Comm { return serialComm{} }

func (serialComm) Rank() int { return 0 }
func (serialComm) Size() int { return 1 }
func (serialComm) Exchange(out map[int]any) (in map[int]any) {
	in = make(map[int]any, 1)
	if p, ok := out[0]; ok {
		in[0] = p
	}
	return
}

type envelope struct {
	from    int
	payload any
}

// World is an in-process set of ranks that communicate through a MailBox
type World struct {
	NP      int
	mb      *MailBox[envelope]
	barrier *barrier
}

func NewWorld(NP int) *World {
	if NP < 1 {
		panic(fmt.Errorf("world must have at least one rank, got %d", NP))
	}
	return &World{
		NP:      NP,
		mb:      NewMailBox[envelope](NP),
		barrier: newBarrier(NP),
	}
}

func (w *World) Comm(rank int) Comm {
	if rank < 0 || rank >= w.NP {
		panic(fmt.Errorf("rank %d out of range [0,%d)", rank, w.NP))
	}
	return &rankComm{w: w, rank: rank}
}

type rankComm struct {
	w    *World
	rank int
}

func (c *rankComm) Rank() int { return c.rank }
func (c *rankComm) Size() int { return c.w.NP }

func (c *rankComm) Exchange(out map[int]any) (in map[int]any) {
	var (
		mb   = c.w.mb
		tgts = make([]int, 0, len(out))
	)
	for tgt := range out {
		tgts = append(tgts, tgt)
	}
	sort.Ints(tgts)
	for _, tgt := range tgts {
		mb.PostMessage(c.rank, tgt, envelope{from: c.rank, payload: out[tgt]})
	}
	mb.DeliverMyMessages(c.rank)
	if !c.w.barrier.Wait() {
		panic(ErrWorldBroken)
	}
	mb.ReceiveMyMessages(c.rank)
	in = make(map[int]any)
	for _, env := range mb.ReceiveMsgQs[c.rank].Cells() {
		in[env.from] = env.payload
	}
	mb.ClearMyMessages(c.rank)
	// Senders may not reuse their outboxes until every receiver has drained them
	if !c.w.barrier.Wait() {
		panic(ErrWorldBroken)
	}
	return
}

// Run executes fn once per rank, each on its own goroutine, and returns the first error. A rank
// that fails breaks the world so the others stop at their next collective instead of deadlocking.
func Run(NP int, fn func(c Comm) error) error {
	var (
		w = NewWorld(NP)
		g errgroup.Group
	)
	for rank := 0; rank < NP; rank++ {
		c := w.Comm(rank)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if e, ok := r.(error); ok {
						err = fmt.Errorf("rank %d: %w", c.Rank(), e)
					} else {
						err = fmt.Errorf("rank %d: %v", c.Rank(), r)
					}
				}
				if err != nil {
					w.barrier.Break()
				}
			}()
			return fn(c)
		})
	}
	return g.Wait()
}

type barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n, waiting int
	generation int
	broken     bool
}

func newBarrier(n int) *barrier {
	b := &barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all n parties arrive, it returns false if the barrier was broken
func (b *barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.broken {
		return false
	}
	gen := b.generation
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return true
	}
	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}
	return !b.broken
}

func (b *barrier) Break() {
	b.mu.Lock()
	b.broken = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// AllGather returns the value contributed by every rank, indexed by rank
func AllGather[T any](c Comm, v T) (all []T) {
	out := make(map[int]any, c.Size())
	for r := 0; r < c.Size(); r++ {
		out[r] = v
	}
	in := c.Exchange(out)
	all = make([]T, c.Size())
	for r, p := range in {
		all[r] = p.(T)
	}
	return
}

// AllReduce folds the contributions in rank order so every rank gets a bit identical result
func AllReduce[T any](c Comm, v T, op func(a, b T) T) (r T) {
	all := AllGather(c, v)
	r = all[0]
	for _, a := range all[1:] {
		r = op(r, a)
	}
	return
}

type Number interface {
	constraints.Integer | constraints.Float
}

func ReduceSum[T Number](c Comm, v T) T {
	return AllReduce(c, v, func(a, b T) T { return a + b })
}

func ReduceMin[T constraints.Ordered](c Comm, v T) T {
	return AllReduce(c, v, func(a, b T) T { return min(a, b) })
}

func ReduceMax[T constraints.Ordered](c Comm, v T) T {
	return AllReduce(c, v, func(a, b T) T { return max(a, b) })
}

func ReduceOr(c Comm, v bool) bool {
	return AllReduce(c, v, func(a, b bool) bool { return a || b })
}

func ReduceAnd(c Comm, v bool) bool {
	return AllReduce(c, v, func(a, b bool) bool { return a && b })
}
