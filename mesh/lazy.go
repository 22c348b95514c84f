package mesh

// lazy holds one demand-driven table. A slot is either empty or holds a complete value, calc is never
// asked to fill a slot twice.
type lazy[T any] struct {
	val T
	ok  bool
}

func (l *lazy[T]) get(calc func() T) T {
	if !l.ok {
		l.val = calc()
		l.ok = true
	}
	return l.val
}

func (l *lazy[T]) has() bool { return l.ok }

func (l *lazy[T]) clear() {
	var zero T
	l.val = zero
	l.ok = false
}
