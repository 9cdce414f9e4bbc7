package indexkit

// Sparse is a fixed length vector that only stores the elements that were written.
// Reading an element that was never written synthesises its zero value.
type Sparse[V any] struct {
	n  int
	vs map[int]V
}

func NewSparse[V any](length int) *Sparse[V] {
	return &Sparse[V]{n: max(length, 0)}
}

func (s *Sparse[V]) Len() int { return s.n }

// Stored returns the number of elements that actually occupy memory.
func (s *Sparse[V]) Stored() int { return len(s.vs) }

func (s *Sparse[V]) Index(i int) V {
	s.check(i)
	return s.vs[i]
}

func (s *Sparse[V]) IndexMut(i int) *Slot[int, V] {
	s.check(i)
	if s.vs == nil {
		s.vs = make(map[int]V)
	}
	return &Slot[int, V]{m: s.vs, k: i}
}

func (s *Sparse[V]) check(i int) {
	if i < 0 || s.n <= i {
		panic(ErrOutOfRange.F("%d with length %d", i, s.n))
	}
}
