package lendkit

// Checked wraps an iterator so that every item is handed out as a Loan.
// A Loan remembers the position it was lent at, and reading it after the iterator advanced panics
// with ErrStaleItem. It is meant for tests and debug builds, where a retained item is a bug to catch early.
func Checked[T any](it Iterator[T]) *CheckedIter[T] {
	return &CheckedIter[T]{it: it, gen: new(uint64)}
}

type CheckedIter[T any] struct {
	it  Iterator[T]
	gen *uint64
}

func (i *CheckedIter[T]) Next() (Loan[T], bool) {
	*i.gen++
	v, ok := i.it.Next()
	if !ok {
		return Loan[T]{}, false
	}
	return Loan[T]{v: v, gen: *i.gen, src: i.gen}, true
}

func (i *CheckedIter[T]) SizeHint() Hint { return SizeHint(i.it) }

func (i *CheckedIter[T]) Close() error {
	*i.gen++
	return closeAll(i.it)
}

// Loan is an item borrowed from a CheckedIter.
type Loan[T any] struct {
	v   T
	gen uint64
	src *uint64
}

// Valid reports whether the iterator is still at the position the item was lent at.
func (l Loan[T]) Valid() bool {
	return l.src != nil && *l.src == l.gen
}

func (l Loan[T]) Get() T {
	if !l.Valid() {
		panic(ErrStaleItem)
	}
	return l.v
}
