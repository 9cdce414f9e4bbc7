package lendkit

import "go.llib.dev/frameless/pkg/iterkit"

// Map transforms each item with fn.
// The outputs of fn are owned by the caller, so a MapIter can also be used as an ordinary iterator.
func Map[T, O any](it Iterator[T], fn func(T) O) *MapIter[T, O] {
	return &MapIter[T, O]{it: it, fn: fn}
}

type MapIter[T, O any] struct {
	it Iterator[T]
	fn func(T) O
}

func (i *MapIter[T, O]) Next() (O, bool) {
	v, ok := i.it.Next()
	if !ok {
		var zero O
		return zero, false
	}
	return i.fn(v), true
}

func (i *MapIter[T, O]) SizeHint() Hint { return SizeHint(i.it) }

func (i *MapIter[T, O]) Seq() iterkit.SingleUseSeq[O] { return seqOf[O](i) }

func (i *MapIter[T, O]) Close() error { return closeAll(i.it) }

// Touch calls fn with a mutable handle to each item before handing the item out.
func Touch[T any](it Iterator[T], fn func(*T)) *TouchIter[T] {
	return &TouchIter[T]{it: it, fn: fn}
}

type TouchIter[T any] struct {
	it Iterator[T]
	fn func(*T)
}

func (i *TouchIter[T]) Next() (T, bool) {
	v, ok := i.it.Next()
	if !ok {
		return v, false
	}
	i.fn(&v)
	return v, true
}

func (i *TouchIter[T]) SizeHint() Hint { return SizeHint(i.it) }

func (i *TouchIter[T]) Close() error { return closeAll(i.it) }
