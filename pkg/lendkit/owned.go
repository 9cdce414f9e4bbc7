package lendkit

import (
	"iter"

	"go.llib.dev/frameless/pkg/iterkit"
)

// Owned is a lending iterator whose items don't borrow from it.
// Only Owned iterators can be turned into an ordinary iter.Seq,
// since an ordinary consumer is free to keep every item it receives.
//
// Owned is a property of the iterator type, not of the values.
// Map and Scan are always Owned, so their fn must return values that don't alias the input item:
// Map(Windows(xs, 2), func(w []int) []int { return w }) compiles, but the collected windows share storage.
// Copy in fn (slices.Clone, bytes.Clone) when the item is a view.
type Owned[T any] interface {
	Iterator[T]
	Seq() iterkit.SingleUseSeq[T]
}

// Collect drains an Owned iterator into a slice.
func Collect[T any](it Owned[T]) []T {
	vs := iterkit.Collect[T](it.Seq())
	if vs == nil {
		return []T{}
	}
	return vs
}

func seqOf[T any](it Iterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := it.Next()
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}
