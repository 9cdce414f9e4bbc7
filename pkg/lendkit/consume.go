package lendkit

// Fold drains the iterator, combining every item into an accumulator.
func Fold[T, R any](it Iterator[T], initial R, fn func(R, T) R) R {
	acc := initial
	for {
		v, ok := it.Next()
		if !ok {
			return acc
		}
		acc = fn(acc, v)
	}
}

func ForEach[T any](it Iterator[T], fn func(T)) {
	for {
		v, ok := it.Next()
		if !ok {
			return
		}
		fn(v)
	}
}

// Count drains the iterator and returns how many items it yielded.
func Count[T any](it Iterator[T]) int {
	return Fold(it, 0, func(n int, _ T) int { return n + 1 })
}

// Any reports whether any item satisfies pred.
// It stops at the first match, the rest of the iterator stays available.
func Any[T any](it Iterator[T], pred func(T) bool) bool {
	_, ok := Find(it, pred)
	return ok
}

// All reports whether every item satisfies pred, stopping at the first one that doesn't.
func All[T any](it Iterator[T], pred func(T) bool) bool {
	return !Any(it, func(v T) bool { return !pred(v) })
}

// Find returns the first item that satisfies pred.
// The returned item is borrowed like any other item, it is valid until the next call to Next.
func Find[T any](it Iterator[T], pred func(T) bool) (T, bool) {
	for {
		v, ok := it.Next()
		if !ok {
			return v, false
		}
		if pred(v) {
			return v, true
		}
	}
}
