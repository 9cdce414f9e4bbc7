// Package lendkit implements lending iterators.
//
// A lending iterator hands out items that may borrow from the iterator itself:
// a pointer into its buffer, a window over its backing slice, a scanner's line buffer.
// Such an item is only valid until the next call to Next.
// Code that needs to retain an item must copy it before advancing.
//
// # Summary
//
//   - Iterator is the protocol, Next is its only required method.
//   - SizeHint, AdvanceBy and Nth are provided operations with default behaviour,
//     an iterator can override them by implementing SizeHinter, ByAdvancer or Nther.
//   - Adapters (Map, Filter, Zip, Take...) wrap an iterator lazily, nothing happens until Next is called.
//   - The From* functions bridge ordinary values (slices, maps, iter.Seq...) into the protocol,
//     Owned iterators can go the other way with Seq and Collect.
//
// # Resources
//
// Go iterators: https://go.dev/blog/range-functions
package lendkit

import (
	"fmt"
	"io"

	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/iterkit"
)

// Iterator is a lending iterator.
//
// The item returned by Next may alias storage owned by the iterator,
// and it stays valid only until the next call to Next.
// Once Next reported false, the pass is over.
type Iterator[T any] interface {
	Next() (T, bool)
}

// KV is the item shape of iterators that yield two values at once.
type KV[K, V any] = iterkit.KV[K, V]

const (
	ErrExhausted   errorkit.Error = "lendkit: iterator exhausted"
	ErrInvalidStep errorkit.Error = "lendkit: step must be positive"
	ErrInvalidSize errorkit.Error = "lendkit: window size must be positive"
	ErrStaleItem   errorkit.Error = "lendkit: item used after the iterator advanced"
)

// Hint is the estimated number of remaining items.
// The zero value means no information: at least zero, no known upper bound.
type Hint struct {
	Lower    int
	Upper    int
	HasUpper bool
}

// Exact returns a Hint for exactly n remaining items.
func Exact(n int) Hint {
	n = max(n, 0)
	return Hint{Lower: n, Upper: n, HasUpper: true}
}

// SizeHinter is implemented by iterators that know something about their remaining length.
type SizeHinter interface {
	SizeHint() Hint
}

// ByAdvancer is implemented by iterators that can skip items faster than calling Next repeatedly.
type ByAdvancer interface {
	AdvanceBy(n int) error
}

// Nther is implemented by iterators with a fast path to an arbitrary later item.
type Nther[T any] interface {
	Nth(n int) (T, bool)
}

// SizeHint returns the bounds on the remaining length of the iterator.
func SizeHint[T any](it Iterator[T]) Hint {
	if sh, ok := it.(SizeHinter); ok {
		return sh.SizeHint()
	}
	return Hint{}
}

// AdvanceBy discards the next n items.
// If the iterator runs dry first, the returned error is an *AdvanceError that reports
// how many items were actually discarded.
func AdvanceBy[T any](it Iterator[T], n int) error {
	if n <= 0 {
		return nil
	}
	if a, ok := it.(ByAdvancer); ok {
		return a.AdvanceBy(n)
	}
	for i := 0; i < n; i++ {
		if _, ok := it.Next(); !ok {
			return &AdvanceError{Requested: n, Advanced: i}
		}
	}
	return nil
}

// Nth returns the item n positions ahead, Nth(it, 0) is the same as it.Next().
func Nth[T any](it Iterator[T], n int) (T, bool) {
	if nther, ok := it.(Nther[T]); ok {
		return nther.Nth(n)
	}
	if err := AdvanceBy(it, n); err != nil {
		var zero T
		return zero, false
	}
	return it.Next()
}

type AdvanceError struct {
	Requested int
	Advanced  int
}

func (err *AdvanceError) Error() string {
	return fmt.Sprintf("%s: advanced %d of %d", ErrExhausted, err.Advanced, err.Requested)
}

func (err *AdvanceError) Is(target error) bool {
	return target == ErrExhausted
}

// Close releases the resources held by the iterator, when it holds any.
func Close[T any](it Iterator[T]) error {
	return closeAll(it)
}

func closeAll(vs ...any) error {
	var errs []error
	for _, v := range vs {
		if c, ok := v.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errorkit.Merge(errs...)
}
