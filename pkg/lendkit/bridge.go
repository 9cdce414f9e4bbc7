package lendkit

import (
	"iter"
	"maps"
	"math"
	"runtime"
	"slices"
	"sync"
	"unicode/utf8"

	"go.llib.dev/frameless/pkg/iterkit"
	"golang.org/x/exp/constraints"
)

// FromPull turns a pull function into a lending iterator.
// The stop functions are called once, when the iterator is exhausted or closed,
// or when it is garbage collected without either happening.
func FromPull[T any](next func() (T, bool), stops ...func()) *PullIter[T] {
	i := &PullIter[T]{next: next}
	i.stop = sync.OnceFunc(func() {
		for _, stop := range stops {
			stop()
		}
	})
	if 0 < len(stops) {
		i.cleanup = runtime.AddCleanup(i, func(stop func()) { stop() }, i.stop).Stop
	}
	return i
}

// FromSeq turns an ordinary iterator into a lending one.
func FromSeq[T any](seq iter.Seq[T]) *PullIter[T] {
	next, stop := iter.Pull(seq)
	return FromPull(next, stop)
}

// FromSeq2 turns an ordinary two-value iterator into a lending one that yields KV items.
func FromSeq2[K, V any](seq iter.Seq2[K, V]) *PullIter[KV[K, V]] {
	next, stop := iter.Pull2(seq)
	return FromPull(func() (KV[K, V], bool) {
		k, v, ok := next()
		return KV[K, V]{K: k, V: v}, ok
	}, stop)
}

// FromMap yields the entries of m in unspecified order.
// Like a range loop over m, an entry deleted before it was reached is not yielded.
func FromMap[M ~map[K]V, K comparable, V any](m M) *EntryIter[K, V] {
	return &EntryIter[K, V]{m: m, keys: slices.Collect(maps.Keys(m))}
}

type EntryIter[K comparable, V any] struct {
	m    map[K]V
	keys []K
}

func (i *EntryIter[K, V]) Next() (KV[K, V], bool) {
	for 0 < len(i.keys) {
		k := i.keys[0]
		i.keys = i.keys[1:]
		if v, ok := i.m[k]; ok {
			return KV[K, V]{K: k, V: v}, true
		}
	}
	return KV[K, V]{}, false
}

func (i *EntryIter[K, V]) SizeHint() Hint {
	return Hint{Upper: len(i.keys), HasUpper: true}
}

func (i *EntryIter[K, V]) Seq() iterkit.SingleUseSeq[KV[K, V]] { return seqOf[KV[K, V]](i) }

type PullIter[T any] struct {
	next    func() (T, bool)
	stop    func()
	cleanup func()
	done    bool
}

func (i *PullIter[T]) Next() (T, bool) {
	if i.done {
		var zero T
		return zero, false
	}
	v, ok := i.next()
	if !ok {
		_ = i.Close()
	}
	return v, ok
}

func (i *PullIter[T]) Seq() iterkit.SingleUseSeq[T] { return seqOf[T](i) }

func (i *PullIter[T]) Close() error {
	i.done = true
	if i.cleanup != nil {
		i.cleanup()
		i.cleanup = nil
	}
	i.stop()
	return nil
}

// FromSlice yields copies of the elements of vs.
func FromSlice[T any](vs []T) *SliceIter[T] {
	return &SliceIter[T]{vs: vs}
}

type SliceIter[T any] struct {
	vs  []T
	pos int
}

func (i *SliceIter[T]) Next() (T, bool) {
	if len(i.vs) <= i.pos {
		var zero T
		return zero, false
	}
	v := i.vs[i.pos]
	i.pos++
	return v, true
}

func (i *SliceIter[T]) SizeHint() Hint { return Exact(len(i.vs) - i.pos) }

func (i *SliceIter[T]) AdvanceBy(n int) error {
	return advanceCursor(&i.pos, len(i.vs), n)
}

func (i *SliceIter[T]) Nth(n int) (T, bool) {
	if err := i.AdvanceBy(n); err != nil {
		var zero T
		return zero, false
	}
	return i.Next()
}

func (i *SliceIter[T]) Seq() iterkit.SingleUseSeq[T] { return seqOf[T](i) }

func advanceCursor(pos *int, length, n int) error {
	if n <= 0 {
		return nil
	}
	remaining := length - *pos
	if remaining < n {
		*pos = length
		return &AdvanceError{Requested: n, Advanced: remaining}
	}
	*pos += n
	return nil
}

// FromString yields the runes of s along with their byte offset,
// the same way a range loop over a string does.
func FromString[S ~string](s S) *StringIter {
	return &StringIter{s: string(s)}
}

type StringIter struct {
	s   string
	pos int
}

func (i *StringIter) Next() (KV[int, rune], bool) {
	if len(i.s) <= i.pos {
		return KV[int, rune]{}, false
	}
	r, size := utf8.DecodeRuneInString(i.s[i.pos:])
	kv := KV[int, rune]{K: i.pos, V: r}
	i.pos += size
	return kv, true
}

func (i *StringIter) SizeHint() Hint {
	n := len(i.s) - i.pos
	return Hint{Lower: (n + utf8.UTFMax - 1) / utf8.UTFMax, Upper: n, HasUpper: true}
}

func (i *StringIter) Seq() iterkit.SingleUseSeq[KV[int, rune]] { return seqOf[KV[int, rune]](i) }

// FromChan receives from ch until it is closed.
func FromChan[T any](ch <-chan T) *ChanIter[T] {
	return &ChanIter[T]{ch: ch}
}

type ChanIter[T any] struct {
	ch <-chan T
}

func (i *ChanIter[T]) Next() (T, bool) {
	v, ok := <-i.ch
	return v, ok
}

func (i *ChanIter[T]) Seq() iterkit.SingleUseSeq[T] { return seqOf[T](i) }

// Range yields the integers of the half-open interval [begin, end).
func Range[N constraints.Integer](begin, end N) *RangeIter[N] {
	return &RangeIter[N]{cur: begin, end: end}
}

type RangeIter[N constraints.Integer] struct {
	cur, end N
}

func (i *RangeIter[N]) Next() (N, bool) {
	if i.end <= i.cur {
		var zero N
		return zero, false
	}
	v := i.cur
	i.cur++
	return v, true
}

// remaining saturates at math.MaxInt, the span of a wide range doesn't fit an int.
func (i *RangeIter[N]) remaining() int {
	if i.end <= i.cur {
		return 0
	}
	// the difference is exact modulo 2^64, for signed types too
	span := uint64(i.end) - uint64(i.cur)
	if uint64(math.MaxInt) < span {
		return math.MaxInt
	}
	return int(span)
}

func (i *RangeIter[N]) SizeHint() Hint { return Exact(i.remaining()) }

func (i *RangeIter[N]) AdvanceBy(n int) error {
	if n <= 0 {
		return nil
	}
	if rem := i.remaining(); rem < n {
		i.cur = max(i.cur, i.end)
		return &AdvanceError{Requested: n, Advanced: rem}
	}
	i.cur = N(uint64(i.cur) + uint64(n))
	return nil
}

func (i *RangeIter[N]) Seq() iterkit.SingleUseSeq[N] { return seqOf[N](i) }
