package lendkit

import "go.llib.dev/frameless/pkg/iterkit"

// Chain yields every item of a, then every item of b.
func Chain[T any](a, b Iterator[T]) *ChainIter[T] {
	return &ChainIter[T]{a: a, b: b}
}

type ChainIter[T any] struct {
	a, b         Iterator[T]
	aDone, bDone bool
}

func (i *ChainIter[T]) Next() (T, bool) {
	if !i.aDone {
		if v, ok := i.a.Next(); ok {
			return v, true
		}
		i.aDone = true
	}
	if !i.bDone {
		if v, ok := i.b.Next(); ok {
			return v, true
		}
		i.bDone = true
	}
	var zero T
	return zero, false
}

func (i *ChainIter[T]) SizeHint() Hint {
	var h = Exact(0)
	for _, side := range []struct {
		it   Iterator[T]
		done bool
	}{{i.a, i.aDone}, {i.b, i.bDone}} {
		if side.done {
			continue
		}
		sh := SizeHint(side.it)
		h.Lower += sh.Lower
		h.Upper += sh.Upper
		h.HasUpper = h.HasUpper && sh.HasUpper
	}
	return h
}

// Close closes both sides, the exhausted ones included.
func (i *ChainIter[T]) Close() error { return closeAll(i.a, i.b) }

// Zip yields the items of a and b pairwise, and stops as soon as either side runs out.
// When a runs out first, b is not advanced for that step.
func Zip[A, B any](a Iterator[A], b Iterator[B]) *ZipIter[A, B] {
	return &ZipIter[A, B]{a: a, b: b}
}

type ZipIter[A, B any] struct {
	a    Iterator[A]
	b    Iterator[B]
	done bool
}

func (i *ZipIter[A, B]) Next() (KV[A, B], bool) {
	if i.done {
		return KV[A, B]{}, false
	}
	va, ok := i.a.Next()
	if !ok {
		i.done = true
		return KV[A, B]{}, false
	}
	vb, ok := i.b.Next()
	if !ok {
		i.done = true
		return KV[A, B]{}, false
	}
	return KV[A, B]{K: va, V: vb}, true
}

func (i *ZipIter[A, B]) SizeHint() Hint {
	if i.done {
		return Exact(0)
	}
	ha, hb := SizeHint(i.a), SizeHint(i.b)
	h := Hint{Lower: min(ha.Lower, hb.Lower)}
	switch {
	case ha.HasUpper && hb.HasUpper:
		h.Upper, h.HasUpper = min(ha.Upper, hb.Upper), true
	case ha.HasUpper:
		h.Upper, h.HasUpper = ha.Upper, true
	case hb.HasUpper:
		h.Upper, h.HasUpper = hb.Upper, true
	}
	return h
}

func (i *ZipIter[A, B]) Close() error { return closeAll(i.a, i.b) }

// Enumerate pairs each item with its position, counting from zero.
func Enumerate[T any](it Iterator[T]) *EnumerateIter[T] {
	return &EnumerateIter[T]{it: it}
}

type EnumerateIter[T any] struct {
	it    Iterator[T]
	count int
}

func (i *EnumerateIter[T]) Next() (KV[int, T], bool) {
	v, ok := i.it.Next()
	if !ok {
		return KV[int, T]{}, false
	}
	kv := KV[int, T]{K: i.count, V: v}
	i.count++
	return kv, true
}

func (i *EnumerateIter[T]) SizeHint() Hint { return SizeHint(i.it) }

func (i *EnumerateIter[T]) Close() error { return closeAll(i.it) }

// Scan threads a mutable state through fn.
// The iterator ends for good the first time fn reports false.
func Scan[T, S, O any](it Iterator[T], state S, fn func(state *S, v T) (O, bool)) *ScanIter[T, S, O] {
	return &ScanIter[T, S, O]{it: it, state: state, fn: fn}
}

type ScanIter[T, S, O any] struct {
	it    Iterator[T]
	state S
	fn    func(*S, T) (O, bool)
	done  bool
}

func (i *ScanIter[T, S, O]) Next() (O, bool) {
	var zero O
	if i.done {
		return zero, false
	}
	v, ok := i.it.Next()
	if !ok {
		i.done = true
		return zero, false
	}
	out, ok := i.fn(&i.state, v)
	if !ok {
		i.done = true
		return zero, false
	}
	return out, true
}

func (i *ScanIter[T, S, O]) SizeHint() Hint {
	if i.done {
		return Exact(0)
	}
	h := SizeHint(i.it)
	return Hint{Upper: h.Upper, HasUpper: h.HasUpper}
}

func (i *ScanIter[T, S, O]) Seq() iterkit.SingleUseSeq[O] { return seqOf[O](i) }

func (i *ScanIter[T, S, O]) Close() error { return closeAll(i.it) }

// Fuse makes sure that once it reported the end, Next keeps reporting the end
// without touching the source again.
func Fuse[T any](it Iterator[T]) *FuseIter[T] {
	if f, ok := it.(*FuseIter[T]); ok {
		return f
	}
	return &FuseIter[T]{it: it}
}

type FuseIter[T any] struct {
	it   Iterator[T]
	done bool
}

func (i *FuseIter[T]) Next() (T, bool) {
	if i.done {
		var zero T
		return zero, false
	}
	v, ok := i.it.Next()
	if !ok {
		i.done = true
	}
	return v, ok
}

func (i *FuseIter[T]) SizeHint() Hint {
	if i.done {
		return Exact(0)
	}
	return SizeHint(i.it)
}

func (i *FuseIter[T]) Close() error { return closeAll(i.it) }
