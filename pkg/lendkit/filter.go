package lendkit

// Filter yields only the items that satisfy pred.
func Filter[T any](it Iterator[T], pred func(T) bool) *FilterIter[T] {
	return &FilterIter[T]{it: it, pred: pred}
}

type FilterIter[T any] struct {
	it   Iterator[T]
	pred func(T) bool
}

func (i *FilterIter[T]) Next() (T, bool) {
	for {
		v, ok := i.it.Next()
		if !ok {
			return v, false
		}
		if i.pred(v) {
			return v, true
		}
	}
}

func (i *FilterIter[T]) SizeHint() Hint {
	h := SizeHint(i.it)
	return Hint{Upper: h.Upper, HasUpper: h.HasUpper}
}

func (i *FilterIter[T]) Close() error { return closeAll(i.it) }

// SkipWhile drops items while pred holds.
// After the first item that fails pred, pred is not called again.
func SkipWhile[T any](it Iterator[T], pred func(T) bool) *SkipWhileIter[T] {
	return &SkipWhileIter[T]{it: it, pred: pred}
}

type SkipWhileIter[T any] struct {
	it   Iterator[T]
	pred func(T) bool
}

func (i *SkipWhileIter[T]) Next() (T, bool) {
	if i.pred == nil {
		return i.it.Next()
	}
	for {
		v, ok := i.it.Next()
		if !ok {
			return v, false
		}
		if !i.pred(v) {
			i.pred = nil
			return v, true
		}
	}
}

func (i *SkipWhileIter[T]) SizeHint() Hint {
	h := SizeHint(i.it)
	if i.pred == nil {
		return h
	}
	return Hint{Upper: h.Upper, HasUpper: h.HasUpper}
}

func (i *SkipWhileIter[T]) Close() error { return closeAll(i.it) }

// TakeWhile yields items while pred holds.
// The first failing item is consumed and discarded, and the iterator ends for good.
func TakeWhile[T any](it Iterator[T], pred func(T) bool) *TakeWhileIter[T] {
	return &TakeWhileIter[T]{it: it, pred: pred}
}

type TakeWhileIter[T any] struct {
	it   Iterator[T]
	pred func(T) bool
}

func (i *TakeWhileIter[T]) Next() (T, bool) {
	var zero T
	if i.pred == nil {
		return zero, false
	}
	v, ok := i.it.Next()
	if !ok {
		i.pred = nil
		return zero, false
	}
	if !i.pred(v) {
		i.pred = nil
		return zero, false
	}
	return v, true
}

func (i *TakeWhileIter[T]) SizeHint() Hint {
	if i.pred == nil {
		return Exact(0)
	}
	h := SizeHint(i.it)
	return Hint{Upper: h.Upper, HasUpper: h.HasUpper}
}

func (i *TakeWhileIter[T]) Close() error { return closeAll(i.it) }
