package lendkit

// Take yields at most n items.
// Once n items were handed out, the source is not advanced anymore.
func Take[T any](it Iterator[T], n int) *TakeIter[T] {
	return &TakeIter[T]{it: it, n: max(n, 0)}
}

type TakeIter[T any] struct {
	it Iterator[T]
	n  int
}

func (i *TakeIter[T]) Next() (T, bool) {
	if i.n == 0 {
		var zero T
		return zero, false
	}
	v, ok := i.it.Next()
	if !ok {
		i.n = 0
		return v, false
	}
	i.n--
	return v, true
}

func (i *TakeIter[T]) SizeHint() Hint {
	if i.n == 0 {
		return Exact(0)
	}
	h := SizeHint(i.it)
	h.Lower = min(h.Lower, i.n)
	if h.HasUpper {
		h.Upper = min(h.Upper, i.n)
	} else {
		h.Upper, h.HasUpper = i.n, true
	}
	return h
}

func (i *TakeIter[T]) Close() error { return closeAll(i.it) }

// Skip drops the first n items, then yields the rest.
// A source shorter than n makes the iterator end without an error.
func Skip[T any](it Iterator[T], n int) *SkipIter[T] {
	return &SkipIter[T]{it: it, n: max(n, 0)}
}

type SkipIter[T any] struct {
	it   Iterator[T]
	n    int
	done bool
}

func (i *SkipIter[T]) Next() (T, bool) {
	var zero T
	if i.done {
		return zero, false
	}
	if 0 < i.n {
		n := i.n
		i.n = 0
		if err := AdvanceBy(i.it, n); err != nil {
			i.done = true
			return zero, false
		}
	}
	v, ok := i.it.Next()
	if !ok {
		i.done = true
	}
	return v, ok
}

func (i *SkipIter[T]) SizeHint() Hint {
	if i.done {
		return Exact(0)
	}
	h := SizeHint(i.it)
	h.Lower = max(h.Lower-i.n, 0)
	if h.HasUpper {
		h.Upper = max(h.Upper-i.n, 0)
	}
	return h
}

func (i *SkipIter[T]) Close() error { return closeAll(i.it) }

// StepBy yields the first item, then every step-th item after it.
// It panics with ErrInvalidStep when step is not positive.
func StepBy[T any](it Iterator[T], step int) *StepByIter[T] {
	if step <= 0 {
		panic(ErrInvalidStep)
	}
	return &StepByIter[T]{it: it, step: step, first: true}
}

type StepByIter[T any] struct {
	it    Iterator[T]
	step  int
	first bool
}

func (i *StepByIter[T]) Next() (T, bool) {
	if i.first {
		i.first = false
		return i.it.Next()
	}
	return Nth(i.it, i.step-1)
}

func (i *StepByIter[T]) SizeHint() Hint {
	h := SizeHint(i.it)
	f := func(n int) int {
		if i.first {
			if n == 0 {
				return 0
			}
			return 1 + (n-1)/i.step
		}
		return n / i.step
	}
	return Hint{Lower: f(h.Lower), Upper: f(h.Upper), HasUpper: h.HasUpper}
}

func (i *StepByIter[T]) Close() error { return closeAll(i.it) }
