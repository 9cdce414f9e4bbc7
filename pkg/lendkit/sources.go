package lendkit

import "bufio"

// FromSliceMut yields a pointer to each element of vs, so the elements can be updated in place.
func FromSliceMut[T any](vs []T) *SliceMutIter[T] {
	return &SliceMutIter[T]{vs: vs}
}

type SliceMutIter[T any] struct {
	vs  []T
	pos int
}

func (i *SliceMutIter[T]) Next() (*T, bool) {
	if len(i.vs) <= i.pos {
		return nil, false
	}
	ptr := &i.vs[i.pos]
	i.pos++
	return ptr, true
}

func (i *SliceMutIter[T]) SizeHint() Hint { return Exact(len(i.vs) - i.pos) }

func (i *SliceMutIter[T]) AdvanceBy(n int) error {
	return advanceCursor(&i.pos, len(i.vs), n)
}

// Windows yields every overlapping window of size n over vs.
// Each window is a sub-slice of vs, writes through a window are visible in the windows that follow.
// A window must not be kept beyond the next call to Next.
func Windows[T any](vs []T, n int) *WindowsIter[T] {
	if n <= 0 {
		panic(ErrInvalidSize)
	}
	return &WindowsIter[T]{vs: vs, size: n}
}

type WindowsIter[T any] struct {
	vs   []T
	size int
	pos  int
}

func (i *WindowsIter[T]) Next() ([]T, bool) {
	if len(i.vs) < i.pos+i.size {
		return nil, false
	}
	w := i.vs[i.pos : i.pos+i.size : i.pos+i.size]
	i.pos++
	return w, true
}

func (i *WindowsIter[T]) remaining() int {
	return max(len(i.vs)-i.size+1-i.pos, 0)
}

func (i *WindowsIter[T]) SizeHint() Hint { return Exact(i.remaining()) }

func (i *WindowsIter[T]) AdvanceBy(n int) error {
	if n <= 0 {
		return nil
	}
	if rem := i.remaining(); rem < n {
		i.pos += rem
		return &AdvanceError{Requested: n, Advanced: rem}
	}
	i.pos += n
	return nil
}

// Lines yields the tokens of a bufio.Scanner without copying them.
// The returned bytes are the scanner's own buffer, the next call to Next overwrites them.
func Lines(s *bufio.Scanner) *LinesIter {
	return &LinesIter{s: s}
}

type LinesIter struct {
	s    *bufio.Scanner
	done bool
}

func (i *LinesIter) Next() ([]byte, bool) {
	if i.done {
		return nil, false
	}
	if !i.s.Scan() {
		i.done = true
		return nil, false
	}
	return i.s.Bytes(), true
}

// Err returns the first non-EOF error of the underlying scanner.
func (i *LinesIter) Err() error { return i.s.Err() }
