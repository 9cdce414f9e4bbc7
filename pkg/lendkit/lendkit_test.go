package lendkit_test

import (
	"errors"
	"fmt"
	"testing"

	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"

	"go.llib.dev/lendstd/pkg/lendkit"
	"go.llib.dev/lendstd/pkg/lendkit/lendkitcontract"
)

// cell lends a pointer to its own value, the same slot on every call.
type cell struct {
	v    uint8
	left uint8
}

func newCell() *cell { return &cell{v: 0, left: 10} }

func (c *cell) Next() (*uint8, bool) {
	if c.left == 0 {
		return nil, false
	}
	c.left--
	return &c.v, true
}

// plain only has Next, so every provided operation falls back to its default.
type plain[T any] struct{ it lendkit.Iterator[T] }

func (p plain[T]) Next() (T, bool) { return p.it.Next() }

func drain[T any](it lendkit.Iterator[T]) []T {
	out := []T{}
	lendkit.ForEach(it, func(v T) { out = append(out, v) })
	return out
}

func ExampleIterator() {
	words := [][]byte{[]byte("foo"), []byte("bar"), []byte("baz")}

	upper := lendkit.Touch(lendkit.FromSliceMut(words), func(w **[]byte) {
		for i, c := range **w {
			(**w)[i] = c - 'a' + 'A'
		}
	})
	lendkit.ForEach(upper, func(w *[]byte) {
		fmt.Println(string(*w))
	})
	// Output:
	// FOO
	// BAR
	// BAZ
}

func TestItem_isLentFromTheIteratorItself(t *testing.T) {
	t.Run("touch then filter then fold", func(t *testing.T) {
		it := lendkit.Touch(newCell(), func(v **uint8) { **v += 1 })
		even := lendkit.Filter(it, func(v *uint8) bool { return *v%2 == 0 })

		got := lendkit.Fold(even, 0, func(acc int, v *uint8) int {
			assert.True(t, *v%2 == 0)
			return acc + 1
		})
		assert.Equal(t, 5, got)
	})
	t.Run("chain of two lenders", func(t *testing.T) {
		it := lendkit.Chain(lendkit.Iterator[*uint8](newCell()), newCell())

		got := lendkit.Fold(it, 0, func(acc int, v *uint8) int {
			*v += 1
			assert.Equal(t, uint8(acc%10)+1, *v)
			return acc + 1
		})
		assert.Equal(t, 20, got)
	})
}

func TestSizeHint(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("without an implementation the hint is unknown", func(t *testcase.T) {
		h := lendkit.SizeHint[*uint8](newCell())
		assert.Equal(t, lendkit.Hint{}, h)
		assert.False(t, h.HasUpper)
	})

	s.Test("slices know their exact length", func(t *testcase.T) {
		it := lendkit.FromSlice([]int{1, 2, 3})
		assert.Equal(t, lendkit.Exact(3), lendkit.SizeHint(it))
		_, _ = it.Next()
		assert.Equal(t, lendkit.Exact(2), lendkit.SizeHint(it))
	})

	s.Test("exact never goes below zero", func(t *testcase.T) {
		assert.Equal(t, lendkit.Exact(0), lendkit.Exact(-t.Random.IntB(1, 10)))
	})
}

func TestAdvanceBy(t *testing.T) {
	s := testcase.NewSpec(t)

	values := testcase.Let(s, func(t *testcase.T) []int {
		var vs []int
		t.Random.Repeat(1, 7, func() { vs = append(vs, t.Random.Int()) })
		return vs
	})

	s.Test("zero is a no-op", func(t *testcase.T) {
		it := plain[int]{it: lendkit.FromSlice(values.Get(t))}
		assert.NoError(t, lendkit.AdvanceBy[int](it, 0))
		assert.Equal(t, values.Get(t), drain[int](it))
	})

	s.Test("the default discards items one by one", func(t *testcase.T) {
		it := plain[int]{it: lendkit.FromSlice(values.Get(t))}
		assert.NoError(t, lendkit.AdvanceBy[int](it, 1))
		assert.Equal(t, values.Get(t)[1:], drain[int](it))
	})

	s.Test("running out reports the number of discarded items", func(t *testcase.T) {
		n := len(values.Get(t))
		for _, it := range []lendkit.Iterator[int]{
			plain[int]{it: lendkit.FromSlice(values.Get(t))},
			lendkit.FromSlice(values.Get(t)),
		} {
			err := lendkit.AdvanceBy(it, n+2)
			assert.ErrorIs(t, err, lendkit.ErrExhausted)
			var aerr *lendkit.AdvanceError
			assert.True(t, errors.As(err, &aerr))
			assert.Equal(t, n, aerr.Advanced)
			assert.Equal(t, n+2, aerr.Requested)
		}
	})
}

func TestNth(t *testing.T) {
	vs := []string{"a", "b", "c", "d"}

	t.Run("zero is next", func(t *testing.T) {
		v, ok := lendkit.Nth[string](plain[string]{it: lendkit.FromSlice(vs)}, 0)
		assert.True(t, ok)
		assert.Equal(t, "a", v)
	})
	t.Run("default and override agree", func(t *testing.T) {
		for n := 0; n <= len(vs); n++ {
			exp, expOK := lendkit.Nth[string](plain[string]{it: lendkit.FromSlice(vs)}, n)
			got, gotOK := lendkit.Nth[string](lendkit.FromSlice(vs), n)
			assert.Equal(t, expOK, gotOK)
			assert.Equal(t, exp, got)
		}
	})
	t.Run("past the end", func(t *testing.T) {
		_, ok := lendkit.Nth[string](lendkit.FromSlice(vs), len(vs))
		assert.False(t, ok)
	})
}

func TestConsumers(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("count", func(t *testcase.T) {
		assert.Equal(t, 10, lendkit.Count[*uint8](newCell()))
		assert.Equal(t, 0, lendkit.Count[int](lendkit.FromSlice[int](nil)))
	})

	s.Test("any stops at the first match", func(t *testcase.T) {
		it := lendkit.FromSlice([]int{1, 2, 3, 4})
		assert.True(t, lendkit.Any(it, func(v int) bool { return v == 2 }))
		assert.Equal(t, []int{3, 4}, drain[int](it))
	})

	s.Test("all", func(t *testcase.T) {
		assert.True(t, lendkit.All(lendkit.Range(0, 5), func(v int) bool { return v < 5 }))
		assert.False(t, lendkit.All(lendkit.Range(0, 5), func(v int) bool { return v < 4 }))
		assert.True(t, lendkit.All(lendkit.Range(0, 0), func(int) bool { return false }))
	})

	s.Test("find", func(t *testcase.T) {
		v, ok := lendkit.Find(lendkit.Range(0, 10), func(v int) bool { return 6 < v })
		assert.True(t, ok)
		assert.Equal(t, 7, v)

		_, ok = lendkit.Find(lendkit.Range(0, 10), func(v int) bool { return 10 < v })
		assert.False(t, ok)
	})
}

func TestIterator_contract(t *testing.T) {
	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[int] {
		return lendkit.FromSlice([]int{1, 2, 3, 4, 5})
	}).Test(t)
	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[int] {
		return plain[int]{it: lendkit.Range(0, 7)}
	}).Test(t)
	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[int] {
		return lendkit.Range(-3, 3)
	}).Test(t)
}
