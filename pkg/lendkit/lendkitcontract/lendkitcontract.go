package lendkitcontract

import (
	"errors"
	"testing"

	"go.llib.dev/frameless/port/contract"
	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"

	"go.llib.dev/lendstd/pkg/lendkit"
)

// Iterator checks the provided operations of a lending iterator against their default behaviour.
// mk must return a fresh iterator over the same finite sequence on every call.
func Iterator[T any](mk func(testing.TB) lendkit.Iterator[T]) contract.Contract {
	s := testcase.NewSpec(nil)

	makeIter := func(t *testcase.T) lendkit.Iterator[T] {
		it := mk(t)
		t.Cleanup(func() { _ = lendkit.Close(it) })
		return it
	}

	length := testcase.Let(s, func(t *testcase.T) int {
		return lendkit.Count(makeIter(t))
	})

	s.Test("size hint bounds the number of remaining items", func(t *testcase.T) {
		it := makeIter(t)
		h := lendkit.SizeHint(it)
		n := lendkit.Count(it)
		assert.True(t, h.Lower <= n, "lower bound is above the actual length")
		if h.HasUpper {
			assert.True(t, n <= h.Upper, "upper bound is below the actual length")
		}
	})

	s.Test("advancing by zero leaves the iterator in place", func(t *testcase.T) {
		a, b := makeIter(t), makeIter(t)
		assert.NoError(t, lendkit.AdvanceBy(a, 0))
		for {
			va, okA := a.Next()
			vb, okB := b.Next()
			assert.Equal(t, okB, okA)
			if !okA {
				break
			}
			assert.Equal(t, vb, va)
		}
	})

	s.Test("advancing within bounds skips exactly that many items", func(t *testcase.T) {
		n := length.Get(t)
		k := t.Random.IntB(0, n)
		it := makeIter(t)
		assert.NoError(t, lendkit.AdvanceBy(it, k))
		assert.Equal(t, n-k, lendkit.Count(it))
	})

	s.Test("advancing past the end reports how far it got", func(t *testcase.T) {
		n := length.Get(t)
		err := lendkit.AdvanceBy(makeIter(t), n+1+t.Random.IntB(0, 3))
		assert.ErrorIs(t, err, lendkit.ErrExhausted)
		var aerr *lendkit.AdvanceError
		assert.True(t, errors.As(err, &aerr))
		assert.Equal(t, n, aerr.Advanced)
	})

	s.Test("nth yields the same item as skipping one by one", func(t *testcase.T) {
		k := t.Random.IntB(0, length.Get(t))
		got, gotOK := lendkit.Nth(makeIter(t), k)

		ref := makeIter(t)
		for i := 0; i < k; i++ {
			_, _ = ref.Next()
		}
		exp, expOK := ref.Next()

		assert.Equal(t, expOK, gotOK)
		if expOK {
			assert.Equal(t, exp, got)
		}
	})

	s.Test("collected twice the sequence is the same", func(t *testcase.T) {
		assert.Equal(t, length.Get(t), lendkit.Count(makeIter(t)))
	})

	return s.AsSuite("lending iterator")
}
