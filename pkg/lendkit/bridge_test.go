package lendkit_test

import (
	"bufio"
	"iter"
	"math"
	"slices"
	"strings"
	"testing"

	"go.llib.dev/frameless/pkg/iterkit"
	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"

	"go.llib.dev/lendstd/pkg/lendkit"
	"go.llib.dev/lendstd/pkg/lendkit/lendkitcontract"
)

func ExampleFromSeq() {
	it := lendkit.FromSeq(slices.Values([]string{"a", "b", "c"}))
	defer it.Close()

	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		_ = v
	}
}

func TestFromSeq(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("yields the values of the sequence", func(t *testcase.T) {
		it := lendkit.FromSeq(iterkit.Slice([]int{1, 2, 3}))
		assert.Equal(t, []int{1, 2, 3}, lendkit.Collect(it))
	})

	s.Test("closing early stops the sequence", func(t *testcase.T) {
		var stopped bool
		var seq iter.Seq[int] = func(yield func(int) bool) {
			defer func() { stopped = true }()
			for i := 0; ; i++ {
				if !yield(i) {
					return
				}
			}
		}
		it := lendkit.FromSeq(seq)
		v, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, 0, v)
		assert.NoError(t, it.Close())
		assert.True(t, stopped)

		_, ok = it.Next()
		assert.False(t, ok)
	})

	s.Test("close is idempotent", func(t *testcase.T) {
		it := lendkit.FromSeq(iterkit.Slice([]int{1}))
		assert.NoError(t, it.Close())
		assert.NoError(t, it.Close())
	})
}

func TestFromPull(t *testing.T) {
	var stops int
	vs := []string{"x", "y"}
	it := lendkit.FromPull(func() (string, bool) {
		if len(vs) == 0 {
			return "", false
		}
		v := vs[0]
		vs = vs[1:]
		return v, true
	}, func() { stops++ })

	assert.Equal(t, []string{"x", "y"}, drain[string](it))
	assert.Equal(t, 1, stops)
	assert.NoError(t, it.Close())
	assert.Equal(t, 1, stops)
}

func TestFromSeq2(t *testing.T) {
	seq := iterkit.FromKV([]iterkit.KV[string, int]{{K: "a", V: 1}, {K: "b", V: 2}})
	got := lendkit.Collect(lendkit.FromSeq2(seq))
	assert.Equal(t, []lendkit.KV[string, int]{{K: "a", V: 1}, {K: "b", V: 2}}, got)
}

func TestFromMap(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	got := iterkit.Collect2Map(func(yield func(string, int) bool) {
		for kv := range lendkit.FromMap(m).Seq() {
			if !yield(kv.K, kv.V) {
				return
			}
		}
	})
	assert.Equal(t, m, got)
}

func TestFromString(t *testing.T) {
	var exp []lendkit.KV[int, rune]
	const text = "héllo, 世界"
	for i, r := range text {
		exp = append(exp, lendkit.KV[int, rune]{K: i, V: r})
	}
	assert.Equal(t, exp, lendkit.Collect(lendkit.FromString(text)))
}

func TestFromChan(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	close(ch)
	assert.Equal(t, []int{1, 2}, lendkit.Collect(lendkit.FromChan(ch)))
}

func TestRange(t *testing.T) {
	assert.Equal(t, []uint8{3, 4, 5}, lendkit.Collect(lendkit.Range[uint8](3, 6)))
	assert.Equal(t, []int{}, lendkit.Collect(lendkit.Range(5, 2)))

	it := lendkit.Range(0, 10)
	assert.NoError(t, lendkit.AdvanceBy(it, 4))
	v, ok := lendkit.Nth(it, 1)
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, lendkit.Exact(4), lendkit.SizeHint(it))
}

func TestRange_wideSpans(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("a signed range wider than an int is saturated in the hint", func(t *testcase.T) {
		it := lendkit.Range[int64](math.MinInt64, math.MaxInt64)
		assert.Equal(t, lendkit.Exact(math.MaxInt), lendkit.SizeHint(it))
		assert.NoError(t, lendkit.AdvanceBy(it, 1))
		v, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, int64(math.MinInt64+1), v)
	})

	s.Test("an unsigned range above MaxInt still advances", func(t *testcase.T) {
		it := lendkit.Range[uint64](0, math.MaxUint64)
		assert.NoError(t, lendkit.AdvanceBy(it, 3))
		v, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, uint64(3), v)
	})

	s.Test("advancing a narrow type past its own max value", func(t *testcase.T) {
		it := lendkit.Range[int8](math.MinInt8, math.MaxInt8)
		assert.Equal(t, lendkit.Exact(255), lendkit.SizeHint(it))
		assert.NoError(t, lendkit.AdvanceBy(it, 200))
		v, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, int8(72), v)
	})
}

func TestFromMap_deletedWhileIterating(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2}
	it := lendkit.FromMap(m)
	first, ok := it.Next()
	assert.True(t, ok)
	for k := range m {
		if k != first.K {
			delete(m, k)
		}
	}
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestLines(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("foo\nbar\nbaz"))
	var lines []string
	lendkit.ForEach(lendkit.Iterator[[]byte](lendkit.Lines(sc)), func(line []byte) {
		lines = append(lines, string(line))
	})
	assert.Equal(t, []string{"foo", "bar", "baz"}, lines)
}

func TestBridge_contract(t *testing.T) {
	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[lendkit.KV[int, rune]] {
		return lendkit.FromString("árvíztűrő")
	}).Test(t)
	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[[]int] {
		return lendkit.Windows([]int{1, 2, 3, 4, 5}, 3)
	}).Test(t)
	vs := []string{"a", "b", "c"}
	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[*string] {
		return lendkit.FromSliceMut(vs)
	}).Test(t)
}
