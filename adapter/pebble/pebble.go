// Package pebble lends the entries of a pebble key/value store.
//
// The Key and Value of an Entry point into pebble's own buffers,
// they are only valid until the next Next call on the same Iterator.
// Copy them with bytes.Clone when they have to outlive the step.
package pebble

import (
	"github.com/cockroachdb/pebble"

	"go.llib.dev/lendstd/pkg/lendkit"
)

var _ lendkit.Iterator[Entry] = (*Iterator)(nil)

type Entry struct {
	Key   []byte
	Value []byte
}

// Iterator is a lending iterator over a pebble.Iterator, in key order.
type Iterator struct {
	iter       *pebble.Iterator
	positioned bool
	done       bool
	closed     bool
	err        error
}

// New opens an iterator on r. opts may be nil.
func New(r pebble.Reader, opts *pebble.IterOptions) (*Iterator, error) {
	iter, err := r.NewIter(opts)
	if err != nil {
		return nil, err
	}
	return Wrap(iter), nil
}

// Prefix iterates over the keys that start with prefix.
func Prefix(r pebble.Reader, prefix []byte) (*Iterator, error) {
	return New(r, &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
}

// Wrap takes ownership of an unpositioned pebble.Iterator.
func Wrap(iter *pebble.Iterator) *Iterator {
	return &Iterator{iter: iter}
}

func (i *Iterator) Next() (Entry, bool) {
	if !i.step() {
		return Entry{}, false
	}
	value, err := i.iter.ValueAndErr()
	if err != nil {
		i.done, i.err = true, err
		return Entry{}, false
	}
	return Entry{Key: i.iter.Key(), Value: value}, true
}

// AdvanceBy skips n entries without loading their values.
func (i *Iterator) AdvanceBy(n int) error {
	for k := 0; k < n; k++ {
		if !i.step() {
			return &lendkit.AdvanceError{Requested: n, Advanced: k}
		}
	}
	return nil
}

func (i *Iterator) step() bool {
	if i.done {
		return false
	}
	var ok bool
	if !i.positioned {
		i.positioned = true
		ok = i.iter.First()
	} else {
		ok = i.iter.Next()
	}
	if !ok {
		i.done, i.err = true, i.iter.Error()
	}
	return ok
}

// Err reports the error that ended the iteration, if any.
func (i *Iterator) Err() error { return i.err }

func (i *Iterator) Close() error {
	if i.closed {
		return nil
	}
	i.closed, i.done = true, true
	return i.iter.Close()
}

// upperBound is the smallest key greater than every key with the given prefix.
// A prefix of only 0xff bytes has no upper bound.
func upperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; 0 <= i; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
