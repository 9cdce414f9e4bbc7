// Package indexkit is the indexing protocol behind rewritten index expressions.
//
// A container implements Indexer to hand out a read view of an element,
// and MutIndexer to also hand out a mutable view.
// The views don't have to be plain values or pointers:
// a sparse or computed container can return a proxy that synthesises the element on demand.
//
// The Read* and Write* functions bridge the builtin containers (slices, arrays, maps, strings) to the same protocol.
package indexkit

import (
	"go.llib.dev/frameless/pkg/errorkit"
	"golang.org/x/exp/constraints"
)

const ErrOutOfRange errorkit.Error = "indexkit: index out of range"

type Indexer[K, O any] interface {
	Index(k K) O
}

// MutIndexer extends Indexer with a mutable view.
// M is usually a pointer to the element or a proxy with a Set method.
type MutIndexer[K, O, M any] interface {
	Indexer[K, O]
	IndexMut(k K) M
}

func Read[K, O any](x Indexer[K, O], k K) O {
	return x.Index(k)
}

func Write[K, O, M any](x MutIndexer[K, O, M], k K) M {
	return x.IndexMut(k)
}

// Ref marks an index expression as a shared read, the way &x[i] marks a mutable one.
// On its own, it returns v unchanged.
func Ref[T any](v T) T { return v }

func ReadSlice[S ~[]E, E any, I constraints.Integer](s S, i I) E {
	return s[i]
}

// WriteSlice returns a pointer to the i-th element of s.
func WriteSlice[S ~[]E, E any, I constraints.Integer](s S, i I) *E {
	return &s[i]
}

// ReadString returns the i-th byte of s.
func ReadString[S ~string, I constraints.Integer](s S, i I) byte {
	return s[i]
}

// ReadMap returns the value stored under k, or the zero value when k is missing.
func ReadMap[M ~map[K]V, K comparable, V any](m M, k K) V {
	return m[k]
}

// WriteMap returns a proxy to the entry of m under k.
// Map entries are not addressable, so the proxy stands in for the pointer a slice would give.
func WriteMap[M ~map[K]V, K comparable, V any](m M, k K) *Slot[K, V] {
	return &Slot[K, V]{m: m, k: k}
}

// Slot is a mutable view of a single map entry.
type Slot[K comparable, V any] struct {
	m map[K]V
	k K
}

func (s *Slot[K, V]) Key() K { return s.k }

func (s *Slot[K, V]) Get() V { return s.m[s.k] }

func (s *Slot[K, V]) Lookup() (V, bool) {
	v, ok := s.m[s.k]
	return v, ok
}

func (s *Slot[K, V]) Set(v V) { s.m[s.k] = v }

func (s *Slot[K, V]) Delete() { delete(s.m, s.k) }
