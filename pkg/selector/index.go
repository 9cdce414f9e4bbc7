package selector

import "go/types"

type IndexKind int

const (
	_ IndexKind = iota
	IndexCustom
	IndexSlice
	IndexArray
	IndexArrayPointer
	IndexString
	IndexMap
)

// IndexSelection is the resolved indexing strategy of a container type.
type IndexSelection struct {
	Tag  Tag
	Kind IndexKind
	// Mutable tells whether the selection is for a mutable view.
	Mutable bool
	// Addr is set when the custom implementation has a pointer receiver
	// and the container has to be passed by address.
	Addr bool
	// Out is the type of the view: the element type for reads, *E or a proxy for writes.
	Out types.Type
	// Proxy is set when the mutable view is not a pointer but a value with a Set method.
	Proxy bool
}

// Assignable reports whether an assignment can be lowered onto the mutable view.
// Pointers are assigned through a dereference, proxies through Set.
func (s IndexSelection) Assignable() bool {
	if !s.Mutable {
		return false
	}
	if s.Proxy {
		return true
	}
	_, ok := s.Out.Underlying().(*types.Pointer)
	return ok
}

// ResolveIndex selects how x[k] is evaluated for a container of type t.
// A custom Index / IndexMut implementation takes precedence over the builtin bridges.
func ResolveIndex(t types.Type, mutable bool) (IndexSelection, error) {
	if t == nil || t == types.Typ[types.Invalid] {
		return IndexSelection{}, ErrNotIndexable.F("missing type information")
	}
	name := "Index"
	if mutable {
		name = "IndexMut"
	}
	if sig, ok := method(t, true, name); ok && sig.Params().Len() == 1 && sig.Results().Len() == 1 {
		out := sig.Results().At(0).Type()
		sel := IndexSelection{Tag: Lending{}, Kind: IndexCustom, Mutable: mutable, Out: out}
		if _, ok := method(t, false, name); !ok {
			sel.Addr = true
		}
		if mutable {
			if _, ok := out.Underlying().(*types.Pointer); !ok {
				sel.Proxy = isProxy(out)
			}
			if _, hasRead := method(t, true, "Index"); !hasRead {
				return IndexSelection{}, ErrNotIndexable.F("%s has IndexMut without Index", t)
			}
		}
		return sel, nil
	}
	if mutable {
		if _, ok := method(t, true, "Index"); ok {
			return IndexSelection{}, ErrNotWritable.F("%s", t)
		}
	}
	return resolveCoreIndex(t, mutable)
}

func resolveCoreIndex(t types.Type, mutable bool) (IndexSelection, error) {
	sel := IndexSelection{Tag: Core{}, Mutable: mutable}
	switch u := t.Underlying().(type) {
	case *types.Slice:
		sel.Kind, sel.Out = IndexSlice, elemView(u.Elem(), mutable)
	case *types.Array:
		sel.Kind, sel.Out = IndexArray, elemView(u.Elem(), mutable)
	case *types.Pointer:
		arr, ok := u.Elem().Underlying().(*types.Array)
		if !ok {
			return IndexSelection{}, ErrNotIndexable.F("%s", t)
		}
		sel.Kind, sel.Out = IndexArrayPointer, elemView(arr.Elem(), mutable)
	case *types.Basic:
		if u.Info()&types.IsString == 0 {
			return IndexSelection{}, ErrNotIndexable.F("%s", t)
		}
		if mutable {
			return IndexSelection{}, ErrNotWritable.F("%s", t)
		}
		sel.Kind, sel.Out = IndexString, types.Typ[types.Byte]
	case *types.Map:
		sel.Kind, sel.Out = IndexMap, u.Elem()
		sel.Proxy = mutable
	default:
		return IndexSelection{}, ErrNotIndexable.F("%s", t)
	}
	return sel, nil
}

func elemView(elem types.Type, mutable bool) types.Type {
	if mutable {
		return types.NewPointer(elem)
	}
	return elem
}

func isProxy(t types.Type) bool {
	sig, ok := method(t, true, "Set")
	return ok && sig.Params().Len() == 1
}
