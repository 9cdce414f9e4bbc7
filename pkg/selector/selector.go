// Package selector decides, from type information alone, which protocol a range loop or an index expression goes through.
//
// Types that implement the lending protocol win over types that are only iterable or indexable the builtin way,
// so a container that offers both is always driven by its own implementation.
// The decision is made once, while rewriting, and the generated code calls the chosen implementation directly.
package selector

import (
	"go/types"

	"go.llib.dev/frameless/pkg/errorkit"
)

const (
	ErrUnresolved   errorkit.Error = "selector: type is neither a lending iterator nor iterable"
	ErrNotIndexable errorkit.Error = "selector: type is not indexable"
	ErrNotWritable  errorkit.Error = "selector: type has no mutable index"
)

// Tag names the protocol that a Selection resolved to.
type Tag interface {
	String() string
	tag()
}

// Lending is the tag of types that implement the lending protocol themselves.
type Lending struct{}

func (Lending) String() string { return "lending" }
func (Lending) tag()           {}

// Core is the tag of types that go through the builtin bridges.
type Core struct{}

func (Core) String() string { return "core" }
func (Core) tag()           {}

type Shape int

const (
	_ Shape = iota
	ShapeIterator
	ShapeIntoIter
	ShapeInteger
	ShapeSlice
	ShapeArray
	ShapeArrayPointer
	ShapeString
	ShapeMap
	ShapeChan
	ShapeSeq
	ShapeSeq2
)

var shapeNames = map[Shape]string{
	ShapeIterator:     "iterator",
	ShapeIntoIter:     "into-iterator",
	ShapeInteger:      "integer",
	ShapeSlice:        "slice",
	ShapeArray:        "array",
	ShapeArrayPointer: "array pointer",
	ShapeString:       "string",
	ShapeMap:          "map",
	ShapeChan:         "channel",
	ShapeSeq:          "iter.Seq",
	ShapeSeq2:         "iter.Seq2",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Selection is the resolved iteration strategy of a type.
type Selection struct {
	Tag   Tag
	Shape Shape
	// Item is the type a single-value iteration yields.
	Item types.Type
	// Key and Value are set for shapes that yield two values per step.
	Key, Value types.Type
}

// Pair reports whether the iteration yields two values per step.
func (s Selection) Pair() bool {
	switch s.Shape {
	case ShapeSlice, ShapeArray, ShapeArrayPointer, ShapeString, ShapeMap, ShapeSeq2:
		return true
	default:
		return false
	}
}

// Resolve selects how values of type t are iterated.
func Resolve(t types.Type) (Selection, error) {
	if t == nil || t == types.Typ[types.Invalid] {
		return Selection{}, ErrUnresolved.F("missing type information")
	}
	if item, ok := nextItem(t); ok {
		return Selection{Tag: Lending{}, Shape: ShapeIterator, Item: item}, nil
	}
	if item, ok := intoIterItem(t); ok {
		return Selection{Tag: Lending{}, Shape: ShapeIntoIter, Item: item}, nil
	}
	if sel, ok := resolveCore(t); ok {
		return sel, nil
	}
	return Selection{}, ErrUnresolved.F("%s", t)
}

// IsLending reports whether t implements the lending protocol, directly or through IntoIter.
func IsLending(t types.Type) bool {
	sel, err := Resolve(t)
	return err == nil && sel.Tag == Lending{}
}

func resolveCore(t types.Type) (Selection, bool) {
	intType := types.Typ[types.Int]
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Info()&types.IsInteger != 0:
			return Selection{Tag: Core{}, Shape: ShapeInteger, Item: t}, true
		case u.Info()&types.IsString != 0:
			return Selection{Tag: Core{}, Shape: ShapeString, Key: intType, Value: types.Universe.Lookup("rune").Type()}, true
		}
	case *types.Slice:
		return Selection{Tag: Core{}, Shape: ShapeSlice, Key: intType, Value: u.Elem()}, true
	case *types.Array:
		return Selection{Tag: Core{}, Shape: ShapeArray, Key: intType, Value: u.Elem()}, true
	case *types.Pointer:
		if arr, ok := u.Elem().Underlying().(*types.Array); ok {
			return Selection{Tag: Core{}, Shape: ShapeArrayPointer, Key: intType, Value: arr.Elem()}, true
		}
	case *types.Map:
		return Selection{Tag: Core{}, Shape: ShapeMap, Key: u.Key(), Value: u.Elem()}, true
	case *types.Chan:
		if u.Dir() != types.SendOnly {
			return Selection{Tag: Core{}, Shape: ShapeChan, Item: u.Elem()}, true
		}
	case *types.Signature:
		return resolveFunc(u)
	}
	return Selection{}, false
}

// resolveFunc accepts the push iterator shapes: func(yield func(V) bool) and func(yield func(K, V) bool).
func resolveFunc(sig *types.Signature) (Selection, bool) {
	if sig.Params().Len() != 1 || sig.Results().Len() != 0 {
		return Selection{}, false
	}
	yield, ok := sig.Params().At(0).Type().Underlying().(*types.Signature)
	if !ok || yield.Results().Len() != 1 || !isBool(yield.Results().At(0).Type()) {
		return Selection{}, false
	}
	switch yield.Params().Len() {
	case 1:
		return Selection{Tag: Core{}, Shape: ShapeSeq, Item: yield.Params().At(0).Type()}, true
	case 2:
		return Selection{Tag: Core{}, Shape: ShapeSeq2, Key: yield.Params().At(0).Type(), Value: yield.Params().At(1).Type()}, true
	default:
		return Selection{}, false
	}
}

// nextItem looks for a Next() (T, bool) method.
// Pointer receivers count, a range operand is always copied into an addressable variable first.
func nextItem(t types.Type) (types.Type, bool) {
	sig, ok := method(t, true, "Next")
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 2 {
		return nil, false
	}
	if !isBool(sig.Results().At(1).Type()) {
		return nil, false
	}
	return sig.Results().At(0).Type(), true
}

func intoIterItem(t types.Type) (types.Type, bool) {
	sig, ok := method(t, true, "IntoIter")
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return nil, false
	}
	return nextItem(sig.Results().At(0).Type())
}

func method(t types.Type, addressable bool, name string) (*types.Signature, bool) {
	obj, _, _ := types.LookupFieldOrMethod(t, addressable, nil, name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, false
	}
	sig, ok := fn.Type().(*types.Signature)
	return sig, ok
}

func isBool(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsBoolean != 0
}
