package selector

import (
	"go/ast"
	"go/token"
)

// Source builds the expression that turns the range operand x into a lending iterator.
// pkg is the name the lendkit package is imported as.
func (s Selection) Source(x ast.Expr, pkg string) ast.Expr {
	switch s.Shape {
	case ShapeIterator:
		return x
	case ShapeIntoIter:
		return &ast.CallExpr{Fun: &ast.SelectorExpr{X: operand(x), Sel: ast.NewIdent("IntoIter")}}
	case ShapeInteger:
		return call(pkg, "Range", &ast.BasicLit{Kind: token.INT, Value: "0"}, x)
	case ShapeSlice:
		return call(pkg, "Enumerate", call(pkg, "FromSlice", x))
	case ShapeArray, ShapeArrayPointer:
		return call(pkg, "Enumerate", call(pkg, "FromSlice", &ast.SliceExpr{X: operand(x)}))
	case ShapeString:
		return call(pkg, "FromString", x)
	case ShapeMap:
		return call(pkg, "FromMap", x)
	case ShapeChan:
		return call(pkg, "FromChan", x)
	case ShapeSeq:
		return call(pkg, "FromSeq", x)
	case ShapeSeq2:
		return call(pkg, "FromSeq2", x)
	default:
		panic("selector: source of an unresolved selection")
	}
}

// Call builds the indexing call for x[k].
// pkg is the name the indexkit package is imported as.
func (s IndexSelection) Call(x, k ast.Expr, pkg string) ast.Expr {
	var fn string
	switch s.Kind {
	case IndexCustom:
		fn = "Read"
		if s.Mutable {
			fn = "Write"
		}
		if s.Addr {
			x = &ast.UnaryExpr{Op: token.AND, X: operand(x)}
		}
	case IndexSlice:
		fn = "ReadSlice"
		if s.Mutable {
			fn = "WriteSlice"
		}
	case IndexArray, IndexArrayPointer:
		fn = "ReadSlice"
		if s.Mutable {
			fn = "WriteSlice"
		}
		x = &ast.SliceExpr{X: operand(x)}
	case IndexString:
		fn = "ReadString"
	case IndexMap:
		fn = "ReadMap"
		if s.Mutable {
			fn = "WriteMap"
		}
	default:
		panic("selector: call of an unresolved index selection")
	}
	return call(pkg, fn, x, k)
}

func call(pkg, fn string, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(fn)},
		Args: args,
	}
}

// operand parenthesises x unless it already binds tighter than a selector or slice expression.
func operand(x ast.Expr) ast.Expr {
	switch x.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr, *ast.CallExpr, *ast.ParenExpr, *ast.SliceExpr, *ast.CompositeLit, *ast.BasicLit:
		return x
	default:
		return &ast.ParenExpr{X: x}
	}
}
