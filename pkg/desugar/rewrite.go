package desugar

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/lyraproj/issue/issue"
	"go.llib.dev/frameless/pkg/logging"
	"golang.org/x/tools/go/ast/astutil"

	"go.llib.dev/lendstd/pkg/selector"
)

const (
	iterName = "lendIter"
	itemName = "lendItem"
	okName   = "lendOK"
)

type claim int

const (
	claimBorrow claim = iota + 1
	claimRef
	claimAssign
	claimPattern
)

// rewriter walks a tree twice: the first pass only collects diagnostics,
// the second one replaces nodes, and only runs when the first found nothing.
type rewriter struct {
	ctx        context.Context
	c          Config
	fset       *token.FileSet
	info       *types.Info
	lineOffset int

	apply    bool
	claims   map[*ast.IndexExpr]claim
	operands map[ast.Node]types.Type
	diags    Diagnostics

	usedIter  bool
	usedIndex bool
	rewrites  int

	loops   int
	hoisted map[*ast.LabeledStmt][]ast.Stmt
}

func newRewriter(ctx context.Context, c Config, fset *token.FileSet, file *ast.File) *rewriter {
	info := c.Info
	if info == nil {
		info = typeCheck(c, fset, file)
	}
	return &rewriter{ctx: ctx, c: c, fset: fset, info: info}
}

func typeCheck(c Config, fset *token.FileSet, file *ast.File) *types.Info {
	info := &types.Info{
		Types:     make(map[ast.Expr]types.TypeAndValue),
		Defs:      make(map[*ast.Ident]types.Object),
		Uses:      make(map[*ast.Ident]types.Object),
		Instances: make(map[*ast.Ident]types.Instance),
	}
	conf := types.Config{
		Importer: c.importer(fset),
		Error:    func(error) {},
	}
	_, _ = conf.Check(file.Name.Name, fset, []*ast.File{file}, info)
	return info
}

func (r *rewriter) rewrite(n ast.Node) (ast.Node, error) {
	if err := r.check(n); err != nil {
		return nil, err
	}
	return r.replace(n)[0], nil
}

func (r *rewriter) check(nodes ...ast.Node) error {
	r.apply, r.diags = false, nil
	r.walk(nodes)
	if 0 < len(r.diags) {
		return r.diags
	}
	return nil
}

func (r *rewriter) replace(nodes ...ast.Node) []ast.Node {
	r.apply = true
	return r.walk(nodes)
}

func (r *rewriter) walk(nodes []ast.Node) []ast.Node {
	r.claims = make(map[*ast.IndexExpr]claim)
	r.operands = make(map[ast.Node]types.Type)
	r.hoisted = make(map[*ast.LabeledStmt][]ast.Stmt)
	r.loops = 0
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, astutil.Apply(n, r.pre, r.post))
	}
	return out
}

func (r *rewriter) pre(c *astutil.Cursor) bool {
	switch n := c.Node().(type) {
	case *ast.RangeStmt:
		r.operands[n] = r.typeOf(n.X)
		for _, e := range []ast.Expr{n.Key, n.Value} {
			if ix, ok := astutil.Unparen(e).(*ast.IndexExpr); ok {
				r.claims[ix] = claimPattern
				r.report(UnsupportedPattern, ix.Pos(), issue.H{`reason`: "an index expression can't be a loop variable"})
			}
		}
	case *ast.IndexExpr:
		r.operands[n] = r.typeOf(n.X)
	case *ast.UnaryExpr:
		if ix, ok := astutil.Unparen(n.X).(*ast.IndexExpr); ok && n.Op == token.AND {
			r.claims[ix] = claimBorrow
		}
	case *ast.CallExpr:
		if ix, ok := r.refMarker(n); ok {
			r.claims[ix] = claimRef
		}
	case *ast.AssignStmt:
		if n.Tok == token.DEFINE {
			break
		}
		for _, lhs := range n.Lhs {
			if ix, ok := astutil.Unparen(lhs).(*ast.IndexExpr); ok {
				r.claims[ix] = claimAssign
			}
		}
	case *ast.IncDecStmt:
		if ix, ok := astutil.Unparen(n.X).(*ast.IndexExpr); ok {
			r.claims[ix] = claimAssign
		}
	}
	return true
}

func (r *rewriter) post(c *astutil.Cursor) bool {
	switch n := c.Node().(type) {
	case *ast.IndexExpr:
		if _, ok := r.claims[n]; ok || r.isInstantiation(n) || isTypePosition(c) {
			break
		}
		r.report(AmbiguousIndex, n.Pos(), issue.H{`expr`: types.ExprString(n), `ref`: r.c.index().Name + ".Ref"})
	case *ast.UnaryExpr:
		ix, ok := astutil.Unparen(n.X).(*ast.IndexExpr)
		if !ok || n.Op != token.AND {
			break
		}
		if call, _, ok := r.indexCall(ix, true); ok && r.apply {
			c.Replace(call)
		}
	case *ast.CallExpr:
		ix, ok := r.refMarker(n)
		if !ok {
			break
		}
		if call, _, ok := r.indexCall(ix, false); ok && r.apply {
			c.Replace(call)
		}
	case *ast.AssignStmt:
		r.lowerAssign(c, n)
	case *ast.IncDecStmt:
		r.lowerIncDec(n)
	case *ast.RangeStmt:
		r.lowerRange(c, n)
	case *ast.LabeledStmt:
		if prelude, ok := r.hoisted[n]; ok {
			c.Replace(&ast.BlockStmt{Lbrace: n.Pos(), List: append(prelude, n), Rbrace: n.End()})
		}
	}
	return true
}

func (r *rewriter) lowerRange(c *astutil.Cursor, rs *ast.RangeStmt) {
	sel, err := selector.Resolve(r.operands[rs])
	if err != nil {
		r.report(UnresolvedIterable, rs.X.Pos(), issue.H{`expr`: types.ExprString(rs.X), `type`: typeString(r.operands[rs])})
		return
	}
	if rs.Value != nil && !sel.Pair() {
		r.report(UnsupportedPattern, rs.Value.Pos(), issue.H{`reason`: fmt.Sprintf("%s yields a single value per step", sel.Shape)})
		return
	}
	if sel.Shape == selector.ShapeArray && !r.addressable(rs.X) {
		r.report(UnaddressableArray, rs.X.Pos(), issue.H{`expr`: types.ExprString(rs.X)})
		return
	}
	if !r.apply {
		return
	}

	iterVar := r.iterVar()
	closes := sel.Shape == selector.ShapeSeq || sel.Shape == selector.ShapeSeq2 || sel.Shape == selector.ShapeIntoIter
	var own string
	label, labelled := c.Parent().(*ast.LabeledStmt)
	if labelled {
		own = label.Label.Name
	}
	if closes {
		r.closeExits(rs.Body, iterVar, own)
	}

	var lhs, rhs []ast.Expr
	bind := func(target, value ast.Expr) {
		if id, ok := target.(*ast.Ident); ok && id.Name == "_" {
			return
		}
		lhs, rhs = append(lhs, target), append(rhs, value)
	}
	if sel.Pair() {
		if rs.Key != nil {
			bind(rs.Key, &ast.SelectorExpr{X: ast.NewIdent(itemName), Sel: ast.NewIdent("K")})
		}
		if rs.Value != nil {
			bind(rs.Value, &ast.SelectorExpr{X: ast.NewIdent(itemName), Sel: ast.NewIdent("V")})
		}
	} else if rs.Key != nil {
		bind(rs.Key, ast.NewIdent(itemName))
	}

	item := ast.NewIdent(itemName)
	if len(lhs) == 0 {
		item = ast.NewIdent("_")
	}
	head := []ast.Stmt{
		&ast.AssignStmt{
			Lhs: []ast.Expr{item, ast.NewIdent(okName)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{&ast.CallExpr{Fun: &ast.SelectorExpr{X: ast.NewIdent(iterVar), Sel: ast.NewIdent("Next")}}},
		},
		&ast.IfStmt{
			Cond: &ast.UnaryExpr{Op: token.NOT, X: ast.NewIdent(okName)},
			Body: &ast.BlockStmt{List: []ast.Stmt{&ast.BranchStmt{Tok: token.BREAK}}},
		},
	}
	if 0 < len(lhs) {
		head = append(head, &ast.AssignStmt{Lhs: lhs, Tok: rs.Tok, Rhs: rhs})
	}
	for _, stmt := range head {
		place(stmt, rs.Body.Lbrace, rs.Body.Lbrace)
	}
	body := head
	if shadows(rs.Body, lhs) {
		body = append(body, rs.Body)
	} else {
		body = append(body, rs.Body.List...)
	}

	src := sel.Source(rs.X, r.c.iter().Name)
	place(src, rs.For, rs.X.End())
	if sel.Shape != selector.ShapeIterator {
		r.usedIter = true
	}
	r.rewrites++
	r.c.logger().Debug(r.ctx, "range loop lowered",
		logging.Field("position", r.position(rs.For)),
		logging.Field("protocol", sel.Tag.String()),
		logging.Field("shape", sel.Shape.String()))

	loop := &ast.ForStmt{
		For:  rs.For,
		Body: &ast.BlockStmt{Lbrace: rs.Body.Lbrace, List: body, Rbrace: rs.Body.Rbrace},
	}
	init := &ast.AssignStmt{Lhs: []ast.Expr{ast.NewIdent(iterVar)}, Tok: token.DEFINE, Rhs: []ast.Expr{src}}
	if !closes {
		loop.Init = place(init, rs.For, rs.For)
		c.Replace(loop)
		return
	}

	// the iterator is declared ahead of the loop, so a deferred Close covers return and panic
	at := rs.For
	if labelled {
		at = label.Pos()
	}
	prelude := []ast.Stmt{place(init, at, at), r.closeStmt(&ast.DeferStmt{}, iterVar, at)}
	c.Replace(loop)
	if labelled {
		// the label has to stay on the loop, so the block wraps the label
		r.hoisted[label] = prelude
		return
	}
	c.Replace(&ast.BlockStmt{Lbrace: rs.For, List: append(prelude, loop), Rbrace: rs.Body.Rbrace})
}

func (r *rewriter) iterVar() string {
	r.loops++
	if r.loops == 1 {
		return iterName
	}
	return fmt.Sprintf("%s%d", iterName, r.loops-1)
}

// closeStmt builds Close(iterVar) as a deferred call or as a statement of its own.
func (r *rewriter) closeStmt(d *ast.DeferStmt, iterVar string, pos token.Pos) ast.Stmt {
	call := &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent(r.c.iter().Name), Sel: ast.NewIdent("Close")},
		Args: []ast.Expr{ast.NewIdent(iterVar)},
	}
	var stmt ast.Stmt = &ast.ExprStmt{X: call}
	if d != nil {
		d.Call = call
		stmt = d
	}
	place(stmt, pos, pos)
	return stmt
}

// closeExits closes the loop's iterator right before every branch that leaves the loop body.
// Returns and panics are covered by the deferred Close.
func (r *rewriter) closeExits(body *ast.BlockStmt, iterVar, own string) {
	inner := make(map[string]bool)
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.LabeledStmt:
			inner[n.Label.Name] = true
		}
		return true
	})
	var depth int // loops, switches and selects nested in the body
	astutil.Apply(body, func(c *astutil.Cursor) bool {
		switch c.Node().(type) {
		case *ast.FuncLit:
			return false
		case *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
			depth++
		}
		return true
	}, func(c *astutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
			depth--
		case *ast.BranchStmt:
			if !leaves(n, depth, inner, own) {
				break
			}
			if c.Index() < 0 {
				c.Replace(&ast.BlockStmt{
					Lbrace: n.Pos(),
					List:   []ast.Stmt{r.closeStmt(nil, iterVar, n.Pos()), n},
					Rbrace: n.End(),
				})
				break
			}
			c.InsertBefore(r.closeStmt(nil, iterVar, n.Pos()))
		}
		return true
	})
}

func leaves(b *ast.BranchStmt, depth int, inner map[string]bool, own string) bool {
	switch b.Tok {
	case token.BREAK:
		if b.Label == nil {
			return depth == 0
		}
		return !inner[b.Label.Name]
	case token.CONTINUE:
		return b.Label != nil && !inner[b.Label.Name] && b.Label.Name != own
	case token.GOTO:
		return !inner[b.Label.Name]
	default:
		return false
	}
}

func (r *rewriter) lowerAssign(c *astutil.Cursor, n *ast.AssignStmt) {
	if n.Tok == token.DEFINE {
		return
	}
	for i, lhs := range n.Lhs {
		ix, ok := astutil.Unparen(lhs).(*ast.IndexExpr)
		if !ok {
			continue
		}
		call, sel, ok := r.indexCall(ix, true)
		if !ok {
			continue
		}
		switch {
		case !sel.Assignable():
			r.report(NotAssignable, ix.Pos(), issue.H{`expr`: types.ExprString(ix), `type`: typeString(r.operands[ix])})
		case sel.Proxy:
			if len(n.Lhs) != 1 || n.Tok != token.ASSIGN {
				r.report(ProxyAssignment, ix.Pos(), issue.H{`op`: n.Tok.String(), `expr`: types.ExprString(ix)})
				continue
			}
			if r.apply {
				set := &ast.ExprStmt{X: &ast.CallExpr{
					Fun:  &ast.SelectorExpr{X: call, Sel: ast.NewIdent("Set")},
					Args: []ast.Expr{n.Rhs[0]},
				}}
				place(set, n.Pos(), n.End())
				c.Replace(set)
			}
		default:
			if r.apply {
				n.Lhs[i] = place(&ast.StarExpr{X: call}, ix.Pos(), ix.End())
			}
		}
	}
}

func (r *rewriter) lowerIncDec(n *ast.IncDecStmt) {
	ix, ok := astutil.Unparen(n.X).(*ast.IndexExpr)
	if !ok {
		return
	}
	call, sel, ok := r.indexCall(ix, true)
	if !ok {
		return
	}
	switch {
	case sel.Proxy:
		r.report(ProxyAssignment, ix.Pos(), issue.H{`op`: n.Tok.String(), `expr`: types.ExprString(ix)})
	case !sel.Assignable():
		r.report(NotAssignable, ix.Pos(), issue.H{`expr`: types.ExprString(ix), `type`: typeString(r.operands[ix])})
	case r.apply:
		n.X = place(&ast.StarExpr{X: call}, ix.Pos(), ix.End())
	}
}

// indexCall resolves the protocol of ix and builds the call that replaces it.
func (r *rewriter) indexCall(ix *ast.IndexExpr, mutable bool) (ast.Expr, selector.IndexSelection, bool) {
	sel, err := selector.ResolveIndex(r.operands[ix], mutable)
	if err != nil {
		r.report(UnresolvedIndex, ix.Pos(), issue.H{`expr`: types.ExprString(ix), `reason`: reasonOf(err, r.operands[ix])})
		return nil, sel, false
	}
	if !r.apply {
		return nil, sel, true
	}
	r.usedIndex = true
	r.rewrites++
	r.c.logger().Debug(r.ctx, "index lowered",
		logging.Field("position", r.position(ix.Pos())),
		logging.Field("protocol", sel.Tag.String()),
		logging.Field("mutable", mutable))
	return place(sel.Call(ix.X, ix.Index, r.c.index().Name), ix.Pos(), ix.Rbrack), sel, true
}

func reasonOf(err error, t types.Type) string {
	switch {
	case t == nil:
		return "missing type information"
	case errors.Is(err, selector.ErrNotWritable):
		return fmt.Sprintf("%s has no mutable index", t)
	case errors.Is(err, selector.ErrNotIndexable):
		return fmt.Sprintf("%s is not indexable", t)
	default:
		return fmt.Sprintf("%s can't be indexed", t)
	}
}

// refMarker matches the Ref(x[i]) shared borrow marker.
func (r *rewriter) refMarker(call *ast.CallExpr) (*ast.IndexExpr, bool) {
	fn, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || fn.Sel.Name != "Ref" || len(call.Args) != 1 {
		return nil, false
	}
	if pkg, ok := fn.X.(*ast.Ident); !ok || pkg.Name != r.c.index().Name {
		return nil, false
	}
	ix, ok := astutil.Unparen(call.Args[0]).(*ast.IndexExpr)
	return ix, ok
}

func (r *rewriter) isInstantiation(ix *ast.IndexExpr) bool {
	if tv, ok := r.info.Types[ix]; ok && tv.IsType() {
		return true
	}
	if tv, ok := r.info.Types[ix.X]; ok && tv.IsType() {
		return true
	}
	var id *ast.Ident
	switch x := ix.X.(type) {
	case *ast.Ident:
		id = x
	case *ast.SelectorExpr:
		id = x.Sel
	}
	if id == nil {
		return false
	}
	if _, ok := r.info.Instances[id]; ok {
		return true
	}
	if fn, ok := r.info.Uses[id].(*types.Func); ok {
		sig, ok := fn.Type().(*types.Signature)
		return ok && 0 < sig.TypeParams().Len()
	}
	return false
}

func isTypePosition(c *astutil.Cursor) bool {
	switch c.Parent().(type) {
	case *ast.CompositeLit, *ast.Field, *ast.ValueSpec, *ast.TypeSpec, *ast.TypeAssertExpr:
		return c.Name() == "Type"
	case *ast.ArrayType:
		return c.Name() == "Elt"
	case *ast.MapType, *ast.ChanType:
		return true
	default:
		return false
	}
}

func (r *rewriter) typeOf(e ast.Expr) types.Type {
	if tv, ok := r.info.Types[e]; ok && tv.Type != nil {
		return tv.Type
	}
	if id, ok := e.(*ast.Ident); ok {
		if obj := r.info.ObjectOf(id); obj != nil {
			return obj.Type()
		}
	}
	return nil
}

func (r *rewriter) addressable(e ast.Expr) bool {
	if tv, ok := r.info.Types[e]; ok {
		return tv.Addressable()
	}
	switch astutil.Unparen(e).(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.StarExpr:
		return true
	default:
		return false
	}
}

// shadows reports whether the loop body declares, at its top level, one of the names bound by the loop.
// Such a body keeps its own block so the redeclaration stays legal.
func shadows(body *ast.BlockStmt, bound []ast.Expr) bool {
	names := make(map[string]struct{})
	for _, e := range bound {
		if id, ok := e.(*ast.Ident); ok {
			names[id.Name] = struct{}{}
		}
	}
	declared := func(id *ast.Ident) bool {
		_, ok := names[id.Name]
		return ok
	}
	for _, stmt := range body.List {
		switch s := stmt.(type) {
		case *ast.AssignStmt:
			if s.Tok != token.DEFINE {
				continue
			}
			for _, lhs := range s.Lhs {
				if id, ok := lhs.(*ast.Ident); ok && declared(id) {
					return true
				}
			}
		case *ast.DeclStmt:
			gd, ok := s.Decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gd.Specs {
				switch sp := spec.(type) {
				case *ast.ValueSpec:
					for _, id := range sp.Names {
						if declared(id) {
							return true
						}
					}
				case *ast.TypeSpec:
					if declared(sp.Name) {
						return true
					}
				}
			}
		}
	}
	return false
}

func (r *rewriter) position(pos token.Pos) string {
	p := r.fset.Position(pos)
	p.Line -= r.lineOffset
	return p.String()
}

func (r *rewriter) report(code issue.Code, pos token.Pos, args issue.H) issue.Reported {
	p := r.fset.Position(pos)
	reported := issue.NewReported(code, issue.SEVERITY_ERROR, args, issue.NewLocation(p.Filename, p.Line-r.lineOffset, p.Column))
	if r.apply {
		return reported
	}
	r.diags = append(r.diags, reported)
	r.c.logger().Warn(r.ctx, "desugar diagnostic", logging.ErrField(reported))
	return reported
}

func typeString(t types.Type) string {
	if t == nil {
		return "unknown type"
	}
	return t.String()
}

// place gives the synthesized nodes of n a position, so the printer keeps comments where they were.
// Nodes that came from the input keep their own.
func place[N ast.Node](n N, pos, end token.Pos) N {
	set := func(p *token.Pos, v token.Pos) {
		if !p.IsValid() {
			*p = v
		}
	}
	ast.Inspect(n, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Ident:
			set(&n.NamePos, pos)
		case *ast.BasicLit:
			set(&n.ValuePos, pos)
		case *ast.UnaryExpr:
			set(&n.OpPos, pos)
		case *ast.StarExpr:
			set(&n.Star, pos)
		case *ast.CallExpr:
			set(&n.Lparen, pos)
			set(&n.Rparen, end)
		case *ast.ParenExpr:
			set(&n.Lparen, pos)
			set(&n.Rparen, end)
		case *ast.SliceExpr:
			set(&n.Lbrack, pos)
			set(&n.Rbrack, end)
		case *ast.AssignStmt:
			set(&n.TokPos, pos)
		case *ast.IfStmt:
			set(&n.If, pos)
		case *ast.BlockStmt:
			set(&n.Lbrace, pos)
			set(&n.Rbrace, end)
		case *ast.BranchStmt:
			set(&n.TokPos, pos)
		case *ast.DeferStmt:
			set(&n.Defer, pos)
		case *ast.ForStmt:
			set(&n.For, pos)
		}
		return true
	})
	return n
}
