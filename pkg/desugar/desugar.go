// Package desugar rewrites range loops and index expressions of Go source into calls against
// the lending iteration and indexing protocols.
//
//	for k, v := range xs { ... }  →  for lendIter := lendkit.Enumerate(lendkit.FromSlice(xs)); ; { ... }
//	&grid[p]                      →  indexkit.Write(&grid, p)
//	indexkit.Ref(grid[p])         →  indexkit.Read(&grid, p)
//	grid[p] = v                   →  *indexkit.Write(&grid, p) = v
//
// Which protocol a loop or index goes through is decided from the operand's type,
// see package selector. An index expression that is neither borrowed nor assigned is ambiguous and reported.
// When a fragment has any diagnostic, nothing is rewritten.
package desugar

import (
	"bytes"
	"context"
	"go/ast"
	"go/format"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"path"
	"strings"

	"github.com/lyraproj/issue/issue"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/frameless/pkg/zerokit"
	"go.llib.dev/frameless/port/option"
	"golang.org/x/tools/go/ast/astutil"
)

const ErrRewrite errorkit.Error = "desugar: rewrite failed"

const DefaultDirective = "lend:desugar"

// Package names an import that provides one of the runtime protocols.
type Package struct {
	Name string
	Path string
}

type Config struct {
	// Info is the type information of the rewritten file.
	// When nil, the file is type-checked on its own, and type errors are tolerated.
	Info *types.Info
	// Importer is used when the file has to be type-checked.
	Importer types.Importer
	// Iter is the package that provides lending iterators and the bridges.
	Iter Package
	// Index is the package that provides the indexing protocol and the Ref marker.
	Index Package
	// Directive is the comment directive that marks a declaration for rewriting.
	Directive string
	// Prelude is Go source declared around an Expand fragment,
	// so the fragment's free identifiers have types.
	Prelude string
	Logger  *logging.Logger
}

func (c Config) Configure(t *Config) { option.Configure(c, t) }

type Option option.Option[Config]

func WithInfo(info *types.Info) Option {
	return option.Func[Config](func(c *Config) { c.Info = info })
}

func WithImporter(imp types.Importer) Option {
	return option.Func[Config](func(c *Config) { c.Importer = imp })
}

func WithIterPackage(name, path string) Option {
	return option.Func[Config](func(c *Config) { c.Iter = Package{Name: name, Path: path} })
}

func WithIndexPackage(name, path string) Option {
	return option.Func[Config](func(c *Config) { c.Index = Package{Name: name, Path: path} })
}

func WithDirective(directive string) Option {
	return option.Func[Config](func(c *Config) { c.Directive = directive })
}

// WithPrelude declares the enclosing context of an Expand fragment, such as the variables and types it refers to.
// src is a list of top level declarations, imports included, and it is never part of the output.
func WithPrelude(src string) Option {
	return option.Func[Config](func(c *Config) { c.Prelude = src })
}

func WithLogger(l *logging.Logger) Option {
	return option.Func[Config](func(c *Config) { c.Logger = l })
}

func (c Config) iter() Package {
	return zerokit.Coalesce(c.Iter, Package{Name: "lendkit", Path: "go.llib.dev/lendstd/pkg/lendkit"})
}

func (c Config) index() Package {
	return zerokit.Coalesce(c.Index, Package{Name: "indexkit", Path: "go.llib.dev/lendstd/pkg/indexkit"})
}

func (c Config) directive() string {
	return zerokit.Coalesce(c.Directive, DefaultDirective)
}

func (c Config) logger() *logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return &logging.Logger{Out: io.Discard}
}

func (c Config) importer(fset *token.FileSet) types.Importer {
	if c.Importer != nil {
		return c.Importer
	}
	return importer.ForCompiler(fset, "source", nil)
}

// Diagnostics is the error of a failed rewrite, every problem found in the input is listed.
type Diagnostics []issue.Reported

func (d Diagnostics) Error() string {
	return errorkit.Merge(d.Unwrap()...).Error()
}

func (d Diagnostics) Is(target error) bool { return target == ErrRewrite }

func (d Diagnostics) Unwrap() []error {
	errs := make([]error, 0, len(d))
	for _, r := range d {
		errs = append(errs, r)
	}
	return errs
}

// Codes lists the issue codes in reporting order.
func (d Diagnostics) Codes() []issue.Code {
	codes := make([]issue.Code, 0, len(d))
	for _, r := range d {
		codes = append(codes, r.Code())
	}
	return codes
}

// Expand rewrites a single declaration or statement.
// attr is the argument list of the invocation, anything but blank is an error.
func Expand(ctx context.Context, attr, fragment string, opts ...Option) (string, error) {
	c := option.Use[Config](opts)
	if strings.TrimSpace(attr) != "" {
		return "", Diagnostics{issue.NewReported(DesugarArguments, issue.SEVERITY_ERROR, issue.NO_ARGS, issue.NewLocation("", 0, 0))}
	}

	fset := token.NewFileSet()
	file, node, header, err := parseFragment(fset, c.Prelude, fragment)
	if err != nil {
		return "", err
	}

	r := newRewriter(ctx, c, fset, file)
	r.lineOffset = header
	node, err = r.rewrite(node)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const fragmentFile = "fragment.go"

// parseFragment parses fragment after the prelude, first as a declaration, then as a statement of a function body.
// The returned line offset maps positions back into the fragment.
func parseFragment(fset *token.FileSet, prelude, fragment string) (*ast.File, ast.Node, int, error) {
	header := "package fragment\n" + prelude + "\n"
	pre, err := parser.ParseFile(token.NewFileSet(), fragmentFile, header, parser.ParseComments)
	if err != nil {
		return nil, nil, 0, parseError("prelude: " + err.Error())
	}
	offset := strings.Count(header, "\n")

	file, declErr := parser.ParseFile(fset, fragmentFile, header+fragment, parser.ParseComments)
	if declErr == nil && len(file.Decls) == len(pre.Decls)+1 {
		return file, file.Decls[len(file.Decls)-1], offset, nil
	}
	body := "func _() {\n"
	file, err = parser.ParseFile(fset, fragmentFile, header+body+fragment+"\n}\n", parser.ParseComments)
	if err == nil {
		fn := file.Decls[len(file.Decls)-1].(*ast.FuncDecl)
		if len(fn.Body.List) == 1 {
			return file, fn.Body.List[0], offset + strings.Count(body, "\n"), nil
		}
	}
	msg := "fragment must be a single declaration or statement"
	if declErr != nil {
		msg = declErr.Error()
	}
	return nil, nil, 0, parseError(msg)
}

func parseError(msg string) Diagnostics {
	return Diagnostics{issue.NewReported(ParseError, issue.SEVERITY_ERROR, issue.H{`message`: msg}, issue.NewLocation(fragmentFile, 0, 0))}
}

// File rewrites every declaration of file that carries the directive comment,
// and adds the runtime imports the rewritten code needs.
func File(ctx context.Context, fset *token.FileSet, file *ast.File, opts ...Option) error {
	c := option.Use[Config](opts)
	r := newRewriter(ctx, c, fset, file)

	var (
		targets []ast.Node
		diags   Diagnostics
	)
	for _, decl := range file.Decls {
		doc := declDoc(decl)
		args, ok := directiveArgs(doc, c.directive())
		if !ok {
			continue
		}
		if args != "" {
			diags = append(diags, r.report(DesugarArguments, doc.Pos(), issue.NO_ARGS))
			continue
		}
		targets = append(targets, decl)
	}
	if 0 < len(diags) {
		return diags
	}

	// every declaration is checked before any of them is touched
	if err := r.check(targets...); err != nil {
		return err
	}
	r.replace(targets...)

	if r.usedIter {
		addImport(fset, file, c.iter())
	}
	if r.usedIndex {
		addImport(fset, file, c.index())
	}
	c.logger().Info(ctx, "desugared file",
		logging.Field("file", fset.Position(file.Pos()).Filename),
		logging.Field("declarations", len(targets)),
		logging.Field("rewrites", r.rewrites))
	return nil
}

// Source parses, rewrites and formats a Go source file.
func Source(ctx context.Context, filename string, src []byte, opts ...Option) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, Diagnostics{issue.NewReported(ParseError, issue.SEVERITY_ERROR, issue.H{`message`: err.Error()}, issue.NewLocation(filename, 0, 0))}
	}
	if err := File(ctx, fset, file, opts...); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func declDoc(decl ast.Decl) *ast.CommentGroup {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		return d.Doc
	case *ast.GenDecl:
		return d.Doc
	default:
		return nil
	}
}

// directiveArgs finds the directive line in doc and returns what follows it.
func directiveArgs(doc *ast.CommentGroup, directive string) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, "//"+directive)
		if !ok {
			continue
		}
		if text != "" && text[0] != ' ' && text[0] != '\t' {
			continue
		}
		return strings.TrimSpace(text), true
	}
	return "", false
}

func addImport(fset *token.FileSet, file *ast.File, pkg Package) {
	if path.Base(pkg.Path) == pkg.Name {
		astutil.AddImport(fset, file, pkg.Path)
		return
	}
	astutil.AddNamedImport(fset, file, pkg.Name, pkg.Path)
}
