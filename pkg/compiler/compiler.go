// Package compiler runs the passes of one compilation unit in order:
// read the interchange text, shape the tree, analyze it and, when analysis
// found no errors, lower it to three-address code.
package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/ir"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/parser"
	"github.com/xplshn/tacc/pkg/tree"
	"github.com/xplshn/tacc/pkg/typeChecker"
)

// ErrSemantic is returned when analysis reported at least one error.
// The Result is still filled in up to the analysis.
var ErrSemantic = errors.New("semantic errors")

// Unit is one source to compile. FileIndex ties token positions to the
// file record used when printing diagnostics.
type Unit struct {
	Name      string
	Source    []rune
	FileIndex int
}

type Result struct {
	Tree    *tree.Node
	AST     *ast.Node
	Checker *typeChecker.TypeChecker
	Program *ir.Program
}

// Compile runs every pass over u with fresh state.
func Compile(ctx context.Context, cfg *config.Config, u Unit) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile unit", "name", u.Name)
	defer tr.Finish("err", &err)

	res = &Result{}
	toks := lexer.NewLexer(u.Source, u.FileIndex).All()
	res.Tree, err = parser.NewParser(toks).Parse()
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", u.Name)
	}
	tr.Printw("parsed", "tokens", len(toks), "depth", res.Tree.Depth())

	res.AST = ast.Shape(res.Tree, cfg)
	if tlog.If("ast") {
		tr.Printw("shaped tree", "tree", res.Tree.String())
	}

	res.Checker, err = Analyze(ctx, cfg, res.AST)
	if err != nil {
		return res, err
	}

	res.Program = codegen.NewContext(cfg).GenerateIR(res.AST)
	tr.Printw("generated", "funcs", len(res.Program.Funcs), "fingerprint", res.Program.Fingerprint())
	return res, nil
}

// CompileString compiles interchange text given directly, as the REPL and
// tests do.
func CompileString(ctx context.Context, cfg *config.Config, name, src string) (*Result, error) {
	return Compile(ctx, cfg, Unit{Name: name, Source: []rune(src), FileIndex: -1})
}

// Analyze type checks a shaped tree. It returns ErrSemantic wrapped with the
// error count when any error was reported.
func Analyze(ctx context.Context, cfg *config.Config, root *ast.Node) (tc *typeChecker.TypeChecker, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "analyze")
	defer tr.Finish("err", &err)

	tc = typeChecker.NewTypeChecker(cfg)
	tc.Check(root)
	tr.Printw("analyzed", "errors", tc.ErrorCount(), "diagnostics", len(tc.Diagnostics()), "functions", tc.Registry().Len())

	if n := tc.ErrorCount(); n > 0 {
		return tc, errors.Wrap(ErrSemantic, "%d error(s)", n)
	}
	return tc, nil
}

// Render prints the program with the named backend.
func (r *Result) Render(cfg *config.Config, backend string) (string, error) {
	if r.Program == nil {
		return "", errors.New("no program generated")
	}
	b, err := codegen.SelectBackend(backend)
	if err != nil {
		return "", err
	}
	buf, err := b.Generate(r.Program, cfg)
	if err != nil {
		return "", errors.Wrap(err, "backend %v", backend)
	}
	return buf.String(), nil
}
