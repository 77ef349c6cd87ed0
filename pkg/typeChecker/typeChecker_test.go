package typeChecker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/parser"
	"github.com/xplshn/tacc/pkg/token"
)

func check(t *testing.T, cfg *config.Config, src string) *TypeChecker {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	root, err := parser.NewParser(lexer.NewLexer([]rune(src), 0).All()).Parse()
	require.NoError(t, err)
	tc := NewTypeChecker(cfg)
	tc.Check(ast.Shape(root, cfg))
	return tc
}

func kinds(tc *TypeChecker) []string {
	var out []string
	for _, d := range tc.Errors() {
		out = append(out, KindName(d.Kind))
	}
	return out
}

func warnings(tc *TypeChecker) []config.Warning {
	var out []config.Warning
	for _, d := range tc.Diagnostics() {
		if d.Severity == SeverityWarning {
			out = append(out, d.Warning)
		}
	}
	return out
}

func TestScopeShadowing(t *testing.T) {
	outer := NewScope("f", nil)
	_, err := outer.Declare("x", ast.TypeInt, token.Token{})
	require.NoError(t, err)
	_, err = outer.Declare("x", ast.TypeString, token.Token{})
	assert.ErrorIs(t, err, ErrDuplicateDeclaration)

	inner := NewScope("if", outer)
	_, err = inner.Declare("x", ast.TypeFloat, token.Token{})
	require.NoError(t, err)
	assert.Equal(t, ast.TypeFloat, inner.Lookup("x").Type)
	assert.Equal(t, ast.TypeInt, outer.Lookup("x").Type)
	assert.Nil(t, inner.LookupLocal("y"))

	_, _ = outer.Declare("y", ast.TypeBool, token.Token{})
	names := []string{}
	for _, s := range outer.Bindings() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"x", "y"}, names)
}

func TestRegistryPositions(t *testing.T) {
	r := NewRegistry()
	f, err := r.Declare("f", ast.TypeNone, token.Token{})
	require.NoError(t, err)
	dup, err := r.Declare("f", ast.TypeInt, token.Token{})
	assert.ErrorIs(t, err, ErrDuplicateFunction)
	g, err := r.Declare("g", ast.TypeInt, token.Token{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.Position)
	assert.Equal(t, 2, dup.Position, "duplicates still take a position")
	assert.Equal(t, 3, g.Position)
	assert.Same(t, f, r.Lookup("f"))
	assert.Equal(t, 2, r.Len())

	_, err = r.Resolve("g", 3, false)
	assert.ErrorIs(t, err, ErrForwardReference)
	_, err = r.Resolve("g", 3, true)
	assert.NoError(t, err)
	_, err = r.Resolve("g", 2, true)
	assert.ErrorIs(t, err, ErrForwardReference)
	_, err = r.Resolve("f", 3, false)
	assert.NoError(t, err)
	_, err = r.Resolve("h", 9, true)
	assert.ErrorIs(t, err, ErrUndeclaredFunction)
}

func TestArity(t *testing.T) {
	fn := &FunctionInfo{Name: "f"}
	fn.AddParameter("a", ast.TypeInt, false)
	fn.AddParameter("b", ast.TypeInt, true)
	assert.Equal(t, 1, fn.MinRequired())
	assert.ErrorIs(t, fn.CheckArity(0), ErrArity)
	assert.NoError(t, fn.CheckArity(1))
	assert.NoError(t, fn.CheckArity(2))
	assert.ErrorIs(t, fn.CheckArity(3), ErrArity)
}

func TestCleanProgram(t *testing.T) {
	tc := check(t, nil, `
(function add (, (params (int a (int b))) (, (return_type int) (return (+ a b)))))
(function __main__
  (, (init (declare int x) (call add (, 1 2)))
     (, (init (declare float y) (+ x 0.5))
        (, (init (declare string s) (+ "a" "b"))
           (if (and (< x 3) (not _ (== s "ab"))) (assign x (call add (, x 1))))))))`)
	assert.Empty(t, kinds(tc))
	assert.Equal(t, 0, tc.ErrorCount())
	assert.Equal(t, 2, tc.Registry().Len())
	assert.Equal(t, []ParamInfo{{"a", ast.TypeInt, false}, {"b", ast.TypeInt, false}}, tc.Registry().Lookup("add").Params)
}

func TestErrorsDoNotStopTraversal(t *testing.T) {
	tc := check(t, nil, `
(function f (, (params (int a)) (, (return_type int) (return "s"))))
(function __main__
  (, (call f (, 1 2))
     (, (assign z 1)
        (while 3 (call g)))))`)
	want := []string{"ReturnTypeMismatch", "ArityError", "AssignToUndeclared", "NonBooleanCondition", "UndeclaredFunction"}
	if diff := cmp.Diff(want, kinds(tc)); diff != "" {
		t.Errorf("error kinds (-want +got):\n%s", diff)
	}
	assert.Equal(t, len(want), tc.ErrorCount())
}

func TestDiagnosticUnwrapsToKind(t *testing.T) {
	tc := check(t, nil, `(function __main__ (assign y 1))`)
	require.Len(t, tc.Errors(), 1)
	d := tc.Errors()[0]
	assert.ErrorIs(t, d, ErrAssignToUndeclared)
	assert.Regexp(t, `^1:\d+: assignment to undeclared variable 'y'$`, d.Error())
	assert.Equal(t, "Unknown", KindName(nil))
}

func TestRecursionFeature(t *testing.T) {
	src := `(function f (, (params (int n)) (, (return_type int) (return (call f (, n))))))`
	assert.Equal(t, []string{"ForwardReference"}, kinds(check(t, nil, src)))

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatRecursion, true)
	assert.Empty(t, kinds(check(t, cfg, src)))
}

func TestNestedFunctionCannotBeCalledByParent(t *testing.T) {
	tc := check(t, nil, `
(function outer
  (, (function inner (return))
     (call inner)))`)
	assert.Equal(t, []string{"ForwardReference"}, kinds(tc))

	// the nested function sees its parent, which comes first
	tc = check(t, nil, `(function outer (function inner (call outer)))`)
	assert.Empty(t, kinds(tc))
}

func TestTypeOf(t *testing.T) {
	cfg := config.NewConfig()
	tc := NewTypeChecker(cfg)
	scope := NewScope("f", tc.Global())
	_, _ = scope.Declare("i", ast.TypeInt, token.Token{})
	_, _ = scope.Declare("s", ast.TypeString, token.Token{})

	typeOf := func(src string) ast.Type {
		root, err := parser.NewParser(lexer.NewLexer([]rune("(return "+src+")"), 0).All()).Parse()
		require.NoError(t, err)
		ret := ast.Shape(root, cfg).Data.(ast.ProgramNode).Stmts[0].Data.(ast.ReturnNode)
		return tc.TypeOf(ret.Value, scope)
	}

	assert.Equal(t, ast.TypeFloat, typeOf("(* i 1.5)"))
	assert.Equal(t, ast.TypeInt, typeOf("(- i 1)"))
	assert.Equal(t, ast.TypeString, typeOf("(+ s s)"))
	assert.Equal(t, ast.TypeString, typeOf("(index s i)"))
	assert.Equal(t, ast.TypeString, typeOf("(slice s (, 1 i))"))
	assert.Equal(t, ast.TypeBool, typeOf("(>= i 2)"))
	assert.Equal(t, ast.TypeBool, typeOf("(or true false)"))
	assert.Equal(t, 0, tc.ErrorCount())

	// unknown operands stay quiet
	assert.Equal(t, ast.TypeUnknown, typeOf("(+ (* nope 2) 1)"))
	assert.Equal(t, ast.TypeBool, typeOf("(< nope 1)"))
	assert.Equal(t, []string{"UndeclaredVariable", "UndeclaredVariable"}, kinds(tc))
}

func TestWarnings(t *testing.T) {
	cfg := config.NewConfig()
	require.NoError(t, cfg.ApplyFlag("-Wall"))
	tc := check(t, cfg, `
(declare int g)
(function __main__
  (, (declare int x)
     (, (if true (declare int x))
        (, (return)
           (assign x 1)))))`)
	assert.Empty(t, kinds(tc))
	assert.Equal(t, []config.Warning{config.WarnTopLevel, config.WarnShadow, config.WarnExtra}, warnings(tc))

	cfg = config.NewConfig()
	require.NoError(t, cfg.ApplyFlag("-Wno-all"))
	tc = check(t, cfg, `(declare int g)`)
	assert.Empty(t, warnings(tc))
}

func TestDepthLimit(t *testing.T) {
	cfg := config.NewConfig()
	src := `(function __main__ (init (declare bool b) (not _ (not _ (not _ true)))))`
	cfg.MaxDepth = 5
	tc := check(t, cfg, src)
	assert.Equal(t, []string{"DepthExceeded"}, kinds(tc))

	cfg.MaxDepth = 6
	tc = check(t, cfg, src)
	assert.Empty(t, kinds(tc))
}

func TestUnitsAreIndependent(t *testing.T) {
	a := check(t, nil, `(function f (return))`)
	b := check(t, nil, `(function __main__ (call f))`)
	assert.Equal(t, 1, a.Registry().Len())
	if diff := cmp.Diff([]string{"UndeclaredFunction"}, kinds(b), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDefaultCannotCallOwnFunction(t *testing.T) {
	self := `(function g (, (params (int (a (call g)))) (, (return_type int) (return a))))`
	nested := `(function f (function g (, (params (int (a (call g)))) (, (return_type int) (return a)))))`

	recursion := config.NewConfig()
	recursion.SetFeature(config.FeatRecursion, true)

	for _, cfg := range []*config.Config{nil, recursion} {
		tc := check(t, cfg, self)
		assert.Equal(t, []string{"ForwardReference"}, kinds(tc))
		assert.Contains(t, tc.Errors()[0].Msg, "cannot call itself")
		assert.Equal(t, []string{"ForwardReference"}, kinds(check(t, cfg, nested)))
	}

	// earlier functions stay callable from a default
	tc := check(t, nil, `
(function one (, (return_type int) (return 1)))
(function g (, (params (int (a (call one)))) (, (return_type int) (return a))))`)
	assert.Empty(t, kinds(tc))
}
