package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/ir"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/parser"
)

func gen(t *testing.T, cfg *config.Config, src string) *ir.Program {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	root, err := parser.NewParser(lexer.NewLexer([]rune(src), 0).All()).Parse()
	require.NoError(t, err)
	return NewContext(cfg).GenerateIR(ast.Shape(root, cfg))
}

func render(t *testing.T, b Backend, p *ir.Program) string {
	t.Helper()
	buf, err := b.Generate(p, config.NewConfig())
	require.NoError(t, err)
	return buf.String()
}

func assertListing(t *testing.T, want string, p *ir.Program) {
	t.Helper()
	got := render(t, NewTACBackend(), p)
	if diff := cmp.Diff(strings.Split(want, "\n"), strings.Split(got, "\n")); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestCountersRestartPerFunction(t *testing.T) {
	p := gen(t, nil, `
(function f (, (params (int a)) (while (< a 3) (assign a (+ a 1)))))
(function g (, (params (int b)) (if (> b 0) (assign b (- b 1)))))`)
	assertListing(t, `f:
    BeginFunc 4
L1:
    t1 = a < 3
    if_false t1 goto L2
    t2 = a + 1
    a = t2
    goto L1
L2:
    EndFunc

g:
    BeginFunc 4
    t1 = b > 0
    if_false t1 goto L1
    t2 = b - 1
    b = t2
L1:
    EndFunc
`, p)
}

func TestNestedFunctionsFollowTheirParent(t *testing.T) {
	p := gen(t, nil, `
(function a
  (, (function a1 (function a11 (return)))
     (function a2 (return))))
(function b (return))`)
	var names []string
	for _, f := range p.Funcs {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a", "a1", "a11", "a2", "b"}, names)
	assert.Len(t, p.Func("a").Instrs, 2, "nested bodies are not inlined")
}

func TestTopLevelStatementsAreNotEmitted(t *testing.T) {
	p := gen(t, nil, `(declare int x) (assign x 1) (if true (function inside (return)))`)
	require.Len(t, p.Funcs, 1)
	assert.Equal(t, "inside", p.Funcs[0].Name)
}

func TestMalformedInputBecomesComment(t *testing.T) {
	p := gen(t, nil, `
(function f
  (, (frob x)
     (multi_assign (, a b) (, 1 (, 2 3)))))`)
	assertListing(t, `f:
    BeginFunc 0
    // error: unrecognized statement 'frob'
    // error: multiple assignment count mismatch
    EndFunc
`, p)
}

func TestEntryRename(t *testing.T) {
	p := gen(t, nil, `(function __main__ (return))`)
	assert.NotNil(t, p.Func("main"))

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatEntryRename, false)
	p = gen(t, cfg, `(function __main__ (return))`)
	assert.NotNil(t, p.Func("__main__"))
}

func TestParamSizeDrivesFrameAndPop(t *testing.T) {
	cfg := config.NewConfig()
	cfg.ParamSize = 8
	p := gen(t, cfg, `(function f (, (params (int a (int b))) (call f (, a b))))`)
	f := p.Func("f")
	assert.Equal(t, 16, f.FrameSize)
	assert.Equal(t, "PopParams 16", f.Instrs[len(f.Instrs)-2].String())
}

func TestSelectBackend(t *testing.T) {
	_, err := SelectBackend("qbe")
	assert.Error(t, err)

	b, err := SelectBackend("listing")
	require.NoError(t, err)
	p := gen(t, nil, `(function f (if c (return)))`)
	assert.Equal(t, `f:
   0      BeginFunc 0
   1      if_false c goto L1
   2      return
   3  L1:
   4      EndFunc
`, render(t, b, p))
}

// run interprets one lowered function. Variables not assigned yet read as
// their own name, so literals and unset inputs need no special casing.
func run(t *testing.T, f *ir.Func, vars map[string]string) map[string]string {
	t.Helper()
	labels := map[string]int{}
	for i, in := range f.Instrs {
		if in.Op == ir.OpLabel {
			labels[in.Args[0].String()] = i
		}
	}
	get := func(v ir.Value) string {
		if s, ok := vars[v.String()]; ok {
			return s
		}
		return v.String()
	}
	for pc, steps := 0, 0; pc < len(f.Instrs); pc++ {
		steps++
		require.Less(t, steps, 1000, "runaway program")
		in := f.Instrs[pc]
		switch in.Op {
		case ir.OpCopy:
			vars[in.Dst.String()] = get(in.Args[0])
		case ir.OpNot:
			vars[in.Dst.String()] = fmt.Sprint(get(in.Args[0]) != "true")
		case ir.OpIfFalse, ir.OpIfTrue:
			if (get(in.Args[0]) == "true") == (in.Op == ir.OpIfTrue) {
				pc = labels[in.Args[1].String()]
			}
		case ir.OpGoto:
			pc = labels[in.Args[0].String()]
		case ir.OpReturn:
			return vars
		case ir.OpLabel, ir.OpBeginFunc, ir.OpEndFunc:
		default:
			t.Fatalf("unsupported instruction %q", in.String())
		}
	}
	return vars
}

func chainSource(n int, withElse bool) string {
	body := func(k int) string { return fmt.Sprintf("(assign hit %d)", k) }
	var chain string
	if n == 1 {
		if !withElse {
			return fmt.Sprintf("(if c1 %s)", body(1))
		}
		return fmt.Sprintf("(if-else (if-part c1 %s) %s)", body(1), body(0))
	}
	rest := fmt.Sprintf("(elif c%d %s)", n, body(n))
	for k := n - 1; k >= 2; k-- {
		rest = fmt.Sprintf("(, (elif c%d %s) %s)", k, body(k), rest)
	}
	chain = fmt.Sprintf("(if-elif c1 (, %s %s))", body(1), rest)
	if withElse {
		chain = fmt.Sprintf("(if-elif-else %s %s)", chain, body(0))
	}
	return chain
}

func TestIfChainTruthTable(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for _, withElse := range []bool{false, true} {
			src := fmt.Sprintf("(function f %s)", chainSource(n, withElse))
			f := gen(t, nil, src).Func("f")
			require.NotNil(t, f, src)

			p := &ir.Program{Funcs: []*ir.Func{f}}
			assert.Equal(t, n, p.Count(ir.OpIfFalse), src)
			if n > 1 || withElse {
				assert.Equal(t, n, p.Count(ir.OpGoto), src)
			}

			for mask := 0; mask < 1<<n; mask++ {
				vars := map[string]string{"hit": "-1"}
				want := "-1"
				if withElse {
					want = "0"
				}
				for k := n; k >= 1; k-- {
					on := mask&(1<<(k-1)) != 0
					vars[fmt.Sprintf("c%d", k)] = fmt.Sprint(on)
					if on {
						want = fmt.Sprint(k)
					}
				}
				got := run(t, f, vars)["hit"]
				assert.Equal(t, want, got, "%s with mask %04b", src, mask)
			}
		}
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	f := gen(t, nil, `(function f (assign r (and a (not _ b))))`).Func("f")
	got := run(t, f, map[string]string{"a": "false", "b": "false"})
	assert.Equal(t, "false", got["r"])
	_, evaluated := got["t2"]
	assert.False(t, evaluated, "right operand must not run")

	got = run(t, f, map[string]string{"a": "true", "b": "false"})
	assert.Equal(t, "true", got["r"])

	f = gen(t, nil, `(function f (assign r (or a b)))`).Func("f")
	assert.Equal(t, "true", run(t, f, map[string]string{"a": "true", "b": "false"})["r"])
	assert.Equal(t, "false", run(t, f, map[string]string{"a": "false", "b": "false"})["r"])
}
