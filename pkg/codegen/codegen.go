package codegen

import (
	"fmt"

	"tlog.app/go/tlog"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/ir"
)

// Context holds the state of lowering one compilation unit to 3AC.
// Temporary and label counters restart at every function.
type Context struct {
	cfg        *config.Config
	prog       *ir.Program
	fn         *ir.Func
	tempCount  int
	labelCount int
	nested     []*ast.Node
}

func NewContext(cfg *config.Config) *Context {
	return &Context{cfg: cfg}
}

// GenerateIR lowers every function of the program, in traversal order.
// Functions declared inside another function follow their parent. Code
// outside any function is not emitted. The tree is only read, and a
// malformed node becomes an error comment instead of stopping generation.
func (ctx *Context) GenerateIR(root *ast.Node) *ir.Program {
	ctx.prog = &ir.Program{}
	if root == nil || root.Type != ast.Program {
		return ctx.prog
	}
	for _, fn := range hoistFunctions(root.Data.(ast.ProgramNode).Stmts, nil) {
		ctx.genFunction(fn)
	}
	return ctx.prog
}

// hoistFunctions finds function declarations reachable without entering
// another function.
func hoistFunctions(stmts []*ast.Node, acc []*ast.Node) []*ast.Node {
	for _, s := range stmts {
		switch d := s.Data.(type) {
		case ast.FuncDeclNode:
			acc = append(acc, s)
		case ast.IfNode:
			for _, b := range d.Branches {
				acc = hoistFunctions(b.Body, acc)
			}
			acc = hoistFunctions(d.Else, acc)
		case ast.WhileNode:
			acc = hoistFunctions(d.Body, acc)
		}
	}
	return acc
}

func (ctx *Context) genFunction(n *ast.Node) {
	d := n.Data.(ast.FuncDeclNode)
	name := d.Name
	if name == ctx.cfg.EntryName && ctx.cfg.IsFeatureEnabled(config.FeatEntryRename) {
		name = ctx.cfg.EntryLabel
	}

	ctx.fn = &ir.Func{Name: name, FrameSize: len(d.Params) * ctx.cfg.ParamSize}
	ctx.tempCount, ctx.labelCount = 0, 0
	parentNested := ctx.nested
	ctx.nested = nil

	ctx.emit(&ir.Instruction{Op: ir.OpBeginFunc, Size: ctx.fn.FrameSize})
	ctx.genBlock(d.Body)
	ctx.emit(&ir.Instruction{Op: ir.OpEndFunc})
	ctx.prog.Funcs = append(ctx.prog.Funcs, ctx.fn)
	tlog.V("codegen").Printw("function lowered", "name", name, "instrs", len(ctx.fn.Instrs), "temps", ctx.tempCount, "labels", ctx.labelCount)

	nested := ctx.nested
	ctx.nested = parentNested
	for _, fn := range nested {
		ctx.genFunction(fn)
	}
}

func (ctx *Context) genBlock(stmts []*ast.Node) {
	for _, s := range stmts {
		ctx.genStmt(s)
	}
}

func (ctx *Context) genStmt(n *ast.Node) {
	switch d := n.Data.(type) {
	case ast.FuncDeclNode:
		ctx.nested = append(ctx.nested, n)
	case ast.VarDeclNode:
		if d.Init != nil {
			ctx.copyTo(d.Name, ctx.codegenExpr(d.Init))
		}
	case ast.AssignNode:
		ctx.copyTo(d.Name, ctx.codegenExpr(d.Value))
	case ast.MultiAssignNode:
		ctx.genMultiAssign(d)
	case ast.IfNode:
		ctx.genIf(d)
	case ast.WhileNode:
		ctx.genWhile(d)
	case ast.ReturnNode:
		in := &ir.Instruction{Op: ir.OpReturn}
		if d.Value != nil {
			in.Args = []ir.Value{ctx.codegenExpr(d.Value)}
		}
		ctx.emit(in)
	case ast.ExprStmtNode:
		if d.Expr.Type == ast.Call {
			ctx.genCall(d.Expr, false)
			return
		}
		ctx.codegenExpr(d.Expr)
	case ast.BadNode:
		ctx.comment("error: %s", d.Reason)
	}
}

func (ctx *Context) copyTo(name string, v ir.Value) {
	ctx.emit(&ir.Instruction{Op: ir.OpCopy, Dst: &ir.Operand{Text: name}, Args: []ir.Value{v}})
}

// genMultiAssign reads every right-hand side into its own temporary before
// writing any target, so swaps like "a, b = b, a" work.
func (ctx *Context) genMultiAssign(d ast.MultiAssignNode) {
	if len(d.Targets) != len(d.Values) || len(d.Targets) == 0 {
		ctx.comment("error: multiple assignment count mismatch")
		return
	}
	temps := make([]ir.Value, len(d.Values))
	for i, v := range d.Values {
		if v.IsAtom() {
			t := ctx.newTemp()
			ctx.emit(&ir.Instruction{Op: ir.OpCopy, Dst: t, Args: []ir.Value{operand(v)}})
			temps[i] = t
			continue
		}
		temps[i] = ctx.codegenExpr(v)
	}
	for i, t := range d.Targets {
		ctx.copyTo(t.Text(), temps[i])
	}
}

// genIf lowers every conditional form. With one branch and no else this is
// the plain if; otherwise each branch that fails jumps to the next test,
// the last one to the else part or the end, and every taken branch jumps
// to the end.
func (ctx *Context) genIf(d ast.IfNode) {
	if len(d.Branches) == 1 && !d.HasElse {
		end := ctx.newLabel()
		c := ctx.codegenExpr(d.Branches[0].Cond)
		ctx.ifFalse(c, end)
		ctx.genBlock(d.Branches[0].Body)
		ctx.label(end)
		return
	}

	var elseLabel *ir.Label
	if d.HasElse && len(d.Branches) == 1 {
		elseLabel = ctx.newLabel()
	}
	end := ctx.newLabel()
	if d.HasElse && elseLabel == nil {
		elseLabel = ctx.newLabel()
	}

	for i, b := range d.Branches {
		last := i == len(d.Branches)-1
		var next *ir.Label
		switch {
		case !last:
			next = ctx.newLabel()
		case d.HasElse:
			next = elseLabel
		default:
			next = end
		}
		c := ctx.codegenExpr(b.Cond)
		ctx.ifFalse(c, next)
		ctx.genBlock(b.Body)
		ctx.jump(end)
		if !last || d.HasElse {
			ctx.label(next)
		}
	}
	if d.HasElse {
		ctx.genBlock(d.Else)
	}
	ctx.label(end)
}

func (ctx *Context) genWhile(d ast.WhileNode) {
	start, end := ctx.newLabel(), ctx.newLabel()
	ctx.label(start)
	c := ctx.codegenExpr(d.Cond)
	ctx.ifFalse(c, end)
	ctx.genBlock(d.Body)
	ctx.jump(start)
	ctx.label(end)
}

func (ctx *Context) comment(format string, args ...interface{}) {
	ctx.emit(&ir.Instruction{Op: ir.OpComment, Comment: fmt.Sprintf(format, args...)})
}
