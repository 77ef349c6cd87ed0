package codegen

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/ir"
)

func (ctx *Context) newTemp() *ir.Temporary {
	ctx.tempCount++
	return &ir.Temporary{ID: ctx.tempCount}
}

func (ctx *Context) newLabel() *ir.Label {
	ctx.labelCount++
	return &ir.Label{ID: ctx.labelCount}
}

func (ctx *Context) emit(in *ir.Instruction) { ctx.fn.Instrs = append(ctx.fn.Instrs, in) }

func (ctx *Context) label(l *ir.Label) {
	ctx.emit(&ir.Instruction{Op: ir.OpLabel, Args: []ir.Value{l}})
}

func (ctx *Context) jump(l *ir.Label) {
	ctx.emit(&ir.Instruction{Op: ir.OpGoto, Args: []ir.Value{l}})
}

func (ctx *Context) ifFalse(c ir.Value, l *ir.Label) {
	ctx.emit(&ir.Instruction{Op: ir.OpIfFalse, Args: []ir.Value{c, l}})
}

func operand(n *ast.Node) *ir.Operand { return &ir.Operand{Text: n.Text()} }

// codegenExpr lowers an expression and returns the value holding its
// result. Literals and identifiers emit nothing and stand for themselves;
// every other node writes exactly one fresh temporary after its operands.
func (ctx *Context) codegenExpr(n *ast.Node) ir.Value {
	switch d := n.Data.(type) {
	case ast.LiteralNode, ast.IdentNode:
		return operand(n)

	case ast.BinaryOpNode:
		switch d.Op {
		case "and":
			return ctx.shortCircuit(d, ir.OpIfFalse, "false")
		case "or":
			return ctx.shortCircuit(d, ir.OpIfTrue, "true")
		}
		l := ctx.codegenExpr(d.Left)
		r := ctx.codegenExpr(d.Right)
		t := ctx.newTemp()
		ctx.emit(&ir.Instruction{Op: ir.OpBinary, Dst: t, Args: []ir.Value{l, r}, Operator: d.Op})
		return t

	case ast.UnaryOpNode:
		v := ctx.codegenExpr(d.Expr)
		t := ctx.newTemp()
		ctx.emit(&ir.Instruction{Op: ir.OpNot, Dst: t, Args: []ir.Value{v}})
		return t

	case ast.CallNode:
		return ctx.genCall(n, true)

	case ast.IndexNode:
		base := ctx.codegenExpr(d.Base)
		idx := ctx.codegenExpr(d.Index)
		t := ctx.newTemp()
		ctx.emit(&ir.Instruction{Op: ir.OpIndex, Dst: t, Args: []ir.Value{base, idx}})
		return t

	case ast.SliceNode:
		base := ctx.codegenExpr(d.Base)
		start := ctx.boundOr(d.Start, "0")
		end := ctx.boundOr(d.End, "-1")
		if !d.HasStep {
			t := ctx.newTemp()
			ctx.emit(&ir.Instruction{Op: ir.OpSlice, Dst: t, Args: []ir.Value{base, start, end}})
			return t
		}
		step := ctx.boundOr(d.Step, "1")
		t := ctx.newTemp()
		ctx.emit(&ir.Instruction{Op: ir.OpSliceStep, Dst: t, Args: []ir.Value{base, start, end, step}})
		return t

	case ast.BadNode:
		ctx.comment("error: %s", d.Reason)
	}
	return &ir.Operand{Text: "<error>"}
}

func (ctx *Context) boundOr(n *ast.Node, def string) ir.Value {
	if n == nil {
		return &ir.Operand{Text: def}
	}
	return ctx.codegenExpr(n)
}

// shortCircuit lowers "and"/"or". The right operand is only evaluated when
// the left one does not already decide the result, which is then the
// constant shortVal.
func (ctx *Context) shortCircuit(d ast.BinaryOpNode, test ir.Op, shortVal string) ir.Value {
	l := ctx.codegenExpr(d.Left)
	short, end := ctx.newLabel(), ctx.newLabel()
	t := ctx.newTemp()
	ctx.emit(&ir.Instruction{Op: test, Args: []ir.Value{l, short}})
	r := ctx.codegenExpr(d.Right)
	ctx.emit(&ir.Instruction{Op: ir.OpCopy, Dst: t, Args: []ir.Value{r}})
	ctx.jump(end)
	ctx.label(short)
	ctx.emit(&ir.Instruction{Op: ir.OpCopy, Dst: t, Args: []ir.Value{&ir.Operand{Text: shortVal}}})
	ctx.label(end)
	return t
}

// genCall evaluates all arguments, pushes them in source order, calls and
// pops the pushed bytes. As an expression the result lands in a temporary.
func (ctx *Context) genCall(n *ast.Node, wantResult bool) ir.Value {
	d := n.Data.(ast.CallNode)
	args := make([]ir.Value, len(d.Args))
	for i, a := range d.Args {
		args[i] = ctx.codegenExpr(a)
	}
	for _, a := range args {
		ctx.emit(&ir.Instruction{Op: ir.OpPushParam, Args: []ir.Value{a}})
	}

	callee := &ir.Global{Name: d.Name}
	var result ir.Value
	if wantResult {
		t := ctx.newTemp()
		ctx.emit(&ir.Instruction{Op: ir.OpLCall, Dst: t, Args: []ir.Value{callee}})
		result = t
	} else {
		ctx.emit(&ir.Instruction{Op: ir.OpCall, Args: []ir.Value{callee}})
	}
	if len(args) > 0 {
		ctx.emit(&ir.Instruction{Op: ir.OpPopParams, Size: len(args) * ctx.cfg.ParamSize})
	}
	return result
}
