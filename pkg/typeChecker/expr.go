package typeChecker

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

// TypeOf infers the type of an expression, reporting problems as it goes.
// Once an operand is Unknown the enclosing expression reports nothing more
// about it and is Unknown itself; comparisons still yield bool.
func (tc *TypeChecker) TypeOf(n *ast.Node, scope *Scope) ast.Type {
	if n == nil {
		return ast.TypeUnknown
	}
	if !tc.enter(n) {
		return ast.TypeUnknown
	}
	defer tc.leave()

	switch n.Type {
	case ast.BinaryOp:
		return tc.binaryType(n, scope)
	case ast.UnaryOp:
		d := n.Data.(ast.UnaryOpNode)
		t := tc.TypeOf(d.Expr, scope)
		if !t.IsKnown() {
			return ast.TypeUnknown
		}
		if t != ast.TypeBool {
			tc.errorf(n.Tok, ErrNonBooleanOperand, "operand of 'not' must be bool, found %v", t)
		}
		return ast.TypeBool
	case ast.Index:
		d := n.Data.(ast.IndexNode)
		return tc.stringOpType(n, scope, d.Base, d.Index)
	case ast.Slice:
		d := n.Data.(ast.SliceNode)
		return tc.stringOpType(n, scope, d.Base, d.Start, d.End, d.Step)
	case ast.Call:
		return tc.callType(n, scope)
	case ast.Ident:
		name := n.Data.(ast.IdentNode).Name
		if sym := scope.Lookup(name); sym != nil {
			return sym.Type
		}
		tc.errorf(n.Tok, ErrUndeclaredVariable, "variable '%s' is not declared", name)
		return ast.TypeUnknown
	case ast.Literal:
		switch n.Data.(ast.LiteralNode).Kind {
		case ast.LitInt:
			return ast.TypeInt
		case ast.LitFloat:
			return ast.TypeFloat
		case ast.LitBool:
			return ast.TypeBool
		case ast.LitString:
			return ast.TypeString
		}
		return ast.TypeUnknown
	case ast.Bad:
		tc.errorf(n.Tok, ErrMalformed, "%s", n.Data.(ast.BadNode).Reason)
	}
	return ast.TypeUnknown
}

func (tc *TypeChecker) binaryType(n *ast.Node, scope *Scope) ast.Type {
	d := n.Data.(ast.BinaryOpNode)
	l := tc.TypeOf(d.Left, scope)
	r := tc.TypeOf(d.Right, scope)
	known := l.IsKnown() && r.IsKnown()

	switch {
	case token.Arithmetic[d.Op]:
		if !known {
			return ast.TypeUnknown
		}
		if d.Op == "+" && l == ast.TypeString && r == ast.TypeString && tc.cfg.IsFeatureEnabled(config.FeatStringConcat) {
			return ast.TypeString
		}
		if !l.IsNumeric() || !r.IsNumeric() {
			tc.errorf(n.Tok, ErrNonNumericOperand, "operator '%s' needs numeric operands, found %v and %v", d.Op, l, r)
			return ast.TypeUnknown
		}
		if l == r {
			return l
		}
		if !tc.cfg.IsFeatureEnabled(config.FeatPromotion) {
			tc.errorf(n.Tok, ErrTypeMismatch, "operator '%s' mixes %v and %v", d.Op, l, r)
			return ast.TypeUnknown
		}
		return ast.TypeFloat

	case token.Logical[d.Op]:
		if !known {
			return ast.TypeUnknown
		}
		if l != ast.TypeBool || r != ast.TypeBool {
			tc.errorf(n.Tok, ErrNonBooleanOperand, "operator '%s' needs bool operands, found %v and %v", d.Op, l, r)
		}
		return ast.TypeBool

	case token.Relational[d.Op]:
		if known && (!l.IsNumeric() || !r.IsNumeric()) {
			tc.errorf(n.Tok, ErrNonNumericOperand, "operator '%s' needs numeric operands, found %v and %v", d.Op, l, r)
		}
		return ast.TypeBool

	case token.Equality[d.Op]:
		if known && l != r {
			tc.errorf(n.Tok, ErrTypeMismatch, "operator '%s' compares %v with %v", d.Op, l, r)
		}
		return ast.TypeBool
	}
	return ast.TypeUnknown
}

// stringOpType checks index and slice expressions: a string base and int
// positions. Elided positions are nil and skipped.
func (tc *TypeChecker) stringOpType(n *ast.Node, scope *Scope, base *ast.Node, positions ...*ast.Node) ast.Type {
	bt := tc.TypeOf(base, scope)
	result := ast.TypeString
	if bt.IsKnown() && bt != ast.TypeString {
		tc.errorf(n.Tok, ErrInvalidIndex, "cannot index a value of type %v", bt)
	}
	for _, p := range positions {
		if p == nil {
			continue
		}
		pt := tc.TypeOf(p, scope)
		if pt.IsKnown() && pt != ast.TypeInt {
			tc.errorf(p.Tok, ErrInvalidIndex, "string position must be int, found %v", pt)
		}
	}
	if !bt.IsKnown() {
		result = ast.TypeUnknown
	}
	return result
}

func (tc *TypeChecker) callType(n *ast.Node, scope *Scope) ast.Type {
	d := n.Data.(ast.CallNode)
	argTypes := make([]ast.Type, len(d.Args))
	for i, a := range d.Args {
		argTypes[i] = tc.TypeOf(a, scope)
	}

	// only a function body can call itself; at top level equal positions
	// mean the function comes later
	allowSelf := tc.cfg.IsFeatureEnabled(config.FeatRecursion) && tc.currentFunc != nil && !tc.inSignature
	fn, err := tc.registry.Resolve(d.Name, tc.position(), allowSelf)
	switch err {
	case nil:
	case ErrForwardReference:
		if tc.currentFunc != nil && fn.Position == tc.position() {
			tc.errorf(n.Tok, err, "function '%s' cannot call itself", d.Name)
		} else {
			tc.errorf(n.Tok, err, "function '%s' is called before it is declared", d.Name)
		}
		return ast.TypeUnknown
	default:
		tc.errorf(n.Tok, err, "function '%s' is not declared", d.Name)
		return ast.TypeUnknown
	}

	if fn.CheckArity(len(d.Args)) != nil {
		want := len(fn.Params)
		if least := fn.MinRequired(); least != want {
			tc.errorf(n.Tok, ErrArity, "function '%s' takes %d to %d arguments, got %d", d.Name, least, want, len(d.Args))
		} else {
			tc.errorf(n.Tok, ErrArity, "function '%s' takes %d arguments, got %d", d.Name, want, len(d.Args))
		}
	}
	for i, at := range argTypes {
		if i >= len(fn.Params) {
			break
		}
		p := fn.Params[i]
		if at.IsKnown() && p.Type.IsKnown() && at != p.Type {
			tc.errorf(d.Args[i].Tok, ErrTypeMismatch, "argument %d of '%s' must be %v, found %v", i+1, d.Name, p.Type, at)
		}
	}
	return fn.ReturnType
}
