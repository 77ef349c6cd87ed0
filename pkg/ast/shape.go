package ast

import (
	"fmt"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/tree"
)

// Shape converts the raw binary tree into tagged nodes. It never fails:
// nodes missing a required child become Bad nodes carrying the reason, and
// later passes report them.
func Shape(root *tree.Node, cfg *config.Config) *Node {
	s := &shaper{heuristics: cfg == nil || cfg.IsFeatureEnabled(config.FeatStringHeuristics)}
	tok := token.Token{FileIndex: -1}
	if root != nil {
		tok = root.Tok
	}
	return NewProgram(tok, s.stmts(root))
}

type shaper struct {
	heuristics bool
}

func bad(n *tree.Node, format string, args ...interface{}) *Node {
	return NewBad(n.Tok, fmt.Sprintf(format, args...))
}

func isStructural(n *tree.Node) bool {
	return n.Is(token.TagParams) || n.Is(token.TagReturnType)
}

// stmts flattens a pair-linked statement sequence in source order.
func (s *shaper) stmts(n *tree.Node) []*Node {
	switch {
	case n == nil:
		return nil
	case n.IsPair():
		return append(s.stmts(n.Left), s.stmts(n.Right)...)
	case isStructural(n):
		return nil
	}
	return []*Node{s.stmt(n)}
}

func (s *shaper) stmt(n *tree.Node) *Node {
	switch n.Tok.Value {
	case token.TagFunction:
		return s.function(n)
	case token.TagDeclare:
		return s.declare(n, nil)
	case token.TagInit:
		return s.init(n)
	case token.TagAssign:
		if n.Left == nil || !n.Left.IsLeaf() || n.Right == nil {
			return bad(n, "assignment needs a variable name and a value")
		}
		return NewAssign(n.Tok, n.Left.Value(), s.expr(n.Right))
	case token.TagMultiAssign:
		return s.multiAssign(n)
	case token.TagIf, token.TagIfElse, token.TagIfElif, token.TagIfElifElse:
		return s.ifChain(n)
	case token.TagElif:
		return bad(n, "'elif' outside of an if chain")
	case token.TagWhile:
		if n.Left == nil {
			return bad(n, "while loop without a condition")
		}
		return NewWhile(n.Tok, s.expr(n.Left), s.stmts(n.Right))
	case token.TagReturn:
		value := n.Left
		if value == nil {
			value = n.Right
		}
		if value == nil {
			return NewReturn(n.Tok, nil)
		}
		return NewReturn(n.Tok, s.expr(value))
	case token.TagPass:
		return NewPass(n.Tok)
	}

	if n.IsLeaf() || token.IsBinaryOperator(n.Tok.Value) || n.Tok.Value == token.Not ||
		n.Is(token.TagCall) || n.Is(token.TagIndex) || n.Is(token.TagSlice) || n.Is(token.TagSliceStep) {
		return NewExprStmt(n.Tok, s.expr(n))
	}
	return bad(n, "unrecognized statement '%s'", n.Tok.Value)
}

func (s *shaper) function(n *tree.Node) *Node {
	if n.Left == nil || !n.Left.IsLeaf() || n.Left.Value() == "" {
		return bad(n, "function without a name")
	}
	isFunc := func(c *tree.Node) bool { return c.Is(token.TagFunction) }

	var params []Param
	if p := n.Right.Find(func(c *tree.Node) bool { return c.Is(token.TagParams) }, isFunc); p != nil {
		params = s.params(p.Left, params)
		params = s.params(p.Right, params)
	}

	var retName string
	retTok := n.Tok
	if rt := n.Right.Find(func(c *tree.Node) bool { return c.Is(token.TagReturnType) }, isFunc); rt != nil {
		retTok = rt.Tok
		if t := rt.Left; t != nil {
			retName, retTok = t.Value(), t.Tok
		} else if t := rt.Right; t != nil {
			retName, retTok = t.Value(), t.Tok
		}
	}

	return NewFuncDecl(n.Left.Tok, n.Left.Value(), params, retName, retTok, s.stmts(n.Right))
}

// params collects typed parameters. Under a type node T, T.Left names the
// parameter: a named leaf whose own left child is the default value, or a
// pair holding (name, default). T.Right chains to the next parameter.
func (s *shaper) params(n *tree.Node, acc []Param) []Param {
	if n == nil {
		return acc
	}
	if !IsTypeName(n.Tok.Value) {
		acc = s.params(n.Left, acc)
		return s.params(n.Right, acc)
	}

	name := n.Left
	p := Param{TypeName: n.Tok.Value, Tok: n.Tok}
	switch {
	case name == nil:
		return s.params(n.Right, acc)
	case name.IsPair():
		if name.Left == nil {
			return s.params(n.Right, acc)
		}
		p.Name, p.Tok = name.Left.Value(), name.Left.Tok
		if name.Right != nil {
			p.Default = s.expr(name.Right)
		}
	default:
		p.Name, p.Tok = name.Value(), name.Tok
		if name.Left != nil {
			p.Default = s.expr(name.Left)
		}
	}
	acc = append(acc, p)
	return s.params(n.Right, acc)
}

func (s *shaper) declare(n *tree.Node, init *Node) *Node {
	if n.Left == nil || n.Right == nil || n.Left.Value() == "" || n.Right.Value() == "" {
		return bad(n, "declaration needs a type and a name")
	}
	return NewVarDecl(n.Tok, n.Left.Value(), n.Right.Value(), n.Right.Tok, init)
}

func (s *shaper) init(n *tree.Node) *Node {
	decl := n.Left
	if !decl.Is(token.TagDeclare) {
		return bad(n, "initialization without a declaration")
	}
	value := n.Right
	if value == nil || (value.IsPair() && value.IsLeaf()) {
		if decl.Left.Value() != "string" {
			return bad(n, "initialization without a value")
		}
		return s.declare(decl, NewLiteral(n.Tok, LitString, `""`))
	}
	return s.declare(decl, s.expr(value))
}

func (s *shaper) multiAssign(n *tree.Node) *Node {
	if n.Left == nil || n.Right == nil {
		return bad(n, "multiple assignment needs both sides")
	}
	var targets []*Node
	for _, t := range flatten(n.Left, nil) {
		if !t.IsLeaf() {
			return bad(t, "multiple assignment target must be a variable")
		}
		targets = append(targets, s.expr(t))
	}
	var values []*Node
	for _, v := range flatten(n.Right, nil) {
		values = append(values, s.expr(v))
	}
	return NewMultiAssign(n.Tok, targets, values)
}

// flatten collects the non-pair nodes of a pair-linked list in order.
func flatten(n *tree.Node, acc []*tree.Node) []*tree.Node {
	switch {
	case n == nil:
		return acc
	case n.IsPair():
		return flatten(n.Right, flatten(n.Left, acc))
	}
	return append(acc, n)
}

func (s *shaper) ifChain(n *tree.Node) *Node {
	branches, elseBody, hasElse, errNode := s.chain(n)
	if errNode != nil {
		return errNode
	}
	return NewIf(n.Tok, branches, elseBody, hasElse)
}

func (s *shaper) chain(n *tree.Node) (branches []Branch, elseBody []*Node, hasElse bool, errNode *Node) {
	switch n.Tok.Value {
	case token.TagIf:
		if n.Left == nil {
			return nil, nil, false, bad(n, "if without a condition")
		}
		return []Branch{{Tok: n.Tok, Cond: s.expr(n.Left), Body: s.stmts(n.Right)}}, nil, false, nil

	case token.TagIfElse:
		part := n.Left
		if part == nil || part.Left == nil {
			return nil, nil, false, bad(n, "if-else without a condition")
		}
		b := Branch{Tok: part.Tok, Cond: s.expr(part.Left), Body: s.stmts(part.Right)}
		return []Branch{b}, s.stmts(n.Right), true, nil

	case token.TagIfElif:
		if n.Left == nil {
			return nil, nil, false, bad(n, "if-elif without a condition")
		}
		first := Branch{Tok: n.Tok, Cond: s.expr(n.Left)}
		elifs := n.Right
		if elifs.IsPair() && !elifs.Left.Is(token.TagElif) {
			first.Body = s.stmts(elifs.Left)
			elifs = elifs.Right
		}
		branches = []Branch{first}
		for _, e := range flatten(elifs, nil) {
			if !e.Is(token.TagElif) || e.Left == nil {
				return nil, nil, false, bad(e, "malformed elif in if chain")
			}
			branches = append(branches, Branch{Tok: e.Tok, Cond: s.expr(e.Left), Body: s.stmts(e.Right)})
		}
		return branches, nil, false, nil

	case token.TagIfElifElse:
		if !n.Left.Is(token.TagIfElif) {
			return nil, nil, false, bad(n, "if-elif-else without an if-elif part")
		}
		branches, _, _, errNode = s.chain(n.Left)
		if errNode != nil {
			return nil, nil, false, errNode
		}
		return branches, s.stmts(n.Right), true, nil
	}
	return nil, nil, false, bad(n, "unrecognized conditional '%s'", n.Tok.Value)
}

func (s *shaper) expr(n *tree.Node) *Node {
	if n == nil {
		return NewBad(token.Token{FileIndex: -1}, "missing operand")
	}
	op := n.Tok.Value
	switch {
	case n.IsPair():
		if n.IsLeaf() {
			return bad(n, "empty expression")
		}
		return bad(n, "unexpected sequence in expression")

	case token.IsBinaryOperator(op) && !n.IsLeaf():
		if n.Left == nil || n.Right == nil {
			return bad(n, "operator '%s' needs two operands", op)
		}
		return NewBinaryOp(n.Tok, op, s.expr(n.Left), s.expr(n.Right))

	case op == token.Not && !n.IsLeaf():
		operand := n.Right
		if operand == nil {
			operand = n.Left
		}
		return NewUnaryOp(n.Tok, op, s.expr(operand))

	case op == token.TagCall:
		if n.Left == nil || !n.Left.IsLeaf() || n.Left.Value() == "" {
			return bad(n, "call without a function name")
		}
		var args []*Node
		for _, a := range flatten(n.Right, nil) {
			args = append(args, s.expr(a))
		}
		return NewCall(n.Left.Tok, n.Left.Value(), args)

	case op == token.TagIndex:
		if n.Left == nil || n.Right == nil {
			return bad(n, "index needs a string and a position")
		}
		return NewIndex(n.Tok, s.expr(n.Left), s.expr(n.Right))

	case op == token.TagSlice:
		if n.Left == nil {
			return bad(n, "slice without a string")
		}
		start, end := s.bounds(n.Right)
		return NewSlice(n.Tok, s.expr(n.Left), start, end, nil, false)

	case op == token.TagSliceStep:
		if n.Left == nil {
			return bad(n, "slice without a string")
		}
		var start, end, step *Node
		if r := n.Right; r != nil {
			start, end = s.bounds(r.Left)
			step = s.optional(r.Right)
		}
		return NewSlice(n.Tok, s.expr(n.Left), start, end, step, true)

	case n.IsLeaf():
		return s.atom(n)
	}
	return bad(n, "unrecognized expression '%s'", op)
}

func (s *shaper) bounds(n *tree.Node) (start, end *Node) {
	switch {
	case n == nil:
		return nil, nil
	case n.IsPair():
		return s.optional(n.Left), s.optional(n.Right)
	}
	return s.expr(n), nil
}

func (s *shaper) optional(n *tree.Node) *Node {
	if n == nil {
		return nil
	}
	return s.expr(n)
}

func (s *shaper) atom(n *tree.Node) *Node {
	text := n.Tok.Value
	kind, isIdent := ClassifyAtom(text, s.heuristics)
	if isIdent {
		return NewIdent(n.Tok, text)
	}
	return NewLiteral(n.Tok, kind, text)
}
