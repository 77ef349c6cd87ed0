// Package ast defines the tagged syntax tree both compiler passes work on.
// It is built once from the raw binary tree by Shape.
package ast

import (
	"github.com/xplshn/tacc/pkg/token"
)

// NodeType defines the kind of a node in the AST
type NodeType int

const (
	// Expressions
	Literal NodeType = iota
	Ident
	BinaryOp
	UnaryOp
	Index
	Slice
	Call

	// Statements
	Program
	FuncDecl
	VarDecl
	Assign
	MultiAssign
	If
	While
	Return
	Pass
	ExprStmt
	Bad
)

var nodeTypeNames = map[NodeType]string{
	Literal: "literal", Ident: "ident", BinaryOp: "binary", UnaryOp: "unary",
	Index: "index", Slice: "slice", Call: "call", Program: "program",
	FuncDecl: "function", VarDecl: "declare", Assign: "assign",
	MultiAssign: "multi_assign", If: "if", While: "while", Return: "return",
	Pass: "pass", ExprStmt: "expr", Bad: "bad",
}

func (t NodeType) String() string { return nodeTypeNames[t] }

// Node represents a node in the tagged tree. Tok is the raw token the node
// was shaped from and carries the source position.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
}

// LitKind classifies literal atoms.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
	LitOther
)

// --- Node Data Structs ---
type LiteralNode struct {
	Kind LitKind
	Text string
}
type IdentNode struct{ Name string }
type BinaryOpNode struct {
	Op          string
	Left, Right *Node
}
type UnaryOpNode struct {
	Op   string
	Expr *Node
}
type IndexNode struct{ Base, Index *Node }

// SliceNode covers both slice forms; elided bounds are nil.
type SliceNode struct {
	Base, Start, End, Step *Node
	HasStep                bool
}
type CallNode struct {
	Name string
	Args []*Node
}

type ProgramNode struct{ Stmts []*Node }

type Param struct {
	Name     string
	TypeName string
	Default  *Node
	Tok      token.Token
}

func (p Param) HasDefault() bool { return p.Default != nil }

type FuncDeclNode struct {
	Name           string
	Params         []Param
	ReturnTypeName string // empty when the function returns nothing
	ReturnTok      token.Token
	Body           []*Node
}

type VarDeclNode struct {
	TypeName string
	Name     string
	NameTok  token.Token
	Init     *Node // nil for a bare declaration
}
type AssignNode struct {
	Name  string
	Value *Node
}

// MultiAssignNode keeps both sides as written; mismatched counts are a
// semantic error, not a shaping one.
type MultiAssignNode struct {
	Targets []*Node
	Values  []*Node
}

// Branch is one guarded arm of an if chain.
type Branch struct {
	Tok  token.Token
	Cond *Node
	Body []*Node
}

// IfNode represents if, if-else, if-elif and if-elif-else uniformly.
type IfNode struct {
	Branches []Branch
	Else     []*Node
	HasElse  bool
}
type WhileNode struct {
	Cond *Node
	Body []*Node
}
type ReturnNode struct{ Value *Node }
type ExprStmtNode struct{ Expr *Node }
type BadNode struct{ Reason string }

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, data interface{}) *Node {
	return &Node{Type: nodeType, Tok: tok, Data: data}
}

func NewLiteral(tok token.Token, kind LitKind, text string) *Node {
	return newNode(tok, Literal, LiteralNode{Kind: kind, Text: text})
}
func NewIdent(tok token.Token, name string) *Node {
	return newNode(tok, Ident, IdentNode{Name: name})
}
func NewBinaryOp(tok token.Token, op string, left, right *Node) *Node {
	return newNode(tok, BinaryOp, BinaryOpNode{Op: op, Left: left, Right: right})
}
func NewUnaryOp(tok token.Token, op string, expr *Node) *Node {
	return newNode(tok, UnaryOp, UnaryOpNode{Op: op, Expr: expr})
}
func NewIndex(tok token.Token, base, index *Node) *Node {
	return newNode(tok, Index, IndexNode{Base: base, Index: index})
}
func NewSlice(tok token.Token, base, start, end, step *Node, hasStep bool) *Node {
	return newNode(tok, Slice, SliceNode{Base: base, Start: start, End: end, Step: step, HasStep: hasStep})
}
func NewCall(tok token.Token, name string, args []*Node) *Node {
	return newNode(tok, Call, CallNode{Name: name, Args: args})
}
func NewProgram(tok token.Token, stmts []*Node) *Node {
	return newNode(tok, Program, ProgramNode{Stmts: stmts})
}
func NewFuncDecl(tok token.Token, name string, params []Param, returnTypeName string, returnTok token.Token, body []*Node) *Node {
	return newNode(tok, FuncDecl, FuncDeclNode{
		Name: name, Params: params, ReturnTypeName: returnTypeName, ReturnTok: returnTok, Body: body,
	})
}
func NewVarDecl(tok token.Token, typeName, name string, nameTok token.Token, init *Node) *Node {
	return newNode(tok, VarDecl, VarDeclNode{TypeName: typeName, Name: name, NameTok: nameTok, Init: init})
}
func NewAssign(tok token.Token, name string, value *Node) *Node {
	return newNode(tok, Assign, AssignNode{Name: name, Value: value})
}
func NewMultiAssign(tok token.Token, targets, values []*Node) *Node {
	return newNode(tok, MultiAssign, MultiAssignNode{Targets: targets, Values: values})
}
func NewIf(tok token.Token, branches []Branch, elseBody []*Node, hasElse bool) *Node {
	return newNode(tok, If, IfNode{Branches: branches, Else: elseBody, HasElse: hasElse})
}
func NewWhile(tok token.Token, cond *Node, body []*Node) *Node {
	return newNode(tok, While, WhileNode{Cond: cond, Body: body})
}
func NewReturn(tok token.Token, value *Node) *Node {
	return newNode(tok, Return, ReturnNode{Value: value})
}
func NewPass(tok token.Token) *Node { return newNode(tok, Pass, nil) }
func NewExprStmt(tok token.Token, expr *Node) *Node {
	return newNode(tok, ExprStmt, ExprStmtNode{Expr: expr})
}
func NewBad(tok token.Token, reason string) *Node {
	return newNode(tok, Bad, BadNode{Reason: reason})
}

// IsAtom reports whether the node is a literal or identifier, i.e. an
// expression that names its own value.
func (n *Node) IsAtom() bool {
	return n != nil && (n.Type == Literal || n.Type == Ident)
}

// Text returns the source text of an atom.
func (n *Node) Text() string {
	switch d := n.Data.(type) {
	case LiteralNode:
		return d.Text
	case IdentNode:
		return d.Name
	}
	return n.Tok.Value
}
