package typeChecker

import (
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

// TypeChecker analyzes one compilation unit. All state lives here, so
// separate units never see each other's scopes, functions or counts.
type TypeChecker struct {
	cfg         *config.Config
	global      *Scope
	registry    *Registry
	funcs       map[*ast.Node]*FunctionInfo
	currentFunc *FunctionInfo
	inSignature bool // typing parameter defaults of currentFunc
	visited     int
	depth       int
	diags       []*Diagnostic
	errors      int
}

func NewTypeChecker(cfg *config.Config) *TypeChecker {
	return &TypeChecker{
		cfg:      cfg,
		global:   NewScope("global", nil),
		registry: NewRegistry(),
		funcs:    make(map[*ast.Node]*FunctionInfo),
	}
}

func (tc *TypeChecker) Diagnostics() []*Diagnostic { return tc.diags }
func (tc *TypeChecker) ErrorCount() int            { return tc.errors }
func (tc *TypeChecker) Registry() *Registry        { return tc.registry }
func (tc *TypeChecker) Global() *Scope             { return tc.global }

// Errors returns only the error diagnostics.
func (tc *TypeChecker) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range tc.diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func (tc *TypeChecker) errorf(tok token.Token, kind error, format string, args ...interface{}) {
	tc.errors++
	d := &Diagnostic{Severity: SeverityError, Kind: kind, Tok: tok, Msg: fmt.Sprintf(format, args...)}
	tc.diags = append(tc.diags, d)
	tlog.V("diag").Printw("error reported", "kind", KindName(kind), "msg", d.Msg, "line", tok.Line, "from", loc.Caller(1))
}

func (tc *TypeChecker) warnf(w config.Warning, tok token.Token, format string, args ...interface{}) {
	if !tc.cfg.IsWarningEnabled(w) {
		return
	}
	tc.diags = append(tc.diags, &Diagnostic{Severity: SeverityWarning, Warning: w, Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

// enter guards recursion depth. The first node past the limit is reported
// and its subtree skipped.
func (tc *TypeChecker) enter(n *ast.Node) bool {
	tc.depth++
	if tc.depth > tc.cfg.MaxDepth {
		tc.depth--
		tc.errorf(n.Tok, ErrDepthExceeded, "nesting exceeds the limit of %d", tc.cfg.MaxDepth)
		return false
	}
	return true
}

func (tc *TypeChecker) leave() { tc.depth-- }

// position is the traversal position calls are resolved from: the enclosing
// function's own position, or just past the functions seen so far when
// outside any function.
func (tc *TypeChecker) position() int {
	if tc.currentFunc != nil {
		return tc.currentFunc.Position
	}
	return tc.visited + 1
}

// Check analyzes the whole program. Traversal never stops at an error.
func (tc *TypeChecker) Check(root *ast.Node) {
	if root == nil || root.Type != ast.Program {
		return
	}
	stmts := root.Data.(ast.ProgramNode).Stmts
	tc.collectFunctions(stmts)
	tc.checkBlock(stmts, tc.global)
}

// collectFunctions registers every function in traversal order before any
// body is checked, so early calls report a forward reference rather than an
// unknown function.
func (tc *TypeChecker) collectFunctions(stmts []*ast.Node) {
	for _, s := range stmts {
		tc.collectIn(s)
	}
}

func (tc *TypeChecker) collectIn(n *ast.Node) {
	switch d := n.Data.(type) {
	case ast.FuncDeclNode:
		ret := ast.TypeNone
		if d.ReturnTypeName != "" {
			ret, _ = ast.ParseType(d.ReturnTypeName)
		}
		fn, err := tc.registry.Declare(d.Name, ret, n.Tok)
		if err != nil {
			first := tc.registry.Lookup(d.Name)
			tc.errorf(n.Tok, err, "function '%s' already declared at position %d", d.Name, first.Position)
		}
		tlog.V("sema").Printw("register function", "name", d.Name, "pos", fn.Position, "ret", ret)
		tc.funcs[n] = fn
		tc.collectFunctions(d.Body)
	case ast.IfNode:
		for _, b := range d.Branches {
			tc.collectFunctions(b.Body)
		}
		tc.collectFunctions(d.Else)
	case ast.WhileNode:
		tc.collectFunctions(d.Body)
	}
}

func (tc *TypeChecker) checkBlock(stmts []*ast.Node, scope *Scope) {
	for i, s := range stmts {
		if scope == tc.global && s.Type != ast.FuncDecl {
			tc.warnf(config.WarnTopLevel, s.Tok, "statement outside any function produces no code")
		}
		if s.Type == ast.Return && i < len(stmts)-1 {
			tc.warnf(config.WarnExtra, stmts[i+1].Tok, "statement after return is never executed")
		}
		tc.checkStmt(s, scope)
	}
}

func (tc *TypeChecker) checkStmt(n *ast.Node, scope *Scope) {
	if !tc.enter(n) {
		return
	}
	defer tc.leave()

	switch d := n.Data.(type) {
	case ast.FuncDeclNode:
		tc.checkFunction(n, d, scope)
	case ast.VarDeclNode:
		tc.checkVarDecl(n, d, scope)
	case ast.AssignNode:
		tc.checkAssign(n.Tok, d.Name, d.Value, scope)
	case ast.MultiAssignNode:
		if len(d.Targets) != len(d.Values) || len(d.Targets) == 0 {
			tc.errorf(n.Tok, ErrAssignCount, "assignment has %d targets but %d values", len(d.Targets), len(d.Values))
			for _, v := range d.Values {
				tc.TypeOf(v, scope)
			}
			return
		}
		for i, t := range d.Targets {
			tc.checkAssign(t.Tok, t.Text(), d.Values[i], scope)
		}
	case ast.IfNode:
		for _, b := range d.Branches {
			tc.checkCondition(b.Cond, scope)
			tc.checkBlock(b.Body, NewScope("if", scope))
		}
		if d.HasElse {
			tc.checkBlock(d.Else, NewScope("else", scope))
		}
	case ast.WhileNode:
		tc.checkCondition(d.Cond, scope)
		tc.checkBlock(d.Body, NewScope("while", scope))
	case ast.ReturnNode:
		tc.checkReturn(n, d, scope)
	case ast.ExprStmtNode:
		tc.typeWithWarning(d.Expr, scope)
	case ast.BadNode:
		tc.errorf(n.Tok, ErrMalformed, "%s", d.Reason)
	}
}

func (tc *TypeChecker) checkFunction(n *ast.Node, d ast.FuncDeclNode, scope *Scope) {
	tc.visited++
	fn := tc.funcs[n]
	if fn == nil {
		fn = &FunctionInfo{Name: d.Name, Position: tc.visited, ReturnType: ast.TypeNone, Tok: n.Tok}
	}

	if d.ReturnTypeName != "" && !ast.IsTypeName(d.ReturnTypeName) {
		tc.errorf(d.ReturnTok, ErrUnknownType, "unknown return type '%s' for function '%s'", d.ReturnTypeName, d.Name)
	}
	if d.Name == tc.cfg.EntryName && (len(d.Params) > 0 || d.ReturnTypeName != "") {
		tc.errorf(n.Tok, ErrEntrySignature, "entry function '%s' must take no parameters and return nothing", d.Name)
	}

	// defaults resolve calls from the function's own position, and the
	// function itself is not callable until its parameters are known
	prevFunc := tc.currentFunc
	tc.currentFunc, tc.inSignature = fn, true
	defer func() { tc.currentFunc = prevFunc }()

	fnScope := NewScope(d.Name, scope)
	for _, p := range d.Params {
		typ, ok := ast.ParseType(p.TypeName)
		if !ok {
			tc.errorf(p.Tok, ErrUnknownType, "unknown type '%s' for parameter '%s'", p.TypeName, p.Name)
			continue
		}
		if p.Default != nil {
			if dt := tc.TypeOf(p.Default, scope); dt.IsKnown() && dt != typ {
				tc.errorf(p.Default.Tok, ErrTypeMismatch, "default value of parameter '%s' must be %v, found %v", p.Name, typ, dt)
			}
		}
		if _, err := fnScope.Declare(p.Name, typ, p.Tok); err != nil {
			tc.errorf(p.Tok, ErrDuplicateParameter, "parameter '%s' is declared twice in function '%s'", p.Name, d.Name)
			continue
		}
		fn.AddParameter(p.Name, typ, p.HasDefault())
	}

	tc.inSignature = false
	tc.checkBlock(d.Body, fnScope)
}

func (tc *TypeChecker) checkVarDecl(n *ast.Node, d ast.VarDeclNode, scope *Scope) {
	var initType ast.Type
	if d.Init != nil {
		initType = tc.typeWithWarning(d.Init, scope)
	}

	typ, ok := ast.ParseType(d.TypeName)
	if !ok {
		tc.errorf(n.Tok, ErrUnknownType, "unknown type '%s' for variable '%s'", d.TypeName, d.Name)
		return
	}
	if scope.LookupLocal(d.Name) == nil && scope.Parent != nil && scope.Parent.Lookup(d.Name) != nil {
		tc.warnf(config.WarnShadow, d.NameTok, "declaration of '%s' shadows an outer variable", d.Name)
	}
	if _, err := scope.Declare(d.Name, typ, d.NameTok); err != nil {
		tc.errorf(d.NameTok, err, "variable '%s' is already declared in this scope", d.Name)
		return
	}
	tlog.V("sema").Printw("declare", "scope", scope.Name, "name", d.Name, "type", typ)

	if d.Init != nil && initType.IsKnown() && initType != typ {
		tc.errorf(n.Tok, ErrTypeMismatch, "cannot initialize %v variable '%s' with %v", typ, d.Name, initType)
	}
}

func (tc *TypeChecker) checkAssign(tok token.Token, name string, value *ast.Node, scope *Scope) {
	vt := tc.typeWithWarning(value, scope)
	sym := scope.Lookup(name)
	if sym == nil {
		tc.errorf(tok, ErrAssignToUndeclared, "assignment to undeclared variable '%s'", name)
		return
	}
	if vt.IsKnown() && vt != sym.Type {
		tc.errorf(tok, ErrTypeMismatch, "cannot assign %v to %v variable '%s'", vt, sym.Type, name)
	}
}

func (tc *TypeChecker) checkCondition(cond *ast.Node, scope *Scope) {
	t := tc.typeWithWarning(cond, scope)
	if t.IsKnown() && t != ast.TypeBool {
		tc.errorf(cond.Tok, ErrNonBooleanCondition, "condition must be bool, found %v", t)
	}
}

func (tc *TypeChecker) checkReturn(n *ast.Node, d ast.ReturnNode, scope *Scope) {
	fn := tc.currentFunc
	if fn == nil {
		tc.errorf(n.Tok, ErrReturnOutsideFunction, "return outside of a function")
		if d.Value != nil {
			tc.TypeOf(d.Value, scope)
		}
		return
	}

	if d.Value == nil {
		if fn.ReturnType != ast.TypeNone && fn.ReturnType.IsKnown() {
			tc.errorf(n.Tok, ErrReturnType, "function '%s' must return a %v value", fn.Name, fn.ReturnType)
		}
		return
	}

	vt := tc.typeWithWarning(d.Value, scope)
	switch {
	case fn.ReturnType == ast.TypeNone:
		tc.errorf(n.Tok, ErrReturnType, "function '%s' declares no return type but returns a value", fn.Name)
	case vt.IsKnown() && fn.ReturnType.IsKnown() && vt != fn.ReturnType:
		tc.errorf(n.Tok, ErrReturnType, "function '%s' returns %v, found %v", fn.Name, fn.ReturnType, vt)
	}
}

// typeWithWarning types an expression and warns when its type stays unknown
// without any error explaining why.
func (tc *TypeChecker) typeWithWarning(n *ast.Node, scope *Scope) ast.Type {
	before := tc.errors
	t := tc.TypeOf(n, scope)
	if !t.IsKnown() && tc.errors == before {
		tc.warnf(config.WarnUntyped, n.Tok, "type of '%s' cannot be determined", n.Text())
	}
	return t
}
