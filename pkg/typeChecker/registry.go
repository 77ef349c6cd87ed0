package typeChecker

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/token"
)

type ParamInfo struct {
	Name       string
	Type       ast.Type
	HasDefault bool
}

// FunctionInfo is the signature of one declared function. Position is the
// function's place in traversal order and decides which calls may see it.
type FunctionInfo struct {
	Name       string
	Params     []ParamInfo
	ReturnType ast.Type
	Position   int
	Tok        token.Token
}

func (f *FunctionInfo) AddParameter(name string, typ ast.Type, hasDefault bool) {
	f.Params = append(f.Params, ParamInfo{Name: name, Type: typ, HasDefault: hasDefault})
}

// MinRequired counts the parameters without a default value.
func (f *FunctionInfo) MinRequired() int {
	n := 0
	for _, p := range f.Params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

func (f *FunctionInfo) CheckArity(args int) error {
	if args < f.MinRequired() || args > len(f.Params) {
		return ErrArity
	}
	return nil
}

// Registry holds every function of a compilation unit in declaration order.
type Registry struct {
	funcs map[string]*FunctionInfo
	order []*FunctionInfo
	seq   int
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*FunctionInfo)}
}

// Declare assigns the next position and records the function. A duplicate
// name still consumes a position and gets a detached FunctionInfo, so its
// body can be checked, but the first declaration stays registered.
func (r *Registry) Declare(name string, returnType ast.Type, tok token.Token) (*FunctionInfo, error) {
	r.seq++
	fn := &FunctionInfo{Name: name, ReturnType: returnType, Position: r.seq, Tok: tok}
	if _, exists := r.funcs[name]; exists {
		return fn, ErrDuplicateFunction
	}
	r.funcs[name] = fn
	r.order = append(r.order, fn)
	return fn, nil
}

func (r *Registry) Lookup(name string) *FunctionInfo { return r.funcs[name] }

// Resolve finds the function a call at callerPos refers to. Only functions
// declared strictly before the caller are visible; allowSelf also admits the
// caller itself.
func (r *Registry) Resolve(name string, callerPos int, allowSelf bool) (*FunctionInfo, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, ErrUndeclaredFunction
	}
	if fn.Position > callerPos || (fn.Position == callerPos && !allowSelf) {
		return fn, ErrForwardReference
	}
	return fn, nil
}

// Functions returns the registered functions in declaration order.
func (r *Registry) Functions() []*FunctionInfo { return r.order }

func (r *Registry) Len() int { return len(r.order) }
