package typeChecker

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/token"
)

// Symbol is one variable binding. Bindings of a scope form a list with the
// most recent first.
type Symbol struct {
	Name string
	Type ast.Type
	Tok  token.Token
	Next *Symbol
}

type Scope struct {
	Name    string
	Symbols *Symbol
	Parent  *Scope
}

func NewScope(name string, parent *Scope) *Scope { return &Scope{Name: name, Parent: parent} }

// Declare binds name in this scope. Redeclaring a name already bound here
// fails; names of enclosing scopes may be shadowed.
func (s *Scope) Declare(name string, typ ast.Type, tok token.Token) (*Symbol, error) {
	if s.LookupLocal(name) != nil {
		return nil, ErrDuplicateDeclaration
	}
	sym := &Symbol{Name: name, Type: typ, Tok: tok, Next: s.Symbols}
	s.Symbols = sym
	return sym, nil
}

func (s *Scope) LookupLocal(name string) *Symbol {
	for sym := s.Symbols; sym != nil; sym = sym.Next {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Lookup walks the scope chain outwards and returns the innermost binding.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym := sc.LookupLocal(name); sym != nil {
			return sym
		}
	}
	return nil
}

// Bindings returns the symbols of this scope in declaration order.
func (s *Scope) Bindings() []*Symbol {
	var out []*Symbol
	for sym := s.Symbols; sym != nil; sym = sym.Next {
		out = append(out, sym)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
