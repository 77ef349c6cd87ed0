package parser

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/tree"
)

var ErrIncomplete = errors.New("incomplete input")

// SyntaxError points at the token where reading the interchange text failed.
type SyntaxError struct {
	Tok token.Token
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Tok.Line, e.Tok.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// IsIncomplete reports whether err was caused by input ending inside a node,
// meaning more text could still complete it.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Err == ErrIncomplete
}

// Parser holds the state for reading one interchange document.
type Parser struct {
	tokens  []token.Token
	pos     int
	current token.Token
}

func NewParser(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	if len(tokens) > 0 {
		p.current = tokens[0]
	}
	return p
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
		p.current = p.tokens[p.pos]
	}
}

func (p *Parser) check(tokType token.Type) bool { return p.current.Type == tokType }

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) fail(msg string, args ...any) error {
	se := &SyntaxError{Tok: p.current, Msg: fmt.Sprintf(msg, args...)}
	if p.check(token.EOF) {
		se.Err = ErrIncomplete
	}
	return se
}

// Parse reads every top-level node. Several top-level nodes are chained into
// a right-leaning sequence of pair nodes, the shape the language parser uses
// for statement lists.
func (p *Parser) Parse() (*tree.Node, error) {
	var nodes []*tree.Node
	for !p.check(token.EOF) {
		if p.check(token.RParen) {
			return nil, p.fail("unexpected %v", p.current.Type)
		}
		n, err := p.node()
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return chain(nodes), nil
}

func chain(nodes []*tree.Node) *tree.Node {
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	}
	return tree.Pair(nodes[0], chain(nodes[1:]))
}

func (p *Parser) node() (*tree.Node, error) {
	tok := p.current
	switch tok.Type {
	case token.Nil:
		p.advance()
		return nil, nil
	case token.Atom, token.String:
		p.advance()
		return &tree.Node{Tok: tok}, nil
	case token.Comma:
		p.advance()
		return &tree.Node{Tok: token.Token{FileIndex: tok.FileIndex, Line: tok.Line, Column: tok.Column, Len: tok.Len}}, nil
	case token.LParen:
		return p.list()
	case token.Illegal:
		return nil, p.fail("%s", tok.Value)
	default:
		return nil, p.fail("unexpected %v", tok.Type)
	}
}

func (p *Parser) list() (*tree.Node, error) {
	p.advance() // '('
	head := p.current
	n := &tree.Node{Tok: head}
	switch head.Type {
	case token.Atom, token.String:
	case token.Comma:
		n.Tok.Value = ""
	case token.EOF:
		return nil, p.fail("expected node head")
	default:
		return nil, p.fail("expected node head, found %v", head.Type)
	}
	p.advance()

	children := make([]*tree.Node, 0, 2)
	for !p.check(token.RParen) {
		if p.check(token.EOF) {
			return nil, p.fail("missing ')' for node opened at %d:%d", head.Line, head.Column)
		}
		if len(children) == 2 {
			return nil, p.fail("node '%s' has more than two children", head.Value)
		}
		child, err := p.node()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	p.match(token.RParen)

	if len(children) > 0 {
		n.Left = children[0]
	}
	if len(children) > 1 {
		n.Right = children[1]
	}
	return n, nil
}
