package lexer

import (
	"unicode"

	"github.com/xplshn/tacc/pkg/token"
)

// Lexer splits AST interchange text into tokens. String tokens keep their
// surrounding quotes and escapes verbatim, matching the literal text the
// language parser stores in its tree.
type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
}

func NewLexer(source []rune, fileIndex int) *Lexer {
	return &Lexer{source: source, fileIndex: fileIndex, line: 1, column: 1}
}

func (l *Lexer) Next() token.Token {
	l.skipWhitespaceAndComments()
	startPos, startCol, startLine := l.pos, l.column, l.line

	if l.isAtEnd() {
		return l.makeToken(token.EOF, "", startPos, startCol, startLine)
	}

	ch := l.peek()
	switch ch {
	case '(':
		l.advance()
		return l.makeToken(token.LParen, "(", startPos, startCol, startLine)
	case ')':
		l.advance()
		return l.makeToken(token.RParen, ")", startPos, startCol, startLine)
	case '"':
		return l.stringLiteral(startPos, startCol, startLine)
	}

	for !l.isAtEnd() && isAtomRune(l.peek()) {
		l.advance()
	}
	text := string(l.source[startPos:l.pos])
	switch text {
	case "_":
		return l.makeToken(token.Nil, text, startPos, startCol, startLine)
	case ",":
		return l.makeToken(token.Comma, text, startPos, startCol, startLine)
	}
	return l.makeToken(token.Atom, text, startPos, startCol, startLine)
}

// All tokenizes the whole source, ending with an EOF token.
func (l *Lexer) All() []token.Token {
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isAtEnd() {
		switch ch := l.peek(); {
		case unicode.IsSpace(ch):
			l.advance()
		case ch == ';':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) stringLiteral(startPos, startCol, startLine int) token.Token {
	l.advance() // opening quote
	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\\' && l.peekNext() != 0 {
			l.advance()
		}
		l.advance()
	}
	if l.isAtEnd() {
		return l.makeToken(token.Illegal, "unterminated string literal", startPos, startCol, startLine)
	}
	l.advance() // closing quote
	return l.makeToken(token.String, string(l.source[startPos:l.pos]), startPos, startCol, startLine)
}

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func isAtomRune(r rune) bool {
	return !unicode.IsSpace(r) && r != '(' && r != ')' && r != '"' && r != ';'
}
